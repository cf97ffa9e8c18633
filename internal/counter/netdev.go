package counter

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var netdevNames = []string{"rx_packets", "tx_packets"}

// Receive fields: bytes(0), packets(1), errs(2), drop(3), fifo(4), frame(5), compressed(6), multicast(7)
// Transmit fields: bytes(8), packets(9), errs(10), drop(11), fifo(12), colls(13), carrier(14), compressed(15)
const (
	netdevFieldCount     = 16
	netdevRxPacketsField = 1
	netdevTxPacketsField = 9
)

// NetDev samples packet totals summed over every interface in /proc/net/dev
// except the excluded ones.
type NetDev struct {
	file    *procFile
	exclude map[string]struct{}
}

// OpenNetDev opens the net/dev file at path. A nil exclude list excludes the
// loopback interface; an empty, non-nil list excludes nothing.
func OpenNetDev(path string, exclude []string) (*NetDev, error) {
	if exclude == nil {
		exclude = []string{"lo"}
	}
	file, err := openProcFile(path)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		if name = strings.TrimSpace(name); name != "" {
			set[name] = struct{}{}
		}
	}
	return &NetDev{file: file, exclude: set}, nil
}

func (n *NetDev) Names() []string { return netdevNames }

func (n *NetDev) Path() string { return n.file.path }

// Sample rereads the file and returns {rx_packets, tx_packets}.
func (n *NetDev) Sample() (Sample, error) {
	sc, err := n.file.scanner()
	if err != nil {
		return nil, err
	}

	var rx, tx uint64
	devices := 0
	for sc.Scan() {
		name, rxPackets, txPackets, ok := parseNetDevRow(sc.Bytes())
		if !ok {
			continue
		}
		if _, skip := n.exclude[name]; skip {
			continue
		}
		rx += rxPackets
		tx += txPackets
		devices++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", n.file.path, err)
	}
	if devices == 0 {
		return nil, fmt.Errorf("%w: %s: no interface rows outside %s", ErrMissingFields, n.file.path, n.excludedList())
	}
	return Sample{rx, tx}, nil
}

func (n *NetDev) Close() error { return n.file.Close() }

func (n *NetDev) excludedList() string {
	if len(n.exclude) == 0 {
		return "[]"
	}
	names := make([]string, 0, len(n.exclude))
	for name := range n.exclude {
		names = append(names, name)
	}
	slices.Sort(names)
	return "[" + strings.Join(names, " ") + "]"
}

// parseNetDevRow parses "iface: 16 counters". Header rows have no colon-separated
// numeric fields and are rejected.
func parseNetDevRow(line []byte) (string, uint64, uint64, bool) {
	colon := bytes.IndexByte(line, ':')
	if colon < 0 {
		return "", 0, 0, false
	}
	name := string(bytes.TrimSpace(line[:colon]))
	if name == "" {
		return "", 0, 0, false
	}
	fields := bytes.Fields(line[colon+1:])
	if len(fields) < netdevFieldCount {
		return "", 0, 0, false
	}
	rx, err := strconv.ParseUint(string(fields[netdevRxPacketsField]), 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	tx, err := strconv.ParseUint(string(fields[netdevTxPacketsField]), 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	return name, rx, tx, true
}
