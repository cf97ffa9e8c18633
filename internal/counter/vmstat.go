package counter

import (
	"bytes"
	"fmt"
	"strconv"
)

var vmstatNames = []string{"pgpgin", "pgpgout"}

// VMStat samples paging activity (pgpgin, pgpgout) from /proc/vmstat.
type VMStat struct {
	file *procFile
}

// OpenVMStat opens the vmstat file at path.
func OpenVMStat(path string) (*VMStat, error) {
	file, err := openProcFile(path)
	if err != nil {
		return nil, err
	}
	return &VMStat{file: file}, nil
}

func (v *VMStat) Names() []string { return vmstatNames }

func (v *VMStat) Path() string { return v.file.path }

// Sample rereads the file and returns {pgpgin, pgpgout}.
func (v *VMStat) Sample() (Sample, error) {
	sc, err := v.file.scanner()
	if err != nil {
		return nil, err
	}

	var pgpgin, pgpgout uint64
	var foundIn, foundOut bool
	for sc.Scan() {
		key, value, ok := parseKeyValue(sc.Bytes())
		if !ok {
			continue
		}
		switch key {
		case "pgpgin":
			pgpgin, foundIn = value, true
		case "pgpgout":
			pgpgout, foundOut = value, true
		}
		if foundIn && foundOut {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", v.file.path, err)
	}
	if !foundIn || !foundOut {
		return nil, fmt.Errorf("%w: %s: pgpgin found=%t pgpgout found=%t", ErrMissingFields, v.file.path, foundIn, foundOut)
	}
	return Sample{pgpgin, pgpgout}, nil
}

func (v *VMStat) Close() error { return v.file.Close() }

// parseKeyValue splits a "key value" line. Lines without a numeric second
// field are rejected.
func parseKeyValue(line []byte) (string, uint64, bool) {
	fields := bytes.Fields(line)
	if len(fields) < 2 {
		return "", 0, false
	}
	value, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return "", 0, false
	}
	return string(fields[0]), value, true
}
