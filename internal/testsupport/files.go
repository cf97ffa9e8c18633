package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile replaces the content of path in place, creating parent
// directories as needed. Rewriting an existing file keeps its inode so
// descriptors held open by a source observe the new content after a rewind.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadFile returns the content of path.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// VMStat renders a /proc/vmstat body with the paging counters surrounded by
// unrelated keys.
func VMStat(pgpgin, pgpgout uint64) string {
	var b strings.Builder
	b.WriteString("nr_free_pages 123456\n")
	b.WriteString("nr_zone_inactive_anon 42\n")
	fmt.Fprintf(&b, "pgpgin %d\n", pgpgin)
	fmt.Fprintf(&b, "pgpgout %d\n", pgpgout)
	b.WriteString("pswpin 0\n")
	b.WriteString("pswpout 0\n")
	return b.String()
}

// NetDevRow is one interface line of /proc/net/dev.
type NetDevRow struct {
	Name      string
	RxPackets uint64
	TxPackets uint64
}

// NetDev renders a /proc/net/dev body including both header lines.
func NetDev(rows ...NetDevRow) string {
	var b strings.Builder
	b.WriteString("Inter-|   Receive                                                |  Transmit\n")
	b.WriteString(" face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "%6s: %7d %7d    0    0    0     0          0         0 %8d %7d    0    0    0     0       0          0\n",
			row.Name, row.RxPackets*100, row.RxPackets, row.TxPackets*120, row.TxPackets)
	}
	return b.String()
}

// LEDTree is a fake /sys/class/leds/<name> directory.
type LEDTree struct {
	Dir        string
	Brightness string
	Trigger    string
}

// NewLEDTree creates brightness and trigger attributes under a temp dir. The
// trigger file lists a few triggers with active marked in brackets.
func NewLEDTree(t testing.TB, active string) LEDTree {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "leds", "led0")
	tree := LEDTree{
		Dir:        dir,
		Brightness: filepath.Join(dir, "brightness"),
		Trigger:    filepath.Join(dir, "trigger"),
	}
	WriteFile(t, tree.Brightness, "")
	WriteFile(t, tree.Trigger, TriggerList(active))
	return tree
}

// TriggerList renders the kernel trigger attribute with active bracketed.
func TriggerList(active string) string {
	names := []string{"none", "kbd-scrolllock", "timer", "heartbeat", "mmc0", "default-on"}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		if name == active {
			parts = append(parts, "["+name+"]")
			continue
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, " ") + "\n"
}

// GPIOTree is a fake /sys/class/gpio directory.
type GPIOTree struct {
	Root     string
	Export   string
	Unexport string
}

// NewGPIOTree creates export/unexport attributes under a temp dir.
func NewGPIOTree(t testing.TB) GPIOTree {
	t.Helper()

	root := filepath.Join(t.TempDir(), "gpio")
	tree := GPIOTree{
		Root:     root,
		Export:   filepath.Join(root, "export"),
		Unexport: filepath.Join(root, "unexport"),
	}
	WriteFile(t, tree.Export, "")
	WriteFile(t, tree.Unexport, "")
	return tree
}

// AddPin pre-creates the gpioN directory the kernel would create on export.
func (g GPIOTree) AddPin(t testing.TB, line int) string {
	t.Helper()

	dir := filepath.Join(g.Root, fmt.Sprintf("gpio%d", line))
	WriteFile(t, filepath.Join(dir, "direction"), "in\n")
	WriteFile(t, filepath.Join(dir, "value"), "0\n")
	return dir
}
