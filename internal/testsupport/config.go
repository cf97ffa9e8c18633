package testsupport

import (
	"path/filepath"
	"testing"

	"actled/internal/config"
)

// ConfigOption customizes a generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a valid config whose proc and sysfs paths point into a
// fresh temp directory: a vmstat file, an LED tree with mmc0 active and a
// GPIO tree. Hotplug is disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()

	vmstat := filepath.Join(base, "proc", "vmstat")
	WriteFile(t, vmstat, VMStat(1000, 2000))
	cfg.Source.Path = vmstat

	ledDir := filepath.Join(base, "sys", "class", "leds", "led0")
	WriteFile(t, filepath.Join(ledDir, "brightness"), "")
	WriteFile(t, filepath.Join(ledDir, "trigger"), TriggerList("mmc0"))
	cfg.Brightness.Path = filepath.Join(ledDir, "brightness")
	cfg.Brightness.TriggerPath = filepath.Join(ledDir, "trigger")

	gpioRoot := filepath.Join(base, "sys", "class", "gpio")
	WriteFile(t, filepath.Join(gpioRoot, "export"), "")
	WriteFile(t, filepath.Join(gpioRoot, "unexport"), "")
	cfg.GPIO.SysfsRoot = gpioRoot

	cfg.Daemon.StateDir = filepath.Join(base, "state")
	cfg.Logging.LogDir = filepath.Join(base, "logs")
	cfg.Hotplug.Enabled = false

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfg}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithNetSource switches the config to a /proc/net/dev file holding rows.
func WithNetSource(rows ...NetDevRow) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "proc", "net", "dev")
		WriteFile(b.t, path, NetDev(rows...))
		b.cfg.Source.Kind = "net"
		b.cfg.Source.Path = path
	}
}

// WithGPIOSink switches the config to the GPIO sink and pre-creates the
// line directory for the resolved pin, as if it were already exported.
func WithGPIOSink() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sink.Kind = "gpio"
		line, err := b.cfg.GPIOLine()
		if err != nil {
			b.t.Fatalf("resolve gpio line: %v", err)
		}
		GPIOTree{Root: b.cfg.GPIO.SysfsRoot}.AddPin(b.t, line)
	}
}

// WithRefresh overrides the polling interval.
func WithRefresh(ms int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Daemon.RefreshMS = ms
	}
}

// BaseDir returns the temp directory backing cfg.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Daemon.StateDir)
}
