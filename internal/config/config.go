package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"actled/internal/counter"
	"actled/internal/faults"
	"actled/internal/led"
)

//go:embed sample_config.toml
var sampleConfig string

// Source selects the kernel statistics the indicator follows.
type Source struct {
	Kind              string   `toml:"kind"`
	Path              string   `toml:"path"`
	ExcludeInterfaces []string `toml:"exclude_interfaces"`
}

// Sink selects the output driver.
type Sink struct {
	Kind string `toml:"kind"`
}

// Brightness configures the LED class device driver.
type Brightness struct {
	Path           string `toml:"path"`
	TriggerPath    string `toml:"trigger_path"`
	RestoreTrigger string `toml:"restore_trigger"`
	OnValue        string `toml:"on_value"`
	OffValue       string `toml:"off_value"`
}

// GPIO configures the sysfs GPIO driver. Pin is interpreted in Scheme and
// ChipBase is added to the resulting Broadcom number.
type GPIO struct {
	Pin       int    `toml:"pin"`
	Scheme    string `toml:"scheme"`
	ChipBase  int    `toml:"chip_base"`
	SysfsRoot string `toml:"sysfs_root"`
}

// Daemon contains polling and process management settings.
type Daemon struct {
	RefreshMS           int    `toml:"refresh_ms"`
	Detach              bool   `toml:"detach"`
	StateDir            string `toml:"state_dir"`
	ReadyTimeoutSeconds int    `toml:"ready_timeout_seconds"`
	StopTimeoutSeconds  int    `toml:"stop_timeout_seconds"`
}

// Hotplug toggles the device-removal watch.
type Hotplug struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
	LogDir        string `toml:"log_dir"`
}

// Config encapsulates every actled setting.
type Config struct {
	Source     Source     `toml:"source"`
	Sink       Sink       `toml:"sink"`
	Brightness Brightness `toml:"brightness"`
	GPIO       GPIO       `toml:"gpio"`
	Daemon     Daemon     `toml:"daemon"`
	Hotplug    Hotplug    `toml:"hotplug"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the per-user configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/actled/config.toml")
}

const systemConfigPath = "/etc/actled/config.toml"

// Load locates, parses, normalizes, and validates a configuration file. It
// returns the resolved path and whether a file was found there; a missing
// file yields defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, faults.Wrap(faults.ErrConfiguration, "config", "open", resolvedPath, err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, faults.Wrap(faults.ErrConfiguration, "config", "parse", strings.TrimSpace(strict.String()), nil)
			}
			return nil, "", false, faults.Wrap(faults.ErrConfiguration, "config", "parse", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, faults.Wrap(faults.ErrConfiguration, "config", "stat", expanded, err)
		}
		return expanded, true, nil
	}

	userPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("actled.toml")
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, systemConfigPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

// Marshal renders cfg as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// SourceKind returns the validated source kind.
func (c *Config) SourceKind() counter.Kind {
	kind, err := counter.ParseKind(c.Source.Kind)
	if err != nil {
		return counter.KindDisk
	}
	return kind
}

// SourcePath returns the configured statistics file or the default for the
// source kind.
func (c *Config) SourcePath() string {
	if strings.TrimSpace(c.Source.Path) != "" {
		return c.Source.Path
	}
	return counter.DefaultPath(c.SourceKind())
}

// SinkKind returns the validated sink kind.
func (c *Config) SinkKind() led.Kind {
	kind, err := led.ParseKind(c.Sink.Kind)
	if err != nil {
		return led.KindBrightness
	}
	return kind
}

// RefreshInterval returns the polling interval.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Daemon.RefreshMS) * time.Millisecond
}

// GPIOPin returns the configured pin, resolving AutoPin from the source.
func (c *Config) GPIOPin() int {
	if c.GPIO.Pin != AutoPin {
		return c.GPIO.Pin
	}
	if c.SourceKind() == counter.KindNet {
		return NetPin
	}
	return DiskPin
}

// GPIOLine returns the kernel GPIO number driven by the GPIO sink.
func (c *Config) GPIOLine() (int, error) {
	scheme, err := led.ParseScheme(c.GPIO.Scheme)
	if err != nil {
		return 0, err
	}
	bcm, err := led.BCMPin(c.GPIOPin(), scheme)
	if err != nil {
		return 0, err
	}
	return c.GPIO.ChipBase + bcm, nil
}

// LEDName returns the LED class device that owns the brightness attribute.
func (c *Config) LEDName() string {
	return filepath.Base(filepath.Dir(c.Brightness.Path))
}

// LockPath returns the single-instance lock file.
func (c *Config) LockPath() string { return filepath.Join(c.Daemon.StateDir, "actled.lock") }

// PIDPath returns the pid file of the running daemon.
func (c *Config) PIDPath() string { return filepath.Join(c.Daemon.StateDir, "actled.pid") }

func (c *Config) ReadyTimeout() time.Duration {
	return time.Duration(c.Daemon.ReadyTimeoutSeconds) * time.Second
}

func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.Daemon.StopTimeoutSeconds) * time.Second
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Daemon.StateDir, c.Logging.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return faults.Wrap(faults.ErrResource, "config", "create directory", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if strings.HasPrefix(pathValue, "~/") {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath applies the package's path expansion rules.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the sample configuration to path. An existing file is
// left untouched unless overwrite is set.
func CreateSample(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return faults.Wrap(faults.ErrConfiguration, "config", "init", fmt.Sprintf("%s already exists", path), nil)
		}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
