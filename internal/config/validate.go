package config

import (
	"fmt"
	"strings"

	"actled/internal/counter"
	"actled/internal/faults"
	"actled/internal/led"
)

// Validate ensures the configuration is usable. Errors wrap
// faults.ErrConfiguration.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateSink(); err != nil {
		return err
	}
	if err := c.validateDaemon(); err != nil {
		return err
	}
	return c.validateLogging()
}

func invalid(field, message string) error {
	return faults.Wrap(faults.ErrConfiguration, "config", field, message, nil)
}

func (c *Config) validateSource() error {
	if _, err := counter.ParseKind(c.Source.Kind); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSink() error {
	kind, err := led.ParseKind(c.Sink.Kind)
	if err != nil {
		return err
	}
	switch kind {
	case led.KindBrightness:
		if strings.TrimSpace(c.Brightness.Path) == "" {
			return invalid("brightness.path", "must be set for the brightness sink")
		}
		if c.Brightness.OnValue == "" || c.Brightness.OffValue == "" {
			return invalid("brightness.on_value", "on_value and off_value must be set")
		}
		if c.Brightness.OnValue == c.Brightness.OffValue {
			return invalid("brightness.on_value", "on_value and off_value must differ")
		}
	case led.KindGPIO:
		if c.GPIO.Pin < AutoPin {
			return invalid("gpio.pin", fmt.Sprintf("must be %d (auto) or a pin number", AutoPin))
		}
		if c.GPIO.ChipBase < 0 {
			return invalid("gpio.chip_base", "must be non-negative")
		}
		if strings.TrimSpace(c.GPIO.SysfsRoot) == "" {
			return invalid("gpio.sysfs_root", "must be set for the gpio sink")
		}
		if _, err := c.GPIOLine(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.RefreshMS < MinRefreshMS {
		return invalid("daemon.refresh_ms", fmt.Sprintf("refresh time must be at least %d ms", MinRefreshMS))
	}
	if strings.TrimSpace(c.Daemon.StateDir) == "" {
		return invalid("daemon.state_dir", "must be set")
	}
	if c.Daemon.ReadyTimeoutSeconds <= 0 {
		return invalid("daemon.ready_timeout_seconds", "must be positive")
	}
	if c.Daemon.StopTimeoutSeconds <= 0 {
		return invalid("daemon.stop_timeout_seconds", "must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return invalid("logging.format", fmt.Sprintf("unsupported value %q (want console or json)", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return invalid("logging.level", fmt.Sprintf("unsupported value %q", c.Logging.Level))
	}
	if c.Logging.RetentionDays < 0 {
		return invalid("logging.retention_days", "must be zero (keep forever) or positive")
	}
	return nil
}
