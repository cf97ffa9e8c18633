package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.Source.Kind = lower(c.Source.Kind)
	c.Sink.Kind = lower(c.Sink.Kind)
	c.GPIO.Scheme = lower(c.GPIO.Scheme)
	c.Logging.Format = lower(c.Logging.Format)
	c.Logging.Level = lower(c.Logging.Level)
	c.Brightness.RestoreTrigger = strings.TrimSpace(c.Brightness.RestoreTrigger)
	c.Brightness.OnValue = strings.TrimSpace(c.Brightness.OnValue)
	c.Brightness.OffValue = strings.TrimSpace(c.Brightness.OffValue)

	if c.Source.ExcludeInterfaces != nil {
		cleaned := make([]string, 0, len(c.Source.ExcludeInterfaces))
		for _, name := range c.Source.ExcludeInterfaces {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		c.Source.ExcludeInterfaces = cleaned
	}
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"source.path", &c.Source.Path},
		{"brightness.path", &c.Brightness.Path},
		{"brightness.trigger_path", &c.Brightness.TriggerPath},
		{"gpio.sysfs_root", &c.GPIO.SysfsRoot},
		{"daemon.state_dir", &c.Daemon.StateDir},
		{"logging.log_dir", &c.Logging.LogDir},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func lower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
