package led

import (
	"fmt"
	"strings"

	"actled/internal/faults"
)

// Kind names an output driver variant.
type Kind string

const (
	KindBrightness Kind = "brightness"
	KindGPIO       Kind = "gpio"
)

// ParseKind validates a configured sink kind.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindBrightness:
		return KindBrightness, nil
	case KindGPIO:
		return KindGPIO, nil
	default:
		return "", faults.Wrap(faults.ErrConfiguration, "led", "kind", fmt.Sprintf("unsupported sink %q (want brightness or gpio)", value), nil)
	}
}

// Driver writes a level to the physical output.
type Driver interface {
	Write(on bool) error
	Close() error
	// Name identifies the output in logs.
	Name() string
}

// Output forwards level changes to a Driver. The level is unknown until the
// first successful write, so the first Set of either level reaches the
// hardware.
type Output struct {
	driver  Driver
	on      bool
	written bool
	writes  int
}

// NewOutput wraps driver.
func NewOutput(driver Driver) *Output {
	return &Output{driver: driver}
}

// Set drives the output to the requested level. It is a no-op when the level
// equals the last level written.
func (o *Output) Set(on bool) error {
	if o.written && on == o.on {
		return nil
	}
	if err := o.driver.Write(on); err != nil {
		return faults.Wrap(faults.ErrResource, "led", "write", o.driver.Name(), err)
	}
	o.on = on
	o.written = true
	o.writes++
	return nil
}

// On reports the last level written; false before the first write.
func (o *Output) On() bool { return o.on }

// Writes reports how many writes reached the driver.
func (o *Output) Writes() int { return o.writes }

// Name returns the driver name.
func (o *Output) Name() string { return o.driver.Name() }

// Close releases the driver. The caller is expected to have driven the
// output off first.
func (o *Output) Close() error {
	return o.driver.Close()
}
