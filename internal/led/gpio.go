package led

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"actled/internal/faults"
)

const (
	DefaultGPIORoot = "/sys/class/gpio"

	// exportWait bounds how long udev may take to create and chown the
	// gpioN attributes after an export.
	exportWait  = time.Second
	exportRetry = 10 * time.Millisecond
)

// Scheme is a pin numbering scheme.
type Scheme string

const (
	SchemeWiringPi Scheme = "wiringpi"
	SchemeBCM      Scheme = "bcm"
)

// wiringPiToBCM maps wiringPi pins 0-29 to Broadcom GPIO numbers on
// Raspberry Pi revision 2 and later boards.
var wiringPiToBCM = [30]int{
	17, 18, 27, 22, 23, 24, 25, 4,
	2, 3, 8, 7, 10, 9, 11, 14,
	15, 28, 29, 30, 31, 5, 6, 13,
	19, 26, 12, 16, 20, 21,
}

// MaxWiringPiPin is the highest pin accepted in the wiringPi scheme.
const MaxWiringPiPin = len(wiringPiToBCM) - 1

// maxBCMPin is the highest GPIO on the BCM283x/BCM2711 header bank.
const maxBCMPin = 53

// ParseScheme validates a configured numbering scheme.
func ParseScheme(value string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(value))) {
	case SchemeWiringPi, "":
		return SchemeWiringPi, nil
	case SchemeBCM:
		return SchemeBCM, nil
	default:
		return "", faults.Wrap(faults.ErrConfiguration, "led", "gpio scheme", fmt.Sprintf("unsupported scheme %q (want wiringpi or bcm)", value), nil)
	}
}

// BCMPin translates pin in scheme to a Broadcom GPIO number.
func BCMPin(pin int, scheme Scheme) (int, error) {
	switch scheme {
	case SchemeWiringPi, "":
		if pin < 0 || pin > MaxWiringPiPin {
			return 0, faults.Wrap(faults.ErrConfiguration, "led", "gpio pin", fmt.Sprintf("pin number must be between 0 and %d", MaxWiringPiPin), nil)
		}
		return wiringPiToBCM[pin], nil
	case SchemeBCM:
		if pin < 0 || pin > maxBCMPin {
			return 0, faults.Wrap(faults.ErrConfiguration, "led", "gpio pin", fmt.Sprintf("pin number must be between 0 and %d", maxBCMPin), nil)
		}
		return pin, nil
	default:
		return 0, faults.Wrap(faults.ErrConfiguration, "led", "gpio pin", fmt.Sprintf("unsupported scheme %q", scheme), nil)
	}
}

// GPIO drives one sysfs GPIO line configured as an output.
type GPIO struct {
	root     string
	line     int
	exported bool
	value    *os.File
}

// OpenGPIO exports line under root when needed, configures it as an output
// and keeps its value attribute open.
func OpenGPIO(root string, line int) (*GPIO, error) {
	if root == "" {
		root = DefaultGPIORoot
	}
	g := &GPIO{root: root, line: line}
	dir := g.dir()

	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		if err := writeAttr(filepath.Join(root, "export"), strconv.Itoa(line)); err != nil {
			return nil, faults.Wrap(faults.ErrResource, "led", "export gpio", g.Name(), err)
		}
		g.exported = true
	}

	if err := g.configureOutput(); err != nil {
		g.Unexport() //nolint:errcheck
		return nil, err
	}

	value, err := os.OpenFile(filepath.Join(dir, "value"), os.O_WRONLY, 0)
	if err != nil {
		g.Unexport() //nolint:errcheck
		return nil, faults.Wrap(faults.ErrResource, "led", "open gpio value", g.Name(), err)
	}
	g.value = value
	return g, nil
}

// configureOutput sets the direction, retrying while udev finishes
// setting up a freshly exported line.
func (g *GPIO) configureOutput() error {
	path := filepath.Join(g.dir(), "direction")
	deadline := time.Now().Add(exportWait)
	for {
		err := writeAttr(path, "out")
		if err == nil {
			return nil
		}
		retryable := errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission)
		if !g.exported || !retryable || time.Now().After(deadline) {
			return faults.Wrap(faults.ErrResource, "led", "set gpio direction", g.Name(), err)
		}
		time.Sleep(exportRetry)
	}
}

// Write drives the line high (on) or low (off).
func (g *GPIO) Write(on bool) error {
	level := []byte{'0'}
	if on {
		level[0] = '1'
	}
	_, err := g.value.WriteAt(level, 0)
	return err
}

func (g *GPIO) Name() string { return fmt.Sprintf("gpio%d", g.line) }

// Line returns the kernel GPIO number.
func (g *GPIO) Line() int { return g.line }

// Exported reports whether this process exported the line.
func (g *GPIO) Exported() bool { return g.exported }

func (g *GPIO) Close() error {
	if g.value == nil {
		return nil
	}
	err := g.value.Close()
	g.value = nil
	return err
}

// Unexport releases the line if this process exported it.
func (g *GPIO) Unexport() error {
	if !g.exported {
		return nil
	}
	if err := writeAttr(filepath.Join(g.root, "unexport"), strconv.Itoa(g.line)); err != nil {
		return faults.Wrap(faults.ErrResource, "led", "unexport gpio", g.Name(), err)
	}
	g.exported = false
	return nil
}

func (g *GPIO) dir() string {
	return filepath.Join(g.root, g.Name())
}
