package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"actled/internal/config"
	"actled/internal/counter"
	"actled/internal/led"
)

// CheckSource opens the configured statistics file and takes one sample.
func CheckSource(cfg *config.Config) Result {
	name := fmt.Sprintf("Source (%s)", cfg.SourceKind())
	source, err := counter.Open(cfg.SourceKind(), cfg.SourcePath(), cfg.Source.ExcludeInterfaces)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer source.Close()

	sample, err := source.Sample()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", source.Path(), err)}
	}
	fields := make([]string, 0, len(sample))
	for i, value := range sample {
		fields = append(fields, fmt.Sprintf("%s=%d", source.Names()[i], value))
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", source.Path(), strings.Join(fields, " "))}
}

// CheckAttribute verifies that a sysfs attribute exists and is writable, and
// readable when read is set.
func CheckAttribute(name, path string, read bool) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	mode := uint32(unix.W_OK)
	if read {
		mode |= unix.R_OK
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (writable)", path)}
}

// CheckTrigger verifies the trigger attribute and reports the active trigger.
func CheckTrigger(path string) Result {
	const name = "LED trigger"
	result := CheckAttribute(name, path, true)
	if !result.Passed {
		return result
	}
	active, err := led.NewTrigger(path, "").Active()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if active == "" {
		active = "unknown"
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (active: %s)", path, active)}
}

// CheckGPIO verifies the line's value attribute when the line is already
// exported and the export attribute otherwise.
func CheckGPIO(cfg *config.Config) Result {
	line, err := cfg.GPIOLine()
	if err != nil {
		return Result{Name: "GPIO", Detail: err.Error()}
	}
	name := fmt.Sprintf("GPIO %d", line)
	value := filepath.Join(cfg.GPIO.SysfsRoot, fmt.Sprintf("gpio%d", line), "value")
	if _, err := os.Stat(value); err == nil {
		return CheckAttribute(name, value, false)
	}
	result := CheckAttribute(name, filepath.Join(cfg.GPIO.SysfsRoot, "export"), false)
	if result.Passed {
		result.Detail = fmt.Sprintf("%s (exportable)", filepath.Join(cfg.GPIO.SysfsRoot, "export"))
	}
	return result
}

// CheckStateDirectory verifies that path is a writable directory, or that it
// can be created under its nearest existing parent.
func CheckStateDirectory(name, path string) Result {
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	case err == nil:
		if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
	case !errors.Is(err, fs.ErrNotExist):
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}

	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}
