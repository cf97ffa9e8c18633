package led

import (
	"os"
	"path/filepath"

	"actled/internal/faults"
)

const (
	DefaultLEDDir        = "/sys/class/leds/led0"
	DefaultOnBrightness  = "255"
	DefaultOffBrightness = "0"
)

// Brightness writes to the brightness attribute of an LED class device.
type Brightness struct {
	path string
	file *os.File
	on   []byte
	off  []byte
}

// OpenBrightness opens the brightness attribute at path for writing. Empty
// values fall back to 255 and 0.
func OpenBrightness(path, onValue, offValue string) (*Brightness, error) {
	if onValue == "" {
		onValue = DefaultOnBrightness
	}
	if offValue == "" {
		offValue = DefaultOffBrightness
	}
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, faults.Wrap(faults.ErrResource, "led", "open brightness", path, err)
	}
	return &Brightness{
		path: path,
		file: file,
		on:   []byte(onValue + "\n"),
		off:  []byte(offValue + "\n"),
	}, nil
}

// Write issues a single unbuffered write so the kernel sees the level as soon
// as the call returns.
func (b *Brightness) Write(on bool) error {
	value := b.off
	if on {
		value = b.on
	}
	_, err := b.file.Write(value)
	return err
}

func (b *Brightness) Name() string { return b.path }

// Device returns the LED class device name (the attribute's directory).
func (b *Brightness) Device() string { return filepath.Base(filepath.Dir(b.path)) }

func (b *Brightness) Close() error {
	if b.file == nil {
		return nil
	}
	err := b.file.Close()
	b.file = nil
	return err
}
