package led_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"actled/internal/faults"
	"actled/internal/led"
	"actled/internal/testsupport"
)

func TestBCMPin(t *testing.T) {
	tests := []struct {
		pin    int
		scheme led.Scheme
		want   int
	}{
		{pin: 10, scheme: led.SchemeWiringPi, want: 8},
		{pin: 11, scheme: led.SchemeWiringPi, want: 7},
		{pin: 0, scheme: led.SchemeWiringPi, want: 17},
		{pin: 29, scheme: led.SchemeWiringPi, want: 21},
		{pin: 26, scheme: led.SchemeBCM, want: 26},
	}
	for _, tt := range tests {
		got, err := led.BCMPin(tt.pin, tt.scheme)
		if err != nil {
			t.Fatalf("BCMPin(%d, %s): %v", tt.pin, tt.scheme, err)
		}
		if got != tt.want {
			t.Fatalf("BCMPin(%d, %s) = %d, want %d", tt.pin, tt.scheme, got, tt.want)
		}
	}

	for _, pin := range []int{-1, 30} {
		if _, err := led.BCMPin(pin, led.SchemeWiringPi); !errors.Is(err, faults.ErrConfiguration) {
			t.Fatalf("BCMPin(%d) expected configuration error, got %v", pin, err)
		}
	}
	if _, err := led.BCMPin(54, led.SchemeBCM); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error for bcm 54, got %v", err)
	}
}

func TestParseScheme(t *testing.T) {
	if s, err := led.ParseScheme(""); err != nil || s != led.SchemeWiringPi {
		t.Fatalf("ParseScheme(\"\") = %q, %v", s, err)
	}
	if s, err := led.ParseScheme("BCM"); err != nil || s != led.SchemeBCM {
		t.Fatalf("ParseScheme(BCM) = %q, %v", s, err)
	}
	if _, err := led.ParseScheme("physical"); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestGPIOAlreadyExported(t *testing.T) {
	tree := testsupport.NewGPIOTree(t)
	dir := tree.AddPin(t, 8)

	drv, err := led.OpenGPIO(tree.Root, 8)
	if err != nil {
		t.Fatalf("OpenGPIO: %v", err)
	}
	if drv.Exported() {
		t.Fatal("pre-existing line must not be marked as exported by us")
	}
	if got := testsupport.ReadFile(t, filepath.Join(dir, "direction")); got != "out\n" {
		t.Fatalf("direction = %q", got)
	}

	if err := drv.Write(true); err != nil {
		t.Fatalf("Write(true): %v", err)
	}
	if got := testsupport.ReadFile(t, filepath.Join(dir, "value")); !strings.HasPrefix(got, "1") {
		t.Fatalf("value after on = %q", got)
	}
	if err := drv.Write(false); err != nil {
		t.Fatalf("Write(false): %v", err)
	}
	if got := testsupport.ReadFile(t, filepath.Join(dir, "value")); !strings.HasPrefix(got, "0") {
		t.Fatalf("value after off = %q", got)
	}

	if err := drv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := drv.Unexport(); err != nil {
		t.Fatalf("Unexport: %v", err)
	}
	if got := testsupport.ReadFile(t, tree.Unexport); got != "" {
		t.Fatalf("unexport must stay untouched, got %q", got)
	}
	if drv.Name() != "gpio8" || drv.Line() != 8 {
		t.Fatalf("unexpected identity %s/%d", drv.Name(), drv.Line())
	}
}

func TestGPIOExportsLine(t *testing.T) {
	tree := testsupport.NewGPIOTree(t)

	// Stand in for the kernel: create the line directory shortly after export.
	done := make(chan struct{})
	go func() {
		defer close(done)
		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			data, _ := os.ReadFile(tree.Export)
			if strings.TrimSpace(string(data)) == "7" {
				dir := filepath.Join(tree.Root, "gpio7")
				_ = os.MkdirAll(dir, 0o755)
				// value first: the driver opens it right after direction succeeds.
				_ = os.WriteFile(filepath.Join(dir, "value"), []byte("0\n"), 0o644)
				_ = os.WriteFile(filepath.Join(dir, "direction"), []byte("in\n"), 0o644)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	drv, err := led.OpenGPIO(tree.Root, 7)
	<-done
	if err != nil {
		t.Fatalf("OpenGPIO: %v", err)
	}
	if !drv.Exported() {
		t.Fatal("expected line to be marked exported")
	}
	if err := drv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := drv.Unexport(); err != nil {
		t.Fatalf("Unexport: %v", err)
	}
	if got := testsupport.ReadFile(t, tree.Unexport); got != "7\n" {
		t.Fatalf("unexport = %q, want 7", got)
	}
}

func TestGPIOExportFailure(t *testing.T) {
	root := filepath.Join(t.TempDir(), "gpio")
	_, err := led.OpenGPIO(root, 4)
	if !errors.Is(err, faults.ErrResource) {
		t.Fatalf("expected resource error, got %v", err)
	}
}
