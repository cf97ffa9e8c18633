package indicator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"actled/internal/counter"
	"actled/internal/faults"
	"actled/internal/led"
	"actled/internal/logging"
	"actled/internal/testsupport"
)

type scriptedSource struct {
	samples     []counter.Sample
	next        int
	onExhausted func()
	err         error
	closed      bool
}

func (f *scriptedSource) Sample() (counter.Sample, error) {
	if f.next >= len(f.samples) {
		if f.err != nil {
			return nil, f.err
		}
		return f.samples[len(f.samples)-1], nil
	}
	s := f.samples[f.next]
	f.next++
	if f.next == len(f.samples) && f.onExhausted != nil {
		f.onExhausted()
	}
	return s, nil
}

func (f *scriptedSource) Names() []string { return []string{"a", "b"} }
func (f *scriptedSource) Path() string    { return "scripted" }
func (f *scriptedSource) Close() error    { f.closed = true; return nil }

type recordingDriver struct {
	levels []bool
	failOn bool
	closed bool
}

func (d *recordingDriver) Write(on bool) error {
	if on && d.failOn {
		return errors.New("device gone")
	}
	d.levels = append(d.levels, on)
	return nil
}

func (d *recordingDriver) Close() error { d.closed = true; return nil }
func (d *recordingDriver) Name() string { return "recording" }

func fakeOpeners(src *scriptedSource, drv *recordingDriver) openers {
	return openers{
		source: func(Options) (counter.Source, error) { return src, nil },
		driver: func(Options, *Lifecycle) (led.Driver, error) { return drv, nil },
	}
}

func testOptions() Options {
	return Options{Source: counter.KindDisk, Sink: led.KindGPIO, Interval: time.Millisecond}
}

func TestDiskScenario(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &scriptedSource{
		samples:     []counter.Sample{{10, 5}, {10, 5}, {12, 5}, {12, 5}, {12, 9}},
		onExhausted: cancel,
	}
	drv := &recordingDriver{}

	s, err := open(testOptions(), logging.NewNop(), fakeOpeners(src, drv))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	s.Close()

	want := []bool{false, true, false, true, false}
	if !slices.Equal(drv.levels, want) {
		t.Fatalf("levels = %v, want %v", drv.levels, want)
	}
	on := 0
	for _, level := range drv.levels {
		if level {
			on++
		}
	}
	if on != 2 || s.Writes() != 5 {
		t.Fatalf("on transitions = %d writes = %d", on, s.Writes())
	}
	if s.Samples() != 5 {
		t.Fatalf("samples = %d, want 5", s.Samples())
	}
	if s.State() != StateStopped || !drv.closed || !src.closed {
		t.Fatalf("expected stopped and released, state=%s driver=%t source=%t", s.State(), drv.closed, src.closed)
	}
}

func TestCancelBeforeFirstTickLeavesOutputOff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &scriptedSource{samples: []counter.Sample{{1, 1}, {2, 2}}}
	drv := &recordingDriver{}
	opts := testOptions()
	opts.Interval = time.Hour

	s, err := open(opts, logging.NewNop(), fakeOpeners(src, drv))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	s.Close()

	if !slices.Equal(drv.levels, []bool{false}) {
		t.Fatalf("levels = %v, want only the startup off", drv.levels)
	}
	if src.next != 1 {
		t.Fatalf("expected only the baseline sample, got %d", src.next)
	}
}

func TestSampleErrorStillDrains(t *testing.T) {
	src := &scriptedSource{
		samples: []counter.Sample{{1, 1}, {2, 1}},
		err:     fmt.Errorf("reread: %w", counter.ErrMissingFields),
	}
	drv := &recordingDriver{}

	s, err := open(testOptions(), logging.NewNop(), fakeOpeners(src, drv))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	err = s.Run(context.Background())
	if !errors.Is(err, counter.ErrMissingFields) {
		t.Fatalf("expected missing fields error, got %v", err)
	}
	if s.State() != StateDraining {
		t.Fatalf("state = %s, want draining", s.State())
	}
	s.Close()

	if !slices.Equal(drv.levels, []bool{false, true, false}) {
		t.Fatalf("levels = %v", drv.levels)
	}
}

func TestWriteErrorStopsRun(t *testing.T) {
	src := &scriptedSource{samples: []counter.Sample{{1}, {2}}}
	drv := &recordingDriver{failOn: true}

	s, err := open(testOptions(), logging.NewNop(), fakeOpeners(src, drv))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	err = s.Run(context.Background())
	if !errors.Is(err, faults.ErrResource) {
		t.Fatalf("expected resource error, got %v", err)
	}
	s.Close()
	if !slices.Equal(drv.levels, []bool{false}) {
		t.Fatalf("levels = %v", drv.levels)
	}
}

func TestRunTwiceFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &scriptedSource{samples: []counter.Sample{{1}}}
	s, err := open(testOptions(), logging.NewNop(), fakeOpeners(src, &recordingDriver{}))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := s.Run(ctx); err == nil {
		t.Fatal("expected second Run to fail")
	}
}

func TestOpenFailureRestoresTrigger(t *testing.T) {
	tree := testsupport.NewLEDTree(t, "heartbeat")
	opts := testOptions()
	opts.Sink = led.KindBrightness
	opts.Brightness = BrightnessOptions{Path: tree.Brightness, TriggerPath: tree.Trigger}

	src := &scriptedSource{samples: []counter.Sample{{1}}}
	op := openers{
		source: func(Options) (counter.Source, error) { return src, nil },
		driver: func(Options, *Lifecycle) (led.Driver, error) {
			return nil, faults.Wrap(faults.ErrResource, "led", "open", "brightness", errors.New("permission denied"))
		},
	}

	_, err := open(opts, logging.NewNop(), op)
	if !errors.Is(err, faults.ErrResource) {
		t.Fatalf("expected resource error, got %v", err)
	}
	if got := testsupport.ReadFile(t, tree.Trigger); got != "heartbeat\n" {
		t.Fatalf("trigger = %q, want heartbeat restored", got)
	}
	if !src.closed {
		t.Fatal("expected source closed after failed open")
	}
}

func TestOpenRejectsZeroInterval(t *testing.T) {
	opts := testOptions()
	opts.Interval = 0
	if _, err := open(opts, nil, fakeOpeners(&scriptedSource{}, &recordingDriver{})); !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestBrightnessSessionEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRefresh(10))
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}

	s, err := Open(opts, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := testsupport.ReadFile(t, cfg.Brightness.TriggerPath); got != "none\n" {
		t.Fatalf("trigger while running = %q", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	s.Close()

	if got := testsupport.ReadFile(t, cfg.Brightness.Path); got != "0\n" {
		t.Fatalf("brightness = %q, want a single off write", got)
	}
	if got := testsupport.ReadFile(t, cfg.Brightness.TriggerPath); got != "mmc0\n" {
		t.Fatalf("trigger after stop = %q", got)
	}
	if s.Samples() < 2 {
		t.Fatalf("expected polling to sample, got %d samples", s.Samples())
	}
}

func TestGPIOSessionEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithNetSource(
		testsupport.NetDevRow{Name: "lo", RxPackets: 9999, TxPackets: 9999},
		testsupport.NetDevRow{Name: "eth0", RxPackets: 100, TxPackets: 50},
	), testsupport.WithGPIOSink())
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if opts.GPIO.Line != 7 {
		t.Fatalf("line = %d, want 7 for the net source", opts.GPIO.Line)
	}

	s, err := Open(opts, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.OutputName() != "gpio7" {
		t.Fatalf("output = %q", s.OutputName())
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	s.Close()

	value := testsupport.ReadFile(t, cfg.GPIO.SysfsRoot+"/gpio7/value")
	if value[0] != '0' {
		t.Fatalf("value = %q, want off", value)
	}
	if got := testsupport.ReadFile(t, cfg.GPIO.SysfsRoot+"/unexport"); got != "" {
		t.Fatalf("pre-exported line must stay exported, unexport = %q", got)
	}
}
