package indicator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"actled/internal/activity"
	"actled/internal/counter"
	"actled/internal/faults"
	"actled/internal/led"
	"actled/internal/logging"
)

type openers struct {
	source func(Options) (counter.Source, error)
	driver func(Options, *Lifecycle) (led.Driver, error)
}

var systemOpeners = openers{source: openSource, driver: openDriver}

// Session owns the source, detector and output of one indicator run.
type Session struct {
	logger    *slog.Logger
	opts      Options
	lifecycle *Lifecycle
	source    counter.Source
	detector  activity.Detector
	output    *led.Output
	state     State
	samples   int
}

// Open performs the Initializing phase: it takes manual control of the LED,
// opens the source and the output, forces the output off and records the
// baseline sample. On failure everything already acquired is released.
func Open(opts Options, logger *slog.Logger) (*Session, error) {
	return open(opts, logger, systemOpeners)
}

func open(opts Options, logger *slog.Logger, op openers) (*Session, error) {
	if opts.Interval <= 0 {
		return nil, faults.Wrap(faults.ErrConfiguration, "indicator", "open", fmt.Sprintf("invalid interval %s", opts.Interval), nil)
	}
	logger = logging.NewComponentLogger(logger, "indicator")
	s := &Session{
		logger:    logger,
		opts:      opts,
		lifecycle: NewLifecycle(logger),
		state:     StateInitializing,
	}
	logger.Info("state changed",
		logging.String(logging.FieldState, s.state.String()),
		logging.String("source", string(opts.Source)),
		logging.String("sink", string(opts.Sink)),
	)

	if err := s.setup(op); err != nil {
		s.lifecycle.Teardown()
		s.state = StateStopped
		return nil, err
	}
	return s, nil
}

func (s *Session) setup(op openers) error {
	if s.opts.Sink == led.KindBrightness && s.opts.Brightness.TriggerPath != "" {
		trigger := led.NewTrigger(s.opts.Brightness.TriggerPath, s.opts.Brightness.RestoreTrigger)
		original, err := trigger.Disable()
		if err != nil {
			return err
		}
		s.lifecycle.Defer("trigger", func() error { return trigger.Restore(original) })
		s.logger.Debug("trigger disabled",
			logging.String("path", trigger.Path()),
			logging.String("restore", original),
		)
	}

	source, err := op.source(s.opts)
	if err != nil {
		return err
	}
	s.source = source
	s.lifecycle.Defer("source", source.Close)

	driver, err := op.driver(s.opts, s.lifecycle)
	if err != nil {
		return err
	}
	s.output = led.NewOutput(driver)
	s.lifecycle.Defer("output", s.output.Close)

	if err := s.output.Set(false); err != nil {
		return err
	}

	baseline, err := source.Sample()
	if err != nil {
		return err
	}
	s.samples++
	s.detector.Update(baseline)
	s.logger.Debug("baseline recorded",
		logging.String("path", source.Path()),
		logging.Any("counters", source.Names()),
	)
	return nil
}

func openSource(opts Options) (counter.Source, error) {
	return counter.Open(opts.Source, opts.SourcePath, opts.ExcludeInterfaces)
}

func openDriver(opts Options, lifecycle *Lifecycle) (led.Driver, error) {
	switch opts.Sink {
	case led.KindBrightness:
		return led.OpenBrightness(opts.Brightness.Path, opts.Brightness.OnValue, opts.Brightness.OffValue)
	case led.KindGPIO:
		gpio, err := led.OpenGPIO(opts.GPIO.Root, opts.GPIO.Line)
		if err != nil {
			return nil, err
		}
		lifecycle.Defer("gpio export", gpio.Unexport)
		return gpio, nil
	default:
		return nil, faults.Wrap(faults.ErrConfiguration, "indicator", "open", fmt.Sprintf("unsupported sink %q", opts.Sink), nil)
	}
}

// Run polls until ctx is cancelled or a sample or write fails, then drives
// the output off. Cancellation is a normal stop and returns nil.
func (s *Session) Run(ctx context.Context) error {
	if s.state != StateInitializing {
		return faults.Wrap(faults.ErrResource, "indicator", "run", fmt.Sprintf("session is %s", s.state), nil)
	}
	s.transition(StateRunning, logging.Duration("interval", s.opts.Interval))

	err := s.poll(ctx)
	if err != nil {
		logging.ErrorWithContext(s.logger, "polling stopped", "poll_failed",
			logging.Error(err),
			logging.ErrorKind(err),
			logging.String(logging.FieldErrorHint, "check that the source file and output device still exist"),
		)
	}
	if drainErr := s.drain(); err == nil {
		err = drainErr
	}
	return err
}

func (s *Session) poll(ctx context.Context) error {
	timer := time.NewTimer(s.opts.Interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		sample, err := s.source.Sample()
		if err != nil {
			return err
		}
		s.samples++
		if err := s.output.Set(s.detector.Update(sample)); err != nil {
			return err
		}
		timer.Reset(s.opts.Interval)
	}
}

func (s *Session) drain() error {
	s.transition(StateDraining)
	return s.output.Set(false)
}

// Close performs the Stopped phase. The output is forced off first when Run
// was never called; cleanup failures are logged only.
func (s *Session) Close() {
	switch s.state {
	case StateStopped:
		return
	case StateInitializing, StateRunning:
		if err := s.drain(); err != nil {
			logging.WarnWithContext(s.logger, "could not switch output off", "drain_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "the indicator may stay lit"),
			)
		}
	}
	failed := s.lifecycle.Teardown()
	s.transition(StateStopped,
		logging.Int("samples", s.samples),
		logging.Int("writes", s.output.Writes()),
		logging.Int("cleanup_failures", failed),
	)
}

func (s *Session) transition(next State, attrs ...logging.Attr) {
	s.state = next
	attrs = append([]logging.Attr{logging.String(logging.FieldState, next.String())}, attrs...)
	s.logger.Info("state changed", logging.Args(attrs...)...)
}

// State returns the current phase.
func (s *Session) State() State { return s.state }

// Writes returns how many level changes reached the output device.
func (s *Session) Writes() int { return s.output.Writes() }

// Samples returns how many samples were taken, including the baseline.
func (s *Session) Samples() int { return s.samples }

// OutputName identifies the output device.
func (s *Session) OutputName() string { return s.output.Name() }
