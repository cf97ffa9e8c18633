package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"actled/internal/config"
	"actled/internal/faults"
	"actled/internal/hotplug"
	"actled/internal/indicator"
	"actled/internal/logging"
)

// Options configures one daemon run.
type Options struct {
	// ReadyFD is an inherited descriptor on which the initialization outcome
	// is reported. Zero disables reporting.
	ReadyFD int
	// Detached additionally writes the log to a per-run file.
	Detached bool
}

// Run executes the indicator until SIGHUP, SIGINT or SIGTERM, cancellation of
// cmdCtx, or removal of the output device. Setup errors are returned before
// the output is driven; the output is off and the trigger restored on every
// return path after that.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) (err error) {
	ready := newReadiness(opts.ReadyFD)
	defer func() { ready.report(err) }()

	if cfg == nil {
		return faults.Wrap(faults.ErrConfiguration, "daemon", "run", "config is required", nil)
	}

	signalCtx, stop := signal.NotifyContext(cmdCtx, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	runID := uuid.NewString()
	logPath := ""
	if opts.Detached {
		logPath = logging.RunLogPath(cfg.Logging.LogDir, time.Now(), runID)
	}
	logger, closeLog, err := logging.NewFromConfig(cfg, logPath)
	if err != nil {
		return faults.Wrap(faults.ErrConfiguration, "daemon", "init logger", "", err)
	}
	defer closeLog()
	logger = logger.With(logging.String(logging.FieldRunID, runID))

	if logPath != "" {
		if err := ensureCurrentLogPointer(cfg.Logging.LogDir, logPath); err != nil {
			logging.WarnWithContext(logger, "unable to update actled.log link", "log_pointer_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "actled.log may point at an older run"),
			)
		}
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
			Dir:     cfg.Logging.LogDir,
			Pattern: logging.RunLogPattern,
			Exclude: []string{logPath},
		})
	}

	inst, err := acquireInstance(cfg.LockPath(), cfg.PIDPath())
	if err != nil {
		logging.ErrorWithContext(logger, "instance lock unavailable", "lock_failed",
			logging.Error(err),
			logging.ErrorKind(err),
			logging.String(logging.FieldErrorHint, "stop the running instance with 'actled stop'"),
		)
		return err
	}
	defer func() {
		if releaseErr := inst.release(); releaseErr != nil {
			logging.WarnWithContext(logger, "failed to release instance lock", "lock_release_failed",
				logging.Error(releaseErr),
				logging.String(logging.FieldImpact, "a stale pid file may remain"),
			)
		}
	}()

	sessionOpts, err := indicator.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	session, err := indicator.Open(sessionOpts, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "indicator setup failed", "setup_failed",
			logging.Error(err),
			logging.ErrorKind(err),
			logging.String(logging.FieldErrorHint, "run 'actled check' to test the configured paths"),
		)
		return err
	}
	defer session.Close()

	runCtx, cancelRun := context.WithCancel(signalCtx)
	defer cancelRun()

	if cfg.Hotplug.Enabled {
		target, targetErr := hotplug.TargetFromConfig(cfg)
		if targetErr == nil {
			watcher := hotplug.New(target, logger, cancelRun)
			watcher.Start(runCtx)
			defer watcher.Stop()
		}
	}

	logger.Info("actled started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.Int("pid", os.Getpid()),
		logging.String("source", sessionOpts.SourcePath),
		logging.String("output", session.OutputName()),
		logging.Duration("refresh", sessionOpts.Interval),
		logging.Bool("detached", opts.Detached),
	)
	ready.report(nil)

	err = session.Run(runCtx)
	logger.Info("actled stopping",
		logging.String(logging.FieldEventType, "daemon_stopping"),
		logging.Bool("signalled", signalCtx.Err() != nil),
	)
	return err
}

// ensureCurrentLogPointer points logDir/actled.log at the newest run log.
func ensureCurrentLogPointer(logDir, target string) error {
	current := filepath.Join(logDir, "actled.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}
