package indicator

import (
	"log/slog"

	"actled/internal/logging"
)

type cleanup struct {
	name string
	fn   func() error
}

// Lifecycle collects release functions for acquired resources and runs them
// in reverse order of registration.
type Lifecycle struct {
	logger   *slog.Logger
	cleanups []cleanup
}

func NewLifecycle(logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Lifecycle{logger: logger}
}

// Defer registers fn to run at teardown under name.
func (l *Lifecycle) Defer(name string, fn func() error) {
	l.cleanups = append(l.cleanups, cleanup{name: name, fn: fn})
}

// Pending reports how many cleanups are registered.
func (l *Lifecycle) Pending() int { return len(l.cleanups) }

// Teardown runs every registered cleanup, last registered first. A failing
// cleanup is logged and does not stop the rest. It returns the number of
// failures.
func (l *Lifecycle) Teardown() int {
	failed := 0
	for i := len(l.cleanups) - 1; i >= 0; i-- {
		c := l.cleanups[i]
		if err := c.fn(); err != nil {
			failed++
			logging.WarnWithContext(l.logger, "cleanup failed", "cleanup_failed",
				logging.String("resource", c.name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on the sysfs attribute"),
				logging.String(logging.FieldImpact, "the device may be left in manual mode"),
			)
			continue
		}
		l.logger.Debug("released", logging.String("resource", c.name))
	}
	l.cleanups = nil
	return failed
}
