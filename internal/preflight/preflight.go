package preflight

import (
	"actled/internal/config"
	"actled/internal/led"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to cfg's source and sink.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckSource(cfg)}
	switch cfg.SinkKind() {
	case led.KindGPIO:
		results = append(results, CheckGPIO(cfg))
	default:
		results = append(results,
			CheckAttribute("LED brightness", cfg.Brightness.Path, true),
			CheckTrigger(cfg.Brightness.TriggerPath),
		)
	}
	results = append(results,
		CheckStateDirectory("State directory", cfg.Daemon.StateDir),
		CheckStateDirectory("Log directory", cfg.Logging.LogDir),
	)
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
