package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"actled/internal/config"
	"actled/internal/faults"
	"actled/internal/logging"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(data)
}

func TestConsoleLoggerFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, closeLog, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = closeLog() })

	logging.NewComponentLogger(logger, "indicator").Info("state changed",
		logging.String(logging.FieldState, "running"),
		logging.String("path", "/sys/class/leds/led0/brightness"),
		logging.String("note", "has space"),
	)

	content := readLog(t, logPath)
	for _, want := range []string{
		" INFO indicator: state changed",
		"state=running",
		"path=/sys/class/leds/led0/brightness",
		`note="has space"`,
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
	if strings.Contains(content, "component=") {
		t.Fatalf("component should be rendered as a prefix, got %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "debug.log")
	logger, closeLog, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = closeLog() })
	logger.Debug("sample taken")

	if content := readLog(t, logPath); !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information, got %q", content)
	}
}

func TestJSONLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, closeLog, err := logging.New(logging.Options{Format: "json", Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = closeLog() })
	logger.Info("dropped")
	logging.WarnWithContext(logger, "trigger restore failed", "trigger_restore_failed")

	content := readLog(t, logPath)
	if strings.Contains(content, "dropped") {
		t.Fatalf("info line should be filtered at warn level: %q", content)
	}
	for _, want := range []string{`"level":"warn"`, `"ts":`, `"event_type":"trigger_restore_failed"`, `"error_hint":`, `"impact":`} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %s in %q", want, content)
		}
	}
}

func TestNewRejectsUnknownValues(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, _, err := logging.New(logging.Options{Level: "chatty"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewFromConfigWritesRunLog(t *testing.T) {
	cfg := config.Default()
	logPath := filepath.Join(t.TempDir(), "logs", "run.log")

	logger, closeLog, err := logging.NewFromConfig(&cfg, logPath)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello")
	if err := closeLog(); err != nil {
		t.Fatalf("close run log: %v", err)
	}
	if content := readLog(t, logPath); !strings.Contains(content, "hello") {
		t.Fatalf("expected message in run log, got %q", content)
	}
	if err := closeLog(); err == nil {
		t.Fatal("expected second close to report the file already closed")
	}
}

func TestErrorKindField(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "kind.log")
	logger, closeLog, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closeLog()

	cause := faults.Wrap(faults.ErrConfiguration, "led", "gpio pin", "out of range", nil)
	logging.ErrorWithContext(logger, "setup failed", "setup_failed", logging.Error(cause), logging.ErrorKind(cause))
	if content := readLog(t, logPath); !strings.Contains(content, "error_kind=configuration") {
		t.Fatalf("expected error_kind in %q", content)
	}
}

func TestErrorWithContextKeepsExplicitFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "err.log")
	logger, closeLog, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = closeLog() })
	logging.ErrorWithContext(logger, "sample failed", "sample_failed",
		logging.String(logging.FieldErrorHint, "check /proc is mounted"))

	content := readLog(t, logPath)
	if !strings.Contains(content, `error_hint="check /proc is mounted"`) {
		t.Fatalf("explicit hint lost: %q", content)
	}
	if strings.Count(content, "error_hint=") != 1 {
		t.Fatalf("expected a single hint, got %q", content)
	}
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("ignored")
	logging.WarnWithContext(nil, "ignored", "noop")
	if logging.NewComponentLogger(nil, "x") == nil {
		t.Fatal("expected a logger for nil base")
	}
}
