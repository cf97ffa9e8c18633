package daemonctl_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"actled/internal/config"
	"actled/internal/daemonctl"
	"actled/internal/testsupport"
)

const helperEnv = "ACTLED_HELPER_MODE"

// TestHelperProcess is not a real test. Launch re-executes the test binary
// with helperEnv set so the child can play the daemon.
func TestHelperProcess(t *testing.T) {
	mode := os.Getenv(helperEnv)
	if mode == "" {
		return
	}
	ready := os.NewFile(3, "ready")
	switch mode {
	case "serve":
		lock := flock.New(os.Getenv("ACTLED_HELPER_LOCK"))
		if ok, err := lock.TryLock(); err != nil || !ok {
			fmt.Fprintln(ready, "lock unavailable")
			os.Exit(1)
		}
		pidPath := os.Getenv("ACTLED_HELPER_PID")
		_ = os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGTERM)
		fmt.Fprintln(ready, "ok")
		_ = ready.Close()
		select {
		case <-signals:
		case <-time.After(30 * time.Second):
		}
		_ = os.Remove(pidPath)
		_ = lock.Unlock()
		os.Exit(0)
	case "fail":
		fmt.Fprintln(ready, "configuration error: config: gpio.pin: bad pin")
		os.Exit(1)
	case "silent":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	}
	os.Exit(2)
}

func launchHelper(t *testing.T, mode string, timeout time.Duration) (int, error) {
	t.Helper()
	t.Setenv(helperEnv, mode)
	return daemonctl.Launch(context.Background(), os.Args[0], []string{"-test.run=^TestHelperProcess$", "--"}, timeout)
}

func stateConfig(t *testing.T) *config.Config {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Daemon.StateDir, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ACTLED_HELPER_LOCK", cfg.LockPath())
	t.Setenv("ACTLED_HELPER_PID", cfg.PIDPath())
	return cfg
}

func TestProbeWithoutLockFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	status, err := daemonctl.Probe(cfg)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if status.Running {
		t.Fatal("expected not running")
	}
	if _, err := daemonctl.Stop(context.Background(), cfg, time.Second); !errors.Is(err, daemonctl.ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}

func TestLaunchProbeStop(t *testing.T) {
	cfg := stateConfig(t)

	pid, err := launchHelper(t, "serve", 10*time.Second)
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if pid <= 0 {
		t.Fatalf("unexpected pid %d", pid)
	}

	status, err := daemonctl.Probe(cfg)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !status.Running || status.PID != pid {
		t.Fatalf("probe = %+v, want running pid %d", status, pid)
	}

	if _, err := daemonctl.Stop(context.Background(), cfg, 10*time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	status, err = daemonctl.Probe(cfg)
	if err != nil || status.Running {
		t.Fatalf("expected stopped, got %+v (%v)", status, err)
	}
}

func TestLaunchRelaysSetupError(t *testing.T) {
	stateConfig(t)
	_, err := launchHelper(t, "fail", 10*time.Second)
	if err == nil || !strings.Contains(err.Error(), "bad pin") {
		t.Fatalf("expected child error, got %v", err)
	}
}

func TestLaunchTimesOut(t *testing.T) {
	stateConfig(t)
	start := time.Now()
	_, err := launchHelper(t, "silent", 200*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "no readiness report") {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if time.Since(start) > 10*time.Second {
		t.Fatal("Launch did not honour its timeout")
	}
}

func TestLaunchRequiresExecutable(t *testing.T) {
	if _, err := daemonctl.Launch(context.Background(), " ", nil, time.Second); err == nil {
		t.Fatal("expected error for empty executable")
	}
}
