package daemonctl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"actled/internal/config"
	"actled/internal/daemonrun"
	"actled/internal/faults"
)

// ErrNotRunning indicates no instance holds the lock.
var ErrNotRunning = errors.New("actled is not running")

// ReadyFlag is the hidden flag that hands the readiness descriptor to a
// detached child.
const ReadyFlag = "--ready-fd"

// readyFD is the descriptor number of the first ExtraFiles entry.
const readyFD = 3

const releasePollInterval = 50 * time.Millisecond

// Status describes the instance owning a state directory.
type Status struct {
	Running  bool
	PID      int
	LockPath string
	PIDPath  string
}

// Probe reports whether an instance currently holds the lock.
func Probe(cfg *config.Config) (Status, error) {
	status := Status{LockPath: cfg.LockPath(), PIDPath: cfg.PIDPath()}
	if _, err := os.Stat(status.LockPath); errors.Is(err, os.ErrNotExist) {
		return status, nil
	}
	lock := flock.New(status.LockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return status, faults.Wrap(faults.ErrResource, "daemonctl", "probe lock", status.LockPath, err)
	}
	if ok {
		_ = lock.Unlock()
		return status, nil
	}
	status.Running = true
	status.PID = daemonrun.ReadPID(status.PIDPath)
	return status, nil
}

// Launch starts executable detached with args plus the readiness flag and
// waits for the child to report. It returns the child's pid once the child
// reported it is polling; a setup error reported by the child is returned
// with the child's message.
func Launch(ctx context.Context, executable string, args []string, timeout time.Duration) (int, error) {
	if strings.TrimSpace(executable) == "" {
		return 0, faults.Wrap(faults.ErrResource, "daemonctl", "launch", "executable path is empty", nil)
	}

	r, w, err := os.Pipe()
	if err != nil {
		return 0, faults.Wrap(faults.ErrResource, "daemonctl", "launch", "create readiness pipe", err)
	}
	defer r.Close()

	argv := append(append([]string{}, args...), fmt.Sprintf("%s=%d", ReadyFlag, readyFD))
	proc := exec.Command(executable, argv...)
	proc.ExtraFiles = []*os.File{w}
	proc.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := proc.Start(); err != nil {
		_ = w.Close()
		return 0, faults.Wrap(faults.ErrResource, "daemonctl", "launch", executable, err)
	}
	_ = w.Close()

	line, err := awaitReady(ctx, r, timeout)
	if err != nil {
		_ = proc.Process.Kill()
		_ = proc.Wait()
		return 0, err
	}
	if line != daemonrun.ReadyOK {
		_ = proc.Wait()
		if line == "" {
			return 0, faults.Wrap(faults.ErrResource, "daemonctl", "launch", "daemon exited before reporting readiness", nil)
		}
		return 0, fmt.Errorf("daemon setup failed: %s", line)
	}

	pid := proc.Process.Pid
	return pid, proc.Process.Release()
}

func awaitReady(ctx context.Context, r *os.File, timeout time.Duration) (string, error) {
	if timeout > 0 {
		_ = r.SetReadDeadline(time.Now().Add(timeout))
	}
	type result struct {
		line string
		err  error
	}
	results := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(r).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		results <- result{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		_ = r.SetReadDeadline(time.Now())
		return "", ctx.Err()
	case res := <-results:
		if errors.Is(res.err, os.ErrDeadlineExceeded) {
			return "", faults.Wrap(faults.ErrResource, "daemonctl", "launch", fmt.Sprintf("no readiness report within %s", timeout), nil)
		}
		if res.err != nil {
			return "", faults.Wrap(faults.ErrResource, "daemonctl", "launch", "read readiness report", res.err)
		}
		return res.line, nil
	}
}

// Stop sends SIGTERM to the running instance and waits until it releases
// the lock or timeout elapses.
func Stop(ctx context.Context, cfg *config.Config, timeout time.Duration) (Status, error) {
	status, err := Probe(cfg)
	if err != nil {
		return status, err
	}
	if !status.Running {
		return status, ErrNotRunning
	}
	if status.PID <= 0 {
		return status, faults.Wrap(faults.ErrResource, "daemonctl", "stop", fmt.Sprintf("lock is held but %s has no pid", status.PIDPath), nil)
	}
	if status.PID == os.Getpid() {
		return status, faults.Wrap(faults.ErrResource, "daemonctl", "stop", fmt.Sprintf("refusing to signal current process (pid %d)", status.PID), nil)
	}
	if err := syscall.Kill(status.PID, syscall.SIGTERM); err != nil {
		return status, faults.Wrap(faults.ErrResource, "daemonctl", "stop", fmt.Sprintf("signal pid %d", status.PID), err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := waitReleased(ctx, cfg); err != nil {
		return status, faults.Wrap(faults.ErrResource, "daemonctl", "stop", fmt.Sprintf("pid %d still holds %s", status.PID, status.LockPath), err)
	}
	return status, nil
}

// waitReleased re-probes the lock whenever the state directory changes and
// at least every releasePollInterval until no instance holds it.
func waitReleased(ctx context.Context, cfg *config.Config) error {
	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if watcher, err := fsnotify.NewWatcher(); err == nil {
		defer watcher.Close()
		if err := watcher.Add(cfg.Daemon.StateDir); err == nil {
			events = watcher.Events
			watchErrs = watcher.Errors
		}
	}

	ticker := time.NewTicker(releasePollInterval)
	defer ticker.Stop()
	for {
		current, err := Probe(cfg)
		if err == nil && !current.Running {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		case _, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
			}
		}
	}
}
