package daemonrun

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"actled/internal/faults"
)

// instance holds the single-instance lock and pid file for one run.
type instance struct {
	lock    *flock.Flock
	pidPath string
}

func acquireInstance(lockPath, pidPath string) (*instance, error) {
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, faults.Wrap(faults.ErrResource, "daemon", "acquire lock", lockPath, err)
	}
	if !ok {
		msg := "another actled instance is already running"
		if pid := ReadPID(pidPath); pid > 0 {
			msg = fmt.Sprintf("%s (pid %d)", msg, pid)
		}
		return nil, faults.Wrap(faults.ErrResource, "daemon", "acquire lock", msg, nil)
	}

	if err := writePIDFile(pidPath); err != nil {
		_ = lock.Unlock()
		return nil, faults.Wrap(faults.ErrResource, "daemon", "write pid file", pidPath, err)
	}
	return &instance{lock: lock, pidPath: pidPath}, nil
}

func (i *instance) release() error {
	if err := os.Remove(i.pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = i.lock.Unlock()
		return err
	}
	return i.lock.Unlock()
}

func writePIDFile(path string) error {
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

// ReadPID returns the pid recorded at path, or 0 when it is missing or
// unreadable.
func ReadPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0
	}
	return pid
}
