package daemonrun

import (
	"fmt"
	"os"
	"strings"
)

// ReadyOK is the line a detached child writes once it is polling.
const ReadyOK = "ok"

// readiness reports the outcome of initialization to the parent that
// launched a detached run. The zero value reports nowhere.
type readiness struct {
	file *os.File
}

func newReadiness(fd int) *readiness {
	if fd <= 0 {
		return &readiness{}
	}
	return &readiness{file: os.NewFile(uintptr(fd), "ready")}
}

// report writes "ok" for a nil err or the error text otherwise, then closes
// the pipe. Only the first call has an effect.
func (r *readiness) report(err error) {
	if r.file == nil {
		return
	}
	line := ReadyOK
	if err != nil {
		line = strings.ReplaceAll(err.Error(), "\n", " ")
	}
	_, _ = fmt.Fprintln(r.file, line)
	_ = r.file.Close()
	r.file = nil
}
