package counter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"actled/internal/faults"
)

// maxLineLength bounds a single /proc line; /proc/net/dev rows stay well below it.
const maxLineLength = 64 * 1024

// procFile is a read-only descriptor that is rewound instead of reopened.
type procFile struct {
	path string
	fd   int
	buf  []byte
}

func openProcFile(path string) (*procFile, error) {
	var fd int
	var err error
	for {
		fd, err = unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		return nil, faults.Wrap(faults.ErrResource, "counter", "open", path, &os.PathError{Op: "open", Path: path, Err: err})
	}
	return &procFile{path: path, fd: fd, buf: make([]byte, 0, 4096)}, nil
}

// scanner rewinds the file and returns a line scanner starting at offset zero.
// The scanner reuses the file's line buffer across passes.
func (f *procFile) scanner() (*bufio.Scanner, error) {
	if err := f.rewind(); err != nil {
		return nil, err
	}
	if err := f.flush(); err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(f.buf[:0], maxLineLength)
	return sc, nil
}

func (f *procFile) rewind() error {
	if f.fd < 0 {
		return fmt.Errorf("%w: %s: %w", ErrRewind, f.path, os.ErrClosed)
	}
	for {
		_, err := unix.Seek(f.fd, 0, io.SeekStart)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrRewind, f.path, err)
		}
		return nil
	}
}

// flush drops read-ahead from the previous pass and confirms the kernel
// position agrees with the empty buffer.
func (f *procFile) flush() error {
	f.buf = f.buf[:0]
	for {
		pos, err := unix.Seek(f.fd, 0, io.SeekCurrent)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrFlush, f.path, err)
		}
		if pos != 0 {
			return fmt.Errorf("%w: %s: position %d after rewind", ErrFlush, f.path, pos)
		}
		return nil
	}
}

// Read implements io.Reader, retrying reads interrupted by signal delivery.
func (f *procFile) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Read(f.fd, p)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, &os.PathError{Op: "read", Path: f.path, Err: err}
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

func (f *procFile) Close() error {
	if f == nil || f.fd < 0 {
		return nil
	}
	err := unix.Close(f.fd)
	f.fd = -1
	if err != nil {
		return &os.PathError{Op: "close", Path: f.path, Err: err}
	}
	return nil
}
