package counter

import (
	"fmt"
	"strings"

	"actled/internal/faults"
)

// Kind names a counter source variant.
type Kind string

const (
	KindDisk Kind = "disk"
	KindNet  Kind = "net"
)

const (
	DefaultVMStatPath = "/proc/vmstat"
	DefaultNetDevPath = "/proc/net/dev"
)

var (
	// ErrRewind reports that the source could not be repositioned to its start.
	ErrRewind = fmt.Errorf("%w: rewind source", faults.ErrResource)
	// ErrFlush reports that buffered read-ahead could not be discarded.
	ErrFlush = fmt.Errorf("%w: flush source buffer", faults.ErrResource)
	// ErrMissingFields reports that a pass ended before every required key was seen.
	ErrMissingFields = fmt.Errorf("%w: required fields missing", faults.ErrParse)
)

// Sample is one ordered set of counter values taken from a single pass.
type Sample []uint64

// Equal reports whether both samples carry the same values in the same order.
func (s Sample) Equal(other Sample) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Source produces samples from a kernel statistics file.
type Source interface {
	// Sample rereads the file and returns the tracked counters.
	Sample() (Sample, error)
	// Names lists the counters in Sample order.
	Names() []string
	// Path returns the file backing the source.
	Path() string
	Close() error
}

// ParseKind validates a configured source kind.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindDisk:
		return KindDisk, nil
	case KindNet:
		return KindNet, nil
	default:
		return "", faults.Wrap(faults.ErrConfiguration, "counter", "kind", fmt.Sprintf("unsupported source %q (want disk or net)", value), nil)
	}
}

// DefaultPath returns the conventional /proc file for kind.
func DefaultPath(kind Kind) string {
	if kind == KindNet {
		return DefaultNetDevPath
	}
	return DefaultVMStatPath
}

// Open builds the source for kind. An empty path selects the default file.
func Open(kind Kind, path string, excludeInterfaces []string) (Source, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath(kind)
	}
	switch kind {
	case KindDisk:
		return OpenVMStat(path)
	case KindNet:
		return OpenNetDev(path, excludeInterfaces)
	default:
		return nil, faults.Wrap(faults.ErrConfiguration, "counter", "open", fmt.Sprintf("unsupported source %q", kind), nil)
	}
}
