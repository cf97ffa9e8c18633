package indicator

import (
	"errors"
	"slices"
	"testing"
)

func TestLifecycleTeardownOrder(t *testing.T) {
	var order []string
	l := NewLifecycle(nil)
	for _, name := range []string{"trigger", "source", "output"} {
		name := name // per-iteration copy; go.mod targets pre-1.22 loop semantics
		l.Defer(name, func() error {
			order = append(order, name)
			if name == "source" {
				return errors.New("close failed")
			}
			return nil
		})
	}
	if l.Pending() != 3 {
		t.Fatalf("pending = %d", l.Pending())
	}

	if failed := l.Teardown(); failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
	if !slices.Equal(order, []string{"output", "source", "trigger"}) {
		t.Fatalf("order = %v", order)
	}
	if l.Pending() != 0 {
		t.Fatal("teardown should clear cleanups")
	}
	if failed := l.Teardown(); failed != 0 {
		t.Fatalf("second teardown failed = %d", failed)
	}
}

func TestStateString(t *testing.T) {
	want := map[State]string{
		StateInitializing: "initializing",
		StateRunning:      "running",
		StateDraining:     "draining",
		StateStopped:      "stopped",
		State(42):         "unknown",
	}
	for state, label := range want {
		if state.String() != label {
			t.Fatalf("%d.String() = %q, want %q", int(state), state.String(), label)
		}
	}
}
