package hotplug

import (
	"context"
	"testing"

	"github.com/pilebones/go-udev/netlink"

	"actled/internal/config"
)

func TestTargetFromConfig(t *testing.T) {
	cfg := config.Default()
	target, err := TargetFromConfig(&cfg)
	if err != nil {
		t.Fatalf("TargetFromConfig: %v", err)
	}
	if target != (Target{Subsystem: "leds", Name: "led0"}) {
		t.Fatalf("brightness target = %v", target)
	}

	cfg.Sink.Kind = "gpio"
	cfg.Source.Kind = "net"
	target, err = TargetFromConfig(&cfg)
	if err != nil {
		t.Fatalf("TargetFromConfig: %v", err)
	}
	if target.String() != "gpio/gpio7" {
		t.Fatalf("gpio target = %v", target)
	}
}

func TestBuildMatcher(t *testing.T) {
	w := New(Target{Subsystem: "leds", Name: "led0"}, nil, nil)
	matcher := w.buildMatcher()

	remove := netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{"SUBSYSTEM": "leds"}}
	if !matcher.Evaluate(remove) {
		t.Error("expected remove event for leds to match")
	}
	add := netlink.UEvent{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "leds"}}
	if matcher.Evaluate(add) {
		t.Error("add events must not match")
	}
	other := netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{"SUBSYSTEM": "block"}}
	if matcher.Evaluate(other) {
		t.Error("other subsystems must not match")
	}
}

func TestHandleEvent(t *testing.T) {
	calls := 0
	w := New(Target{Subsystem: "leds", Name: "led0"}, nil, func() { calls++ })

	tests := []struct {
		name  string
		event netlink.UEvent
		want  bool
	}{
		{
			name: "other led",
			event: netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{
				"SUBSYSTEM": "leds", "DEVPATH": "/devices/platform/leds/leds/led1",
			}},
		},
		{
			name: "wrong action",
			event: netlink.UEvent{Action: netlink.CHANGE, Env: map[string]string{
				"SUBSYSTEM": "leds", "DEVPATH": "/devices/platform/leds/leds/led0",
			}},
		},
		{
			name: "no device path",
			event: netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{"SUBSYSTEM": "leds"}},
		},
		{
			name: "target removed",
			event: netlink.UEvent{Action: netlink.REMOVE, Env: map[string]string{
				"SUBSYSTEM": "leds", "DEVPATH": "/devices/platform/leds/leds/led0",
			}},
			want: true,
		},
		{
			name: "kobj fallback",
			event: netlink.UEvent{Action: netlink.REMOVE, KObj: "/devices/platform/leds/leds/led0",
				Env: map[string]string{"SUBSYSTEM": "leds"}},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.handleEvent(tt.event); got != tt.want {
				t.Fatalf("handleEvent = %t, want %t", got, tt.want)
			}
		})
	}
	if calls != 1 {
		t.Fatalf("onRemove called %d times, want 1", calls)
	}
}

func TestWatcherStopStartSafety(t *testing.T) {
	var nilWatcher *Watcher
	nilWatcher.Stop()
	if nilWatcher.Running() {
		t.Fatal("nil watcher cannot be running")
	}
	nilWatcher.Start(context.Background())

	w := New(Target{Subsystem: "gpio", Name: "gpio8"}, nil, nil)
	w.Stop()
	w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Connecting may be refused in a sandbox; either way Start returns.
	w.Start(ctx)
	w.Stop()
	if w.Running() {
		t.Fatal("expected watcher stopped")
	}
}
