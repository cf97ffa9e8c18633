// Package hotplug watches udev for removal of the output device so the
// indicator can stop cleanly instead of failing on its next write.
package hotplug

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"actled/internal/config"
	"actled/internal/led"
	"actled/internal/logging"
)

// Target identifies a kernel device by subsystem and sysfs name.
type Target struct {
	Subsystem string
	Name      string
}

func (t Target) String() string { return t.Subsystem + "/" + t.Name }

// TargetFromConfig returns the device backing the configured sink.
func TargetFromConfig(cfg *config.Config) (Target, error) {
	switch cfg.SinkKind() {
	case led.KindGPIO:
		line, err := cfg.GPIOLine()
		if err != nil {
			return Target{}, err
		}
		return Target{Subsystem: "gpio", Name: fmt.Sprintf("gpio%d", line)}, nil
	default:
		return Target{Subsystem: "leds", Name: cfg.LEDName()}, nil
	}
}

// Watcher listens for udev remove events for one target and calls onRemove
// once when it disappears.
type Watcher struct {
	target   Target
	logger   *slog.Logger
	onRemove func()
	once     sync.Once

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// New returns a watcher for target. onRemove typically cancels the run
// context.
func New(target Target, logger *slog.Logger, onRemove func()) *Watcher {
	return &Watcher{
		target:   target,
		logger:   logging.NewComponentLogger(logger, "hotplug"),
		onRemove: onRemove,
	}
}

// Start connects to the udev netlink socket and begins listening. A failed
// connection is logged and leaves the watcher stopped.
func (w *Watcher) Start(ctx context.Context) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		logging.WarnWithContext(w.logger, "netlink connect failed; device removal will not be noticed", "netlink_connect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the process may open NETLINK_KOBJECT_UEVENT sockets"),
			logging.String(logging.FieldImpact, "a removed device surfaces as a write error instead of a clean stop"),
		)
		return
	}

	w.conn = conn
	w.quit = make(chan struct{})
	w.running = true
	go w.loop(ctx, conn, w.quit)

	w.logger.Info("watching for device removal",
		logging.String(logging.FieldEventType, "hotplug_started"),
		logging.String("device", w.target.String()),
	)
}

// Stop closes the netlink connection. It is safe to call more than once.
func (w *Watcher) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	close(w.quit)
	w.quit = nil
	_ = w.conn.Close()
	w.conn = nil
	w.running = false
}

// Running reports whether the watcher is connected.
func (w *Watcher) Running() bool {
	if w == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) loop(ctx context.Context, conn *netlink.UEventConn, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := conn.Monitor(queue, errs, w.buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			w.handleEvent(uevent)
		case err := <-errs:
			logging.WarnWithContext(w.logger, "netlink monitor error", "netlink_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "device removal may go unnoticed"),
			)
		}
	}
}

// buildMatcher accepts remove events from the target's subsystem. The device
// name is checked in handleEvent.
func (w *Watcher) buildMatcher() netlink.Matcher {
	action := string(netlink.REMOVE)
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": w.target.Subsystem,
		},
	})
	return rules
}

// handleEvent reports whether uevent removed the target, firing onRemove the
// first time it does.
func (w *Watcher) handleEvent(uevent netlink.UEvent) bool {
	if uevent.Action != netlink.REMOVE || uevent.Env["SUBSYSTEM"] != w.target.Subsystem {
		return false
	}
	name := deviceName(uevent)
	if name != w.target.Name {
		w.logger.Debug("ignoring removal of another device", logging.String("device", name))
		return false
	}

	logging.WarnWithContext(w.logger, "output device removed; stopping", "device_removed",
		logging.String("device", w.target.String()),
		logging.String(logging.FieldErrorHint, "reconnect the device and start actled again"),
		logging.String(logging.FieldImpact, "activity is no longer indicated"),
	)
	if w.onRemove != nil {
		w.once.Do(w.onRemove)
	}
	return true
}

func deviceName(uevent netlink.UEvent) string {
	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		devpath = uevent.KObj
	}
	if devpath == "" {
		return ""
	}
	return path.Base(devpath)
}
