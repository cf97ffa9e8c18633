package led

import (
	"strings"

	"actled/internal/faults"
)

const (
	TriggerNone           = "none"
	DefaultRestoreTrigger = "mmc0"
)

// Trigger controls the "trigger" attribute of an LED class device.
type Trigger struct {
	path     string
	fallback string
}

// NewTrigger returns a controller for the trigger attribute at path. fallback
// is restored when the original trigger cannot be determined.
func NewTrigger(path, fallback string) *Trigger {
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultRestoreTrigger
	}
	return &Trigger{path: path, fallback: fallback}
}

// Path returns the trigger attribute path.
func (t *Trigger) Path() string { return t.path }

// Active returns the currently selected trigger.
func (t *Trigger) Active() (string, error) {
	content, err := readAttr(t.path)
	if err != nil {
		return "", err
	}
	return ParseActive(content), nil
}

// Disable switches the LED to manual control and returns the trigger name
// that Restore will write back.
func (t *Trigger) Disable() (string, error) {
	original, err := t.Active()
	if err != nil || original == "" || original == TriggerNone {
		original = t.fallback
	}
	if err := writeAttr(t.path, TriggerNone); err != nil {
		return "", faults.Wrap(faults.ErrResource, "led", "disable trigger", t.path, err)
	}
	return original, nil
}

// Restore writes name back to the trigger attribute.
func (t *Trigger) Restore(name string) error {
	if strings.TrimSpace(name) == "" {
		name = t.fallback
	}
	if err := writeAttr(t.path, name); err != nil {
		return faults.Wrap(faults.ErrResource, "led", "restore trigger", t.path, err)
	}
	return nil
}

// ParseActive extracts the bracketed entry from a trigger listing such as
// "none timer [mmc0] heartbeat". A bare single word is returned as is.
func ParseActive(content string) string {
	fields := strings.Fields(content)
	for _, field := range fields {
		if len(field) > 2 && strings.HasPrefix(field, "[") && strings.HasSuffix(field, "]") {
			return field[1 : len(field)-1]
		}
	}
	if len(fields) == 1 {
		return fields[0]
	}
	return ""
}
