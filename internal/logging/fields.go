package logging

const (
	// FieldComponent names the package or subsystem emitting the line.
	FieldComponent = "component"
	// FieldEventType is a stable machine-readable name for the event.
	FieldEventType = "event_type"
	// FieldErrorHint is the next step an operator should take.
	FieldErrorHint = "error_hint"
	// FieldErrorKind is the faults marker carried by the error.
	FieldErrorKind = "error_kind"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRunID tags every line of one daemon run.
	FieldRunID = "run_id"
	FieldState = "state"
	FieldAlert = "alert"
)
