package form

// Status is the controller lifecycle state.
type Status int

const (
	// StatusClean is a controller freshly built from props, untouched.
	StatusClean Status = iota
	// StatusEditing means a field changed since the last validation.
	StatusEditing
	// StatusValidated means the errors describe the current document.
	StatusValidated
	// StatusSubmitting is held while a submit runs.
	StatusSubmitting
	StatusSubmittedOK
	StatusSubmittedInvalid
)

func (s Status) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusEditing:
		return "editing"
	case StatusValidated:
		return "validated"
	case StatusSubmitting:
		return "submitting"
	case StatusSubmittedOK:
		return "submitted_ok"
	case StatusSubmittedInvalid:
		return "submitted_invalid"
	default:
		return "unknown"
	}
}

// MarshalText renders the status name in encoded snapshots.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
