package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrInvalid is returned when the document is still invalid after the
	// last allowed round of corrections.
	ErrInvalid = errors.New("tui: form is invalid")
)
