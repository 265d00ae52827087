package render

// Options describe per-request data that renderers can use to customise
// their output without touching the field tree.
type Options struct {
	// Title is shown above the form when set.
	Title string
	// Action and Method populate the HTML form element.
	Action string
	Method string
	// SubmitLabel overrides the submit button caption.
	SubmitLabel string
	// Errors surfaces server-side validation feedback keyed by field path.
	// Paths are matched against the tree with MapErrorPayload; unknown paths
	// become form-level errors.
	Errors map[string][]string
	// FormErrors are shown in the summary list alongside tree errors.
	FormErrors []string
	// Hidden fields are emitted as hidden inputs.
	Hidden []HiddenField
}
