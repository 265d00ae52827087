package html

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm        ChromeClass = "formengine-form"
	ClassHeader      ChromeClass = "formengine-header"
	ClassFieldset    ChromeClass = "formengine-fieldset"
	ClassArray       ChromeClass = "formengine-array"
	ClassField       ChromeClass = "formengine-field"
	ClassInvalid     ChromeClass = "formengine-invalid"
	ClassError       ChromeClass = "formengine-error"
	ClassErrors      ChromeClass = "formengine-errors"
	ClassActions     ChromeClass = "formengine-actions"
	ClassUnsupported ChromeClass = "formengine-unsupported"
	ClassFailed      ChromeClass = "formengine-failed"
)

// Classes maps the chrome slots used by the templates to CSS classes.
type Classes map[string]string

// DefaultClasses returns the class set applied when no override is given.
func DefaultClasses() Classes {
	return Classes{
		"form":        string(ClassForm),
		"header":      string(ClassHeader),
		"fieldset":    string(ClassFieldset),
		"array":       string(ClassArray),
		"field":       string(ClassField),
		"invalid":     string(ClassInvalid),
		"error":       string(ClassError),
		"errors":      string(ClassErrors),
		"actions":     string(ClassActions),
		"unsupported": string(ClassUnsupported),
		"failed":      string(ClassFailed),
	}
}

func (c Classes) merged(overrides Classes) Classes {
	out := make(Classes, len(c)+len(overrides))
	for slot, class := range c {
		out[slot] = class
	}
	for slot, class := range overrides {
		if class != "" {
			out[slot] = class
		}
	}
	return out
}

func (c Classes) data() map[string]any {
	out := make(map[string]any, len(c))
	for slot, class := range c {
		out[slot] = class
	}
	return out
}
