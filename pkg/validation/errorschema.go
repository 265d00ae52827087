package validation

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

const errorsKey = "__errors"

// FieldError is one normalised validation failure.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Stack   string `json:"stack"`
}

// Segments splits Path into its components.
func (e FieldError) Segments() []string {
	return SplitPath(e.Path)
}

func newFieldError(segments []string, message, kind string) FieldError {
	path := JoinPath(segments)
	stack := message
	if path != "" {
		stack = path + ": " + message
	}
	return FieldError{Path: path, Message: message, Kind: kind, Stack: stack}
}

// ErrorSchema indexes messages by field path. It serialises as
// {"__errors": [...], "<child>": {...}}.
type ErrorSchema struct {
	Errors   []string
	Children map[string]*ErrorSchema
}

// NewErrorSchema builds a tree from a flat error list.
func NewErrorSchema(errs []FieldError) *ErrorSchema {
	root := &ErrorSchema{}
	for _, err := range errs {
		root.Add(err.Segments(), err.Message)
	}
	return root
}

// Add records message at path, creating intermediate nodes.
func (e *ErrorSchema) Add(path []string, message string) {
	node := e
	for _, segment := range path {
		if node.Children == nil {
			node.Children = make(map[string]*ErrorSchema)
		}
		child, ok := node.Children[segment]
		if !ok {
			child = &ErrorSchema{}
			node.Children[segment] = child
		}
		node = child
	}
	node.Errors = append(node.Errors, message)
}

// Child returns the subtree for name, or nil.
func (e *ErrorSchema) Child(name string) *ErrorSchema {
	if e == nil {
		return nil
	}
	return e.Children[name]
}

// At walks path and returns the subtree found there, or nil.
func (e *ErrorSchema) At(path ...string) *ErrorSchema {
	node := e
	for _, segment := range path {
		node = node.Child(segment)
		if node == nil {
			return nil
		}
	}
	return node
}

// Messages returns the messages attached directly to this node.
func (e *ErrorSchema) Messages() []string {
	if e == nil {
		return nil
	}
	return e.Errors
}

// Empty reports whether the tree holds no message at any depth.
func (e *ErrorSchema) Empty() bool {
	if e == nil {
		return true
	}
	if len(e.Errors) > 0 {
		return false
	}
	for _, child := range e.Children {
		if !child.Empty() {
			return false
		}
	}
	return true
}

// Merge returns a new tree holding the messages of e followed by those of
// other. Neither input is modified.
func (e *ErrorSchema) Merge(other *ErrorSchema) *ErrorSchema {
	out := &ErrorSchema{}
	out.absorb(e)
	out.absorb(other)
	return out
}

func (e *ErrorSchema) absorb(other *ErrorSchema) {
	if other == nil {
		return
	}
	e.Errors = append(e.Errors, other.Errors...)
	for name, child := range other.Children {
		if e.Children == nil {
			e.Children = make(map[string]*ErrorSchema)
		}
		target, ok := e.Children[name]
		if !ok {
			target = &ErrorSchema{}
			e.Children[name] = target
		}
		target.absorb(child)
	}
}

// Flatten lists every message with its path, ordered by path.
func (e *ErrorSchema) Flatten() []FieldError {
	var out []FieldError
	e.flatten(nil, &out)
	return out
}

func (e *ErrorSchema) flatten(prefix []string, out *[]FieldError) {
	if e == nil {
		return
	}
	for _, message := range e.Errors {
		*out = append(*out, newFieldError(prefix, message, ""))
	}
	names := make([]string, 0, len(e.Children))
	for name := range e.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		next := append(append([]string(nil), prefix...), name)
		e.Children[name].flatten(next, out)
	}
}

// MarshalJSON implements json.Marshaler.
func (e *ErrorSchema) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("{}"), nil
	}
	out := make(map[string]any, len(e.Children)+1)
	if len(e.Errors) > 0 {
		out[errorsKey] = e.Errors
	}
	for name, child := range e.Children {
		out[name] = child
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *ErrorSchema) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("validation: decode error schema: %w", err)
	}
	*e = ErrorSchema{}
	for key, value := range raw {
		if key == errorsKey {
			if err := json.Unmarshal(value, &e.Errors); err != nil {
				return fmt.Errorf("validation: decode %s: %w", errorsKey, err)
			}
			continue
		}
		child := &ErrorSchema{}
		if err := child.UnmarshalJSON(value); err != nil {
			return err
		}
		if e.Children == nil {
			e.Children = make(map[string]*ErrorSchema)
		}
		e.Children[key] = child
	}
	return nil
}
