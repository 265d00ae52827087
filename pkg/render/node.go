package render

import "strings"

// Kind classifies a Node.
type Kind string

const (
	KindObject      Kind = "object"
	KindArray       Kind = "array"
	KindField       Kind = "field"
	KindWidget      Kind = "widget"
	KindTitle       Kind = "title"
	KindDescription Kind = "description"
	KindErrorList   Kind = "errors"
	KindUnsupported Kind = "unsupported"
	// KindFailed marks a subtree whose render panicked and was replaced.
	KindFailed Kind = "failed"
)

// ChangeFunc receives the new value of the node it is attached to.
type ChangeFunc func(value any)

// FocusFunc receives blur/focus notifications for a node id.
type FocusFunc func(id string, value any)

// Choice is one selectable option of an enum-backed widget.
type Choice struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Node is one element of a rendered field tree. Renderers (HTML, JSON,
// terminal) consume the tree; hosts feed edits back through Change.
type Node struct {
	Kind        Kind           `json:"kind"`
	Component   string         `json:"component,omitempty"`
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name,omitempty"`
	Path        []string       `json:"path,omitempty"`
	Type        string         `json:"type,omitempty"`
	Label       string         `json:"label,omitempty"`
	Description string         `json:"description,omitempty"`
	Help        string         `json:"help,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Value       any            `json:"value,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Disabled    bool           `json:"disabled,omitempty"`
	ReadOnly    bool           `json:"readonly,omitempty"`
	Hidden      bool           `json:"hidden,omitempty"`
	Autofocus   bool           `json:"autofocus,omitempty"`
	Multiple    bool           `json:"multiple,omitempty"`
	Additional  bool           `json:"additional,omitempty"`
	Choices     []Choice       `json:"choices,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	Children    []*Node        `json:"children,omitempty"`

	OnChange ChangeFunc `json:"-"`
	OnBlur   FocusFunc  `json:"-"`
	OnFocus  FocusFunc  `json:"-"`
	// OnAdd appends an item (arrays) or a new key (open objects).
	OnAdd func() `json:"-"`
	// OnRemove drops this entry from its parent array or object.
	OnRemove func() `json:"-"`
	// OnRename moves an additional property to a new key.
	OnRename func(to string) bool `json:"-"`
}

// Change forwards value to the node's change handler, if any.
func (n *Node) Change(value any) {
	if n == nil || n.OnChange == nil || n.Disabled || n.ReadOnly {
		return
	}
	n.OnChange(value)
}

// Blur notifies the host that the node lost focus.
func (n *Node) Blur(value any) {
	if n != nil && n.OnBlur != nil {
		n.OnBlur(n.ID, value)
	}
}

// Focus notifies the host that the node gained focus.
func (n *Node) Focus(value any) {
	if n != nil && n.OnFocus != nil {
		n.OnFocus(n.ID, value)
	}
}

// Add appends a new entry when the node supports it.
func (n *Node) Add() {
	if n == nil || n.OnAdd == nil || n.Disabled || n.ReadOnly {
		return
	}
	n.OnAdd()
}

// Remove drops the node from its parent when the node supports it.
func (n *Node) Remove() {
	if n == nil || n.OnRemove == nil || n.Disabled || n.ReadOnly {
		return
	}
	n.OnRemove()
}

// Rename moves an additional property to key to. It reports false when the
// node cannot be renamed or the key is taken.
func (n *Node) Rename(to string) bool {
	if n == nil || n.OnRename == nil || n.Disabled || n.ReadOnly {
		return false
	}
	return n.OnRename(to)
}

// FieldPath joins Path with dots, the notation used for error payloads.
func (n *Node) FieldPath() string {
	if n == nil {
		return ""
	}
	return strings.Join(n.Path, ".")
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || fn == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Find returns the first node carrying id.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(node *Node) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// Widgets returns the leaf widget nodes in render order.
func (n *Node) Widgets() []*Node {
	var out []*Node
	n.Walk(func(node *Node) bool {
		if node.Kind == KindWidget {
			out = append(out, node)
			return false
		}
		return true
	})
	return out
}

// Markers returns unsupported and failed nodes, the places where a schema
// problem or a render panic was contained.
func (n *Node) Markers() []*Node {
	var out []*Node
	n.Walk(func(node *Node) bool {
		if node.Kind == KindUnsupported || node.Kind == KindFailed {
			out = append(out, node)
		}
		return true
	})
	return out
}
