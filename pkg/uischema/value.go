package uischema

import (
	"fmt"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	// ValueAbsent marks an option that was not provided.
	ValueAbsent ValueKind = iota
	// ValueStatic holds a literal value used as-is.
	ValueStatic
	// ValueTemplate holds an interpolation string such as "Hello ${name}".
	ValueTemplate
)

func (k ValueKind) String() string {
	switch k {
	case ValueStatic:
		return "static"
	case ValueTemplate:
		return "template"
	default:
		return "absent"
	}
}

// Value is a ui:* option kept as data. Template values are never evaluated
// here; a template.Renderer turns them into strings on demand.
type Value struct {
	Kind     ValueKind
	Static   any
	Template string
}

// Static wraps a literal.
func Static(value any) Value {
	return Value{Kind: ValueStatic, Static: value}
}

// Template wraps an interpolation string.
func Template(expr string) Value {
	return Value{Kind: ValueTemplate, Template: expr}
}

// ParseValue classifies a raw option. Strings containing "${" become
// templates, nil is absent, anything else is static.
func ParseValue(raw any) Value {
	switch typed := raw.(type) {
	case nil:
		return Value{}
	case Value:
		return typed
	case string:
		if strings.Contains(typed, "${") {
			return Template(typed)
		}
		return Static(typed)
	default:
		return Static(raw)
	}
}

// IsZero reports whether the value is absent.
func (v Value) IsZero() bool {
	return v.Kind == ValueAbsent
}

// IsTemplate reports whether v must go through a template renderer.
func (v Value) IsTemplate() bool {
	return v.Kind == ValueTemplate
}

// String formats a static value. Templates return their raw source.
func (v Value) String() string {
	switch v.Kind {
	case ValueStatic:
		if s, ok := v.Static.(string); ok {
			return s
		}
		return fmt.Sprint(v.Static)
	case ValueTemplate:
		return v.Template
	default:
		return ""
	}
}
