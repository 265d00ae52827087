package uischema

import (
	"sort"
	"strings"
)

// Reserved keys. Every other key names a property.
const (
	KeyWidget      = "ui:widget"
	KeyField       = "ui:field"
	KeyOptions     = "ui:options"
	KeyOrder       = "ui:order"
	KeyTitle       = "ui:title"
	KeyDescription = "ui:description"
	KeyHelp        = "ui:help"
	KeyPlaceholder = "ui:placeholder"
	KeyDisabled    = "ui:disabled"
	KeyReadOnly    = "ui:readonly"
	KeyHidden      = "ui:hidden"
	KeyVisibleIf   = "ui:visibleIf"
	KeyAutofocus   = "ui:autofocus"
	KeyDefinition  = "ui:definition"
	KeyItems       = "items"
	KeyAdditional  = "additionalProperties"

	orderWildcard  = "*"
	reservedPrefix = "ui:"
)

// UiSchema is one node of the presentation tree. A nil UiSchema is valid and
// behaves like an empty one.
type UiSchema map[string]any

// Child returns the node for a property. Unknown names yield nil.
func (u UiSchema) Child(name string) UiSchema {
	return asUiSchema(u[name])
}

// Items returns the node applied to array items.
func (u UiSchema) Items() UiSchema {
	return asUiSchema(u[KeyItems])
}

// Additional returns the node applied to synthesized additional properties.
func (u UiSchema) Additional() UiSchema {
	return asUiSchema(u[KeyAdditional])
}

// Widget returns the ui:widget override, also honouring ui:options.widget.
func (u UiSchema) Widget() string {
	if widget := u.String(KeyWidget); widget != "" {
		return widget
	}
	if widget, ok := u.Options()["widget"].(string); ok {
		return strings.TrimSpace(widget)
	}
	return ""
}

// Field returns the ui:field override.
func (u UiSchema) Field() string {
	return u.String(KeyField)
}

// Options returns ui:options merged with any top-level ui:* keys that are not
// structural, giving callers one flat option map.
func (u UiSchema) Options() map[string]any {
	out := make(map[string]any)
	if opts, ok := u[KeyOptions].(map[string]any); ok {
		for key, value := range opts {
			out[key] = value
		}
	}
	for key, value := range u {
		if !strings.HasPrefix(key, reservedPrefix) {
			continue
		}
		switch key {
		case KeyOptions, KeyWidget, KeyField, KeyOrder:
			continue
		}
		out[strings.TrimPrefix(key, reservedPrefix)] = value
	}
	return out
}

// Value returns the tagged value stored under key (ui:title, ui:help...).
func (u UiSchema) Value(key string) Value {
	raw, ok := u[key]
	if !ok {
		opt, found := u.Options()[strings.TrimPrefix(key, reservedPrefix)]
		if !found {
			return Value{}
		}
		raw = opt
	}
	return ParseValue(raw)
}

// String returns a trimmed string stored under key.
func (u UiSchema) String(key string) string {
	if value, ok := u[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

// Bool reports a boolean flag stored under key or in ui:options.
func (u UiSchema) Bool(key string) bool {
	if value, ok := u[key].(bool); ok {
		return value
	}
	value, _ := u.Options()[strings.TrimPrefix(key, reservedPrefix)].(bool)
	return value
}

// Order arranges names following ui:order. A "*" entry marks where unlisted
// names go; without it they are appended. Names listed in ui:order but absent
// from names are ignored.
func (u UiSchema) Order(names []string) []string {
	raw, ok := u[KeyOrder].([]any)
	if !ok || len(raw) == 0 {
		return names
	}
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}

	var before, after []string
	listed := make(map[string]bool, len(raw))
	wildcard := false
	for _, entry := range raw {
		name, ok := entry.(string)
		if !ok {
			continue
		}
		if name == orderWildcard {
			wildcard = true
			continue
		}
		if !present[name] || listed[name] {
			continue
		}
		listed[name] = true
		if wildcard {
			after = append(after, name)
		} else {
			before = append(before, name)
		}
	}

	out := make([]string, 0, len(names))
	out = append(out, before...)
	for _, name := range names {
		if !listed[name] {
			out = append(out, name)
		}
	}
	return append(out, after...)
}

// PropertyKeys lists the non-reserved keys, sorted.
func (u UiSchema) PropertyKeys() []string {
	var keys []string
	for key := range u {
		if strings.HasPrefix(key, reservedPrefix) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func asUiSchema(value any) UiSchema {
	switch typed := value.(type) {
	case UiSchema:
		return typed
	case map[string]any:
		return UiSchema(typed)
	default:
		return nil
	}
}
