package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is an input emitted alongside the rendered tree without being
// part of the form document (CSRF tokens, revision markers).
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken constructs a hidden field carrying token under the input name the
// backend expects ("_csrf", "csrf_token").
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// SortedHidden drops unnamed fields, keeps the last value per name and sorts
// the result by name.
func SortedHidden(fields ...HiddenField) []HiddenField {
	byName := make(map[string]string, len(fields))
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			byName[name] = field.Value
		}
	}
	if len(byName) == 0 {
		return nil
	}
	out := make([]HiddenField, 0, len(byName))
	for name, value := range byName {
		out = append(out, HiddenField{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
