package render

import (
	"sort"
	"strconv"
	"strings"
)

// ErrorMapping splits an error payload into field-level and form-level
// messages keyed by the dotted field paths of a rendered tree.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload normalises host error payloads (JSON pointers, bracket
// indexes, request wrappers such as "body.") onto the field paths present in
// root. Unknown paths are treated as form-level errors so messages are not
// lost.
func MapErrorPayload(root *Node, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		return mapping
	}

	fieldPaths := collectFieldPaths(root)

	raw := make([]string, 0, len(payload))
	for path := range payload {
		raw = append(raw, path)
	}
	sort.Strings(raw)

	for _, path := range raw {
		messages := normalizeMessages(payload[path])
		if len(messages) == 0 {
			continue
		}
		if mapped, formLevel := mapErrorPath(path, fieldPaths); !formLevel {
			mapping.Fields[mapped] = append(mapping.Fields[mapped], messages...)
			continue
		}
		mapping.Form = append(mapping.Form, messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// ApplyErrors attaches mapped field messages to the matching nodes of root and
// returns the form-level messages.
func ApplyErrors(root *Node, payload map[string][]string) []string {
	mapping := MapErrorPayload(root, payload)
	if len(mapping.Fields) == 0 {
		return mapping.Form
	}
	root.Walk(func(node *Node) bool {
		if node.Kind == KindWidget || len(node.Path) == 0 {
			return true
		}
		if messages, ok := mapping.Fields[node.FieldPath()]; ok {
			node.Errors = normalizeMessages(append(node.Errors, messages...))
			delete(mapping.Fields, node.FieldPath())
		}
		return true
	})
	return mapping.Form
}

// Summary lists every message attached to the tree, prefixed by the label
// (or path) of the node carrying it.
func Summary(root *Node) []string {
	var out []string
	root.Walk(func(node *Node) bool {
		if node.Kind == KindWidget || node.Kind == KindErrorList {
			return false
		}
		for _, message := range node.Errors {
			prefix := node.Label
			if prefix == "" {
				prefix = node.FieldPath()
			}
			if prefix == "" {
				out = append(out, message)
				continue
			}
			out = append(out, prefix+": "+message)
		}
		return true
	})
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	var out []string
	seen := make(map[string]bool, len(messages))
	for _, message := range messages {
		message = strings.TrimSpace(message)
		if message == "" || seen[message] {
			continue
		}
		seen[message] = true
		out = append(out, message)
	}
	return out
}

var wrapperSegments = map[string]bool{
	"body":       true,
	"request":    true,
	"payload":    true,
	"data":       true,
	"attributes": true,
}

// mapErrorPath finds the deepest known field path matching raw. Leading
// request wrappers and numeric indexes are tried both kept and dropped.
func mapErrorPath(raw string, known map[string]struct{}) (string, bool) {
	if isFormLevelKey(raw) {
		return "", true
	}
	segments := splitErrorPath(raw)
	if len(segments) == 0 {
		return "", true
	}

	unwrapped := segments
	for len(unwrapped) > 0 && wrapperSegments[strings.ToLower(unwrapped[0])] {
		unwrapped = unwrapped[1:]
	}

	best, depth := "", 0
	for _, candidate := range [][]string{segments, unwrapped, withoutIndexes(segments), withoutIndexes(unwrapped)} {
		for end := len(candidate); end > depth; end-- {
			path := strings.Join(candidate[:end], ".")
			if _, ok := known[path]; ok {
				best, depth = path, end
				break
			}
		}
	}
	return best, best == ""
}

// splitErrorPath accepts JSON pointers, dotted paths, JSONPath-ish "$." and
// bracket indexes.
func splitErrorPath(raw string) []string {
	clean := strings.TrimLeft(strings.TrimSpace(raw), "#/.$")
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/' || r == '[' || r == ']'
	})
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		out = append(out, strings.ReplaceAll(part, "~0", "~"))
	}
	return out
}

func withoutIndexes(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err != nil {
			out = append(out, segment)
		}
	}
	return out
}

func collectFieldPaths(root *Node) map[string]struct{} {
	known := make(map[string]struct{})
	root.Walk(func(node *Node) bool {
		if node.Kind == KindWidget {
			return false
		}
		if path := node.FieldPath(); path != "" {
			known[path] = struct{}{}
		}
		return true
	})
	return known
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	}
	return false
}
