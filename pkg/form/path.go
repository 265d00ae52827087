package form

import (
	"strconv"

	"github.com/goliatone/go-formengine/pkg/validation"
)

// Path addresses a value inside the document: property names and array
// indexes as decimal strings.
type Path []string

// ParsePath accepts dotted ("a.b.0"), bracket ("a[0].b") or JSON pointer
// ("/a/0/b") notation.
func ParsePath(raw string) Path {
	return Path(validation.SplitPath(raw))
}

func (p Path) String() string {
	return validation.JoinPath(p)
}

// getIn reads the value at path.
func getIn(root any, path Path) (any, bool) {
	current := root
	for _, segment := range path {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// setIn returns a copy of root with value stored at path. Containers along
// the path are copied; everything else is shared, and root itself is never
// modified. Missing containers are created: a numeric segment creates a list,
// anything else an object. An index past the end of a list is ignored. A
// nil value at an object key removes the key.
func setIn(root any, path Path, value any) any {
	if len(path) == 0 {
		return value
	}
	segment, rest := path[0], path[1:]
	idx, err := strconv.Atoi(segment)
	numeric := err == nil && idx >= 0

	switch node := root.(type) {
	case []any:
		if !numeric {
			return root
		}
		return setIndex(node, idx, rest, value)
	case map[string]any:
		return setKey(node, segment, rest, value)
	}
	if numeric {
		if idx > 0 {
			return root
		}
		return setIndex(nil, idx, rest, value)
	}
	return setKey(nil, segment, rest, value)
}

// setIndex only grows the list by appending at len(list); indexes past the
// end leave the list unchanged.
func setIndex(list []any, idx int, rest Path, value any) []any {
	if idx > len(list) {
		return list
	}
	out := make([]any, max(len(list), idx+1))
	copy(out, list)
	var child any
	if idx < len(list) {
		child = list[idx]
	}
	out[idx] = setIn(child, rest, value)
	return out
}

func setKey(source map[string]any, key string, rest Path, value any) map[string]any {
	out := make(map[string]any, len(source)+1)
	for k, v := range source {
		out[k] = v
	}
	next := setIn(source[key], rest, value)
	if next == nil {
		delete(out, key)
	} else {
		out[key] = next
	}
	return out
}
