package fields

import (
	"strconv"
	"strings"
)

// withKey returns a copy of base with key set to value. A nil value removes
// the key. base is never modified.
func withKey(base any, key string, value any) map[string]any {
	source, _ := base.(map[string]any)
	out := make(map[string]any, len(source)+1)
	for k, v := range source {
		out[k] = v
	}
	if value == nil {
		delete(out, key)
	} else {
		out[key] = value
	}
	return out
}

func withoutKey(base any, key string) map[string]any {
	return withKey(base, key, nil)
}

// renameKey moves the value stored under from to to, keeping everything
// else. Renaming onto an existing key is refused.
func renameKey(base any, from, to string) (map[string]any, bool) {
	source, _ := base.(map[string]any)
	if from == to || strings.TrimSpace(to) == "" {
		return nil, false
	}
	if _, exists := source[to]; exists {
		return nil, false
	}
	out := withoutKey(source, from)
	out[to] = source[from]
	return out, true
}

// withIndex returns a copy of base with position idx set, padding with nil
// when the slice is shorter.
func withIndex(base any, idx int, value any) []any {
	source, _ := base.([]any)
	size := len(source)
	if idx >= size {
		size = idx + 1
	}
	out := make([]any, size)
	copy(out, source)
	out[idx] = value
	return out
}

func withoutIndex(base any, idx int) []any {
	source, _ := base.([]any)
	if idx < 0 || idx >= len(source) {
		return append([]any(nil), source...)
	}
	out := make([]any, 0, len(source)-1)
	out = append(out, source[:idx]...)
	return append(out, source[idx+1:]...)
}

func appended(base any, value any) []any {
	source, _ := base.([]any)
	out := make([]any, len(source), len(source)+1)
	copy(out, source)
	return append(out, value)
}

// nextKey picks the first free "newKey", "newKey-1"... name.
func nextKey(base any) string {
	source, _ := base.(map[string]any)
	const prefix = "newKey"
	if _, taken := source[prefix]; !taken {
		return prefix
	}
	for idx := 1; ; idx++ {
		candidate := prefix + "-" + strconv.Itoa(idx)
		if _, taken := source[candidate]; !taken {
			return candidate
		}
	}
}

func asSlice(value any) []any {
	items, _ := value.([]any)
	return items
}

// asString maps an empty string to absent.
func asString(value any) any {
	if text, ok := value.(string); ok && text == "" {
		return nil
	}
	return value
}

// asNumber converts textual input to a number. Text that does not parse is
// passed through so the validator can report it.
func asNumber(value any) any {
	text, ok := value.(string)
	if !ok {
		return value
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if parsed, err := strconv.ParseFloat(text, 64); err == nil {
		return parsed
	}
	return value
}

func asBool(value any) any {
	text, ok := value.(string)
	if !ok {
		return value
	}
	if parsed, err := strconv.ParseBool(strings.TrimSpace(text)); err == nil {
		return parsed
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return value
}
