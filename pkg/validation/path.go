package validation

import "strings"

// SplitPath breaks an issue path into segments. Dotted, bracket and JSON
// pointer notations are accepted; "~1" and "~0" escapes are decoded.
func SplitPath(path string) []string {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil
	}

	pointer := strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "#")
	clean = strings.TrimPrefix(clean, "$")

	var parts []string
	if pointer {
		parts = strings.Split(strings.TrimPrefix(clean, "/"), "/")
	} else {
		replacer := strings.NewReplacer("[", ".", "]", "", "'", "", `"`, "")
		parts = strings.Split(replacer.Replace(clean), ".")
	}

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if pointer {
			part = strings.ReplaceAll(part, "~1", "/")
			part = strings.ReplaceAll(part, "~0", "~")
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// JoinPath renders segments in the dotted notation used by FieldError.
func JoinPath(segments []string) string {
	return strings.Join(segments, ".")
}
