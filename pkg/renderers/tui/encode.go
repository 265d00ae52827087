package tui

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

func (h *Host) serialize(document any) ([]byte, error) {
	if values, ok := document.(map[string]any); ok && h.submitTransformer != nil {
		transformed, err := h.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
		document = transformed
	}

	switch h.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(document)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(document)), nil
	default:
		out, err := json.MarshalIndent(document, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode document: %w", err)
		}
		return out, nil
	}
}

func flattenForm(document any) string {
	flattened := url.Values{}
	flatten("", document, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for _, key := range sortedKeys(v) {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			flatten(next, v[key], out)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", display(val))
		}
	default:
		out.Set(prefix, display(v))
	}
}

func prettyPrint(document any) string {
	var b strings.Builder
	writePretty(&b, "", document)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		for _, key := range sortedKeys(v) {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%s\n", prefix, display(v))
		}
	}
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
