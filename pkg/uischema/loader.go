package uischema

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Store keeps the UiSchema documents parsed by LoadFS, keyed by form id. It is
// safe for concurrent readers when treated as immutable after construction.
type Store struct {
	forms   map[string]UiSchema
	sources map[string]string
}

// LoadFS walks the provided filesystem and parses JSON/YAML UI schema files of
// the shape {"forms": {"<formID>": <uiSchema>}}. When fsys is nil or no schema
// files are present, the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]UiSchema), sources: make(map[string]string)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		if !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("uischema: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for formID, raw := range doc.Forms {
			id := strings.TrimSpace(formID)
			if id == "" {
				return fmt.Errorf("uischema: file %s defines an empty form id", path)
			}
			if previous, exists := store.sources[id]; exists {
				return fmt.Errorf("uischema: duplicate form %q (files %s and %s)", id, previous, path)
			}

			tree, err := normaliseTree(raw, id, path)
			if err != nil {
				return err
			}
			store.forms[id] = tree
			store.sources[id] = path
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// Parse decodes a single UiSchema document (JSON or YAML). Flat field paths
// are expanded the same way LoadFS expands them.
func Parse(data []byte) (UiSchema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return UiSchema{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		raw = nil
		if yamlErr := yaml.Unmarshal(data, &raw); yamlErr != nil {
			return nil, fmt.Errorf("uischema: parse: invalid JSON or YAML: %w", yamlErr)
		}
	}
	return normaliseTree(raw, "", "")
}

// Form returns the UiSchema registered for id.
func (s *Store) Form(id string) (UiSchema, bool) {
	if s == nil {
		return nil, false
	}
	form, ok := s.forms[id]
	return form, ok
}

// Source returns the file a form was loaded from.
func (s *Store) Source(id string) string {
	if s == nil {
		return ""
	}
	return s.sources[id]
}

// Forms lists the loaded form ids, sorted.
func (s *Store) Forms() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

type documentFile struct {
	Forms map[string]map[string]any `json:"forms" yaml:"forms"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("uischema: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("uischema: parse %s: invalid JSON or YAML", source)
}

// normaliseTree expands flat keys such as "address.street" or "tags[]" into
// nested nodes, merging them with any nested form already present.
func normaliseTree(raw map[string]any, id, source string) (UiSchema, error) {
	out := UiSchema{}
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := normaliseValue(raw[key])
		if strings.HasPrefix(key, reservedPrefix) || !isFlatPath(key) {
			if err := mergeInto(out, []string{key}, value); err != nil {
				return nil, describe(err, id, source)
			}
			continue
		}
		path := NormalizeFieldPath(key)
		if path == "" {
			return nil, describe(fmt.Errorf("field key %q normalises to empty path", key), id, source)
		}
		if err := mergeInto(out, strings.Split(path, "."), value); err != nil {
			return nil, describe(err, id, source)
		}
	}
	return out, nil
}

func mergeInto(node UiSchema, segments []string, value any) error {
	head := segments[0]
	if len(segments) > 1 {
		child, ok := node[head].(map[string]any)
		if !ok {
			if _, exists := node[head]; exists {
				return fmt.Errorf("field path %q conflicts with a non-object value", strings.Join(segments, "."))
			}
			child = map[string]any{}
			node[head] = child
		}
		return mergeInto(UiSchema(child), segments[1:], value)
	}

	current, exists := node[head]
	if !exists {
		node[head] = value
		return nil
	}
	incoming, incomingMap := value.(map[string]any)
	existing, existingMap := current.(map[string]any)
	if !incomingMap || !existingMap {
		return fmt.Errorf("duplicate field path %q", head)
	}
	for key, item := range incoming {
		if err := mergeInto(UiSchema(existing), []string{key}, item); err != nil {
			return err
		}
	}
	return nil
}

func normaliseValue(value any) any {
	switch typed := value.(type) {
	case UiSchema:
		return normaliseValue(map[string]any(typed))
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normaliseValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = normaliseValue(item)
		}
		return out
	default:
		return value
	}
}

func describe(err error, id, source string) error {
	if id == "" {
		return fmt.Errorf("uischema: %w", err)
	}
	return fmt.Errorf("uischema: form %q (file %s): %w", id, source, err)
}

func isFlatPath(key string) bool {
	return strings.ContainsAny(key, ".[")
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// NormalizeFieldPath converts bracket notation into dotted UiSchema paths:
// "tags[]" becomes "tags.items" and "items[0].name" becomes "items.0.name".
func NormalizeFieldPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	replacer := strings.NewReplacer(
		"[].", "."+KeyItems+".",
		"[]", "."+KeyItems,
		"[", ".",
		"]", "",
	)
	normalised := replacer.Replace(trimmed)
	normalised = strings.TrimPrefix(normalised, ".")
	for strings.Contains(normalised, "..") {
		normalised = strings.ReplaceAll(normalised, "..", ".")
	}
	return strings.Trim(normalised, ".")
}
