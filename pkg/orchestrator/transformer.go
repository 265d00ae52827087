package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/uischema"
)

// Transformer rewrites loaded props before a controller is built.
// Implementations can retitle fields, inject uiSchema entries or swap
// defaults.
type Transformer interface {
	Transform(ctx context.Context, props *form.Props) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, props *form.Props) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, props *form.Props) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, props)
}

// PresetTransformer applies declarative overrides loaded from a JSON or YAML
// document:
//
//	{
//	  "uiSchema": {"bio": {"ui:widget": "textarea"}},
//	  "fields": {
//	    "name": {"title": "Full name", "default": "Ann"},
//	    "tags.items": {"description": "One tag per entry"}
//	  }
//	}
//
// uiSchema entries are deep-merged over the loaded uiSchema. Field paths are
// dotted property names; "items" steps into an array's item schema. Paths do
// not follow $ref.
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	UiSchema map[string]any        `json:"uiSchema"`
	Fields   map[string]fieldPatch `json:"fields"`
}

type fieldPatch struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Default     any    `json:"default"`
	ReadOnly    *bool  `json:"readOnly"`
}

// NewPresetTransformer constructs a transformer from a raw JSON or YAML
// document.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	raw, err := schema.ToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: %w", err)
	}
	var document presetDocument
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from the provided
// filesystem path.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the preset onto copies of the props' schema and
// uiSchema; the originals are left untouched.
func (t *PresetTransformer) Transform(ctx context.Context, props *form.Props) error {
	if props == nil || props.Schema == nil {
		return errors.New("preset transformer: props carry no schema")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(t.document.UiSchema) > 0 {
		props.UiSchema = uischema.UiSchema(mergeTree(map[string]any(props.UiSchema), t.document.UiSchema))
	}
	if len(t.document.Fields) == 0 {
		return nil
	}

	root := props.Schema.Clone()
	for path, patch := range t.document.Fields {
		node := findSchemaByPath(root, path)
		if node == nil {
			return fmt.Errorf("preset transformer: field %q not found", path)
		}
		applyFieldPatch(node, patch)
	}
	props.Schema = root
	return nil
}

func applyFieldPatch(node *schema.Schema, patch fieldPatch) {
	if patch.Title != "" {
		node.Title = patch.Title
	}
	if patch.Description != "" {
		node.Description = patch.Description
	}
	if patch.Default != nil {
		node.Default = patch.Default
	}
	if patch.ReadOnly != nil {
		node.ReadOnly = *patch.ReadOnly
	}
}

func findSchemaByPath(root *schema.Schema, path string) *schema.Schema {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	node := root
	for _, segment := range strings.Split(path, ".") {
		if node == nil {
			return nil
		}
		if prop, ok := node.Properties[segment]; ok {
			node = prop
			continue
		}
		if segment == "items" {
			node = node.Items
			continue
		}
		return nil
	}
	return node
}

// mergeTree returns a copy of dst with src merged in; nested objects merge,
// everything else is replaced.
func mergeTree(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for key, value := range dst {
		out[key] = value
	}
	for key, value := range src {
		nested, ok := value.(map[string]any)
		if !ok {
			out[key] = value
			continue
		}
		var existing map[string]any
		switch typed := out[key].(type) {
		case map[string]any:
			existing = typed
		case uischema.UiSchema:
			existing = typed
		}
		out[key] = mergeTree(existing, nested)
	}
	return out
}
