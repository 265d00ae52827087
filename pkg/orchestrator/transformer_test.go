package orchestrator

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/uischema"
)

func TestPresetTransformer(t *testing.T) {
	original, err := schema.Parse([]byte(`{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "tags": {"type": "array", "items": {"type": "string"}}
  }
}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	preset, err := NewPresetTransformer([]byte(`
uiSchema:
  name:
    ui:widget: textarea
fields:
  name:
    title: Full name
    default: Ann
  tags.items:
    description: One tag per entry
`))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}

	props := form.Props{
		Schema:   original,
		UiSchema: uischema.UiSchema{"name": map[string]any{"ui:placeholder": "you"}},
	}
	if err := preset.Transform(context.Background(), &props); err != nil {
		t.Fatalf("transform: %v", err)
	}

	if got := props.Schema.Properties["name"]; got.Title != "Full name" || got.Default != "Ann" {
		t.Fatalf("field patch missing: %#v", got)
	}
	if got := props.Schema.Properties["tags"].Items.Description; got != "One tag per entry" {
		t.Fatalf("items patch missing: %q", got)
	}
	if original.Properties["name"].Title != "" {
		t.Fatalf("transform mutated the loaded schema")
	}
	want := map[string]any{"ui:placeholder": "you", "ui:widget": "textarea"}
	if diff := cmp.Diff(want, map[string]any(props.UiSchema.Child("name"))); diff != "" {
		t.Fatalf("ui schema merge mismatch (-want +got):\n%s", diff)
	}
}

func TestPresetTransformer_UnknownField(t *testing.T) {
	preset, err := NewPresetTransformer([]byte(`{"fields": {"missing": {"title": "x"}}}`))
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	props := form.Props{Schema: &schema.Schema{Type: schema.TypeObject}}
	if err := preset.Transform(context.Background(), &props); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestFindSchemaByPath(t *testing.T) {
	root := &schema.Schema{Properties: map[string]*schema.Schema{
		"items": {Type: schema.TypeString},
		"list":  {Type: schema.TypeArray, Items: &schema.Schema{Type: schema.TypeNumber}},
	}}
	tests := []struct {
		path string
		want string
	}{
		{path: "items", want: schema.TypeString},
		{path: "list.items", want: schema.TypeNumber},
		{path: "list.other", want: ""},
		{path: "", want: ""},
	}
	for _, tt := range tests {
		got := findSchemaByPath(root, tt.path)
		if tt.want == "" {
			if got != nil {
				t.Fatalf("%q: expected nil, got %#v", tt.path, got)
			}
			continue
		}
		if got == nil || got.Type != tt.want {
			t.Fatalf("%q: expected %s, got %#v", tt.path, tt.want, got)
		}
	}
}
