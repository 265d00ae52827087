package idschema

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/schema"
)

func parse(t *testing.T, raw string) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return s
}

func TestGenerate_ArrayItems(t *testing.T) {
	s := parse(t, `{"type":"array","items":{"type":"string"}}`)

	got := Generate(s, "", nil, []any{"a", "b"})
	want := &IDSchema{ID: "root", Items: []*IDSchema{{ID: "root_0"}, {ID: "root_1"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("id tree mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_NestedObjects(t *testing.T) {
	s := parse(t, `{"type":"object","properties":{
		"name":{"type":"string"},
		"address":{"type":"object","properties":{"street":{"type":"string"}}},
		"pair":{"type":"array","items":[{"type":"string"},{"type":"number"}]}
	}}`)

	got := Generate(s, "form", nil, nil)
	want := []string{"form", "form_address", "form_address_street", "form_name", "form_pair", "form_pair_0", "form_pair_1"}
	if diff := cmp.Diff(want, got.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if got.Child("address").Child("street").ID != "form_address_street" {
		t.Fatalf("unexpected nested lookup")
	}
	if got.Child("missing") != nil || got.Child("pair").Item(5) != nil {
		t.Fatalf("expected nil lookups")
	}
}

func TestGenerate_StableAcrossValues(t *testing.T) {
	s := parse(t, `{"type":"object","properties":{
		"title":{"type":"string"},
		"lines":{"type":"array","items":{"type":"object","properties":{"qty":{"type":"number"}}}}
	}}`)

	first := Generate(s, "root", nil, map[string]any{
		"title": "a",
		"lines": []any{map[string]any{"qty": float64(1)}, map[string]any{"qty": float64(2)}},
	})
	second := Generate(s, "root", nil, map[string]any{
		"title": "completely different",
		"lines": []any{map[string]any{"qty": float64(99)}, map[string]any{}},
	})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("ids changed with values (-first +second):\n%s", diff)
	}
	if again := Generate(s, "root", nil, map[string]any{"lines": []any{nil, nil}}); cmp.Diff(first, again) != "" {
		t.Fatalf("ids changed with values: %s", cmp.Diff(first, again))
	}
}

func TestGenerate_SanitizesAndDeduplicates(t *testing.T) {
	s := &schema.Schema{
		Type:          schema.TypeObject,
		PropertyOrder: []string{"first name", "first-name", "e/mail", "ünï"},
		Properties: map[string]*schema.Schema{
			"first name": {Type: schema.TypeString},
			"first-name": {Type: schema.TypeString},
			"e/mail":     {Type: schema.TypeString},
			"ünï":        {Type: schema.TypeString},
		},
	}

	for i := 0; i < 3; i++ {
		got := Generate(s, "my form", nil, nil)
		want := map[string]string{
			"first name": "my-form_first-name",
			"first-name": "my-form_first-name-2",
			"e/mail":     "my-form_e-mail",
			"ünï":        "my-form_-n-",
		}
		for name, id := range want {
			if got.Children[name].ID != id {
				t.Fatalf("run %d: %q: expected %q, got %q", i, name, id, got.Children[name].ID)
			}
		}
	}
}

func TestGenerate_AdditionalPropertiesAndRecursion(t *testing.T) {
	s := parse(t, `{
		"definitions":{"node":{"type":"object","properties":{"child":{"$ref":"#/definitions/node"}}}},
		"type":"object",
		"properties":{"tree":{"$ref":"#/definitions/node"}},
		"additionalProperties":{"type":"string"}
	}`)

	got := Generate(s, "", s.Definitions, map[string]any{
		"tree":  map[string]any{"child": map[string]any{}},
		"extra": "x",
	})
	want := []string{"root", "root_extra", "root_tree", "root_tree_child", "root_tree_child_child"}
	if diff := cmp.Diff(want, got.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_MalformedSchemasDoNotPanic(t *testing.T) {
	tests := []*schema.Schema{
		nil,
		{Type: schema.TypeArray},
		{Type: "widget"},
		{Ref: "#/definitions/missing"},
		{Definitions: schema.Definitions{"a": {Ref: "#/definitions/a"}}, Ref: "#/definitions/a"},
	}
	for _, s := range tests {
		got := Generate(s, "", nil, []any{"x"})
		if got == nil || got.ID != "root" {
			t.Fatalf("expected root id node, got %+v", got)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"simple":     "simple",
		"with space": "with-space",
		"a..b":       "a-b",
		"":           "-",
		"$":          "-",
		"keep_-ok":   "keep_-ok",
	}
	for in, want := range tests {
		if got := Sanitize(in); got != want {
			t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}
