package validation

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func TestErrorSchemaJSON(t *testing.T) {
	tree := NewErrorSchema([]FieldError{
		{Path: "", Message: "form"},
		{Path: "address.city", Message: "required"},
		{Path: "tags.0", Message: "too short"},
	})

	raw, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}
	want := map[string]any{
		"__errors": []any{"form"},
		"address":  map[string]any{"city": map[string]any{"__errors": []any{"required"}}},
		"tags":     map[string]any{"0": map[string]any{"__errors": []any{"too short"}}},
	}
	if diff := cmp.Diff(want, generic); diff != "" {
		t.Fatalf("json shape mismatch (-want +got):\n%s", diff)
	}

	var decoded ErrorSchema
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(tree.Flatten(), decoded.Flatten()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorSchemaMergeAndEmpty(t *testing.T) {
	a := NewErrorSchema([]FieldError{{Path: "name", Message: "a"}})
	b := NewErrorSchema([]FieldError{{Path: "name", Message: "b"}, {Path: "age", Message: "c"}})

	merged := a.Merge(b)
	if diff := cmp.Diff([]string{"a", "b"}, merged.At("name").Messages()); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
	if len(a.At("name").Messages()) != 1 {
		t.Fatalf("merge must not modify inputs")
	}
	if merged.Empty() || !(&ErrorSchema{Children: map[string]*ErrorSchema{"x": {}}}).Empty() {
		t.Fatalf("Empty should look at messages at every depth")
	}
	var nilTree *ErrorSchema
	if nilTree.At("x") != nil || !nilTree.Empty() {
		t.Fatalf("nil tree should be empty")
	}
}

func TestSplitPath(t *testing.T) {
	tests := map[string][]string{
		"":             nil,
		"name":         {"name"},
		".name":        {"name"},
		"address.city": {"address", "city"},
		"tags[0]":      {"tags", "0"},
		"/tags/0":      {"tags", "0"},
		"#/a~1b/c~0d":  {"a/b", "c~d"},
		"$.items['x']": {"items", "x"},
	}
	for in, want := range tests {
		if diff := cmp.Diff(want, SplitPath(in)); diff != "" {
			t.Fatalf("SplitPath(%q) mismatch (-want +got):\n%s", in, diff)
		}
	}
}
