package json_test

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/render"
	jsonrenderer "github.com/goliatone/go-formengine/pkg/renderers/json"
)

func TestRendererEncodesTree(t *testing.T) {
	called := false
	root := &render.Node{
		Kind: render.KindObject,
		ID:   "root",
		Children: []*render.Node{{
			Kind:     render.KindField,
			ID:       "root_name",
			Name:     "name",
			Path:     []string{"name"},
			Label:    "Name",
			Value:    "Ann",
			OnChange: func(any) { called = true },
		}},
	}

	out, err := jsonrenderer.New().Render(context.Background(), root, render.Options{
		Title:  "Profile",
		Hidden: []render.HiddenField{render.Hidden("rev", 3)},
		Errors: map[string][]string{"name": {"required"}, "other": {"form level"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"title":  "Profile",
		"hidden": []any{map[string]any{"Name": "rev", "Value": "3"}},
		"errors": []any{"form level"},
		"root": map[string]any{
			"kind": "object",
			"id":   "root",
			"children": []any{map[string]any{
				"kind":   "field",
				"id":     "root_name",
				"name":   "name",
				"path":   []any{"name"},
				"label":  "Name",
				"value":  "Ann",
				"errors": []any{"required"},
			}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if called {
		t.Fatalf("encoding must not invoke handlers")
	}
}

func TestRendererContract(t *testing.T) {
	r := jsonrenderer.New(jsonrenderer.WithIndent("  "))
	if r.Name() != "json" || r.ContentType() != "application/json" {
		t.Fatalf("unexpected identity: %s %s", r.Name(), r.ContentType())
	}
	if _, err := r.Render(context.Background(), nil, render.Options{}); err == nil {
		t.Fatalf("expected error for nil tree")
	}
	out, err := r.Render(context.Background(), &render.Node{Kind: render.KindObject}, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "{\n  \"root\": {\n    \"kind\": \"object\"\n  }\n}" {
		t.Fatalf("unexpected indented output: %s", out)
	}
}
