package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formengine/pkg/render"
)

func sampleTree() *render.Node {
	return &render.Node{
		Kind: render.KindObject,
		ID:   "root",
		Children: []*render.Node{
			{Kind: render.KindField, ID: "root_name", Path: []string{"name"}, Label: "Name", Children: []*render.Node{
				{Kind: render.KindWidget, ID: "root_name", Path: []string{"name"}, Component: "text"},
			}},
			{Kind: render.KindObject, ID: "root_owner", Path: []string{"owner"}, Children: []*render.Node{
				{Kind: render.KindField, ID: "root_owner_email", Path: []string{"owner", "email"}},
				{Kind: render.KindField, ID: "root_owner_phone", Path: []string{"owner", "phone"}},
			}},
			{Kind: render.KindArray, ID: "root_tags", Path: []string{"tags"}, Children: []*render.Node{
				{Kind: render.KindField, ID: "root_tags_0", Path: []string{"tags", "0"}},
			}},
		},
	}
}

func TestMapErrorPayload(t *testing.T) {
	payload := map[string][]string{
		"/body/name":                 {"Name is required"},
		"body.owner.email":           {"Email invalid"},
		"$.body.tags[0]":             {"Tags must be unique"},
		"request.payload.owner":      {"Owner missing"},
		"non_field_errors":           {"Form level error"},
		"body/owner/phone/~1number":  {"Phone malformed"},
		"request/body/unknown-field": {"Should fall back to form errors"},
		"":                           {"Unscoped form error"},
	}

	mapped := render.MapErrorPayload(sampleTree(), payload)

	wantFields := map[string][]string{
		"name":        {"Name is required"},
		"owner.email": {"Email invalid"},
		"tags.0":      {"Tags must be unique"},
		"owner":       {"Owner missing"},
		"owner.phone": {"Phone malformed"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyErrorsAndSummary(t *testing.T) {
	root := sampleTree()
	form := render.ApplyErrors(root, map[string][]string{
		"name":  {"required", " required "},
		"#/zzz": {"unknown"},
	})
	if diff := cmp.Diff([]string{"unknown"}, form); diff != "" {
		t.Fatalf("form-level mismatch (-want +got):\n%s", diff)
	}

	name := root.Find("root_name")
	if name.Kind != render.KindField {
		t.Fatalf("Find should return the field before its widget, got %s", name.Kind)
	}
	if diff := cmp.Diff([]string{"required"}, name.Errors); diff != "" {
		t.Fatalf("node errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Name: required"}, render.Summary(root)); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
