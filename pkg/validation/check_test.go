package validation

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCheckSchema(t *testing.T) {
	s := mustParse(t, `{
		"type": "object",
		"required": ["ghost"],
		"properties": {
			"a": {"$ref": "#/definitions/missing"},
			"node": {"$ref": "#/definitions/node"}
		},
		"definitions": {
			"node": {"type": "object", "properties": {"next": {"$ref": "#/definitions/node"}}}
		}
	}`)

	report := CheckSchema(context.Background(), s)
	if report.Valid {
		t.Fatalf("expected issues")
	}
	var fields []string
	for _, issue := range report.Issues {
		fields = append(fields, issue.Field)
	}
	if diff := cmp.Diff([]string{"", "a"}, fields); diff != "" {
		t.Fatalf("issue fields mismatch (-want +got):\n%s\n%+v", diff, report.Issues)
	}

	clean := CheckSchema(context.Background(), mustParse(t, `{"type":"object","properties":{"n":{"type":"string","pattern":"^a+$"}}}`))
	if !clean.Valid {
		t.Fatalf("expected clean schema, got %+v", clean.Issues)
	}
}

func TestFieldPathFromPointer(t *testing.T) {
	tests := map[string]string{
		"#/properties/a/items/properties/b": "a.items.b",
		"#/definitions/node":                "node",
		"#":                                 "",
	}
	for in, want := range tests {
		if got := fieldPathFromPointer(in); got != want {
			t.Fatalf("fieldPathFromPointer(%q) = %q, want %q", in, got, want)
		}
	}
}
