package widgets

import (
	"testing"

	"github.com/goliatone/go-formengine/pkg/resolve"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/uischema"
)

func TestResolveExplicitWidgetWins(t *testing.T) {
	m := NewMatchers()
	s := &schema.Schema{Type: schema.TypeBoolean}

	if got, ok := m.Resolve(s, uischema.UiSchema{"ui:widget": "radio"}, nil); !ok || got != "radio" {
		t.Fatalf("expected explicit widget to win, got %q (ok=%v)", got, ok)
	}
}

func TestResolveBuiltins(t *testing.T) {
	m := NewMatchers()
	long := uint64(1000)

	defs := schema.Definitions{"color": {Type: schema.TypeString, Enum: []any{"red", "blue"}}}
	r := resolve.New(defs)

	cases := []struct {
		name   string
		schema *schema.Schema
		expect string
	}{
		{name: "boolean", schema: &schema.Schema{Type: schema.TypeBoolean}, expect: Checkbox},
		{name: "enum", schema: &schema.Schema{Type: schema.TypeString, Enum: []any{"a", "b"}}, expect: Select},
		{name: "multi select via ref", schema: &schema.Schema{Type: schema.TypeArray, Items: &schema.Schema{Ref: "#/definitions/color"}}, expect: Checkboxes},
		{name: "integer", schema: &schema.Schema{Type: schema.TypeInteger}, expect: Number},
		{name: "date", schema: &schema.Schema{Type: schema.TypeString, Format: "date"}, expect: Date},
		{name: "date-time", schema: &schema.Schema{Type: schema.TypeString, Format: "date-time"}, expect: DateTime},
		{name: "long text", schema: &schema.Schema{Type: schema.TypeString, MaxLength: &long}, expect: Textarea},
		{name: "multiline extension", schema: &schema.Schema{Type: schema.TypeString, Extensions: map[string]any{"x-multiline": true}}, expect: Textarea},
		{name: "email", schema: &schema.Schema{Type: schema.TypeString, Format: "email"}, expect: Email},
		{name: "plain string", schema: &schema.Schema{Type: schema.TypeString}, expect: Text},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := m.Resolve(tc.schema, nil, r)
			if !ok || got != tc.expect {
				t.Fatalf("expected %q, got %q (ok=%v)", tc.expect, got, ok)
			}
		})
	}
}

func TestResolveCustomPriority(t *testing.T) {
	m := NewMatchers()
	m.Register("color-picker", 200, func(s *schema.Schema, _ *resolve.Resolver) bool {
		return s.Format == "color"
	})

	got, ok := m.Resolve(&schema.Schema{Type: schema.TypeString, Format: "color"}, nil, nil)
	if !ok || got != "color-picker" {
		t.Fatalf("expected custom matcher, got %q", got)
	}

	if _, ok := m.Resolve(&schema.Schema{Type: schema.TypeObject}, nil, nil); ok {
		t.Fatalf("objects have no default widget")
	}
	if _, ok := (&Matchers{}).Resolve(&schema.Schema{Type: schema.TypeString}, nil, nil); ok {
		t.Fatalf("empty matcher set must not resolve")
	}
}
