package resolve

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/schema"
)

func mustParse(t *testing.T, raw string) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return s
}

func TestResolve_DereferencesDefinitionsAndAppliesSiblings(t *testing.T) {
	root := mustParse(t, `{
		"definitions": {
			"address": {"type": "object", "title": "Address", "properties": {"street": {"type": "string"}}},
			"alias": {"$ref": "#/definitions/address"}
		},
		"type": "object",
		"properties": {
			"home": {"$ref": "#/definitions/alias", "title": "Home"}
		}
	}`)
	r := ForRoot(root)

	got, err := r.Resolve(root.Properties["home"], nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Type != schema.TypeObject || got.Title != "Home" {
		t.Fatalf("unexpected resolved schema %+v", got)
	}
	if got.Ref != "" {
		t.Fatalf("expected ref to be consumed, got %q", got.Ref)
	}
	if root.Definitions["address"].Title != "Address" {
		t.Fatalf("resolution mutated definitions")
	}
}

func TestResolve_ReferenceFailures(t *testing.T) {
	tests := []struct {
		name string
		defs schema.Definitions
		ref  string
		want error
	}{
		{
			name: "missing definition",
			ref:  "#/definitions/nope",
			want: ErrUnresolvedReference,
		},
		{
			name: "self cycle",
			defs: schema.Definitions{"a": {Ref: "#/definitions/a"}},
			ref:  "#/definitions/a",
			want: ErrCircularReference,
		},
		{
			name: "two step cycle",
			defs: schema.Definitions{
				"a": {Ref: "#/definitions/b"},
				"b": {Ref: "#/$defs/a"},
			},
			ref:  "#/definitions/a",
			want: ErrCircularReference,
		},
		{
			name: "root ref without root",
			ref:  "#",
			want: ErrUnresolvedReference,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.defs).Resolve(&schema.Schema{Ref: tt.ref}, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var refErr *ReferenceError
			if !errors.As(err, &refErr) || refErr.Ref == "" {
				t.Fatalf("expected ReferenceError, got %T", err)
			}
		})
	}
}

func TestResolve_MalformedItems(t *testing.T) {
	out, err := New(nil).Resolve(&schema.Schema{Type: schema.TypeArray}, nil)
	if !errors.Is(err, ErrMalformedItems) {
		t.Fatalf("expected ErrMalformedItems, got %v", err)
	}
	if out == nil || out.Type != schema.TypeArray {
		t.Fatalf("expected resolved schema alongside the error, got %+v", out)
	}
}

func TestResolve_InfersMissingType(t *testing.T) {
	tests := []struct {
		name string
		in   *schema.Schema
		want string
	}{
		{"const", &schema.Schema{Const: "x", HasConst: true}, schema.TypeString},
		{"enum", &schema.Schema{Enum: []any{float64(1), float64(2)}}, schema.TypeNumber},
		{"properties", &schema.Schema{Properties: map[string]*schema.Schema{"a": {}}}, schema.TypeObject},
		{"items", &schema.Schema{Items: &schema.Schema{}}, schema.TypeArray},
		{"nothing", &schema.Schema{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(nil).Resolve(tt.in, nil)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got.Type != tt.want {
				t.Fatalf("expected type %q, got %q", tt.want, got.Type)
			}
		})
	}
}

func TestResolve_SynthesizesAdditionalProperties(t *testing.T) {
	s := mustParse(t, `{"type":"object","properties":{"name":{"type":"string"}},"additionalProperties":{"type":"number"}}`)
	data := map[string]any{"name": "Ann", "zeta": float64(1), "age": float64(3)}

	got, err := New(nil).Resolve(s, data)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "age", "zeta"}, got.OrderedProperties()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}
	if !got.Properties["age"].Additional || got.Properties["age"].Type != schema.TypeNumber {
		t.Fatalf("expected flagged additional property, got %+v", got.Properties["age"])
	}
	if got.Properties["name"].Additional {
		t.Fatalf("declared property must not be flagged")
	}
	if len(s.Properties) != 1 {
		t.Fatalf("resolution mutated the input schema")
	}
}

func TestResolve_AdditionalPropertiesTrueGuessesType(t *testing.T) {
	s := &schema.Schema{Type: schema.TypeObject, AdditionalProperties: &schema.AdditionalProperties{Allowed: true}}
	got, err := New(nil).Resolve(s, map[string]any{"flag": true, "list": []any{}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Properties["flag"].Type != schema.TypeBoolean || got.Properties["list"].Type != schema.TypeArray {
		t.Fatalf("unexpected guessed types %+v", got.Properties)
	}
}

func TestDetection(t *testing.T) {
	defs := schema.Definitions{
		"color": {Type: schema.TypeString, Enum: []any{"red", "green"}},
	}
	r := New(defs)

	single := &schema.Schema{Enum: []any{"only"}}
	if !IsConstant(single) {
		t.Fatalf("single enum should be constant")
	}
	if v, ok := ToConstant(single); !ok || v != "only" {
		t.Fatalf("unexpected constant %v %v", v, ok)
	}
	if v, ok := ToConstant(&schema.Schema{HasConst: true}); !ok || v != nil {
		t.Fatalf("const null should be a constant")
	}
	if r.IsSelect(single) {
		t.Fatalf("single enum is not a select")
	}
	if !r.IsSelect(&schema.Schema{Ref: "#/definitions/color"}) {
		t.Fatalf("referenced enum should be a select")
	}
	multi := &schema.Schema{Type: schema.TypeArray, Items: &schema.Schema{Ref: "#/definitions/color"}, UniqueItems: true}
	if !r.IsMultiSelect(multi) {
		t.Fatalf("array of enum should be a multi-select")
	}
	if r.IsMultiSelect(&schema.Schema{Type: schema.TypeArray, Items: &schema.Schema{Type: schema.TypeString}}) {
		t.Fatalf("array of free strings is not a multi-select")
	}
	tuple := &schema.Schema{Type: schema.TypeArray, TupleItems: []*schema.Schema{{Type: schema.TypeString}}}
	if !IsFixedItems(tuple) || IsFixedItems(multi) {
		t.Fatalf("fixed items detection mismatch")
	}
	if AllowAdditionalItems(tuple) {
		t.Fatalf("tuple without additionalItems should not allow more")
	}
	tuple.AdditionalItems = &schema.Schema{Type: schema.TypeNumber}
	if !AllowAdditionalItems(tuple) {
		t.Fatalf("tuple with additionalItems should allow more")
	}
}

func TestOptions_UsesEnumNames(t *testing.T) {
	got := Options(&schema.Schema{Enum: []any{"a", "b"}, EnumNames: []string{"Alpha", "Beta"}})
	want := []EnumOption{{Label: "Alpha", Value: "a"}, {Label: "Beta", Value: "b"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	got = Options(&schema.Schema{Enum: []any{float64(1)}, EnumNames: []string{"x", "y"}})
	if got[0].Label != "1" {
		t.Fatalf("expected value label when enumNames mismatch, got %q", got[0].Label)
	}
}

func TestResolveDeep_RecursiveDefinitionsStayFinite(t *testing.T) {
	root := mustParse(t, `{
		"definitions": {
			"node": {"type": "object", "properties": {
				"name": {"type": "string"},
				"children": {"type": "array", "items": {"$ref": "#/definitions/node"}}
			}}
		},
		"$ref": "#/definitions/node"
	}`)
	data := map[string]any{
		"name": "root",
		"children": []any{
			map[string]any{"name": "leaf"},
		},
	}

	got, problems := ForRoot(root).ResolveDeep(root, data)
	if len(problems) != 0 {
		t.Fatalf("unexpected problems %v", problems)
	}
	leaf := got.Properties["children"].Items
	if leaf.Type != schema.TypeObject || leaf.Properties["name"].Type != schema.TypeString {
		t.Fatalf("expected resolved leaf node, got %+v", leaf)
	}
	if got.Definitions != nil {
		t.Fatalf("deep resolution should drop definitions")
	}
}

func TestResolveDeep_ReportsUnresolved(t *testing.T) {
	s := &schema.Schema{Type: schema.TypeObject, Properties: map[string]*schema.Schema{
		"bad": {Ref: "#/definitions/missing"},
	}}
	got, problems := New(nil).ResolveDeep(s, map[string]any{"bad": "x"})
	if len(problems) != 1 || !IsReferenceError(problems[0]) {
		t.Fatalf("expected one reference problem, got %v", problems)
	}
	if diff := cmp.Diff([]string{"bad"}, problems[0].Path); diff != "" {
		t.Fatalf("problem path mismatch (-want +got):\n%s", diff)
	}
	if got.Properties["bad"].Type != "" || got.Properties["bad"].Ref != "" {
		t.Fatalf("expected unconstrained replacement, got %+v", got.Properties["bad"])
	}
}

func TestLookupTemplate(t *testing.T) {
	defs := schema.Definitions{
		"address": {Type: schema.TypeObject, Properties: map[string]*schema.Schema{
			"street": {Type: schema.TypeString, Title: "Street"},
		}},
	}
	r := New(defs)

	for _, expr := range []string{"${address}", "${definitions.address}", "${#/definitions/address}"} {
		got, err := r.LookupTemplate(expr)
		if err != nil {
			t.Fatalf("lookup %s: %v", expr, err)
		}
		if got.Type != schema.TypeObject {
			t.Fatalf("lookup %s returned %+v", expr, got)
		}
	}
	street, err := r.LookupTemplate("${definitions.address.properties.street}")
	if err != nil || street.Title != "Street" {
		t.Fatalf("nested lookup failed: %+v %v", street, err)
	}
	if _, err := r.LookupTemplate("address"); !errors.Is(err, ErrNotTemplate) {
		t.Fatalf("expected ErrNotTemplate, got %v", err)
	}
	if _, err := r.LookupTemplate("${missing}"); !errors.Is(err, ErrUnresolvedReference) {
		t.Fatalf("expected ErrUnresolvedReference, got %v", err)
	}
}
