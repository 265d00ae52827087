package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mohae/deepcopy"
)

// JSON types understood by the engine. An empty type means "any".
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeNull    = "null"
)

// Definitions holds named auxiliary schemas referenced through $ref.
type Definitions map[string]*Schema

// AdditionalProperties captures both forms of the keyword: a boolean switch or
// a schema applied to every undeclared key.
type AdditionalProperties struct {
	Allowed bool
	Schema  *Schema
}

// Schema describes the shape of one value. Properties keeps declaration order
// in PropertyOrder so renderers can walk fields the way authors wrote them.
type Schema struct {
	Ref         string
	Type        string
	Nullable    bool
	Format      string
	Title       string
	Description string
	Default     any
	Enum        []any
	EnumNames   []string
	Const       any
	HasConst    bool

	Required             []string
	Properties           map[string]*Schema
	PropertyOrder        []string
	AdditionalProperties *AdditionalProperties

	Items           *Schema
	TupleItems      []*Schema
	AdditionalItems *Schema

	Definitions Definitions

	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum bool
	ExclusiveMaximum bool
	MinLength        *uint64
	MaxLength        *uint64
	Pattern          string
	MinItems         *uint64
	MaxItems         *uint64
	UniqueItems      bool
	ReadOnly         bool

	Extensions map[string]any

	// Additional marks properties synthesized from additionalProperties for
	// keys present in the data but not declared.
	Additional bool
}

// Clone returns a deep copy of the schema.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	return deepcopy.Copy(s).(*Schema)
}

// TypeName returns the declared type or "undefined" when absent.
func (s *Schema) TypeName() string {
	if s == nil || s.Type == "" {
		return "undefined"
	}
	return s.Type
}

// IsRequired reports whether name appears in the required list.
func (s *Schema) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, req := range s.Required {
		if req == name {
			return true
		}
	}
	return false
}

// OrderedProperties returns property names in declaration order. Names missing
// from PropertyOrder (schemas built in code) follow, sorted.
func (s *Schema) OrderedProperties() []string {
	if s == nil || len(s.Properties) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.Properties))
	seen := make(map[string]struct{}, len(s.Properties))
	for _, name := range s.PropertyOrder {
		if _, ok := s.Properties[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	var rest []string
	for name := range s.Properties {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// SetProperty adds or replaces a property, keeping the declaration order.
func (s *Schema) SetProperty(name string, prop *Schema) {
	if s.Properties == nil {
		s.Properties = make(map[string]*Schema)
	}
	if _, exists := s.Properties[name]; !exists {
		s.PropertyOrder = append(s.PropertyOrder, name)
	}
	s.Properties[name] = prop
}

// AllowsAdditionalProperties reports whether undeclared keys may appear.
func (s *Schema) AllowsAdditionalProperties() bool {
	return s != nil && s.AdditionalProperties != nil && (s.AdditionalProperties.Allowed || s.AdditionalProperties.Schema != nil)
}

// Check reports structural problems: required names missing from properties
// and arrays declaring both homogeneous and tuple items. The checks recurse
// into nested schemas and definitions.
func (s *Schema) Check() []error {
	var errs []error
	s.check("#", &errs)
	return errs
}

func (s *Schema) check(pointer string, errs *[]error) {
	if s == nil {
		return
	}
	if s.Type == TypeObject || len(s.Properties) > 0 {
		for _, req := range s.Required {
			if _, ok := s.Properties[req]; !ok && !s.AllowsAdditionalProperties() {
				*errs = append(*errs, fmt.Errorf("schema: %s: required property %q is not declared", pointer, req))
			}
		}
	}
	if s.Items != nil && len(s.TupleItems) > 0 {
		*errs = append(*errs, fmt.Errorf("schema: %s: array declares both items and tuple items", pointer))
	}
	for _, name := range s.OrderedProperties() {
		s.Properties[name].check(pointer+"/properties/"+escapePointer(name), errs)
	}
	s.Items.check(pointer+"/items", errs)
	for idx, item := range s.TupleItems {
		item.check(fmt.Sprintf("%s/items/%d", pointer, idx), errs)
	}
	if s.AdditionalProperties != nil {
		s.AdditionalProperties.Schema.check(pointer+"/additionalProperties", errs)
	}
	names := make([]string, 0, len(s.Definitions))
	for name := range s.Definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.Definitions[name].check(pointer+"/definitions/"+escapePointer(name), errs)
	}
}

func escapePointer(value string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(value)
}
