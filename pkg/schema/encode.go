package schema

import (
	"bytes"
	"sort"

	"github.com/goccy/go-json"
)

// MarshalJSON encodes the schema with properties in declaration order.
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	field := func(key string, value any) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		name, _ := json.Marshal(key)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(encoded)
		return nil
	}

	type entry struct {
		key   string
		value any
		when  bool
	}
	entries := []entry{
		{"$ref", s.Ref, s.Ref != ""},
		{"type", s.typeValue(), s.Type != ""},
		{"format", s.Format, s.Format != ""},
		{"title", s.Title, s.Title != ""},
		{"description", s.Description, s.Description != ""},
		{"default", s.Default, s.Default != nil},
		{"enum", s.Enum, len(s.Enum) > 0},
		{"enumNames", s.EnumNames, len(s.EnumNames) > 0},
		{"const", s.Const, s.HasConst},
		{"required", s.Required, len(s.Required) > 0},
		{"properties", orderedSchemas{schema: s}, len(s.Properties) > 0},
		{"additionalProperties", s.additionalValue(), s.AdditionalProperties != nil},
		{"items", s.Items, s.Items != nil},
		{"items", s.TupleItems, s.Items == nil && len(s.TupleItems) > 0},
		{"additionalItems", s.AdditionalItems, s.AdditionalItems != nil},
		{"minimum", s.Minimum, s.Minimum != nil && !s.ExclusiveMinimum},
		{"exclusiveMinimum", s.Minimum, s.Minimum != nil && s.ExclusiveMinimum},
		{"maximum", s.Maximum, s.Maximum != nil && !s.ExclusiveMaximum},
		{"exclusiveMaximum", s.Maximum, s.Maximum != nil && s.ExclusiveMaximum},
		{"minLength", s.MinLength, s.MinLength != nil},
		{"maxLength", s.MaxLength, s.MaxLength != nil},
		{"pattern", s.Pattern, s.Pattern != ""},
		{"minItems", s.MinItems, s.MinItems != nil},
		{"maxItems", s.MaxItems, s.MaxItems != nil},
		{"uniqueItems", true, s.UniqueItems},
		{"readOnly", true, s.ReadOnly},
		{"definitions", s.Definitions, len(s.Definitions) > 0},
	}
	for _, e := range entries {
		if !e.when {
			continue
		}
		if err := field(e.key, e.value); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(s.Extensions))
	for key := range s.Extensions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := field(key, s.Extensions[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Schema) typeValue() any {
	if s.Nullable && s.Type != TypeNull {
		return []string{s.Type, TypeNull}
	}
	return s.Type
}

func (s *Schema) additionalValue() any {
	if s.AdditionalProperties == nil {
		return nil
	}
	if s.AdditionalProperties.Schema != nil {
		return s.AdditionalProperties.Schema
	}
	return s.AdditionalProperties.Allowed
}

type orderedSchemas struct {
	schema *Schema
}

func (o orderedSchemas) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, name := range o.schema.OrderedProperties() {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(o.schema.Properties[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
