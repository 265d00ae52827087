package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Parse decodes a schema from JSON or YAML. YAML documents are converted to
// JSON first so property order survives either way.
func Parse(raw []byte) (*Schema, error) {
	data, err := ToJSON(raw)
	if err != nil {
		return nil, err
	}
	var out Schema
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	return &out, nil
}

// ParseValue decodes a JSON or YAML document into a JSON-compatible value
// (map[string]any, []any, string, float64, bool or nil).
func ParseValue(raw []byte) (any, error) {
	data, err := ToJSON(raw)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("schema: decode value: %w", err)
	}
	return out, nil
}

// KeyOrders returns the declared key order of every object in a JSON or YAML
// document, keyed by JSON pointer ("" is the document root).
func KeyOrders(raw []byte) (map[string][]string, error) {
	data, err := ToJSON(raw)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	if err := collectKeyOrders(data, "", out); err != nil {
		return nil, fmt.Errorf("schema: key order: %w", err)
	}
	return out, nil
}

func collectKeyOrders(raw []byte, pointer string, out map[string][]string) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '{':
		keys, err := objectKeys(trimmed)
		if err != nil {
			return err
		}
		out[pointer] = keys
		var children map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &children); err != nil {
			return err
		}
		for key, child := range children {
			if err := collectKeyOrders(child, pointer+"/"+escapePointer(key), out); err != nil {
				return err
			}
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		for idx, item := range items {
			if err := collectKeyOrders(item, pointer+"/"+strconv.Itoa(idx), out); err != nil {
				return err
			}
		}
	}
	return nil
}

// ToJSON returns raw unchanged when it already looks like JSON, otherwise it
// parses it as YAML and re-encodes it as JSON keeping mapping order.
func ToJSON(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("schema: document is empty")
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal(trimmed, &node); err != nil {
		return nil, fmt.Errorf("schema: parse yaml: %w", err)
	}
	var buf bytes.Buffer
	if err := writeYAMLNode(&buf, &node); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeYAMLNode(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeYAMLNode(buf, node.Content[0])
	case yaml.AliasNode:
		return writeYAMLNode(buf, node.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for idx := 0; idx+1 < len(node.Content); idx += 2 {
			if idx > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(node.Content[idx].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeYAMLNode(buf, node.Content[idx+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for idx, child := range node.Content {
			if idx > 0 {
				buf.WriteByte(',')
			}
			if err := writeYAMLNode(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		var value any
		if node.Tag == "!!timestamp" || node.Tag == "!!binary" {
			value = node.Value
		} else if err := node.Decode(&value); err != nil {
			return fmt.Errorf("schema: yaml scalar at line %d: %w", node.Line, err)
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("schema: yaml scalar at line %d: %w", node.Line, err)
		}
		buf.Write(encoded)
		return nil
	default:
		return fmt.Errorf("schema: unsupported yaml node kind %d", node.Kind)
	}
}

type wireSchema struct {
	Ref                  string             `json:"$ref,omitempty"`
	Type                 json.RawMessage    `json:"type,omitempty"`
	Format               string             `json:"format,omitempty"`
	Title                string             `json:"title,omitempty"`
	Description          string             `json:"description,omitempty"`
	Default              any                `json:"default,omitempty"`
	Enum                 []any              `json:"enum,omitempty"`
	EnumNames            []string           `json:"enumNames,omitempty"`
	Const                json.RawMessage    `json:"const,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Properties           json.RawMessage    `json:"properties,omitempty"`
	AdditionalProperties json.RawMessage    `json:"additionalProperties,omitempty"`
	Items                json.RawMessage    `json:"items,omitempty"`
	AdditionalItems      json.RawMessage    `json:"additionalItems,omitempty"`
	Definitions          map[string]*Schema `json:"definitions,omitempty"`
	Defs                 map[string]*Schema `json:"$defs,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty"`
	ExclusiveMinimum     json.RawMessage    `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum     json.RawMessage    `json:"exclusiveMaximum,omitempty"`
	MinLength            *uint64            `json:"minLength,omitempty"`
	MaxLength            *uint64            `json:"maxLength,omitempty"`
	Pattern              string             `json:"pattern,omitempty"`
	MinItems             *uint64            `json:"minItems,omitempty"`
	MaxItems             *uint64            `json:"maxItems,omitempty"`
	UniqueItems          bool               `json:"uniqueItems,omitempty"`
	ReadOnly             bool               `json:"readOnly,omitempty"`
}

// UnmarshalJSON decodes a schema node, accepting both forms of items,
// additionalProperties and exclusive bounds.
func (s *Schema) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("true")) || bytes.Equal(trimmed, []byte("{}")) {
		*s = Schema{}
		return nil
	}
	var wire wireSchema
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return err
	}
	out := Schema{
		Ref:         strings.TrimSpace(wire.Ref),
		Format:      wire.Format,
		Title:       wire.Title,
		Description: wire.Description,
		Default:     wire.Default,
		Enum:        wire.Enum,
		EnumNames:   wire.EnumNames,
		Required:    wire.Required,
		Minimum:     wire.Minimum,
		Maximum:     wire.Maximum,
		MinLength:   wire.MinLength,
		MaxLength:   wire.MaxLength,
		Pattern:     wire.Pattern,
		MinItems:    wire.MinItems,
		MaxItems:    wire.MaxItems,
		UniqueItems: wire.UniqueItems,
		ReadOnly:    wire.ReadOnly,
	}

	if err := decodeType(wire.Type, &out); err != nil {
		return err
	}
	if len(wire.Const) > 0 {
		if err := json.Unmarshal(wire.Const, &out.Const); err != nil {
			return fmt.Errorf("schema: const: %w", err)
		}
		out.HasConst = true
	}
	if len(wire.Properties) > 0 {
		props, order, err := decodeOrdered(wire.Properties)
		if err != nil {
			return fmt.Errorf("schema: properties: %w", err)
		}
		out.Properties, out.PropertyOrder = props, order
	}
	if len(wire.AdditionalProperties) > 0 {
		additional, err := decodeAdditional(wire.AdditionalProperties)
		if err != nil {
			return fmt.Errorf("schema: additionalProperties: %w", err)
		}
		out.AdditionalProperties = additional
	}
	if len(wire.Items) > 0 {
		if err := decodeItems(wire.Items, &out); err != nil {
			return fmt.Errorf("schema: items: %w", err)
		}
	}
	if len(wire.AdditionalItems) > 0 && !isBoolLiteral(wire.AdditionalItems) {
		var extra Schema
		if err := json.Unmarshal(wire.AdditionalItems, &extra); err != nil {
			return fmt.Errorf("schema: additionalItems: %w", err)
		}
		out.AdditionalItems = &extra
	}
	if min, exclusive, err := decodeExclusive(wire.ExclusiveMinimum); err != nil {
		return fmt.Errorf("schema: exclusiveMinimum: %w", err)
	} else if exclusive {
		out.ExclusiveMinimum = true
		if min != nil {
			out.Minimum = min
		}
	}
	if max, exclusive, err := decodeExclusive(wire.ExclusiveMaximum); err != nil {
		return fmt.Errorf("schema: exclusiveMaximum: %w", err)
	} else if exclusive {
		out.ExclusiveMaximum = true
		if max != nil {
			out.Maximum = max
		}
	}
	if len(wire.Definitions) > 0 || len(wire.Defs) > 0 {
		out.Definitions = make(Definitions, len(wire.Definitions)+len(wire.Defs))
		for name, def := range wire.Defs {
			out.Definitions[name] = def
		}
		for name, def := range wire.Definitions {
			out.Definitions[name] = def
		}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		if !strings.HasPrefix(strings.ToLower(key), "x-") {
			continue
		}
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			return fmt.Errorf("schema: extension %q: %w", key, err)
		}
		if out.Extensions == nil {
			out.Extensions = make(map[string]any)
		}
		out.Extensions[key] = decoded
	}

	*s = out
	return nil
}

func decodeType(raw json.RawMessage, out *Schema) error {
	if len(raw) == 0 {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		out.Type = single
		return nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return fmt.Errorf("schema: type must be a string or a list of strings")
	}
	for _, entry := range many {
		if entry == TypeNull {
			out.Nullable = true
			continue
		}
		if out.Type == "" {
			out.Type = entry
		}
	}
	if out.Type == "" && out.Nullable {
		out.Type = TypeNull
		out.Nullable = false
	}
	return nil
}

func decodeItems(raw json.RawMessage, out *Schema) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tuple []*Schema
		if err := json.Unmarshal(trimmed, &tuple); err != nil {
			return err
		}
		out.TupleItems = tuple
		return nil
	}
	var item Schema
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return err
	}
	out.Items = &item
	return nil
}

func decodeAdditional(raw json.RawMessage) (*AdditionalProperties, error) {
	trimmed := bytes.TrimSpace(raw)
	if isBoolLiteral(trimmed) {
		return &AdditionalProperties{Allowed: string(trimmed) == "true"}, nil
	}
	var extra Schema
	if err := json.Unmarshal(trimmed, &extra); err != nil {
		return nil, err
	}
	return &AdditionalProperties{Allowed: true, Schema: &extra}, nil
}

func decodeExclusive(raw json.RawMessage) (*float64, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, nil
	}
	if isBoolLiteral(trimmed) {
		return nil, string(trimmed) == "true", nil
	}
	var bound float64
	if err := json.Unmarshal(trimmed, &bound); err != nil {
		return nil, false, err
	}
	return &bound, true, nil
}

func isBoolLiteral(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return bytes.Equal(trimmed, []byte("true")) || bytes.Equal(trimmed, []byte("false"))
}

// decodeOrdered decodes an object of schemas and records its key order by
// scanning the token stream alongside the regular decode.
func decodeOrdered(raw json.RawMessage) (map[string]*Schema, []string, error) {
	var values map[string]*Schema
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, nil, err
	}
	order, err := objectKeys(raw)
	if err != nil {
		return nil, nil, err
	}
	return values, order, nil
}

func objectKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected an object")
	}
	var keys []string
	depth := 0
	expectKey := true
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); ok {
			switch delim {
			case '{', '[':
				depth++
			case '}', ']':
				if depth == 0 {
					return keys, nil
				}
				depth--
			}
			if depth == 0 {
				expectKey = true
			}
			continue
		}
		if depth > 0 {
			continue
		}
		if expectKey {
			key, ok := tok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected key token %v", tok)
			}
			keys = append(keys, key)
			expectKey = false
			continue
		}
		expectKey = true
	}
	return keys, nil
}
