package validation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-formengine/pkg/resolve"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// OpenAPIValidator is the default Validator. It converts the resolved schema
// to a kin-openapi schema and collects every failure of VisitJSON. Tuple
// arrays, which OpenAPI cannot express, are validated position by position.
type OpenAPIValidator struct {
	opts []openapi3.SchemaValidationOption
}

// OpenAPIOption configures an OpenAPIValidator.
type OpenAPIOption func(*OpenAPIValidator)

// WithSchemaValidationOptions appends kin-openapi visit options.
func WithSchemaValidationOptions(opts ...openapi3.SchemaValidationOption) OpenAPIOption {
	return func(v *OpenAPIValidator) {
		v.opts = append(v.opts, opts...)
	}
}

// NewOpenAPIValidator constructs the default validation primitive.
func NewOpenAPIValidator(opts ...OpenAPIOption) *OpenAPIValidator {
	v := &OpenAPIValidator{opts: []openapi3.SchemaValidationOption{openapi3.MultiErrors()}}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

var _ Validator = (*OpenAPIValidator)(nil)

// Validate implements Validator.
func (v *OpenAPIValidator) Validate(ctx context.Context, document any, s *schema.Schema) ([]Issue, error) {
	if s == nil {
		return nil, nil
	}
	normalised, err := normaliseDocument(document)
	if err != nil {
		return nil, fmt.Errorf("validation: normalise document: %w", err)
	}
	var issues []Issue
	if err := v.visit(ctx, s, normalised, nil, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (v *OpenAPIValidator) visit(ctx context.Context, s *schema.Schema, value any, path []string, issues *[]Issue) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	converted := ToOpenAPI(s)
	if err := converted.VisitJSON(value, v.opts...); err != nil {
		collectIssues(err, path, issues)
	}

	switch typed := value.(type) {
	case []any:
		if resolve.IsFixedItems(s) {
			for idx, item := range typed {
				itemSchema := s.AdditionalItems
				if idx < len(s.TupleItems) {
					itemSchema = s.TupleItems[idx]
				}
				if itemSchema == nil {
					continue
				}
				if err := v.visit(ctx, itemSchema, item, appendPath(path, strconv.Itoa(idx)), issues); err != nil {
					return err
				}
			}
			return nil
		}
		if s.Items != nil && containsTuple(s.Items) {
			for idx, item := range typed {
				if err := v.visit(ctx, s.Items, item, appendPath(path, strconv.Itoa(idx)), issues); err != nil {
					return err
				}
			}
		}
	case map[string]any:
		for _, name := range s.OrderedProperties() {
			prop := s.Properties[name]
			item, present := typed[name]
			if !present || !containsTuple(prop) {
				continue
			}
			if err := v.visit(ctx, prop, item, appendPath(path, name), issues); err != nil {
				return err
			}
		}
		if extra := additionalSchema(s); extra != nil && containsTuple(extra) {
			for name, item := range typed {
				if _, declared := s.Properties[name]; declared {
					continue
				}
				if err := v.visit(ctx, extra, item, appendPath(path, name), issues); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ToOpenAPI converts a resolved schema node. Sub-schemas containing tuple
// arrays are left unconstrained; the validator visits them separately.
func ToOpenAPI(s *schema.Schema) *openapi3.Schema {
	out := &openapi3.Schema{}
	if s == nil {
		return out
	}

	switch s.Type {
	case "":
	case schema.TypeNull:
		out.Nullable = true
	default:
		out.Type = &openapi3.Types{s.Type}
	}
	if s.Nullable {
		out.Nullable = true
	}
	out.Format = s.Format
	out.Title = s.Title
	out.Description = s.Description
	out.Pattern = s.Pattern
	out.UniqueItems = s.UniqueItems
	out.ReadOnly = s.ReadOnly

	switch {
	case s.HasConst:
		out.Enum = []any{s.Const}
	case len(s.Enum) > 0:
		out.Enum = append([]any(nil), s.Enum...)
	}

	out.Min = s.Minimum
	out.Max = s.Maximum
	out.ExclusiveMin = s.ExclusiveMinimum
	out.ExclusiveMax = s.ExclusiveMaximum
	if s.MinLength != nil {
		out.MinLength = *s.MinLength
	}
	out.MaxLength = s.MaxLength
	if s.MinItems != nil {
		out.MinItems = *s.MinItems
	}
	out.MaxItems = s.MaxItems

	if len(s.Properties) > 0 {
		out.Properties = make(openapi3.Schemas, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = &openapi3.SchemaRef{Value: convertChild(prop)}
		}
	}
	out.Required = append([]string(nil), s.Required...)

	if ap := s.AdditionalProperties; ap != nil {
		switch {
		case ap.Schema != nil:
			out.AdditionalProperties = openapi3.AdditionalProperties{Schema: &openapi3.SchemaRef{Value: convertChild(ap.Schema)}}
		default:
			allowed := ap.Allowed
			out.AdditionalProperties = openapi3.AdditionalProperties{Has: &allowed}
		}
	}

	if s.Items != nil && !resolve.IsFixedItems(s) {
		out.Items = &openapi3.SchemaRef{Value: convertChild(s.Items)}
	}
	return out
}

func convertChild(s *schema.Schema) *openapi3.Schema {
	if containsTuple(s) {
		return &openapi3.Schema{}
	}
	return ToOpenAPI(s)
}

func containsTuple(s *schema.Schema) bool {
	if s == nil {
		return false
	}
	if resolve.IsFixedItems(s) {
		return true
	}
	if containsTuple(s.Items) || containsTuple(additionalSchema(s)) {
		return true
	}
	for _, prop := range s.Properties {
		if containsTuple(prop) {
			return true
		}
	}
	return false
}

func additionalSchema(s *schema.Schema) *schema.Schema {
	if s.AdditionalProperties == nil {
		return nil
	}
	return s.AdditionalProperties.Schema
}

func collectIssues(err error, prefix []string, issues *[]Issue) {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, inner := range multi {
			collectIssues(inner, prefix, issues)
		}
		return
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		path := append(append([]string(nil), prefix...), schemaErr.JSONPointer()...)
		*issues = append(*issues, Issue{
			Path:    pointerString(path),
			Message: schemaErr.Reason,
			Kind:    schemaErr.SchemaField,
		})
		return
	}

	*issues = append(*issues, Issue{Path: pointerString(prefix), Message: err.Error()})
}

func pointerString(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	out := ""
	for _, segment := range segments {
		out += "/" + escapePointer(segment)
	}
	return out
}

func escapePointer(segment string) string {
	escaped := make([]byte, 0, len(segment))
	for i := 0; i < len(segment); i++ {
		switch segment[i] {
		case '~':
			escaped = append(escaped, '~', '0')
		case '/':
			escaped = append(escaped, '~', '1')
		default:
			escaped = append(escaped, segment[i])
		}
	}
	return string(escaped)
}

func appendPath(path []string, segment string) []string {
	return append(append([]string(nil), path...), segment)
}

// normaliseDocument round-trips through JSON so Go ints, typed maps and
// structs become the float64/map[string]any shapes kin-openapi expects.
func normaliseDocument(document any) (any, error) {
	if document == nil {
		return nil, nil
	}
	raw, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
