package resolve

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formengine/pkg/schema"
)

const defaultMaxRefDepth = 64

// Option configures a Resolver.
type Option func(*Resolver)

// WithRoot makes "#" references resolve to root.
func WithRoot(root *schema.Schema) Option {
	return func(r *Resolver) {
		r.root = root
	}
}

// WithMaxRefDepth caps how many $ref hops a single node may take.
func WithMaxRefDepth(depth int) Option {
	return func(r *Resolver) {
		if depth > 0 {
			r.maxRefDepth = depth
		}
	}
}

// Resolver turns schema fragments into resolved schemas: references replaced
// by their definitions, missing types inferred and additional properties
// synthesized from the current data. Resolution never mutates its inputs.
type Resolver struct {
	definitions schema.Definitions
	root        *schema.Schema
	maxRefDepth int
}

// New constructs a resolver over the supplied definitions.
func New(definitions schema.Definitions, opts ...Option) *Resolver {
	r := &Resolver{
		definitions: definitions,
		maxRefDepth: defaultMaxRefDepth,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ForRoot builds a resolver for a root schema using its own definitions.
func ForRoot(root *schema.Schema, opts ...Option) *Resolver {
	var defs schema.Definitions
	if root != nil {
		defs = root.Definitions
	}
	return New(defs, append([]Option{WithRoot(root)}, opts...)...)
}

// Definitions exposes the definitions the resolver reads from.
func (r *Resolver) Definitions() schema.Definitions {
	if r == nil {
		return nil
	}
	return r.definitions
}

// Resolve resolves a single node. Children are left untouched; callers resolve
// them as they descend so recursive definitions stay finite. formData is only
// consulted for additionalProperties.
func (r *Resolver) Resolve(s *schema.Schema, formData any) (*schema.Schema, error) {
	out, err := r.dereference(s)
	if err != nil {
		return nil, err
	}
	inferType(out)
	if out.Type == schema.TypeArray && out.Items == nil && len(out.TupleItems) == 0 {
		return out, ErrMalformedItems
	}
	if out.Type == schema.TypeObject {
		synthesizeAdditional(out, formData)
	}
	return out, nil
}

// dereference follows $ref hops and returns a private copy of the target with
// the referencing node's annotations applied on top.
func (r *Resolver) dereference(s *schema.Schema) (*schema.Schema, error) {
	if s == nil {
		return &schema.Schema{}, nil
	}
	current := s
	var siblings []*schema.Schema
	visited := make(map[string]struct{})
	for current.Ref != "" {
		ref := current.Ref
		if _, seen := visited[ref]; seen {
			return nil, &ReferenceError{Ref: ref, Err: ErrCircularReference}
		}
		if len(visited) >= r.maxRefDepth {
			return nil, &ReferenceError{Ref: ref, Err: ErrCircularReference}
		}
		visited[ref] = struct{}{}
		target, err := r.lookup(ref)
		if err != nil {
			return nil, err
		}
		siblings = append(siblings, current)
		current = target
	}

	out := current.Clone()
	for idx := len(siblings) - 1; idx >= 0; idx-- {
		applySiblings(out, siblings[idx])
	}
	return out, nil
}

func applySiblings(target, ref *schema.Schema) {
	if ref.Title != "" {
		target.Title = ref.Title
	}
	if ref.Description != "" {
		target.Description = ref.Description
	}
	if ref.Default != nil {
		target.Default = ref.Default
	}
	if ref.ReadOnly {
		target.ReadOnly = true
	}
	if ref.Additional {
		target.Additional = true
	}
}

func (r *Resolver) lookup(ref string) (*schema.Schema, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "#" {
		if r.root == nil {
			return nil, &ReferenceError{Ref: ref, Err: ErrUnresolvedReference}
		}
		return r.root, nil
	}

	segments := refSegments(trimmed)
	if len(segments) == 0 {
		return nil, &ReferenceError{Ref: ref, Err: ErrUnresolvedReference}
	}
	def, ok := r.definitions[segments[0]]
	if !ok || def == nil {
		return nil, &ReferenceError{Ref: ref, Err: ErrUnresolvedReference}
	}
	target := walkPointer(def, segments[1:])
	if target == nil {
		return nil, &ReferenceError{Ref: ref, Err: ErrUnresolvedReference}
	}
	return target, nil
}

// refSegments strips the container prefix (#/definitions/, #/$defs/,
// #/components/schemas/) and splits the rest into unescaped pointer segments.
// Bare names are treated as definition names.
func refSegments(ref string) []string {
	trimmed := ref
	for _, prefix := range []string{"#/definitions/", "#/$defs/", "#/components/schemas/"} {
		if strings.HasPrefix(trimmed, prefix) {
			trimmed = strings.TrimPrefix(trimmed, prefix)
			break
		}
	}
	if strings.HasPrefix(trimmed, "#") {
		return nil
	}
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	for idx, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		parts[idx] = strings.ReplaceAll(part, "~0", "~")
	}
	return parts
}

func walkPointer(node *schema.Schema, segments []string) *schema.Schema {
	current := node
	for idx := 0; idx < len(segments) && current != nil; idx++ {
		switch segments[idx] {
		case "properties":
			if idx+1 >= len(segments) {
				return nil
			}
			idx++
			current = current.Properties[segments[idx]]
		case "definitions", "$defs":
			if idx+1 >= len(segments) {
				return nil
			}
			idx++
			current = current.Definitions[segments[idx]]
		case "items":
			if current.Items != nil {
				current = current.Items
				continue
			}
			if idx+1 < len(segments) {
				pos, err := strconv.Atoi(segments[idx+1])
				if err == nil && pos >= 0 && pos < len(current.TupleItems) {
					idx++
					current = current.TupleItems[pos]
					continue
				}
			}
			return nil
		case "additionalProperties":
			if current.AdditionalProperties == nil {
				return nil
			}
			current = current.AdditionalProperties.Schema
		default:
			return nil
		}
	}
	return current
}

// inferType fills a missing type from the keywords present, mirroring what a
// reader would assume: constants take their value's type, properties imply an
// object and items imply an array.
func inferType(s *schema.Schema) {
	if s.Type != "" {
		return
	}
	switch {
	case s.HasConst:
		s.Type = GuessType(s.Const)
	case len(s.Enum) > 0:
		s.Type = GuessType(s.Enum[0])
	case len(s.Properties) > 0 || s.AdditionalProperties != nil:
		s.Type = schema.TypeObject
	case s.Items != nil || len(s.TupleItems) > 0:
		s.Type = schema.TypeArray
	}
}

func synthesizeAdditional(s *schema.Schema, formData any) {
	if !s.AllowsAdditionalProperties() {
		return
	}
	values, ok := formData.(map[string]any)
	if !ok || len(values) == 0 {
		return
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		if _, declared := s.Properties[key]; declared {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		var prop *schema.Schema
		if extra := s.AdditionalProperties.Schema; extra != nil {
			prop = extra.Clone()
		} else {
			prop = &schema.Schema{Type: GuessType(values[key])}
		}
		prop.Additional = true
		s.SetProperty(key, prop)
	}
}

// GuessType maps a JSON-compatible value to its schema type.
func GuessType(value any) string {
	switch value.(type) {
	case nil:
		return schema.TypeNull
	case string:
		return schema.TypeString
	case bool:
		return schema.TypeBoolean
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return schema.TypeNumber
	case map[string]any:
		return schema.TypeObject
	case []any:
		return schema.TypeArray
	default:
		return ""
	}
}
