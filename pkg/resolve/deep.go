package resolve

import (
	"errors"
	"strconv"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// ResolveDeep resolves a whole tree for validation. Recursion is bounded by
// the nesting depth of formData: levels the data never reaches are replaced by
// an unconstrained schema, which keeps self-referencing definitions finite.
// Unresolvable nodes are also replaced and reported in the returned slice,
// each at the data path of the field it belongs to.
func (r *Resolver) ResolveDeep(s *schema.Schema, formData any) (*schema.Schema, []PathError) {
	var problems []PathError
	out := r.deep(s, nil, dataDepth(formData)+1, &problems)
	return out, problems
}

func (r *Resolver) deep(s *schema.Schema, path []string, budget int, problems *[]PathError) *schema.Schema {
	if budget <= 0 || s == nil {
		return &schema.Schema{}
	}
	out, err := r.dereference(s)
	if err != nil {
		*problems = append(*problems, PathError{Path: path, Err: err})
		return &schema.Schema{}
	}
	inferType(out)
	out.Definitions = nil

	for name, prop := range out.Properties {
		out.Properties[name] = r.deep(prop, child(path, name), budget-1, problems)
	}
	if out.Items != nil {
		out.Items = r.deep(out.Items, path, budget-1, problems)
	}
	for idx, item := range out.TupleItems {
		out.TupleItems[idx] = r.deep(item, child(path, strconv.Itoa(idx)), budget-1, problems)
	}
	if out.AdditionalItems != nil {
		out.AdditionalItems = r.deep(out.AdditionalItems, path, budget-1, problems)
	}
	if out.AdditionalProperties != nil && out.AdditionalProperties.Schema != nil {
		out.AdditionalProperties.Schema = r.deep(out.AdditionalProperties.Schema, path, budget-1, problems)
	}
	return out
}

func child(path []string, segment string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = segment
	return out
}

func dataDepth(value any) int {
	switch typed := value.(type) {
	case map[string]any:
		max := 0
		for _, child := range typed {
			if d := dataDepth(child); d > max {
				max = d
			}
		}
		return max + 1
	case []any:
		max := 0
		for _, child := range typed {
			if d := dataDepth(child); d > max {
				max = d
			}
		}
		return max + 1
	default:
		return 0
	}
}

// IsReferenceError reports errors produced by reference resolution.
func IsReferenceError(err error) bool {
	var refErr *ReferenceError
	return errors.As(err, &refErr)
}
