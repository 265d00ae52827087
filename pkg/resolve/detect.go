package resolve

import (
	"fmt"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// EnumOption is one selectable value of an enum-backed schema.
type EnumOption struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// IsConstant reports schemas that admit exactly one value.
func IsConstant(s *schema.Schema) bool {
	return s != nil && (s.HasConst || len(s.Enum) == 1)
}

// ToConstant returns the single value of a constant schema.
func ToConstant(s *schema.Schema) (any, bool) {
	switch {
	case s == nil:
		return nil, false
	case s.HasConst:
		return s.Const, true
	case len(s.Enum) == 1:
		return s.Enum[0], true
	default:
		return nil, false
	}
}

// IsFixedItems reports arrays whose items are declared position by position.
func IsFixedItems(s *schema.Schema) bool {
	return s != nil && len(s.TupleItems) > 0
}

// AllowAdditionalItems reports tuple arrays accepting items past the tuple.
func AllowAdditionalItems(s *schema.Schema) bool {
	return IsFixedItems(s) && s.AdditionalItems != nil
}

// IsSelect reports a schema choosing one value out of several.
func (r *Resolver) IsSelect(s *schema.Schema) bool {
	resolved, err := r.dereference(s)
	if err != nil {
		return false
	}
	return len(resolved.Enum) > 1
}

// IsMultiSelect reports an array whose items choose from a fixed value set.
func (r *Resolver) IsMultiSelect(s *schema.Schema) bool {
	resolved, err := r.dereference(s)
	if err != nil || resolved.Items == nil {
		return false
	}
	inferType(resolved)
	if resolved.Type != schema.TypeArray {
		return false
	}
	return r.IsSelect(resolved.Items)
}

// IsFilesArray reports arrays of data-url strings.
func (r *Resolver) IsFilesArray(s *schema.Schema) bool {
	resolved, err := r.dereference(s)
	if err != nil || resolved.Items == nil {
		return false
	}
	items, err := r.dereference(resolved.Items)
	if err != nil {
		return false
	}
	return items.Type == schema.TypeString && items.Format == "data-url"
}

// Options lists the choices of an enum schema, labelled by enumNames when the
// lengths match.
func Options(s *schema.Schema) []EnumOption {
	if s == nil || len(s.Enum) == 0 {
		return nil
	}
	useNames := len(s.EnumNames) == len(s.Enum)
	out := make([]EnumOption, len(s.Enum))
	for idx, value := range s.Enum {
		label := fmt.Sprint(value)
		if useNames {
			label = s.EnumNames[idx]
		}
		out[idx] = EnumOption{Label: label, Value: value}
	}
	return out
}
