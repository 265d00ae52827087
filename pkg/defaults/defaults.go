// Package defaults computes complete form documents from a schema and a
// partial document.
//
// One rule applies to every type: supplied data wins over the schema default,
// which wins over the type's zero value. The zero value is only used for
// required properties and tuple positions; optional scalars without a default
// stay absent.
package defaults

import (
	"errors"

	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-formengine/pkg/resolve"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// Compute merges schema defaults into supplied and returns the resulting
// document. supplied is never mutated. Compute is idempotent: feeding its
// output back in returns an equal document.
func Compute(s *schema.Schema, supplied any, definitions schema.Definitions) any {
	return NewComputer(resolve.New(definitions, resolve.WithRoot(s))).Compute(s, supplied)
}

// Computer computes defaults with a caller-provided resolver.
type Computer struct {
	resolver *resolve.Resolver
}

// NewComputer binds a computer to a resolver.
func NewComputer(r *resolve.Resolver) *Computer {
	if r == nil {
		r = resolve.New(nil)
	}
	return &Computer{resolver: r}
}

// Compute implements the package-level Compute.
func (c *Computer) Compute(s *schema.Schema, supplied any) any {
	value, _ := c.compute(s, supplied, true, make(map[string]int))
	return value
}

// maxRecursion bounds how many times one $ref may be entered on a single path
// when no data drives the descent.
const maxRecursion = 1

// compute returns the value and whether it is present.
func (c *Computer) compute(s *schema.Schema, supplied any, required bool, active map[string]int) (any, bool) {
	resolved, err := c.resolver.Resolve(s, supplied)
	if err != nil && !errors.Is(err, resolve.ErrMalformedItems) {
		return supplied, supplied != nil
	}
	if s != nil && s.Ref != "" {
		if active[s.Ref] >= maxRecursion && supplied == nil {
			return nil, false
		}
		active[s.Ref]++
		defer func() { active[s.Ref]-- }()
	}

	if constant, ok := resolve.ToConstant(resolved); ok && supplied == nil {
		return clone(constant), true
	}

	switch resolved.Type {
	case schema.TypeObject:
		return c.object(resolved, supplied, active), true
	case schema.TypeArray:
		return c.array(resolved, supplied, active), true
	default:
		return scalar(resolved, supplied, required)
	}
}

// object fills an object schema. Supplied data that is not an object is kept
// as is so validation can report it.
func (c *Computer) object(s *schema.Schema, supplied any, active map[string]int) any {
	values, ok := supplied.(map[string]any)
	if !ok && supplied != nil {
		return clone(supplied)
	}
	if !ok {
		if defaults, hasDefault := s.Default.(map[string]any); hasDefault {
			values = clone(defaults).(map[string]any)
		}
	} else if defaults, hasDefault := s.Default.(map[string]any); hasDefault {
		merged := clone(defaults).(map[string]any)
		for key, value := range values {
			merged[key] = value
		}
		values = merged
	}

	out := make(map[string]any, len(s.Properties)+len(values))
	for _, name := range s.OrderedProperties() {
		child, present := values[name]
		computed, keep := c.compute(s.Properties[name], child, s.IsRequired(name), active)
		if keep {
			out[name] = computed
		} else if present {
			out[name] = child
		}
	}
	for key, value := range values {
		if _, declared := out[key]; declared {
			continue
		}
		if _, declared := s.Properties[key]; declared {
			continue
		}
		out[key] = clone(value)
	}
	return out
}

func (c *Computer) array(s *schema.Schema, supplied any, active map[string]int) any {
	items, ok := supplied.([]any)
	if !ok {
		if defaults, hasDefault := s.Default.([]any); hasDefault {
			items = clone(defaults).([]any)
		}
	}

	if resolve.IsFixedItems(s) {
		size := len(s.TupleItems)
		if len(items) > size {
			size = len(items)
		}
		out := make([]any, size)
		for idx := 0; idx < size; idx++ {
			var current any
			if idx < len(items) {
				current = items[idx]
			}
			itemSchema := s.AdditionalItems
			if idx < len(s.TupleItems) {
				itemSchema = s.TupleItems[idx]
			}
			if itemSchema == nil {
				out[idx] = clone(current)
				continue
			}
			value, _ := c.compute(itemSchema, current, true, active)
			out[idx] = value
		}
		return out
	}

	if items == nil {
		return []any{}
	}
	out := make([]any, len(items))
	for idx, item := range items {
		out[idx] = clone(item)
		if !structural(c.resolver, s.Items) {
			continue
		}
		if value, ok := c.compute(s.Items, item, false, active); ok {
			out[idx] = value
		}
	}
	return out
}

func structural(r *resolve.Resolver, s *schema.Schema) bool {
	if s == nil {
		return false
	}
	resolved, err := r.Resolve(s, nil)
	if err != nil && !errors.Is(err, resolve.ErrMalformedItems) {
		return false
	}
	return resolved.Type == schema.TypeObject || resolved.Type == schema.TypeArray
}

func scalar(s *schema.Schema, supplied any, required bool) (any, bool) {
	if supplied != nil {
		return supplied, true
	}
	if s.Default != nil {
		return clone(s.Default), true
	}
	if !required {
		return nil, false
	}
	return Zero(s.Type)
}

// Zero returns the zero value for a JSON type. It reports false for types
// without a meaningful zero ("any").
func Zero(typ string) (any, bool) {
	switch typ {
	case schema.TypeString:
		return "", true
	case schema.TypeNumber, schema.TypeInteger:
		return float64(0), true
	case schema.TypeBoolean:
		return false, true
	case schema.TypeNull:
		return nil, true
	case schema.TypeObject:
		return map[string]any{}, true
	case schema.TypeArray:
		return []any{}, true
	default:
		return nil, false
	}
}

func clone(value any) any {
	return deepcopy.Copy(value)
}
