package fields

import (
	"github.com/goliatone/go-formengine/pkg/defaults"
	"github.com/goliatone/go-formengine/pkg/registry"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/uischema"
)

// Object renders an object schema: title, description, then one child per
// property in ui:order (declared order otherwise). Children hidden by
// ui:visibleIf are skipped. Open objects accept new keys through OnAdd and
// synthesized entries can be removed or renamed.
func Object(props registry.FieldProps) *render.Node {
	s := props.Schema
	ui := props.UiSchema
	node := baseNode(props, render.KindObject, registry.ObjectField)
	values, _ := props.Value.(map[string]any)

	if len(props.Path) > 0 || s.Title != "" || !ui.Value(uischema.KeyTitle).IsZero() {
		node.Children = append(node.Children, titleFor(props))
	}
	if node.Description != "" {
		node.Children = append(node.Children, descriptionFor(props))
	}

	for _, name := range ui.Order(s.OrderedProperties()) {
		prop := s.Properties[name]
		childUI := ui.Child(name)
		if prop.Additional && childUI == nil {
			childUI = ui.Additional()
		}
		key := name
		value := values[key]
		cp := childProps(props, key, prop, childUI, props.IDSchema.Child(key), value, func(next any) {
			emit(props, withKey(current(props), key, next))
		})
		cp.Required = s.IsRequired(key)
		cp.Additional = prop.Additional
		cp.Disabled = node.Disabled
		cp.ReadOnly = node.ReadOnly
		if !visible(cp) {
			continue
		}

		childNode := child(cp)
		if childNode == nil {
			continue
		}
		if prop.Additional {
			childNode.Additional = true
			childNode.OnRemove = func() {
				emit(props, withoutKey(current(props), key))
			}
			childNode.OnRename = func(to string) bool {
				renamed, ok := renameKey(current(props), key, to)
				if ok {
					emit(props, renamed)
				}
				return ok
			}
		}
		node.Children = append(node.Children, childNode)
	}

	if s.AllowsAdditionalProperties() && optionBool(ui.Options(), "addable", true) {
		extra := additionalSchema(s)
		computer := defaults.NewComputer(resolverOf(props.Context))
		node.OnAdd = func() {
			base := current(props)
			emit(props, withKey(base, nextKey(base), computer.Compute(extra, nil)))
		}
	}
	return node
}

func additionalSchema(s *schema.Schema) *schema.Schema {
	if s.AdditionalProperties != nil && s.AdditionalProperties.Schema != nil {
		return s.AdditionalProperties.Schema
	}
	return &schema.Schema{Type: schema.TypeString}
}
