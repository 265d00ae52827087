package fields

import (
	"strconv"

	"github.com/goliatone/go-formengine/pkg/defaults"
	"github.com/goliatone/go-formengine/pkg/registry"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/resolve"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/uischema"
)

// Array renders an array schema in one of three shapes: a multi-select
// widget when the items choose from an enum, one child per tuple position
// for fixed items, or one child per element for homogeneous items.
func Array(props registry.FieldProps) *render.Node {
	s := props.Schema
	res := resolverOf(props.Context)
	switch {
	case resolve.IsFixedItems(s):
		return fixedArray(props)
	case res.IsMultiSelect(s):
		return multiSelect(props)
	default:
		return listArray(props)
	}
}

func arrayNode(props registry.FieldProps) *render.Node {
	node := baseNode(props, render.KindArray, registry.ArrayField)
	if node.Label != "" {
		node.Children = append(node.Children, titleFor(props))
	}
	if node.Description != "" {
		node.Children = append(node.Children, descriptionFor(props))
	}
	return node
}

func listArray(props registry.FieldProps) *render.Node {
	s := props.Schema
	node := arrayNode(props)
	items := asSlice(props.Value)
	options := props.UiSchema.Options()
	removable := optionBool(options, "removable", true) && !belowMin(s, len(items)-1)

	for idx, value := range items {
		node.Children = appendItem(node.Children, arrayItem(props, node, idx, s.Items, props.UiSchema.Items(), value, removable))
	}
	if optionBool(options, "addable", true) && !aboveMax(s, len(items)+1) {
		node.OnAdd = appender(props, s.Items)
	}
	return node
}

func fixedArray(props registry.FieldProps) *render.Node {
	s := props.Schema
	node := arrayNode(props)
	items := asSlice(props.Value)
	options := props.UiSchema.Options()

	size := len(s.TupleItems)
	if len(items) > size && s.AdditionalItems != nil {
		size = len(items)
	}
	for idx := 0; idx < size; idx++ {
		var value any
		if idx < len(items) {
			value = items[idx]
		}
		if idx < len(s.TupleItems) {
			node.Children = appendItem(node.Children, arrayItem(props, node, idx, s.TupleItems[idx], tupleUI(props.UiSchema, idx), value, false))
			continue
		}
		extraUI := props.UiSchema.Child("additionalItems")
		node.Children = appendItem(node.Children, arrayItem(props, node, idx, s.AdditionalItems, extraUI, value, optionBool(options, "removable", true)))
	}
	if resolve.AllowAdditionalItems(s) && optionBool(options, "addable", true) && !aboveMax(s, size+1) {
		node.OnAdd = appender(props, s.AdditionalItems)
	}
	return node
}

func arrayItem(props registry.FieldProps, parent *render.Node, idx int, item *schema.Schema, ui uischema.UiSchema, value any, removable bool) *render.Node {
	key := strconv.Itoa(idx)
	cp := childProps(props, key, item, ui, props.IDSchema.Item(idx), value, func(next any) {
		emit(props, withIndex(current(props), idx, next))
	})
	cp.Disabled = parent.Disabled
	cp.ReadOnly = parent.ReadOnly
	node := child(cp)
	if node != nil && removable {
		node.OnRemove = func() {
			emit(props, withoutIndex(current(props), idx))
		}
	}
	return node
}

func appendItem(children []*render.Node, item *render.Node) []*render.Node {
	if item == nil {
		return children
	}
	return append(children, item)
}

func appender(props registry.FieldProps, item *schema.Schema) func() {
	computer := defaults.NewComputer(resolverOf(props.Context))
	return func() {
		emit(props, appended(current(props), computer.Compute(item, nil)))
	}
}

// tupleUI returns the hints for tuple position idx. "items" may be a list
// with one entry per position or a single object shared by all.
func tupleUI(ui uischema.UiSchema, idx int) uischema.UiSchema {
	if list, ok := ui[uischema.KeyItems].([]any); ok {
		if idx < len(list) {
			if entry, ok := list[idx].(map[string]any); ok {
				return uischema.UiSchema(entry)
			}
		}
		return nil
	}
	return ui.Items()
}

func multiSelect(props registry.FieldProps) *render.Node {
	s := props.Schema
	res := resolverOf(props.Context)
	items, err := res.Resolve(s.Items, nil)
	if err != nil {
		return resolutionFailure(props, err)
	}

	reg := registryOf(props.Context)
	name := props.UiSchema.Widget()
	if name == "" {
		name = reg.DefaultWidget(s, res)
	}
	widget, miss := reg.ResolveWidget(s, name)
	if miss != nil {
		props.Reason = "Unknown field type " + s.TypeName()
		node := unsupportedFor(props)
		node.Errors = append(node.Errors, miss.Error())
		return node
	}

	node := baseNode(props, render.KindField, registry.ArrayField)
	node.Multiple = true
	wp := widgetProps(props, node)
	wp.Multiple = true
	wp.Choices = choices(items)
	wp.OnChange = func(next any) {
		emit(props, next)
	}
	node.OnChange = wp.OnChange
	node.Children = []*render.Node{widget.Render(wp)}
	return node
}

func belowMin(s *schema.Schema, size int) bool {
	return s.MinItems != nil && size < int(*s.MinItems)
}

func aboveMax(s *schema.Schema, size int) bool {
	return s.MaxItems != nil && size > int(*s.MaxItems)
}
