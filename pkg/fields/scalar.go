package fields

import (
	"github.com/goliatone/go-formengine/pkg/registry"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/uischema"
)

// scalarField builds the string, number, boolean and date fields. They differ
// only in the conversion applied to widget input before it bubbles up.
func scalarField(component string, convert func(any) any) registry.Field {
	return registry.FieldFunc(func(props registry.FieldProps) *render.Node {
		return scalar(props, component, convert)
	})
}

func scalar(props registry.FieldProps, component string, convert func(any) any) *render.Node {
	s := props.Schema
	reg := registryOf(props.Context)
	name := props.UiSchema.Widget()
	if name == "" {
		name = reg.DefaultWidget(s, resolverOf(props.Context))
	}
	widget, miss := reg.ResolveWidget(s, name)
	if miss != nil {
		props.Reason = "Unknown field type " + s.TypeName()
		node := unsupportedFor(props)
		node.Errors = append(node.Errors, miss.Error())
		return node
	}

	node := baseNode(props, render.KindField, component)
	wp := widgetProps(props, node)
	wp.OnChange = func(next any) {
		emit(props, convert(next))
	}
	if s.HasConst {
		wp.ReadOnly = true
		node.ReadOnly = true
	}
	node.OnChange = wp.OnChange
	node.Children = []*render.Node{widget.Render(wp)}
	return node
}

func widgetProps(props registry.FieldProps, node *render.Node) registry.WidgetProps {
	return registry.WidgetProps{
		ID:          node.ID,
		Name:        node.Name,
		Path:        node.Path,
		Schema:      props.Schema,
		UiSchema:    props.UiSchema,
		Label:       node.Label,
		Placeholder: evaluate(props, uischema.KeyPlaceholder),
		Value:       props.Value,
		Required:    node.Required,
		Disabled:    node.Disabled,
		ReadOnly:    node.ReadOnly,
		Autofocus:   props.UiSchema.Bool(uischema.KeyAutofocus),
		Choices:     choices(props.Schema),
		Options:     props.UiSchema.Options(),
		Errors:      node.Errors,
		OnBlur:      props.OnBlur,
		OnFocus:     props.OnFocus,
		Context:     props.Context,
	}
}
