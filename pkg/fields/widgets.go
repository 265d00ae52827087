package fields

import (
	"github.com/goliatone/go-formengine/pkg/registry"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/schema"
)

func widgetNode(props registry.WidgetProps, component string) *render.Node {
	node := &render.Node{
		Kind:        render.KindWidget,
		Component:   component,
		ID:          props.ID,
		Name:        props.Name,
		Path:        props.Path,
		Type:        props.Schema.TypeName(),
		Label:       props.Label,
		Placeholder: props.Placeholder,
		Value:       props.Value,
		Required:    props.Required,
		Disabled:    props.Disabled,
		ReadOnly:    props.ReadOnly,
		Autofocus:   props.Autofocus,
		Multiple:    props.Multiple,
		Errors:      props.Errors,
		OnChange:    props.OnChange,
		OnBlur:      props.OnBlur,
		OnFocus:     props.OnFocus,
	}
	node.Options = make(map[string]any, len(props.Options)+1)
	for key, value := range props.Options {
		node.Options[key] = value
	}
	return node
}

func inputWidget(component, inputType string) registry.Widget {
	return registry.WidgetFunc(func(props registry.WidgetProps) *render.Node {
		node := widgetNode(props, component)
		node.Options["inputType"] = inputType
		if inputType == "hidden" {
			node.Hidden = true
		}
		if props.Schema != nil {
			if props.Schema.MaxLength != nil {
				node.Options["maxLength"] = *props.Schema.MaxLength
			}
			if props.Schema.MinLength != nil {
				node.Options["minLength"] = *props.Schema.MinLength
			}
			if props.Schema.Pattern != "" {
				node.Options["pattern"] = props.Schema.Pattern
			}
		}
		return node
	})
}

func textareaWidget(props registry.WidgetProps) *render.Node {
	node := widgetNode(props, "textarea")
	node.Options["rows"] = optionInt(props.Options, "rows", 5)
	if props.Schema != nil && props.Schema.MaxLength != nil {
		node.Options["maxLength"] = *props.Schema.MaxLength
	}
	return node
}

func numberWidget(component, inputType string) registry.Widget {
	return registry.WidgetFunc(func(props registry.WidgetProps) *render.Node {
		node := widgetNode(props, component)
		node.Options["inputType"] = inputType
		s := props.Schema
		if s == nil {
			return node
		}
		if s.Minimum != nil {
			node.Options["min"] = *s.Minimum
		}
		if s.Maximum != nil {
			node.Options["max"] = *s.Maximum
		}
		if _, set := node.Options["step"]; !set {
			if s.Type == schema.TypeInteger {
				node.Options["step"] = 1
			} else {
				node.Options["step"] = "any"
			}
		}
		return node
	})
}

func checkboxWidget(props registry.WidgetProps) *render.Node {
	node := widgetNode(props, "checkbox")
	node.Options["inputType"] = "checkbox"
	checked, _ := props.Value.(bool)
	node.Value = checked
	return node
}

// choiceWidget renders select, radio and checkboxes. Multiple widgets keep
// their value as a list.
func choiceWidget(component string, multiple bool) registry.Widget {
	return registry.WidgetFunc(func(props registry.WidgetProps) *render.Node {
		node := widgetNode(props, component)
		node.Choices = append([]render.Choice(nil), props.Choices...)
		node.Multiple = multiple || props.Multiple
		if node.Multiple {
			selected, _ := props.Value.([]any)
			node.Value = append([]any{}, selected...)
		}
		return node
	})
}
