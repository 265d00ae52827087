package fields

import (
	"github.com/goliatone/go-formengine/pkg/registry"
	"github.com/goliatone/go-formengine/pkg/render"
)

// Title renders the heading of an object or array.
func Title(props registry.FieldProps) *render.Node {
	return &render.Node{
		Kind:     render.KindTitle,
		ID:       props.ID() + "__title",
		Path:     props.Path,
		Label:    label(props),
		Required: props.Required,
	}
}

// Description renders the sanitised description of an object or array.
func Description(props registry.FieldProps) *render.Node {
	return &render.Node{
		Kind:        render.KindDescription,
		ID:          props.ID() + "__description",
		Path:        props.Path,
		Description: description(props),
	}
}

// ErrorList renders the flat error summary of props.Errors, one "path:
// message" line per failure.
func ErrorList(props registry.FieldProps) *render.Node {
	node := &render.Node{
		Kind: render.KindErrorList,
		ID:   props.ID() + "__errors",
		Path: props.Path,
	}
	for _, fieldErr := range props.Errors.Flatten() {
		node.Errors = append(node.Errors, fieldErr.Stack)
	}
	return node
}

// Unsupported renders the marker for a node no field can handle.
func Unsupported(props registry.FieldProps) *render.Node {
	node := baseNode(props, render.KindUnsupported, registry.UnsupportedField)
	if node.Reason == "" {
		node.Reason = "Unknown field type " + props.Schema.TypeName()
	}
	node.OnChange = nil
	return node
}

// Null renders a null-typed property. It has no input; the value is always
// null.
func Null(props registry.FieldProps) *render.Node {
	node := baseNode(props, render.KindField, registry.NullField)
	node.Value = nil
	return node
}

func unsupportedFor(props registry.FieldProps) *render.Node {
	return structural(props, registry.UnsupportedField, Unsupported)
}

func titleFor(props registry.FieldProps) *render.Node {
	return structural(props, registry.TitleField, Title)
}

func descriptionFor(props registry.FieldProps) *render.Node {
	return structural(props, registry.DescriptionField, Description)
}

// ErrorListFor renders the form-level error summary through the registered
// ErrorListField.
func ErrorListFor(props registry.FieldProps) *render.Node {
	return structural(props, registry.ErrorListField, ErrorList)
}
