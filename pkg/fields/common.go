package fields

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formengine/pkg/idschema"
	"github.com/goliatone/go-formengine/pkg/registry"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/render/template"
	"github.com/goliatone/go-formengine/pkg/resolve"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/uischema"
	"github.com/goliatone/go-formengine/pkg/visibility"
	"go.uber.org/zap"
)

func resolverOf(ctx *registry.Context) *resolve.Resolver {
	if ctx == nil || ctx.Resolver == nil {
		return resolve.New(nil)
	}
	return ctx.Resolver
}

func registryOf(ctx *registry.Context) *registry.Registry {
	if ctx == nil || ctx.Registry == nil {
		return NewRegistry()
	}
	return ctx.Registry
}

// child renders props through the registered SchemaField.
func child(props registry.FieldProps) *render.Node {
	if props.Context.Halted() {
		return nil
	}
	field, ok := registryOf(props.Context).Field(registry.SchemaField)
	if !ok {
		field = registry.FieldFunc(Schema)
	}
	return field.Render(props)
}

// structural renders one of the structural helper fields (title,
// description, errors) by name.
func structural(props registry.FieldProps, name string, fallback registry.FieldFunc) *render.Node {
	field, ok := registryOf(props.Context).Field(name)
	if !ok {
		field = fallback
	}
	return field.Render(props)
}

func childProps(parent registry.FieldProps, key string, s *schema.Schema, ui uischema.UiSchema, ids *idschema.IDSchema, value any, onChange render.ChangeFunc) registry.FieldProps {
	if ids == nil {
		ids = &idschema.IDSchema{ID: parent.ID() + idschema.Separator + idschema.Sanitize(key)}
	}
	return registry.FieldProps{
		Schema:   s,
		UiSchema: ui,
		IDSchema: ids,
		Name:     key,
		Path:     appendPath(parent.Path, key),
		Value:    value,
		Disabled: parent.Disabled,
		ReadOnly: parent.ReadOnly,
		Errors:   parent.Errors.Child(key),
		OnChange: onChange,
		OnBlur:   parent.OnBlur,
		OnFocus:  parent.OnFocus,
		Context:  parent.Context,
	}
}

func appendPath(path []string, key string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, key)
}

// current returns the live value at path, falling back to the render-time
// value when the host does not expose one.
func current(props registry.FieldProps) any {
	ctx := props.Context
	if ctx != nil && ctx.Current != nil {
		if value, ok := ctx.Current(props.Path); ok {
			return value
		}
	}
	return props.Value
}

func emit(props registry.FieldProps, value any) {
	if props.OnChange != nil {
		props.OnChange(value)
	}
}

func disabled(props registry.FieldProps) bool {
	return props.Disabled || props.UiSchema.Bool(uischema.KeyDisabled)
}

func readOnly(props registry.FieldProps) bool {
	return props.ReadOnly || props.UiSchema.Bool(uischema.KeyReadOnly) || (props.Schema != nil && props.Schema.ReadOnly)
}

func evaluate(props registry.FieldProps, key string) string {
	value := props.UiSchema.Value(key)
	if value.IsZero() {
		return ""
	}
	var renderer template.Renderer
	if props.Context != nil {
		renderer = props.Context.Templates
	}
	out := template.Evaluate(renderer, value, props.Context.TemplateContext(props.Value))
	if strings.HasPrefix(out, template.BadTemplatePrefix) {
		props.Context.Log().Warn("template failed",
			zap.String("path", strings.Join(props.Path, ".")),
			zap.String("option", key),
			zap.String("result", out),
		)
	}
	return out
}

func label(props registry.FieldProps) string {
	if title := evaluate(props, uischema.KeyTitle); title != "" {
		return title
	}
	if props.Schema != nil && props.Schema.Title != "" {
		return props.Schema.Title
	}
	return props.Name
}

func description(props registry.FieldProps) string {
	if text := evaluate(props, uischema.KeyDescription); text != "" {
		return uischema.SanitizeText(text)
	}
	if props.Schema != nil && props.Schema.Description != "" {
		return uischema.SanitizeText(props.Schema.Description)
	}
	return ""
}

// baseNode fills the attributes shared by every field node.
func baseNode(props registry.FieldProps, kind render.Kind, component string) *render.Node {
	node := &render.Node{
		Kind:        kind,
		Component:   component,
		ID:          props.ID(),
		Name:        props.Name,
		Path:        props.Path,
		Type:        props.Schema.TypeName(),
		Label:       label(props),
		Description: description(props),
		Value:       props.Value,
		Required:    props.Required,
		Disabled:    disabled(props),
		ReadOnly:    readOnly(props),
		Hidden:      props.UiSchema.Bool(uischema.KeyHidden),
		Additional:  props.Additional,
		Errors:      append([]string(nil), props.Messages()...),
		Reason:      props.Reason,
		OnBlur:      props.OnBlur,
		OnFocus:     props.OnFocus,
	}
	if help := evaluate(props, uischema.KeyHelp); help != "" {
		node.Help = uischema.SanitizeText(help)
	}
	return node
}

// visible applies ui:visibleIf. Evaluator failures keep the field shown.
func visible(props registry.FieldProps) bool {
	rule := props.UiSchema.String(uischema.KeyVisibleIf)
	if rule == "" || props.Context == nil || props.Context.Visibility == nil {
		return true
	}
	values, _ := props.Context.FormData.(map[string]any)
	ok, err := props.Context.Visibility.Eval(strings.Join(props.Path, "."), rule, visibility.Context{
		Value:  props.Value,
		Values: values,
		Extras: props.Context.Extras,
	})
	if err != nil {
		props.Context.Log().Warn("visibility rule failed",
			zap.String("path", strings.Join(props.Path, ".")),
			zap.String("rule", rule),
			zap.Error(err),
		)
		return true
	}
	return ok
}

func choices(s *schema.Schema) []render.Choice {
	options := resolve.Options(s)
	if len(options) == 0 && s != nil && s.Type == schema.TypeBoolean {
		return []render.Choice{{Label: "Yes", Value: true}, {Label: "No", Value: false}}
	}
	out := make([]render.Choice, 0, len(options))
	for _, option := range options {
		out = append(out, render.Choice{Label: option.Label, Value: option.Value})
	}
	return out
}

func optionInt(options map[string]any, key string, fallback int) int {
	switch typed := options[key].(type) {
	case int:
		return typed
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	case string:
		if parsed, err := strconv.Atoi(typed); err == nil {
			return parsed
		}
	}
	return fallback
}

func optionBool(options map[string]any, key string, fallback bool) bool {
	if value, ok := options[key].(bool); ok {
		return value
	}
	return fallback
}
