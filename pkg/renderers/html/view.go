package html

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/goliatone/go-formengine/pkg/render"
)

// attributeOptions are widget options emitted as HTML attributes.
var attributeOptions = map[string]string{
	"maxLength": "maxlength",
	"minLength": "minlength",
	"pattern":   "pattern",
	"min":       "min",
	"max":       "max",
	"step":      "step",
	"rows":      "rows",
}

// nodeView flattens a node into the plain maps the template engine accepts.
func nodeView(node *render.Node) map[string]any {
	name := node.FieldPath()
	if name == "" {
		name = node.ID
	}
	inputType, _ := node.Options["inputType"].(string)
	if inputType == "" {
		inputType = "text"
	}
	checked, _ := node.Value.(bool)

	return map[string]any{
		"id":          node.ID,
		"name":        name,
		"path":        node.FieldPath(),
		"component":   node.Component,
		"type":        node.Type,
		"inputType":   inputType,
		"label":       node.Label,
		"labelled":    node.Component != "checkboxes" && node.Component != "radio",
		"description": node.Description,
		"help":        node.Help,
		"placeholder": node.Placeholder,
		"value":       display(node.Value),
		"checked":     checked,
		"required":    node.Required,
		"disabled":    node.Disabled,
		"readonly":    node.ReadOnly,
		"autofocus":   node.Autofocus,
		"multiple":    node.Multiple,
		"additional":  node.Additional,
		"addable":     node.OnAdd != nil && !node.Disabled && !node.ReadOnly,
		"removable":   node.OnRemove != nil && !node.Disabled && !node.ReadOnly,
		"errors":      stringsToAny(node.Errors),
		"reason":      node.Reason,
		"choices":     choiceViews(node),
		"attributes":  attributes(node.Options),
	}
}

func choiceViews(node *render.Node) []any {
	if len(node.Choices) == 0 {
		return nil
	}
	selected := map[string]bool{}
	switch value := node.Value.(type) {
	case []any:
		for _, item := range value {
			selected[display(item)] = true
		}
	case nil:
	default:
		selected[display(value)] = true
	}

	out := make([]any, 0, len(node.Choices))
	for _, choice := range node.Choices {
		value := display(choice.Value)
		label := choice.Label
		if label == "" {
			label = value
		}
		out = append(out, map[string]any{
			"label":    label,
			"value":    value,
			"selected": selected[value],
		})
	}
	return out
}

func attributes(options map[string]any) []any {
	names := make([]string, 0, len(attributeOptions))
	for option := range attributeOptions {
		if _, ok := options[option]; ok {
			names = append(names, option)
		}
	}
	sort.Strings(names)

	out := make([]any, 0, len(names))
	for _, option := range names {
		out = append(out, map[string]any{
			"name":  attributeOptions[option],
			"value": display(options[option]),
		})
	}
	return out
}

func display(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
