package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formengine/pkg/render"
)

// prompt asks for one widget and feeds the answer back through the node, so
// the field's own conversion and merge logic apply. Focus and blur are
// reported around the prompt.
func (h *Host) prompt(ctx context.Context, c candidate) error {
	node := c.node
	message := h.theme.PromptPrefix + labelOf(node)
	if node.Required {
		message += " *"
	}
	node.Focus(node.Value)

	answer, err := h.ask(ctx, node, message, c.help)
	if err != nil {
		return err
	}
	node.Change(answer)
	node.Blur(answer)
	return nil
}

func (h *Host) ask(ctx context.Context, node *render.Node, message, help string) (any, error) {
	switch {
	case node.Multiple:
		options, defaults := choiceLabels(node)
		picked, err := h.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  options,
			Defaults: defaults,
			Help:     help,
		})
		if err != nil {
			return nil, err
		}
		values := make([]any, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(node.Choices) {
				values = append(values, node.Choices[idx].Value)
			}
		}
		return values, nil

	case node.Component == "select" || node.Component == "radio":
		options, defaults := choiceLabels(node)
		selected := -1
		if len(defaults) > 0 {
			selected = defaults[0]
		}
		idx, err := h.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: selected,
			Help:         help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(node.Choices) {
			return nil, nil
		}
		return node.Choices[idx].Value, nil

	case node.Component == "checkbox":
		checked, _ := node.Value.(bool)
		return h.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: checked, Help: help})

	case node.Component == "textarea":
		return h.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: display(node.Value), Help: help})

	case node.Component == "password":
		return h.driver.Password(ctx, InputConfig{Message: message, Default: display(node.Value), Help: help})
	}

	numeric := node.Type == "number" || node.Type == "integer"
	for {
		answer, err := h.driver.Input(ctx, InputConfig{
			Message: message,
			Default: display(node.Value),
			Help:    help,
		})
		if err != nil {
			return nil, err
		}
		if numeric && strings.TrimSpace(answer) != "" {
			if _, err := strconv.ParseFloat(strings.TrimSpace(answer), 64); err != nil {
				_ = h.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %q is not a number", h.theme.ErrorPrefix, labelOf(node), answer))
				continue
			}
		}
		return answer, nil
	}
}

// choiceLabels returns the option captions and the indexes of the choices
// matching the node's current value.
func choiceLabels(node *render.Node) ([]string, []int) {
	labels := make([]string, len(node.Choices))
	current := map[string]bool{}
	switch value := node.Value.(type) {
	case []any:
		for _, item := range value {
			current[fmt.Sprint(item)] = true
		}
	case nil:
	default:
		current[fmt.Sprint(value)] = true
	}

	var selected []int
	for idx, choice := range node.Choices {
		labels[idx] = choice.Label
		if labels[idx] == "" {
			labels[idx] = fmt.Sprint(choice.Value)
		}
		if current[fmt.Sprint(choice.Value)] {
			selected = append(selected, idx)
		}
	}
	return labels, selected
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
