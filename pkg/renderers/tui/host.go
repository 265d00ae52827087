// Package tui hosts a form in the terminal. It walks the rendered field tree,
// prompts for every editable widget through a PromptDriver, feeds answers to
// the controller and submits, re-prompting the fields that failed validation.
package tui

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/render"
)

// Host drives one terminal session per Fill call.
type Host struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxAttempts       int
	logger            *zap.Logger
}

// New constructs a terminal host with defaults (survey driver, JSON output,
// three submit attempts).
func New(options ...Option) *Host {
	h := &Host{
		outputFormat: OutputFormatJSON,
		maxAttempts:  3,
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}
	if h.driver == nil {
		h.driver = NewSurveyDriver(nil)
	}
	return h
}

// Name reports the host identifier.
func (h *Host) Name() string {
	return "tui"
}

// ContentType reports the serialization format of the bytes Fill returns.
func (h *Host) ContentType() string {
	switch h.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Fill prompts for every editable field of ctrl, then submits. Fields whose
// errors survive a submit are prompted again until the document is valid or
// the attempts run out, in which case the error wraps ErrInvalid. On success
// the submitted document is returned serialized in the configured format.
func (h *Host) Fill(ctx context.Context, ctrl *form.Controller) (form.State, []byte, error) {
	if ctx == nil {
		return form.State{}, nil, errors.New("tui: context is required")
	}
	if ctrl == nil {
		return form.State{}, nil, errors.New("tui: controller is required")
	}

	asked := make(map[string]bool)
	closed := make(map[string]bool)
	for attempt := 1; ; attempt++ {
		if err := h.collect(ctx, ctrl, asked, closed); err != nil {
			return ctrl.State(), nil, err
		}
		state, err := ctrl.Submit(ctx)
		if err != nil {
			return state, nil, err
		}
		if state.Valid() {
			out, err := h.serialize(state.FormData)
			return state, out, err
		}

		h.report(ctx, state)
		retry := invalidWidgets(ctrl.Render())
		if attempt >= h.maxAttempts || len(retry) == 0 {
			return state, nil, fmt.Errorf("%w: %d error(s) after %d attempt(s)", ErrInvalid, len(state.Errors), attempt)
		}
		for _, id := range retry {
			delete(asked, id)
		}
	}
}

// collect prompts until every widget has been asked and every growable
// array has been offered. The tree is rendered again after each answer so
// added items and visibility rules take effect immediately.
func (h *Host) collect(ctx context.Context, ctrl *form.Controller, asked, closed map[string]bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, ok := pending(ctrl.Render(), "", asked, closed)
		if !ok {
			return nil
		}
		if next.node.Kind == render.KindArray {
			add, err := h.driver.Confirm(ctx, ConfirmConfig{
				Message: h.theme.PromptPrefix + "Add an item to " + labelOf(next.node) + "?",
				Help:    next.help,
			})
			if err != nil {
				return err
			}
			if add {
				next.node.Add()
			} else {
				closed[next.node.ID] = true
			}
			continue
		}

		asked[next.node.ID] = true
		if !editable(next.node) {
			continue
		}
		h.logger.Debug("prompting field",
			zap.String("id", next.node.ID),
			zap.String("widget", next.node.Component),
		)
		if err := h.prompt(ctx, next); err != nil {
			return err
		}
	}
}

func (h *Host) report(ctx context.Context, state form.State) {
	for _, fieldErr := range state.Errors {
		_ = h.driver.Info(ctx, h.theme.ErrorPrefix+fieldErr.Stack)
	}
}

type candidate struct {
	node *render.Node
	help string
}

// pending returns the first widget not yet asked, or the first array (in
// post-order, so its items come first) that may still grow.
func pending(node *render.Node, help string, asked, closed map[string]bool) (candidate, bool) {
	if node == nil {
		return candidate{}, false
	}
	switch node.Kind {
	case render.KindWidget:
		if asked[node.ID] {
			return candidate{}, false
		}
		return candidate{node: node, help: help}, true
	case render.KindField, render.KindArray, render.KindObject:
		if node.Help != "" {
			help = node.Help
		} else if node.Description != "" {
			help = node.Description
		}
	}
	for _, child := range node.Children {
		if next, ok := pending(child, help, asked, closed); ok {
			return next, true
		}
	}
	if node.Kind == render.KindArray && node.OnAdd != nil && !node.Disabled && !node.ReadOnly && !closed[node.ID] {
		return candidate{node: node, help: help}, true
	}
	return candidate{}, false
}

func invalidWidgets(root *render.Node) []string {
	var ids []string
	for _, widget := range root.Widgets() {
		if len(widget.Errors) > 0 && editable(widget) {
			ids = append(ids, widget.ID)
		}
	}
	return ids
}

func editable(node *render.Node) bool {
	return !node.Hidden && !node.Disabled && !node.ReadOnly && node.OnChange != nil
}

func labelOf(node *render.Node) string {
	if node.Label != "" {
		return node.Label
	}
	if node.Name != "" {
		return node.Name
	}
	return node.ID
}
