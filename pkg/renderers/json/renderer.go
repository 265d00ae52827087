// Package json encodes a field tree for headless hosts that draw the form
// themselves.
package json

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formengine/pkg/render"
)

// Document is the encoded payload: the tree plus the per-request options a
// host needs to draw the surrounding form.
type Document struct {
	Title       string               `json:"title,omitempty"`
	Action      string               `json:"action,omitempty"`
	Method      string               `json:"method,omitempty"`
	SubmitLabel string               `json:"submitLabel,omitempty"`
	Hidden      []render.HiddenField `json:"hidden,omitempty"`
	Errors      []string             `json:"errors,omitempty"`
	Root        *render.Node         `json:"root"`
}

type Option func(*Renderer)

// WithIndent pretty-prints the payload with the given indent.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "json"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

// Render encodes root. Server-side errors in options are attached to the
// matching nodes first; unmatched ones are reported at the document level.
func (r *Renderer) Render(ctx context.Context, root *render.Node, options render.Options) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("json renderer: field tree is nil")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	doc := Document{
		Title:       options.Title,
		Action:      options.Action,
		Method:      options.Method,
		SubmitLabel: options.SubmitLabel,
		Hidden:      render.SortedHidden(options.Hidden...),
		Errors:      render.MergeFormErrors(options.FormErrors, render.ApplyErrors(root, options.Errors)...),
		Root:        root,
	}
	if len(doc.Errors) == 0 {
		doc.Errors = nil
	}

	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("json renderer: encode tree: %w", err)
	}
	return out, nil
}
