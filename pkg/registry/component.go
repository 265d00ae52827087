package registry

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/goliatone/go-formengine/pkg/idschema"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/render/template"
	"github.com/goliatone/go-formengine/pkg/resolve"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/uischema"
	"github.com/goliatone/go-formengine/pkg/validation"
	"github.com/goliatone/go-formengine/pkg/visibility"
	"go.uber.org/zap"
)

// Field renders one schema node, recursing into children when structural.
type Field interface {
	Render(props FieldProps) *render.Node
}

// FieldFunc adapts a function to Field.
type FieldFunc func(props FieldProps) *render.Node

// Render implements Field.
func (fn FieldFunc) Render(props FieldProps) *render.Node {
	return fn(props)
}

// Widget renders a leaf input control. Widgets never recurse into
// sub-schemas.
type Widget interface {
	Render(props WidgetProps) *render.Node
}

// WidgetFunc adapts a function to Widget.
type WidgetFunc func(props WidgetProps) *render.Node

// Render implements Widget.
func (fn WidgetFunc) Render(props WidgetProps) *render.Node {
	return fn(props)
}

// Context is shared by every field of one render pass. It is read-only while
// the pass runs.
type Context struct {
	Registry   *Registry
	Resolver   *resolve.Resolver
	Templates  template.Renderer
	Visibility visibility.Evaluator
	Logger     *zap.Logger
	FormData   any
	Extras     map[string]any
	// Current reads the live document at path. Merge closures use it so an
	// edit never works from a stale render-time value.
	Current func(path []string) (any, bool)

	// SafeRenderCompletion keeps rendering siblings after a field panics.
	// When false the failing field still becomes a failed marker, but no
	// field after it is rendered.
	SafeRenderCompletion bool

	halted atomic.Bool
}

// Halt stops the pass: fields not yet rendered are skipped.
func (c *Context) Halt() {
	if c != nil {
		c.halted.Store(true)
	}
}

// Halted reports whether Halt was called during this pass.
func (c *Context) Halted() bool {
	return c != nil && c.halted.Load()
}

// Log returns the pass logger, never nil.
func (c *Context) Log() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// TemplateContext is the data template expressions see.
func (c *Context) TemplateContext(value any) map[string]any {
	ctx := map[string]any{"value": value}
	if c == nil {
		return ctx
	}
	ctx["formData"] = c.FormData
	if values, ok := c.FormData.(map[string]any); ok {
		for key, val := range values {
			if _, reserved := ctx[key]; !reserved {
				ctx[key] = val
			}
		}
	}
	if len(c.Extras) > 0 {
		ctx["extras"] = c.Extras
	}
	return ctx
}

// FieldProps is what a Field receives for one schema node.
type FieldProps struct {
	Schema   *schema.Schema
	UiSchema uischema.UiSchema
	IDSchema *idschema.IDSchema
	Name     string
	Path     []string
	Value    any
	Required bool
	Disabled bool
	ReadOnly bool
	// Additional marks entries synthesized from additionalProperties.
	Additional bool
	Errors     *validation.ErrorSchema
	// Reason carries a resolution problem for UnsupportedField.
	Reason string

	OnChange render.ChangeFunc
	OnBlur   render.FocusFunc
	OnFocus  render.FocusFunc

	Context *Context
}

// ID returns the node id, empty when the id tree has no entry.
func (p FieldProps) ID() string {
	if p.IDSchema == nil {
		return ""
	}
	return p.IDSchema.ID
}

// Messages returns the error messages recorded for this node.
func (p FieldProps) Messages() []string {
	return p.Errors.Messages()
}

// WidgetProps is what a Widget receives.
type WidgetProps struct {
	ID          string
	Name        string
	Path        []string
	Schema      *schema.Schema
	UiSchema    uischema.UiSchema
	Label       string
	Placeholder string
	Value       any
	Required    bool
	Disabled    bool
	ReadOnly    bool
	Autofocus   bool
	Multiple    bool
	Choices     []render.Choice
	Options     map[string]any
	Errors      []string

	OnChange render.ChangeFunc
	OnBlur   render.FocusFunc
	OnFocus  render.FocusFunc

	Context *Context
}

// RenderPanic carries a value recovered outside every field boundary, such
// as a panic in the root field lookup.
type RenderPanic struct {
	Path  []string
	Value any
}

func (p *RenderPanic) Error() string {
	if len(p.Path) == 0 {
		return fmt.Sprintf("could not render field: %v", p.Value)
	}
	return fmt.Sprintf("could not render field %s: %v", strings.Join(p.Path, "."), p.Value)
}
