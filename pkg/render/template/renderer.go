package template

import (
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-formengine/pkg/uischema"
)

// BadTemplatePrefix starts every placeholder produced for a failed template.
const BadTemplatePrefix = "Bad Template: "

// Renderer interpolates a template string against a context.
type Renderer interface {
	Render(templateString string, context map[string]any) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(templateString string, context map[string]any) (string, error)

// Render implements Renderer.
func (fn RendererFunc) Render(templateString string, context map[string]any) (string, error) {
	return fn(templateString, context)
}

// TemplateRenderer renders named template files; markup renderers depend on it
// rather than on a concrete engine.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}

// BadTemplate formats the placeholder shown in place of a failed template.
func BadTemplate(reason string) string {
	return BadTemplatePrefix + strings.TrimSpace(reason)
}

// Evaluate turns a UiSchema option into display text. Static values are
// formatted as-is; templates go through r. Errors and panics raised by r are
// reported as a "Bad Template: <reason>" string.
func Evaluate(r Renderer, value uischema.Value, context map[string]any) (out string) {
	switch value.Kind {
	case uischema.ValueAbsent:
		return ""
	case uischema.ValueStatic:
		return value.String()
	}

	if r == nil {
		return BadTemplate("no template renderer configured")
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			out = BadTemplate(fmt.Sprint(recovered))
		}
	}()

	rendered, err := r.Render(value.Template, context)
	if err != nil {
		return BadTemplate(err.Error())
	}
	return rendered
}
