// Package formengine is the top-level entry point for loading JSON Schema
// documents and turning them into rendered, validated forms.
package formengine

import (
	"context"
	"io/fs"

	internalloader "github.com/goliatone/go-formengine/internal/jsonschema/loader"
	"github.com/goliatone/go-formengine/pkg/jsonschema"
	"github.com/goliatone/go-formengine/pkg/orchestrator"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/renderers/html"
)

// Source aliases jsonschema.Source so callers can name documents without
// importing the jsonschema package.
type Source = jsonschema.Source

// RenderOptions aliases render.Options.
type RenderOptions = render.Options

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewLoader constructs a loader backed by the internal implementation while
// keeping the concrete type hidden from consumers.
func NewLoader(options jsonschema.LoaderOptions) jsonschema.Loader {
	return internalloader.New(options)
}

// GenerateHTML loads the schema, builds the form and renders it with the
// built-in HTML renderer.
func GenerateHTML(ctx context.Context, schema Source, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	out, _, err := gen.Generate(ctx, orchestrator.Request{
		Schema:   schema,
		Renderer: "html",
	})
	return out, err
}

// EmbeddedTemplates exposes the built-in HTML renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
