package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	internalloader "github.com/goliatone/go-formengine/internal/jsonschema/loader"
	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/jsonschema"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/render/template"
	"github.com/goliatone/go-formengine/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formengine/pkg/renderers/html"
	jsonrenderer "github.com/goliatone/go-formengine/pkg/renderers/json"
	"github.com/goliatone/go-formengine/pkg/uischema"
	"github.com/goliatone/go-formengine/pkg/visibility"
	visexpr "github.com/goliatone/go-formengine/pkg/visibility/expr"
)

const defaultRendererName = "html"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom document loader.
func WithLoader(loader jsonschema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithBundleOptions configures external $ref bundling.
func WithBundleOptions(opts jsonschema.BundleOptions) Option {
	return func(o *Orchestrator) {
		o.bundle = opts
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithSchemaTransformer registers a Transformer that can rewrite the loaded
// props before the controller is built.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithUISchemaFS supplies an fs.FS holding UiSchema documents keyed by form
// id. Requests naming a FormID without a UiSchema source use them.
func WithUISchemaFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		o.uiSchemaFS = fsys
	}
}

// WithFormOptions forwards controller options (flags, callbacks, registry)
// to every controller the orchestrator builds.
func WithFormOptions(opts ...form.Option) Option {
	return func(o *Orchestrator) {
		o.formOptions = append(o.formOptions, opts...)
	}
}

// WithTemplates overrides the engine used for ${...} UiSchema options. The
// default is a string-only pongo2 engine.
func WithTemplates(r template.Renderer) Option {
	return func(o *Orchestrator) {
		o.templates = r
	}
}

// WithVisibility overrides the ui:visibleIf evaluator. The default compiles
// rules with expr-lang.
func WithVisibility(e visibility.Evaluator) Option {
	return func(o *Orchestrator) {
		o.visibility = e
	}
}

// WithLogger sets the logger passed to the default loader, renderers and
// controllers.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the full pipeline from schema documents to
// rendered output. Missing dependencies fall back to the built-in loader and
// the html and json renderers.
type Orchestrator struct {
	loader          jsonschema.Loader
	bundle          jsonschema.BundleOptions
	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer
	uiSchemaFS      fs.FS
	uiSchemas       *uischema.Store
	formOptions     []form.Option
	templates       template.Renderer
	visibility      visibility.Evaluator
	logger          *zap.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the documents that make up one form.
type Request struct {
	// Schema identifies the JSON Schema document. Required.
	Schema jsonschema.Source
	// UiSchema identifies an optional UiSchema document.
	UiSchema jsonschema.Source
	// FormData identifies an optional initial form data document.
	FormData jsonschema.Source
	// FormID selects a UiSchema from WithUISchemaFS when UiSchema is nil.
	FormID string

	// Renderer names the renderer to use. If empty, the orchestrator falls
	// back to the configured default renderer.
	Renderer string
	// Validate submits the form before rendering so errors show inline.
	Validate bool
	// RenderOptions carries per-request render data.
	RenderOptions render.Options
}

// Props loads the documents named by req and applies the transformer.
func (o *Orchestrator) Props(ctx context.Context, req Request) (form.Props, error) {
	if ctx == nil {
		return form.Props{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return form.Props{}, err
	}
	if err := o.initialiseErr; err != nil {
		return form.Props{}, err
	}
	if req.Schema == nil {
		return form.Props{}, errors.New("orchestrator: schema source is required")
	}

	parsed, err := jsonschema.Load(ctx, o.loader, req.Schema, o.bundle)
	if err != nil {
		return form.Props{}, fmt.Errorf("orchestrator: load schema: %w", err)
	}
	props := form.Props{Schema: parsed}

	switch {
	case req.UiSchema != nil:
		doc, err := o.loader.Load(ctx, req.UiSchema)
		if err != nil {
			return form.Props{}, fmt.Errorf("orchestrator: load ui schema: %w", err)
		}
		ui, err := uischema.Parse(doc.Raw())
		if err != nil {
			return form.Props{}, fmt.Errorf("orchestrator: parse ui schema: %w", err)
		}
		props.UiSchema = ui
	case req.FormID != "":
		if ui, ok := o.uiSchemas.Form(req.FormID); ok {
			props.UiSchema = ui
		}
	}

	if req.FormData != nil {
		doc, err := o.loader.Load(ctx, req.FormData)
		if err != nil {
			return form.Props{}, fmt.Errorf("orchestrator: load form data: %w", err)
		}
		data, err := doc.Value()
		if err != nil {
			return form.Props{}, fmt.Errorf("orchestrator: parse form data: %w", err)
		}
		props.FormData = data
	}

	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, &props); err != nil {
			return form.Props{}, fmt.Errorf("orchestrator: transform props: %w", err)
		}
	}
	return props, nil
}

// Controller loads req and builds a controller for it. opts apply after the
// orchestrator's own form options.
func (o *Orchestrator) Controller(ctx context.Context, req Request, opts ...form.Option) (*form.Controller, error) {
	props, err := o.Props(ctx, req)
	if err != nil {
		return nil, err
	}
	all := make([]form.Option, 0, len(o.formOptions)+len(opts)+3)
	all = append(all, form.WithLogger(o.logger), form.WithTemplates(o.templates), form.WithVisibility(o.visibility))
	all = append(all, o.formOptions...)
	all = append(all, opts...)
	ctrl, err := form.New(props, all...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build controller: %w", err)
	}
	return ctrl, nil
}

// Generate executes the loader → controller → renderer sequence and returns
// the rendered bytes along with the renderer's content type.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, string, error) {
	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, "", err
	}
	ctrl, err := o.Controller(ctx, req)
	if err != nil {
		return nil, "", err
	}
	output, err := o.RenderController(ctx, ctrl, renderer, req)
	if err != nil {
		return nil, "", err
	}
	return output, renderer.ContentType(), nil
}

// RenderController renders an existing controller, submitting it first when
// req.Validate is set.
func (o *Orchestrator) RenderController(ctx context.Context, ctrl *form.Controller, renderer render.Renderer, req Request) ([]byte, error) {
	if req.Validate {
		if _, err := ctrl.Submit(ctx); err != nil {
			return nil, fmt.Errorf("orchestrator: validate: %w", err)
		}
	}
	output, err := renderer.Render(ctx, ctrl.Render(), req.RenderOptions)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Renderer resolves a renderer by name, falling back to the default.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	return o.rendererFor(name)
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = internalloader.New(jsonschema.LoaderOptions{})
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := html.New(html.WithLogger(o.logger))
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
			return
		}
		o.registry.MustRegister(renderer)
		o.registry.MustRegister(jsonrenderer.New(jsonrenderer.WithIndent("  ")))
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if o.visibility == nil {
		o.visibility = visexpr.New()
	}
	if o.templates == nil {
		engine, err := gotemplate.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: template engine: %w", err)
			return
		}
		o.templates = engine
	}

	store, err := uischema.LoadFS(o.uiSchemaFS)
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: load ui schema: %w", err)
		return
	}
	o.uiSchemas = store
}
