// Package html renders a field tree as an HTML form. Each node kind has a
// pongo2 template in the embedded bundle; recursion happens in Go and
// children reach their parent template as pre-rendered markup.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/pkg/render"
	rendertemplate "github.com/goliatone/go-formengine/pkg/render/template"
	"github.com/goliatone/go-formengine/pkg/render/template/gotemplate"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	widgetTemplates  map[string]string
	classes          Classes
	logger           *zap.Logger
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide every template of TemplatesFS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithWidgetTemplate renders widgets of component with the named template
// (relative to the bundle root, extension optional).
func WithWidgetTemplate(component, template string) Option {
	return func(cfg *config) {
		if component == "" || template == "" {
			return
		}
		if cfg.widgetTemplates == nil {
			cfg.widgetTemplates = make(map[string]string)
		}
		cfg.widgetTemplates[strings.ToLower(component)] = template
	}
}

// WithClasses overrides chrome classes by slot name ("form", "field"...).
func WithClasses(classes Classes) Option {
	return func(cfg *config) {
		cfg.classes = classes
	}
}

// WithLogger sets the logger used for template fallbacks.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	widgets   map[string]string
	classes   Classes
	logger    *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	widgets := map[string]string{
		"textarea":   "templates/widgets/textarea.tpl",
		"select":     "templates/widgets/select.tpl",
		"radio":      "templates/widgets/radio.tpl",
		"checkbox":   "templates/widgets/checkbox.tpl",
		"checkboxes": "templates/widgets/checkboxes.tpl",
	}
	for component, template := range cfg.widgetTemplates {
		widgets[component] = template
	}

	return &Renderer{
		templates: renderer,
		widgets:   widgets,
		classes:   DefaultClasses().merged(cfg.classes),
		logger:    cfg.logger,
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render emits the form element for root. Server-side errors in options are
// attached to the matching nodes; paths that match no field are listed with
// the form-level errors.
func (r *Renderer) Render(ctx context.Context, root *render.Node, options render.Options) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if root == nil {
		return nil, fmt.Errorf("html renderer: field tree is nil")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	formErrors := render.MergeFormErrors(options.FormErrors, render.ApplyErrors(root, options.Errors)...)
	body, err := r.renderNode(root)
	if err != nil {
		return nil, err
	}

	hidden := make([]any, 0, len(options.Hidden))
	for _, field := range render.SortedHidden(options.Hidden...) {
		hidden = append(hidden, map[string]any{"name": field.Name, "value": field.Value})
	}
	method := strings.ToLower(strings.TrimSpace(options.Method))
	if method == "" {
		method = "post"
	}
	submit := options.SubmitLabel
	if submit == "" {
		submit = "Submit"
	}

	out, err := r.templates.RenderTemplate("templates/form.tpl", map[string]any{
		"classes":     r.classes.data(),
		"title":       options.Title,
		"action":      options.Action,
		"method":      method,
		"submitLabel": submit,
		"hidden":      hidden,
		"errors":      stringsToAny(formErrors),
		"body":        body,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render form: %w", err)
	}
	return []byte(out), nil
}

func (r *Renderer) renderNode(node *render.Node) (string, error) {
	if node == nil {
		return "", nil
	}

	var template string
	data := map[string]any{
		"classes": r.classes.data(),
		"node":    nodeView(node),
	}
	switch node.Kind {
	case render.KindObject, render.KindArray:
		children, err := r.renderChildren(node)
		if err != nil {
			return "", err
		}
		template = "templates/" + string(node.Kind) + ".tpl"
		data["children"] = children
	case render.KindField:
		control, err := r.renderChildren(node)
		if err != nil {
			return "", err
		}
		if hiddenControl(node) {
			return control, nil
		}
		template = "templates/field.tpl"
		data["control"] = strings.TrimRight(control, "\n")
	case render.KindWidget:
		template = r.widgetTemplate(node.Component)
	case render.KindTitle:
		template = "templates/title.tpl"
	case render.KindDescription:
		template = "templates/description.tpl"
	case render.KindErrorList:
		template = "templates/errors.tpl"
	case render.KindFailed:
		template = "templates/failed.tpl"
	default:
		template = "templates/unsupported.tpl"
	}

	out, err := r.templates.RenderTemplate(template, data)
	if err != nil {
		return "", fmt.Errorf("html renderer: render %s %q: %w", node.Kind, node.ID, err)
	}
	return out, nil
}

func (r *Renderer) renderChildren(node *render.Node) (string, error) {
	var b strings.Builder
	for _, child := range node.Children {
		out, err := r.renderNode(child)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

func (r *Renderer) widgetTemplate(component string) string {
	if template, ok := r.widgets[strings.ToLower(component)]; ok {
		return template
	}
	if component != "" && !inputComponents[component] {
		r.logger.Debug("no template for widget, using input", zap.String("component", component))
	}
	return "templates/widgets/input.tpl"
}

var inputComponents = map[string]bool{
	"text": true, "password": true, "email": true, "uri": true, "date": true,
	"datetime": true, "hidden": true, "number": true, "updown": true, "range": true,
}

func hiddenControl(field *render.Node) bool {
	for _, child := range field.Children {
		if child.Kind == render.KindWidget && child.Hidden {
			return true
		}
	}
	return false
}
