package gotemplate

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-formengine/pkg/render/template"
)

// Option configures the pongo2 adapter before construction.
type Option func(*config)

type config struct {
	templates fs.FS
	extension string
}

// WithFS configures the underlying engine to load templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default template extension used by the engine.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// Engine is a pongo2-backed template set. It renders named template files for
// markup renderers and interpolates ${...} strings for UiSchema options.
type Engine struct {
	mu sync.RWMutex

	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	snippets  map[string]*pongo2.Template
	extension string
}

var (
	_ template.TemplateRenderer = (*Engine)(nil)
	_ template.Renderer         = (*Engine)(nil)
)

var interpolation = regexp.MustCompile(`\$\{\s*([^}]*?)\s*\}`)

// emptyFS backs string-only engines; pongo2 requires at least one loader.
var emptyFS embed.FS

// New constructs an Engine. Without WithFS the engine works in string-only
// mode: Render works and RenderTemplate reports missing templates.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: ".tpl"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	files := cfg.templates
	if files == nil {
		files = emptyFS
	}
	return &Engine{
		set:       pongo2.NewSet("formengine", pongo2.NewFSLoader(files)),
		templates: make(map[string]*pongo2.Template),
		snippets:  make(map[string]*pongo2.Template),
		extension: cfg.extension,
	}, nil
}

// Render interpolates a UiSchema option such as "Hello ${user.name}". Each
// ${expr} is evaluated as a pongo2 expression without HTML escaping; callers
// that emit markup escape the result themselves.
func (e *Engine) Render(templateString string, context map[string]any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	tmpl, err := e.cached(e.snippets, templateString, func() (*pongo2.Template, error) {
		return e.set.FromString(ToPongo(templateString))
	})
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse %q: %w", templateString, err)
	}
	out, err := e.execute(tmpl, context)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", templateString, err)
	}
	return out, nil
}

// ToPongo rewrites ${expr} placeholders into pongo2 output tags.
func ToPongo(templateString string) string {
	return interpolation.ReplaceAllString(templateString, "{{ $1|safe }}")
}

// RenderTemplate renders a named template file, appending the configured
// extension when missing. The result is also written to every out writer.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.extension) {
		path += e.extension
	}

	tmpl, err := e.cached(e.templates, path, func() (*pongo2.Template, error) {
		return e.set.FromFile(path)
	})
	if err != nil {
		return "", fmt.Errorf("gotemplate: load template %q: %w", path, err)
	}
	rendered, err := e.execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template %q: %w", path, err)
	}
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// RegisterFilter registers a pongo2 filter. Filters are process-wide, so a
// name can only be registered once.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext seeds values visible to every template of this engine.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errors.New("gotemplate: engine is nil")
	}
	globals, err := toContext(data)
	if err != nil {
		return fmt.Errorf("gotemplate: convert globals: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = make(pongo2.Context)
	}
	e.set.Globals.Update(globals)
	return nil
}

func (e *Engine) cached(cache map[string]*pongo2.Template, key string, parse func() (*pongo2.Template, error)) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := cache[key]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := cache[key]; ok {
		return tmpl, nil
	}
	tmpl, err := parse()
	if err != nil {
		return nil, err
	}
	cache[key] = tmpl
	return tmpl, nil
}

func (e *Engine) execute(tmpl *pongo2.Template, data any) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// toContext turns data into a pongo2 context. Values that are not plain
// maps, slices or scalars go through a JSON round trip first.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	var values map[string]any
	switch typed := data.(type) {
	case pongo2.Context:
		values = typed
	case map[string]any:
		values = typed
	default:
		decoded, err := viaJSON(typed)
		if err != nil {
			return nil, err
		}
		object, ok := decoded.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("gotemplate: data must be an object, got %T", data)
		}
		values = object
	}

	out := make(pongo2.Context, len(values))
	for key, value := range values {
		if key = strings.TrimSpace(key); key == "" {
			continue
		}
		converted, err := normalize(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func normalize(value any) (any, error) {
	switch typed := value.(type) {
	case nil, string, bool, int, int32, int64, uint, uint32, uint64:
		return typed, nil
	case float32:
		return integral(float64(typed)), nil
	case float64:
		return integral(typed), nil
	case pongo2.Context:
		return normalize(map[string]any(typed))
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			converted, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			converted, err := normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	}
	if reflect.ValueOf(value).Kind() == reflect.Func {
		return value, nil
	}
	decoded, err := viaJSON(value)
	if err != nil {
		return nil, err
	}
	return normalize(decoded)
}

// integral turns whole floats (the JSON decoding of every number) back into
// integers so templates print "2" rather than "2.000000".
func integral(v float64) any {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return int64(v)
	}
	return v
}

func viaJSON(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
