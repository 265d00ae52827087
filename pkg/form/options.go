package form

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/pkg/registry"
	"github.com/goliatone/go-formengine/pkg/render/template"
	"github.com/goliatone/go-formengine/pkg/validation"
	"github.com/goliatone/go-formengine/pkg/visibility"
)

// Option customises a Controller.
type Option func(*Controller)

// WithConfig replaces every flag at once.
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

// WithNoValidate suppresses validation, including on submit.
func WithNoValidate(enabled bool) Option {
	return func(c *Controller) {
		c.cfg.NoValidate = enabled
	}
}

// WithLiveValidate validates after every change.
func WithLiveValidate(enabled bool) Option {
	return func(c *Controller) {
		c.cfg.LiveValidate = enabled
	}
}

// WithDisabled makes the form read-only.
func WithDisabled(enabled bool) Option {
	return func(c *Controller) {
		c.cfg.Disabled = enabled
	}
}

// WithSafeRenderCompletion keeps rendering siblings after a field panics.
func WithSafeRenderCompletion(enabled bool) Option {
	return func(c *Controller) {
		c.cfg.SafeRenderCompletion = enabled
	}
}

// WithIDPrefix seeds the root id.
func WithIDPrefix(prefix string) Option {
	return func(c *Controller) {
		c.cfg.IDPrefix = prefix
	}
}

// WithRegistry supplies the component registry. The controller keeps a
// frozen clone.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Controller) {
		c.registry = reg
	}
}

// WithValidator supplies the validation orchestrator.
func WithValidator(v *validation.Orchestrator) Option {
	return func(c *Controller) {
		c.validator = v
	}
}

// WithTemplates supplies the renderer for templated UiSchema options.
func WithTemplates(r template.Renderer) Option {
	return func(c *Controller) {
		c.templates = r
	}
}

// WithVisibility supplies the ui:visibleIf evaluator.
func WithVisibility(e visibility.Evaluator) Option {
	return func(c *Controller) {
		c.visibility = e
	}
}

// WithExtras exposes host data (roles, flags) to templates and visibility
// rules.
func WithExtras(extras map[string]any) Option {
	return func(c *Controller) {
		c.extras = extras
	}
}

// WithLogger routes diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOnChange registers the change callback.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// WithOnBlur registers the blur callback.
func WithOnBlur(fn func(id string, value any)) Option {
	return func(c *Controller) {
		c.onBlur = fn
	}
}

// WithOnFocus registers the focus callback.
func WithOnFocus(fn func(id string, value any)) Option {
	return func(c *Controller) {
		c.onFocus = fn
	}
}

// WithOnSubmit registers the callback for successful submits.
func WithOnSubmit(fn func(State)) Option {
	return func(c *Controller) {
		c.onSubmit = fn
	}
}

// WithOnError registers the callback for submits that failed validation.
func WithOnError(fn func([]validation.FieldError)) Option {
	return func(c *Controller) {
		c.onError = fn
	}
}
