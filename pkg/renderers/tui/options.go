package tui

import (
	"go.uber.org/zap"
)

// OutputFormat controls how the submitted document is serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional prefixes the host applies to messages.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// SubmitTransformer mutates the submitted document before serialization.
type SubmitTransformer func(map[string]any) (map[string]any, error)

// Option configures the terminal host.
type Option func(*Host)

// WithPromptDriver overrides the prompt driver used by the host.
func WithPromptDriver(driver PromptDriver) Option {
	return func(h *Host) {
		if driver != nil {
			h.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(h *Host) {
		if format != "" {
			h.outputFormat = format
		}
	}
}

// WithSubmitTransformer allows callers to mutate the submitted document prior
// to serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(h *Host) {
		h.submitTransformer = fn
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(h *Host) {
		h.theme = theme
	}
}

// WithMaxAttempts bounds how many times the host submits before giving up on
// an invalid document. Values below one are ignored.
func WithMaxAttempts(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used for prompt diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}
