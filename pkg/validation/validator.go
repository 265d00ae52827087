// Package validation runs a validation primitive against a resolved schema and
// normalises its output into a flat error list and a field-keyed error tree.
package validation

import (
	"context"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// Kinds attached to errors the orchestrator produces itself.
const (
	KindValidator = "validator"
	KindResolve   = "resolve"
)

// Issue is one raw failure reported by a Validator. Path accepts dotted
// ("address.city"), bracket ("tags[0]") or JSON pointer ("/tags/0") forms;
// an empty path is form-level.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// Validator is the validation primitive. Implementations receive the schema
// already resolved (no $ref left) and a JSON-compatible document.
type Validator interface {
	Validate(ctx context.Context, document any, s *schema.Schema) ([]Issue, error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, document any, s *schema.Schema) ([]Issue, error)

// Validate implements Validator.
func (fn ValidatorFunc) Validate(ctx context.Context, document any, s *schema.Schema) ([]Issue, error) {
	return fn(ctx, document, s)
}
