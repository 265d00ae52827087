package validation

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/pkg/resolve"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// TransformFunc rewrites raw errors before they are sorted and indexed, for
// example to localise messages or drop noise.
type TransformFunc func([]FieldError) []FieldError

// Result is the output of one validation pass.
type Result struct {
	Errors      []FieldError `json:"errors"`
	ErrorSchema *ErrorSchema `json:"errorSchema"`
}

// Valid reports whether the pass produced no errors.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// EmptyResult is the result of a pass that found nothing.
func EmptyResult() Result {
	return Result{ErrorSchema: &ErrorSchema{}}
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithValidator replaces the default kin-openapi primitive.
func WithValidator(v Validator) Option {
	return func(o *Orchestrator) {
		if v != nil {
			o.validator = v
		}
	}
}

// WithTransform installs a hook applied to raw errors.
func WithTransform(fn TransformFunc) Option {
	return func(o *Orchestrator) {
		o.transform = fn
	}
}

// WithLogger routes validator failures to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator resolves the schema, runs the validator and normalises its
// output. It is safe for concurrent use when its validator is.
type Orchestrator struct {
	validator Validator
	transform TransformFunc
	logger    *zap.Logger
}

// New constructs an Orchestrator backed by NewOpenAPIValidator unless
// WithValidator says otherwise.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		validator: NewOpenAPIValidator(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Validate checks formData against s. Resolution problems and validator
// failures are reported as errors in the result; Validate itself never
// fails. Repeated calls with the same inputs yield equal results.
func (o *Orchestrator) Validate(ctx context.Context, formData any, s *schema.Schema, definitions schema.Definitions) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	if definitions == nil && s != nil {
		definitions = s.Definitions
	}
	resolver := resolve.New(definitions, resolve.WithRoot(s))
	resolved, problems := resolver.ResolveDeep(s, formData)

	var errs []FieldError
	for _, problem := range problems {
		errs = append(errs, newFieldError(problem.Path, problem.Err.Error(), KindResolve))
	}

	issues, err := o.run(ctx, formData, resolved)
	if err != nil {
		o.logger.Warn("validator failed", zap.Error(err))
		errs = append(errs, newFieldError(nil, err.Error(), KindValidator))
	}
	for _, issue := range issues {
		errs = append(errs, newFieldError(SplitPath(issue.Path), issue.Message, issue.Kind))
	}

	if o.transform != nil {
		errs = o.transform(errs)
		for idx := range errs {
			errs[idx] = newFieldError(errs[idx].Segments(), errs[idx].Message, errs[idx].Kind)
		}
	}

	sortErrors(errs)
	errs = dedupe(errs)
	if len(errs) == 0 {
		return EmptyResult()
	}
	return Result{Errors: errs, ErrorSchema: NewErrorSchema(errs)}
}

func (o *Orchestrator) run(ctx context.Context, formData any, s *schema.Schema) (issues []Issue, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			issues = nil
			err = fmt.Errorf("validation: validator panicked: %v", recovered)
		}
	}()
	return o.validator.Validate(ctx, formData, s)
}

func sortErrors(errs []FieldError) {
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].Path != errs[j].Path {
			return errs[i].Path < errs[j].Path
		}
		if errs[i].Message != errs[j].Message {
			return errs[i].Message < errs[j].Message
		}
		return errs[i].Kind < errs[j].Kind
	})
}

func dedupe(errs []FieldError) []FieldError {
	if len(errs) < 2 {
		return errs
	}
	out := errs[:1]
	for _, err := range errs[1:] {
		if err == out[len(out)-1] {
			continue
		}
		out = append(out, err)
	}
	return out
}
