package expr

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-formengine/pkg/visibility"
)

// DefaultCacheSize bounds the number of compiled rules kept per evaluator.
const DefaultCacheSize = 256

// Evaluator runs ui:visibleIf rules as expr-lang boolean expressions.
//
// The environment exposes the top-level keys of the form document directly
// (`enabled && role == "admin"`), plus:
//   - value: the value of the field being evaluated
//   - formData: the whole document
//   - extras: host supplied context
//
// Undefined identifiers evaluate to nil, so `missing == nil` (or `null`) is
// true. Flattened keys such as "cta.headline" are expanded into nested maps.
type Evaluator struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
	maxSize  int
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCacheSize overrides DefaultCacheSize.
func WithCacheSize(size int) Option {
	return func(e *Evaluator) {
		if size > 0 {
			e.maxSize = size
		}
	}
}

// New constructs an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		programs: make(map[string]*vm.Program),
		maxSize:  DefaultCacheSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

var _ visibility.Evaluator = (*Evaluator)(nil)

// Eval compiles (or reuses) rule and runs it against ctx. An empty rule is
// always visible.
func (e *Evaluator) Eval(fieldPath, rule string, ctx visibility.Context) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}

	program, err := e.program(trimmed)
	if err != nil {
		return false, fmt.Errorf("visibility/expr: compile %q for %s: %w", trimmed, fieldPath, err)
	}

	result, err := expr.Run(program, environment(ctx))
	if err != nil {
		return false, fmt.Errorf("visibility/expr: evaluate %q for %s: %w", trimmed, fieldPath, err)
	}
	visible, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("visibility/expr: %q returned %T, want bool", trimmed, result)
	}
	return visible, nil
}

func (e *Evaluator) program(rule string) (*vm.Program, error) {
	e.mu.RLock()
	program, ok := e.programs[rule]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(rule,
		expr.AsBool(),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if len(e.programs) >= e.maxSize {
		e.programs = make(map[string]*vm.Program, e.maxSize)
	}
	e.programs[rule] = program
	e.mu.Unlock()
	return program, nil
}

func environment(ctx visibility.Context) map[string]any {
	values := expand(ctx.Values)
	env := make(map[string]any, len(values)+4)
	for key, value := range values {
		env[key] = value
	}
	env["value"] = ctx.Value
	env["formData"] = values
	env["extras"] = expand(ctx.Extras)
	env["null"] = nil
	return env
}

// expand turns {"a.b": 1} into {"a": {"b": 1}} without touching nested keys
// that already exist.
func expand(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		if !strings.Contains(key, ".") {
			out[key] = value
		}
	}
	for key, value := range values {
		if !strings.Contains(key, ".") {
			continue
		}
		parts := strings.Split(key, ".")
		current := out
		for _, part := range parts[:len(parts)-1] {
			next, ok := current[part].(map[string]any)
			if !ok {
				if _, exists := current[part]; exists {
					current = nil
					break
				}
				next = make(map[string]any)
				current[part] = next
			}
			current = next
		}
		if current != nil {
			current[parts[len(parts)-1]] = value
		}
	}
	return out
}
