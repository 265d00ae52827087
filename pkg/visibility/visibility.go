// Package visibility decides whether a field declared with ui:visibleIf is
// shown. Rules are data; an Evaluator interprets them.
package visibility

// Evaluator determines whether a field should be visible based on a rule
// string and optional context such as current values or host metadata.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values holds the current form
// document and Value the field's own value, while Extras allows hosts to
// inject arbitrary context such as user roles or feature flags.
type Context struct {
	Value  any
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}

// Always shows every field regardless of the rule.
var Always = EvaluatorFunc(func(string, string, Context) (bool, error) { return true, nil })
