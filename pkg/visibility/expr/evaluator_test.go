package expr

import (
	"testing"

	"github.com/goliatone/go-formengine/pkg/visibility"
)

func TestEvaluator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule string
		ctx  visibility.Context
		want bool
	}{
		{name: "empty rule", rule: "  ", want: true},
		{name: "bool compare", rule: "enabled == true", ctx: visibility.Context{Values: map[string]any{"enabled": true}}, want: true},
		{name: "truthy", rule: "enabled", ctx: visibility.Context{Values: map[string]any{"enabled": true}}, want: true},
		{name: "not", rule: "!enabled", ctx: visibility.Context{Values: map[string]any{"enabled": false}}, want: true},
		{name: "flattened key", rule: `cta.headline != ""`, ctx: visibility.Context{Values: map[string]any{"cta.headline": "Hello"}}, want: true},
		{name: "nested key", rule: `cta.headline == "Hello"`, ctx: visibility.Context{Values: map[string]any{"cta": map[string]any{"headline": "Hello"}}}, want: true},
		{name: "missing is null", rule: "missing == null", ctx: visibility.Context{Values: map[string]any{}}, want: true},
		{name: "present not nil", rule: "enabled != nil", ctx: visibility.Context{Values: map[string]any{"enabled": false}}, want: true},
		{name: "conjunction mismatch", rule: `enabled && role == "admin"`, ctx: visibility.Context{Values: map[string]any{"enabled": true, "role": "user"}}, want: false},
		{name: "disjunction", rule: `enabled || role == "admin"`, ctx: visibility.Context{Values: map[string]any{"enabled": false, "role": "admin"}}, want: true},
		{name: "own value", rule: `value > 3`, ctx: visibility.Context{Value: 5}, want: true},
		{name: "formData and extras", rule: `formData.age >= 18 && "admin" in extras.roles`, ctx: visibility.Context{
			Values: map[string]any{"age": 21.0},
			Extras: map[string]any{"roles": []any{"admin"}},
		}, want: true},
	}

	eval := New()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := eval.Eval("field", tt.rule, tt.ctx)
			if err != nil {
				t.Fatalf("Eval returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Eval(%q) = %v, want %v", tt.rule, got, tt.want)
			}
		})
	}
}

func TestEvaluatorErrors(t *testing.T) {
	t.Parallel()

	eval := New(WithCacheSize(1))
	if _, err := eval.Eval("field", "enabled ==", visibility.Context{}); err == nil {
		t.Fatalf("expected compile error")
	}
	if _, err := eval.Eval("field", `"text"`, visibility.Context{}); err == nil {
		t.Fatalf("expected non-bool error")
	}

	if _, err := eval.Eval("field", "a", visibility.Context{Values: map[string]any{"a": true}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := eval.Eval("field", "b", visibility.Context{Values: map[string]any{"b": true}}); err != nil {
		t.Fatalf("unexpected error after eviction: %v", err)
	}
	if len(eval.programs) != 1 {
		t.Fatalf("cache should stay bounded, got %d entries", len(eval.programs))
	}
}
