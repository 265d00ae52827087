package template_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-formengine/pkg/render/template"
	"github.com/goliatone/go-formengine/pkg/uischema"
)

func TestEvaluate(t *testing.T) {
	echo := template.RendererFunc(func(tpl string, ctx map[string]any) (string, error) {
		return tpl + "|" + ctx["name"].(string), nil
	})
	failing := template.RendererFunc(func(string, map[string]any) (string, error) {
		return "", errors.New("unexpected token")
	})
	panicking := template.RendererFunc(func(string, map[string]any) (string, error) {
		panic("boom")
	})

	ctx := map[string]any{"name": "Ada"}
	tests := []struct {
		name     string
		renderer template.Renderer
		value    uischema.Value
		want     string
	}{
		{name: "absent", renderer: echo, value: uischema.Value{}, want: ""},
		{name: "static", renderer: nil, value: uischema.Static("Title"), want: "Title"},
		{name: "template", renderer: echo, value: uischema.Template("${name}"), want: "${name}|Ada"},
		{name: "error", renderer: failing, value: uischema.Template("${"), want: "Bad Template: unexpected token"},
		{name: "panic", renderer: panicking, value: uischema.Template("${x}"), want: "Bad Template: boom"},
		{name: "no renderer", renderer: nil, value: uischema.Template("${x}"), want: "Bad Template: no template renderer configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := template.Evaluate(tt.renderer, tt.value, ctx); got != tt.want {
				t.Fatalf("Evaluate() = %q, want %q", got, tt.want)
			}
		})
	}
}
