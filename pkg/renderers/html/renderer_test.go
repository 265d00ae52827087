package html_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/renderers/html"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/uischema"
)

func renderForm(t *testing.T, rawSchema string, ui uischema.UiSchema, data any, options render.Options, opts ...html.Option) string {
	t.Helper()
	s, err := schema.Parse([]byte(rawSchema))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	ctrl, err := form.New(form.Props{Schema: s, UiSchema: ui, FormData: data})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	renderer, err := html.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), ctrl.Render(), options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, output)
		}
	}
}

func TestRenderer_Fields(t *testing.T) {
	out := renderForm(t, `{
		"type":"object",
		"title":"Signup",
		"required":["name"],
		"properties":{
			"name":{"type":"string","title":"Name","maxLength":20},
			"bio":{"type":"string"},
			"role":{"type":"string","enum":["admin","user"]},
			"active":{"type":"boolean"},
			"age":{"type":"integer","minimum":1}
		}
	}`, uischema.UiSchema{
		"bio":  map[string]any{"ui:widget": "textarea"},
		"name": map[string]any{"ui:placeholder": "Your name"},
	}, map[string]any{"name": "Ann <3", "role": "user", "active": true, "age": 30.0}, render.Options{
		Title:  "Join",
		Action: "/signup",
		Hidden: []render.HiddenField{render.CSRFToken("_csrf", "tok")},
	})

	assertContains(t, out,
		`<form class="formengine-form" action="/signup" method="post" novalidate>`,
		`<h1>Join</h1>`,
		`<input type="hidden" name="_csrf" value="tok">`,
		`<legend id="root__title">Signup</legend>`,
		`<label for="root_name">Name *</label>`,
		`value="Ann &lt;3"`,
		`placeholder="Your name"`,
		`maxlength="20"`,
		`<textarea id="root_bio" name="bio" rows="5">`,
		`<option value="user" selected>user</option>`,
		`type="checkbox" value="true" checked`,
		`type="number" value="30" min="1" step="1"`,
		`<button type="submit">Submit</button>`,
	)
}

func TestRenderer_ErrorsAndMarkers(t *testing.T) {
	out := renderForm(t, `{
		"type":"object",
		"properties":{
			"email":{"type":"string"},
			"broken":{"$ref":"#/definitions/missing"},
			"weird":{"type":"tuple"}
		}
	}`, nil, map[string]any{}, render.Options{
		Errors: map[string][]string{
			"/email":  {"is invalid"},
			"captcha": {"try again"},
		},
	})

	assertContains(t, out,
		`formengine-invalid`,
		`<p class="formengine-error">is invalid</p>`,
		`<li>try again</li>`,
		`Unsupported field schema for field <code>broken</code>: <em>unresolved schema reference</em>.`,
		`<em>Unknown field type tuple</em>`,
	)
}

func TestRenderer_SanitizesHelp(t *testing.T) {
	out := renderForm(t, `{"type":"object","properties":{"name":{"type":"string"}}}`,
		uischema.UiSchema{"name": map[string]any{"ui:help": `<b>Bold</b><script>alert(1)</script>`}},
		map[string]any{}, render.Options{})

	assertContains(t, out, `<small class="help"><b>Bold</b></small>`)
	if strings.Contains(out, "<script>") {
		t.Fatalf("script tag leaked into output:\n%s", out)
	}
}

func TestRenderer_ArraysAndHiddenWidgets(t *testing.T) {
	out := renderForm(t, `{
		"type":"object",
		"properties":{
			"tags":{"type":"array","title":"Tags","items":{"type":"string"}},
			"token":{"type":"string"}
		}
	}`, uischema.UiSchema{"token": map[string]any{"ui:widget": "hidden"}},
		map[string]any{"tags": []any{"a"}, "token": "t1"}, render.Options{},
		html.WithClasses(html.Classes{"array": "list"}),
	)

	assertContains(t, out,
		`<div class="list" id="root_tags" data-array="tags">`,
		`<button type="button" data-add="root_tags">Add item</button>`,
		`<button type="button" data-remove="root_tags_0">Remove</button>`,
		`<input id="root_token" name="token" type="hidden" value="t1">`,
	)
	if strings.Contains(out, `data-field="token"`) {
		t.Fatalf("hidden widget should not get field chrome:\n%s", out)
	}
}

func TestRenderer_Contract(t *testing.T) {
	renderer, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.Name() != "html" || renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected identity: %s %s", renderer.Name(), renderer.ContentType())
	}
	if _, err := renderer.Render(context.Background(), nil, render.Options{}); err == nil {
		t.Fatalf("expected error for nil tree")
	}

	registry := render.NewRegistry()
	registry.MustRegister(renderer)
	if !registry.Has("HTML") {
		t.Fatalf("registry lookup should be case insensitive")
	}
}
