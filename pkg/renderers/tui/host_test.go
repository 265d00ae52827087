package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/form"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/validation"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
	failWith     error
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.failWith != nil {
		return "", s.failWith
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.prompts = append(s.prompts, cfg.Message)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	s.prompts = append(s.prompts, cfg.Message)
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newController(t *testing.T, raw string, opts ...form.Option) *form.Controller {
	t.Helper()
	s, err := schema.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	ctrl, err := form.New(form.Props{Schema: s, FormData: map[string]any{}}, opts...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return ctrl
}

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode output %q: %v", raw, err)
	}
	return out
}

func TestFill_PromptsEveryWidget(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ann", "many", "42"},
		selectIdx: []int{1},
		confirm:   []bool{true},
		multiIdx:  [][]int{{0, 2}},
	}
	ctrl := newController(t, `{
		"type":"object",
		"properties":{
			"name":{"type":"string","title":"Name"},
			"role":{"type":"string","enum":["admin","user"]},
			"active":{"type":"boolean"},
			"age":{"type":"integer"},
			"tags":{"type":"array","uniqueItems":true,"items":{"type":"string","enum":["a","b","c"]}}
		}
	}`)

	state, out, err := New(WithPromptDriver(driver)).Fill(context.Background(), ctrl)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if state.Status != form.StatusSubmittedOK {
		t.Fatalf("status = %s", state.Status)
	}

	want := map[string]any{
		"name":   "Ann",
		"role":   "user",
		"active": true,
		"age":    float64(42),
		"tags":   []any{"a", "c"},
	}
	if diff := cmp.Diff(want, decode(t, out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 1 || !strings.Contains(driver.infoMessages[0], "not a number") {
		t.Fatalf("expected one number warning, got %v", driver.infoMessages)
	}
	if driver.prompts[0] != "Name" {
		t.Fatalf("first prompt = %q", driver.prompts[0])
	}
}

func TestFill_RepromptsInvalidFields(t *testing.T) {
	validator := validation.New(validation.WithValidator(validation.ValidatorFunc(
		func(_ context.Context, document any, _ *schema.Schema) ([]validation.Issue, error) {
			values, _ := document.(map[string]any)
			if name, _ := values["name"].(string); len(name) < 3 {
				return []validation.Issue{{Path: "name", Message: "too short"}}, nil
			}
			return nil, nil
		},
	)))
	driver := &stubDriver{inputs: []string{"Al", "Alice"}}
	ctrl := newController(t, `{"type":"object","properties":{"name":{"type":"string"}}}`, form.WithValidator(validator))

	_, out, err := New(WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "! "})).Fill(context.Background(), ctrl)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"name": "Alice"}, decode(t, out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"! name: too short"}, driver.infoMessages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_GivesUpAfterMaxAttempts(t *testing.T) {
	validator := validation.New(validation.WithValidator(validation.ValidatorFunc(
		func(context.Context, any, *schema.Schema) ([]validation.Issue, error) {
			return []validation.Issue{{Path: "name", Message: "never valid"}}, nil
		},
	)))
	driver := &stubDriver{inputs: []string{"a", "b"}}
	ctrl := newController(t, `{"type":"object","properties":{"name":{"type":"string"}}}`, form.WithValidator(validator))

	state, out, err := New(WithPromptDriver(driver), WithMaxAttempts(2)).Fill(context.Background(), ctrl)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if out != nil || state.Status != form.StatusSubmittedInvalid {
		t.Fatalf("unexpected result: out=%q status=%s", out, state.Status)
	}
	if driver.inputPos != 2 {
		t.Fatalf("expected two prompts, got %d", driver.inputPos)
	}
}

func TestFill_GrowsArrays(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"x", "y"},
		confirm: []bool{true, true, false},
	}
	ctrl := newController(t, `{
		"type":"object",
		"properties":{"items":{"type":"array","title":"Items","items":{"type":"string"}}}
	}`)

	_, out, err := New(WithPromptDriver(driver)).Fill(context.Background(), ctrl)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"items": []any{"x", "y"}}, decode(t, out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	// confirm, item 0, confirm, item 1, confirm
	if len(driver.prompts) != 5 || driver.prompts[0] != "Add an item to Items?" || driver.prompts[4] != "Add an item to Items?" {
		t.Fatalf("unexpected prompt sequence: %v", driver.prompts)
	}
}

func TestFill_PropagatesAbort(t *testing.T) {
	driver := &stubDriver{failWith: ErrAborted}
	ctrl := newController(t, `{"type":"object","properties":{"name":{"type":"string"}}}`)

	_, _, err := New(WithPromptDriver(driver)).Fill(context.Background(), ctrl)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestSerializeFormats(t *testing.T) {
	document := map[string]any{
		"name": "Ann",
		"age":  float64(42),
		"tags": []any{"a", "b"},
		"address": map[string]any{
			"city": "Oslo",
		},
	}
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{format: OutputFormatPrettyText, want: "address.city=Oslo\nage=42\nname=Ann\ntags[0]=a\ntags[1]=b\n"},
		{format: OutputFormatFormURLEncoded, want: "address.city=Oslo&age=42&name=Ann&tags%5B%5D=a&tags%5B%5D=b"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			out, err := New(WithPromptDriver(&stubDriver{}), WithOutputFormat(tt.format)).serialize(document)
			if err != nil {
				t.Fatalf("serialize: %v", err)
			}
			if got := string(out); got != tt.want {
				t.Fatalf("serialize = %q, want %q", got, tt.want)
			}
		})
	}

	upper := WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
		return map[string]any{"name": strings.ToUpper(values["name"].(string))}, nil
	})
	out, err := New(WithPromptDriver(&stubDriver{}), upper).serialize(document)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"name": "ANN"}, decode(t, out)); diff != "" {
		t.Fatalf("transformed output mismatch (-want +got):\n%s", diff)
	}
}
