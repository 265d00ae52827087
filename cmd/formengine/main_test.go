package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/pkg/renderers/tui"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWith(t, nil, args...)
}

func runWith(t *testing.T, driver tui.PromptDriver, args ...string) (string, error) {
	t.Helper()
	cmd := buildRootCommand(&app{logger: zap.NewNop(), driver: driver})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

const contact = "testdata/contact.json"

func TestDefaults(t *testing.T) {
	out, err := run(t, "defaults", contact)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]any{"name": "Ann", "subscribe": false}, got)
}

func TestIDs(t *testing.T) {
	out, err := run(t, "ids", contact, "--id-prefix", "form")
	require.NoError(t, err)
	assert.Equal(t, "form\nform_age\nform_name\nform_subscribe\n", out)

	out, err = run(t, "ids", contact, "--config", "testdata/config.yaml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "cfg\n"), out)

	out, err = run(t, "ids", contact, "--config", "testdata/config.yaml", "--id-prefix", "flag")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "flag\n"), out)
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", contact)
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	out, err = run(t, "validate", contact, "--data", "testdata/invalid.json")
	require.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "age: ")
	assert.Contains(t, out, "name: ")

	out, err = run(t, "validate", contact, "--data", "testdata/invalid.json", "--no-validate")
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)
}

func TestValidate_JSON(t *testing.T) {
	out, err := run(t, "validate", contact, "--data", "testdata/invalid.json", "--json")
	require.Error(t, err)

	var report validateReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Valid)
	assert.NotEmpty(t, report.Errors)
}

func TestRender(t *testing.T) {
	out, err := run(t, "render", contact, "--title", "Contact us")
	require.NoError(t, err)
	assert.Contains(t, out, `id="root_name"`)
	assert.Contains(t, out, "Contact us")

	out, err = run(t, "render", contact, "--format", "json")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "object", doc["root"].(map[string]any)["kind"])

	_, err = run(t, "render", contact, "--format", "xml")
	assert.ErrorContains(t, err, `renderer "xml"`)
}

func TestRender_WritesOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.html")
	out, err := run(t, "render", contact, "--data", "testdata/invalid.json", "--validate", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "formengine-invalid")
}

func TestLint(t *testing.T) {
	out, err := run(t, "lint", contact)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	out, err = run(t, "lint", "testdata/broken.json")
	require.Error(t, err)
	assert.Contains(t, out, "missing")
}

type answeringDriver struct {
	inputs   map[string]string
	confirms map[string]bool
}

func (d answeringDriver) Input(ctx context.Context, cfg tui.InputConfig) (string, error) {
	return d.inputs[cfg.Message], nil
}

func (d answeringDriver) Password(ctx context.Context, cfg tui.InputConfig) (string, error) {
	return d.inputs[cfg.Message], nil
}

func (d answeringDriver) Confirm(ctx context.Context, cfg tui.ConfirmConfig) (bool, error) {
	return d.confirms[cfg.Message], nil
}

func (d answeringDriver) Select(ctx context.Context, cfg tui.SelectConfig) (int, error) {
	return cfg.DefaultIndex, nil
}

func (d answeringDriver) MultiSelect(ctx context.Context, cfg tui.SelectConfig) ([]int, error) {
	return cfg.Defaults, nil
}

func (d answeringDriver) TextArea(ctx context.Context, cfg tui.TextAreaConfig) (string, error) {
	return cfg.Default, nil
}

func (d answeringDriver) Info(ctx context.Context, msg string) error {
	return nil
}

func TestFill(t *testing.T) {
	driver := answeringDriver{
		inputs:   map[string]string{"Name *": "Bob", "Age": "30"},
		confirms: map[string]bool{"Subscribe": true},
	}
	out, err := runWith(t, driver, "fill", contact)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]any{"name": "Bob", "age": float64(30), "subscribe": true}, got)

	_, err = runWith(t, driver, "fill", contact, "--format", "yaml")
	assert.ErrorContains(t, err, "unknown format")
}
