package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/schema"
)

type memoryLoader struct {
	docs  map[string]string
	calls map[string]int
}

func (m *memoryLoader) Load(ctx context.Context, src Source) (schema.Document, error) {
	if m.calls != nil {
		m.calls[src.Location()]++
	}
	raw, ok := m.docs[src.Location()]
	if !ok {
		return schema.Document{}, fmt.Errorf("missing document %q", src.Location())
	}
	return schema.NewDocument(src, []byte(raw))
}

type httpLoader struct {
	client *http.Client
}

func (h *httpLoader) Load(ctx context.Context, src Source) (schema.Document, error) {
	if src.Kind() != SourceKindURL {
		return schema.Document{}, errors.New("http loader: unsupported source kind")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Location(), nil)
	if err != nil {
		return schema.Document{}, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return schema.Document{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return schema.Document{}, err
	}
	return schema.NewDocument(src, body)
}

func bundle(t *testing.T, loader Loader, location string, opts BundleOptions) (map[string]any, error) {
	t.Helper()
	doc, err := loader.Load(context.Background(), SourceFromFS(location))
	if err != nil {
		t.Fatalf("load %s: %v", location, err)
	}
	raw, err := NewBundler(loader, opts).Bundle(context.Background(), doc)
	if err != nil {
		return nil, err
	}
	value, err := schema.ParseValue(raw)
	if err != nil {
		t.Fatalf("decode bundle: %v", err)
	}
	return value.(map[string]any), nil
}

func property(t *testing.T, node map[string]any, name string) map[string]any {
	t.Helper()
	props, ok := node["properties"].(map[string]any)
	if !ok {
		t.Fatalf("no properties in %#v", node)
	}
	prop, ok := props[name].(map[string]any)
	if !ok {
		t.Fatalf("no property %q in %#v", name, props)
	}
	return prop
}

func TestBundler_KeepsDefinitionRefs(t *testing.T) {
	root := `{
  "definitions": {
    "node": {"type":"object","properties":{"children":{"type":"array","items":{"$ref":"#/definitions/node"}}}}
  },
  "type":"object",
  "properties": {
    "tree": {"$ref": "#/definitions/node"}
  }
}`
	loader := &memoryLoader{docs: map[string]string{"root.json": root}}
	resolved, err := bundle(t, loader, "root.json", BundleOptions{})
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	if got := property(t, resolved, "tree")["$ref"]; got != "#/definitions/node" {
		t.Fatalf("expected definition ref to stay, got %#v", got)
	}
}

func TestBundler_RewritesAnchorRefs(t *testing.T) {
	root := `{
  "$defs": {
    "title": {"$anchor":"Title", "type":"string"}
  },
  "type":"object",
  "properties": {
    "title": {"$ref": "#Title"},
    "local": {"$ref": "#Local"},
    "inline": {"$anchor":"Local", "type":"integer"}
  }
}`
	loader := &memoryLoader{docs: map[string]string{"root.json": root}}
	resolved, err := bundle(t, loader, "root.json", BundleOptions{})
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	if got := property(t, resolved, "title")["$ref"]; got != "#/$defs/title" {
		t.Fatalf("expected anchor rewritten to pointer, got %#v", got)
	}
	if got := property(t, resolved, "local")["type"]; got != "integer" {
		t.Fatalf("expected anchor outside definitions inlined, got %#v", got)
	}
}

func TestBundler_InlinesExternalFSRef(t *testing.T) {
	root := `{
  "type":"object",
  "properties": {
    "name": {"$ref": "defs.json#/$defs/name", "title": "Full name"}
  }
}`
	defs := `{
  "$defs": {
    "name": {"type":"string", "minLength": 2}
  }
}`
	loader := &memoryLoader{docs: map[string]string{
		"root.json": root,
		"defs.json": defs,
	}}
	resolved, err := bundle(t, loader, "root.json", BundleOptions{})
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	want := map[string]any{"type": "string", "minLength": float64(2), "title": "Full name"}
	if diff := cmp.Diff(want, property(t, resolved, "name")); diff != "" {
		t.Fatalf("inlined ref mismatch (-want +got):\n%s", diff)
	}
}

func TestBundler_ResolvesRefsRelativeToTheirDocument(t *testing.T) {
	root := `{"type":"object","properties":{"address":{"$ref":"shared/address.json"}}}`
	address := `{"type":"object","properties":{"city":{"$ref":"#/definitions/city"}},"definitions":{"city":{"type":"string"}}}`
	loader := &memoryLoader{docs: map[string]string{
		"root.json":           root,
		"shared/address.json": address,
	}}
	resolved, err := bundle(t, loader, "root.json", BundleOptions{})
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	city := property(t, property(t, resolved, "address"), "city")
	if city["type"] != "string" {
		t.Fatalf("expected external local ref inlined, got %#v", city)
	}
}

func TestBundler_CycleDetection(t *testing.T) {
	loader := &memoryLoader{docs: map[string]string{
		"root.json": `{"type":"object","properties":{"a":{"$ref":"a.json"}}}`,
		"a.json":    `{"type":"object","properties":{"b":{"$ref":"b.json"}}}`,
		"b.json":    `{"type":"object","properties":{"a":{"$ref":"a.json"}}}`,
	}}
	_, err := bundle(t, loader, "root.json", BundleOptions{})
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestBundler_Guardrails(t *testing.T) {
	tests := []struct {
		name string
		docs map[string]string
		root string
		opts BundleOptions
		want string
	}{
		{
			name: "path traversal",
			docs: map[string]string{"schemas/root.json": `{"properties":{"secret":{"$ref":"../secret.json"}}}`},
			root: "schemas/root.json",
			want: "escapes root",
		},
		{
			name: "max documents",
			docs: map[string]string{
				"root.json": `{"properties":{"name":{"$ref":"defs.json#/$defs/name"}}}`,
				"defs.json": `{"$defs":{"name":{"type":"string"}}}`,
			},
			root: "root.json",
			opts: BundleOptions{MaxDocuments: 1},
			want: "max documents",
		},
		{
			name: "max document bytes",
			docs: map[string]string{
				"root.json": `{"properties":{"n":{"$ref":"d.json"}}}`,
				"d.json":    `{"type":"string","description":"this-is-way-too-long-for-the-cap"}`,
			},
			root: "root.json",
			opts: BundleOptions{MaxDocumentBytes: 50},
			want: "too large",
		},
		{
			name: "http refs disabled",
			docs: map[string]string{"root.json": `{"properties":{"remote":{"$ref":"http://example.com/schema.json"}}}`},
			root: "root.json",
			want: "http refs disabled",
		},
		{
			name: "unsupported scheme",
			docs: map[string]string{"root.json": `{"properties":{"remote":{"$ref":"ftp://example.com/schema.json"}}}`},
			root: "root.json",
			want: "unsupported ref scheme",
		},
		{
			name: "missing pointer",
			docs: map[string]string{
				"root.json": `{"properties":{"name":{"$ref":"defs.json#/$defs/missing"}}}`,
				"defs.json": `{"$defs":{}}`,
			},
			root: "root.json",
			want: "not found",
		},
		{
			name: "ref depth",
			docs: map[string]string{
				"root.json": `{"properties":{"n":{"$ref":"a.json"}}}`,
				"a.json":    `{"$ref":"b.json"}`,
				"b.json":    `{"type":"string"}`,
			},
			root: "root.json",
			opts: BundleOptions{MaxRefDepth: 1},
			want: "ref depth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bundle(t, &memoryLoader{docs: tt.docs}, tt.root, tt.opts)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestBundler_HTTPRefsEnabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"string","format":"email"}`))
	}))
	defer server.Close()

	src, err := SourceFromURL(server.URL + "/root.json")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	doc, err := schema.NewDocument(src, []byte(fmt.Sprintf(`{"type":"object","properties":{"remote":{"$ref":%q}}}`, server.URL+"/email.json")))
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	raw, err := NewBundler(&httpLoader{client: server.Client()}, BundleOptions{AllowHTTPRefs: true}).Bundle(context.Background(), doc)
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	parsed, err := schema.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := parsed.Properties["remote"].Format; got != "email" {
		t.Fatalf("expected remote format email, got %q", got)
	}
}

func TestBundler_CachesDocuments(t *testing.T) {
	loader := &memoryLoader{
		docs: map[string]string{
			"root.json": `{"properties":{"first":{"$ref":"defs.json#/$defs/name"},"second":{"$ref":"defs.json#/$defs/name"}}}`,
			"defs.json": `{"$defs":{"name":{"type":"string"}}}`,
		},
		calls: make(map[string]int),
	}
	if _, err := bundle(t, loader, "root.json", BundleOptions{}); err != nil {
		t.Fatalf("bundle: %v", err)
	}
	if loader.calls["defs.json"] != 1 {
		t.Fatalf("expected defs.json to load once, got %d", loader.calls["defs.json"])
	}
}

func TestLoad_KeepsDeclaredPropertyOrder(t *testing.T) {
	loader := &memoryLoader{docs: map[string]string{
		"root.yaml":    "type: object\nproperties:\n  zip:\n    type: string\n  address:\n    $ref: address.json\n  age:\n    type: integer\n",
		"address.json": `{"type":"object","properties":{"street":{"type":"string"},"city":{"type":"string"}}}`,
	}}
	parsed, err := Load(context.Background(), loader, SourceFromFS("root.yaml"), BundleOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"zip", "address", "age"}, parsed.OrderedProperties()); diff != "" {
		t.Fatalf("root order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"street", "city"}, parsed.Properties["address"].OrderedProperties()); diff != "" {
		t.Fatalf("inlined order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_SkipsBundlingForSelfContainedDocuments(t *testing.T) {
	loader := &memoryLoader{
		docs: map[string]string{
			"root.json": `{"definitions":{"n":{"type":"string"}},"properties":{"b":{"$ref":"#/definitions/n"},"a":{"type":"number"}}}`,
		},
		calls: make(map[string]int),
	}
	parsed, err := Load(context.Background(), loader, SourceFromFS("root.json"), BundleOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if parsed.Properties["b"].Ref != "#/definitions/n" {
		t.Fatalf("expected ref kept, got %#v", parsed.Properties["b"])
	}
	if diff := cmp.Diff([]string{"b", "a"}, parsed.OrderedProperties()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if loader.calls["root.json"] != 1 {
		t.Fatalf("expected a single load, got %d", loader.calls["root.json"])
	}
}

func TestNeedsBundling(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "no refs", value: map[string]any{"type": "string"}, want: false},
		{name: "definition ref", value: map[string]any{"items": map[string]any{"$ref": "#/$defs/x"}}, want: false},
		{name: "file ref", value: map[string]any{"allOf": []any{map[string]any{"$ref": "other.json"}}}, want: true},
		{name: "anchor ref", value: map[string]any{"$ref": "#Name"}, want: true},
		{name: "vendor extension ignored", value: map[string]any{"x-meta": map[string]any{"$ref": "other.json"}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsBundling(tt.value); got != tt.want {
				t.Fatalf("needsBundling = %v, want %v", got, tt.want)
			}
		})
	}
}
