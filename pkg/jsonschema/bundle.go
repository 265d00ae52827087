// Package jsonschema loads schema documents and bundles the documents they
// reference. External $refs (other files, fs entries or URLs) are inlined.
// Refs into the root document's definitions stay in place for the runtime
// resolver, so recursive definitions keep working.
package jsonschema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formengine/pkg/schema"
)

const (
	defaultMaxDocumentBytes = int64(5 << 20)
	defaultMaxDocuments     = 128
	defaultMaxRefDepth      = 64
)

// BundleOptions configures external $ref resolution.
type BundleOptions struct {
	// AllowHTTPRefs toggles HTTP/HTTPS ref resolution.
	AllowHTTPRefs bool
	// AllowPathTraversal permits refs to escape the root directory.
	AllowPathTraversal bool
	// MaxDocumentBytes caps the size of any single document.
	MaxDocumentBytes int64
	// MaxDocuments caps the number of unique documents loaded while bundling.
	MaxDocuments int
	// MaxRefDepth caps the depth of $ref resolution chains.
	MaxRefDepth int
}

// Bundler inlines external $ref references with guardrails.
type Bundler struct {
	loader Loader
	opts   BundleOptions
}

type bundleSession struct {
	loader Loader
	opts   BundleOptions
	cache  map[string]*loadedDocument
	root   *loadedDocument
}

type loadedDocument struct {
	key      string
	kind     schema.SourceKind
	location string
	baseDir  string
	data     map[string]any
	anchors  map[string]string
	orders   map[string][]string
}

// runtimeRefPrefixes are the definition containers the runtime resolver reads.
var runtimeRefPrefixes = []string{"#/definitions/", "#/$defs/"}

// NewBundler constructs a bundler with the supplied loader and options.
func NewBundler(loader Loader, opts BundleOptions) *Bundler {
	if opts.MaxDocumentBytes <= 0 {
		opts.MaxDocumentBytes = defaultMaxDocumentBytes
	}
	if opts.MaxDocuments <= 0 {
		opts.MaxDocuments = defaultMaxDocuments
	}
	if opts.MaxRefDepth <= 0 {
		opts.MaxRefDepth = defaultMaxRefDepth
	}
	return &Bundler{loader: loader, opts: opts}
}

// Bundle returns doc as JSON with every external $ref replaced by its target.
// Anchor refs into the root definitions are rewritten to JSON pointers.
// Property order is kept as declared in each source document.
func (b *Bundler) Bundle(ctx context.Context, doc Document) ([]byte, error) {
	if b == nil {
		return nil, errors.New("jsonschema bundler: bundler is nil")
	}
	if b.loader == nil {
		return nil, errors.New("jsonschema bundler: loader is nil")
	}
	if doc.Source() == nil {
		return nil, errors.New("jsonschema bundler: source is nil")
	}

	session := &bundleSession{
		loader: b.loader,
		opts:   b.opts,
		cache:  make(map[string]*loadedDocument),
	}

	root, err := session.prepareRoot(doc)
	if err != nil {
		return nil, err
	}

	state := &refState{stack: make([]string, 0, 4), inStack: make(map[string]struct{})}
	resolved, err := session.resolveNode(ctx, root, root.data, "", state)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(resolved)
	if err != nil {
		return nil, fmt.Errorf("jsonschema bundler: encode: %w", err)
	}
	return out, nil
}

func (s *bundleSession) prepareRoot(doc Document) (*loadedDocument, error) {
	key, location, baseDir, err := s.canonicalLocation(doc.Source())
	if err != nil {
		return nil, err
	}
	root, err := s.decode(doc, key, location, baseDir)
	if err != nil {
		return nil, err
	}
	s.root = root
	s.cache[key] = root
	return root, nil
}

func (s *bundleSession) decode(doc Document, key, location, baseDir string) (*loadedDocument, error) {
	raw := doc.Raw()
	if int64(len(raw)) > s.opts.MaxDocumentBytes {
		return nil, fmt.Errorf("jsonschema bundler: document too large (%d bytes)", len(raw))
	}
	value, err := schema.ParseValue(raw)
	if err != nil {
		return nil, fmt.Errorf("jsonschema bundler: decode %s: %w", doc.Location(), err)
	}
	payload, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("jsonschema bundler: %s is not a schema object", doc.Location())
	}
	orders, err := schema.KeyOrders(raw)
	if err != nil {
		return nil, err
	}
	anchors := make(map[string]string)
	if err := indexAnchors(payload, "#", anchors); err != nil {
		return nil, err
	}
	return &loadedDocument{
		key:      key,
		kind:     doc.Source().Kind(),
		location: location,
		baseDir:  baseDir,
		data:     payload,
		anchors:  anchors,
		orders:   orders,
	}, nil
}

func (s *bundleSession) resolveNode(ctx context.Context, doc *loadedDocument, node any, pointer string, state *refState) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch typed := node.(type) {
	case map[string]any:
		if ref := strings.TrimSpace(readString(typed, "$ref")); ref != "" {
			if kept, ok := s.runtimeRef(doc, ref); ok {
				out := cloneAny(typed).(map[string]any)
				out["$ref"] = kept
				return out, nil
			}
			refKey, refDoc, refPointer, target, err := s.resolveRefTarget(ctx, doc, ref)
			if err != nil {
				return nil, err
			}
			if len(state.stack) >= s.opts.MaxRefDepth {
				return nil, fmt.Errorf("jsonschema bundler: ref depth exceeds %d", s.opts.MaxRefDepth)
			}
			if state.contains(refKey) {
				return nil, fmt.Errorf("jsonschema bundler: ref cycle detected at %s", ref)
			}
			merged, err := mergeRefTarget(target, typed)
			if err != nil {
				return nil, err
			}
			state.push(refKey)
			resolved, err := s.resolveNode(ctx, refDoc, merged, refPointer, state)
			state.pop(refKey)
			if err != nil {
				return nil, err
			}
			return resolved, nil
		}

		resolved := make(map[string]any, len(typed))
		for key, value := range typed {
			childPointer := joinPath(pointer, key)
			switch key {
			case "$defs", "definitions", "properties":
				items, ok := value.(map[string]any)
				if !ok {
					resolved[key] = value
					continue
				}
				child := orderedObject{keys: doc.orders[childPointer], values: make(map[string]any, len(items))}
				for childKey, childValue := range items {
					resolvedChild, err := s.resolveNode(ctx, doc, childValue, joinPath(childPointer, childKey), state)
					if err != nil {
						return nil, err
					}
					child.values[childKey] = resolvedChild
				}
				resolved[key] = child
			case "items", "additionalItems", "additionalProperties", "oneOf", "anyOf", "allOf":
				resolvedChild, err := s.resolveNode(ctx, doc, value, childPointer, state)
				if err != nil {
					return nil, err
				}
				resolved[key] = resolvedChild
			default:
				resolved[key] = value
			}
		}
		return resolved, nil
	case []any:
		out := make([]any, 0, len(typed))
		for idx, entry := range typed {
			resolvedChild, err := s.resolveNode(ctx, doc, entry, joinPath(pointer, strconv.Itoa(idx)), state)
			if err != nil {
				return nil, err
			}
			out = append(out, resolvedChild)
		}
		return out, nil
	default:
		return node, nil
	}
}

// runtimeRef reports whether ref points into the root document's
// definitions, returning the pointer form the runtime resolver understands.
func (s *bundleSession) runtimeRef(doc *loadedDocument, ref string) (string, bool) {
	if doc != s.root {
		return "", false
	}
	refPath, fragment := splitRef(ref)
	if refPath != "" {
		return "", false
	}
	pointer := "#" + fragment
	if !strings.HasPrefix(fragment, "/") {
		anchored, ok := doc.anchors[fragment]
		if !ok {
			return "", false
		}
		pointer = anchored
	}
	for _, prefix := range runtimeRefPrefixes {
		if strings.HasPrefix(pointer, prefix) {
			return pointer, true
		}
	}
	return "", false
}

func (s *bundleSession) resolveRefTarget(ctx context.Context, doc *loadedDocument, ref string) (string, *loadedDocument, string, any, error) {
	refPath, fragment := splitRef(ref)
	target := doc
	if refPath != "" {
		parsed, err := url.Parse(refPath)
		if err != nil {
			return "", nil, "", nil, fmt.Errorf("jsonschema bundler: invalid ref %q", ref)
		}

		var src Source
		switch {
		case parsed.Scheme == "http" || parsed.Scheme == "https":
			if !s.opts.AllowHTTPRefs {
				return "", nil, "", nil, fmt.Errorf("jsonschema bundler: http refs disabled (%s)", ref)
			}
			src, err = SourceFromURL(parsed.String())
		case parsed.Scheme == "file":
			src = SourceFromFile(parsed.Path)
		case parsed.Scheme != "":
			return "", nil, "", nil, fmt.Errorf("jsonschema bundler: unsupported ref scheme %q", parsed.Scheme)
		default:
			src, err = s.resolveRelativeSource(doc, parsed.Path)
		}
		if err != nil {
			return "", nil, "", nil, err
		}
		target, err = s.loadDocument(ctx, src)
		if err != nil {
			return "", nil, "", nil, err
		}
	}
	pointer, err := target.pointerFor(fragment)
	if err != nil {
		return "", nil, "", nil, err
	}
	resolved, err := resolveJSONPointer(target.data, pointer)
	if err != nil {
		return "", nil, "", nil, err
	}
	return target.key + "#" + pointer, target, pointer, resolved, nil
}

// pointerFor maps a ref fragment (empty, a JSON pointer or an anchor name) to
// a JSON pointer within the document.
func (d *loadedDocument) pointerFor(fragment string) (string, error) {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" || strings.HasPrefix(fragment, "/") {
		return fragment, nil
	}
	pointer, ok := d.anchors[fragment]
	if !ok {
		return "", fmt.Errorf("jsonschema bundler: anchor %q not found", fragment)
	}
	return strings.TrimPrefix(pointer, "#"), nil
}

// orderedObject encodes its entries in declaration order; names missing from
// keys follow in map order.
type orderedObject struct {
	keys   []string
	values map[string]any
}

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	written := make(map[string]struct{}, len(o.values))
	write := func(key string) error {
		value, ok := o.values[key]
		if !ok {
			return nil
		}
		if _, dup := written[key]; dup {
			return nil
		}
		written[key] = struct{}{}
		if len(written) > 1 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return err
		}
		encodedValue, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)
		return nil
	}
	for _, key := range o.keys {
		if err := write(key); err != nil {
			return nil, err
		}
	}
	for key := range o.values {
		if err := write(key); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *bundleSession) loadDocument(ctx context.Context, src Source) (*loadedDocument, error) {
	key, location, baseDir, err := s.canonicalLocation(src)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache[key]; ok {
		return cached, nil
	}
	if len(s.cache) >= s.opts.MaxDocuments {
		return nil, fmt.Errorf("jsonschema bundler: exceeded max documents (%d)", s.opts.MaxDocuments)
	}

	doc, err := s.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	loaded, err := s.decode(doc, key, location, baseDir)
	if err != nil {
		return nil, err
	}
	s.cache[key] = loaded
	return loaded, nil
}

func (s *bundleSession) resolveRelativeSource(doc *loadedDocument, refPath string) (Source, error) {
	switch doc.kind {
	case SourceKindFile:
		resolved, err := s.cleanFilePath(doc.baseDir, refPath)
		if err != nil {
			return nil, err
		}
		return SourceFromFile(resolved), nil
	case SourceKindFS:
		resolved, err := s.cleanFSPath(doc.baseDir, refPath)
		if err != nil {
			return nil, err
		}
		return SourceFromFS(resolved), nil
	case SourceKindURL:
		if !s.opts.AllowHTTPRefs {
			return nil, fmt.Errorf("jsonschema bundler: http refs disabled (%s)", refPath)
		}
		base, err := url.Parse(doc.location)
		if err != nil {
			return nil, err
		}
		rel, err := url.Parse(refPath)
		if err != nil {
			return nil, err
		}
		return SourceFromURL(base.ResolveReference(rel).String())
	default:
		return nil, errors.New("jsonschema bundler: unsupported source kind")
	}
}

func (s *bundleSession) canonicalLocation(src Source) (string, string, string, error) {
	if src == nil {
		return "", "", "", errors.New("jsonschema bundler: source is nil")
	}
	location := src.Location()
	switch src.Kind() {
	case SourceKindFile:
		abs, err := filepath.Abs(location)
		if err != nil {
			return "", "", "", err
		}
		base := filepath.Dir(abs)
		return "file:" + abs, abs, base, nil
	case SourceKindFS:
		cleaned := path.Clean(strings.TrimPrefix(location, "/"))
		base := path.Dir(cleaned)
		return "fs:" + cleaned, cleaned, base, nil
	case SourceKindURL:
		return "url:" + location, location, path.Dir(location), nil
	default:
		return "", "", "", errors.New("jsonschema bundler: unsupported source kind")
	}
}

func (s *bundleSession) cleanFilePath(baseDir, refPath string) (string, error) {
	candidate := refPath
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(baseDir, refPath)
	}
	candidate = filepath.Clean(candidate)
	if s.opts.AllowPathTraversal {
		return candidate, nil
	}
	root := baseDir
	if s.root != nil {
		root = s.root.baseDir
	}
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("jsonschema bundler: ref path escapes root (%s)", refPath)
	}
	return candidate, nil
}

func (s *bundleSession) cleanFSPath(baseDir, refPath string) (string, error) {
	candidate := path.Clean(path.Join(baseDir, refPath))
	candidate = strings.TrimPrefix(candidate, "/")
	if s.opts.AllowPathTraversal {
		return candidate, nil
	}
	root := baseDir
	if s.root != nil {
		root = s.root.baseDir
	}
	root = strings.TrimPrefix(path.Clean(root), "/")
	if root == "." {
		root = ""
	}
	if root == "" {
		if strings.HasPrefix(candidate, "..") {
			return "", fmt.Errorf("jsonschema bundler: ref path escapes root (%s)", refPath)
		}
		return candidate, nil
	}
	if candidate == root || strings.HasPrefix(candidate, root+"/") {
		return candidate, nil
	}
	return "", fmt.Errorf("jsonschema bundler: ref path escapes root (%s)", refPath)
}

func splitRef(ref string) (string, string) {
	parts := strings.SplitN(ref, "#", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func resolveJSONPointer(root any, pointer string) (any, error) {
	pointer = strings.TrimPrefix(pointer, "#")
	if pointer == "" {
		return cloneAny(root), nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("jsonschema bundler: invalid json pointer %q", pointer)
	}

	current := root
	parts := strings.Split(pointer, "/")[1:]
	for _, part := range parts {
		decoded, err := url.PathUnescape(part)
		if err != nil {
			return nil, err
		}
		decoded = strings.ReplaceAll(decoded, "~1", "/")
		decoded = strings.ReplaceAll(decoded, "~0", "~")

		switch typed := current.(type) {
		case map[string]any:
			value, ok := typed[decoded]
			if !ok {
				return nil, fmt.Errorf("jsonschema bundler: pointer %q not found", pointer)
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(decoded)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, fmt.Errorf("jsonschema bundler: pointer %q out of range", pointer)
			}
			current = typed[idx]
		default:
			return nil, fmt.Errorf("jsonschema bundler: pointer %q invalid", pointer)
		}
	}

	return cloneAny(current), nil
}

func indexAnchors(node any, pointer string, anchors map[string]string) error {
	switch typed := node.(type) {
	case map[string]any:
		if raw, ok := typed["$anchor"]; ok {
			name, ok := raw.(string)
			name = strings.TrimSpace(name)
			if ok && name != "" {
				if _, exists := anchors[name]; exists {
					return fmt.Errorf("jsonschema bundler: duplicate anchor %q", name)
				}
				anchors[name] = pointer
			}
		}
		for key, value := range typed {
			if isVendorExtension(key) {
				continue
			}
			childPointer := joinPath(pointer, key)
			if err := indexAnchors(value, childPointer, anchors); err != nil {
				return err
			}
		}
	case []any:
		for idx, value := range typed {
			childPointer := joinPath(pointer, strconv.Itoa(idx))
			if err := indexAnchors(value, childPointer, anchors); err != nil {
				return err
			}
		}
	}
	return nil
}

func mergeRefTarget(target any, refObj map[string]any) (any, error) {
	merged := cloneAny(target)
	if mergedMap, ok := merged.(map[string]any); ok {
		for key, value := range refObj {
			if key == "$ref" {
				continue
			}
			if !isAllowedRefSibling(key) {
				return nil, fmt.Errorf("jsonschema bundler: unsupported $ref sibling %q", key)
			}
			mergedMap[key] = value
		}
		return mergedMap, nil
	}
	for key := range refObj {
		if key != "$ref" {
			return nil, fmt.Errorf("jsonschema bundler: $ref target is not an object")
		}
	}
	return merged, nil
}

func isAllowedRefSibling(key string) bool {
	switch key {
	case "title", "description", "default", "readOnly", "$comment", "examples":
		return true
	}
	return isVendorExtension(key)
}

func cloneAny(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = cloneAny(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, val := range typed {
			out[idx] = cloneAny(val)
		}
		return out
	default:
		return typed
	}
}

type refState struct {
	stack   []string
	inStack map[string]struct{}
}

func (s *refState) push(ref string) {
	s.stack = append(s.stack, ref)
	if s.inStack == nil {
		s.inStack = make(map[string]struct{})
	}
	s.inStack[ref] = struct{}{}
}

func (s *refState) pop(ref string) {
	if len(s.stack) == 0 {
		return
	}
	last := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	delete(s.inStack, last)
	if ref != last {
		delete(s.inStack, ref)
	}
}

func (s *refState) contains(ref string) bool {
	_, ok := s.inStack[ref]
	return ok
}

func readString(payload map[string]any, key string) string {
	value, _ := payload[key].(string)
	return value
}

func isVendorExtension(key string) bool {
	return strings.HasPrefix(key, "x-")
}

func joinPath(pointer, segment string) string {
	return pointer + "/" + escapeJSONPointer(segment)
}

func escapeJSONPointer(value string) string {
	value = strings.ReplaceAll(value, "~", "~0")
	return strings.ReplaceAll(value, "/", "~1")
}
