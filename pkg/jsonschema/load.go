package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// Load fetches src and returns its schema. Documents that reference other
// documents are bundled first; documents whose refs all point at their own
// definitions are decoded as-is.
func Load(ctx context.Context, loader Loader, src Source, opts BundleOptions) (*schema.Schema, error) {
	if loader == nil {
		return nil, errors.New("jsonschema: loader is nil")
	}
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return LoadDocument(ctx, loader, doc, opts)
}

// LoadDocument is Load for a document already in memory. loader serves the
// documents doc refers to.
func LoadDocument(ctx context.Context, loader Loader, doc Document, opts BundleOptions) (*schema.Schema, error) {
	value, err := doc.Value()
	if err != nil {
		return nil, fmt.Errorf("jsonschema: decode %s: %w", doc.Location(), err)
	}
	if !needsBundling(value) {
		parsed, err := doc.Schema()
		if err != nil {
			return nil, fmt.Errorf("jsonschema: %s: %w", doc.Location(), err)
		}
		return parsed, nil
	}
	bundled, err := NewBundler(loader, opts).Bundle(ctx, doc)
	if err != nil {
		return nil, err
	}
	parsed, err := schema.Parse(bundled)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %s: %w", doc.Location(), err)
	}
	return parsed, nil
}

// needsBundling reports whether any $ref points somewhere other than the
// document's own definitions.
func needsBundling(node any) bool {
	switch typed := node.(type) {
	case map[string]any:
		if ref, ok := typed["$ref"].(string); ok && !isRuntimeRef(strings.TrimSpace(ref)) {
			return true
		}
		for key, value := range typed {
			if isVendorExtension(key) {
				continue
			}
			if needsBundling(value) {
				return true
			}
		}
	case []any:
		for _, value := range typed {
			if needsBundling(value) {
				return true
			}
		}
	}
	return false
}

func isRuntimeRef(ref string) bool {
	for _, prefix := range runtimeRefPrefixes {
		if strings.HasPrefix(ref, prefix) {
			return true
		}
	}
	return false
}
