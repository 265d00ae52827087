package jsonschema

import "github.com/goliatone/go-formengine/pkg/schema"

// Document wraps a raw payload and its origin.
type Document = schema.Document

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	return schema.NewDocument(src, raw)
}
