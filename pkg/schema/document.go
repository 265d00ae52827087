package schema

import "errors"

// Document pairs a raw payload with its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument copies raw so later caller mutations do not leak in.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("schema: document " + src.Location() + " is empty")
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

func (d Document) Source() Source { return d.source }

// Raw returns a copy of the payload.
func (d Document) Raw() []byte { return append([]byte(nil), d.raw...) }

func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Schema decodes the payload as a schema.
func (d Document) Schema() (*Schema, error) {
	return Parse(d.raw)
}

// Value decodes the payload as a plain JSON-compatible value.
func (d Document) Value() (any, error) {
	return ParseValue(d.raw)
}
