package jsonschema

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// Loader fetches raw documents (schemas, UI schemas, form data).
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, src Source) (Document, error)

// Load implements Loader.
func (fn LoaderFunc) Load(ctx context.Context, src Source) (Document, error) {
	return fn(ctx, src)
}

// LoaderOptions configure the default loader.
type LoaderOptions struct {
	// FileSystem backs SourceKindFS sources.
	FileSystem fs.FS
	// HTTPClient enables SourceKindURL sources with the given client.
	HTTPClient *http.Client
	// AllowHTTPFallback enables SourceKindURL sources with a default client
	// when HTTPClient is nil.
	AllowHTTPFallback bool
	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration
	// MaxDocumentBytes caps the size of HTTP responses. Zero means 5 MiB.
	MaxDocumentBytes int64
}
