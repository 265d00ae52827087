// Package loader fetches schema, UI schema and form data documents from
// files, an fs.FS or HTTP.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	pkgjsonschema "github.com/goliatone/go-formengine/pkg/jsonschema"
)

const defaultMaxDocumentBytes = int64(5 << 20)

// Loader implements pkgjsonschema.Loader by delegating to file, fs.FS, or HTTP
// strategies.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	maxBytes  int64
}

var _ pkgjsonschema.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options pkgjsonschema.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	maxBytes := options.MaxDocumentBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxDocumentBytes
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
		maxBytes:  maxBytes,
	}
}

// Load fetches a document from the provided source and wraps it in a Document.
func (l *Loader) Load(ctx context.Context, src pkgjsonschema.Source) (pkgjsonschema.Document, error) {
	if src == nil {
		return pkgjsonschema.Document{}, errors.New("jsonschema loader: source is nil")
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case pkgjsonschema.SourceKindFile:
		data, err = loadFile(ctx, src.Location(), l.maxBytes)
	case pkgjsonschema.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location(), l.maxBytes)
	case pkgjsonschema.SourceKindURL:
		if !l.allowHTTP {
			return pkgjsonschema.Document{}, errors.New("jsonschema loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout, l.maxBytes)
	default:
		err = errors.New("jsonschema loader: unsupported source kind")
	}
	if err != nil {
		return pkgjsonschema.Document{}, err
	}

	return pkgjsonschema.NewDocument(src, data)
}

// readCapped reads r up to limit bytes, failing when the payload is larger.
func readCapped(r io.Reader, location string, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("jsonschema loader: %s exceeds %d bytes", location, limit)
	}
	return data, nil
}
