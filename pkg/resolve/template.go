package resolve

import (
	"strings"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// LookupTemplate resolves a "${path}" reference to a definition. The path may
// be a JSON pointer ("${#/definitions/address}") or dotted
// ("${definitions.address.properties.street}", "${address}"). Resolution of
// UI strings never happens implicitly; callers opt in per option.
func (r *Resolver) LookupTemplate(expr string) (*schema.Schema, error) {
	trimmed := strings.TrimSpace(expr)
	if !strings.HasPrefix(trimmed, "${") || !strings.HasSuffix(trimmed, "}") {
		return nil, ErrNotTemplate
	}
	path := strings.TrimSpace(trimmed[2 : len(trimmed)-1])
	if path == "" {
		return nil, &ReferenceError{Ref: expr, Err: ErrUnresolvedReference}
	}

	ref := path
	if !strings.HasPrefix(path, "#") {
		segments := strings.Split(path, ".")
		if segments[0] == "definitions" || segments[0] == "$defs" {
			segments = segments[1:]
		}
		ref = strings.Join(segments, "/")
	}
	return r.dereference(&schema.Schema{Ref: ref})
}
