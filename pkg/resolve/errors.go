package resolve

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolvedReference reports a $ref whose target is not in definitions.
	ErrUnresolvedReference = errors.New("resolve: unresolved schema reference")
	// ErrCircularReference reports a $ref chain that loops back on itself
	// without passing through a property or item.
	ErrCircularReference = errors.New("resolve: circular schema reference")
	// ErrMalformedItems reports an array schema without any items schema.
	ErrMalformedItems = errors.New("resolve: array schema is missing items")
	// ErrNotTemplate reports a LookupTemplate argument without ${...} form.
	ErrNotTemplate = errors.New("resolve: not a template reference")
)

// ReferenceError carries the offending $ref.
type ReferenceError struct {
	Ref string
	Err error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%v %q", e.Err, e.Ref)
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}

// PathError places a resolution problem at the data path of the field whose
// schema failed. Problems under array items are reported on the array.
type PathError struct {
	Path []string
	Err  error
}

func (e PathError) Error() string {
	if len(e.Path) == 0 {
		return e.Err.Error()
	}
	return strings.Join(e.Path, ".") + ": " + e.Err.Error()
}

func (e PathError) Unwrap() error {
	return e.Err
}
