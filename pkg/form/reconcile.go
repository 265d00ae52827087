package form

import (
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/defaults"
	"github.com/goliatone/go-formengine/pkg/idschema"
	"github.com/goliatone/go-formengine/pkg/resolve"
)

// Deps are the settings Reconcile needs beyond the props.
type Deps struct {
	IDPrefix string
}

// ChangeEvent is emitted when reconciling normalised the document: the
// computed form data differs from both what the owner supplied and what the
// controller held.
type ChangeEvent struct {
	State State
}

// Reconcile recomputes the state for new props. It is pure: old and props
// are not modified, and the same inputs always produce the same outputs.
//
// Defaults are merged into the supplied data and the id tree is rebuilt. The
// returned event is nil when the owner already holds the computed document,
// so an owner mirroring every change event back as props settles after one
// round. Props equivalent to the current state return old unchanged.
func Reconcile(old State, props Props, deps Deps) (State, *ChangeEvent) {
	res := resolve.New(props.definitions(), resolve.WithRoot(props.Schema))
	formData := defaults.NewComputer(res).Compute(props.Schema, props.FormData)

	if old.Schema != nil &&
		cmp.Equal(old.Schema, props.Schema) &&
		cmp.Equal(old.UiSchema, props.UiSchema) &&
		cmp.Equal(old.FormData, formData) {
		return old, nil
	}

	next := State{
		Status:      StatusClean,
		Schema:      props.Schema,
		UiSchema:    props.UiSchema,
		IDSchema:    idschema.NewGenerator(res).Generate(props.Schema, deps.IDPrefix, formData),
		FormData:    formData,
		Errors:      old.Errors,
		ErrorSchema: old.ErrorSchema,
		ActiveField: old.ActiveField,
	}
	if cmp.Equal(formData, props.FormData) || cmp.Equal(formData, old.FormData) {
		return next, nil
	}
	return next, &ChangeEvent{State: next}
}
