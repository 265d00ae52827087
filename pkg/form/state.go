package form

import (
	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-formengine/pkg/idschema"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/uischema"
	"github.com/goliatone/go-formengine/pkg/validation"
)

// Props are the inputs a host hands to the controller.
type Props struct {
	Schema   *schema.Schema
	UiSchema uischema.UiSchema
	FormData any
	// Definitions overrides Schema.Definitions when set.
	Definitions schema.Definitions
}

func (p Props) definitions() schema.Definitions {
	if p.Definitions != nil {
		return p.Definitions
	}
	if p.Schema != nil {
		return p.Schema.Definitions
	}
	return nil
}

// State is the form state owned by one controller. Callers only ever see
// deep copies.
type State struct {
	Status      Status                  `json:"status"`
	Schema      *schema.Schema          `json:"schema"`
	UiSchema    uischema.UiSchema       `json:"uiSchema,omitempty"`
	IDSchema    *idschema.IDSchema      `json:"idSchema"`
	FormData    any                     `json:"formData"`
	Errors      []validation.FieldError `json:"errors"`
	ErrorSchema *validation.ErrorSchema `json:"errorSchema"`
	ActiveField string                  `json:"activeField,omitempty"`
}

// Valid reports whether the state carries no errors.
func (s State) Valid() bool {
	return len(s.Errors) == 0
}

func (s State) clone() State {
	out := s
	out.Schema = s.Schema.Clone()
	if s.UiSchema != nil {
		out.UiSchema = deepcopy.Copy(s.UiSchema).(uischema.UiSchema)
	}
	if s.IDSchema != nil {
		out.IDSchema = deepcopy.Copy(s.IDSchema).(*idschema.IDSchema)
	}
	out.FormData = deepcopy.Copy(s.FormData)
	if s.Errors != nil {
		out.Errors = append([]validation.FieldError(nil), s.Errors...)
	}
	if s.ErrorSchema != nil {
		out.ErrorSchema = s.ErrorSchema.Merge(nil)
	}
	return out
}
