// Package fields holds the built-in field and widget implementations. Fields
// recurse through SchemaField, which resolves each child schema and contains
// render panics at the child's boundary.
package fields

import (
	"github.com/goliatone/go-formengine/pkg/registry"
	"github.com/goliatone/go-formengine/pkg/widgets"
)

// NewRegistry returns a registry with every built-in field and widget.
func NewRegistry(opts ...registry.Option) *registry.Registry {
	reg := registry.New(opts...)
	Register(reg)
	return reg
}

// Register adds the built-ins to reg, replacing entries with the same names.
func Register(reg *registry.Registry) {
	reg.MustRegisterField(registry.SchemaField, registry.FieldFunc(Schema))
	reg.MustRegisterField(registry.ObjectField, registry.FieldFunc(Object))
	reg.MustRegisterField(registry.ArrayField, registry.FieldFunc(Array))
	reg.MustRegisterField(registry.StringField, scalarField(registry.StringField, asString))
	reg.MustRegisterField(registry.DateField, scalarField(registry.DateField, asString))
	reg.MustRegisterField(registry.NumberField, scalarField(registry.NumberField, asNumber))
	reg.MustRegisterField(registry.BooleanField, scalarField(registry.BooleanField, asBool))
	reg.MustRegisterField(registry.NullField, registry.FieldFunc(Null))
	reg.MustRegisterField(registry.TitleField, registry.FieldFunc(Title))
	reg.MustRegisterField(registry.DescriptionField, registry.FieldFunc(Description))
	reg.MustRegisterField(registry.ErrorListField, registry.FieldFunc(ErrorList))
	reg.MustRegisterField(registry.UnsupportedField, registry.FieldFunc(Unsupported))

	for name, input := range map[string]string{
		widgets.Text:     "text",
		widgets.Password: "password",
		widgets.Email:    "email",
		widgets.URI:      "url",
		widgets.Date:     "date",
		widgets.DateTime: "datetime-local",
		widgets.Hidden:   "hidden",
	} {
		reg.MustRegisterWidget(name, inputWidget(name, input))
	}
	reg.MustRegisterWidget(widgets.Textarea, registry.WidgetFunc(textareaWidget))
	reg.MustRegisterWidget(widgets.Number, numberWidget(widgets.Number, "number"))
	reg.MustRegisterWidget(widgets.Updown, numberWidget(widgets.Updown, "number"))
	reg.MustRegisterWidget(widgets.Range, numberWidget(widgets.Range, "range"))
	reg.MustRegisterWidget(widgets.Checkbox, registry.WidgetFunc(checkboxWidget))
	reg.MustRegisterWidget(widgets.Checkboxes, choiceWidget(widgets.Checkboxes, true))
	reg.MustRegisterWidget(widgets.Radio, choiceWidget(widgets.Radio, false))
	reg.MustRegisterWidget(widgets.Select, choiceWidget(widgets.Select, false))
}
