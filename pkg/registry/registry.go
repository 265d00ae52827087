// Package registry maps component names to field and widget implementations.
// Lookups never fail hard: a miss is logged and returned as a value so a
// form with one broken node still renders the rest.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formengine/pkg/resolve"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/uischema"
	"github.com/goliatone/go-formengine/pkg/widgets"
	"go.uber.org/zap"
)

// Structural and type-default field names.
const (
	ArrayField       = "ArrayField"
	BooleanField     = "BooleanField"
	NumberField      = "NumberField"
	ObjectField      = "ObjectField"
	StringField      = "StringField"
	DateField        = "DateField"
	NullField        = "NullField"
	SchemaField      = "SchemaField"
	TitleField       = "TitleField"
	DescriptionField = "DescriptionField"
	ErrorListField   = "ErrorListField"
	UnsupportedField = "UnsupportedField"
)

// ErrFrozen is returned when registering into a registry that has been handed
// to a render pass.
var ErrFrozen = errors.New("registry: registry is frozen")

// Miss describes a failed lookup.
type Miss struct {
	Kind   string // "field" or "widget"
	Name   string
	Reason string
}

func (m *Miss) Error() string {
	return fmt.Sprintf("could not find component %q", m.Name)
}

// Option configures a Registry.
type Option func(*Registry)

// WithDirectory installs the host component directory consulted for
// fully-qualified names.
func WithDirectory(dir Directory) Option {
	return func(r *Registry) {
		r.directory = dir
	}
}

// WithLogger routes miss reports to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMatchers replaces the default widget matchers.
func WithMatchers(m *widgets.Matchers) Option {
	return func(r *Registry) {
		if m != nil {
			r.matchers = m
		}
	}
}

// Registry holds the field and widget tables. It is safe for concurrent
// reads; once frozen it rejects writes.
type Registry struct {
	mu        sync.RWMutex
	fields    map[string]Field
	widgets   map[string]Widget
	directory Directory
	matchers  *widgets.Matchers
	logger    *zap.Logger
	frozen    bool
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		fields:   make(map[string]Field),
		widgets:  make(map[string]Widget),
		matchers: widgets.NewMatchers(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// RegisterField associates a field with name. Existing entries are replaced.
func (r *Registry) RegisterField(name string, field Field) error {
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("registry: field name is required")
	}
	if field == nil {
		return fmt.Errorf("registry: field %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: cannot register field %q", ErrFrozen, name)
	}
	r.fields[key] = field
	return nil
}

// RegisterWidget associates a widget with name. Existing entries are
// replaced.
func (r *Registry) RegisterWidget(name string, widget Widget) error {
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("registry: widget name is required")
	}
	if widget == nil {
		return fmt.Errorf("registry: widget %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return fmt.Errorf("%w: cannot register widget %q", ErrFrozen, name)
	}
	r.widgets[key] = widget
	return nil
}

// MustRegisterField mirrors RegisterField but panics on error.
func (r *Registry) MustRegisterField(name string, field Field) {
	if err := r.RegisterField(name, field); err != nil {
		panic(err)
	}
}

// MustRegisterWidget mirrors RegisterWidget but panics on error.
func (r *Registry) MustRegisterWidget(name string, widget Widget) {
	if err := r.RegisterWidget(name, widget); err != nil {
		panic(err)
	}
}

// HasField reports whether a local field key is registered.
func (r *Registry) HasField(name string) bool {
	_, ok := r.field(name)
	return ok
}

// HasWidget reports whether a local widget key is registered.
func (r *Registry) HasWidget(name string) bool {
	_, ok := r.widget(name)
	return ok
}

// Fields returns the registered field keys, sorted.
func (r *Registry) Fields() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.fields)
}

// Widgets returns the registered widget keys, sorted.
func (r *Registry) Widgets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.widgets)
}

// Freeze makes the registry read-only. Render passes freeze the registry
// they use.
func (r *Registry) Freeze() *Registry {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
	return r
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Clone returns an unfrozen copy sharing the directory, matchers and logger.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cloned := &Registry{
		fields:    make(map[string]Field, len(r.fields)),
		widgets:   make(map[string]Widget, len(r.widgets)),
		directory: r.directory,
		matchers:  r.matchers,
		logger:    r.logger,
	}
	for key, field := range r.fields {
		cloned.fields[key] = field
	}
	for key, widget := range r.widgets {
		cloned.widgets[key] = widget
	}
	return cloned
}

// Logger returns the diagnostics logger.
func (r *Registry) Logger() *zap.Logger {
	if r == nil || r.logger == nil {
		return zap.NewNop()
	}
	return r.logger
}

// Field returns a locally registered field.
func (r *Registry) Field(name string) (Field, bool) {
	return r.field(name)
}

// Widget returns a locally registered widget.
func (r *Registry) Widget(name string) (Widget, bool) {
	return r.widget(name)
}

// ResolveField picks the field for a schema node: a fully-qualified ui:field
// through the directory, then ui:field as a local key, then the default for
// the schema type. When nothing matches it returns UnsupportedField (if
// registered) together with the miss.
func (r *Registry) ResolveField(s *schema.Schema, ui uischema.UiSchema) (Field, *Miss) {
	var miss *Miss
	if name := ui.Field(); name != "" {
		if field, ok := r.lookupField(name); ok {
			return field, nil
		}
		miss = &Miss{Kind: "field", Name: name, Reason: fmt.Sprintf("could not find component %q", name)}
		r.report(miss)
	}

	name, known := TypeDefault(s)
	if known {
		if field, ok := r.field(name); ok {
			return field, miss
		}
		miss = &Miss{Kind: "field", Name: name, Reason: fmt.Sprintf("could not find component %q", name)}
		r.report(miss)
	} else {
		miss = &Miss{Kind: "field", Name: s.TypeName(), Reason: "Unknown field type " + s.TypeName()}
		r.report(miss)
	}

	field, _ := r.field(UnsupportedField)
	return field, miss
}

// ResolveWidget picks the widget for name, or for s when name is empty.
func (r *Registry) ResolveWidget(s *schema.Schema, name string) (Widget, *Miss) {
	if strings.TrimSpace(name) == "" {
		name = r.DefaultWidget(s, nil)
	}
	if name == "" {
		miss := &Miss{Kind: "widget", Name: s.TypeName(), Reason: "No widget for type " + s.TypeName()}
		r.report(miss)
		return nil, miss
	}
	if widget, ok := r.lookupWidget(name); ok {
		return widget, nil
	}
	miss := &Miss{Kind: "widget", Name: name, Reason: fmt.Sprintf("could not find component %q", name)}
	r.report(miss)
	return nil, miss
}

// DefaultWidget returns the widget name the matchers choose for s. res
// dereferences item schemas; nil means no definitions.
func (r *Registry) DefaultWidget(s *schema.Schema, res *resolve.Resolver) string {
	if r == nil {
		return ""
	}
	name, _ := r.matchers.Resolve(s, nil, res)
	return name
}

// TypeDefault maps a resolved schema to its default field name. The boolean
// is false for schemas without a known type.
func TypeDefault(s *schema.Schema) (string, bool) {
	if s == nil {
		return "", false
	}
	switch s.Type {
	case schema.TypeObject:
		return ObjectField, true
	case schema.TypeArray:
		return ArrayField, true
	case schema.TypeBoolean:
		return BooleanField, true
	case schema.TypeNumber, schema.TypeInteger:
		return NumberField, true
	case schema.TypeNull:
		return NullField, true
	case schema.TypeString:
		switch strings.ToLower(s.Format) {
		case "date", "date-time":
			return DateField, true
		}
		return StringField, true
	}
	return "", false
}

func (r *Registry) lookupField(name string) (Field, bool) {
	if fqn, err := ParseFQN(name); err == nil && r.directory != nil {
		if component, ok := r.directory.Lookup(fqn); ok && component.Field != nil {
			return component.Field, true
		}
	}
	return r.field(name)
}

func (r *Registry) lookupWidget(name string) (Widget, bool) {
	if fqn, err := ParseFQN(name); err == nil && r.directory != nil {
		if component, ok := r.directory.Lookup(fqn); ok && component.Widget != nil {
			return component.Widget, true
		}
	}
	return r.widget(name)
}

func (r *Registry) field(name string) (Field, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	field, ok := r.fields[normalize(name)]
	return field, ok
}

func (r *Registry) widget(name string) (Widget, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	widget, ok := r.widgets[normalize(name)]
	return widget, ok
}

func (r *Registry) report(miss *Miss) {
	r.Logger().Warn("registry miss",
		zap.String("kind", miss.Kind),
		zap.String("fqn", miss.Name),
		zap.String("reason", miss.Reason),
	)
}

func sortedKeys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for key := range m {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
