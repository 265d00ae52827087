// Package widgets chooses the default widget for a schema node when the
// UiSchema does not name one. Matchers are ranked by priority.
package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formengine/pkg/resolve"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/uischema"
)

// Built-in widget identifiers.
const (
	Text       = "text"
	Textarea   = "textarea"
	Password   = "password"
	Email      = "email"
	URI        = "uri"
	Number     = "number"
	Updown     = "updown"
	Range      = "range"
	Checkbox   = "checkbox"
	Checkboxes = "checkboxes"
	Radio      = "radio"
	Select     = "select"
	Date       = "date"
	DateTime   = "datetime"
	Hidden     = "hidden"
)

// TextareaThreshold is the maxLength above which strings default to a
// textarea.
const TextareaThreshold = 255

// Matcher decides whether a widget should handle the supplied schema node.
type Matcher func(s *schema.Schema, r *resolve.Resolver) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Matchers selects widget names for schema nodes based on explicit hints or
// registered matchers. Higher priority wins; ties fall back to registration
// order. An empty set never resolves a widget.
type Matchers struct {
	mu    sync.RWMutex
	rules []rule
}

// NewMatchers constructs a set with the built-in matchers registered.
func NewMatchers() *Matchers {
	m := &Matchers{}
	m.registerBuiltins()
	return m
}

// Register adds a matcher with the provided name and priority. Higher
// priority values take precedence.
func (m *Matchers) Register(name string, priority int, matcher Matcher) {
	if m == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rules = append(m.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(m.rules),
	})
}

// Resolve returns the widget name for a schema node. An explicit ui:widget is
// honoured before matcher evaluation. r dereferences item schemas; nil means
// no definitions.
func (m *Matchers) Resolve(s *schema.Schema, ui uischema.UiSchema, r *resolve.Resolver) (string, bool) {
	if explicit := ui.Widget(); explicit != "" {
		return explicit, true
	}
	if m == nil || s == nil {
		return "", false
	}
	m.mu.RLock()
	if len(m.rules) == 0 {
		m.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), m.rules...)
	m.mu.RUnlock()
	if r == nil {
		r = resolve.New(nil)
	}
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(s, r) {
			return entry.name, true
		}
	}
	return "", false
}

func (m *Matchers) registerBuiltins() {
	m.Register(Select, 100, func(s *schema.Schema, r *resolve.Resolver) bool {
		return s.Type != schema.TypeArray && r.IsSelect(s)
	})

	m.Register(Checkboxes, 90, func(s *schema.Schema, r *resolve.Resolver) bool {
		return r.IsMultiSelect(s)
	})

	m.Register(Checkbox, 80, func(s *schema.Schema, r *resolve.Resolver) bool {
		return s.Type == schema.TypeBoolean
	})

	m.Register(Number, 70, func(s *schema.Schema, r *resolve.Resolver) bool {
		return s.Type == schema.TypeNumber || s.Type == schema.TypeInteger
	})

	m.Register(Date, 60, func(s *schema.Schema, r *resolve.Resolver) bool {
		return s.Type == schema.TypeString && strings.EqualFold(s.Format, "date")
	})

	m.Register(DateTime, 60, func(s *schema.Schema, r *resolve.Resolver) bool {
		return s.Type == schema.TypeString && strings.EqualFold(s.Format, "date-time")
	})

	m.Register(Textarea, 50, func(s *schema.Schema, r *resolve.Resolver) bool {
		if s.Type != schema.TypeString {
			return false
		}
		if multiline, ok := s.Extensions["x-multiline"].(bool); ok && multiline {
			return true
		}
		return s.MaxLength != nil && *s.MaxLength > TextareaThreshold
	})

	m.Register(Email, 40, func(s *schema.Schema, r *resolve.Resolver) bool {
		return s.Type == schema.TypeString && strings.EqualFold(s.Format, "email")
	})

	m.Register(URI, 40, func(s *schema.Schema, r *resolve.Resolver) bool {
		return s.Type == schema.TypeString && (strings.EqualFold(s.Format, "uri") || strings.EqualFold(s.Format, "url"))
	})

	m.Register(Password, 40, func(s *schema.Schema, r *resolve.Resolver) bool {
		return s.Type == schema.TypeString && strings.EqualFold(s.Format, "password")
	})

	m.Register(Text, 0, func(s *schema.Schema, r *resolve.Resolver) bool {
		return s.Type == schema.TypeString || s.Type == ""
	})
}
