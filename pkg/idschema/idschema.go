package idschema

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formengine/pkg/resolve"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// DefaultPrefix seeds the root id when callers pass an empty prefix.
const DefaultPrefix = "root"

// Separator joins parent ids with property names and item indexes.
const Separator = "_"

// IDSchema mirrors a schema with one stable id per field.
type IDSchema struct {
	ID       string               `json:"$id"`
	Children map[string]*IDSchema `json:"children,omitempty"`
	Items    []*IDSchema          `json:"items,omitempty"`
}

// Child returns the id node for a property, or nil.
func (n *IDSchema) Child(name string) *IDSchema {
	if n == nil {
		return nil
	}
	return n.Children[name]
}

// Item returns the id node for an array position, or nil.
func (n *IDSchema) Item(idx int) *IDSchema {
	if n == nil || idx < 0 || idx >= len(n.Items) {
		return nil
	}
	return n.Items[idx]
}

// IDs flattens the tree into a sorted-by-walk list of ids.
func (n *IDSchema) IDs() []string {
	var out []string
	n.walk(func(node *IDSchema) { out = append(out, node.ID) })
	return out
}

func (n *IDSchema) walk(fn func(*IDSchema)) {
	if n == nil {
		return
	}
	fn(n)
	for _, name := range sortedChildren(n.Children) {
		n.Children[name].walk(fn)
	}
	for _, item := range n.Items {
		item.walk(fn)
	}
}

// Generate builds the id tree for s. Ids depend only on the schema shape, the
// prefix, and the array lengths and additional keys found in formData, so an
// edit that changes a value never changes an id.
func Generate(s *schema.Schema, idPrefix string, definitions schema.Definitions, formData any) *IDSchema {
	return NewGenerator(resolve.New(definitions, resolve.WithRoot(s))).Generate(s, idPrefix, formData)
}

// Generator generates ids with a caller-provided resolver.
type Generator struct {
	resolver *resolve.Resolver
}

// NewGenerator binds a generator to a resolver.
func NewGenerator(r *resolve.Resolver) *Generator {
	if r == nil {
		r = resolve.New(nil)
	}
	return &Generator{resolver: r}
}

// Generate implements the package-level Generate.
func (g *Generator) Generate(s *schema.Schema, idPrefix string, formData any) *IDSchema {
	prefix := strings.TrimSpace(idPrefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return g.generate(s, Sanitize(prefix), formData, make(map[string]int))
}

func (g *Generator) generate(s *schema.Schema, id string, formData any, active map[string]int) *IDSchema {
	node := &IDSchema{ID: id}
	if s != nil && s.Ref != "" {
		if active[s.Ref] > 0 && formData == nil {
			return node
		}
		active[s.Ref]++
		defer func() { active[s.Ref]-- }()
	}

	resolved, err := g.resolver.Resolve(s, formData)
	if err != nil && !errors.Is(err, resolve.ErrMalformedItems) {
		return node
	}

	switch resolved.Type {
	case schema.TypeObject:
		values, _ := formData.(map[string]any)
		names := resolved.OrderedProperties()
		if len(names) == 0 {
			return node
		}
		node.Children = make(map[string]*IDSchema, len(names))
		used := make(map[string]int, len(names))
		for _, name := range names {
			childID := uniqueID(id+Separator+Sanitize(name), used)
			node.Children[name] = g.generate(resolved.Properties[name], childID, values[name], active)
		}
	case schema.TypeArray:
		items, _ := formData.([]any)
		count := len(items)
		if resolve.IsFixedItems(resolved) && len(resolved.TupleItems) > count {
			count = len(resolved.TupleItems)
		}
		if count == 0 {
			return node
		}
		node.Items = make([]*IDSchema, count)
		for idx := 0; idx < count; idx++ {
			var value any
			if idx < len(items) {
				value = items[idx]
			}
			node.Items[idx] = g.generate(itemSchema(resolved, idx), id+Separator+strconv.Itoa(idx), value, active)
		}
	}
	return node
}

func itemSchema(s *schema.Schema, idx int) *schema.Schema {
	if resolve.IsFixedItems(s) {
		if idx < len(s.TupleItems) {
			return s.TupleItems[idx]
		}
		return s.AdditionalItems
	}
	return s.Items
}

// uniqueID appends -2, -3... when sanitization maps two sibling names onto the
// same id. Callers visit siblings in declaration order, so suffixes are stable.
func uniqueID(candidate string, used map[string]int) string {
	count := used[candidate]
	used[candidate] = count + 1
	if count == 0 {
		return candidate
	}
	for {
		count++
		next := candidate + "-" + strconv.Itoa(count)
		if used[next] == 0 {
			used[next] = 1
			return next
		}
	}
}

// Sanitize collapses every run of characters outside [A-Za-z0-9_-] into a
// single "-". Empty names become "-".
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pending := false
	for _, r := range name {
		if isSafe(r) {
			if pending {
				b.WriteByte('-')
				pending = false
			}
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	if pending {
		b.WriteByte('-')
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

func isSafe(r rune) bool {
	return r == '_' || r == '-' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

func sortedChildren(children map[string]*IDSchema) []string {
	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
