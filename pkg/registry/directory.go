package registry

import (
	"fmt"
	"sort"
)

// Component is what a directory hands back: a field, a widget or both.
type Component struct {
	FQN    FQN
	Field  Field
	Widget Widget
}

// Directory is the host-provided component lookup. A miss is reported by
// the boolean, never by a panic.
type Directory interface {
	Lookup(name FQN) (Component, bool)
}

// DirectoryFunc adapts a function to Directory.
type DirectoryFunc func(name FQN) (Component, bool)

// Lookup implements Directory.
func (fn DirectoryFunc) Lookup(name FQN) (Component, bool) {
	return fn(name)
}

// Entry is one row of a MapDirectory registration table.
type Entry struct {
	Namespace string
	Name      string
	Version   string
	Field     Field
	Widget    Widget
}

// MapDirectory is an immutable Directory built from a static table of
// entries. Lookups without a version return the highest registered version.
type MapDirectory struct {
	entries map[string][]Component
}

var _ Directory = (*MapDirectory)(nil)

// NewMapDirectory validates the table and builds the directory. Duplicate
// name/version pairs and entries without an implementation are rejected.
func NewMapDirectory(entries ...Entry) (*MapDirectory, error) {
	dir := &MapDirectory{entries: make(map[string][]Component)}
	for _, entry := range entries {
		fqn := FQN{Namespace: entry.Namespace, Name: entry.Name, Version: entry.Version}
		if _, err := ParseFQN(fqn.String()); err != nil {
			return nil, err
		}
		if entry.Field == nil && entry.Widget == nil {
			return nil, fmt.Errorf("registry: directory entry %s has no implementation", fqn)
		}
		for _, existing := range dir.entries[fqn.Key()] {
			if existing.FQN.Version == fqn.Version {
				return nil, fmt.Errorf("registry: directory entry %s registered twice", fqn)
			}
		}
		dir.entries[fqn.Key()] = append(dir.entries[fqn.Key()], Component{FQN: fqn, Field: entry.Field, Widget: entry.Widget})
	}
	for key := range dir.entries {
		versions := dir.entries[key]
		sort.SliceStable(versions, func(i, j int) bool {
			return compareVersions(versions[i].FQN.Version, versions[j].FQN.Version) > 0
		})
	}
	return dir, nil
}

// MustMapDirectory panics when the table is invalid. Useful for package-level
// tables.
func MustMapDirectory(entries ...Entry) *MapDirectory {
	dir, err := NewMapDirectory(entries...)
	if err != nil {
		panic(err)
	}
	return dir
}

// Lookup implements Directory.
func (d *MapDirectory) Lookup(name FQN) (Component, bool) {
	if d == nil {
		return Component{}, false
	}
	versions := d.entries[name.Key()]
	if len(versions) == 0 {
		return Component{}, false
	}
	if name.Version == "" {
		return versions[0], true
	}
	for _, candidate := range versions {
		if candidate.FQN.Version == name.Version {
			return candidate, true
		}
	}
	return Component{}, false
}

// Names lists every registered FQN, sorted.
func (d *MapDirectory) Names() []string {
	if d == nil {
		return nil
	}
	var out []string
	for _, versions := range d.entries {
		for _, component := range versions {
			out = append(out, component.FQN.String())
		}
	}
	sort.Strings(out)
	return out
}
