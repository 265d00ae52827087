package fields_test

import (
	"sort"

	"github.com/goliatone/go-formengine/pkg/validation"
)

func validationTree(byPath map[string][]string) *validation.ErrorSchema {
	paths := make([]string, 0, len(byPath))
	for path := range byPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	tree := &validation.ErrorSchema{}
	for _, path := range paths {
		for _, message := range byPath[path] {
			tree.Add(validation.SplitPath(path), message)
		}
	}
	return tree
}
