package validation

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formengine/pkg/resolve"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// SchemaIssue is a problem with a schema document itself.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaReport is the outcome of CheckSchema.
type SchemaReport struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// CheckSchema lints a schema before it is handed to a form: structural
// invariants (required names exist, one items form per array), resolvable
// references and constraints kin-openapi rejects, such as invalid patterns.
func CheckSchema(ctx context.Context, s *schema.Schema) SchemaReport {
	report := SchemaReport{Valid: true}
	if s == nil {
		report.add(SchemaIssue{Message: "schema is empty"})
		return report
	}

	for _, err := range s.Check() {
		report.add(issueFromError(err))
	}

	resolver := resolve.ForRoot(s)
	walkRefs(resolver, s, "#", &report)

	if err := ToOpenAPI(s).Validate(ctx, openapi3.DisableSchemaFormatValidation()); err != nil {
		report.add(issueFromError(err))
	}
	for _, name := range definitionNames(s) {
		if err := ToOpenAPI(s.Definitions[name]).Validate(ctx, openapi3.DisableSchemaFormatValidation()); err != nil {
			issue := issueFromError(err)
			issue.Path = "#/definitions/" + name
			issue.Field = fieldPathFromPointer(issue.Path)
			report.add(issue)
		}
	}
	return report
}

func (r *SchemaReport) add(issue SchemaIssue) {
	r.Valid = false
	r.Issues = append(r.Issues, issue)
}

// walkRefs resolves every $ref found in the written tree, including
// definitions the data may never reach. References are not followed, so the
// walk ends even for recursive definitions.
func walkRefs(resolver *resolve.Resolver, s *schema.Schema, pointer string, report *SchemaReport) {
	if s == nil {
		return
	}
	if s.Ref != "" {
		if _, err := resolver.Resolve(s, nil); err != nil && !errors.Is(err, resolve.ErrMalformedItems) {
			report.add(SchemaIssue{
				Path:    pointer,
				Field:   fieldPathFromPointer(pointer),
				Message: strings.TrimPrefix(err.Error(), "resolve: "),
			})
		}
	}
	for _, name := range s.OrderedProperties() {
		walkRefs(resolver, s.Properties[name], pointer+"/properties/"+name, report)
	}
	walkRefs(resolver, s.Items, pointer+"/items", report)
	for idx, item := range s.TupleItems {
		walkRefs(resolver, item, pointer+"/items/"+strconv.Itoa(idx), report)
	}
	walkRefs(resolver, s.AdditionalItems, pointer+"/additionalItems", report)
	if s.AdditionalProperties != nil {
		walkRefs(resolver, s.AdditionalProperties.Schema, pointer+"/additionalProperties", report)
	}
	for _, name := range definitionNames(s) {
		walkRefs(resolver, s.Definitions[name], pointer+"/definitions/"+name, report)
	}
}

func definitionNames(s *schema.Schema) []string {
	names := make([]string, 0, len(s.Definitions))
	for name := range s.Definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func issueFromError(err error) SchemaIssue {
	if err == nil {
		return SchemaIssue{Message: "unknown error"}
	}

	msg := strings.TrimSpace(err.Error())
	path := extractJSONPointer(msg)
	if path != "" {
		msg = strings.Replace(msg, path+": ", "", 1)
		msg = strings.Replace(msg, " at "+path, "", 1)
	}
	msg = strings.TrimPrefix(msg, "schema: ")
	msg = strings.TrimPrefix(msg, "#: ")
	msg = strings.TrimPrefix(msg, "resolve: ")
	msg = strings.TrimSpace(msg)

	return SchemaIssue{
		Path:    path,
		Field:   fieldPathFromPointer(path),
		Message: msg,
	}
}

func extractJSONPointer(message string) string {
	if idx := strings.Index(message, "#/"); idx >= 0 {
		candidate := message[idx:]
		if end := strings.IndexAny(candidate, " :"); end >= 0 {
			candidate = candidate[:end]
		}
		return trimPointer(candidate)
	}
	return ""
}

func trimPointer(pointer string) string {
	trimmed := strings.TrimRight(pointer, ".)];,\"")
	return strings.TrimSpace(trimmed)
}

// fieldPathFromPointer maps a schema pointer (#/properties/a/items) to the
// dotted field path it describes (a.items).
func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimSpace(pointer)
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for idx := 0; idx < len(parts); idx++ {
		segment := strings.ReplaceAll(parts[idx], "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		switch segment {
		case "properties":
			if idx+1 < len(parts) {
				next := strings.ReplaceAll(parts[idx+1], "~1", "/")
				next = strings.ReplaceAll(next, "~0", "~")
				out = append(out, next)
				idx++
			}
		case "items":
			out = append(out, "items")
		case "definitions", "$defs":
			if idx+1 < len(parts) {
				out = append(out, parts[idx+1])
				idx++
			}
		default:
			if segment == "" {
				continue
			}
			out = append(out, segment)
		}
	}
	return strings.Join(out, ".")
}
