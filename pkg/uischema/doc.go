// Package uischema models the presentation tree that travels alongside a
// schema: widget and field overrides, option maps and per-property children.
// String options written as ${...} are kept as template expressions and only
// evaluated by an injected template renderer.
package uischema
