// Package template defines the interpolation contract used for UiSchema
// string options and the file-template contract used by markup renderers.
// Failures never escape: Evaluate degrades them to a visible placeholder.
package template
