package fields

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/pkg/registry"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/resolve"
	"github.com/goliatone/go-formengine/pkg/uischema"
)

// Schema resolves props.Schema against the current value and dispatches it to
// the field the registry picks. A panic inside the chosen field is contained
// here and the subtree becomes a failed marker. Without
// SafeRenderCompletion the pass is halted, so fields after it are skipped.
func Schema(props registry.FieldProps) (node *render.Node) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		props.Context.Log().Error("field render panicked",
			zap.String("path", strings.Join(props.Path, ".")),
			zap.String("id", props.ID()),
			zap.Any("panic", recovered),
		)
		if props.Context == nil || !props.Context.SafeRenderCompletion {
			props.Context.Halt()
		}
		node = Failed(props, recovered)
	}()
	return dispatch(props)
}

func dispatch(props registry.FieldProps) *render.Node {
	res := resolverOf(props.Context)
	source := props.Schema
	if expr := props.UiSchema.String(uischema.KeyDefinition); expr != "" {
		target, err := res.LookupTemplate(expr)
		if err != nil {
			return resolutionFailure(props, err)
		}
		source = target
	}

	resolved, err := res.Resolve(source, props.Value)
	if err != nil {
		return resolutionFailure(props, err)
	}
	props.Schema = resolved
	if resolved.HasConst && props.Value == nil {
		props.Value = resolved.Const
	}

	field, miss := registryOf(props.Context).ResolveField(resolved, props.UiSchema)
	if miss != nil {
		props.Reason = miss.Reason
	}
	if field == nil {
		return Unsupported(props)
	}
	return field.Render(props)
}

func resolutionFailure(props registry.FieldProps, err error) *render.Node {
	props.Context.Log().Warn("schema resolution failed",
		zap.String("path", strings.Join(props.Path, ".")),
		zap.Error(err),
	)
	reason := err.Error()
	switch {
	case errors.Is(err, resolve.ErrUnresolvedReference):
		reason = "unresolved schema reference"
	case errors.Is(err, resolve.ErrCircularReference):
		reason = "circular schema reference"
	case errors.Is(err, resolve.ErrMalformedItems):
		reason = "array schema is missing items"
	}
	props.Reason = reason
	node := unsupportedFor(props)
	node.Errors = append(node.Errors, err.Error())
	return node
}

// Failed builds the marker that replaces a subtree whose render panicked.
func Failed(props registry.FieldProps, recovered any) *render.Node {
	return &render.Node{
		Kind:   render.KindFailed,
		ID:     props.ID(),
		Name:   props.Name,
		Path:   props.Path,
		Label:  props.Name,
		Reason: "could not render field",
		Errors: []string{fmt.Sprint(recovered)},
	}
}
