// Package form implements the form controller: the state machine that owns
// the document and its errors, reacts to edits, blur, focus, submit and prop
// changes, and renders the field tree.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/mohae/deepcopy"
	"go.uber.org/zap"

	"github.com/goliatone/go-formengine/pkg/fields"
	"github.com/goliatone/go-formengine/pkg/idschema"
	"github.com/goliatone/go-formengine/pkg/registry"
	"github.com/goliatone/go-formengine/pkg/render"
	"github.com/goliatone/go-formengine/pkg/render/template"
	"github.com/goliatone/go-formengine/pkg/resolve"
	"github.com/goliatone/go-formengine/pkg/validation"
	"github.com/goliatone/go-formengine/pkg/visibility"
)

// ErrNoSchema is returned by New and SetProps when props carry no schema.
var ErrNoSchema = errors.New("form: schema is required")

// ResourceHandle is a host resource the controller may use during one submit
// call. It is acquired before validation and released before Submit returns;
// the controller never keeps it.
type ResourceHandle interface {
	Acquire(ctx context.Context) error
	Release()
}

// Controller owns one form state. Every method is safe to call from any
// goroutine; each call is atomic with respect to the state it produces.
// Callbacks run after the state is updated and outside the controller lock,
// so they may call back into the controller.
type Controller struct {
	mu      sync.Mutex
	id      string
	cfg     Config
	props   Props
	state   State
	version uint64

	registry   *registry.Registry
	validator  *validation.Orchestrator
	templates  template.Renderer
	visibility visibility.Evaluator
	extras     map[string]any
	logger     *zap.Logger

	onChange func(State)
	onBlur   func(id string, value any)
	onFocus  func(id string, value any)
	onSubmit func(State)
	onError  func([]validation.FieldError)
}

// New builds a controller and reconciles the initial props. A change event
// produced by normalising the initial document is delivered to the change
// callback before New returns.
func New(props Props, opts ...Option) (*Controller, error) {
	if props.Schema == nil {
		return nil, ErrNoSchema
	}
	c := &Controller{
		id:     uuid.NewString(),
		cfg:    DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.registry == nil {
		c.registry = fields.NewRegistry(registry.WithLogger(c.logger))
	}
	c.registry = c.registry.Clone().Freeze()
	if c.validator == nil {
		c.validator = validation.New(validation.WithLogger(c.logger))
	}
	c.logger = c.logger.With(zap.String("controller", c.id))

	state, event := Reconcile(State{}, props, c.deps())
	if c.shouldValidate() && props.FormData != nil {
		state = c.validated(context.Background(), state, props)
	}
	c.props = props
	c.state = state
	if event != nil {
		c.logger.Debug("initial document normalised")
		c.emitChange(c.snapshot(state))
	}
	return c, nil
}

// ID returns the controller instance id used in log fields.
func (c *Controller) ID() string {
	return c.id
}

// Config returns the active flags.
func (c *Controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// State returns a deep copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(c.state)
}

// OnChange stores value at path (an empty path replaces the document). With
// live validation the document is validated and the state becomes
// Validated; otherwise it becomes Editing and the previous errors are kept
// until the next validation. Disabled forms ignore the call.
func (c *Controller) OnChange(path Path, value any) {
	c.mu.Lock()
	if c.cfg.Disabled {
		c.mu.Unlock()
		return
	}
	next := c.state
	next.FormData = setIn(c.state.FormData, path, deepcopy.Copy(value))
	next.IDSchema = c.resolveIDs(next)
	if c.cfg.LiveValidate && !c.cfg.NoValidate {
		next = c.validated(context.Background(), next, c.props)
	} else {
		next.Status = StatusEditing
	}
	c.state = next
	c.version++
	snapshot := c.snapshot(next)
	c.mu.Unlock()

	c.emitChange(snapshot)
}

// OnBlur records that id lost focus and forwards the notification.
func (c *Controller) OnBlur(id string, value any) {
	c.mu.Lock()
	if c.state.ActiveField == id {
		c.state.ActiveField = ""
	}
	fn := c.onBlur
	c.mu.Unlock()
	if fn != nil {
		fn(id, value)
	}
}

// OnFocus records id as the active field and forwards the notification.
func (c *Controller) OnFocus(id string, value any) {
	c.mu.Lock()
	c.state.ActiveField = id
	fn := c.onFocus
	c.mu.Unlock()
	if fn != nil {
		fn(id, value)
	}
}

// Submit validates (unless NoValidate) and ends in SubmittedOK or
// SubmittedInvalid. See SubmitWith.
func (c *Controller) Submit(ctx context.Context) (State, error) {
	return c.SubmitWith(ctx, nil)
}

// SubmitWith submits while holding handle. Validation runs regardless of the
// live-validation flag. Invalid documents move to SubmittedInvalid and the
// error callback receives the errors; valid ones move to SubmittedOK, clear
// the errors and the submit callback receives the final state. handle is
// released before SubmitWith returns.
func (c *Controller) SubmitWith(ctx context.Context, handle ResourceHandle) (State, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if handle != nil {
		if err := handle.Acquire(ctx); err != nil {
			return c.State(), fmt.Errorf("form: acquire submit resource: %w", err)
		}
		defer handle.Release()
	}

	c.mu.Lock()
	c.state.Status = StatusSubmitting
	next := c.state
	if c.cfg.NoValidate {
		next.Errors = nil
	} else {
		next = c.validated(ctx, next, c.props)
	}

	var (
		onSubmit func(State)
		onError  func([]validation.FieldError)
	)
	if len(next.Errors) > 0 {
		next.Status = StatusSubmittedInvalid
		onError = c.onError
	} else {
		next.Status = StatusSubmittedOK
		next.Errors = nil
		next.ErrorSchema = &validation.ErrorSchema{}
		onSubmit = c.onSubmit
	}
	c.state = next
	c.version++
	snapshot := c.snapshot(next)
	c.mu.Unlock()

	c.logger.Debug("form submitted",
		zap.String("status", snapshot.Status.String()),
		zap.Int("errors", len(snapshot.Errors)),
	)
	if onError != nil {
		onError(snapshot.Errors)
	}
	if onSubmit != nil {
		onSubmit(snapshot)
	}
	return snapshot, nil
}

// SetProps adopts new props through Reconcile. When the recomputed document
// differs from both the supplied and the current one, the change callback
// receives the new state before it is adopted. A callback that itself calls
// SetProps wins: the outer call then leaves the newer state in place.
func (c *Controller) SetProps(props Props) error {
	if props.Schema == nil {
		return ErrNoSchema
	}
	c.mu.Lock()
	previous := c.state
	next, event := Reconcile(previous, props, c.deps())
	version := c.version
	c.mu.Unlock()

	if event != nil {
		c.logger.Debug("props normalised document, emitting change")
		c.emitChange(c.snapshot(event.State))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != version {
		return nil
	}
	if c.shouldValidate() && !sameDocument(previous, next) {
		next = c.validated(context.Background(), next, props)
	}
	c.props = props
	c.state = next
	c.version++
	return nil
}

// Render builds the field tree for the current state. Fields that panic are
// replaced by failed markers. Without SafeRenderCompletion the fields after
// the first failure are left out. Only a panic outside every field boundary
// replaces the whole tree.
func (c *Controller) Render() *render.Node {
	c.mu.Lock()
	state := c.state
	cfg := c.cfg
	definitions := c.props.definitions()
	c.mu.Unlock()

	ctx := &registry.Context{
		Registry:             c.registry,
		Resolver:             resolve.New(definitions, resolve.WithRoot(state.Schema)),
		Templates:            c.templates,
		Visibility:           c.visibility,
		Logger:               c.logger,
		FormData:             state.FormData,
		Extras:               c.extras,
		Current:              c.current,
		SafeRenderCompletion: cfg.SafeRenderCompletion,
	}
	props := registry.FieldProps{
		Schema:   state.Schema,
		UiSchema: state.UiSchema,
		IDSchema: state.IDSchema,
		Value:    state.FormData,
		Disabled: cfg.Disabled,
		Errors:   state.ErrorSchema,
		OnChange: func(value any) { c.OnChange(nil, value) },
		OnBlur:   c.OnBlur,
		OnFocus:  c.OnFocus,
		Context:  ctx,
	}

	root := c.renderRoot(props)
	if cfg.showErrorList() && len(state.Errors) > 0 {
		list := fields.ErrorListFor(props)
		root.Children = append([]*render.Node{list}, root.Children...)
	}
	return root
}

func (c *Controller) renderRoot(props registry.FieldProps) (root *render.Node) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		abort := &registry.RenderPanic{Value: recovered}
		c.logger.Error("render aborted", zap.Error(abort))
		root = &render.Node{
			Kind:   render.KindFailed,
			ID:     props.ID(),
			Reason: "could not render form",
			Errors: []string{abort.Error()},
		}
	}()

	field, ok := c.registry.Field(registry.SchemaField)
	if !ok {
		field = registry.FieldFunc(fields.Schema)
	}
	root = field.Render(props)
	if root == nil {
		props.Reason = "Unknown field type " + props.Schema.TypeName()
		root = fields.Unsupported(props)
	}
	return root
}

func (c *Controller) current(path []string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return getIn(c.state.FormData, path)
}

func (c *Controller) deps() Deps {
	return Deps{IDPrefix: c.cfg.IDPrefix}
}

func (c *Controller) shouldValidate() bool {
	return c.cfg.LiveValidate && !c.cfg.NoValidate
}

func (c *Controller) resolveIDs(state State) *idschema.IDSchema {
	res := resolve.New(c.props.definitions(), resolve.WithRoot(state.Schema))
	return idschema.NewGenerator(res).Generate(state.Schema, c.cfg.IDPrefix, state.FormData)
}

func sameDocument(a, b State) bool {
	return a.Schema == b.Schema && cmp.Equal(a.FormData, b.FormData) && cmp.Equal(a.UiSchema, b.UiSchema)
}

// validated runs the orchestrator against state and returns the state with
// fresh errors and status Validated.
func (c *Controller) validated(ctx context.Context, state State, props Props) State {
	result := c.validator.Validate(ctx, state.FormData, state.Schema, props.definitions())
	state.Errors = result.Errors
	state.ErrorSchema = result.ErrorSchema
	state.Status = StatusValidated
	return state
}

func (c *Controller) snapshot(state State) State {
	return state.clone()
}

func (c *Controller) emitChange(state State) {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(state)
	}
}
