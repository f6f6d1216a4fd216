package liquid

import (
	"bytes"
	"errors"
	"log/slog"
)

// Interrupt is a pending loop control signal.
type Interrupt int

const (
	InterruptNone Interrupt = iota
	InterruptBreak
	InterruptContinue
)

// Context is the state of one render: variable scopes, registers, flags and
// the resource budget. A Context must not be shared between renders.
type Context struct {
	env *Environment

	scopes             []map[string]any // innermost first
	environments       []map[string]any
	staticEnvironments []map[string]any

	registers      *Registers
	resourceLimits *ResourceLimits
	filters        []Filters
	globalFilter   func(any) (any, error)

	strictVariables   bool
	strictFilters     bool
	strictErrors      bool
	exceptionRenderer func(*Error) (string, error)

	errorMode    ErrorMode
	templateName string
	partial      bool

	disabledTags map[string]int
	interrupt    Interrupt
	baseDepth    int
	errors       *[]error
	logger       *slog.Logger
}

func newContext(env *Environment, data map[string]any, o *options) *Context {
	if data == nil {
		data = map[string]any{}
	}
	c := &Context{
		env:                env,
		scopes:             []map[string]any{{}},
		environments:       []map[string]any{{}, data},
		staticEnvironments: o.staticEnvironments,
		filters:            o.filters,
		globalFilter:       o.globalFilter,
		strictVariables:    o.strictVariables,
		strictFilters:      o.strictFilters,
		exceptionRenderer:  o.exceptionRenderer,
		errorMode:          env.ErrorMode,
		templateName:       o.templateName,
		disabledTags:       map[string]int{},
		errors:             new([]error),
		logger:             env.Logger,
	}
	if o.errorMode != nil {
		c.errorMode = *o.errorMode
	}
	if o.sharedRegisters != nil {
		c.registers = o.sharedRegisters
	} else {
		c.registers = NewRegisters(o.registers)
	}

	limits := env.Limits
	if o.limits != nil {
		limits = *o.limits
	}
	c.resourceLimits = NewResourceLimits(limits)
	if v, ok := c.registers.Get(RegisterResourceLimits); ok {
		switch rl := v.(type) {
		case *ResourceLimits:
			rl.Reset()
			c.resourceLimits = rl
		case Limits:
			c.resourceLimits = NewResourceLimits(rl)
		}
	}
	return c
}

// Environment returns the environment the render runs in.
func (c *Context) Environment() *Environment { return c.env }

// Registers returns the register side channel.
func (c *Context) Registers() *Registers { return c.registers }

// ResourceLimits returns the budget tracker.
func (c *Context) ResourceLimits() *ResourceLimits { return c.resourceLimits }

// Errors returns the errors that were rendered inline instead of aborting.
func (c *Context) Errors() []error { return *c.errors }

// StrictVariables reports whether undefined variables are errors.
func (c *Context) StrictVariables() bool { return c.strictVariables }

// StrictFilters reports whether undefined filters are errors.
func (c *Context) StrictFilters() bool { return c.strictFilters }

// ErrorMode is the mode partials are parsed in.
func (c *Context) ErrorMode() ErrorMode { return c.errorMode }

// TemplateName is the name of the template being rendered, empty at the top
// level.
func (c *Context) TemplateName() string { return c.templateName }

// Logger returns the render logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

func (c *Context) locale() *Locale { return c.env.Locale }

// FindVariable resolves a top-level name. Scopes are searched innermost
// first, then render data, then static environments.
func (c *Context) FindVariable(key string) (any, error) {
	for _, scope := range c.scopes {
		if v, ok := scope[key]; ok && (v != nil || c.strictVariables) {
			return c.bind(v), nil
		}
	}
	for _, group := range [2][]map[string]any{c.environments, c.staticEnvironments} {
		for _, env := range group {
			if v, ok := env[key]; ok && (v != nil || c.strictVariables) {
				return c.bind(v), nil
			}
		}
	}
	if c.strictVariables {
		return nil, c.undefinedVariable(key)
	}
	return nil, nil
}

// Set writes key into the innermost scope.
func (c *Context) Set(key string, v any) { c.scopes[0][key] = v }

// Assign writes key into the outermost scope of this context. assign and
// capture use it, so their variables outlive loop and include scopes.
func (c *Context) Assign(key string, v any) { c.scopes[len(c.scopes)-1][key] = v }

// counters holds increment/decrement state, visible as variables.
func (c *Context) counters() map[string]any { return c.environments[0] }

func (c *Context) undefinedVariable(name string) error {
	return newError(ErrUndefinedVariable, "%s", c.locale().T("errors.runtime.undefined_variable", "name", name))
}

// bind hands the context to context-aware values.
func (c *Context) bind(v any) any {
	if ca, ok := v.(ContextAware); ok {
		ca.SetContext(c)
	}
	return v
}

// lookupMember reads key from obj. Drops resolve through Resolve; maps by
// key; lists by integer index, negative from the end.
func (c *Context) lookupMember(obj, key any) (any, bool) {
	obj = liquidize(obj)
	switch o := obj.(type) {
	case nil:
		return nil, false
	case Drop:
		c.bind(o)
		v, ok := o.Resolve(ToString(key))
		return c.bind(v), ok
	case map[string]any:
		v, ok := o[ToString(key)]
		return c.bind(v), ok
	case string:
		return nil, false
	}
	if idx, ok := key.(int); ok {
		if r, isRange := obj.(Range); isRange {
			n := r.Len()
			if idx < 0 {
				idx += n
			}
			if idx < 0 || idx >= n {
				return nil, false
			}
			return r.At(idx), true
		}
		items, isList := toSlice(obj)
		if !isList {
			return nil, false
		}
		if idx < 0 {
			idx += len(items)
		}
		if idx < 0 || idx >= len(items) {
			return nil, false
		}
		return c.bind(items[idx]), true
	}
	if m, ok := toMap(obj); ok {
		v, found := m[ToString(key)]
		return c.bind(v), found
	}
	return nil, false
}

// Push opens a new innermost scope.
func (c *Context) Push(scope map[string]any) error {
	if scope == nil {
		scope = map[string]any{}
	}
	c.scopes = append([]map[string]any{scope}, c.scopes...)
	if c.overflow() {
		c.Pop()
		return c.stackLevelError()
	}
	return nil
}

// Pop closes the innermost scope. The outermost scope is never removed.
func (c *Context) Pop() {
	if len(c.scopes) > 1 {
		c.scopes = c.scopes[1:]
	}
}

// Stack runs fn inside a new scope.
func (c *Context) Stack(scope map[string]any, fn func() error) error {
	if err := c.Push(scope); err != nil {
		return err
	}
	defer c.Pop()
	return fn()
}

func (c *Context) overflow() bool {
	return c.baseDepth+len(c.scopes) > c.env.MaxDepth
}

func (c *Context) stackLevelError() error {
	return newError(ErrStackLevel, "%s", c.locale().T("errors.runtime.stack_level"))
}

// NewIsolatedSubcontext returns a context for a partial that sees only static
// environments and what the caller passes explicitly. Registers, filters,
// disabled tags, errors and the budget are shared.
func (c *Context) NewIsolatedSubcontext(templateName string) (*Context, error) {
	sub := &Context{
		env:                c.env,
		scopes:             []map[string]any{{}},
		environments:       []map[string]any{{}},
		staticEnvironments: c.staticEnvironments,
		registers:          c.registers.child(),
		resourceLimits:     c.resourceLimits,
		filters:            c.filters,
		globalFilter:       c.globalFilter,
		strictVariables:    c.strictVariables,
		strictFilters:      c.strictFilters,
		strictErrors:       c.strictErrors,
		exceptionRenderer:  c.exceptionRenderer,
		errorMode:          c.errorMode,
		templateName:       templateName,
		partial:            true,
		disabledTags:       c.disabledTags,
		baseDepth:          c.baseDepth + len(c.scopes),
		errors:             c.errors,
		logger:             c.logger,
	}
	if sub.overflow() {
		return nil, c.stackLevelError()
	}
	return sub, nil
}

// Interrupt returns the pending loop signal.
func (c *Context) Interrupt() Interrupt { return c.interrupt }

// SetInterrupt raises a loop signal.
func (c *Context) SetInterrupt(i Interrupt) { c.interrupt = i }

// PopInterrupt returns and clears the pending signal.
func (c *Context) PopInterrupt() Interrupt {
	i := c.interrupt
	c.interrupt = InterruptNone
	return i
}

// WithDisabledTags disables names while fn runs. Nested calls for the same
// name are counted.
func (c *Context) WithDisabledTags(names []string, fn func() error) error {
	for _, n := range names {
		c.disabledTags[n]++
	}
	defer func() {
		for _, n := range names {
			if c.disabledTags[n]--; c.disabledTags[n] <= 0 {
				delete(c.disabledTags, n)
			}
		}
	}()
	return fn()
}

// TagDisabled reports whether name is currently disabled.
func (c *Context) TagDisabled(name string) bool { return c.disabledTags[name] > 0 }

// DisabledError is rendered in place of a disabled tag.
func DisabledError(tag string, loc *Locale) *Error {
	return newError(ErrDisabled, "%s %s", tag, loc.T("errors.disabled.tag"))
}

// HandleError deals with a node's render error. Fatal errors, and every error
// under RenderStrict, are returned. Others are recorded and rendered into
// out.
func (c *Context) HandleError(err error, line int, out *bytes.Buffer) error {
	le := asLiquidError(err)
	if le.Line == 0 {
		le.Line = line
	}
	if le.TemplateName == "" {
		le.TemplateName = c.templateName
	}
	if isFatal(le) || c.strictErrors {
		return le
	}
	*c.errors = append(*c.errors, le)
	if le.Kind == ErrInternal {
		c.logger.Error("render failed", "template", c.templateName, "line", le.Line, "error", le.Cause)
	} else {
		c.logger.Debug("render error recovered", "template", c.templateName, "line", le.Line, "error", le.Message)
	}
	if c.exceptionRenderer != nil {
		s, rerr := c.exceptionRenderer(le)
		if rerr != nil {
			return rerr
		}
		out.WriteString(s)
		return nil
	}
	out.WriteString(le.Error())
	return nil
}

func (c *Context) limitError(err error) error {
	if errors.Is(err, ErrResourceLimit) {
		l := c.resourceLimits
		c.logger.Warn("resource limits exceeded",
			"template", c.templateName,
			"render_score", l.RenderScore(),
			"assign_score", l.AssignScore(),
			"loop_iterations", l.LoopIterations())
		if le, ok := err.(*Error); ok {
			le.Message = c.locale().T("errors.runtime.memory")
		}
	}
	return err
}

// Invoke applies the named filter. Per-render filter modules win over the
// environment's; unknown filters return input unchanged unless strict filters
// are on.
func (c *Context) Invoke(name string, input any, args []any, kwargs map[string]any) (any, error) {
	f, ok := c.filter(name)
	if ok {
		if err := c.checkRanges(input, args, kwargs); err != nil {
			return nil, err
		}
		return f(input, args, kwargs)
	}
	if c.strictFilters {
		return nil, newError(ErrUndefinedFilter, "%s", c.locale().T("errors.runtime.undefined_filter", "name", name))
	}
	return input, nil
}

func (c *Context) filter(name string) (FilterFunc, bool) {
	for i := len(c.filters) - 1; i >= 0; i-- {
		if f, ok := c.filters[i][name]; ok {
			return f, true
		}
	}
	return c.env.Filter(name)
}

// checkRanges refuses to hand a filter a range that the render budget
// could not pay for once the filter expands it.
func (c *Context) checkRanges(input any, args []any, kwargs map[string]any) error {
	check := func(v any) error {
		if r, ok := v.(Range); ok {
			if err := c.resourceLimits.CheckSize(r.Len()); err != nil {
				return c.limitError(err)
			}
		}
		return nil
	}
	if err := check(input); err != nil {
		return err
	}
	for _, a := range args {
		if err := check(a); err != nil {
			return err
		}
	}
	for _, k := range sortedKeys(kwargs) {
		if err := check(kwargs[k]); err != nil {
			return err
		}
	}
	return nil
}
