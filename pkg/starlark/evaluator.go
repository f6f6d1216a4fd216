package starlark

import (
	"fmt"
	"log/slog"
	"maps"

	"go.starlark.net/starlark"
)

// DefaultMaxSteps bounds every Eval, ExecFile and filter call.
const DefaultMaxSteps = 1_000_000

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMaxSteps sets the execution step budget of each call. Zero disables
// the budget.
func WithMaxSteps(n uint64) Option {
	return func(e *Evaluator) { e.maxSteps = n }
}

// WithLogger routes print() output to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// WithGlobals predeclares template values for scripts.
func WithGlobals(globals map[string]any) Option {
	return func(e *Evaluator) {
		for k, v := range globals {
			e.SetGlobal(k, v)
		}
	}
}

// Evaluator runs Starlark code against template values. Every call gets a
// fresh thread, so a loaded module may serve concurrent renders once its
// globals are frozen.
type Evaluator struct {
	builtins starlark.StringDict
	globals  starlark.StringDict
	maxSteps uint64
	logger   *slog.Logger
}

// NewEvaluator creates a new Starlark evaluator
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		builtins: CreateBuiltins(),
		globals:  make(starlark.StringDict),
		maxSteps: DefaultMaxSteps,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetGlobal sets a global variable in the Starlark environment
func (e *Evaluator) SetGlobal(name string, value any) {
	e.globals[name] = ToStarlark(value)
}

// GetGlobal retrieves a global variable as a template value
func (e *Evaluator) GetGlobal(name string) (any, bool) {
	if val, ok := e.globals[name]; ok {
		return FromStarlark(val), true
	}
	return nil, false
}

func (e *Evaluator) newThread(name string) *starlark.Thread {
	thread := &starlark.Thread{
		Name: name,
		Print: func(thread *starlark.Thread, msg string) {
			e.logger.Info(msg, "thread", thread.Name)
		},
	}
	if e.maxSteps > 0 {
		thread.SetMaxExecutionSteps(e.maxSteps)
	}
	return thread
}

func (e *Evaluator) predeclared() starlark.StringDict {
	predeclared := make(starlark.StringDict, len(e.builtins)+len(e.globals))
	maps.Copy(predeclared, e.builtins)
	maps.Copy(predeclared, e.globals)
	return predeclared
}

// Eval evaluates a Starlark expression and returns the result as a template
// value.
func (e *Evaluator) Eval(expr string) (any, error) {
	val, err := starlark.Eval(e.newThread("eval"), "<eval>", expr, e.predeclared())
	if err != nil {
		return nil, fmt.Errorf("starlark evaluation error: %w", err)
	}
	return FromStarlark(val), nil
}

// ExecFile executes a Starlark module and merges its globals into the
// evaluator. The new globals are frozen.
func (e *Evaluator) ExecFile(filename string, src any) (starlark.StringDict, error) {
	globals, err := starlark.ExecFile(e.newThread(filename), filename, src, e.predeclared())
	if err != nil {
		return nil, fmt.Errorf("starlark execution error: %w", err)
	}
	globals.Freeze()
	maps.Copy(e.globals, globals)
	e.logger.Debug("loaded starlark module", "file", filename, "globals", len(globals))
	return globals, nil
}

// Call invokes a callable global with template values.
func (e *Evaluator) Call(name string, args []any, kwargs map[string]any) (any, error) {
	fn, ok := e.globals[name].(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("starlark: %s is not callable", name)
	}
	return e.call(fn, args, kwargs)
}

func (e *Evaluator) call(fn starlark.Callable, args []any, kwargs map[string]any) (any, error) {
	tuple := make(starlark.Tuple, len(args))
	for i, a := range args {
		tuple[i] = ToStarlark(a)
	}
	var kw []starlark.Tuple
	for _, k := range sortedKeys(kwargs) {
		kw = append(kw, starlark.Tuple{starlark.String(k), ToStarlark(kwargs[k])})
	}
	val, err := starlark.Call(e.newThread(fn.Name()), fn, tuple, kw)
	if err != nil {
		return nil, err
	}
	return FromStarlark(val), nil
}
