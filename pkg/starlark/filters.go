package starlark

import (
	"errors"
	"strings"

	"github.com/neurodesk/liquid/pkg/liquid"
	"go.starlark.net/starlark"
)

// LoadFilters executes a Starlark module and returns each of its public
// top-level functions as a template filter. The filter input is passed as
// the first positional argument, followed by the filter's own arguments.
//
//	def money(cents, symbol = "$"):
//	    return symbol + str(cents // 100) + "." + str(cents % 100)
func LoadFilters(filename string, src any, opts ...Option) (liquid.Filters, error) {
	e := NewEvaluator(opts...)
	globals, err := e.ExecFile(filename, src)
	if err != nil {
		return nil, err
	}
	filters := make(liquid.Filters)
	for _, name := range globals.Keys() {
		fn, ok := globals[name].(*starlark.Function)
		if !ok || strings.HasPrefix(name, "_") {
			continue
		}
		filters[name] = e.filter(name, fn)
	}
	e.logger.Debug("registered starlark filters", "file", filename, "count", len(filters))
	return filters, nil
}

func (e *Evaluator) filter(name string, fn *starlark.Function) liquid.FilterFunc {
	return func(input any, args []any, kwargs map[string]any) (any, error) {
		all := make([]any, 0, len(args)+1)
		all = append(all, input)
		all = append(all, args...)
		out, err := e.call(fn, all, kwargs)
		if err != nil {
			return nil, filterError(name, err)
		}
		return out, nil
	}
}

// filterError turns a script failure into an error shown to template
// authors. The backtrace stays available through Cause.
func filterError(name string, err error) error {
	msg := err.Error()
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		msg = evalErr.Msg
	}
	lerr := liquid.ArgumentError("%s: %s", name, msg)
	lerr.Cause = err
	return lerr
}
