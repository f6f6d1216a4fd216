package starlark

import (
	"github.com/neurodesk/liquid/pkg/liquid"
	"go.starlark.net/starlark"
)

// CreateBuiltins returns the functions predeclared for every script. They
// give scripts template semantics where Starlark's own differ.
func CreateBuiltins() starlark.StringDict {
	return starlark.StringDict{
		// to_s formats a value the way {{ }} prints it.
		"to_s": starlark.NewBuiltin("to_s", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var v starlark.Value
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &v); err != nil {
				return nil, err
			}
			return starlark.String(liquid.ToString(FromStarlark(v))), nil
		}),
		// truthy: only None and False are false.
		"truthy": starlark.NewBuiltin("truthy", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var v starlark.Value
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &v); err != nil {
				return nil, err
			}
			return starlark.Bool(liquid.IsTruthy(FromStarlark(v))), nil
		}),
		"to_int": starlark.NewBuiltin("to_int", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var v starlark.Value
			if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &v); err != nil {
				return nil, err
			}
			n, err := liquid.ToInteger(FromStarlark(v))
			if err != nil {
				return nil, err
			}
			return starlark.MakeInt(n), nil
		}),
	}
}
