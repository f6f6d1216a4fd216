package liquid

import (
	"html"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FilterFunc implements a filter. input is the piped value.
type FilterFunc func(input any, args []any, kwargs map[string]any) (any, error)

// Filters is a filter module: a set of filters registered together.
type Filters map[string]FilterFunc

// DefaultFilters provides a small set of common filters. Hosts add the rest
// with Environment.RegisterFilters or WithFilters.
func DefaultFilters() Filters {
	return Filters{
		"upcase":   stringFilter(strings.ToUpper),
		"downcase": stringFilter(strings.ToLower),
		"strip":    stringFilter(strings.TrimSpace),
		"lstrip":   stringFilter(func(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) }),
		"rstrip":   stringFilter(func(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }),
		"escape":   stringFilter(html.EscapeString),
		"capitalize": stringFilter(func(s string) string {
			r, size := utf8.DecodeRuneInString(s)
			if size == 0 {
				return s
			}
			return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
		}),
		"append": func(in any, args []any, _ map[string]any) (any, error) {
			if err := arity("append", args, 1); err != nil {
				return nil, err
			}
			return ToString(in) + ToString(args[0]), nil
		},
		"prepend": func(in any, args []any, _ map[string]any) (any, error) {
			if err := arity("prepend", args, 1); err != nil {
				return nil, err
			}
			return ToString(args[0]) + ToString(in), nil
		},
		"replace": func(in any, args []any, _ map[string]any) (any, error) {
			if err := arity("replace", args, 2); err != nil {
				return nil, err
			}
			return strings.ReplaceAll(ToString(in), ToString(args[0]), ToString(args[1])), nil
		},
		"default": func(in any, args []any, kwargs map[string]any) (any, error) {
			var fallback any
			if len(args) > 0 {
				fallback = args[0]
			}
			allowFalse := IsTruthy(kwargs["allow_false"])
			if b, ok := in.(bool); ok && !b && allowFalse {
				return in, nil
			}
			if !IsTruthy(in) || isEmptyValue(in) {
				return fallback, nil
			}
			return in, nil
		},
		"size": func(in any, _ []any, _ map[string]any) (any, error) {
			n, _ := Size(in)
			return n, nil
		},
		"join": func(in any, args []any, _ map[string]any) (any, error) {
			sep := " "
			if len(args) > 0 {
				sep = ToString(args[0])
			}
			items, ok := toSlice(in)
			if !ok {
				return ToString(in), nil
			}
			parts := make([]string, len(items))
			for i, item := range items {
				parts[i] = ToString(item)
			}
			return strings.Join(parts, sep), nil
		},
		"split": func(in any, args []any, _ map[string]any) (any, error) {
			if err := arity("split", args, 1); err != nil {
				return nil, err
			}
			s, sep := ToString(in), ToString(args[0])
			if s == "" {
				return []any{}, nil
			}
			var parts []string
			if sep == " " {
				parts = strings.Fields(s)
			} else {
				parts = strings.Split(s, sep)
			}
			out := make([]any, len(parts))
			for i, p := range parts {
				out[i] = p
			}
			return out, nil
		},
		"first": func(in any, _ []any, _ map[string]any) (any, error) {
			return applyCommand(in, "first"), nil
		},
		"last": func(in any, _ []any, _ map[string]any) (any, error) {
			return applyCommand(in, "last"), nil
		},
		"reverse": func(in any, _ []any, _ map[string]any) (any, error) {
			items, ok := toSlice(in)
			if !ok {
				return in, nil
			}
			out := make([]any, len(items))
			for i, item := range items {
				out[len(items)-1-i] = item
			}
			return out, nil
		},
		"plus":  arithmetic("plus", func(a, b int) int { return a + b }, func(a, b float64) float64 { return a + b }),
		"minus": arithmetic("minus", func(a, b int) int { return a - b }, func(a, b float64) float64 { return a - b }),
		"times": arithmetic("times", func(a, b int) int { return a * b }, func(a, b float64) float64 { return a * b }),
		"abs": func(in any, _ []any, _ map[string]any) (any, error) {
			n := numberArg(in)
			if i, ok := n.(int); ok {
				if i < 0 {
					return -i, nil
				}
				return i, nil
			}
			return math.Abs(toFloat(n)), nil
		},
	}
}

func stringFilter(fn func(string) string) FilterFunc {
	return func(in any, _ []any, _ map[string]any) (any, error) {
		return fn(ToString(in)), nil
	}
}

func arity(name string, args []any, want int) error {
	if len(args) != want {
		return ArgumentError("wrong number of arguments (given %d, expected %d) for filter %s", len(args), want, name)
	}
	return nil
}

// numberArg converts filter operands the way arithmetic filters expect:
// numeric strings count, anything else is zero.
func numberArg(v any) any {
	v = liquidize(v)
	if n, ok := toNumber(v); ok {
		return n
	}
	if s, ok := v.(string); ok {
		if n, ok := parseNumber(strings.TrimSpace(s)); ok {
			return n
		}
	}
	return 0
}

func arithmetic(name string, ints func(a, b int) int, floats func(a, b float64) float64) FilterFunc {
	return func(in any, args []any, _ map[string]any) (any, error) {
		if err := arity(name, args, 1); err != nil {
			return nil, err
		}
		a, b := numberArg(in), numberArg(args[0])
		ai, aInt := a.(int)
		bi, bInt := b.(int)
		if aInt && bInt {
			return ints(ai, bi), nil
		}
		return floats(toFloat(a), toFloat(b)), nil
	}
}
