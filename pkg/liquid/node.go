package liquid

import (
	"bytes"
	"strings"
)

// Node is an element of a parsed template.
type Node interface {
	Render(ctx *Context, out *bytes.Buffer) error
	// Blank reports whether the node never produces visible output.
	Blank() bool
}

// Text is literal template text.
type Text struct {
	Value string
}

func (t *Text) Render(_ *Context, out *bytes.Buffer) error {
	out.WriteString(t.Value)
	return nil
}

func (t *Text) Blank() bool { return strings.TrimSpace(t.Value) == "" }

// FilterCall is one "| name: args" step of an output.
type FilterCall struct {
	Name   string
	Args   []Expression
	Kwargs map[string]Expression
}

func (f *FilterCall) add(keyword string, e Expression) {
	if keyword == "" {
		f.Args = append(f.Args, e)
		return
	}
	if f.Kwargs == nil {
		f.Kwargs = map[string]Expression{}
	}
	f.Kwargs[keyword] = e
}

// Variable is a {{ }} output: an expression piped through filters.
type Variable struct {
	Markup  string
	Expr    Expression
	Filters []FilterCall
	line    int
}

// NewVariable parses output markup.
func NewVariable(markup string, pc *ParseContext) (*Variable, error) {
	e, filters, err := parseVariableMarkup(markup, pc)
	if err != nil {
		return nil, err
	}
	return &Variable{Markup: markup, Expr: e, Filters: filters, line: pc.line}, nil
}

// Line is where the output appears in the source.
func (v *Variable) Line() int { return v.line }

func (v *Variable) Blank() bool { return false }

func (v *Variable) Render(ctx *Context, out *bytes.Buffer) error {
	val, err := v.Value(ctx)
	if err != nil {
		return err
	}
	out.WriteString(ToString(val))
	return nil
}

// Value evaluates the expression and applies the filter chain in order.
func (v *Variable) Value(ctx *Context) (any, error) {
	val, err := v.Expr.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range v.Filters {
		args := make([]any, len(f.Args))
		for i, a := range f.Args {
			if args[i], err = a.Evaluate(ctx); err != nil {
				return nil, err
			}
		}
		var kwargs map[string]any
		if len(f.Kwargs) > 0 {
			kwargs = make(map[string]any, len(f.Kwargs))
			for k, a := range f.Kwargs {
				if kwargs[k], err = a.Evaluate(ctx); err != nil {
					return nil, err
				}
			}
		}
		if val, err = ctx.Invoke(f.Name, val, args, kwargs); err != nil {
			return nil, err
		}
	}
	if ctx.globalFilter != nil {
		return ctx.globalFilter(val)
	}
	return val, nil
}
