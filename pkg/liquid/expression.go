package liquid

import (
	"strconv"
	"strings"
)

// Expression is a parsed value reference evaluated against a Context.
type Expression interface {
	Evaluate(ctx *Context) (any, error)
}

// Literal is a constant.
type Literal struct {
	Value any
}

func (l *Literal) Evaluate(*Context) (any, error) { return l.Value, nil }

// MethodLiteral is one of the special comparison operands empty and blank.
type MethodLiteral string

const (
	Empty MethodLiteral = "empty"
	Blank MethodLiteral = "blank"
)

func (m MethodLiteral) Evaluate(*Context) (any, error) { return m, nil }

func (m MethodLiteral) matches(v any) bool {
	if other, ok := v.(MethodLiteral); ok {
		return other == m
	}
	if m == Empty {
		return isEmptyValue(v)
	}
	return isBlankValue(v)
}

func (m MethodLiteral) String() string { return "" }

var literals = map[string]Expression{
	"nil":   &Literal{},
	"null":  &Literal{},
	"":      &Literal{},
	"true":  &Literal{Value: true},
	"false": &Literal{Value: false},
	"blank": Blank,
	"empty": Empty,
}

// commands are the lookups applied to the value itself when it has no key of
// that name.
var commands = map[string]bool{"size": true, "first": true, "last": true}

// VariableLookup resolves a name followed by dotted or bracketed lookups.
type VariableLookup struct {
	Name     string
	NameExpr Expression // set for lookups starting with a bracket
	Lookups  []Expression
	command  []bool
}

func newVariableLookup(name string) *VariableLookup {
	return &VariableLookup{Name: name}
}

func (v *VariableLookup) addLookup(e Expression, isCommand bool) {
	v.Lookups = append(v.Lookups, e)
	v.command = append(v.command, isCommand)
}

func (v *VariableLookup) Evaluate(ctx *Context) (any, error) {
	name := v.Name
	if v.NameExpr != nil {
		n, err := v.NameExpr.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		name = ToString(n)
	}
	obj, err := ctx.FindVariable(name)
	if err != nil {
		return nil, err
	}
	for i, lookup := range v.Lookups {
		key, err := lookup.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		next, found := ctx.lookupMember(obj, key)
		if found {
			obj = next
			continue
		}
		if v.command[i] {
			obj = applyCommand(obj, ToString(key))
			continue
		}
		if ctx.strictVariables {
			return nil, ctx.undefinedVariable(ToString(key))
		}
		return nil, nil
	}
	return obj, nil
}

// String returns the path in dotted form.
func (v *VariableLookup) String() string {
	var b strings.Builder
	if v.NameExpr != nil {
		b.WriteString("[" + exprString(v.NameExpr) + "]")
	} else {
		b.WriteString(v.Name)
	}
	for i, l := range v.Lookups {
		if lit, ok := l.(*Literal); ok && v.command[i] {
			b.WriteString("." + ToString(lit.Value))
			continue
		}
		b.WriteString("[" + exprString(l) + "]")
	}
	return b.String()
}

func applyCommand(obj any, name string) any {
	obj = liquidize(obj)
	switch name {
	case "size":
		if n, ok := Size(obj); ok {
			return n
		}
	case "first":
		if r, ok := obj.(Range); ok {
			if r.Len() > 0 {
				return r.From
			}
			return nil
		}
		if items, ok := toSlice(obj); ok && len(items) > 0 {
			return items[0]
		}
	case "last":
		if r, ok := obj.(Range); ok {
			if r.Len() > 0 {
				return r.To
			}
			return nil
		}
		if items, ok := toSlice(obj); ok && len(items) > 0 {
			return items[len(items)-1]
		}
	}
	return nil
}

// RangeLookup is a (from..to) range whose ends are only known at render time.
type RangeLookup struct {
	From, To Expression
}

func (r *RangeLookup) Evaluate(ctx *Context) (any, error) {
	from, err := r.From.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	to, err := r.To.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	return makeRange(from, to, ctx.locale())
}

func makeRange(from, to any, loc *Locale) (Range, error) {
	f, err := toInteger(from, loc)
	if err != nil {
		return Range{}, err
	}
	t, err := toInteger(to, loc)
	if err != nil {
		return Range{}, err
	}
	return Range{From: f, To: t}, nil
}

// newRange folds ranges with numeric literal ends at parse time. Anything
// else is converted when rendered.
func newRange(from, to Expression) (Expression, error) {
	fl, fok := from.(*Literal)
	tl, tok := to.(*Literal)
	if fok && tok && isRangeBound(fl.Value) && isRangeBound(tl.Value) {
		f, _ := ToInteger(fl.Value)
		t, _ := ToInteger(tl.Value)
		return &Literal{Value: Range{From: f, To: t}}, nil
	}
	return &RangeLookup{From: from, To: to}, nil
}

func isRangeBound(v any) bool {
	if v == nil {
		return true
	}
	_, ok := toNumber(v)
	return ok
}

func exprString(e Expression) string {
	switch t := e.(type) {
	case *Literal:
		if s, ok := t.Value.(string); ok {
			return strconv.Quote(s)
		}
		if t.Value == nil {
			return "nil"
		}
		return ToString(t.Value)
	case MethodLiteral:
		return string(t)
	case *VariableLookup:
		return t.String()
	case *RangeLookup:
		return "(" + exprString(t.From) + ".." + exprString(t.To) + ")"
	case *Condition:
		return "(" + t.String() + ")"
	}
	return "?"
}

func parseNumber(s string) (any, bool) {
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	if strings.ContainsRune(s, '.') {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return nil, false
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
