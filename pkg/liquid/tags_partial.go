package liquid

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
)

var (
	includeRe = regexp.MustCompile(`^((?:` + quotedFragment + `)+)(\s+(?:with|for)\s+((?:` + quotedFragment + `)+))?(\s+as\s+([\w-]+))?`)
	renderRe  = regexp.MustCompile(`^("[^"]*"|'[^']*')(\s+(with|for)\s+((?:` + quotedFragment + `)+))?(\s+as\s+([\w-]+))?`)
)

// includeTag renders a partial in the caller's scope. Variables the partial
// assigns stay visible afterwards.
type includeTag struct {
	TagBase
	template   Expression
	variable   Expression
	alias      string
	attributes map[string]Expression
}

func parseInclude(name, markup string, _ *Tokenizer, pc *ParseContext) (Tag, error) {
	m := includeRe.FindStringSubmatch(markup)
	if m == nil {
		return nil, pc.SyntaxError("errors.syntax.include")
	}
	t := &includeTag{TagBase: NewTagBase(name, markup, pc), alias: m[5]}
	var err error
	if t.template, err = ParseExpression(m[1], pc); err != nil {
		return nil, err
	}
	if m[3] != "" {
		if t.variable, err = ParseExpression(m[3], pc); err != nil {
			return nil, err
		}
	}
	if t.attributes, err = parseAttributes(markup[len(m[0]):], pc); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *includeTag) Disableable() bool { return true }

func (t *includeTag) Render(ctx *Context, out *bytes.Buffer) error {
	nameVal, err := t.template.Evaluate(ctx)
	if err != nil {
		return err
	}
	name, ok := nameVal.(string)
	if !ok || name == "" {
		return ArgumentError("%s", ctx.locale().T("errors.argument.include"))
	}
	partial, err := PartialCacheFor(ctx).Get(name, ctx)
	if err != nil {
		return err
	}
	varName := t.alias
	if varName == "" {
		varName = name[strings.LastIndex(name, "/")+1:]
	}
	var value any
	if t.variable != nil {
		if value, err = t.variable.Evaluate(ctx); err != nil {
			return err
		}
	} else if value, err = ctx.FindVariable(name); err != nil && !errors.Is(err, ErrUndefinedVariable) {
		return err
	}

	prevName, prevPartial := ctx.templateName, ctx.partial
	ctx.templateName, ctx.partial = name, true
	defer func() { ctx.templateName, ctx.partial = prevName, prevPartial }()

	return ctx.Stack(nil, func() error {
		for k, e := range t.attributes {
			v, err := e.Evaluate(ctx)
			if err != nil {
				return err
			}
			ctx.Set(k, v)
		}
		if items, isList := liquidize(value).([]any); isList {
			for _, item := range items {
				ctx.Set(varName, item)
				if err := partial.renderPartial(ctx, out); err != nil {
					return err
				}
			}
			return nil
		}
		ctx.Set(varName, value)
		return partial.renderPartial(ctx, out)
	})
}

// renderTag renders a partial in an isolated context that sees only what is
// passed to it. include is disabled inside.
type renderTag struct {
	TagBase
	name       string
	variable   Expression
	forLoop    bool
	alias      string
	attributes map[string]Expression
}

func parseRender(name, markup string, _ *Tokenizer, pc *ParseContext) (Tag, error) {
	m := renderRe.FindStringSubmatch(markup)
	if m == nil {
		return nil, pc.SyntaxError("errors.syntax.render")
	}
	t := &renderTag{
		TagBase: NewTagBase(name, markup, pc),
		name:    unquote(m[1]),
		forLoop: m[3] == "for",
		alias:   m[6],
	}
	var err error
	if m[4] != "" {
		if t.variable, err = ParseExpression(m[4], pc); err != nil {
			return nil, err
		}
	}
	if t.attributes, err = parseAttributes(markup[len(m[0]):], pc); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *renderTag) DisabledTags() []string { return []string{"include"} }

func (t *renderTag) Render(ctx *Context, out *bytes.Buffer) error {
	partial, err := PartialCacheFor(ctx).Get(t.name, ctx)
	if err != nil {
		return err
	}
	varName := t.alias
	if varName == "" {
		varName = t.name[strings.LastIndex(t.name, "/")+1:]
	}
	var value any
	if t.variable != nil {
		if value, err = t.variable.Evaluate(ctx); err != nil {
			return err
		}
	}

	renderOne := func(item any, loop *ForloopDrop) error {
		inner, err := ctx.NewIsolatedSubcontext(t.name)
		if err != nil {
			return err
		}
		if loop != nil {
			inner.Set("forloop", loop)
		}
		for k, e := range t.attributes {
			v, err := e.Evaluate(ctx)
			if err != nil {
				return err
			}
			inner.Set(k, v)
		}
		if item != nil {
			inner.Set(varName, item)
		}
		if err := partial.renderPartial(inner, out); err != nil {
			return err
		}
		if loop != nil {
			loop.increment()
		}
		return nil
	}

	if items, ok := listSequenceOf(value); ok && t.forLoop {
		loop := newForloopDrop(t.name, items.Len(), nil)
		for i := 0; i < items.Len(); i++ {
			if err := ctx.resourceLimits.IncrementLoopIterations(1); err != nil {
				return ctx.limitError(err)
			}
			if err := renderOne(items.At(i), loop); err != nil {
				return err
			}
		}
		return nil
	}
	return renderOne(value, nil)
}
