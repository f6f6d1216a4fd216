package liquid

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strings"
)

var (
	forRe      = regexp.MustCompile(`^([\w-]+)\s+in\s+((?:` + quotedFragment + `)+)\s*(reversed)?`)
	tablerowRe = regexp.MustCompile(`^(\w+)\s+in\s+((?:` + quotedFragment + `)+)`)
)

// forTag: {% for item in collection limit:n offset:n|continue reversed %}
type forTag struct {
	BlockBase
	variable   string
	collection Expression
	key        string // offset:continue bookkeeping
	reversed   bool
	limit      Expression
	offset     Expression
	continued  bool
	body       *BlockBody
	elseBody   *BlockBody
}

func parseFor(name, markup string, tokens *Tokenizer, pc *ParseContext) (Tag, error) {
	m := forRe.FindStringSubmatch(markup)
	if m == nil {
		if pc.strict() && !strings.Contains(markup, " in ") {
			return nil, pc.SyntaxError("errors.syntax.for_invalid_in")
		}
		return nil, pc.SyntaxError("errors.syntax.for")
	}
	collection, err := ParseExpression(m[2], pc)
	if err != nil {
		return nil, err
	}
	t := &forTag{
		BlockBase:  NewBlockBase(name, markup, pc),
		variable:   m[1],
		collection: collection,
		key:        m[1] + "-" + m[2],
		reversed:   m[3] != "",
	}
	for _, am := range tagAttributeRe.FindAllStringSubmatch(markup[len(m[0]):], -1) {
		switch am[1] {
		case "offset":
			if am[2] == "continue" {
				t.continued = true
				continue
			}
			if t.offset, err = ParseExpression(am[2], pc); err != nil {
				return nil, err
			}
		case "limit":
			if t.limit, err = ParseExpression(am[2], pc); err != nil {
				return nil, err
			}
		default:
			if pc.strict() {
				return nil, pc.SyntaxError("errors.syntax.for_invalid_attribute")
			}
		}
	}

	body, delim, _, done, err := t.ParseBody(tokens, pc)
	if err != nil {
		return nil, err
	}
	t.body = body
	if done {
		return t, nil
	}
	if delim != "else" {
		return nil, t.UnknownTag(delim, pc)
	}
	if t.elseBody, err = t.ParseSingleBody(tokens, pc); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *forTag) Render(ctx *Context, out *bytes.Buffer) error {
	segment, err := t.collectSegment(ctx)
	if err != nil {
		return err
	}
	if segment.Len() == 0 {
		if t.elseBody != nil {
			return t.elseBody.Render(ctx, out)
		}
		return nil
	}
	return t.renderSegment(ctx, out, segment)
}

func (t *forTag) collectSegment(ctx *Context) (sequence, error) {
	offsets := ctx.registers.state(registerFor)
	from := 0
	if t.continued {
		from, _ = offsets[t.key].(int)
	} else if t.offset != nil {
		v, err := t.offset.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		if from, err = toInteger(v, ctx.locale()); err != nil {
			return nil, err
		}
	}
	collection, err := t.collection.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	to := math.MaxInt
	if t.limit != nil {
		v, err := t.limit.Evaluate(ctx)
		if err != nil {
			return nil, err
		}
		if v != nil {
			n, err := toInteger(v, ctx.locale())
			if err != nil {
				return nil, err
			}
			to = windowEnd(from, n)
		}
	}
	segment := window(iterSequence(collection), from, to)
	if t.reversed {
		segment = reversedSequence{segment}
	}
	offsets[t.key] = max(from, 0) + segment.Len()
	return segment, nil
}

// windowEnd is from+limit, saturating instead of wrapping.
func windowEnd(from, limit int) int {
	if limit > 0 && from > math.MaxInt-limit {
		return math.MaxInt
	}
	return from + limit
}

func (t *forTag) renderSegment(ctx *Context, out *bytes.Buffer, segment sequence) error {
	var parent *ForloopDrop
	stack, _ := ctx.registers.Get(registerForStack)
	loops, _ := stack.([]*ForloopDrop)
	if len(loops) > 0 {
		parent = loops[len(loops)-1]
	}
	loop := newForloopDrop(t.key, segment.Len(), parent)
	ctx.registers.Set(registerForStack, append(loops, loop))
	defer ctx.registers.Set(registerForStack, loops)

	return ctx.Stack(nil, func() error {
		ctx.Set("forloop", loop)
		for i := 0; i < segment.Len(); i++ {
			if err := ctx.resourceLimits.IncrementLoopIterations(1); err != nil {
				return ctx.limitError(err)
			}
			ctx.Set(t.variable, segment.At(i))
			if err := t.body.Render(ctx, out); err != nil {
				return err
			}
			loop.increment()
			if ctx.PopInterrupt() == InterruptBreak {
				break
			}
		}
		return nil
	})
}

// interruptTag implements break and continue.
type interruptTag struct {
	TagBase
	signal Interrupt
}

func parseInterrupt(name, markup string, _ *Tokenizer, pc *ParseContext) (Tag, error) {
	if pc.strict() && markup != "" {
		return nil, pc.SyntaxError("errors.syntax.tag_unexpected_args", "tag", name)
	}
	t := &interruptTag{TagBase: NewTagBase(name, markup, pc), signal: InterruptBreak}
	if name == "continue" {
		t.signal = InterruptContinue
	}
	return t, nil
}

func (t *interruptTag) Render(ctx *Context, _ *bytes.Buffer) error {
	ctx.SetInterrupt(t.signal)
	return nil
}

// tableRowTag: {% tablerow item in collection cols:n limit:n offset:n %}
type tableRowTag struct {
	BlockBase
	variable   string
	collection Expression
	attributes map[string]Expression
	body       *BlockBody
}

func parseTableRow(name, markup string, tokens *Tokenizer, pc *ParseContext) (Tag, error) {
	m := tablerowRe.FindStringSubmatch(markup)
	if m == nil {
		return nil, pc.SyntaxError("errors.syntax.table_row")
	}
	collection, err := ParseExpression(m[2], pc)
	if err != nil {
		return nil, err
	}
	attrs, err := parseAttributes(markup[len(m[0]):], pc)
	if err != nil {
		return nil, err
	}
	t := &tableRowTag{BlockBase: NewBlockBase(name, markup, pc), variable: m[1], collection: collection, attributes: attrs}
	if t.body, err = t.ParseSingleBody(tokens, pc); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *tableRowTag) intAttribute(ctx *Context, key string) (int, bool, error) {
	e, ok := t.attributes[key]
	if !ok {
		return 0, false, nil
	}
	v, err := e.Evaluate(ctx)
	if err != nil {
		return 0, false, err
	}
	n, err := toInteger(v, ctx.locale())
	return n, true, err
}

func (t *tableRowTag) Render(ctx *Context, out *bytes.Buffer) error {
	collection, err := t.collection.Evaluate(ctx)
	if err != nil || collection == nil {
		return err
	}
	from, _, err := t.intAttribute(ctx, "offset")
	if err != nil {
		return err
	}
	to := math.MaxInt
	if limit, ok, err := t.intAttribute(ctx, "limit"); err != nil {
		return err
	} else if ok {
		to = windowEnd(from, limit)
	}
	items := window(iterSequence(collection), from, to)
	cols, ok, err := t.intAttribute(ctx, "cols")
	if err != nil {
		return err
	}
	if !ok || cols <= 0 {
		cols = items.Len()
	}

	out.WriteString("<tr class=\"row1\">\n")
	err = ctx.Stack(nil, func() error {
		loop := newTablerowloopDrop(items.Len(), cols)
		ctx.Set("tablerowloop", loop)
		for i := 0; i < items.Len(); i++ {
			if err := ctx.resourceLimits.IncrementLoopIterations(1); err != nil {
				return ctx.limitError(err)
			}
			ctx.Set(t.variable, items.At(i))
			fmt.Fprintf(out, "<td class=\"col%d\">", loop.col)
			if err := t.body.Render(ctx, out); err != nil {
				return err
			}
			out.WriteString("</td>")
			if ctx.PopInterrupt() == InterruptBreak {
				break
			}
			if loop.col == cols && loop.index != items.Len()-1 {
				fmt.Fprintf(out, "</tr>\n<tr class=\"row%d\">", loop.row+1)
			}
			loop.increment()
		}
		return nil
	})
	if err != nil {
		return err
	}
	out.WriteString("</tr>\n")
	return nil
}
