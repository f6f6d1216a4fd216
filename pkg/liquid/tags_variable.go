package liquid

import (
	"bytes"
	"regexp"
	"strings"
)

var (
	assignRe     = regexp.MustCompile(`(?s)^([\w\-\.\[\]()]+)\s*=\s*(.*?)\s*$`)
	captureRe    = regexp.MustCompile(`^(?:(\w[\w-]*)|"([^"]*)"|'([^']*)')\s*$`)
	counterRe    = regexp.MustCompile(`^[\w-]+$`)
	namedCycleRe = regexp.MustCompile(`(?s)^(` + quotedFragment + `)\s*:\s*(.*)$`)
	cycleArgRe   = regexp.MustCompile(`^\s*(` + quotedFragment + `)\s*$`)
)

// assignTag: {% assign name = value | filters %}
type assignTag struct {
	TagBase
	to   string
	from *Variable
}

func parseAssign(name, markup string, _ *Tokenizer, pc *ParseContext) (Tag, error) {
	m := assignRe.FindStringSubmatch(markup)
	if m == nil || m[2] == "" {
		return nil, pc.SyntaxError("errors.syntax.assign")
	}
	v, err := NewVariable(m[2], pc)
	if err != nil {
		return nil, err
	}
	return &assignTag{TagBase: NewTagBase(name, markup, pc), to: m[1], from: v}, nil
}

func (t *assignTag) Render(ctx *Context, _ *bytes.Buffer) error {
	val, err := t.from.Value(ctx)
	if err != nil {
		return err
	}
	ctx.Assign(t.to, val)
	if err := ctx.resourceLimits.IncrementAssignScore(assignScore(val)); err != nil {
		return ctx.limitError(err)
	}
	return nil
}

func (t *assignTag) Blank() bool { return true }

// captureTag: {% capture name %}...{% endcapture %}
type captureTag struct {
	BlockBase
	to   string
	body *BlockBody
}

func parseCapture(name, markup string, tokens *Tokenizer, pc *ParseContext) (Tag, error) {
	m := captureRe.FindStringSubmatch(markup)
	if m == nil {
		return nil, pc.SyntaxError("errors.syntax.capture")
	}
	t := &captureTag{BlockBase: NewBlockBase(name, markup, pc), to: m[1] + m[2] + m[3]}
	body, err := t.ParseSingleBody(tokens, pc)
	if err != nil {
		return nil, err
	}
	t.body = body
	return t, nil
}

func (t *captureTag) Render(ctx *Context, _ *bytes.Buffer) error {
	var buf bytes.Buffer
	if err := t.body.Render(ctx, &buf); err != nil {
		return err
	}
	s := buf.String()
	ctx.Assign(t.to, s)
	if err := ctx.resourceLimits.IncrementAssignScore(len(s)); err != nil {
		return ctx.limitError(err)
	}
	return nil
}

func (t *captureTag) Blank() bool { return true }

// counterTag implements increment and decrement. Counters live apart from
// assigned variables and start at zero.
type counterTag struct {
	TagBase
	variable string
	step     int
}

func parseIncrement(name, markup string, _ *Tokenizer, pc *ParseContext) (Tag, error) {
	if !counterRe.MatchString(markup) {
		return nil, pc.SyntaxError("errors.syntax.increment", "tag", name)
	}
	t := &counterTag{TagBase: NewTagBase(name, markup, pc), variable: markup, step: 1}
	if name == "decrement" {
		t.step = -1
	}
	return t, nil
}

func (t *counterTag) Render(ctx *Context, out *bytes.Buffer) error {
	counters := ctx.counters()
	n, _ := counters[t.variable].(int)
	if t.step < 0 {
		n--
		counters[t.variable] = n
		out.WriteString(ToString(n))
		return nil
	}
	counters[t.variable] = n + 1
	out.WriteString(ToString(n))
	return nil
}

// parseEcho: {% echo value | filters %} is an output in tag form, which makes
// it usable inside {% liquid %}.
func parseEcho(name, markup string, _ *Tokenizer, pc *ParseContext) (Tag, error) {
	v, err := NewVariable(markup, pc)
	if err != nil {
		return nil, err
	}
	return &echoTag{TagBase: NewTagBase(name, markup, pc), variable: v}, nil
}

type echoTag struct {
	TagBase
	variable *Variable
}

func (t *echoTag) Render(ctx *Context, out *bytes.Buffer) error {
	return t.variable.Render(ctx, out)
}

// cycleTag: {% cycle [group:] a, b, c %}
type cycleTag struct {
	TagBase
	group  Expression // nil for unnamed cycles
	key    string
	values []Expression
}

func parseCycle(name, markup string, _ *Tokenizer, pc *ParseContext) (Tag, error) {
	t := &cycleTag{TagBase: NewTagBase(name, markup, pc)}
	list := markup
	if m := namedCycleRe.FindStringSubmatch(markup); m != nil {
		group, err := ParseExpression(m[1], pc)
		if err != nil {
			return nil, err
		}
		t.group, list = group, m[2]
	} else if !quotedFragmentRe.MatchString(markup) {
		return nil, pc.SyntaxError("errors.syntax.cycle")
	}
	var keys []string
	for _, part := range strings.Split(list, ",") {
		m := cycleArgRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		e, err := ParseExpression(m[1], pc)
		if err != nil {
			return nil, err
		}
		t.values = append(t.values, e)
		keys = append(keys, m[1])
	}
	if len(t.values) == 0 {
		return nil, pc.SyntaxError("errors.syntax.cycle")
	}
	t.key = strings.Join(keys, ",")
	return t, nil
}

func (t *cycleTag) Render(ctx *Context, out *bytes.Buffer) error {
	key := t.key
	if t.group != nil {
		g, err := t.group.Evaluate(ctx)
		if err != nil {
			return err
		}
		key = ToString(g)
	}
	state := ctx.registers.state(registerCycle)
	i, _ := state[key].(int)
	i %= len(t.values)
	val, err := t.values[i].Evaluate(ctx)
	if err != nil {
		return err
	}
	out.WriteString(ToString(val))
	state[key] = (i + 1) % len(t.values)
	return nil
}
