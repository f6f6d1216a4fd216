package liquid

import (
	"bytes"
	"regexp"
	"strings"
)

type branch struct {
	cond *Condition
	body *BlockBody
}

// ifTag implements if and unless. Only the first condition of unless is
// negated; elsif and else branches read as in if.
type ifTag struct {
	BlockBase
	branches []branch
	negate   bool
}

func parseIf(name, markup string, tokens *Tokenizer, pc *ParseContext) (Tag, error) {
	t := &ifTag{BlockBase: NewBlockBase(name, markup, pc), negate: name == "unless"}
	cond, err := parseIfCondition(markup, pc)
	if err != nil {
		return nil, err
	}
	for {
		body, delim, dmarkup, done, err := t.ParseBody(tokens, pc)
		if err != nil {
			return nil, err
		}
		t.branches = append(t.branches, branch{cond: cond, body: body})
		if done {
			return t, nil
		}
		switch delim {
		case "elsif":
			if cond, err = parseIfCondition(dmarkup, pc); err != nil {
				return nil, err
			}
		case "else":
			cond = elseCondition()
		default:
			return nil, t.UnknownTag(delim, pc)
		}
	}
}

func parseIfCondition(markup string, pc *ParseContext) (*Condition, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, pc.SyntaxError("errors.syntax.if")
	}
	return ParseLogical(markup, nil, pc)
}

func (t *ifTag) Render(ctx *Context, out *bytes.Buffer) error {
	for i, b := range t.branches {
		ok, err := b.cond.Test(ctx)
		if err != nil {
			return err
		}
		if i == 0 && t.negate {
			ok = !ok
		}
		if ok {
			return b.body.Render(ctx, out)
		}
	}
	return nil
}

var whenRe = regexp.MustCompile(`(?s)^\s*(` + quotedFragment + `)(?:(?:\s+or\s+|\s*,\s*)(.*))?$`)

// caseTag renders the body of every when clause whose value equals the
// subject, and the else body when no earlier clause matched.
type caseTag struct {
	BlockBase
	subject  Expression
	branches []branch // cond == nil marks else
}

func parseCase(name, markup string, tokens *Tokenizer, pc *ParseContext) (Tag, error) {
	if !quotedFragmentRe.MatchString(markup) {
		return nil, pc.SyntaxError("errors.syntax.case")
	}
	subject, err := ParseExpression(markup, pc)
	if err != nil {
		return nil, err
	}
	t := &caseTag{BlockBase: NewBlockBase(name, markup, pc), subject: subject}

	// Content before the first when is never rendered.
	_, delim, dmarkup, done, err := t.ParseBody(tokens, pc)
	for err == nil && !done {
		var conds []*Condition
		switch delim {
		case "when":
			if conds, err = t.whenConditions(dmarkup, pc); err != nil {
				return nil, err
			}
		case "else":
			if pc.strict() && strings.TrimSpace(dmarkup) != "" {
				return nil, pc.SyntaxError("errors.syntax.case_invalid_else")
			}
			conds = []*Condition{nil}
		default:
			return nil, t.UnknownTag(delim, pc)
		}
		var body *BlockBody
		body, delim, dmarkup, done, err = t.ParseBody(tokens, pc)
		if err != nil {
			return nil, err
		}
		for _, c := range conds {
			t.branches = append(t.branches, branch{cond: c, body: body})
		}
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (t *caseTag) whenConditions(markup string, pc *ParseContext) ([]*Condition, error) {
	var conds []*Condition
	rest := markup
	for rest != "" {
		m := whenRe.FindStringSubmatch(rest)
		if m == nil {
			return nil, pc.SyntaxError("errors.syntax.case_invalid_when")
		}
		value, err := ParseExpression(m[1], pc)
		if err != nil {
			return nil, err
		}
		conds = append(conds, NewCondition(t.subject, "==", value))
		rest = strings.TrimSpace(m[2])
	}
	if len(conds) == 0 {
		return nil, pc.SyntaxError("errors.syntax.case_invalid_when")
	}
	return conds, nil
}

func (t *caseTag) Render(ctx *Context, out *bytes.Buffer) error {
	matched := false
	for _, b := range t.branches {
		if b.cond == nil {
			if !matched {
				if err := b.body.Render(ctx, out); err != nil {
					return err
				}
			}
			continue
		}
		ok, err := b.cond.Test(ctx)
		if err != nil {
			return err
		}
		if ok {
			matched = true
			if err := b.body.Render(ctx, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// ifChangedTag outputs its body only when it differs from the previous
// rendering of any ifchanged tag.
type ifChangedTag struct {
	BlockBase
	body *BlockBody
}

func parseIfChanged(name, markup string, tokens *Tokenizer, pc *ParseContext) (Tag, error) {
	t := &ifChangedTag{BlockBase: NewBlockBase(name, markup, pc)}
	body, err := t.ParseSingleBody(tokens, pc)
	if err != nil {
		return nil, err
	}
	t.body = body
	return t, nil
}

func (t *ifChangedTag) Render(ctx *Context, out *bytes.Buffer) error {
	var buf bytes.Buffer
	if err := t.body.Render(ctx, &buf); err != nil {
		return err
	}
	s := buf.String()
	if prev, ok := ctx.registers.Get(registerIfChanged); ok && prev == s {
		return nil
	}
	ctx.registers.Set(registerIfChanged, s)
	out.WriteString(s)
	return nil
}
