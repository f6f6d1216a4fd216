package liquid

import (
	"regexp"
	"strings"
)

// maxExpressionDepth bounds bracket and range nesting inside one expression.
const maxExpressionDepth = 100

// exprParser is a recursive descent parser over the tokens of one markup
// string. It is used by the strict error modes, and first by lax mode.
type exprParser struct {
	tokens []Token
	p      int
	depth  int
	loc    *Locale
}

func newExprParser(markup string, loc *Locale) (*exprParser, error) {
	tokens, err := lex(markup, loc)
	if err != nil {
		return nil, err
	}
	return &exprParser{tokens: tokens, loc: loc}, nil
}

func (p *exprParser) peek() Token { return p.tokens[p.p] }

func (p *exprParser) look(kind TokenKind, ahead int) bool {
	i := p.p + ahead
	if i >= len(p.tokens) {
		return false
	}
	return p.tokens[i].Kind == kind
}

func (p *exprParser) consume(kind TokenKind) (string, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return "", p.unexpected(kind.String(), tok)
	}
	p.p++
	return tok.Text, nil
}

func (p *exprParser) consumeOpt(kind TokenKind) (string, bool) {
	tok := p.peek()
	if tok.Kind != kind {
		return "", false
	}
	p.p++
	return tok.Text, true
}

// id consumes an identifier token with the given text.
func (p *exprParser) id(name string) bool {
	tok := p.peek()
	if tok.Kind != TokenID || tok.Text != name {
		return false
	}
	p.p++
	return true
}

func (p *exprParser) unexpected(expected string, tok Token) *Error {
	found := tok.Text
	if tok.Kind == TokenEOS {
		found = tok.Kind.String()
	}
	return SyntaxError("%s", p.loc.T("errors.syntax.unexpected_token", "expected", expected, "found", found))
}

// done requires the whole markup to have been consumed.
func (p *exprParser) done() error {
	_, err := p.consume(TokenEOS)
	return err
}

func (p *exprParser) expression() (Expression, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxExpressionDepth {
		return nil, SyntaxError("%s", p.loc.T("errors.syntax.nesting_too_deep"))
	}

	tok := p.peek()
	switch tok.Kind {
	case TokenID:
		if lit, ok := literals[tok.Text]; ok && !p.look(TokenDot, 1) && !p.look(TokenOpenSquare, 1) {
			p.p++
			return lit, nil
		}
		p.p++
		v := newVariableLookup(tok.Text)
		return v, p.variableLookups(v)
	case TokenOpenSquare:
		p.p++
		name, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenCloseSquare); err != nil {
			return nil, err
		}
		v := &VariableLookup{NameExpr: name}
		return v, p.variableLookups(v)
	case TokenString:
		p.p++
		return &Literal{Value: unquote(tok.Text)}, nil
	case TokenNumber:
		p.p++
		n, ok := parseNumber(tok.Text)
		if !ok {
			return nil, SyntaxError("%s", p.loc.T("errors.syntax.invalid_expression", "token", tok.Text))
		}
		return &Literal{Value: n}, nil
	case TokenOpenRound:
		p.p++
		from, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenDotDot); err != nil {
			return nil, err
		}
		to, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenCloseRound); err != nil {
			return nil, err
		}
		return newRange(from, to)
	}
	text := tok.Text
	if tok.Kind == TokenEOS {
		text = tok.Kind.String()
	}
	return nil, SyntaxError("%s", p.loc.T("errors.syntax.invalid_expression", "token", text))
}

func (p *exprParser) variableLookups(v *VariableLookup) error {
	for {
		if _, ok := p.consumeOpt(TokenOpenSquare); ok {
			key, err := p.expression()
			if err != nil {
				return err
			}
			if _, err := p.consume(TokenCloseSquare); err != nil {
				return err
			}
			v.addLookup(key, false)
			continue
		}
		if _, ok := p.consumeOpt(TokenDot); ok {
			name, err := p.consume(TokenID)
			if err != nil {
				return err
			}
			v.addLookup(&Literal{Value: name}, commands[name])
			continue
		}
		return nil
	}
}

// argument parses a positional or keyword (name: value) argument.
func (p *exprParser) argument() (string, Expression, error) {
	var keyword string
	if p.look(TokenID, 0) && p.look(TokenColon, 1) {
		keyword = p.peek().Text
		p.p += 2
	}
	e, err := p.expression()
	return keyword, e, err
}

func (p *exprParser) filters() ([]FilterCall, error) {
	var calls []FilterCall
	for {
		if _, ok := p.consumeOpt(TokenPipe); !ok {
			return calls, nil
		}
		name, err := p.consume(TokenID)
		if err != nil {
			return nil, err
		}
		fc := FilterCall{Name: name}
		if _, ok := p.consumeOpt(TokenColon); ok {
			for {
				kw, arg, err := p.argument()
				if err != nil {
					return nil, err
				}
				fc.add(kw, arg)
				if _, ok := p.consumeOpt(TokenComma); !ok {
					break
				}
			}
		}
		calls = append(calls, fc)
	}
}

// ParseExpression parses markup as a single expression. Strict modes report
// markup the token parser rejects; lax mode records a warning and retries
// with the tolerant scanner.
func ParseExpression(markup string, pc *ParseContext) (Expression, error) {
	e, err := strictExpression(markup, pc.locale())
	if err == nil {
		return e, nil
	}
	if pc.strict() {
		return nil, withPosition(err, pc.line, pc.templateName)
	}
	pc.warn(err, markup)
	return laxExpression(markup)
}

func strictExpression(markup string, loc *Locale) (Expression, error) {
	p, err := newExprParser(markup, loc)
	if err != nil {
		return nil, err
	}
	if p.look(TokenEOS, 0) {
		return &Literal{}, nil
	}
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	return e, p.done()
}

var laxRangeRe = regexp.MustCompile(`^\(\s*(\S+?)\s*\.\.\s*(\S+?)\s*\)$`)

func laxExpression(markup string) (Expression, error) {
	markup = strings.TrimSpace(markup)
	if lit, ok := literals[markup]; ok {
		return lit, nil
	}
	if len(markup) >= 2 && (markup[0] == '"' || markup[0] == '\'') && markup[len(markup)-1] == markup[0] {
		return &Literal{Value: markup[1 : len(markup)-1]}, nil
	}
	if n, ok := parseNumber(markup); ok {
		return &Literal{Value: n}, nil
	}
	if m := laxRangeRe.FindStringSubmatch(markup); m != nil {
		from, err := laxExpression(m[1])
		if err != nil {
			return nil, err
		}
		to, err := laxExpression(m[2])
		if err != nil {
			return nil, err
		}
		return newRange(from, to)
	}
	return laxVariableLookup(markup)
}

// laxVariableLookup splits markup into word and bracket segments, ignoring
// everything else.
func laxVariableLookup(markup string) (Expression, error) {
	parts := scanVariableParts(markup)
	if len(parts) == 0 {
		return &Literal{}, nil
	}
	v := &VariableLookup{}
	if first := parts[0]; first[0] == '[' {
		name, err := laxExpression(first[1 : len(first)-1])
		if err != nil {
			return nil, err
		}
		v.NameExpr = name
	} else {
		v.Name = first
	}
	for _, part := range parts[1:] {
		if part[0] == '[' {
			key, err := laxExpression(part[1 : len(part)-1])
			if err != nil {
				return nil, err
			}
			v.addLookup(key, false)
			continue
		}
		v.addLookup(&Literal{Value: part}, commands[part])
	}
	return v, nil
}

func scanVariableParts(markup string) []string {
	var parts []string
	n := len(markup)
	for i := 0; i < n; {
		c := markup[i]
		switch {
		case c == '[':
			depth, j := 0, i
			for ; j < n; j++ {
				if markup[j] == '[' {
					depth++
				} else if markup[j] == ']' {
					depth--
					if depth == 0 {
						break
					}
				}
			}
			if j >= n {
				i++
				continue
			}
			parts = append(parts, markup[i:j+1])
			i = j + 1
		case isWordChar(c) || c == '-':
			j := i
			for j < n && (isWordChar(markup[j]) || markup[j] == '-') {
				j++
			}
			if j < n && markup[j] == '?' {
				j++
			}
			parts = append(parts, markup[i:j])
			i = j
		default:
			i++
		}
	}
	return parts
}

const quotedFragment = `"[^"]*"|'[^']*'|(?:[^\s,\|'"]|"[^"]*"|'[^']*')+`

var (
	quotedFragmentRe     = regexp.MustCompile(quotedFragment)
	markupWithFragmentRe = regexp.MustCompile(`(?s)(` + quotedFragment + `)(.*)`)
	filterMarkupRe       = regexp.MustCompile(`(?s)\|\s*(.*)`)
	filterParserRe       = regexp.MustCompile(`(?:\s+|` + quotedFragment + `|,)+`)
	filterArgsRe         = regexp.MustCompile(`(?::|,)\s*((?:\w+\s*:\s*)?(?:` + quotedFragment + `))`)
	filterNameRe         = regexp.MustCompile(`\w+`)
	tagAttributeRe       = regexp.MustCompile(`(\w[\w-]*)\s*:\s*(` + quotedFragment + `)`)
	wholeAttributeRe     = regexp.MustCompile(`^(\w[\w-]*)\s*:\s*(` + quotedFragment + `)$`)
)

// parseVariableMarkup parses the inside of {{ }}: an expression followed by
// a filter chain.
func parseVariableMarkup(markup string, pc *ParseContext) (Expression, []FilterCall, error) {
	e, filters, err := strictVariableMarkup(markup, pc.locale())
	if err == nil {
		return e, filters, nil
	}
	if pc.strict() {
		return nil, nil, withPosition(err, pc.line, pc.templateName)
	}
	pc.warn(err, markup)
	return laxVariableMarkup(markup)
}

func strictVariableMarkup(markup string, loc *Locale) (Expression, []FilterCall, error) {
	p, err := newExprParser(markup, loc)
	if err != nil {
		return nil, nil, err
	}
	if p.look(TokenEOS, 0) {
		return &Literal{}, nil, nil
	}
	e, err := p.expression()
	if err != nil {
		return nil, nil, err
	}
	filters, err := p.filters()
	if err != nil {
		return nil, nil, err
	}
	return e, filters, p.done()
}

func laxVariableMarkup(markup string) (Expression, []FilterCall, error) {
	m := markupWithFragmentRe.FindStringSubmatch(markup)
	if m == nil {
		return &Literal{}, nil, nil
	}
	e, err := laxExpression(m[1])
	if err != nil {
		return nil, nil, err
	}
	fm := filterMarkupRe.FindStringSubmatch(m[2])
	if fm == nil {
		return e, nil, nil
	}
	var calls []FilterCall
	for _, f := range filterParserRe.FindAllString(fm[1], -1) {
		name := filterNameRe.FindString(f)
		if name == "" {
			continue
		}
		fc := FilterCall{Name: name}
		for _, am := range filterArgsRe.FindAllStringSubmatch(f, -1) {
			kw, arg, err := laxArgument(am[1])
			if err != nil {
				return nil, nil, err
			}
			fc.add(kw, arg)
		}
		calls = append(calls, fc)
	}
	return e, calls, nil
}

func laxArgument(s string) (string, Expression, error) {
	if m := wholeAttributeRe.FindStringSubmatch(s); m != nil {
		e, err := laxExpression(m[2])
		return m[1], e, err
	}
	e, err := laxExpression(s)
	return "", e, err
}

// parseAttributes reads name: value pairs that follow a tag's main markup,
// as used by include, for and tablerow.
func parseAttributes(markup string, pc *ParseContext) (map[string]Expression, error) {
	attrs := map[string]Expression{}
	for _, m := range tagAttributeRe.FindAllStringSubmatch(markup, -1) {
		e, err := ParseExpression(m[2], pc)
		if err != nil {
			return nil, err
		}
		attrs[m[1]] = e
	}
	return attrs, nil
}
