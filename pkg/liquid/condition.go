package liquid

import (
	"regexp"
	"strings"
)

// Condition is a comparison, optionally chained to another condition with
// "and" or "or". Chains evaluate left to right and short-circuit.
type Condition struct {
	Left     Expression
	Operator string // empty for a plain truthiness test
	Right    Expression

	relation string
	child    *Condition
	stricter bool
}

// NewCondition builds a single comparison.
func NewCondition(left Expression, op string, right Expression) *Condition {
	if op == "<>" {
		op = "!="
	}
	return &Condition{Left: left, Operator: op, Right: right}
}

// elseCondition always holds.
func elseCondition() *Condition {
	return &Condition{Left: &Literal{Value: true}}
}

// And chains c so that other is only tested when c holds.
func (c *Condition) And(other *Condition) { c.relation, c.child = "and", other }

// Or chains c so that other is only tested when c fails.
func (c *Condition) Or(other *Condition) { c.relation, c.child = "or", other }

// Test evaluates the whole chain.
func (c *Condition) Test(ctx *Context) (bool, error) {
	cond := c
	for {
		ok, err := cond.evaluateOne(ctx)
		if err != nil {
			return false, err
		}
		switch {
		case cond.relation == "or" && ok:
			return true, nil
		case cond.relation == "and" && !ok:
			return false, nil
		case cond.child == nil:
			return ok, nil
		}
		cond = cond.child
	}
}

// Evaluate lets a parenthesised condition appear where an expression is
// expected.
func (c *Condition) Evaluate(ctx *Context) (any, error) {
	return c.Test(ctx)
}

func (c *Condition) evaluateOne(ctx *Context) (bool, error) {
	left, err := c.Left.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	if c.Operator == "" {
		return IsTruthy(left), nil
	}
	right, err := c.Right.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	switch c.Operator {
	case "==":
		return valuesEqual(left, right), nil
	case "!=":
		return !valuesEqual(left, right), nil
	case "<", ">", "<=", ">=":
		cmp, ok := compareValues(left, right)
		if !ok {
			if c.stricter {
				return false, ArgumentError("%s", ctx.locale().T("errors.argument.comparison",
					"left", typeName(left), "right", typeName(right)))
			}
			return false, nil
		}
		switch c.Operator {
		case "<":
			return cmp < 0, nil
		case ">":
			return cmp > 0, nil
		case "<=":
			return cmp <= 0, nil
		}
		return cmp >= 0, nil
	case "contains":
		return contains(left, right), nil
	}
	return false, ArgumentError("%s", ctx.locale().T("errors.syntax.unknown_operator", "operator", c.Operator))
}

func contains(left, right any) bool {
	left, right = liquidize(left), liquidize(right)
	if left == nil || right == nil {
		return false
	}
	if s, ok := left.(string); ok {
		return strings.Contains(s, ToString(right))
	}
	if r, ok := left.(Range); ok {
		return r.Contains(right)
	}
	if items, ok := toSlice(left); ok {
		for _, item := range items {
			if valuesEqual(item, right) {
				return true
			}
		}
		return false
	}
	if m, ok := toMap(left); ok {
		_, found := m[ToString(right)]
		return found
	}
	return false
}

func typeName(v any) string {
	v = liquidize(v)
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "String"
	case bool:
		return "Boolean"
	case Range:
		return "Range"
	}
	if n, ok := toNumber(v); ok {
		if _, isFloat := n.(float64); isFloat {
			return "Float"
		}
		return "Integer"
	}
	if _, ok := toSlice(v); ok {
		return "Array"
	}
	if _, ok := toMap(v); ok {
		return "Hash"
	}
	return "Object"
}

// String renders the chain back to markup.
func (c *Condition) String() string {
	var b strings.Builder
	b.WriteString(exprString(c.Left))
	if c.Operator != "" {
		b.WriteString(" " + c.Operator + " " + exprString(c.Right))
	}
	if c.child != nil {
		b.WriteString(" " + c.relation + " " + c.child.String())
	}
	return b.String()
}

var laxComparisonRe = regexp.MustCompile(`^\s*(` + quotedFragment + `)\s*([=!<>a-z_]+)?\s*(` + quotedFragment + `)?`)

// ParseComparison parses "<lhs> <op> <rhs>" or a single operand.
func ParseComparison(markup string, pc *ParseContext) (*Condition, error) {
	c, err := strictComparison(markup, pc.locale())
	if err != nil {
		if pc.strict() {
			return nil, withPosition(err, pc.line, pc.templateName)
		}
		pc.warn(err, markup)
		if c, err = laxComparison(markup, pc); err != nil {
			return nil, err
		}
	}
	c.stricter = pc.errorMode == ErrorModeStricter
	return c, nil
}

func strictComparison(markup string, loc *Locale) (*Condition, error) {
	p, err := newExprParser(markup, loc)
	if err != nil {
		return nil, err
	}
	left, err := p.expression()
	if err != nil {
		return nil, err
	}
	op, ok := p.consumeOpt(TokenComparison)
	if !ok {
		return NewCondition(left, "", nil), p.done()
	}
	right, err := p.expression()
	if err != nil {
		return nil, err
	}
	return NewCondition(left, op, right), p.done()
}

func laxComparison(markup string, pc *ParseContext) (*Condition, error) {
	m := laxComparisonRe.FindStringSubmatch(markup)
	if m == nil {
		return nil, pc.SyntaxError("errors.syntax.if")
	}
	left, err := laxExpression(m[1])
	if err != nil {
		return nil, err
	}
	if m[2] == "" {
		return NewCondition(left, "", nil), nil
	}
	right, err := laxExpression(m[3])
	if err != nil {
		return nil, err
	}
	return NewCondition(left, m[2], right), nil
}

// ParseLogical parses operands joined by and/or. Parenthesised groups are
// atomic. The chain is built right to left, so "a and b or c" reads as
// "a and (b or c)". cache memoises operands by normalised text for the
// duration of one call tree; pass nil to start a fresh one.
func ParseLogical(markup string, cache map[string]*Condition, pc *ParseContext) (*Condition, error) {
	if cache == nil {
		cache = map[string]*Condition{}
	}
	operands, connectives, ok := splitLogical(markup)
	if !ok {
		return nil, pc.SyntaxError("errors.syntax.if")
	}
	last := len(operands) - 1
	cond, err := parseOperand(operands[last], cache, pc)
	if err != nil {
		return nil, err
	}
	for i := last - 1; i >= 0; i-- {
		next, err := parseOperand(operands[i], cache, pc)
		if err != nil {
			return nil, err
		}
		if connectives[i] == "and" {
			next.And(cond)
		} else {
			next.Or(cond)
		}
		cond = next
	}
	return cond, nil
}

// parseOperand returns a fresh copy of the cached condition so chaining never
// mutates a cache entry.
func parseOperand(text string, cache map[string]*Condition, pc *ParseContext) (*Condition, error) {
	key := strings.Join(strings.Fields(text), " ")
	if cached, ok := cache[key]; ok {
		c := *cached
		return &c, nil
	}
	var c *Condition
	if inner, ok := groupBody(key); ok && !isRangeGroup(inner) {
		group, err := ParseLogical(inner, cache, pc)
		if err != nil {
			return nil, err
		}
		c = NewCondition(group, "", nil)
	} else {
		var err error
		if c, err = ParseComparison(key, pc); err != nil {
			return nil, err
		}
	}
	cache[key] = c
	cp := *c
	return &cp, nil
}

// groupBody reports whether s is one parenthesised group and returns its
// contents.
func groupBody(s string) (string, bool) {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return "", false
	}
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return "", false
			}
		}
	}
	return strings.TrimSpace(s[1 : len(s)-1]), true
}

func isRangeGroup(inner string) bool {
	operands, _, ok := splitLogical(inner)
	if !ok || len(operands) != 1 {
		return false
	}
	depth := 0
	for i := 0; i+1 < len(inner); i++ {
		switch inner[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case '.':
			if depth == 0 && inner[i+1] == '.' {
				return true
			}
		}
	}
	return false
}

// splitLogical scans markup for whole-word and/or outside quotes, brackets
// and parentheses. ok is false when an operand is empty.
func splitLogical(markup string) (operands, connectives []string, ok bool) {
	var depth int
	var quote byte
	start := 0
	n := len(markup)
	for i := 0; i < n; i++ {
		c := markup[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			continue
		case c == '"' || c == '\'':
			quote = c
			continue
		case c == '(' || c == '[':
			depth++
			continue
		case c == ')' || c == ']':
			depth--
			continue
		}
		if depth != 0 || !isWordStart(markup, i) {
			continue
		}
		word := connectiveAt(markup, i)
		if word == "" {
			continue
		}
		operands = append(operands, strings.TrimSpace(markup[start:i]))
		connectives = append(connectives, word)
		i += len(word) - 1
		start = i + 1
	}
	operands = append(operands, strings.TrimSpace(markup[start:]))
	for _, op := range operands {
		if op == "" {
			return nil, nil, false
		}
	}
	return operands, connectives, true
}

func isWordStart(s string, i int) bool {
	return i == 0 || !(isWordChar(s[i-1]) || s[i-1] == '-' || s[i-1] == '.')
}

func connectiveAt(s string, i int) string {
	for _, word := range [...]string{"and", "or"} {
		end := i + len(word)
		if end > len(s) || !strings.EqualFold(s[i:end], word) {
			continue
		}
		if end < len(s) && (isWordChar(s[end]) || s[end] == '-' || s[end] == '?') {
			continue
		}
		return word
	}
	return ""
}
