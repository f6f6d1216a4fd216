package liquid

import (
	"fmt"
	"strings"
)

// ErrorMode selects how tolerant the parser is of malformed markup.
type ErrorMode int

const (
	// ErrorModeLax falls back to a tolerant scanner when markup does not
	// parse strictly, recording a warning.
	ErrorModeLax ErrorMode = iota
	// ErrorModeStrict rejects markup the strict parser cannot consume.
	ErrorModeStrict
	// ErrorModeStricter is strict parsing plus type-checked comparisons.
	ErrorModeStricter
)

func (m ErrorMode) String() string {
	switch m {
	case ErrorModeStrict:
		return "strict"
	case ErrorModeStricter:
		return "stricter"
	}
	return "lax"
}

// ParseErrorMode converts a configuration string into an ErrorMode.
func ParseErrorMode(s string) (ErrorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lax", "warn":
		return ErrorModeLax, nil
	case "strict":
		return ErrorModeStrict, nil
	case "stricter", "rigid":
		return ErrorModeStricter, nil
	}
	return ErrorModeLax, fmt.Errorf("unknown error mode %q", s)
}

// ParseContext carries state through a single parse: error mode, the current
// line, block nesting depth and whitespace trimming between tokens.
type ParseContext struct {
	env            *Environment
	errorMode      ErrorMode
	templateName   string
	line           int
	depth          int
	partial        bool
	trimWhitespace bool
	warnings       []error
}

func newParseContext(env *Environment, o *options) *ParseContext {
	pc := &ParseContext{env: env, errorMode: env.ErrorMode, line: 1}
	if o != nil {
		if o.errorMode != nil {
			pc.errorMode = *o.errorMode
		}
		pc.templateName = o.templateName
		pc.partial = o.partial
	}
	return pc
}

// Environment returns the environment whose tag and filter registries are in
// effect.
func (pc *ParseContext) Environment() *Environment { return pc.env }

// ErrorMode returns the active error mode.
func (pc *ParseContext) ErrorMode() ErrorMode { return pc.errorMode }

// Line returns the line of the token being parsed.
func (pc *ParseContext) Line() int { return pc.line }

// TemplateName is empty for top-level templates.
func (pc *ParseContext) TemplateName() string { return pc.templateName }

// Partial reports whether a partial (include/render target) is being parsed.
func (pc *ParseContext) Partial() bool { return pc.partial }

// Warnings returns the syntax problems the lax parser recovered from.
func (pc *ParseContext) Warnings() []error { return pc.warnings }

func (pc *ParseContext) strict() bool { return pc.errorMode != ErrorModeLax }

func (pc *ParseContext) locale() *Locale { return pc.env.Locale }

// SyntaxError builds a syntax error from a locale key, positioned at the
// current line.
func (pc *ParseContext) SyntaxError(key string, vars ...string) *Error {
	e := SyntaxError("%s", pc.env.Locale.T(key, vars...))
	e.Line = pc.line
	e.TemplateName = pc.templateName
	return e
}

func (pc *ParseContext) stackLevelError() *Error {
	return &Error{
		Kind:         ErrStackLevel,
		Message:      pc.env.Locale.T("errors.syntax.nesting_too_deep"),
		Line:         pc.line,
		TemplateName: pc.templateName,
	}
}

// warn records a strict parse failure that lax parsing recovered from.
func (pc *ParseContext) warn(err error, markup string) {
	pc.warnings = append(pc.warnings, withPosition(err, pc.line, pc.templateName))
	pc.env.Logger.Debug("lax parse fallback", "markup", markup, "line", pc.line, "error", err)
}

// nested runs fn one block level deeper.
func (pc *ParseContext) nested(fn func() error) error {
	pc.depth++
	defer func() { pc.depth-- }()
	if pc.depth > pc.env.MaxDepth {
		return pc.stackLevelError()
	}
	return fn()
}

// ParseExpression parses a single expression in the active error mode.
func (pc *ParseContext) ParseExpression(markup string) (Expression, error) {
	return ParseExpression(markup, pc)
}
