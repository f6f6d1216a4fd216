package liquid

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds. Every *Error unwraps to exactly one of these so callers can
// use errors.Is without caring about the message.
var (
	ErrSyntax            = errors.New("liquid: syntax error")
	ErrArgument          = errors.New("liquid: argument error")
	ErrStackLevel        = errors.New("liquid: stack level too deep")
	ErrUndefinedVariable = errors.New("liquid: undefined variable")
	ErrUndefinedFilter   = errors.New("liquid: undefined filter")
	ErrResourceLimit     = errors.New("liquid: resource limits exceeded")
	ErrFileSystem        = errors.New("liquid: file system error")
	ErrDisabled          = errors.New("liquid: tag disabled")
	ErrInternal          = errors.New("liquid: internal error")
)

// Error is the error type produced by parsing and rendering.
type Error struct {
	Kind         error
	Message      string
	Line         int
	TemplateName string
	Cause        error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Kind == ErrSyntax {
		b.WriteString("Liquid syntax error")
	} else {
		b.WriteString("Liquid error")
	}
	switch {
	case e.TemplateName != "" && e.Line > 0:
		fmt.Fprintf(&b, " (%s line %d)", e.TemplateName, e.Line)
	case e.TemplateName != "":
		fmt.Fprintf(&b, " (%s)", e.TemplateName)
	case e.Line > 0:
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// SyntaxError builds a parse-time error.
func SyntaxError(format string, args ...any) *Error {
	return newError(ErrSyntax, format, args...)
}

// ArgumentError builds a render-time error meant for filters and tags that
// received values they cannot work with. Its message is shown to template
// authors.
func ArgumentError(format string, args ...any) *Error {
	return newError(ErrArgument, format, args...)
}

// isFatal reports whether err must abort the whole render instead of being
// rendered inline at the failing node.
func isFatal(err error) bool {
	return errors.Is(err, ErrResourceLimit) ||
		errors.Is(err, ErrStackLevel) ||
		errors.Is(err, ErrUndefinedVariable) ||
		errors.Is(err, ErrUndefinedFilter)
}

// asLiquidError converts err to *Error, hiding messages of foreign errors.
func asLiquidError(err error) *Error {
	var le *Error
	if errors.As(err, &le) {
		return le
	}
	return &Error{Kind: ErrInternal, Message: "internal", Cause: err}
}

// withPosition fills in line and template name when they are still unset.
func withPosition(err error, line int, templateName string) error {
	var le *Error
	if !errors.As(err, &le) {
		return err
	}
	if le.Line == 0 {
		le.Line = line
	}
	if le.TemplateName == "" {
		le.TemplateName = templateName
	}
	return le
}
