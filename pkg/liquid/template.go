package liquid

import (
	"bytes"
	"errors"
)

// Template is a parsed template. It is immutable and may be rendered by any
// number of goroutines at once, each with its own Context.
type Template struct {
	root      *Document
	env       *Environment
	name      string
	errorMode ErrorMode
	warnings  []error
}

// Parse parses src with the default environment.
func Parse(src string, opts ...Option) (*Template, error) {
	return DefaultEnvironment().Parse(src, opts...)
}

// Root returns the document node.
func (t *Template) Root() *Document { return t.root }

// Name is the template name given at parse time.
func (t *Template) Name() string { return t.name }

// Warnings returns the syntax errors lax parsing recovered from.
func (t *Template) Warnings() []error { return t.warnings }

// NewContext builds a fresh render context for data.
func (t *Template) NewContext(data map[string]any, opts ...Option) *Context {
	o := buildOptions(opts)
	if o.errorMode == nil {
		o.errorMode = &t.errorMode
	}
	if o.templateName == "" {
		o.templateName = t.name
	}
	return newContext(t.env, data, o)
}

// Render renders the template. Recoverable errors appear inline in the
// output; fatal ones (resource limits, nesting depth, strict variables and
// filters) abort with no output.
func (t *Template) Render(data map[string]any, opts ...Option) (string, error) {
	return t.RenderContext(t.NewContext(data, opts...))
}

// RenderStrict renders like Render but aborts on the first error of any kind.
func (t *Template) RenderStrict(data map[string]any, opts ...Option) (string, error) {
	ctx := t.NewContext(data, opts...)
	ctx.strictErrors = true
	return t.RenderContext(ctx)
}

// RenderContext renders with a caller-built context, which then exposes the
// recovered errors through Errors.
func (t *Template) RenderContext(ctx *Context) (string, error) {
	var out bytes.Buffer
	if err := t.root.Render(ctx, &out); err != nil {
		var le *Error
		if errors.As(err, &le) && le.TemplateName == "" {
			le.TemplateName = t.name
		}
		return "", err
	}
	// A break or continue outside any loop ends the render quietly.
	ctx.PopInterrupt()
	return out.String(), nil
}

// renderPartial renders t into out as part of an enclosing render.
func (t *Template) renderPartial(ctx *Context, out *bytes.Buffer) error {
	return t.root.Render(ctx, out)
}
