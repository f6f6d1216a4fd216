package liquid

// Option configures parsing or rendering.
type Option func(*options)

type options struct {
	errorMode          *ErrorMode
	templateName       string
	partial            bool
	registers          map[string]any
	sharedRegisters    *Registers
	filters            []Filters
	strictVariables    bool
	strictFilters      bool
	staticEnvironments []map[string]any
	limits             *Limits
	exceptionRenderer  func(*Error) (string, error)
	globalFilter       func(any) (any, error)
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithErrorMode overrides the environment's error mode.
func WithErrorMode(m ErrorMode) Option {
	return func(o *options) { o.errorMode = &m }
}

// WithTemplateName names the template in error messages.
func WithTemplateName(name string) Option {
	return func(o *options) { o.templateName = name }
}

// WithRegisters seeds the registers of a render. The map is not modified.
func WithRegisters(r map[string]any) Option {
	return func(o *options) { o.registers = r }
}

// WithSharedRegisters renders with r directly, so state such as cached
// partials carries over between renders.
func WithSharedRegisters(r *Registers) Option {
	return func(o *options) { o.sharedRegisters = r }
}

// WithFilters adds a filter module for one render. Later modules win.
func WithFilters(f Filters) Option {
	return func(o *options) { o.filters = append(o.filters, f) }
}

// WithStrictVariables makes undefined variables fatal.
func WithStrictVariables() Option {
	return func(o *options) { o.strictVariables = true }
}

// WithStrictFilters makes undefined filters fatal.
func WithStrictFilters() Option {
	return func(o *options) { o.strictFilters = true }
}

// WithStaticEnvironment adds read-only variables that isolated partials see
// as well.
func WithStaticEnvironment(env map[string]any) Option {
	return func(o *options) { o.staticEnvironments = append(o.staticEnvironments, env) }
}

// WithResourceLimits overrides the environment's render budget.
func WithResourceLimits(l Limits) Option {
	return func(o *options) { o.limits = &l }
}

// WithExceptionRenderer replaces the inline error text. Returning an error
// aborts the render.
func WithExceptionRenderer(fn func(*Error) (string, error)) Option {
	return func(o *options) { o.exceptionRenderer = fn }
}

// WithGlobalFilter applies fn to every output value after its filters.
func WithGlobalFilter(fn func(any) (any, error)) Option {
	return func(o *options) { o.globalFilter = fn }
}
