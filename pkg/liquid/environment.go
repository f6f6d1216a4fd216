package liquid

import (
	"log/slog"
	"sync"
)

// DefaultMaxDepth bounds block nesting and partial recursion.
const DefaultMaxDepth = 100

// Environment holds the tag and filter registries and the defaults used by
// Parse and Render. Registries are not synchronised: register everything
// before rendering concurrently.
type Environment struct {
	ErrorMode  ErrorMode
	FileSystem FileSystem
	MaxDepth   int
	Limits     Limits
	Logger     *slog.Logger
	Locale     *Locale

	tags    TagRegistry
	filters []Filters
}

// NewEnvironment returns an environment with the standard tags and the
// default filters.
func NewEnvironment() *Environment {
	return &Environment{
		ErrorMode: ErrorModeLax,
		MaxDepth:  DefaultMaxDepth,
		Logger:    slog.Default(),
		Locale:    DefaultLocale(),
		tags:      StandardTags(),
		filters:   []Filters{DefaultFilters()},
	}
}

var defaultEnvironment = sync.OnceValue(NewEnvironment)

// DefaultEnvironment is the shared environment used by the package-level
// Parse.
func DefaultEnvironment() *Environment { return defaultEnvironment() }

// RegisterTag adds or replaces a tag.
func (e *Environment) RegisterTag(name string, f TagFactory) { e.tags[name] = f }

// Tag returns the factory registered for name.
func (e *Environment) Tag(name string) (TagFactory, bool) {
	f, ok := e.tags[name]
	return f, ok
}

// RegisterFilters adds a filter module. On name collisions the module
// registered last wins.
func (e *Environment) RegisterFilters(f Filters) { e.filters = append(e.filters, f) }

// Filter returns the filter registered for name.
func (e *Environment) Filter(name string) (FilterFunc, bool) {
	for i := len(e.filters) - 1; i >= 0; i-- {
		if f, ok := e.filters[i][name]; ok {
			return f, true
		}
	}
	return nil, false
}

// Parse parses src into a reusable template.
func (e *Environment) Parse(src string, opts ...Option) (*Template, error) {
	return e.parse(src, buildOptions(opts))
}

func (e *Environment) parse(src string, o *options) (*Template, error) {
	pc := newParseContext(e, o)
	tokens, err := NewTokenizer(src, pc)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(tokens, pc)
	if err != nil {
		return nil, err
	}
	return &Template{
		root:      doc,
		env:       e,
		name:      o.templateName,
		errorMode: pc.errorMode,
		warnings:  pc.warnings,
	}, nil
}
