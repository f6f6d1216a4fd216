// Package config loads the YAML file that configures a template environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/neurodesk/liquid/pkg/liquid"
	"github.com/neurodesk/liquid/pkg/resolver"
	"github.com/neurodesk/liquid/pkg/starlark"
	"github.com/neurodesk/liquid/pkg/validator"
	"gopkg.in/yaml.v3"
)

// Templates selects where partials come from. Sources are tried in the
// order SQLite, Dir, URL.
type Templates struct {
	Dir      string `yaml:"dir,omitempty"`
	Pattern  string `yaml:"pattern,omitempty"`
	URL      string `yaml:"url,omitempty"`
	CacheDir string `yaml:"cache_dir,omitempty"`
	SQLite   string `yaml:"sqlite,omitempty"`
}

type Config struct {
	ErrorMode        string         `yaml:"error_mode"`
	StrictVariables  bool           `yaml:"strict_variables"`
	StrictFilters    bool           `yaml:"strict_filters"`
	MaxDepth         int            `yaml:"max_depth"`
	ResourceLimits   liquid.Limits  `yaml:"resource_limits"`
	Templates        Templates      `yaml:"templates"`
	FilterScripts    []string       `yaml:"filter_scripts,omitempty"`
	StarlarkMaxSteps uint64         `yaml:"starlark_max_steps,omitempty"`
	Locale           string         `yaml:"locale,omitempty"`
	Globals          map[string]any `yaml:"globals,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		ErrorMode:        "lax",
		MaxDepth:         liquid.DefaultMaxDepth,
		Templates:        Templates{Pattern: resolver.DefaultPattern},
		StarlarkMaxSteps: starlark.DefaultMaxSteps,
	}
}

// Load reads a config file. Relative paths inside it are resolved against
// the file's directory.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decoding config file: %w", err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) resolvePaths(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Templates.Dir = abs(c.Templates.Dir)
	c.Templates.CacheDir = abs(c.Templates.CacheDir)
	c.Templates.SQLite = abs(c.Templates.SQLite)
	c.Locale = abs(c.Locale)
	for i, s := range c.FilterScripts {
		c.FilterScripts[i] = abs(s)
	}
}

func (c *Config) Validate() error {
	return validator.All(
		validator.MatchesAllowed(c.ErrorMode, []string{"lax", "warn", "strict", "stricter", "rigid"}, "error_mode"),
		validator.NotNegative(c.MaxDepth, "max_depth"),
		validator.NotNegative(c.ResourceLimits.RenderScore, "resource_limits.render_score"),
		validator.NotNegative(c.ResourceLimits.AssignScore, "resource_limits.assign_score"),
		validator.NotNegative(c.ResourceLimits.LoopIterations, "resource_limits.loop_iterations"),
		validator.Pattern(c.Templates.Pattern, "templates.pattern"),
		validator.HTTPURL(c.Templates.URL, "templates.url"),
		validator.Map(c.FilterScripts, validator.NotEmpty, "filter_scripts"),
		validator.NoDuplicates(c.FilterScripts, "filter_scripts"),
	)
}

// RenderOptions returns the per-render options the config implies.
func (c *Config) RenderOptions() []liquid.Option {
	var opts []liquid.Option
	if c.StrictVariables {
		opts = append(opts, liquid.WithStrictVariables())
	}
	if c.StrictFilters {
		opts = append(opts, liquid.WithStrictFilters())
	}
	if len(c.Globals) > 0 {
		opts = append(opts, liquid.WithStaticEnvironment(c.Globals))
	}
	return opts
}

// Environment builds a template environment from the config. The returned
// close function releases the template database, if one was opened.
func (c *Config) Environment(logger *slog.Logger) (*liquid.Environment, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	mode, err := liquid.ParseErrorMode(c.ErrorMode)
	if err != nil {
		return nil, nil, err
	}
	env := liquid.NewEnvironment()
	env.ErrorMode = mode
	env.Logger = logger
	env.Limits = c.ResourceLimits
	if c.MaxDepth > 0 {
		env.MaxDepth = c.MaxDepth
	}

	if c.Locale != "" {
		f, err := os.Open(c.Locale)
		if err != nil {
			return nil, nil, fmt.Errorf("opening locale: %w", err)
		}
		loc, err := liquid.LoadLocale(f)
		f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("loading locale %s: %w", c.Locale, err)
		}
		env.Locale = liquid.DefaultLocale().Merge(loc)
	}

	for _, script := range c.FilterScripts {
		src, err := os.ReadFile(script)
		if err != nil {
			return nil, nil, fmt.Errorf("reading filter script: %w", err)
		}
		filters, err := starlark.LoadFilters(script, src,
			starlark.WithMaxSteps(c.StarlarkMaxSteps), starlark.WithLogger(logger))
		if err != nil {
			return nil, nil, fmt.Errorf("loading filter script %s: %w", script, err)
		}
		env.RegisterFilters(filters)
		logger.Debug("filter script loaded", "path", script, "filters", len(filters))
	}

	closer := func() error { return nil }
	var chain resolver.Chain
	if c.Templates.SQLite != "" {
		db, err := resolver.OpenSQL(c.Templates.SQLite)
		if err != nil {
			return nil, nil, fmt.Errorf("opening template database: %w", err)
		}
		chain = append(chain, db)
		closer = db.Close
	}
	if c.Templates.Dir != "" {
		chain = append(chain, &resolver.Local{Root: c.Templates.Dir, Pattern: c.Templates.Pattern})
	}
	if c.Templates.URL != "" {
		h := resolver.NewHTTP(c.Templates.URL, c.Templates.CacheDir)
		h.Pattern = c.Templates.Pattern
		h.Cache.Logger = logger
		chain = append(chain, h)
	}
	switch len(chain) {
	case 0:
	case 1:
		env.FileSystem = chain[0]
	default:
		env.FileSystem = chain
	}
	return env, closer, nil
}

// ErrNoConfig is returned by Find when no config file exists.
var ErrNoConfig = errors.New("no config file found")

// Find returns the first of the candidate paths that exists.
func Find(candidates ...string) (string, error) {
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", ErrNoConfig
}
