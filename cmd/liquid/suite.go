package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/neurodesk/liquid/pkg/liquid"
	"github.com/neurodesk/liquid/pkg/resolver"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// suiteCase is one entry of a test suite file. A scalar entry is shorthand
// for a template that must render without error.
type suiteCase struct {
	Name        string            `yaml:"name"`
	Template    string            `yaml:"template"`
	File        string            `yaml:"file"`
	Data        map[string]any    `yaml:"data"`
	Partials    map[string]string `yaml:"partials"`
	ErrorMode   string            `yaml:"error_mode"`
	Strict      bool              `yaml:"strict"`
	Expect      *string           `yaml:"expect"`
	ExpectError string            `yaml:"expect_error"`

	resolvedName string `yaml:"-"`
}

var invalidNameChars = regexp.MustCompile(`[^a-z0-9-]+`)

func (c *suiteCase) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if strings.TrimSpace(value.Value) == "" {
			return fmt.Errorf("test template must not be empty")
		}
		c.Template = value.Value
		return nil
	case yaml.MappingNode:
		type alias suiteCase
		var tmp alias
		if err := value.Decode(&tmp); err != nil {
			return err
		}
		if tmp.Template == "" && tmp.File == "" {
			return fmt.Errorf("line %d: test needs a template or a file", value.Line)
		}
		if tmp.Template != "" && tmp.File != "" {
			return fmt.Errorf("line %d: test has both a template and a file", value.Line)
		}
		tmp.Name = strings.TrimSpace(tmp.Name)
		*c = suiteCase(tmp)
		return nil
	default:
		return fmt.Errorf("unsupported test entry type: %v", value.Kind)
	}
}

func deriveTestName(src string) string {
	src = strings.TrimSpace(src)
	if len(src) > 24 {
		src = src[:24]
	}
	name := strings.ToLower(src)
	name = invalidNameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "test"
	}
	return name
}

func (c *suiteCase) ensureResolvedName(counter map[string]int) {
	base := c.Name
	if base == "" && c.File != "" {
		base = strings.TrimSuffix(filepath.Base(c.File), filepath.Ext(c.File))
	}
	if base == "" {
		base = deriveTestName(c.Template)
	}
	base = strings.Trim(invalidNameChars.ReplaceAllString(strings.ToLower(base), "-"), "-")
	if base == "" {
		base = "test"
	}
	count := counter[base]
	if count > 0 {
		c.resolvedName = fmt.Sprintf("%s-%d", base, count+1)
	} else {
		c.resolvedName = base
	}
	counter[base] = count + 1
}

// loadSuite reads a suite file. File entries are resolved against the
// suite's directory.
func loadSuite(path string) ([]suiteCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cases []suiteCase
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cases); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding test definitions: %w", err)
	}

	counter := map[string]int{}
	for i := range cases {
		if cases[i].File != "" && !filepath.IsAbs(cases[i].File) {
			cases[i].File = filepath.Join(filepath.Dir(path), cases[i].File)
		}
		cases[i].ensureResolvedName(counter)
	}
	return cases, nil
}

func filterSuite(cases []suiteCase, selectors []string) []suiteCase {
	set := map[string]struct{}{}
	for _, s := range selectors {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			set[s] = struct{}{}
		}
	}
	if len(set) == 0 {
		return cases
	}
	var filtered []suiteCase
	for _, c := range cases {
		if _, ok := set[c.resolvedName]; ok {
			filtered = append(filtered, c)
			continue
		}
		if _, ok := set[strings.ToLower(c.Name)]; ok {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// run renders the case and compares the outcome with its expectations.
func (c *suiteCase) run(env *liquid.Environment, base []liquid.Option) error {
	src := c.Template
	if c.File != "" {
		b, err := os.ReadFile(c.File)
		if err != nil {
			return err
		}
		src = string(b)
	}

	parseOpts := []liquid.Option{liquid.WithTemplateName(c.resolvedName)}
	if c.ErrorMode != "" {
		mode, err := liquid.ParseErrorMode(c.ErrorMode)
		if err != nil {
			return err
		}
		parseOpts = append(parseOpts, liquid.WithErrorMode(mode))
	}
	renderOpts := append([]liquid.Option{}, base...)
	if len(c.Partials) > 0 {
		fs := resolver.Chain{liquid.MemoryFileSystem(c.Partials)}
		if env.FileSystem != nil {
			fs = append(fs, env.FileSystem)
		}
		renderOpts = append(renderOpts, liquid.WithRegisters(map[string]any{liquid.RegisterFileSystem: fs}))
	}

	var out string
	tpl, err := env.Parse(src, parseOpts...)
	if err == nil {
		if c.Strict {
			out, err = tpl.RenderStrict(c.Data, renderOpts...)
		} else {
			out, err = tpl.Render(c.Data, renderOpts...)
		}
	}

	switch {
	case c.ExpectError != "":
		if err == nil {
			return fmt.Errorf("expected error containing %q, rendered %q", c.ExpectError, out)
		}
		if !strings.Contains(err.Error(), c.ExpectError) {
			return fmt.Errorf("error %q does not contain %q", err.Error(), c.ExpectError)
		}
		return nil
	case err != nil:
		return err
	case c.Expect != nil && out != *c.Expect:
		return fmt.Errorf("got %q, want %q", out, *c.Expect)
	}
	return nil
}

var testCmd = cobra.Command{
	Use:   "test [suite.yaml] [selector ...]",
	Short: "Run template test cases defined in a YAML suite",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyFlags(cfg); err != nil {
			return err
		}
		env, closeEnv, err := cfg.Environment(slog.Default())
		if err != nil {
			return err
		}
		defer closeEnv()

		cases, err := loadSuite(args[0])
		if err != nil {
			return err
		}
		if len(cases) == 0 {
			return fmt.Errorf("no tests defined in %s", args[0])
		}
		selected := filterSuite(cases, args[1:])
		if len(selected) == 0 {
			return fmt.Errorf("no tests matched the provided selectors")
		}

		failed := 0
		for i := range selected {
			c := &selected[i]
			if err := c.run(env, cfg.RenderOptions()); err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", c.resolvedName, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", c.resolvedName)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d tests failed", failed, len(selected))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(&testCmd)
}
