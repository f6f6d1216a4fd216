package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/neurodesk/liquid/pkg/config"
	"github.com/neurodesk/liquid/pkg/liquid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var rootConfig string
var verbose bool

var rootCmd = cobra.Command{
	Use:           "liquid",
	Short:         "Render and inspect Liquid templates",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	},
}

// loadConfig reads --config, or liquid.yaml in the working directory when
// the flag is not set. Without either the defaults apply.
func loadConfig() (*config.Config, error) {
	path := rootConfig
	if path == "" {
		found, err := config.Find("liquid.yaml", "liquid.yml")
		if err != nil {
			return config.Default(), nil
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	slog.Debug("config loaded", "path", path)
	return cfg, nil
}

// readTemplate reads a template file, or stdin for "-". The name is the
// file's base name without extension.
func readTemplate(path string, stdin io.Reader) (name, src string, err error) {
	var b []byte
	if path == "-" {
		b, err = io.ReadAll(stdin)
		name = "stdin"
	} else {
		b, err = os.ReadFile(path)
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err != nil {
		return "", "", err
	}
	return name, string(b), nil
}

// parseFile builds the environment from cfg and parses path with it.
func parseFile(cmd *cobra.Command, cfg *config.Config, path string) (*liquid.Template, func() error, error) {
	env, closeEnv, err := cfg.Environment(slog.Default())
	if err != nil {
		return nil, nil, err
	}
	name, src, err := readTemplate(path, cmd.InOrStdin())
	if err != nil {
		closeEnv()
		return nil, nil, err
	}
	tpl, err := env.Parse(src, liquid.WithTemplateName(name))
	if err != nil {
		closeEnv()
		return nil, nil, err
	}
	for _, w := range tpl.Warnings() {
		slog.Warn("template warning", "template", name, "warning", w)
	}
	return tpl, closeEnv, nil
}

// loadData decodes a YAML (or JSON) document into render variables.
func loadData(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var data map[string]any
	if err := yaml.NewDecoder(f).Decode(&data); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding data file: %w", err)
	}
	return data, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfig, "config", "", "Path to configuration file (default liquid.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	renderCmd.Flags().StringVarP(&renderData, "data", "d", "", "YAML or JSON file with template variables")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Write the result to a file instead of stdout")
	renderCmd.Flags().BoolVar(&renderStrict, "strict", false, "Fail on the first error instead of rendering it inline")
	renderCmd.Flags().StringVar(&renderErrorMode, "error-mode", "", "Override the configured error mode (lax, strict, stricter)")
	rootCmd.AddCommand(&renderCmd)

	checkCmd.Flags().StringVar(&renderErrorMode, "error-mode", "", "Override the configured error mode (lax, strict, stricter)")
	rootCmd.AddCommand(&checkCmd)
	rootCmd.AddCommand(&treeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}
