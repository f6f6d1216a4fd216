package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/neurodesk/liquid/pkg/config"
	"github.com/neurodesk/liquid/pkg/liquid"
	"github.com/spf13/cobra"
)

var (
	renderData      string
	renderOutput    string
	renderStrict    bool
	renderErrorMode string
)

// applyFlags folds command-line overrides into the loaded config.
func applyFlags(cfg *config.Config) error {
	if renderErrorMode != "" {
		cfg.ErrorMode = renderErrorMode
	}
	if renderStrict {
		cfg.StrictVariables = true
		cfg.StrictFilters = true
	}
	return cfg.Validate()
}

var renderCmd = cobra.Command{
	Use:   "render [template]",
	Short: "Render a template to stdout or a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyFlags(cfg); err != nil {
			return err
		}
		data, err := loadData(renderData)
		if err != nil {
			return err
		}
		tpl, closeEnv, err := parseFile(cmd, cfg, args[0])
		if err != nil {
			return err
		}
		defer closeEnv()

		var out string
		if renderStrict {
			out, err = tpl.RenderStrict(data, cfg.RenderOptions()...)
		} else {
			ctx := tpl.NewContext(data, cfg.RenderOptions()...)
			out, err = tpl.RenderContext(ctx)
			for _, e := range ctx.Errors() {
				slog.Warn("render error", "template", tpl.Name(), "error", e)
			}
		}
		if err != nil {
			return fmt.Errorf("rendering %s: %w", tpl.Name(), err)
		}

		if renderOutput == "" {
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		}
		if err := atomic.WriteFile(renderOutput, strings.NewReader(out)); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		slog.Debug("wrote output", "path", renderOutput, "bytes", len(out))
		return nil
	},
}

// parseOnly is shared by check and tree.
func parseOnly(cmd *cobra.Command, path string) (*liquid.Template, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cfg); err != nil {
		return nil, err
	}
	tpl, closeEnv, err := parseFile(cmd, cfg, path)
	if err != nil {
		return nil, err
	}
	return tpl, closeEnv()
}
