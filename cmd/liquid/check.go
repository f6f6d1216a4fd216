package main

import (
	"fmt"

	"github.com/neurodesk/liquid/pkg/liquid"
	"github.com/spf13/cobra"
)

var checkCmd = cobra.Command{
	Use:   "check [template...]",
	Short: "Parse templates and report syntax errors and warnings",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			tpl, err := parseOnly(cmd, path)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
				continue
			}
			partials := 0
			_ = liquid.Walk(liquid.VisitorFunc(func(n liquid.Node) error {
				if t, ok := n.(liquid.Tag); ok && (t.Name() == "include" || t.Name() == "render") {
					partials++
				}
				return nil
			}), tpl.Root())
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d warnings, %d partial references)\n", path, len(tpl.Warnings()), partials)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d templates failed to parse", failed, len(args))
		}
		return nil
	},
}

var treeCmd = cobra.Command{
	Use:   "tree [template]",
	Short: "Print the parsed node tree of a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := parseOnly(cmd, args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), liquid.Pretty(tpl))
		return err
	},
}
