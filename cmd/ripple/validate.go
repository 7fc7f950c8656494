package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/ripple/internal/validator"
	"github.com/aretw0/ripple/pkg/dsl"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <fixture>",
	Short: "Check a graph fixture for consistency",
	Long: `Checks the fixture for dangling references, then crawls it breadth-first from
the start node and reports nodes a traversal would never reach.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		strict, _ := cmd.Flags().GetBool("strict")
		out := cmd.OutOrStdout()

		fx, err := dsl.LoadFile(args[0])
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		report, err := validator.ValidateFixture(fx, start)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		for _, w := range report.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		if strict && !report.Complete() {
			return fmt.Errorf("validation failed: unreachable from '%s': %s",
				report.Start, strings.Join(report.Unreachable, ", "))
		}
		fmt.Fprintf(out, "Graph is valid! %d of %d nodes reachable from '%s'.\n",
			len(report.Reachable), len(fx.Nodes), report.Start)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("start", "", "Start label (defaults to the fixture's start)")
	validateCmd.Flags().Bool("strict", false, "Fail when any node is unreachable from start")
}
