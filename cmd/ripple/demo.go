package main

import (
	"github.com/aretw0/ripple/internal/cli"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo <fixture>",
	Short: "Animate a traversal of a graph fixture in the terminal",
	Long: `Loads a YAML or JSON graph fixture and animates a breadth-first traversal,
printing every frame. On a terminal frames are styled with glamour; otherwise
raw markdown is printed. With --watch the fixture is reloaded on every save.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		start, _ := cmd.Flags().GetString("start")
		watch, _ := cmd.Flags().GetBool("watch")
		plain, _ := cmd.Flags().GetBool("plain")
		style, _ := cmd.Flags().GetString("style")
		mermaid, _ := cmd.Flags().GetBool("mermaid")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.RunDemo(sigCtx, cli.DemoOptions{
			FixturePath: args[0],
			Start:       start,
			Watch:       watch,
			Period:      cfg.Animation.StepPeriod,
			SubDelay:    cfg.Animation.SubDelay,
			Style:       style,
			Plain:       plain,
			Mermaid:     mermaid,
			Out:         cmd.OutOrStdout(),
			Logger:      logger,
		})
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().String("start", "", "Start node label or ID (defaults to the fixture's start)")
	demoCmd.Flags().BoolP("watch", "w", false, "Reload and restart whenever the fixture changes")
	demoCmd.Flags().Bool("plain", false, "Print raw markdown even on a terminal")
	demoCmd.Flags().String("style", "auto", "Glamour style: auto, dark, light or notty")
	demoCmd.Flags().Bool("mermaid", false, "Print a Mermaid diagram when the traversal completes")
	demoCmd.Flags().Duration("step-period", 0, "Time between traversal steps")
	demoCmd.Flags().Duration("sub-delay", 0, "Delay between a visit and its expansion")
}
