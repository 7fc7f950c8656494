package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/ripple/internal/presentation/graph"
	"github.com/aretw0/ripple/pkg/domain"
	"github.com/aretw0/ripple/pkg/dsl"
	store "github.com/aretw0/ripple/pkg/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <fixture>",
	Short: "Export a graph fixture",
	Long: `Loads a graph fixture and prints it as a Mermaid diagram (graph LR), as the
node/edge JSON served by the HTTP API, or as a normalized YAML fixture keyed by
node ID.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		fx, err := dsl.LoadFile(args[0])
		if err != nil {
			return err
		}
		g := store.New()
		ids, err := fx.Apply(g)
		if err != nil {
			return err
		}
		view := g.View()
		out := cmd.OutOrStdout()

		switch format {
		case "mermaid":
			var overlay *domain.Frame
			if start, ok := ids[fx.Start]; ok {
				overlay = &domain.Frame{Start: start}
			}
			fmt.Fprint(out, graph.GenerateMermaid(view, overlay))
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		case "yaml":
			normalized := dsl.FromView(fx.Name, view)
			normalized.Start = ids[fx.Start]
			data, err := normalized.YAML()
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		default:
			return fmt.Errorf("unknown format %q (supported: mermaid, json, yaml)", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid, json or yaml")
}
