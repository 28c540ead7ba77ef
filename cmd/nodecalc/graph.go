package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/nodecalc/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <script>",
	Short: "Export the graph visualization",
	Long:  `Replays a script and outputs a Mermaid diagram (graph LR) of the resulting graph with its values and verdict.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Graph(cmd.Context(), options(cmd), args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
