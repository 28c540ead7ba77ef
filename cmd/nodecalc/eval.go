package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/nodecalc/internal/cli"
)

var evalCmd = &cobra.Command{
	Use:   "eval <script>",
	Short: "Replay a YAML command script and print the result",
	Long: `Replays the edit commands of a YAML script against a fresh graph and prints
the output display. Failing expectations exit with an error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		watch, _ := cmd.Flags().GetBool("watch")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if watch {
			return cli.RunWatch(ctx, opts, args[0], cmd.OutOrStdout())
		}
		return cli.Eval(ctx, opts, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().BoolP("watch", "w", false, "Evaluate again whenever the script changes")
}
