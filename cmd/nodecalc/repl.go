package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/nodecalc/internal/cli"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Edit a graph interactively",
	Long: `Starts an empty graph and reads edit commands from stdin, one per line.
Prompts and the banner are skipped when stdin is not a terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		opts.Headless = !term.IsTerminal(int(os.Stdin.Fd()))
		if cmd.Flags().Changed("headless") {
			opts.Headless, _ = cmd.Flags().GetBool("headless")
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.RunSession(ctx, opts, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().Bool("headless", false, "Run without banner or prompt (default when stdin is not a terminal)")

	// Make 'repl' the default if no command is provided.
	rootCmd.RunE = replCmd.RunE
	rootCmd.Flags().AddFlagSet(replCmd.Flags())
}
