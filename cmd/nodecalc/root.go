package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/nodecalc/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "nodecalc",
	Short: "nodecalc is a node-based integer calculator",
	Long: `nodecalc evaluates graphs of constant, sum and division nodes feeding a
single output. Graphs are edited interactively, replayed from YAML scripts or
driven over HTTP and MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Log every command and propagation pass to stderr")
	rootCmd.PersistentFlags().Bool("json", false, "Print JSON instead of text")
	rootCmd.PersistentFlags().String("name", "", "Graph name used in logs and Redis keys")
}

// options collects the persistent flags.
func options(cmd *cobra.Command) cli.Options {
	debug, _ := cmd.Flags().GetBool("debug")
	jsonMode, _ := cmd.Flags().GetBool("json")
	name, _ := cmd.Flags().GetString("name")
	return cli.Options{Debug: debug, JSON: jsonMode, Name: name}
}
