package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/nodecalc"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of nodecalc",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "nodecalc version %s\n", strings.TrimSpace(nodecalc.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
