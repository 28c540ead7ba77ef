package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/nodecalc/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts an empty graph and exposes its commands as a JSON API over HTTP, with
server-sent events on /events and Prometheus metrics on /metrics.
With --redis every observation is also published to Redis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := options(cmd)
		opts.Port, _ = cmd.Flags().GetInt("port")
		opts.RedisAddr, _ = cmd.Flags().GetString("redis")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Serve(ctx, opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address (host:port) to publish observations to")
}
