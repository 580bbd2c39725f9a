package main

import (
	"fmt"
	"net"
	"os"

	"github.com/aretw0/formtree/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <definition>",
	Short: "Serve a form over HTTP",
	Long: `Builds the form and exposes it as a JSON API with an SSE event stream.
Prometheus metrics are served at /metrics.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFrom(cmd, args)
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetString("port")

		l, err := net.Listen("tcp", net.JoinHostPort(host, port))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listening: %v\n", err)
			os.Exit(1)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		if err := cli.Serve(ctx, opts, l, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addDataFlags(serveCmd)
	serveCmd.Flags().String("host", "", "Interface to listen on")
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
