package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/formtree/internal/cli"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <definition>",
	Short: "Validate a form definition and optional data",
	Long: `Builds the form, applies --data, waits for async validation and prints the
control tree. Exits with status 1 when the form is invalid.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFrom(cmd, args)
		opts.Output, _ = cmd.Flags().GetString("output")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		err := cli.RunCheck(ctx, opts, os.Stdout)
		switch {
		case errors.Is(err, cli.ErrInvalid):
			os.Exit(1)
		case err != nil:
			fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addDataFlags(checkCmd)
	checkCmd.Flags().StringP("output", "o", "text", "Output format (text, json, yaml, mermaid)")
}
