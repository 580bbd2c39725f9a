package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/formtree/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <definition>",
	Short: "Export the control tree as a Mermaid diagram",
	Long:  `Builds the form and outputs a Mermaid diagram (graph TD) of its controls, styled by status.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := optionsFrom(cmd, args)
		opts.Output = "mermaid"

		// An invalid form is still a valid diagram.
		if err := cli.RunCheck(cmd.Context(), opts, os.Stdout); err != nil && !errors.Is(err, cli.ErrInvalid) {
			fmt.Fprintf(os.Stderr, "Error generating graph: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addDataFlags(graphCmd)
}
