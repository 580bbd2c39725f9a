package main

import (
	"os"
	"strings"

	"github.com/aretw0/formtree"
	"github.com/aretw0/formtree/internal/cli"
	"github.com/aretw0/formtree/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of formtree",
	Run: func(cmd *cobra.Command, args []string) {
		noColor, _ := cmd.Flags().GetBool("no-color")
		tui.PrintBanner(os.Stdout, strings.TrimSpace(formtree.Version), cli.ColorProfile(os.Stdout, noColor))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
