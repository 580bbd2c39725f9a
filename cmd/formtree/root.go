package main

import (
	"fmt"
	"os"

	"github.com/aretw0/formtree/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "formtree",
	Short: "formtree builds and validates reactive form trees",
	Long: `formtree loads form definitions (YAML or JSON), fills them with data,
runs their sync and async validators and reports the resulting tree.`,
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
	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flags.Bool("no-color", false, "Disable coloured output")
	flags.Duration("timeout", cli.DefaultTimeout, "How long to wait for async validation")
	flags.String("redis", "", "Redis address enabling the unique/member validators")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database")
	flags.String("redis-prefix", "", "Key prefix for Redis sets")
}

// optionsFrom reads the shared flags; the definition is the first argument.
func optionsFrom(cmd *cobra.Command, args []string) cli.Options {
	flags := cmd.Flags()
	opts := cli.Options{DefinitionPath: args[0]}
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.NoColor, _ = flags.GetBool("no-color")
	opts.Timeout, _ = flags.GetDuration("timeout")
	opts.RedisAddr, _ = flags.GetString("redis")
	opts.RedisPassword, _ = flags.GetString("redis-password")
	opts.RedisDB, _ = flags.GetInt("redis-db")
	opts.RedisPrefix, _ = flags.GetString("redis-prefix")
	if flags.Lookup("data") != nil {
		opts.DataPath, _ = flags.GetString("data")
		opts.Replace, _ = flags.GetBool("replace")
	}
	return opts
}

// addDataFlags registers the flags of commands that accept a data document.
func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("data", "d", "", "YAML/JSON value document applied to the form")
	cmd.Flags().Bool("replace", false, "Apply --data with SetValue instead of PatchValue")
}
