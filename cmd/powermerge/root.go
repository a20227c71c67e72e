package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/emberdata/powermerge/pkg/logging"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "powermerge",
		Short: "Merge power plant datasets into one deduplicated inventory",
		Long: `powermerge links records describing the same physical plant across
structurally inconsistent datasets and merges them into one canonical
table, settling field conflicts by source reliability.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Missing .env files are fine; explicit env wins anyway.
			_ = godotenv.Load()
			logging.Configure(&logging.Config{
				Level:  flagLogLevel,
				Format: flagLogFormat,
				Output: "stderr",
			})
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to the YAML configuration file")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "console", "log format (console, json)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newSourcesCmd())
	root.AddCommand(newValidateCmd())
	return root
}
