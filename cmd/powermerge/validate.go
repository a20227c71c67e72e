package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emberdata/powermerge/pkg/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagConfig == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"configuration OK: %d sources, %d target countries, threshold %.2f\n",
				len(cfg.Sources), len(cfg.TargetCountries), cfg.Matching.Threshold)
			return nil
		},
	}
}
