package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emberdata/powermerge/pkg/config"
)

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the sources declared in the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagConfig == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tRELIABILITY\tMATCHING\tFULLY INCLUDED\tFLAGS")
			for _, src := range cfg.Sources {
				var flags []string
				if src.PreAggregated {
					flags = append(flags, "pre-aggregated")
				}
				if src.GrossCapacity {
					flags = append(flags, "gross")
				}
				fmt.Fprintf(w, "%s\t%d\t%v\t%v\t%s\n",
					src.Name, src.Reliability,
					cfg.IsMatchingSource(src.Name),
					cfg.IsFullyIncluded(src.Name),
					strings.Join(flags, ","))
			}
			return w.Flush()
		},
	}
}
