package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emberdata/powermerge"
	"github.com/emberdata/powermerge/internal/tabular"
	"github.com/emberdata/powermerge/pkg/logging"
)

func newRunCmd() *cobra.Command {
	var (
		inputs      []string
		output      string
		unmatched   string
		provenance  string
		cacheDir    string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the merge pipeline over per-source CSV tables",
		Long: `Run reads one CSV table per source, given as SOURCE=path pairs, merges
them and writes the deduplicated plant table as CSV.`,
		Example: `  powermerge run -c config.yaml \
      --input OPSD=data/opsd.csv --input GEO=data/geo.csv \
      --output merged.csv --unmatched unmatched.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagConfig == "" {
				return fmt.Errorf("--config is required")
			}
			if len(inputs) == 0 {
				return fmt.Errorf("at least one --input SOURCE=path is required")
			}

			tables := make(map[string]*tabular.Table, len(inputs))
			for _, spec := range inputs {
				source, path, ok := strings.Cut(spec, "=")
				if !ok {
					return fmt.Errorf("malformed --input %q, want SOURCE=path", spec)
				}
				t, err := tabular.ReadCSV(filepath.Clean(path))
				if err != nil {
					return err
				}
				tables[source] = t
			}

			opts := []powermerge.Option{powermerge.WithConfigFile(flagConfig)}
			if cacheDir != "" {
				opts = append(opts, powermerge.WithCacheDir(cacheDir))
			}
			if concurrency > 0 {
				opts = append(opts, powermerge.WithConcurrency(concurrency))
			}
			if provenance != "" {
				opts = append(opts, powermerge.WithProvenance())
			}

			p, err := powermerge.New(opts...)
			if err != nil {
				return err
			}
			res, err := p.Run(cmd.Context(), tables)
			if err != nil {
				return err
			}

			if err := tabular.WriteCSV(output, mergedCSV(res.Merged)); err != nil {
				return err
			}
			if unmatched != "" {
				if err := tabular.WriteCSV(unmatched, unmatchedCSV(res.Unmatched)); err != nil {
					return err
				}
			}
			if provenance != "" {
				if err := res.Provenance.WriteYAML(provenance); err != nil {
					return err
				}
			}

			logging.Default().Info().
				Str("output", output).
				Int("merged", res.Stats.Merged).
				Int("unmatched", res.Stats.Unmatched).
				Float64("capacity_mw", res.Stats.TotalCapacityMW).
				Msg("run complete")
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "per-source input as SOURCE=path (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "merged.csv", "merged table output path")
	cmd.Flags().StringVar(&unmatched, "unmatched", "", "unmatched report output path")
	cmd.Flags().StringVar(&provenance, "provenance", "", "field provenance output path (YAML)")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "directory for standardized snapshot caching")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "worker pool size (0 uses the configured value)")
	return cmd
}
