package powermerge

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/emberdata/powermerge/internal/tabular"
	"github.com/emberdata/powermerge/pkg/aggregate"
	"github.com/emberdata/powermerge/pkg/errors"
	"github.com/emberdata/powermerge/pkg/heuristics"
	"github.com/emberdata/powermerge/pkg/logging"
	"github.com/emberdata/powermerge/pkg/match"
	"github.com/emberdata/powermerge/pkg/merge"
	"github.com/emberdata/powermerge/pkg/plants"
	"github.com/emberdata/powermerge/pkg/standardize"
)

// Run executes the full pipeline over the given raw tables, keyed by source
// name. Every key must be a declared source. The result is deterministic for
// identical inputs and configuration regardless of concurrency.
func (p *Pipeline) Run(ctx context.Context, inputs map[string]*tabular.Table) (*Result, error) {
	ctx = logging.WithLogger(ctx, p.logger)
	log := logging.Ctx(ctx)

	// Each run starts with a clean provenance slate; Result.Provenance
	// must describe this run only.
	p.prov.Clear()

	sources := make([]string, 0, len(inputs))
	for name, table := range inputs {
		if _, ok := p.cfg.Source(name); !ok {
			return nil, errors.NewConfigError("sources", "undeclared source "+name, nil)
		}
		if table == nil {
			return nil, errors.NewConfigError("sources", "nil input table for "+name, nil)
		}
		sources = append(sources, name)
	}
	if len(sources) == 0 {
		return nil, errors.ErrNoData
	}
	sort.Strings(sources)

	result := &Result{Filled: map[string]int{}}

	// Stage 1+2: standardize and aggregate each source, concurrently.
	cleaned, diags, err := p.prepareSources(ctx, sources, inputs)
	if err != nil {
		return nil, err
	}
	result.Diagnostics = diags

	var all plants.Table
	for _, name := range sources {
		t := cleaned[name]
		result.Stats.PlantsIn += len(t)
		all = append(all, t...)
	}
	if len(all) == 0 {
		return nil, errors.ErrNoData
	}
	for _, d := range diags {
		if d.Stage == "standardize" {
			result.Stats.RowsIn += d.RowsIn
		}
	}

	// Stage 3+4: link and merge per country partition.
	merged, unmatched, err := p.linkAndMerge(ctx, all)
	if err != nil {
		return nil, err
	}
	result.Merged = merged
	result.Unmatched = unmatched

	// Stage 5: gap filling.
	filled, err := heuristics.New(p.cfg).Run(ctx, result.Merged)
	if err != nil {
		return nil, err
	}
	result.Filled = filled
	result.Provenance = p.prov.Map()

	result.Stats.Merged = len(result.Merged)
	result.Stats.Unmatched = len(result.Unmatched)
	for i := range result.Merged {
		result.Stats.TotalCapacityMW += result.Merged[i].CapacityMW
	}
	result.Stats.Countries = len(countrySet(result.Merged))

	log.Info().
		Int("rows_in", result.Stats.RowsIn).
		Int("plants_in", result.Stats.PlantsIn).
		Int("merged", result.Stats.Merged).
		Int("unmatched", result.Stats.Unmatched).
		Float64("capacity_mw", result.Stats.TotalCapacityMW).
		Msg("pipeline complete")
	return result, nil
}

// prepareSources standardizes and aggregates every input source with a
// bounded worker pool. Outputs are collected per source, never shared.
func (p *Pipeline) prepareSources(ctx context.Context, sources []string, inputs map[string]*tabular.Table) (map[string]plants.Table, []*plants.Diagnostics, error) {
	std := standardize.New(p.cfg, p.store)
	agg := aggregate.New(p.cfg)

	var mu sync.Mutex
	cleaned := make(map[string]plants.Table, len(sources))
	diags := make([]*plants.Diagnostics, 0, 2*len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, name := range sources {
		name := name
		g.Go(func() error {
			table, sd, err := std.Run(gctx, name, inputs[name])
			if err != nil {
				return errors.NewSourceError(name, "standardize", err)
			}
			table, ad, err := agg.Run(gctx, name, table)
			if err != nil {
				return errors.NewSourceError(name, "aggregate", err)
			}
			mu.Lock()
			cleaned[name] = table
			diags = append(diags, sd, ad)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Source != diags[j].Source {
			return diags[i].Source < diags[j].Source
		}
		return diags[i].Stage > diags[j].Stage
	})
	return cleaned, diags, nil
}

// linkAndMerge partitions the table by country and runs linkage and merge on
// each partition with a bounded worker pool. Sources outside the matching
// list bypass linkage and go straight to the merger as singles.
func (p *Pipeline) linkAndMerge(ctx context.Context, all plants.Table) (plants.MergedTable, []merge.Unmatched, error) {
	var matchable, bypass plants.Table
	for i := range all {
		if p.isMatchingSource(all[i].Source) {
			matchable = append(matchable, all[i])
		} else {
			bypass = append(bypass, all[i])
		}
	}

	linker := match.NewLinker(p.cfg)
	merger := merge.New(p.cfg, p.prov)

	// Country partitions are only safe when candidate generation is
	// country-restricted; otherwise the linker sees one partition.
	parts := map[string]plants.Table{"": matchable}
	if p.cfg.Matching.SameCountryOnly {
		parts = matchable.ByCountry()
	}
	countries := make([]string, 0, len(parts))
	for c := range parts {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	groupsByCountry := make([][]match.Group, len(countries))
	singlesByCountry := make([]plants.Table, len(countries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, country := range countries {
		i, country := i, country
		g.Go(func() error {
			cctx := gctx
			if country != "" {
				cctx = logging.WithCountry(gctx, country)
			}
			part := parts[country]
			part.Sort()
			groups, singles, err := linker.Run(cctx, part)
			if err != nil {
				return err
			}
			groupsByCountry[i] = groups
			singlesByCountry[i] = singles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var groups []match.Group
	var singles plants.Table
	for i := range countries {
		groups = append(groups, groupsByCountry[i]...)
		singles = append(singles, singlesByCountry[i]...)
	}
	singles = append(singles, bypass...)
	singles.Sort()

	return merger.Run(ctx, groups, singles)
}

// isMatchingSource treats an empty matching list as all sources matching.
func (p *Pipeline) isMatchingSource(name string) bool {
	if len(p.cfg.MatchingSources) == 0 {
		return true
	}
	return p.cfg.IsMatchingSource(name)
}

func countrySet(table plants.MergedTable) map[string]struct{} {
	out := make(map[string]struct{})
	for i := range table {
		out[table[i].Country] = struct{}{}
	}
	return out
}
