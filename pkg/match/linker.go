package match

import (
	"context"
	"sort"

	"github.com/emberdata/powermerge/internal/geo"
	"github.com/emberdata/powermerge/pkg/config"
	"github.com/emberdata/powermerge/pkg/errors"
	"github.com/emberdata/powermerge/pkg/logging"
	"github.com/emberdata/powermerge/pkg/plants"
)

// Group is one connected component of linked records, spanning at least two
// records from different sources.
type Group struct {
	Members plants.Table
}

// SourceCount returns the number of distinct sources in the group.
func (g *Group) SourceCount() int {
	seen := make(map[string]struct{}, len(g.Members))
	for i := range g.Members {
		seen[g.Members[i].Source] = struct{}{}
	}
	return len(seen)
}

// Linker generates candidate pairs, scores them and folds links into match
// groups. A Linker works on one table at a time; callers typically feed it
// one country partition per call.
type Linker struct {
	cfg    *config.Config
	scorer *Scorer
}

// NewLinker creates a Linker.
func NewLinker(cfg *config.Config) *Linker {
	return &Linker{cfg: cfg, scorer: NewScorer(cfg.Matching)}
}

// Run links the table and returns the match groups plus the records that
// ended up in no group. The input table is expected to be sorted; groups
// and singles come back in deterministic order.
func (l *Linker) Run(ctx context.Context, table plants.Table) ([]Group, plants.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, errors.ErrCanceled
	}

	uf := newUnionFind(len(table))
	pairs := 0
	for _, bucket := range l.candidateBuckets(table) {
		for x := 0; x < len(bucket); x++ {
			for y := x + 1; y < len(bucket); y++ {
				i, j := bucket[x], bucket[y]
				a, b := &table[i], &table[j]
				// Within-source duplicates are aggregation's
				// problem, not linkage's.
				if a.Source == b.Source {
					continue
				}
				pairs++
				if l.scorer.Matches(a, b) {
					uf.union(i, j)
				}
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.ErrCanceled
		}
	}

	var groups []Group
	var singles plants.Table
	for _, comp := range uf.components() {
		if len(comp) == 1 {
			singles = append(singles, table[comp[0]])
			continue
		}
		members := make(plants.Table, 0, len(comp))
		for _, i := range comp {
			members = append(members, table[i])
		}
		members.Sort()
		groups = append(groups, Group{Members: members})
	}

	logging.Ctx(logging.WithStage(ctx, "match")).Debug().
		Int("records", len(table)).
		Int("pairs_scored", pairs).
		Int("groups", len(groups)).
		Int("singles", len(singles)).
		Msg("linkage complete")
	return groups, singles, nil
}

// candidateBuckets yields index buckets whose members may be compared.
// With SameCountryOnly set, records bucket by country; with spatial
// bucketing enabled, located records additionally bucket by coarse
// geographic cell and are compared against the 8-neighborhood, while
// unlocated records stay partition-wide and compare against every located
// cell. The flag only controls candidate generation cost; the country veto
// in the scorer holds either way.
func (l *Linker) candidateBuckets(table plants.Table) [][]int {
	byCountry := make(map[string][]int)
	for i := range table {
		key := ""
		if l.cfg.Matching.SameCountryOnly {
			key = table[i].Country
		}
		byCountry[key] = append(byCountry[key], i)
	}
	countries := make([]string, 0, len(byCountry))
	for c := range byCountry {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	cellDeg := l.cfg.Matching.GeoBucketDeg
	var buckets [][]int
	for _, country := range countries {
		idxs := byCountry[country]
		if cellDeg <= 0 || len(idxs) < 2 {
			buckets = append(buckets, idxs)
			continue
		}

		cells := make(map[geo.Cell][]int)
		var unlocated []int
		for _, i := range idxs {
			r := &table[i]
			if !r.HasCoords() {
				unlocated = append(unlocated, i)
				continue
			}
			cell := geo.CellOf(*r.Lat, *r.Lon, cellDeg)
			cells[cell] = append(cells[cell], i)
		}

		for _, cell := range sortedCells(cells) {
			bucket := append([]int(nil), cells[cell]...)
			// Pull in neighbors with a strictly greater cell so
			// every adjacent pair is scored exactly once.
			for _, n := range cell.Neighborhood() {
				if n == cell || !cellLess(cell, n) {
					continue
				}
				bucket = append(bucket, cells[n]...)
			}
			bucket = append(bucket, unlocated...)
			if len(bucket) > 1 {
				buckets = append(buckets, bucket)
			}
		}
		if len(cells) == 0 && len(unlocated) > 1 {
			buckets = append(buckets, unlocated)
		}
	}
	return buckets
}

func sortedCells(cells map[geo.Cell][]int) []geo.Cell {
	out := make([]geo.Cell, 0, len(cells))
	for c := range cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return cellLess(out[i], out[j]) })
	return out
}

func cellLess(a, b geo.Cell) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}
