// Package aggregate collapses unit-level rows of one source into plant-level
// records. Units belong to the same plant when they share the grouping key
// (normalized name, country and optionally fueltype) and, when both sides
// carry coordinates, lie within the configured geographic tolerance.
package aggregate

import (
	"context"
	"sort"
	"strings"

	"github.com/emberdata/powermerge/internal/geo"
	"github.com/emberdata/powermerge/pkg/config"
	"github.com/emberdata/powermerge/pkg/errors"
	"github.com/emberdata/powermerge/pkg/logging"
	"github.com/emberdata/powermerge/pkg/plants"
)

// Aggregator folds unit rows into plant records for one source at a time.
type Aggregator struct {
	cfg *config.Config
}

// New creates an Aggregator.
func New(cfg *config.Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Run aggregates one standardized source table. Pre-aggregated sources pass
// through untouched apart from sorting.
func (a *Aggregator) Run(ctx context.Context, source string, table plants.Table) (plants.Table, *plants.Diagnostics, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, errors.ErrCanceled
	}

	diag := plants.NewDiagnostics(source, "aggregate")
	diag.RowsIn = len(table)

	src, ok := a.cfg.Source(source)
	if !ok {
		return nil, nil, errors.NewConfigError("sources", "undeclared source "+source, nil)
	}
	if src.PreAggregated {
		out := make(plants.Table, len(table))
		copy(out, table)
		out.Sort()
		diag.RowsOut = len(out)
		return out, diag, nil
	}

	groups := make(map[string]plants.Table)
	for i := range table {
		k := a.groupKey(&table[i])
		groups[k] = append(groups[k], table[i])
	}

	out := make(plants.Table, 0, len(groups))
	for _, members := range groups {
		for _, cluster := range a.splitByDistance(members) {
			out = append(out, reduce(cluster))
		}
	}

	out.Sort()
	diag.RowsOut = len(out)
	logging.Ctx(logging.WithStage(logging.WithSource(ctx, source), "aggregate")).
		Info().
		Int("units", diag.RowsIn).
		Int("plants", diag.RowsOut).
		Msg("units aggregated")
	return out, diag, nil
}

func (a *Aggregator) groupKey(r *plants.Record) string {
	var b strings.Builder
	b.WriteString(r.NormName)
	b.WriteByte('|')
	b.WriteString(r.Country)
	if a.cfg.Aggregation.GroupByFueltype {
		b.WriteByte('|')
		b.WriteString(r.Fueltype)
	}
	return b.String()
}

// splitByDistance partitions a name-collided group into geographic clusters.
// Records without coordinates join the first cluster; a zero tolerance keeps
// the group whole.
func (a *Aggregator) splitByDistance(members plants.Table) []plants.Table {
	tol := a.cfg.Aggregation.GeoToleranceKM
	if tol <= 0 || len(members) < 2 {
		return []plants.Table{members}
	}

	members = append(plants.Table(nil), members...)
	members.Sort()

	var clusters []plants.Table
next:
	for _, m := range members {
		if m.HasCoords() {
			for i, cluster := range clusters {
				for _, c := range cluster {
					if c.HasCoords() && geo.HaversineKM(*m.Lat, *m.Lon, *c.Lat, *c.Lon) <= tol {
						clusters[i] = append(clusters[i], m)
						continue next
					}
				}
			}
			clusters = append(clusters, plants.Table{m})
			continue
		}
		if len(clusters) == 0 {
			clusters = append(clusters, plants.Table{m})
		} else {
			clusters[0] = append(clusters[0], m)
		}
	}
	return clusters
}

// reduce folds one cluster of unit records into a single plant record.
// Capacity is conserved exactly; extensive quantities sum, lifecycle years
// take their natural extremes and intensive quantities are capacity-weighted.
func reduce(members plants.Table) plants.Record {
	if len(members) == 1 {
		return members[0]
	}
	members = append(plants.Table(nil), members...)
	members.Sort()

	out := members[0]
	out.CapacityMW = 0
	out.ProjectIDs = nil
	out.EIC = nil

	var (
		latSum, lonSum, coordWeight float64
		effSum, effWeight           float64
		durSum, durWeight           float64
		volume, damHeight, storage  *float64
	)

	for i := range members {
		m := &members[i]
		out.CapacityMW += m.CapacityMW
		out.ProjectIDs = append(out.ProjectIDs, m.ProjectIDs...)
		out.EIC = plants.MergeEIC(out.EIC, m.EIC)

		out.DateIn = minYear(out.DateIn, m.DateIn)
		out.DateRetrofit = maxYear(out.DateRetrofit, m.DateRetrofit)
		out.DateMothball = maxYear(out.DateMothball, m.DateMothball)
		out.DateOut = maxYear(out.DateOut, m.DateOut)

		// Unit weights degrade gracefully to a plain mean when no unit
		// reports capacity.
		w := m.CapacityMW
		if w <= 0 {
			w = 1
		}
		if m.HasCoords() {
			latSum += *m.Lat * w
			lonSum += *m.Lon * w
			coordWeight += w
		}
		if m.Efficiency != nil {
			effSum += *m.Efficiency * w
			effWeight += w
		}
		if m.DurationH != nil {
			durSum += *m.DurationH * w
			durWeight += w
		}
		volume = sumOpt(volume, m.VolumeMm3)
		damHeight = sumOpt(damHeight, m.DamHeightM)
		storage = sumOpt(storage, m.StorageCapacityMWh)
	}

	out.Lat, out.Lon = nil, nil
	if coordWeight > 0 {
		out.Lat = plants.Float(latSum / coordWeight)
		out.Lon = plants.Float(lonSum / coordWeight)
	}
	out.Efficiency = nil
	if effWeight > 0 {
		out.Efficiency = plants.Float(effSum / effWeight)
	}
	out.DurationH = nil
	if durWeight > 0 {
		out.DurationH = plants.Float(durSum / durWeight)
	}
	out.VolumeMm3 = volume
	out.DamHeightM = damHeight
	out.StorageCapacityMWh = storage

	out.Name = longestName(members)
	out.Fueltype = mode(members, func(r *plants.Record) string { return r.Fueltype })
	out.Technology = mode(members, func(r *plants.Record) string { return r.Technology })
	out.Set = mode(members, func(r *plants.Record) string { return r.Set })

	sort.Strings(out.ProjectIDs)
	return out
}

// mode returns the most frequent non-empty value; ties go to the value seen
// first in sorted member order.
func mode(members plants.Table, field func(*plants.Record) string) string {
	counts := make(map[string]int)
	order := make([]string, 0, len(members))
	for i := range members {
		v := field(&members[i])
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := ""
	for _, v := range order {
		if best == "" || counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

// longestName prefers the most descriptive display name in the cluster.
func longestName(members plants.Table) string {
	best := ""
	for i := range members {
		if len(members[i].Name) > len(best) {
			best = members[i].Name
		}
	}
	return best
}

func minYear(a, b *int) *int {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *b < *a {
		return b
	}
	return a
}

func maxYear(a, b *int) *int {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *b > *a {
		return b
	}
	return a
}

func sumOpt(a, b *float64) *float64 {
	if b == nil {
		return a
	}
	if a == nil {
		v := *b
		return &v
	}
	v := *a + *b
	return &v
}
