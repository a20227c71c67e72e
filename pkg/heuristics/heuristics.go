// Package heuristics fills gaps in the merged table with statistical
// estimates. Every pass only writes missing values; a value reported by any
// source is never overridden by an estimate.
package heuristics

import (
	"context"
	"math"
	"sort"

	"github.com/emberdata/powermerge/pkg/config"
	"github.com/emberdata/powermerge/pkg/errors"
	"github.com/emberdata/powermerge/pkg/logging"
	"github.com/emberdata/powermerge/pkg/plants"
)

// Filler applies the configured gap-filling passes to a merged table.
type Filler struct {
	cfg *config.Config
}

// New creates a Filler.
func New(cfg *config.Config) *Filler {
	return &Filler{cfg: cfg}
}

// Run applies all enabled passes in place and reports how many values each
// pass filled.
func (f *Filler) Run(ctx context.Context, table plants.MergedTable) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrCanceled
	}

	filled := make(map[string]int)
	h := f.cfg.Heuristics
	if h.FillCommissioningYears {
		filled["date_in"] = f.fillCommissioningYears(table)
	}
	if h.FillRetirementYears {
		filled["date_out"] = f.fillRetirementYears(table)
	}
	if h.EstimateCapacity {
		filled["capacity_mw"] = f.estimateCapacity(table)
	}

	if len(filled) > 0 {
		logging.Ctx(logging.WithStage(ctx, "heuristics")).Info().
			Interface("filled", filled).
			Msg("gaps filled")
	}
	return filled, nil
}

// fillCommissioningYears estimates missing commissioning years from peer
// averages, preferring the tightest available cohort: same country and
// fueltype, then same fueltype, then same country.
func (f *Filler) fillCommissioningYears(table plants.MergedTable) int {
	byCountryFuel := meanYears(table, func(r *plants.MergedRecord) (string, bool) {
		return r.Country + "|" + r.Fueltype, r.Fueltype != ""
	})
	byFuel := meanYears(table, func(r *plants.MergedRecord) (string, bool) {
		return r.Fueltype, r.Fueltype != ""
	})
	byCountry := meanYears(table, func(r *plants.MergedRecord) (string, bool) {
		return r.Country, true
	})

	n := 0
	for i := range table {
		r := &table[i]
		if r.DateIn != nil {
			continue
		}
		var y int
		if v, ok := byCountryFuel[r.Country+"|"+r.Fueltype]; ok {
			y = v
		} else if v, ok := byFuel[r.Fueltype]; ok {
			y = v
		} else if v, ok := byCountry[r.Country]; ok {
			y = v
		} else {
			continue
		}
		// An estimate must not break date_in <= date_out.
		if r.DateOut != nil && y > *r.DateOut {
			y = *r.DateOut
		}
		r.DateIn = plants.Year(y)
		n++
	}
	return n
}

// fillRetirementYears projects missing retirement years as the last life
// event plus the typical fueltype lifetime.
func (f *Filler) fillRetirementYears(table plants.MergedTable) int {
	n := 0
	for i := range table {
		r := &table[i]
		if r.DateOut != nil {
			continue
		}
		lifetime, ok := f.cfg.FuelLifetimes[r.Fueltype]
		if !ok {
			continue
		}
		base := r.DateIn
		if r.DateRetrofit != nil && (base == nil || *r.DateRetrofit > *base) {
			base = r.DateRetrofit
		}
		if base == nil {
			continue
		}
		r.DateOut = plants.Year(*base + lifetime)
		n++
	}
	return n
}

// estimateCapacity fills zero capacities with the cohort mean over records
// sharing fueltype and technology, falling back to the fueltype mean.
func (f *Filler) estimateCapacity(table plants.MergedTable) int {
	type acc struct {
		sum float64
		n   int
	}
	byFuelTech := make(map[string]*acc)
	byFuel := make(map[string]*acc)
	add := func(m map[string]*acc, k string, v float64) {
		a := m[k]
		if a == nil {
			a = &acc{}
			m[k] = a
		}
		a.sum += v
		a.n++
	}
	for i := range table {
		r := &table[i]
		if r.CapacityMW <= 0 || r.Fueltype == "" {
			continue
		}
		add(byFuel, r.Fueltype, r.CapacityMW)
		if r.Technology != "" {
			add(byFuelTech, r.Fueltype+"|"+r.Technology, r.CapacityMW)
		}
	}

	n := 0
	for i := range table {
		r := &table[i]
		if r.CapacityMW > 0 {
			continue
		}
		if a, ok := byFuelTech[r.Fueltype+"|"+r.Technology]; ok && a.n > 0 {
			r.CapacityMW = a.sum / float64(a.n)
		} else if a, ok := byFuel[r.Fueltype]; ok && a.n > 0 {
			r.CapacityMW = a.sum / float64(a.n)
		} else {
			continue
		}
		n++
	}
	return n
}

// meanYears computes rounded mean commissioning years per cohort key.
func meanYears(table plants.MergedTable, key func(*plants.MergedRecord) (string, bool)) map[string]int {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range table {
		r := &table[i]
		if r.DateIn == nil {
			continue
		}
		k, ok := key(r)
		if !ok {
			continue
		}
		sums[k] += float64(*r.DateIn)
		counts[k]++
	}
	out := make(map[string]int, len(sums))
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out[k] = int(math.Round(sums[k] / float64(counts[k])))
	}
	return out
}
