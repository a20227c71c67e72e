// Package plants defines the canonical data model shared by every pipeline
// stage: the standardized per-source Record, the merged output record, and
// the table types built from them.
package plants

import (
	"sort"
	"strings"
)

// Record is one standardized row describing a plant or plant block from a
// single source. Records are created once by the standardizer and are
// immutable afterward.
type Record struct {
	// Name is the display name as reported by the source.
	Name string `yaml:"name"`

	// NormName is the cleaned name used as a similarity feature only.
	// It is never shown to consumers.
	NormName string `yaml:"norm_name"`

	Fueltype   string `yaml:"fueltype,omitempty"`
	Technology string `yaml:"technology,omitempty"`
	Set        string `yaml:"set,omitempty"`
	Country    string `yaml:"country"`

	CapacityMW float64  `yaml:"capacity_mw"`
	Efficiency *float64 `yaml:"efficiency,omitempty"`

	// Commissioning lifecycle years. Where all are present they are
	// monotonically non-decreasing.
	DateIn       *int `yaml:"date_in,omitempty"`
	DateRetrofit *int `yaml:"date_retrofit,omitempty"`
	DateMothball *int `yaml:"date_mothball,omitempty"`
	DateOut      *int `yaml:"date_out,omitempty"`

	Lat *float64 `yaml:"lat,omitempty"`
	Lon *float64 `yaml:"lon,omitempty"`

	DurationH          *float64 `yaml:"duration_h,omitempty"`
	VolumeMm3          *float64 `yaml:"volume_mm3,omitempty"`
	DamHeightM         *float64 `yaml:"dam_height_m,omitempty"`
	StorageCapacityMWh *float64 `yaml:"storage_capacity_mwh,omitempty"`

	// EIC holds external identifier codes, deduplicated and sorted.
	EIC []string `yaml:"eic,omitempty"`

	// ProjectIDs are the source-local identifiers contributing to this
	// record. The standardizer emits exactly one; unit aggregation may
	// accumulate several. IDs are opaque and never rewritten.
	ProjectIDs []string `yaml:"project_ids"`

	// Source is the name of the dataset this record came from.
	Source string `yaml:"source"`

	// Reliability is the source-level reliability score, a small
	// positive integer constant for all records of one source.
	Reliability int `yaml:"reliability"`
}

// HasCoords reports whether both latitude and longitude are present.
func (r *Record) HasCoords() bool {
	return r.Lat != nil && r.Lon != nil
}

// Key returns a stable identity for the record within a pipeline run,
// derived from its source and first project ID.
func (r *Record) Key() string {
	if len(r.ProjectIDs) == 0 {
		return r.Source + "/" + r.NormName
	}
	return r.Source + "/" + r.ProjectIDs[0]
}

// Table is an ordered collection of records from one or more sources.
type Table []Record

// TotalCapacityMW sums capacity over all rows.
func (t Table) TotalCapacityMW() float64 {
	var total float64
	for i := range t {
		total += t[i].CapacityMW
	}
	return total
}

// Countries returns the sorted set of countries present in the table.
func (t Table) Countries() []string {
	seen := make(map[string]struct{})
	for i := range t {
		seen[t[i].Country] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ByCountry partitions the table into per-country tables. Row order within
// each partition follows the input order.
func (t Table) ByCountry() map[string]Table {
	parts := make(map[string]Table)
	for i := range t {
		parts[t[i].Country] = append(parts[t[i].Country], t[i])
	}
	return parts
}

// Sort orders the table deterministically by source, then first project ID,
// then normalized name. All pipeline stages sort their outputs so that the
// final table is independent of map iteration order.
func (t Table) Sort() {
	sort.SliceStable(t, func(i, j int) bool {
		if t[i].Source != t[j].Source {
			return t[i].Source < t[j].Source
		}
		pi, pj := "", ""
		if len(t[i].ProjectIDs) > 0 {
			pi = t[i].ProjectIDs[0]
		}
		if len(t[j].ProjectIDs) > 0 {
			pj = t[j].ProjectIDs[0]
		}
		if pi != pj {
			return pi < pj
		}
		return t[i].NormName < t[j].NormName
	})
}

// ProjectIDSet returns every project ID in the table keyed by source.
func (t Table) ProjectIDSet() map[string][]string {
	out := make(map[string][]string)
	for i := range t {
		out[t[i].Source] = append(out[t[i].Source], t[i].ProjectIDs...)
	}
	for src := range out {
		sort.Strings(out[src])
	}
	return out
}

// MergeEIC unions two sorted EIC code lists.
func MergeEIC(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, c := range a {
		seen[c] = struct{}{}
	}
	for _, c := range b {
		seen[c] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		if strings.TrimSpace(c) == "" {
			continue
		}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Year returns a pointer to v.
func Year(v int) *int { return &v }
