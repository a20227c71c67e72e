package main

import (
	"sort"
	"strconv"
	"strings"

	"github.com/emberdata/powermerge/internal/tabular"
	"github.com/emberdata/powermerge/pkg/merge"
	"github.com/emberdata/powermerge/pkg/plants"
)

// mergedCSV flattens the merged table for CSV output. Project IDs collapse
// into one "source:id1|id2" cell per record, semicolon-separated by source.
func mergedCSV(table plants.MergedTable) *tabular.Table {
	out := &tabular.Table{
		Columns: []string{
			"id", "name", "fueltype", "technology", "set", "country",
			"capacity_mw", "efficiency", "date_in", "date_retrofit",
			"date_mothball", "date_out", "lat", "lon", "duration_h",
			"volume_mm3", "dam_height_m", "storage_capacity_mwh",
			"eic", "project_ids", "sources",
		},
	}
	for i := range table {
		r := &table[i]
		out.Rows = append(out.Rows, []string{
			r.ID, r.Name, r.Fueltype, r.Technology, r.Set, r.Country,
			formatFloat(r.CapacityMW),
			formatFloatPtr(r.Efficiency),
			formatYear(r.DateIn),
			formatYear(r.DateRetrofit),
			formatYear(r.DateMothball),
			formatYear(r.DateOut),
			formatFloatPtr(r.Lat),
			formatFloatPtr(r.Lon),
			formatFloatPtr(r.DurationH),
			formatFloatPtr(r.VolumeMm3),
			formatFloatPtr(r.DamHeightM),
			formatFloatPtr(r.StorageCapacityMWh),
			strings.Join(r.EIC, "|"),
			formatProjectIDs(r.ProjectIDs),
			strings.Join(r.Sources, "|"),
		})
	}
	return out
}

func unmatchedCSV(rows []merge.Unmatched) *tabular.Table {
	out := &tabular.Table{
		Columns: []string{"source", "project_id", "name", "country", "reason"},
	}
	for _, u := range rows {
		out.Rows = append(out.Rows, []string{u.Source, u.ProjectID, u.Name, u.Country, u.Reason})
	}
	return out
}

func formatProjectIDs(ids map[string][]string) string {
	sources := make([]string, 0, len(ids))
	for src := range ids {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	parts := make([]string, 0, len(sources))
	for _, src := range sources {
		parts = append(parts, src+":"+strings.Join(ids[src], "|"))
	}
	return strings.Join(parts, ";")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatYear(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
