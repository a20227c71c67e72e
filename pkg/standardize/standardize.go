// Package standardize turns raw per-source tables into the canonical record
// schema: column mapping, value coercion, category resolution, name
// normalization, unit conversion and row filtering. Recoverable row issues
// are counted in diagnostics; only a missing source configuration is fatal.
package standardize

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/emberdata/powermerge/internal/cache"
	"github.com/emberdata/powermerge/internal/tabular"
	"github.com/emberdata/powermerge/internal/textnorm"
	"github.com/emberdata/powermerge/pkg/config"
	"github.com/emberdata/powermerge/pkg/errors"
	"github.com/emberdata/powermerge/pkg/logging"
	"github.com/emberdata/powermerge/pkg/plants"
)

// Canonical column names of the standardized schema. Raw columns are mapped
// onto these via SourceConfig.Columns; canonical-named columns pass through.
const (
	colName         = "name"
	colFueltype     = "fueltype"
	colTechnology   = "technology"
	colSet          = "set"
	colCountry      = "country"
	colCapacityMW   = "capacity_mw"
	colEfficiency   = "efficiency"
	colDateIn       = "date_in"
	colDateRetrofit = "date_retrofit"
	colDateMothball = "date_mothball"
	colDateOut      = "date_out"
	colLat          = "lat"
	colLon          = "lon"
	colDurationH    = "duration_h"
	colVolumeMm3    = "volume_mm3"
	colDamHeightM   = "dam_height_m"
	colStorageMWh   = "storage_capacity_mwh"
	colEIC          = "eic"
	colProjectID    = "project_id"
)

// Standardizer cleans one raw table at a time. It is stateless apart from
// its collaborators and safe for concurrent use across sources.
type Standardizer struct {
	cfg     *config.Config
	norm    *textnorm.Normalizer
	store   cache.Store
	cfgHash string
}

// New creates a Standardizer. A nil store disables snapshot caching.
func New(cfg *config.Config, store cache.Store) *Standardizer {
	if store == nil {
		store = cache.Nop{}
	}
	return &Standardizer{
		cfg:     cfg,
		norm:    textnorm.New(cfg.StopWords, cfg.DedupNameTokens),
		store:   store,
		cfgHash: configFingerprint(cfg),
	}
}

// configFingerprint keys cached snapshots on the configuration as well as
// the raw input, so a changed stop-word list or rule set misses the cache.
func configFingerprint(cfg *config.Config) string {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "cfg-unhashable"
	}
	return cache.Fingerprint(data)
}

// Run standardizes the raw table of one declared source. The returned table
// is sorted and carries one record per surviving input row.
func (s *Standardizer) Run(ctx context.Context, source string, input *tabular.Table) (plants.Table, *plants.Diagnostics, error) {
	src, ok := s.cfg.Source(source)
	if !ok {
		return nil, nil, errors.NewConfigError("sources", "undeclared source "+source, nil)
	}

	log := logging.Ctx(logging.WithStage(logging.WithSource(ctx, source), "standardize"))
	diag := plants.NewDiagnostics(source, "standardize")
	diag.RowsIn = len(input.Rows)

	key := cache.Key(source, s.cfgHash, input.Fingerprint())
	if cached, err := s.store.Get(key); err == nil {
		diag.RowsOut = len(cached)
		log.Debug().Int("rows", len(cached)).Msg("standardized snapshot served from cache")
		return cached, diag, nil
	}

	cols := s.canonicalIndex(src, input.Columns)
	get := func(row []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make(plants.Table, 0, len(input.Rows))
	for n, row := range input.Rows {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.ErrCanceled
		}
		rec, reason := s.standardizeRow(src, row, n, get)
		if reason != "" {
			diag.Drop(reason)
			continue
		}
		out = append(out, rec)
	}

	out.Sort()
	diag.RowsOut = len(out)
	log.Info().
		Int("rows_in", diag.RowsIn).
		Int("rows_out", diag.RowsOut).
		Int("dropped", diag.TotalDropped()).
		Msg("source standardized")

	if err := s.store.Put(key, out); err != nil {
		log.Warn().Err(err).Msg("cannot cache standardized snapshot")
	}
	return out, diag, nil
}

// standardizeRow coerces one raw row. A non-empty reason means the row is
// dropped and counted under that reason.
func (s *Standardizer) standardizeRow(src config.SourceConfig, row []string, n int, get func([]string, string) string) (plants.Record, string) {
	name := get(row, colName)
	lat := parseFloat(get(row, colLat))
	lon := parseFloat(get(row, colLon))
	if lat == nil || lon == nil {
		lat, lon = nil, nil
	}
	if name == "" && lat == nil {
		return plants.Record{}, "unnamed and unlocated"
	}

	country := get(row, colCountry)
	if country == "" {
		return plants.Record{}, "missing country"
	}
	if !s.cfg.IsTargetCountry(country) {
		return plants.Record{}, "country outside target set"
	}
	if !src.Filter.AllowsCountry(country) {
		return plants.Record{}, "filtered country"
	}

	capacityMW := 0.0
	if raw := get(row, colCapacityMW); raw != "" {
		v := parseFloat(raw)
		if v == nil {
			return plants.Record{}, "unparseable capacity"
		}
		capacityMW = *v
	}

	fueltype, _ := s.cfg.Rules.Fueltype.Resolve(get(row, colFueltype), get(row, colTechnology), name)
	technology, _ := s.cfg.Rules.Technology.Resolve(get(row, colTechnology), name)
	set, ok := s.cfg.Rules.Set.Resolve(get(row, colSet), name)
	if !ok {
		set = "PP"
	}

	if !src.Filter.AllowsFueltype(fueltype) {
		return plants.Record{}, "filtered fueltype"
	}

	if s.cfg.DisplayNet && src.GrossCapacity {
		if factor, ok := s.cfg.GrossToNet[fueltype]; ok && factor > 0 {
			capacityMW *= factor
		}
	}
	if !src.Filter.AllowsCapacity(capacityMW) {
		return plants.Record{}, "below capacity floor"
	}

	projectID := get(row, colProjectID)
	if projectID == "" {
		projectID = fmt.Sprintf("%s-%06d", src.Name, n+1)
	}

	return plants.Record{
		Name:               name,
		NormName:           s.norm.Normalize(name),
		Fueltype:           fueltype,
		Technology:         technology,
		Set:                set,
		Country:            country,
		CapacityMW:         capacityMW,
		Efficiency:         parseFraction(get(row, colEfficiency)),
		DateIn:             parseYear(get(row, colDateIn)),
		DateRetrofit:       parseYear(get(row, colDateRetrofit)),
		DateMothball:       parseYear(get(row, colDateMothball)),
		DateOut:            parseYear(get(row, colDateOut)),
		Lat:                lat,
		Lon:                lon,
		DurationH:          parseFloat(get(row, colDurationH)),
		VolumeMm3:          parseFloat(get(row, colVolumeMm3)),
		DamHeightM:         parseFloat(get(row, colDamHeightM)),
		StorageCapacityMWh: parseFloat(get(row, colStorageMWh)),
		EIC:                splitEIC(get(row, colEIC)),
		ProjectIDs:         []string{projectID},
		Source:             src.Name,
		Reliability:        src.Reliability,
	}, ""
}

// canonicalIndex maps canonical column names to their position in the raw
// header. Explicit mappings win over pass-through names.
func (s *Standardizer) canonicalIndex(src config.SourceConfig, header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, raw := range header {
		canonical, mapped := src.Columns[raw]
		if !mapped {
			canonical = strings.ToLower(strings.TrimSpace(raw))
		}
		if _, taken := idx[canonical]; !taken || mapped {
			idx[canonical] = i
		}
	}
	return idx
}

// splitEIC parses a comma-separated EIC code cell into a sorted set.
func splitEIC(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			seen[p] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
