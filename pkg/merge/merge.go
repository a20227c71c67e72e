// Package merge folds match groups into single output records. Field
// conflicts are settled by source reliability: members are visited from most
// to least reliable and the first non-null value wins, except lifecycle
// extremes, which are taken across the whole group, and equal-reliability
// numeric ties, which are averaged.
package merge

import (
	"context"
	"sort"

	"github.com/emberdata/powermerge/pkg/config"
	"github.com/emberdata/powermerge/pkg/errors"
	"github.com/emberdata/powermerge/pkg/logging"
	"github.com/emberdata/powermerge/pkg/match"
	"github.com/emberdata/powermerge/pkg/plants"
	"github.com/emberdata/powermerge/pkg/provenance"
)

// Unmatched reasons.
const (
	ReasonNoMatch             = "no_match"
	ReasonInsufficientSources = "insufficient_sources"
)

// Unmatched is one report row for a record that did not make the output.
type Unmatched struct {
	Source    string `yaml:"source"`
	ProjectID string `yaml:"project_id"`
	Name      string `yaml:"name"`
	Country   string `yaml:"country"`
	Reason    string `yaml:"reason"`
}

// Merger folds groups and singles into the output table.
type Merger struct {
	cfg  *config.Config
	prov provenance.Tracker
}

// New creates a Merger. A nil tracker disables provenance recording.
func New(cfg *config.Config, prov provenance.Tracker) *Merger {
	if prov == nil {
		prov = provenance.NewTracker(false)
	}
	return &Merger{cfg: cfg, prov: prov}
}

// Run merges the groups and decides the fate of the singles. Groups below
// the source-count floor are only emitted when a member comes from a fully
// included source; qualifying singles of fully included sources are emitted
// as single-member records. Everything else goes into the unmatched report.
func (m *Merger) Run(ctx context.Context, groups []match.Group, singles plants.Table) (plants.MergedTable, []Unmatched, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, errors.ErrCanceled
	}

	var out plants.MergedTable
	var unmatched []Unmatched

	for _, g := range groups {
		if g.SourceCount() >= m.cfg.MinSourceCount || m.hasFullyIncluded(g.Members) {
			out = append(out, m.mergeGroup(g.Members))
			continue
		}
		for i := range g.Members {
			unmatched = append(unmatched, report(&g.Members[i], ReasonInsufficientSources)...)
		}
	}

	for i := range singles {
		s := &singles[i]
		if m.cfg.IsFullyIncluded(s.Source) {
			out = append(out, m.mergeGroup(plants.Table{*s}))
			continue
		}
		unmatched = append(unmatched, report(s, ReasonNoMatch)...)
	}

	out.Sort()
	sortUnmatched(unmatched)

	logging.Ctx(logging.WithStage(ctx, "merge")).Debug().
		Int("groups", len(groups)).
		Int("merged", len(out)).
		Int("unmatched", len(unmatched)).
		Msg("merge complete")
	return out, unmatched, nil
}

func (m *Merger) hasFullyIncluded(members plants.Table) bool {
	for i := range members {
		if m.cfg.IsFullyIncluded(members[i].Source) {
			return true
		}
	}
	return false
}

// report emits one unmatched row per project ID so no identifier disappears
// from the run's books.
func report(r *plants.Record, reason string) []Unmatched {
	out := make([]Unmatched, 0, len(r.ProjectIDs))
	for _, id := range r.ProjectIDs {
		out = append(out, Unmatched{
			Source:    r.Source,
			ProjectID: id,
			Name:      r.Name,
			Country:   r.Country,
			Reason:    reason,
		})
	}
	return out
}

func sortUnmatched(rows []Unmatched) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Source != rows[j].Source {
			return rows[i].Source < rows[j].Source
		}
		return rows[i].ProjectID < rows[j].ProjectID
	})
}

// mergeGroup builds one output record from a group's members.
func (m *Merger) mergeGroup(members plants.Table) plants.MergedRecord {
	ranked := append(plants.Table(nil), members...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Reliability != ranked[j].Reliability {
			return ranked[i].Reliability > ranked[j].Reliability
		}
		return ranked[i].Source < ranked[j].Source
	})

	projectIDs := make(map[string][]string)
	var eic []string
	for i := range ranked {
		projectIDs[ranked[i].Source] = append(projectIDs[ranked[i].Source], ranked[i].ProjectIDs...)
		eic = plants.MergeEIC(eic, ranked[i].EIC)
	}
	for src := range projectIDs {
		sort.Strings(projectIDs[src])
	}

	rec := plants.MergedRecord{
		ID:         plants.NewMergedID(projectIDs),
		Country:    ranked[0].Country,
		EIC:        eic,
		ProjectIDs: projectIDs,
		Sources:    plants.SourceNames(projectIDs),
	}

	rec.Name = m.pickString(rec.ID, "name", ranked, func(r *plants.Record) string { return r.Name })
	rec.Fueltype = m.pickString(rec.ID, "fueltype", ranked, func(r *plants.Record) string { return r.Fueltype })
	rec.Technology = m.pickString(rec.ID, "technology", ranked, func(r *plants.Record) string { return r.Technology })
	rec.Set = m.pickString(rec.ID, "set", ranked, func(r *plants.Record) string { return r.Set })

	if v := m.pickFloat(rec.ID, "capacity_mw", ranked, func(r *plants.Record) *float64 {
		if r.CapacityMW <= 0 {
			return nil
		}
		return &r.CapacityMW
	}); v != nil {
		rec.CapacityMW = *v
	}
	rec.Efficiency = m.pickFloat(rec.ID, "efficiency", ranked, func(r *plants.Record) *float64 { return r.Efficiency })
	rec.Lat = m.pickFloat(rec.ID, "lat", ranked, func(r *plants.Record) *float64 { return r.Lat })
	rec.Lon = m.pickFloat(rec.ID, "lon", ranked, func(r *plants.Record) *float64 { return r.Lon })
	rec.DurationH = m.pickFloat(rec.ID, "duration_h", ranked, func(r *plants.Record) *float64 { return r.DurationH })
	rec.VolumeMm3 = m.pickFloat(rec.ID, "volume_mm3", ranked, func(r *plants.Record) *float64 { return r.VolumeMm3 })
	rec.DamHeightM = m.pickFloat(rec.ID, "dam_height_m", ranked, func(r *plants.Record) *float64 { return r.DamHeightM })
	rec.StorageCapacityMWh = m.pickFloat(rec.ID, "storage_capacity_mwh", ranked, func(r *plants.Record) *float64 { return r.StorageCapacityMWh })

	// Lifecycle extremes span the whole group regardless of reliability:
	// the earliest commissioning and the latest decommissioning describe
	// the physical asset.
	rec.DateIn = m.pickExtremeYear(rec.ID, "date_in", ranked, func(r *plants.Record) *int { return r.DateIn }, false)
	rec.DateRetrofit = m.pickExtremeYear(rec.ID, "date_retrofit", ranked, func(r *plants.Record) *int { return r.DateRetrofit }, true)
	rec.DateMothball = m.pickExtremeYear(rec.ID, "date_mothball", ranked, func(r *plants.Record) *int { return r.DateMothball }, true)
	rec.DateOut = m.pickExtremeYear(rec.ID, "date_out", ranked, func(r *plants.Record) *int { return r.DateOut }, true)

	// The extremes come from independent members and may cross when one
	// source reports only date_in and another only date_out. Lift date_out
	// so the pair stays ordered.
	if rec.DateIn != nil && rec.DateOut != nil && *rec.DateIn > *rec.DateOut {
		rec.DateOut = plants.Year(*rec.DateIn)
	}

	return rec
}

// pickString returns the first non-empty value in reliability order.
func (m *Merger) pickString(id, field string, ranked plants.Table, get func(*plants.Record) string) string {
	for i := range ranked {
		v := get(&ranked[i])
		if v == "" {
			continue
		}
		reason := provenance.ReasonHighestReliability
		if len(ranked) == 1 {
			reason = provenance.ReasonOnlyValue
		}
		m.prov.Track(id, field, provenance.Entry{
			Source:      ranked[i].Source,
			Reliability: ranked[i].Reliability,
			Value:       v,
			Reason:      reason,
		})
		return v
	}
	return ""
}

// pickFloat returns the first non-null value in reliability order. When
// several sources of that same top reliability disagree, their values are
// averaged.
func (m *Merger) pickFloat(id, field string, ranked plants.Table, get func(*plants.Record) *float64) *float64 {
	var (
		sum        float64
		n          int
		winnerRank int
	)
	for i := range ranked {
		v := get(&ranked[i])
		if v == nil {
			continue
		}
		if n == 0 {
			winnerRank = ranked[i].Reliability
		} else if ranked[i].Reliability != winnerRank {
			break
		}
		sum += *v
		n++
		reason := provenance.ReasonHighestReliability
		if len(ranked) == 1 {
			reason = provenance.ReasonOnlyValue
		} else if n > 1 {
			reason = provenance.ReasonTieAveraged
		}
		m.prov.Track(id, field, provenance.Entry{
			Source:      ranked[i].Source,
			Reliability: ranked[i].Reliability,
			Value:       *v,
			Reason:      reason,
		})
	}
	if n == 0 {
		return nil
	}
	return plants.Float(sum / float64(n))
}

// pickExtremeYear takes the minimum (or maximum) year across all members.
func (m *Merger) pickExtremeYear(id, field string, ranked plants.Table, get func(*plants.Record) *int, wantMax bool) *int {
	var best *int
	var from *plants.Record
	for i := range ranked {
		v := get(&ranked[i])
		if v == nil {
			continue
		}
		if best == nil || (wantMax && *v > *best) || (!wantMax && *v < *best) {
			best = v
			from = &ranked[i]
		}
	}
	if best == nil {
		return nil
	}
	m.prov.Track(id, field, provenance.Entry{
		Source:      from.Source,
		Reliability: from.Reliability,
		Value:       *best,
		Reason:      provenance.ReasonExtreme,
	})
	return plants.Year(*best)
}
