package match_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdata/powermerge/pkg/config"
	"github.com/emberdata/powermerge/pkg/match"
	"github.com/emberdata/powermerge/pkg/plants"
)

func matchingConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Sources = []config.SourceConfig{
		{Name: "A", Reliability: 3},
		{Name: "B", Reliability: 5},
		{Name: "C", Reliability: 4},
	}
	cfg.MatchingSources = []string{"A", "B", "C"}
	require.NoError(t, cfg.Finalize())
	return cfg
}

func rec(source, id, norm, country string, capacity, lat, lon float64) plants.Record {
	return plants.Record{
		Name:        norm,
		NormName:    norm,
		Fueltype:    "Hydro",
		Country:     country,
		CapacityMW:  capacity,
		Lat:         plants.Float(lat),
		Lon:         plants.Float(lon),
		ProjectIDs:  []string{id},
		Source:      source,
	}
}

func TestScorerLinksSamePlantAcrossSources(t *testing.T) {
	cfg := matchingConfig(t)
	s := match.NewScorer(cfg.Matching)

	a := rec("A", "A-1", "aarberg", "Switzerland", 14.6, 47.04, 7.27)
	b := rec("B", "B-9", "aarberg", "Switzerland", 15.5, 47.05, 7.28)
	assert.GreaterOrEqual(t, s.Score(&a, &b), cfg.Matching.Threshold)
}

func TestScorerCountryVeto(t *testing.T) {
	cfg := matchingConfig(t)
	s := match.NewScorer(cfg.Matching)

	// Identical in everything but the country: near the Spain/Portugal
	// border even a tiny coordinate gap must not link across countries.
	a := rec("A", "A-1", "frontera", "Spain", 100, 38.20, -7.00)
	b := rec("B", "B-1", "frontera", "Portugal", 100, 38.21, -7.01)
	assert.Equal(t, 0.0, s.Score(&a, &b))
}

func TestScorerSharedEICDecides(t *testing.T) {
	cfg := matchingConfig(t)
	s := match.NewScorer(cfg.Matching)

	a := rec("A", "A-1", "completely different", "France", 10, 48.0, 2.0)
	b := rec("B", "B-1", "nothing alike", "France", 900, 43.0, 5.0)
	a.EIC = []string{"17W100P100A0001X"}
	b.EIC = []string{"17W100P100A0001X"}
	assert.Equal(t, 1.0, s.Score(&a, &b))
}

func TestScorerAbstentionRenormalizes(t *testing.T) {
	cfg := matchingConfig(t)
	s := match.NewScorer(cfg.Matching)

	// No coordinates and no capacity on one side: the remaining
	// comparators still produce a full-confidence score.
	a := plants.Record{NormName: "grande dixence", Fueltype: "Hydro", Country: "Switzerland", Source: "A"}
	b := plants.Record{NormName: "grande dixence", Fueltype: "Hydro", Country: "Switzerland", Source: "B"}
	assert.InDelta(t, 1.0, s.Score(&a, &b), 1e-9)
}

func TestScorerBounds(t *testing.T) {
	cfg := matchingConfig(t)
	s := match.NewScorer(cfg.Matching)

	a := rec("A", "A-1", "alpha", "Germany", 10, 50.0, 8.0)
	b := rec("B", "B-1", "omega station something", "Germany", 4000, 54.0, 13.0)
	score := s.Score(&a, &b)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
	assert.Less(t, score, cfg.Matching.Threshold)
}

func TestLinkerGroupsTransitively(t *testing.T) {
	cfg := matchingConfig(t)
	l := match.NewLinker(cfg)

	// A~B and B~C link directly; A and C join the same group through B.
	table := plants.Table{
		rec("A", "A-1", "grande dixence", "Switzerland", 1200, 46.08, 7.40),
		rec("B", "B-1", "grande dixence", "Switzerland", 1269, 46.08, 7.41),
		rec("C", "C-1", "grande dixence", "Switzerland", 1230, 46.09, 7.40),
		rec("A", "A-2", "aarberg", "Switzerland", 14.6, 47.04, 7.27),
	}
	table.Sort()

	groups, singles, err := l.Run(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 3, groups[0].SourceCount())
	require.Len(t, singles, 1)
	assert.Equal(t, "aarberg", singles[0].NormName)
}

func TestLinkerNeverLinksWithinSource(t *testing.T) {
	cfg := matchingConfig(t)
	l := match.NewLinker(cfg)

	table := plants.Table{
		rec("A", "A-1", "twin plant", "Germany", 100, 50.0, 8.0),
		rec("A", "A-2", "twin plant", "Germany", 100, 50.0, 8.0),
	}
	table.Sort()

	groups, singles, err := l.Run(context.Background(), table)
	require.NoError(t, err)
	assert.Empty(t, groups)
	assert.Len(t, singles, 2)
}

func TestLinkerBucketsStillLinkAcrossCellEdges(t *testing.T) {
	cfg := matchingConfig(t)
	cfg.Matching.GeoBucketDeg = 0.5
	l := match.NewLinker(cfg)

	// Same plant reported just either side of a 0.5 degree cell edge.
	a := rec("A", "A-1", "edge case hydro", "Germany", 60, 49.999, 8.1)
	b := rec("B", "B-1", "edge case hydro", "Germany", 60, 50.001, 8.1)
	table := plants.Table{a, b}
	table.Sort()

	groups, _, err := l.Run(context.Background(), table)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestLinkerUnlocatedComparedCountryWide(t *testing.T) {
	cfg := matchingConfig(t)
	cfg.Matching.GeoBucketDeg = 0.5
	l := match.NewLinker(cfg)

	located := rec("A", "A-1", "moorburg", "Germany", 1600, 53.49, 9.95)
	unlocated := plants.Record{
		Name: "moorburg", NormName: "moorburg", Fueltype: "Hydro",
		Country: "Germany", CapacityMW: 1600,
		ProjectIDs: []string{"B-1"}, Source: "B",
	}
	table := plants.Table{located, unlocated}
	table.Sort()

	groups, _, err := l.Run(context.Background(), table)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestLinkerCrossCountryCandidatesStillVetoed(t *testing.T) {
	cfg := matchingConfig(t)
	cfg.Matching.SameCountryOnly = false
	l := match.NewLinker(cfg)

	// Disabling the country bucketing widens candidate generation; the
	// scorer veto must still keep the border pair apart while the
	// same-country pair links as before.
	table := plants.Table{
		rec("A", "A-1", "frontera", "Spain", 100, 38.20, -7.00),
		rec("B", "B-1", "frontera", "Portugal", 100, 38.21, -7.01),
		rec("A", "A-2", "aarberg", "Switzerland", 14.6, 47.04, 7.27),
		rec("B", "B-2", "aarberg", "Switzerland", 15.5, 47.05, 7.28),
	}
	table.Sort()

	groups, singles, err := l.Run(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "aarberg", groups[0].Members[0].NormName)
	require.Len(t, singles, 2)
	for i := range singles {
		assert.Equal(t, "frontera", singles[i].NormName)
	}
}

func TestLinkerDeterministicOutput(t *testing.T) {
	cfg := matchingConfig(t)
	l := match.NewLinker(cfg)

	table := plants.Table{
		rec("A", "A-1", "grande dixence", "Switzerland", 1200, 46.08, 7.40),
		rec("B", "B-1", "grande dixence", "Switzerland", 1269, 46.08, 7.41),
		rec("A", "A-2", "aarberg", "Switzerland", 14.6, 47.04, 7.27),
		rec("B", "B-2", "birsfelden", "Switzerland", 100, 47.55, 7.62),
	}
	table.Sort()

	first, firstSingles, err := l.Run(context.Background(), table)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, againSingles, err := l.Run(context.Background(), table)
		require.NoError(t, err)
		assert.Equal(t, first, again)
		assert.Equal(t, firstSingles, againSingles)
	}
}
