package merge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdata/powermerge/pkg/config"
	"github.com/emberdata/powermerge/pkg/match"
	"github.com/emberdata/powermerge/pkg/merge"
	"github.com/emberdata/powermerge/pkg/plants"
	"github.com/emberdata/powermerge/pkg/provenance"
)

func mergeConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Sources = []config.SourceConfig{
		{Name: "A", Reliability: 3},
		{Name: "B", Reliability: 5},
		{Name: "C", Reliability: 3},
		{Name: "FULL", Reliability: 2},
	}
	cfg.MatchingSources = []string{"A", "B", "C"}
	cfg.FullyIncludedSources = []string{"FULL"}
	require.NoError(t, cfg.Finalize())
	return cfg
}

func aarbergGroup() match.Group {
	return match.Group{Members: plants.Table{
		{
			Name: "Aarberg", NormName: "aarberg", Fueltype: "Hydro",
			Technology: "Run-Of-River", Country: "Switzerland",
			CapacityMW: 14.6, DateIn: plants.Year(1968),
			Lat: plants.Float(47.04), Lon: plants.Float(7.27),
			ProjectIDs: []string{"A-77"}, Source: "A", Reliability: 3,
		},
		{
			Name: "Aarberg KW", NormName: "aarberg", Fueltype: "Hydro",
			Country:    "Switzerland",
			CapacityMW: 15.5, DateOut: plants.Year(2035),
			ProjectIDs: []string{"B-12"}, Source: "B", Reliability: 5,
		},
	}}
}

func TestRunReliabilityDecidesConflicts(t *testing.T) {
	m := merge.New(mergeConfig(t), nil)

	out, unmatched, err := m.Run(context.Background(), []match.Group{aarbergGroup()}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Empty(t, unmatched)

	rec := out[0]
	// B is more reliable, so its name and capacity win.
	assert.Equal(t, "Aarberg KW", rec.Name)
	assert.InDelta(t, 15.5, rec.CapacityMW, 1e-9)
	// B reports no coordinates or technology; A backfills them.
	require.NotNil(t, rec.Lat)
	assert.InDelta(t, 47.04, *rec.Lat, 1e-9)
	assert.Equal(t, "Run-Of-River", rec.Technology)
	assert.Equal(t, "Switzerland", rec.Country)
}

func TestRunProvenanceKeepsEveryProjectID(t *testing.T) {
	m := merge.New(mergeConfig(t), nil)

	out, _, err := m.Run(context.Background(), []match.Group{aarbergGroup()}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, map[string][]string{
		"A": {"A-77"},
		"B": {"B-12"},
	}, out[0].ProjectIDs)
	assert.Equal(t, []string{"A", "B"}, out[0].Sources)
}

func TestRunLifecycleExtremesSpanGroup(t *testing.T) {
	m := merge.New(mergeConfig(t), nil)

	out, _, err := m.Run(context.Background(), []match.Group{aarbergGroup()}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)

	// date_in comes from the less reliable source: extremes ignore rank.
	require.NotNil(t, out[0].DateIn)
	assert.Equal(t, 1968, *out[0].DateIn)
	require.NotNil(t, out[0].DateOut)
	assert.Equal(t, 2035, *out[0].DateOut)
}

func TestRunCrossedLifecycleDatesStayOrdered(t *testing.T) {
	m := merge.New(mergeConfig(t), nil)

	// One member knows only the commissioning year, the other only an
	// earlier retirement year. The merged record must not retire before
	// it commissions.
	g := match.Group{Members: plants.Table{
		{
			Name: "Crossed", NormName: "crossed", Country: "Germany",
			CapacityMW: 50, DateIn: plants.Year(1990),
			ProjectIDs: []string{"A-5"}, Source: "A", Reliability: 3,
		},
		{
			Name: "Crossed", NormName: "crossed", Country: "Germany",
			CapacityMW: 50, DateOut: plants.Year(1980),
			ProjectIDs: []string{"B-5"}, Source: "B", Reliability: 5,
		},
	}}
	out, _, err := m.Run(context.Background(), []match.Group{g}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)

	require.NotNil(t, out[0].DateIn)
	require.NotNil(t, out[0].DateOut)
	assert.Equal(t, 1990, *out[0].DateIn)
	assert.Equal(t, 1990, *out[0].DateOut)
	assert.LessOrEqual(t, *out[0].DateIn, *out[0].DateOut)
}

func TestRunEqualReliabilityNumericsAveraged(t *testing.T) {
	m := merge.New(mergeConfig(t), nil)

	g := match.Group{Members: plants.Table{
		{
			Name: "Twin", NormName: "twin", Country: "Germany",
			CapacityMW: 100, ProjectIDs: []string{"A-1"},
			Source: "A", Reliability: 3,
		},
		{
			Name: "Twin", NormName: "twin", Country: "Germany",
			CapacityMW: 110, ProjectIDs: []string{"C-1"},
			Source: "C", Reliability: 3,
		},
	}}
	out, _, err := m.Run(context.Background(), []match.Group{g}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 105, out[0].CapacityMW, 1e-9)
}

func TestRunDeterministicIDs(t *testing.T) {
	m := merge.New(mergeConfig(t), nil)

	first, _, err := m.Run(context.Background(), []match.Group{aarbergGroup()}, nil)
	require.NoError(t, err)
	second, _, err := m.Run(context.Background(), []match.Group{aarbergGroup()}, nil)
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.NotEmpty(t, first[0].ID)
}

func TestRunSinglesFullyIncludedOrUnmatched(t *testing.T) {
	m := merge.New(mergeConfig(t), nil)

	singles := plants.Table{
		{
			Name: "Orphan", NormName: "orphan", Country: "France",
			CapacityMW: 40, ProjectIDs: []string{"A-9"},
			Source: "A", Reliability: 3,
		},
		{
			Name: "Keeper", NormName: "keeper", Country: "France",
			CapacityMW: 60, ProjectIDs: []string{"FULL-1"},
			Source: "FULL", Reliability: 2,
		},
	}
	out, unmatched, err := m.Run(context.Background(), nil, singles)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "Keeper", out[0].Name)
	assert.Equal(t, []string{"FULL"}, out[0].Sources)

	require.Len(t, unmatched, 1)
	assert.Equal(t, "A-9", unmatched[0].ProjectID)
	assert.Equal(t, merge.ReasonNoMatch, unmatched[0].Reason)
}

func TestRunInsufficientSourcesReported(t *testing.T) {
	cfg := mergeConfig(t)
	cfg.MinSourceCount = 3
	m := merge.New(cfg, nil)

	out, unmatched, err := m.Run(context.Background(), []match.Group{aarbergGroup()}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	require.Len(t, unmatched, 2)
	for _, u := range unmatched {
		assert.Equal(t, merge.ReasonInsufficientSources, u.Reason)
	}
}

func TestRunTracksProvenance(t *testing.T) {
	tracker := provenance.NewTracker(true)
	m := merge.New(mergeConfig(t), tracker)

	out, _, err := m.Run(context.Background(), []match.Group{aarbergGroup()}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)

	entries := tracker.FindByField(out[0].ID, "name")
	require.NotEmpty(t, entries)
	assert.Equal(t, "B", entries[0].Source)
	assert.Equal(t, provenance.ReasonHighestReliability, entries[0].Reason)

	capEntries := tracker.FindByField(out[0].ID, "capacity_mw")
	require.NotEmpty(t, capEntries)
	assert.Equal(t, "B", capEntries[0].Source)
}

func TestRunSingletonValuesTrackedAsOnlyValue(t *testing.T) {
	tracker := provenance.NewTracker(true)
	m := merge.New(mergeConfig(t), tracker)

	singles := plants.Table{
		{
			Name: "Keeper", NormName: "keeper", Country: "France",
			CapacityMW: 60, ProjectIDs: []string{"FULL-1"},
			Source: "FULL", Reliability: 2,
		},
	}
	out, _, err := m.Run(context.Background(), nil, singles)
	require.NoError(t, err)
	require.Len(t, out, 1)

	entries := tracker.FindByField(out[0].ID, "name")
	require.NotEmpty(t, entries)
	assert.Equal(t, provenance.ReasonOnlyValue, entries[0].Reason)

	capEntries := tracker.FindByField(out[0].ID, "capacity_mw")
	require.NotEmpty(t, capEntries)
	assert.Equal(t, provenance.ReasonOnlyValue, capEntries[0].Reason)
}