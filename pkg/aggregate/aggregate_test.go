package aggregate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdata/powermerge/pkg/aggregate"
	"github.com/emberdata/powermerge/pkg/config"
	"github.com/emberdata/powermerge/pkg/plants"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Sources = []config.SourceConfig{
		{Name: "ENTSOE", Reliability: 4},
		{Name: "OPSD", Reliability: 5, PreAggregated: true},
	}
	require.NoError(t, cfg.Finalize())
	return cfg
}

func unit(name, norm, id string, capacity float64, dateIn int) plants.Record {
	return plants.Record{
		Name:        name,
		NormName:    norm,
		Fueltype:    "Hydro",
		Country:     "Switzerland",
		CapacityMW:  capacity,
		DateIn:      plants.Year(dateIn),
		ProjectIDs:  []string{id},
		Source:      "ENTSOE",
		Reliability: 4,
	}
}

func TestRunConservesCapacity(t *testing.T) {
	a := aggregate.New(testConfig(t))

	in := plants.Table{
		unit("Grande Dixence 1", "grande dixence", "E-1", 500, 1961),
		unit("Grande Dixence 2", "grande dixence", "E-2", 700, 1965),
		unit("Aarberg", "aarberg", "E-3", 14.6, 1968),
	}
	total := in.TotalCapacityMW()

	out, diag, err := a.Run(context.Background(), "ENTSOE", in)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.InDelta(t, total, out.TotalCapacityMW(), 1e-9)
	assert.Equal(t, 3, diag.RowsIn)
	assert.Equal(t, 2, diag.RowsOut)
}

func TestRunMergesUnitsOfOnePlant(t *testing.T) {
	a := aggregate.New(testConfig(t))

	u1 := unit("Grande Dixence 1", "grande dixence", "E-1", 500, 1961)
	u1.Efficiency = plants.Float(0.85)
	u1.EIC = []string{"17W000000117649K"}
	u2 := unit("Grande Dixence Block 2", "grande dixence", "E-2", 700, 1965)
	u2.Efficiency = plants.Float(0.90)
	u2.DateOut = plants.Year(2040)
	u2.EIC = []string{"17W000000117650X"}

	out, _, err := a.Run(context.Background(), "ENTSOE", plants.Table{u1, u2})
	require.NoError(t, err)
	require.Len(t, out, 1)

	rec := out[0]
	assert.Equal(t, "Grande Dixence Block 2", rec.Name)
	assert.InDelta(t, 1200, rec.CapacityMW, 1e-9)
	assert.Equal(t, []string{"E-1", "E-2"}, rec.ProjectIDs)
	assert.Equal(t, []string{"17W000000117649K", "17W000000117650X"}, rec.EIC)
	require.NotNil(t, rec.DateIn)
	assert.Equal(t, 1961, *rec.DateIn)
	require.NotNil(t, rec.DateOut)
	assert.Equal(t, 2040, *rec.DateOut)
	// Capacity-weighted efficiency: (0.85*500 + 0.90*700) / 1200.
	require.NotNil(t, rec.Efficiency)
	assert.InDelta(t, (0.85*500+0.90*700)/1200, *rec.Efficiency, 1e-9)
}

func TestRunGeoToleranceSplitsHomonyms(t *testing.T) {
	cfg := testConfig(t)
	cfg.Aggregation.GeoToleranceKM = 25
	a := aggregate.New(cfg)

	near1 := unit("Mühlebach", "muhlebach", "E-1", 10, 1970)
	near1.Lat, near1.Lon = plants.Float(46.50), plants.Float(8.20)
	near2 := unit("Mühlebach", "muhlebach", "E-2", 12, 1972)
	near2.Lat, near2.Lon = plants.Float(46.55), plants.Float(8.25)
	far := unit("Mühlebach", "muhlebach", "E-3", 8, 1980)
	far.Lat, far.Lon = plants.Float(47.40), plants.Float(9.30)

	out, _, err := a.Run(context.Background(), "ENTSOE", plants.Table{near1, near2, far})
	require.NoError(t, err)
	assert.Len(t, out, 2, "distant homonym must stay a separate plant")
}

func TestRunGroupByFueltype(t *testing.T) {
	cfg := testConfig(t)
	cfg.Aggregation.GeoToleranceKM = 0
	a := aggregate.New(cfg)

	hydro := unit("Verbund Site", "verbund site", "E-1", 50, 1990)
	gas := unit("Verbund Site", "verbund site", "E-2", 400, 2001)
	gas.Fueltype = "Natural Gas"

	out, _, err := a.Run(context.Background(), "ENTSOE", plants.Table{hydro, gas})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	cfg.Aggregation.GroupByFueltype = false
	out, _, err = aggregate.New(cfg).Run(context.Background(), "ENTSOE", plants.Table{hydro, gas})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestRunPreAggregatedPassThrough(t *testing.T) {
	a := aggregate.New(testConfig(t))

	r1 := unit("Plant A", "plant a", "O-1", 100, 1990)
	r1.Source = "OPSD"
	r2 := unit("Plant A", "plant a", "O-2", 200, 1995)
	r2.Source = "OPSD"

	out, _, err := a.Run(context.Background(), "OPSD", plants.Table{r1, r2})
	require.NoError(t, err)
	assert.Len(t, out, 2, "pre-aggregated sources bypass aggregation")
}

func TestRunWeightedCentroid(t *testing.T) {
	cfg := testConfig(t)
	cfg.Aggregation.GeoToleranceKM = 0
	a := aggregate.New(cfg)

	u1 := unit("Twin", "twin", "E-1", 100, 1990)
	u1.Lat, u1.Lon = plants.Float(47.0), plants.Float(7.0)
	u2 := unit("Twin", "twin", "E-2", 300, 1992)
	u2.Lat, u2.Lon = plants.Float(47.4), plants.Float(7.4)

	out, _, err := a.Run(context.Background(), "ENTSOE", plants.Table{u1, u2})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.True(t, out[0].HasCoords())
	assert.InDelta(t, 47.3, *out[0].Lat, 1e-9)
	assert.InDelta(t, 7.3, *out[0].Lon, 1e-9)
}
