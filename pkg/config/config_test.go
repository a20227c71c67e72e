package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdata/powermerge/pkg/config"
	"github.com/emberdata/powermerge/pkg/errors"
)

func twoSources() []config.SourceConfig {
	return []config.SourceConfig{
		{Name: "OPSD", Reliability: 5},
		{Name: "GEO", Reliability: 3},
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = twoSources()
	cfg.MatchingSources = []string{"OPSD", "GEO"}
	require.NoError(t, cfg.Finalize())
}

func TestValidateUnknownMatchingSource(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = twoSources()
	cfg.MatchingSources = []string{"OPSD", "WEPP"}

	err := cfg.Finalize()
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
	assert.Contains(t, err.Error(), "WEPP")
}

func TestValidateUnknownFullyIncludedSource(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = twoSources()
	cfg.FullyIncludedSources = []string{"ESE"}

	err := cfg.Finalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ESE")
}

func TestValidateRejectsZeroReliability(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = []config.SourceConfig{{Name: "OPSD", Reliability: 0}}
	assert.Error(t, cfg.Finalize())
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = twoSources()
	cfg.Matching.Threshold = 1.5
	assert.Error(t, cfg.Finalize())
}

func TestValidateGeoRadiusRequiredWhenWeighted(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = twoSources()
	cfg.Matching.GeoRadiusKM = 0
	err := cfg.Finalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geo_radius_km")
}

func TestLoadLayersOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := `
sources:
  - name: OPSD
    reliability: 5
  - name: GEO
    reliability: 3
matching_sources: [OPSD, GEO]
min_source_count: 2
matching:
  threshold: 0.8
  weights: {name: 0.5, geo: 0.2, capacity: 0.3}
  geo_radius_km: 40
  capacity_tolerance: 0.5
  same_country_only: true
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.8, cfg.Matching.Threshold)
	assert.Equal(t, 2, cfg.MinSourceCount)
	// Defaults still present underneath.
	assert.NotEmpty(t, cfg.TargetFueltypes)
	assert.True(t, cfg.IsMatchingSource("GEO"))
	assert.False(t, cfg.IsFullyIncluded("GEO"))
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources: ["), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestRowFilter(t *testing.T) {
	f := &config.RowFilter{
		Countries:        []string{"Switzerland"},
		ExcludeFueltypes: []string{"Solar"},
		MinCapacityMW:    1,
	}
	assert.True(t, f.AllowsCountry("Switzerland"))
	assert.False(t, f.AllowsCountry("Austria"))
	assert.False(t, f.AllowsFueltype("Solar"))
	assert.True(t, f.AllowsFueltype("Hydro"))
	assert.False(t, f.AllowsCapacity(0.4))
	assert.True(t, f.AllowsCapacity(14.6))

	var nilFilter *config.RowFilter
	assert.True(t, nilFilter.AllowsCountry("anything"))
}
