// Package config holds the pipeline configuration: target enumerations,
// per-source settings, ordered category-mapping rules, similarity weights
// and thresholds. Configuration malformation is fatal at load time; the
// pipeline never starts with a half-valid config.
package config

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/emberdata/powermerge/pkg/errors"
)

// Config is the full pipeline configuration.
type Config struct {
	// Target enumerations. Countries form a closed enumeration; rows
	// outside it are dropped by the standardizer.
	TargetCountries    []string `yaml:"target_countries"`
	TargetFueltypes    []string `yaml:"target_fueltypes"`
	TargetTechnologies []string `yaml:"target_technologies"`
	TargetSets         []string `yaml:"target_sets"`

	// Sources declares every upstream dataset the pipeline may consume.
	Sources []SourceConfig `yaml:"sources"`

	// MatchingSources take part in cross-source linkage.
	MatchingSources []string `yaml:"matching_sources"`

	// FullyIncludedSources keep their qualifying records in the output
	// even without a cross-source match.
	FullyIncludedSources []string `yaml:"fully_included_sources"`

	// MinSourceCount is the minimum number of distinct sources a match
	// group must span to be emitted (unless a member source is fully
	// included).
	MinSourceCount int `yaml:"min_source_count"`

	// DisplayNet converts gross-reporting sources to net capacities.
	DisplayNet bool `yaml:"display_net"`

	// GrossToNet holds per-fueltype gross-to-net conversion factors.
	GrossToNet map[string]float64 `yaml:"gross_to_net"`

	// StopWords are removed from names during normalization.
	StopWords []string `yaml:"stop_words"`

	// DedupNameTokens removes repeated tokens from normalized names.
	DedupNameTokens bool `yaml:"dedup_name_tokens"`

	// Rules are the ordered category-mapping rule lists.
	Rules Rules `yaml:"rules"`

	Matching    Matching    `yaml:"matching"`
	Aggregation Aggregation `yaml:"aggregation"`
	Heuristics  Heuristics  `yaml:"heuristics"`

	// FuelLifetimes maps fueltype to a typical operational lifetime in
	// years, used to estimate missing retirement years.
	FuelLifetimes map[string]int `yaml:"fuel_lifetimes"`

	// Concurrency bounds the per-country worker pool. Zero means
	// runtime.NumCPU.
	Concurrency int `yaml:"concurrency"`
}

// Matching configures the similarity scorer and linker.
type Matching struct {
	// Threshold is the composite score above which a pair is linked.
	Threshold float64 `yaml:"threshold"`

	Weights Weights `yaml:"weights"`

	// GeoRadiusKM is the distance at which the geo comparator reaches
	// zero. Full score at zero distance.
	GeoRadiusKM float64 `yaml:"geo_radius_km"`

	// GeoBucketDeg is the coarse spatial bucket size in degrees used to
	// restrict candidate pairs. Zero disables spatial bucketing.
	GeoBucketDeg float64 `yaml:"geo_bucket_deg"`

	// CapacityTolerance is the relative capacity difference at which
	// the capacity comparator reaches zero.
	CapacityTolerance float64 `yaml:"capacity_tolerance"`

	// SameCountryOnly restricts candidate pairs to the same country
	// before any comparator runs. Country mismatch is a hard veto in
	// the comparator regardless of this flag; the flag only controls
	// candidate generation cost.
	SameCountryOnly bool `yaml:"same_country_only"`
}

// Weights are the fixed comparator weights of the composite score.
type Weights struct {
	Name       float64 `yaml:"name"`
	Geo        float64 `yaml:"geo"`
	Capacity   float64 `yaml:"capacity"`
	Fueltype   float64 `yaml:"fueltype"`
	Technology float64 `yaml:"technology"`
}

// Aggregation configures within-source unit aggregation.
type Aggregation struct {
	// GroupByFueltype adds fueltype to the plant grouping key.
	GroupByFueltype bool `yaml:"group_by_fueltype"`

	// GeoToleranceKM splits name-collided groups whose members lie
	// further apart than this distance. Zero disables the geo gate.
	GeoToleranceKM float64 `yaml:"geo_tolerance_km"`
}

// Heuristics gates the optional post-merge gap-filling passes.
type Heuristics struct {
	FillCommissioningYears bool `yaml:"fill_commissioning_years"`
	FillRetirementYears    bool `yaml:"fill_retirement_years"`
	EstimateCapacity       bool `yaml:"estimate_capacity"`
}

// Load reads a YAML configuration file, layers it over the defaults,
// applies environment overrides, compiles all category rules and validates
// the result. Any malformation is returned as a fatal ConfigError.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.NewConfigError("yaml", "cannot parse "+path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize compiles rules and validates cross-references. It must be called
// on any hand-built Config before use; Load calls it automatically.
func (c *Config) Finalize() error {
	if err := c.Rules.Compile(); err != nil {
		return err
	}
	return c.Validate()
}

// Validate checks the configuration for malformation. It fails fast with a
// precise diagnostic rather than letting a bad config reach the pipeline.
func (c *Config) Validate() error {
	declared := make(map[string]SourceConfig, len(c.Sources))
	for _, src := range c.Sources {
		if src.Name == "" {
			return errors.NewConfigError("sources", "source with empty name", nil)
		}
		if _, dup := declared[src.Name]; dup {
			return errors.NewConfigError("sources", "duplicate source "+src.Name, nil)
		}
		if src.Reliability < 1 {
			return errors.NewConfigError("sources",
				"source "+src.Name+" needs a positive reliability score", nil)
		}
		declared[src.Name] = src
	}

	for _, name := range c.MatchingSources {
		if _, ok := declared[name]; !ok {
			return errors.NewConfigError("matching_sources", "unknown source "+name, nil)
		}
	}
	for _, name := range c.FullyIncludedSources {
		if _, ok := declared[name]; !ok {
			return errors.NewConfigError("fully_included_sources", "unknown source "+name, nil)
		}
	}

	if c.MinSourceCount < 1 {
		return errors.NewConfigError("min_source_count", "must be at least 1", nil)
	}

	m := c.Matching
	if m.Threshold <= 0 || m.Threshold > 1 {
		return errors.NewConfigError("matching.threshold", "must be in (0, 1]", nil)
	}
	w := m.Weights
	if w.Name < 0 || w.Geo < 0 || w.Capacity < 0 || w.Fueltype < 0 || w.Technology < 0 {
		return errors.NewConfigError("matching.weights", "weights must be non-negative", nil)
	}
	if w.Name+w.Geo+w.Capacity+w.Fueltype+w.Technology <= 0 {
		return errors.NewConfigError("matching.weights", "at least one weight must be positive", nil)
	}
	if w.Geo > 0 && m.GeoRadiusKM <= 0 {
		return errors.NewConfigError("matching.geo_radius_km",
			"must be positive when the geo comparator is weighted", nil)
	}
	if w.Capacity > 0 && m.CapacityTolerance <= 0 {
		return errors.NewConfigError("matching.capacity_tolerance",
			"must be positive when the capacity comparator is weighted", nil)
	}

	return nil
}

// Source returns the configuration for a declared source.
func (c *Config) Source(name string) (SourceConfig, bool) {
	for _, src := range c.Sources {
		if src.Name == name {
			return src, true
		}
	}
	return SourceConfig{}, false
}

// IsFullyIncluded reports whether the source keeps unmatched records.
func (c *Config) IsFullyIncluded(name string) bool {
	for _, s := range c.FullyIncludedSources {
		if s == name {
			return true
		}
	}
	return false
}

// IsMatchingSource reports whether the source takes part in linkage.
func (c *Config) IsMatchingSource(name string) bool {
	for _, s := range c.MatchingSources {
		if s == name {
			return true
		}
	}
	return false
}

// IsTargetCountry reports whether the country is inside the closed
// enumeration.
func (c *Config) IsTargetCountry(country string) bool {
	for _, t := range c.TargetCountries {
		if t == country {
			return true
		}
	}
	return false
}
