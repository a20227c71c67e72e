package config

// SourceConfig declares one upstream dataset.
type SourceConfig struct {
	// Name identifies the source everywhere in the pipeline.
	Name string `yaml:"name"`

	// Reliability is the source-level reliability score used to break
	// field-level conflicts during merge. Higher wins.
	Reliability int `yaml:"reliability"`

	// PreAggregated sources already report plant-level totals and
	// bypass unit aggregation.
	PreAggregated bool `yaml:"pre_aggregated"`

	// GrossCapacity marks sources reporting gross rather than net
	// capacity.
	GrossCapacity bool `yaml:"gross_capacity"`

	// Columns maps raw source-specific column names onto the canonical
	// schema. Canonical-named columns pass through unmapped.
	Columns map[string]string `yaml:"columns,omitempty"`

	// Filter is an optional per-source row filter applied before the
	// row enters the rest of the pipeline.
	Filter *RowFilter `yaml:"filter,omitempty"`
}

// RowFilter is a boolean row query: a row passes when it satisfies every
// configured clause.
type RowFilter struct {
	// Countries whitelists countries for this source.
	Countries []string `yaml:"countries,omitempty"`

	// ExcludeFueltypes drops rows with these resolved fueltypes.
	ExcludeFueltypes []string `yaml:"exclude_fueltypes,omitempty"`

	// MinCapacityMW drops rows below this capacity.
	MinCapacityMW float64 `yaml:"min_capacity_mw,omitempty"`
}

// AllowsCountry reports whether the filter admits the country.
func (f *RowFilter) AllowsCountry(country string) bool {
	if f == nil || len(f.Countries) == 0 {
		return true
	}
	for _, c := range f.Countries {
		if c == country {
			return true
		}
	}
	return false
}

// AllowsFueltype reports whether the filter admits the fueltype.
func (f *RowFilter) AllowsFueltype(fueltype string) bool {
	if f == nil {
		return true
	}
	for _, ft := range f.ExcludeFueltypes {
		if ft == fueltype {
			return false
		}
	}
	return true
}

// AllowsCapacity reports whether the filter admits the capacity.
func (f *RowFilter) AllowsCapacity(capacityMW float64) bool {
	if f == nil {
		return true
	}
	return capacityMW >= f.MinCapacityMW
}
