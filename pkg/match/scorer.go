package match

import (
	"github.com/emberdata/powermerge/pkg/config"
	"github.com/emberdata/powermerge/pkg/plants"
)

// Scorer computes the composite similarity of a record pair.
type Scorer struct {
	matching config.Matching
}

// NewScorer creates a Scorer from the matching configuration.
func NewScorer(matching config.Matching) *Scorer {
	return &Scorer{matching: matching}
}

// Score returns the composite similarity in [0, 1]. A country mismatch is a
// hard veto and always scores 0. Comparators that abstain for lack of data
// have their weight renormalized over the ones that answered; a pair where
// every comparator abstains scores 0.
func (s *Scorer) Score(a, b *plants.Record) float64 {
	if a.Country != b.Country {
		return 0
	}
	// Shared external identifiers decide immediately.
	if sharesEIC(a, b) {
		return 1
	}

	w := s.matching.Weights
	parts := [5]struct {
		weight float64
		value  float64
	}{
		{w.Name, nameSimilarity(a, b)},
		{w.Geo, geoSimilarity(a, b, s.matching.GeoRadiusKM)},
		{w.Capacity, capacitySimilarity(a, b, s.matching.CapacityTolerance)},
		{w.Fueltype, fueltypeSimilarity(a, b)},
		{w.Technology, technologySimilarity(a, b)},
	}

	var sum, weight float64
	for _, p := range parts {
		if p.weight <= 0 || p.value == abstain {
			continue
		}
		sum += p.weight * p.value
		weight += p.weight
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}

// Matches reports whether the pair clears the linkage threshold.
func (s *Scorer) Matches(a, b *plants.Record) bool {
	return s.Score(a, b) >= s.matching.Threshold
}

func sharesEIC(a, b *plants.Record) bool {
	if len(a.EIC) == 0 || len(b.EIC) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a.EIC))
	for _, c := range a.EIC {
		set[c] = struct{}{}
	}
	for _, c := range b.EIC {
		if _, ok := set[c]; ok {
			return true
		}
	}
	return false
}
