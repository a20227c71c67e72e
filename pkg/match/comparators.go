// Package match links records describing the same physical plant across
// sources. Candidate pairs are generated per country (optionally restricted
// to coarse spatial buckets), scored by a weighted comparator composite and
// folded into match groups through union-find.
package match

import (
	"sort"

	"github.com/agnivade/levenshtein"

	"github.com/emberdata/powermerge/internal/geo"
	"github.com/emberdata/powermerge/internal/textnorm"
	"github.com/emberdata/powermerge/pkg/plants"
)

// abstain marks a comparator that cannot judge a pair for lack of data. Its
// weight is redistributed over the comparators that did answer.
const abstain = -1.0

// nameSimilarity compares normalized names with a token-set Levenshtein
// ratio: tokens of both names are deduplicated, sorted and rejoined before
// the edit distance is taken, so word order and repetition do not matter.
func nameSimilarity(a, b *plants.Record) float64 {
	if a.NormName == "" || b.NormName == "" {
		return abstain
	}
	sa := tokenSet(a.NormName)
	sb := tokenSet(b.NormName)
	if sa == sb {
		return 1
	}
	dist := levenshtein.ComputeDistance(sa, sb)
	longest := len([]rune(sa))
	if l := len([]rune(sb)); l > longest {
		longest = l
	}
	if longest == 0 {
		return abstain
	}
	sim := 1 - float64(dist)/float64(longest)
	if sim < 0 {
		return 0
	}
	return sim
}

func tokenSet(normName string) string {
	tokens := textnorm.Tokens(normName)
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	joined := ""
	for i, t := range out {
		if i > 0 {
			joined += " "
		}
		joined += t
	}
	return joined
}

// geoSimilarity decays linearly from 1 at zero distance to 0 at radiusKM.
// Pairs missing coordinates on either side abstain.
func geoSimilarity(a, b *plants.Record, radiusKM float64) float64 {
	if !a.HasCoords() || !b.HasCoords() {
		return abstain
	}
	d := geo.HaversineKM(*a.Lat, *a.Lon, *b.Lat, *b.Lon)
	if d >= radiusKM {
		return 0
	}
	return 1 - d/radiusKM
}

// capacitySimilarity decays linearly with the relative capacity difference,
// reaching 0 at the configured tolerance. Unknown capacities abstain.
func capacitySimilarity(a, b *plants.Record, tolerance float64) float64 {
	if a.CapacityMW <= 0 || b.CapacityMW <= 0 {
		return abstain
	}
	larger := a.CapacityMW
	if b.CapacityMW > larger {
		larger = b.CapacityMW
	}
	rel := (larger - min64(a.CapacityMW, b.CapacityMW)) / larger
	if rel >= tolerance {
		return 0
	}
	return 1 - rel/tolerance
}

// fueltypeSimilarity is exact agreement on the resolved category.
func fueltypeSimilarity(a, b *plants.Record) float64 {
	if a.Fueltype == "" || b.Fueltype == "" {
		return abstain
	}
	if a.Fueltype == b.Fueltype {
		return 1
	}
	return 0
}

// technologySimilarity is exact agreement, softened because technology
// labels are the noisiest feature upstream sources report.
func technologySimilarity(a, b *plants.Record) float64 {
	if a.Technology == "" || b.Technology == "" {
		return abstain
	}
	if a.Technology == b.Technology {
		return 1
	}
	return 0.25
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
