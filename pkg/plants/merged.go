package plants

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// idNamespace scopes deterministic merged-record IDs. Generated once; the
// same provenance always yields the same output ID across runs.
var idNamespace = uuid.MustParse("9a1d64c6-32b7-5e21-8f40-6f1f0b7c9d55")

// MergedRecord is one output row per match group. It carries the canonical
// record attributes plus full provenance: every contributing project ID of
// every contributing source.
type MergedRecord struct {
	// ID is a synthetic, deterministic identifier derived from the
	// record's provenance.
	ID string `yaml:"id"`

	Name       string `yaml:"name"`
	Fueltype   string `yaml:"fueltype,omitempty"`
	Technology string `yaml:"technology,omitempty"`
	Set        string `yaml:"set,omitempty"`
	Country    string `yaml:"country"`

	CapacityMW float64  `yaml:"capacity_mw"`
	Efficiency *float64 `yaml:"efficiency,omitempty"`

	DateIn       *int `yaml:"date_in,omitempty"`
	DateRetrofit *int `yaml:"date_retrofit,omitempty"`
	DateMothball *int `yaml:"date_mothball,omitempty"`
	DateOut      *int `yaml:"date_out,omitempty"`

	Lat *float64 `yaml:"lat,omitempty"`
	Lon *float64 `yaml:"lon,omitempty"`

	DurationH          *float64 `yaml:"duration_h,omitempty"`
	VolumeMm3          *float64 `yaml:"volume_mm3,omitempty"`
	DamHeightM         *float64 `yaml:"dam_height_m,omitempty"`
	StorageCapacityMWh *float64 `yaml:"storage_capacity_mwh,omitempty"`

	EIC []string `yaml:"eic,omitempty"`

	// ProjectIDs maps each contributing source name to the sorted list
	// of its original project identifiers. No contributing identifier is
	// ever dropped.
	ProjectIDs map[string][]string `yaml:"project_ids"`

	// Sources lists the contributing source names in sorted order.
	Sources []string `yaml:"sources"`
}

// NewMergedID derives the deterministic output identifier from the full
// provenance of a merged record.
func NewMergedID(projectIDs map[string][]string) string {
	sources := make([]string, 0, len(projectIDs))
	for src := range projectIDs {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	var sb strings.Builder
	for _, src := range sources {
		ids := append([]string(nil), projectIDs[src]...)
		sort.Strings(ids)
		sb.WriteString(src)
		sb.WriteByte('=')
		sb.WriteString(strings.Join(ids, ","))
		sb.WriteByte(';')
	}
	return uuid.NewSHA1(idNamespace, []byte(sb.String())).String()
}

// SourceNames returns the sorted contributing source names.
func SourceNames(projectIDs map[string][]string) []string {
	out := make([]string, 0, len(projectIDs))
	for src := range projectIDs {
		out = append(out, src)
	}
	sort.Strings(out)
	return out
}

// MergedTable is the ordered output of the merger.
type MergedTable []MergedRecord

// Sort orders merged records deterministically by country, then name,
// then ID.
func (t MergedTable) Sort() {
	sort.SliceStable(t, func(i, j int) bool {
		if t[i].Country != t[j].Country {
			return t[i].Country < t[j].Country
		}
		if t[i].Name != t[j].Name {
			return t[i].Name < t[j].Name
		}
		return t[i].ID < t[j].ID
	})
}

// ProjectIDSet returns every project ID referenced by the table, keyed by
// source.
func (t MergedTable) ProjectIDSet() map[string][]string {
	out := make(map[string][]string)
	for i := range t {
		for src, ids := range t[i].ProjectIDs {
			out[src] = append(out[src], ids...)
		}
	}
	for src := range out {
		sort.Strings(out[src])
	}
	return out
}
