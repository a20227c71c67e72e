package plants_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdata/powermerge/pkg/plants"
)

func TestNewMergedIDDeterministic(t *testing.T) {
	a := map[string][]string{"GEO": {"G-2", "G-1"}, "OPSD": {"O-1"}}
	b := map[string][]string{"OPSD": {"O-1"}, "GEO": {"G-1", "G-2"}}

	// Same provenance, any map or slice order: same ID.
	assert.Equal(t, plants.NewMergedID(a), plants.NewMergedID(b))

	c := map[string][]string{"GEO": {"G-1"}, "OPSD": {"O-1"}}
	assert.NotEqual(t, plants.NewMergedID(a), plants.NewMergedID(c))
}

func TestTableSortStable(t *testing.T) {
	table := plants.Table{
		{Source: "B", ProjectIDs: []string{"B-2"}, NormName: "zeta"},
		{Source: "A", ProjectIDs: []string{"A-9"}, NormName: "alpha"},
		{Source: "A", ProjectIDs: []string{"A-1"}, NormName: "beta"},
	}
	table.Sort()
	assert.Equal(t, "A-1", table[0].ProjectIDs[0])
	assert.Equal(t, "A-9", table[1].ProjectIDs[0])
	assert.Equal(t, "B-2", table[2].ProjectIDs[0])
}

func TestByCountryPartitions(t *testing.T) {
	table := plants.Table{
		{Country: "Spain", NormName: "a"},
		{Country: "Portugal", NormName: "b"},
		{Country: "Spain", NormName: "c"},
	}
	parts := table.ByCountry()
	require.Len(t, parts, 2)
	assert.Len(t, parts["Spain"], 2)
	assert.Len(t, parts["Portugal"], 1)
	assert.Equal(t, []string{"Portugal", "Spain"}, table.Countries())
}

func TestMergeEIC(t *testing.T) {
	got := plants.MergeEIC([]string{"B", "A"}, []string{"A", "", "C"})
	assert.Equal(t, []string{"A", "B", "C"}, got)
	assert.Empty(t, plants.MergeEIC(nil, nil))
}

func TestDiagnosticsAccounting(t *testing.T) {
	d := plants.NewDiagnostics("GEO", "standardize")
	d.Drop("missing country")
	d.Drop("missing country")
	d.Drop("unparseable capacity")

	assert.Equal(t, 3, d.TotalDropped())
	assert.Equal(t, []string{"missing country", "unparseable capacity"}, d.Reasons())
}

func TestRecordKey(t *testing.T) {
	r := plants.Record{Source: "GEO", ProjectIDs: []string{"G-1"}, NormName: "aarberg"}
	assert.Equal(t, "GEO/G-1", r.Key())

	r.ProjectIDs = nil
	assert.Equal(t, "GEO/aarberg", r.Key())
}
