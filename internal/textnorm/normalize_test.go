package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripDiacritics(t *testing.T) {
	assert.Equal(t, "aarberg", StripDiacritics("aarberg"))
	assert.Equal(t, "kernkraftwerk grundremmingen", StripDiacritics("kernkraftwerk gründremmingen"))
	assert.Equal(t, "penarroya", StripDiacritics("peñarroya"))
	assert.Equal(t, "celakovice", StripDiacritics("čelákovice"))
}

func TestNormalizeDropsStopWordsAndDigits(t *testing.T) {
	n := New([]string{"power", "plant", "station", "ii", "iii"}, false)

	assert.Equal(t, "aarberg", n.Normalize("Aarberg Power Plant II"))
	assert.Equal(t, "niederbipp", n.Normalize("Niederbipp-Station (3)"))
	// Single letters are always removed.
	assert.Equal(t, "walsum", n.Normalize("Walsum B 9"))
}

func TestNormalizeSeparators(t *testing.T) {
	n := New(nil, false)
	assert.Equal(t, "san pedro de riudevitlles", n.Normalize("San-Pedro/de_Riudevitlles"))
	assert.Equal(t, "", n.Normalize("4711 / 42"))
}

func TestNormalizeTokenDedup(t *testing.T) {
	dedup := New(nil, true)
	keep := New(nil, false)
	assert.Equal(t, "vianden", dedup.Normalize("Vianden Vianden"))
	assert.Equal(t, "vianden vianden", keep.Normalize("Vianden Vianden"))
}

func TestNormalizeIsDeterministic(t *testing.T) {
	n := New([]string{"de", "la"}, true)
	in := "Central Térmica de La Robla II"
	first := n.Normalize(in)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, n.Normalize(in))
	}
}
