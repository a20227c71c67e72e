// Package textnorm cleans plant names into the normalized form used as a
// similarity feature. The normalized name is never displayed.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalizer applies the deterministic name-cleaning steps: diacritics
// stripping, stop-word removal, separator collapsing and optional token
// deduplication.
type Normalizer struct {
	stopWords   map[string]struct{}
	dedupTokens bool
}

// New creates a Normalizer for the given stop-word list.
func New(stopWords []string, dedupTokens bool) *Normalizer {
	sw := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		sw[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &Normalizer{stopWords: sw, dedupTokens: dedupTokens}
}

// Normalize cleans a raw plant name. Digits, punctuation and other
// non-letter runes become separators; single letters and stop words are
// removed; the remainder is lowercased and space-joined.
func (n *Normalizer) Normalize(name string) string {
	s := StripDiacritics(strings.ToLower(strings.TrimSpace(name)))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	tokens := strings.Fields(b.String())
	out := tokens[:0]
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if len(tok) == 1 {
			continue
		}
		if _, stop := n.stopWords[tok]; stop {
			continue
		}
		if n.dedupTokens {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
		}
		out = append(out, tok)
	}

	return strings.Join(out, " ")
}

// Tokens splits a normalized name into its tokens.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

// StripDiacritics removes diacritical marks from a string by decomposing it
// into NFD form and dropping combining marks.
func StripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
