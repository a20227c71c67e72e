// Package provenance records, per merged record and field, which source won
// the reliability contest and why. The map is reported alongside the output
// so consumers can audit every value back to its origin.
package provenance

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// Entry describes how one field of one merged record got its value.
type Entry struct {
	Source      string `yaml:"source"`
	Reliability int    `yaml:"reliability"`
	Value       any    `yaml:"value"`
	Reason      string `yaml:"reason"`
}

// Selection reasons.
const (
	ReasonHighestReliability = "highest_reliability"
	ReasonOnlyValue          = "only_value"
	ReasonTieAveraged        = "tie_averaged"
	ReasonExtreme            = "extreme"
)

// Map tracks field provenance for all merged records. Keys combine the
// merged record ID with the field path.
type Map map[string][]Entry

// Tracker collects provenance entries during merge.
type Tracker interface {
	// Track records one field decision for a merged record.
	Track(recordID, field string, entry Entry)

	// FindByField returns the entries recorded for one field.
	FindByField(recordID, field string) []Entry

	// FindByRecord returns all entries of one merged record, keyed by
	// field.
	FindByRecord(recordID string) map[string][]Entry

	// Map returns the complete provenance map.
	Map() Map

	// Clear removes all recorded entries.
	Clear()
}

// tracker is the default implementation. A disabled tracker records nothing,
// so pipelines that do not report provenance pay no cost.
type tracker struct {
	entries Map
	enabled bool
}

// NewTracker creates a Tracker. Pass false to disable recording.
func NewTracker(enabled bool) Tracker {
	return &tracker{entries: make(Map), enabled: enabled}
}

// Track implements Tracker.
func (t *tracker) Track(recordID, field string, entry Entry) {
	if !t.enabled {
		return
	}
	key := makeKey(recordID, field)
	t.entries[key] = append(t.entries[key], entry)
}

// FindByField implements Tracker.
func (t *tracker) FindByField(recordID, field string) []Entry {
	if !t.enabled {
		return nil
	}
	return t.entries[makeKey(recordID, field)]
}

// FindByRecord implements Tracker.
func (t *tracker) FindByRecord(recordID string) map[string][]Entry {
	if !t.enabled {
		return nil
	}
	prefix := recordID + ":"
	out := make(map[string][]Entry)
	for key, entries := range t.entries {
		if field, found := strings.CutPrefix(key, prefix); found {
			out[field] = entries
		}
	}
	return out
}

// Map implements Tracker. The returned map is a copy.
func (t *tracker) Map() Map {
	if !t.enabled {
		return nil
	}
	out := make(Map, len(t.entries))
	for k, v := range t.entries {
		out[k] = append([]Entry{}, v...)
	}
	return out
}

// Clear implements Tracker.
func (t *tracker) Clear() {
	t.entries = make(Map)
}

func makeKey(recordID, field string) string {
	return recordID + ":" + field
}

// WriteYAML dumps the map to a YAML file, keys sorted, one document stream.
func (m Map) WriteYAML(path string) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		doc, err := yaml.Marshal(map[string][]Entry{k: m[k]})
		if err != nil {
			return fmt.Errorf("marshal provenance for %s: %w", k, err)
		}
		b.Write(doc)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
