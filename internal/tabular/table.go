// Package tabular reads and writes the rectangular tables exchanged at the
// pipeline boundary. Upstream collaborators deliver per-source tables in
// this form; the standardizer owns all renaming and value mapping.
package tabular

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/emberdata/powermerge/pkg/errors"
)

// Table is a rectangular table with raw, source-specific column names.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns a name-to-position map for the header.
func (t *Table) ColumnIndex() map[string]int {
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		idx[c] = i
	}
	return idx
}

// ReadCSV loads a CSV file into a Table. The first row is the header.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are dropped later, not fatal here

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	if len(records) == 0 {
		return nil, errors.NewParseError(path, 0, "", "empty file", nil)
	}

	return &Table{Columns: records[0], Rows: records[1:]}, nil
}

// WriteCSV writes a Table to a CSV file, header first.
func WriteCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return errors.WrapIO("write", path, err)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Fingerprint returns a stable content hash of the table, used as the cache
// key component for standardized snapshots.
func (t *Table) Fingerprint() string {
	h := fnvHash()
	for _, c := range t.Columns {
		h.write(c)
	}
	for _, row := range t.Rows {
		for _, cell := range row {
			h.write(cell)
		}
	}
	return fmt.Sprintf("%016x", h.sum)
}

// fnv64a, inlined to keep the dependency surface of this package at
// encoding/csv only.
type fnv struct{ sum uint64 }

func fnvHash() *fnv { return &fnv{sum: 1469598103934665603} }

func (h *fnv) write(s string) {
	for i := 0; i < len(s); i++ {
		h.sum ^= uint64(s[i])
		h.sum *= 1099511628211
	}
	h.sum ^= 0x1f
	h.sum *= 1099511628211
}
