package plants

import "sort"

// Diagnostics accumulates recoverable, per-row issues for one source and
// stage. Diagnostics never abort a run; they are reported alongside the
// output for data-quality feedback.
type Diagnostics struct {
	Source  string         `yaml:"source"`
	Stage   string         `yaml:"stage"`
	RowsIn  int            `yaml:"rows_in"`
	RowsOut int            `yaml:"rows_out"`
	Dropped map[string]int `yaml:"dropped,omitempty"`
}

// NewDiagnostics creates an empty diagnostics bucket for a source/stage.
func NewDiagnostics(source, stage string) *Diagnostics {
	return &Diagnostics{Source: source, Stage: stage, Dropped: make(map[string]int)}
}

// Drop counts one dropped row under the given reason.
func (d *Diagnostics) Drop(reason string) {
	d.Dropped[reason]++
}

// TotalDropped sums dropped rows over all reasons.
func (d *Diagnostics) TotalDropped() int {
	var n int
	for _, c := range d.Dropped {
		n += c
	}
	return n
}

// Reasons returns the drop reasons in sorted order.
func (d *Diagnostics) Reasons() []string {
	out := make([]string, 0, len(d.Dropped))
	for r := range d.Dropped {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
