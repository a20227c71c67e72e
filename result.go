package powermerge

import (
	"github.com/emberdata/powermerge/pkg/merge"
	"github.com/emberdata/powermerge/pkg/plants"
	"github.com/emberdata/powermerge/pkg/provenance"
)

// Result is the complete output of one pipeline run.
type Result struct {
	// Merged is the deduplicated plant table, deterministically ordered.
	Merged plants.MergedTable

	// Unmatched reports every input record that did not reach the output,
	// with the reason.
	Unmatched []merge.Unmatched

	// Diagnostics carries per-source, per-stage row accounting.
	Diagnostics []*plants.Diagnostics

	// Provenance maps merged record fields to their winning sources.
	// Empty unless the pipeline was built with WithProvenance.
	Provenance provenance.Map

	// Filled counts gap-filling heuristic writes per field.
	Filled map[string]int

	// Stats summarizes the run.
	Stats Stats
}

// Stats are the headline numbers of a run.
type Stats struct {
	RowsIn          int
	PlantsIn        int
	Merged          int
	Unmatched       int
	TotalCapacityMW float64
	Countries       int
}
