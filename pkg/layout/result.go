package layout

import "github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/area"

// Result is the outcome of a layout run: every recorded snapshot in order,
// plus the index of the first snapshot produced by compaction. Snapshots
// must be treated as read-only.
type Result struct {
	history         []*area.Area
	compactionStart int
	outOfSteps      bool
}

// NewResult wraps an existing history, such as one loaded from disk.
// history must not be empty.
func NewResult(history []*area.Area, compactionStart int, outOfSteps bool) *Result {
	return &Result{
		history:         history,
		compactionStart: min(max(compactionStart, 0), len(history)),
		outOfSteps:      outOfSteps,
	}
}

// Len returns the number of snapshots.
func (r *Result) Len() int { return len(r.history) }

// Steps is an alias for Len.
func (r *Result) Steps() int { return len(r.history) }

// Snapshot returns snapshot i.
func (r *Result) Snapshot(i int) *area.Area { return r.history[i] }

// Snapshots returns all snapshots in order.
func (r *Result) Snapshots() []*area.Area {
	out := make([]*area.Area, len(r.history))
	copy(out, r.history)
	return out
}

// Last returns the final layout.
func (r *Result) Last() *area.Area { return r.history[len(r.history)-1] }

// CompactionStart returns the index of the first compaction snapshot. It
// equals Len when compaction recorded nothing.
func (r *Result) CompactionStart() int { return r.compactionStart }

// OutOfSteps reports whether the run stopped at the step ceiling.
func (r *Result) OutOfSteps() bool { return r.outOfSteps }
