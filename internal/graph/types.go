package graph

import "github.com/joshharrison/siteloom/internal/schedule"

// ActivityGraph is the predecessor graph of a schedule, keyed by activity id.
// Activities are private copies; callers' slices are never touched.
type ActivityGraph struct {
	Activities map[string]*schedule.Activity
	IDs        []string            // all ids, natural order
	Adj        map[string][]string // activity -> its successors
	RevAdj     map[string][]string // activity -> its predecessors
	Roots      []string            // activities with no predecessors
	Leaves     []string            // activities with no successors
	Warnings   []error             // dropped references, as *schedule.OrphanedReferenceWarning
}
