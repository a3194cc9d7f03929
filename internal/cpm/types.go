package cpm

import "github.com/joshharrison/siteloom/internal/schedule"

// Result holds the complete critical path analysis.
type Result struct {
	Tasks              map[string]*TaskSchedule
	ProjectDuration    int
	CriticalPath       []string // one driving chain, first to last
	CriticalActivities []string // every zero-float activity, topological order
	Waves              []Wave   // parallelizable groups
	TopoOrder          []string
	Activities         []schedule.Activity // copies with CPM fields filled, natural order
	Warnings           []error
}

// TaskSchedule holds the scheduling info for a single activity.
type TaskSchedule struct {
	ActivityID string
	Duration   int
	ES, EF     int // earliest start/finish
	LS, LF     int // latest start/finish
	Float      int
	IsCritical bool
	Wave       int // which parallel wave this belongs to, -1 for parents
}

// Wave represents a group of activities that can run in parallel.
type Wave struct {
	Index       int
	ActivityIDs []string
	IsCritical  bool // true if wave contains critical activities
}

// Compression is the outcome of a what-if duration change. TimeSaved and
// IsWorthIt measure the project finish, not the activity: cutting a
// non-critical activity can shorten it by ActivityDaysCut and still save
// nothing.
type Compression struct {
	ActivityID         string
	OldDuration        int
	NewDuration        int
	ActivityDaysCut    int
	OldProjectDuration int
	NewProjectDuration int
	TimeSaved          int
	IsWorthIt          bool
	WasCritical        bool
}
