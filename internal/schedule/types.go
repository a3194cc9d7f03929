package schedule

import (
	"fmt"
	"sort"
	"strconv"
)

// RelationType is the dependency type between an activity and its predecessors.
type RelationType string

const (
	FinishToStart  RelationType = "FS"
	StartToStart   RelationType = "SS"
	FinishToFinish RelationType = "FF"
	StartToFinish  RelationType = "SF"
)

// ParseRelationType normalises a relation string. Empty means FS.
func ParseRelationType(s string) (RelationType, error) {
	switch RelationType(s) {
	case "":
		return FinishToStart, nil
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return RelationType(s), nil
	}
	return "", fmt.Errorf("unknown relation type %q (use FS, SS, FF or SF)", s)
}

// Status is the derived progress state of an activity.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusOnTrack    Status = "on_track"
	StatusInProgress Status = "in_progress"
	StatusDelayed    Status = "delayed"
	StatusCompleted  Status = "completed"
)

// Activity is a single schedule node. Leaf activities carry cost and progress
// inputs; parent activities are aggregates of their children.
type Activity struct {
	ID             string       `json:"id" yaml:"id"`
	Name           string       `json:"name" yaml:"name"`
	DurationDays   int          `json:"duration_days" yaml:"duration_days"`
	PredecessorIDs []string     `json:"predecessor_ids,omitempty" yaml:"predecessor_ids,omitempty"`
	SuccessorIDs   []string     `json:"successor_ids,omitempty" yaml:"successor_ids,omitempty"`
	RelationType   RelationType `json:"relation_type,omitempty" yaml:"relation_type,omitempty"`
	LagDays        int          `json:"lag_days,omitempty" yaml:"lag_days,omitempty"`
	ParentID       string       `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`

	// Computed by the CPM engine. Never trusted from input.
	EarlyStart  int  `json:"early_start" yaml:"early_start"`
	EarlyFinish int  `json:"early_finish" yaml:"early_finish"`
	LateStart   int  `json:"late_start" yaml:"late_start"`
	LateFinish  int  `json:"late_finish" yaml:"late_finish"`
	Float       int  `json:"float" yaml:"float"`
	IsCritical  bool `json:"is_critical" yaml:"is_critical"`

	PlannedStart       string  `json:"planned_start,omitempty" yaml:"planned_start,omitempty"`
	PlannedEnd         string  `json:"planned_end,omitempty" yaml:"planned_end,omitempty"`
	ActualStart        string  `json:"actual_start,omitempty" yaml:"actual_start,omitempty"`
	ActualEnd          string  `json:"actual_end,omitempty" yaml:"actual_end,omitempty"`
	ActualDurationDays int     `json:"actual_duration_days,omitempty" yaml:"actual_duration_days,omitempty"`
	PercentComplete    float64 `json:"percent_complete" yaml:"percent_complete"`
	BudgetedCost       float64 `json:"budgeted_cost" yaml:"budgeted_cost"`
	ActualCost         float64 `json:"actual_cost" yaml:"actual_cost"`
	Responsible        string  `json:"responsible,omitempty" yaml:"responsible,omitempty"`
	Status             Status  `json:"status,omitempty" yaml:"status,omitempty"`
}

// Relation returns the activity's relation type, defaulting to FS.
func (a *Activity) Relation() RelationType {
	if a.RelationType == "" {
		return FinishToStart
	}
	return a.RelationType
}

// ClearComputed zeroes the CPM fields so stale values never leak through.
func (a *Activity) ClearComputed() {
	a.EarlyStart, a.EarlyFinish = 0, 0
	a.LateStart, a.LateFinish = 0, 0
	a.Float = 0
	a.IsCritical = false
}

// Clone returns a deep copy of the activity.
func (a Activity) Clone() Activity {
	c := a
	c.PredecessorIDs = append([]string(nil), a.PredecessorIDs...)
	c.SuccessorIDs = append([]string(nil), a.SuccessorIDs...)
	return c
}

// CloneAll deep copies a slice of activities.
func CloneAll(activities []Activity) []Activity {
	if activities == nil {
		return nil
	}
	out := make([]Activity, len(activities))
	for i := range activities {
		out[i] = activities[i].Clone()
	}
	return out
}

// ClampPercent limits a completion percentage to [0, 100].
func ClampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// LessID orders ids naturally: numeric ids compare as numbers, everything
// else lexically, and numbers sort before non-numbers.
func LessID(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// SortIDs sorts ids in place using LessID.
func SortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return LessID(ids[i], ids[j]) })
}

// SortActivities sorts activities in place by id.
func SortActivities(activities []Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return LessID(activities[i].ID, activities[j].ID)
	})
}
