// Package rollup aggregates dates, cost and progress up the parent/child
// hierarchy and derives each activity's status.
package rollup

import (
	"time"

	"github.com/joshharrison/siteloom/internal/calendar"
	"github.com/joshharrison/siteloom/internal/logger"
	"github.com/joshharrison/siteloom/internal/schedule"
)

// Options controls a rollup.
type Options struct {
	// Today drives status derivation. Zero means the current UTC date.
	Today time.Time
}

// Result is the recalculated tree.
type Result struct {
	Activities []schedule.Activity // natural id order
	Roots      []string
	Children   map[string][]string
	Warnings   []error
}

type tree struct {
	cal      *calendar.Calendar
	today    time.Time
	nodes    map[string]*schedule.Activity
	children map[string][]string
	warnings []error
}

// RecalculateTree rolls leaf data up to every ancestor. Parents receive the
// span of their children's dates, summed costs and budget-weighted progress.
// A parent cycle is a *schedule.CyclicDependencyError and nothing is
// computed. Orphaned parent references promote the node to a root;
// malformed dates are treated as absent. Both are reported in Warnings.
func RecalculateTree(items []schedule.Activity, cal *calendar.Calendar, opts Options) (*Result, error) {
	today := opts.Today
	if today.IsZero() {
		today = time.Now().UTC()
	}
	t := &tree{
		cal:      cal,
		today:    today,
		nodes:    make(map[string]*schedule.Activity, len(items)),
		children: make(map[string][]string),
	}

	ids := make([]string, 0, len(items))
	for i := range items {
		a := items[i].Clone()
		if _, dup := t.nodes[a.ID]; dup {
			return nil, &schedule.ValidationError{ActivityID: a.ID, Reason: "duplicate id"}
		}
		t.nodes[a.ID] = &a
		ids = append(ids, a.ID)
	}
	schedule.SortIDs(ids)

	for _, id := range ids {
		a := t.nodes[id]
		if a.ParentID == "" {
			continue
		}
		if _, ok := t.nodes[a.ParentID]; !ok {
			t.warn(&schedule.OrphanedReferenceWarning{ActivityID: id, Field: "parent", MissingID: a.ParentID})
			a.ParentID = ""
		}
	}

	flat := make([]schedule.Activity, 0, len(ids))
	for _, id := range ids {
		flat = append(flat, *t.nodes[id])
	}
	if cycle := schedule.ParentCycle(flat); cycle != nil {
		return nil, &schedule.CyclicDependencyError{Kind: schedule.CycleParent, Path: cycle}
	}

	var roots []string
	for _, id := range ids {
		if p := t.nodes[id].ParentID; p != "" {
			t.children[p] = append(t.children[p], id)
		} else {
			roots = append(roots, id)
		}
	}

	for _, id := range roots {
		t.process(id)
	}

	res := &Result{Roots: roots, Children: t.children, Warnings: t.warnings}
	for _, id := range ids {
		res.Activities = append(res.Activities, *t.nodes[id])
	}
	logger.Debug("rollup: %d activities, %d roots", len(ids), len(roots))
	return res, nil
}

func (t *tree) warn(err error) {
	logger.Warn("%v", err)
	t.warnings = append(t.warnings, err)
}

func (t *tree) process(id string) {
	a := t.nodes[id]
	kids := t.children[id]
	a.PercentComplete = schedule.ClampPercent(a.PercentComplete)

	if len(kids) == 0 {
		t.date(a, "planned_start", a.PlannedStart)
		t.date(a, "planned_end", a.PlannedEnd)
		if s, e := t.date(a, "actual_start", a.ActualStart), t.date(a, "actual_end", a.ActualEnd); !s.IsZero() && !e.IsZero() {
			a.ActualDurationDays = t.cal.CountWorkingDays(s, e)
		}
		a.Status = t.status(a)
		return
	}

	for _, k := range kids {
		t.process(k)
	}

	var minStart, maxEnd, minActual, maxActual time.Time
	var budget, cost, weighted, pctSum float64
	for _, k := range kids {
		c := t.nodes[k]
		minStart = earliest(minStart, t.date(c, "planned_start", c.PlannedStart))
		maxEnd = latest(maxEnd, t.date(c, "planned_end", c.PlannedEnd))
		minActual = earliest(minActual, t.date(c, "actual_start", c.ActualStart))
		maxActual = latest(maxActual, t.date(c, "actual_end", c.ActualEnd))
		budget += c.BudgetedCost
		cost += c.ActualCost
		weighted += c.PercentComplete * c.BudgetedCost
		pctSum += c.PercentComplete
	}

	a.PlannedStart, a.PlannedEnd = formatOrEmpty(minStart), formatOrEmpty(maxEnd)
	a.DurationDays = t.span(minStart, maxEnd)
	a.ActualStart, a.ActualEnd = formatOrEmpty(minActual), formatOrEmpty(maxActual)
	a.ActualDurationDays = t.span(minActual, maxActual)

	a.BudgetedCost = budget
	a.ActualCost = cost
	if budget > 0 {
		a.PercentComplete = weighted / budget
	} else {
		a.PercentComplete = pctSum / float64(len(kids))
	}
	a.PercentComplete = schedule.ClampPercent(a.PercentComplete)
	a.Status = t.status(a)
}

func (t *tree) span(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	return t.cal.CountWorkingDays(start, end)
}

// date parses an activity date, reporting malformed values once per field.
func (t *tree) date(a *schedule.Activity, field, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	d, err := calendar.ParseDate(value)
	if err != nil {
		t.warn(&schedule.InvalidDateError{ActivityID: a.ID, Field: field, Value: value, Err: err})
		switch field {
		case "planned_start":
			a.PlannedStart = ""
		case "planned_end":
			a.PlannedEnd = ""
		case "actual_start":
			a.ActualStart = ""
		case "actual_end":
			a.ActualEnd = ""
		}
		return time.Time{}
	}
	return d
}

func (t *tree) status(a *schedule.Activity) schedule.Status {
	return DeriveStatus(*a, t.today)
}

// DeriveStatus computes the status of a single activity on the given day.
// Absent or malformed dates skip the date based checks.
func DeriveStatus(a schedule.Activity, today time.Time) schedule.Status {
	day := calendar.FormatDate(today)
	switch {
	case a.PercentComplete >= 100:
		return schedule.StatusCompleted
	case validDate(a.PlannedEnd) && day > a.PlannedEnd:
		return schedule.StatusDelayed
	case a.PercentComplete > 0:
		return schedule.StatusInProgress
	case validDate(a.PlannedStart) && day >= a.PlannedStart:
		return schedule.StatusOnTrack
	}
	return schedule.StatusNotStarted
}

func validDate(s string) bool {
	if s == "" {
		return false
	}
	_, err := calendar.ParseDate(s)
	return err == nil
}

func earliest(cur, d time.Time) time.Time {
	if d.IsZero() {
		return cur
	}
	if cur.IsZero() || d.Before(cur) {
		return d
	}
	return cur
}

func latest(cur, d time.Time) time.Time {
	if d.IsZero() {
		return cur
	}
	if cur.IsZero() || d.After(cur) {
		return d
	}
	return cur
}

func formatOrEmpty(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return calendar.FormatDate(d)
}
