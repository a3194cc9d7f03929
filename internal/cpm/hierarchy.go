package cpm

import (
	"github.com/joshharrison/siteloom/internal/schedule"
)

// hierarchy indexes the parent/child links of an activity list. Parent ids
// that name no activity are ignored.
type hierarchy struct {
	byID     map[string]*schedule.Activity
	children map[string][]string
}

func newHierarchy(activities []schedule.Activity) *hierarchy {
	h := &hierarchy{
		byID:     make(map[string]*schedule.Activity, len(activities)),
		children: make(map[string][]string),
	}
	for i := range activities {
		h.byID[activities[i].ID] = &activities[i]
	}
	for _, a := range activities {
		if _, ok := h.byID[a.ParentID]; ok && a.ParentID != "" {
			h.children[a.ParentID] = append(h.children[a.ParentID], a.ID)
		}
	}
	for k := range h.children {
		schedule.SortIDs(h.children[k])
	}
	return h
}

func (h *hierarchy) isParent(id string) bool {
	return len(h.children[id]) > 0
}

func (h *hierarchy) parent(id string) string {
	a, ok := h.byID[id]
	if !ok {
		return ""
	}
	if _, ok := h.byID[a.ParentID]; !ok {
		return ""
	}
	return a.ParentID
}

// leaves returns the leaf descendants of id, or id itself for a leaf.
func (h *hierarchy) leaves(id string) []string {
	kids := h.children[id]
	if len(kids) == 0 {
		return []string{id}
	}
	var out []string
	for _, k := range kids {
		out = append(out, h.leaves(k)...)
	}
	return out
}

// expand replaces every parent in ids with its leaves.
func (h *hierarchy) expand(ids []string) []string {
	var out []string
	for _, id := range ids {
		out = append(out, h.leaves(id)...)
	}
	return out
}

// LeafNetwork returns the schedulable network of a parent/child tree. An
// activity with children is an aggregate and is left out: links naming it,
// and links it names, move onto each of its leaf descendants. A leaf with no
// predecessors of its own takes the relation type and lag of the nearest
// ancestor that has some. A parent loop yields *schedule.CyclicDependencyError.
func LeafNetwork(activities []schedule.Activity) ([]schedule.Activity, error) {
	if cycle := schedule.ParentCycle(activities); cycle != nil {
		return nil, &schedule.CyclicDependencyError{Kind: schedule.CycleParent, Path: cycle}
	}
	h := newHierarchy(activities)
	if len(h.children) == 0 {
		return schedule.CloneAll(activities), nil
	}

	var out []schedule.Activity
	for _, a := range activities {
		if h.isParent(a.ID) {
			continue
		}
		n := a.Clone()
		preds := h.expand(a.PredecessorIDs)
		succs := h.expand(a.SuccessorIDs)
		adopt := len(a.PredecessorIDs) == 0
		for anc := h.parent(a.ID); anc != ""; anc = h.parent(anc) {
			pa := h.byID[anc]
			if adopt && len(pa.PredecessorIDs) > 0 {
				n.RelationType, n.LagDays = pa.RelationType, pa.LagDays
				adopt = false
			}
			preds = append(preds, h.expand(pa.PredecessorIDs)...)
			succs = append(succs, h.expand(pa.SuccessorIDs)...)
		}
		n.PredecessorIDs = unique(preds)
		n.SuccessorIDs = unique(succs)
		out = append(out, n)
	}
	return out, nil
}

// AnalyzeTree runs CPM over the leaves of a parent/child tree. A parent's
// own DurationDays is never scheduled; its CPM fields span its leaves
// (earliest ES and LS, latest EF and LF, least float) and it is critical
// when any leaf is. Parents appear in Result.Activities and Result.Tasks,
// with Wave -1, but not in waves or the critical path.
func AnalyzeTree(activities []schedule.Activity) (*Result, error) {
	network, err := LeafNetwork(activities)
	if err != nil {
		return nil, err
	}
	result, err := Analyze(network)
	if err != nil {
		return nil, err
	}

	h := newHierarchy(activities)
	if len(h.children) == 0 {
		return result, nil
	}

	for _, a := range activities {
		if !h.isParent(a.ID) {
			continue
		}
		ts := &TaskSchedule{ActivityID: a.ID, Wave: -1}
		first := true
		for _, leaf := range h.leaves(a.ID) {
			lt, ok := result.Tasks[leaf]
			if !ok {
				continue
			}
			if first {
				ts.ES, ts.EF, ts.LS, ts.LF, ts.Float = lt.ES, lt.EF, lt.LS, lt.LF, lt.Float
				first = false
			}
			ts.ES = min(ts.ES, lt.ES)
			ts.LS = min(ts.LS, lt.LS)
			ts.EF = max(ts.EF, lt.EF)
			ts.LF = max(ts.LF, lt.LF)
			ts.Float = min(ts.Float, lt.Float)
			ts.IsCritical = ts.IsCritical || lt.IsCritical
		}
		ts.Duration = ts.EF - ts.ES
		result.Tasks[a.ID] = ts

		c := a.Clone()
		c.EarlyStart, c.EarlyFinish = ts.ES, ts.EF
		c.LateStart, c.LateFinish = ts.LS, ts.LF
		c.Float, c.IsCritical = ts.Float, ts.IsCritical
		result.Activities = append(result.Activities, c)
	}
	schedule.SortActivities(result.Activities)
	return result, nil
}

func unique(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
