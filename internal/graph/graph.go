package graph

import (
	"fmt"

	"github.com/joshharrison/siteloom/internal/logger"
	"github.com/joshharrison/siteloom/internal/schedule"
)

// Build constructs an ActivityGraph from a flat list of activities.
//
// Edges come from both PredecessorIDs and SuccessorIDs so that either side of
// a link is enough. References to unknown activities are dropped and recorded
// in Warnings. Duplicate ids, negative durations and unknown relation types
// are a *schedule.ValidationError; a cycle is a *schedule.CyclicDependencyError.
func Build(activities []schedule.Activity) (*ActivityGraph, error) {
	g := &ActivityGraph{
		Activities: make(map[string]*schedule.Activity, len(activities)),
		Adj:        make(map[string][]string),
		RevAdj:     make(map[string][]string),
	}

	for i := range activities {
		a := activities[i].Clone()
		if a.ID == "" {
			return nil, &schedule.ValidationError{Reason: fmt.Sprintf("activity at index %d has no id", i)}
		}
		if _, dup := g.Activities[a.ID]; dup {
			return nil, &schedule.ValidationError{ActivityID: a.ID, Reason: "duplicate id"}
		}
		if a.DurationDays < 0 {
			return nil, &schedule.ValidationError{ActivityID: a.ID, Reason: fmt.Sprintf("negative duration %d", a.DurationDays)}
		}
		rel, err := schedule.ParseRelationType(string(a.RelationType))
		if err != nil {
			return nil, &schedule.ValidationError{ActivityID: a.ID, Reason: err.Error()}
		}
		a.RelationType = rel
		g.Activities[a.ID] = &a
		g.IDs = append(g.IDs, a.ID)
	}
	schedule.SortIDs(g.IDs)

	edgeSet := make(map[[2]string]bool)
	addEdge := func(from, to string) {
		key := [2]string{from, to}
		if edgeSet[key] {
			return
		}
		edgeSet[key] = true
		g.Adj[from] = append(g.Adj[from], to)
		g.RevAdj[to] = append(g.RevAdj[to], from)
	}

	for _, id := range g.IDs {
		a := g.Activities[id]
		for _, pred := range a.PredecessorIDs {
			if _, ok := g.Activities[pred]; !ok {
				g.warn(&schedule.OrphanedReferenceWarning{ActivityID: id, Field: "predecessor", MissingID: pred})
				continue
			}
			addEdge(pred, id)
		}
		for _, succ := range a.SuccessorIDs {
			if _, ok := g.Activities[succ]; !ok {
				g.warn(&schedule.OrphanedReferenceWarning{ActivityID: id, Field: "successor", MissingID: succ})
				continue
			}
			addEdge(id, succ)
		}
	}

	// Sort adjacency lists for deterministic ordering
	for k := range g.Adj {
		schedule.SortIDs(g.Adj[k])
	}
	for k := range g.RevAdj {
		schedule.SortIDs(g.RevAdj[k])
	}

	// Write the merged links back so both lists agree on every node.
	for _, id := range g.IDs {
		a := g.Activities[id]
		a.PredecessorIDs = append([]string(nil), g.RevAdj[id]...)
		a.SuccessorIDs = append([]string(nil), g.Adj[id]...)
	}

	for _, id := range g.IDs {
		if len(g.RevAdj[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Adj[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}

	if cycle := g.DetectCycle(); cycle != nil {
		return nil, &schedule.CyclicDependencyError{Kind: schedule.CyclePredecessor, Path: cycle}
	}

	return g, nil
}

func (g *ActivityGraph) warn(w *schedule.OrphanedReferenceWarning) {
	logger.Warn("%v", w)
	g.Warnings = append(g.Warnings, w)
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
// A self reference is reported as the two-element path [id id].
func (g *ActivityGraph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.Adj[node] {
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range g.IDs {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// ActivityCount returns the number of activities in the graph.
func (g *ActivityGraph) ActivityCount() int {
	return len(g.Activities)
}

// Filter returns a new graph containing only activities matching the
// predicate. Links to filtered-out activities are removed, not reported.
func (g *ActivityGraph) Filter(pred func(*schedule.Activity) bool) (*ActivityGraph, error) {
	keep := make(map[string]bool)
	for _, id := range g.IDs {
		if pred(g.Activities[id]) {
			keep[id] = true
		}
	}

	var filtered []schedule.Activity
	for _, id := range g.IDs {
		if !keep[id] {
			continue
		}
		a := g.Activities[id].Clone()
		a.PredecessorIDs = onlyKept(a.PredecessorIDs, keep)
		a.SuccessorIDs = onlyKept(a.SuccessorIDs, keep)
		filtered = append(filtered, a)
	}
	return Build(filtered)
}

func onlyKept(ids []string, keep map[string]bool) []string {
	var out []string
	for _, id := range ids {
		if keep[id] {
			out = append(out, id)
		}
	}
	return out
}
