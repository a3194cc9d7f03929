package cpm

import (
	"errors"
	"fmt"
	"sort"

	"github.com/joshharrison/siteloom/internal/graph"
	"github.com/joshharrison/siteloom/internal/logger"
	"github.com/joshharrison/siteloom/internal/schedule"
)

// Analyze performs critical path method analysis on a set of activities.
// The caller's slice is not modified; computed values are returned on
// Result.Activities. A cycle yields *schedule.CyclicDependencyError and no
// partial result.
func Analyze(activities []schedule.Activity) (*Result, error) {
	g, err := graph.Build(activities)
	if err != nil {
		return nil, err
	}
	return AnalyzeGraph(g)
}

// AnalyzeGraph runs the forward and backward passes over a built graph.
func AnalyzeGraph(g *graph.ActivityGraph) (*Result, error) {
	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Tasks:     make(map[string]*TaskSchedule),
		TopoOrder: order,
		Warnings:  g.Warnings,
	}

	for _, id := range order {
		result.Tasks[id] = &TaskSchedule{ActivityID: id, Duration: g.Activities[id].DurationDays}
	}

	// Forward pass: compute ES and EF
	for _, id := range order {
		ts := result.Tasks[id]
		a := g.Activities[id]
		es := 0
		for _, pred := range g.RevAdj[id] {
			if c := earliestStart(a.Relation(), a.LagDays, ts.Duration, result.Tasks[pred]); c > es {
				es = c
			}
		}
		ts.ES = es
		ts.EF = es + ts.Duration
	}

	// Project duration
	for _, ts := range result.Tasks {
		if ts.EF > result.ProjectDuration {
			result.ProjectDuration = ts.EF
		}
	}
	total := result.ProjectDuration

	// Backward pass in reverse topological order
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		ts := result.Tasks[id]
		lf := total
		for _, succ := range g.Adj[id] {
			s := g.Activities[succ]
			if c := latestFinish(s.Relation(), s.LagDays, ts.Duration, result.Tasks[succ]); c < lf {
				lf = c
			}
		}
		ts.LF = lf
		ts.LS = lf - ts.Duration
		ts.Float = ts.LS - ts.ES
		ts.IsCritical = ts.Float == 0
	}

	for _, id := range order {
		if result.Tasks[id].IsCritical {
			result.CriticalActivities = append(result.CriticalActivities, id)
		}
	}
	result.CriticalPath = criticalChain(result, g)
	result.Waves = computeWaves(result)

	for _, id := range g.IDs {
		a := g.Activities[id].Clone()
		ts := result.Tasks[id]
		a.EarlyStart, a.EarlyFinish = ts.ES, ts.EF
		a.LateStart, a.LateFinish = ts.LS, ts.LF
		a.Float = ts.Float
		a.IsCritical = ts.IsCritical
		result.Activities = append(result.Activities, a)
	}

	logger.Debug("cpm: %d activities, duration %d, %d critical", len(order), total, len(result.CriticalActivities))
	return result, nil
}

// earliestStart is the ES an activity of the given duration must respect
// because of one predecessor.
func earliestStart(rel schedule.RelationType, lag, duration int, pred *TaskSchedule) int {
	switch rel {
	case schedule.StartToStart:
		return pred.ES + lag
	case schedule.FinishToFinish:
		return pred.EF + lag - duration
	case schedule.StartToFinish:
		return pred.ES + lag - duration
	default:
		return pred.EF + lag
	}
}

// latestFinish is the LF an activity of the given duration must respect
// because of one successor linked with rel and lag.
func latestFinish(rel schedule.RelationType, lag, duration int, succ *TaskSchedule) int {
	switch rel {
	case schedule.StartToStart:
		return succ.LS - lag + duration
	case schedule.FinishToFinish:
		return succ.LF - lag
	case schedule.StartToFinish:
		return succ.LF - lag + duration
	default:
		return succ.LS - lag
	}
}

// DetectCycle reports whether the predecessor links of activities form a cycle.
func DetectCycle(activities []schedule.Activity) bool {
	_, err := graph.Build(activities)
	var cyc *schedule.CyclicDependencyError
	return errors.As(err, &cyc)
}

// SimulateCompression recomputes the schedule with one activity set to
// newDuration and reports the effect on the project. Parents are handled as
// in AnalyzeTree, so changing a parent's duration saves nothing.
func SimulateCompression(activities []schedule.Activity, id string, newDuration int) (*Compression, error) {
	if newDuration < 0 {
		return nil, &schedule.ValidationError{ActivityID: id, Reason: fmt.Sprintf("negative duration %d", newDuration)}
	}

	before, err := AnalyzeTree(activities)
	if err != nil {
		return nil, err
	}
	ts, ok := before.Tasks[id]
	if !ok {
		return nil, fmt.Errorf("simulate %s: %w", id, schedule.ErrActivityNotFound)
	}

	changed := schedule.CloneAll(activities)
	for i := range changed {
		if changed[i].ID == id {
			changed[i].DurationDays = newDuration
		}
	}
	after, err := AnalyzeTree(changed)
	if err != nil {
		return nil, err
	}

	c := &Compression{
		ActivityID:         id,
		OldDuration:        ts.Duration,
		NewDuration:        newDuration,
		ActivityDaysCut:    ts.Duration - newDuration,
		OldProjectDuration: before.ProjectDuration,
		NewProjectDuration: after.ProjectDuration,
		TimeSaved:          before.ProjectDuration - after.ProjectDuration,
		WasCritical:        ts.IsCritical,
	}
	c.IsWorthIt = c.TimeSaved > 0
	return c, nil
}

// topoSort performs Kahn's algorithm for topological sorting.
func topoSort(g *graph.ActivityGraph) ([]string, error) {
	inDegree := make(map[string]int)
	for id := range g.Activities {
		inDegree[id] = len(g.RevAdj[id])
	}

	// Start with roots (in-degree 0), naturally ordered for determinism
	queue := append([]string(nil), g.Roots...)

	var order []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var newReady []string
		for _, succ := range g.Adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newReady = append(newReady, succ)
			}
		}
		schedule.SortIDs(newReady)
		queue = append(queue, newReady...)
	}

	if len(order) != len(g.Activities) {
		return nil, &schedule.CyclicDependencyError{Kind: schedule.CyclePredecessor, Path: g.DetectCycle()}
	}

	return order, nil
}

// criticalChain walks backward from the terminal critical activity that
// finishes the project, following the predecessor that drives each step.
// Without such a terminal activity the first critical activity finishing the
// project is used.
func criticalChain(result *Result, g *graph.ActivityGraph) []string {
	var end, fallback string
	for _, id := range result.TopoOrder {
		ts := result.Tasks[id]
		if !ts.IsCritical || ts.EF != result.ProjectDuration {
			continue
		}
		if len(g.Adj[id]) == 0 {
			end = id
			break
		}
		if fallback == "" {
			fallback = id
		}
	}
	if end == "" {
		end = fallback
	}
	if end == "" {
		return nil
	}

	chain := []string{end}
	for cur := end; ; {
		next := drivingPredecessor(result, g, cur)
		if next == "" {
			break
		}
		chain = append(chain, next)
		cur = next
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// drivingPredecessor picks the critical predecessor whose constraint sets
// id's early start. Falls back to any critical predecessor.
func drivingPredecessor(result *Result, g *graph.ActivityGraph, id string) string {
	a := g.Activities[id]
	ts := result.Tasks[id]
	fallback := ""
	for _, pred := range g.RevAdj[id] {
		pts := result.Tasks[pred]
		if !pts.IsCritical {
			continue
		}
		if earliestStart(a.Relation(), a.LagDays, ts.Duration, pts) == ts.ES {
			return pred
		}
		if fallback == "" {
			fallback = pred
		}
	}
	return fallback
}

// computeWaves groups activities by their earliest start time.
func computeWaves(result *Result) []Wave {
	esGroups := make(map[int][]string)
	for _, id := range result.TopoOrder {
		es := result.Tasks[id].ES
		esGroups[es] = append(esGroups[es], id)
	}

	esValues := make([]int, 0, len(esGroups))
	for es := range esGroups {
		esValues = append(esValues, es)
	}
	sort.Ints(esValues)

	waves := make([]Wave, len(esValues))
	for i, es := range esValues {
		ids := esGroups[es]
		schedule.SortIDs(ids)

		hasCritical := false
		for _, id := range ids {
			result.Tasks[id].Wave = i
			if result.Tasks[id].IsCritical {
				hasCritical = true
			}
		}

		// Critical activities first within a wave
		sort.SliceStable(ids, func(a, b int) bool {
			return result.Tasks[ids[a]].IsCritical && !result.Tasks[ids[b]].IsCritical
		})

		waves[i] = Wave{
			Index:       i,
			ActivityIDs: ids,
			IsCritical:  hasCritical,
		}
	}

	return waves
}
