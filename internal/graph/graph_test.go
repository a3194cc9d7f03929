package graph

import (
	"errors"
	"testing"

	"github.com/joshharrison/siteloom/internal/schedule"
)

func act(id string, dur int, preds ...string) schedule.Activity {
	return schedule.Activity{ID: id, Name: "Activity " + id, DurationDays: dur, PredecessorIDs: preds}
}

func TestBuild_SimpleDAG(t *testing.T) {
	// 1 -> 2 -> 4
	// 1 -> 3 -> 4
	acts := []schedule.Activity{
		act("1", 2),
		act("2", 3, "1"),
		act("3", 1, "1"),
		act("4", 2, "2", "3"),
	}

	g, err := Build(acts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.ActivityCount() != 4 {
		t.Errorf("expected 4 activities, got %d", g.ActivityCount())
	}
	if len(g.Roots) != 1 || g.Roots[0] != "1" {
		t.Errorf("expected roots=[1], got %v", g.Roots)
	}
	if len(g.Leaves) != 1 || g.Leaves[0] != "4" {
		t.Errorf("expected leaves=[4], got %v", g.Leaves)
	}
	if adj := g.Adj["1"]; len(adj) != 2 {
		t.Errorf("expected 1 to have 2 successors, got %v", adj)
	}
	if rev := g.RevAdj["4"]; len(rev) != 2 {
		t.Errorf("expected 4 to have 2 predecessors, got %v", rev)
	}
}

func TestBuild_MergesSuccessorLists(t *testing.T) {
	// Link declared only on the predecessor side.
	acts := []schedule.Activity{
		{ID: "a", DurationDays: 1, SuccessorIDs: []string{"b"}},
		{ID: "b", DurationDays: 1},
	}

	g, err := Build(acts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := g.Activities["b"].PredecessorIDs; len(got) != 1 || got[0] != "a" {
		t.Errorf("expected b.PredecessorIDs=[a], got %v", got)
	}
	if len(g.Roots) != 1 || g.Roots[0] != "a" {
		t.Errorf("expected roots=[a], got %v", g.Roots)
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	acts := []schedule.Activity{
		{ID: "a", DurationDays: 1, SuccessorIDs: []string{"b"}},
		{ID: "b", DurationDays: 1},
	}
	if _, err := Build(acts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(acts[1].PredecessorIDs) != 0 {
		t.Errorf("input slice was modified: %v", acts[1].PredecessorIDs)
	}
}

func TestBuild_NaturalOrder(t *testing.T) {
	acts := []schedule.Activity{act("10", 1), act("2", 1), act("1", 1)}

	g, err := Build(acts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"1", "2", "10"}
	for i, id := range want {
		if g.IDs[i] != id {
			t.Fatalf("expected ids %v, got %v", want, g.IDs)
		}
	}
}

func TestBuild_CycleDetection(t *testing.T) {
	// A -> B -> A
	acts := []schedule.Activity{
		act("A", 5, "B"),
		act("B", 3, "A"),
	}

	_, err := Build(acts)
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
	var cyc *schedule.CyclicDependencyError
	if !errors.As(err, &cyc) {
		t.Fatalf("expected *CyclicDependencyError, got %T", err)
	}
	if cyc.Kind != schedule.CyclePredecessor {
		t.Errorf("expected predecessor cycle, got %s", cyc.Kind)
	}
	t.Logf("cycle error (expected): %v", err)
}

func TestBuild_SelfReferenceIsCycle(t *testing.T) {
	_, err := Build([]schedule.Activity{act("1", 1, "1")})
	var cyc *schedule.CyclicDependencyError
	if !errors.As(err, &cyc) {
		t.Fatalf("expected *CyclicDependencyError, got %v", err)
	}
	if len(cyc.Path) != 2 || cyc.Path[0] != "1" || cyc.Path[1] != "1" {
		t.Errorf("expected path [1 1], got %v", cyc.Path)
	}
}

func TestBuild_OrphanedReferencesDropped(t *testing.T) {
	acts := []schedule.Activity{
		act("a", 1, "ghost"),
		{ID: "b", DurationDays: 1, SuccessorIDs: []string{"phantom"}},
	}

	g, err := Build(acts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.RevAdj["a"]) != 0 {
		t.Errorf("expected no predecessors for a, got %v", g.RevAdj["a"])
	}
	if len(g.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", g.Warnings)
	}
	var orphan *schedule.OrphanedReferenceWarning
	if !errors.As(g.Warnings[0], &orphan) || orphan.MissingID != "ghost" {
		t.Errorf("unexpected first warning: %v", g.Warnings[0])
	}
}

func TestBuild_ValidationErrors(t *testing.T) {
	cases := map[string][]schedule.Activity{
		"duplicate":         {act("a", 1), act("a", 2)},
		"negative duration": {act("a", -1)},
		"missing id":        {act("", 1)},
		"bad relation":      {{ID: "a", DurationDays: 1, RelationType: "XX"}},
	}
	for name, acts := range cases {
		_, err := Build(acts)
		var val *schedule.ValidationError
		if !errors.As(err, &val) {
			t.Errorf("%s: expected *ValidationError, got %v", name, err)
		}
	}
}

func TestDetectCycle_NoCycle(t *testing.T) {
	g := &ActivityGraph{
		IDs: []string{"a", "b"},
		Adj: map[string][]string{
			"a": {"b"},
		},
	}

	if cycle := g.DetectCycle(); cycle != nil {
		t.Errorf("expected no cycle, got %v", cycle)
	}
}

func TestDetectCycle_WithCycle(t *testing.T) {
	g := &ActivityGraph{
		IDs: []string{"a", "b", "c"},
		Adj: map[string][]string{
			"a": {"b"},
			"b": {"c"},
			"c": {"a"},
		},
	}

	cycle := g.DetectCycle()
	if cycle == nil {
		t.Fatal("expected cycle, got nil")
	}
	if len(cycle) < 3 {
		t.Errorf("expected cycle of length >= 3, got %v", cycle)
	}
	if cycle[0] != cycle[len(cycle)-1] {
		t.Errorf("expected closed cycle path, got %v", cycle)
	}
}

func TestFilter(t *testing.T) {
	acts := []schedule.Activity{
		act("1", 5),
		act("2", 0, "1"),
		act("3", 2, "2"),
	}

	g, err := Build(acts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	filtered, err := g.Filter(func(a *schedule.Activity) bool {
		return a.DurationDays > 0
	})
	if err != nil {
		t.Fatalf("unexpected filter error: %v", err)
	}
	if filtered.ActivityCount() != 2 {
		t.Errorf("expected 2 activities after filter, got %d", filtered.ActivityCount())
	}
	if _, ok := filtered.Activities["2"]; ok {
		t.Error("milestone 2 should have been filtered out")
	}
	if len(filtered.Warnings) != 0 {
		t.Errorf("filtering should not produce warnings, got %v", filtered.Warnings)
	}
}

func TestBuild_Empty(t *testing.T) {
	g, err := Build(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.ActivityCount() != 0 {
		t.Errorf("expected 0 activities, got %d", g.ActivityCount())
	}
}
