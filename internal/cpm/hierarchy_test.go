package cpm

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joshharrison/siteloom/internal/schedule"
)

func child(id, parent string, dur int, preds ...string) schedule.Activity {
	a := act(id, dur, preds...)
	a.ParentID = parent
	return a
}

func TestAnalyzeTree_ParentDurationIgnored(t *testing.T) {
	result, err := AnalyzeTree([]schedule.Activity{
		act("1", 20),
		child("2", "1", 5),
		child("3", "1", 3, "2"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ProjectDuration != 8 {
		t.Errorf("expected duration 8, got %d", result.ProjectDuration)
	}
	if diff := cmp.Diff([]string{"2", "3"}, result.CriticalPath); diff != "" {
		t.Errorf("critical path mismatch (-want +got):\n%s", diff)
	}
	assertSchedule(t, result.Tasks["2"], 0, 5, 0, 5, 0, true)
	assertSchedule(t, result.Tasks["3"], 5, 8, 5, 8, 0, true)
	assertSchedule(t, result.Tasks["1"], 0, 8, 0, 8, 0, true)
	if result.Tasks["1"].Wave != -1 {
		t.Errorf("parent should not belong to a wave, got %d", result.Tasks["1"].Wave)
	}

	var ids []string
	for _, a := range result.Activities {
		ids = append(ids, a.ID)
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, ids); diff != "" {
		t.Errorf("activities mismatch (-want +got):\n%s", diff)
	}
	if result.Activities[0].DurationDays != 20 || result.Activities[0].EarlyFinish != 8 {
		t.Errorf("unexpected parent %+v", result.Activities[0])
	}
}

func TestLeafNetwork_MovesParentLinks(t *testing.T) {
	p2 := act("P2", 99, "P1")
	network, err := LeafNetwork([]schedule.Activity{
		act("P1", 10),
		child("a", "P1", 2),
		child("b", "P1", 3),
		p2,
		child("c", "P2", 1),
		child("d", "P2", 4, "c"),
		act("X", 1, "P2"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	preds := make(map[string][]string)
	for _, a := range network {
		preds[a.ID] = a.PredecessorIDs
	}
	want := map[string][]string{
		"a": nil,
		"b": nil,
		"c": {"a", "b"},
		"d": {"c", "a", "b"},
		"X": {"c", "d"},
	}
	if diff := cmp.Diff(want, preds); diff != "" {
		t.Errorf("predecessors mismatch (-want +got):\n%s", diff)
	}

	result, err := Analyze(network)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProjectDuration != 9 {
		t.Errorf("expected duration 9, got %d", result.ProjectDuration)
	}
}

func TestLeafNetwork_AdoptsParentRelation(t *testing.T) {
	p := act("P", 0, "Z")
	p.RelationType, p.LagDays = schedule.StartToStart, 1

	result, err := AnalyzeTree([]schedule.Activity{act("Z", 4), p, child("k", "P", 2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertSchedule(t, result.Tasks["k"], 1, 3, 2, 4, 1, false)
	if result.ProjectDuration != 4 {
		t.Errorf("expected duration 4, got %d", result.ProjectDuration)
	}
}

func TestAnalyzeTree_ParentCycle(t *testing.T) {
	_, err := AnalyzeTree([]schedule.Activity{child("1", "2", 1), child("2", "1", 1)})
	var cyc *schedule.CyclicDependencyError
	if !errors.As(err, &cyc) || cyc.Kind != schedule.CycleParent {
		t.Fatalf("expected parent cycle, got %v", err)
	}
}

func TestAnalyzeTree_FlatMatchesAnalyze(t *testing.T) {
	acts := []schedule.Activity{act("A", 5), act("B", 3, "A"), act("C", 2, "A")}
	flat := analyze(t, acts)
	tree, err := AnalyzeTree(acts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(flat.Activities, tree.Activities); diff != "" {
		t.Errorf("flat projects should analyze the same (-Analyze +AnalyzeTree):\n%s", diff)
	}
}
