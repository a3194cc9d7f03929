package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/joshharrison/siteloom/internal/calendar"
	"github.com/joshharrison/siteloom/internal/cpm"
	"github.com/joshharrison/siteloom/internal/graph"
	"github.com/joshharrison/siteloom/internal/project"
	"github.com/joshharrison/siteloom/internal/schedule"
)

func init() {
	color.NoColor = true
}

func buildGraph(t *testing.T, acts []schedule.Activity) (*graph.ActivityGraph, *cpm.Result) {
	t.Helper()
	g, err := graph.Build(acts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	result, err := cpm.AnalyzeGraph(g)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return g, result
}

func TestPrintDOT(t *testing.T) {
	g, result := buildGraph(t, []schedule.Activity{
		{ID: "1", Name: "Dig", DurationDays: 2},
		{ID: "2", Name: "Pour", DurationDays: 1, PredecessorIDs: []string{"1"}},
		{ID: "3", Name: "Cure", DurationDays: 3, PredecessorIDs: []string{"1"}, RelationType: schedule.StartToStart, LagDays: 1},
	})

	var buf bytes.Buffer
	printDOT(&buf, g, result)
	out := buf.String()

	for _, want := range []string{
		"digraph siteloom {",
		`"1" [label="1\nDig\n2d", style="rounded,bold", color=red];`,
		`"2" [label="2\nPour\n1d"];`,
		`"1" -> "3" [label="SS+1", color=red, penwidth=2];`,
		`"1" -> "2";`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected DOT to contain %q\n%s", want, out)
		}
	}
}

func TestPrintASCIIDAG_CriticalFilter(t *testing.T) {
	g, result := buildGraph(t, []schedule.Activity{
		{ID: "1", Name: "Dig", DurationDays: 2},
		{ID: "2", Name: "Pour", DurationDays: 1, PredecessorIDs: []string{"1"}},
		{ID: "3", Name: "Fence", DurationDays: 1},
	})
	critical, err := g.Filter(func(a *schedule.Activity) bool { return result.Tasks[a.ID].IsCritical })
	if err != nil {
		t.Fatalf("filter: %v", err)
	}

	var buf bytes.Buffer
	printASCIIDAG(&buf, critical, result)
	out := buf.String()

	if strings.Contains(out, "Fence") {
		t.Errorf("non-critical activity should be filtered\n%s", out)
	}
	if !strings.Contains(out, "[1] Dig") || !strings.Contains(out, "└──→ 2 FS") {
		t.Errorf("unexpected graph\n%s", out)
	}
}

func TestApplyDraft(t *testing.T) {
	p := &project.Project{Activities: []schedule.Activity{
		{ID: "1", Name: "Dig", DurationDays: 1, BudgetedCost: 500, Responsible: "Crew A"},
	}}
	added := applyDraft(p, []schedule.Activity{
		{ID: "1", DurationDays: 4, EarlyFinish: 4, IsCritical: true},
		{ID: "2", Name: "Pour", DurationDays: 2, PredecessorIDs: []string{"1"}},
	})

	if added != 1 {
		t.Errorf("expected 1 new activity, got %d", added)
	}
	a := p.Activities[0]
	if a.Name != "Dig" || a.DurationDays != 4 || a.BudgetedCost != 500 || a.Responsible != "Crew A" {
		t.Errorf("unexpected merge result %+v", a)
	}
	if !a.IsCritical || a.EarlyFinish != 4 {
		t.Error("computed fields should come from the recomputed draft")
	}
	if len(p.Activities) != 2 || p.Activities[1].ID != "2" {
		t.Errorf("expected appended activity 2, got %+v", p.Activities)
	}
}

func TestMergeComputed_KeepsOrder(t *testing.T) {
	p := &project.Project{Activities: []schedule.Activity{
		{ID: "10", Name: "Late id first"},
		{ID: "2", Name: "Second"},
	}}
	mergeComputed(p, []schedule.Activity{
		{ID: "2", PlannedStart: "2024-03-04", Status: schedule.StatusOnTrack},
		{ID: "10", PlannedStart: "2024-03-11", Float: 3},
	})

	if p.Activities[0].ID != "10" || p.Activities[0].PlannedStart != "2024-03-11" || p.Activities[0].Float != 3 {
		t.Errorf("unexpected first activity %+v", p.Activities[0])
	}
	if p.Activities[1].Status != schedule.StatusOnTrack || p.Activities[1].Name != "Second" {
		t.Errorf("unexpected second activity %+v", p.Activities[1])
	}
}

func TestAnalyze_ParentIsAggregate(t *testing.T) {
	p := &project.Project{
		Name:      "Hierarchy",
		StartDate: "2025-03-03",
		Calendar:  calendar.Config{ScheduleType: calendar.MonFri},
		Activities: []schedule.Activity{
			{ID: "1", Name: "Phase", DurationDays: 20},
			{ID: "2", Name: "A", DurationDays: 5, ParentID: "1"},
			{ID: "3", Name: "B", DurationDays: 3, ParentID: "1", PredecessorIDs: []string{"2"}},
		},
	}
	today, err := calendar.ParseDate("2025-03-03")
	if err != nil {
		t.Fatal(err)
	}

	a, err := analyze(p, today)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if a.Result.ProjectDuration != 8 {
		t.Errorf("expected duration 8, got %d", a.Result.ProjectDuration)
	}
	for _, id := range []string{"2", "3"} {
		if ts := a.Result.Tasks[id]; !ts.IsCritical || ts.Float != 0 {
			t.Errorf("%s should be critical with no float, got %+v", id, ts)
		}
	}

	rolled := make(map[string]schedule.Activity)
	for _, r := range a.Rollup.Activities {
		rolled[r.ID] = r
	}
	parent := rolled["1"]
	if parent.PlannedStart != a.Plan.Tasks["2"].PlannedStart || parent.PlannedEnd != a.Plan.Tasks["3"].PlannedEnd {
		t.Errorf("parent span %s..%s does not match its leaves", parent.PlannedStart, parent.PlannedEnd)
	}
	if parent.PlannedEnd != a.Plan.FinishDate {
		t.Errorf("parent ends %s, project finishes %s", parent.PlannedEnd, a.Plan.FinishDate)
	}
}
