package schedule

import (
	"fmt"
	"testing"
)

func TestLessID_Natural(t *testing.T) {
	ids := []string{"10", "b", "2", "a", "1"}
	SortIDs(ids)
	want := []string{"1", "2", "10", "a", "b"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}

func TestParseRelationType(t *testing.T) {
	rt, err := ParseRelationType("")
	if err != nil || rt != FinishToStart {
		t.Errorf("expected empty relation to default to FS, got %q (%v)", rt, err)
	}
	if _, err := ParseRelationType("XX"); err == nil {
		t.Error("expected error for unknown relation type")
	}
}

func TestClone_IsDeep(t *testing.T) {
	a := Activity{ID: "1", PredecessorIDs: []string{"0"}}
	c := a.Clone()
	c.PredecessorIDs[0] = "9"
	if a.PredecessorIDs[0] != "0" {
		t.Error("clone shares predecessor slice with original")
	}
}

func TestClampPercent(t *testing.T) {
	if ClampPercent(-5) != 0 || ClampPercent(120) != 100 || ClampPercent(42) != 42 {
		t.Error("percent not clamped to [0,100]")
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		err   error
		fatal bool
	}{
		{nil, false},
		{&CyclicDependencyError{Kind: CyclePredecessor, Path: []string{"a", "b", "a"}}, true},
		{fmt.Errorf("wrapped: %w", &ValidationError{Reason: "x"}), true},
		{&InvalidDateError{Value: "2024-13-40"}, false},
		{fmt.Errorf("wrapped: %w", &OrphanedReferenceWarning{ActivityID: "a", Field: "parent", MissingID: "z"}), false},
	}
	for _, c := range cases {
		if got := IsFatal(c.err); got != c.fatal {
			t.Errorf("IsFatal(%v) = %v, want %v", c.err, got, c.fatal)
		}
	}
}

func TestParentCycle(t *testing.T) {
	tests := []struct {
		name  string
		items []Activity
		want  []string
	}{
		{"tree", []Activity{{ID: "1"}, {ID: "2", ParentID: "1"}, {ID: "3", ParentID: "2"}}, nil},
		{"unknown parent", []Activity{{ID: "1", ParentID: "9"}}, nil},
		{"self", []Activity{{ID: "1", ParentID: "1"}}, []string{"1", "1"}},
		{"loop", []Activity{{ID: "1", ParentID: "3"}, {ID: "2", ParentID: "1"}, {ID: "3", ParentID: "2"}}, []string{"1", "3", "2", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParentCycle(tt.items)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
