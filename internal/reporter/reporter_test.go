package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/joshharrison/siteloom/internal/calendar"
	"github.com/joshharrison/siteloom/internal/cpm"
	"github.com/joshharrison/siteloom/internal/evm"
	"github.com/joshharrison/siteloom/internal/planner"
	"github.com/joshharrison/siteloom/internal/rollup"
	"github.com/joshharrison/siteloom/internal/schedule"
)

func init() {
	color.NoColor = true
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return d
}

func makeReporter(t *testing.T) *Reporter {
	t.Helper()
	acts := []schedule.Activity{
		{ID: "1", Name: "Foundations", DurationDays: 5, BudgetedCost: 40000, PercentComplete: 100},
		{ID: "2", Name: "Structure", DurationDays: 3, PredecessorIDs: []string{"1"}, BudgetedCost: 60000, PercentComplete: 10},
		{ID: "3", Name: "Site fence", DurationDays: 1},
	}
	result, err := cpm.Analyze(acts)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	cal := calendar.New(calendar.Config{ScheduleType: calendar.MonFri})
	plan, err := planner.Generate(result, cal, date(t, "2024-03-04"))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return New("Casa Verde", result, plan)
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{12.5, "12.50"},
		{1234.567, "1,234.57"},
		{100000, "100,000.00"},
		{-25000, "-25,000.00"},
		{999999.999, "1,000,000.00"},
	}
	for _, tt := range tests {
		if got := Money(tt.in); got != tt.want {
			t.Errorf("Money(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrintSchedule(t *testing.T) {
	rpt := makeReporter(t)

	var buf bytes.Buffer
	rpt.PrintSchedule(&buf)
	output := buf.String()

	for _, want := range []string{
		"Casa Verde",
		"WAVE 1",
		"WAVE 2",
		"Foundations",
		"2024-03-04 → 2024-03-08",
		"2024-03-11 → 2024-03-13",
		"Critical: 1 → 2",
		"Finish:   2024-03-13",
		"★",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q\n%s", want, output)
		}
	}
	if strings.Contains(output, "Warnings") {
		t.Error("no warnings expected")
	}
}

func TestPrintSchedule_WithRollup(t *testing.T) {
	rpt := makeReporter(t)
	cal := calendar.New(calendar.Config{ScheduleType: calendar.MonFri})
	res, err := rollup.RecalculateTree(rpt.Plan.Activities, cal, rollup.Options{Today: date(t, "2024-03-12")})
	if err != nil {
		t.Fatalf("rollup: %v", err)
	}
	rpt.Rollup = res

	var buf bytes.Buffer
	rpt.PrintSchedule(&buf)
	output := buf.String()

	if !strings.Contains(output, "✓ 100%") {
		t.Errorf("expected completed status for activity 1\n%s", output)
	}
	if !strings.Contains(output, "●  10%") {
		t.Errorf("expected in-progress status for activity 2\n%s", output)
	}
}

func TestPrintCompression(t *testing.T) {
	var buf bytes.Buffer
	PrintCompression(&buf, &cpm.Compression{
		ActivityID: "2", OldDuration: 3, NewDuration: 1, ActivityDaysCut: 2,
		OldProjectDuration: 8, NewProjectDuration: 6, TimeSaved: 2, IsWorthIt: true, WasCritical: true,
	})
	output := buf.String()
	if !strings.Contains(output, "Saves 2 of 2 days cut") {
		t.Errorf("unexpected output\n%s", output)
	}
	if !strings.Contains(output, "(critical)") {
		t.Error("expected critical marker")
	}

	buf.Reset()
	PrintCompression(&buf, &cpm.Compression{ActivityID: "3", OldDuration: 1, NewDuration: 0, ActivityDaysCut: 1,
		OldProjectDuration: 8, NewProjectDuration: 8})
	if !strings.Contains(buf.String(), "No effect") {
		t.Errorf("unexpected output\n%s", buf.String())
	}
}

func TestPrintEVM(t *testing.T) {
	e := evm.New(100000)
	if _, err := e.AddMeasurement(date(t, "2024-03-08"), 50, 40, 50000); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := e.AddMeasurement(date(t, "2024-03-15"), 60, 50, 62500); err != nil {
		t.Fatalf("add: %v", err)
	}

	var buf bytes.Buffer
	PrintEVM(&buf, e)
	output := buf.String()

	for _, want := range []string{"as of  2024-03-15", "100,000.00", "Alerts:", "CRITICAL", "S-curve:", "2024-03-08"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q\n%s", want, output)
		}
	}
}

func TestPrintEVM_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintEVM(&buf, evm.New(5000))
	if !strings.Contains(buf.String(), "no measurements yet") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestPrintRollup(t *testing.T) {
	items := []schedule.Activity{
		{ID: "1", Name: "Structure"},
		{ID: "2", Name: "Columns", ParentID: "1", BudgetedCost: 1500, ActualCost: 500,
			PlannedStart: "2024-03-04", PlannedEnd: "2024-03-08"},
	}
	cal := calendar.New(calendar.Config{ScheduleType: calendar.MonFri})
	res, err := rollup.RecalculateTree(items, cal, rollup.Options{Today: date(t, "2024-03-01")})
	if err != nil {
		t.Fatalf("rollup: %v", err)
	}

	var buf bytes.Buffer
	PrintRollup(&buf, res)
	output := buf.String()
	if !strings.Contains(output, "1,500.00") {
		t.Errorf("expected parent budget rollup\n%s", output)
	}
	if !strings.Contains(output, "    ◌ 2 Columns") {
		t.Errorf("expected indented child\n%s", output)
	}
}

func TestJSON(t *testing.T) {
	rpt := makeReporter(t)
	rpt.EVM = evm.New(100000)

	data, err := rpt.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out struct {
		Name            string   `json:"name"`
		FinishDate      string   `json:"finish_date"`
		ProjectDuration int      `json:"project_duration"`
		CriticalPath    []string `json:"critical_path"`
		Activities      []struct {
			ID         string `json:"id"`
			Float      int    `json:"float"`
			IsCritical bool   `json:"is_critical"`
		} `json:"activities"`
		EVM *struct {
			Forecast evm.Forecast `json:"forecast"`
		} `json:"evm"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Name != "Casa Verde" || out.FinishDate != "2024-03-13" || out.ProjectDuration != 8 {
		t.Errorf("unexpected header %+v", out)
	}
	if len(out.Activities) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(out.Activities))
	}
	if out.Activities[2].ID != "3" || out.Activities[2].Float != 7 {
		t.Errorf("unexpected fence row %+v", out.Activities[2])
	}
	if out.EVM == nil || out.EVM.Forecast.EAC != 100000 {
		t.Errorf("expected empty-history forecast, got %+v", out.EVM)
	}
}

func TestPrintSummaryReport(t *testing.T) {
	rpt := makeReporter(t)
	cal := calendar.New(calendar.Config{ScheduleType: calendar.MonFri})
	res, err := rollup.RecalculateTree(rpt.Plan.Activities, cal, rollup.Options{Today: date(t, "2024-03-20")})
	if err != nil {
		t.Fatalf("rollup: %v", err)
	}
	rpt.Rollup = res

	var buf bytes.Buffer
	text := rpt.PrintSummaryReport(&buf)
	if text != buf.String() {
		t.Error("returned text should match written output")
	}
	for _, want := range []string{"Project Summary", "Finish:    2024-03-13", "1 completed", "2 delayed", "Delayed activities:", "Structure"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected summary to contain %q\n%s", want, text)
		}
	}
}
