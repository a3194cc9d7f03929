package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/joshharrison/siteloom/internal/calendar"
	"github.com/joshharrison/siteloom/internal/cpm"
)

// Generate dates a CPM result against the working calendar. Offsets are
// whole working days counted from projectStart: an activity with ES=0 starts
// on the first working day on or after projectStart. Dates span EF-ES, so
// aggregate parents from cpm.AnalyzeTree cover their leaves.
func Generate(result *cpm.Result, cal *calendar.Calendar, projectStart time.Time) (*Plan, error) {
	if result == nil {
		return nil, errors.New("generate plan: nil cpm result")
	}
	if projectStart.IsZero() {
		return nil, errors.New("generate plan: project start date is required")
	}

	now := time.Now()
	plan := &Plan{
		ID:              fmt.Sprintf("plan-%s", now.Format("2006-01-02-150405")),
		CreatedAt:       now,
		ProjectStart:    calendar.FormatDate(projectStart),
		ProjectDuration: result.ProjectDuration,
		TotalActivities: len(result.Activities),
		TotalWaves:      len(result.Waves),
		CriticalPath:    result.CriticalPath,
		Tasks:           make(map[string]*PlannedActivity),
		Deps: ActivityDeps{
			Predecessors: make(map[string][]string),
			Successors:   make(map[string][]string),
		},
	}

	var finish time.Time
	for _, a := range result.Activities {
		start := cal.AddWorkingDays(projectStart, a.EarlyStart+1)
		end := cal.AddWorkingDays(start, a.EarlyFinish-a.EarlyStart)
		if end.After(finish) {
			finish = end
		}

		a.PlannedStart = calendar.FormatDate(start)
		a.PlannedEnd = calendar.FormatDate(end)
		plan.Activities = append(plan.Activities, a)

		plan.Tasks[a.ID] = &PlannedActivity{
			ActivityID:   a.ID,
			Name:         a.Name,
			IsCritical:   a.IsCritical,
			Float:        a.Float,
			PlannedStart: a.PlannedStart,
			PlannedEnd:   a.PlannedEnd,
			WaveIndex:    result.Tasks[a.ID].Wave,
		}
		plan.Deps.Predecessors[a.ID] = a.PredecessorIDs
		plan.Deps.Successors[a.ID] = a.SuccessorIDs
	}
	if !finish.IsZero() {
		plan.FinishDate = calendar.FormatDate(finish)
	}

	for _, wave := range result.Waves {
		pw := PlanWave{Index: wave.Index}

		// Each wave depends on the previous one
		if wave.Index > 0 {
			pw.DependsOn = []int{wave.Index - 1}
		}

		for _, id := range wave.ActivityIDs {
			pw.Activities = append(pw.Activities, *plan.Tasks[id])
		}
		if len(pw.Activities) > 0 {
			pw.StartDate = pw.Activities[0].PlannedStart
		}
		plan.Waves = append(plan.Waves, pw)
	}

	return plan, nil
}
