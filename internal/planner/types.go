package planner

import (
	"time"

	"github.com/joshharrison/siteloom/internal/schedule"
)

// ActivityDeps holds per-activity predecessor and successor lists.
type ActivityDeps struct {
	Predecessors map[string][]string `json:"predecessors"`
	Successors   map[string][]string `json:"successors"`
}

// Plan is a dated schedule: CPM offsets mapped onto the working calendar.
type Plan struct {
	ID              string                      `json:"id"`
	CreatedAt       time.Time                   `json:"created_at"`
	ProjectStart    string                      `json:"project_start"`
	FinishDate      string                      `json:"finish_date"`
	ProjectDuration int                         `json:"project_duration"`
	TotalActivities int                         `json:"total_activities"`
	TotalWaves      int                         `json:"total_waves"`
	CriticalPath    []string                    `json:"critical_path"`
	Waves           []PlanWave                  `json:"waves"`
	Tasks           map[string]*PlannedActivity `json:"tasks"`
	Activities      []schedule.Activity         `json:"activities"`
	Deps            ActivityDeps                `json:"deps"`
}

// PlanWave is a group of activities sharing the same early start.
type PlanWave struct {
	Index      int               `json:"index"`
	StartDate  string            `json:"start_date"`
	Activities []PlannedActivity `json:"activities"`
	DependsOn  []int             `json:"depends_on"`
}

// PlannedActivity is the dated view of one activity.
type PlannedActivity struct {
	ActivityID   string `json:"activity_id"`
	Name         string `json:"name"`
	IsCritical   bool   `json:"is_critical"`
	Float        int    `json:"float"`
	PlannedStart string `json:"planned_start"`
	PlannedEnd   string `json:"planned_end"`
	WaveIndex    int    `json:"wave_index"`
}
