package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joshharrison/siteloom/internal/calendar"
	"github.com/joshharrison/siteloom/internal/cpm"
	"github.com/joshharrison/siteloom/internal/evm"
	"github.com/joshharrison/siteloom/internal/planner"
	"github.com/joshharrison/siteloom/internal/rollup"
	"github.com/joshharrison/siteloom/internal/schedule"
	"github.com/joshharrison/siteloom/internal/ui"
)

// Reporter renders schedule and performance reports for one project.
type Reporter struct {
	Name   string
	Result *cpm.Result
	Plan   *planner.Plan
	Rollup *rollup.Result // optional, adds status and cost columns
	EVM    *evm.Engine    // optional
}

// New creates a new Reporter.
func New(name string, result *cpm.Result, plan *planner.Plan) *Reporter {
	return &Reporter{Name: name, Result: result, Plan: plan}
}

// Money formats an amount with two decimals and thousands separators.
func Money(v float64) string {
	s := decimal.NewFromFloat(v).Round(2).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// PrintSchedule writes the per-wave schedule table.
func (r *Reporter) PrintSchedule(w io.Writer) {
	fmt.Fprintf(w, "%s %s  %s %s  %s %d working days  %s %d\n\n",
		ui.BoldCyan("Schedule"),
		ui.Bold(r.Name),
		ui.Dim("start"), r.Plan.ProjectStart,
		ui.Dim("duration"), r.Plan.ProjectDuration,
		ui.Dim("activities"), r.Plan.TotalActivities)

	for _, wave := range r.Plan.Waves {
		header := fmt.Sprintf("WAVE %d", wave.Index+1)
		if r.Result.Waves[wave.Index].IsCritical {
			header = ui.BoldRed(header)
		} else {
			header = ui.BoldWhite(header)
		}
		fmt.Fprintf(w, "  %s %s\n", header, ui.Dim("from "+wave.StartDate))
		for _, pa := range wave.Activities {
			r.printActivity(w, pa)
		}
		fmt.Fprintln(w)
	}
	r.PrintCriticalPath(w)
	r.printWarnings(w)
}

func (r *Reporter) printActivity(w io.Writer, pa planner.PlannedActivity) {
	name := pa.Name
	if len(name) > 36 {
		name = name[:33] + "..."
	}
	ts := r.Result.Tasks[pa.ActivityID]

	extra := ui.Dim(fmt.Sprintf("float %d", pa.Float))
	if a := r.rolled(pa.ActivityID); a != nil {
		extra = fmt.Sprintf("%s %3.0f%%  %s", ui.StatusIcon(a.Status), a.PercentComplete, extra)
	}

	fmt.Fprintf(w, "    %s %-6s %-36s %3dd  %s → %s  %s\n",
		ui.CriticalMark(pa.IsCritical),
		ui.BoldMagenta(pa.ActivityID),
		name,
		ts.Duration,
		pa.PlannedStart, pa.PlannedEnd,
		extra)
}

func (r *Reporter) rolled(id string) *schedule.Activity {
	if r.Rollup == nil {
		return nil
	}
	for i := range r.Rollup.Activities {
		if r.Rollup.Activities[i].ID == id {
			return &r.Rollup.Activities[i]
		}
	}
	return nil
}

// PrintCriticalPath writes the driving chain and finish date.
func (r *Reporter) PrintCriticalPath(w io.Writer) {
	if len(r.Result.CriticalPath) == 0 {
		fmt.Fprintf(w, "%s %s\n", ui.Bold("Critical:"), ui.Dim("none"))
		return
	}
	fmt.Fprintf(w, "%s %s\n", ui.Bold("Critical:"),
		ui.BoldYellow(strings.Join(r.Result.CriticalPath, " → ")))
	if len(r.Result.CriticalActivities) > len(r.Result.CriticalPath) {
		fmt.Fprintf(w, "%s %s\n", ui.Dim("Zero float:"), strings.Join(r.Result.CriticalActivities, ", "))
	}
	fmt.Fprintf(w, "%s %s\n", ui.Bold("Finish:  "), ui.BoldGreen(r.Plan.FinishDate))
}

func (r *Reporter) printWarnings(w io.Writer) {
	var warns []error
	warns = append(warns, r.Result.Warnings...)
	if r.Rollup != nil {
		warns = append(warns, r.Rollup.Warnings...)
	}
	if len(warns) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", ui.BoldYellow("Warnings:"))
	for _, err := range warns {
		fmt.Fprintf(w, "  %s %s\n", ui.Yellow("!"), err)
	}
}

// PrintRollup writes the hierarchy as an indented tree.
func PrintRollup(w io.Writer, res *rollup.Result) {
	byID := make(map[string]*schedule.Activity, len(res.Activities))
	for i := range res.Activities {
		byID[res.Activities[i].ID] = &res.Activities[i]
	}

	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		a := byID[id]
		dates := ui.Dim("no dates")
		if a.PlannedStart != "" {
			dates = a.PlannedStart + " → " + a.PlannedEnd
		}
		fmt.Fprintf(w, "%s%s %s %-30s %5.1f%%  %12s / %-12s  %s  %s\n",
			strings.Repeat("  ", depth+1),
			ui.StatusIcon(a.Status),
			ui.BoldMagenta(a.ID),
			a.Name,
			a.PercentComplete,
			Money(a.ActualCost), Money(a.BudgetedCost),
			dates,
			ui.CrewLabel(a.Responsible))
		for _, child := range res.Children[id] {
			walk(child, depth+1)
		}
	}
	for _, root := range res.Roots {
		walk(root, 0)
	}
	for _, err := range res.Warnings {
		fmt.Fprintf(w, "  %s %s\n", ui.Yellow("!"), err)
	}
}

// PrintCompression writes the outcome of a duration what-if.
func PrintCompression(w io.Writer, c *cpm.Compression) {
	fmt.Fprintf(w, "%s %s: %d → %d days", ui.BoldCyan("Simulate"), ui.BoldMagenta(c.ActivityID), c.OldDuration, c.NewDuration)
	if c.WasCritical {
		fmt.Fprintf(w, " %s", ui.BoldRed("(critical)"))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Project:  %d → %d days\n", c.OldProjectDuration, c.NewProjectDuration)
	switch {
	case c.IsWorthIt:
		fmt.Fprintf(w, "  %s\n", ui.Green(fmt.Sprintf("Saves %d of %d days cut", c.TimeSaved, c.ActivityDaysCut)))
	case c.TimeSaved < 0:
		fmt.Fprintf(w, "  %s\n", ui.Red(fmt.Sprintf("Delays the project by %d days", -c.TimeSaved)))
	default:
		fmt.Fprintf(w, "  %s\n", ui.Yellow("No effect on the finish date"))
	}
}

// PrintEVM writes the latest metrics, the trend forecast, alerts and the
// S-curve table.
func PrintEVM(w io.Writer, e *evm.Engine) {
	m, ok := e.Latest()
	if !ok {
		fmt.Fprintf(w, "%s BAC %s, no measurements yet\n", ui.BoldCyan("EVM"), Money(e.BAC()))
		return
	}

	fmt.Fprintf(w, "%s %s  %s\n\n", ui.BoldCyan("EVM"), ui.Dim("as of"), calendar.FormatDate(m.Date))
	fmt.Fprintf(w, "  BAC %14s   planned %5.1f%%   actual %5.1f%%\n", Money(m.BAC), m.PlannedPercent, m.ActualPercent)
	fmt.Fprintf(w, "  PV  %14s   EV  %14s   AC  %14s\n", Money(m.PV), Money(m.EV), Money(m.AC))
	fmt.Fprintf(w, "  SPI %14s   CPI %14s\n", ui.Index(m.SPI), ui.Index(m.CPI))
	fmt.Fprintf(w, "  SV  %14s   CV  %14s\n", Money(m.SV), Money(m.CV))
	fmt.Fprintf(w, "  EAC %14s   ETC %14s   VAC %14s\n", Money(m.EAC), Money(m.ETC), Money(m.VAC))

	f := e.ForecastUsingTrend()
	fmt.Fprintf(w, "\n  %s EAC %s  ETC %s  %s\n",
		ui.Bold("Trend:"), Money(f.EAC), Money(f.ETC), ui.Dim(fmt.Sprintf("(CPI %.2f)", f.TrendCPI)))

	if alerts := e.GenerateAlerts(); len(alerts) > 0 {
		fmt.Fprintf(w, "\n%s\n", ui.Bold("Alerts:"))
		for _, a := range alerts {
			fmt.Fprintf(w, "  [%s] %s %s\n", ui.AlertBadge(a.Kind), a.Title, ui.Dim(fmt.Sprintf("(severity %d)", a.Severity)))
			fmt.Fprintf(w, "      %s\n", a.Description)
			fmt.Fprintf(w, "      %s %s\n", ui.Dim("→"), a.RecommendedAction)
		}
	}

	if curve := e.SCurve(); len(curve) > 1 {
		fmt.Fprintf(w, "\n%s\n", ui.Bold("S-curve:"))
		fmt.Fprintf(w, "  %-10s %14s %14s %14s\n", "date", "PV", "EV", "AC")
		for _, p := range curve {
			fmt.Fprintf(w, "  %-10s %14s %14s %14s\n", p.Date, Money(p.PV), Money(p.EV), Money(p.AC))
		}
	}
}

// JSON returns the machine-readable report.
func (r *Reporter) JSON() ([]byte, error) {
	type activityRow struct {
		ID           string          `json:"id"`
		Name         string          `json:"name"`
		Duration     int             `json:"duration_days"`
		ES           int             `json:"early_start"`
		EF           int             `json:"early_finish"`
		LS           int             `json:"late_start"`
		LF           int             `json:"late_finish"`
		Float        int             `json:"float"`
		IsCritical   bool            `json:"is_critical"`
		Wave         int             `json:"wave"`
		PlannedStart string          `json:"planned_start"`
		PlannedEnd   string          `json:"planned_end"`
		Status       schedule.Status `json:"status,omitempty"`
		Percent      *float64        `json:"percent_complete,omitempty"`
	}

	type evmOutput struct {
		Latest   *evm.Metrics      `json:"latest,omitempty"`
		Forecast evm.Forecast      `json:"forecast"`
		Alerts   []evm.Alert       `json:"alerts"`
		SCurve   []evm.SCurvePoint `json:"s_curve"`
	}

	type output struct {
		Name               string        `json:"name"`
		ProjectStart       string        `json:"project_start"`
		FinishDate         string        `json:"finish_date"`
		ProjectDuration    int           `json:"project_duration"`
		CriticalPath       []string      `json:"critical_path"`
		CriticalActivities []string      `json:"critical_activities"`
		TotalWaves         int           `json:"total_waves"`
		Activities         []activityRow `json:"activities"`
		Warnings           []string      `json:"warnings,omitempty"`
		EVM                *evmOutput    `json:"evm,omitempty"`
	}

	o := output{
		Name:               r.Name,
		ProjectStart:       r.Plan.ProjectStart,
		FinishDate:         r.Plan.FinishDate,
		ProjectDuration:    r.Plan.ProjectDuration,
		CriticalPath:       r.Result.CriticalPath,
		CriticalActivities: r.Result.CriticalActivities,
		TotalWaves:         r.Plan.TotalWaves,
	}

	for _, a := range r.Result.Activities {
		ts := r.Result.Tasks[a.ID]
		pa := r.Plan.Tasks[a.ID]
		row := activityRow{
			ID:           a.ID,
			Name:         a.Name,
			Duration:     ts.Duration,
			ES:           ts.ES,
			EF:           ts.EF,
			LS:           ts.LS,
			LF:           ts.LF,
			Float:        ts.Float,
			IsCritical:   ts.IsCritical,
			Wave:         ts.Wave,
			PlannedStart: pa.PlannedStart,
			PlannedEnd:   pa.PlannedEnd,
		}
		if ra := r.rolled(a.ID); ra != nil {
			row.Status = ra.Status
			pct := ra.PercentComplete
			row.Percent = &pct
		}
		o.Activities = append(o.Activities, row)
	}

	for _, err := range r.Result.Warnings {
		o.Warnings = append(o.Warnings, err.Error())
	}
	if r.Rollup != nil {
		for _, err := range r.Rollup.Warnings {
			o.Warnings = append(o.Warnings, err.Error())
		}
	}

	if r.EVM != nil {
		eo := &evmOutput{
			Forecast: r.EVM.ForecastUsingTrend(),
			Alerts:   r.EVM.GenerateAlerts(),
			SCurve:   r.EVM.SCurve(),
		}
		if m, ok := r.EVM.Latest(); ok {
			eo.Latest = &m
		}
		o.EVM = eo
	}

	return json.MarshalIndent(o, "", "  ")
}

// PrintSummaryReport writes the full project summary to the given writer.
// The text is also returned for reuse as narrative context.
func (r *Reporter) PrintSummaryReport(w io.Writer) string {
	var b strings.Builder
	mw := io.MultiWriter(w, &b)

	fmt.Fprintf(mw, "\n%s\n", ui.BoldCyan("Project Summary"))
	fmt.Fprintf(mw, "%s\n", ui.Cyan("═══════════════"))
	fmt.Fprintf(mw, "Project:   %s\n", ui.Bold(r.Name))
	fmt.Fprintf(mw, "Start:     %s\n", r.Plan.ProjectStart)
	fmt.Fprintf(mw, "Finish:    %s\n", r.Plan.FinishDate)
	fmt.Fprintf(mw, "Duration:  %d working days\n", r.Plan.ProjectDuration)
	fmt.Fprintf(mw, "Waves:     %d\n", r.Plan.TotalWaves)
	fmt.Fprintf(mw, "Activities: %d total, %d critical\n",
		r.Plan.TotalActivities, len(r.Result.CriticalActivities))
	if len(r.Result.CriticalPath) > 0 {
		fmt.Fprintf(mw, "Critical:  %s\n", ui.BoldYellow(strings.Join(r.Result.CriticalPath, " → ")))
	}

	if r.Rollup != nil {
		counts := make(map[schedule.Status]int)
		for _, a := range r.Rollup.Activities {
			if len(r.Rollup.Children[a.ID]) == 0 {
				counts[a.Status]++
			}
		}
		fmt.Fprintf(mw, "Status:    %s  %s  %s  %s  %s\n",
			ui.Green(fmt.Sprintf("%d completed", counts[schedule.StatusCompleted])),
			ui.Cyan(fmt.Sprintf("%d in progress", counts[schedule.StatusInProgress])),
			ui.Cyan(fmt.Sprintf("%d on track", counts[schedule.StatusOnTrack])),
			ui.Red(fmt.Sprintf("%d delayed", counts[schedule.StatusDelayed])),
			ui.Dim(fmt.Sprintf("%d not started", counts[schedule.StatusNotStarted])))

		if delayed := r.delayed(); len(delayed) > 0 {
			fmt.Fprintf(mw, "\n%s\n", ui.BoldRed("Delayed activities:"))
			for _, a := range delayed {
				fmt.Fprintf(mw, "  %s %s %s  %s\n", ui.Red("✗"), ui.BoldMagenta(a.ID), a.Name,
					ui.Dim(fmt.Sprintf("(due %s, %.0f%% done)", a.PlannedEnd, a.PercentComplete)))
			}
		}
	}

	if r.EVM != nil {
		fmt.Fprintln(mw)
		PrintEVM(mw, r.EVM)
	}
	return b.String()
}

func (r *Reporter) delayed() []schedule.Activity {
	var out []schedule.Activity
	for _, a := range r.Rollup.Activities {
		if a.Status == schedule.StatusDelayed && len(r.Rollup.Children[a.ID]) == 0 {
			out = append(out, a)
		}
	}
	return out
}
