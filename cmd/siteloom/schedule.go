package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshharrison/siteloom/internal/calendar"
	"github.com/joshharrison/siteloom/internal/claude"
	"github.com/joshharrison/siteloom/internal/cpm"
	"github.com/joshharrison/siteloom/internal/planner"
	"github.com/joshharrison/siteloom/internal/project"
	"github.com/joshharrison/siteloom/internal/reporter"
	"github.com/joshharrison/siteloom/internal/rollup"
	"github.com/joshharrison/siteloom/internal/schedule"
	"github.com/joshharrison/siteloom/internal/ui"
)

// analysis is everything the engines derive from one project.
type analysis struct {
	Project *project.Project
	Result  *cpm.Result
	Plan    *planner.Plan
	Rollup  *rollup.Result
}

// analyze runs CPM over the leaf network, dates the result on the work
// calendar and rolls the dated activities up the hierarchy.
func analyze(p *project.Project, today time.Time) (*analysis, error) {
	start, err := p.Start()
	if err != nil {
		return nil, err
	}

	result, err := cpm.AnalyzeTree(p.Activities)
	if err != nil {
		return nil, fmt.Errorf("CPM analysis: %w", err)
	}

	cal := workCalendar(p)
	plan, err := planner.Generate(result, cal, start)
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	rolled, err := rollup.RecalculateTree(plan.Activities, cal, rollup.Options{Today: today})
	if err != nil {
		return nil, fmt.Errorf("rollup: %w", err)
	}

	return &analysis{Project: p, Result: result, Plan: plan, Rollup: rolled}, nil
}

func (a *analysis) reporter() *reporter.Reporter {
	rpt := reporter.New(a.Project.Name, a.Result, a.Plan)
	rpt.Rollup = a.Rollup
	return rpt
}

// parseToday reads an optional --today flag value. Empty means now.
func parseToday(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return calendar.ParseDate(s)
}

// mergeComputed copies derived fields back onto the project's activities,
// keeping the file's activity order.
func mergeComputed(p *project.Project, computed []schedule.Activity) {
	byID := make(map[string]schedule.Activity, len(computed))
	for _, a := range computed {
		byID[a.ID] = a
	}
	for i := range p.Activities {
		c, ok := byID[p.Activities[i].ID]
		if !ok {
			continue
		}
		dst := &p.Activities[i]
		dst.EarlyStart, dst.EarlyFinish = c.EarlyStart, c.EarlyFinish
		dst.LateStart, dst.LateFinish = c.LateStart, c.LateFinish
		dst.Float, dst.IsCritical = c.Float, c.IsCritical
		dst.PlannedStart, dst.PlannedEnd = c.PlannedStart, c.PlannedEnd
		dst.ActualStart, dst.ActualEnd = c.ActualStart, c.ActualEnd
		dst.ActualDurationDays = c.ActualDurationDays
		dst.PercentComplete = c.PercentComplete
		dst.BudgetedCost, dst.ActualCost = c.BudgetedCost, c.ActualCost
		dst.Status = c.Status
	}
}

func scheduleCmd() *cobra.Command {
	var (
		flagWrite bool
		flagToday string
	)

	cmd := &cobra.Command{
		Use:   "schedule <project>",
		Short: "Compute the critical path and working-day dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := parseToday(flagToday)
			if err != nil {
				return err
			}
			p, err := loadProject(args[0])
			if err != nil {
				return err
			}
			a, err := analyze(p, today)
			if err != nil {
				return err
			}

			rpt := a.reporter()
			if flagJSON {
				data, err := rpt.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			} else {
				rpt.PrintSchedule(os.Stdout)
			}

			if !flagWrite {
				return nil
			}
			updated := p.Clone()
			mergeComputed(updated, a.Rollup.Activities)
			return saveWithSnapshot(args[0], "schedule --write", updated)
		},
	}

	cmd.Flags().BoolVar(&flagWrite, "write", false, "Store computed dates and float back into the project file")
	cmd.Flags().StringVar(&flagToday, "today", "", "Status date (YYYY-MM-DD, default today)")

	return cmd
}

func simulateCmd() *cobra.Command {
	var (
		flagActivity string
		flagDuration int
	)

	cmd := &cobra.Command{
		Use:   "simulate <project>",
		Short: "Show the effect of changing one activity's duration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagActivity == "" {
				return fmt.Errorf("--activity is required")
			}
			p, err := loadProject(args[0])
			if err != nil {
				return err
			}

			c, err := cpm.SimulateCompression(p.Activities, flagActivity, flagDuration)
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(c)
			}
			reporter.PrintCompression(os.Stdout, c)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagActivity, "activity", "", "Activity id")
	cmd.Flags().IntVar(&flagDuration, "duration", 0, "New duration in working days")

	return cmd
}

func rollupCmd() *cobra.Command {
	var (
		flagToday string
		flagWrite bool
	)

	cmd := &cobra.Command{
		Use:   "rollup <project>",
		Short: "Aggregate dates, cost and progress up the activity tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := parseToday(flagToday)
			if err != nil {
				return err
			}
			p, err := loadProject(args[0])
			if err != nil {
				return err
			}

			res, err := rollup.RecalculateTree(p.Activities, workCalendar(p), rollup.Options{Today: today})
			if err != nil {
				return err
			}

			if flagJSON {
				warnings := make([]string, 0, len(res.Warnings))
				for _, w := range res.Warnings {
					warnings = append(warnings, w.Error())
				}
				if err := outputJSON(map[string]interface{}{
					"activities": res.Activities,
					"roots":      res.Roots,
					"children":   res.Children,
					"warnings":   warnings,
				}); err != nil {
					return err
				}
			} else {
				fmt.Printf("%s %s\n\n", ui.BoldCyan("Rollup"), ui.Bold(p.Name))
				reporter.PrintRollup(os.Stdout, res)
			}

			if !flagWrite {
				return nil
			}
			updated := p.Clone()
			mergeComputed(updated, res.Activities)
			return saveWithSnapshot(args[0], "rollup --write", updated)
		},
	}

	cmd.Flags().StringVar(&flagToday, "today", "", "Status date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&flagWrite, "write", false, "Store aggregated values back into the project file")

	return cmd
}

func reportCmd() *cobra.Command {
	var (
		flagToday   string
		flagNarrate bool
	)

	cmd := &cobra.Command{
		Use:   "report <project>",
		Short: "Print a project summary, optionally with a written narrative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := parseToday(flagToday)
			if err != nil {
				return err
			}
			p, err := loadProject(args[0])
			if err != nil {
				return err
			}
			a, err := analyze(p, today)
			if err != nil {
				return err
			}
			e, err := p.EVM()
			if err != nil {
				return err
			}

			rpt := a.reporter()
			rpt.EVM = e

			if flagJSON {
				data, err := rpt.JSON()
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			ui.PrintBanner(os.Stdout, "")
			text := rpt.PrintSummaryReport(os.Stdout)
			if !flagNarrate {
				return nil
			}

			client, err := claude.NewClient(cfg.Claude.APIKey, cfg.Claude.Model)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			fmt.Printf("\n%s\n", ui.Dim("Writing narrative..."))
			narrative, err := client.Narrate(ctx, text)
			if err != nil {
				return fmt.Errorf("narrate: %w", err)
			}
			fmt.Printf("\n%s\n%s\n", ui.BoldCyan("Narrative"), narrative)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagToday, "today", "", "Status date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&flagNarrate, "narrate", false, "Ask Claude for a narrative status report")

	return cmd
}
