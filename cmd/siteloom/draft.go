package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshharrison/siteloom/internal/claude"
	"github.com/joshharrison/siteloom/internal/cpm"
	"github.com/joshharrison/siteloom/internal/draft"
	"github.com/joshharrison/siteloom/internal/planner"
	"github.com/joshharrison/siteloom/internal/project"
	"github.com/joshharrison/siteloom/internal/reporter"
	"github.com/joshharrison/siteloom/internal/schedule"
	"github.com/joshharrison/siteloom/internal/ui"
)

func draftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Validate or request proposed schedules",
	}
	cmd.AddCommand(draftValidateCmd())
	cmd.AddCommand(draftProposeCmd())
	return cmd
}

func draftValidateCmd() *cobra.Command {
	var (
		flagProject string
		flagApply   bool
	)

	cmd := &cobra.Command{
		Use:   "validate <draft.json>",
		Short: "Check a proposed schedule and recompute it from scratch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagApply && flagProject == "" {
				return fmt.Errorf("--apply needs --project")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read draft: %w", err)
			}
			d, err := draft.Parse(data)
			if err != nil {
				printDraftError(err)
				return err
			}

			var p *project.Project
			if flagProject != "" {
				if p, err = loadProject(flagProject); err != nil {
					return err
				}
			}
			return acceptDraft(d, p, flagProject, flagApply)
		},
	}

	cmd.Flags().StringVar(&flagProject, "project", "", "Project providing the start date and calendar")
	cmd.Flags().BoolVar(&flagApply, "apply", false, "Write the accepted draft into the project file")

	return cmd
}

func draftProposeCmd() *cobra.Command {
	var (
		flagDeadline       string
		flagCrews          []string
		flagPromptTemplate string
		flagApply          bool
	)

	cmd := &cobra.Command{
		Use:   "propose <project>",
		Short: "Ask Claude to propose durations and dependencies for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(args[0])
			if err != nil {
				return err
			}
			if len(p.Activities) == 0 {
				return fmt.Errorf("project %q has no activities to schedule", p.Name)
			}

			client, err := claude.NewClient(cfg.Claude.APIKey, cfg.Claude.Model)
			if err != nil {
				return err
			}
			if flagPromptTemplate != "" {
				client = client.WithPromptTemplate(flagPromptTemplate)
			}

			req := claude.ProposalRequest{
				ProjectName:  p.Name,
				StartDate:    p.StartDate,
				Deadline:     flagDeadline,
				ScheduleType: string(workCalendar(p).Config().ScheduleType),
				Crews:        flagCrews,
			}
			for _, a := range p.Activities {
				req.Scope = append(req.Scope, claude.ScopeItem{ID: a.ID, Name: a.Name, DurationDays: a.DurationDays})
			}

			ctx, cancel := signalContext()
			defer cancel()

			if !flagJSON {
				fmt.Printf("%s %s\n", ui.BoldCyan("Proposing schedule for"), ui.Bold(p.Name))
			}
			d, err := client.ProposeSchedule(ctx, req)
			if err != nil {
				printDraftError(err)
				return err
			}
			return acceptDraft(d, p, args[0], flagApply)
		},
	}

	cmd.Flags().StringVar(&flagDeadline, "deadline", "", "Target finish date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&flagCrews, "crew", nil, "Available crew (repeatable)")
	cmd.Flags().StringVar(&flagPromptTemplate, "prompt-template", "", "Custom prompt template path")
	cmd.Flags().BoolVar(&flagApply, "apply", false, "Write the accepted draft into the project file")

	return cmd
}

// acceptDraft recomputes a parsed draft, prints it, and optionally merges
// it into the project at path.
func acceptDraft(d *draft.Draft, p *project.Project, path string, apply bool) error {
	result, err := draft.Accept(d)
	if err != nil {
		return err
	}

	var plan *planner.Plan
	if p != nil && p.StartDate != "" {
		start, err := p.Start()
		if err != nil {
			return err
		}
		if plan, err = planner.Generate(result, workCalendar(p), start); err != nil {
			return err
		}
	}

	if flagJSON {
		out := map[string]interface{}{
			"activities":       result.Activities,
			"project_duration": result.ProjectDuration,
			"critical_path":    result.CriticalPath,
			"ignored":          d.Ignored,
			"notes":            d.Notes,
		}
		if plan != nil {
			out["finish_date"] = plan.FinishDate
		}
		if err := outputJSON(out); err != nil {
			return err
		}
	} else {
		printDraft(d, result, plan, p)
	}

	if !apply {
		return nil
	}
	updated := p.Clone()
	added := applyDraft(updated, result.Activities)
	reason := fmt.Sprintf("draft apply (%d activities, %d new)", len(result.Activities), added)
	return saveWithSnapshot(path, reason, updated)
}

func printDraft(d *draft.Draft, result *cpm.Result, plan *planner.Plan, p *project.Project) {
	fmt.Printf("%s %d activities, %d working days\n", ui.Green("✓ Draft accepted:"), len(result.Activities), result.ProjectDuration)
	if plan != nil {
		rpt := reporter.New(p.Name, result, plan)
		fmt.Println()
		rpt.PrintSchedule(os.Stdout)
	} else {
		printOffsets(result)
	}
	if len(d.Ignored) > 0 {
		fmt.Printf("\n%s %s\n", ui.Dim("Ignored computed fields:"), ui.Dim(strings.Join(d.Ignored, ", ")))
	}
	if len(d.Notes) > 0 {
		fmt.Printf("\n%s\n", ui.BoldYellow("Notes from the proposal:"))
		for _, n := range d.Notes {
			fmt.Printf("  %s %s\n", ui.Yellow("!"), n)
		}
	}
}

func printOffsets(result *cpm.Result) {
	for _, a := range result.Activities {
		fmt.Printf("  %s %-6s %-36s ES %3d  EF %3d  float %d\n",
			ui.CriticalMark(a.IsCritical), ui.BoldMagenta(a.ID), a.Name, a.EarlyStart, a.EarlyFinish, a.Float)
	}
	if len(result.CriticalPath) > 0 {
		fmt.Printf("%s %s\n", ui.Bold("Critical:"), ui.BoldYellow(strings.Join(result.CriticalPath, " → ")))
	}
}

// applyDraft overwrites the schedule inputs of matching activities and
// appends the rest. It returns how many activities were appended.
func applyDraft(p *project.Project, proposed []schedule.Activity) int {
	index := make(map[string]int, len(p.Activities))
	for i, a := range p.Activities {
		index[a.ID] = i
	}

	added := 0
	for _, a := range proposed {
		i, ok := index[a.ID]
		if !ok {
			p.Activities = append(p.Activities, a.Clone())
			added++
			continue
		}
		dst := &p.Activities[i]
		if a.Name != "" {
			dst.Name = a.Name
		}
		dst.DurationDays = a.DurationDays
		dst.PredecessorIDs = append([]string(nil), a.PredecessorIDs...)
		dst.SuccessorIDs = append([]string(nil), a.SuccessorIDs...)
		dst.RelationType = a.RelationType
		dst.LagDays = a.LagDays
		if a.Responsible != "" {
			dst.Responsible = a.Responsible
		}
		dst.EarlyStart, dst.EarlyFinish = a.EarlyStart, a.EarlyFinish
		dst.LateStart, dst.LateFinish = a.LateStart, a.LateFinish
		dst.Float, dst.IsCritical = a.Float, a.IsCritical
	}
	return added
}

func printDraftError(err error) {
	var de *draft.DraftError
	if !errors.As(err, &de) || flagJSON {
		return
	}
	fmt.Fprintf(os.Stderr, "%s\n", ui.BoldRed("Draft rejected:"))
	for _, pr := range de.Problems {
		fmt.Fprintf(os.Stderr, "  %s %s\n", ui.Red("✗"), pr)
	}
}
