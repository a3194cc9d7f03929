package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshharrison/siteloom/internal/calendar"
	"github.com/joshharrison/siteloom/internal/project"
	"github.com/joshharrison/siteloom/internal/ui"
)

func calendarCmd() *cobra.Command {
	var flagProject string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Working-day calendar utilities",
	}
	cmd.PersistentFlags().StringVar(&flagProject, "project", "", "Use this project's calendar instead of the configured one")

	cal := func() (*calendar.Calendar, error) {
		var p *project.Project
		if flagProject != "" {
			var err error
			if p, err = loadProject(flagProject); err != nil {
				return nil, err
			}
		}
		return workCalendar(p), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check <date>",
		Short: "Report whether a date is a working day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cal()
			if err != nil {
				return err
			}
			d, err := calendar.ParseDate(args[0])
			if err != nil {
				return err
			}
			working := c.IsWorkingDay(d)
			holiday, _ := c.HolidayName(d)

			if flagJSON {
				return outputJSON(map[string]interface{}{
					"date":        calendar.FormatDate(d),
					"weekday":     d.Weekday().String(),
					"working_day": working,
					"holiday":     holiday,
				})
			}
			verdict := ui.Green("working day")
			if !working {
				verdict = ui.Red("non-working day")
			}
			fmt.Printf("%s (%s): %s", calendar.FormatDate(d), d.Weekday(), verdict)
			if holiday != "" {
				fmt.Printf(" %s", ui.Dim("("+holiday+")"))
			}
			fmt.Println()
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <start> <days>",
		Short: "Finish date of an activity of <days> working days starting on <start>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cal()
			if err != nil {
				return err
			}
			start, err := calendar.ParseDate(args[0])
			if err != nil {
				return err
			}
			days, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid day count: %w", err)
			}
			end := calendar.FormatDate(c.AddWorkingDays(start, days))

			if flagJSON {
				return outputJSON(map[string]interface{}{"start": args[0], "days": days, "end": end})
			}
			fmt.Println(end)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "count <start> <end>",
		Short: "Count working days in [start, end]",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cal()
			if err != nil {
				return err
			}
			start, err := calendar.ParseDate(args[0])
			if err != nil {
				return err
			}
			end, err := calendar.ParseDate(args[1])
			if err != nil {
				return err
			}
			n := c.CountWorkingDays(start, end)

			if flagJSON {
				return outputJSON(map[string]interface{}{"start": args[0], "end": args[1], "working_days": n})
			}
			fmt.Println(n)
			return nil
		},
	})

	return cmd
}
