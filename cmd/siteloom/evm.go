package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshharrison/siteloom/internal/calendar"
	"github.com/joshharrison/siteloom/internal/evm"
	"github.com/joshharrison/siteloom/internal/project"
	"github.com/joshharrison/siteloom/internal/reporter"
	"github.com/joshharrison/siteloom/internal/ui"
)

func evmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evm <project>",
		Short: "Show earned value metrics, forecast and alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(args[0])
			if err != nil {
				return err
			}
			e, err := p.EVM()
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(evmJSON(e))
			}
			reporter.PrintEVM(os.Stdout, e)
			return nil
		},
	}

	cmd.AddCommand(evmAddCmd())
	return cmd
}

func evmJSON(e *evm.Engine) map[string]interface{} {
	out := map[string]interface{}{
		"bac":      e.BAC(),
		"history":  e.Snapshot(),
		"forecast": e.ForecastUsingTrend(),
		"alerts":   e.GenerateAlerts(),
		"s_curve":  e.SCurve(),
	}
	if m, ok := e.Latest(); ok {
		out["latest"] = m
	}
	return out
}

func evmAddCmd() *cobra.Command {
	var (
		flagDate    string
		flagPlanned float64
		flagActual  float64
		flagCost    float64
	)

	cmd := &cobra.Command{
		Use:   "add <project>",
		Short: "Record a measurement and save it to the project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagDate == "" {
				flagDate = calendar.FormatDate(time.Now())
			}
			date, err := calendar.ParseDate(flagDate)
			if err != nil {
				return err
			}
			p, err := loadProject(args[0])
			if err != nil {
				return err
			}

			// Replaying the history enforces date order before anything is written.
			e, err := p.EVM()
			if err != nil {
				return err
			}
			m, err := e.AddMeasurement(date, flagPlanned, flagActual, flagCost)
			if err != nil {
				return err
			}

			updated := p.Clone()
			updated.Measurements = append(updated.Measurements, project.Measurement{
				Date:           calendar.FormatDate(date),
				PlannedPercent: flagPlanned,
				ActualPercent:  flagActual,
				ActualCost:     flagCost,
			})
			if err := saveWithSnapshot(args[0], "evm add", updated); err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(m)
			}
			fmt.Printf("  %s SPI %s  CPI %s  EAC %s\n", ui.Dim(calendar.FormatDate(date)),
				ui.Index(m.SPI), ui.Index(m.CPI), reporter.Money(m.EAC))
			for _, a := range e.GenerateAlerts() {
				fmt.Printf("  [%s] %s\n", ui.AlertBadge(a.Kind), a.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagDate, "date", "", "Measurement date (YYYY-MM-DD, default today)")
	cmd.Flags().Float64Var(&flagPlanned, "planned", 0, "Planned percent complete")
	cmd.Flags().Float64Var(&flagActual, "actual", 0, "Actual percent complete")
	cmd.Flags().Float64Var(&flagCost, "cost", 0, "Actual cost to date")

	return cmd
}
