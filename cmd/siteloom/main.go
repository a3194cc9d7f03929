package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joshharrison/siteloom/internal/calendar"
	"github.com/joshharrison/siteloom/internal/config"
	"github.com/joshharrison/siteloom/internal/logger"
	"github.com/joshharrison/siteloom/internal/project"
	"github.com/joshharrison/siteloom/internal/state"
	"github.com/joshharrison/siteloom/internal/ui"
)

var (
	flagConfig   string
	flagLogLevel string
	flagJSON     bool
	flagStateDir string

	cfg *config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "siteloom",
		Short: "Schedule and track construction projects",
		Long: `Siteloom reads a project file of activities, computes the critical path
and working-day dates, rolls progress and cost up the activity tree, and
tracks earned value against the budget.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(v, flagConfig)
			if err != nil {
				return err
			}
			cfg = loaded

			l, err := cfg.NewLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger.SetDefault(l)

			if flagJSON {
				ui.Disable()
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default siteloom.yaml)")
	pf.StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	pf.StringVar(&flagStateDir, "state-dir", state.DefaultDir, "Directory for snapshots and logs")
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("state_dir", pf.Lookup("state-dir"))

	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(rollupCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(evmCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(draftCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(undoCmd())

	return rootCmd
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintf(os.Stderr, "\n%s\n", ui.Yellow("Received interrupt, cancelling..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// loadProject reads the project file named on the command line.
func loadProject(path string) (*project.Project, error) {
	p, err := project.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("loaded project %q with %d activities", p.Name, len(p.Activities))
	return p, nil
}

// workCalendar uses the project's calendar, or the configured default when
// the project has none.
func workCalendar(p *project.Project) *calendar.Calendar {
	if p != nil && p.Calendar.ScheduleType != "" {
		return p.WorkCalendar()
	}
	return calendar.New(cfg.Calendar)
}

// saveWithSnapshot pushes the on-disk project onto the undo stack and then
// writes p over it.
func saveWithSnapshot(path, reason string, p *project.Project) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	previous, err := project.Load(abs)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	store, err := state.Open(cfg.StateDir)
	if err != nil {
		return err
	}
	snap, err := store.Push(abs, reason, previous)
	if err != nil {
		return err
	}
	logger.Info("snapshot %s taken before %s", snap.ID, reason)

	if err := project.Save(abs, p); err != nil {
		return err
	}
	if !flagJSON {
		fmt.Printf("%s %s %s\n", ui.Green("✓"), ui.Bold("Saved"), path)
		fmt.Printf("  %s\n", ui.Dim("undo with: siteloom undo"))
	}
	return nil
}

// --- Output helpers ---

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
