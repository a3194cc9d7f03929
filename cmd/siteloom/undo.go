package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshharrison/siteloom/internal/state"
	"github.com/joshharrison/siteloom/internal/ui"
)

func undoCmd() *cobra.Command {
	var flagList bool

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Restore the project file saved before the last write",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := state.Open(cfg.StateDir)
			if err != nil {
				return err
			}

			if flagList {
				snaps := store.List()
				if flagJSON {
					return outputJSON(snaps)
				}
				if len(snaps) == 0 {
					fmt.Println(ui.Dim("No snapshots."))
					return nil
				}
				for _, s := range snaps {
					fmt.Printf("  %s  %s  %s  %s\n", ui.Dim(s.ID[:8]),
						s.CreatedAt.Format("2006-01-02 15:04:05"), ui.Bold(s.Reason), ui.Dim(s.ProjectPath))
				}
				return nil
			}

			snap, err := store.Undo()
			if errors.Is(err, state.ErrNoSnapshots) {
				return fmt.Errorf("nothing to undo")
			}
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(snap)
			}
			fmt.Printf("%s %s %s\n", ui.Green("✓"), ui.Bold("Restored"), snap.ProjectPath)
			fmt.Printf("  %s\n", ui.Dim(fmt.Sprintf("undid %q from %s", snap.Reason, snap.CreatedAt.Format("2006-01-02 15:04:05"))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagList, "list", false, "List snapshots instead of restoring")

	return cmd
}
