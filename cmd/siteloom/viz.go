package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshharrison/siteloom/internal/cpm"
	"github.com/joshharrison/siteloom/internal/graph"
	"github.com/joshharrison/siteloom/internal/schedule"
	"github.com/joshharrison/siteloom/internal/ui"
)

func vizCmd() *cobra.Command {
	var (
		flagFormat   string
		flagCritical bool
	)

	cmd := &cobra.Command{
		Use:   "viz <project>",
		Short: "Print the activity dependency graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(args[0])
			if err != nil {
				return err
			}

			network, err := cpm.LeafNetwork(p.Activities)
			if err != nil {
				return err
			}
			g, err := graph.Build(network)
			if err != nil {
				return fmt.Errorf("build activity graph: %w", err)
			}
			result, err := cpm.AnalyzeGraph(g)
			if err != nil {
				return fmt.Errorf("CPM analysis: %w", err)
			}

			if flagCritical {
				g, err = g.Filter(func(a *schedule.Activity) bool {
					ts, ok := result.Tasks[a.ID]
					return ok && ts.IsCritical
				})
				if err != nil {
					return fmt.Errorf("filter critical: %w", err)
				}
			}

			switch flagFormat {
			case "dot":
				printDOT(os.Stdout, g, result)
			case "ascii":
				printASCIIDAG(os.Stdout, g, result)
			default:
				return fmt.Errorf("unsupported format: %s (use ascii or dot)", flagFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")
	cmd.Flags().BoolVar(&flagCritical, "critical", false, "Show only critical activities")

	return cmd
}

func printASCIIDAG(w io.Writer, g *graph.ActivityGraph, result *cpm.Result) {
	fmt.Fprintf(w, "%s\n", ui.BoldCyan("Activity Dependency Graph"))
	fmt.Fprintln(w, ui.Cyan("═════════════════════════"))
	fmt.Fprintln(w)

	for _, wave := range result.Waves {
		var ids []string
		for _, id := range wave.ActivityIDs {
			if _, ok := g.Activities[id]; ok {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}

		fmt.Fprintf(w, "%s Wave %d (day %d) %s\n", ui.Cyan("──"), wave.Index+1,
			result.Tasks[ids[0]].ES, ui.Cyan("──────────────────────────────"))
		for _, id := range ids {
			ts := result.Tasks[id]
			fmt.Fprintf(w, "  %s [%s] %s %s\n", ui.CriticalMark(ts.IsCritical), ui.BoldMagenta(id),
				g.Activities[id].Name, ui.Dim(fmt.Sprintf("%dd, float %d", ts.Duration, ts.Float)))

			for _, succ := range g.Adj[id] {
				fmt.Fprintf(w, "      %s %s %s\n", ui.Dim("└──→"), ui.Magenta(succ),
					ui.Dim(string(g.Activities[succ].Relation())))
			}
		}
		fmt.Fprintln(w)
	}
}

func printDOT(w io.Writer, g *graph.ActivityGraph, result *cpm.Result) {
	fmt.Fprintln(w, "digraph siteloom {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(w)

	for _, id := range g.IDs {
		a := g.Activities[id]
		label := fmt.Sprintf("%s\\n%s\\n%dd", id, a.Name, a.DurationDays)
		attrs := fmt.Sprintf(`label="%s"`, label)
		if ts, ok := result.Tasks[id]; ok && ts.IsCritical {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(w, "  %q [%s];\n", id, attrs)
	}

	fmt.Fprintln(w)

	for _, from := range g.IDs {
		for _, to := range g.Adj[from] {
			var attrs []string
			if rel := g.Activities[to].Relation(); rel != schedule.FinishToStart || g.Activities[to].LagDays != 0 {
				attrs = append(attrs, fmt.Sprintf(`label="%s%+d"`, rel, g.Activities[to].LagDays))
			}
			if result.Tasks[from] != nil && result.Tasks[from].IsCritical &&
				result.Tasks[to] != nil && result.Tasks[to].IsCritical {
				attrs = append(attrs, "color=red", "penwidth=2")
			}
			style := ""
			if len(attrs) > 0 {
				style = " [" + strings.Join(attrs, ", ") + "]"
			}
			fmt.Fprintf(w, "  %q -> %q%s;\n", from, to, style)
		}
	}

	fmt.Fprintln(w, "}")
}
