package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/joshharrison/siteloom/internal/evm"
	"github.com/joshharrison/siteloom/internal/schedule"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// Disable turns off color output, e.g. for --json or non-terminal writers.
func Disable() {
	color.NoColor = true
}

// PrintBanner renders the project header.
func PrintBanner(w io.Writer, name string) {
	frame := color.New(color.FgCyan)
	brand := color.New(color.Bold, color.FgMagenta)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +--------------------------+")
	brand.Fprintln(w, "   |  S I T E L O O M         |")
	frame.Fprintln(w, "   +--------------------------+")
	if name != "" {
		fmt.Fprintf(w, "   %s\n", Bold(name))
	}
	fmt.Fprintln(w)
}

// crewColors is a palette of distinct bold colors for differentiating crews.
var crewColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

func crewColorIndex(name string) int {
	var h uint32
	for _, c := range name {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(crewColors)))
}

// CrewLabel returns the responsible party in a stable per-name color.
func CrewLabel(name string) string {
	if name == "" {
		return Dim("-")
	}
	return crewColors[crewColorIndex(name)](name)
}

// StatusIcon returns a colored status icon for compact table display.
func StatusIcon(status schedule.Status) string {
	switch status {
	case schedule.StatusCompleted:
		return Green("✓")
	case schedule.StatusInProgress:
		return Cyan("●")
	case schedule.StatusOnTrack:
		return Cyan("○")
	case schedule.StatusDelayed:
		return Red("✗")
	default:
		return Dim("◌")
	}
}

// CriticalMark flags critical activities.
func CriticalMark(critical bool) string {
	if critical {
		return BoldRed("★")
	}
	return " "
}

// AlertBadge returns a colored label for an alert kind.
func AlertBadge(kind evm.AlertKind) string {
	switch kind {
	case evm.AlertCritical:
		return BoldRed(string(kind))
	case evm.AlertWarning:
		return BoldYellow(string(kind))
	default:
		return Cyan(string(kind))
	}
}

// Index colors a performance index: green at or above 1, yellow down to
// 0.9, red below.
func Index(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	switch {
	case v >= 1:
		return Green(s)
	case v >= 0.9:
		return Yellow(s)
	default:
		return Red(s)
	}
}
