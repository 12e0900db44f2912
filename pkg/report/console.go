package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/pdi-login/pkg/types"
)

// RenderConsole prints the end-of-run block: one line per instance followed
// by the counts. Styling degrades to plain text when w is not a terminal.
func RenderConsole(w io.Writer, s *Summary) {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Foreground(lipgloss.Color("#FFB3BA")).Bold(true)
	muted := r.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	styles := map[types.Outcome]lipgloss.Style{
		types.OutcomeSuccess: r.NewStyle().Foreground(lipgloss.Color("#A8E6CF")).Bold(true),
		types.OutcomeWarning: r.NewStyle().Foreground(lipgloss.Color("#FFD580")),
		types.OutcomeError:   r.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true),
	}
	marks := map[types.Outcome]string{
		types.OutcomeSuccess: "✓",
		types.OutcomeWarning: "⚠",
		types.OutcomeError:   "✗",
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, title.Render("Run summary"))
	fmt.Fprintln(w, muted.Render(strings.Repeat("─", 50)))

	for _, e := range s.Entries {
		line := fmt.Sprintf("%s %-7s %s", marks[e.Status], e.Status, e.URL)
		fmt.Fprintln(w, styles[e.Status].Render(line))

		var details []string
		if e.Title != nil {
			details = append(details, fmt.Sprintf("title: %q", *e.Title))
		}
		if e.Error != nil {
			details = append(details, "error: "+*e.Error)
		}
		if e.Hibernated {
			details = append(details, "woken from hibernation")
		}
		if len(details) > 0 {
			fmt.Fprintln(w, muted.Render("    "+strings.Join(details, ", ")))
		}
	}

	if s.Metrics.Skipped > 0 {
		fmt.Fprintln(w, styles[types.OutcomeError].Render(fmt.Sprintf("✗ %d instance(s) not processed", s.Metrics.Skipped)))
	}

	fmt.Fprintln(w, muted.Render(strings.Repeat("─", 50)))
	fmt.Fprintf(w, "%d succeeded, %d warnings, %d errors in %s\n",
		s.Metrics.Succeeded, s.Metrics.Warnings, s.Metrics.Errors, s.Duration.Round(time.Second))
}
