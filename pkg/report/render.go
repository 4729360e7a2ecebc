package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var alertStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("9")).
	Bold(true)

// RenderPlain renders the report as plain indented text. Alert entries
// are prefixed with "WARNING:" so they survive contexts without color
// support (log files, HTML text areas).
func RenderPlain(r *Report) string {
	var b strings.Builder
	for i, e := range r.entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat(" ", e.Indent))
		if e.Severity == SeverityAlert {
			b.WriteString("  WARNING: ")
		}
		b.WriteString(e.Text)
	}
	return b.String()
}

// RenderTerminal renders the report for terminal output, coloring alert
// entries red via lipgloss.
func RenderTerminal(r *Report) string {
	var b strings.Builder
	for i, e := range r.entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		line := strings.Repeat(" ", e.Indent) + e.Text
		if e.Severity == SeverityAlert {
			line = alertStyle.Render(line)
		}
		b.WriteString(line)
	}
	return b.String()
}
