package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Row is one label/value line of a summary box.
type Row struct {
	Label string
	Value string
}

// SummaryBox renders rows under title inside a rounded border. Labels are
// padded to a common width.
func SummaryBox(title string, rows []Row) string {
	th := CurrentBoxTheme()
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(th.Title)
	labelStyle := lipgloss.NewStyle().Foreground(th.Label)
	valueStyle := lipgloss.NewStyle().Foreground(th.Value)

	width := 0
	for _, r := range rows {
		width = max(width, lipgloss.Width(r.Label))
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, titleStyle.Render(title))
	for _, r := range rows {
		label := labelStyle.Width(width).Render(r.Label)
		lines = append(lines, label+"  "+valueStyle.Render(r.Value))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Border).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}
