package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Red      = lipgloss.Color("#f38ba8")
	Yellow   = lipgloss.Color("#f9e2af")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	PaneActive = Pane.BorderForeground(Lavender)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Good  = lipgloss.NewStyle().Foreground(Green).Bold(true)
	Bad   = lipgloss.NewStyle().Foreground(Red)

	// Clock renders the running timer.
	Clock = lipgloss.NewStyle().Foreground(Lavender).Bold(true).Padding(1, 4).
		BorderStyle(lipgloss.DoubleBorder()).BorderForeground(Surface1)

	barFill  = lipgloss.NewStyle().Foreground(Sapphire)
	barDone  = lipgloss.NewStyle().Foreground(Green)
	barEmpty = lipgloss.NewStyle().Foreground(Surface1)
)

// Bar renders value/max as a horizontal bar of the given width.
func Bar(value, max, width int) string {
	return bar(value, max, width, barFill)
}

// GoalBar is Bar with the fill turning green once the goal is met.
func GoalBar(percent, width int) string {
	if percent >= 100 {
		return bar(100, 100, width, barDone)
	}
	return bar(percent, 100, width, barFill)
}

func bar(value, max, width int, fill lipgloss.Style) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if max > 0 && value > 0 {
		filled = value * width / max
		if filled == 0 {
			filled = 1
		}
		if filled > width {
			filled = width
		}
	}
	return fill.Render(strings.Repeat("█", filled)) + barEmpty.Render(strings.Repeat("░", width-filled))
}
