package components

import (
	"strings"

	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the status bar reports on its right side.
type StatusInfo struct {
	Forecast    string // e.g. "13w from 2026-01-05"
	DataAge     string
	Refreshing  bool
	AutoRefresh bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	live := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)

	left := muted.Render(" [?]help  [r]efresh  [q]uit")

	var right []string
	if info.Forecast != "" {
		right = append(right, accent.Render(info.Forecast))
	}
	switch {
	case info.Refreshing:
		right = append(right, live.Render("refreshing…"))
	case info.AutoRefresh:
		right = append(right, live.Render("auto"))
	}
	if info.DataAge != "" {
		right = append(right, muted.Render("loaded in "+info.DataAge))
	}
	rightStr := strings.Join(right, muted.Render("  ")) + muted.Render(" ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if gap < 0 {
		gap = 0
	}
	return left + muted.Render(strings.Repeat(" ", gap)) + rightStr
}
