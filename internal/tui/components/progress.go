package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a loading bar with a percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := int(pct * float64(width))

	barColor := t.Cyan
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		space + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// RatioFull is the liquidity ratio drawn as a full bar.
const RatioFull = 3.0

// ColorForRatio colors a liquidity ratio: higher is healthier.
func ColorForRatio(ratio float64) lipgloss.Color {
	t := theme.Active
	switch {
	case ratio >= 2:
		return t.Green
	case ratio >= 1.5:
		return t.Yellow
	case ratio >= 1:
		return t.Orange
	default:
		return t.Red
	}
}

// RatioBar renders a labeled liquidity ratio gauge. The bar is full at
// RatioFull.
func RatioBar(label string, ratio float64, labelW, barWidth int) string {
	t := theme.Active
	color := ColorForRatio(ratio)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		space +
		bar.ViewAs(clamp01(ratio/RatioFull)) +
		space +
		valueStyle.Render(fmt.Sprintf("%.2fx", ratio))
}

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}
