package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderConfidenceTab(cw, contentH int) string {
	t := theme.Active
	res := a.result
	bands := res.Confidence
	net := res.Statistics.NetCashFlow
	var b strings.Builder

	// Row 1: band spread summary
	var widest90, widest95 float64
	for i := range net {
		widest90 = max(widest90, bands.Upper90[i]-bands.Lower90[i])
		widest95 = max(widest95, bands.Upper95[i]-bands.Lower95[i])
	}
	downside := 0.0
	for _, v := range bands.Lower95 {
		downside += v
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Widest 90% band", Value: cli.FormatMoney(widest90)},
		{Label: "Widest 95% band", Value: cli.FormatMoney(widest95)},
		{Label: "Downside total (95%)", Value: cli.FormatMoney(downside), Color: t.Signed(downside)},
	}, cw))
	b.WriteString("\n")

	// Row 2: interval table
	innerW := components.CardInnerWidth(cw)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	band95 := lipgloss.NewStyle().Foreground(t.Band95).Background(t.Surface)
	band90 := lipgloss.NewStyle().Foreground(t.Band90).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	periodW := 14
	colW := max(12, (innerW-periodW-2*5)/5)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-*s", periodW, "Period")))
	for _, h := range []string{"Lower 95%", "Lower 90%", "Net", "Upper 90%", "Upper 95%"} {
		body.WriteString(headerStyle.Render(fmt.Sprintf("  %*s", colW, h)))
	}
	body.WriteString("\n")
	body.WriteString(muted.Render(strings.Repeat("─", min(innerW, periodW+5*(colW+2)))))

	// Rows that fit under the metric cards, table header and card chrome.
	visible := max(3, contentH-5-2-cardChrome)
	for i, p := range res.Periods {
		if i >= visible {
			body.WriteString("\n")
			body.WriteString(muted.Render(fmt.Sprintf("… %d more periods", len(res.Periods)-visible)))
			break
		}
		cell := func(style lipgloss.Style, v float64) string {
			return space.Render("  ") + style.Render(fmt.Sprintf("%*s", colW, cli.FormatMoney(v)))
		}
		netStyle := lipgloss.NewStyle().Foreground(t.Signed(net[i])).Background(t.Surface).Bold(true)

		body.WriteString("\n")
		body.WriteString(muted.Render(fmt.Sprintf("%-*s", periodW, shortPeriod(p))))
		body.WriteString(cell(band95, bands.Lower95[i]))
		body.WriteString(cell(band90, bands.Lower90[i]))
		body.WriteString(cell(netStyle, net[i]))
		body.WriteString(cell(band90, bands.Upper90[i]))
		body.WriteString(cell(band95, bands.Upper95[i]))
	}

	b.WriteString(components.ContentCard("Net Cash Flow Confidence Intervals", body.String(), cw))
	return b.String()
}
