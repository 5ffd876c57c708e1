package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/report"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderRiskTab(cw int) string {
	t := theme.Active
	risk := a.risk
	var b strings.Builder

	cfarValue, cfarNote := "n/a", "needs 2+ periods"
	if risk.CFaR != nil {
		cfarValue = cli.FormatMoney(risk.CFaR.Value)
		cfarNote = "shortfall " + cli.FormatMoney(risk.CFaR.ExpectedShortfall)
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Liquidity", Value: risk.LiquidityStatus, Note: cli.FormatRatio(risk.LiquidityRatio) + " of minimum", Color: t.Status(risk.LiquidityStatus)},
		{Label: "Minimum Cash", Value: cli.FormatMoney(risk.MinimumRequirement), Note: "1.5x mean outflow"},
		{Label: "CFaR (95%)", Value: cfarValue, Note: cfarNote, Color: t.Orange},
		{Label: "Deficit Periods", Value: fmt.Sprintf("%d", risk.DeficitPeriods), Note: fmt.Sprintf("of %d", a.result.Horizon)},
	}, cw))
	b.WriteString("\n")

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	halves := components.LayoutRow(cw, 2)
	var body strings.Builder
	body.WriteString(components.RatioBar("Liquidity ratio", risk.LiquidityRatio, 16,
		max(10, components.CardInnerWidth(halves[0])-24)))
	body.WriteString("\n\n")
	body.WriteString(label.Render("Recommendation  "))
	body.WriteString(value.Render(risk.Recommendation))
	body.WriteString("\n")
	body.WriteString(label.Render("Burn trend      "))
	body.WriteString(lipgloss.NewStyle().Foreground(t.Status(risk.BurnTrend)).Background(t.Surface).Render(risk.BurnTrend))
	body.WriteString(label.Render(fmt.Sprintf("  (volatility %s)", cli.FormatMoney(risk.BurnRateVolatility))))
	body.WriteString("\n")
	body.WriteString(label.Render("Cash on hand    "))
	body.WriteString(value.Render(report.DaysText(risk.DaysCashOnHand)))
	if risk.CFaR != nil {
		body.WriteString("\n")
		body.WriteString(label.Render("Volatility      "))
		body.WriteString(value.Render(cli.FormatMoney(risk.CFaR.Volatility)))
	}
	body.WriteString("\n")
	if len(risk.NegativePeriods) == 0 {
		body.WriteString(label.Render("Balance stays positive across the horizon"))
	} else {
		body.WriteString(warn.Render(fmt.Sprintf("Balance negative in %d periods, first %s",
			len(risk.NegativePeriods), shortPeriod(risk.NegativePeriods[0]))))
	}
	riskCard := components.ContentCard("Risk Analysis", body.String(), halves[0])

	scenarioW := halves[1]
	if a.isCompactLayout() {
		riskCard = components.ContentCard("Risk Analysis", body.String(), cw)
		scenarioW = cw
	}
	scenarioCard := components.ContentCard("Scenarios", a.renderScenarios(components.CardInnerWidth(scenarioW)), scenarioW)

	if a.isCompactLayout() {
		b.WriteString(riskCard)
		b.WriteString("\n")
		b.WriteString(scenarioCard)
	} else {
		b.WriteString(components.CardRow([]string{riskCard, scenarioCard}))
	}
	return b.String()
}

// renderScenarios compares ending balance, runway and break-even across the
// configured scenarios.
func (a App) renderScenarios(innerW int) string {
	t := theme.Active
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	name := lipgloss.NewStyle().Foreground(t.BlueBright).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	if len(a.scenarios) == 0 {
		return muted.Render("No scenarios configured")
	}

	colW := 13
	nameW := max(10, innerW-3*colW)

	var b strings.Builder
	b.WriteString(header.Render(fmt.Sprintf("%-*s%*s%*s%*s", nameW, "Scenario", colW, "Ending", colW, "Runway", colW, "Break-even")))
	b.WriteString("\n")
	b.WriteString(muted.Render(strings.Repeat("─", nameW+3*colW)))
	for _, sc := range a.scenarios {
		ending := last(sc.Statistics.RunningBalance)
		b.WriteString("\n")
		b.WriteString(name.Render(fmt.Sprintf("%-*s", nameW, truncStr(sc.Name, nameW))))
		b.WriteString(lipgloss.NewStyle().Foreground(t.Signed(ending)).Background(t.Surface).
			Render(fmt.Sprintf("%*s", colW, cli.FormatCompactMoney(ending))))
		b.WriteString(value.Render(fmt.Sprintf("%*s%*s", colW, report.RunwayText(sc.Metrics.Runway), colW, report.BreakEvenText(sc.Metrics))))
	}
	return b.String()
}
