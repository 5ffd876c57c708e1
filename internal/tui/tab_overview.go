package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/report"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	res := a.result
	stats := res.Statistics
	m := res.Metrics
	var b strings.Builder

	// Row 1: metric cards
	ending := last(stats.RunningBalance)
	runwayColor := t.GreenBright
	switch {
	case m.Runway.Indefinite:
	case m.Runway.Months < 6:
		runwayColor = t.Red
	case m.Runway.Months < 12:
		runwayColor = t.Orange
	}
	cards := []components.Metric{
		{Label: "Ending Balance", Value: cli.FormatMoney(ending), Note: cli.FormatDelta(ending, res.StartingBalance), Color: t.Signed(ending)},
		{Label: "Net Cash Flow", Value: cli.FormatMoney(last(stats.CumulativeCashFlow)), Note: fmt.Sprintf("over %d periods", res.Horizon), Color: t.Signed(last(stats.CumulativeCashFlow))},
		{Label: "Burn Rate", Value: cli.FormatMoney(m.BurnRate) + "/period", Note: a.risk.Recommendation},
		{Label: "Runway", Value: report.RunwayText(m.Runway), Note: "break-even " + report.BreakEvenText(m), Color: runwayColor},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: running balance and net flow charts
	labels := chartPeriodLabels(res)
	if a.isCompactLayout() {
		const chartH = 6
		b.WriteString(components.ContentCard("Running Balance",
			components.BarChart(stats.RunningBalance, labels, t.Blue, components.CardInnerWidth(cw), chartH), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Net Cash Flow",
			components.BarChart(stats.NetCashFlow, labels, t.Green, components.CardInnerWidth(cw), chartH), cw))
	} else {
		const chartH = 8
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Running Balance",
				components.BarChart(stats.RunningBalance, labels, t.Blue, components.CardInnerWidth(halves[0]), chartH), halves[0]),
			components.ContentCard("Net Cash Flow",
				components.BarChart(stats.NetCashFlow, labels, t.Green, components.CardInnerWidth(halves[1]), chartH), halves[1]),
		}))
	}
	b.WriteString("\n")

	// Row 3: category totals + cash minimum
	const catTitle = "Categories (horizon totals)"
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard(catTitle,
			renderCategoryShares(res.Categories, components.CardInnerWidth(cw), 6), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Cash Position", a.renderCashPosition(), cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard(catTitle,
				renderCategoryShares(res.Categories, components.CardInnerWidth(halves[0]), 8), halves[0]),
			components.ContentCard("Cash Position", a.renderCashPosition(), halves[1]),
		}))
	}

	return b.String()
}

type categoryTotal struct {
	name   string
	inflow bool
	total  float64
}

// renderCategoryShares lists the largest categories by horizon total with a
// share bar relative to the largest one.
func renderCategoryShares(cats []model.CategoryForecast, innerW, limit int) string {
	t := theme.Active
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	inStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	outStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	if len(cats) == 0 {
		return dimStyle.Render("No categories in the ledger window")
	}

	totals := make([]categoryTotal, len(cats))
	for i, c := range cats {
		var sum float64
		for _, v := range c.Values {
			sum += v
		}
		totals[i] = categoryTotal{name: c.Name, inflow: c.IsInflow, total: sum}
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return math.Abs(totals[i].total) > math.Abs(totals[j].total)
	})
	if len(totals) > limit {
		totals = totals[:limit]
	}

	peak := math.Abs(totals[0].total)
	if peak == 0 {
		peak = 1
	}
	nameW := min(20, max(8, innerW/3))
	amountW := 12
	barW := max(4, innerW-nameW-amountW-2)

	var b strings.Builder
	for i, ct := range totals {
		style := outStyle
		if ct.inflow {
			style = inStyle
		}
		filled := int(math.Abs(ct.total) / peak * float64(barW))
		b.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(ct.name, nameW))))
		b.WriteString(space.Render(" "))
		b.WriteString(style.Render(strings.Repeat("█", filled)))
		b.WriteString(dimStyle.Render(strings.Repeat("░", barW-filled)))
		b.WriteString(style.Render(fmt.Sprintf(" %*s", amountW-1, cli.FormatCompactMoney(ct.total))))
		if i < len(totals)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a App) renderCashPosition() string {
	t := theme.Active
	res := a.result
	m := res.Metrics
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	low := lipgloss.NewStyle().Foreground(t.Signed(m.CashMinimumBalance)).Background(t.Surface).Bold(true)

	lowDate := "n/a"
	if m.CashMinimumDate != nil {
		lowDate = *m.CashMinimumDate
	}

	rows := []struct{ k, v string }{
		{"Opening balance", value.Render(cli.FormatMoney(res.StartingBalance))},
		{"Lowest balance", low.Render(cli.FormatMoney(m.CashMinimumBalance))},
		{"Lowest at", value.Render(lowDate)},
		{"Liquidity", lipgloss.NewStyle().Foreground(t.Status(a.risk.LiquidityStatus)).Background(t.Surface).Render(a.risk.LiquidityStatus)},
		{"Deficit periods", value.Render(fmt.Sprintf("%d of %d", a.risk.DeficitPeriods, res.Horizon))},
	}

	var b strings.Builder
	for i, r := range rows {
		b.WriteString(label.Render(fmt.Sprintf("%-17s", r.k)))
		b.WriteString(r.v)
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(components.Sparkline(res.Statistics.RunningBalance, t.Accent))
	return b.String()
}

// chartPeriodLabels builds short x-axis labels: "01-19" for weekly periods,
// "Jan" for monthly ones.
func chartPeriodLabels(res *model.RollingForecastResult) []string {
	labels := make([]string, len(res.Periods))
	for i := range labels {
		if res.Cadence == string(forecast.Monthly) {
			labels[i] = res.StartDate.AddDate(0, i, 0).Format("Jan")
		} else {
			labels[i] = res.StartDate.AddDate(0, 0, 7*i).Format("01-02")
		}
	}
	return labels
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

// shortPeriod trims the weekly "W3 " prefix for narrow columns.
func shortPeriod(label string) string {
	if i := strings.IndexByte(label, ' '); i >= 0 && strings.HasPrefix(label, "W") {
		return label[i+1:]
	}
	return label
}
