package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// cardChrome is the vertical space a titled ContentCard adds around its body.
const cardChrome = 3

func newPeriodTable() table.Model {
	return table.New(
		table.WithColumns(periodColumns(100)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
}

// periodColumns sizes the forecast columns to fill width.
func periodColumns(width int) []table.Column {
	money := max(12, (width-16)/4-2)
	return []table.Column{
		{Title: "Period", Width: 14},
		{Title: "Inflows", Width: money},
		{Title: "Outflows", Width: money},
		{Title: "Net", Width: money},
		{Title: "Balance", Width: money},
	}
}

// periodTableWidth is the outer width of the table card.
func (a App) periodTableWidth() int {
	cw := a.contentWidth()
	if a.isCompactLayout() {
		return cw
	}
	return cw * 3 / 5
}

// syncPeriodTable refreshes rows, sizes and styles after a recompute or a
// resize, keeping the cursor in range.
func (a *App) syncPeriodTable() {
	t := theme.Active

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Foreground(t.Accent).
		Background(t.Surface).
		BorderForeground(t.Border).
		BorderBackground(t.Surface).
		Bold(true)
	styles.Cell = styles.Cell.Foreground(t.TextPrimary).Background(t.Surface)
	styles.Selected = styles.Selected.Foreground(t.AccentBright).Background(t.SurfaceBright).Bold(true)
	a.periodTable.SetStyles(styles)

	inner := components.CardInnerWidth(a.periodTableWidth())
	a.periodTable.SetColumns(periodColumns(inner))
	a.periodTable.SetWidth(inner)
	if a.height > 0 {
		a.periodTable.SetHeight(max(3, a.contentHeight()-cardChrome))
	}

	var rows []table.Row
	if res := a.result; res != nil {
		s := res.Statistics
		rows = make([]table.Row, len(res.Periods))
		for i, p := range res.Periods {
			rows[i] = table.Row{
				shortPeriod(p),
				cli.FormatMoney(s.TotalInflows[i]),
				cli.FormatMoney(s.TotalOutflows[i]),
				cli.FormatMoney(s.NetCashFlow[i]),
				cli.FormatMoney(s.RunningBalance[i]),
			}
		}
	}
	a.periodTable.SetRows(rows)
	if c := a.periodTable.Cursor(); c >= len(rows) {
		a.periodTable.SetCursor(max(0, len(rows)-1))
	}
}

func (a App) renderForecastTab(cw int) string {
	res := a.result
	title := fmt.Sprintf("%d-Period Forecast (%s)", res.Horizon, res.Cadence)
	tableCard := components.ContentCard(title, a.periodTable.View(), a.periodTableWidth())
	if a.isCompactLayout() {
		return tableCard
	}

	sideW := cw - a.periodTableWidth()
	idx := a.periodTable.Cursor()
	return components.CardRow([]string{
		tableCard,
		components.ContentCard("Period "+shortPeriod(res.Periods[idx]), a.renderPeriodDetail(idx, sideW), sideW),
	})
}

// renderPeriodDetail lists every category's projection for one period.
func (a App) renderPeriodDetail(idx, outerW int) string {
	t := theme.Active
	res := a.result
	innerW := components.CardInnerWidth(outerW)

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rule := muted.Render(strings.Repeat("─", innerW))

	amountW := 14
	nameW := max(8, innerW-amountW)

	line := func(name string, v float64, color lipgloss.Color) string {
		return nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(name, nameW))) +
			lipgloss.NewStyle().Foreground(color).Background(t.Surface).
				Render(fmt.Sprintf("%*s", amountW, cli.FormatMoney(v)))
	}

	var lines []string
	for _, c := range res.Categories {
		color := t.Red
		if c.IsInflow {
			color = t.Green
		}
		lines = append(lines, line(c.Name, c.Values[idx], color))
	}
	if len(lines) == 0 {
		lines = append(lines, muted.Render("No categories"))
	}

	s := res.Statistics
	lines = append(lines,
		rule,
		line("Net", s.NetCashFlow[idx], t.Signed(s.NetCashFlow[idx])),
		line("Cumulative", s.CumulativeCashFlow[idx], t.Signed(s.CumulativeCashFlow[idx])),
		line("Balance", s.RunningBalance[idx], t.Signed(s.RunningBalance[idx])),
	)
	return strings.Join(lines, "\n")
}
