// Package report lays a forecast out as titled tables for the terminal and
// for spreadsheet export.
package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
)

// ColumnKind tells renderers how to format a column's values.
type ColumnKind int

const (
	Text ColumnKind = iota
	Money
	Ratio
	Percent
)

// Column is one table column.
type Column struct {
	Header string
	Kind   ColumnKind
}

// Typed is a numeric cell formatted by its own kind instead of its column's.
type Typed struct {
	Value float64
	Kind  ColumnKind
}

// Section is one titled table. Cells are string, int, float64 or Typed.
type Section struct {
	Title   string
	Columns []Column
	Rows    [][]any
}

// Headers returns the column headers.
func (s Section) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Header
	}
	return out
}

// Report is a rendered forecast.
type Report struct {
	Title       string
	RunID       string
	GeneratedAt time.Time
	Sections    []Section
}

// Section titles.
const (
	KeyMetrics          = "Key Metrics"
	DetailedForecast    = "Detailed Forecast"
	ConfidenceIntervals = "Confidence Intervals"
	RiskAnalysis        = "Risk Analysis"
	Scenarios           = "Scenarios"
)

// Build lays out a forecast and its risk analysis.
func Build(res *model.RollingForecastResult, risk forecast.RiskAnalysis) Report {
	r := Report{
		Title:       reportTitle(res),
		RunID:       res.RunID,
		GeneratedAt: res.GeneratedAt,
	}
	r.Sections = append(r.Sections,
		keyMetrics(res),
		detailedForecast(res),
		confidenceIntervals(res),
		riskAnalysis(risk),
	)
	return r
}

func reportTitle(res *model.RollingForecastResult) string {
	if res.Horizon == forecast.LongTerm.Horizon {
		return "52-Week Rolling Cash Flow Forecast"
	}
	return "13-Week Rolling Cash Flow Forecast"
}

func keyMetrics(res *model.RollingForecastResult) Section {
	m := res.Metrics
	rows := [][]any{
		{"Starting balance", res.StartingBalance},
		{BurnRateLabel(res.Cadence), m.BurnRate},
		{"Cash runway", RunwayText(m.Runway)},
		{"Runway basis", RunwayBasisText(res.Cadence, m.WeeksPerMonth)},
		{"Break-even", BreakEvenText(m)},
	}
	if m.CashMinimumDate != nil {
		rows = append(rows,
			[]any{"Cash minimum date", *m.CashMinimumDate},
			[]any{"Cash minimum balance", m.CashMinimumBalance},
		)
	}
	if n := len(res.Statistics.RunningBalance); n > 0 {
		rows = append(rows, []any{"Ending balance", res.Statistics.RunningBalance[n-1]})
	}
	return Section{
		Title:   KeyMetrics,
		Columns: []Column{{Header: "Metric"}, {Header: "Value", Kind: Money}},
		Rows:    rows,
	}
}

func detailedForecast(res *model.RollingForecastResult) Section {
	s := res.Statistics
	sec := Section{
		Title: DetailedForecast,
		Columns: []Column{
			{Header: "Period"},
			{Header: "Inflows", Kind: Money},
			{Header: "Outflows", Kind: Money},
			{Header: "Net Cash Flow", Kind: Money},
			{Header: "Cumulative", Kind: Money},
			{Header: "Running Balance", Kind: Money},
		},
	}
	for i, p := range res.Periods {
		sec.Rows = append(sec.Rows, []any{
			p, s.TotalInflows[i], s.TotalOutflows[i], s.NetCashFlow[i],
			s.CumulativeCashFlow[i], s.RunningBalance[i],
		})
	}
	return sec
}

func confidenceIntervals(res *model.RollingForecastResult) Section {
	c := res.Confidence
	sec := Section{
		Title: ConfidenceIntervals,
		Columns: []Column{
			{Header: "Period"},
			{Header: "Lower 95%", Kind: Money},
			{Header: "Lower 90%", Kind: Money},
			{Header: "Net Cash Flow", Kind: Money},
			{Header: "Upper 90%", Kind: Money},
			{Header: "Upper 95%", Kind: Money},
		},
	}
	for i, p := range res.Periods {
		sec.Rows = append(sec.Rows, []any{
			p, c.Lower95[i], c.Lower90[i], res.Statistics.NetCashFlow[i], c.Upper90[i], c.Upper95[i],
		})
	}
	return sec
}

func riskAnalysis(risk forecast.RiskAnalysis) Section {
	rows := [][]any{
		{"Recommendation", risk.Recommendation},
		{"Burn trend", risk.BurnTrend},
		{"Burn rate volatility", risk.BurnRateVolatility},
		{"Days cash on hand", DaysText(risk.DaysCashOnHand)},
		{"Minimum cash requirement", risk.MinimumRequirement},
		{"Liquidity status", risk.LiquidityStatus},
		{"Deficit periods", risk.DeficitPeriods},
		{"Periods below zero", len(risk.NegativePeriods)},
	}
	if risk.MinimumRequirement > 0 {
		rows = append(rows, []any{"Liquidity ratio", Typed{Value: risk.LiquidityRatio, Kind: Ratio}})
	}
	if risk.CFaR != nil {
		rows = append(rows,
			[]any{"Cash flow at risk (95%)", risk.CFaR.Value},
			[]any{"Expected shortfall", risk.CFaR.ExpectedShortfall},
			[]any{"Net flow volatility", risk.CFaR.Volatility},
		)
	}
	return Section{
		Title:   RiskAnalysis,
		Columns: []Column{{Header: "Measure"}, {Header: "Value", Kind: Money}},
		Rows:    rows,
	}
}

// AddScenarios appends a scenario comparison section.
func (r *Report) AddScenarios(results []forecast.ScenarioResult) {
	sec := Section{
		Title: Scenarios,
		Columns: []Column{
			{Header: "Scenario"},
			{Header: "Total Net", Kind: Money},
			{Header: "Ending Balance", Kind: Money},
			{Header: "Minimum Balance", Kind: Money},
			{Header: "Burn Rate", Kind: Money},
			{Header: "Runway"},
		},
	}
	for _, sr := range results {
		var net, ending float64
		for _, v := range sr.Statistics.NetCashFlow {
			net += v
		}
		if n := len(sr.Statistics.RunningBalance); n > 0 {
			ending = sr.Statistics.RunningBalance[n-1]
		}
		sec.Rows = append(sec.Rows, []any{
			sr.Name, net, ending, sr.Metrics.CashMinimumBalance, sr.Metrics.BurnRate, RunwayText(sr.Metrics.Runway),
		})
	}
	r.Sections = append(r.Sections, sec)
}

// Section returns the section with the given title.
func (r Report) Section(title string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Title == title {
			return s, true
		}
	}
	return Section{}, false
}

// RunwayText renders a runway for tables.
func RunwayText(rw model.Runway) string {
	if rw.Indefinite {
		return "Indefinite"
	}
	return rw.String()
}

// BurnRateLabel names the burn-rate row after the period cadence.
func BurnRateLabel(cadence string) string {
	if cadence == string(forecast.Monthly) {
		return "Monthly burn rate"
	}
	return "Weekly burn rate"
}

// RunwayBasisText states how runway converts per-period burn into months.
// Runway always treats a period as one week, so monthly runs understate it.
func RunwayBasisText(cadence string, weeksPerMonth float64) string {
	basis := fmt.Sprintf("burn x %.2f weeks per month", weeksPerMonth)
	if cadence == string(forecast.Monthly) {
		return "periods read as weeks, " + basis
	}
	return basis
}

// DaysText renders days of cash on hand; nil means nothing flows out.
func DaysText(days *float64) string {
	if days == nil {
		return "unlimited"
	}
	return fmt.Sprintf("%.1f days", *days)
}

// BreakEvenText renders the break-even metric, or "none" when no period
// turns positive.
func BreakEvenText(m model.KeyMetrics) string {
	if m.BreakEvenPeriod == nil {
		return "none"
	}
	unit := m.BreakEvenUnit
	if unit == "" {
		unit = "period"
	}
	if *m.BreakEvenPeriod != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", *m.BreakEvenPeriod, unit)
}

// Strings formats every cell. money formats Money values; nil uses a plain
// two-decimal rendering.
func (s Section) Strings(money func(float64) string) [][]string {
	if money == nil {
		money = func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	}
	out := make([][]string, len(s.Rows))
	for i, row := range s.Rows {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			kind := Text
			if j < len(s.Columns) {
				kind = s.Columns[j].Kind
			}
			out[i][j] = formatCell(cell, kind, money)
		}
	}
	return out
}

func formatCell(cell any, kind ColumnKind, money func(float64) string) string {
	switch v := cell.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case Typed:
		return formatCell(v.Value, v.Kind, money)
	case float64:
		switch kind {
		case Money:
			return money(v)
		case Ratio:
			return strconv.FormatFloat(v, 'f', 2, 64) + "x"
		case Percent:
			return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
		default:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	default:
		return fmt.Sprint(v)
	}
}
