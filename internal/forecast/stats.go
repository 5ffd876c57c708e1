package forecast

import (
	"math"

	"github.com/theirongolddev/runway/internal/model"
)

// StatsParams carries the constants the statistics computation depends on.
type StatsParams struct {
	StartingBalance float64
	Variant         Variant
	WeeksPerMonth   float64
	Z90             float64
	Z95             float64
}

func (e *Engine) statsParams(v Variant, startingBalance float64) StatsParams {
	return StatsParams{
		StartingBalance: startingBalance,
		Variant:         v,
		WeeksPerMonth:   e.cfg.WeeksPerMonth,
		Z90:             e.cfg.Z90,
		Z95:             e.cfg.Z95,
	}
}

// ComputeStatistics derives net, cumulative and running balance series,
// confidence bands and key metrics from per-period inflow and outflow totals.
// inflows, outflows and labels must have the same length.
func ComputeStatistics(inflows, outflows []float64, labels []string, p StatsParams) (model.Statistics, model.ConfidenceBands, model.KeyMetrics) {
	n := len(inflows)
	stats := model.Statistics{
		TotalInflows:       inflows,
		TotalOutflows:      outflows,
		NetCashFlow:        make([]float64, n),
		CumulativeCashFlow: make([]float64, n),
		RunningBalance:     make([]float64, n),
	}

	var cum float64
	for i := 0; i < n; i++ {
		net := inflows[i] - outflows[i]
		cum += net
		stats.NetCashFlow[i] = net
		stats.CumulativeCashFlow[i] = cum
		stats.RunningBalance[i] = p.StartingBalance + cum
	}

	bands := confidenceBands(stats.NetCashFlow, p)
	metrics := keyMetrics(stats, labels, p)
	return stats, bands, metrics
}

// confidenceBands keeps the two per-variant formulas: flat width for the short
// horizon and sqrt-of-progress width for the long one.
func confidenceBands(net []float64, p StatsParams) model.ConfidenceBands {
	n := len(net)
	b := model.ConfidenceBands{
		Lower90: make([]float64, n),
		Upper90: make([]float64, n),
		Lower95: make([]float64, n),
		Upper95: make([]float64, n),
	}
	vol := p.Variant.Volatility
	for i, v := range net {
		scale := 1.0
		if p.Variant.Band == BandScaled {
			scale = math.Sqrt(float64(i+1) / float64(n))
		}
		w90 := p.Z90 * vol * scale
		w95 := p.Z95 * vol * scale
		b.Lower90[i] = v * (1 - w90)
		b.Upper90[i] = v * (1 + w90)
		b.Lower95[i] = v * (1 - w95)
		b.Upper95[i] = v * (1 + w95)
	}
	return b
}

func keyMetrics(stats model.Statistics, labels []string, p StatsParams) model.KeyMetrics {
	m := model.KeyMetrics{
		BurnRate:      BurnRate(stats.NetCashFlow),
		BreakEvenUnit: string(p.Variant.BreakEvenUnit),
		WeeksPerMonth: p.WeeksPerMonth,
	}
	m.Runway = RunwayFor(p.StartingBalance, m.BurnRate, p.WeeksPerMonth)

	if idx, ok := BreakEvenIndex(stats.NetCashFlow); ok {
		period := idx + 1
		if p.Variant.BreakEvenUnit == BreakEvenMonths && p.WeeksPerMonth > 0 {
			period = int(math.Ceil(float64(period) / p.WeeksPerMonth))
		}
		m.BreakEvenPeriod = &period
	}

	if idx, ok := MinIndex(stats.RunningBalance); ok {
		m.CashMinimumBalance = stats.RunningBalance[idx]
		if idx < len(labels) {
			label := labels[idx]
			m.CashMinimumDate = &label
		}
	}
	return m
}

// BurnRate is the mean magnitude of the negative net flows, or 0 if there are none.
func BurnRate(net []float64) float64 {
	var sum float64
	var count int
	for _, v := range net {
		if v < 0 {
			sum += -v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// RunwayFor converts a per-week burn into months of runway for balance.
func RunwayFor(balance, burnRate, weeksPerMonth float64) model.Runway {
	monthlyBurn := burnRate * weeksPerMonth
	if monthlyBurn == 0 {
		return model.Runway{Indefinite: true}
	}
	return model.Runway{Months: balance / monthlyBurn}
}

// BreakEvenIndex returns the first index with a positive net flow.
func BreakEvenIndex(net []float64) (int, bool) {
	for i, v := range net {
		if v > 0 {
			return i, true
		}
	}
	return 0, false
}

// MinIndex returns the index of the smallest value. Ties keep the first one.
func MinIndex(values []float64) (int, bool) {
	if len(values) == 0 {
		return 0, false
	}
	idx := 0
	for i, v := range values[1:] {
		if v < values[idx] {
			idx = i + 1
		}
	}
	return idx, true
}
