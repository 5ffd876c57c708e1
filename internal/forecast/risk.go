package forecast

import (
	"fmt"
	"math"
	"sort"

	"github.com/theirongolddev/runway/internal/model"
)

// CFaR is the cash-flow-at-risk of a net flow series.
type CFaR struct {
	Confidence        float64 `json:"confidence"`
	Value             float64 `json:"value"`             // the (1-confidence) percentile of net flow
	ExpectedShortfall float64 `json:"expectedShortfall"` // mean of flows at or below Value
	Volatility        float64 `json:"volatility"`        // population standard deviation
}

// CashFlowAtRisk computes the percentile of net at (1-confidence), interpolating
// linearly between closest ranks.
func CashFlowAtRisk(net []float64, confidence float64) (CFaR, error) {
	if confidence <= 0 || confidence >= 1 {
		return CFaR{}, fmt.Errorf("confidence %.3f out of range (0, 1)", confidence)
	}
	if len(net) < 2 {
		return CFaR{}, fmt.Errorf("%w: need at least 2 periods, got %d", ErrInsufficientData, len(net))
	}

	sorted := make([]float64, len(net))
	copy(sorted, net)
	sort.Float64s(sorted)

	rank := (1 - confidence) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	value := sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))

	var tailSum float64
	var tailN int
	for _, v := range sorted {
		if v > value {
			break
		}
		tailSum += v
		tailN++
	}
	shortfall := value
	if tailN > 0 {
		shortfall = tailSum / float64(tailN)
	}

	return CFaR{
		Confidence:        confidence,
		Value:             value,
		ExpectedShortfall: shortfall,
		Volatility:        stdDev(net),
	}, nil
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(values)))
}

// Burn trend labels.
const (
	TrendImproving    = "Improving"
	TrendWorsening    = "Worsening"
	TrendStable       = "Stable"
	TrendInsufficient = "Insufficient data"
)

// trendWindow is the number of trailing periods compared against the mean.
const trendWindow = 3

// BurnTrend compares the mean burn (negated net flow) of the last three
// periods with the mean over all periods. Lower recent burn is Improving.
func BurnTrend(net []float64) string {
	if len(net) < trendWindow {
		return TrendInsufficient
	}
	overall := -mean(net)
	recent := -mean(net[len(net)-trendWindow:])
	switch {
	case math.Abs(recent-overall) < 1e-9:
		return TrendStable
	case recent < overall:
		return TrendImproving
	default:
		return TrendWorsening
	}
}

// BurnRateVolatility is the sample standard deviation of per-period burn.
func BurnRateVolatility(net []float64) float64 {
	n := len(net)
	if n < 2 {
		return 0
	}
	m := mean(net)
	var ss float64
	for _, v := range net {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(n-1))
}

// DaysCashOnHand is how many days balance covers at the mean outflow per
// period. ok is false when there are no outflows.
func DaysCashOnHand(balance, outflowPerPeriod float64, cadence Cadence) (days float64, ok bool) {
	if outflowPerPeriod <= 0 {
		return 0, false
	}
	return balance / (outflowPerPeriod / cadence.Days()), true
}

// BurnRecommendation maps a runway to an action hint. A worsening burn trend
// is called out unless cash is already positive.
func BurnRecommendation(r model.Runway, trend string) string {
	var rec string
	switch {
	case r.Indefinite:
		return "Cash positive - focus on growth investments"
	case r.Months > 18:
		rec = "Healthy cash position - monitor trends"
	case r.Months > 12:
		rec = "Adequate runway - consider efficiency improvements"
	case r.Months > 6:
		rec = "Moderate concern - reduce burn or secure funding"
	default:
		rec = "Critical - immediate action required"
	}
	if trend == TrendWorsening {
		rec += " (burn worsening)"
	}
	return rec
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// LiquidityStatus grades balance against the minimum cash requirement.
func LiquidityStatus(balance, minimum float64) string {
	if minimum <= 0 {
		return "Excellent"
	}
	ratio := balance / minimum
	switch {
	case ratio >= 3.0:
		return "Excellent"
	case ratio >= 2.0:
		return "Good"
	case ratio >= 1.5:
		return "Adequate"
	case ratio >= 1.0:
		return "Tight"
	default:
		return "Critical"
	}
}

// RiskAnalysis bundles the liquidity risk readouts for a forecast.
type RiskAnalysis struct {
	Recommendation     string   `json:"recommendation"`
	CFaR               *CFaR    `json:"cfar,omitempty"` // nil when the horizon is too short
	MinimumRequirement float64  `json:"minimumRequirement"`
	LiquidityRatio     float64  `json:"liquidityRatio"` // 0 when there is no requirement
	LiquidityStatus    string   `json:"liquidityStatus"`
	NegativePeriods    []string `json:"negativePeriods"` // periods whose running balance drops below zero
	DeficitPeriods     int      `json:"deficitPeriods"`  // periods with negative net flow
	BurnTrend          string   `json:"burnTrend"`
	BurnRateVolatility float64  `json:"burnRateVolatility"`
	DaysCashOnHand     *float64 `json:"daysCashOnHand,omitempty"` // nil when nothing flows out
}

// AnalyzeRisk derives the risk readouts from a forecast result.
// The minimum cash requirement is 1.5x the mean outflow per period and is
// compared against the lowest projected balance. Days cash on hand measures
// the starting balance against the same mean outflow.
func AnalyzeRisk(res *model.RollingForecastResult) RiskAnalysis {
	net := res.Statistics.NetCashFlow
	ra := RiskAnalysis{
		BurnTrend:          BurnTrend(net),
		BurnRateVolatility: BurnRateVolatility(net),
	}
	ra.Recommendation = BurnRecommendation(res.Metrics.Runway, ra.BurnTrend)

	if c, err := CashFlowAtRisk(res.Statistics.NetCashFlow, 0.95); err == nil {
		ra.CFaR = &c
	}

	meanOutflow := mean(res.Statistics.TotalOutflows)
	ra.MinimumRequirement = meanOutflow * 1.5
	if days, ok := DaysCashOnHand(res.StartingBalance, meanOutflow, Cadence(res.Cadence)); ok {
		ra.DaysCashOnHand = &days
	}
	low := res.Metrics.CashMinimumBalance
	if ra.MinimumRequirement > 0 {
		ra.LiquidityRatio = low / ra.MinimumRequirement
	}
	ra.LiquidityStatus = LiquidityStatus(low, ra.MinimumRequirement)

	for i, b := range res.Statistics.RunningBalance {
		if b < 0 && i < len(res.Periods) {
			ra.NegativePeriods = append(ra.NegativePeriods, res.Periods[i])
		}
	}
	for _, v := range res.Statistics.NetCashFlow {
		if v < 0 {
			ra.DeficitPeriods++
		}
	}
	return ra
}
