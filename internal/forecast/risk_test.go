package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/runway/internal/model"
)

func TestCashFlowAtRisk(t *testing.T) {
	c, err := CashFlowAtRisk([]float64{10, -5, 0, 5, -10}, 0.95)
	require.NoError(t, err)

	assert.InDelta(t, -9, c.Value, 1e-9) // -10 + 0.2 * (-5 - -10)
	assert.InDelta(t, -10, c.ExpectedShortfall, 1e-9)
	assert.InDelta(t, math.Sqrt(40), c.Volatility, 1e-9)
	assert.Equal(t, 0.95, c.Confidence)
}

func TestCashFlowAtRisk_Errors(t *testing.T) {
	_, err := CashFlowAtRisk([]float64{1}, 0.95)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = CashFlowAtRisk([]float64{1, 2}, 1.5)
	assert.Error(t, err)
}

func TestBurnRecommendation(t *testing.T) {
	tests := []struct {
		runway model.Runway
		want   string
	}{
		{model.Runway{Indefinite: true}, "Cash positive - focus on growth investments"},
		{model.Runway{Months: 24}, "Healthy cash position - monitor trends"},
		{model.Runway{Months: 15}, "Adequate runway - consider efficiency improvements"},
		{model.Runway{Months: 9}, "Moderate concern - reduce burn or secure funding"},
		{model.Runway{Months: 6}, "Critical - immediate action required"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BurnRecommendation(tt.runway, TrendImproving), tt.runway.String())
	}
}

func TestBurnRecommendation_FlagsWorseningTrend(t *testing.T) {
	assert.Equal(t, "Adequate runway - consider efficiency improvements (burn worsening)",
		BurnRecommendation(model.Runway{Months: 15}, TrendWorsening))
	assert.Equal(t, "Cash positive - focus on growth investments",
		BurnRecommendation(model.Runway{Indefinite: true}, TrendWorsening))
	assert.Equal(t, "Healthy cash position - monitor trends",
		BurnRecommendation(model.Runway{Months: 24}, TrendStable))
}

func TestBurnTrend(t *testing.T) {
	tests := []struct {
		name string
		net  []float64
		want string
	}{
		{"too short", []float64{-10, -10}, TrendInsufficient},
		{"recent burn lower", []float64{-30, -30, -30, -10, -10, -10}, TrendImproving},
		{"recent burn higher", []float64{-10, -10, -10, -30, -30, -30}, TrendWorsening},
		{"flat", []float64{-10, -10, -10, -10}, TrendStable},
		{"turning positive", []float64{-50, -20, 5, 10, 15}, TrendImproving},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BurnTrend(tt.net))
		})
	}
}

func TestBurnRateVolatility(t *testing.T) {
	assert.Zero(t, BurnRateVolatility(nil))
	assert.Zero(t, BurnRateVolatility([]float64{-7}))
	assert.Zero(t, BurnRateVolatility([]float64{-10, -10, -10}))
	// mean -20, squared deviations 100+0+100, sample variance 100
	assert.InDelta(t, 10, BurnRateVolatility([]float64{-10, -20, -30}), 1e-9)
}

func TestDaysCashOnHand(t *testing.T) {
	days, ok := DaysCashOnHand(700, 100, Weekly)
	require.True(t, ok)
	assert.InDelta(t, 49, days, 1e-9)

	days, ok = DaysCashOnHand(3000, 1000, Monthly)
	require.True(t, ok)
	assert.InDelta(t, 90, days, 1e-9)

	_, ok = DaysCashOnHand(3000, 0, Monthly)
	assert.False(t, ok)
}

func TestLiquidityStatus(t *testing.T) {
	assert.Equal(t, "Excellent", LiquidityStatus(300, 100))
	assert.Equal(t, "Good", LiquidityStatus(250, 100))
	assert.Equal(t, "Adequate", LiquidityStatus(150, 100))
	assert.Equal(t, "Tight", LiquidityStatus(100, 100))
	assert.Equal(t, "Critical", LiquidityStatus(99, 100))
	assert.Equal(t, "Excellent", LiquidityStatus(-5, 0))
}

func TestAnalyzeRisk(t *testing.T) {
	res := &model.RollingForecastResult{
		Cadence:         string(Weekly),
		StartingBalance: 25,
		Periods:         []string{"a", "b", "c", "d"},
		Statistics: model.Statistics{
			TotalInflows:   []float64{0, 0, 0, 0},
			TotalOutflows:  []float64{10, 10, 10, 10},
			NetCashFlow:    []float64{-10, -10, -10, -10},
			RunningBalance: []float64{15, 5, -5, -15},
		},
		Metrics: model.KeyMetrics{
			Runway:             model.Runway{Months: 0.6},
			CashMinimumBalance: -15,
		},
	}

	ra := AnalyzeRisk(res)
	assert.Equal(t, "Critical - immediate action required", ra.Recommendation)
	require.NotNil(t, ra.CFaR)
	assert.InDelta(t, -10, ra.CFaR.Value, 1e-9)
	assert.InDelta(t, 15, ra.MinimumRequirement, 1e-9)
	assert.Equal(t, "Critical", ra.LiquidityStatus)
	assert.Equal(t, []string{"c", "d"}, ra.NegativePeriods)
	assert.Equal(t, 4, ra.DeficitPeriods)
	assert.Equal(t, TrendStable, ra.BurnTrend)
	assert.Zero(t, ra.BurnRateVolatility)
	require.NotNil(t, ra.DaysCashOnHand)
	assert.InDelta(t, 17.5, *ra.DaysCashOnHand, 1e-9) // 25 / (10/7)
}

func TestAnalyzeRisk_WorseningBurnAndNoOutflows(t *testing.T) {
	res := &model.RollingForecastResult{
		Periods: []string{"a", "b", "c", "d", "e", "f"},
		Statistics: model.Statistics{
			TotalInflows:   []float64{10, 10, 10, 0, 0, 0},
			TotalOutflows:  []float64{0, 0, 0, 0, 0, 0},
			NetCashFlow:    []float64{10, 10, 10, 0, 0, 0},
			RunningBalance: []float64{110, 120, 130, 130, 130, 130},
		},
		Metrics: model.KeyMetrics{Runway: model.Runway{Months: 15}, CashMinimumBalance: 110},
	}

	ra := AnalyzeRisk(res)
	assert.Equal(t, TrendWorsening, ra.BurnTrend)
	assert.Equal(t, "Adequate runway - consider efficiency improvements (burn worsening)", ra.Recommendation)
	assert.Nil(t, ra.DaysCashOnHand)
	assert.InDelta(t, math.Sqrt(30), ra.BurnRateVolatility, 1e-9)
}
