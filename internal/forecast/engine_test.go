package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/runway/internal/model"
)

var testStart = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func constantCategories() []model.CashFlowCategory {
	return []model.CashFlowCategory{
		{
			Name:     "Revenue",
			IsInflow: true,
			Subcategories: []model.ForecastInput{
				{Category: "Sales", Historical: []float64{100, 100, 100, 100}},
			},
		},
		{
			Name: "Operating",
			Subcategories: []model.ForecastInput{
				{Category: "Rent", Historical: []float64{60, 60, 60, 60}},
			},
		},
	}
}

func TestRun_EndToEndShortTerm(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Run(Request{
		Categories:      constantCategories(),
		StartDate:       testStart,
		StartingBalance: model.Float(100000),
		Horizon:         13,
	})
	require.NoError(t, err)

	assertSeriesLengths(t, res, 13)
	for i, v := range res.Statistics.NetCashFlow {
		assert.InDelta(t, 40, v, 1e-9, "net[%d]", i)
	}
	assert.InDelta(t, 100040, res.Statistics.RunningBalance[0], 1e-9)
	assert.InDelta(t, 100520, res.Statistics.RunningBalance[12], 1e-9)
	for i := 1; i < 13; i++ {
		assert.Greater(t, res.Statistics.RunningBalance[i], res.Statistics.RunningBalance[i-1])
	}

	m := res.Metrics
	assert.Zero(t, m.BurnRate)
	assert.True(t, m.Runway.Indefinite)
	require.NotNil(t, m.BreakEvenPeriod)
	assert.Equal(t, 1, *m.BreakEvenPeriod)
	require.NotNil(t, m.CashMinimumDate)
	assert.Equal(t, res.Periods[0], *m.CashMinimumDate)

	sales, ok := res.CategorySeries("Revenue")
	require.True(t, ok)
	assert.InDelta(t, 100, sales[5], 1e-9)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "weekly", res.Cadence)
}

func TestRun_AllEmptyCategories(t *testing.T) {
	e := newTestEngine(t)
	cats := []model.CashFlowCategory{
		{Name: "In", IsInflow: true, Subcategories: []model.ForecastInput{{Category: "a"}}},
		{Name: "Out", Subcategories: []model.ForecastInput{{Category: "b"}}},
	}
	res, err := e.Run(Request{Categories: cats, StartDate: testStart, StartingBalance: model.Float(5000), Horizon: 52})
	require.NoError(t, err)

	assertSeriesLengths(t, res, 52)
	for i := range res.Periods {
		assert.Zero(t, res.Statistics.NetCashFlow[i])
		assert.Zero(t, res.Statistics.CumulativeCashFlow[i])
		assert.Equal(t, 5000.0, res.Statistics.RunningBalance[i])
	}
	assert.Zero(t, res.Metrics.BurnRate)
	assert.True(t, res.Metrics.Runway.Indefinite)
	assert.Nil(t, res.Metrics.BreakEvenPeriod)
}

func TestRun_InvariantsHoldWithPerturbation(t *testing.T) {
	cats := []model.CashFlowCategory{
		{
			Name:     "Revenue",
			IsInflow: true,
			Subcategories: []model.ForecastInput{
				{Category: "Sales", Historical: []float64{80, 95, 110}, Volatility: model.Float(0.2),
					SeasonalityPattern: []float64{0.9, 1.1, 1.2, 0.8}},
				{Category: "Services", Historical: []float64{40}, GrowthRate: model.Float(0.3)},
			},
		},
		{
			Name: "Costs",
			Subcategories: []model.ForecastInput{
				{Category: "Payroll", Historical: []float64{150, 150}, Volatility: model.Float(0.5)},
			},
		},
	}

	for _, horizon := range []int{13, 52} {
		e := newTestEngine(t, WithSource(NewSeededSource(99)))
		res, err := e.Run(Request{Categories: cats, StartDate: testStart, StartingBalance: model.Float(2500), Horizon: horizon})
		require.NoError(t, err)
		assertSeriesLengths(t, res, horizon)

		s := res.Statistics
		for i := range s.NetCashFlow {
			assert.InDelta(t, s.TotalInflows[i]-s.TotalOutflows[i], s.NetCashFlow[i], 1e-9)
			if i == 0 {
				assert.InDelta(t, s.NetCashFlow[0], s.CumulativeCashFlow[0], 1e-9)
			} else {
				assert.InDelta(t, s.NetCashFlow[i], s.CumulativeCashFlow[i]-s.CumulativeCashFlow[i-1], 1e-9)
			}
			assert.InDelta(t, 2500+s.CumulativeCashFlow[i], s.RunningBalance[i], 1e-9)
			assert.GreaterOrEqual(t, s.TotalInflows[i], 0.0)
			assert.GreaterOrEqual(t, s.TotalOutflows[i], 0.0)
		}
	}
}

func TestRun_SeededRunsAreReproducible(t *testing.T) {
	cats := []model.CashFlowCategory{{
		Name:     "Revenue",
		IsInflow: true,
		Subcategories: []model.ForecastInput{
			{Category: "Sales", Historical: []float64{100, 100}, Volatility: model.Float(0.3)},
		},
	}}
	req := Request{Categories: cats, StartDate: testStart, Horizon: 52}

	a, err := newTestEngine(t, WithSource(NewSeededSource(5))).Run(req)
	require.NoError(t, err)
	b, err := newTestEngine(t, WithSource(NewSeededSource(5))).Run(req)
	require.NoError(t, err)
	assert.Equal(t, a.Statistics, b.Statistics)

	// Perturbation only applies to the long horizon.
	short, err := newTestEngine(t, WithSource(NewSeededSource(5))).Run13Week(req)
	require.NoError(t, err)
	for _, v := range short.Statistics.TotalInflows {
		assert.InDelta(t, 100, v, 1e-9)
	}
}

func TestRun_SeasonalityOfOnesMatchesNoPattern(t *testing.T) {
	withOnes := constantCategories()
	withOnes[0].Subcategories[0].SeasonalityPattern = []float64{1, 1, 1}

	a, err := newTestEngine(t).Run(Request{Categories: constantCategories(), StartDate: testStart, Horizon: 13})
	require.NoError(t, err)
	b, err := newTestEngine(t).Run(Request{Categories: withOnes, StartDate: testStart, Horizon: 13})
	require.NoError(t, err)

	assert.Equal(t, a.Statistics, b.Statistics)
	assert.Equal(t, a.Confidence, b.Confidence)
}

func TestRun_UnsupportedHorizon(t *testing.T) {
	_, err := newTestEngine(t).Run(Request{Categories: constantCategories(), Horizon: 12})
	assert.ErrorIs(t, err, ErrUnsupportedHorizon)
}

func TestRun_CategoryLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCategories = 1
	e := New(cfg, WithLogger(DiscardLogger()))
	_, err := e.Run(Request{Categories: constantCategories(), Horizon: 13})
	assert.ErrorIs(t, err, ErrTooManyCategories)

	cfg = DefaultConfig()
	cfg.MaxSubcategories = 1
	cats := constantCategories()
	cats[0].Subcategories = append(cats[0].Subcategories, model.ForecastInput{Category: "extra"})
	_, err = New(cfg, WithLogger(DiscardLogger())).Run(Request{Categories: cats, Horizon: 13})
	assert.ErrorIs(t, err, ErrTooManyCategories)
}

func TestRun_ShortDriverRejected(t *testing.T) {
	cats := []model.CashFlowCategory{{
		Name: "Costs",
		Subcategories: []model.ForecastInput{
			{Category: "Payroll", Driver: "heads", DriverMultiplier: model.Float(1000)},
		},
	}}
	drivers := []model.ForecastDriver{{Name: "heads", Values: []float64{5, 6, 7}}}

	_, err := newTestEngine(t).Run(Request{Categories: cats, Drivers: drivers, Horizon: 13})
	assert.ErrorIs(t, err, ErrDriverTooShort)

	cfg := DefaultConfig()
	cfg.DriverPolicy = DriverPadLast
	res, err := New(cfg, WithLogger(DiscardLogger())).Run(Request{Categories: cats, Drivers: drivers, StartDate: testStart, Horizon: 13})
	require.NoError(t, err)
	assert.InDelta(t, 7000, res.Statistics.TotalOutflows[12], 1e-9)
}

func TestRun_DefaultsFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StartingBalance = 777
	cfg.Now = func() time.Time { return testStart }
	e := New(cfg, WithLogger(DiscardLogger()))

	res, err := e.Run(Request{Horizon: 13, Cadence: Monthly})
	require.NoError(t, err)
	assert.Equal(t, 777.0, res.StartingBalance)
	assert.Equal(t, testStart, res.StartDate)
	assert.Equal(t, "2026-01", res.Periods[0])
	assert.Empty(t, res.Categories)
}

func TestRun52Week_ReportsBreakEvenInMonths(t *testing.T) {
	res, err := newTestEngine(t).Run52Week(Request{Categories: constantCategories(), StartDate: testStart})
	require.NoError(t, err)
	assert.Equal(t, 52, res.Horizon)
	assert.Equal(t, "month", res.Metrics.BreakEvenUnit)
	require.NotNil(t, res.Metrics.BreakEvenPeriod)
	assert.Equal(t, 1, *res.Metrics.BreakEvenPeriod)
}

func assertSeriesLengths(t *testing.T, res *model.RollingForecastResult, horizon int) {
	t.Helper()
	series := map[string][]float64{
		"totalInflows":       res.Statistics.TotalInflows,
		"totalOutflows":      res.Statistics.TotalOutflows,
		"netCashFlow":        res.Statistics.NetCashFlow,
		"cumulativeCashFlow": res.Statistics.CumulativeCashFlow,
		"runningBalance":     res.Statistics.RunningBalance,
		"lower90":            res.Confidence.Lower90,
		"upper90":            res.Confidence.Upper90,
		"lower95":            res.Confidence.Lower95,
		"upper95":            res.Confidence.Upper95,
	}
	for name, s := range series {
		assert.Len(t, s, horizon, name)
	}
	assert.Len(t, res.Periods, horizon)
	for _, c := range res.Categories {
		assert.Len(t, c.Values, horizon, c.Name)
	}
}
