package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tx(d time.Time, cat, sub string, amount float64, dir model.Direction) model.Transaction {
	return model.Transaction{Date: d, Category: cat, Subcategory: sub, Amount: amount, Direction: dir}
}

func TestPeriodStart(t *testing.T) {
	wed := time.Date(2026, 1, 21, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, date(2026, 1, 19), PeriodStart(wed, forecast.Weekly))
	assert.Equal(t, date(2026, 1, 19), PeriodStart(date(2026, 1, 19), forecast.Weekly))
	assert.Equal(t, date(2026, 1, 19), PeriodStart(date(2026, 1, 25), forecast.Weekly)) // Sunday
	assert.Equal(t, date(2026, 1, 1), PeriodStart(wed, forecast.Monthly))
}

func TestBucketSeries_Weekly(t *testing.T) {
	end := date(2026, 1, 21)
	txs := []model.Transaction{
		tx(date(2025, 12, 28), "Revenue", "Sales", 999, model.Inflow), // before window
		tx(date(2025, 12, 29), "Revenue", "Sales", 10, model.Inflow),
		tx(date(2026, 1, 6), "Revenue", "Sales", 20, model.Inflow),
		tx(date(2026, 1, 8), "Revenue", "Sales", 5, model.Inflow),
		tx(date(2026, 1, 13), "Operating", "Rent", 60, model.Outflow),
		tx(date(2026, 1, 19), "Revenue", "Sales", 999, model.Inflow), // current, incomplete week
	}

	got := BucketSeries(txs, forecast.Weekly, end, 3)
	require.Len(t, got, 2)
	assert.Equal(t, []float64{10, 25, 0}, got[SeriesKey{"Revenue", "Sales", model.Inflow}])
	assert.Equal(t, []float64{0, 0, 60}, got[SeriesKey{"Operating", "Rent", model.Outflow}])
}

func TestBucketSeries_Monthly(t *testing.T) {
	end := date(2026, 3, 15)
	txs := []model.Transaction{
		tx(date(2025, 12, 31), "Revenue", "", 1, model.Inflow),
		tx(date(2026, 1, 31), "Revenue", "", 100, model.Inflow),
		tx(date(2026, 2, 10), "Revenue", "", 200, model.Inflow),
		tx(date(2026, 3, 1), "Revenue", "", 1, model.Inflow),
	}
	got := BucketSeries(txs, forecast.Monthly, end, 2)
	assert.Equal(t, []float64{100, 200}, got[SeriesKey{"Revenue", "", model.Inflow}])
}

func TestBucketSeries_NoPeriods(t *testing.T) {
	got := BucketSeries([]model.Transaction{tx(date(2026, 1, 1), "a", "", 1, model.Inflow)}, forecast.Weekly, date(2026, 2, 1), 0)
	assert.Empty(t, got)
}

func TestAggregatePeriods(t *testing.T) {
	end := date(2026, 1, 21)
	txs := []model.Transaction{
		tx(date(2026, 1, 6), "Revenue", "Sales", 100, model.Inflow),
		tx(date(2026, 1, 7), "Operating", "Rent", 30, model.Outflow),
	}
	got := AggregatePeriods(txs, forecast.Weekly, end, 3)
	require.Len(t, got, 3)
	assert.Equal(t, date(2025, 12, 29), got[0].Start)
	assert.Zero(t, got[0].Count)
	assert.Equal(t, PeriodTotals{Start: date(2026, 1, 5), Inflows: 100, Outflows: 30, Net: 70, Count: 2}, got[1])
}

func TestCashFlowStatement(t *testing.T) {
	end := date(2026, 1, 21)
	loan := tx(date(2026, 1, 7), "Loan", "", 1000, model.Inflow)
	loan.FlowType = model.Financing
	laptop := tx(date(2026, 1, 13), "Equipment", "", 400, model.Outflow)
	laptop.FlowType = model.Investing
	txs := []model.Transaction{
		tx(date(2026, 1, 6), "Revenue", "Sales", 100, model.Inflow),
		tx(date(2026, 1, 7), "Operating", "Rent", 30, model.Outflow),
		loan,
		laptop,
		tx(date(2026, 1, 19), "Revenue", "Sales", 999, model.Inflow), // current week
	}

	st := CashFlowStatement(txs, forecast.Weekly, end, 2)
	assert.Equal(t, 2, st.Periods)
	assert.InDelta(t, 70, st.Net[model.Operating], 1e-9)
	assert.InDelta(t, -400, st.Net[model.Investing], 1e-9)
	assert.InDelta(t, 1000, st.Net[model.Financing], 1e-9)
	assert.InDelta(t, 670, st.Total(), 1e-9)
	assert.InDelta(t, 35, st.PerPeriod(model.Operating), 1e-9)
}

func TestCashFlowStatement_NoPeriods(t *testing.T) {
	st := CashFlowStatement([]model.Transaction{tx(date(2026, 1, 1), "a", "", 1, model.Inflow)}, forecast.Weekly, date(2026, 2, 1), 0)
	assert.Zero(t, st.Periods)
	assert.Zero(t, st.Total())
	assert.Zero(t, st.PerPeriod(model.Operating))
	assert.Len(t, st.Net, 3)
}

func TestSummarizeBurn(t *testing.T) {
	totals := []PeriodTotals{
		{Inflows: 0, Outflows: 300, Net: -300},
		{Inflows: 0, Outflows: 300, Net: -300},
		{Inflows: 0, Outflows: 300, Net: -300},
		{Inflows: 200, Outflows: 300, Net: -100},
		{Inflows: 200, Outflows: 300, Net: -100},
		{Inflows: 200, Outflows: 300, Net: -100},
	}

	bs := SummarizeBurn(totals, 10_000, forecast.Monthly)
	assert.InDelta(t, 200, bs.MeanBurn, 1e-9)
	assert.Equal(t, forecast.TrendImproving, bs.Trend)
	assert.InDelta(t, 8_800, bs.Cash, 1e-9)
	// six deviations of 100 around -200, sample variance 6*100^2/5
	assert.InDelta(t, 109.5445, bs.Volatility, 1e-4)
	require.NotNil(t, bs.DaysCashOnHand)
	assert.InDelta(t, 880, *bs.DaysCashOnHand, 1e-9) // 8800 / (300/30)
}

func TestSummarizeBurn_Empty(t *testing.T) {
	bs := SummarizeBurn(nil, 500, forecast.Weekly)
	assert.Equal(t, forecast.TrendInsufficient, bs.Trend)
	assert.Equal(t, 500.0, bs.Cash)
	assert.Nil(t, bs.DaysCashOnHand)
}

func TestBuildCategories(t *testing.T) {
	end := date(2026, 1, 21)
	txs := []model.Transaction{
		tx(date(2026, 1, 6), "Revenue", "Services", 50, model.Inflow),
		tx(date(2026, 1, 6), "Revenue", "Sales", 100, model.Inflow),
		tx(date(2026, 1, 13), "Revenue", "Sales", 300, model.Inflow),
		tx(date(2026, 1, 7), "Revenue", "Refunds", 10, model.Outflow),
		tx(date(2026, 1, 7), "Operating", "Rent", 60, model.Outflow),
	}

	cats := BuildCategories(txs, BuildOptions{Cadence: forecast.Weekly, End: end, Periods: 2, EstimateVolatility: true})
	require.Len(t, cats, 3)

	assert.Equal(t, "Revenue", cats[0].Name)
	assert.True(t, cats[0].IsInflow)
	require.Len(t, cats[0].Subcategories, 2)
	sales := cats[0].Subcategories[0]
	assert.Equal(t, "Sales", sales.Subcategory)
	assert.Equal(t, []float64{100, 300}, sales.Historical)
	require.NotNil(t, sales.Volatility)
	assert.InDelta(t, 0.5, *sales.Volatility, 1e-9) // sd 100 / mean 200

	assert.Equal(t, "Operating", cats[1].Name)
	assert.False(t, cats[1].IsInflow)
	assert.Equal(t, "Revenue (out)", cats[2].Name)
}

func TestBuildCategories_FeedsEngine(t *testing.T) {
	end := date(2026, 2, 2)
	var txs []model.Transaction
	for d := date(2026, 1, 5); d.Before(end); d = d.AddDate(0, 0, 7) {
		txs = append(txs,
			tx(d, "Revenue", "Sales", 100, model.Inflow),
			tx(d, "Operating", "Rent", 60, model.Outflow),
		)
	}

	cats := BuildCategories(txs, BuildOptions{Cadence: forecast.Weekly, End: end, Periods: 4})
	e := forecast.New(forecast.DefaultConfig(), forecast.WithLogger(forecast.DiscardLogger()),
		forecast.WithSource(forecast.NewSeededSource(1)))
	res, err := e.Run(forecast.Request{Categories: cats, StartDate: end, StartingBalance: model.Float(100000), Horizon: 13})
	require.NoError(t, err)
	assert.InDelta(t, 100040, res.Statistics.RunningBalance[0], 1e-9)
	assert.InDelta(t, 100520, res.Statistics.RunningBalance[12], 1e-9)
}

func TestFilterByTime(t *testing.T) {
	txs := []model.Transaction{
		tx(date(2026, 1, 1), "a", "", 1, model.Inflow),
		tx(date(2026, 1, 2), "a", "", 1, model.Inflow),
		tx(date(2026, 1, 3), "a", "", 1, model.Inflow),
	}
	assert.Len(t, FilterByTime(txs, date(2026, 1, 2), time.Time{}), 2)
	assert.Len(t, FilterByTime(txs, time.Time{}, date(2026, 1, 2)), 1)
	assert.Len(t, FilterByTime(txs, time.Time{}, time.Time{}), 3)
}
