package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
)

func TestForecastRequest(t *testing.T) {
	end := date(2026, 1, 21)
	txs := []model.Transaction{
		tx(date(2026, 1, 6), "Revenue", "Sales", 20, model.Inflow),
		tx(date(2026, 1, 13), "Operating", "Rent", 60, model.Outflow),
	}

	req, err := ForecastRequest(txs, RequestOptions{
		Build:           BuildOptions{Cadence: forecast.Weekly, End: end, Periods: 3},
		Horizon:         13,
		StartingBalance: model.Float(500),
	})
	require.NoError(t, err)
	assert.Equal(t, date(2026, 1, 19), req.StartDate)
	assert.Equal(t, 13, req.Horizon)
	assert.Equal(t, forecast.Weekly, req.Cadence)
	require.Len(t, req.Categories, 2)
	assert.Equal(t, "Revenue", req.Categories[0].Name)
	assert.Nil(t, req.Categories[0].Subcategories[0].SeasonalityPattern)
}

func TestForecastRequest_Seasonality(t *testing.T) {
	txs := []model.Transaction{tx(date(2026, 2, 10), "Revenue", "", 200, model.Inflow)}

	req, err := ForecastRequest(txs, RequestOptions{
		Build:       BuildOptions{Cadence: forecast.Monthly, End: date(2026, 3, 15), Periods: 2},
		Horizon:     13,
		Seasonality: "quarter-end",
	})
	require.NoError(t, err)
	assert.Equal(t, date(2026, 3, 1), req.StartDate)
	pattern := req.Categories[0].Subcategories[0].SeasonalityPattern
	require.Len(t, pattern, 12)
	// March is a quarter-end month.
	assert.InDelta(t, 1.15, pattern[0], 1e-9)
	assert.InDelta(t, 0.95, pattern[1], 1e-9)
}

func TestForecastRequest_UnknownProfile(t *testing.T) {
	_, err := ForecastRequest(nil, RequestOptions{
		Build:       BuildOptions{Cadence: forecast.Weekly, End: date(2026, 1, 21), Periods: 3},
		Horizon:     13,
		Seasonality: "lunar",
	})
	assert.Error(t, err)
}
