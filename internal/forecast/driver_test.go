package forecast

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/runway/internal/model"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithSource(NewSeededSource(1)), WithLogger(DiscardLogger())}, opts...)
	return New(DefaultConfig(), opts...)
}

func TestProjectInput_DriverSubstitution(t *testing.T) {
	e := newTestEngine(t)
	in := model.ForecastInput{
		Category:         "Payroll",
		Historical:       []float64{1000, 1000},
		Driver:           "D",
		DriverMultiplier: model.Float(2),
	}
	drivers := []model.ForecastDriver{{Name: "D", Values: []float64{5, 6, 7}}}

	got := e.ProjectInput(in, drivers, 3)
	assert.InDeltaSlice(t, []float64{10, 12, 14}, got, 1e-9)
}

func TestProjectInput_DriverShorterThanHorizonZeroFills(t *testing.T) {
	e := newTestEngine(t)
	in := model.ForecastInput{Category: "Payroll", Driver: "D", DriverMultiplier: model.Float(2)}
	drivers := []model.ForecastDriver{{Name: "D", Values: []float64{5, 6, 7}}}

	got := e.ProjectInput(in, drivers, 5)
	assert.InDeltaSlice(t, []float64{10, 12, 14, 0, 0}, got, 1e-9)
}

func TestProjectInput_MissingDriverFallsBackToTrend(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	e := newTestEngine(t, WithLogger(logger))

	in := model.ForecastInput{
		Category:         "Payroll",
		Subcategory:      "Contractors",
		Historical:       []float64{10, 20, 30},
		Driver:           "missing",
		DriverMultiplier: model.Float(3),
	}

	got := e.ProjectInput(in, nil, 3)
	assert.InDeltaSlice(t, []float64{40, 50, 60}, got, 1e-9)
	assert.Contains(t, buf.String(), "driver not found")
	assert.Contains(t, buf.String(), "driver=missing")
	assert.Contains(t, buf.String(), "component=forecast")
}

func TestProjectInput_DriverWithoutMultiplierUsesTrend(t *testing.T) {
	e := newTestEngine(t)
	in := model.ForecastInput{Category: "Rent", Historical: []float64{100}, Driver: "D"}
	drivers := []model.ForecastDriver{{Name: "D", Values: []float64{1, 1, 1}}}

	got := e.ProjectInput(in, drivers, 3)
	assert.InDeltaSlice(t, []float64{100, 100, 100}, got, 1e-9)
}

func TestAlignDrivers(t *testing.T) {
	cats := []model.CashFlowCategory{{
		Name: "Costs",
		Subcategories: []model.ForecastInput{
			{Category: "Payroll", Driver: "heads", DriverMultiplier: model.Float(1)},
		},
	}}
	drivers := []model.ForecastDriver{
		{Name: "heads", Values: []float64{5, 6, 7}},
		{Name: "unused", Values: []float64{1}},
	}

	_, err := alignDrivers(cats, drivers, 5, DriverReject)
	require.ErrorIs(t, err, ErrDriverTooShort)

	padded, err := alignDrivers(cats, drivers, 5, DriverPadLast)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6, 7, 7, 7}, padded[0].Values)
	assert.Equal(t, []float64{1}, padded[1].Values, "unreferenced drivers are left alone")
	assert.Equal(t, []float64{5, 6, 7}, drivers[0].Values, "input is not mutated")
}
