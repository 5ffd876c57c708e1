package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/runway/internal/model"
)

func TestProjectTrend_EmptyHistory(t *testing.T) {
	got := ProjectTrend(nil, 5, model.Float(0.2), GrowthAdditive)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, got)
}

func TestProjectTrend_FlatHistory(t *testing.T) {
	got := ProjectTrend([]float64{100, 100, 100, 100}, 13, nil, GrowthAdditive)
	require.Len(t, got, 13)
	for i, v := range got {
		assert.InDelta(t, 100, v, 1e-9, "period %d", i)
	}
}

func TestProjectTrend_RegressionSlope(t *testing.T) {
	got := ProjectTrend([]float64{10, 20, 30}, 3, nil, GrowthAdditive)
	assert.InDeltaSlice(t, []float64{40, 50, 60}, got, 1e-9)
}

func TestProjectTrend_SinglePointHasNoSlope(t *testing.T) {
	got := ProjectTrend([]float64{42}, 3, nil, GrowthAdditive)
	assert.InDeltaSlice(t, []float64{42, 42, 42}, got, 1e-9)
}

func TestProjectTrend_AdditiveGrowth(t *testing.T) {
	// rate/12 is added as an absolute step per period.
	got := ProjectTrend([]float64{50, 100}, 2, model.Float(0.12), GrowthAdditive)
	assert.InDeltaSlice(t, []float64{100.01, 100.02}, got, 1e-9)
}

func TestProjectTrend_CompoundGrowth(t *testing.T) {
	got := ProjectTrend([]float64{100}, 2, model.Float(0.12), GrowthCompound)
	assert.InDeltaSlice(t, []float64{101, 102.01}, got, 1e-9)
}

func TestProjectTrend_ClampsAtZero(t *testing.T) {
	got := ProjectTrend([]float64{30, 20, 10}, 3, nil, GrowthAdditive)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, got, 1e-9)
}

func TestRegressionSlope(t *testing.T) {
	assert.InDelta(t, 2.0, regressionSlope([]float64{1, 3, 5, 7}), 1e-12)
	assert.InDelta(t, 0.0, regressionSlope([]float64{5, 5}), 1e-12)
}
