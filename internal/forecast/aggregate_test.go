package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/runway/internal/model"
)

// constSource always draws the same uniform value.
type constSource float64

func (c constSource) NextUniform() float64 { return float64(c) }

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestPerturb_WidensWithSqrtOfDistance(t *testing.T) {
	e := newTestEngine(t, WithSource(constSource(0.75)))

	values := flat(52, 100)
	e.perturb(values, 0.1)

	// factor = 1 + (0.75-0.5)*2*0.1*sqrt(i+1) = 1 + 0.05*sqrt(i+1)
	assert.InDelta(t, 105, values[0], 1e-9)
	assert.InDelta(t, 110, values[3], 1e-9)
	assert.InDelta(t, 136.0555, values[51], 1e-4)
	for i, v := range values {
		assert.InDelta(t, 100*(1+0.05*math.Sqrt(float64(i+1))), v, 1e-9, "period %d", i)
	}
}

func TestPerturb_ClampsAtZero(t *testing.T) {
	e := newTestEngine(t, WithSource(constSource(0)))

	const vol = 0.5
	values := flat(6, 100)
	e.perturb(values, vol)

	for i, v := range values {
		shrink := vol * math.Sqrt(float64(i+1))
		if shrink >= 1 {
			assert.Zero(t, v, "period %d", i)
			continue
		}
		assert.InDelta(t, 100*(1-shrink), v, 1e-9, "period %d", i)
	}
	assert.InDelta(t, 50, values[0], 1e-9)
	assert.Zero(t, values[3])
}

func TestPerturb_MidpointLeavesValuesAlone(t *testing.T) {
	e := newTestEngine(t, WithSource(constSource(0.5)))

	values := flat(13, 42)
	e.perturb(values, 0.3)
	assert.InDeltaSlice(t, flat(13, 42), values, 1e-12)
}

func TestAggregate_PerturbsOnlyInputsWithVolatility(t *testing.T) {
	e := newTestEngine(t, WithSource(constSource(0.75)))
	cats := []model.CashFlowCategory{{
		Name:     "Revenue",
		IsInflow: true,
		Subcategories: []model.ForecastInput{
			{Category: "Sales", Historical: []float64{100, 100}, Volatility: model.Float(0.1)},
			{Category: "Other", Historical: []float64{10, 10}},
		},
	}}

	agg := e.aggregate(cats, nil, 4, true)
	assert.InDelta(t, 105+10, agg.inflows[0], 1e-9)
	assert.InDelta(t, 110+10, agg.inflows[3], 1e-9)

	agg = e.aggregate(cats, nil, 4, false)
	assert.InDeltaSlice(t, flat(4, 110), agg.inflows, 1e-9)
}
