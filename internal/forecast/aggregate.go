package forecast

import (
	"math"

	"github.com/theirongolddev/runway/internal/model"
)

type aggregation struct {
	categories []model.CategoryForecast
	inflows    []float64
	outflows   []float64
}

// aggregate projects every sub-category, applies seasonality and optional
// perturbation, and sums the results per category and per direction.
func (e *Engine) aggregate(categories []model.CashFlowCategory, drivers []model.ForecastDriver, horizon int, perturb bool) aggregation {
	agg := aggregation{
		categories: make([]model.CategoryForecast, 0, len(categories)),
		inflows:    make([]float64, horizon),
		outflows:   make([]float64, horizon),
	}

	for _, c := range categories {
		series := make([]float64, horizon)
		for _, in := range c.Subcategories {
			projected := e.ProjectInput(in, drivers, horizon)
			for i := range projected {
				projected[i] = math.Max(0, ApplySeasonality(projected[i], in.SeasonalityPattern, i))
			}
			if perturb && in.Volatility != nil {
				e.perturb(projected, *in.Volatility)
			}
			for i, v := range projected {
				series[i] += v
			}
		}

		totals := agg.outflows
		if c.IsInflow {
			totals = agg.inflows
		}
		for i, v := range series {
			totals[i] += v
		}

		agg.categories = append(agg.categories, model.CategoryForecast{
			Name:     c.Name,
			IsInflow: c.IsInflow,
			Values:   series,
		})
	}
	return agg
}

// perturb widens uncertainty with distance into the horizon, in place.
func (e *Engine) perturb(values []float64, volatility float64) {
	for i, v := range values {
		u := e.src.NextUniform()
		factor := 1 + (u-0.5)*2*volatility*math.Sqrt(float64(i+1))
		values[i] = math.Max(0, v*factor)
	}
}
