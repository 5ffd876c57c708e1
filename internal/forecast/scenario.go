package forecast

import (
	"fmt"

	"github.com/theirongolddev/runway/internal/model"
)

// ScenarioSpec rescales a base forecast.
type ScenarioSpec struct {
	Name              string  `toml:"name" json:"name" yaml:"name"`
	InflowMultiplier  float64 `toml:"inflow_multiplier" json:"inflowMultiplier" yaml:"inflowMultiplier"`
	OutflowMultiplier float64 `toml:"outflow_multiplier" json:"outflowMultiplier" yaml:"outflowMultiplier"`
	OneTimeInjection  float64 `toml:"one_time_injection" json:"oneTimeInjection" yaml:"oneTimeInjection"` // added to the first period
}

// DefaultScenarios returns base, conservative and optimistic cases.
func DefaultScenarios() []ScenarioSpec {
	return []ScenarioSpec{
		{Name: "base", InflowMultiplier: 1.0, OutflowMultiplier: 1.0},
		{Name: "conservative", InflowMultiplier: 0.9, OutflowMultiplier: 1.1},
		{Name: "optimistic", InflowMultiplier: 1.1, OutflowMultiplier: 0.9},
	}
}

// ScenarioResult is the recomputed forecast for one scenario.
type ScenarioResult struct {
	Name       string
	Statistics model.Statistics
	Confidence model.ConfidenceBands
	Metrics    model.KeyMetrics
}

// RunScenarios rescales the totals of res for every spec and recomputes the
// statistics. res is not modified.
func (e *Engine) RunScenarios(res *model.RollingForecastResult, specs []ScenarioSpec) ([]ScenarioResult, error) {
	variant, ok := e.cfg.Variant(res.Horizon)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedHorizon, res.Horizon)
	}
	params := e.statsParams(variant, res.StartingBalance)

	out := make([]ScenarioResult, 0, len(specs))
	for _, spec := range specs {
		in := scale(res.Statistics.TotalInflows, spec.InflowMultiplier)
		outflows := scale(res.Statistics.TotalOutflows, spec.OutflowMultiplier)
		if len(in) > 0 {
			in[0] += spec.OneTimeInjection
		}
		stats, bands, metrics := ComputeStatistics(in, outflows, res.Periods, params)
		out = append(out, ScenarioResult{
			Name:       spec.Name,
			Statistics: stats,
			Confidence: bands,
			Metrics:    metrics,
		})
	}
	return out, nil
}

func scale(values []float64, factor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * factor
	}
	return out
}
