package forecast

import (
	"fmt"
	"log/slog"

	"github.com/theirongolddev/runway/internal/model"
)

// ProjectInput projects one sub-category over horizon periods.
//
// When the input names a driver that exists, the driver values scaled by the
// multiplier replace trend extrapolation; periods past the end of the driver are
// zero. A named driver that cannot be found is logged and the trend is used.
func (e *Engine) ProjectInput(in model.ForecastInput, drivers []model.ForecastDriver, horizon int) []float64 {
	if in.UsesDriver() {
		if d, ok := findDriver(drivers, in.Driver); ok {
			out := make([]float64, horizon)
			n := min(len(d.Values), horizon)
			for i := 0; i < n; i++ {
				out[i] = d.Values[i] * *in.DriverMultiplier
			}
			return out
		}
		e.logger.Warn("driver not found, falling back to trend",
			slog.String("category", in.Category),
			slog.String("subcategory", in.Subcategory),
			slog.String("driver", in.Driver),
		)
	}
	return ProjectTrend(in.Historical, horizon, in.GrowthRate, e.cfg.GrowthMode)
}

func findDriver(drivers []model.ForecastDriver, name string) (model.ForecastDriver, bool) {
	for _, d := range drivers {
		if d.Name == name {
			return d, true
		}
	}
	return model.ForecastDriver{}, false
}

// alignDrivers applies the driver policy to every driver referenced by the
// categories. Drivers nobody references are returned untouched.
func alignDrivers(categories []model.CashFlowCategory, drivers []model.ForecastDriver, horizon int, policy DriverPolicy) ([]model.ForecastDriver, error) {
	used := make(map[string]struct{})
	for _, c := range categories {
		for _, in := range c.Subcategories {
			if in.UsesDriver() {
				used[in.Driver] = struct{}{}
			}
		}
	}

	out := make([]model.ForecastDriver, len(drivers))
	copy(out, drivers)
	for i, d := range out {
		if _, ok := used[d.Name]; !ok || len(d.Values) >= horizon {
			continue
		}
		if policy != DriverPadLast || len(d.Values) == 0 {
			return nil, fmt.Errorf("%w: %q has %d values, horizon is %d",
				ErrDriverTooShort, d.Name, len(d.Values), horizon)
		}
		padded := make([]float64, horizon)
		copy(padded, d.Values)
		last := d.Values[len(d.Values)-1]
		for j := len(d.Values); j < horizon; j++ {
			padded[j] = last
		}
		out[i].Values = padded
	}
	return out, nil
}
