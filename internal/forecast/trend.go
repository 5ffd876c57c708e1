package forecast

import "math"

// ProjectTrend extends historical (oldest first) horizon periods into the future.
//
// With a growth rate the per-period step is derived from rate/12 according to mode.
// Without one, the slope of an ordinary least squares fit over x = 1..n is used.
// Every projected value is floored at zero.
func ProjectTrend(historical []float64, horizon int, growthRate *float64, mode GrowthMode) []float64 {
	out := make([]float64, max(horizon, 0))
	if len(historical) == 0 {
		return out
	}

	last := historical[len(historical)-1]

	if growthRate != nil && mode == GrowthCompound {
		factor := 1 + *growthRate/12
		for i := range out {
			out[i] = math.Max(0, last*math.Pow(factor, float64(i+1)))
		}
		return out
	}

	var slope float64
	switch {
	case growthRate != nil:
		slope = *growthRate / 12
	case len(historical) > 1:
		slope = regressionSlope(historical)
	}

	for i := range out {
		out[i] = math.Max(0, last+slope*float64(i+1))
	}
	return out
}

// regressionSlope fits y against x = 1..n and returns the slope.
func regressionSlope(ys []float64) float64 {
	n := float64(len(ys))
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range ys {
		x := float64(i + 1)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
