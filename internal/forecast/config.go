// Package forecast implements the rolling cash-flow forecast engine: trend and
// driver projection, seasonality, category aggregation and liquidity statistics.
package forecast

import (
	"errors"
	"time"
)

// Sentinel errors returned by the engine.
var (
	ErrUnsupportedHorizon = errors.New("unsupported forecast horizon")
	ErrTooManyCategories  = errors.New("too many categories")
	ErrDriverTooShort     = errors.New("driver series shorter than horizon")
	ErrInsufficientData   = errors.New("insufficient data")
)

// Band selects how confidence bands widen across the horizon.
type Band string

const (
	// BandFlat applies the same width to every period.
	BandFlat Band = "flat"
	// BandScaled widens with sqrt((i+1)/horizon).
	BandScaled Band = "scaled"
)

// BreakEvenUnit is the unit the break-even period is reported in.
type BreakEvenUnit string

const (
	BreakEvenWeeks  BreakEvenUnit = "week"
	BreakEvenMonths BreakEvenUnit = "month"
)

// GrowthMode controls how an annual growth rate is turned into a per-period trend.
type GrowthMode string

const (
	// GrowthAdditive adds rate/12 to the last observation per period.
	GrowthAdditive GrowthMode = "additive"
	// GrowthCompound multiplies the last observation by (1+rate/12) per period.
	GrowthCompound GrowthMode = "compound"
)

// DriverPolicy decides what happens when a driver has fewer values than the horizon.
type DriverPolicy string

const (
	DriverReject  DriverPolicy = "reject"
	DriverPadLast DriverPolicy = "pad-last"
)

// Variant holds the constants that differ between the supported horizons.
type Variant struct {
	Horizon       int
	Volatility    float64 // flat volatility used for confidence bands
	Band          Band
	PerturbInputs bool // apply per-input volatility perturbation
	BreakEvenUnit BreakEvenUnit
}

// Config holds the engine constants. Use DefaultConfig as the starting point.
type Config struct {
	StartingBalance  float64
	WeeksPerMonth    float64
	Z90              float64
	Z95              float64
	GrowthMode       GrowthMode
	DriverPolicy     DriverPolicy
	MaxCategories    int
	MaxSubcategories int
	Variants         []Variant

	// Now supplies the default start date. Defaults to time.Now.
	Now func() time.Time
}

// Short and long horizon variants.
var (
	ShortTerm = Variant{
		Horizon:       13,
		Volatility:    0.15,
		Band:          BandFlat,
		BreakEvenUnit: BreakEvenWeeks,
	}
	LongTerm = Variant{
		Horizon:       52,
		Volatility:    0.25,
		Band:          BandScaled,
		PerturbInputs: true,
		BreakEvenUnit: BreakEvenMonths,
	}
)

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		StartingBalance:  100000,
		WeeksPerMonth:    4.33,
		Z90:              1.645,
		Z95:              1.96,
		GrowthMode:       GrowthAdditive,
		DriverPolicy:     DriverReject,
		MaxCategories:    200,
		MaxSubcategories: 200,
		Variants:         []Variant{ShortTerm, LongTerm},
		Now:              time.Now,
	}
}

// Variant returns the variant configured for the horizon.
func (c Config) Variant(horizon int) (Variant, bool) {
	for _, v := range c.Variants {
		if v.Horizon == horizon {
			return v, true
		}
	}
	return Variant{}, false
}

// Horizons lists the supported horizons in configuration order.
func (c Config) Horizons() []int {
	out := make([]int, 0, len(c.Variants))
	for _, v := range c.Variants {
		out = append(out, v.Horizon)
	}
	return out
}
