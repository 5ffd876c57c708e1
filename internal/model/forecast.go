// Package model defines the value types shared by the forecast engine, the
// ledger pipeline and the renderers.
package model

// ForecastInput describes the projection of one sub-category of a cash flow category.
type ForecastInput struct {
	Category           string    `json:"category"`
	Subcategory        string    `json:"subcategory,omitempty"`
	Historical         []float64 `json:"historical"`                   // oldest first, may be empty
	SeasonalityPattern []float64 `json:"seasonalityPattern,omitempty"` // cyclic multipliers
	GrowthRate         *float64  `json:"growthRate,omitempty"`         // annual, decimal
	Volatility         *float64  `json:"volatility,omitempty"`         // fraction, long horizon only
	Driver             string    `json:"driver,omitempty"`
	DriverMultiplier   *float64  `json:"driverMultiplier,omitempty"`
}

// Label returns the display name of the input: the subcategory when set,
// otherwise the category.
func (in ForecastInput) Label() string {
	if in.Subcategory != "" {
		return in.Subcategory
	}
	return in.Category
}

// UsesDriver reports whether the input names a driver and a multiplier.
func (in ForecastInput) UsesDriver() bool {
	return in.Driver != "" && in.DriverMultiplier != nil
}

// ForecastDriver is a named external series aligned to the forecast horizon.
type ForecastDriver struct {
	Name        string    `json:"name"`
	Values      []float64 `json:"values"`
	Description string    `json:"description,omitempty"`
}

// CashFlowCategory groups sub-category inputs under one direction.
type CashFlowCategory struct {
	Name          string          `json:"name"`
	IsInflow      bool            `json:"isInflow"`
	Subcategories []ForecastInput `json:"subcategories"`
}

// Float returns a pointer to v. Handy for the optional fields above.
func Float(v float64) *float64 {
	return &v
}
