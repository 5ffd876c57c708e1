package model

import (
	"strconv"
	"time"
)

// CategoryForecast is the projected series of a single category.
type CategoryForecast struct {
	Name     string    `json:"name"`
	IsInflow bool      `json:"isInflow"`
	Values   []float64 `json:"values"`
}

// Statistics holds the per-period cash flow series.
type Statistics struct {
	TotalInflows       []float64 `json:"totalInflows"`
	TotalOutflows      []float64 `json:"totalOutflows"`
	NetCashFlow        []float64 `json:"netCashFlow"`
	CumulativeCashFlow []float64 `json:"cumulativeCashFlow"`
	RunningBalance     []float64 `json:"runningBalance"`
}

// ConfidenceBands holds lower/upper bounds around the net cash flow.
type ConfidenceBands struct {
	Lower90 []float64 `json:"lower90"`
	Upper90 []float64 `json:"upper90"`
	Lower95 []float64 `json:"lower95"`
	Upper95 []float64 `json:"upper95"`
}

// Runway is the estimated number of months until cash runs out.
// Indefinite is set when there is no burn to divide by.
type Runway struct {
	Months     float64 `json:"months"`
	Indefinite bool    `json:"indefinite"`
}

// String renders the runway for tables and logs.
func (r Runway) String() string {
	if r.Indefinite {
		return "indefinite"
	}
	return formatMonths(r.Months)
}

// KeyMetrics summarizes liquidity risk for the forecast.
type KeyMetrics struct {
	BurnRate           float64 `json:"burnRate"`
	Runway             Runway  `json:"runway"`
	BreakEvenPeriod    *int    `json:"breakEvenPeriod,omitempty"`
	BreakEvenUnit      string  `json:"breakEvenUnit"`
	CashMinimumDate    *string `json:"cashMinimumDate,omitempty"`
	CashMinimumBalance float64 `json:"cashMinimumBalance"`
	WeeksPerMonth      float64 `json:"weeksPerMonth"` // runway reads each period as one week
}

// RollingForecastResult is the immutable output of a forecast run.
type RollingForecastResult struct {
	RunID           string             `json:"runId"`
	GeneratedAt     time.Time          `json:"generatedAt"`
	StartDate       time.Time          `json:"startDate"`
	Horizon         int                `json:"horizon"`
	Cadence         string             `json:"cadence"`
	StartingBalance float64            `json:"startingBalance"`
	Periods         []string           `json:"periods"`
	Categories      []CategoryForecast `json:"categories"`
	Statistics      Statistics         `json:"statistics"`
	Confidence      ConfidenceBands    `json:"confidence"`
	Metrics         KeyMetrics         `json:"metrics"`
}

// CategorySeries returns the projected series for the named category.
func (r *RollingForecastResult) CategorySeries(name string) ([]float64, bool) {
	for _, c := range r.Categories {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

func formatMonths(m float64) string {
	return strconv.FormatFloat(m, 'f', 1, 64) + " months"
}
