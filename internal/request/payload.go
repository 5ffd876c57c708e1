// Package request decodes and validates forecast request files.
package request

import (
	"github.com/theirongolddev/runway/internal/model"
)

// Payload is the on-disk form of a forecast request.
type Payload struct {
	StartDate       string     `json:"startDate,omitempty" yaml:"startDate" validate:"omitempty,date"`
	StartingBalance *float64   `json:"startingBalance,omitempty" yaml:"startingBalance" validate:"omitempty,finite"`
	Horizon         int        `json:"horizon,omitempty" yaml:"horizon" validate:"omitempty,oneof=13 52"`
	Cadence         string     `json:"cadence,omitempty" yaml:"cadence" validate:"omitempty,oneof=weekly monthly"`
	Seasonality     string     `json:"seasonality,omitempty" yaml:"seasonality" validate:"omitempty,profile"`
	Categories      []Category `json:"categories" yaml:"categories" validate:"dive"`
	Drivers         []Driver   `json:"drivers,omitempty" yaml:"drivers" validate:"unique=Name,dive"`
}

// Category is a named group of inputs.
type Category struct {
	Name          string  `json:"name" yaml:"name" validate:"required"`
	IsInflow      bool    `json:"isInflow" yaml:"isInflow"`
	Subcategories []Input `json:"subcategories" yaml:"subcategories" validate:"dive"`
}

// Input is one forecast line.
type Input struct {
	Category           string    `json:"category" yaml:"category" validate:"required"`
	Subcategory        string    `json:"subcategory,omitempty" yaml:"subcategory"`
	Historical         []float64 `json:"historical" yaml:"historical" validate:"dive,finite"`
	GrowthRate         *float64  `json:"growthRate,omitempty" yaml:"growthRate" validate:"omitempty,finite"`
	SeasonalityPattern []float64 `json:"seasonalityPattern,omitempty" yaml:"seasonalityPattern" validate:"dive,finite,gte=0"`
	Volatility         *float64  `json:"volatility,omitempty" yaml:"volatility" validate:"omitempty,gte=0,lte=1"`
	Driver             string    `json:"driver,omitempty" yaml:"driver"`
	DriverMultiplier   *float64  `json:"driverMultiplier,omitempty" yaml:"driverMultiplier" validate:"omitempty,finite"`
}

// Driver is an exogenous series referenced by inputs.
type Driver struct {
	Name        string    `json:"name" yaml:"name" validate:"required"`
	Values      []float64 `json:"values" yaml:"values" validate:"dive,finite"`
	Description string    `json:"description,omitempty" yaml:"description"`
}

func (in Input) toModel() model.ForecastInput {
	return model.ForecastInput{
		Category:           in.Category,
		Subcategory:        in.Subcategory,
		Historical:         in.Historical,
		GrowthRate:         in.GrowthRate,
		SeasonalityPattern: in.SeasonalityPattern,
		Volatility:         in.Volatility,
		Driver:             in.Driver,
		DriverMultiplier:   in.DriverMultiplier,
	}
}

// FromCategories builds a payload from already-assembled categories, e.g.
// those derived from the ledger.
func FromCategories(categories []model.CashFlowCategory) Payload {
	p := Payload{Categories: make([]Category, 0, len(categories))}
	for _, c := range categories {
		cat := Category{Name: c.Name, IsInflow: c.IsInflow}
		for _, in := range c.Subcategories {
			cat.Subcategories = append(cat.Subcategories, Input{
				Category:           in.Category,
				Subcategory:        in.Subcategory,
				Historical:         in.Historical,
				GrowthRate:         in.GrowthRate,
				SeasonalityPattern: in.SeasonalityPattern,
				Volatility:         in.Volatility,
				Driver:             in.Driver,
				DriverMultiplier:   in.DriverMultiplier,
			})
		}
		p.Categories = append(p.Categories, cat)
	}
	return p
}
