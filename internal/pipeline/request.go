package pipeline

import (
	"fmt"
	"time"

	"github.com/theirongolddev/runway/internal/config"
	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
)

// RequestOptions controls how ledger history becomes an engine request.
type RequestOptions struct {
	Build           BuildOptions
	Horizon         int
	StartingBalance *float64
	Seasonality     string // profile name; empty means flat
}

// ForecastRequest assembles a forecast request from ledger transactions.
// The forecast starts at the bucket containing Build.End, right after the
// last complete history bucket.
func ForecastRequest(txs []model.Transaction, opts RequestOptions) (forecast.Request, error) {
	end := opts.Build.End
	if end.IsZero() {
		end = time.Now()
		opts.Build.End = end
	}
	start := PeriodStart(end, opts.Build.Cadence)

	req := forecast.Request{
		Categories:      BuildCategories(txs, opts.Build),
		StartDate:       start,
		StartingBalance: opts.StartingBalance,
		Horizon:         opts.Horizon,
		Cadence:         opts.Build.Cadence,
	}

	if opts.Seasonality == "" {
		return req, nil
	}
	pattern, ok := config.SeasonalityProfileAt(opts.Seasonality, opts.Build.Cadence, start)
	if !ok {
		return req, fmt.Errorf("unknown seasonality profile %q", opts.Seasonality)
	}
	for ci := range req.Categories {
		for si := range req.Categories[ci].Subcategories {
			req.Categories[ci].Subcategories[si].SeasonalityPattern = pattern
		}
	}
	return req, nil
}
