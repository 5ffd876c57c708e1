// Package pipeline orchestrates ledger loading, caching, and history bucketing.
package pipeline

import (
	"math"
	"sort"
	"time"

	"github.com/theirongolddev/runway/internal/forecast"
	"github.com/theirongolddev/runway/internal/model"
)

// SeriesKey identifies one historical series.
type SeriesKey struct {
	Category    string
	Subcategory string
	Direction   model.Direction
}

// PeriodTotals holds the ledger totals of one bucket.
type PeriodTotals struct {
	Start    time.Time
	Inflows  float64
	Outflows float64
	Net      float64
	Count    int
}

// FilterByTime returns transactions dated in [since, until). Zero bounds are open.
func FilterByTime(txs []model.Transaction, since, until time.Time) []model.Transaction {
	var out []model.Transaction
	for _, t := range txs {
		if !since.IsZero() && t.Date.Before(since) {
			continue
		}
		if !until.IsZero() && !t.Date.Before(until) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// PeriodStart truncates t to the start of its bucket: Monday for weekly,
// the 1st for monthly. Buckets are computed in UTC.
func PeriodStart(t time.Time, cadence forecast.Cadence) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if cadence == forecast.Monthly {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	offset := (int(day.Weekday()) + 6) % 7 // days since Monday
	return day.AddDate(0, 0, -offset)
}

// BucketStarts returns the starts of the periods complete buckets before the
// bucket containing end, oldest first.
func BucketStarts(cadence forecast.Cadence, end time.Time, periods int) []time.Time {
	if periods <= 0 {
		return nil
	}
	last := PeriodStart(end, cadence)
	starts := make([]time.Time, periods)
	for i := range starts {
		back := periods - i
		if cadence == forecast.Monthly {
			starts[i] = last.AddDate(0, -back, 0)
		} else {
			starts[i] = last.AddDate(0, 0, -7*back)
		}
	}
	return starts
}

// bucketIndex maps a transaction date to its position in BucketStarts, or -1.
func bucketIndex(date time.Time, cadence forecast.Cadence, first time.Time, periods int) int {
	start := PeriodStart(date, cadence)
	if start.Before(first) {
		return -1
	}
	var idx int
	if cadence == forecast.Monthly {
		idx = (start.Year()-first.Year())*12 + int(start.Month()-first.Month())
	} else {
		idx = int(start.Sub(first).Hours()/24) / 7
	}
	if idx >= periods {
		return -1
	}
	return idx
}

// BucketSeries sums transaction amounts per (category, subcategory,
// direction) into the periods complete buckets before end. Series are
// oldest first and zero-filled; amounts are positive.
func BucketSeries(txs []model.Transaction, cadence forecast.Cadence, end time.Time, periods int) map[SeriesKey][]float64 {
	out := make(map[SeriesKey][]float64)
	starts := BucketStarts(cadence, end, periods)
	if len(starts) == 0 {
		return out
	}

	for _, t := range txs {
		idx := bucketIndex(t.Date, cadence, starts[0], periods)
		if idx < 0 {
			continue
		}
		key := SeriesKey{Category: t.Category, Subcategory: t.Subcategory, Direction: t.Direction}
		series, ok := out[key]
		if !ok {
			series = make([]float64, periods)
			out[key] = series
		}
		series[idx] += t.Amount
	}
	return out
}

// AggregatePeriods computes per-bucket ledger totals, oldest first, with
// empty buckets kept as zeros.
func AggregatePeriods(txs []model.Transaction, cadence forecast.Cadence, end time.Time, periods int) []PeriodTotals {
	starts := BucketStarts(cadence, end, periods)
	out := make([]PeriodTotals, len(starts))
	for i, s := range starts {
		out[i].Start = s
	}
	if len(starts) == 0 {
		return out
	}

	for _, t := range txs {
		idx := bucketIndex(t.Date, cadence, starts[0], periods)
		if idx < 0 {
			continue
		}
		pt := &out[idx]
		pt.Count++
		if t.Direction == model.Outflow {
			pt.Outflows += t.Amount
		} else {
			pt.Inflows += t.Amount
		}
		pt.Net = pt.Inflows - pt.Outflows
	}
	return out
}

// Statement is a cash flow statement: net cash per flow type over the
// history window.
type Statement struct {
	Periods int
	Net     map[model.FlowType]float64
}

// Total is the net change in cash across every section.
func (s Statement) Total() float64 {
	var sum float64
	for _, v := range s.Net {
		sum += v
	}
	return sum
}

// PerPeriod is the mean net cash of one section per period.
func (s Statement) PerPeriod(ft model.FlowType) float64 {
	if s.Periods == 0 {
		return 0
	}
	return s.Net[ft] / float64(s.Periods)
}

// CashFlowStatement sums signed amounts by flow type over the same window
// AggregatePeriods uses.
func CashFlowStatement(txs []model.Transaction, cadence forecast.Cadence, end time.Time, periods int) Statement {
	st := Statement{Net: make(map[model.FlowType]float64, len(model.FlowTypes))}
	for _, ft := range model.FlowTypes {
		st.Net[ft] = 0
	}
	starts := BucketStarts(cadence, end, periods)
	if len(starts) == 0 {
		return st
	}
	st.Periods = len(starts)
	for _, t := range txs {
		if bucketIndex(t.Date, cadence, starts[0], periods) < 0 {
			continue
		}
		st.Net[t.Flow()] += t.Signed()
	}
	return st
}

// BurnSummary describes how fast history burned cash.
type BurnSummary struct {
	MeanBurn       float64  // mean of outflows minus inflows per period
	Trend          string   // forecast.BurnTrend over the period nets
	Volatility     float64  // sample standard deviation of burn
	Cash           float64  // opening balance plus every period's net
	DaysCashOnHand *float64 // nil when nothing flowed out
}

// SummarizeBurn reads burn metrics off bucketed totals. opening is the
// balance at the start of the first period.
func SummarizeBurn(totals []PeriodTotals, opening float64, cadence forecast.Cadence) BurnSummary {
	bs := BurnSummary{Cash: opening}
	if len(totals) == 0 {
		bs.Trend = forecast.TrendInsufficient
		return bs
	}

	nets := make([]float64, len(totals))
	var outflows float64
	for i, pt := range totals {
		nets[i] = pt.Net
		bs.Cash += pt.Net
		bs.MeanBurn -= pt.Net
		outflows += pt.Outflows
	}
	bs.MeanBurn /= float64(len(totals))
	bs.Trend = forecast.BurnTrend(nets)
	bs.Volatility = forecast.BurnRateVolatility(nets)
	if days, ok := forecast.DaysCashOnHand(bs.Cash, outflows/float64(len(totals)), cadence); ok {
		bs.DaysCashOnHand = &days
	}
	return bs
}

// BuildOptions controls how ledger history becomes forecast inputs.
type BuildOptions struct {
	Cadence forecast.Cadence
	End     time.Time // zero means now
	Periods int       // history length per series
	// EstimateVolatility sets each input's volatility to the coefficient of
	// variation of its history, capped at 1.
	EstimateVolatility bool
}

// BuildCategories turns ledger transactions into forecast categories, one
// per (category, direction), with one input per subcategory. Inflow
// categories come first; names sort alphabetically within each group. A
// category seen in both directions gets its outflow side suffixed
// " (out)".
func BuildCategories(txs []model.Transaction, opts BuildOptions) []model.CashFlowCategory {
	end := opts.End
	if end.IsZero() {
		end = time.Now()
	}
	series := BucketSeries(txs, opts.Cadence, end, opts.Periods)

	type catKey struct {
		name string
		dir  model.Direction
	}
	directions := make(map[string]map[model.Direction]bool)
	grouped := make(map[catKey][]model.ForecastInput)
	for key, values := range series {
		ck := catKey{name: key.Category, dir: key.Direction}
		in := model.ForecastInput{
			Category:    key.Category,
			Subcategory: key.Subcategory,
			Historical:  values,
		}
		if opts.EstimateVolatility {
			in.Volatility = model.Float(coefficientOfVariation(values))
		}
		grouped[ck] = append(grouped[ck], in)
		if directions[key.Category] == nil {
			directions[key.Category] = make(map[model.Direction]bool)
		}
		directions[key.Category][key.Direction] = true
	}

	cats := make([]model.CashFlowCategory, 0, len(grouped))
	for ck, inputs := range grouped {
		sort.Slice(inputs, func(i, j int) bool {
			return inputs[i].Subcategory < inputs[j].Subcategory
		})
		name := ck.name
		if ck.dir == model.Outflow && directions[ck.name][model.Inflow] {
			name += " (out)"
		}
		cats = append(cats, model.CashFlowCategory{
			Name:          name,
			IsInflow:      ck.dir != model.Outflow,
			Subcategories: inputs,
		})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].IsInflow != cats[j].IsInflow {
			return cats[i].IsInflow
		}
		return cats[i].Name < cats[j].Name
	})
	return cats
}

func coefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if mean == 0 {
		return 0
	}
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	cv := math.Sqrt(ss/float64(len(values))) / math.Abs(mean)
	return math.Min(cv, 1)
}
