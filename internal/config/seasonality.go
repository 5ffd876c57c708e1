package config

import (
	"strings"
	"time"

	"github.com/theirongolddev/runway/internal/forecast"
)

// monthlyProfiles holds one multiplier per calendar month, January first.
var monthlyProfiles = map[string][12]float64{
	"flat": {1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	"calendar": {
		0.95, 0.95, 1.05, // Q1 slow start
		1.00, 1.00, 1.05,
		0.90, 0.90, 1.05, // summer slowdown
		1.00, 1.10, 1.15, // holiday season
	},
	"quarter-end": {
		0.95, 0.95, 1.15,
		0.95, 0.95, 1.15,
		0.95, 0.95, 1.15,
		0.95, 0.95, 1.15,
	},
}

var profileAliases = map[string]string{
	"none":      "flat",
	"monthly":   "calendar",
	"seasonal":  "calendar",
	"quarterly": "quarter-end",
}

// weeksPerYear is the length of a weekly profile.
const weeksPerYear = 52

// ProfileNames returns the known profile names, sorted.
func ProfileNames() []string {
	return []string{"calendar", "flat", "quarter-end"}
}

// NormalizeProfileName lowercases and resolves aliases.
// e.g., "Quarterly" -> "quarter-end"
func NormalizeProfileName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.ReplaceAll(name, "_", "-")
	if alias, ok := profileAliases[name]; ok {
		return alias
	}
	return name
}

// SeasonalityProfile returns the pattern for a named profile, anchored at
// January. Weekly cadence yields 52 entries, monthly 12.
func SeasonalityProfile(name string, cadence forecast.Cadence) ([]float64, bool) {
	return SeasonalityProfileAt(name, cadence, time.Time{})
}

// SeasonalityProfileAt returns the pattern rotated so that index 0 lines up
// with the period containing start. A zero start anchors at January.
func SeasonalityProfileAt(name string, cadence forecast.Cadence, start time.Time) ([]float64, bool) {
	months, ok := monthlyProfiles[NormalizeProfileName(name)]
	if !ok {
		return nil, false
	}

	var pattern []float64
	offset := 0
	switch cadence {
	case forecast.Monthly:
		pattern = months[:]
		if !start.IsZero() {
			offset = int(start.Month()) - 1
		}
	default:
		pattern = make([]float64, weeksPerYear)
		for w := range pattern {
			pattern[w] = months[min(11, w*12/weeksPerYear)]
		}
		if !start.IsZero() {
			offset = min(weeksPerYear-1, (start.YearDay()-1)/7)
		}
	}

	out := make([]float64, len(pattern))
	for i := range out {
		out[i] = pattern[(i+offset)%len(pattern)]
	}
	return out, true
}
