package forecast

import (
	"fmt"
	"time"
)

// Cadence is the spacing between forecast periods.
type Cadence string

const (
	Weekly  Cadence = "weekly"
	Monthly Cadence = "monthly"
)

// ParseCadence maps a user string to a Cadence. Empty means weekly.
func ParseCadence(s string) (Cadence, error) {
	switch Cadence(s) {
	case "", Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	}
	return "", fmt.Errorf("unknown cadence %q (want weekly or monthly)", s)
}

// Days is the nominal length of one period: 7 for weekly, 30 for monthly.
func (c Cadence) Days() float64 {
	if c == Monthly {
		return 30
	}
	return 7
}

// PeriodLabels returns horizon labels starting at start.
// Weekly labels read "W3 2026-01-19"; monthly labels read "2026-03".
func PeriodLabels(start time.Time, horizon int, cadence Cadence) []string {
	if horizon <= 0 {
		return nil
	}
	labels := make([]string, horizon)
	switch cadence {
	case Monthly:
		// Anchor on the 1st so AddDate never skips a short month.
		first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
		for i := range labels {
			labels[i] = first.AddDate(0, i, 0).Format("2006-01")
		}
	default:
		for i := range labels {
			labels[i] = fmt.Sprintf("W%d %s", i+1, start.AddDate(0, 0, 7*i).Format("2006-01-02"))
		}
	}
	return labels
}
