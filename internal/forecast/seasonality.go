package forecast

// ApplySeasonality scales base by the pattern entry for period.
// An empty pattern leaves base unchanged.
func ApplySeasonality(base float64, pattern []float64, period int) float64 {
	if len(pattern) == 0 {
		return base
	}
	idx := period % len(pattern)
	if idx < 0 {
		idx += len(pattern)
	}
	return base * pattern[idx]
}
