package cli

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1234.5, "$1,234.50"},
		{-20, "-$20.00"},
		{999999.999, "$1,000,000.00"},
		{math.NaN(), "n/a"},
		{math.Inf(-1), "n/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.in), "FormatMoney(%v)", tt.in)
	}
}

func TestFormatCompactMoney(t *testing.T) {
	assert.Equal(t, "$12", FormatCompactMoney(12.3))
	assert.Equal(t, "$1.2K", FormatCompactMoney(1234))
	assert.Equal(t, "-$2.5M", FormatCompactMoney(-2_500_000))
	assert.Equal(t, "$3.0B", FormatCompactMoney(3_000_000_000))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "-1,234,567", FormatNumber(-1234567))
}

func TestFormatDeltaAndRatio(t *testing.T) {
	assert.Equal(t, "+$50.00", FormatDelta(150, 100))
	assert.Equal(t, "-$50.00", FormatDelta(100, 150))
	assert.Equal(t, "+$0.00", FormatDelta(7, 7))
	assert.Equal(t, "2.50x", FormatRatio(2.5))
	assert.Equal(t, "50.0%", FormatPercent(0.5))
}

func TestRenderSparkline(t *testing.T) {
	assert.Empty(t, RenderSparkline(nil))
	assert.Equal(t, "▁█", RenderSparkline([]float64{-100, 700}))
	assert.Equal(t, "██", RenderSparkline([]float64{5, 5}))
}

func TestRenderTable_PadsShortRows(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Ending balance", "$1.00"},
			SeparatorRow,
			{"only one cell"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// top rule, header, header rule, row, separator, row, bottom rule
	assert.Len(t, lines, 7)
	assert.Contains(t, out, "Ending balance")
	assert.Contains(t, out, "only one cell")
}
