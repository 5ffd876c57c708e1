package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as a one-line sparkline scaled between the series
// minimum and maximum.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := len(sparkBlocks) - 1
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkBlocks)-1))
		}
		buf.WriteRune(sparkBlocks[max(0, min(idx, len(sparkBlocks)-1))])
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// BarChart renders values as vertical bars around a zero baseline. Positive
// bars use color; negative bars hang below the axis in the loss color.
// width and height are the total chart area including the y-axis labels.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	hi, lo := 0.0, 0.0
	for _, v := range values {
		hi = math.Max(hi, v)
		lo = math.Min(lo, v)
	}
	if hi == 0 && lo == 0 {
		hi = 1
	}
	span := hi - lo
	rowValue := span / float64(height)

	upRows := int(math.Round(float64(height) * hi / span))
	switch {
	case lo < 0 && upRows == height:
		upRows = height - 1
	case hi > 0 && upRows == 0:
		upRows = 1
	}
	downRows := height - upRows

	hiLabel, loLabel := chartLabel(hi), chartLabel(lo)
	labelW := max(len(hiLabel), len(loLabel), 2) + 1
	chartW := max(5, width-labelW-1)

	values, labels = fitBars(values, labels, chartW)
	n := len(values)
	barW := max(1, min(6, (chartW-(n-1))/n))
	axisLen := n*barW + n - 1

	bg := lipgloss.NewStyle().Background(t.Surface)
	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	up := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	down := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	row := func(label string, cell func(v float64) (string, lipgloss.Style)) string {
		var b strings.Builder
		b.WriteString(axis.Render(fmt.Sprintf("%*s", labelW, label)))
		b.WriteString(axis.Render("│"))
		for i, v := range values {
			if i > 0 {
				b.WriteString(bg.Render(" "))
			}
			glyph, style := cell(v)
			b.WriteString(style.Render(strings.Repeat(glyph, barW)))
		}
		return b.String()
	}

	lines := make([]string, 0, height+2)
	for r := upRows; r >= 1; r-- {
		top := rowValue * float64(r)
		bottom := rowValue * float64(r-1)
		label := ""
		if r == upRows {
			label = hiLabel
		}
		lines = append(lines, row(label, func(v float64) (string, lipgloss.Style) {
			switch {
			case v >= top:
				return "█", up
			case v > bottom:
				idx := int((v - bottom) / rowValue * 8)
				return string(sparkBlocks[max(0, min(idx, 7))]), up
			default:
				return " ", bg
			}
		}))
	}

	lines = append(lines, axis.Render(fmt.Sprintf("%*s", labelW, "0"))+
		axis.Render("┼"+strings.Repeat("─", axisLen)))

	for r := 1; r <= downRows; r++ {
		depth := rowValue * float64(r)
		shallow := rowValue * float64(r-1)
		label := ""
		if r == downRows {
			label = loLabel
		}
		lines = append(lines, row(label, func(v float64) (string, lipgloss.Style) {
			switch {
			case -v >= depth:
				return "█", down
			case -v > shallow && (-v-shallow)/rowValue >= 0.5:
				return "█", down
			case -v > shallow:
				return "▀", down
			default:
				return " ", bg
			}
		}))
	}

	if len(labels) == n {
		lines = append(lines, bg.Render(strings.Repeat(" ", labelW+1))+
			axis.Render(axisLabels(labels, barW, axisLen)))
	}
	return strings.Join(lines, "\n")
}

// fitBars downsamples values so that bars at least one column wide with a
// one column gap fit into width.
func fitBars(values []float64, labels []string, width int) ([]float64, []string) {
	n := len(values)
	maxN := max(2, (width+1)/2)
	if n <= maxN {
		return values, labels
	}
	sampled := make([]float64, maxN)
	var sampledLabels []string
	if len(labels) == n {
		sampledLabels = make([]string, maxN)
	}
	for i := range sampled {
		src := i * (n - 1) / (maxN - 1)
		sampled[i] = values[src]
		if sampledLabels != nil {
			sampledLabels[i] = labels[src]
		}
	}
	return sampled, sampledLabels
}

// axisLabels lays out x-axis labels under their bars, skipping any that
// would overlap the previous one.
func axisLabels(labels []string, barW, axisLen int) string {
	buf := []byte(strings.Repeat(" ", axisLen))
	lastEnd := -1
	for i, lbl := range labels {
		pos := i * (barW + 1)
		if pos <= lastEnd || pos >= axisLen {
			continue
		}
		end := min(pos+len(lbl), axisLen)
		if end-pos < len(lbl) && end-pos < 3 {
			continue
		}
		copy(buf[pos:end], lbl[:end-pos])
		lastEnd = end
	}
	return strings.TrimRight(string(buf), " ")
}

func chartLabel(v float64) string {
	if v == 0 {
		return "0"
	}
	return cli.FormatCompactMoney(v)
}
