package dashboard

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille character rendering for high-resolution terminal charts.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '⠀'

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// brailleDots maps row/column to the bit offset for braille pattern
// [row][col] where row is 0-3 (top to bottom) and col is 0-1 (left to right)
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// findMinMax returns the smallest and largest value across all series.
func findMinMax(series ...[]float64) (minVal, maxVal float64) {
	first := true
	for _, data := range series {
		for _, v := range data {
			if first {
				minVal, maxVal = v, v
				first = false
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	return minVal, maxVal
}

// normalizeValue converts a value to 0-1 range given min/max bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// brailleGrid is a width x height character canvas with 2x4 dots per cell.
type brailleGrid struct {
	width, height int
	cells         [][]rune
}

func newBrailleGrid(width, height int) *brailleGrid {
	cells := make([][]rune, height)
	for i := range cells {
		cells[i] = make([]rune, width)
		for j := range cells[i] {
			cells[i][j] = brailleBase
		}
	}
	return &brailleGrid{width: width, height: height, cells: cells}
}

// set lights the dot at column x (0..2*width-1) and level y (0 is the bottom).
func (g *brailleGrid) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col := x / 2
	row := g.height - 1 - y/4
	if col < 0 || col >= g.width || row < 0 || row >= g.height {
		return
	}
	g.cells[row][col] |= rune(1 << brailleDots[3-y%4][x%2])
}

// span lights every dot in column x between levels a and b inclusive.
func (g *brailleGrid) span(x, a, b int) {
	if a > b {
		a, b = b, a
	}
	for y := a; y <= b; y++ {
		g.set(x, y)
	}
}

func (g *brailleGrid) lit(row, col int) bool {
	return g.cells[row][col] != brailleBase
}

// level maps v onto a dot level in [0, levels-1].
func level(v, minVal, maxVal float64, levels int) int {
	return clampInt(int(math.Round(normalizeValue(v, minVal, maxVal)*float64(levels-1))), levels-1)
}

// RenderBandChart draws a predicted line over a shaded confidence band.
// The three series must have equal lengths. Each character holds two data
// columns and four vertical levels.
func RenderBandChart(lower, predicted, upper []float64, width, height int) string {
	if len(predicted) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	if len(lower) != len(predicted) || len(upper) != len(predicted) {
		return ""
	}

	minVal, maxVal := findMinMax(lower, predicted, upper)
	levels := height * 4
	points := width * 2

	lo := resampleData(lower, points)
	mid := resampleData(predicted, points)
	hi := resampleData(upper, points)

	band := newBrailleGrid(width, height)
	line := newBrailleGrid(width, height)

	prev := -1
	for x := 0; x < points; x++ {
		band.span(x, level(lo[x], minVal, maxVal, levels), level(hi[x], minVal, maxVal, levels))

		p := level(mid[x], minVal, maxVal, levels)
		if prev < 0 {
			line.set(x, p)
		} else {
			line.span(x, prev, p)
		}
		prev = p
	}

	lineStyle := lipgloss.NewStyle().Foreground(ColorGraph)
	bandStyle := lipgloss.NewStyle().Foreground(ColorBand)

	rows := make([]string, height)
	for r := 0; r < height; r++ {
		var b strings.Builder
		for c := 0; c < width; c++ {
			switch {
			case line.lit(r, c):
				b.WriteString(lineStyle.Render(string(line.cells[r][c] | band.cells[r][c])))
			case band.lit(r, c):
				b.WriteString(bandStyle.Render(string(band.cells[r][c])))
			default:
				b.WriteRune(' ')
			}
		}
		rows[r] = b.String()
	}
	return strings.Join(rows, "\n")
}

// RenderAreaChart draws values as a braille area filled down to zero, or to
// the smallest value when it is negative.
func RenderAreaChart(values []float64, width, height int, color lipgloss.Color) string {
	if len(values) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := findMinMax(values)
	minVal = math.Min(minVal, 0)
	levels := height * 4
	points := width * 2
	data := resampleData(values, points)

	grid := newBrailleGrid(width, height)
	base := level(0, minVal, maxVal, levels)
	for x, v := range data {
		grid.span(x, base, level(v, minVal, maxVal, levels))
	}

	style := lipgloss.NewStyle().Foreground(color)
	rows := make([]string, height)
	for r := range grid.cells {
		rows[r] = style.Render(string(grid.cells[r]))
	}
	return strings.Join(rows, "\n")
}

// RenderBars draws one horizontal bar per label, followed by its display value.
// Negative values draw as empty bars.
func RenderBars(labels []string, values []float64, display []string, width int, color lipgloss.Color) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	labelWidth := 0
	for _, l := range labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}
	labelWidth = min(labelWidth, max(width/3, 4))

	valueWidth := 0
	for _, d := range display {
		valueWidth = max(valueWidth, lipgloss.Width(d))
	}

	barWidth := width - labelWidth - valueWidth - 2
	if barWidth < 1 {
		barWidth = 1
	}

	_, maxVal := findMinMax(values)
	barStyle := lipgloss.NewStyle().Foreground(color)

	lines := make([]string, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = truncateWithEllipsis(labels[i], labelWidth)
		}
		filled := 0
		if maxVal > 0 && v > 0 {
			filled = clampInt(int(math.Round(v/maxVal*float64(barWidth))), barWidth)
		}
		bar := barStyle.Render(strings.Repeat("█", filled)) + strings.Repeat(" ", barWidth-filled)

		value := ""
		if i < len(display) {
			value = display[i]
		}
		lines[i] = LabelStyle.Render(padRight(label, labelWidth)) + " " + bar + " " + ValueStyle.Render(value)
	}
	return strings.Join(lines, "\n")
}

// RenderColumns draws vertical bars, one column group per label, with
// abbreviated labels underneath.
func RenderColumns(labels []string, values []float64, width, height int, color lipgloss.Color) string {
	if len(values) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	colWidth := width/len(values) - 1
	if colWidth < 1 {
		colWidth = 1
	}

	_, maxVal := findMinMax(values)
	eighths := height * len(sparklineBlocks)

	rows := make([]strings.Builder, height)
	for _, v := range values {
		filled := 0
		if maxVal > 0 && v > 0 {
			filled = clampInt(int(math.Round(v/maxVal*float64(eighths))), eighths)
		}
		for r := 0; r < height; r++ {
			fromBottom := height - 1 - r
			cell := " "
			switch remaining := filled - fromBottom*len(sparklineBlocks); {
			case remaining >= len(sparklineBlocks):
				cell = "█"
			case remaining > 0:
				cell = string(sparklineBlocks[remaining-1])
			}
			rows[r].WriteString(strings.Repeat(cell, colWidth) + " ")
		}
	}

	style := lipgloss.NewStyle().Foreground(color)
	lines := make([]string, 0, height+1)
	for r := range rows {
		lines = append(lines, style.Render(strings.TrimRight(rows[r].String(), " ")))
	}

	var axis strings.Builder
	for i := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		axis.WriteString(padRight(truncateRunes(label, colWidth), colWidth) + " ")
	}
	lines = append(lines, LabelStyle.Render(strings.TrimRight(axis.String(), " ")))
	return strings.Join(lines, "\n")
}

// RenderSliceBar draws a part-of-whole bar split into colored segments,
// followed by a legend line per slice.
func RenderSliceBar(labels []string, values []float64, display []string, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	total := 0.0
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}

	var bar strings.Builder
	used := 0
	for i, v := range values {
		if total == 0 || v <= 0 {
			continue
		}
		n := int(math.Round(v / total * float64(width)))
		if i == len(values)-1 || used+n > width {
			n = width - used
		}
		bar.WriteString(lipgloss.NewStyle().Foreground(SliceColor(i)).Render(strings.Repeat("━", n)))
		used += n
	}
	if used < width {
		bar.WriteString(MutedStyle.Render(strings.Repeat("─", width-used)))
	}

	lines := []string{bar.String()}
	for i := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		value := ""
		if i < len(display) {
			value = display[i]
		}
		dot := lipgloss.NewStyle().Foreground(SliceColor(i)).Render("●")
		lines = append(lines, dot+" "+LabelStyle.Render(label)+"  "+ValueStyle.Render(value))
	}
	return strings.Join(lines, "\n")
}

// RenderMiniSparkline renders a single-row sparkline using block characters.
func RenderMiniSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	minVal, maxVal := findMinMax(data)
	resampled := data
	if len(data) > width {
		resampled = resampleData(data, width)
	}

	var result strings.Builder
	for _, val := range resampled {
		normalized := normalizeValue(val, minVal, maxVal)
		idx := clampInt(int(normalized*float64(len(sparklineBlocks)-1)), len(sparklineBlocks)-1)
		result.WriteRune(sparklineBlocks[idx])
	}
	return result.String()
}

// resampleData resamples data to the target size.
// When downsampling, uses max-based sampling to preserve peaks.
// When upsampling, uses linear interpolation.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}

	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)

	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := int(float64(i+1) * bucketSize)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			if start < 0 {
				start = 0
			}

			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				if data[j] > maxVal {
					maxVal = data[j]
				}
			}
			result[i] = maxVal
		}
		return result
	}

	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}
	return result
}
