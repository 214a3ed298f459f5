package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/storelens/internal/presenter"
	"github.com/rileyhilliard/storelens/internal/viewmodel"
)

// Card layout constants
const (
	cardChartHeight = 4 // braille chart rows in the grid
	cardMaxCards    = 4 // ranked cards shown before "+N more"
	cardMinWidth    = 24
)

var cardDividerStyle = lipgloss.NewStyle().Foreground(ColorBorder)

// renderCardDivider creates a subtle thin divider line
func renderCardDivider(width int) string {
	return cardDividerStyle.Render(strings.Repeat("─", width))
}

// truncateWithEllipsis truncates a string to maxLen display cells, adding ellipsis if needed.
func truncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 3 || lipgloss.Width(s) <= maxLen {
		return s
	}
	return truncateRunes(s, maxLen-3) + "..."
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// wrapWords breaks text into lines no wider than width.
func wrapWords(text string, width int) []string {
	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		switch {
		case current == "":
			current = word
		case lipgloss.Width(current)+1+lipgloss.Width(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// widgetTitle prefers the chart's own title once data has arrived.
func widgetTitle(wv presenter.WidgetView) string {
	if wv.Spec != nil && wv.Spec.Title != "" {
		return wv.Spec.Title
	}
	return wv.Widget.Title
}

// RenderWidget renders one widget as a bordered card. frame drives the
// loading spinner; pass -1 for a static glyph.
func RenderWidget(wv presenter.WidgetView, width int, selected bool, frame int) string {
	if width < cardMinWidth {
		width = cardMinWidth
	}

	style := CardStyle.Width(width)
	if selected {
		style = CardSelectedStyle.Width(width)
	}
	innerWidth := width - 4

	glyph, glyphStyle := StateGlyph(wv.State, frame)
	lines := []string{
		glyphStyle.Render(glyph) + " " + TitleStyle.Render(truncateWithEllipsis(widgetTitle(wv), innerWidth-2)),
		renderCardDivider(innerWidth),
	}
	lines = append(lines, widgetBody(wv, innerWidth, cardChartHeight, cardMaxCards, frame)...)

	return style.Render(strings.Join(lines, "\n"))
}

// widgetBody renders the state-specific content of a widget.
func widgetBody(wv presenter.WidgetView, width, chartHeight, maxCards, frame int) []string {
	switch wv.State {
	case presenter.StateLoading:
		text := LoadingTextFrames[0]
		if frame >= 0 {
			text = LoadingTextFrames[(frame/LoadingTextSlowdown)%len(LoadingTextFrames)]
		}
		return []string{StateLoadingStyle.Render(text)}

	case presenter.StateUnavailable:
		msg := "Unavailable"
		if wv.Reason != nil {
			msg = wv.Reason.String()
		}
		var lines []string
		for _, l := range wrapWords(msg, width) {
			lines = append(lines, StateUnavailableStyle.Render(l))
		}
		return lines

	case presenter.StateEmpty:
		return []string{StateEmptyStyle.Render("No data for this period")}
	}

	if wv.Spec == nil {
		return nil
	}
	return renderChart(*wv.Spec, width, chartHeight, maxCards)
}

// renderChart draws a ChartSpec in the terminal. maxCards <= 0 shows every card.
func renderChart(spec viewmodel.ChartSpec, width, height, maxCards int) []string {
	var lines []string

	switch spec.Kind {
	case viewmodel.KindTimeSeriesWithBand:
		lines = append(lines, renderTimeSeries(spec, width, height)...)

	case viewmodel.KindCategoricalBar:
		if s, ok := spec.SeriesByID(viewmodel.SeriesValue); ok {
			if spec.Horizontal {
				lines = append(lines, RenderBars(spec.Labels, s.Values, s.Display, width, ColorAccent))
			} else {
				lines = append(lines, RenderColumns(spec.Labels, s.Values, width, height, ColorAccent))
			}
		}

	case viewmodel.KindCategoricalDonut:
		if s, ok := spec.SeriesByID(viewmodel.SeriesValue); ok {
			lines = append(lines, RenderSliceBar(spec.Labels, s.Values, s.Display, width))
		}
	}

	if len(spec.Cards) > 0 {
		if spec.Kind != viewmodel.KindRankedCards {
			lines = append(lines, renderCardDivider(width))
		}
		lines = append(lines, renderRankedCards(spec.Cards, width, maxCards)...)
	}

	for _, note := range spec.Notes {
		lines = append(lines, MutedStyle.Render(truncateWithEllipsis(note, width)))
	}
	return lines
}

func renderTimeSeries(spec viewmodel.ChartSpec, width, height int) []string {
	var lines []string

	if spec.HasBand() {
		pred, _ := spec.SeriesByID(viewmodel.SeriesPredicted)
		upper, _ := spec.SeriesByID(viewmodel.SeriesUpper)
		lower, _ := spec.SeriesByID(viewmodel.SeriesLower)
		lines = append(lines, RenderBandChart(lower.Values, pred.Values, upper.Values, width, height))
	} else if s, ok := spec.SeriesByID(viewmodel.SeriesValue); ok {
		lines = append(lines, RenderAreaChart(s.Values, width, height, ColorGraph))
	}

	lines = append(lines, renderAxis(spec.Labels, width))
	if legend := renderLegend(spec.Series); legend != "" {
		lines = append(lines, legend)
	}
	return lines
}

// renderAxis shows the first and last label at either edge.
func renderAxis(labels []string, width int) string {
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return LabelStyle.Render(truncateWithEllipsis(labels[0], width))
	}
	first, last := labels[0], labels[len(labels)-1]
	gap := width - lipgloss.Width(first) - lipgloss.Width(last)
	if gap < 1 {
		return LabelStyle.Render(truncateWithEllipsis(first+" → "+last, width))
	}
	return LabelStyle.Render(first + strings.Repeat(" ", gap) + last)
}

// renderLegend lists the series marked for the legend.
func renderLegend(series []viewmodel.Series) string {
	var parts []string
	for _, s := range series {
		if !s.InLegend {
			continue
		}
		switch {
		case s.Fill == viewmodel.FillToSeries:
			parts = append(parts, lipgloss.NewStyle().Foreground(ColorBand).Render("⣿")+" "+LabelStyle.Render(s.Name))
		default:
			parts = append(parts, lipgloss.NewStyle().Foreground(ColorGraph).Render("━")+" "+LabelStyle.Render(s.Name))
		}
	}
	return strings.Join(parts, "  ")
}

// renderRankedCards lists cards in rank order, highlighting flagged ones.
func renderRankedCards(cards []viewmodel.Card, width, maxCards int) []string {
	shown := cards
	if maxCards > 0 && len(cards) > maxCards {
		shown = cards[:maxCards]
	}

	var lines []string
	for _, c := range shown {
		marker, style := "▸", ValueStyle
		if c.Highlight {
			marker, style = "★", HighlightStyle
		}
		lines = append(lines, style.Render(truncateWithEllipsis(marker+" "+c.Line(), width)))
		if c.Detail != "" {
			for _, l := range wrapWords(c.Detail, width-2) {
				lines = append(lines, "  "+MutedStyle.Render(l))
			}
		}
	}
	if len(shown) < len(cards) {
		lines = append(lines, MutedStyle.Render(fmt.Sprintf("+%d more", len(cards)-len(shown))))
	}
	return lines
}
