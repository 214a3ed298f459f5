package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/storelens/internal/presenter"
	"github.com/rileyhilliard/storelens/internal/ui"
	"github.com/rileyhilliard/storelens/internal/viewmodel"
)

const (
	detailChartHeight = 10
	detailHistory     = 30
)

var detailContainerStyle = lipgloss.NewStyle().Padding(0, 2)

// renderDetailView renders the expanded single-widget view.
func (m Model) renderDetailView() string {
	wv, ok := m.selectedWidget()
	if !ok {
		return LabelStyle.Render("No widget selected")
	}

	var b strings.Builder
	b.WriteString(m.renderDetailHeader(wv))
	b.WriteString("\n\n")

	if m.viewportReady {
		b.WriteString(m.detailViewport.View())
	} else {
		b.WriteString(m.renderDetailContent())
	}

	b.WriteString("\n")
	b.WriteString(m.renderDetailFooter())
	return detailContainerStyle.Render(b.String())
}

// renderDetailHeader renders the widget title and state prominently.
func (m Model) renderDetailHeader(wv presenter.WidgetView) string {
	glyph, style := StateGlyph(wv.State, m.spinnerFrame)

	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render(widgetTitle(wv))

	return fmt.Sprintf("%s  %s  %s", title, style.Render(glyph+" "+wv.State.String()),
		MutedStyle.Render("store "+m.StoreID()))
}

// renderDetailContent renders the scrollable body of the detail view.
func (m Model) renderDetailContent() string {
	wv, ok := m.selectedWidget()
	if !ok {
		return ""
	}

	width := m.width - 6
	if width < 40 {
		width = 40
	}

	var sections []string
	switch wv.State {
	case presenter.StateReady:
		sections = append(sections,
			renderSection("Chart", string(wv.Spec.Kind), renderChart(*wv.Spec, width-4, detailChartHeight, 0), width))
		if table, n := dataTable(*wv.Spec, width-4); n > 0 {
			sections = append(sections, renderSection("Data", fmt.Sprintf("%d rows", n), []string{table}, width))
		}
	case presenter.StateUnavailable, presenter.StateEmpty, presenter.StateLoading:
		sections = append(sections,
			renderSection("Status", wv.State.String(), widgetBody(wv, width-4, detailChartHeight, 0, m.spinnerFrame), width))
	}

	sections = append(sections, m.renderFetchSection(wv, width))
	return strings.Join(sections, "\n")
}

// renderFetchSection shows when and how fast the source answered.
func (m Model) renderFetchSection(wv presenter.WidgetView, width int) string {
	var lines []string
	if wv.FetchedAt.IsZero() {
		lines = append(lines, LabelStyle.Render("Not fetched yet"))
	} else {
		lines = append(lines,
			LabelStyle.Render("Fetched:  ")+ValueStyle.Render(humanize.Time(wv.FetchedAt)),
			LabelStyle.Render("Latency:  ")+ValueStyle.Render(wv.Latency.String()))
	}

	id := wv.Widget.SourceID
	if history := m.history.Latency(id, detailHistory); len(history) > 1 {
		spark := lipgloss.NewStyle().Foreground(ColorGraph).Render(RenderMiniSparkline(history, width-16))
		lines = append(lines, LabelStyle.Render("History:  ")+spark)
		lines = append(lines, LabelStyle.Render("Failures: ")+
			ValueStyle.Render(fmt.Sprintf("%.0f%% of %d fetches", m.history.FailureRate(id)*100, m.history.Count(id))))
	}

	return renderSection("Source", id, lines, width)
}

// renderSection frames lines between a titled header and a footer.
func renderSection(title, value string, lines []string, width int) string {
	out := []string{SectionHeader(title, value, width)}
	for _, block := range lines {
		for _, l := range strings.Split(block, "\n") {
			out = append(out, SectionContentLine(l, width))
		}
	}
	out = append(out, SectionFooter(width))
	return strings.Join(out, "\n")
}

// dataTable renders every point of a chart, or every card of a ranked
// list, as a table. It returns the rendered table and its row count.
func dataTable(spec viewmodel.ChartSpec, width int) (string, int) {
	titles, rows := dataCells(spec)
	if len(rows) == 0 {
		return "", 0
	}
	// Cell padding takes two columns per cell.
	maxCell := max(8, width/len(titles)-2)
	return ui.RenderTable(ui.FitColumns(titles, rows, maxCell), rows), len(rows)
}

func dataCells(spec viewmodel.ChartSpec) ([]string, [][]string) {
	if spec.Kind == viewmodel.KindRankedCards {
		rows := make([][]string, 0, len(spec.Cards))
		for _, c := range spec.Cards {
			rows = append(rows, []string{c.Title, c.Value, c.Detail})
		}
		return []string{"TITLE", "VALUE", "DETAIL"}, rows
	}

	primary, ok := spec.SeriesByID(viewmodel.SeriesPredicted)
	if !ok {
		primary, ok = spec.SeriesByID(viewmodel.SeriesValue)
	}
	if !ok {
		return nil, nil
	}
	lower, hasLower := spec.SeriesByID(viewmodel.SeriesLower)
	upper, hasUpper := spec.SeriesByID(viewmodel.SeriesUpper)
	band := hasLower && hasUpper

	titles := []string{"LABEL", "VALUE"}
	if band {
		titles = append(titles, "LOW", "HIGH")
	}
	rows := make([][]string, 0, len(spec.Labels))
	for i, label := range spec.Labels {
		row := []string{label, displayAt(primary, i)}
		if band {
			row = append(row, displayAt(lower, i), displayAt(upper, i))
		}
		rows = append(rows, row)
	}
	return titles, rows
}

func displayAt(s viewmodel.Series, i int) string {
	if i < len(s.Display) {
		return s.Display[i]
	}
	if i < len(s.Values) {
		return humanize.Commaf(s.Values[i])
	}
	return ""
}

// renderDetailFooter renders navigation hints for the detail view.
func (m Model) renderDetailFooter() string {
	hints := []string{"Esc back", "↑↓ widget", "PgUp/PgDn scroll", "r refresh", "q quit"}
	return FooterStyle.Render(strings.Join(hints, " | "))
}
