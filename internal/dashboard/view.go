package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/storelens/internal/presenter"
)

// renderDashboard renders the complete grid view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.view.Banner != nil {
		b.WriteString(renderBanner(m.view.Banner, m.width))
	} else {
		b.WriteString(m.renderWidgetCards())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the dashboard header with cycle progress.
func (m Model) renderHeader() string {
	store := m.StoreID()
	if len(m.stores) > 1 {
		store = fmt.Sprintf("%s (%d/%d)", store, m.storeIdx+1, len(m.stores))
	}

	updated := "waiting for data"
	if !m.lastUpdate.IsZero() {
		updated = "updated " + humanize.Time(m.lastUpdate)
	}

	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("storelens")

	stats := LabelStyle.Render(fmt.Sprintf(" | store %s | %s | %s",
		store, progressText(m.view), updated))

	return HeaderStyle.Render(title + stats)
}

// progressText summarizes how far the cycle has settled.
func progressText(v presenter.View) string {
	if !v.Complete {
		return fmt.Sprintf("%d/%d loaded", v.Settled, v.Total)
	}
	counts := v.Counts()
	text := fmt.Sprintf("%d ready", counts[presenter.StateReady]+counts[presenter.StateEmpty])
	if n := counts[presenter.StateUnavailable]; n > 0 {
		text += fmt.Sprintf(", %d unavailable", n)
	}
	return text
}

// renderWidgetCards renders the grid of widget cards.
func (m Model) renderWidgetCards() string {
	if len(m.view.Widgets) == 0 {
		return LabelStyle.Render("No widgets configured")
	}

	cardWidth := m.calculateCardWidth()
	cards := make([]string, len(m.view.Widgets))
	for i, wv := range m.view.Widgets {
		cards[i] = RenderWidget(wv, cardWidth, i == m.selected, m.spinnerFrame)
	}
	return layoutCards(cards, m.columns())
}

// columns returns how many cards fit per row.
func (m Model) columns() int {
	switch m.Layout() {
	case LayoutWide:
		return 3
	case LayoutStandard:
		return 2
	default:
		return 1
	}
}

// calculateCardWidth splits the terminal width across the columns.
func (m Model) calculateCardWidth() int {
	return cardWidthFor(m.width, m.columns())
}

func cardWidthFor(termWidth, columns int) int {
	if termWidth == 0 {
		return 40
	}
	// margin + border
	w := termWidth/columns - 3
	if w < cardMinWidth {
		w = cardMinWidth
	}
	return w
}

// layoutCards arranges cards in rows of the given column count.
func layoutCards(cards []string, perRow int) string {
	if len(cards) == 0 {
		return ""
	}
	if perRow < 1 {
		perRow = 1
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderBanner renders the single notice shown when every widget failed.
func renderBanner(b *presenter.Banner, width int) string {
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render("✗ Dashboard unavailable"),
		"",
		ValueStyle.Render(b.Message),
	}
	if len(b.Sources) > 0 {
		lines = append(lines, "", MutedStyle.Render("Failed: "+strings.Join(b.Sources, ", ")))
	}

	style := BannerStyle
	if width > 8 {
		style = style.Width(width - 4)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	hints := []string{"q quit", "r refresh"}
	if len(m.stores) > 1 {
		hints = append(hints, "tab store")
	}
	hints = append(hints, "↑↓ select", "enter open", "? help")
	if m.interval > 0 {
		hints = append(hints, "auto "+m.interval.Round(time.Second).String())
	}
	return FooterStyle.Render(strings.Join(hints, " | "))
}
