package dashboard

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/storelens/internal/presenter"
)

// RenderSnapshot renders a settled view as static text, for one-shot output
// outside the interactive dashboard.
func RenderSnapshot(v presenter.View, storeID string, width int) string {
	columns := 1
	switch {
	case width >= BreakpointWide:
		columns = 3
	case width >= BreakpointStandard:
		columns = 2
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("storelens | store %s | %s", storeID, progressText(v))))
	b.WriteString("\n\n")

	if v.Banner != nil {
		b.WriteString(renderBanner(v.Banner, width))
		b.WriteString("\n")
		return b.String()
	}

	cardWidth := cardWidthFor(width, columns)
	cards := make([]string, len(v.Widgets))
	for i, wv := range v.Widgets {
		cards[i] = RenderWidget(wv, cardWidth, false, -1)
	}
	b.WriteString(layoutCards(cards, columns))
	b.WriteString("\n")
	return b.String()
}
