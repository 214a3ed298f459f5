package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo is what the branded header shows. Empty fields are skipped.
type HeaderInfo struct {
	Version string
	Tagline string
	Store   string
	API     string
}

// HeaderWidth is the minimum width of the header divider.
const HeaderWidth = 50

var (
	headerTitleStyle   = lipgloss.NewStyle().Foreground(ColorNeonPink).Bold(true)
	headerVersionStyle = lipgloss.NewStyle().Foreground(ColorNeonCyan)
	headerDividerStyle = lipgloss.NewStyle().Foreground(ColorGlassBorder)
)

// RenderHeader renders the title line, an optional context line and a
// divider as wide as the widest line.
func RenderHeader(info HeaderInfo) string {
	title := headerTitleStyle.Render("storelens")
	if info.Version != "" {
		title += " " + headerVersionStyle.Render(info.Version)
	}
	lines := []string{title}

	if info.Tagline != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(ColorSecondary).Render(info.Tagline))
	}

	var context []string
	if info.Store != "" {
		context = append(context, "store "+info.Store)
	}
	if info.API != "" {
		context = append(context, info.API)
	}
	if len(context) > 0 {
		lines = append(lines, MutedStyle().Render(strings.Join(context, " · ")))
	}

	width := HeaderWidth
	for _, l := range lines {
		width = max(width, lipgloss.Width(l))
	}
	lines = append(lines, headerDividerStyle.Render(strings.Repeat("━", width)))

	return strings.Join(lines, "\n") + "\n"
}
