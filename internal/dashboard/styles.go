package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/storelens/internal/presenter"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent    = lipgloss.Color("#FF2E97") // Neon pink
	ColorAccentDim = lipgloss.Color("#BF40FF") // Neon purple

	// Series colors. The forecast line draws in ColorGraph over a band in ColorBand.
	ColorGraph = lipgloss.Color("#00FFFF")
	ColorBand  = lipgloss.Color("#5A3F8F")
)

// SliceColors color donut slices in order.
var SliceColors = []lipgloss.Color{
	ColorHealthy,
	ColorWarning,
	ColorCritical,
	ColorGraph,
	ColorAccentDim,
	ColorAccent,
}

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1).
			MarginBottom(1)

	CardSelectedStyle = CardStyle.
				BorderForeground(ColorAccent)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy).
			Bold(true)

	BannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorCritical).
			Foreground(ColorCritical).
			Padding(1, 2)

	StateLoadingStyle = lipgloss.NewStyle().
				Foreground(ColorTextSecondary)

	StateReadyStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy)

	StateUnavailableStyle = lipgloss.NewStyle().
				Foreground(ColorCritical)

	StateEmptyStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Widget state glyphs
const (
	GlyphLoading     = "◐"
	GlyphReady       = "◉"
	GlyphUnavailable = "⚠"
	GlyphEmpty       = "◌"
)

// LoadingSpinnerFrames are the animation frames for widgets still loading.
var LoadingSpinnerFrames = []string{"◐", "◓", "◑", "◒"}

// LoadingTextFrames cycle the loading message.
var LoadingTextFrames = []string{
	"Loading",
	"Loading.",
	"Loading..",
	"Loading...",
}

// LoadingTextSlowdown is how many spinner frames pass per text frame.
const LoadingTextSlowdown = 3

// StateGlyph returns the glyph and style for a widget state. Loading widgets
// animate through LoadingSpinnerFrames.
func StateGlyph(s presenter.State, frame int) (string, lipgloss.Style) {
	switch s {
	case presenter.StateReady:
		return GlyphReady, StateReadyStyle
	case presenter.StateUnavailable:
		return GlyphUnavailable, StateUnavailableStyle
	case presenter.StateEmpty:
		return GlyphEmpty, StateEmptyStyle
	default:
		if frame < 0 {
			return GlyphLoading, StateLoadingStyle
		}
		return LoadingSpinnerFrames[frame%len(LoadingSpinnerFrames)], StateLoadingStyle
	}
}

// SliceColor returns the color for the i-th donut slice.
func SliceColor(i int) lipgloss.Color {
	return SliceColors[i%len(SliceColors)]
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}
	middle := strings.Repeat("─", fillWidth)

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	titleStyle := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	valueStyle := lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)

	return borderStyle.Render("╭─ ") +
		titleStyle.Render(title) +
		borderStyle.Render(" "+middle+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	middle := strings.Repeat("─", width-2)
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + middle + "╯")
}

// SectionContentLine renders a content line with left and right borders, padded to width.
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	innerWidth := width - 4
	padding := innerWidth - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}
