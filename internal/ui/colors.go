package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Neon accents used for branding and spinners.
const (
	ColorNeonPink   lipgloss.Color = "#FF2A6D"
	ColorNeonCyan   lipgloss.Color = "#05D9E8"
	ColorNeonPurple lipgloss.Color = "#B967FF"
	ColorNeonGreen  lipgloss.Color = "#01FF89"
	ColorNeonOrange lipgloss.Color = "#FF6B35"
	ColorNeonAmber  lipgloss.Color = "#FFC857"
)

// Surfaces
const (
	ColorDeepVoid    lipgloss.Color = "#0D0221"
	ColorDarkSurface lipgloss.Color = "#1A1A2E"
	ColorGlassBorder lipgloss.Color = "#3D3D5C"
)

// Semantic colors for status indication
const (
	ColorSuccess lipgloss.Color = "#39FF14"
	ColorError   lipgloss.Color = "#FF0055"
	ColorWarning lipgloss.Color = "#FFAA00"
	ColorInfo    lipgloss.Color = "#00FFFF"
)

// Text colors for content hierarchy
const (
	ColorPrimary   lipgloss.Color = "#FFFFFF"
	ColorSecondary lipgloss.Color = "#B4B4D0"
	ColorMuted     lipgloss.Color = "#6B6B8D"
)

// GradientColors cycle through spinner frames: pink, purple, cyan, green.
var GradientColors = []lipgloss.Color{
	ColorNeonPink,
	ColorNeonPurple,
	ColorNeonCyan,
	ColorNeonGreen,
}

func SuccessStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorSuccess) }
func ErrorStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorError) }
func WarningStyle() lipgloss.Style { return lipgloss.NewStyle().Foreground(ColorWarning) }
func InfoStyle() lipgloss.Style    { return lipgloss.NewStyle().Foreground(ColorInfo) }
func MutedStyle() lipgloss.Style   { return lipgloss.NewStyle().Foreground(ColorMuted) }

// PrintWarning writes a styled warning line to stderr.
func PrintWarning(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", WarningStyle().Render(SymbolWarning), msg)
}

// DisableColors switches all lipgloss output to plain text.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// SetColorMode applies an output.color setting: "never" disables color,
// "always" forces true color, anything else keeps terminal detection.
func SetColorMode(mode string) {
	switch strings.ToLower(mode) {
	case "never", "off", "false":
		DisableColors()
	case "always", "on", "true":
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}
