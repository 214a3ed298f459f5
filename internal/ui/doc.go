// Package ui provides terminal output helpers shared by storelens commands.
//
// # Components Overview
//
//	Spinner           - Progress line for a fetch cycle
//	NewTable          - Bubbles table sized to its cells
//	RenderTable       - Static table for search results
//	RenderDoctorTable - Grouped check results for storelens doctor
//	RenderHeader      - Branded header for init and version
//
// # Color Scheme
//
//	ColorSuccess   (neon green) - Ready widgets, passing checks
//	ColorError     (red-pink)   - Unavailable widgets, failures
//	ColorWarning   (amber)      - Warnings and slow sources
//	ColorInfo      (cyan)       - Informational messages
//	ColorMuted     (gray)       - Secondary text, timing info
//
// Use DisableColors() for --no-color, or SetColorMode for the
// output.color setting.
//
// # Spinner Usage
//
//	s := ui.NewSpinner(os.Stderr, "Fetching store s1")
//	s.Start()
//	s.Progress(3, 8)
//	s.Finish(ui.SpinnerPartial, "1 unavailable")
package ui
