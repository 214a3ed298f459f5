// Package dashboard drives the store-owner analytics dashboard.
//
// A Controller owns the fetch cycle. Mounting the dashboard, pressing
// refresh, the auto-refresh timer and switching stores each start a new
// cycle with a fresh ResultsMap. Results carry the cycle they were fetched
// for, and anything tagged with an older cycle is dropped on arrival, so a
// slow response for the previous store can never overwrite the current one.
//
// # Architecture
//
// The terminal UI uses Bubble Tea (Model-Update-View):
//
//   - Model: the current cycle, its presented view, selection and layout
//   - Update: keystrokes, timers and one resultMsg per settled source
//   - View: the widget grid, the detail view or the help overlay
//
// # Message Flow
//
//  1. startMsg, tickMsg, r or a store switch calls Controller.Start
//  2. Controller.Fetch streams results; waitForResult reads one at a time
//  3. each resultMsg is delivered to the controller and the view is re-presented
//  4. the stream closes with cycleDoneMsg
//
// Widgets settle independently: one slow or failing source never holds back
// the others.
//
// # Layout Modes
//
//	LayoutMinimal  (<80 cols)  - one column
//	LayoutStandard (80-159)    - two columns
//	LayoutWide     (160+)      - three columns
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C        - Quit
//	r                - Refresh all widgets
//	Tab/], Shift+Tab/[ - Next / previous store
//	j/k, ↑/↓         - Select widget
//	Enter            - Open widget detail
//	Esc              - Back
//	?                - Toggle help overlay
package dashboard
