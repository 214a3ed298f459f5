package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerState is where a fetch spinner ended up.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerRunning
	SpinnerDone    // every source settled and was usable
	SpinnerPartial // settled, some sources unavailable
	SpinnerFailed
)

// Braille scan frames.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerTick = 80 * time.Millisecond

// Spinner is a one-line progress indicator for a fetch cycle: the label, an
// animated frame and how many sources have settled so far.
type Spinner struct {
	mu       sync.Mutex
	w        io.Writer
	label    string
	state    SpinnerState
	frame    int
	settled  int
	total    int
	started  time.Time
	stop     chan struct{}
	done     chan struct{}
	lastLine int
}

// NewSpinner creates a spinner that draws on w.
func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{w: w, label: label}
}

// Start begins animating. Calling Start twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.state == SpinnerRunning {
		s.mu.Unlock()
		return
	}
	s.state = SpinnerRunning
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.drawLocked()
	s.mu.Unlock()

	go s.animate()
}

// Progress records how many of total sources have settled.
func (s *Spinner) Progress(settled, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settled, s.total = settled, total
	if s.state == SpinnerRunning {
		s.drawLocked()
	}
}

// Finish stops the animation and prints the final line for state.
// note, if set, is appended after the counts.
func (s *Spinner) Finish(state SpinnerState, note string) {
	s.halt()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state

	var symbol string
	var color lipgloss.Color
	switch state {
	case SpinnerDone:
		symbol, color = SymbolComplete, ColorSuccess
	case SpinnerPartial:
		symbol, color = SymbolWarning, ColorWarning
	case SpinnerFailed:
		symbol, color = SymbolFail, ColorError
	default:
		symbol, color = SymbolPending, ColorMuted
	}

	parts := []string{lipgloss.NewStyle().Foreground(color).Render(symbol), s.label}
	if s.total > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", s.settled, s.total))
	}
	if note != "" {
		parts = append(parts, note)
	}
	parts = append(parts, MutedStyle().Render(formatDuration(time.Since(s.started))))

	s.clearLocked()
	fmt.Fprintln(s.w, strings.Join(parts, " "))
}

// State returns the spinner state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Label returns the spinner's label.
func (s *Spinner) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

func (s *Spinner) halt() {
	s.mu.Lock()
	if s.state != SpinnerRunning {
		s.mu.Unlock()
		return
	}
	s.state = SpinnerPending
	close(s.stop)
	done := s.done
	s.mu.Unlock()
	<-done
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.drawLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) drawLocked() {
	color := GradientColors[(s.frame/2)%len(GradientColors)]
	line := lipgloss.NewStyle().Foreground(color).Render(spinnerFrames[s.frame]) + " " + s.label
	if s.total > 0 {
		line += fmt.Sprintf(" (%d/%d)", s.settled, s.total)
	}
	line += "..."

	s.clearLocked()
	fmt.Fprint(s.w, line)
	s.lastLine = lipgloss.Width(line)
}

func (s *Spinner) clearLocked() {
	if s.lastLine > 0 {
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.lastLine)+"\r")
		s.lastLine = 0
	}
}

// formatDuration formats a duration for display, e.g. "0.3s" or "0.05s".
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
