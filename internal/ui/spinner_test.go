package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSpinner(t *testing.T) {
	s := NewSpinner(&bytes.Buffer{}, "Fetching store s1")
	assert.Equal(t, "Fetching store s1", s.Label())
	assert.Equal(t, SpinnerPending, s.State())
}

func TestSpinner_ProgressWhileRunning(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Fetching store s1")

	s.Start()
	assert.Equal(t, SpinnerRunning, s.State())
	s.Progress(3, 8)
	s.Finish(SpinnerDone, "")

	out := buf.String()
	assert.Contains(t, out, "Fetching store s1 (3/8)...")
	assert.Contains(t, out, SymbolComplete+" Fetching store s1 3/8")
	assert.True(t, strings.HasSuffix(out, "s\n"), "final line ends with the elapsed time")
}

func TestSpinner_FinishStates(t *testing.T) {
	tests := []struct {
		state  SpinnerState
		symbol string
	}{
		{SpinnerDone, SymbolComplete},
		{SpinnerPartial, SymbolWarning},
		{SpinnerFailed, SymbolFail},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewSpinner(&buf, "Fetching")
			s.Start()
			s.Progress(8, 8)
			s.Finish(tt.state, "1 unavailable")

			assert.Equal(t, tt.state, s.State())
			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\r")
			last := lines[len(lines)-1]
			assert.True(t, strings.HasPrefix(last, tt.symbol+" Fetching 8/8 1 unavailable "), last)
		})
	}
}

func TestSpinner_FinishWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Fetching")

	s.Finish(SpinnerFailed, "")

	assert.Equal(t, SpinnerFailed, s.State())
	assert.Contains(t, buf.String(), SymbolFail+" Fetching")
}

func TestSpinner_DoubleStart(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Fetching")
	s.Start()
	s.Start()
	s.Finish(SpinnerDone, "")
	s.Finish(SpinnerDone, "")
	assert.Equal(t, SpinnerDone, s.State())
}

func TestSpinner_Animates(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Fetching")
	s.Start()
	time.Sleep(3 * spinnerTick)
	s.Finish(SpinnerDone, "")

	frames := 0
	for _, f := range spinnerFrames {
		if strings.Contains(buf.String(), f) {
			frames++
		}
	}
	assert.GreaterOrEqual(t, frames, 2)
}

func TestSpinner_ConcurrentProgress(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Fetching")
	s.Start()

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Progress(n, 8)
		}(i)
	}
	wg.Wait()
	s.Finish(SpinnerDone, "")

	assert.Equal(t, SpinnerDone, s.State())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{50 * time.Millisecond, "0.05s"},
		{300 * time.Millisecond, "0.3s"},
		{1200 * time.Millisecond, "1.2s"},
		{15 * time.Second, "15.0s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}
