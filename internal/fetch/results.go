package fetch

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rileyhilliard/storelens/internal/errors"
)

// Status is the settled outcome of one source fetch.
type Status int

const (
	StatusOK Status = iota
	StatusErr
)

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}
	return "err"
}

// Result is what one source produced in one cycle. Written once, never mutated.
type Result struct {
	SourceID  string
	Cycle     uint64
	Status    Status
	Payload   json.RawMessage
	Err       error
	FetchedAt time.Time
	Latency   time.Duration
	Attempts  int
}

// ResultsMap collects the results of a single fetch cycle. Each source gets
// at most one entry, and results tagged with another cycle are refused.
type ResultsMap struct {
	mu       sync.RWMutex
	cycle    uint64
	expected []string
	entries  map[string]Result
}

// NewResultsMap creates an empty map for cycle expecting the given sources.
func NewResultsMap(cycle uint64, sourceIDs []string) *ResultsMap {
	expected := make([]string, len(sourceIDs))
	copy(expected, sourceIDs)
	return &ResultsMap{
		cycle:    cycle,
		expected: expected,
		entries:  make(map[string]Result, len(sourceIDs)),
	}
}

// Cycle returns the cycle this map belongs to.
func (m *ResultsMap) Cycle() uint64 {
	return m.cycle
}

// Put records r. It returns a STALE error when r belongs to another cycle,
// a CONFIG error when the cycle does not expect r's source and a DUPLICATE
// error when the source already settled in this cycle.
func (m *ResultsMap) Put(r Result) error {
	if r.Cycle != m.cycle {
		return errors.New(errors.ErrStale,
			fmt.Sprintf("result for %s is from cycle %d, current cycle is %d", r.SourceID, r.Cycle, m.cycle), "")
	}
	if !slices.Contains(m.expected, r.SourceID) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("cycle %d does not expect source %q", m.cycle, r.SourceID),
			"Check that every widget names a registered source")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[r.SourceID]; exists {
		return errors.New(errors.ErrDuplicate,
			fmt.Sprintf("%s already settled in cycle %d", r.SourceID, m.cycle), "")
	}
	m.entries[r.SourceID] = r
	return nil
}

// Get returns the settled result for a source, if any.
func (m *ResultsMap) Get(sourceID string) (Result, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.entries[sourceID]
	return r, ok
}

// Expected returns the source ids this cycle waits on.
func (m *ResultsMap) Expected() []string {
	out := make([]string, len(m.expected))
	copy(out, m.expected)
	return out
}

// Settled returns how many expected sources have an entry.
func (m *ResultsMap) Settled() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, id := range m.expected {
		if _, ok := m.entries[id]; ok {
			n++
		}
	}
	return n
}

// Complete reports whether every expected source has settled.
func (m *ResultsMap) Complete() bool {
	return m.Settled() == len(m.expected)
}

// Failed returns the ids of settled sources with StatusErr, in expected order.
func (m *ResultsMap) Failed() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for _, id := range m.expected {
		if r, ok := m.entries[id]; ok && r.Status == StatusErr {
			out = append(out, id)
		}
	}
	return out
}

// Snapshot returns a copy of the settled entries.
func (m *ResultsMap) Snapshot() map[string]Result {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Result, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}
