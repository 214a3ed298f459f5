// Package presenter decides what each dashboard widget shows for a cycle:
// its chart, a loading placeholder, an empty state or an unavailable notice.
// Widgets are judged independently, so one broken source never changes what
// its neighbours show.
package presenter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/rileyhilliard/storelens/internal/fetch"
	"github.com/rileyhilliard/storelens/internal/source"
	"github.com/rileyhilliard/storelens/internal/viewmodel"
)

// State is a widget's display state within a cycle.
type State int

const (
	StateLoading State = iota
	StateReady
	StateUnavailable
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	case StateEmpty:
		return "empty"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText lets State appear as its name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for _, st := range []State{StateLoading, StateReady, StateUnavailable, StateEmpty} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return errors.Schemaf("unknown widget state %q", string(b))
}

// Terminal reports whether the state is final for the current cycle.
func (s State) Terminal() bool {
	return s != StateLoading
}

// CanTransition reports whether a widget may move from one state to another
// within a cycle. Only Loading moves, and only to a terminal state; a new
// cycle resets every widget to Loading instead of transitioning.
func CanTransition(from, to State) bool {
	if from == to {
		return true
	}
	return from == StateLoading && to.Terminal()
}

// ReasonKind separates network problems from bad data.
type ReasonKind string

const (
	ReasonTransport ReasonKind = "transport"
	ReasonSchema    ReasonKind = "schema"
)

// Reason explains an unavailable widget.
type Reason struct {
	Kind    ReasonKind `json:"kind"`
	Message string     `json:"message"`
}

func (r Reason) String() string {
	switch r.Kind {
	case ReasonSchema:
		return "Unexpected data: " + r.Message
	default:
		return "Couldn't reach source: " + r.Message
	}
}

// WidgetView is the presented state of one widget.
type WidgetView struct {
	Widget    source.Widget        `json:"widget"`
	State     State                `json:"state"`
	Spec      *viewmodel.ChartSpec `json:"spec,omitempty"`
	Reason    *Reason              `json:"reason,omitempty"`
	FetchedAt time.Time            `json:"fetchedAt,omitempty"`
	Latency   time.Duration        `json:"latency,omitempty"`
}

// Banner is a dashboard-level notice shown instead of per-widget errors.
type Banner struct {
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Sources []string `json:"sources"`
}

// BannerTotalFailure is the Banner.Kind used when every widget is unavailable.
const BannerTotalFailure = "total_failure"

// View is everything a renderer needs for one cycle.
type View struct {
	Cycle    uint64       `json:"cycle"`
	Complete bool         `json:"complete"`
	Settled  int          `json:"settled"`
	Total    int          `json:"total"`
	Banner   *Banner      `json:"banner,omitempty"`
	Widgets  []WidgetView `json:"widgets"`
}

// Counts tallies widgets per state.
func (v View) Counts() map[State]int {
	out := make(map[State]int, 4)
	for _, w := range v.Widgets {
		out[w.State]++
	}
	return out
}

// Widget returns the view for a widget id.
func (v View) Widget(id string) (WidgetView, bool) {
	for _, w := range v.Widgets {
		if w.Widget.ID == id {
			return w, true
		}
	}
	return WidgetView{}, false
}

// SpecBuilder maps a payload to a ChartSpec.
type SpecBuilder interface {
	Build(tag source.SchemaTag, payload json.RawMessage) (viewmodel.ChartSpec, error)
}

// Present derives the view for every widget from the cycle's results.
// When the cycle is complete and no widget could be shown, a single
// total-failure banner replaces the per-widget notices.
func Present(results *fetch.ResultsMap, widgets []source.Widget, b SpecBuilder) View {
	view := View{
		Cycle:    results.Cycle(),
		Complete: results.Complete(),
		Settled:  results.Settled(),
		Total:    len(results.Expected()),
		Widgets:  make([]WidgetView, 0, len(widgets)),
	}

	unavailable := 0
	var failed []string
	for _, w := range widgets {
		wv := presentOne(results, w, b)
		if wv.State == StateUnavailable {
			unavailable++
			failed = append(failed, w.SourceID)
		}
		view.Widgets = append(view.Widgets, wv)
	}

	if view.Complete && len(widgets) > 0 && unavailable == len(widgets) {
		view.Banner = &Banner{
			Kind:    BannerTotalFailure,
			Message: "No analytics could be loaded. Check that the analytics API is running, then refresh.",
			Sources: failed,
		}
		view.Widgets = []WidgetView{}
	}
	return view
}

func presentOne(results *fetch.ResultsMap, w source.Widget, b SpecBuilder) WidgetView {
	wv := WidgetView{Widget: w, State: StateLoading}

	r, ok := results.Get(w.SourceID)
	if !ok {
		return wv
	}
	wv.FetchedAt = r.FetchedAt
	wv.Latency = r.Latency

	if r.Status == fetch.StatusErr {
		wv.State = StateUnavailable
		wv.Reason = reasonFor(r.Err)
		return wv
	}

	spec, err := b.Build(w.Schema, r.Payload)
	if err != nil {
		wv.State = StateUnavailable
		wv.Reason = &Reason{Kind: ReasonSchema, Message: shortMessage(err)}
		return wv
	}

	wv.Spec = &spec
	if spec.Empty() {
		wv.State = StateEmpty
	} else {
		wv.State = StateReady
	}
	return wv
}

func reasonFor(err error) *Reason {
	kind := ReasonTransport
	if errors.IsCode(err, errors.ErrSchema) {
		kind = ReasonSchema
	}
	return &Reason{Kind: kind, Message: shortMessage(err)}
}

func shortMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	var se *fetch.StatusError
	if errors.As(err, &se) {
		return se.Error()
	}
	var slErr *errors.Error
	if errors.As(err, &slErr) {
		return slErr.Short()
	}
	return err.Error()
}
