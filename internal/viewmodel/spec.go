// Package viewmodel turns raw analytics payloads into ChartSpecs: plain,
// renderer-agnostic descriptions of a chart or card list. A ChartSpec holds
// only strings, numbers and slices so the terminal renderer, the JSON
// snapshot and browser clients can all draw from the same value.
package viewmodel

// Kind is the ChartSpec variant.
type Kind string

const (
	KindTimeSeriesWithBand Kind = "time_series_with_band"
	KindCategoricalBar     Kind = "categorical_bar"
	KindCategoricalDonut   Kind = "categorical_donut"
	KindRankedCards        Kind = "ranked_cards"
)

// Fill describes how the area under a series is shaded.
type Fill string

const (
	FillNone     Fill = ""
	FillOrigin   Fill = "origin"
	FillToSeries Fill = "series"
)

// Series ids used by time series specs.
const (
	SeriesPredicted = "predicted"
	SeriesUpper     = "upper"
	SeriesLower     = "lower"
	SeriesValue     = "value"
)

// Series is one line, bar set or slice set.
type Series struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Values  []float64 `json:"values"`
	Display []string  `json:"display,omitempty"`

	Fill       Fill   `json:"fill,omitempty"`
	FillTarget string `json:"fillTarget,omitempty"`

	// Weight is the stroke width; zero means the line itself is not drawn.
	Weight     float64 `json:"weight"`
	ShowPoints bool    `json:"showPoints"`
	InLegend   bool    `json:"inLegend"`
	Dashed     bool    `json:"dashed,omitempty"`
}

// Card is a titled value, used for KPI cards, basket rules and side notes.
type Card struct {
	Title     string `json:"title"`
	Value     string `json:"value"`
	Detail    string `json:"detail,omitempty"`
	Highlight bool   `json:"highlight,omitempty"`
}

// Line renders a card as "Title: Value".
func (c Card) Line() string {
	if c.Value == "" {
		return c.Title
	}
	return c.Title + ": " + c.Value
}

// ChartSpec is the view model for one widget.
type ChartSpec struct {
	Kind   Kind     `json:"kind"`
	Title  string   `json:"title"`
	XAxis  string   `json:"xAxis,omitempty"`
	YAxis  string   `json:"yAxis,omitempty"`
	Labels []string `json:"labels"`
	Series []Series `json:"series"`

	// Cards holds the ranked cards of a RankedCards spec, or side-channel
	// cards attached to a chart.
	Cards []Card `json:"cards,omitempty"`

	// Notes are one-line annotations shown under the chart.
	Notes []string `json:"notes,omitempty"`

	Horizontal bool `json:"horizontal,omitempty"`
	ShowLegend bool `json:"showLegend"`
}

// Empty reports whether the spec has nothing to draw.
func (c ChartSpec) Empty() bool {
	if c.Kind == KindRankedCards {
		return len(c.Cards) == 0
	}
	return len(c.Labels) == 0
}

// SeriesByID returns the series with the given id.
func (c ChartSpec) SeriesByID(id string) (Series, bool) {
	for _, s := range c.Series {
		if s.ID == id {
			return s, true
		}
	}
	return Series{}, false
}

// HasBand reports whether the spec carries a confidence band.
func (c ChartSpec) HasBand() bool {
	_, upper := c.SeriesByID(SeriesUpper)
	_, lower := c.SeriesByID(SeriesLower)
	return upper && lower
}

// Points returns the number of points along the label axis.
func (c ChartSpec) Points() int {
	return len(c.Labels)
}
