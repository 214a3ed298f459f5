package viewmodel

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/rileyhilliard/storelens/internal/source"
)

// Builder maps payloads to ChartSpecs. It holds only formatting settings;
// Build is a pure function of its arguments.
type Builder struct {
	Format Formatter
}

// NewBuilder returns a Builder that formats money with the given symbol.
func NewBuilder(currency string) *Builder {
	return &Builder{Format: Formatter{Currency: currency}}
}

var defaultBuilder = NewBuilder("")

// Build maps a payload using the default formatter.
func Build(tag source.SchemaTag, payload json.RawMessage) (ChartSpec, error) {
	return defaultBuilder.Build(tag, payload)
}

// Build maps a payload to a ChartSpec according to its schema tag. A payload
// that doesn't match the tag's shape yields a SCHEMA error and no spec.
func (b *Builder) Build(tag source.SchemaTag, payload json.RawMessage) (ChartSpec, error) {
	var (
		spec ChartSpec
		err  error
	)
	switch tag {
	case source.Forecast:
		spec, err = b.forecast(payload)
	case source.Insights:
		spec, err = b.insights(payload)
	case source.MarketBasket:
		spec, err = b.marketBasket(payload)
	case source.CustomerSegments:
		spec, err = b.customerSegments(payload)
	case source.SeasonalAnalysis:
		spec, err = b.seasonal(payload)
	case source.TimeHabits:
		spec, err = b.timeHabits(payload)
	case source.Sentiment:
		spec, err = b.sentiment(payload)
	case source.PersonaInsights:
		spec, err = b.personas(payload)
	default:
		return ChartSpec{}, errors.Schemaf("no view model for schema %q", tag)
	}
	if err != nil {
		return ChartSpec{}, err
	}
	if spec.Title == "" {
		spec.Title = source.Titles[tag]
	}
	return spec, nil
}

func (b *Builder) forecast(payload []byte) (ChartSpec, error) {
	const tag = "forecast"
	var p forecastPayload
	if err := decodeObject(tag, payload, &p); err != nil {
		return ChartSpec{}, err
	}
	switch {
	case p.DS == nil:
		return ChartSpec{}, errors.Schemaf("%s: missing %q", tag, "ds")
	case p.YHat == nil:
		return ChartSpec{}, errors.Schemaf("%s: missing %q", tag, "yhat")
	case p.YHatLower == nil:
		return ChartSpec{}, errors.Schemaf("%s: missing %q", tag, "yhat_lower")
	case p.YHatUpper == nil:
		return ChartSpec{}, errors.Schemaf("%s: missing %q", tag, "yhat_upper")
	}

	labels, predicted, lower, upper := *p.DS, *p.YHat, *p.YHatLower, *p.YHatUpper
	n := len(labels)
	for _, c := range []struct {
		field string
		got   int
	}{{"yhat", len(predicted)}, {"yhat_lower", len(lower)}, {"yhat_upper", len(upper)}} {
		if c.got != n {
			return ChartSpec{}, errors.Schemaf("%s: %s has %d points, ds has %d", tag, c.field, c.got, n)
		}
	}

	band, err := EncodeBand(lower, upper)
	if err != nil {
		return ChartSpec{}, err
	}
	for i := 0; i < n; i++ {
		if predicted[i] < lower[i] || predicted[i] > upper[i] {
			return ChartSpec{}, errors.Schemaf("%s: prediction %g at %s lies outside [%g, %g]", tag, predicted[i], labels[i], lower[i], upper[i])
		}
	}

	display := make([]string, n)
	for i, v := range predicted {
		display[i] = b.Format.Money(v)
	}

	series := []Series{{
		ID:         SeriesPredicted,
		Name:       "Sales Forecast",
		Values:     clone(predicted),
		Display:    display,
		Weight:     2,
		ShowPoints: true,
		InLegend:   true,
	}}
	series = append(series, band...)

	spec := ChartSpec{
		Kind:       KindTimeSeriesWithBand,
		Title:      fmt.Sprintf("%d-Day Sales Forecast", n),
		XAxis:      "Date",
		YAxis:      "Sales",
		Labels:     shortDates(labels),
		Series:     series,
		ShowLegend: true,
	}
	if n == 0 {
		spec.Title = "Sales Forecast"
	}
	return spec, nil
}

func (b *Builder) insights(payload []byte) (ChartSpec, error) {
	const tag = "insights"
	var rows []insightRow
	if err := decodeArray(tag, payload, &rows); err != nil {
		return ChartSpec{}, err
	}

	cards := make([]Card, 0, len(rows))
	for i, r := range rows {
		if r.KPI == nil {
			return ChartSpec{}, missing(tag, i, "kpi")
		}
		value, ok := text(r.Value)
		if !ok {
			return ChartSpec{}, missing(tag, i, "value")
		}
		if r.Recommendation == nil {
			return ChartSpec{}, missing(tag, i, "recommendation")
		}
		cards = append(cards, Card{Title: *r.KPI, Value: value, Detail: *r.Recommendation})
	}

	return ChartSpec{Kind: KindRankedCards, Labels: []string{}, Series: []Series{}, Cards: cards}, nil
}

func (b *Builder) marketBasket(payload []byte) (ChartSpec, error) {
	const tag = "market-basket"
	var rows []basketRow
	if err := decodeArray(tag, payload, &rows); err != nil {
		return ChartSpec{}, err
	}

	cards := make([]Card, 0, len(rows))
	for i, r := range rows {
		pair, ok := pairText(r.Pair)
		if !ok {
			return ChartSpec{}, missing(tag, i, "pair")
		}
		if r.Confidence == nil {
			return ChartSpec{}, missing(tag, i, "confidence")
		}
		if r.Lift == nil {
			return ChartSpec{}, missing(tag, i, "lift")
		}
		cards = append(cards, Card{
			Title:     pair,
			Value:     b.Format.Percent(*r.Confidence),
			Detail:    "lift " + b.Format.Multiplier(*r.Lift),
			Highlight: *r.Lift > 2,
		})
	}

	return ChartSpec{Kind: KindRankedCards, Title: "Frequently Bought Together", Labels: []string{}, Series: []Series{}, Cards: cards}, nil
}

func (b *Builder) customerSegments(payload []byte) (ChartSpec, error) {
	const tag = "customer-segments"
	var rows []segmentRow
	if err := decodeArray(tag, payload, &rows); err != nil {
		return ChartSpec{}, err
	}

	labels := make([]string, 0, len(rows))
	values := make([]float64, 0, len(rows))
	display := make([]string, 0, len(rows))
	cards := make([]Card, 0, len(rows))
	for i, r := range rows {
		if r.SegmentName == nil {
			return ChartSpec{}, missing(tag, i, "segment_name")
		}
		if r.TotalSpend == nil {
			return ChartSpec{}, missing(tag, i, "total_spend")
		}
		if r.CustomerCount == nil {
			return ChartSpec{}, missing(tag, i, "customer_count")
		}
		labels = append(labels, *r.SegmentName)
		values = append(values, *r.TotalSpend)
		display = append(display, b.Format.Money(*r.TotalSpend))
		cards = append(cards, Card{Title: *r.SegmentName, Value: b.Format.Count(*r.CustomerCount) + " customers"})
	}

	return ChartSpec{
		Kind:   KindCategoricalBar,
		Title:  "Customer Segments (by Spend)",
		XAxis:  "Segment",
		YAxis:  "Total Spend",
		Labels: labels,
		Series: []Series{{ID: SeriesValue, Name: "Total Spend", Values: values, Display: display, Weight: 1}},
		Cards:  cards,
	}, nil
}

func (b *Builder) seasonal(payload []byte) (ChartSpec, error) {
	const tag = "seasonal-analysis"
	var rows []seasonalRow
	if err := decodeArray(tag, payload, &rows); err != nil {
		return ChartSpec{}, err
	}

	labels := make([]string, 0, len(rows))
	values := make([]float64, 0, len(rows))
	display := make([]string, 0, len(rows))
	for i, r := range rows {
		month, ok := text(r.Month)
		if !ok {
			return ChartSpec{}, missing(tag, i, "month")
		}
		if r.TotalPrice == nil {
			return ChartSpec{}, missing(tag, i, "total_price")
		}
		labels = append(labels, monthName(month))
		values = append(values, *r.TotalPrice)
		display = append(display, b.Format.Money(*r.TotalPrice))
	}

	return ChartSpec{
		Kind:   KindTimeSeriesWithBand,
		Title:  "Seasonal Trend",
		XAxis:  "Month",
		YAxis:  "Sales",
		Labels: labels,
		Series: []Series{{
			ID:         SeriesValue,
			Name:       "Monthly Sales",
			Values:     values,
			Display:    display,
			Fill:       FillOrigin,
			Weight:     2,
			ShowPoints: true,
			InLegend:   true,
		}},
	}, nil
}

func (b *Builder) timeHabits(payload []byte) (ChartSpec, error) {
	const tag = "time-habits"
	var p timeHabitsPayload
	if err := decodeObject(tag, payload, &p); err != nil {
		return ChartSpec{}, err
	}
	if p.DailySales == nil {
		return ChartSpec{}, errors.Schemaf("%s: missing %q", tag, "daily_sales")
	}

	daily := *p.DailySales
	labels := make([]string, 0, len(daily))
	values := make([]float64, 0, len(daily))
	display := make([]string, 0, len(daily))
	for i, r := range daily {
		if r.DayOfWeek == nil {
			return ChartSpec{}, missing(tag+".daily_sales", i, "day_of_week")
		}
		if r.TotalPrice == nil {
			return ChartSpec{}, missing(tag+".daily_sales", i, "total_price")
		}
		labels = append(labels, *r.DayOfWeek)
		values = append(values, *r.TotalPrice)
		display = append(display, b.Format.Money(*r.TotalPrice))
	}

	spec := ChartSpec{
		Kind:   KindCategoricalBar,
		Title:  "Sales by Day",
		XAxis:  "Day",
		YAxis:  "Sales",
		Labels: labels,
		Series: []Series{{ID: SeriesValue, Name: "Sales by Day", Values: values, Display: display, Weight: 1}},
	}

	if p.HourlySales != nil && len(*p.HourlySales) > 0 {
		peak, best := -1, 0.0
		for i, r := range *p.HourlySales {
			if r.Hour == nil {
				return ChartSpec{}, missing(tag+".hourly_sales", i, "hour")
			}
			if r.TotalPrice == nil {
				return ChartSpec{}, missing(tag+".hourly_sales", i, "total_price")
			}
			if peak < 0 || *r.TotalPrice > best {
				peak, best = int(*r.Hour), *r.TotalPrice
			}
		}
		spec.Notes = append(spec.Notes, fmt.Sprintf("Peak hour: %s (%s)", b.Format.Hour(peak), b.Format.Money(best)))
	}
	return spec, nil
}

func (b *Builder) sentiment(payload []byte) (ChartSpec, error) {
	const tag = "sentiment"
	var rows []sentimentRow
	if err := decodeArray(tag, payload, &rows); err != nil {
		return ChartSpec{}, err
	}

	labels := make([]string, 0, len(rows))
	values := make([]float64, 0, len(rows))
	var total float64
	for i, r := range rows {
		if r.Sentiment == nil {
			return ChartSpec{}, missing(tag, i, "sentiment")
		}
		if r.Count == nil {
			return ChartSpec{}, missing(tag, i, "count")
		}
		if *r.Count < 0 {
			return ChartSpec{}, errors.Schemaf("%s: item %d has negative count %g", tag, i, *r.Count)
		}
		labels = append(labels, *r.Sentiment)
		values = append(values, *r.Count)
		total += *r.Count
	}

	display := make([]string, len(values))
	for i, v := range values {
		share := 0.0
		if total > 0 {
			share = v / total
		}
		display[i] = fmt.Sprintf("%s (%s)", b.Format.Count(v), b.Format.Percent(share))
	}

	return ChartSpec{
		Kind:       KindCategoricalDonut,
		Title:      "Customer Sentiment",
		Labels:     labels,
		Series:     []Series{{ID: SeriesValue, Name: "Reviews", Values: values, Display: display}},
		ShowLegend: true,
	}, nil
}

func (b *Builder) personas(payload []byte) (ChartSpec, error) {
	const tag = "persona-insights"
	var rows []personaRow
	if err := decodeArray(tag, payload, &rows); err != nil {
		return ChartSpec{}, err
	}

	labels := make([]string, 0, len(rows))
	values := make([]float64, 0, len(rows))
	display := make([]string, 0, len(rows))
	for i, r := range rows {
		if r.Persona == nil {
			return ChartSpec{}, missing(tag, i, "persona")
		}
		if r.AvgSpend == nil {
			return ChartSpec{}, missing(tag, i, "avg_spend")
		}
		labels = append(labels, *r.Persona)
		values = append(values, *r.AvgSpend)
		d := b.Format.Money(*r.AvgSpend)
		if r.TxnCount != nil {
			d += fmt.Sprintf(" over %s visits", b.Format.Count(*r.TxnCount))
		}
		display = append(display, d)
	}

	return ChartSpec{
		Kind:       KindCategoricalBar,
		Title:      "Avg Spend per Visit",
		XAxis:      "Persona",
		YAxis:      "Avg Spend",
		Labels:     labels,
		Series:     []Series{{ID: SeriesValue, Name: "Avg Spend per Visit", Values: values, Display: display, Weight: 1}},
		Horizontal: true,
	}, nil
}

// shortDates trims ISO timestamps like 2024-01-01T00:00:00 to their date part.
func shortDates(ds []string) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			out[i] = t.Format("2006-01-02")
			continue
		}
		if t, err := time.Parse("2006-01-02T15:04:05", d); err == nil {
			out[i] = t.Format("2006-01-02")
			continue
		}
		out[i] = d
	}
	return out
}

// monthName maps "1".."12" to month names and leaves anything else untouched.
func monthName(m string) string {
	var n int
	if _, err := fmt.Sscanf(m, "%d", &n); err == nil && fmt.Sprint(n) == m && n >= 1 && n <= 12 {
		return time.Month(n).String()
	}
	return m
}
