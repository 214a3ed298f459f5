package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/rileyhilliard/storelens/internal/presenter"
	"github.com/rileyhilliard/storelens/internal/source"
	"github.com/rileyhilliard/storelens/internal/viewmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widgetFor(tag source.SchemaTag) source.Widget {
	return source.Widget{ID: string(tag), Title: source.Titles[tag], SourceID: string(tag), Schema: tag}
}

func readyWidget(t *testing.T, tag source.SchemaTag, payload string) presenter.WidgetView {
	t.Helper()
	spec, err := viewmodel.NewBuilder("").Build(tag, json.RawMessage(payload))
	require.NoError(t, err)
	state := presenter.StateReady
	if spec.Empty() {
		state = presenter.StateEmpty
	}
	return presenter.WidgetView{Widget: widgetFor(tag), State: state, Spec: &spec}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		in     string
		max    int
		expect string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"tiny", 3, "tiny"},
		{"₹₹₹₹₹₹", 5, "₹₹..."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expect, truncateWithEllipsis(tt.in, tt.max))
		})
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 3))
}

func TestWrapWords(t *testing.T) {
	assert.Equal(t, []string{"one two", "three"}, wrapWords("one two three", 8))
	assert.Equal(t, []string{"averyverylongword"}, wrapWords("averyverylongword", 5))
	assert.Nil(t, wrapWords("   ", 5))
}

func TestRenderWidget_Loading(t *testing.T) {
	wv := presenter.WidgetView{Widget: widgetFor(source.Forecast), State: presenter.StateLoading}

	out := RenderWidget(wv, 40, false, -1)
	assert.Contains(t, out, "Sales Forecast")
	assert.Contains(t, out, "Loading")
	assert.Contains(t, out, GlyphLoading)
}

func TestRenderWidget_Unavailable(t *testing.T) {
	wv := presenter.WidgetView{
		Widget: widgetFor(source.Sentiment),
		State:  presenter.StateUnavailable,
		Reason: &presenter.Reason{Kind: presenter.ReasonTransport, Message: "timeout"},
	}

	out := RenderWidget(wv, 40, false, 0)
	assert.Contains(t, out, "Customer Sentiment")
	assert.Contains(t, out, "Couldn't reach source: timeout")
	assert.Contains(t, out, GlyphUnavailable)
}

func TestRenderWidget_Empty(t *testing.T) {
	wv := readyWidget(t, source.MarketBasket, `[]`)
	require.Equal(t, presenter.StateEmpty, wv.State)

	out := RenderWidget(wv, 40, false, 0)
	assert.Contains(t, out, "No data for this period")
}

func TestRenderWidget_ForecastBand(t *testing.T) {
	wv := readyWidget(t, source.Forecast,
		`{"ds":["2024-01-01","2024-01-02","2024-01-03"],"yhat":[10,12,11],"yhat_lower":[8,9,9],"yhat_upper":[12,15,13]}`)

	out := RenderWidget(wv, 50, true, 0)
	assert.Contains(t, out, "3-Day Sales Forecast")
	assert.Contains(t, out, "2024-01-01")
	assert.Contains(t, out, "2024-01-03")
	assert.Contains(t, out, "Sales Forecast")
	assert.Contains(t, out, "Confidence Band")
	assert.NotContains(t, out, "Lower Bound", "lower bound stays out of the legend")
}

func TestRenderWidget_MarketBasketHighlight(t *testing.T) {
	wv := readyWidget(t, source.MarketBasket,
		`[{"pair":["Bread","Butter"],"confidence":0.5,"lift":2.4},{"pair":"Tea + Sugar","confidence":0.3,"lift":1.1}]`)

	out := RenderWidget(wv, 50, false, 0)
	assert.Contains(t, out, "★ Bread + Butter: 50.0%")
	assert.Contains(t, out, "▸ Tea + Sugar: 30.0%")
	assert.Contains(t, out, "lift 2.40x")
}

func TestRenderWidget_RankedCardsOverflow(t *testing.T) {
	wv := readyWidget(t, source.Insights, `[
		{"kpi":"A","value":"1","recommendation":"r"},
		{"kpi":"B","value":"2","recommendation":"r"},
		{"kpi":"C","value":"3","recommendation":"r"},
		{"kpi":"D","value":"4","recommendation":"r"},
		{"kpi":"E","value":"5","recommendation":"r"},
		{"kpi":"F","value":"6","recommendation":"r"}
	]`)

	out := RenderWidget(wv, 50, false, 0)
	assert.Contains(t, out, "D: 4")
	assert.NotContains(t, out, "E: 5")
	assert.Contains(t, out, "+2 more")
}

func TestRenderWidget_SentimentSlices(t *testing.T) {
	wv := readyWidget(t, source.Sentiment, `[{"sentiment":"positive","count":10},{"sentiment":"negative","count":2}]`)

	out := RenderWidget(wv, 50, false, 0)
	assert.Contains(t, out, "positive")
	assert.Contains(t, out, "10 (83.3%)")
	assert.Contains(t, out, "━")
}

func TestRenderWidget_PersonaBars(t *testing.T) {
	wv := readyWidget(t, source.PersonaInsights, `[{"persona":"Student","avg_spend":12.5,"txn_count":4}]`)

	out := RenderWidget(wv, 60, false, 0)
	assert.Contains(t, out, "Student")
	assert.Contains(t, out, "₹12.50 over 4 visits")
	assert.Contains(t, out, "█")
}

func TestRenderWidget_TimeHabitsPeakNote(t *testing.T) {
	wv := readyWidget(t, source.TimeHabits,
		`{"daily_sales":[{"day_of_week":"Monday","total_price":10}],"hourly_sales":[{"hour":9,"total_price":5},{"hour":18,"total_price":30}]}`)

	out := RenderWidget(wv, 50, false, 0)
	assert.Contains(t, out, "Peak hour: 18:00 (₹30)")
}

func TestRenderWidget_MinimumWidth(t *testing.T) {
	wv := presenter.WidgetView{Widget: widgetFor(source.Forecast), State: presenter.StateLoading}
	assert.NotPanics(t, func() { RenderWidget(wv, 2, false, 0) })
}

func TestRenderAxis(t *testing.T) {
	assert.Equal(t, "", renderAxis(nil, 10))
	assert.Equal(t, "Jan", renderAxis([]string{"Jan"}, 10))
	assert.Equal(t, "Jan    Dec", renderAxis([]string{"Jan", "Feb", "Dec"}, 10))
	assert.Equal(t, "January →...", renderAxis([]string{"January", "December"}, 12))
}
