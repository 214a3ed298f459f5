// Package source declares the analytics feeds a dashboard session reads from
// and the widgets that display them.
package source

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rileyhilliard/storelens/internal/errors"
)

// SchemaTag names the payload shape a source returns.
type SchemaTag string

const (
	Forecast         SchemaTag = "forecast"
	Insights         SchemaTag = "insights"
	MarketBasket     SchemaTag = "market-basket"
	CustomerSegments SchemaTag = "customer-segments"
	SeasonalAnalysis SchemaTag = "seasonal-analysis"
	TimeHabits       SchemaTag = "time-habits"
	Sentiment        SchemaTag = "sentiment"
	PersonaInsights  SchemaTag = "persona-insights"
)

// AllTags lists every schema tag in dashboard display order.
var AllTags = []SchemaTag{
	Forecast,
	Insights,
	MarketBasket,
	CustomerSegments,
	SeasonalAnalysis,
	TimeHabits,
	Sentiment,
	PersonaInsights,
}

// TagStrings returns AllTags as plain strings, for config validation.
func TagStrings() []string {
	out := make([]string, len(AllTags))
	for i, t := range AllTags {
		out[i] = string(t)
	}
	return out
}

// Endpoint describes how to reach a source. Path may contain {id}, which is
// replaced by the store id; query values may contain {horizon}.
type Endpoint struct {
	Method string
	Path   string
	Query  map[string]string
}

// Params fills the placeholders of an Endpoint.
type Params struct {
	StoreID string
	Horizon int
}

// URL resolves the endpoint against baseURL.
func (e Endpoint) URL(baseURL string, p Params) (string, error) {
	path := strings.ReplaceAll(e.Path, "{id}", url.PathEscape(p.StoreID))
	if strings.Contains(path, "{") {
		return "", errors.New(errors.ErrConfig,
			fmt.Sprintf("Unresolved placeholder in endpoint path %q", e.Path),
			"Only {id} is supported in source paths")
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot build source URL", "Check api.base_url")
	}

	if len(e.Query) > 0 {
		q := u.Query()
		keys := make([]string, 0, len(e.Query))
		for k := range e.Query {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := strings.ReplaceAll(e.Query[k], "{horizon}", strconv.Itoa(p.Horizon))
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// MetricSource is one analytics feed. Static for a dashboard session.
type MetricSource struct {
	ID       string
	Endpoint Endpoint
	Schema   SchemaTag
}

// Widget is a dashboard tile bound to exactly one source.
type Widget struct {
	ID       string
	Title    string
	SourceID string
	Schema   SchemaTag
}

// Titles are the widget headings shown to store owners.
var Titles = map[SchemaTag]string{
	Forecast:         "Sales Forecast",
	Insights:         "Owner Insights",
	MarketBasket:     "Market Basket",
	CustomerSegments: "Customer Segments",
	SeasonalAnalysis: "Seasonal Trend",
	TimeHabits:       "Shopping Habits",
	Sentiment:        "Customer Sentiment",
	PersonaInsights:  "Avg Spend per Visit",
}

// defaultEndpoints maps each tag to the analytics API route it reads.
var defaultEndpoints = map[SchemaTag]Endpoint{
	Forecast:         {Method: "GET", Path: "/stores/{id}/forecast", Query: map[string]string{"horizon": "{horizon}"}},
	Insights:         {Method: "GET", Path: "/owner/{id}/insights"},
	MarketBasket:     {Method: "GET", Path: "/analytics/market-basket"},
	CustomerSegments: {Method: "GET", Path: "/analytics/customer-segments"},
	SeasonalAnalysis: {Method: "GET", Path: "/analytics/seasonal-analysis"},
	TimeHabits:       {Method: "GET", Path: "/analytics/time-habits"},
	Sentiment:        {Method: "GET", Path: "/analytics/sentiment"},
	PersonaInsights:  {Method: "GET", Path: "/analytics/persona-insights"},
}
