package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rileyhilliard/storelens/internal/dashboard"
	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/rileyhilliard/storelens/internal/fetch"
	"github.com/rileyhilliard/storelens/internal/logger"
	"github.com/rileyhilliard/storelens/internal/metrics"
	"github.com/rileyhilliard/storelens/internal/presenter"
	"github.com/rileyhilliard/storelens/internal/source"
	"github.com/rileyhilliard/storelens/internal/viewmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var payloads = map[source.SchemaTag]string{
	source.Forecast:         `{"ds":["2024-01-01"],"yhat":[10],"yhat_lower":[8],"yhat_upper":[12]}`,
	source.Insights:         `[{"kpi":"Revenue","value":"₹1,000","recommendation":"Keep going"}]`,
	source.MarketBasket:     `[{"pair":"Bread + Butter","confidence":0.5,"lift":2.1}]`,
	source.CustomerSegments: `[{"segment_name":"VIP","total_spend":500,"customer_count":3}]`,
	source.SeasonalAnalysis: `[{"month":"January","total_price":100}]`,
	source.TimeHabits:       `{"daily_sales":[{"day_of_week":"Monday","total_price":10}]}`,
	source.Sentiment:        `[{"sentiment":"positive","count":10}]`,
	source.PersonaInsights:  `[{"persona":"Student","avg_spend":12.5}]`,
}

// storeFetcher fails every source for stores listed in down.
type storeFetcher struct {
	mu     sync.Mutex
	down   map[string]bool
	stores []string
}

func (f *storeFetcher) Stream(_ context.Context, cycle uint64, storeID string, sources []source.MetricSource) <-chan fetch.Result {
	f.mu.Lock()
	f.stores = append(f.stores, storeID)
	f.mu.Unlock()

	out := make(chan fetch.Result, len(sources))
	for _, src := range sources {
		r := fetch.Result{SourceID: src.ID, Cycle: cycle, FetchedAt: time.Now()}
		if f.down[storeID] {
			r.Status = fetch.StatusErr
			r.Err = errors.New(errors.ErrTransport, src.ID+": connection refused", "")
		} else {
			r.Status = fetch.StatusOK
			r.Payload = json.RawMessage(payloads[src.Schema])
		}
		out <- r
	}
	close(out)
	return out
}

func (f *storeFetcher) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.stores...)
}

func newTestServer(t *testing.T, f dashboard.Fetcher, opts ...Option) *httptest.Server {
	t.Helper()
	factory := func() *dashboard.Controller {
		return dashboard.NewController(source.DefaultRegistry(), f, viewmodel.NewBuilder(""), logger.Noop())
	}
	srv := New(Config{DefaultStore: "s1"}, factory, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntilComplete reads envelopes until a complete view for store arrives.
func readUntilComplete(t *testing.T, conn *websocket.Conn, store string) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var env Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type == TypeView && env.Store == store && env.View.Complete {
			return env
		}
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &storeFetcher{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestSnapshot(t *testing.T) {
	f := &storeFetcher{}
	ts := newTestServer(t, f)

	resp, err := http.Get(ts.URL + "/api/dashboard?store=s2")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var raw struct {
		Type  string `json:"type"`
		Store string `json:"store"`
		View  struct {
			Complete bool `json:"complete"`
			Widgets  []struct {
				State string          `json:"state"`
				Spec  json.RawMessage `json:"spec"`
			} `json:"widgets"`
		} `json:"view"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))

	assert.Equal(t, TypeView, raw.Type)
	assert.Equal(t, "s2", raw.Store)
	assert.True(t, raw.View.Complete)
	require.Len(t, raw.View.Widgets, 8)
	for _, w := range raw.View.Widgets {
		assert.Equal(t, "ready", w.State)
		assert.NotEmpty(t, w.Spec)
	}
	assert.Equal(t, []string{"s2"}, f.seen())
}

func TestSnapshot_DefaultStoreAndMethod(t *testing.T) {
	f := &storeFetcher{}
	ts := newTestServer(t, f)

	resp, err := http.Get(ts.URL + "/api/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, []string{"s1"}, f.seen())

	resp, err = http.Post(ts.URL+"/api/dashboard", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestWebSocket_StreamsCycle(t *testing.T) {
	ts := newTestServer(t, &storeFetcher{})
	conn := dial(t, ts, "?store=s1")

	var first Envelope
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, TypeView, first.Type)
	assert.Equal(t, 0, first.View.Settled)
	assert.Equal(t, 8, first.View.Counts()[presenter.StateLoading])

	final := readUntilComplete(t, conn, "s1")
	assert.Equal(t, 8, final.View.Counts()[presenter.StateReady])
	assert.Nil(t, final.View.Banner)
}

func TestWebSocket_StoreSwitchAndTotalFailure(t *testing.T) {
	f := &storeFetcher{down: map[string]bool{"s2": true}}
	ts := newTestServer(t, f)
	conn := dial(t, ts, "")

	readUntilComplete(t, conn, "s1")

	require.NoError(t, conn.WriteJSON(Command{Type: CommandStore, Store: "s2"}))
	final := readUntilComplete(t, conn, "s2")

	require.NotNil(t, final.View.Banner)
	assert.Equal(t, presenter.BannerTotalFailure, final.View.Banner.Kind)
	assert.Equal(t, []string{"s1", "s2"}, f.seen())
}

func TestWebSocket_RefreshAndBadCommands(t *testing.T) {
	f := &storeFetcher{}
	ts := newTestServer(t, f)
	conn := dial(t, ts, "")
	readUntilComplete(t, conn, "s1")

	require.NoError(t, conn.WriteJSON(Command{Type: "dance"}))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, TypeError, env.Type)
	assert.Contains(t, env.Message, "unknown command")

	require.NoError(t, conn.WriteJSON(Command{Type: CommandStore}))
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, TypeError, env.Type)

	require.NoError(t, conn.WriteJSON(Command{Type: CommandRefresh}))
	final := readUntilComplete(t, conn, "s1")
	assert.Greater(t, final.View.Cycle, uint64(1))
	assert.Equal(t, []string{"s1", "s1"}, f.seen())
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	ts := newTestServer(t, &storeFetcher{}, WithMetrics(m, reg))

	resp, err := http.Get(ts.URL + "/api/dashboard")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "storelens_cycles_started_total 1")
	assert.Contains(t, string(body), `storelens_widgets{state="ready"} 8`)
}
