// Package metrics exposes Prometheus instrumentation for source fetches,
// refresh cycles and connected view clients.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rileyhilliard/storelens/internal/fetch"
	"github.com/rileyhilliard/storelens/internal/presenter"
)

const namespace = "storelens"

// Metrics holds every collector. It implements fetch.Observer.
type Metrics struct {
	fetches      *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	retries      *prometheus.CounterVec
	cycles       prometheus.Counter
	dropped      *prometheus.CounterVec
	widgets      *prometheus.GaugeVec
	totalFailure prometheus.Gauge
	clients      prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetches_total",
			Help:      "Settled source fetches by outcome.",
		}, []string{"source", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Time from request start to settle, including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"source"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_retries_total",
			Help:      "Extra attempts made after a retryable failure.",
		}, []string{"source"}),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_started_total",
			Help:      "Fetch cycles started, including refreshes and store switches.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_dropped_total",
			Help:      "Results discarded because they were stale or duplicated.",
		}, []string{"reason"}),
		widgets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "widgets",
			Help:      "Widgets per display state in the latest view.",
		}, []string{"state"}),
		totalFailure: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "total_failure",
			Help:      "1 when the latest completed cycle had no available widget.",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "view_clients",
			Help:      "Connected WebSocket view clients.",
		}),
	}

	reg.MustRegister(m.fetches, m.latency, m.retries, m.cycles, m.dropped, m.widgets, m.totalFailure, m.clients)
	return m
}

// ObserveFetch records one settled source.
func (m *Metrics) ObserveFetch(sourceID string, status fetch.Status, latency time.Duration, attempts int) {
	m.fetches.WithLabelValues(sourceID, status.String()).Inc()
	m.latency.WithLabelValues(sourceID).Observe(latency.Seconds())
	if attempts > 1 {
		m.retries.WithLabelValues(sourceID).Add(float64(attempts - 1))
	}
}

// CycleStarted counts a new fetch cycle.
func (m *Metrics) CycleStarted() {
	m.cycles.Inc()
}

// ResultDropped counts a discarded result. reason is an error code such as STALE.
func (m *Metrics) ResultDropped(reason string) {
	m.dropped.WithLabelValues(reason).Inc()
}

// ObserveView sets the per-state widget gauges from v.
func (m *Metrics) ObserveView(v presenter.View) {
	counts := v.Counts()
	for _, s := range []presenter.State{presenter.StateLoading, presenter.StateReady, presenter.StateUnavailable, presenter.StateEmpty} {
		m.widgets.WithLabelValues(s.String()).Set(float64(counts[s]))
	}
	if !v.Complete {
		return
	}
	if v.Banner != nil {
		m.totalFailure.Set(1)
	} else {
		m.totalFailure.Set(0)
	}
}

// ClientConnected and ClientDisconnected track live view clients.
func (m *Metrics) ClientConnected()    { m.clients.Inc() }
func (m *Metrics) ClientDisconnected() { m.clients.Dec() }

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
