package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rileyhilliard/storelens/internal/dashboard"
	"github.com/rileyhilliard/storelens/internal/fetch"
	"github.com/rileyhilliard/storelens/internal/logger"
	"github.com/rileyhilliard/storelens/internal/metrics"
	"github.com/rileyhilliard/storelens/internal/server"
)

// serveCommand serves dashboard views over HTTP and WebSocket until ctx ends.
func serveCommand(ctx context.Context, addr string) error {
	log := logger.NewEnvLogger("[serve]")
	a, err := loadApp(log)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = a.cfg.Serve.Addr
	}

	srv := newServer(a, addr)
	log.Info("serving store %s on http://%s (ws: /ws, metrics: /metrics)", a.cfg.Store.Default, addr)
	return srv.ListenAndServe(ctx)
}

// newServer wires a server with its own metrics registry.
func newServer(a *app, addr string) *server.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	agg := a.aggregator(fetch.WithObserver(m))
	cfg := server.Config{
		Addr:         addr,
		DefaultStore: a.cfg.Store.Default,
		Interval:     a.cfg.RefreshInterval(),
	}
	return server.New(cfg,
		func() *dashboard.Controller { return a.controller(agg) },
		server.WithLogger(a.log),
		server.WithMetrics(m, reg),
	)
}
