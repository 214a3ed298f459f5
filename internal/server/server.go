// Package server publishes dashboard views to browser renderers. A snapshot
// endpoint returns one settled cycle as JSON; a WebSocket endpoint streams
// every widget update of a live session and accepts refresh and store-switch
// commands.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rileyhilliard/storelens/internal/dashboard"
	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/rileyhilliard/storelens/internal/logger"
	"github.com/rileyhilliard/storelens/internal/metrics"
	"github.com/rileyhilliard/storelens/internal/presenter"
)

const (
	writeWait       = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Message types sent to view clients.
const (
	TypeView  = "view"
	TypeError = "error"
)

// Command types accepted from view clients.
const (
	CommandRefresh = "refresh"
	CommandStore   = "store"
)

// Envelope wraps every message sent to a client.
type Envelope struct {
	Type    string          `json:"type"`
	Store   string          `json:"store,omitempty"`
	View    *presenter.View `json:"view,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Command is a message from a view client.
type Command struct {
	Type  string `json:"type"`
	Store string `json:"store,omitempty"`
}

// Config controls the server.
type Config struct {
	Addr         string
	DefaultStore string
	// Interval between automatic refreshes of live sessions. Zero disables.
	Interval time.Duration
}

// ControllerFactory builds a fresh controller for each request or session.
type ControllerFactory func() *dashboard.Controller

// Server serves dashboard views over HTTP and WebSocket.
type Server struct {
	cfg      Config
	newCtrl  ControllerFactory
	log      logger.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics instruments sessions with m and serves g at /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// New creates a server.
func New(cfg Config, newCtrl ControllerFactory, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		newCtrl: newCtrl,
		log:     logger.Noop(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/dashboard", s.handleSnapshot)
	mux.HandleFunc("/ws", s.handleWS)
	if s.gatherer != nil {
		mux.Handle("/metrics", metrics.Handler(s.gatherer))
	}
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving dashboard views on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot listen on "+s.cfg.Addr,
			"Pick a free address with --addr or serve.addr")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) store(r *http.Request) string {
	if id := r.URL.Query().Get("store"); id != "" {
		return id
	}
	return s.cfg.DefaultStore
}

func (s *Server) controller() *dashboard.Controller {
	ctrl := s.newCtrl()
	if s.metrics != nil {
		ctrl.SetObserver(s.metrics)
	}
	return ctrl
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	store := s.store(r)
	view := s.controller().Run(r.Context(), store, nil)
	if s.metrics != nil {
		s.metrics.ObserveView(view)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(Envelope{Type: TypeView, Store: store, View: &view}); err != nil {
		s.log.Warn("writing snapshot for store %s: %v", store, err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.ClientConnected()
		defer s.metrics.ClientDisconnected()
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	cmds := make(chan Command)
	go s.readLoop(ctx, cancel, conn, cmds)

	store := s.store(r)
	s.log.Debug("view client connected for store %s", store)
	s.session(ctx, conn, store, cmds)
	s.log.Debug("view client disconnected")
}

// readLoop forwards client commands until the connection fails.
func (s *Server) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, cmds chan<- Command) {
	defer cancel()
	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		select {
		case cmds <- cmd:
		case <-ctx.Done():
			return
		}
	}
}

// session runs cycles for one client. It is the only writer on conn.
func (s *Server) session(ctx context.Context, conn *websocket.Conn, store string, cmds <-chan Command) {
	ctrl := s.controller()

	var tick <-chan time.Time
	if s.cfg.Interval > 0 {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		cycleCtx, cancelCycle := context.WithCancel(ctx)
		cyc := ctrl.Start(store)
		stream := ctrl.Fetch(cycleCtx, cyc)
		if !s.send(conn, store, ctrl.View()) {
			cancelCycle()
			return
		}

	cycle:
		for {
			select {
			case r, ok := <-stream:
				if !ok {
					stream = nil
					continue
				}
				if ctrl.Deliver(r) != nil {
					continue
				}
				view := ctrl.View()
				if s.metrics != nil {
					s.metrics.ObserveView(view)
				}
				if !s.send(conn, store, view) {
					cancelCycle()
					return
				}

			case cmd := <-cmds:
				switch cmd.Type {
				case CommandRefresh:
					break cycle
				case CommandStore:
					if cmd.Store == "" {
						s.sendError(conn, "store command needs a store id")
						continue
					}
					store = cmd.Store
					break cycle
				default:
					s.sendError(conn, "unknown command "+cmd.Type)
				}

			case <-tick:
				break cycle

			case <-ctx.Done():
				cancelCycle()
				return
			}
		}
		cancelCycle()
	}
}

func (s *Server) send(conn *websocket.Conn, store string, view presenter.View) bool {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(Envelope{Type: TypeView, Store: store, View: &view}); err != nil {
		s.log.Debug("view client write failed: %v", err)
		return false
	}
	return true
}

func (s *Server) sendError(conn *websocket.Conn, msg string) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(Envelope{Type: TypeError, Message: msg}); err != nil {
		s.log.Debug("view client write failed: %v", err)
	}
}
