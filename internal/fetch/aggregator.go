// Package fetch fans requests out to every metric source concurrently and
// collects one settled result per source per cycle.
//
// A cycle never fails as a whole: each source settles to StatusOK or
// StatusErr on its own, and the join waits for all of them.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rileyhilliard/storelens/internal/config"
	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/rileyhilliard/storelens/internal/logger"
	"github.com/rileyhilliard/storelens/internal/source"
	"golang.org/x/sync/errgroup"
)

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Observer is notified once per settled source.
type Observer interface {
	ObserveFetch(sourceID string, status Status, latency time.Duration, attempts int)
}

// Aggregator issues source requests. Safe for concurrent use.
type Aggregator struct {
	client  *http.Client
	baseURL string
	token   string
	horizon int
	timeout time.Duration
	retries int
	backoff time.Duration
	log     logger.Logger
	obs     Observer
	now     func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Aggregator) { a.client = c }
}

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(a *Aggregator) { a.token = token }
}

// WithHorizon sets the forecast horizon substituted into endpoints.
func WithHorizon(days int) Option {
	return func(a *Aggregator) { a.horizon = days }
}

// WithTimeout bounds each source request.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.timeout = d }
}

// WithRetries gives each failing source n extra attempts, spaced by backoff*attempt.
func WithRetries(n int, backoff time.Duration) Option {
	return func(a *Aggregator) {
		a.retries = n
		a.backoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) { a.log = l }
}

// WithObserver registers a per-source observer, e.g. metrics.
func WithObserver(o Observer) Option {
	return func(a *Aggregator) { a.obs = o }
}

// New creates an Aggregator for the analytics API at baseURL.
func New(baseURL string, opts ...Option) *Aggregator {
	a := &Aggregator{
		client:  &http.Client{},
		baseURL: baseURL,
		horizon: 7,
		timeout: 10 * time.Second,
		backoff: 250 * time.Millisecond,
		log:     logger.Noop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewFromConfig creates an Aggregator from the api and forecast config sections.
func NewFromConfig(cfg *config.Config, opts ...Option) *Aggregator {
	base := []Option{
		WithToken(cfg.API.Token),
		WithHorizon(cfg.Forecast.Horizon),
		WithTimeout(cfg.API.Timeout),
		WithRetries(cfg.API.Retries, 250*time.Millisecond),
	}
	return New(cfg.API.BaseURL, append(base, opts...)...)
}

// Stream starts one request per source and returns a channel that yields each
// result as it settles. The channel closes once every source has settled.
func (a *Aggregator) Stream(ctx context.Context, cycle uint64, storeID string, sources []source.MetricSource) <-chan Result {
	results := make(chan Result, len(sources))

	if len(sources) == 0 {
		close(results)
		return results
	}

	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src source.MetricSource) {
			defer wg.Done()
			results <- a.FetchOne(ctx, cycle, storeID, src)
		}(src)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// Collect fetches every source and blocks until all have settled.
func (a *Aggregator) Collect(ctx context.Context, cycle uint64, storeID string, sources []source.MetricSource) *ResultsMap {
	ids := make([]string, len(sources))
	for i, s := range sources {
		ids[i] = s.ID
	}
	rm := NewResultsMap(cycle, ids)

	var g errgroup.Group
	for _, src := range sources {
		g.Go(func() error {
			r := a.FetchOne(ctx, cycle, storeID, src)
			if err := rm.Put(r); err != nil {
				a.log.Warn("drop %s: %v", src.ID, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return rm
}

// FetchOne fetches a single source with retries and always returns a settled result.
func (a *Aggregator) FetchOne(ctx context.Context, cycle uint64, storeID string, src source.MetricSource) Result {
	start := a.now()
	res := Result{SourceID: src.ID, Cycle: cycle}

	var payload json.RawMessage
	var err error
	for attempt := 0; attempt <= a.retries; attempt++ {
		if attempt > 0 {
			if !sleepCtx(ctx, a.backoff*time.Duration(attempt)) {
				break
			}
			a.log.Debug("retry %s (attempt %d)", src.ID, attempt+1)
		}
		res.Attempts++
		payload, err = a.do(ctx, storeID, src)
		if err == nil || !retryable(err) {
			break
		}
	}

	res.FetchedAt = a.now()
	res.Latency = res.FetchedAt.Sub(start)
	if err != nil {
		res.Status = StatusErr
		res.Err = err
		a.log.Debug("cycle %d: %s failed after %d attempt(s): %v", cycle, src.ID, res.Attempts, err)
	} else {
		res.Status = StatusOK
		res.Payload = payload
		a.log.Debug("cycle %d: %s ok in %s", cycle, src.ID, res.Latency)
	}

	if a.obs != nil {
		a.obs.ObserveFetch(src.ID, res.Status, res.Latency, res.Attempts)
	}
	return res
}

func (a *Aggregator) do(ctx context.Context, storeID string, src source.MetricSource) (json.RawMessage, error) {
	target, err := src.Endpoint.URL(a.baseURL, source.Params{StoreID: storeID, Horizon: a.horizon})
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	method := src.Endpoint.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(reqCtx, method, target, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("%s: cannot build request", src.ID), "")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("%s: request failed", src.ID),
			"Check that the analytics API is reachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("%s: reading response failed", src.ID), "")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{SourceID: src.ID, Code: resp.StatusCode, Body: snippet(body)}
	}

	if !json.Valid(body) {
		return nil, errors.New(errors.ErrSchema,
			fmt.Sprintf("%s: response is not valid JSON", src.ID),
			"The analytics API returned something other than JSON")
	}
	return json.RawMessage(body), nil
}

// StatusError is a non-2xx response. It unwraps to a TRANSPORT error.
type StatusError struct {
	SourceID string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.SourceID, e.Code)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.SourceID, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	return errors.New(errors.ErrTransport, fmt.Sprintf("HTTP %d", e.Code), "")
}

// retryable reports whether another attempt could help: network failures,
// timeouts, 429 and 5xx. Schema problems and other 4xx are final.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return errors.IsCode(err, errors.ErrTransport)
}

// snippet keeps the first 120 characters of a response body.
func snippet(b []byte) string {
	const limit = 120
	if utf8.RuneCount(b) <= limit {
		return string(b)
	}
	return string([]rune(string(b))[:limit]) + "..."
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
