package dashboard

import (
	"context"
	"sync"

	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/rileyhilliard/storelens/internal/fetch"
	"github.com/rileyhilliard/storelens/internal/logger"
	"github.com/rileyhilliard/storelens/internal/presenter"
	"github.com/rileyhilliard/storelens/internal/source"
)

// Fetcher streams the results of one cycle.
type Fetcher interface {
	Stream(ctx context.Context, cycle uint64, storeID string, sources []source.MetricSource) <-chan fetch.Result
}

// CycleObserver is told about cycle starts and dropped results, e.g. metrics.
type CycleObserver interface {
	CycleStarted()
	ResultDropped(reason string)
}

// Cycle identifies one fan-out over every source for one store.
type Cycle struct {
	ID      uint64
	StoreID string
}

// Controller owns the current cycle. Starting a cycle (mount, refresh or
// store switch) replaces the ResultsMap; results tagged with an older cycle
// are dropped on arrival. Safe for concurrent use.
type Controller struct {
	registry *source.Registry
	fetcher  Fetcher
	builder  presenter.SpecBuilder
	log      logger.Logger
	obs      CycleObserver

	mu      sync.Mutex
	cycle   Cycle
	results *fetch.ResultsMap
}

// NewController creates a controller. No cycle runs until Start is called.
func NewController(reg *source.Registry, f Fetcher, b presenter.SpecBuilder, log logger.Logger) *Controller {
	if log == nil {
		log = logger.Noop()
	}
	return &Controller{
		registry: reg,
		fetcher:  f,
		builder:  b,
		log:      log,
		results:  fetch.NewResultsMap(0, reg.IDs()),
	}
}

// SetObserver registers o. Call before the first Start.
func (c *Controller) SetObserver(o CycleObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.obs = o
}

// Start begins a new cycle for storeID and returns it. Every widget goes
// back to Loading.
func (c *Controller) Start(storeID string) Cycle {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cycle = Cycle{ID: c.cycle.ID + 1, StoreID: storeID}
	c.results = fetch.NewResultsMap(c.cycle.ID, c.registry.IDs())
	c.log.Debug("cycle %d started for store %s", c.cycle.ID, storeID)
	if c.obs != nil {
		c.obs.CycleStarted()
	}
	return c.cycle
}

// Refresh starts a new cycle for the current store.
func (c *Controller) Refresh() Cycle {
	return c.Start(c.Current().StoreID)
}

// Current returns the active cycle.
func (c *Controller) Current() Cycle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cycle
}

// Fetch streams results for cyc. Callers pass each result to Deliver.
func (c *Controller) Fetch(ctx context.Context, cyc Cycle) <-chan fetch.Result {
	return c.fetcher.Stream(ctx, cyc.ID, cyc.StoreID, c.registry.Sources())
}

// Deliver records a result in the current cycle. Results from a superseded
// cycle, repeated deliveries and unknown sources are dropped and reported
// as errors; callers need not surface them.
func (c *Controller) Deliver(r fetch.Result) error {
	c.mu.Lock()
	results, obs := c.results, c.obs
	c.mu.Unlock()

	if err := results.Put(r); err != nil {
		if obs != nil {
			obs.ResultDropped(errors.CodeOf(err))
		}
		switch {
		case errors.IsCode(err, errors.ErrStale):
			c.log.Debug("dropped stale result for %s from cycle %d", r.SourceID, r.Cycle)
		case errors.IsCode(err, errors.ErrDuplicate):
			c.log.Debug("dropped duplicate result for %s in cycle %d", r.SourceID, r.Cycle)
		default:
			c.log.Debug("dropped result for unknown source %s in cycle %d", r.SourceID, r.Cycle)
		}
		return err
	}
	return nil
}

// View presents the current cycle.
func (c *Controller) View() presenter.View {
	c.mu.Lock()
	results := c.results
	c.mu.Unlock()
	return presenter.Present(results, c.registry.Widgets(), c.builder)
}

// Results returns the current cycle's ResultsMap.
func (c *Controller) Results() *fetch.ResultsMap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

// Registry returns the registry the controller was built with.
func (c *Controller) Registry() *source.Registry {
	return c.registry
}

// Run starts a cycle for storeID, delivers every result as it settles and
// returns the final view. onUpdate, if set, is called after each accepted result.
func (c *Controller) Run(ctx context.Context, storeID string, onUpdate func(presenter.View)) presenter.View {
	cyc := c.Start(storeID)
	for r := range c.Fetch(ctx, cyc) {
		if err := c.Deliver(r); err != nil {
			continue
		}
		if onUpdate != nil {
			onUpdate(c.View())
		}
	}
	return c.View()
}
