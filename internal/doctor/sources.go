package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/rileyhilliard/storelens/internal/fetch"
	"github.com/rileyhilliard/storelens/internal/presenter"
	"github.com/rileyhilliard/storelens/internal/source"
)

// SlowThreshold marks a reachable source as slow.
const SlowThreshold = 2 * time.Second

// SourceFetcher fetches a single source once.
type SourceFetcher interface {
	FetchOne(ctx context.Context, cycle uint64, storeID string, src source.MetricSource) fetch.Result
}

// SourceCheck fetches one metric source for a store and checks that the
// payload builds into a chart.
type SourceCheck struct {
	Source  source.MetricSource
	StoreID string
	Fetcher SourceFetcher
	Builder presenter.SpecBuilder
}

func (c *SourceCheck) Name() string     { return "source_" + c.Source.ID }
func (c *SourceCheck) Category() string { return "SOURCES" }

func (c *SourceCheck) Run(ctx context.Context) CheckResult {
	r := c.Fetcher.FetchOne(ctx, 0, c.StoreID, c.Source)
	latency := r.Latency.Round(time.Millisecond)

	if r.Status == fetch.StatusErr {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s: %s", c.Source.ID, firstLine(r.Err.Error())),
			Suggestion: "Check that the analytics API is running and api.base_url is right",
		}
	}

	spec, err := c.Builder.Build(c.Source.Schema, r.Payload)
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s: %s", c.Source.ID, firstLine(err.Error())),
			Suggestion: "The endpoint answered with an unexpected shape; check the API version",
		}
	}

	msg := fmt.Sprintf("%s: %s", c.Source.ID, latency)
	if spec.Empty() {
		msg += ", no data for this period"
	}
	if r.Latency > SlowThreshold {
		return CheckResult{
			Status:     StatusWarn,
			Message:    msg + " (slow)",
			Suggestion: "Raise api.timeout if this source times out on the dashboard",
		}
	}
	return CheckResult{Status: StatusPass, Message: msg}
}

// NewSourceChecks creates one check per registered source.
func NewSourceChecks(reg *source.Registry, storeID string, f SourceFetcher, b presenter.SpecBuilder) []Check {
	var checks []Check
	for _, src := range reg.Sources() {
		checks = append(checks, &SourceCheck{Source: src, StoreID: storeID, Fetcher: f, Builder: b})
	}
	return checks
}
