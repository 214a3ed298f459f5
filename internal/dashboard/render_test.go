package dashboard

import (
	"context"
	"testing"

	"github.com/rileyhilliard/storelens/internal/source"
	"github.com/stretchr/testify/assert"
)

func TestRenderSnapshot(t *testing.T) {
	c := newTestController(&fakeFetcher{fail: map[string]bool{"insights": true}})
	view := c.Run(context.Background(), "s1", nil)

	out := RenderSnapshot(view, "s1", 120)
	assert.Contains(t, out, "store s1")
	assert.Contains(t, out, "7 ready, 1 unavailable")
	assert.Contains(t, out, "2-Day Sales Forecast")
	assert.Contains(t, out, "Customer Sentiment")
	assert.Contains(t, out, "Couldn't reach source")
	assert.NotContains(t, out, "Loading")
}

func TestRenderSnapshot_TotalFailure(t *testing.T) {
	fail := map[string]bool{}
	for _, id := range source.DefaultRegistry().IDs() {
		fail[id] = true
	}
	c := newTestController(&fakeFetcher{fail: fail})
	view := c.Run(context.Background(), "s1", nil)

	out := RenderSnapshot(view, "s1", 80)
	assert.Contains(t, out, "Dashboard unavailable")
	assert.Contains(t, out, "forecast")
}
