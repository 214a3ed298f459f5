package source

import (
	"fmt"

	"github.com/rileyhilliard/storelens/internal/config"
	"github.com/rileyhilliard/storelens/internal/errors"
)

// Registry holds the sources and widgets for one dashboard session.
// It is built once and never mutated afterwards.
type Registry struct {
	sources []MetricSource
	byID    map[string]MetricSource
	widgets []Widget
}

// NewRegistry builds a registry from explicit sources, one widget per source.
// Duplicate ids are rejected.
func NewRegistry(sources []MetricSource) (*Registry, error) {
	r := &Registry{byID: make(map[string]MetricSource, len(sources))}
	for _, s := range sources {
		if s.ID == "" {
			return nil, errors.New(errors.ErrConfig, "Metric source has an empty id", "")
		}
		if _, dup := r.byID[s.ID]; dup {
			return nil, errors.New(errors.ErrConfig,
				fmt.Sprintf("Duplicate metric source %q", s.ID),
				"Each source id must be unique")
		}
		r.byID[s.ID] = s
		r.sources = append(r.sources, s)

		title := Titles[s.Schema]
		if title == "" {
			title = s.ID
		}
		r.widgets = append(r.widgets, Widget{
			ID:       s.ID,
			Title:    title,
			SourceID: s.ID,
			Schema:   s.Schema,
		})
	}
	return r, nil
}

// DefaultRegistry returns the eight built-in sources in display order.
func DefaultRegistry() *Registry {
	r, err := FromConfig(nil)
	if err != nil {
		panic(err)
	}
	return r
}

// FromConfig builds the built-in sources with per-tag path overrides,
// disabled sources and excluded widgets removed. A nil cfg uses defaults.
func FromConfig(cfg *config.Config) (*Registry, error) {
	var overrides map[string]config.SourceOverride
	excluded := map[string]bool{}
	if cfg != nil {
		overrides = cfg.Sources
		for _, tag := range cfg.Dashboard.Exclude {
			excluded[tag] = true
		}
	}

	sources := make([]MetricSource, 0, len(AllTags))
	for _, tag := range AllTags {
		ep := defaultEndpoints[tag]
		if o, ok := overrides[string(tag)]; ok {
			if o.Disabled {
				continue
			}
			if o.Path != "" {
				ep.Path = o.Path
			}
		}
		if excluded[string(tag)] {
			continue
		}
		sources = append(sources, MetricSource{ID: string(tag), Endpoint: ep, Schema: tag})
	}

	if len(sources) == 0 {
		return nil, errors.New(errors.ErrConfig,
			"Every metric source is disabled",
			"Re-enable at least one source under 'sources' or 'dashboard.exclude'")
	}
	return NewRegistry(sources)
}

// Sources returns the sources in registration order.
func (r *Registry) Sources() []MetricSource {
	out := make([]MetricSource, len(r.sources))
	copy(out, r.sources)
	return out
}

// Widgets returns the widgets in display order.
func (r *Registry) Widgets() []Widget {
	out := make([]Widget, len(r.widgets))
	copy(out, r.widgets)
	return out
}

// Get looks up a source by id.
func (r *Registry) Get(id string) (MetricSource, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// IDs returns every source id in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.sources))
	for i, s := range r.sources {
		ids[i] = s.ID
	}
	return ids
}

// Len returns the number of sources.
func (r *Registry) Len() int {
	return len(r.sources)
}
