package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .storelens.yaml configuration file.
type Config struct {
	Version   int                       `yaml:"version" mapstructure:"version"`
	API       APIConfig                 `yaml:"api" mapstructure:"api"`
	Store     StoreConfig               `yaml:"store" mapstructure:"store"`
	Forecast  ForecastConfig            `yaml:"forecast" mapstructure:"forecast"`
	Dashboard DashboardConfig           `yaml:"dashboard" mapstructure:"dashboard"`
	Sources   map[string]SourceOverride `yaml:"sources,omitempty" mapstructure:"sources"`
	Chat      ChatConfig                `yaml:"chat" mapstructure:"chat"`
	Serve     ServeConfig               `yaml:"serve" mapstructure:"serve"`
	Output    OutputConfig              `yaml:"output" mapstructure:"output"`
}

// APIConfig points at the analytics backend.
type APIConfig struct {
	// BaseURL is prefixed to every endpoint path, e.g. http://localhost:8000/api.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Token is sent as a bearer token when set. Supports ${VAR} expansion.
	Token string `yaml:"token,omitempty" mapstructure:"token"`

	// Timeout bounds each source request individually.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Retries is how many extra attempts a failing source gets within one cycle.
	Retries int `yaml:"retries" mapstructure:"retries"`
}

// StoreConfig controls which store the dashboard opens on.
type StoreConfig struct {
	Default string   `yaml:"default" mapstructure:"default"`
	Known   []string `yaml:"known,omitempty" mapstructure:"known"`
}

// ForecastConfig holds parameters for the forecast source.
type ForecastConfig struct {
	Horizon int `yaml:"horizon" mapstructure:"horizon"`
}

// DashboardConfig controls the interactive dashboard.
type DashboardConfig struct {
	// Interval between automatic refresh cycles, e.g. "30s". "0" disables.
	Interval string `yaml:"interval" mapstructure:"interval"`

	// Exclude lists schema tags whose widgets are hidden.
	Exclude []string `yaml:"exclude,omitempty" mapstructure:"exclude"`
}

// SourceOverride adjusts a built-in metric source.
type SourceOverride struct {
	// Path replaces the default endpoint path. May contain {id}.
	Path string `yaml:"path,omitempty" mapstructure:"path"`

	Disabled bool `yaml:"disabled,omitempty" mapstructure:"disabled"`
}

// ChatConfig holds shopper chat settings.
type ChatConfig struct {
	UserID string `yaml:"user_id" mapstructure:"user_id"`
}

// ServeConfig controls the view-model server.
type ServeConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// OutputConfig controls terminal output.
type OutputConfig struct {
	// Color mode: auto, always, never.
	Color string `yaml:"color" mapstructure:"color"`

	// Currency symbol prefixed to monetary values.
	Currency string `yaml:"currency" mapstructure:"currency"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: 10 * time.Second,
			Retries: 0,
		},
		Store: StoreConfig{
			Default: "s1",
		},
		Forecast: ForecastConfig{
			Horizon: 7,
		},
		Dashboard: DashboardConfig{
			Interval: "30s",
		},
		Sources: make(map[string]SourceOverride),
		Chat: ChatConfig{
			UserID: "shopper123",
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8090",
		},
		Output: OutputConfig{
			Color:    "auto",
			Currency: "₹",
		},
	}
}

// RefreshInterval parses Dashboard.Interval. Zero means no automatic refresh.
func (c *Config) RefreshInterval() time.Duration {
	return parseDuration(c.Dashboard.Interval, 30*time.Second)
}

// Stores returns the stores the dashboard can switch between, default first.
func (c *Config) Stores() []string {
	out := []string{c.Store.Default}
	for _, s := range c.Store.Known {
		if s != "" && s != c.Store.Default {
			out = append(out, s)
		}
	}
	return out
}
