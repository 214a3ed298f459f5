package doctor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/storelens/internal/config"
	"github.com/rileyhilliard/storelens/internal/source"
)

// ConfigFileCheck verifies that a config file exists. A missing file is a
// warning since defaults and environment overrides still work.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return "CONFIG" }

func (c *ConfigFileCheck) Run(_ context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("Error finding config: %v", strings.TrimSpace(err.Error())),
			Suggestion: "Check the --config path or run 'storelens init'",
		}
	}

	if path == "" {
		return CheckResult{
			Status:     StatusWarn,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'storelens init' to create a .storelens.yaml config file",
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", filepath.Base(path)),
	}
}

// ConfigSchemaCheck verifies that the effective config is valid.
type ConfigSchemaCheck struct {
	ConfigPath string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return "CONFIG" }

func (c *ConfigSchemaCheck) Run(_ context.Context) CheckResult {
	cfg, _, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    "Failed to load config",
			Suggestion: "Check the YAML syntax in your config file",
		}
	}

	if err := config.Validate(cfg, source.TagStrings()...); err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    fmt.Sprintf("Schema error: %s", firstLine(err.Error())),
			Suggestion: "Fix the configuration errors in your .storelens.yaml",
		}
	}

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("Schema valid, API at %s", cfg.API.BaseURL),
	}
}

// ConfigSourcesCheck reports how many widgets the config leaves enabled.
type ConfigSourcesCheck struct {
	ConfigPath string
}

func (c *ConfigSourcesCheck) Name() string     { return "config_sources" }
func (c *ConfigSourcesCheck) Category() string { return "CONFIG" }

func (c *ConfigSourcesCheck) Run(_ context.Context) CheckResult {
	cfg, _, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{Status: StatusFail, Message: "Cannot check sources: config load error"}
	}

	reg, err := source.FromConfig(cfg)
	if err != nil {
		return CheckResult{
			Status:     StatusFail,
			Message:    firstLine(err.Error()),
			Suggestion: "Enable at least one source under 'sources:'",
		}
	}

	total := len(source.AllTags)
	if reg.Len() < total {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%d of %d widgets enabled", reg.Len(), total),
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("All %d widgets enabled", total),
	}
}

// NewConfigChecks creates all config-related checks.
func NewConfigChecks(configPath string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ConfigSchemaCheck{ConfigPath: configPath},
		&ConfigSourcesCheck{ConfigPath: configPath},
	}
}

// firstLine strips the "✗ " prefix and keeps the first line of a
// structured error message.
func firstLine(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "✗ ")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
