package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/rileyhilliard/storelens/internal/util"
)

var storeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validate checks the config for errors and returns structured error messages.
// knownTags, when non-empty, restricts the keys allowed under sources and
// dashboard.exclude.
func Validate(cfg *Config, knownTags ...string) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but storelens only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade storelens to read this config")
	}

	if err := validateBaseURL(cfg.API.BaseURL); err != nil {
		return err
	}

	if cfg.API.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			"api.timeout must be positive",
			"Set something like 'timeout: 10s' under api")
	}

	if cfg.API.Retries < 0 || cfg.API.Retries > 5 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("api.retries must be between 0 and 5, got %d", cfg.API.Retries),
			"Retries happen per source within a single refresh; keep it small")
	}

	for _, id := range cfg.Stores() {
		if !storeIDPattern.MatchString(id) {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Invalid store id %q", id),
				"Store ids may contain letters, digits, '-' and '_'")
		}
	}

	if cfg.Forecast.Horizon < 1 || cfg.Forecast.Horizon > 365 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("forecast.horizon must be between 1 and 365 days, got %d", cfg.Forecast.Horizon),
			"The default horizon is 7")
	}

	if iv := cfg.Dashboard.Interval; iv != "" && iv != "0" {
		d, err := time.ParseDuration(iv)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Invalid dashboard.interval %q", iv),
				"Use a Go duration like 30s or 2m, or 0 to disable auto refresh")
		}
		if d < time.Second {
			return errors.New(errors.ErrConfig,
				"dashboard.interval must be at least 1s",
				"Use 0 to disable auto refresh")
		}
	}

	switch cfg.Output.Color {
	case "auto", "always", "never":
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid output.color %q", cfg.Output.Color),
			"Use one of: auto, always, never")
	}

	if strings.TrimSpace(cfg.Chat.UserID) == "" {
		return errors.New(errors.ErrConfig,
			"chat.user_id is empty",
			"Set chat.user_id or pass --user")
	}

	if len(knownTags) > 0 {
		known := make(map[string]bool, len(knownTags))
		for _, t := range knownTags {
			known[t] = true
		}
		for tag := range cfg.Sources {
			if !known[tag] {
				return unknownTagError("sources", tag, knownTags)
			}
		}
		for _, tag := range cfg.Dashboard.Exclude {
			if !known[tag] {
				return unknownTagError("dashboard.exclude", tag, knownTags)
			}
		}
	}

	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid api.base_url %q", raw),
			"Use a full URL like http://localhost:8000/api")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unsupported scheme %q in api.base_url", u.Scheme),
			"Use http or https")
	}
	return nil
}

func unknownTagError(field, tag string, knownTags []string) error {
	suggestion := "Known sources: " + util.JoinOrNone(knownTags)
	if similar := util.SuggestSimilar(tag, knownTags, 1); len(similar) > 0 {
		suggestion = fmt.Sprintf("Did you mean %q? %s", similar[0], suggestion)
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown source %q in %s", tag, field),
		suggestion)
}
