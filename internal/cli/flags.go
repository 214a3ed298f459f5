package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/storelens/internal/errors"
)

// minInterval keeps auto refresh from hammering the backend.
const minInterval = time.Second

// parseInterval parses a refresh interval flag. Empty returns def; "0"
// disables auto refresh.
func parseInterval(flag string, def time.Duration) (time.Duration, error) {
	if flag == "" {
		return def, nil
	}
	if flag == "0" {
		return 0, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 30s, 2m, or 0 to turn auto refresh off.")
	}
	if d < 0 {
		return 0, errors.New(errors.ErrConfig,
			"Interval can't be negative",
			"Use 0 to turn auto refresh off.")
	}
	if d < minInterval {
		return 0, errors.New(errors.ErrConfig,
			"Interval too short",
			"Minimum interval is 1s to avoid overwhelming the analytics API")
	}
	return d, nil
}

// parseStores splits a comma-separated store list, dropping blanks and
// duplicates. first, when set, is moved to the front.
func parseStores(flag, first string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	add(first)
	for _, s := range strings.Split(flag, ",") {
		add(s)
	}
	return out
}
