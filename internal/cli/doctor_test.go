package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/storelens/internal/doctor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a minimal .storelens.yaml pointing at baseURL and
// returns its path.
func writeConfig(t *testing.T, dir, baseURL string) string {
	t.Helper()
	content := "version: 1\napi:\n  base_url: " + baseURL + "\n  timeout: 2s\nstore:\n  default: s1\n"
	path := filepath.Join(dir, ".storelens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func categoryCounts(checks []doctor.Check) map[string]int {
	counts := make(map[string]int)
	for _, c := range checks {
		counts[c.Category()]++
	}
	return counts
}

func TestCollectChecks_WithConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "http://127.0.0.1:1/api")

	counts := categoryCounts(collectChecks(path, ""))

	assert.Equal(t, 3, counts["CONFIG"])
	assert.Equal(t, 8, counts["SOURCES"], "one check per metric source")
	assert.Equal(t, 1, counts["SHOPPER"])
}

func TestCollectChecks_DisabledSourcesSkipped(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "http://127.0.0.1:1/api")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("sources:\n  sentiment:\n    disabled: true\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	counts := categoryCounts(collectChecks(path, ""))
	assert.Equal(t, 7, counts["SOURCES"])
}

func TestCollectChecks_InvalidConfigOnlyChecksConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "not-a-url")

	counts := categoryCounts(collectChecks(path, ""))

	assert.Equal(t, 3, counts["CONFIG"])
	assert.Zero(t, counts["SOURCES"])
	assert.Zero(t, counts["SHOPPER"])
}

func TestCollectChecks_MissingExplicitPath(t *testing.T) {
	checks := collectChecks(filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.Len(t, checks, 3)
}

func TestDoctor_BackendDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	path := writeConfig(t, t.TempDir(), srv.URL+"/api")
	results := doctor.RunAllParallel(context.Background(), collectChecks(path, "s2"))

	for _, r := range results {
		switch r.Category {
		case "SOURCES":
			assert.Equal(t, doctor.StatusFail, r.Status, r.Name)
		case "SHOPPER":
			assert.Equal(t, doctor.StatusWarn, r.Status, "catalog failures only warn")
		}
	}
	assert.True(t, doctor.HasFailures(results))
}

func TestGroupResults(t *testing.T) {
	results := []doctor.CheckResult{
		{Category: "CONFIG", Message: "a"},
		{Category: "SOURCES", Message: "b"},
		{Category: "CONFIG", Message: "c"},
	}

	groups := groupResults(results)

	require.Len(t, groups, 2)
	assert.Equal(t, "CONFIG", groups[0].Name)
	assert.Len(t, groups[0].Results, 2)
	assert.Equal(t, "SOURCES", groups[1].Name)
}

func TestGroupResults_Empty(t *testing.T) {
	assert.Empty(t, groupResults(nil))
}

func TestOutputDoctorJSON(t *testing.T) {
	results := []doctor.CheckResult{
		{Name: "config_file", Category: "CONFIG", Status: doctor.StatusPass, Message: "Config file: .storelens.yaml"},
		{Name: "source_forecast", Category: "SOURCES", Status: doctor.StatusWarn, Message: "forecast: 2.5s (slow)", Suggestion: "Raise api.timeout"},
		{Name: "source_sentiment", Category: "SOURCES", Status: doctor.StatusFail, Message: "sentiment: 500"},
	}

	var buf bytes.Buffer
	require.NoError(t, outputDoctorJSON(&buf, results))

	var decoded struct {
		Categories []struct {
			Name    string `json:"name"`
			Results []struct {
				Name   string `json:"name"`
				Status string `json:"status"`
			} `json:"results"`
		} `json:"categories"`
		Summary SummaryOutput `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	require.Len(t, decoded.Categories, 2)
	assert.Equal(t, "SOURCES", decoded.Categories[1].Name)
	assert.Equal(t, "warn", decoded.Categories[1].Results[0].Status)
	assert.Equal(t, SummaryOutput{Pass: 1, Warn: 1, Fail: 1}, decoded.Summary)
}

func TestOutputDoctorJSON_AllClear(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputDoctorJSON(&buf, []doctor.CheckResult{{Category: "CONFIG", Status: doctor.StatusPass}}))
	assert.Contains(t, buf.String(), `"all_clear": true`)
}

func TestOutputDoctorText(t *testing.T) {
	results := []doctor.CheckResult{
		{Category: "CONFIG", Status: doctor.StatusPass, Message: "Config file: .storelens.yaml"},
		{Category: "SHOPPER", Status: doctor.StatusWarn, Message: "Catalog search unavailable", Suggestion: "storelens chat and search need the catalog endpoint"},
	}

	var buf bytes.Buffer
	require.NoError(t, outputDoctorText(&buf, results))
	out := buf.String()

	assert.Contains(t, out, "storelens diagnostic report")
	assert.Contains(t, out, "CONFIG")
	assert.Contains(t, out, "SHOPPER")
	assert.Contains(t, out, "storelens chat and search need the catalog endpoint")
	assert.Contains(t, out, "1 issue found")
}

func TestOutputDoctorText_AllGood(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputDoctorText(&buf, []doctor.CheckResult{{Category: "CONFIG", Status: doctor.StatusPass, Message: "ok"}}))
	assert.Contains(t, buf.String(), "Everything looks good")
}
