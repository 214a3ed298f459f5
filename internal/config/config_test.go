package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/storelens/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 0, cfg.API.Retries)
	assert.Equal(t, "s1", cfg.Store.Default)
	assert.Equal(t, 7, cfg.Forecast.Horizon)
	assert.Equal(t, "30s", cfg.Dashboard.Interval)
	assert.Equal(t, "shopper123", cfg.Chat.UserID)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Equal(t, "₹", cfg.Output.Currency)
	assert.NotNil(t, cfg.Sources)
	assert.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)

	content := `
version: 1
api:
  base_url: https://analytics.example.com/api/
  timeout: 3s
  retries: 2
store:
  default: s2
  known: [s1, s2, s3]
forecast:
  horizon: 14
dashboard:
  interval: 1m
  exclude: [sentiment]
sources:
  persona-insights:
    path: /analytics/v2/personas
  market-basket:
    disabled: true
output:
  currency: "$"
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "https://analytics.example.com/api", cfg.API.BaseURL, "trailing slash is trimmed")
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.API.Retries)
	assert.Equal(t, "s2", cfg.Store.Default)
	assert.Equal(t, []string{"s2", "s1", "s3"}, cfg.Stores())
	assert.Equal(t, 14, cfg.Forecast.Horizon)
	assert.Equal(t, time.Minute, cfg.RefreshInterval())
	assert.Equal(t, []string{"sentiment"}, cfg.Dashboard.Exclude)
	assert.Equal(t, "/analytics/v2/personas", cfg.Sources["persona-insights"].Path)
	assert.True(t, cfg.Sources["market-basket"].Disabled)
	assert.Equal(t, "$", cfg.Output.Currency)
	assert.Equal(t, "shopper123", cfg.Chat.UserID, "unset keys keep defaults")
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1\n"), 0644))

	t.Setenv("STORELENS_API_BASE_URL", "http://10.0.0.5:9000/api")
	t.Setenv("STORELENS_STORE_DEFAULT", "s9")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000/api", cfg.API.BaseURL)
	assert.Equal(t, "s9", cfg.Store.Default)
}

func TestLoad_TokenExpansion(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("api:\n  token: ${SHOP_TOKEN}\n"), 0644))

	t.Setenv("SHOP_TOKEN", "secret-123")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "secret-123", cfg.API.Token)
}

func TestFind_Explicit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	found, err := Find(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	_, err = Find(filepath.Join(dir, "nope.yaml"))
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFind_WalksParents(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("version: 1\n"), 0644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	t.Chdir(nested)

	found, err := Find("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ConfigFileName), found)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, LoadDotEnv(), "missing .env is not an error")

	require.NoError(t, os.WriteFile(".env", []byte("STORELENS_TEST_DOTENV=from-file\n"), 0644))
	t.Setenv("STORELENS_TEST_DOTENV", "")
	os.Unsetenv("STORELENS_TEST_DOTENV")

	require.NoError(t, LoadDotEnv())
	assert.Equal(t, "from-file", os.Getenv("STORELENS_TEST_DOTENV"))
}

func TestRefreshInterval(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"2m", 2 * time.Minute},
		{"0", 0},
		{"", 30 * time.Second},
		{"garbage", 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Dashboard.Interval = tt.in
			assert.Equal(t, tt.want, cfg.RefreshInterval())
		})
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("SL_A", "alpha")

	assert.Equal(t, "alpha", ExpandEnv("${SL_A}"))
	assert.Equal(t, "x-alpha-y", ExpandEnv("x-${SL_A}-y"))
	assert.Equal(t, "", ExpandEnv("${SL_UNSET_VAR}"))
	assert.Equal(t, "pa$$word", ExpandEnv("pa$$word"))
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, filepath.Join(home, "logs/x.log"), ExpandTilde("~/logs/x.log"))
	assert.Equal(t, "/abs", ExpandTilde("/abs"))
	assert.Equal(t, "", ExpandTilde(""))
}
