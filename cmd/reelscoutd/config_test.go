package main_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	main "github.com/fwojciec/reelscout/cmd/reelscoutd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reelscout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("uses defaults without a file", func(t *testing.T) {
		t.Setenv(main.ConfigPathEnvVar, "")

		cfg, err := main.LoadConfig("")

		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, 2, cfg.Scrape.Concurrency)
		assert.Equal(t, 3, cfg.Scrape.MaxRetries)
		assert.Equal(t, "none", cfg.Fetch.Enhanced.Mode)
		assert.Equal(t, 6*time.Hour, cfg.Schedule.ScrapeInterval)
		assert.Equal(t, "weighted", cfg.Recommend.Strategy)
		assert.Equal(t, 3, cfg.Recommend.TargetYearWindow)
		assert.Empty(t, cfg.Sources)
	})

	t.Run("reads YAML file", func(t *testing.T) {
		path := writeConfig(t, `
server:
  api_key: secret
scrape:
  concurrency: 4
fetch:
  timeout: 10s
recommend:
  strategy: recent
sources:
  - id: dramacool
    active: false
  - id: local
    name: Local
    base_url: http://127.0.0.1:9999
    content_type: drama
    list_paths: ["/latest"]
    selectors:
      item: ["li"]
      title: ["h3"]
`)

		cfg, err := main.LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "secret", cfg.Server.APIKey)
		assert.Equal(t, 4, cfg.Scrape.Concurrency)
		assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, "recent", cfg.Recommend.Strategy)
		assert.Equal(t, 3, cfg.Scrape.MaxRetries, "unset keys keep defaults")

		require.Len(t, cfg.Sources, 2)
		require.NotNil(t, cfg.Sources[0].Active)
		assert.False(t, *cfg.Sources[0].Active)
		assert.Equal(t, []string{"li"}, cfg.Sources[1].Selectors["item"])
		assert.Equal(t, []string{"/latest"}, cfg.Sources[1].ListPaths)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfig(t, `
server:
  api_key: from-file
scrape:
  concurrency: 4
`)
		t.Setenv("REELSCOUT_SERVER_API_KEY", "from-env")
		t.Setenv("REELSCOUT_SCRAPE_CONCURRENCY", "6")
		t.Setenv("REELSCOUT_SCHEDULE_TASK_INTERVAL", "5s")
		t.Setenv("REELSCOUT_FETCH_ENHANCED_MODE", "render")
		t.Setenv("REELSCOUT_FETCH_ENHANCED_API_URL", "https://render.example/v1")
		t.Setenv("REELSCOUT_FETCH_ENHANCED_API_KEY", "render-key")

		cfg, err := main.LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Server.APIKey)
		assert.Equal(t, 6, cfg.Scrape.Concurrency)
		assert.Equal(t, 5*time.Second, cfg.Schedule.TaskInterval)
		assert.Equal(t, "render", cfg.Fetch.Enhanced.Mode)
		assert.Equal(t, "https://render.example/v1", cfg.Fetch.Enhanced.APIURL)
		assert.Equal(t, "render-key", cfg.Fetch.Enhanced.APIKey)
	})

	t.Run("reads file named by environment", func(t *testing.T) {
		path := writeConfig(t, "server:\n  addr: \":9090\"\n")
		t.Setenv(main.ConfigPathEnvVar, path)

		cfg, err := main.LoadConfig("")

		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Server.Addr)
	})

	t.Run("rejects unknown strategy", func(t *testing.T) {
		path := writeConfig(t, "recommend:\n  strategy: random\n")

		_, err := main.LoadConfig(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Strategy")
	})

	t.Run("accepts only documented enhanced modes", func(t *testing.T) {
		for _, mode := range []string{"none", "browser"} {
			cfg, err := main.LoadConfig(writeConfig(t, "fetch:\n  enhanced:\n    mode: "+mode+"\n"))
			require.NoError(t, err, mode)
			assert.Equal(t, mode, cfg.Fetch.Enhanced.Mode)
		}
		for _, mode := range []string{"rod", "api"} {
			_, err := main.LoadConfig(writeConfig(t, "fetch:\n  enhanced:\n    mode: "+mode+"\n"))
			require.Error(t, err, mode)
			assert.Contains(t, err.Error(), "Mode")
		}
	})

	t.Run("render mode requires an API URL", func(t *testing.T) {
		path := writeConfig(t, "fetch:\n  enhanced:\n    mode: render\n    api_key: k\n")

		_, err := main.LoadConfig(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "APIURL")
	})

	t.Run("rejects out of range concurrency", func(t *testing.T) {
		path := writeConfig(t, "scrape:\n  concurrency: 0\n")

		_, err := main.LoadConfig(path)

		require.Error(t, err)
	})

	t.Run("fails for missing explicit file", func(t *testing.T) {
		_, err := main.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

		require.Error(t, err)
	})
}
