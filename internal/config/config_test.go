package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Fetch.Attempts)
	assert.Equal(t, 600*time.Millisecond, cfg.Fetch.BaseDelay)
	assert.Equal(t, []string{"", "150", "200", "250"}, cfg.Discovery.Bands)
	assert.Equal(t, 220, cfg.Ranking.MaxRecords)
	assert.Equal(t, "colleges.json", cfg.Output.Path)
	assert.Equal(t, "UTC", cfg.Scheduler.Location().String())
	assert.False(t, cfg.Notifications.Telegram.Enabled())
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
logging:
  format: json
fetch:
  attempts: 5
  baseDelay: 1s
discovery:
  year: 2023
  categories: [Engineering, Law]
  cache:
    kind: database
extraction:
  scanAllTables: true
  states: [Bavaria]
ranking:
  maxRecords: -1
output:
  format: yaml
  path: out/colleges.yaml
scheduler:
  interval: 6h
  timezone: Asia/Kolkata
endpoints:
  overrides:
    Medical: ["https://example.org/medical.json"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Fetch.Attempts)
	assert.Equal(t, time.Second, cfg.Fetch.BaseDelay)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 2023, cfg.Discovery.Year)
	assert.Equal(t, []string{"Engineering", "Law"}, cfg.Discovery.Categories)
	assert.Equal(t, "database", cfg.Discovery.Cache.Kind)
	assert.Equal(t, "nirf_discovered_endpoints.json", cfg.Discovery.Cache.Path)
	assert.True(t, cfg.Extraction.ScanAllTables)
	assert.Equal(t, []string{"Bavaria"}, cfg.Extraction.States)
	assert.Equal(t, 6, cfg.Extraction.SampleRows)
	assert.Equal(t, -1, cfg.Ranking.MaxRecords)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 6*time.Hour, cfg.Scheduler.Interval)
	assert.Equal(t, "Asia/Kolkata", cfg.Scheduler.Location().String())
	assert.Equal(t, []string{"https://example.org/medical.json"}, cfg.Endpoints.Overrides["Medical"])
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(databaseDSNEnv, "postgres://u:p@db/rankings")
	t.Setenv(telegramTokenEnv, "token")
	t.Setenv(telegramChatIDEnv, "chat")
	t.Setenv(logLevelEnv, "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/rankings", cfg.Database.DSN)
	assert.True(t, cfg.Notifications.Telegram.Enabled())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"driver":   "database:\n  driver: mysql\n",
		"format":   "output:\n  format: xml\n",
		"timezone": "scheduler:\n  timezone: Mars/Olympus\n",
		"syntax":   "fetch: [",
		"cache":    "discovery:\n  cache:\n    kind: redis\n",
	}
	for name, body := range cases {
		_, err := Load(writeConfig(t, body))
		assert.Error(t, err, name)
	}
}
