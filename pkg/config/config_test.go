package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 10000, cfg.Scrape.MessageLimit)
	assert.Equal(t, 100, cfg.Scrape.PageSize)
	assert.Empty(t, cfg.Scrape.FileTypes)

	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 3, cfg.RateLimit.MaxFloodWaits)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.FloodWaitCeiling)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.DefaultFloodWait)

	assert.Equal(t, 3, cfg.Retry.MaxAttempts)

	assert.Equal(t, "scraped_files.csv", cfg.Output.Path)
	assert.False(t, cfg.Output.JSON)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TGSCRAPER_API_ID", "1234567")
	t.Setenv("TGSCRAPER_API_HASH", "abcdef")
	t.Setenv("TGSCRAPER_PHONE", "+15550001111")
	t.Setenv("TGSCRAPER_MESSAGE_LIMIT", "500")
	t.Setenv("TGSCRAPER_REQUESTS_PER_MINUTE", "30")
	t.Setenv("TGSCRAPER_OUTPUT", "env_output.csv")
	t.Setenv("TGSCRAPER_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 1234567, cfg.Telegram.APIID)
	assert.Equal(t, "abcdef", cfg.Telegram.APIHash)
	assert.Equal(t, "+15550001111", cfg.Telegram.Phone)
	assert.Equal(t, 500, cfg.Scrape.MessageLimit)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "env_output.csv", cfg.Output.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
telegram:
  api_id: 7654321
  api_hash: "filehash"
scrape:
  message_limit: 2500
  page_size: 50
  file_types: [".pdf", ".zip"]
output:
  path: "file_output.csv"
  json: true
logging:
  level: "warn"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, 7654321, cfg.Telegram.APIID)
	assert.Equal(t, "filehash", cfg.Telegram.APIHash)
	assert.Equal(t, 2500, cfg.Scrape.MessageLimit)
	assert.Equal(t, 50, cfg.Scrape.PageSize)
	assert.Equal(t, []string{".pdf", ".zip"}, cfg.Scrape.FileTypes)
	assert.Equal(t, "file_output.csv", cfg.Output.Path)
	assert.True(t, cfg.Output.JSON)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Untouched sections keep their defaults
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()

	cfg.MergeCommandLineFlags(map[string]interface{}{
		"limit":      500,
		"output":     "flag_output.csv",
		"types":      []string{".pdf"},
		"json":       true,
		"rate-limit": 20,
		"log-level":  "debug",
	})

	assert.Equal(t, 500, cfg.Scrape.MessageLimit)
	assert.Equal(t, "flag_output.csv", cfg.Output.Path)
	assert.Equal(t, []string{".pdf"}, cfg.Scrape.FileTypes)
	assert.True(t, cfg.Output.JSON)
	assert.Equal(t, 20, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestFlagsOverrideEnvAndFile(t *testing.T) {
	t.Setenv("TGSCRAPER_OUTPUT", "env.csv")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  path: file.csv\n"), 0644))

	cfg, err := Load(path, map[string]interface{}{"output": "flag.csv"})
	require.NoError(t, err)
	assert.Equal(t, "flag.csv", cfg.Output.Path)

	// Without a flag, env beats file
	cfg, err = Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "env.csv", cfg.Output.Path)
}

func TestValidate(t *testing.T) {
	valid := func() *Config { return DefaultConfig() }

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative message limit", func(c *Config) { c.Scrape.MessageLimit = -1 }},
		{"zero page size", func(c *Config) { c.Scrape.PageSize = 0 }},
		{"oversized page", func(c *Config) { c.Scrape.PageSize = 500 }},
		{"zero rate limit", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }},
		{"zero flood waits", func(c *Config) { c.RateLimit.MaxFloodWaits = 0 }},
		{"zero retry attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }},
		{"empty output path", func(c *Config) { c.Output.Path = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"dotless file type", func(c *Config) { c.Scrape.FileTypes = []string{"pdf"} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	// Credentials are optional at validation time
	cfg := valid()
	cfg.Telegram.APIID = 0
	cfg.Telegram.APIHash = ""
	assert.NoError(t, cfg.Validate())
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved", "config.yaml")

	cfg := DefaultConfig()
	cfg.Scrape.MessageLimit = 777
	cfg.Scrape.FileTypes = []string{".pdf"}
	require.NoError(t, cfg.Save(path))

	reloaded := DefaultConfig()
	require.NoError(t, reloaded.LoadFromFile(path))
	assert.Equal(t, 777, reloaded.Scrape.MessageLimit)
	assert.Equal(t, []string{".pdf"}, reloaded.Scrape.FileTypes)
}
