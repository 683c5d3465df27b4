package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a configuration that passes Validate.
func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Twitter.BearerToken = "token"
	cfg.Query.WithoutStopWords = true
	cfg.Sampling.StartYear = 2018
	cfg.Sampling.StopYear = 2020
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.twitter.com", cfg.Twitter.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Twitter.RequestTimeout)
	assert.Equal(t, 500, cfg.Twitter.MaxResults)
	assert.Equal(t, "hourly", cfg.Sampling.Granularity)
	assert.Equal(t, 5*time.Second, cfg.Sampling.SleepDuration)
	assert.Equal(t, 61*time.Second, cfg.Sampling.RetryDuration)
	assert.Equal(t, 10*time.Millisecond, cfg.Sampling.SleepIncrement)
	assert.Equal(t, "data/responses", cfg.Output.Directory)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing bearer token", func(c *Config) { c.Twitter.BearerToken = "" }},
		{"max results too large", func(c *Config) { c.Twitter.MaxResults = 501 }},
		{"max results zero", func(c *Config) { c.Twitter.MaxResults = 0 }},
		{"bad granularity", func(c *Config) { c.Sampling.Granularity = "fortnightly" }},
		{"start year too early", func(c *Config) { c.Sampling.StartYear = 2005 }},
		{"stop year precedes start", func(c *Config) { c.Sampling.StopYear = 2010; c.Sampling.StartYear = 2012 }},
		{"negative sleep", func(c *Config) { c.Sampling.SleepDuration = -time.Second }},
		{"zero retry", func(c *Config) { c.Sampling.RetryDuration = 0 }},
		{"stop words required", func(c *Config) { c.Query.WithoutStopWords = false; c.Query.StopWordsPath = "" }},
		{"stop words wrong extension", func(c *Config) { c.Query.WithoutStopWords = false; c.Query.StopWordsPath = "words.txt" }},
		{"place without name", func(c *Config) { c.Query.LocationType = "place" }},
		{"country without code", func(c *Config) { c.Query.LocationType = "place_country" }},
		{"point radius without coordinates", func(c *Config) { c.Query.LocationType = "point_radius" }},
		{"bounding box without coordinates", func(c *Config) { c.Query.LocationType = "bounding_box" }},
		{"unknown location type", func(c *Config) { c.Query.LocationType = "zipcode" }},
		{"missing output directory", func(c *Config) { c.Output.Directory = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TWSAMPLER_BEARER_TOKEN", "env-token")
	t.Setenv("TWSAMPLER_BASE_URL", "http://localhost:8080")
	t.Setenv("TWSAMPLER_OUTPUT_DIR", "/tmp/responses")
	t.Setenv("TWSAMPLER_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-token", cfg.Twitter.BearerToken)
	assert.Equal(t, "http://localhost:8080", cfg.Twitter.BaseURL)
	assert.Equal(t, "/tmp/responses", cfg.Output.Directory)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	content := `
twitter:
  bearer_token: file-token
  max_results: 100
query:
  lang: en
  options: "-is:nullcast"
sampling:
  granularity: monthly
  start_year: 2018
  stop_year: 2020
output:
  directory: out/responses
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "file-token", cfg.Twitter.BearerToken)
	assert.Equal(t, 100, cfg.Twitter.MaxResults)
	assert.Equal(t, "en", cfg.Query.Lang)
	assert.Equal(t, "-is:nullcast", cfg.Query.Options)
	assert.Equal(t, "monthly", cfg.Sampling.Granularity)
	assert.Equal(t, 2018, cfg.Sampling.StartYear)
	assert.Equal(t, "out/responses", cfg.Output.Directory)

	// Values the file does not mention keep their defaults.
	assert.Equal(t, "https://api.twitter.com", cfg.Twitter.BaseURL)
	assert.Equal(t, 61*time.Second, cfg.Sampling.RetryDuration)
}

func TestLoadFromFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("twitter: ["), 0600))

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()

	cfg.MergeCommandLineFlags(map[string]interface{}{
		"bearer-token":   "flag-token",
		"time-range":     "weekly",
		"start-year":     2019,
		"stop-year":      2021,
		"lang":           "ja",
		"query-options":  "has:media",
		"sleep-duration": 2 * time.Second,
		"output":         "flag/out",
		"max-results":    250,
	})

	assert.Equal(t, "flag-token", cfg.Twitter.BearerToken)
	assert.Equal(t, "weekly", cfg.Sampling.Granularity)
	assert.Equal(t, 2019, cfg.Sampling.StartYear)
	assert.Equal(t, 2021, cfg.Sampling.StopYear)
	assert.Equal(t, "ja", cfg.Query.Lang)
	assert.Equal(t, "has:media", cfg.Query.Options)
	assert.Equal(t, 2*time.Second, cfg.Sampling.SleepDuration)
	assert.Equal(t, "flag/out", cfg.Output.Directory)
	assert.Equal(t, 250, cfg.Twitter.MaxResults)

	// Empty and zero values never clobber what is already set.
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"bearer-token": "",
		"start-year":   0,
	})
	assert.Equal(t, "flag-token", cfg.Twitter.BearerToken)
	assert.Equal(t, 2019, cfg.Sampling.StartYear)
}

func TestFlagPrecedenceOverFileAndEnv(t *testing.T) {
	content := "sampling:\n  granularity: monthly\n  start_year: 2018\n  stop_year: 2020\nquery:\n  without_stop_words: true\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	t.Setenv("TWSAMPLER_BEARER_TOKEN", "env-token")

	cfg, err := Load(path, map[string]interface{}{
		"bearer-token": "flag-token",
		"time-range":   "yearly",
	})
	require.NoError(t, err)

	assert.Equal(t, "flag-token", cfg.Twitter.BearerToken)
	assert.Equal(t, "yearly", cfg.Sampling.Granularity)
	assert.Equal(t, 2018, cfg.Sampling.StartYear)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := validConfig()
	cfg.Query.Lang = "pt"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg.Twitter.BearerToken, loaded.Twitter.BearerToken)
	assert.Equal(t, "pt", loaded.Query.Lang)
	assert.Equal(t, cfg.Sampling.StartYear, loaded.Sampling.StartYear)
}
