package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EarliestYear is the first year for which the platform has data.
const EarliestYear = 2006

// Config holds all configuration options for the tweet sampler
type Config struct {
	// Twitter API settings
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Query construction settings
	Query QueryConfig `yaml:"query" json:"query"`

	// Sampling run settings
	Sampling SamplingConfig `yaml:"sampling" json:"sampling"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds Twitter API configuration
type TwitterConfig struct {
	BearerToken    string        `yaml:"bearer_token" json:"bearer_token"`
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	MaxResults     int           `yaml:"max_results" json:"max_results"`
}

// QueryConfig holds query construction configuration
type QueryConfig struct {
	StopWordsPath    string `yaml:"stop_words_path" json:"stop_words_path"`
	StopWordsColumn  string `yaml:"stop_words_column" json:"stop_words_column"`
	HasHeader        bool   `yaml:"has_header" json:"has_header"`
	WithoutStopWords bool   `yaml:"without_stop_words" json:"without_stop_words"`
	Lang             string `yaml:"lang" json:"lang"`
	LocationType     string `yaml:"location_type" json:"location_type"`
	Place            string `yaml:"place" json:"place"`
	Country          string `yaml:"country" json:"country"`
	PointRadius      string `yaml:"point_radius" json:"point_radius"`
	BoundingBox      string `yaml:"bounding_box" json:"bounding_box"`
	Options          string `yaml:"options" json:"options"`
}

// SamplingConfig holds the run settings for a collection
type SamplingConfig struct {
	Granularity    string        `yaml:"granularity" json:"granularity"`
	StartYear      int           `yaml:"start_year" json:"start_year"`
	StopYear       int           `yaml:"stop_year" json:"stop_year"`
	SleepDuration  time.Duration `yaml:"sleep_duration" json:"sleep_duration"`
	RetryDuration  time.Duration `yaml:"retry_duration" json:"retry_duration"`
	SleepIncrement time.Duration `yaml:"sleep_increment" json:"sleep_increment"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			BaseURL:        "https://api.twitter.com",
			RequestTimeout: 30 * time.Second,
			MaxResults:     500,
		},
		Query: QueryConfig{},
		Sampling: SamplingConfig{
			Granularity:    "hourly",
			SleepDuration:  5 * time.Second,
			RetryDuration:  61 * time.Second,
			SleepIncrement: 10 * time.Millisecond,
		},
		Output: OutputConfig{
			Directory: "data/responses",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables.
// A .env file in the working directory is honored if present.
func (c *Config) LoadFromEnv() error {
	_ = godotenv.Load()

	if token := os.Getenv("TWSAMPLER_BEARER_TOKEN"); token != "" {
		c.Twitter.BearerToken = token
	}
	if baseURL := os.Getenv("TWSAMPLER_BASE_URL"); baseURL != "" {
		c.Twitter.BaseURL = baseURL
	}
	if outputDir := os.Getenv("TWSAMPLER_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if logLevel := os.Getenv("TWSAMPLER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".twsampler.yaml",
		".twsampler.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "twsampler", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "twsampler", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".twsampler.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Twitter.BearerToken == "" {
		errs = append(errs, errors.New("bearer token is required"))
	}
	if c.Twitter.MaxResults <= 0 || c.Twitter.MaxResults > 500 {
		errs = append(errs, errors.New("max results must be between 1 and 500"))
	}
	if c.Twitter.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	validGranularities := map[string]bool{
		"hourly": true, "daily": true, "weekly": true, "monthly": true, "yearly": true,
	}
	if !validGranularities[c.Sampling.Granularity] {
		errs = append(errs, fmt.Errorf("invalid granularity %q: must be hourly, daily, weekly, monthly or yearly", c.Sampling.Granularity))
	}
	if c.Sampling.StartYear < EarliestYear {
		errs = append(errs, fmt.Errorf("start year must be %d or later", EarliestYear))
	}
	if c.Sampling.StopYear < c.Sampling.StartYear {
		errs = append(errs, errors.New("stop year must not precede start year"))
	}
	if c.Sampling.SleepDuration < 0 {
		errs = append(errs, errors.New("sleep duration cannot be negative"))
	}
	if c.Sampling.RetryDuration <= 0 {
		errs = append(errs, errors.New("retry duration must be positive"))
	}

	if !c.Query.WithoutStopWords {
		if c.Query.StopWordsPath == "" {
			errs = append(errs, errors.New("stop words path is required unless running without stop words"))
		} else if ext := strings.ToLower(filepath.Ext(c.Query.StopWordsPath)); ext != ".csv" && ext != ".tsv" {
			errs = append(errs, fmt.Errorf("%s: is an invalid file, provide a csv or tsv", c.Query.StopWordsPath))
		}
	}

	switch c.Query.LocationType {
	case "":
	case "place":
		if c.Query.Place == "" {
			errs = append(errs, errors.New("place option was selected, provide place name"))
		}
	case "place_country":
		if c.Query.Country == "" {
			errs = append(errs, errors.New("place_country option was selected, provide country code"))
		}
	case "point_radius":
		if c.Query.PointRadius == "" {
			errs = append(errs, errors.New("point_radius was selected but no point and radius is provided"))
		}
	case "bounding_box":
		if c.Query.BoundingBox == "" {
			errs = append(errs, errors.New("bounding_box was selected but no coordinates are provided"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid location type %q", c.Query.LocationType))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["bearer-token"].(string); ok && token != "" {
		c.Twitter.BearerToken = token
	}
	if maxResults, ok := flags["max-results"].(int); ok && maxResults > 0 {
		c.Twitter.MaxResults = maxResults
	}
	if path, ok := flags["stop-words"].(string); ok && path != "" {
		c.Query.StopWordsPath = path
	}
	if column, ok := flags["stop-words-column"].(string); ok && column != "" {
		c.Query.StopWordsColumn = column
	}
	if hasHeader, ok := flags["has-header"].(bool); ok {
		c.Query.HasHeader = hasHeader
	}
	if without, ok := flags["without-stop-words"].(bool); ok {
		c.Query.WithoutStopWords = without
	}
	if lang, ok := flags["lang"].(string); ok && lang != "" {
		c.Query.Lang = lang
	}
	if lt, ok := flags["location-type"].(string); ok && lt != "" {
		c.Query.LocationType = lt
	}
	if place, ok := flags["place"].(string); ok && place != "" {
		c.Query.Place = place
	}
	if country, ok := flags["country"].(string); ok && country != "" {
		c.Query.Country = country
	}
	if pr, ok := flags["point-radius"].(string); ok && pr != "" {
		c.Query.PointRadius = pr
	}
	if bb, ok := flags["bounding-box"].(string); ok && bb != "" {
		c.Query.BoundingBox = bb
	}
	if options, ok := flags["query-options"].(string); ok && options != "" {
		c.Query.Options = options
	}
	if granularity, ok := flags["time-range"].(string); ok && granularity != "" {
		c.Sampling.Granularity = granularity
	}
	if startYear, ok := flags["start-year"].(int); ok && startYear != 0 {
		c.Sampling.StartYear = startYear
	}
	if stopYear, ok := flags["stop-year"].(int); ok && stopYear != 0 {
		c.Sampling.StopYear = stopYear
	}
	if sleep, ok := flags["sleep-duration"].(time.Duration); ok && sleep > 0 {
		c.Sampling.SleepDuration = sleep
	}
	if retry, ok := flags["retry-duration"].(time.Duration); ok && retry > 0 {
		c.Sampling.RetryDuration = retry
	}
	if dir, ok := flags["output"].(string); ok && dir != "" {
		c.Output.Directory = dir
	}
	if level, ok := flags["log-level"].(string); ok && level != "" {
		c.Logging.Level = level
	}
}

// Load composes defaults, config file, environment and command line flags,
// in increasing order of precedence, and validates the result.
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	cfg.MergeCommandLineFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
