package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"twsampler/pkg/auth"
	"twsampler/pkg/config"
	"twsampler/pkg/logger"
	"twsampler/pkg/period"
	"twsampler/pkg/query"
	"twsampler/pkg/sampler"
	"twsampler/pkg/stopwords"
	"twsampler/pkg/store"
	"twsampler/pkg/twitter"
	"twsampler/pkg/validate"
)

var (
	// sample command flags
	bearerToken      string
	accountName      string
	stopWordsPath    string
	stopWordsColumn  string
	hasHeader        bool
	withoutStopWords bool
	timeRange        string
	lang             string
	queryOptions     string
	locationType     string
	place            string
	country          string
	pointRadius      string
	boundingBox      string
	startYear        int
	stopYear         int
	outputDir        string
	sleepSeconds     float64
	retrySeconds     float64
	maxResults       int
)

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Collect tweets for every window of the given year range",
	Long: `Collect historical tweets matching the stop-word filter, one search
request per time window, writing one response file per window to the
output directory.

Runs resume automatically: windows whose response file already exists
are skipped. Failed requests are retried indefinitely with a fixed pause,
and the inter-request pause grows slightly after every failure for the
remainder of the run. Interrupt with Ctrl-C; the run can be restarted
later without losing completed windows.`,
	Example: `  # Hourly windows for 2022, Hausa stop words
  twsampler sample --stop-words hausa-stopwords.csv --query-options "-is:retweet" \
      --start-year 2022 --stop-year 2022

  # Weekly English windows with media, custom pacing
  twsampler sample --stop-words words.tsv --lang en --time-range weekly \
      --query-options has:media --start-year 2020 --stop-year 2021 \
      --sleep-duration 3 --retry-duration 61

  # Geographic sampling without stop words
  twsampler sample --without-stopwords --query-options has:geo \
      --location-type bounding_box --bounding-box "-74.3 40.5 -73.7 40.9" \
      --start-year 2019 --stop-year 2019`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSample(cmd)
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	sampleCmd.Flags().StringVar(&bearerToken, "bearer-token", "", "API bearer token (overrides stored credentials)")
	sampleCmd.Flags().StringVarP(&accountName, "account", "a", "default", "stored credential to use")
	sampleCmd.Flags().StringVar(&stopWordsPath, "stop-words", "", "path to the stop words csv or tsv file")
	sampleCmd.Flags().StringVar(&stopWordsColumn, "stop-words-column", "", "stop words column name (requires --has-header)")
	sampleCmd.Flags().BoolVar(&hasHeader, "has-header", false, "the lexicon file has a header row")
	sampleCmd.Flags().BoolVar(&withoutStopWords, "without-stopwords", false, "crawl without stop words")
	sampleCmd.Flags().StringVar(&timeRange, "time-range", "hourly", "window granularity: hourly, daily, weekly, monthly or yearly")
	sampleCmd.Flags().StringVar(&lang, "lang", "", "language code filter")
	sampleCmd.Flags().StringVar(&queryOptions, "query-options", "", "query options appended verbatim, e.g. has:media")
	sampleCmd.Flags().StringVar(&locationType, "location-type", "", "geo filter: place, place_country, point_radius or bounding_box")
	sampleCmd.Flags().StringVar(&place, "place", "", "place name for the place filter")
	sampleCmd.Flags().StringVar(&country, "country", "", "country code for the place_country filter")
	sampleCmd.Flags().StringVar(&pointRadius, "point-radius", "", `"long. lat. radius" for the point_radius filter`)
	sampleCmd.Flags().StringVar(&boundingBox, "bounding-box", "", `"west_long south_lat east_long north_lat" for the bounding_box filter`)
	sampleCmd.Flags().IntVar(&startYear, "start-year", 0, "year to start collection from")
	sampleCmd.Flags().IntVar(&stopYear, "stop-year", 0, "year to stop collection")
	sampleCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for storing responses")
	sampleCmd.Flags().Float64Var(&sleepSeconds, "sleep-duration", 0, "seconds to wait between requests")
	sampleCmd.Flags().Float64Var(&retrySeconds, "retry-duration", 0, "seconds to wait after a failed request")
	sampleCmd.Flags().IntVar(&maxResults, "max-results", 0, "results per request (up to 500)")

	_ = sampleCmd.MarkFlagRequired("start-year")
	_ = sampleCmd.MarkFlagRequired("stop-year")
	_ = sampleCmd.MarkFlagRequired("query-options")
}

func runSample(cmd *cobra.Command) error {
	cmd.SilenceUsage = true

	flags := map[string]interface{}{
		"bearer-token":       bearerToken,
		"stop-words":         stopWordsPath,
		"stop-words-column":  stopWordsColumn,
		"lang":               lang,
		"query-options":      queryOptions,
		"location-type":      locationType,
		"place":              place,
		"country":            country,
		"point-radius":       pointRadius,
		"bounding-box":       boundingBox,
		"time-range":         timeRange,
		"start-year":         startYear,
		"stop-year":          stopYear,
		"output":             outputDir,
		"max-results":        maxResults,
		"sleep-duration":     time.Duration(sleepSeconds * float64(time.Second)),
		"retry-duration":     time.Duration(retrySeconds * float64(time.Second)),
		"log-level":          logLevel,
	}
	if cmd.Flags().Changed("has-header") {
		flags["has-header"] = hasHeader
	}
	if cmd.Flags().Changed("without-stopwords") {
		flags["without-stop-words"] = withoutStopWords
	}

	// The bearer token may come from stored credentials; resolve before
	// validating.
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.MergeCommandLineFlags(flags)

	if cfg.Twitter.BearerToken == "" {
		credManager, err := auth.NewManager()
		if err == nil {
			if cred, err := credManager.Retrieve(accountName); err == nil {
				cfg.Twitter.BearerToken = cred.BearerToken
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("twsampler starting")

	// Stop words
	var words []string
	if !cfg.Query.WithoutStopWords {
		var err error
		words, err = stopwords.Load(cfg.Query.StopWordsPath, stopwords.Options{
			Column:    cfg.Query.StopWordsColumn,
			HasHeader: cfg.Query.HasHeader,
		})
		if err != nil {
			return fmt.Errorf("failed to load stop words: %w", err)
		}
		log.WithField("count", len(words)).Info("stop words loaded")
	}

	// Language filter
	langCode := ""
	if cfg.Query.Lang != "" {
		var err error
		langCode, err = validate.LanguageCode(cfg.Query.Lang)
		if err != nil {
			return err
		}
	}

	// Geo filter
	geo, err := buildGeoFilter(&cfg.Query)
	if err != nil {
		return err
	}

	// The query is fixed for the whole run; an over-length query aborts
	// before any request is issued.
	q, err := query.Build(words, langCode, geo, cfg.Query.Options)
	if err != nil {
		return err
	}
	log.InfoWithFields("query built", map[string]interface{}{
		"query":  q,
		"length": len(q),
	})

	responseStore, err := store.NewManager(cfg.Output.Directory)
	if err != nil {
		return err
	}
	log.InfoWithFields("response store ready", map[string]interface{}{
		"directory":         responseStore.OutputDir(),
		"already_collected": responseStore.CollectedCount(),
	})

	client := twitter.NewClient(cfg.Twitter.BearerToken, cfg.Twitter.RequestTimeout, log)
	if cfg.Twitter.BaseURL != "" {
		client.SetBaseURL(cfg.Twitter.BaseURL)
	}

	params := twitter.DefaultSearchParams(q, cfg.Twitter.MaxResults)
	s := sampler.New(&cfg.Sampling, params, client, responseStore, period.NewGenerator(), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx); err != nil {
		if ctx.Err() != nil {
			log.Warn("collection interrupted, rerun to resume")
		}
		return err
	}

	return nil
}

// buildGeoFilter constructs the geo constraint from the validated
// configuration. At most one filter is produced.
func buildGeoFilter(qc *config.QueryConfig) (query.GeoFilter, error) {
	switch qc.LocationType {
	case "":
		return nil, nil
	case "place":
		f, err := query.NewPlace(qc.Place)
		if err != nil {
			return nil, err
		}
		return f, nil
	case "place_country":
		code, err := validate.CountryCode(qc.Country)
		if err != nil {
			return nil, err
		}
		f, err := query.NewPlaceCountry(code)
		if err != nil {
			return nil, err
		}
		return f, nil
	case "point_radius":
		f, err := query.ParsePointRadius(qc.PointRadius)
		if err != nil {
			return nil, err
		}
		return f, nil
	case "bounding_box":
		f, err := query.ParseBoundingBox(qc.BoundingBox)
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return nil, fmt.Errorf("invalid location type %q", qc.LocationType)
	}
}
