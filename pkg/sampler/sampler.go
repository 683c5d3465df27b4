// Package sampler drives the collection run: one search request per
// time window, strictly in generation order, resumable across runs.
package sampler

import (
	"context"
	"time"

	"twsampler/pkg/config"
	"twsampler/pkg/logger"
	"twsampler/pkg/period"
	"twsampler/pkg/ratelimit"
	"twsampler/pkg/retry"
	"twsampler/pkg/twitter"
)

// Sampler orchestrates the fetch loop. Requests are sequential because
// the remote rate limit rules out parallel windows, and a window is
// retried until it succeeds or the context is cancelled.
type Sampler struct {
	client SearchClient
	store  ResponseStore
	gen    *period.Generator
	pacer  *ratelimit.AdaptivePacer
	params twitter.SearchParams
	cfg    *config.SamplingConfig
	logger logger.Logger
}

// New creates a Sampler. The search parameters, including the query
// string, are fixed for the lifetime of the run.
func New(cfg *config.SamplingConfig, params twitter.SearchParams, client SearchClient, store ResponseStore, gen *period.Generator, log logger.Logger) *Sampler {
	if log == nil {
		log = logger.GetLogger()
	}
	if gen == nil {
		gen = period.NewGenerator()
	}

	return &Sampler{
		client: client,
		store:  store,
		gen:    gen,
		pacer:  ratelimit.NewAdaptivePacer(cfg.SleepDuration, cfg.SleepIncrement),
		params: params,
		cfg:    cfg,
		logger: log,
	}
}

// Pacer exposes the run's pacing state, mainly for tests and progress
// reporting.
func (s *Sampler) Pacer() *ratelimit.AdaptivePacer {
	return s.pacer
}

// Run generates the windows for the configured range, skips the ones a
// prior run already persisted and collects the rest in order. It returns
// nil once every window is persisted, or the cancellation error if the
// context ends the run early. An interrupted run resumes cleanly: every
// persisted artifact is self-contained and the store rescans on startup.
func (s *Sampler) Run(ctx context.Context) error {
	gran, err := period.ParseGranularity(s.cfg.Granularity)
	if err != nil {
		return err
	}

	windows, err := s.gen.Generate(gran, s.cfg.StartYear, s.cfg.StopYear)
	if err != nil {
		return err
	}

	s.logger.InfoWithFields("starting collection", map[string]interface{}{
		"granularity": string(gran),
		"start_year":  s.cfg.StartYear,
		"stop_year":   s.cfg.StopYear,
		"windows":     len(windows),
	})

	collected := 0
	skipped := 0
	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			return err
		}

		if s.store.Has(w) {
			s.logger.DebugWithFields("found existing response, skipping", map[string]interface{}{
				"file": w.Filename(),
			})
			skipped++
			continue
		}

		if err := s.collectWindow(ctx, w); err != nil {
			return err
		}
		collected++
	}

	s.logger.InfoWithFields("collection complete", map[string]interface{}{
		"collected": collected,
		"skipped":   skipped,
	})

	return nil
}

// collectWindow fetches, persists and paces a single window. The fetch
// is retried without an attempt limit: every remote failure is treated
// as transient, so a permanently broken credential loops until the
// context cancels the run.
func (s *Sampler) collectWindow(ctx context.Context, w period.Window) error {
	var result *twitter.SearchResult

	policy := &retry.Config{
		MaxAttempts: 0,
		Backoff:     &retry.ConstantBackoff{Delay: s.cfg.RetryDuration},
		RetryIf:     retry.RetryAllFetchErrors,
		Context:     ctx,
		Logger:      s.logger,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			s.pacer.RecordFailure()
			s.logger.WarnWithFields("request failed", map[string]interface{}{
				"start_time":           w.StartString(),
				"end_time":             w.EndString(),
				"error":                err.Error(),
				"consecutive_failures": s.pacer.ConsecutiveFailures(),
				"next_sleep":           s.pacer.Delay(),
			})
		},
	}

	err := retry.Do(func() error {
		s.logger.InfoWithFields("requesting window", map[string]interface{}{
			"start_time": w.StartString(),
			"end_time":   w.EndString(),
		})

		r, err := s.client.Search(ctx, s.params, w)
		if err != nil {
			return err
		}
		result = r
		return nil
	}, policy)
	if err != nil {
		// Only cancellation escapes the unlimited retry loop.
		return err
	}

	s.logger.InfoWithFields("writing response", map[string]interface{}{
		"file":         w.Filename(),
		"result_count": result.Meta.ResultCount,
	})

	if err := s.store.Persist(w, result.Raw); err != nil {
		// A window must never be treated as succeeded when its
		// artifact could not be written.
		return err
	}

	s.pacer.RecordSuccess()

	return s.pacer.Wait(ctx)
}
