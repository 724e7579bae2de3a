// Package pipeline turns input records into output rows: show search, episode
// resolution and the fallback rules, fanned out over one session per worker.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"showlink/internal/cache"
	"showlink/internal/config"
	"showlink/internal/logger"
	"showlink/internal/match"
	"showlink/internal/models"
	"showlink/internal/scraper"
)

// Sink receives output rows. It must be safe for concurrent use.
type Sink interface {
	Write(rec models.OutputRecord) error
}

// Runner resolves records against the catalog.
type Runner struct {
	FallbackURL string
	Search      *scraper.SearchDriver
	Episodes    *scraper.EpisodeResolver
	Observer    Observer

	log *logger.Logger
}

// NewRunner wires a Runner from the runtime config around a shared match cache.
func NewRunner(cfg config.Config, c *cache.MatchCache, log *logger.Logger) *Runner {
	return &Runner{
		FallbackURL: cfg.Site.FallbackURL,
		Search:      scraper.NewSearchDriver(cfg, c, log),
		Episodes:    scraper.NewEpisodeResolver(cfg, log),
		log:         log.WithComponent("pipeline"),
	}
}

// Process resolves one record and always returns its output row. The target
// is the most specific URL found: episode, then a cached video link, then the
// show, then the fallback. A season page that never loaded leaves the row's
// season and episode empty. The returned error explains a degraded target and
// is nil when the record resolved as far as its fields allow.
func (r *Runner) Process(ctx context.Context, s *scraper.Session, rec models.SearchRecord) (models.OutputRecord, error) {
	term := match.SearchTerm(rec.Show)
	if term == "" {
		return models.NewOutputRecord(rec, r.FallbackURL, models.TargetFallback), models.ErrNotFound
	}

	showURL, err := r.Search.ResolveShow(ctx, s.Search, term)
	if err != nil {
		r.logger().Warn().Err(err).Str("show", term).Str("target", r.FallbackURL).Msg("using fallback")
		return models.NewOutputRecord(rec, r.FallbackURL, models.TargetFallback), err
	}

	if strings.Contains(showURL, scraper.VideoPathMarker) {
		return models.NewOutputRecord(rec, showURL, models.TargetVideo), nil
	}

	if !rec.HasEpisode() {
		return models.NewOutputRecord(rec, showURL, models.TargetShow), nil
	}

	episodeURL, err := r.Episodes.Resolve(ctx, s.Seasons, showURL, *rec.Season, *rec.Episode)
	if err != nil {
		r.logger().Warn().
			Err(err).
			Str("show", term).
			Int("season", *rec.Season).
			Int("episode", *rec.Episode).
			Msg("using show link")
		out := models.NewOutputRecord(rec, showURL, models.TargetShow)
		var nav *models.NavigationError
		if errors.As(err, &nav) {
			out.Season, out.Episode = nil, nil
		}
		return out, err
	}

	return models.NewOutputRecord(rec, episodeURL, models.TargetEpisode), nil
}

// Run processes records with one worker per session and writes every output
// row to sink as it completes, so row order follows completion order.
// A failed write is logged and the batch continues. Run stops early only when
// ctx is cancelled, in which case unfinished records produce no row.
func (r *Runner) Run(ctx context.Context, sessions []*scraper.Session, records []models.SearchRecord, sink Sink) (models.Summary, error) {
	if len(sessions) == 0 {
		return models.Summary{}, errors.New("no sessions")
	}

	obs := r.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	start := time.Now()
	obs.OnStart(len(records))
	r.logger().Info().Int("records", len(records)).Int("workers", len(sessions)).Msg("batch started")

	var (
		mu      sync.Mutex
		summary models.Summary
	)

	queue := make(chan models.SearchRecord)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(queue)
		for _, rec := range records {
			select {
			case queue <- rec:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for _, s := range sessions {
		g.Go(func() error {
			for rec := range queue {
				out, procErr := r.Process(gctx, s, rec)
				if err := gctx.Err(); err != nil {
					return err
				}

				writeErr := sink.Write(out)
				if writeErr != nil {
					r.logger().Error().Err(writeErr).Str("show", rec.Show).Str("title", rec.Title).Msg("failed to write output row")
				}

				mu.Lock()
				if writeErr == nil {
					summary.Add(out)
				}
				if writeErr != nil || isHardError(procErr) {
					summary.Errors++
				}
				mu.Unlock()

				obs.OnRecordDone(out, procErr)
			}
			return nil
		})
	}

	err := g.Wait()
	summary.Duration = time.Since(start)

	if err != nil {
		return summary, fmt.Errorf("batch interrupted: %w", err)
	}

	r.logger().Info().
		Int("total", summary.Total).
		Int("episode", summary.Episode).
		Int("video", summary.Video).
		Int("show", summary.Show).
		Int("fallback", summary.Fallback).
		Int("errors", summary.Errors).
		Dur("duration", summary.Duration).
		Msg("batch finished")

	return summary, nil
}

// isHardError reports whether err is a failure rather than an expected miss.
func isHardError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, models.ErrNoConfidentMatch) ||
		errors.Is(err, models.ErrEpisodeNotFound) {
		return false
	}
	var notFound *models.ElementNotFoundError
	return !errors.As(err, &notFound)
}

func (r *Runner) logger() *logger.Logger {
	if r.log == nil {
		return logger.Nop()
	}
	return r.log
}
