package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"showlink/internal/cache"
	"showlink/internal/config"
	"showlink/internal/logger"
	"showlink/internal/match"
	"showlink/internal/models"
)

// SearchPage is the part of a browser page the search driver needs.
type SearchPage interface {
	// OpenSearch loads the search page with an empty input.
	OpenSearch(ctx context.Context, searchURL string) error
	// TypeChar appends one character to the search input.
	TypeChar(ctx context.Context, ch string) error
	// ResultLinks returns the hrefs currently listed as results.
	ResultLinks(ctx context.Context) ([]string, error)
}

// LinkFilter keeps show links and drops pagination sentinels.
type LinkFilter struct {
	ShowPath string
	Exclude  []string
}

// Apply returns the links containing ShowPath and none of Exclude, deduplicated
// and in their original order.
func (f LinkFilter) Apply(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, link := range links {
		link = strings.TrimSpace(link)
		if link == "" || !strings.Contains(link, f.ShowPath) || ContainsAny(link, f.Exclude) {
			continue
		}
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		out = append(out, link)
	}
	return out
}

// SearchDriver resolves a show name to a catalog URL through the site's
// type-ahead search, one keystroke at a time.
type SearchDriver struct {
	SearchURL       string
	Filter          LinkFilter
	Scorer          match.Scorer
	Cache           *cache.MatchCache
	MinSearchLength int
	Debounce        time.Duration
	Retry           RetryPolicy

	log   *logger.Logger
	sleep func(context.Context, time.Duration) error
}

// NewSearchDriver builds a SearchDriver from the runtime config.
func NewSearchDriver(cfg config.Config, c *cache.MatchCache, log *logger.Logger) *SearchDriver {
	return &SearchDriver{
		SearchURL:       cfg.Site.SearchURL,
		Filter:          LinkFilter{ShowPath: cfg.Search.ShowPath, Exclude: cfg.Search.ExcludePatterns},
		Scorer:          match.NewScorer(cfg.Match.MinConfidence, cfg.Site.ShowsURL),
		Cache:           c,
		MinSearchLength: cfg.Match.MinSearchLength,
		Debounce:        cfg.Match.Debounce,
		Retry:           RetryPolicyFromConfig(cfg.Retry),
		log:             log.WithComponent("search"),
		sleep:           sleepContext,
	}
}

// ResolveShow returns the catalog URL for show.
//
// Terms already known are answered from the cache without touching the page.
// Otherwise the term is typed one character at a time, waiting Debounce after
// each keystroke, and the filtered results are scored. The first confident
// match ends the search and is recorded in the cache. If the results go empty
// once more than MinSearchLength characters are typed, the term is marked not
// found and ErrNotFound is returned. Typing the whole term without a confident
// match returns ErrNoConfidentMatch and leaves the term unmarked.
func (d *SearchDriver) ResolveShow(ctx context.Context, page SearchPage, show string) (string, error) {
	term := match.SearchTerm(show)
	if term == "" {
		return "", models.ErrNotFound
	}
	if d.Cache.IsNotFound(term) {
		return "", models.ErrNotFound
	}
	if entry, ok := d.Cache.Lookup(term); ok {
		d.logger().Info().Str("term", term).Str("url", entry.BestMatch).Msg("cached match")
		return entry.BestMatch, nil
	}

	if err := d.open(ctx, page); err != nil {
		return "", err
	}

	typed := 0
	for _, r := range term {
		if err := page.TypeChar(ctx, string(r)); err != nil {
			return "", fmt.Errorf("type into search: %w", err)
		}
		typed++

		if err := d.wait(ctx); err != nil {
			return "", err
		}

		links, err := page.ResultLinks(ctx)
		if err != nil {
			return "", err
		}
		candidates := d.Filter.Apply(links)

		d.logger().Debug().
			Str("term", term).
			Int("typed", typed).
			Int("results", len(candidates)).
			Msg("keystroke")

		if len(candidates) == 0 && typed > d.MinSearchLength {
			d.Cache.MarkNotFound(term)
			d.logger().Warn().Str("term", term).Int("typed", typed).Msg("no search results")
			return "", models.ErrNotFound
		}

		best, score, ok := d.Scorer.BestMatch(term, candidates)
		if ok {
			d.Cache.Record(term, best)
			d.logger().Info().
				Str("term", term).
				Str("url", best).
				Float64("score", score).
				Int("typed", typed).
				Msg("match found")
			return best, nil
		}
	}

	d.logger().Warn().Str("term", term).Msg("no confident match")
	return "", models.ErrNoConfidentMatch
}

func (d *SearchDriver) open(ctx context.Context, page SearchPage) error {
	policy := d.Retry
	policy.OnRetry = func(attempt int, err error) {
		d.logger().Warn().Err(err).Int("attempt", attempt).Msg("retrying search page")
	}

	attempts, err := policy.Do(ctx, func(ctx context.Context) error {
		return page.OpenSearch(ctx, d.SearchURL)
	}, IsNavigationError)
	if err == nil {
		return nil
	}

	var nav *models.NavigationError
	if errors.As(err, &nav) {
		nav.Attempts = attempts
		d.logger().Error().Err(err).Msg("search page unavailable")
	}
	return err
}

func (d *SearchDriver) wait(ctx context.Context) error {
	if d.Debounce <= 0 {
		return ctx.Err()
	}
	sleep := d.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, d.Debounce)
}

func (d *SearchDriver) logger() *logger.Logger {
	if d.log == nil {
		return logger.Nop()
	}
	return d.log
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
