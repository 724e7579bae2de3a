package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"showlink/internal/config"
	"showlink/internal/logger"
	"showlink/internal/models"
)

// SeasonPage is a loaded season listing.
type SeasonPage struct {
	URL   string
	Title string
	HTML  string
}

// SeasonSource loads season listing pages.
type SeasonSource interface {
	LoadSeason(ctx context.Context, seasonURL string) (SeasonPage, error)
}

// SeasonURL returns the listing URL of season under showURL.
func SeasonURL(showURL string, season int) string {
	if !strings.HasSuffix(showURL, "/") {
		showURL += "/"
	}
	return showURL + "episodes/" + strconv.Itoa(season) + "/"
}

// EpisodeResolver finds an episode link on a season listing page.
// Seasons that turned out to be error pages are remembered and not loaded
// again. Safe for concurrent use.
type EpisodeResolver struct {
	IndexSelector     string
	ContainerSelector string
	ErrorMarkers      []string
	Retry             RetryPolicy

	log *logger.Logger

	mu     sync.Mutex
	failed map[string]error
}

// NewEpisodeResolver builds an EpisodeResolver from the runtime config.
func NewEpisodeResolver(cfg config.Config, log *logger.Logger) *EpisodeResolver {
	return &EpisodeResolver{
		IndexSelector:     cfg.Episodes.IndexSelector,
		ContainerSelector: cfg.Episodes.ContainerSelector,
		ErrorMarkers:      cfg.Episodes.ErrorMarkers,
		Retry:             RetryPolicyFromConfig(cfg.Retry),
		log:               log.WithComponent("episodes"),
	}
}

// Resolve returns the absolute URL of episode in season of the show at showURL.
//
// A season page whose title carries an error marker, or that answered with a
// terminal HTTP status, yields a PageError and is not loaded again. A page
// without episode index elements yields an ElementNotFoundError. A page
// without a linked "E<episode>" entry yields ErrEpisodeNotFound.
func (r *EpisodeResolver) Resolve(ctx context.Context, src SeasonSource, showURL string, season, episode int) (string, error) {
	seasonURL := SeasonURL(showURL, season)
	if err := r.failedSeason(seasonURL); err != nil {
		return "", err
	}

	policy := r.Retry
	policy.OnRetry = func(attempt int, err error) {
		r.logger().Warn().Err(err).Int("attempt", attempt).Str("url", seasonURL).Msg("retrying season page")
	}

	var page SeasonPage
	attempts, err := policy.Do(ctx, func(ctx context.Context) error {
		var loadErr error
		page, loadErr = src.LoadSeason(ctx, seasonURL)
		return loadErr
	}, IsNavigationError)

	if page.Title != "" && IsErrorTitle(page.Title, r.ErrorMarkers) {
		return "", r.markFailed(&models.PageError{URL: seasonURL, Title: page.Title})
	}

	if err != nil {
		var httpErr *models.HTTPError
		if errors.As(err, &httpErr) && httpErr.Terminal() {
			return "", r.markFailed(&models.PageError{URL: seasonURL, Title: http.StatusText(httpErr.StatusCode)})
		}

		var nav *models.NavigationError
		if errors.As(err, &nav) {
			nav.Attempts = attempts
		}
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return "", fmt.Errorf("parse season page %s: %w", seasonURL, err)
	}

	href, ok := FindEpisodeLink(doc.Selection, episode, r.IndexSelector, r.ContainerSelector)
	if !ok {
		return "", fmt.Errorf("E%d on %s: %w", episode, seasonURL, models.ErrEpisodeNotFound)
	}

	link, err := ResolveReference(seasonURL, href)
	if err != nil {
		return "", fmt.Errorf("episode link %q: %w", href, err)
	}

	r.logger().Info().Str("season_url", seasonURL).Int("episode", episode).Str("url", link).Msg("episode found")
	return link, nil
}

// FindEpisodeLink scans the elements matching indexSelector under root in
// document order. The first one whose trimmed text is exactly "E<episode>"
// decides the result: the href of the first anchor inside its closest
// containerSelector ancestor. A matched entry without a link reports false.
func FindEpisodeLink(root *goquery.Selection, episode int, indexSelector, containerSelector string) (string, bool) {
	token := "E" + strconv.Itoa(episode)

	var href string
	var found bool
	root.Find(indexSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) != token {
			return true
		}

		container := s.Closest(containerSelector)
		if container.Length() == 0 {
			return false
		}
		href, found = container.Find("a").First().Attr("href")
		found = found && strings.TrimSpace(href) != ""
		return false
	})

	return strings.TrimSpace(href), found
}

// ResolveReference resolves href against base.
func ResolveReference(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}

func (r *EpisodeResolver) failedSeason(seasonURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.failed[seasonURL]
}

func (r *EpisodeResolver) markFailed(err *models.PageError) error {
	r.mu.Lock()
	if r.failed == nil {
		r.failed = make(map[string]error)
	}
	r.failed[err.URL] = err
	r.mu.Unlock()

	r.logger().Warn().Str("url", err.URL).Str("title", err.Title).Msg("season page is an error page")
	return err
}

func (r *EpisodeResolver) logger() *logger.Logger {
	if r.log == nil {
		return logger.Nop()
	}
	return r.log
}
