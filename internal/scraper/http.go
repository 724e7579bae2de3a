package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"showlink/internal/config"
	"showlink/internal/models"
)

// HTTPClient fetches HTML pages with browser-like headers.
type HTTPClient struct {
	client         *http.Client
	userAgent      string
	sizeLimitBytes int64
	maxRetries     int
	backoff        time.Duration
}

// NewHTTPClient returns an HTTPClient configured from the browser and retry sections.
func NewHTTPClient(cfg config.Config) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	timeout := cfg.Browser.NavigationTimeout
	if timeout <= 0 {
		timeout = DefaultNavigationTimeout
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	return &HTTPClient{
		client:         client,
		userAgent:      cfg.Browser.UserAgent,
		sizeLimitBytes: int64(cfg.Browser.SizeLimitBytes),
		maxRetries:     max(cfg.Retry.Attempts-1, 0),
		backoff:        cfg.Retry.Backoff,
	}
}

// setRequestHeaders sets browser-like headers on the request
func (h *HTTPClient) setRequestHeaders(req *http.Request) {
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// FetchHTML fetches HTML content from a URL. 5xx responses are retried with a
// doubling delay up to the configured attempts. Transport failures come back as
// NavigationError, unusable responses as HTTPError.
func (h *HTTPClient) FetchHTML(ctx context.Context, targetURL string) (string, error) {
	for retryCount := 0; ; retryCount++ {
		html, err := h.fetchOnce(ctx, targetURL)

		var httpErr *models.HTTPError
		if err == nil || !errors.As(err, &httpErr) || httpErr.StatusCode < 500 || retryCount >= h.maxRetries {
			return html, err
		}

		delay := h.backoff * time.Duration(1<<retryCount)
		if delay > 5*time.Second {
			delay = 5 * time.Second
		}
		if err := sleepContext(ctx, delay); err != nil {
			return "", err
		}
	}
}

func (h *HTTPClient) fetchOnce(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	h.setRequestHeaders(req)

	resp, err := h.client.Do(req)
	if err != nil {
		var netErr net.Error
		if ctx.Err() == nil && errors.As(err, &netErr) && netErr.Timeout() {
			err = &models.TimeoutError{Operation: "fetch", Timeout: h.client.Timeout.String(), Err: err}
		}
		return "", &models.NavigationError{URL: targetURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &models.HTTPError{StatusCode: resp.StatusCode, URL: targetURL, Err: errors.New(resp.Status)}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return "", &models.HTTPError{StatusCode: resp.StatusCode, URL: targetURL, Err: fmt.Errorf("non-HTML content-type: %s", contentType)}
	}

	var reader io.Reader = resp.Body
	if h.sizeLimitBytes > 0 {
		reader = io.LimitReader(resp.Body, h.sizeLimitBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", &models.NavigationError{URL: targetURL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	html := string(body)
	if LooksLikeCFBlock(html) {
		return "", &models.HTTPError{StatusCode: http.StatusForbidden, URL: targetURL, Err: errors.New("blocked by cloudflare")}
	}
	return html, nil
}

// StaticSeasonSource loads season pages over plain HTTP instead of a browser tab.
type StaticSeasonSource struct {
	Client *HTTPClient
}

// LoadSeason fetches seasonURL and reads its title.
func (s StaticSeasonSource) LoadSeason(ctx context.Context, seasonURL string) (SeasonPage, error) {
	page := SeasonPage{URL: seasonURL}

	html, err := s.Client.FetchHTML(ctx, seasonURL)
	if err != nil {
		return page, err
	}
	page.HTML = html

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return page, fmt.Errorf("parse season page %s: %w", seasonURL, err)
	}
	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	return page, nil
}
