package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"showlink/internal/models"
)

// Page is a single browser tab. It is not safe for concurrent use: one worker
// drives one page.
type Page struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    PageConfig
}

// run executes actions on the tab with a timeout, also stopping when ctx is done.
func (p *Page) run(ctx context.Context, op string, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return classifyRunError(ctx, op, timeout, chromedp.Run(runCtx, actions...))
}

// classifyRunError returns the caller's context error when the caller gave up,
// and a TimeoutError when only the step's own timeout expired.
func classifyRunError(ctx context.Context, op string, timeout time.Duration, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &models.TimeoutError{Operation: op, Timeout: timeout.String(), Err: err}
	}
	return err
}

// needsNavigation reports whether a tab at current must navigate to target.
// An unknown location always navigates.
func needsNavigation(current, target string, locErr error) bool {
	return locErr != nil || current == "" || !strings.Contains(current, target)
}

// Goto navigates to targetURL and waits for the page to load.
func (p *Page) Goto(ctx context.Context, targetURL string) error {
	if err := p.run(ctx, "navigate", p.cfg.NavigationTimeout, chromedp.Navigate(targetURL)); err != nil {
		return &models.NavigationError{URL: targetURL, Err: err}
	}
	return nil
}

// URL returns the current location of the tab.
func (p *Page) URL(ctx context.Context) (string, error) {
	var location string
	err := p.run(ctx, "read location", locationTimeout, chromedp.Location(&location))
	return location, err
}

// Title returns the current document title.
func (p *Page) Title(ctx context.Context) (string, error) {
	var title string
	err := p.run(ctx, "read title", locationTimeout, chromedp.Title(&title))
	return title, err
}

// OpenSearch loads the search page and clears the search input.
func (p *Page) OpenSearch(ctx context.Context, searchURL string) error {
	if err := p.Goto(ctx, searchURL); err != nil {
		return err
	}

	err := p.run(ctx, "wait for search input", p.cfg.NavigationTimeout,
		chromedp.WaitReady(p.cfg.InputSelector, chromedp.ByQuery),
		chromedp.SetValue(p.cfg.InputSelector, "", chromedp.ByQuery),
	)
	if err != nil {
		return &models.NavigationError{
			URL: searchURL,
			Err: &models.ElementNotFoundError{Selector: p.cfg.InputSelector, URL: searchURL, Err: err},
		}
	}
	return nil
}

// TypeChar types one character into the search input.
func (p *Page) TypeChar(ctx context.Context, ch string) error {
	return p.run(ctx, "type", scriptTimeout, chromedp.SendKeys(p.cfg.InputSelector, ch, chromedp.ByQuery))
}

// ResultLinks returns the href of every search result anchor, in document order.
func (p *Page) ResultLinks(ctx context.Context) ([]string, error) {
	selector, err := json.Marshal(p.cfg.ResultsSelector)
	if err != nil {
		return nil, err
	}
	script := fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).map(a => a.href || '')`, selector)

	var hrefs []string
	if err := p.run(ctx, "read search results", scriptTimeout, chromedp.Evaluate(script, &hrefs)); err != nil {
		return nil, fmt.Errorf("read search results: %w", err)
	}
	return hrefs, nil
}

// LoadSeason navigates to seasonURL unless the tab is already there, then waits
// for episode index elements and returns the page title and HTML. When the
// elements never appear the title is still returned with an ElementNotFoundError.
func (p *Page) LoadSeason(ctx context.Context, seasonURL string) (SeasonPage, error) {
	page := SeasonPage{URL: seasonURL}

	current, err := p.URL(ctx)
	if needsNavigation(current, seasonURL, err) {
		if err := p.Goto(ctx, seasonURL); err != nil {
			return page, err
		}
	}

	if page.Title, err = p.Title(ctx); err != nil {
		return page, &models.NavigationError{URL: seasonURL, Err: err}
	}

	err = p.run(ctx, "wait for episodes", p.cfg.WaitTimeout, chromedp.WaitReady(p.cfg.IndexSelector, chromedp.ByQuery))
	if err != nil {
		if ctx.Err() != nil {
			return page, err
		}
		return page, &models.ElementNotFoundError{Selector: p.cfg.IndexSelector, URL: seasonURL, Err: err}
	}

	if err := p.run(ctx, "read season page", scriptTimeout, chromedp.OuterHTML("html", &page.HTML, chromedp.ByQuery)); err != nil {
		return page, fmt.Errorf("read season page: %w", err)
	}
	return page, nil
}

// Close closes the tab.
func (p *Page) Close() {
	p.cancel()
}
