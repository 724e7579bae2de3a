package scraper

import (
	"context"
	"fmt"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"showlink/internal/config"
	"showlink/internal/logger"
)

// Browser owns one Chrome process. Pages opened from it are independent tabs.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   BrowserOptions
	log    *logger.Logger
}

// Launch starts Chrome with the given options. Failure to launch is fatal for a run.
func Launch(ctx context.Context, opts BrowserOptions, log *logger.Logger) (*Browser, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, BuildChromeOptions(opts)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	cancel := func() {
		browserCancel()
		allocCancel()
	}

	// The first Run starts the browser and its initial tab.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	log.Debug().Bool("headless", opts.Headless).Msg("browser launched")

	return &Browser{
		ctx:    browserCtx,
		cancel: cancel,
		opts:   opts,
		log:    log,
	}, nil
}

// NewPage opens a new tab with the request blocking script installed.
func (b *Browser) NewPage(cfg PageConfig) (*Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.ctx)

	installCtx, installCancel := context.WithTimeout(tabCtx, scriptTimeout)
	defer installCancel()

	err := chromedp.Run(installCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := cdppage.AddScriptToEvaluateOnNewDocument(GetRequestBlockingScript()).Do(ctx)
		return err
	}))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open page: %w", err)
	}

	return &Page{ctx: tabCtx, cancel: cancel, cfg: cfg.withDefaults()}, nil
}

// Close shuts the browser down, closing every page.
func (b *Browser) Close() {
	b.cancel()
	b.log.Debug().Msg("browser closed")
}

// PageConfig carries the selectors and timeouts a page needs
type PageConfig struct {
	InputSelector     string
	ResultsSelector   string
	IndexSelector     string
	NavigationTimeout time.Duration
	WaitTimeout       time.Duration
}

// PageConfigFromConfig maps the runtime config onto PageConfig
func PageConfigFromConfig(cfg config.Config) PageConfig {
	return PageConfig{
		InputSelector:     cfg.Search.InputSelector,
		ResultsSelector:   cfg.Search.ResultsSelector,
		IndexSelector:     cfg.Episodes.IndexSelector,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		WaitTimeout:       cfg.Episodes.WaitTimeout,
	}
}

func (c PageConfig) withDefaults() PageConfig {
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = DefaultNavigationTimeout
	}
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
	return c
}
