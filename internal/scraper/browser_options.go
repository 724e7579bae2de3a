// Package scraper provides browser configuration options for Chrome automation.
package scraper

import (
	"encoding/json"
	"fmt"

	"github.com/chromedp/chromedp"

	"showlink/internal/config"
)

// BrowserOptions contains configuration for browser automation
type BrowserOptions struct {
	Headless     bool
	BlockImages  bool
	WindowWidth  int
	WindowHeight int
	UserAgent    string
}

// DefaultBrowserOptions returns standard browser options
func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{
		Headless:     true,
		BlockImages:  true,
		WindowWidth:  DefaultWindowWidth,
		WindowHeight: DefaultWindowHeight,
	}
}

// BrowserOptionsFromConfig maps the browser section of the config onto BrowserOptions
func BrowserOptionsFromConfig(cfg config.BrowserConfig) BrowserOptions {
	opts := DefaultBrowserOptions()
	opts.Headless = cfg.Headless
	opts.UserAgent = cfg.UserAgent
	if cfg.WindowWidth > 0 {
		opts.WindowWidth = cfg.WindowWidth
	}
	if cfg.WindowHeight > 0 {
		opts.WindowHeight = cfg.WindowHeight
	}
	return opts
}

// BuildChromeOptions creates Chrome options based on BrowserOptions
func BuildChromeOptions(opts BrowserOptions) []chromedp.ExecAllocatorOption {
	chromeOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-features", "VizDisplayCompositor"),
		chromedp.Flag("disable-plugins", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)

	if opts.UserAgent != "" {
		chromeOpts = append(chromeOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.BlockImages {
		chromeOpts = append(chromeOpts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}

	return chromeOpts
}

// GetRequestBlockingScript returns JavaScript, installed on every new document,
// that rejects ad and tracker requests and hides the webdriver flag.
func GetRequestBlockingScript() string {
	domains, _ := json.Marshal(BlockedDomains)

	return fmt.Sprintf(`
		const blockedDomains = %s;
		const isBlocked = url => typeof url === 'string' && blockedDomains.some(d => url.includes(d));

		const originalFetch = window.fetch;
		window.fetch = function(...args) {
			if (isBlocked(args[0])) {
				return Promise.reject(new Error('Blocked'));
			}
			return originalFetch.apply(this, args);
		};

		const originalOpen = XMLHttpRequest.prototype.open;
		XMLHttpRequest.prototype.open = function(method, url, ...args) {
			if (isBlocked(url)) {
				throw new Error('Blocked');
			}
			return originalOpen.apply(this, [method, url, ...args]);
		};

		Object.defineProperty(navigator, 'webdriver', { get: () => false });
	`, domains)
}
