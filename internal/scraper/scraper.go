// Package scraper drives the catalog site: a chromedp browser boundary, the
// incremental search driver that resolves show names to catalog URLs, and the
// episode resolver that finds episode links on season listing pages.
package scraper

import (
	"fmt"

	"showlink/internal/config"
)

// Session is what one worker uses to resolve records. Search and Seasons are
// backed by the same tab unless season pages are fetched over HTTP.
type Session struct {
	Search  SearchPage
	Seasons SeasonSource

	close func()
}

// NewSession wraps fakes or custom sources in a Session.
func NewSession(search SearchPage, seasons SeasonSource) *Session {
	return &Session{Search: search, Seasons: seasons}
}

// OpenSession opens a new tab on b. With episodes.static set, season pages
// are fetched with client instead of the tab.
func OpenSession(b *Browser, cfg config.Config, client *HTTPClient) (*Session, error) {
	page, err := b.NewPage(PageConfigFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	s := &Session{Search: page, Seasons: page, close: page.Close}
	if cfg.Episodes.Static && client != nil {
		s.Seasons = StaticSeasonSource{Client: client}
	}
	return s, nil
}

// Close releases the tab behind the session.
func (s *Session) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenSessions opens n sessions on b, closing any already opened if one fails.
func OpenSessions(b *Browser, cfg config.Config, client *HTTPClient, n int) ([]*Session, error) {
	sessions := make([]*Session, 0, n)
	for range max(n, 1) {
		s, err := OpenSession(b, cfg, client)
		if err != nil {
			CloseSessions(sessions)
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// CloseSessions closes every session.
func CloseSessions(sessions []*Session) {
	for _, s := range sessions {
		s.Close()
	}
}
