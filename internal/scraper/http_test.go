package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showlink/internal/config"
	"showlink/internal/models"
)

func testHTTPClient() *HTTPClient {
	cfg := config.Default()
	cfg.Retry.Backoff = time.Millisecond
	cfg.Browser.NavigationTimeout = 2 * time.Second
	return NewHTTPClient(cfg)
}

func TestStaticSeasonSourceResolvesEpisode(t *testing.T) {
	var userAgent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.Header.Get("User-Agent"))
		if r.URL.Path != "/shows/example-show/episodes/2/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(seasonHTML("Example Show Season 2", 4, 5, 6)))
	}))
	defer srv.Close()

	src := StaticSeasonSource{Client: testHTTPClient()}
	url, err := newTestResolver().Resolve(context.Background(), src, srv.URL+"/shows/example-show/", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/shows/example-show/video/ep5/", url)
	assert.Contains(t, userAgent.Load(), "Chrome/")
}

func TestStaticSeasonSourceReadsTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><title> Error </title></head></html>"))
	}))
	defer srv.Close()

	page, err := StaticSeasonSource{Client: testHTTPClient()}.LoadSeason(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Error", page.Title)
}

func TestStaticSeasonSourceNotFoundIsPageError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newTestResolver().Resolve(context.Background(), StaticSeasonSource{Client: testHTTPClient()}, srv.URL+"/shows/gone/", 1, 1)
	var pageErr *models.PageError
	require.ErrorAs(t, err, &pageErr)
	assert.Equal(t, "Not Found", pageErr.Title)
}

func TestFetchHTMLRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><title>ok</title></html>"))
	}))
	defer srv.Close()

	html, err := testHTTPClient().FetchHTML(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "ok")
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetchHTMLServerErrorExhausted(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testHTTPClient().FetchHTML(context.Background(), srv.URL)
	var httpErr *models.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.True(t, httpErr.Terminal())
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetchHTMLCloudflareBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><title>Attention Required! | Cloudflare</title></html>"))
	}))
	defer srv.Close()

	_, err := testHTTPClient().FetchHTML(context.Background(), srv.URL)
	var httpErr *models.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.False(t, httpErr.Terminal())
}

func TestFetchHTMLRejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	_, err := testHTTPClient().FetchHTML(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetchHTMLTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Browser.NavigationTimeout = 50 * time.Millisecond
	_, err := NewHTTPClient(cfg).FetchHTML(context.Background(), srv.URL)

	var nav *models.NavigationError
	require.ErrorAs(t, err, &nav)
	var timeout *models.TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "fetch", timeout.Operation)
	assert.Equal(t, "50ms", timeout.Timeout)
}
