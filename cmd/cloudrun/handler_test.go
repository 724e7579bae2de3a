package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showlink/internal/cache"
	"showlink/internal/logger"
	"showlink/internal/models"
	"showlink/internal/pipeline"
	"showlink/internal/scraper"
)

type noSearch struct{}

func (noSearch) OpenSearch(context.Context, string) error { return nil }
func (noSearch) TypeChar(context.Context, string) error { return nil }
func (noSearch) ResultLinks(context.Context) ([]string, error) { return nil, nil }

type oneSeason struct{}

func (oneSeason) LoadSeason(_ context.Context, seasonURL string) (scraper.SeasonPage, error) {
	return scraper.SeasonPage{
		URL:   seasonURL,
		Title: "Example Show",
		HTML:  `<div class="episode"><span class="epNum">E5</span><a href="video/five/">x</a></div>`,
	}, nil
}

func newTestServer(t *testing.T, sessions int) *httptest.Server {
	t.Helper()

	c := cache.New([]models.MatchEntry{{SearchTerm: "Example Show", BestMatch: "https://site/shows/example-show/"}})
	runner := &pipeline.Runner{
		FallbackURL: "https://site/fallback/",
		Search:      &scraper.SearchDriver{Cache: c, MinSearchLength: 3},
		Episodes:    &scraper.EpisodeResolver{IndexSelector: ".episode .epNum", ContainerSelector: ".episode", ErrorMarkers: []string{"404"}},
	}

	list := make([]*scraper.Session, sessions)
	for i := range list {
		list[i] = scraper.NewSession(noSearch{}, oneSeason{})
	}

	h := NewLookupHandler(runner, NewSessionPool(list), time.Second, logger.Nop())
	srv := httptest.NewServer(newServer(h, logger.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestResolveEpisode(t *testing.T) {
	srv := newTestServer(t, 1)

	var body ResolveResponse
	status := getJSON(t, srv.URL+"/resolve?show=Example+Show&season=2&episode=5&title=Pilot&url=src1", &body)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "https://site/shows/example-show/episodes/2/video/five/", body.TargetURL)
	assert.Equal(t, models.TargetEpisode, body.Kind)
	assert.Equal(t, "Pilot", body.Title)
	assert.Equal(t, "src1", body.SourceURL)
	assert.Empty(t, body.Reason)
}

func TestResolveShowOnly(t *testing.T) {
	srv := newTestServer(t, 1)

	var body ResolveResponse
	status := getJSON(t, srv.URL+"/resolve?show=Example%20Show", &body)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.TargetShow, body.Kind)
	assert.Nil(t, body.Season)
}

func TestResolveUnknownShowFallsBack(t *testing.T) {
	srv := newTestServer(t, 1)

	var body ResolveResponse
	status := getJSON(t, srv.URL+"/resolve?show=Nobody+Knows", &body)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "https://site/fallback/", body.TargetURL)
	assert.Equal(t, models.TargetFallback, body.Kind)
	assert.NotEmpty(t, body.Reason)
}

func TestResolveBadRequests(t *testing.T) {
	srv := newTestServer(t, 1)

	for _, query := range []string{
		"",
		"?show=A&season=2",
		"?show=A&season=x&episode=1",
		"?show=A&season=1&episode=-1",
	} {
		var body ErrorResponse
		status := getJSON(t, srv.URL+"/resolve"+query, &body)
		assert.Equal(t, http.StatusBadRequest, status, query)
		assert.NotEmpty(t, body.Error, query)
	}
}

func TestResolveWithoutFreeSession(t *testing.T) {
	srv := newTestServer(t, 0)

	var body ErrorResponse
	status := getJSON(t, srv.URL+"/resolve?show=Example+Show", &body)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, 1)

	var body map[string]string
	status := getJSON(t, srv.URL+"/healthz", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestSessionPool(t *testing.T) {
	s := scraper.NewSession(noSearch{}, oneSeason{})
	pool := NewSessionPool([]*scraper.Session{s})

	got, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, s, got)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = pool.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	pool.Release(got)
	got, err = pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, s, got)
}
