package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"showlink/internal/logger"
	"showlink/internal/models"
	"showlink/internal/pipeline"
	"showlink/internal/scraper"
)

// SessionPool hands out sessions one request at a time.
type SessionPool struct {
	sessions chan *scraper.Session
}

func NewSessionPool(sessions []*scraper.Session) *SessionPool {
	p := &SessionPool{sessions: make(chan *scraper.Session, len(sessions))}
	for _, s := range sessions {
		p.sessions <- s
	}
	return p
}

// Acquire waits for a free session until ctx is done.
func (p *SessionPool) Acquire(ctx context.Context) (*scraper.Session, error) {
	select {
	case s := <-p.sessions:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *SessionPool) Release(s *scraper.Session) {
	p.sessions <- s
}

// ResolveResponse is the body of a successful /resolve call
type ResolveResponse struct {
	models.OutputRecord
	Reason     string `json:"reason,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// ErrorResponse is the body of a failed call
type ErrorResponse struct {
	Error string `json:"error"`
}

// LookupHandler serves single record lookups
type LookupHandler struct {
	runner  *pipeline.Runner
	pool    *SessionPool
	timeout time.Duration
	log     *logger.Logger
}

func NewLookupHandler(runner *pipeline.Runner, pool *SessionPool, timeout time.Duration, log *logger.Logger) *LookupHandler {
	return &LookupHandler{
		runner:  runner,
		pool:    pool,
		timeout: timeout,
		log:     log.WithComponent("lookup"),
	}
}

// RegisterRoutes registers the lookup routes
func RegisterRoutes(e *echo.Echo, h *LookupHandler) {
	e.GET("/resolve", h.Resolve)
	e.GET("/healthz", h.Health)
}

func (h *LookupHandler) Resolve(c echo.Context) error {
	rec, err := parseRecord(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	timeout := h.timeout
	if ms := c.QueryParam("timeout"); ms != "" {
		if parsed, err := strconv.Atoi(ms); err == nil {
			timeout = min(max(time.Duration(parsed)*time.Millisecond, time.Second), h.timeout)
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	start := time.Now()

	session, err := h.pool.Acquire(ctx)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "No browser session available"})
	}
	defer h.pool.Release(session)

	out, procErr := h.runner.Process(ctx, session, rec)
	duration := time.Since(start)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		h.log.Warn().Str("show", rec.Show).Dur("duration", duration).Msg("lookup timed out")
		return c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "Lookup took too long"})
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	resp := ResolveResponse{OutputRecord: out, DurationMs: duration.Milliseconds()}
	if procErr != nil {
		resp.Reason = procErr.Error()
	}

	h.log.Info().
		Str("show", rec.Show).
		Str("kind", string(out.Kind)).
		Str("target", out.TargetURL).
		Int64("duration_ms", resp.DurationMs).
		Msg("lookup done")

	return c.JSON(http.StatusOK, resp)
}

func (h *LookupHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func parseRecord(c echo.Context) (models.SearchRecord, error) {
	rec := models.SearchRecord{
		Show:      strings.TrimSpace(c.QueryParam("show")),
		Title:     c.QueryParam("title"),
		SourceURL: c.QueryParam("url"),
	}
	if rec.Show == "" {
		rec.Show = strings.TrimSpace(rec.Title)
	}
	if rec.Show == "" {
		return rec, errors.New(`Missing "show" query parameter`)
	}

	season, err := optionalInt(c, "season")
	if err != nil {
		return rec, err
	}
	episode, err := optionalInt(c, "episode")
	if err != nil {
		return rec, err
	}
	if (season == nil) != (episode == nil) {
		return rec, errors.New(`"season" and "episode" must be given together`)
	}
	rec.Season, rec.Episode = season, episode
	return rec, nil
}

func optionalInt(c echo.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, errors.New(`Invalid "` + name + `" query parameter`)
	}
	return &n, nil
}
