package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"showlink/internal/cache"
	"showlink/internal/config"
	"showlink/internal/logger"
	"showlink/internal/pipeline"
	"showlink/internal/scraper"
	"showlink/internal/store"
)

func newServer(h *LookupHandler, log *logger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "X-Api-Key"},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	RegisterRoutes(e, h)
	return e
}

func run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}

	cfg, err := config.Load(os.Getenv("SHOWLINK_CONFIG"))
	if err != nil {
		return err
	}
	if port := os.Getenv("PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = parsed
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
	})
	defer log.Close()

	browser, err := scraper.Launch(ctx, scraper.BrowserOptionsFromConfig(cfg.Browser), log.WithComponent("browser"))
	if err != nil {
		return err
	}
	defer browser.Close()

	var client *scraper.HTTPClient
	if cfg.Episodes.Static {
		client = scraper.NewHTTPClient(cfg)
	}
	sessions, err := scraper.OpenSessions(browser, cfg, client, cfg.Server.Sessions)
	if err != nil {
		return err
	}
	defer scraper.CloseSessions(sessions)

	entries, err := store.ReadMatches(cfg.Run.Matches)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Run.Matches).Msg("match cache not loaded")
	}

	runner := pipeline.NewRunner(cfg, cache.New(entries), log)
	handler := NewLookupHandler(runner, NewSessionPool(sessions), cfg.Server.Timeout, log)
	e := newServer(handler, log.WithComponent("http"))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Int("sessions", len(sessions)).Msg("starting server")
		errCh <- e.Start(fmt.Sprintf(":%d", cfg.Server.Port))
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		stop()
		os.Exit(1)
	}
}
