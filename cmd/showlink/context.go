package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"showlink/internal/config"
	"showlink/internal/logger"
	"showlink/internal/scraper"
)

type commandContext struct {
	configFlag *string
	envFlag    *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, envFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		envFlag:    envFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if c.envFlag != nil && strings.TrimSpace(*c.envFlag) != "" {
			if err := godotenv.Load(strings.TrimSpace(*c.envFlag)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				c.configErr = fmt.Errorf("load env file: %w", err)
				return
			}
		}

		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = &cfg
	})
	return c.config, c.configErr
}

func newLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
}

// startSessions launches the browser and opens n sessions on it.
func startSessions(ctx context.Context, cfg *config.Config, log *logger.Logger, n int) (*scraper.Browser, []*scraper.Session, error) {
	browser, err := scraper.Launch(ctx, scraper.BrowserOptionsFromConfig(cfg.Browser), log.WithComponent("browser"))
	if err != nil {
		return nil, nil, err
	}

	var client *scraper.HTTPClient
	if cfg.Episodes.Static {
		client = scraper.NewHTTPClient(*cfg)
	}

	sessions, err := scraper.OpenSessions(browser, *cfg, client, n)
	if err != nil {
		browser.Close()
		return nil, nil, err
	}
	return browser, sessions, nil
}
