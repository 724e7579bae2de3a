package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration
type Config struct {
	Site     SiteConfig    `mapstructure:"site"`
	Search   SearchConfig  `mapstructure:"search"`
	Match    MatchConfig   `mapstructure:"match"`
	Episodes EpisodeConfig `mapstructure:"episodes"`
	Browser  BrowserConfig `mapstructure:"browser"`
	Retry    RetryConfig   `mapstructure:"retry"`
	Run      RunConfig     `mapstructure:"run"`
	Logging  LoggingConfig `mapstructure:"logging"`
	Server   ServerConfig  `mapstructure:"server"`
}

// SiteConfig describes the target catalog
type SiteConfig struct {
	SearchURL   string `mapstructure:"search_url"`
	ShowsURL    string `mapstructure:"shows_url"`
	FallbackURL string `mapstructure:"fallback_url"`
}

// SearchConfig contains the type-ahead search selectors
type SearchConfig struct {
	InputSelector   string   `mapstructure:"input_selector"`
	ResultsSelector string   `mapstructure:"results_selector"`
	ShowPath        string   `mapstructure:"show_path"`
	ExcludePatterns []string `mapstructure:"exclude_patterns"`
}

// MatchConfig contains fuzzy matching parameters
type MatchConfig struct {
	MinConfidence   float64       `mapstructure:"min_confidence"`
	MinSearchLength int           `mapstructure:"min_search_length"`
	Debounce        time.Duration `mapstructure:"debounce"`
}

// EpisodeConfig contains season listing parameters
type EpisodeConfig struct {
	ContainerSelector string        `mapstructure:"container_selector"`
	IndexSelector     string        `mapstructure:"index_selector"`
	WaitTimeout       time.Duration `mapstructure:"wait_timeout"`
	ErrorMarkers      []string      `mapstructure:"error_markers"`
	Static            bool          `mapstructure:"static"`
}

// BrowserConfig contains browser automation configuration
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless"`
	UserAgent         string        `mapstructure:"user_agent"`
	ChromeMajor       int           `mapstructure:"chrome_major"`
	WindowWidth       int           `mapstructure:"window_width"`
	WindowHeight      int           `mapstructure:"window_height"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	SizeLimitBytes    int           `mapstructure:"size_limit_bytes"`
}

// RetryConfig bounds navigation retries
type RetryConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Backoff  time.Duration `mapstructure:"backoff"`
}

// RunConfig contains batch settings
type RunConfig struct {
	Input          string `mapstructure:"input"`
	Output         string `mapstructure:"output"`
	Matches        string `mapstructure:"matches"`
	Workers        int    `mapstructure:"workers"`
	PersistMatches bool   `mapstructure:"persist_matches"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ServerConfig holds the lookup service configuration
type ServerConfig struct {
	Port     int           `mapstructure:"port"`
	Sessions int           `mapstructure:"sessions"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Default returns the default configuration
func Default() Config {
	chromeMajor := 133
	if env := os.Getenv("CHROME_MAJOR"); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil {
			chromeMajor = parsed
		}
	}

	return Config{
		Site: SiteConfig{
			SearchURL:   "https://www.paramountplus.com/search/",
			ShowsURL:    "https://www.paramountplus.com/shows/",
			FallbackURL: "https://www.paramountplus.com/brands/mtv/",
		},
		Search: SearchConfig{
			InputSelector:   `input[name="q"]`,
			ResultsSelector: `[data-ci="search-results"] a`,
			ShowPath:        "/shows/",
			ExcludePatterns: []string{"/search", "more-results"},
		},
		Match: MatchConfig{
			MinConfidence:   0.6,
			MinSearchLength: 3,
			Debounce:        600 * time.Millisecond,
		},
		Episodes: EpisodeConfig{
			ContainerSelector: ".episode",
			IndexSelector:     ".episode .epNum",
			WaitTimeout:       1500 * time.Millisecond,
			ErrorMarkers:      []string{"404", "Error"},
		},
		Browser: BrowserConfig{
			Headless:          true,
			UserAgent:         UserAgentFor(chromeMajor),
			ChromeMajor:       chromeMajor,
			WindowWidth:       1366,
			WindowHeight:      900,
			NavigationTimeout: 15 * time.Second,
			SizeLimitBytes:    6_000_000,
		},
		Retry: RetryConfig{
			Attempts: 3,
			Backoff:  500 * time.Millisecond,
		},
		Run: RunConfig{
			Input:   "data.csv",
			Output:  "output.csv",
			Matches: "matches.csv",
			Workers: 1,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Server: ServerConfig{
			Port:     8080,
			Sessions: 2,
			Timeout:  2 * time.Minute,
		},
	}
}

// UserAgentFor builds a desktop Chrome user agent for the given major version
func UserAgentFor(chromeMajor int) string {
	return fmt.Sprintf("Mozilla/5.0 (Windows NT 10; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.6943.126 Safari/537.36", chromeMajor)
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("showlink")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.showlink")
	}

	v.SetEnvPrefix("SHOWLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("SHOWLINK_BROWSER_USER_AGENT") == "" && !v.InConfig("browser.user_agent") {
		cfg.Browser.UserAgent = UserAgentFor(cfg.Browser.ChromeMajor)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("site.search_url", d.Site.SearchURL)
	v.SetDefault("site.shows_url", d.Site.ShowsURL)
	v.SetDefault("site.fallback_url", d.Site.FallbackURL)

	v.SetDefault("search.input_selector", d.Search.InputSelector)
	v.SetDefault("search.results_selector", d.Search.ResultsSelector)
	v.SetDefault("search.show_path", d.Search.ShowPath)
	v.SetDefault("search.exclude_patterns", d.Search.ExcludePatterns)

	v.SetDefault("match.min_confidence", d.Match.MinConfidence)
	v.SetDefault("match.min_search_length", d.Match.MinSearchLength)
	v.SetDefault("match.debounce", d.Match.Debounce)

	v.SetDefault("episodes.container_selector", d.Episodes.ContainerSelector)
	v.SetDefault("episodes.index_selector", d.Episodes.IndexSelector)
	v.SetDefault("episodes.wait_timeout", d.Episodes.WaitTimeout)
	v.SetDefault("episodes.error_markers", d.Episodes.ErrorMarkers)
	v.SetDefault("episodes.static", d.Episodes.Static)

	v.SetDefault("browser.headless", d.Browser.Headless)
	v.SetDefault("browser.user_agent", d.Browser.UserAgent)
	v.SetDefault("browser.chrome_major", d.Browser.ChromeMajor)
	v.SetDefault("browser.window_width", d.Browser.WindowWidth)
	v.SetDefault("browser.window_height", d.Browser.WindowHeight)
	v.SetDefault("browser.navigation_timeout", d.Browser.NavigationTimeout)
	v.SetDefault("browser.size_limit_bytes", d.Browser.SizeLimitBytes)

	v.SetDefault("retry.attempts", d.Retry.Attempts)
	v.SetDefault("retry.backoff", d.Retry.Backoff)

	v.SetDefault("run.input", d.Run.Input)
	v.SetDefault("run.output", d.Run.Output)
	v.SetDefault("run.matches", d.Run.Matches)
	v.SetDefault("run.workers", d.Run.Workers)
	v.SetDefault("run.persist_matches", d.Run.PersistMatches)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", d.Logging.Path)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", d.Logging.Compress)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.sessions", d.Server.Sessions)
	v.SetDefault("server.timeout", d.Server.Timeout)
}

// Validate checks the values the matcher cannot run without
func (c Config) Validate() error {
	var errs []error
	if c.Site.SearchURL == "" {
		errs = append(errs, errors.New("site.search_url is required"))
	}
	if c.Site.ShowsURL == "" {
		errs = append(errs, errors.New("site.shows_url is required"))
	}
	if c.Site.FallbackURL == "" {
		errs = append(errs, errors.New("site.fallback_url is required"))
	}
	if c.Match.MinConfidence <= 0 || c.Match.MinConfidence >= 1 {
		errs = append(errs, fmt.Errorf("match.min_confidence must be in (0,1), got %v", c.Match.MinConfidence))
	}
	if c.Match.MinSearchLength < 0 {
		errs = append(errs, fmt.Errorf("match.min_search_length must be >= 0, got %d", c.Match.MinSearchLength))
	}
	if c.Run.Workers < 1 {
		errs = append(errs, fmt.Errorf("run.workers must be >= 1, got %d", c.Run.Workers))
	}
	if c.Retry.Attempts < 1 {
		errs = append(errs, fmt.Errorf("retry.attempts must be >= 1, got %d", c.Retry.Attempts))
	}
	return errors.Join(errs...)
}
