package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"showlink/internal/cache"
	"showlink/internal/config"
	"showlink/internal/logger"
	"showlink/internal/models"
	"showlink/internal/pipeline"
	"showlink/internal/store"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		input    string
		output   string
		matches  string
		workers  int
		persist  bool
		headless bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve every record of the input file and append the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.Run.Input = input
			}
			if flags.Changed("output") {
				cfg.Run.Output = output
			}
			if flags.Changed("matches") {
				cfg.Run.Matches = matches
			}
			if flags.Changed("workers") {
				cfg.Run.Workers = workers
			}
			if flags.Changed("persist-matches") {
				cfg.Run.PersistMatches = persist
			}
			if flags.Changed("headless") {
				cfg.Browser.Headless = headless
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			summary, err := runBatch(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d records: %d episode, %d video, %d show, %d fallback, %d errors in %s\n",
				summary.Total, summary.Episode, summary.Video, summary.Show, summary.Fallback, summary.Errors, summary.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input CSV file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV file")
	cmd.Flags().StringVarP(&matches, "matches", "m", "", "Match cache CSV file")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Number of browser tabs working in parallel")
	cmd.Flags().BoolVar(&persist, "persist-matches", false, "Append newly confirmed matches to the match cache file")
	cmd.Flags().BoolVar(&headless, "headless", true, "Run the browser headless")

	return cmd
}

func runBatch(ctx context.Context, cfg *config.Config) (models.Summary, error) {
	log := newLogger(cfg)
	defer log.Close()

	progress := &logger.Progress{}
	log = log.WithHook(progress)

	records, err := store.ReadRecords(cfg.Run.Input)
	if err != nil {
		return models.Summary{}, err
	}
	log.Info().Str("input", cfg.Run.Input).Int("records", len(records)).Msg("records loaded")

	c := cache.New(loadMatches(cfg.Run.Matches, log))

	out, err := store.OpenOutput(cfg.Run.Output)
	if err != nil {
		return models.Summary{}, err
	}
	defer out.Close()

	if len(records) == 0 {
		return models.Summary{}, nil
	}

	browser, sessions, err := startSessions(ctx, cfg, log, min(cfg.Run.Workers, len(records)))
	if err != nil {
		return models.Summary{}, err
	}
	defer browser.Close()

	runner := pipeline.NewRunner(*cfg, c, log)
	runner.Observer = pipeline.ProgressObserver{Progress: progress}

	summary, runErr := runner.Run(ctx, sessions, records, out)

	if cfg.Run.PersistMatches {
		persistMatches(cfg.Run.Matches, c, log)
	}

	return summary, runErr
}

// loadMatches reads the match cache file. Any failure leaves the cache empty.
func loadMatches(path string, log *logger.Logger) []models.MatchEntry {
	cacheLog := log.WithComponent("cache")
	if path == "" {
		return nil
	}

	entries, err := store.ReadMatches(path)
	if err != nil {
		cacheLog.Warn().Err(err).Str("path", path).Msg("match cache not loaded")
		return nil
	}
	cacheLog.Info().Str("path", path).Int("entries", len(entries)).Msg("match cache loaded")
	return entries
}

func persistMatches(path string, c *cache.MatchCache, log *logger.Logger) {
	cacheLog := log.WithComponent("cache")
	entries := c.NewEntries()
	if len(entries) == 0 || path == "" {
		return
	}

	if err := store.AppendMatches(path, entries); err != nil {
		cacheLog.Error().Err(err).Str("path", path).Msg("failed to persist matches")
		return
	}
	cacheLog.Info().Str("path", path).Int("entries", len(entries)).Msg("matches persisted")
}
