package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"showlink/internal/cache"
	"showlink/internal/models"
	"showlink/internal/pipeline"
	"showlink/internal/scraper"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var (
		season  int
		episode int
		title   string
		source  string
	)

	cmd := &cobra.Command{
		Use:   "lookup <show>",
		Short: "Resolve a single show, and optionally one episode, and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if (season > 0) != (episode > 0) {
				return errors.New("--season and --episode must be given together")
			}

			log := newLogger(cfg)
			defer log.Close()

			rec := models.SearchRecord{Title: title, Show: args[0], SourceURL: source}
			if season > 0 {
				rec.Season = models.IntPtr(season)
				rec.Episode = models.IntPtr(episode)
			}

			browser, sessions, err := startSessions(cmd.Context(), cfg, log, 1)
			if err != nil {
				return err
			}
			defer browser.Close()
			defer scraper.CloseSessions(sessions)

			c := cache.New(loadMatches(cfg.Run.Matches, log))
			runner := pipeline.NewRunner(*cfg, c, log)

			out, procErr := runner.Process(cmd.Context(), sessions[0], rec)
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if procErr != nil {
				log.Warn().Err(procErr).Str("kind", string(out.Kind)).Msg("lookup degraded")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().IntVarP(&season, "season", "s", 0, "Season number")
	cmd.Flags().IntVarP(&episode, "episode", "e", 0, "Episode number")
	cmd.Flags().StringVar(&title, "title", "", "Episode title copied to the output")
	cmd.Flags().StringVar(&source, "url", "", "Source URL copied to the output")

	return cmd
}
