package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/breachcase/breachwatch/internal/ai"
	"github.com/breachcase/breachwatch/internal/config"
	"github.com/breachcase/breachwatch/internal/feed"
	"github.com/breachcase/breachwatch/internal/pipeline"
	"github.com/breachcase/breachwatch/pkg/anthropic"
)

var scrapeLimit int

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Poll feeds and process new breach articles",
	Long:  "Fetches the configured news feeds, classifies recent articles, extracts structured breach data, and creates or updates breach records. Interrupting with SIGINT stops cleanly between articles.",
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapeLimit, "limit", 0, "process at most this many articles (0 = no limit)")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Anthropic.Key == "" {
		return fmt.Errorf("anthropic.key is not configured (BREACHWATCH_ANTHROPIC_KEY)")
	}
	if len(cfg.Feeds.Sources) == 0 {
		cfg.Feeds.Sources = config.DefaultFeedSources()
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	fetcher := feed.NewHTTPFetcher(cfg.Feeds)
	result, err := fetcher.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch feeds: %w", err)
	}
	zap.L().Info("feeds fetched",
		zap.Int("entries", result.Fetched),
		zap.Int("recent", len(result.Articles)),
	)

	articles := result.Articles
	if scrapeLimit > 0 && len(articles) > scrapeLimit {
		articles = articles[:scrapeLimit]
	}

	processor := ai.NewProcessor(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic)
	runner := pipeline.NewRunner(st, processor, cfg)

	stats, runErr := runner.Run(ctx, articles)
	stats.Fetched = result.Fetched
	stats.Recent = len(result.Articles)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Fetched:             %d\n", stats.Fetched)
	fmt.Fprintf(out, "Recent:              %d\n", stats.Recent)
	fmt.Fprintf(out, "New:                 %d\n", stats.New)
	fmt.Fprintf(out, "Classified breach:   %d\n", stats.ClassifiedBreach)
	fmt.Fprintf(out, "Non-breach:          %d\n", stats.ClassifiedNonBreach)
	fmt.Fprintf(out, "Created:             %d\n", stats.Created)
	fmt.Fprintf(out, "Updated:             %d\n", stats.Updated)
	fmt.Fprintf(out, "Duplicates skipped:  %d\n", stats.DuplicatesSkipped)
	fmt.Fprintf(out, "Already processed:   %d\n", stats.Skipped)
	fmt.Fprintf(out, "Failed:              %d\n", stats.Failed)

	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	if stats.Failed > 0 {
		return fmt.Errorf("run finished with %d failed articles", stats.Failed)
	}
	return nil
}
