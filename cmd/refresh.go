package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/richard-senior/cardstats/internal/logger"
	"github.com/richard-senior/cardstats/pkg/cards"
	"github.com/richard-senior/cardstats/pkg/transport"
	"github.com/spf13/cobra"
)

var refreshTeam string

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch new matches for every team of the league",
	Long: `Read the league table, then for each squad fetch its match log, rebuild the
cautions of every match newer than the stored ones and save the dataset.
Teams are processed one at a time with a pause between them.`,
	Args: cobra.NoArgs,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().StringVar(&refreshTeam, "team", "", "refresh only the squad with this display name")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := transport.NewClient(transport.Options{
		Timeout:      config.HTTPTimeout,
		UserAgent:    config.UserAgent,
		CABundlePath: config.CABundle,
	})
	metrics := cards.NewMetrics()
	scraper, err := cards.NewScraper(config, client, metrics)
	if err != nil {
		return err
	}

	var results []*cards.MergeResult
	if refreshTeam != "" {
		results, err = refreshOne(ctx, scraper, refreshTeam)
	} else {
		results, err = scraper.Run(ctx)
	}

	// whatever finished is still worth reporting
	if len(results) > 0 {
		cards.PrintMergeResults(cmd.OutOrStdout(), results)
	}
	if config.MetricsFile != "" {
		if merr := metrics.WriteTextfile(config.MetricsFile); merr != nil {
			logger.Warn("Metrics not written", merr)
		}
	}
	if err != nil {
		return err
	}
	logger.Highlight("Refresh finished", scraper.RunID())
	return nil
}

func refreshOne(ctx context.Context, scraper *cards.Scraper, team string) ([]*cards.MergeResult, error) {
	sites, err := scraper.TeamSites(ctx)
	if err != nil {
		return nil, err
	}
	for _, site := range sites {
		if site.Name != team {
			continue
		}
		res, err := scraper.RefreshTeam(ctx, site)
		if err != nil {
			return nil, err
		}
		return []*cards.MergeResult{res}, nil
	}
	return nil, fmt.Errorf("no squad named %q in the league table", team)
}
