package cards

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/richard-senior/cardstats/internal/logger"
	"golang.org/x/time/rate"
)

// Scraper refreshes every team of one league, one team at a time
type Scraper struct {
	config  *CardsConfig
	league  League
	fetcher Fetcher
	store   *Store
	merger  *Merger
	limiter *rate.Limiter
	runID   string
}

// NewScraper wires a Scraper for config.League on top of fetcher
func NewScraper(config *CardsConfig, fetcher Fetcher, metrics *Metrics) (*Scraper, error) {
	league, err := LookupLeague(config.League)
	if err != nil {
		return nil, err
	}

	var snapshots *Snapshotter
	if config.SnapshotFailures {
		snapshots = NewSnapshotter(filepath.Join(config.CachePath, league.Key))
	}

	limit := rate.Inf
	if config.Pause > 0 {
		limit = rate.Every(config.Pause)
	}

	runID := uuid.NewString()
	store := NewStore(config.DataPath, league.Key)
	reconstructor := NewReconstructor(fetcher, config.BaseURL, config.CautionType, snapshots)

	return &Scraper{
		config:  config,
		league:  league,
		fetcher: fetcher,
		store:   store,
		merger:  NewMerger(store, reconstructor, league, metrics, runID),
		limiter: rate.NewLimiter(limit, 1),
		runID:   runID,
	}, nil
}

// RunID identifies the datasets written by this scraper
func (s *Scraper) RunID() string {
	return s.runID
}

// Store is where the scraper keeps its datasets
func (s *Scraper) Store() *Store {
	return s.store
}

// Run refreshes every squad listed on the league page.
// A failure outside single match reconstruction stops the run; datasets
// saved before it stay on disk.
func (s *Scraper) Run(ctx context.Context) ([]*MergeResult, error) {
	sites, err := s.TeamSites(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("Refreshing", len(sites), "teams of", s.league.Competition, "run", s.runID)

	var results []*MergeResult
	for _, site := range sites {
		res, err := s.RefreshTeam(ctx, site)
		if err != nil {
			return results, fmt.Errorf("refresh of %s failed: %w", site.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// TeamSites reads the squad list from the league page
func (s *Scraper) TeamSites(ctx context.Context) ([]TeamSite, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	url := s.league.URL(s.config.BaseURL)
	body, err := s.fetcher.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch league page %s: %w", url, err)
	}
	doc, err := ParseDocument(body)
	if err != nil {
		return nil, err
	}
	sites, err := ParseTeamSites(doc, s.league.TeamTableID, s.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("league page %s: %w", url, err)
	}
	return sites, nil
}

// RefreshTeam fetches one squad's match log and merges it into the store
func (s *Scraper) RefreshTeam(ctx context.Context, site TeamSite) (*MergeResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	logger.Info("Fetching match log of", site.Name, site.URL)

	body, err := s.fetcher.Get(ctx, site.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team page %s: %w", site.URL, err)
	}
	doc, err := ParseDocument(body)
	if err != nil {
		return nil, err
	}
	table, err := ParseTable(doc, MatchLogTableID)
	if err != nil {
		return nil, fmt.Errorf("team page %s: %w", site.URL, err)
	}

	fetched := make([]*MatchRow, 0, len(table))
	for _, tr := range table {
		row, err := MatchRowFromTable(site.Name, tr)
		if err != nil {
			logger.Debug("Skipping match log row", site.Name, err)
			continue
		}
		fetched = append(fetched, row)
	}

	res, err := s.merger.Merge(ctx, site.Name, fetched)
	if err != nil {
		return nil, err
	}
	if n := len(res.Failures); n > 0 {
		logger.Warn("Matches left without cautions", site.Name, n, res.FailuresByKind())
	}
	return res, nil
}
