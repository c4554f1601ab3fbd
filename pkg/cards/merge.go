package cards

import (
	"context"
	"fmt"

	"github.com/richard-senior/cardstats/internal/logger"
)

// MergeResult reports what one team merge did
type MergeResult struct {
	Team          string
	New           int                 // rows past the high-water mark in the tracked competition
	Reconstructed int                 // new rows that got caution buckets
	Failures      []*ReconstructError // new rows left without buckets
	Kept          int                 // rows in the dataset after enrichment
	Saved         bool
}

// FailuresByKind counts failures per kind
func (r *MergeResult) FailuresByKind() map[FailureKind]int {
	counts := map[FailureKind]int{}
	for _, f := range r.Failures {
		counts[f.Kind]++
	}
	return counts
}

// SelectNewRows keeps the fetched rows dated strictly after last that belong to
// competition. An empty last accepts every date. The first row wins when the
// source repeats a date.
func SelectNewRows(fetched []*MatchRow, last, competition string) []*MatchRow {
	seen := map[string]bool{}
	var fresh []*MatchRow
	for _, row := range fetched {
		if row == nil || row.Competition != competition {
			continue
		}
		if last != "" && row.Date <= last {
			continue
		}
		if seen[row.Date] {
			logger.Warn("Duplicate fixture date in match log, keeping the first", row.Team, row.Date)
			continue
		}
		seen[row.Date] = true
		fresh = append(fresh, row)
	}
	return fresh
}

// Reconstructing is the part of the Reconstructor the merger depends on
type Reconstructing interface {
	Reconstruct(ctx context.Context, team string, row *MatchRow) (*Reconstruction, error)
}

// Merger folds a freshly fetched match log into a team's persisted dataset
type Merger struct {
	store         *Store
	reconstructor Reconstructing
	league        League
	metrics       *Metrics
	runID         string
}

// NewMerger builds a Merger, metrics may be nil
func NewMerger(store *Store, reconstructor Reconstructing, league League, metrics *Metrics, runID string) *Merger {
	return &Merger{
		store:         store,
		reconstructor: reconstructor,
		league:        league,
		metrics:       metrics,
		runID:         runID,
	}
}

// Merge loads the team's dataset, reconstructs every new row, enriches the
// working set and saves it when the team is new or something new was found.
// Row failures are classified and recorded, store failures are returned.
func (m *Merger) Merge(ctx context.Context, team string, fetched []*MatchRow) (*MergeResult, error) {
	existing, found, err := m.store.Load(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset of %s: %w", team, err)
	}

	var persisted []*MatchRow
	last := ""
	if found {
		persisted = existing.Rows
		last = existing.LastDate()
	}

	fresh := SelectNewRows(fetched, last, m.league.Competition)
	res := &MergeResult{Team: team, New: len(fresh)}
	logger.Info("New matches for", team, len(fresh), "after", last)

	for _, row := range fresh {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := m.reconstructor.Reconstruct(ctx, team, row)
		if err != nil {
			f := withDate(row.Date, err)
			res.Failures = append(res.Failures, f)
			logger.Warn("Skipping match", team, f)
			continue
		}
		row.MatchID = rec.MatchID
		row.Cautions = rec.Buckets
		res.Reconstructed++
	}

	working := make([]*MatchRow, 0, len(persisted)+len(fresh))
	working = append(working, persisted...)
	working = append(working, fresh...)
	working = Enrich(working)
	res.Kept = len(working)

	if found && len(fresh) == 0 {
		logger.Info("Nothing new for", team)
		m.metrics.Record(team, res)
		return res, nil
	}

	ds := &TeamDataset{
		Team:   team,
		League: m.league.Key,
		Rows:   working,
		RunID:  m.runID,
	}
	if err := m.store.Save(ctx, ds); err != nil {
		return nil, fmt.Errorf("failed to save dataset of %s: %w", team, err)
	}
	res.Saved = true
	m.metrics.Record(team, res)
	return res, nil
}
