package cards

import (
	"context"
	"fmt"
	"strings"

	"github.com/richard-senior/cardstats/internal/logger"
)

const (
	headerKickOff  = "Kick Off"
	headerHalfTime = "Half Time"
)

// Fetcher returns the body of a page
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// TrackedRole is the page relative role ("a" or "b") of the tracked team
type TrackedRole string

const (
	RoleA TrackedRole = "a"
	RoleB TrackedRole = "b"
)

// RoleFor resolves which page role the tracked team plays.
// The first performer listed is role "a".
func RoleFor(firstPerformer, team string) TrackedRole {
	if firstPerformer == team {
		return RoleA
	}
	return RoleB
}

// Reconstruction is what a detail page contributes to a match row
type Reconstruction struct {
	MatchID string
	Buckets *CautionBuckets
}

// BuildCautionBuckets walks the event stream once, in page order.
// Every event before the "Half Time" header is first half, everything after is
// second half. Events of the tracked role are the home side.
func BuildCautionBuckets(events []MatchEvent, tracked TrackedRole, cautionType string) (*CautionBuckets, error) {
	b := NewCautionBuckets()
	secondHalf := false

	for i, ev := range events {
		if ev.Kind == EventHeader {
			// headers may carry the score after the label, "Half Time 1:0"
			switch {
			case strings.HasPrefix(ev.Header, headerKickOff):
			case strings.HasPrefix(ev.Header, headerHalfTime):
				secondHalf = true
			default:
				// extra time and penalty headers stay in the second half bucket
				logger.Debug("Ignoring event header", ev.Header)
			}
			continue
		}
		if ev.CautionType != cautionType {
			continue
		}
		if ev.Role != string(RoleA) && ev.Role != string(RoleB) {
			return nil, malformed("event %d has unknown role %q", i, ev.Role)
		}

		home := ev.Role == string(tracked)
		switch {
		case home && !secondHalf:
			b.HomeFirst = append(b.HomeFirst, ev.Player)
		case home:
			b.HomeSecond = append(b.HomeSecond, ev.Player)
		case !secondHalf:
			b.OpponentFirst = append(b.OpponentFirst, ev.Player)
		default:
			b.OpponentSecond = append(b.OpponentSecond, ev.Player)
		}
	}
	return b, nil
}

// MatchIDFromHref takes the identifier segment of /en/matches/<id>/<slug>
func MatchIDFromHref(href string) (string, error) {
	parts := strings.Split(href, "/")
	if len(parts) < 4 || parts[3] == "" {
		return "", malformed("match link %q has no identifier segment", href)
	}
	return parts[3], nil
}

// Reconstructor fetches match detail pages and buckets their cautions
type Reconstructor struct {
	fetcher     Fetcher
	baseURL     string
	cautionType string
	snapshots   *Snapshotter // nil disables snapshots
}

// NewReconstructor builds a Reconstructor, snapshots may be nil
func NewReconstructor(fetcher Fetcher, baseURL, cautionType string, snapshots *Snapshotter) *Reconstructor {
	return &Reconstructor{
		fetcher:     fetcher,
		baseURL:     baseURL,
		cautionType: cautionType,
		snapshots:   snapshots,
	}
}

// Reconstruct resolves the buckets of one match row of team.
// Every failure is a *ReconstructError carrying the row date.
func (r *Reconstructor) Reconstruct(ctx context.Context, team string, row *MatchRow) (*Reconstruction, error) {
	if row.detailHref == "" {
		return nil, withDate(row.Date, missingMarker("no detail link in date cell"))
	}
	matchID, err := MatchIDFromHref(row.detailHref)
	if err != nil {
		return nil, withDate(row.Date, err)
	}

	url := absoluteURL(r.baseURL, row.detailHref)
	body, err := r.fetcher.Get(ctx, url)
	if err != nil {
		return nil, withDate(row.Date, fmt.Errorf("failed to fetch %s: %w", url, err))
	}

	buckets, err := r.bucketsFromPage(body, team)
	if err != nil {
		if r.snapshots != nil {
			if path, serr := r.snapshots.Save(matchID, url, body); serr != nil {
				logger.Warn("Failed to snapshot page", url, serr)
			} else {
				logger.Info("Snapshot of unparseable page written to", path)
			}
		}
		return nil, withDate(row.Date, err)
	}

	logger.Debug("Reconstructed", team, row.Date, buckets)
	return &Reconstruction{MatchID: matchID, Buckets: buckets}, nil
}

func (r *Reconstructor) bucketsFromPage(body []byte, team string) (*CautionBuckets, error) {
	doc, err := ParseDocument(body)
	if err != nil {
		return nil, malformed("%v", err)
	}
	page, err := ParseMatchPage(doc)
	if err != nil {
		return nil, err
	}
	return BuildCautionBuckets(page.Events, RoleFor(page.Performers[0], team), r.cautionType)
}
