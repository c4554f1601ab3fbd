package cards

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/richard-senior/cardstats/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fbrefServer serves one Serie A league page, two squads and their match reports
func fbrefServer(t *testing.T) *httptest.Server {
	t.Helper()
	league := Leagues["italska_liga"]

	var inter []fixtureMatch
	for i := 1; i <= 10; i++ {
		m := fixtureMatch{
			date:     fmt.Sprintf("2020-10-%02d", i),
			comp:     league.Competition,
			opponent: "Opponent",
			referee:  "Orsato",
			gf:       "1",
			matchID:  fmt.Sprintf("int%02d", i),
		}
		if i == 4 {
			m.matchID = ""
		}
		inter = append(inter, m)
	}
	inter = append(inter, fixtureMatch{date: "2020-10-20", comp: "Champions Lg", opponent: "Real Madrid", gf: "2", matchID: "cl01"})

	milan := []fixtureMatch{
		{date: "2020-10-01", comp: league.Competition, opponent: "Inter", referee: "Guida", gf: "2", matchID: "gone"},
		{date: "2020-10-08", comp: league.Competition, opponent: "Roma", referee: "Orsato", gf: "0", matchID: "mil02"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(league.Path, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, leaguePageHTML(league.TeamTableID, map[string]string{
			"Inter": "/en/squads/d609edc0/Internazionale-Stats",
			"Milan": "/en/squads/dc56fe14/Milan-Stats",
		}))
	})
	mux.HandleFunc("/en/squads/d609edc0/Internazionale-Stats", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, teamPageHTML(inter))
	})
	mux.HandleFunc("/en/squads/dc56fe14/Milan-Stats", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, teamPageHTML(milan))
	})
	mux.HandleFunc("/en/matches/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case matchHref("gone"):
			http.NotFound(w, r)
		case matchHref("mil02"):
			fmt.Fprint(w, matchPageHTML("Roma", "Milan", []fixtureEvent{
				header("Kick Off"), card("a", "Mancini"), card("b", "Kessié"), header("Half Time"), card("b", "Tonali"),
			}))
		case matchHref("int03"):
			// Inter listed second, their cards are role b
			fmt.Fprint(w, matchPageHTML("Opponent", "Inter", []fixtureEvent{
				header("Kick Off"), card("b", "Barella"), header("Half Time"), card("a", "Someone"), card("b", "Brozović"),
			}))
		default:
			fmt.Fprint(w, matchPageHTML("Inter", "Opponent", []fixtureEvent{
				header("Kick Off"), card("a", "Barella"), goal("a", "Lukaku"), header("Half Time"),
			}))
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testScraperConfig(t *testing.T, baseURL string) *CardsConfig {
	cfg := DefaultCardsConfig()
	cfg.BaseURL = baseURL
	cfg.DataPath = filepath.Join(t.TempDir(), "data")
	cfg.CachePath = filepath.Join(t.TempDir(), "cache")
	cfg.Pause = 0
	cfg.SnapshotFailures = true
	return cfg
}

func TestScraperRun(t *testing.T) {
	srv := fbrefServer(t)
	cfg := testScraperConfig(t, srv.URL)
	client := transport.NewClient(transport.Options{Timeout: 5 * time.Second})
	ctx := context.Background()

	metrics := NewMetrics()
	s, err := NewScraper(cfg, client, metrics)
	require.NoError(t, err)

	results, err := s.Run(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byTeam := map[string]*MergeResult{}
	for _, r := range results {
		byTeam[r.Team] = r
	}

	inter := byTeam["Inter"]
	require.NotNil(t, inter)
	assert.Equal(t, 10, inter.New)
	assert.Equal(t, 9, inter.Reconstructed)
	assert.Equal(t, 9, inter.Kept)
	assert.Equal(t, map[FailureKind]int{FailureMissingMarker: 1}, inter.FailuresByKind())

	milan := byTeam["Milan"]
	require.NotNil(t, milan)
	assert.Equal(t, map[FailureKind]int{FailureNetwork: 1}, milan.FailuresByKind())
	assert.Equal(t, 1, milan.Kept)

	ds, found, err := s.Store().Load(ctx, "Inter")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, ds.Rows, 9)
	assert.Equal(t, s.RunID(), ds.RunID)
	for _, r := range ds.Rows {
		assert.NotEqual(t, "2020-10-04", r.Date)
		assert.Equal(t, "Serie A", r.Competition)
	}
	assert.Equal(t, []string{"Barella"}, ds.Rows[0].Cautions.HomeFirst)

	switched := ds.Rows[2]
	require.Equal(t, "2020-10-03", switched.Date)
	assert.Equal(t, "int03", switched.MatchID)
	assert.Equal(t, []string{"Barella"}, switched.Cautions.HomeFirst)
	assert.Equal(t, []string{"Brozović"}, switched.Cautions.HomeSecond)
	assert.Equal(t, []string{"Someone"}, switched.Cautions.OpponentSecond)

	mds, _, err := s.Store().Load(ctx, "Milan")
	require.NoError(t, err)
	require.Len(t, mds.Rows, 1)
	assert.Equal(t, []string{"Kessié"}, mds.Rows[0].Cautions.HomeFirst)
	assert.Equal(t, []string{"Mancini"}, mds.Rows[0].Cautions.OpponentFirst)
	assert.Equal(t, []string{"Tonali"}, mds.Rows[0].Cautions.HomeSecond)

	metricsFile := filepath.Join(t.TempDir(), "cardstats.prom")
	require.NoError(t, metrics.WriteTextfile(metricsFile))
	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `cardstats_refresh_reconstruct_failures_total{kind="missing_marker",team="Inter"} 1`)
	assert.Contains(t, string(prom), `cardstats_refresh_datasets_saved_total 2`)
}

func TestScraperSecondRunLeavesDatasetsUntouched(t *testing.T) {
	srv := fbrefServer(t)
	cfg := testScraperConfig(t, srv.URL)
	client := transport.NewClient(transport.Options{Timeout: 5 * time.Second})
	ctx := context.Background()

	first, err := NewScraper(cfg, client, nil)
	require.NoError(t, err)
	_, err = first.Run(ctx)
	require.NoError(t, err)

	paths := []string{first.Store().Path("Inter"), first.Store().Path("Milan")}
	var before [][]byte
	for _, p := range paths {
		b, err := os.ReadFile(p)
		require.NoError(t, err)
		before = append(before, b)
	}

	second, err := NewScraper(cfg, client, nil)
	require.NoError(t, err)
	results, err := second.Run(ctx)
	require.NoError(t, err)
	for _, r := range results {
		assert.False(t, r.Saved, r.Team)
		assert.Zero(t, r.New, r.Team)
	}

	for i, p := range paths {
		after, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, before[i], after, p)
	}
}

func TestScraperMissingTeamTableIsFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>maintenance</p></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s, err := NewScraper(testScraperConfig(t, srv.URL), transport.NewClient(transport.Options{}), nil)
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestScraperPacesTeams(t *testing.T) {
	srv := fbrefServer(t)
	cfg := testScraperConfig(t, srv.URL)
	cfg.Pause = 50 * time.Millisecond

	s, err := NewScraper(cfg, transport.NewClient(transport.Options{}), nil)
	require.NoError(t, err)

	start := time.Now()
	_, err = s.Run(context.Background())
	require.NoError(t, err)
	// league page, then one wait before each of the two teams
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestNewScraperUnknownLeague(t *testing.T) {
	cfg := DefaultCardsConfig()
	cfg.League = "bundesliga"
	_, err := NewScraper(cfg, &fakeFetcher{}, nil)
	assert.ErrorIs(t, err, ErrUnknownLeague)
}
