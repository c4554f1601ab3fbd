package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/richard-senior/cardstats/pkg/cards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		leagueFlag, dataPathFlag, configPath = "", "", ""
		showFrequencies = false
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLeaguesCommand(t *testing.T) {
	t.Setenv(cards.ConfigFileEnv, "")
	out, err := runCLI(t, "leagues", "--data", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "italska_liga")
	assert.Contains(t, out, "Serie A")
	assert.Contains(t, out, "laliga")
}

func TestStatsCommand(t *testing.T) {
	t.Setenv(cards.ConfigFileEnv, "")
	data := t.TempDir()

	store := cards.NewStore(data, "laliga")
	goals := 1
	row := &cards.MatchRow{Date: "2020-09-27", Team: "Barcelona", Competition: "La Liga", Referee: "Mateu Lahoz", GoalsFor: &goals, Cautions: cards.NewCautionBuckets()}
	row.Cautions.HomeFirst = []string{"Busquets"}
	require.NoError(t, store.Save(context.Background(), &cards.TeamDataset{Team: "Barcelona", Rows: cards.Enrich([]*cards.MatchRow{row})}))

	out, err := runCLI(t, "stats", "Mateu Lahoz", "Barcelona", "Sevilla", "--league", "laliga", "--data", data, "--frequencies")
	require.NoError(t, err)
	assert.Contains(t, out, "team Sevilla has never played under referee Mateu Lahoz")
	assert.Contains(t, out, "Cards for Barcelona")
}

func TestStatsCommandWithoutData(t *testing.T) {
	t.Setenv(cards.ConfigFileEnv, "")
	_, err := runCLI(t, "stats", "Orsato", "Inter", "Milan", "--data", filepath.Join(t.TempDir(), "none"))
	assert.ErrorContains(t, err, "run 'cardstats refresh' first")
}
