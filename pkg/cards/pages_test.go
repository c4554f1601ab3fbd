package cards

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableSkipsRepeatedHeaders(t *testing.T) {
	var matches []fixtureMatch
	for _, d := range []string{"2020-09-27", "2020-10-04", "2020-10-18", "2020-10-24", "2020-10-31"} {
		matches = append(matches, fixtureMatch{date: d, comp: "Serie A", opponent: "Milan", referee: "Orsato", gf: "2", matchID: "m" + d})
	}
	doc, err := ParseDocument([]byte(teamPageHTML(matches)))
	require.NoError(t, err)

	rows, err := ParseTable(doc, MatchLogTableID)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "2020-09-27", rows[0].Cells["date"])
	assert.Equal(t, matchHref("m2020-09-27"), rows[0].Links["date"])
	assert.Equal(t, "Milan", rows[0].Cells["opponent"])
}

func TestParseTableMissing(t *testing.T) {
	doc, err := ParseDocument([]byte(`<html><body><table id="other"></table></body></html>`))
	require.NoError(t, err)

	_, err = ParseTable(doc, MatchLogTableID)
	assert.True(t, errors.Is(err, ErrTableNotFound))
}

func TestMatchRowFromTable(t *testing.T) {
	doc, err := ParseDocument([]byte(teamPageHTML([]fixtureMatch{
		{date: "2020-09-27", comp: "Serie A", opponent: "Fiorentina", referee: "Orsato", gf: "4", matchID: "abc123"},
	})))
	require.NoError(t, err)
	rows, err := ParseTable(doc, MatchLogTableID)
	require.NoError(t, err)

	row, err := MatchRowFromTable("Inter", rows[0])
	require.NoError(t, err)

	assert.Equal(t, "2020-09-27", row.Date)
	assert.Equal(t, "Inter", row.Team)
	assert.Equal(t, "Serie A", row.Competition)
	assert.Equal(t, "Fiorentina", row.Opponent)
	assert.Equal(t, "Orsato", row.Referee)
	assert.Equal(t, "20:45", row.Time)
	require.NotNil(t, row.GoalsFor)
	assert.Equal(t, 4, *row.GoalsFor)
	require.NotNil(t, row.XG)
	assert.InDelta(t, 1.4, *row.XG, 1e-9)
	assert.Equal(t, matchHref("abc123"), row.detailHref)

	// dropped columns are gone, unknown ones are kept
	assert.Equal(t, Extra{"opp_formation": "4-3-3"}, row.Extra)
	assert.Nil(t, row.Cautions)
}

func TestMatchRowFromTableRejectsHeaderText(t *testing.T) {
	_, err := MatchRowFromTable("Inter", TableRow{Cells: map[string]string{"date": "Date"}})
	assert.Error(t, err)
}

func TestMatchRowFromTableBlankGoals(t *testing.T) {
	row, err := MatchRowFromTable("Inter", TableRow{Cells: map[string]string{"date": "2021-05-23", "goals_for": ""}})
	require.NoError(t, err)
	assert.Nil(t, row.GoalsFor)
}

func TestParseTeamSites(t *testing.T) {
	doc, err := ParseDocument([]byte(leaguePageHTML("results107301_overall", map[string]string{
		"Inter": "/en/squads/d609edc0/Internazionale-Stats",
	})))
	require.NoError(t, err)

	sites, err := ParseTeamSites(doc, "results107301_overall", "https://fbref.com/")
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "Inter", sites[0].Name)
	assert.Equal(t, "https://fbref.com/en/squads/d609edc0/Internazionale-Stats", sites[0].URL)

	_, err = ParseTeamSites(doc, "results107311_overall", "https://fbref.com")
	assert.True(t, errors.Is(err, ErrTableNotFound))
}

func TestParseMatchPage(t *testing.T) {
	doc, err := ParseDocument([]byte(matchPageHTML("Inter", "Fiorentina", []fixtureEvent{
		header("Kick Off"),
		card("a", "Barella"),
		goal("b", "Vlahović"),
		header("Half Time"),
		card("b", "Castrovilli"),
	})))
	require.NoError(t, err)

	page, err := ParseMatchPage(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Inter", "Fiorentina"}, page.Performers)
	require.Len(t, page.Events, 5)

	assert.Equal(t, MatchEvent{Kind: EventHeader, Header: "Kick Off"}, page.Events[0])
	assert.Equal(t, MatchEvent{Kind: EventParticipant, Role: "a", CautionType: "yellow_card", Player: "Barella"}, page.Events[1])
	assert.Equal(t, "goal", page.Events[2].CautionType)
	assert.Equal(t, "Half Time", page.Events[3].Header)
	assert.Equal(t, "b", page.Events[4].Role)
}

func TestParseMatchPageMissingMarkers(t *testing.T) {
	doc, err := ParseDocument([]byte(`<html><body><div itemprop="performer"><a>Inter</a></div></body></html>`))
	require.NoError(t, err)
	_, err = ParseMatchPage(doc)
	assert.Equal(t, FailureMissingMarker, Classify(err))

	doc, err = ParseDocument([]byte(`<html><body><div id="events_wrap"><div></div></div></body></html>`))
	require.NoError(t, err)
	_, err = ParseMatchPage(doc)
	assert.Equal(t, FailureMissingMarker, Classify(err))
}

func TestParseMatchPageMalformedEvent(t *testing.T) {
	html := `<html><body><div itemprop="performer"><a>Inter</a></div>
<div id="events_wrap"><div><div class="event a"><div>12</div></div></div></div></body></html>`
	doc, err := ParseDocument([]byte(html))
	require.NoError(t, err)

	_, err = ParseMatchPage(doc)
	assert.Equal(t, FailureMalformed, Classify(err))
}
