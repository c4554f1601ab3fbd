package cards

import (
	"fmt"
	"strings"
)

// fixtureMatch is one row of a generated match log
type fixtureMatch struct {
	date     string
	comp     string
	opponent string
	referee  string
	gf       string
	matchID  string // "" renders the date without a link
}

func matchHref(id string) string {
	return "/en/matches/" + id + "/Home-Away-Serie-A"
}

func teamPageHTML(matches []fixtureMatch) string {
	var b strings.Builder
	b.WriteString(`<html><body><table id="matchlogs_for"><thead><tr><th data-stat="date">Date</th></tr></thead><tbody>`)
	for i, m := range matches {
		if i == 3 {
			// fbref repeats the header inside long tables
			b.WriteString(`<tr class="thead"><th data-stat="date">Date</th><td data-stat="comp">Comp</td></tr>`)
		}
		csk := strings.ReplaceAll(m.date, "-", "")
		date := m.date
		if m.matchID != "" {
			date = fmt.Sprintf(`<a href="%s">%s</a>`, matchHref(m.matchID), m.date)
		}
		fmt.Fprintf(&b, `<tr><th data-stat="date" csk="%s">%s</th>`, csk, date)
		fmt.Fprintf(&b, `<td data-stat="start_time">20:45</td><td data-stat="comp"><a href="/en/comps/11">%s</a></td>`, m.comp)
		b.WriteString(`<td data-stat="round">Matchweek 1</td><td data-stat="dayofweek">Sun</td><td data-stat="venue">Home</td><td data-stat="result">W</td>`)
		fmt.Fprintf(&b, `<td data-stat="goals_for">%s</td><td data-stat="goals_against">1</td>`, m.gf)
		fmt.Fprintf(&b, `<td data-stat="opponent"><a href="/en/squads/x">%s</a></td>`, m.opponent)
		b.WriteString(`<td data-stat="xg_for">1.4</td><td data-stat="xg_against">0.9</td><td data-stat="possession">56</td>`)
		b.WriteString(`<td data-stat="attendance">12,000</td><td data-stat="captain">Handanovič</td><td data-stat="formation">3-5-2</td><td data-stat="opp_formation">4-3-3</td>`)
		fmt.Fprintf(&b, `<td data-stat="referee">%s</td>`, m.referee)
		b.WriteString(`<td data-stat="match_report"><a href="/en/matches/x">Match Report</a></td><td data-stat="notes"></td></tr>`)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

func leaguePageHTML(tableID string, squads map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<html><body><table id="%s"><tbody>`, tableID)
	for name, href := range squads {
		fmt.Fprintf(&b, `<tr><th data-stat="rank">1</th><td data-stat="squad"> <a href="%s">%s</a></td></tr>`, href, name)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

// fixtureEvent is either a header (header != "") or a participant event
type fixtureEvent struct {
	header string
	role   string
	kind   string
	player string
}

func header(text string) fixtureEvent {
	return fixtureEvent{header: text}
}

func card(role, player string) fixtureEvent {
	return fixtureEvent{role: role, kind: "yellow_card", player: player}
}

func goal(role, player string) fixtureEvent {
	return fixtureEvent{role: role, kind: "goal", player: player}
}

func matchPageHTML(first, second string, events []fixtureEvent) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="scorebox">`)
	for _, team := range []string{first, second} {
		fmt.Fprintf(&b, `<div><div itemprop="performer"><a href="/en/squads/x">%s</a></div></div>`, team)
	}
	b.WriteString(`</div><div id="events_wrap"><div id="events_summary">`)
	for _, ev := range events {
		if ev.header != "" {
			fmt.Fprintf(&b, `<div class="event_header"><div>%s</div></div>`, ev.header)
			continue
		}
		fmt.Fprintf(&b, `<div class="event %s"><div>12&rsquo;</div><div><div class="event_icon %s"></div><div><div><a href="/en/players/x">%s</a></div></div></div></div>`,
			ev.role, ev.kind, ev.player)
	}
	b.WriteString(`</div><div id="events_full"></div></div></body></html>`)
	return b.String()
}

func intPtr(v int) *int {
	return &v
}

// completeRow builds an enriched-ready row with the given buckets
func completeRow(team, date, referee string, homeFirst, homeSecond, oppFirst, oppSecond []string) *MatchRow {
	b := NewCautionBuckets()
	b.HomeFirst = append(b.HomeFirst, homeFirst...)
	b.HomeSecond = append(b.HomeSecond, homeSecond...)
	b.OpponentFirst = append(b.OpponentFirst, oppFirst...)
	b.OpponentSecond = append(b.OpponentSecond, oppSecond...)
	return &MatchRow{
		Date:        date,
		Team:        team,
		Competition: "Serie A",
		Referee:     referee,
		GoalsFor:    intPtr(1),
		MatchID:     "id" + strings.ReplaceAll(date, "-", ""),
		Cautions:    b,
	}
}
