package cards

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/cardstats/internal/logger"
	"github.com/richard-senior/cardstats/pkg/util"
)

// MatchLogTableID is the id of the "Scores & Fixtures" table on a squad page
const MatchLogTableID = "matchlogs_for"

// ErrTableNotFound is returned when a page lacks the table a step depends on
var ErrTableNotFound = errors.New("table not found")

// match log columns that nothing downstream reads
var droppedColumns = map[string]bool{
	"result":       true,
	"attendance":   true,
	"captain":      true,
	"formation":    true,
	"notes":        true,
	"match_report": true,
}

// TableRow is one body row of an fbref table keyed by each cell's data-stat
type TableRow struct {
	Cells map[string]string
	Links map[string]string
}

// TeamSite is a squad listed in a league table
type TeamSite struct {
	Name string
	URL  string
}

// ParseDocument parses an html page
func ParseDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}
	return doc, nil
}

// ParseTable reads the body rows of table#id in document order.
// Repeated header and spacer rows are skipped.
func ParseTable(doc *goquery.Document, id string) ([]TableRow, error) {
	table := doc.Find("table#" + id)
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}

	var rows []TableRow
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") || tr.HasClass("spacer") {
			return
		}
		row := TableRow{Cells: map[string]string{}, Links: map[string]string{}}
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			stat, ok := cell.Attr("data-stat")
			if !ok {
				return
			}
			row.Cells[stat] = util.CleanText(cell.Text())
			if href, ok := cell.Find("a").First().Attr("href"); ok {
				row.Links[stat] = href
			}
		})
		if len(row.Cells) > 0 {
			rows = append(rows, row)
		}
	})
	return rows, nil
}

// ParseTeamSites lists the squads of a league table with absolute links
func ParseTeamSites(doc *goquery.Document, tableID, baseURL string) ([]TeamSite, error) {
	table := doc.Find("table#" + tableID)
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	var sites []TeamSite
	table.Find(`td[data-stat="squad"]`).Each(func(_ int, td *goquery.Selection) {
		name := util.CleanText(td.Text())
		href, ok := td.Find("a").First().Attr("href")
		if name == "" || !ok {
			logger.Warn("Skipping squad cell without a link", name)
			return
		}
		sites = append(sites, TeamSite{Name: name, URL: absoluteURL(baseURL, href)})
	})
	if len(sites) == 0 {
		return nil, fmt.Errorf("%w: %s has no squads", ErrTableNotFound, tableID)
	}
	return sites, nil
}

func absoluteURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(href, "/")
}

// MatchRowFromTable maps a match log row onto a MatchRow for team.
// Dropped columns are discarded, unknown columns land in Extra.
func MatchRowFromTable(team string, tr TableRow) (*MatchRow, error) {
	date := tr.Cells["date"]
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("row has no usable date %q: %w", date, err)
	}

	m := &MatchRow{
		Date:       date,
		Team:       team,
		detailHref: tr.Links["date"],
	}
	for stat, value := range tr.Cells {
		if droppedColumns[stat] {
			continue
		}
		var err error
		switch stat {
		case "date":
		case "comp":
			m.Competition = value
		case "start_time":
			m.Time = value
		case "round":
			m.Round = value
		case "dayofweek":
			m.Day = value
		case "venue":
			m.Venue = value
		case "opponent":
			m.Opponent = value
		case "referee":
			m.Referee = value
		case "goals_for":
			m.GoalsFor, err = util.ParseOptionalInt(value)
		case "goals_against":
			m.GoalsAgainst, err = util.ParseOptionalInt(value)
		case "xg_for":
			m.XG, err = util.ParseOptionalFloat(value)
		case "xg_against":
			m.XGA, err = util.ParseOptionalFloat(value)
		case "possession":
			m.Possession, err = util.ParseOptionalFloat(value)
		default:
			if m.Extra == nil {
				m.Extra = Extra{}
			}
			m.Extra[stat] = value
		}
		if err != nil {
			logger.Warn("Ignoring unparseable cell", date, stat, err)
		}
	}
	return m, nil
}

/////////////////////////////////////////////////////////////////////////
////// Match detail page
/////////////////////////////////////////////////////////////////////////

// EventKind separates half markers from things that happened to a player
type EventKind int

const (
	EventHeader EventKind = iota
	EventParticipant
)

// MatchEvent is one entry of the detail page event stream
type MatchEvent struct {
	Kind        EventKind
	Header      string // "Kick Off", "Half Time", ... for EventHeader
	Role        string // "a" or "b", the page relative side
	CautionType string // icon class, "yellow_card", "goal", ...
	Player      string
}

// MatchPage is what the reconstructor needs from a detail page
type MatchPage struct {
	Performers []string
	Events     []MatchEvent
}

// ParseMatchPage reads the performers and the event stream of a match report
func ParseMatchPage(doc *goquery.Document) (*MatchPage, error) {
	page := &MatchPage{}

	doc.Find(`div[itemprop="performer"]`).Each(func(_ int, s *goquery.Selection) {
		page.Performers = append(page.Performers, util.CleanText(s.Find("a").First().Text()))
	})
	if len(page.Performers) == 0 || page.Performers[0] == "" {
		return nil, missingMarker("no performers on match page")
	}

	wrap := doc.Find("div#events_wrap")
	if wrap.Length() == 0 {
		return nil, missingMarker("no events_wrap container on match page")
	}
	summary := wrap.Children().First()
	if summary.Length() == 0 {
		return nil, missingMarker("events_wrap container is empty")
	}

	var parseErr error
	summary.Find("div.event_header, div.event.a, div.event.b").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		ev, err := parseEvent(s)
		if err != nil {
			parseErr = err
			return false
		}
		page.Events = append(page.Events, ev)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return page, nil
}

func parseEvent(s *goquery.Selection) (MatchEvent, error) {
	if s.HasClass("event_header") {
		return MatchEvent{Kind: EventHeader, Header: util.CleanText(s.Text())}, nil
	}

	ev := MatchEvent{Kind: EventParticipant}
	switch {
	case s.HasClass("a"):
		ev.Role = "a"
	case s.HasClass("b"):
		ev.Role = "b"
	}

	// the icon is the third nested div, its second class names the event type
	info := s.Find("div").Eq(2)
	if info.Length() == 0 {
		return ev, malformed("event has no icon div")
	}
	classes := strings.Fields(info.AttrOr("class", ""))
	if len(classes) < 2 {
		return ev, malformed("event icon has no type class: %q", info.AttrOr("class", ""))
	}
	ev.CautionType = classes[1]
	ev.Player = util.CleanText(s.Find("a").First().Text())
	return ev, nil
}
