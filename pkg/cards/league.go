package cards

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownLeague is returned for a league key with no League entry
var ErrUnknownLeague = errors.New("unknown league")

// League is one tracked competition: where its team list lives and which
// competition label its match log rows carry
type League struct {
	Key         string // storage namespace, also the CLI name
	Path        string // league overview page, relative to the base url
	TeamTableID string // id of the standings table listing the squads
	Competition string // value of the Comp column kept by the merger
}

// Leagues holds every league context the scraper knows about
var Leagues = map[string]League{
	"laliga": {
		Key:         "laliga",
		Path:        "/en/comps/12/La-Liga-Stats",
		TeamTableID: "results107311_overall",
		Competition: "La Liga",
	},
	"italska_liga": {
		Key:         "italska_liga",
		Path:        "/en/comps/11/Serie-A-Stats",
		TeamTableID: "results107301_overall",
		Competition: "Serie A",
	},
	"ceska_liga": {
		Key:         "ceska_liga",
		Path:        "/en/comps/66/Czech-First-League-Stats",
		TeamTableID: "results107651_overall",
		Competition: "First League",
	},
}

// LookupLeague returns the League registered under key
func LookupLeague(key string) (League, error) {
	l, ok := Leagues[key]
	if !ok {
		return League{}, fmt.Errorf("%w %q, expected one of %s", ErrUnknownLeague, key, strings.Join(LeagueKeys(), ", "))
	}
	return l, nil
}

// LeagueKeys lists the registered league keys in a stable order
func LeagueKeys() []string {
	keys := make([]string, 0, len(Leagues))
	for k := range Leagues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// URL joins the league page onto baseURL
func (l League) URL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + l.Path
}
