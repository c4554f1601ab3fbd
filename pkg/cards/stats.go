package cards

import (
	"fmt"
	"math"
)

// Summary aggregates the tracked team's own cautions over a set of matches
type Summary struct {
	Matches    int
	MeanFirst  float64
	MeanSecond float64
	SumFirst   int
	SumSecond  int
}

func summarize(rows []*MatchRow) Summary {
	s := Summary{Matches: len(rows)}
	for _, r := range rows {
		s.SumFirst += r.HomeFirstCount
		s.SumSecond += r.HomeSecondCount
	}
	if s.Matches > 0 {
		s.MeanFirst = round1(float64(s.SumFirst) / float64(s.Matches))
		s.MeanSecond = round1(float64(s.SumSecond) / float64(s.Matches))
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RefereeSlice is a team's record under one referee.
// Found is false when the pair never met.
type RefereeSlice struct {
	Team    string
	Referee string
	Found   bool
	Summary Summary
}

// Absence explains a missing slice, "" when the slice was found
func (s RefereeSlice) Absence() string {
	if s.Found {
		return ""
	}
	return fmt.Sprintf("team %s has never played under referee %s", s.Team, s.Referee)
}

// TeamStats is everything computed for one of the two teams
type TeamStats struct {
	Team         string
	Sample       []float64 // own cautions per match
	Distribution CumulativeDistribution
	Overall      Summary
	UnderReferee RefereeSlice
}

// StatsResult is the full conditioning outcome for a fixture
type StatsResult struct {
	Referee  string
	Teams    [2]TeamStats
	Combined []float64 // match totals of both teams' matches
	// CombinedDistribution is the CDF of Combined
	CombinedDistribution CumulativeDistribution
}

type refereeKey struct {
	referee string
	team    string
}

// Stats conditions the enriched rows on a referee and two teams.
// Nothing is retained between calls, plotting reads the returned samples.
func Stats(rows []*MatchRow, referee, team1, team2 string) *StatsResult {
	byTeam := map[string][]*MatchRow{}
	groups := map[refereeKey][]*MatchRow{}
	for _, r := range rows {
		byTeam[r.Team] = append(byTeam[r.Team], r)
		k := refereeKey{referee: r.Referee, team: r.Team}
		groups[k] = append(groups[k], r)
	}

	res := &StatsResult{Referee: referee}
	for i, team := range [2]string{team1, team2} {
		teamRows := byTeam[team]
		own := make([]int, len(teamRows))
		for j, r := range teamRows {
			own[j] = r.HomeCautions()
			res.Combined = append(res.Combined, float64(r.Total))
		}
		sample := IntSample(own)

		slice := RefereeSlice{Team: team, Referee: referee}
		if g, ok := groups[refereeKey{referee: referee, team: team}]; ok {
			slice.Found = true
			slice.Summary = summarize(g)
		}

		res.Teams[i] = TeamStats{
			Team:         team,
			Sample:       sample,
			Distribution: BuildCDF(sample),
			Overall:      summarize(teamRows),
			UnderReferee: slice,
		}
	}
	res.CombinedDistribution = BuildCDF(res.Combined)
	return res
}
