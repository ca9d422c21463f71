package dixoncoles

import (
	"sort"
	"strings"
)

// calcLeagueTable generates a league table from played matches
func calcLeagueTable(teamNames []string, matches []MatchResult) []Team {
	teams := make(map[string]*Team, len(teamNames))
	for _, name := range teamNames {
		teams[name] = &Team{Name: name}
	}

	for _, match := range matches {
		home, away := teams[match.HomeTeam], teams[match.AwayTeam]
		// Matches against teams outside the table are ignored
		if home == nil || away == nil {
			continue
		}

		if match.HomeGoals > match.AwayGoals {
			home.Points += 3
		} else if match.HomeGoals < match.AwayGoals {
			away.Points += 3
		} else {
			home.Points++
			away.Points++
		}

		home.GoalDifference += match.HomeGoals - match.AwayGoals
		away.GoalDifference += match.AwayGoals - match.HomeGoals
		home.Played++
		away.Played++
	}

	result := make([]Team, 0, len(teams))
	for _, name := range teamNames {
		result = append(result, *teams[name])
	}

	// Sort by points (descending), then by goal difference (descending)
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Points == result[j].Points {
			return result[i].GoalDifference > result[j].GoalDifference
		}
		return result[i].Points > result[j].Points
	})

	return result
}

// calcRemainingFixtures lists the fixtures still to be played when every team hosts
// every other team `rounds` times
func calcRemainingFixtures(teamNames []string, matches []MatchResult, rounds int) []Fixture {
	playedCounts := make(map[Fixture]int)
	for _, match := range matches {
		playedCounts[Fixture{HomeTeam: match.HomeTeam, AwayTeam: match.AwayTeam}]++
	}

	var remaining []Fixture
	for _, homeTeam := range teamNames {
		for _, awayTeam := range teamNames {
			if homeTeam == awayTeam {
				continue
			}
			fixture := Fixture{HomeTeam: homeTeam, AwayTeam: awayTeam}
			for k := playedCounts[fixture]; k < rounds; k++ {
				remaining = append(remaining, fixture)
			}
		}
	}

	return remaining
}

// getRounds determines number of rounds based on league (SCO=2, others=1)
func getRounds(league string) int {
	if strings.HasPrefix(league, "SCO") {
		return 2
	}
	return 1
}
