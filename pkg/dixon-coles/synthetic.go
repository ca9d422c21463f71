package dixoncoles

import (
	"math"

	"golang.org/x/exp/rand"
)

// TeamStrengths are known team-model parameters, on the same scale Fit reports them
type TeamStrengths struct {
	Offense       map[string]float64
	Defense       map[string]float64
	HomeAdvantage float64
	Rho           float64
}

// Rates returns the Poisson scoring rates of a fixture
func (s TeamStrengths) Rates(fixture Fixture) (home, away float64) {
	home = math.Exp(s.Offense[fixture.HomeTeam] + s.Defense[fixture.AwayTeam] + s.HomeAdvantage)
	away = math.Exp(s.Offense[fixture.AwayTeam] + s.Defense[fixture.HomeTeam])
	return home, away
}

// SimulateMatches draws one Dixon-Coles result per fixture.
//
// Independent Poisson draws are accepted with probability tau / max(tau), which samples
// the exact Dixon-Coles joint distribution since tau leaves the total mass at 1.
func SimulateMatches(fixtures []Fixture, strengths TeamStrengths, season string, src rand.Source) ([]MatchResult, error) {
	if src == nil {
		src = rand.NewSource(1)
	}
	uniform := rand.New(src)

	results := make([]MatchResult, 0, len(fixtures))
	for i, fixture := range fixtures {
		for _, team := range []string{fixture.HomeTeam, fixture.AwayTeam} {
			if _, ok := strengths.Offense[team]; !ok {
				return nil, inputErrorf("offense", "fixture %d: no offense parameter for %q", i, team)
			}
			if _, ok := strengths.Defense[team]; !ok {
				return nil, inputErrorf("defense", "fixture %d: no defense parameter for %q", i, team)
			}
		}

		home, away := strengths.Rates(fixture)
		ceiling := 1.0
		for _, goals := range [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
			tau := Tau(goals[0], goals[1], home, away, strengths.Rho)
			if tau < 0 {
				return nil, inputErrorf("rho", "fixture %s: rho %v gives negative probability for %d-%d",
					fixture.Name(), strengths.Rho, goals[0], goals[1])
			}
			ceiling = math.Max(ceiling, tau)
		}

		for {
			homeGoals := PoissonSample(home, src)
			awayGoals := PoissonSample(away, src)
			if uniform.Float64()*ceiling <= Tau(homeGoals, awayGoals, home, away, strengths.Rho) {
				results = append(results, MatchResult{
					Season:    season,
					HomeTeam:  fixture.HomeTeam,
					AwayTeam:  fixture.AwayTeam,
					HomeGoals: homeGoals,
					AwayGoals: awayGoals,
				})
				break
			}
		}
	}

	return results, nil
}

// RoundRobin lists every ordered pairing of teams, repeated rounds times
func RoundRobin(teams []string, rounds int) []Fixture {
	return calcRemainingFixtures(teams, nil, rounds)
}
