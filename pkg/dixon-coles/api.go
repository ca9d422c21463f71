package dixoncoles

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
)

// RunSimulation fits the team model to the historical data, prices every pairing of
// the latest season's teams in each league and simulates the rest of that season.
// This is the main entry point for the package
func RunSimulation(request MLERequest) (*MLEResult, error) {
	startTime := time.Now()

	if err := ValidateMatches(request.HistoricalData); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	sim := request.Options.SimParams
	if sim == nil {
		sim = DefaultSimParams()
	}
	logger := orDefaultLogger(request.Options.Logger)

	entities := ExtractGlobalEntities(request.HistoricalData)
	logger.WithFields(logrus.Fields{
		"teams":   len(entities.Teams),
		"leagues": len(entities.Leagues),
		"seasons": len(entities.Seasons),
	}).Info("fitting Dixon-Coles team model")

	frame, err := FrameFromMatches(request.HistoricalData, MatchFrameOptions{
		Teams:          entities.Teams,
		TimeDecayBase:  sim.TimeDecayBase,
		TimeDecayPower: sim.TimeDecayPower,
	})
	if err != nil {
		return nil, fmt.Errorf("building match data: %w", err)
	}

	cols := DefaultTeamColumns()
	model, err := FitTeams(frame, cols, sim.Weights, FitOptions{
		Optimizer: sim.Optimizer,
		Logger:    logger,
		Debug:     request.Options.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("MLE optimization failed: %w", err)
	}

	params := mleParams(model)
	teams := teamRatings(params, entities.Teams)

	seed := sim.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewSource(seed)

	latestSeason := FindLatestSeason(request.HistoricalData)
	teamIndex := make(map[string]int, len(teams))
	for i, team := range teams {
		teamIndex[team.Name] = i
	}

	var matchOdds []MatchOdds
	eventsByLeague := GroupEventsByLeague(request.HistoricalData)
	for _, league := range entities.Leagues {
		var seasonMatches []MatchResult
		for _, match := range eventsByLeague[league] {
			if match.Season == latestSeason {
				seasonMatches = append(seasonMatches, match)
			}
		}
		leagueTeams := ExtractTeams(seasonMatches)
		if len(leagueTeams) < 2 {
			continue
		}

		odds, err := priceLeague(model, cols, league, leagueTeams, sim)
		if err != nil {
			return nil, fmt.Errorf("pricing %s: %w", league, err)
		}
		matchOdds = append(matchOdds, odds...)

		table := calcLeagueTable(leagueTeams, seasonMatches)
		fixtures := calcRemainingFixtures(leagueTeams, seasonMatches, getRounds(league))
		simPoints, err := SimulateSeason(model, table, fixtures, SeasonOptions{
			Columns:   cols,
			Paths:     sim.SimulationPaths,
			UpTo:      sim.GoalSimulationBound,
			Threshold: sim.ScorelineThreshold,
			Src:       src,
		})
		if err != nil {
			return nil, fmt.Errorf("simulating %s: %w", league, err)
		}
		expectedPoints := simPoints.ExpectedPoints()

		for _, row := range table {
			team := &teams[teamIndex[row.Name]]
			team.League = league
			team.Points = row.Points
			team.GoalDifference = row.GoalDifference
			team.Played = row.Played
			team.ExpectedSeasonPoints = expectedPoints[row.Name]
		}

		logger.WithFields(logrus.Fields{
			"league":   league,
			"teams":    len(leagueTeams),
			"fixtures": len(fixtures),
			"paths":    sim.SimulationPaths,
		}).Debug("simulated remaining season")
	}

	return &MLEResult{
		Teams:            teams,
		MatchOdds:        matchOdds,
		MLEParams:        params,
		LatestSeason:     latestSeason,
		Model:            model,
		ProcessingTime:   time.Since(startTime),
		MatchesProcessed: len(request.HistoricalData),
	}, nil
}

// mleParams summarises a fitted team model. Defense ratings are reported with the sign
// flipped so that a higher rating means a stronger defense.
func mleParams(model *FittedModel) MLEParams {
	params := model.Params()
	homeAdvantage, _ := params.Get(HomeAdvantageTerm)

	out := MLEParams{
		HomeAdvantage:  homeAdvantage,
		Rho:            params.Rho,
		AttackRatings:  make(map[string]float64),
		DefenseRatings: make(map[string]float64),
		LogLikelihood:  model.LogLikelihood(),
		Iterations:     model.Optimizer().Iterations,
		Converged:      model.Converged(),
	}
	for _, c := range params.Coefficients() {
		switch c.Term {
		case OffenseTerm:
			out.AttackRatings[c.Category] = c.Value
		case DefenseTerm:
			out.DefenseRatings[c.Category] = -c.Value
		}
	}
	return out
}

// teamRatings builds one Team per name with model ratings and no league table data
func teamRatings(params MLEParams, names []string) []Team {
	teams := make([]Team, 0, len(names))
	for _, name := range names {
		attack := params.AttackRatings[name]
		teams = append(teams, Team{
			Name:          name,
			AttackRating:  attack,
			DefenseRating: params.DefenseRatings[name],
			LambdaHome:    math.Exp(attack + params.HomeAdvantage),
			LambdaAway:    math.Exp(attack),
		})
	}
	return teams
}

// priceLeague prices every ordered pairing of teams within one league
func priceLeague(model *FittedModel, cols TeamColumns, league string, teams []string, sim *SimParams) ([]MatchOdds, error) {
	fixtures := calcRemainingFixtures(teams, nil, 1)

	frame, err := NewFixtureFrame(fixtures, cols, model.Categories(OffenseTerm))
	if err != nil {
		return nil, err
	}
	matrices, err := scoreMatrices(model, frame, sim.GoalSimulationBound)
	if err != nil {
		return nil, err
	}

	odds := make([]MatchOdds, len(fixtures))
	for i, fixture := range fixtures {
		sm := matrices[i]
		outcome := SumOutcomes(sm.Scorelines(sim.ScorelineThreshold))
		homeExpected, awayExpected := sm.ExpectedGoals()
		over, _ := sm.OverUnder(2)
		both, _ := sm.BothTeamsToScore()

		odds[i] = MatchOdds{
			Fixture:       fixture.Name(),
			League:        league,
			Probabilities: [3]float64{outcome.HomeWin, outcome.Draw, outcome.AwayWin},
			ExpectedGoals: [2]float64{homeExpected, awayExpected},
			Over2p5:       over,
			BothToScore:   both,
		}
	}

	sort.SliceStable(odds, func(i, j int) bool {
		return odds[i].Fixture < odds[j].Fixture
	})
	return odds, nil
}
