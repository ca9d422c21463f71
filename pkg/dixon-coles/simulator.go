package dixoncoles

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// SeasonOptions controls SimulateSeason
type SeasonOptions struct {
	Columns   TeamColumns // Team columns the model was fitted with
	Paths     int         // Monte Carlo paths
	UpTo      int         // Goal bound of each fixture's scoreline table
	Threshold float64     // Scoreline cutoff; must be >= 0 so sampled weights are non-negative
	Src       rand.Source // Nil uses the global source
}

// SimPoints tracks points and goal difference per team per simulation path
type SimPoints struct {
	NPaths         int
	TeamNames      []string
	Points         [][]int // Match points (3/1/0) per team per simulation path
	GoalDifference [][]int // Goal difference per team per simulation path
	// Cache for position probabilities to avoid expensive recalculations
	positionCache map[string]map[string][]float64
}

// newSimPointsFromLeagueTable seeds every path with the current table
func newSimPointsFromLeagueTable(leagueTable []Team, nPaths int) *SimPoints {
	sp := &SimPoints{
		NPaths:         nPaths,
		TeamNames:      make([]string, len(leagueTable)),
		Points:         make([][]int, len(leagueTable)),
		GoalDifference: make([][]int, len(leagueTable)),
		positionCache:  make(map[string]map[string][]float64),
	}

	for i, team := range leagueTable {
		sp.TeamNames[i] = team.Name
		sp.Points[i] = make([]int, nPaths)
		sp.GoalDifference[i] = make([]int, nPaths)
		for j := 0; j < nPaths; j++ {
			sp.Points[i][j] = team.Points
			sp.GoalDifference[i][j] = team.GoalDifference
		}
	}

	return sp
}

// SimulateSeason plays out the remaining fixtures NPaths times on top of the current
// table, drawing each result from the fixture's Dixon-Coles scoreline table
func SimulateSeason(model *FittedModel, table []Team, fixtures []Fixture, opts SeasonOptions) (*SimPoints, error) {
	if opts.Paths <= 0 {
		return nil, inputErrorf("paths", "must be positive, got %d", opts.Paths)
	}
	if opts.Threshold < 0 {
		return nil, inputErrorf("threshold", "must be non-negative for sampling, got %v", opts.Threshold)
	}

	sp := newSimPointsFromLeagueTable(table, opts.Paths)
	if len(fixtures) == 0 {
		return sp, nil
	}

	frame, err := NewFixtureFrame(fixtures, opts.Columns, model.Categories(OffenseTerm))
	if err != nil {
		return nil, fmt.Errorf("building fixture data: %w", err)
	}

	tables, err := Scorelines(model, frame, opts.UpTo, opts.Threshold)
	if err != nil {
		return nil, err
	}

	for i, fixture := range fixtures {
		if err := sp.simulate(fixture, tables[i], opts.Src); err != nil {
			return nil, err
		}
	}

	return sp, nil
}

func (sp *SimPoints) getTeamIndex(teamName string) int {
	for i, name := range sp.TeamNames {
		if name == teamName {
			return i
		}
	}
	return -1
}

// simulate plays a single fixture across all paths
func (sp *SimPoints) simulate(fixture Fixture, lines []Scoreline, src rand.Source) error {
	homeIdx := sp.getTeamIndex(fixture.HomeTeam)
	awayIdx := sp.getTeamIndex(fixture.AwayTeam)
	if homeIdx == -1 || awayIdx == -1 {
		return nil
	}
	if len(lines) == 0 {
		return fmt.Errorf("fixture %s has an empty scoreline table", fixture.Name())
	}

	weights := make([]float64, len(lines))
	for i, line := range lines {
		weights[i] = line.Probability
	}
	scores := distuv.NewCategorical(weights, src)

	// Invalidate cached positions
	sp.positionCache = make(map[string]map[string][]float64)

	for path := 0; path < sp.NPaths; path++ {
		line := lines[int(scores.Rand())]
		homeGoals, awayGoals := line.HomeGoals, line.AwayGoals

		var homePoints, awayPoints int
		if homeGoals > awayGoals {
			homePoints = 3
		} else if homeGoals == awayGoals {
			homePoints = 1
			awayPoints = 1
		} else {
			awayPoints = 3
		}

		sp.Points[homeIdx][path] += homePoints
		sp.Points[awayIdx][path] += awayPoints

		// Track goal difference separately for tiebreaking
		sp.GoalDifference[homeIdx][path] += homeGoals - awayGoals
		sp.GoalDifference[awayIdx][path] += awayGoals - homeGoals
	}

	return nil
}

// ExpectedPoints averages final points over all paths
func (sp *SimPoints) ExpectedPoints() map[string]float64 {
	expected := make(map[string]float64, len(sp.TeamNames))
	for i, name := range sp.TeamNames {
		points := make([]float64, sp.NPaths)
		for path, p := range sp.Points[i] {
			points[path] = float64(p)
		}
		expected[name] = floats.Sum(points) / float64(sp.NPaths)
	}
	return expected
}

// PositionProbabilities returns, for each named team, the probability of finishing in each
// position among the named teams (all teams when nil), ranked by points then goal difference
func (sp *SimPoints) PositionProbabilities(teamNames []string) map[string][]float64 {
	if teamNames == nil {
		teamNames = sp.TeamNames
	}

	sortedNames := append([]string(nil), teamNames...)
	sort.Strings(sortedNames)
	cacheKey := strings.Join(sortedNames, "|")
	if cached, exists := sp.positionCache[cacheKey]; exists {
		return cached
	}

	var selected []int
	for _, name := range teamNames {
		if idx := sp.getTeamIndex(name); idx >= 0 {
			selected = append(selected, idx)
		}
	}

	probabilities := make(map[string][]float64, len(selected))
	for _, idx := range selected {
		probabilities[sp.TeamNames[idx]] = make([]float64, len(selected))
	}
	if len(selected) == 0 {
		return probabilities
	}

	order := make([]int, len(selected))
	share := 1.0 / float64(sp.NPaths)
	for path := 0; path < sp.NPaths; path++ {
		copy(order, selected)
		sort.SliceStable(order, func(i, j int) bool {
			a, b := order[i], order[j]
			if sp.Points[a][path] != sp.Points[b][path] {
				return sp.Points[a][path] > sp.Points[b][path]
			}
			return sp.GoalDifference[a][path] > sp.GoalDifference[b][path]
		})
		for pos, idx := range order {
			probabilities[sp.TeamNames[idx]][pos] += share
		}
	}

	sp.positionCache[cacheKey] = probabilities
	return probabilities
}
