package dixoncoles

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

var testTeams = []string{"Arsenal", "Brighton", "Chelsea", "Everton", "Fulham", "Leeds"}

// knownStrengths returns team parameters already on the fitted scale
func knownStrengths() TeamStrengths {
	off := map[string]float64{"Arsenal": 0.35, "Brighton": 0.1, "Chelsea": 0.2, "Everton": -0.25, "Fulham": -0.05, "Leeds": -0.3}
	def := map[string]float64{"Arsenal": -0.3, "Brighton": 0.05, "Chelsea": -0.15, "Everton": 0.1, "Fulham": 0.0, "Leeds": 0.25}

	// Pin mean(exp(off)) == 1 and move the offset into defense so rates are unchanged
	sum := 0.0
	for _, v := range off {
		sum += math.Exp(v)
	}
	shift := math.Log(sum / float64(len(off)))
	for team := range off {
		off[team] -= shift
		def[team] += shift
	}

	return TeamStrengths{Offense: off, Defense: def, HomeAdvantage: 0.25, Rho: -0.1}
}

func simulatedMatches(t *testing.T, rounds int, season string, seed uint64) []MatchResult {
	t.Helper()
	matches, err := SimulateMatches(RoundRobin(testTeams, rounds), knownStrengths(), season, rand.NewSource(seed))
	require.NoError(t, err)
	return matches
}

func nullLogger() (*logrus.Entry, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(logger), hook
}

// smallFrame is three matches between teams A, B and C
func smallFrame(t *testing.T) *Frame {
	t.Helper()
	levels := []string{"A", "B", "C"}

	home, err := NewCategoricalColumn(ColHomeTeam, []string{"A", "B", "C"}, levels...)
	require.NoError(t, err)
	away, err := NewCategoricalColumn(ColAwayTeam, []string{"B", "C", "A"}, levels...)
	require.NoError(t, err)
	league, err := NewCategoricalColumn(ColLeague, []string{"ENG1", "ENG1", "ENG2"})
	require.NoError(t, err)

	frame, err := NewFrame(
		home,
		away,
		NewNumericColumn(ColHomeGoals, []float64{1, 0, 2}),
		NewNumericColumn(ColAwayGoals, []float64{0, 0, 1}),
		NewNumericColumn(ColTimeWeight, []float64{1, 0.5, 0.25}),
		league,
	)
	require.NoError(t, err)
	return frame
}

// fixedModel is a team model over smallFrame with every parameter zero, so all rates are 1
func fixedModel(t *testing.T, rho float64) *FittedModel {
	t.Helper()
	data := smallFrame(t)
	home, away := TeamSpecs(DefaultTeamColumns())

	logger, _ := nullLogger()
	pair, err := BuildDesign(home, away, "1", data, logger)
	require.NoError(t, err)

	return &FittedModel{
		params:   Params{Names: pair.Columns, Values: make([]float64, len(pair.Columns)), Rho: rho},
		homeSpec: home,
		awaySpec: away,
		weights:  "1",
		data:     data,
	}
}
