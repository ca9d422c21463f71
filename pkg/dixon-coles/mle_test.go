package dixoncoles

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitTeamsRecoversKnownParameters(t *testing.T) {
	if testing.Short() {
		t.Skip("fits a 600 match model")
	}

	truth := knownStrengths()
	matches := simulatedMatches(t, 20, "2425", 20240817)

	frame, err := FrameFromMatches(matches, MatchFrameOptions{})
	require.NoError(t, err)

	logger, _ := nullLogger()
	model, err := FitTeams(frame, DefaultTeamColumns(), "1", FitOptions{Logger: logger})
	require.NoError(t, err)

	params := model.Params()
	for _, team := range testTeams {
		off, ok := params.Get(ParamName(OffenseTerm, team))
		require.True(t, ok)
		assert.InDelta(t, truth.Offense[team], off, 0.25, "offense %s", team)

		def, ok := params.Get(ParamName(DefenseTerm, team))
		require.True(t, ok)
		assert.InDelta(t, truth.Defense[team], def, 0.25, "defense %s", team)
	}

	hfa, ok := params.Get(HomeAdvantageTerm)
	require.True(t, ok)
	assert.InDelta(t, truth.HomeAdvantage, hfa, 0.15)
	assert.InDelta(t, truth.Rho, params.Rho, 0.25)

	assert.InDelta(t, 1.0, meanExpOffense(params.Names, params.Values), 1e-9)
	assert.Less(t, model.LogLikelihood(), 0.0)
	assert.Equal(t, testTeams, model.Categories(OffenseTerm))
}

func TestFitIterationLimitFlagsConvergence(t *testing.T) {
	matches := simulatedMatches(t, 2, "2425", 7)
	frame, err := FrameFromMatches(matches, MatchFrameOptions{})
	require.NoError(t, err)

	logger, _ := nullLogger()
	opts := DefaultOptimizerOptions()
	opts.MaxIterations = 1

	model, err := FitTeams(frame, DefaultTeamColumns(), "1", FitOptions{Optimizer: opts, Logger: logger})
	require.NoError(t, err)

	assert.False(t, model.Converged())
	require.NotNil(t, model.ConvergenceErr())
	assert.Contains(t, model.ConvergenceErr().Error(), "did not converge")
	// Returned parameters are still normalized
	params := model.Params()
	assert.InDelta(t, 1.0, meanExpOffense(params.Names, params.Values), 1e-9)
}

type stubMinimizer struct {
	result *MinimizeResult
	err    error
	start  []float64
}

func (s *stubMinimizer) Minimize(initial []float64, objective func([]float64) float64, opts OptimizerOptions) (*MinimizeResult, error) {
	s.start = append([]float64(nil), initial...)
	return s.result, s.err
}

func TestFitWithStubMinimizer(t *testing.T) {
	home, away := TeamSpecs(DefaultTeamColumns())
	logger, hook := nullLogger()

	x := []float64{0.5, 0.5, 0.5, 0.1, 0.2, 0.3, 0.25, -0.05}
	stub := &stubMinimizer{result: &MinimizeResult{X: x, F: 4.2, Status: "IterationLimit", Iterations: 3}}

	model, err := Fit(home, away, "1", smallFrame(t), FitOptions{
		InitialParams: map[string]float64{"hfa": 0.3, "rho": -0.1},
		Minimizer:     stub,
		Logger:        logger,
	})
	require.NoError(t, err)

	// Starting point is zeros apart from the named overrides, rho last
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0, 0.3, -0.1}, stub.start)

	params := model.Params()
	assert.InDeltaSlice(t, []float64{0, 0, 0, 0.1, 0.2, 0.3, 0.25}, params.Values, 1e-12)
	assert.Equal(t, -0.05, params.Rho)
	assert.Equal(t, -4.2, model.LogLikelihood())

	require.NotNil(t, model.ConvergenceErr())
	assert.Equal(t, 3, model.ConvergenceErr().Iterations)
	assert.Equal(t, "IterationLimit", model.ConvergenceErr().Status)
	assert.NotNil(t, hook.LastEntry())
}

func TestFitMinimizerFailures(t *testing.T) {
	home, away := TeamSpecs(DefaultTeamColumns())
	logger, _ := nullLogger()

	_, err := Fit(home, away, "1", smallFrame(t), FitOptions{
		Minimizer: &stubMinimizer{err: errors.New("boom")},
		Logger:    logger,
	})
	assert.ErrorContains(t, err, "boom")

	_, err = Fit(home, away, "1", smallFrame(t), FitOptions{
		Minimizer: &stubMinimizer{result: &MinimizeResult{X: []float64{1, 2}}},
		Logger:    logger,
	})
	assert.ErrorContains(t, err, "expected 8")
}

func TestFitInputErrors(t *testing.T) {
	home, away := TeamSpecs(DefaultTeamColumns())
	logger, _ := nullLogger()
	var inputErr *InputError

	_, err := Fit(home, away, "1", smallFrame(t), FitOptions{
		InitialParams: map[string]float64{"off___Z": 1},
		Logger:        logger,
	})
	assert.ErrorAs(t, err, &inputErr)

	_, err = Fit(home, away, "1", smallFrame(t), FitOptions{
		Optimizer: OptimizerOptions{Method: "annealing"},
		Logger:    logger,
	})
	assert.ErrorAs(t, err, &inputErr)

	_, err = FitTeams(nil, DefaultTeamColumns(), "1", FitOptions{Logger: logger})
	assert.ErrorAs(t, err, &inputErr)
}

func TestFitTeamsRejectsNumericTeamColumn(t *testing.T) {
	frame, err := NewFrame(
		NewNumericColumn(ColHomeTeam, []float64{1, 2}),
		NewNumericColumn(ColAwayTeam, []float64{2, 1}),
		NewNumericColumn(ColHomeGoals, []float64{1, 0}),
		NewNumericColumn(ColAwayGoals, []float64{0, 0}),
	)
	require.NoError(t, err)

	logger, _ := nullLogger()
	_, err = FitTeams(frame, DefaultTeamColumns(), "1", FitOptions{Logger: logger})

	var inputErr *InputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestFitTeamsWarnsOnLevelMismatch(t *testing.T) {
	home, err := NewCategoricalColumn(ColHomeTeam, []string{"A", "B", "C"})
	require.NoError(t, err)
	away, err := NewCategoricalColumn(ColAwayTeam, []string{"B", "C", "A"}, "A", "B", "C", "D")
	require.NoError(t, err)
	frame, err := NewFrame(home, away,
		NewNumericColumn(ColHomeGoals, []float64{1, 0, 2}),
		NewNumericColumn(ColAwayGoals, []float64{0, 0, 1}))
	require.NoError(t, err)

	logger, _ := nullLogger()
	stub := &stubMinimizer{result: &MinimizeResult{X: make([]float64, 10), Converged: true}}
	model, err := FitTeams(frame, DefaultTeamColumns(), "1", FitOptions{Minimizer: stub, Logger: logger})
	require.NoError(t, err)

	require.Len(t, model.Warnings(), 1)
	assert.Contains(t, model.Warnings()[0], "different team levels")
	assert.True(t, model.Converged())
}

func TestFittedModelAccessorsCopy(t *testing.T) {
	model := fixedModel(t, 0.1)

	params := model.Params()
	params.Values[0] = 99
	assert.Equal(t, 0.0, model.Params().Values[0])

	spec := model.HomeSpec()
	spec.Terms[0].Name = "changed"
	assert.Equal(t, OffenseTerm, model.HomeSpec().Terms[0].Name)

	coefficients := model.Coefficients()
	last := coefficients[len(coefficients)-1]
	assert.Equal(t, ParamRho, last.Term)
	assert.Equal(t, 0.1, last.Value)

	assert.Equal(t, []string{"A", "B", "C"}, model.Categories(DefenseTerm))
	assert.Contains(t, model.String(), "home_goals ~ off(home_team) + def(away_team) + hfa=1 + 0")
	assert.False(t, math.IsNaN(model.LogLikelihood()))
}
