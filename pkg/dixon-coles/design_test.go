package dixoncoles

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestParamNames(t *testing.T) {
	assert.Equal(t, "off___Arsenal", ParamName(OffenseTerm, "Arsenal"))

	term, category, ok := SplitParamName("def___Leeds")
	assert.True(t, ok)
	assert.Equal(t, "def", term)
	assert.Equal(t, "Leeds", category)

	_, _, ok = SplitParamName(HomeAdvantageTerm)
	assert.False(t, ok)
}

func TestBuildDesignTeamModel(t *testing.T) {
	logger, _ := nullLogger()
	home, away := TeamSpecs(DefaultTeamColumns())

	pair, err := BuildDesign(home, away, ColTimeWeight, smallFrame(t), logger)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"off___A", "off___B", "off___C",
		"def___A", "def___B", "def___C",
		"hfa",
	}, pair.Columns)
	assert.Equal(t, 3, pair.Rows())

	// Row 0 is A (home) vs B (away)
	assert.Equal(t, []float64{1, 0, 0, 0, 1, 0, 1}, mat.Row(nil, 0, pair.Home))
	assert.Equal(t, []float64{0, 1, 0, 1, 0, 0, 0}, mat.Row(nil, 0, pair.Away))

	assert.Equal(t, []float64{1, 0, 2}, pair.HomeGoals)
	assert.Equal(t, []float64{0, 0, 1}, pair.AwayGoals)
	assert.Equal(t, []float64{1, 0.5, 0.25}, pair.Weights)
}

func TestBuildDesignZeroFillsMissingColumns(t *testing.T) {
	home := ModelSpec{Response: ColHomeGoals, Terms: []Term{Numeric("boost", "1"), Categorical("off", ColHomeTeam)}}
	away := ModelSpec{Response: ColAwayGoals, Terms: []Term{Categorical("off", ColAwayTeam)}}

	pair, err := BuildDesign(home, away, "1", smallFrame(t), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"boost", "off___A", "off___B", "off___C"}, pair.Columns)
	assert.Equal(t, []float64{0, 0, 0}, mat.Col(nil, 0, pair.Away))
	assert.Equal(t, []float64{1, 1, 1}, mat.Col(nil, 0, pair.Home))
}

func TestBuildDesignIdenticalSidesShareColumns(t *testing.T) {
	spec := ModelSpec{Response: ColHomeGoals, Terms: []Term{Categorical("team", ColHomeTeam)}}
	awaySpec := spec
	awaySpec.Response = ColAwayGoals

	pair, err := BuildDesign(spec, awaySpec, "", smallFrame(t), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"team___A", "team___B", "team___C"}, pair.Columns)
	assert.True(t, mat.Equal(pair.Home, pair.Away))
}

func TestBuildDesignNumericExpressions(t *testing.T) {
	home := ModelSpec{Response: ColHomeGoals, Terms: []Term{
		Numeric("", ColTimeWeight),
		Numeric("top", `league == "ENG1" ? 1.0 : 0.0`),
	}}
	away := ModelSpec{Response: ColAwayGoals, Terms: []Term{Numeric("double_weight", "time_weight * 2.0")}}

	pair, err := BuildDesign(home, away, "time_weight * 4.0", smallFrame(t), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{ColTimeWeight, "top", "double_weight"}, pair.Columns)
	assert.Equal(t, []float64{1, 0.5, 0.25}, mat.Col(nil, 0, pair.Home))
	assert.Equal(t, []float64{1, 1, 0}, mat.Col(nil, 1, pair.Home))
	assert.Equal(t, []float64{2, 1, 0.5}, mat.Col(nil, 2, pair.Away))
	assert.Equal(t, []float64{4, 2, 1}, pair.Weights)
}

func TestBuildDesignBareCategoricalReferenceExpands(t *testing.T) {
	home := ModelSpec{Response: ColHomeGoals, Terms: []Term{Numeric("", ColLeague)}}
	away := ModelSpec{Response: ColAwayGoals, Terms: []Term{Numeric("", ColLeague)}}

	pair, err := BuildDesign(home, away, "1", smallFrame(t), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"league___ENG1", "league___ENG2"}, pair.Columns)
}

func TestBuildDesignInputErrors(t *testing.T) {
	frame := smallFrame(t)
	home, away := TeamSpecs(DefaultTeamColumns())

	tests := []struct {
		name    string
		home    ModelSpec
		away    ModelSpec
		weights string
	}{
		{
			name: "missing categorical column",
			home: ModelSpec{Response: ColHomeGoals, Terms: []Term{Categorical("off", "home_side")}},
			away: away,
		},
		{
			name: "categorical term over numeric column",
			home: ModelSpec{Response: ColHomeGoals, Terms: []Term{Categorical("off", ColHomeGoals)}},
			away: away,
		},
		{
			name: "column generated twice on one side",
			home: ModelSpec{Response: ColHomeGoals, Terms: []Term{Categorical("off", ColHomeTeam), Categorical("off", ColAwayTeam)}},
			away: away,
		},
		{
			name: "name collision across term kinds",
			home: ModelSpec{Response: ColHomeGoals, Terms: []Term{Numeric("off___A", "1")}},
			away: ModelSpec{Response: ColAwayGoals, Terms: []Term{Categorical("off", ColAwayTeam)}},
		},
		{
			name: "term named like the dependence parameter",
			home: ModelSpec{Response: ColHomeGoals, Terms: append([]Term{Numeric(ParamRho, ColTimeWeight)}, home.Terms...)},
			away: away,
		},
		{
			name: "no terms",
			home: ModelSpec{Response: ColHomeGoals},
			away: ModelSpec{Response: ColAwayGoals},
		},
		{
			name: "missing response",
			home: ModelSpec{Response: "goals", Terms: home.Terms},
			away: away,
		},
		{
			name:    "negative weights",
			home:    home,
			away:    away,
			weights: "time_weight - 0.75",
		},
		{
			name:    "expression does not compile",
			home:    home,
			away:    away,
			weights: "time_weight *",
		},
		{
			name:    "expression is not numeric",
			home:    home,
			away:    away,
			weights: "league",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildDesign(tt.home, tt.away, tt.weights, frame, nil)
			require.Error(t, err)

			var inputErr *InputError
			assert.True(t, errors.As(err, &inputErr), "expected InputError, got %T: %v", err, err)
		})
	}
}

func TestBuildDesignRejectsBadGoals(t *testing.T) {
	team, err := NewCategoricalColumn(ColHomeTeam, []string{"A", "B"})
	require.NoError(t, err)
	other, err := NewCategoricalColumn(ColAwayTeam, []string{"B", "A"})
	require.NoError(t, err)

	for name, goals := range map[string][]float64{
		"negative":    {1, -1},
		"non-integer": {1, 0.5},
	} {
		t.Run(name, func(t *testing.T) {
			frame, err := NewFrame(team, other,
				NewNumericColumn(ColHomeGoals, goals),
				NewNumericColumn(ColAwayGoals, []float64{0, 0}))
			require.NoError(t, err)

			home, away := TeamSpecs(DefaultTeamColumns())
			_, err = BuildDesign(home, away, "1", frame, nil)

			var inputErr *InputError
			assert.ErrorAs(t, err, &inputErr)
		})
	}
}

func TestBuildDesignEmptyData(t *testing.T) {
	frame, err := NewFrame()
	require.NoError(t, err)

	home, away := TeamSpecs(DefaultTeamColumns())
	_, err = BuildDesign(home, away, "1", frame, nil)

	var inputErr *InputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestBuildDesignWarnsAboutIntercept(t *testing.T) {
	logger, hook := nullLogger()
	home, away := TeamSpecs(DefaultTeamColumns())
	home.Intercept = true

	_, err := BuildDesign(home, away, "1", smallFrame(t), logger)
	require.NoError(t, err)

	var warnings []*logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings = append(warnings, entry)
		}
	}
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "intercept")
}

func TestBuildPredictionDesignWithoutOutcomes(t *testing.T) {
	frame, err := NewFixtureFrame([]Fixture{{HomeTeam: "C", AwayTeam: "A"}}, DefaultTeamColumns(), []string{"A", "B", "C"})
	require.NoError(t, err)

	home, away := TeamSpecs(DefaultTeamColumns())
	pair, err := BuildPredictionDesign(home, away, frame, nil)
	require.NoError(t, err)

	assert.Len(t, pair.Columns, 7)
	assert.Nil(t, pair.HomeGoals)
	assert.Equal(t, []float64{1}, pair.Weights)
	assert.Equal(t, []float64{0, 0, 1, 1, 0, 0, 1}, mat.Row(nil, 0, pair.Home))
}

func TestValidateVocabulary(t *testing.T) {
	assert.NoError(t, validateVocabulary([]string{"a", "b"}, []string{"a", "b"}))

	err := validateVocabulary([]string{"a", "b"}, []string{"a", "c"})
	var mismatch *SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, mismatch.Error(), "missing [b]")
	assert.Contains(t, mismatch.Error(), "unexpected [c]")

	err = validateVocabulary([]string{"a", "b"}, []string{"b", "a"})
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, mismatch.Error(), "order differs")
}

// undeclaredFrame holds a home team column whose labels are not all declared levels
func undeclaredFrame(t *testing.T, levels []string) *Frame {
	t.Helper()
	away, err := NewCategoricalColumn(ColAwayTeam, []string{"B", "A"}, "A", "B", "C")
	require.NoError(t, err)

	frame, err := NewFrame(
		&Column{Name: ColHomeTeam, Kind: CategoricalColumn, Labels: []string{"C", "A"}, Levels: levels},
		away,
		NewNumericColumn(ColHomeGoals, []float64{1, 0}),
		NewNumericColumn(ColAwayGoals, []float64{0, 2}),
	)
	require.NoError(t, err)
	return frame
}

func TestBuildDesignRejectsUndeclaredLevels(t *testing.T) {
	home := ModelSpec{Response: ColHomeGoals, Terms: []Term{Categorical("t", ColHomeTeam)}}
	away := ModelSpec{Response: ColAwayGoals, Terms: []Term{Categorical("t", ColAwayTeam)}}

	var inputErr *InputError
	_, err := BuildDesign(home, away, "1", undeclaredFrame(t, []string{"A", "B"}), nil)
	require.ErrorAs(t, err, &inputErr)
	assert.Contains(t, err.Error(), `"C"`)

	_, err = BuildDesign(home, away, "1", undeclaredFrame(t, nil), nil)
	assert.ErrorAs(t, err, &inputErr)

	var mismatch *SchemaMismatchError
	_, err = BuildPredictionDesign(home, away, undeclaredFrame(t, []string{"A", "B"}), nil)
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, mismatch.Error(), "t___C")

	_, err = BuildPredictionDesign(home, away, undeclaredFrame(t, nil), nil)
	assert.ErrorAs(t, err, &inputErr)
}

func TestBuildDesignRejectsRhoColumn(t *testing.T) {
	home, away := TeamSpecs(DefaultTeamColumns())
	away.Terms = append(away.Terms, Numeric(ParamRho, ColTimeWeight))

	_, err := BuildDesign(home, away, "1", smallFrame(t), nil)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, ParamRho, inputErr.Field)
}
