package dixoncoles

import (
	"sort"
)

// Column names produced by FrameFromMatches
const (
	ColHomeTeam   = "home_team"
	ColAwayTeam   = "away_team"
	ColHomeGoals  = "home_goals"
	ColAwayGoals  = "away_goals"
	ColTimeWeight = "time_weight"
	ColSeason     = "season"
	ColLeague     = "league"
)

// DataSource is tabular data addressable by column name
type DataSource interface {
	Len() int
	Column(name string) (*Column, bool)
	ColumnNames() []string
}

// ColumnKind tells numeric and categorical columns apart
type ColumnKind int

const (
	NumericColumn ColumnKind = iota
	CategoricalColumn
)

// Column is a single named vector of data
type Column struct {
	Name    string
	Kind    ColumnKind
	Numbers []float64 // numeric values
	Labels  []string  // categorical values
	Levels  []string  // ordered categories
}

// NewNumericColumn wraps values as a numeric column
func NewNumericColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: NumericColumn, Numbers: values}
}

// NewCategoricalColumn wraps labels as a categorical column. When levels is empty the
// sorted distinct labels are used; otherwise every label must be one of levels.
func NewCategoricalColumn(name string, labels []string, levels ...string) (*Column, error) {
	if len(levels) == 0 {
		levels = distinctSorted(labels)
	} else {
		known := make(map[string]bool, len(levels))
		for _, level := range levels {
			if known[level] {
				return nil, inputErrorf(name, "duplicate level %q", level)
			}
			known[level] = true
		}
		for i, label := range labels {
			if !known[label] {
				return nil, inputErrorf(name, "row %d: label %q is not one of the %d declared levels", i, label, len(levels))
			}
		}
		levels = append([]string(nil), levels...)
	}

	return &Column{Name: name, Kind: CategoricalColumn, Labels: labels, Levels: levels}, nil
}

// Len is the number of rows in the column
func (c *Column) Len() int {
	if c.Kind == CategoricalColumn {
		return len(c.Labels)
	}
	return len(c.Numbers)
}

func distinctSorted(labels []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, label := range labels {
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out
}

// Frame is an in-memory DataSource
type Frame struct {
	names   []string
	columns map[string]*Column
	rows    int
}

// NewFrame builds a frame from equal-length columns
func NewFrame(columns ...*Column) (*Frame, error) {
	f := &Frame{columns: make(map[string]*Column, len(columns))}

	for i, col := range columns {
		if col == nil {
			return nil, inputErrorf("frame", "column %d is nil", i)
		}
		if _, exists := f.columns[col.Name]; exists {
			return nil, inputErrorf("frame", "duplicate column %q", col.Name)
		}
		if i == 0 {
			f.rows = col.Len()
		} else if col.Len() != f.rows {
			return nil, inputErrorf("frame", "column %q has %d rows, expected %d", col.Name, col.Len(), f.rows)
		}
		f.names = append(f.names, col.Name)
		f.columns[col.Name] = col
	}

	return f, nil
}

func (f *Frame) Len() int {
	return f.rows
}

func (f *Frame) Column(name string) (*Column, bool) {
	col, ok := f.columns[name]
	return col, ok
}

func (f *Frame) ColumnNames() []string {
	return append([]string(nil), f.names...)
}

// MatchFrameOptions controls FrameFromMatches
type MatchFrameOptions struct {
	Teams          []string // Fixed team levels; extracted from matches when empty
	TimeDecayBase  float64
	TimeDecayPower float64
}

// FrameFromMatches converts match results into the canonical frame used by the team model
func FrameFromMatches(matches []MatchResult, opts MatchFrameOptions) (*Frame, error) {
	n := len(matches)
	homeTeams := make([]string, n)
	awayTeams := make([]string, n)
	homeGoals := make([]float64, n)
	awayGoals := make([]float64, n)
	seasons := make([]string, n)
	leagues := make([]string, n)

	for i, match := range matches {
		homeTeams[i] = match.HomeTeam
		awayTeams[i] = match.AwayTeam
		homeGoals[i] = float64(match.HomeGoals)
		awayGoals[i] = float64(match.AwayGoals)
		seasons[i] = match.Season
		leagues[i] = match.League
	}

	// Both team columns share one level set so offense/defense columns line up
	teams := opts.Teams
	if len(teams) == 0 {
		teams = ExtractTeams(matches)
	}

	homeCol, err := NewCategoricalColumn(ColHomeTeam, homeTeams, teams...)
	if err != nil {
		return nil, err
	}
	awayCol, err := NewCategoricalColumn(ColAwayTeam, awayTeams, teams...)
	if err != nil {
		return nil, err
	}
	seasonCol, err := NewCategoricalColumn(ColSeason, seasons)
	if err != nil {
		return nil, err
	}
	leagueCol, err := NewCategoricalColumn(ColLeague, leagues)
	if err != nil {
		return nil, err
	}

	base, power := opts.TimeDecayBase, opts.TimeDecayPower
	if base == 0 {
		base = 1
	}
	weights := SeasonDecayWeights(matches, base, power)

	return NewFrame(
		homeCol,
		awayCol,
		NewNumericColumn(ColHomeGoals, homeGoals),
		NewNumericColumn(ColAwayGoals, awayGoals),
		NewNumericColumn(ColTimeWeight, weights),
		seasonCol,
		leagueCol,
	)
}

// NewFixtureFrame builds prediction data for fixtures. Pass the fitted team levels
// (FittedModel.Categories) so the columns resolve to the fitted vocabulary.
func NewFixtureFrame(fixtures []Fixture, cols TeamColumns, levels []string) (*Frame, error) {
	homeTeams := make([]string, len(fixtures))
	awayTeams := make([]string, len(fixtures))
	for i, fixture := range fixtures {
		homeTeams[i] = fixture.HomeTeam
		awayTeams[i] = fixture.AwayTeam
	}

	homeCol, err := NewCategoricalColumn(cols.HomeTeam, homeTeams, levels...)
	if err != nil {
		return nil, err
	}
	awayCol, err := NewCategoricalColumn(cols.AwayTeam, awayTeams, levels...)
	if err != nil {
		return nil, err
	}

	return NewFrame(homeCol, awayCol)
}
