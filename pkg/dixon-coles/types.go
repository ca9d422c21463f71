package dixoncoles

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// MatchResult represents a completed football match with result
type MatchResult struct {
	Date      string `json:"date"`
	Season    string `json:"season"`
	League    string `json:"league"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeGoals int    `json:"home_goals"`
	AwayGoals int    `json:"away_goals"`
}

// Fixture is a match still to be played
type Fixture struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
}

// Name renders the fixture as "Home vs Away"
func (f Fixture) Name() string {
	return f.HomeTeam + " vs " + f.AwayTeam
}

// TermKind tags a model term as categorical or numeric
type TermKind int

const (
	// CategoricalTerm expands to one indicator column per level
	CategoricalTerm TermKind = iota
	// NumericTerm produces a single column
	NumericTerm
)

func (k TermKind) String() string {
	switch k {
	case CategoricalTerm:
		return "categorical"
	case NumericTerm:
		return "numeric"
	default:
		return "unknown"
	}
}

// Term is one entry of a model specification.
//
// For a categorical term Expr names the data column holding the labels and Name is the
// prefix of the generated columns. For a numeric term Expr is either a column name or a
// CEL expression over the numeric columns, and Name (or Expr when Name is empty) is the
// generated column name.
type Term struct {
	Kind TermKind `json:"kind" yaml:"kind"`
	Name string   `json:"name" yaml:"name"`
	Expr string   `json:"expr" yaml:"expr"`
}

// Categorical builds a categorical term named name over column
func Categorical(name, column string) Term {
	return Term{Kind: CategoricalTerm, Name: name, Expr: column}
}

// Numeric builds a numeric term named name evaluating expr
func Numeric(name, expr string) Term {
	return Term{Kind: NumericTerm, Name: name, Expr: expr}
}

// Label is the textual form used for generated column names
func (t Term) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Expr
}

func (t Term) String() string {
	if t.Kind == CategoricalTerm {
		return t.Label() + "(" + t.Expr + ")"
	}
	if t.Name != "" && t.Name != t.Expr {
		return t.Name + "=" + t.Expr
	}
	return t.Expr
}

// ModelSpec describes the linear predictor for one side's goal count
type ModelSpec struct {
	Response  string `json:"response" yaml:"response"` // Column holding observed goals
	Terms     []Term `json:"terms" yaml:"terms"`
	Intercept bool   `json:"intercept" yaml:"intercept"` // Not supported; warned about and ignored
}

func (s ModelSpec) String() string {
	parts := make([]string, 0, len(s.Terms)+1)
	for _, term := range s.Terms {
		parts = append(parts, term.String())
	}
	if !s.Intercept {
		parts = append(parts, "0")
	}
	return s.Response + " ~ " + strings.Join(parts, " + ")
}

// TeamColumns names the frame columns used by the team-based entry point
type TeamColumns struct {
	HomeGoals string `json:"home_goals" yaml:"home_goals"`
	AwayGoals string `json:"away_goals" yaml:"away_goals"`
	HomeTeam  string `json:"home_team" yaml:"home_team"`
	AwayTeam  string `json:"away_team" yaml:"away_team"`
}

// DefaultTeamColumns matches the columns produced by FrameFromMatches
func DefaultTeamColumns() TeamColumns {
	return TeamColumns{
		HomeGoals: ColHomeGoals,
		AwayGoals: ColAwayGoals,
		HomeTeam:  ColHomeTeam,
		AwayTeam:  ColAwayTeam,
	}
}

// MLEParams summarises the fitted team model
type MLEParams struct {
	HomeAdvantage  float64            `json:"home_advantage"`
	Rho            float64            `json:"rho"` // Dixon-Coles dependence parameter
	AttackRatings  map[string]float64 `json:"attack_ratings"`
	DefenseRatings map[string]float64 `json:"defense_ratings"`
	LogLikelihood  float64            `json:"log_likelihood"`
	Iterations     int                `json:"iterations"`
	Converged      bool               `json:"converged"`
}

// SimParams holds all estimation and simulation parameterization values
type SimParams struct {
	// Time weighting parameters
	TimeDecayBase  float64 `json:"time_decay_base" yaml:"time_decay_base"`   // Time decay base factor (default: 0.85)
	TimeDecayPower float64 `json:"time_decay_power" yaml:"time_decay_power"` // Time decay power exponent (default: 1.5)
	Weights        string  `json:"weights" yaml:"weights"`                   // Weights expression (default: time_weight)

	// Optimization parameters
	Optimizer OptimizerOptions `json:"optimizer" yaml:"optimizer"`

	// Scoreline parameters
	GoalSimulationBound int     `json:"goal_simulation_bound" yaml:"goal_simulation_bound"` // Upper bound for goal calculations (default: 10)
	ScorelineThreshold  float64 `json:"scoreline_threshold" yaml:"scoreline_threshold"`     // Probability cutoff for scoreline tables

	// Simulation parameters
	SimulationPaths int    `json:"simulation_paths" yaml:"simulation_paths"` // Monte Carlo simulation paths (default: 5000)
	Seed            uint64 `json:"seed" yaml:"seed"`                         // Zero seeds from the clock
}

// MLEOptions configures the team model run
type MLEOptions struct {
	SimParams *SimParams    `json:"sim_params,omitempty"` // Uses defaults if nil
	Debug     bool          `json:"debug"`                // Enable debug logging during optimization
	Logger    *logrus.Entry `json:"-"`
}

// MLERequest contains all parameters needed for a team model run
type MLERequest struct {
	HistoricalData []MatchResult `json:"historical_data"`
	Options        MLEOptions    `json:"options"`
}

// Team represents a team with all related parameters
type Team struct {
	Name                 string  `json:"name"`
	League               string  `json:"league,omitempty"`
	Points               int     `json:"points"`
	GoalDifference       int     `json:"goal_difference"`
	Played               int     `json:"played"`
	AttackRating         float64 `json:"attack_rating"`
	DefenseRating        float64 `json:"defense_rating"`
	LambdaHome           float64 `json:"lambda_home"`
	LambdaAway           float64 `json:"lambda_away"`
	ExpectedSeasonPoints float64 `json:"expected_season_points"`
}

// MatchOdds holds model prices for a single fixture
type MatchOdds struct {
	Fixture       string     `json:"fixture"`
	League        string     `json:"league"`
	Probabilities [3]float64 `json:"probabilities"` // home win, draw, away win
	ExpectedGoals [2]float64 `json:"expected_goals"`
	Over2p5       float64    `json:"over_2_5"`
	BothToScore   float64    `json:"both_to_score"`
}

// MLEResult contains the output of a team model run
type MLEResult struct {
	Teams            []Team        `json:"teams"`
	MatchOdds        []MatchOdds   `json:"match_odds"`
	MLEParams        MLEParams     `json:"mle_params"`
	LatestSeason     string        `json:"latest_season"`
	Model            *FittedModel  `json:"-"`
	ProcessingTime   time.Duration `json:"processing_time"`
	MatchesProcessed int           `json:"matches_processed"`
}

// DefaultSimParams returns default estimation and simulation parameterization values
func DefaultSimParams() *SimParams {
	return &SimParams{
		TimeDecayBase:  0.85,
		TimeDecayPower: 1.5,
		Weights:        ColTimeWeight,

		Optimizer: DefaultOptimizerOptions(),

		GoalSimulationBound: 10,
		ScorelineThreshold:  DefaultThreshold,

		SimulationPaths: 5000,
	}
}

// DefaultMLEOptions returns default run options
func DefaultMLEOptions() MLEOptions {
	return MLEOptions{
		SimParams: DefaultSimParams(),
		Debug:     false,
	}
}
