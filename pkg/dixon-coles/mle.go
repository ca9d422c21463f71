package dixoncoles

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// HomeAdvantageTerm is the constant home-side indicator added by TeamSpecs
const HomeAdvantageTerm = "hfa"

// FitOptions configures Fit
type FitOptions struct {
	InitialParams map[string]float64 // Starting values by name; anything missing starts at 0
	Optimizer     OptimizerOptions   // Zero value means DefaultOptimizerOptions
	Minimizer     Minimizer          // Defaults to GonumMinimizer
	Logger        *logrus.Entry
	Debug         bool
}

// FittedModel is the immutable result of a fit. Accessors hand out copies.
type FittedModel struct {
	params      Params
	homeSpec    ModelSpec
	awaySpec    ModelSpec
	weights     string
	data        DataSource
	optimizer   MinimizeResult
	convergence *ConvergenceError
	warnings    []string
	logger      *logrus.Entry
}

// Fit estimates the Dixon-Coles model described by the two side specifications.
//
// Only bad input or a minimizer that produces nothing at all yield an error. A minimizer
// that stops short of convergence still returns a model, flagged through ConvergenceErr.
func Fit(home, away ModelSpec, weights string, data DataSource, opts FitOptions) (*FittedModel, error) {
	logger := orDefaultLogger(opts.Logger)

	pair, err := BuildDesign(home, away, weights, data, logger)
	if err != nil {
		return nil, err
	}

	start, err := initialParams(pair.Columns, opts.InitialParams)
	if err != nil {
		return nil, err
	}

	optimizerOpts := opts.Optimizer
	if optimizerOpts.isZero() {
		optimizerOpts = DefaultOptimizerOptions()
	}

	minimizer := opts.Minimizer
	if minimizer == nil {
		minimizer = GonumMinimizer{Logger: logger, Debug: opts.Debug}
	}

	logger.WithFields(logrus.Fields{
		"observations": pair.Rows(),
		"parameters":   len(pair.Columns) + 1,
		"method":       optimizerOpts.Method,
	}).Debug("starting Dixon-Coles optimization")

	res, err := minimizer.Minimize(start.vector(), newObjective(pair), optimizerOpts)
	if err != nil {
		return nil, fmt.Errorf("minimizing negative log-likelihood: %w", err)
	}
	if len(res.X) != len(pair.Columns)+1 {
		return nil, fmt.Errorf("minimizer returned %d parameters, expected %d", len(res.X), len(pair.Columns)+1)
	}

	// Whatever point the search stopped at, the stored parameters are normalized
	params := paramsFromVector(pair.Columns, res.X).Normalized()

	model := &FittedModel{
		params:    params,
		homeSpec:  cloneSpec(home),
		awaySpec:  cloneSpec(away),
		weights:   weights,
		data:      data,
		optimizer: *res,
		logger:    logger,
	}
	model.optimizer.X = append([]float64(nil), res.X...)

	fields := logrus.Fields{
		"iterations": res.Iterations,
		"objective":  res.F,
		"status":     res.Status,
		"rho":        params.Rho,
	}
	if !res.Converged {
		model.convergence = &ConvergenceError{
			Status:     res.Status,
			Iterations: res.Iterations,
			Message:    res.Message,
		}
		logger.WithFields(fields).Warn("Dixon-Coles optimization did not converge")
	} else {
		logger.WithFields(fields).Debug("Dixon-Coles optimization converged")
	}

	return model, nil
}

// TeamSpecs builds the standard team model:
//
//	home_goals ~ off(home_team) + def(away_team) + hfa + 0
//	away_goals ~ off(away_team) + def(home_team) + 0
//
// The home-field indicator is an explicit constant term, so prediction needs no extra column.
func TeamSpecs(cols TeamColumns) (home, away ModelSpec) {
	home = ModelSpec{
		Response: cols.HomeGoals,
		Terms: []Term{
			Categorical(OffenseTerm, cols.HomeTeam),
			Categorical(DefenseTerm, cols.AwayTeam),
			Numeric(HomeAdvantageTerm, "1"),
		},
	}
	away = ModelSpec{
		Response: cols.AwayGoals,
		Terms: []Term{
			Categorical(OffenseTerm, cols.AwayTeam),
			Categorical(DefenseTerm, cols.HomeTeam),
		},
	}
	return home, away
}

// FitTeams fits the standard team model built by TeamSpecs. Team columns must be
// categorical; if their level sets differ the fit goes ahead with a warning.
func FitTeams(data DataSource, cols TeamColumns, weights string, opts FitOptions) (*FittedModel, error) {
	logger := orDefaultLogger(opts.Logger)
	if data == nil {
		return nil, inputErrorf("data", "no data supplied")
	}

	warning, err := validateTeamLevels(data, cols)
	if err != nil {
		return nil, err
	}
	if warning != "" {
		logger.Warn(warning)
	}

	home, away := TeamSpecs(cols)
	model, err := Fit(home, away, weights, data, opts)
	if err != nil {
		return nil, err
	}

	if warning != "" {
		model.warnings = append(model.warnings, warning)
	}
	return model, nil
}

// Params returns the normalized parameter vector
func (m *FittedModel) Params() Params {
	return m.params.clone()
}

// Coefficients returns the parameters keyed by (term, category)
func (m *FittedModel) Coefficients() []Coefficient {
	return m.params.Coefficients()
}

// Categories lists, in column order, the categories fitted for a categorical term
func (m *FittedModel) Categories(term string) []string {
	var out []string
	for _, name := range m.params.Names {
		if t, category, ok := SplitParamName(name); ok && t == term {
			out = append(out, category)
		}
	}
	return out
}

func (m *FittedModel) HomeSpec() ModelSpec { return cloneSpec(m.homeSpec) }

func (m *FittedModel) AwaySpec() ModelSpec { return cloneSpec(m.awaySpec) }

// Weights is the weights expression used at fit time
func (m *FittedModel) Weights() string { return m.weights }

// Data is the data the model was fitted on
func (m *FittedModel) Data() DataSource { return m.data }

// Optimizer returns the minimizer's raw diagnostics
func (m *FittedModel) Optimizer() MinimizeResult {
	out := m.optimizer
	out.X = append([]float64(nil), m.optimizer.X...)
	return out
}

// LogLikelihood is the weighted log-likelihood at the fitted parameters
func (m *FittedModel) LogLikelihood() float64 {
	return -m.optimizer.F
}

// Converged reports whether the minimizer reached its tolerance
func (m *FittedModel) Converged() bool {
	return m.convergence == nil
}

// ConvergenceErr describes a non-converged fit, or is nil
func (m *FittedModel) ConvergenceErr() *ConvergenceError {
	return m.convergence
}

// Warnings lists non-fatal input problems found while fitting
func (m *FittedModel) Warnings() []string {
	return append([]string(nil), m.warnings...)
}

func (m *FittedModel) String() string {
	return fmt.Sprintf("Dixon-Coles model\n  home: %s\n  away: %s\n  weights: %s\n  parameters: %d, rho: %.4f, log-likelihood: %.4f, converged: %v",
		m.homeSpec, m.awaySpec, m.weights, len(m.params.Names)+1, m.params.Rho, m.LogLikelihood(), m.Converged())
}

func (o OptimizerOptions) isZero() bool {
	return o.Method == "" &&
		o.MaxIterations == 0 &&
		o.MaxFuncEvaluations == 0 &&
		o.GradientThreshold == 0 &&
		o.FunctionAbsTolerance == 0 &&
		o.FunctionRelTolerance == 0 &&
		o.FunctionConvergeIterations == 0 &&
		len(o.Controls) == 0
}

func cloneSpec(s ModelSpec) ModelSpec {
	s.Terms = append([]Term(nil), s.Terms...)
	return s
}
