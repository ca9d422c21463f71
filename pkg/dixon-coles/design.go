package dixoncoles

import (
	"math"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

const (
	// ParamSeparator joins a categorical term to one of its categories
	ParamSeparator = "___"
	// ParamRho names the dependence parameter
	ParamRho = "rho"
)

// ParamName flattens a (term, category) key into a parameter name
func ParamName(term, category string) string {
	return term + ParamSeparator + category
}

// SplitParamName splits a categorical parameter name into term and category.
// ok is false for numeric terms and rho.
func SplitParamName(name string) (term, category string, ok bool) {
	return strings.Cut(name, ParamSeparator)
}

// DesignPair holds the aligned home/away design matrices. Counts and weights are
// only filled in fit mode; prediction designs carry unit weights and no counts.
type DesignPair struct {
	Columns   []string
	Home      *mat.Dense
	Away      *mat.Dense
	HomeGoals []float64
	AwayGoals []float64
	Weights   []float64
}

// Rows is the number of observations
func (p *DesignPair) Rows() int {
	r, _ := p.Home.Dims()
	return r
}

type buildMode int

const (
	fitMode buildMode = iota
	predictMode
)

type designColumn struct {
	name   string
	kind   TermKind
	values []float64
}

// BuildDesign builds the design matrices, observed goals and weights for fitting
func BuildDesign(home, away ModelSpec, weights string, data DataSource, logger *logrus.Entry) (*DesignPair, error) {
	return buildDesign(home, away, weights, data, fitMode, logger)
}

// BuildPredictionDesign builds the design matrices for new data that may lack outcome columns
func BuildPredictionDesign(home, away ModelSpec, data DataSource, logger *logrus.Entry) (*DesignPair, error) {
	return buildDesign(home, away, "", data, predictMode, logger)
}

func buildDesign(home, away ModelSpec, weights string, data DataSource, mode buildMode, logger *logrus.Entry) (*DesignPair, error) {
	logger = orDefaultLogger(logger)

	if data == nil {
		return nil, inputErrorf("data", "no data supplied")
	}
	n := data.Len()
	if n == 0 {
		return nil, inputErrorf("data", "data has no rows")
	}

	if home.Intercept || away.Intercept {
		logger.WithFields(logrus.Fields{
			"home": home.Intercept,
			"away": away.Intercept,
		}).Warn("intercepts are not supported by this model family; ignoring")
	}

	// The CEL environment is only built if some term needs it
	var evaluator *exprEvaluator
	evaluate := func(expr string) ([]float64, error) {
		if evaluator == nil {
			var err error
			if evaluator, err = newExprEvaluator(data); err != nil {
				return nil, err
			}
		}
		return evaluator.numeric(expr)
	}

	homeCols, err := expandSide("home", home, data, mode, evaluate)
	if err != nil {
		return nil, err
	}
	awayCols, err := expandSide("away", away, data, mode, evaluate)
	if err != nil {
		return nil, err
	}

	// Union of column names in first-seen order, home side first
	var vocab []string
	kinds := make(map[string]TermKind)
	for _, cols := range [][]designColumn{homeCols, awayCols} {
		for _, col := range cols {
			if col.name == ParamRho {
				return nil, inputErrorf(col.name, "column name is reserved for the dependence parameter")
			}
			kind, seen := kinds[col.name]
			if !seen {
				kinds[col.name] = col.kind
				vocab = append(vocab, col.name)
				continue
			}
			if kind != col.kind {
				return nil, inputErrorf(col.name, "generated by both a %s and a %s term", kind, col.kind)
			}
		}
	}
	if len(vocab) == 0 {
		return nil, inputErrorf("terms", "model has no terms")
	}

	pair := &DesignPair{
		Columns: vocab,
		Home:    fillMatrix(n, vocab, homeCols),
		Away:    fillMatrix(n, vocab, awayCols),
	}

	if mode == predictMode {
		pair.Weights = constant(n, 1)
		return pair, nil
	}

	if pair.HomeGoals, err = goalCounts(data, home.Response); err != nil {
		return nil, err
	}
	if pair.AwayGoals, err = goalCounts(data, away.Response); err != nil {
		return nil, err
	}
	if pair.Weights, err = observationWeights(data, weights, evaluate); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"rows":    n,
		"columns": len(vocab),
	}).Debug("built design matrices")

	return pair, nil
}

// expandSide evaluates one side's terms into named columns
func expandSide(side string, spec ModelSpec, data DataSource, mode buildMode, evaluate func(string) ([]float64, error)) ([]designColumn, error) {
	var out []designColumn
	seen := make(map[string]bool)

	for _, term := range spec.Terms {
		cols, err := expandTerm(term, data, mode, evaluate)
		if err != nil {
			return nil, err
		}
		for _, col := range cols {
			if seen[col.name] {
				return nil, inputErrorf(col.name, "column generated twice on the %s side", side)
			}
			seen[col.name] = true
			out = append(out, col)
		}
	}

	return out, nil
}

func expandTerm(term Term, data DataSource, mode buildMode, evaluate func(string) ([]float64, error)) ([]designColumn, error) {
	if term.Expr == "" {
		return nil, inputErrorf(term.Label(), "term has no column or expression")
	}

	col, isColumn := data.Column(term.Expr)

	switch term.Kind {
	case CategoricalTerm:
		if !isColumn {
			return nil, inputErrorf(term.String(), "column %q not found in data", term.Expr)
		}
		if col.Kind != CategoricalColumn {
			return nil, inputErrorf(term.String(), "column %q is not categorical", term.Expr)
		}
		return indicators(term.Label(), col, mode)

	case NumericTerm:
		// A bare column reference takes the type of its values
		if isColumn {
			if col.Kind == CategoricalColumn {
				return indicators(term.Label(), col, mode)
			}
			return []designColumn{{
				name:   term.Label(),
				kind:   NumericTerm,
				values: append([]float64(nil), col.Numbers...),
			}}, nil
		}

		values, err := evaluate(term.Expr)
		if err != nil {
			return nil, err
		}
		return []designColumn{{name: term.Label(), kind: NumericTerm, values: values}}, nil
	}

	return nil, inputErrorf(term.Label(), "unknown term kind %d", term.Kind)
}

// indicators one-hot encodes a categorical column with no reference level dropped.
// Every label must be one of the column's declared levels.
func indicators(label string, col *Column, mode buildMode) ([]designColumn, error) {
	if len(col.Levels) == 0 {
		return nil, inputErrorf(col.Name, "categorical column declares no levels")
	}

	index := make(map[string]int, len(col.Levels))
	out := make([]designColumn, len(col.Levels))
	for i, level := range col.Levels {
		index[level] = i
		out[i] = designColumn{
			name:   ParamName(label, level),
			kind:   CategoricalTerm,
			values: make([]float64, len(col.Labels)),
		}
	}

	for row, value := range col.Labels {
		i, ok := index[value]
		if !ok {
			return nil, undeclaredLevel(label, col, value, row, mode)
		}
		out[i].values[row] = 1
	}

	return out, nil
}

func undeclaredLevel(label string, col *Column, value string, row int, mode buildMode) error {
	if mode == predictMode {
		expected := make([]string, len(col.Levels))
		for i, level := range col.Levels {
			expected[i] = ParamName(label, level)
		}
		return &SchemaMismatchError{
			Expected: expected,
			Got:      append(append([]string(nil), expected...), ParamName(label, value)),
		}
	}
	return inputErrorf(col.Name, "row %d has label %q outside the declared levels %v", row, value, col.Levels)
}

// fillMatrix lays columns out in vocabulary order, zero-filling any the side lacks
func fillMatrix(n int, vocab []string, cols []designColumn) *mat.Dense {
	m := mat.NewDense(n, len(vocab), nil)

	byName := make(map[string][]float64, len(cols))
	for _, col := range cols {
		byName[col.name] = col.values
	}

	for j, name := range vocab {
		if values, ok := byName[name]; ok {
			m.SetCol(j, values)
		}
	}

	return m
}

func goalCounts(data DataSource, response string) ([]float64, error) {
	if response == "" {
		return nil, inputErrorf("response", "model specification names no goal column")
	}

	col, ok := data.Column(response)
	if !ok {
		return nil, inputErrorf(response, "goal column not found in data")
	}
	if col.Kind != NumericColumn {
		return nil, inputErrorf(response, "goal column must be numeric")
	}

	for row, v := range col.Numbers {
		if v < 0 || v != math.Floor(v) || math.IsInf(v, 0) {
			return nil, inputErrorf(response, "row %d: goals must be a non-negative integer, got %v", row, v)
		}
	}

	return append([]float64(nil), col.Numbers...), nil
}

func observationWeights(data DataSource, expr string, evaluate func(string) ([]float64, error)) ([]float64, error) {
	n := data.Len()
	if expr == "" || expr == "1" {
		return constant(n, 1), nil
	}

	var weights []float64
	if col, ok := data.Column(expr); ok {
		if col.Kind != NumericColumn {
			return nil, inputErrorf(expr, "weights column must be numeric")
		}
		weights = append([]float64(nil), col.Numbers...)
	} else {
		var err error
		if weights, err = evaluate(expr); err != nil {
			return nil, err
		}
	}

	for row, w := range weights {
		if !(w >= 0) || math.IsInf(w, 1) {
			return nil, inputErrorf(expr, "row %d: weights must be finite and non-negative, got %v", row, w)
		}
	}

	return weights, nil
}

// validateVocabulary requires new data to resolve to exactly the fitted columns, in order
func validateVocabulary(fitted, got []string) error {
	if !slices.Equal(fitted, got) {
		return &SchemaMismatchError{
			Expected: append([]string(nil), fitted...),
			Got:      append([]string(nil), got...),
		}
	}
	return nil
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func orDefaultLogger(logger *logrus.Entry) *logrus.Entry {
	if logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logger
}
