package dixoncoles

import (
	"fmt"
)

// DefaultThreshold is the square root of float64 machine epsilon. It only bounds the
// size of scoreline tables; it is not a statistically meaningful cutoff.
const DefaultThreshold = 1.4901161193847656e-08

// RateInfo holds per-match expected goals and the dependence parameter
type RateInfo struct {
	Home []float64 `json:"home"`
	Away []float64 `json:"away"`
	Rho  float64   `json:"rho"`
}

// Rates computes home and away scoring rates for newdata, or for the fit data when
// newdata is nil. New data must resolve to the fitted columns exactly.
func Rates(m *FittedModel, newdata DataSource) (*RateInfo, error) {
	if m == nil {
		return nil, inputErrorf("model", "no fitted model supplied")
	}

	data := newdata
	if data == nil {
		data = m.data
	}

	pair, err := BuildPredictionDesign(m.homeSpec, m.awaySpec, data, m.logger)
	if err != nil {
		return nil, err
	}
	if err := validateVocabulary(m.params.Names, pair.Columns); err != nil {
		return nil, err
	}

	home, away := pair.Rates(m.params.Values)
	return &RateInfo{Home: home, Away: away, Rho: m.params.Rho}, nil
}

// Scorelines returns, per match, every scoreline with at most upTo goals a side whose
// probability exceeds threshold. Tables are truncated and are not renormalized.
func Scorelines(m *FittedModel, newdata DataSource, upTo int, threshold float64) ([][]Scoreline, error) {
	matrices, err := scoreMatrices(m, newdata, upTo)
	if err != nil {
		return nil, err
	}

	out := make([][]Scoreline, len(matrices))
	for i, sm := range matrices {
		out[i] = sm.Scorelines(threshold)
	}
	return out, nil
}

// Outcomes sums each match's scoreline table into home win, draw and away win.
// The result is a lower bound on the true probabilities, governed by upTo and threshold.
func Outcomes(m *FittedModel, newdata DataSource, upTo int, threshold float64) ([]Outcome, error) {
	tables, err := Scorelines(m, newdata, upTo, threshold)
	if err != nil {
		return nil, err
	}

	out := make([]Outcome, len(tables))
	for i, lines := range tables {
		out[i] = SumOutcomes(lines)
	}
	return out, nil
}

func scoreMatrices(m *FittedModel, newdata DataSource, upTo int) ([]*ScoreMatrix, error) {
	if upTo < 0 {
		return nil, inputErrorf("up_to", "must be a non-negative integer, got %d", upTo)
	}

	rates, err := Rates(m, newdata)
	if err != nil {
		return nil, fmt.Errorf("computing rates: %w", err)
	}

	out := make([]*ScoreMatrix, len(rates.Home))
	for i := range out {
		out[i] = NewScoreMatrix(rates.Home[i], rates.Away[i], rates.Rho, upTo)
	}
	return out, nil
}
