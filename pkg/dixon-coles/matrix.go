package dixoncoles

import "math"

// ScoreMatrix holds the Dixon-Coles probability of every scoreline up to a bound
type ScoreMatrix struct {
	UpTo   int         // Maximum goals per side
	Matrix [][]float64 // [homeGoals][awayGoals] -> probability
}

// Scoreline is one (home goals, away goals) outcome and its probability
type Scoreline struct {
	HomeGoals   int     `json:"home_goals"`
	AwayGoals   int     `json:"away_goals"`
	Probability float64 `json:"probability"`
}

// Outcome holds 1X2 probabilities
type Outcome struct {
	HomeWin float64 `json:"home_win"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"away_win"`
}

// Total is the probability mass covered by the three outcomes
func (o Outcome) Total() float64 {
	return o.HomeWin + o.Draw + o.AwayWin
}

// NewScoreMatrix creates a score matrix from Poisson rates with the Dixon-Coles adjustment
func NewScoreMatrix(lambdaHome, lambdaAway, rho float64, upTo int) *ScoreMatrix {
	// Marginals are computed once per side
	homeProbs := make([]float64, upTo+1)
	awayProbs := make([]float64, upTo+1)
	for goals := 0; goals <= upTo; goals++ {
		homeProbs[goals] = PoissonProb(lambdaHome, goals)
		awayProbs[goals] = PoissonProb(lambdaAway, goals)
	}

	matrix := make([][]float64, upTo+1)
	for homeGoals := range matrix {
		matrix[homeGoals] = make([]float64, upTo+1)
		for awayGoals := range matrix[homeGoals] {
			adjustment := Tau(homeGoals, awayGoals, lambdaHome, lambdaAway, rho)
			matrix[homeGoals][awayGoals] = homeProbs[homeGoals] * awayProbs[awayGoals] * adjustment
		}
	}

	return &ScoreMatrix{UpTo: upTo, Matrix: matrix}
}

// Scorelines lists scorelines with probability above threshold, home goals major.
// The table is truncated, so its probabilities need not sum to 1.
func (m *ScoreMatrix) Scorelines(threshold float64) []Scoreline {
	var lines []Scoreline
	for homeGoals, row := range m.Matrix {
		for awayGoals, prob := range row {
			if prob > threshold {
				lines = append(lines, Scoreline{HomeGoals: homeGoals, AwayGoals: awayGoals, Probability: prob})
			}
		}
	}
	return lines
}

// SumOutcomes partitions a scoreline table by goal difference
func SumOutcomes(lines []Scoreline) Outcome {
	var o Outcome
	for _, line := range lines {
		switch {
		case line.HomeGoals > line.AwayGoals:
			o.HomeWin += line.Probability
		case line.HomeGoals == line.AwayGoals:
			o.Draw += line.Probability
		default:
			o.AwayWin += line.Probability
		}
	}
	return o
}

// MatchOdds returns 1X2 probabilities [home_win, draw, away_win] over the whole matrix
func (m *ScoreMatrix) MatchOdds() [3]float64 {
	o := SumOutcomes(m.Scorelines(math.Inf(-1)))
	return [3]float64{o.HomeWin, o.Draw, o.AwayWin}
}

// OverUnder returns probability of total goals over/under a threshold
func (m *ScoreMatrix) OverUnder(threshold int) (over, under float64) {
	for homeGoals, row := range m.Matrix {
		for awayGoals, prob := range row {
			if homeGoals+awayGoals > threshold {
				over += prob
			} else {
				under += prob
			}
		}
	}
	return over, under
}

// BothTeamsToScore returns probability of both teams scoring vs not
func (m *ScoreMatrix) BothTeamsToScore() (both, notBoth float64) {
	for homeGoals, row := range m.Matrix {
		for awayGoals, prob := range row {
			if homeGoals > 0 && awayGoals > 0 {
				both += prob
			} else {
				notBoth += prob
			}
		}
	}
	return both, notBoth
}

// CorrectScore returns the probability of a specific scoreline
func (m *ScoreMatrix) CorrectScore(homeGoals, awayGoals int) float64 {
	if homeGoals < 0 || awayGoals < 0 || homeGoals > m.UpTo || awayGoals > m.UpTo {
		return 0.0
	}
	return m.Matrix[homeGoals][awayGoals]
}

// ExpectedGoals returns expected home and away goals within the bound
func (m *ScoreMatrix) ExpectedGoals() (homeExpected, awayExpected float64) {
	for homeGoals, row := range m.Matrix {
		for awayGoals, prob := range row {
			homeExpected += float64(homeGoals) * prob
			awayExpected += float64(awayGoals) * prob
		}
	}
	return homeExpected, awayExpected
}

// TotalProbability returns the sum of all probabilities in the matrix.
// It falls short of 1 by the mass beyond the bound.
func (m *ScoreMatrix) TotalProbability() float64 {
	total := 0.0
	for _, row := range m.Matrix {
		for _, prob := range row {
			total += prob
		}
	}
	return total
}
