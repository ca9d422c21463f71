package dixoncoles

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// objectiveCeiling stands in for an infinite or undefined negative log-likelihood so
// line searches see a very bad but finite value and back off
const objectiveCeiling = 1e300

// Rates computes exp(X·beta) for both sides of every observation.
// beta holds one value per design column, rho excluded.
func (p *DesignPair) Rates(beta []float64) (home, away []float64) {
	b := mat.NewVecDense(len(beta), append([]float64(nil), beta...))

	var etaHome, etaAway mat.VecDense
	etaHome.MulVec(p.Home, b)
	etaAway.MulVec(p.Away, b)

	n := p.Rows()
	home = make([]float64, n)
	away = make([]float64, n)
	for i := 0; i < n; i++ {
		home[i] = math.Exp(etaHome.AtVec(i))
		away[i] = math.Exp(etaAway.AtVec(i))
	}

	return home, away
}

// LogLikelihoods returns the unweighted Dixon-Coles log-likelihood of each observation.
// A non-positive tau gives -Inf for that observation.
func LogLikelihoods(pair *DesignPair, params Params) []float64 {
	return logLikelihoods(pair, params.Values, params.Rho)
}

func logLikelihoods(pair *DesignPair, beta []float64, rho float64) []float64 {
	homeRates, awayRates := pair.Rates(beta)

	out := make([]float64, len(homeRates))
	for i := range out {
		hg, ag := pair.HomeGoals[i], pair.AwayGoals[i]
		hr, ar := homeRates[i], awayRates[i]

		out[i] = logPoisson(hg, hr) +
			logPoisson(ag, ar) +
			logQuiet(Tau(int(hg), int(ag), hr, ar, rho))
	}

	return out
}

// newObjective returns the weighted negative log-likelihood over the optimizer's vector
// (design columns followed by rho). Offense parameters are normalized on every call.
func newObjective(pair *DesignPair) func(x []float64) float64 {
	k := len(pair.Columns)

	return func(x []float64) float64 {
		beta := NormalizeOffense(pair.Columns, x[:k])
		rho := x[k]

		total := 0.0
		for i, ll := range logLikelihoods(pair, beta, rho) {
			w := pair.Weights[i]
			// Zero weight drops the row, even where its likelihood is -Inf
			if w == 0 {
				continue
			}
			total += w * ll
		}

		nll := -total
		if math.IsNaN(nll) || math.IsInf(nll, 0) {
			return objectiveCeiling
		}
		return nll
	}
}
