package dixoncoles

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// PoissonProb calculates Poisson probability P(X = k) where X ~ Poisson(lambda)
func PoissonProb(lambda float64, k int) float64 {
	if k < 0 {
		return 0
	}
	if lambda <= 0 {
		if k == 0 {
			return 1.0
		}
		return 0
	}
	return math.Exp(logPoisson(float64(k), lambda))
}

// logPoisson is log P(X = k) for X ~ Poisson(lambda)
func logPoisson(k, lambda float64) float64 {
	return distuv.Poisson{Lambda: lambda}.LogProb(k)
}

// PoissonSample draws from Poisson(lambda) using src
func PoissonSample(lambda float64, src rand.Source) int {
	if lambda <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: lambda, Src: src}.Rand())
}

// logQuiet is math.Log that maps non-positive input to -Inf instead of NaN
func logQuiet(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}
	return math.Log(x)
}
