package dixoncoles

import "fmt"

// Tau is the Dixon-Coles correction to the independent Poisson probability of a
// low scoreline. Only 0-0, 0-1, 1-0 and 1-1 are adjusted. No clamping is applied,
// so extreme rho or rates can make the result zero or negative.
func Tau(homeGoals, awayGoals int, homeRate, awayRate, rho float64) float64 {
	switch {
	case homeGoals == 0 && awayGoals == 0:
		return 1 - homeRate*awayRate*rho
	case homeGoals == 0 && awayGoals == 1:
		return 1 + homeRate*rho
	case homeGoals == 1 && awayGoals == 0:
		return 1 + awayRate*rho
	case homeGoals == 1 && awayGoals == 1:
		return 1 - rho
	default:
		return 1.0
	}
}

// TauVec applies Tau elementwise across equal-length slices
func TauVec(homeGoals, awayGoals []int, homeRates, awayRates []float64, rho float64) ([]float64, error) {
	n := len(homeGoals)
	if len(awayGoals) != n || len(homeRates) != n || len(awayRates) != n {
		return nil, fmt.Errorf("tau: length mismatch (%d, %d, %d, %d)", n, len(awayGoals), len(homeRates), len(awayRates))
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = Tau(homeGoals[i], awayGoals[i], homeRates[i], awayRates[i], rho)
	}
	return out, nil
}
