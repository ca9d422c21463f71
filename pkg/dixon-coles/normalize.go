package dixoncoles

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// OffenseTerm is the term whose parameters are pinned to mean(exp(offense)) == 1
const OffenseTerm = "off"

// DefenseTerm is the defensive counterpart used by the team entry point
const DefenseTerm = "def"

// NormalizeOffense returns a copy of values with the offense parameters shifted so that
// mean(exp(offense)) == 1. Adding a constant to every offense log-rate and subtracting
// it from every defense log-rate leaves the likelihood unchanged; this pins that freedom.
func NormalizeOffense(names []string, values []float64) []float64 {
	out := append([]float64(nil), values...)

	prefix := OffenseTerm + ParamSeparator
	var offense []int
	for i, name := range names {
		if i < len(out) && strings.HasPrefix(name, prefix) {
			offense = append(offense, i)
		}
	}
	if len(offense) == 0 {
		return out
	}

	raw := make([]float64, len(offense))
	for j, i := range offense {
		raw[j] = out[i]
	}

	// log(mean(exp(raw))) without overflow
	shift := floats.LogSumExp(raw) - math.Log(float64(len(raw)))
	for _, i := range offense {
		out[i] -= shift
	}

	return out
}
