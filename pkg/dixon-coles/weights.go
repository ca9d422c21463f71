package dixoncoles

import (
	"fmt"
	"math"
	"strconv"
)

// SeasonDecayWeights returns one weight per match, base^(yearsAgo*power), measured
// from the latest season in the data. Matches whose season cannot be parsed keep weight 1.
func SeasonDecayWeights(matches []MatchResult, base, power float64) []float64 {
	weights := make([]float64, len(matches))

	latestYear, err := convertSeasonToYear(FindLatestSeason(matches))
	for i, match := range matches {
		weights[i] = 1.0
		if err != nil {
			continue
		}

		seasonYear, err := convertSeasonToYear(match.Season)
		if err != nil {
			continue
		}

		yearsAgo := float64(latestYear - seasonYear)
		weights[i] = math.Pow(base, yearsAgo*power)
	}

	return weights
}

// convertSeasonToYear converts a season code to its starting year
// e.g., "2425" -> 2024, "2324" -> 2023
func convertSeasonToYear(season string) (int, error) {
	if len(season) != 4 {
		return 0, fmt.Errorf("season %q: expected four digits", season)
	}

	yy, err := strconv.Atoi(season[:2])
	if err != nil {
		return 0, fmt.Errorf("season %q: %w", season, err)
	}

	return 2000 + yy, nil
}
