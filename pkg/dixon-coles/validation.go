package dixoncoles

import (
	"fmt"
	"slices"
)

// ValidateMatches checks match results for problems that would poison a fit,
// reporting every offending row at once
func ValidateMatches(matches []MatchResult) error {
	if len(matches) == 0 {
		return inputErrorf("matches", "historical data is required")
	}

	var errs []*InputError
	for i, match := range matches {
		field := fmt.Sprintf("matches[%d]", i)

		if match.HomeTeam == "" || match.AwayTeam == "" {
			errs = append(errs, inputErrorf(field, "home and away team names are required"))
			continue
		}
		if match.HomeTeam == match.AwayTeam {
			errs = append(errs, inputErrorf(field, "team %q cannot play itself", match.HomeTeam))
		}
		if match.HomeGoals < 0 || match.AwayGoals < 0 {
			errs = append(errs, inputErrorf(field, "negative score %d-%d", match.HomeGoals, match.AwayGoals))
		}
	}

	if len(errs) > 0 {
		return &InputErrors{Errors: errs}
	}
	return nil
}

// validateTeamLevels checks the team columns used by the team entry point. Non-categorical
// columns are rejected; differing level sets are returned as a warning since the fit can
// still proceed on the union.
func validateTeamLevels(data DataSource, cols TeamColumns) (warning string, err error) {
	home, ok := data.Column(cols.HomeTeam)
	if !ok {
		return "", inputErrorf(cols.HomeTeam, "column not found in data")
	}
	away, ok := data.Column(cols.AwayTeam)
	if !ok {
		return "", inputErrorf(cols.AwayTeam, "column not found in data")
	}

	if home.Kind != CategoricalColumn {
		return "", inputErrorf(cols.HomeTeam, "team column must be categorical")
	}
	if away.Kind != CategoricalColumn {
		return "", inputErrorf(cols.AwayTeam, "team column must be categorical")
	}

	if !slices.Equal(home.Levels, away.Levels) {
		missing, extra := diffColumns(home.Levels, away.Levels)
		return fmt.Sprintf("%s and %s have different team levels (only home: %v, only away: %v); declare one shared level set",
			cols.HomeTeam, cols.AwayTeam, missing, extra), nil
	}

	return "", nil
}
