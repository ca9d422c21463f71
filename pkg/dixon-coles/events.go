package dixoncoles

import "sort"

// FindLatestSeason finds the most recent season in the dataset
func FindLatestSeason(matches []MatchResult) string {
	latestSeason := ""
	for _, match := range matches {
		if match.Season > latestSeason {
			latestSeason = match.Season
		}
	}
	return latestSeason
}

// GroupEventsByLeague groups matches by league code
func GroupEventsByLeague(matches []MatchResult) map[string][]MatchResult {
	byLeague := make(map[string][]MatchResult)
	for _, match := range matches {
		byLeague[match.League] = append(byLeague[match.League], match)
	}
	return byLeague
}

// GetTeamsInSeason returns the sorted teams that played in a specific season
func GetTeamsInSeason(matches []MatchResult, season string) []string {
	var inSeason []MatchResult
	for _, match := range matches {
		if match.Season == season {
			inSeason = append(inSeason, match)
		}
	}
	return ExtractTeams(inSeason)
}

// ExtractTeams gets sorted unique team names from match data
func ExtractTeams(matches []MatchResult) []string {
	teamSet := make(map[string]bool)
	for _, match := range matches {
		teamSet[match.HomeTeam] = true
		teamSet[match.AwayTeam] = true
	}
	return sortedKeys(teamSet)
}

// ExtractLeagues gets sorted unique league codes from match data
func ExtractLeagues(matches []MatchResult) []string {
	leagueSet := make(map[string]bool)
	for _, match := range matches {
		leagueSet[match.League] = true
	}
	return sortedKeys(leagueSet)
}

// ExtractSeasons gets sorted unique season codes from match data
func ExtractSeasons(matches []MatchResult) []string {
	seasonSet := make(map[string]bool)
	for _, match := range matches {
		seasonSet[match.Season] = true
	}
	return sortedKeys(seasonSet)
}

// GlobalEntitySummary contains all unique entities found in match data
type GlobalEntitySummary struct {
	Teams   []string `json:"teams"`
	Leagues []string `json:"leagues"`
	Seasons []string `json:"seasons"`
}

// ExtractGlobalEntities extracts all unique teams, leagues, and seasons from match data
func ExtractGlobalEntities(matches []MatchResult) GlobalEntitySummary {
	return GlobalEntitySummary{
		Teams:   ExtractTeams(matches),
		Leagues: ExtractLeagues(matches),
		Seasons: ExtractSeasons(matches),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
