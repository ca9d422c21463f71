package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	dixoncoles "github.com/jhw/go-dixoncoles/pkg/dixon-coles"
)

func main() {
	var (
		flags       cliFlags
		configFile  string
		fetchEvents bool
	)
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	fs.StringVar(&configFile, "config", "", "Path to YAML configuration file")
	fs.BoolVar(&fetchEvents, "fetch-events", false, "Fetch events data from football-data.co.uk and save to the data file")
	registerFlags(fs, &flags, DefaultConfig())
	_ = fs.Parse(os.Args[1:])

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logrus.NewEntry(logger)

	cfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	applyFlags(fs, &flags, &cfg)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	fmt.Printf("⚽ Go Dixon-Coles Demo\n")
	fmt.Printf("======================\n\n")

	if fetchEvents {
		events, err := FetchAllEvents(log)
		if err != nil {
			log.Fatalf("Failed to fetch events: %v", err)
		}
		if err := saveEventsToFile(events, cfg.DataFile); err != nil {
			log.Fatalf("Failed to save events: %v", err)
		}
		log.WithField("file", cfg.DataFile).Infof("saved %d events", len(events))
		return
	}

	historicalData, err := loadEventsFromFile(cfg.DataFile)
	if err != nil {
		log.WithError(err).Error("could not load events file")
		fmt.Printf("💡 Try running with --fetch-events to download fresh data\n")
		os.Exit(1)
	}

	if cfg.League != "" {
		var filtered []dixoncoles.MatchResult
		for _, match := range historicalData {
			if match.League == cfg.League {
				filtered = append(filtered, match)
			}
		}
		historicalData = filtered
	}
	logEventsStatistics(log, historicalData)

	sim := cfg.SimParams
	request := dixoncoles.MLERequest{
		HistoricalData: historicalData,
		Options: dixoncoles.MLEOptions{
			SimParams: &sim,
			Debug:     cfg.Debug,
			Logger:    log,
		},
	}

	fmt.Printf("\nRunning Dixon-Coles estimation...\n")
	fmt.Printf("- Method: %s\n", sim.Optimizer.Method)
	fmt.Printf("- Maximum iterations: %d\n", sim.Optimizer.MaxIterations)
	fmt.Printf("- Weights: %s\n", sim.Weights)

	result, err := dixoncoles.RunSimulation(request)
	if err != nil {
		log.Fatalf("Dixon-Coles estimation failed: %v", err)
	}

	fmt.Printf("\n✓ Estimation completed in %v\n", result.ProcessingTime)
	fmt.Printf("✓ Converged: %v (iterations: %d)\n", result.MLEParams.Converged, result.MLEParams.Iterations)
	fmt.Printf("✓ Log likelihood: %.2f\n", result.MLEParams.LogLikelihood)
	fmt.Printf("✓ Home advantage: %.3f\n", result.MLEParams.HomeAdvantage)
	fmt.Printf("✓ Rho: %.4f\n", result.MLEParams.Rho)
	if convErr := result.Model.ConvergenceErr(); convErr != nil {
		log.WithError(convErr).Warn("ratings come from a non-converged fit")
	}

	displayTeamsByLeague(result)
	displaySummaryStatistics(result.Teams)

	if cfg.Verbose {
		displayMatchOdds(result.MatchOdds)

		fmt.Printf("\n📋 Full Results (JSON)\n")
		fmt.Printf("======================\n")
		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.WithError(err).Error("marshaling results")
		} else {
			fmt.Println(string(jsonData))
		}
	}

	fmt.Printf("\n🎯 Dixon-Coles estimation completed successfully!\n")
	fmt.Printf("   - Processed %d matches for %d teams\n", result.MatchesProcessed, len(result.Teams))
	fmt.Printf("   - Ratings are log-scale parameters of the Poisson scoring rates\n")
}

// logEventsStatistics logs statistics about the loaded events data
func logEventsStatistics(log *logrus.Entry, events []dixoncoles.MatchResult) {
	if len(events) == 0 {
		log.Warn("no events loaded")
		return
	}

	entities := dixoncoles.ExtractGlobalEntities(events)
	log.WithFields(logrus.Fields{
		"events":  len(events),
		"leagues": len(entities.Leagues),
		"seasons": len(entities.Seasons),
		"teams":   len(entities.Teams),
	}).Info("loaded events")

	if len(entities.Leagues) > 1 {
		for league, leagueEvents := range dixoncoles.GroupEventsByLeague(events) {
			log.WithField("league", league).Debugf("%d events", len(leagueEvents))
		}
	}
}

// saveEventsToFile saves events to a JSON file
func saveEventsToFile(events []dixoncoles.MatchResult, filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", filename, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(events); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// loadEventsFromFile loads events from a JSON file
func loadEventsFromFile(filename string) ([]dixoncoles.MatchResult, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", filename, err)
	}
	defer file.Close()

	var events []dixoncoles.MatchResult
	if err := json.NewDecoder(file).Decode(&events); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	return events, nil
}

// displayTeamsByLeague prints the latest season's teams grouped by league
func displayTeamsByLeague(result *dixoncoles.MLEResult) {
	teamsByLeague := make(map[string][]dixoncoles.Team)
	for _, team := range result.Teams {
		if team.League != "" {
			teamsByLeague[team.League] = append(teamsByLeague[team.League], team)
		}
	}

	var leagues []string
	for league := range teamsByLeague {
		leagues = append(leagues, league)
	}
	sort.Strings(leagues)

	for _, league := range leagues {
		teams := teamsByLeague[league]

		// League table order by expected season points
		sort.Slice(teams, func(i, j int) bool {
			return teams[i].ExpectedSeasonPoints > teams[j].ExpectedSeasonPoints
		})

		fmt.Printf("\n🏆 %s %s (%d teams):\n", league, result.LatestSeason, len(teams))
		fmt.Printf("%3s %-20s %5s %5s %5s %8s %8s %8s %8s %9s\n",
			"Pos", "Team", "Pts", "GD", "Pld", "Attack", "Defense", "λ_Home", "λ_Away", "SeasonPts")
		fmt.Printf("%3s %-20s %5s %5s %5s %8s %8s %8s %8s %9s\n",
			"---", "----", "---", "--", "---", "------", "-------", "------", "------", "---------")

		for i, team := range teams {
			fmt.Printf("%3d %-20s %5d %5d %5d %8.3f %8.3f %8.2f %8.2f %9.1f\n",
				i+1,
				truncateString(team.Name, 20),
				team.Points,
				team.GoalDifference,
				team.Played,
				team.AttackRating,
				team.DefenseRating,
				team.LambdaHome,
				team.LambdaAway,
				team.ExpectedSeasonPoints,
			)
		}
	}
}

// displaySummaryStatistics prints the spread of attack and defense ratings
func displaySummaryStatistics(teams []dixoncoles.Team) {
	if len(teams) == 0 {
		return
	}

	fmt.Printf("\n📈 Summary Statistics\n")
	fmt.Printf("====================\n")

	var attackSum, defenseSum float64
	attackMin, attackMax := math.Inf(1), math.Inf(-1)
	defenseMin, defenseMax := math.Inf(1), math.Inf(-1)

	for _, team := range teams {
		attackSum += team.AttackRating
		defenseSum += team.DefenseRating
		attackMin = math.Min(attackMin, team.AttackRating)
		attackMax = math.Max(attackMax, team.AttackRating)
		defenseMin = math.Min(defenseMin, team.DefenseRating)
		defenseMax = math.Max(defenseMax, team.DefenseRating)
	}

	numTeams := float64(len(teams))
	fmt.Printf("Attack ratings  - Mean: %6.3f, Range: [%6.3f, %6.3f]\n",
		attackSum/numTeams, attackMin, attackMax)
	fmt.Printf("Defense ratings - Mean: %6.3f, Range: [%6.3f, %6.3f]\n",
		defenseSum/numTeams, defenseMin, defenseMax)
}

// displayMatchOdds prints model prices for every pairing
func displayMatchOdds(odds []dixoncoles.MatchOdds) {
	fmt.Printf("\n🎲 Match Odds\n")
	fmt.Printf("=============\n")
	fmt.Printf("%-6s %-40s %6s %6s %6s %5s %5s %6s %6s\n",
		"League", "Fixture", "Home", "Draw", "Away", "xGH", "xGA", "O2.5", "BTTS")

	for _, o := range odds {
		fmt.Printf("%-6s %-40s %6.3f %6.3f %6.3f %5.2f %5.2f %6.3f %6.3f\n",
			o.League,
			truncateString(o.Fixture, 40),
			o.Probabilities[0], o.Probabilities[1], o.Probabilities[2],
			o.ExpectedGoals[0], o.ExpectedGoals[1],
			o.Over2p5,
			o.BothToScore,
		)
	}
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
