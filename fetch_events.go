package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	dixoncoles "github.com/jhw/go-dixoncoles/pkg/dixon-coles"
)

// LeagueConfig holds configuration for each league
type LeagueConfig struct {
	Code           string // ENG1, ENG2, ENG3, ENG4
	FootballDataID string // E0, E1, E2, E3
	StartYear      int    // 2015 (for 2015-16 season)
	EndYear        int    // 2024 (for 2024-25 season)
}

// English leagues configuration - 10 years of data (2015-16 to 2024-25)
var englandLeagues = []LeagueConfig{
	{Code: "ENG1", FootballDataID: "E0", StartYear: 2015, EndYear: 2024},
	{Code: "ENG2", FootballDataID: "E1", StartYear: 2015, EndYear: 2024},
	{Code: "ENG3", FootballDataID: "E2", StartYear: 2015, EndYear: 2024},
	{Code: "ENG4", FootballDataID: "E3", StartYear: 2015, EndYear: 2024},
}

// FetchAllEvents downloads all football events from football-data.co.uk
// Returns a single concatenated list of all matches across all leagues and seasons
func FetchAllEvents(log *logrus.Entry) ([]dixoncoles.MatchResult, error) {
	var allEvents []dixoncoles.MatchResult

	log.Info("fetching football events from football-data.co.uk (ENG1-4, 2015-16 to 2024-25)")

	client := &http.Client{Timeout: 30 * time.Second}

	totalRequests := 0
	for _, league := range englandLeagues {
		totalRequests += (league.EndYear - league.StartYear + 1)
	}

	requestCount := 0
	failures := 0
	startTime := time.Now()

	for _, league := range englandLeagues {
		leagueLog := log.WithFields(logrus.Fields{"league": league.Code, "source_id": league.FootballDataID})

		for year := league.StartYear; year <= league.EndYear; year++ {
			requestCount++
			season := fmt.Sprintf("%02d%02d", year%100, (year+1)%100) // "1516", "1617", etc.
			seasonLog := leagueLog.WithFields(logrus.Fields{
				"season":  season,
				"request": fmt.Sprintf("%d/%d", requestCount, totalRequests),
			})

			events, err := fetchSeasonEvents(client, league, season)
			if err != nil {
				failures++
				seasonLog.WithError(err).Warn("season fetch failed")
				continue
			}

			allEvents = append(allEvents, events...)
			seasonLog.Infof("%d events", len(events))
		}
	}

	if len(allEvents) == 0 {
		return nil, fmt.Errorf("no events fetched (%d requests failed)", failures)
	}

	elapsed := time.Since(startTime)
	log.WithFields(logrus.Fields{
		"events":      len(allEvents),
		"failures":    failures,
		"elapsed":     elapsed,
		"per_request": elapsed / time.Duration(requestCount),
	}).Info("data fetching complete")

	return allEvents, nil
}

// fetchSeasonEvents downloads and parses events for a single league season
func fetchSeasonEvents(client *http.Client, league LeagueConfig, season string) ([]dixoncoles.MatchResult, error) {
	url := fmt.Sprintf("https://www.football-data.co.uk/mmz4281/%s/%s.csv", season, league.FootballDataID)

	// Rate limiting and retry logic
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 2s, 4s, 8s
			backoffDelay := time.Duration(2<<uint(attempt-1)) * time.Second
			time.Sleep(backoffDelay)
		} else {
			// Be a good net citizen - wait 1 second between requests
			time.Sleep(1 * time.Second)
		}

		req, err := http.NewRequest("GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		// Set browser-like user agent and friendly headers
		req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Accept", "text/csv,text/plain,*/*")

		resp, err := client.Do(req)
		if err != nil {
			if attempt < maxRetries-1 {
				continue // Retry on network error
			}
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			events, err := parseCSVEvents(resp.Body, league.Code, season)
			resp.Body.Close()
			return events, err
		}
		resp.Body.Close()

		// Server errors are retried, anything else is final
		if resp.StatusCode < 500 || attempt == maxRetries-1 {
			return nil, fmt.Errorf("HTTP %d after %d attempts: %s", resp.StatusCode, attempt+1, url)
		}
	}

	return nil, fmt.Errorf("unexpected end of retry loop")
}

// parseCSVEvents parses the football-data.co.uk CSV format into MatchResult events
func parseCSVEvents(reader io.Reader, leagueCode, season string) ([]dixoncoles.MatchResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1 // Allow variable field count

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV file")
	}

	// Find column indices from header row
	header := records[0]
	dateCol := findColumn(header, "Date")
	homeTeamCol := findColumn(header, "HomeTeam")
	awayTeamCol := findColumn(header, "AwayTeam")
	homeGoalsCol := findColumn(header, "FTHG") // Full Time Home Goals
	awayGoalsCol := findColumn(header, "FTAG") // Full Time Away Goals

	if dateCol == -1 || homeTeamCol == -1 || awayTeamCol == -1 || homeGoalsCol == -1 || awayGoalsCol == -1 {
		return nil, fmt.Errorf("required columns not found in CSV header")
	}

	var events []dixoncoles.MatchResult

	// Parse data rows
	for _, record := range records[1:] {
		if len(record) <= max(dateCol, homeTeamCol, awayTeamCol, homeGoalsCol, awayGoalsCol) {
			continue // Skip malformed rows
		}

		// Parse date
		dateStr := strings.TrimSpace(record[dateCol])
		if dateStr == "" {
			continue
		}

		date, err := parseDate(dateStr)
		if err != nil {
			continue // Skip rows with invalid dates
		}

		// Parse team names
		homeTeam := strings.TrimSpace(record[homeTeamCol])
		awayTeam := strings.TrimSpace(record[awayTeamCol])
		if homeTeam == "" || awayTeam == "" {
			continue
		}

		// Parse goals
		homeGoals, err := strconv.Atoi(strings.TrimSpace(record[homeGoalsCol]))
		if err != nil {
			continue
		}

		awayGoals, err := strconv.Atoi(strings.TrimSpace(record[awayGoalsCol]))
		if err != nil {
			continue
		}

		// Create match event with 4-digit season format (e.g., "2425" for 2024-25)
		event := dixoncoles.MatchResult{
			Date:      date.Format("2006-01-02"),
			Season:    season, // Already in YYMM format (e.g., "2425")
			League:    leagueCode,
			HomeTeam:  homeTeam,
			AwayTeam:  awayTeam,
			HomeGoals: homeGoals,
			AwayGoals: awayGoals,
		}

		events = append(events, event)
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("no valid events parsed from CSV")
	}

	return events, nil
}

// parseDate handles multiple date formats used by football-data.co.uk
func parseDate(dateStr string) (time.Time, error) {
	// Try different date formats
	formats := []string{
		"02/01/06",   // DD/MM/YY
		"2/1/06",     // D/M/YY
		"02/01/2006", // DD/MM/YYYY
		"2/1/2006",   // D/M/YYYY
	}

	for _, format := range formats {
		if date, err := time.Parse(format, dateStr); err == nil {
			return date, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// findColumn finds the index of a column in the CSV header
func findColumn(header []string, columnName string) int {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), columnName) {
			return i
		}
	}
	return -1
}
