package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
	"github.com/tennispal/tennispal/internal/scoreentry"
	"github.com/tennispal/tennispal/internal/scoring"
)

var scoreFormat string

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(countersCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(matchesCmd)
	submitScoreCmd.Flags().StringVar(&scoreFormat, "format", "best_of_3", "Match format: best_of_3, best_of_5 or pro_set")
	rootCmd.AddCommand(submitScoreCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Trigger a processing pass over pending matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/process")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var countersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Get the persisted submission counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/counters")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the registered players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/players")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the league leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/leaderboard")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [player name]",
	Short: "Show one player's statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/players/stats?name=" + url.QueryEscape(args[0]))
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List your matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/matches")
	},
}

var submitScoreCmd = &cobra.Command{
	Use:   "submit-score [matchID] [scoreline]",
	Short: "Submit a match score, e.g. submit-score abc123 \"6-4 7-6(4)\"",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		matchID, scoreline := args[0], args[1]
		if userID == "" {
			return fmt.Errorf("--user is required to submit a score")
		}
		if !scoring.ValidFormat(scoreFormat) {
			return fmt.Errorf("unknown format %q", scoreFormat)
		}
		format := scoring.MatchFormat(scoreFormat)

		sets, err := scoring.ParseScoreline(scoreline)
		if err != nil {
			return fmt.Errorf("invalid scoreline: %w", err)
		}
		if len(sets) > scoring.MaxSets(format) {
			return fmt.Errorf("scoreline has %d sets but a %s match has at most %d", len(sets), scoreFormat, scoring.MaxSets(format))
		}

		entry := scoreentry.New(matchID)
		entry.SetFormat(format)
		for i, set := range sets {
			for i >= len(entry.Sets()) {
				entry.AddSet()
			}
			entry.UpdateGameScore(i, scoring.SideP1, set.P1)
			entry.UpdateGameScore(i, scoring.SideP2, set.P2)
			if set.Tiebreak != nil {
				entry.UpdateTiebreak(i, scoring.SideP1, set.Tiebreak.P1)
				entry.UpdateTiebreak(i, scoring.SideP2, set.Tiebreak.P2)
			}
		}

		if state := entry.State(); state != scoreentry.StateReviewReady {
			return fmt.Errorf("scoreline does not complete a %s match", scoreFormat)
		}
		fmt.Printf("Submitting %s for match %s\n", entry.Scoreline(), matchID)

		submitter := scoreentry.NewAPISubmitter(host, userID)
		if err := entry.Submit(context.Background(), submitter); err != nil {
			return fmt.Errorf("submission failed: %w", err)
		}
		fmt.Println("Score submitted.")
		return nil
	},
}

func performGetRequest(endpoint string) error {
	target := host + endpoint
	fmt.Printf("Making request to %s\n", target)

	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
