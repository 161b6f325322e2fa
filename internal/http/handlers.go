package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tennispal/tennispal/internal/league"
	"github.com/tennispal/tennispal/internal/scoring"
)

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// respondError writes a JSON error body, matching what API clients expect.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

// CountersHandler serves the persisted submission counters, which track
// totals across restarts unlike the in-process Prometheus state.
func (s *Server) CountersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.MetricsStore.GetAll()
		if err != nil {
			log.Error("Failed to get counters", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to get counters")
			return
		}
		respondJSON(w, http.StatusOK, counters)
	}
}

func (s *Server) ProcessMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting match processing...")
		isDryRun := isDryRunFromContext(r)

		s.Processor.ProcessMatches(isDryRun)

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Match processing completed.")
		log.Info("Match processing finished.")
	}
}

func (s *Server) RegisterPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string   `json:"name"`
			NTRP *float64 `json:"ntrp"`
			City string   `json:"city"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if body.Name == "" {
			respondError(w, http.StatusBadRequest, "name is required")
			return
		}

		playerID := playerIDFromContext(r)
		player := league.PlayerInfo{ID: playerID, Name: body.Name, NTRP: body.NTRP, City: body.City}
		if err := s.Store.UpsertPlayer(player); err != nil {
			log.Error("Failed to upsert player", "error", err, "playerID", playerID)
			respondError(w, http.StatusInternalServerError, "failed to save player")
			return
		}

		saved, err := s.Store.GetPlayer(playerID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to load player")
			return
		}
		respondJSON(w, http.StatusOK, saved)
	}
}

// ListPlayersHandler lists all players, or only those with availability on a
// given weekday when ?day=N is present.
func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var players []league.PlayerInfo
		var err error

		if dayStr := r.URL.Query().Get("day"); dayStr != "" {
			day, convErr := strconv.Atoi(dayStr)
			if convErr != nil || day < 0 || day > 6 {
				respondError(w, http.StatusBadRequest, "day must be 0-6")
				return
			}
			players, err = s.Store.GetPlayersAvailableOn(day)
		} else {
			players, err = s.Store.GetAllPlayers()
		}
		if err != nil {
			log.Error("Failed to get players from store", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to get players")
			return
		}
		respondJSON(w, http.StatusOK, players)
	}
}

// LeaderboardHandler returns a handler that serves the player statistics leaderboard.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.Store.GetLeaderboard()
		if err != nil {
			log.Error("Failed to get leaderboard from store", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to get leaderboard")
			return
		}
		respondJSON(w, http.StatusOK, stats)
	}
}

// PlayerStatsHandler serves one player's stats looked up by (fuzzy) name.
func (s *Server) PlayerStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerName := r.URL.Query().Get("name")
		if playerName == "" {
			respondError(w, http.StatusBadRequest, "name is required")
			return
		}

		log.Info("Received player stats request", "player", playerName)
		stats, err := s.Store.GetPlayerStatsByName(playerName)
		if err != nil {
			log.Warn("Could not find player stats", "player", playerName, "error", err)
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) HeadToHeadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := playerIDFromContext(r)
		opponentID := r.PathValue("opponentID")

		h2h, err := s.Store.GetHeadToHead(playerID, opponentID)
		if err != nil {
			log.Error("Failed to get head to head", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to get head to head")
			return
		}
		respondJSON(w, http.StatusOK, h2h)
	}
}

func (s *Server) AddAvailabilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			DayOfWeek int    `json:"day_of_week"`
			StartTime string `json:"start_time"`
			EndTime   string `json:"end_time"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if body.DayOfWeek < 0 || body.DayOfWeek > 6 {
			respondError(w, http.StatusBadRequest, "day_of_week must be 0-6")
			return
		}
		if body.StartTime == "" || body.EndTime == "" {
			respondError(w, http.StatusBadRequest, "start_time and end_time are required")
			return
		}

		slot, err := s.Store.AddAvailability(playerIDFromContext(r), body.DayOfWeek, body.StartTime, body.EndTime)
		if err != nil {
			log.Error("Failed to add availability", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to add availability")
			return
		}
		respondJSON(w, http.StatusCreated, slot)
	}
}

func (s *Server) GetAvailabilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slots, err := s.Store.GetAvailability(playerIDFromContext(r))
		if err != nil {
			log.Error("Failed to get availability", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to get availability")
			return
		}
		respondJSON(w, http.StatusOK, slots)
	}
}

func (s *Server) DeleteAvailabilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID := r.PathValue("id")
		if err := s.Store.DeleteAvailability(slotID, playerIDFromContext(r)); err != nil {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func (s *Server) CreatePostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PlayDate  string   `json:"play_date"`
			StartTime string   `json:"start_time"`
			EndTime   string   `json:"end_time"`
			Court     string   `json:"court"`
			MatchType string   `json:"match_type"`
			LevelMin  *float64 `json:"level_min"`
			LevelMax  *float64 `json:"level_max"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if body.PlayDate == "" || body.StartTime == "" || body.EndTime == "" {
			respondError(w, http.StatusBadRequest, "play_date, start_time and end_time are required")
			return
		}

		post := &league.Post{
			PlayerID:  playerIDFromContext(r),
			PlayDate:  body.PlayDate,
			StartTime: body.StartTime,
			EndTime:   body.EndTime,
			Court:     body.Court,
			MatchType: body.MatchType,
			LevelMin:  body.LevelMin,
			LevelMax:  body.LevelMax,
		}
		if err := s.Store.CreatePost(post); err != nil {
			log.Error("Failed to create post", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to create post")
			return
		}
		respondJSON(w, http.StatusCreated, post)
	}
}

func (s *Server) ListPostsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fromDate := r.URL.Query().Get("from")
		if fromDate == "" {
			fromDate = time.Now().Format("2006-01-02")
		}
		posts, err := s.Store.GetOpenPosts(fromDate)
		if err != nil {
			log.Error("Failed to get posts", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to get posts")
			return
		}
		respondJSON(w, http.StatusOK, posts)
	}
}

func (s *Server) ClaimPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, err := s.Store.ClaimPost(r.PathValue("id"), playerIDFromContext(r))
		if err != nil {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, match)
	}
}

func (s *Server) CreateInviteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ToPlayerID string `json:"to_player_id"`
			PlayDate   string `json:"play_date"`
			StartTime  string `json:"start_time"`
			EndTime    string `json:"end_time"`
			Court      string `json:"court"`
			MatchType  string `json:"match_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		playerID := playerIDFromContext(r)
		if body.ToPlayerID == "" || body.PlayDate == "" {
			respondError(w, http.StatusBadRequest, "to_player_id and play_date are required")
			return
		}
		if body.ToPlayerID == playerID {
			respondError(w, http.StatusBadRequest, "cannot invite yourself")
			return
		}
		if !s.Store.IsKnownPlayer(body.ToPlayerID) {
			respondError(w, http.StatusNotFound, "invited player not found")
			return
		}

		invite := &league.Invite{
			FromPlayerID: playerID,
			ToPlayerID:   body.ToPlayerID,
			PlayDate:     body.PlayDate,
			StartTime:    body.StartTime,
			EndTime:      body.EndTime,
			Court:        body.Court,
			MatchType:    body.MatchType,
		}
		if err := s.Store.CreateInvite(invite); err != nil {
			log.Error("Failed to create invite", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to create invite")
			return
		}
		respondJSON(w, http.StatusCreated, invite)
	}
}

func (s *Server) ListInvitesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		received, sent, err := s.Store.GetPendingInvites(playerIDFromContext(r))
		if err != nil {
			log.Error("Failed to get invites", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to get invites")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"received": received, "sent": sent})
	}
}

func (s *Server) AcceptInviteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, err := s.Store.AcceptInvite(r.PathValue("id"), playerIDFromContext(r))
		if err != nil {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, match)
	}
}

func (s *Server) DeclineInviteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Store.DeclineInvite(r.PathValue("id"), playerIDFromContext(r)); err != nil {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "declined"})
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.GetMatchesForPlayer(playerIDFromContext(r))
		if err != nil {
			log.Error("Failed to get matches from store", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to get matches")
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, err := s.Store.GetMatch(r.PathValue("id"))
		if err != nil {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, match)
	}
}

// SubmitScoreHandler accepts a structured set-by-set score for a match. The
// submitted sets are revalidated with the scoring engine; the winner and the
// scoreline are always derived server-side, never taken from the client.
func (s *Server) SubmitScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.PathValue("id")
		playerID := playerIDFromContext(r)

		var body struct {
			Sets        []scoring.SetScore `json:"sets"`
			MatchFormat string             `json:"match_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON")
			return
		}

		if reason := validateScoreSubmission(body.Sets, body.MatchFormat); reason != "" {
			s.Metrics.IncScoreRejections()
			s.MetricsStore.Increment("score_submissions_rejected")
			respondError(w, http.StatusBadRequest, reason)
			return
		}

		format := scoring.MatchFormat(body.MatchFormat)
		outcome := scoring.ComputeOutcome(body.Sets, format)
		if !outcome.Complete {
			s.Metrics.IncScoreRejections()
			s.MetricsStore.Increment("score_submissions_rejected")
			respondError(w, http.StatusBadRequest, "match is not complete")
			return
		}

		match, err := s.Store.GetMatch(matchID)
		if err != nil {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		winnerID := match.Player1ID
		if outcome.Winner == scoring.SideP2 {
			winnerID = match.Player2ID
		}

		counted := scoring.CountedSets(body.Sets, format)
		scoreline := scoring.FormatScoreline(counted)

		updated, err := s.Store.SubmitScore(matchID, playerID, counted, format, scoreline, winnerID)
		if err != nil {
			respondError(w, http.StatusConflict, err.Error())
			return
		}

		s.Metrics.IncScoreSubmissions()
		s.MetricsStore.Increment("score_submissions_accepted")
		log.Info("Score accepted", "matchID", matchID, "scoreline", scoreline, "winnerID", winnerID)
		respondJSON(w, http.StatusOK, updated)
	}
}

// validateScoreSubmission checks the structural validity of submitted sets
// and returns a rejection reason, or "" if the submission is well formed.
func validateScoreSubmission(sets []scoring.SetScore, format string) string {
	if !scoring.ValidFormat(format) {
		return "unknown match_format"
	}
	if len(sets) == 0 {
		return "sets are required"
	}
	if len(sets) > scoring.MaxSets(scoring.MatchFormat(format)) {
		return "too many sets for format"
	}
	for i, set := range sets {
		if set.P1 < scoring.MinGames || set.P1 > scoring.MaxGames ||
			set.P2 < scoring.MinGames || set.P2 > scoring.MaxGames {
			return fmt.Sprintf("set %d is out of the 0-7 game range", i+1)
		}
		if set.Tiebreak != nil {
			if !scoring.NeedsTiebreak(set.P1, set.P2) {
				return fmt.Sprintf("set %d has a tiebreak but is not 7-6", i+1)
			}
			if set.Tiebreak.P1 < 0 || set.Tiebreak.P2 < 0 {
				return fmt.Sprintf("set %d has negative tiebreak points", i+1)
			}
		}
	}
	return ""
}

// ResolveScoreHandler confirms (confirm=true) or disputes a submitted score.
func (s *Server) ResolveScoreHandler(confirm bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, err := s.Store.ResolveScore(r.PathValue("id"), playerIDFromContext(r), confirm)
		if err != nil {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, match)
	}
}

func (s *Server) CancelMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, err := s.Store.CancelMatch(r.PathValue("id"), playerIDFromContext(r))
		if err != nil {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, match)
	}
}

func (s *Server) NotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notes, err := s.Store.GetNotifications(playerIDFromContext(r))
		if err != nil {
			log.Error("Failed to get notifications", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to get notifications")
			return
		}
		respondJSON(w, http.StatusOK, notes)
	}
}

// matchFromPush decodes a pubsub push delivery into a Match. It writes the
// error response itself and reports whether decoding succeeded.
func (s *Server) matchFromPush(w http.ResponseWriter, r *http.Request, match *league.Match) bool {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("Failed to read request body", "error", err)
		http.Error(w, "Failed to read request body", http.StatusInternalServerError)
		return false
	}
	log.Debug("Received push message", "path", r.URL.Path, "body", string(bodyBytes))
	// Define a small struct to decode the incoming JSON's `data` field
	var pubsubMsg struct {
		Subscription string `json:"subscription"`
		Message      struct {
			Data string `json:"data"` // base64-encoded message payload
		} `json:"message"`
	}

	// Parse the outer JSON to get `data`
	if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
		log.Error("Failed to unmarshal wrapper JSON", "error", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	// Decode base64 to raw MessagePack bytes
	rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
	if err != nil {
		log.Error("Failed to decode base64 data", "error", err)
		http.Error(w, "Invalid base64 data", http.StatusBadRequest)
		return false
	}
	if err := s.pubsub.ProcessMessage(rawData, match); err != nil {
		http.Error(w, "Invalid message payload", http.StatusBadRequest)
		return false
	}
	return true
}

// UpdatePlayerStatsHandler consumes pubsub push deliveries for the
// update-player-stats topic and applies the carried match to player stats.
func (s *Server) UpdatePlayerStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := league.Match{}
		if !s.matchFromPush(w, r, &match) {
			return
		}
		s.Processor.UpdatePlayerStats(&match)
		w.Write([]byte("OK"))
	}
}

// NotifyResultHandler consumes pubsub push deliveries for the notify-result
// topic and records the final-result notification for both players.
func (s *Server) NotifyResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := league.Match{}
		if !s.matchFromPush(w, r, &match) {
			return
		}
		s.Processor.NotifyResult(&match)
		w.Write([]byte("OK"))
	}
}
