package league

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tennispal/tennispal/internal/scoring"
)

// New creates a new Store backed by the given database.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// UpsertPlayer inserts a new player or updates an existing one's profile
// fields. Elo is only written on first insert; later changes go through the
// stats pipeline.
func (s *store) UpsertPlayer(player PlayerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if player.Elo == 0 {
		player.Elo = 1200
	}
	if player.City == "" {
		player.City = "Pittsburgh"
	}
	_, err := s.db.Exec(`
		INSERT INTO players (id, name, ntrp, elo, city, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			ntrp = excluded.ntrp,
			city = excluded.city;
	`, player.ID, player.Name, player.NTRP, player.Elo, player.City, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}
	log.Debug("Upserted player", "playerID", player.ID, "name", player.Name)
	return nil
}

func (s *store) GetPlayer(playerID string) (*PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow("SELECT id, name, ntrp, elo, city, created_at FROM players WHERE id = ?", playerID)
	player, err := scanPlayer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("player %s not found", playerID)
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

func (s *store) GetAllPlayers() ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, ntrp, elo, city, created_at FROM players ORDER BY name")
	if err != nil {
		log.Error("Failed to query all players", "error", err)
		return nil, err
	}
	defer rows.Close()

	var players []PlayerInfo
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, *player)
	}
	return players, nil
}

// GetPlayersAvailableOn returns players with at least one availability slot
// on the given weekday.
func (s *store) GetPlayersAvailableOn(dayOfWeek int) ([]PlayerInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT DISTINCT p.id, p.name, p.ntrp, p.elo, p.city, p.created_at
		FROM players p
		JOIN availability a ON a.player_id = p.id
		WHERE a.day_of_week = ?
		ORDER BY p.name
	`, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to query available players: %w", err)
	}
	defer rows.Close()

	var players []PlayerInfo
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, *player)
	}
	return players, nil
}

func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "playerID", playerID)
		return false
	}
	return exists
}

func (s *store) AddAvailability(playerID string, dayOfWeek int, startTime, endTime string) (*AvailabilitySlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := &AvailabilitySlot{
		ID:        uuid.New().String(),
		PlayerID:  playerID,
		DayOfWeek: dayOfWeek,
		StartTime: startTime,
		EndTime:   endTime,
	}
	_, err := s.db.Exec(`
		INSERT INTO availability (id, player_id, day_of_week, start_time, end_time)
		VALUES (?, ?, ?, ?, ?)
	`, slot.ID, slot.PlayerID, slot.DayOfWeek, slot.StartTime, slot.EndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to add availability: %w", err)
	}
	log.Info("Added availability slot", "playerID", playerID, "day", dayOfWeek)
	return slot, nil
}

func (s *store) GetAvailability(playerID string) ([]AvailabilitySlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, player_id, day_of_week, start_time, end_time
		FROM availability WHERE player_id = ? ORDER BY day_of_week, start_time
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	var slots []AvailabilitySlot
	for rows.Next() {
		var slot AvailabilitySlot
		if err := rows.Scan(&slot.ID, &slot.PlayerID, &slot.DayOfWeek, &slot.StartTime, &slot.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan availability row: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// DeleteAvailability removes a slot, but only for its owner.
func (s *store) DeleteAvailability(slotID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec("DELETE FROM availability WHERE id = ? AND player_id = ?", slotID, playerID)
	if err != nil {
		return fmt.Errorf("failed to delete availability: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("availability slot %s not found for player", slotID)
	}
	return nil
}

func (s *store) CreatePost(post *Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if post.Court == "" {
		post.Court = "Flexible"
	}
	if post.MatchType == "" {
		post.MatchType = "singles"
	}
	post.CreatedAt = time.Now().Unix()

	_, err := s.db.Exec(`
		INSERT INTO posts (id, player_id, play_date, start_time, end_time, court, match_type, level_min, level_max, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, post.ID, post.PlayerID, post.PlayDate, post.StartTime, post.EndTime, post.Court, post.MatchType, post.LevelMin, post.LevelMax, post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	log.Info("Created open play post", "postID", post.ID, "playerID", post.PlayerID, "date", post.PlayDate)
	return nil
}

// GetOpenPosts returns unclaimed posts playing on or after fromDate
// (YYYY-MM-DD), soonest first.
func (s *store) GetOpenPosts(fromDate string) ([]*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT po.id, po.player_id, p.name, po.play_date, po.start_time, po.end_time, po.court, po.match_type, po.level_min, po.level_max, po.claimed_by_id, po.created_at
		FROM posts po
		JOIN players p ON po.player_id = p.id
		WHERE po.claimed_by_id IS NULL AND po.play_date >= ?
		ORDER BY po.play_date, po.start_time
	`, fromDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		var post Post
		if err := rows.Scan(&post.ID, &post.PlayerID, &post.AuthorName, &post.PlayDate, &post.StartTime, &post.EndTime,
			&post.Court, &post.MatchType, &post.LevelMin, &post.LevelMax, &post.ClaimedByID, &post.CreatedAt); err != nil {
			log.Error("Failed to scan post row", "error", err)
			continue
		}
		posts = append(posts, &post)
	}
	return posts, nil
}

// ClaimPost atomically claims an open post and creates the resulting match,
// notifying the post's author. Claiming your own post or an already claimed
// post fails.
func (s *store) ClaimPost(postID, claimerID string) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var authorID, playDate, matchType string
	var claimedBy sql.NullString
	err = tx.QueryRow("SELECT player_id, play_date, match_type, claimed_by_id FROM posts WHERE id = ?", postID).
		Scan(&authorID, &playDate, &matchType, &claimedBy)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("post %s not found", postID)
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if authorID == claimerID {
		return nil, fmt.Errorf("cannot claim your own post")
	}
	if claimedBy.Valid {
		return nil, fmt.Errorf("post no longer available")
	}

	if _, err := tx.Exec("UPDATE posts SET claimed_by_id = ? WHERE id = ?", claimerID, postID); err != nil {
		return nil, fmt.Errorf("failed to claim post: %w", err)
	}

	matchID, err := insertMatchTx(tx, authorID, claimerID, playDate, matchType)
	if err != nil {
		return nil, err
	}

	var claimerName string
	if err := tx.QueryRow("SELECT name FROM players WHERE id = ?", claimerID).Scan(&claimerName); err != nil {
		return nil, fmt.Errorf("failed to load claimer: %w", err)
	}
	if err := insertNotificationTx(tx, authorID,
		fmt.Sprintf("%s claimed your post for %s!", claimerName, playDate), nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}
	log.Info("Post claimed", "postID", postID, "claimerID", claimerID, "matchID", matchID)
	return s.getMatchLocked(matchID)
}

func (s *store) CreateInvite(invite *Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if invite.ID == "" {
		invite.ID = uuid.New().String()
	}
	if invite.Court == "" {
		invite.Court = "TBD"
	}
	if invite.MatchType == "" {
		invite.MatchType = "singles"
	}
	invite.Status = InvitePending
	invite.CreatedAt = time.Now().Unix()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO invites (id, from_player_id, to_player_id, play_date, start_time, end_time, court, match_type, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, invite.ID, invite.FromPlayerID, invite.ToPlayerID, invite.PlayDate, invite.StartTime, invite.EndTime,
		invite.Court, invite.MatchType, invite.Status, invite.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}

	var fromName string
	if err := tx.QueryRow("SELECT name FROM players WHERE id = ?", invite.FromPlayerID).Scan(&fromName); err != nil {
		return fmt.Errorf("failed to load inviter: %w", err)
	}
	if err := insertNotificationTx(tx, invite.ToPlayerID,
		fmt.Sprintf("%s invited you to play on %s!", fromName, invite.PlayDate), nil); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invite: %w", err)
	}
	log.Info("Created invite", "inviteID", invite.ID, "from", invite.FromPlayerID, "to", invite.ToPlayerID)
	return nil
}

func (s *store) GetPendingInvites(playerID string) ([]*Invite, []*Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	received, err := s.queryInvites("i.to_player_id = ? AND i.status = 'pending'", playerID)
	if err != nil {
		return nil, nil, err
	}
	sent, err := s.queryInvites("i.from_player_id = ? AND i.status = 'pending'", playerID)
	if err != nil {
		return nil, nil, err
	}
	return received, sent, nil
}

func (s *store) queryInvites(where string, args ...any) ([]*Invite, error) {
	rows, err := s.db.Query(`
		SELECT i.id, i.from_player_id, pf.name, i.to_player_id, pt.name, i.play_date, i.start_time, i.end_time, i.court, i.match_type, i.status, i.created_at
		FROM invites i
		JOIN players pf ON i.from_player_id = pf.id
		JOIN players pt ON i.to_player_id = pt.id
		WHERE `+where+`
		ORDER BY i.created_at DESC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invites: %w", err)
	}
	defer rows.Close()

	var invites []*Invite
	for rows.Next() {
		var invite Invite
		if err := rows.Scan(&invite.ID, &invite.FromPlayerID, &invite.FromName, &invite.ToPlayerID, &invite.ToName,
			&invite.PlayDate, &invite.StartTime, &invite.EndTime, &invite.Court, &invite.MatchType, &invite.Status, &invite.CreatedAt); err != nil {
			log.Error("Failed to scan invite row", "error", err)
			continue
		}
		invites = append(invites, &invite)
	}
	return invites, nil
}

// AcceptInvite marks a pending invite accepted and creates the match,
// notifying the inviter. Only the invitee can accept.
func (s *store) AcceptInvite(inviteID, playerID string) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var fromID, toID, playDate, matchType, status string
	err = tx.QueryRow("SELECT from_player_id, to_player_id, play_date, match_type, status FROM invites WHERE id = ?", inviteID).
		Scan(&fromID, &toID, &playDate, &matchType, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("invite %s not found", inviteID)
		}
		return nil, fmt.Errorf("failed to load invite: %w", err)
	}
	if toID != playerID {
		return nil, fmt.Errorf("not authorized to accept this invite")
	}
	if status != string(InvitePending) {
		return nil, fmt.Errorf("invite is no longer pending")
	}

	if _, err := tx.Exec("UPDATE invites SET status = 'accepted' WHERE id = ?", inviteID); err != nil {
		return nil, fmt.Errorf("failed to accept invite: %w", err)
	}

	matchID, err := insertMatchTx(tx, fromID, toID, playDate, matchType)
	if err != nil {
		return nil, err
	}

	var accepterName string
	if err := tx.QueryRow("SELECT name FROM players WHERE id = ?", playerID).Scan(&accepterName); err != nil {
		return nil, fmt.Errorf("failed to load accepter: %w", err)
	}
	if err := insertNotificationTx(tx, fromID,
		fmt.Sprintf("%s accepted your invite for %s!", accepterName, playDate), nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invite acceptance: %w", err)
	}
	log.Info("Invite accepted", "inviteID", inviteID, "matchID", matchID)
	return s.getMatchLocked(matchID)
}

// DeclineInvite marks a pending invite declined, notifying the inviter.
func (s *store) DeclineInvite(inviteID, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var fromID, toID string
	err = tx.QueryRow("SELECT from_player_id, to_player_id FROM invites WHERE id = ?", inviteID).Scan(&fromID, &toID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("invite %s not found", inviteID)
		}
		return fmt.Errorf("failed to load invite: %w", err)
	}
	if toID != playerID {
		return fmt.Errorf("not authorized to decline this invite")
	}

	if _, err := tx.Exec("UPDATE invites SET status = 'declined' WHERE id = ?", inviteID); err != nil {
		return fmt.Errorf("failed to decline invite: %w", err)
	}

	var declinerName string
	if err := tx.QueryRow("SELECT name FROM players WHERE id = ?", playerID).Scan(&declinerName); err != nil {
		return fmt.Errorf("failed to load decliner: %w", err)
	}
	if err := insertNotificationTx(tx, fromID, fmt.Sprintf("%s declined your invite.", declinerName), nil); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invite decline: %w", err)
	}
	return nil
}

const matchSelect = `
	SELECT m.id, m.player1_id, p1.name, m.player2_id, p2.name, m.play_date, m.match_type, m.status,
		m.match_format, m.score, m.sets_json, m.score_submitted_by, m.score_confirmed, m.score_disputed,
		m.winner_id, w.name, m.processing_status, m.created_at
	FROM matches m
	JOIN players p1 ON m.player1_id = p1.id
	JOIN players p2 ON m.player2_id = p2.id
	LEFT JOIN players w ON m.winner_id = w.id
`

func (s *store) GetMatch(matchID string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getMatchLocked(matchID)
}

func (s *store) getMatchLocked(matchID string) (*Match, error) {
	row := s.db.QueryRow(matchSelect+" WHERE m.id = ?", matchID)
	match, err := scanMatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match %s not found", matchID)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return match, nil
}

func (s *store) GetMatchesForPlayer(playerID string) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(matchSelect+`
		WHERE m.player1_id = ? OR m.player2_id = ?
		ORDER BY m.play_date DESC
	`, playerID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows), nil
}

// GetMatchesForProcessing retrieves all matches that are not yet in a
// terminal processing state.
func (s *store) GetMatchesForProcessing() ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(matchSelect+" WHERE m.processing_status NOT IN (?, ?)", StatusClosed, StatusDisputed)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for processing: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows), nil
}

// UpdateProcessingStatus transitions a match to a new internal state.
func (s *store) UpdateProcessingStatus(matchID string, status ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE matches SET processing_status = ? WHERE id = ?", status, matchID)
	return err
}

// SubmitScore records a validated score on a match. The caller is expected
// to have run the scoring engine already; the store persists the structured
// sets alongside the derived scoreline and winner, resets the
// confirmed/disputed flags, and notifies the opponent.
func (s *store) SubmitScore(matchID, submitterID string, sets []scoring.SetScore, format scoring.MatchFormat, scoreline string, winnerID string) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, err := s.getMatchLocked(matchID)
	if err != nil {
		return nil, err
	}
	if submitterID != match.Player1ID && submitterID != match.Player2ID {
		return nil, fmt.Errorf("not a participant in this match")
	}
	if match.Status == MatchCancelled {
		return nil, fmt.Errorf("match is cancelled")
	}

	setsJSON, err := json.Marshal(sets)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sets: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE matches SET
			score = ?, sets_json = ?, match_format = ?, score_submitted_by = ?,
			status = ?, score_confirmed = 0, score_disputed = 0, winner_id = ?, processing_status = ?
		WHERE id = ?
	`, scoreline, setsJSON, string(format), submitterID, MatchCompleted, winnerID, StatusScoreSubmitted, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to record score: %w", err)
	}

	opponentID := match.Player1ID
	submitterName := match.Player2Name
	if submitterID == match.Player1ID {
		opponentID = match.Player2ID
		submitterName = match.Player1Name
	}
	if err := insertNotificationTx(tx, opponentID,
		fmt.Sprintf("%s submitted a score: %s. Please confirm.", submitterName, scoreline), nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit score: %w", err)
	}
	log.Info("Score submitted", "matchID", matchID, "submitterID", submitterID, "scoreline", scoreline)
	return s.getMatchLocked(matchID)
}

// ResolveScore confirms or disputes a submitted score. The submitter cannot
// resolve their own submission.
func (s *store) ResolveScore(matchID, reviewerID string, confirm bool) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, err := s.getMatchLocked(matchID)
	if err != nil {
		return nil, err
	}
	if reviewerID != match.Player1ID && reviewerID != match.Player2ID {
		return nil, fmt.Errorf("not a participant in this match")
	}
	if match.ScoreSubmittedBy == nil {
		return nil, fmt.Errorf("no score has been submitted")
	}
	if *match.ScoreSubmittedBy == reviewerID {
		return nil, fmt.Errorf("cannot confirm your own score")
	}

	if confirm {
		_, err = s.db.Exec("UPDATE matches SET score_confirmed = 1, processing_status = ? WHERE id = ?", StatusScoreConfirmed, matchID)
	} else {
		_, err = s.db.Exec("UPDATE matches SET score_disputed = 1, processing_status = ? WHERE id = ?", StatusDisputed, matchID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve score: %w", err)
	}
	log.Info("Score resolved", "matchID", matchID, "confirmed", confirm)
	return s.getMatchLocked(matchID)
}

// CancelMatch marks a match cancelled. Only a participant can cancel.
func (s *store) CancelMatch(matchID, playerID string) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, err := s.getMatchLocked(matchID)
	if err != nil {
		return nil, err
	}
	if playerID != match.Player1ID && playerID != match.Player2ID {
		return nil, fmt.Errorf("not a participant in this match")
	}

	_, err = s.db.Exec("UPDATE matches SET status = ?, processing_status = ? WHERE id = ?", MatchCancelled, StatusClosed, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel match: %w", err)
	}
	return s.getMatchLocked(matchID)
}

// UpdatePlayerStats aggregates a confirmed match into both players' running
// statistics.
func (s *store) UpdatePlayerStats(match *Match) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if match.WinnerID == nil {
		log.Warn("Skipping stats update for match without a winner", "matchID", match.ID)
		return
	}

	type tally struct {
		played, won, lost   int
		setsWon, setsLost   int
		gamesWon, gamesLost int
	}
	stats := map[string]*tally{
		match.Player1ID: {played: 1},
		match.Player2ID: {played: 1},
	}
	if *match.WinnerID == match.Player1ID {
		stats[match.Player1ID].won = 1
		stats[match.Player2ID].lost = 1
	} else {
		stats[match.Player2ID].won = 1
		stats[match.Player1ID].lost = 1
	}

	for _, set := range match.Sets {
		switch scoring.SetWinner(set) {
		case scoring.SideP1:
			stats[match.Player1ID].setsWon++
			stats[match.Player2ID].setsLost++
		case scoring.SideP2:
			stats[match.Player2ID].setsWon++
			stats[match.Player1ID].setsLost++
		}
		stats[match.Player1ID].gamesWon += set.P1
		stats[match.Player1ID].gamesLost += set.P2
		stats[match.Player2ID].gamesWon += set.P2
		stats[match.Player2ID].gamesLost += set.P1
	}

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for stats update", "error", err, "matchID", match.ID)
		return
	}
	defer tx.Rollback()

	for playerID, t := range stats {
		_, err := tx.Exec(`
			INSERT INTO player_stats (player_id, matches_played, matches_won, matches_lost, sets_won, sets_lost, games_won, games_lost)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(player_id) DO UPDATE SET
				matches_played = matches_played + excluded.matches_played,
				matches_won = matches_won + excluded.matches_won,
				matches_lost = matches_lost + excluded.matches_lost,
				sets_won = sets_won + excluded.sets_won,
				sets_lost = sets_lost + excluded.sets_lost,
				games_won = games_won + excluded.games_won,
				games_lost = games_lost + excluded.games_lost;
		`, playerID, t.played, t.won, t.lost, t.setsWon, t.setsLost, t.gamesWon, t.gamesLost)
		if err != nil {
			log.Error("Failed to upsert player stats", "error", err, "playerID", playerID)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit player stats", "error", err, "matchID", match.ID)
		return
	}
	log.Info("Updated player stats", "matchID", match.ID)
}

func (s *store) GetLeaderboard() ([]PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.ntrp, p.elo,
			COALESCE(ps.matches_played, 0), COALESCE(ps.matches_won, 0), COALESCE(ps.matches_lost, 0),
			COALESCE(ps.sets_won, 0), COALESCE(ps.sets_lost, 0),
			COALESCE(ps.games_won, 0), COALESCE(ps.games_lost, 0)
		FROM players p
		LEFT JOIN player_stats ps ON p.id = ps.player_id
		ORDER BY COALESCE(ps.matches_won, 0) DESC, COALESCE(ps.sets_won, 0) DESC, COALESCE(ps.games_won, 0) DESC, p.name;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var board []PlayerStats
	for rows.Next() {
		var stat PlayerStats
		err := rows.Scan(&stat.PlayerID, &stat.PlayerName, &stat.NTRP, &stat.Elo,
			&stat.MatchesPlayed, &stat.MatchesWon, &stat.MatchesLost,
			&stat.SetsWon, &stat.SetsLost, &stat.GamesWon, &stat.GamesLost)
		if err != nil {
			return nil, err
		}
		if stat.MatchesPlayed > 0 {
			stat.WinPercentage = (float64(stat.MatchesWon) / float64(stat.MatchesPlayed)) * 100
		}
		board = append(board, stat)
	}
	return board, nil
}

// GetPlayerStatsByName retrieves the statistics for a single player by name.
// The lookup is case-insensitive and fuzzy ("morten" matches "Morten Voss").
func (s *store) GetPlayerStatsByName(playerName string) (*PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stat PlayerStats
	pattern := "%" + playerName + "%"
	err := s.db.QueryRow(`
		SELECT p.id, p.name, p.ntrp, p.elo,
			COALESCE(ps.matches_played, 0), COALESCE(ps.matches_won, 0), COALESCE(ps.matches_lost, 0),
			COALESCE(ps.sets_won, 0), COALESCE(ps.sets_lost, 0),
			COALESCE(ps.games_won, 0), COALESCE(ps.games_lost, 0)
		FROM players p
		LEFT JOIN player_stats ps ON p.id = ps.player_id
		WHERE p.name LIKE ? COLLATE NOCASE
		LIMIT 1
	`, pattern).Scan(&stat.PlayerID, &stat.PlayerName, &stat.NTRP, &stat.Elo,
		&stat.MatchesPlayed, &stat.MatchesWon, &stat.MatchesLost,
		&stat.SetsWon, &stat.SetsLost, &stat.GamesWon, &stat.GamesLost)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("player matching '%s' not found", playerName)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if stat.MatchesPlayed > 0 {
		stat.WinPercentage = (float64(stat.MatchesWon) / float64(stat.MatchesPlayed)) * 100
	}
	return &stat, nil
}

// GetHeadToHead summarizes confirmed results between two players.
func (s *store) GetHeadToHead(playerID, opponentID string) (*HeadToHead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(matchSelect+`
		WHERE m.score_confirmed = 1 AND (
			(m.player1_id = ? AND m.player2_id = ?) OR
			(m.player1_id = ? AND m.player2_id = ?)
		)
		ORDER BY m.play_date DESC
	`, playerID, opponentID, opponentID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query head to head: %w", err)
	}
	defer rows.Close()

	h2h := &HeadToHead{}
	for _, match := range collectMatches(rows) {
		if match.WinnerID != nil {
			if *match.WinnerID == playerID {
				h2h.Wins++
			} else if *match.WinnerID == opponentID {
				h2h.Losses++
			}
		}
		h2h.Matches = append(h2h.Matches, match)
	}
	return h2h, nil
}

func (s *store) AddNotification(playerID, message string, link *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertNotificationTx(tx, playerID, message, link); err != nil {
		return err
	}
	return tx.Commit()
}

// GetNotifications returns the player's most recent notifications and marks
// all unread ones read, matching the read-on-open behavior of the client.
func (s *store) GetNotifications(playerID string) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, player_id, message, link, read, created_at
		FROM notifications WHERE player_id = ?
		ORDER BY created_at DESC LIMIT 50
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notes []Notification
	for rows.Next() {
		var note Notification
		if err := rows.Scan(&note.ID, &note.PlayerID, &note.Message, &note.Link, &note.Read, &note.CreatedAt); err != nil {
			log.Error("Failed to scan notification row", "error", err)
			continue
		}
		notes = append(notes, note)
	}
	rows.Close()

	if _, err := s.db.Exec("UPDATE notifications SET read = 1 WHERE player_id = ? AND read = 0", playerID); err != nil {
		log.Error("Failed to mark notifications read", "error", err, "playerID", playerID)
	}
	return notes, nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}
	defer tx.Rollback()

	for _, table := range []string{"notifications", "player_stats", "matches", "invites", "posts", "availability", "players"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

// insertMatchTx creates a fresh scheduled match inside an open transaction.
func insertMatchTx(tx *sql.Tx, player1ID, player2ID, playDate, matchType string) (string, error) {
	matchID := uuid.New().String()
	_, err := tx.Exec(`
		INSERT INTO matches (id, player1_id, player2_id, play_date, match_type, status, match_format, processing_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, matchID, player1ID, player2ID, playDate, matchType, MatchScheduled, string(scoring.FormatBestOfThree), StatusNew, time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to create match: %w", err)
	}
	return matchID, nil
}

func insertNotificationTx(tx *sql.Tx, playerID, message string, link *string) error {
	_, err := tx.Exec(`
		INSERT INTO notifications (id, player_id, message, link, read, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, uuid.New().String(), playerID, message, link, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func scanPlayer(scanner interface{ Scan(...any) error }) (*PlayerInfo, error) {
	var player PlayerInfo
	var ntrp sql.NullFloat64
	if err := scanner.Scan(&player.ID, &player.Name, &ntrp, &player.Elo, &player.City, &player.CreatedAt); err != nil {
		return nil, err
	}
	if ntrp.Valid {
		player.NTRP = &ntrp.Float64
	}
	return &player, nil
}

// scanMatch is a helper to scan a single joined match row.
func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var match Match
	var score, setsJSON, submittedBy, winnerID, winnerName sql.NullString

	err := scanner.Scan(
		&match.ID, &match.Player1ID, &match.Player1Name, &match.Player2ID, &match.Player2Name,
		&match.PlayDate, &match.MatchType, &match.Status,
		&match.MatchFormat, &score, &setsJSON, &submittedBy, &match.ScoreConfirmed, &match.ScoreDisputed,
		&winnerID, &winnerName, &match.ProcessingStatus, &match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if score.Valid {
		match.Score = &score.String
	}
	if submittedBy.Valid {
		match.ScoreSubmittedBy = &submittedBy.String
	}
	if winnerID.Valid {
		match.WinnerID = &winnerID.String
	}
	if winnerName.Valid {
		match.WinnerName = &winnerName.String
	}
	if setsJSON.Valid && setsJSON.String != "" {
		if err := json.Unmarshal([]byte(setsJSON.String), &match.Sets); err != nil {
			log.Error("Failed to unmarshal sets_json", "error", err, "matchID", match.ID)
		}
	}
	return &match, nil
}

func collectMatches(rows *sql.Rows) []*Match {
	var matches []*Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, match)
	}
	return matches
}
