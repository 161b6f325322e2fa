package league

import (
	"database/sql"
	"sync"

	"github.com/tennispal/tennispal/internal/scoring"
)

// store handles all database operations for the league.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// PlayerInfo represents a registered player.
type PlayerInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	NTRP      *float64 `json:"ntrp,omitempty"`
	Elo       int      `json:"elo"`
	City      string   `json:"city"`
	CreatedAt int64    `json:"created_at"`
}

// AvailabilitySlot is a weekly recurring window a player can play in.
type AvailabilitySlot struct {
	ID        string `json:"id"`
	PlayerID  string `json:"player_id"`
	DayOfWeek int    `json:"day_of_week"` // 0 = Monday .. 6 = Sunday
	StartTime string `json:"start_time"`  // HH:MM
	EndTime   string `json:"end_time"`    // HH:MM
}

// Post is an open "looking to play" post that another player can claim.
type Post struct {
	ID          string   `json:"id"`
	PlayerID    string   `json:"player_id"`
	AuthorName  string   `json:"author_name"`
	PlayDate    string   `json:"play_date"` // YYYY-MM-DD
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Court       string   `json:"court"`
	MatchType   string   `json:"match_type"`
	LevelMin    *float64 `json:"level_min,omitempty"`
	LevelMax    *float64 `json:"level_max,omitempty"`
	ClaimedByID *string  `json:"claimed_by_id,omitempty"`
	CreatedAt   int64    `json:"created_at"`
}

// InviteStatus is the lifecycle state of a direct match invite.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// Invite is a direct match invite from one player to another.
type Invite struct {
	ID           string       `json:"id"`
	FromPlayerID string       `json:"from_player_id"`
	FromName     string       `json:"from_name"`
	ToPlayerID   string       `json:"to_player_id"`
	ToName       string       `json:"to_name"`
	PlayDate     string       `json:"play_date"`
	StartTime    string       `json:"start_time"`
	EndTime      string       `json:"end_time"`
	Court        string       `json:"court"`
	MatchType    string       `json:"match_type"`
	Status       InviteStatus `json:"status"`
	CreatedAt    int64        `json:"created_at"`
}

// MatchStatus is the player-facing state of a match.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
)

// ProcessingStatus defines the internal processing state of a match.
type ProcessingStatus string

const (
	StatusNew            ProcessingStatus = "NEW"
	StatusScoreSubmitted ProcessingStatus = "SCORE_SUBMITTED"
	StatusScoreConfirmed ProcessingStatus = "SCORE_CONFIRMED"
	StatusStatsUpdated   ProcessingStatus = "STATS_UPDATED"
	StatusDisputed       ProcessingStatus = "DISPUTED"
	StatusClosed         ProcessingStatus = "CLOSED"
)

// Match represents a singles match between two players.
type Match struct {
	ID               string             `json:"id"`
	Player1ID        string             `json:"player1_id"`
	Player1Name      string             `json:"player1_name"`
	Player2ID        string             `json:"player2_id"`
	Player2Name      string             `json:"player2_name"`
	PlayDate         string             `json:"play_date"`
	MatchType        string             `json:"match_type"`
	Status           MatchStatus        `json:"status"`
	MatchFormat      string             `json:"match_format"`
	Score            *string            `json:"score"`
	Sets             []scoring.SetScore `json:"sets"`
	ScoreSubmittedBy *string            `json:"score_submitted_by,omitempty"`
	ScoreConfirmed   bool               `json:"score_confirmed"`
	ScoreDisputed    bool               `json:"score_disputed"`
	WinnerID         *string            `json:"winner_id,omitempty"`
	WinnerName       *string            `json:"winner_name,omitempty"`
	ProcessingStatus ProcessingStatus   `json:"-"`
	CreatedAt        int64              `json:"created_at"`
}

// Notification is an in-app notification record for a player.
type Notification struct {
	ID        string  `json:"id"`
	PlayerID  string  `json:"-"`
	Message   string  `json:"message"`
	Link      *string `json:"link,omitempty"`
	Read      bool    `json:"read"`
	CreatedAt int64   `json:"created_at"`
}

// PlayerStats represents a player's aggregate statistics for the leaderboard.
type PlayerStats struct {
	PlayerID      string   `json:"player_id"`
	PlayerName    string   `json:"player_name"`
	NTRP          *float64 `json:"ntrp,omitempty"`
	Elo           int      `json:"elo"`
	MatchesPlayed int      `json:"matches_played"`
	MatchesWon    int      `json:"matches_won"`
	MatchesLost   int      `json:"matches_lost"`
	SetsWon       int      `json:"sets_won"`
	SetsLost      int      `json:"sets_lost"`
	GamesWon      int      `json:"games_won"`
	GamesLost     int      `json:"games_lost"`
	WinPercentage float64  `json:"win_percentage"`
}

// HeadToHead summarizes confirmed results between two players, from the
// perspective of the first.
type HeadToHead struct {
	Wins    int      `json:"wins"`
	Losses  int      `json:"losses"`
	Matches []*Match `json:"matches"`
}
