package league

import "github.com/tennispal/tennispal/internal/scoring"

// Store defines the interface for interacting with the league's data.
type Store interface {
	// Players
	UpsertPlayer(player PlayerInfo) error
	GetPlayer(playerID string) (*PlayerInfo, error)
	GetAllPlayers() ([]PlayerInfo, error)
	GetPlayersAvailableOn(dayOfWeek int) ([]PlayerInfo, error)
	IsKnownPlayer(playerID string) bool

	// Availability
	AddAvailability(playerID string, dayOfWeek int, startTime, endTime string) (*AvailabilitySlot, error)
	GetAvailability(playerID string) ([]AvailabilitySlot, error)
	DeleteAvailability(slotID, playerID string) error

	// Open play posts
	CreatePost(post *Post) error
	GetOpenPosts(fromDate string) ([]*Post, error)
	ClaimPost(postID, claimerID string) (*Match, error)

	// Invites
	CreateInvite(invite *Invite) error
	GetPendingInvites(playerID string) (received []*Invite, sent []*Invite, err error)
	AcceptInvite(inviteID, playerID string) (*Match, error)
	DeclineInvite(inviteID, playerID string) error

	// Matches
	GetMatch(matchID string) (*Match, error)
	GetMatchesForPlayer(playerID string) ([]*Match, error)
	GetMatchesForProcessing() ([]*Match, error)
	UpdateProcessingStatus(matchID string, status ProcessingStatus) error
	SubmitScore(matchID, submitterID string, sets []scoring.SetScore, format scoring.MatchFormat, scoreline string, winnerID string) (*Match, error)
	ResolveScore(matchID, reviewerID string, confirm bool) (*Match, error)
	CancelMatch(matchID, playerID string) (*Match, error)

	// Stats
	UpdatePlayerStats(match *Match)
	GetLeaderboard() ([]PlayerStats, error)
	GetPlayerStatsByName(playerName string) (*PlayerStats, error)
	GetHeadToHead(playerID, opponentID string) (*HeadToHead, error)

	// Notifications
	AddNotification(playerID, message string, link *string) error
	GetNotifications(playerID string) ([]Notification, error)

	Clear()
}
