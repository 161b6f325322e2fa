package league

import (
	"sync"

	"github.com/tennispal/tennispal/internal/scoring"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertPlayerFunc            func(player PlayerInfo) error
	GetPlayerFunc               func(playerID string) (*PlayerInfo, error)
	GetAllPlayersFunc           func() ([]PlayerInfo, error)
	GetPlayersAvailableOnFunc   func(dayOfWeek int) ([]PlayerInfo, error)
	IsKnownPlayerFunc           func(playerID string) bool
	AddAvailabilityFunc         func(playerID string, dayOfWeek int, startTime, endTime string) (*AvailabilitySlot, error)
	GetAvailabilityFunc         func(playerID string) ([]AvailabilitySlot, error)
	DeleteAvailabilityFunc      func(slotID, playerID string) error
	CreatePostFunc              func(post *Post) error
	GetOpenPostsFunc            func(fromDate string) ([]*Post, error)
	ClaimPostFunc               func(postID, claimerID string) (*Match, error)
	CreateInviteFunc            func(invite *Invite) error
	GetPendingInvitesFunc       func(playerID string) ([]*Invite, []*Invite, error)
	AcceptInviteFunc            func(inviteID, playerID string) (*Match, error)
	DeclineInviteFunc           func(inviteID, playerID string) error
	GetMatchFunc                func(matchID string) (*Match, error)
	GetMatchesForPlayerFunc     func(playerID string) ([]*Match, error)
	GetMatchesForProcessingFunc func() ([]*Match, error)
	UpdateProcessingStatusFunc  func(matchID string, status ProcessingStatus) error
	SubmitScoreFunc             func(matchID, submitterID string, sets []scoring.SetScore, format scoring.MatchFormat, scoreline string, winnerID string) (*Match, error)
	ResolveScoreFunc            func(matchID, reviewerID string, confirm bool) (*Match, error)
	CancelMatchFunc             func(matchID, playerID string) (*Match, error)
	UpdatePlayerStatsFunc       func(match *Match)
	GetLeaderboardFunc          func() ([]PlayerStats, error)
	GetPlayerStatsByNameFunc    func(playerName string) (*PlayerStats, error)
	GetHeadToHeadFunc           func(playerID, opponentID string) (*HeadToHead, error)
	AddNotificationFunc         func(playerID, message string, link *string) error
	GetNotificationsFunc        func(playerID string) ([]Notification, error)
	ClearFunc                   func()

	// Call records
	UpsertPlayerCalls           []PlayerInfo
	SubmitScoreCalls            []SubmitScoreCall
	ResolveScoreCalls           []ResolveScoreCall
	UpdateProcessingStatusCalls []UpdateProcessingStatusCall
	UpdatePlayerStatsCalls      []*Match
	AddNotificationCalls        []AddNotificationCall
	ClaimPostCalls              []ClaimPostCall
}

// SubmitScoreCall holds the arguments of one SubmitScore call.
type SubmitScoreCall struct {
	MatchID     string
	SubmitterID string
	Sets        []scoring.SetScore
	Format      scoring.MatchFormat
	Scoreline   string
	WinnerID    string
}

// ResolveScoreCall holds the arguments of one ResolveScore call.
type ResolveScoreCall struct {
	MatchID    string
	ReviewerID string
	Confirm    bool
}

// UpdateProcessingStatusCall holds the arguments of one UpdateProcessingStatus call.
type UpdateProcessingStatusCall struct {
	MatchID string
	Status  ProcessingStatus
}

// AddNotificationCall holds the arguments of one AddNotification call.
type AddNotificationCall struct {
	PlayerID string
	Message  string
	Link     *string
}

// ClaimPostCall holds the arguments of one ClaimPost call.
type ClaimPostCall struct {
	PostID    string
	ClaimerID string
}

var _ Store = (*MockStore)(nil)

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) UpsertPlayer(player PlayerInfo) error {
	m.mu.Lock()
	m.UpsertPlayerCalls = append(m.UpsertPlayerCalls, player)
	m.mu.Unlock()
	if m.UpsertPlayerFunc != nil {
		return m.UpsertPlayerFunc(player)
	}
	return nil
}

func (m *MockStore) GetPlayer(playerID string) (*PlayerInfo, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(playerID)
	}
	return &PlayerInfo{ID: playerID}, nil
}

func (m *MockStore) GetAllPlayers() ([]PlayerInfo, error) {
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) GetPlayersAvailableOn(dayOfWeek int) ([]PlayerInfo, error) {
	if m.GetPlayersAvailableOnFunc != nil {
		return m.GetPlayersAvailableOnFunc(dayOfWeek)
	}
	return nil, nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(playerID)
	}
	return true
}

func (m *MockStore) AddAvailability(playerID string, dayOfWeek int, startTime, endTime string) (*AvailabilitySlot, error) {
	if m.AddAvailabilityFunc != nil {
		return m.AddAvailabilityFunc(playerID, dayOfWeek, startTime, endTime)
	}
	return &AvailabilitySlot{PlayerID: playerID, DayOfWeek: dayOfWeek, StartTime: startTime, EndTime: endTime}, nil
}

func (m *MockStore) GetAvailability(playerID string) ([]AvailabilitySlot, error) {
	if m.GetAvailabilityFunc != nil {
		return m.GetAvailabilityFunc(playerID)
	}
	return nil, nil
}

func (m *MockStore) DeleteAvailability(slotID, playerID string) error {
	if m.DeleteAvailabilityFunc != nil {
		return m.DeleteAvailabilityFunc(slotID, playerID)
	}
	return nil
}

func (m *MockStore) CreatePost(post *Post) error {
	if m.CreatePostFunc != nil {
		return m.CreatePostFunc(post)
	}
	return nil
}

func (m *MockStore) GetOpenPosts(fromDate string) ([]*Post, error) {
	if m.GetOpenPostsFunc != nil {
		return m.GetOpenPostsFunc(fromDate)
	}
	return nil, nil
}

func (m *MockStore) ClaimPost(postID, claimerID string) (*Match, error) {
	m.mu.Lock()
	m.ClaimPostCalls = append(m.ClaimPostCalls, ClaimPostCall{PostID: postID, ClaimerID: claimerID})
	m.mu.Unlock()
	if m.ClaimPostFunc != nil {
		return m.ClaimPostFunc(postID, claimerID)
	}
	return &Match{ID: "mock-match"}, nil
}

func (m *MockStore) CreateInvite(invite *Invite) error {
	if m.CreateInviteFunc != nil {
		return m.CreateInviteFunc(invite)
	}
	return nil
}

func (m *MockStore) GetPendingInvites(playerID string) ([]*Invite, []*Invite, error) {
	if m.GetPendingInvitesFunc != nil {
		return m.GetPendingInvitesFunc(playerID)
	}
	return nil, nil, nil
}

func (m *MockStore) AcceptInvite(inviteID, playerID string) (*Match, error) {
	if m.AcceptInviteFunc != nil {
		return m.AcceptInviteFunc(inviteID, playerID)
	}
	return &Match{ID: "mock-match"}, nil
}

func (m *MockStore) DeclineInvite(inviteID, playerID string) error {
	if m.DeclineInviteFunc != nil {
		return m.DeclineInviteFunc(inviteID, playerID)
	}
	return nil
}

func (m *MockStore) GetMatch(matchID string) (*Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return &Match{ID: matchID}, nil
}

func (m *MockStore) GetMatchesForPlayer(playerID string) ([]*Match, error) {
	if m.GetMatchesForPlayerFunc != nil {
		return m.GetMatchesForPlayerFunc(playerID)
	}
	return nil, nil
}

func (m *MockStore) GetMatchesForProcessing() ([]*Match, error) {
	if m.GetMatchesForProcessingFunc != nil {
		return m.GetMatchesForProcessingFunc()
	}
	return nil, nil
}

func (m *MockStore) UpdateProcessingStatus(matchID string, status ProcessingStatus) error {
	m.mu.Lock()
	m.UpdateProcessingStatusCalls = append(m.UpdateProcessingStatusCalls, UpdateProcessingStatusCall{MatchID: matchID, Status: status})
	m.mu.Unlock()
	if m.UpdateProcessingStatusFunc != nil {
		return m.UpdateProcessingStatusFunc(matchID, status)
	}
	return nil
}

func (m *MockStore) SubmitScore(matchID, submitterID string, sets []scoring.SetScore, format scoring.MatchFormat, scoreline string, winnerID string) (*Match, error) {
	m.mu.Lock()
	m.SubmitScoreCalls = append(m.SubmitScoreCalls, SubmitScoreCall{
		MatchID:     matchID,
		SubmitterID: submitterID,
		Sets:        sets,
		Format:      format,
		Scoreline:   scoreline,
		WinnerID:    winnerID,
	})
	m.mu.Unlock()
	if m.SubmitScoreFunc != nil {
		return m.SubmitScoreFunc(matchID, submitterID, sets, format, scoreline, winnerID)
	}
	return &Match{ID: matchID}, nil
}

func (m *MockStore) ResolveScore(matchID, reviewerID string, confirm bool) (*Match, error) {
	m.mu.Lock()
	m.ResolveScoreCalls = append(m.ResolveScoreCalls, ResolveScoreCall{MatchID: matchID, ReviewerID: reviewerID, Confirm: confirm})
	m.mu.Unlock()
	if m.ResolveScoreFunc != nil {
		return m.ResolveScoreFunc(matchID, reviewerID, confirm)
	}
	return &Match{ID: matchID}, nil
}

func (m *MockStore) CancelMatch(matchID, playerID string) (*Match, error) {
	if m.CancelMatchFunc != nil {
		return m.CancelMatchFunc(matchID, playerID)
	}
	return &Match{ID: matchID, Status: MatchCancelled}, nil
}

func (m *MockStore) UpdatePlayerStats(match *Match) {
	m.mu.Lock()
	m.UpdatePlayerStatsCalls = append(m.UpdatePlayerStatsCalls, match)
	m.mu.Unlock()
	if m.UpdatePlayerStatsFunc != nil {
		m.UpdatePlayerStatsFunc(match)
	}
}

func (m *MockStore) GetLeaderboard() ([]PlayerStats, error) {
	if m.GetLeaderboardFunc != nil {
		return m.GetLeaderboardFunc()
	}
	return nil, nil
}

func (m *MockStore) GetPlayerStatsByName(playerName string) (*PlayerStats, error) {
	if m.GetPlayerStatsByNameFunc != nil {
		return m.GetPlayerStatsByNameFunc(playerName)
	}
	return nil, nil
}

func (m *MockStore) GetHeadToHead(playerID, opponentID string) (*HeadToHead, error) {
	if m.GetHeadToHeadFunc != nil {
		return m.GetHeadToHeadFunc(playerID, opponentID)
	}
	return &HeadToHead{}, nil
}

func (m *MockStore) AddNotification(playerID, message string, link *string) error {
	m.mu.Lock()
	m.AddNotificationCalls = append(m.AddNotificationCalls, AddNotificationCall{PlayerID: playerID, Message: message, Link: link})
	m.mu.Unlock()
	if m.AddNotificationFunc != nil {
		return m.AddNotificationFunc(playerID, message, link)
	}
	return nil
}

func (m *MockStore) GetNotifications(playerID string) ([]Notification, error) {
	if m.GetNotificationsFunc != nil {
		return m.GetNotificationsFunc(playerID)
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
