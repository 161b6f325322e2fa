package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tennispal/tennispal/internal/league"
	"github.com/tennispal/tennispal/internal/metrics"
	"github.com/tennispal/tennispal/internal/pubsub"
)

func strPtr(s string) *string { return &s }

func TestProcessor_ProcessMatches(t *testing.T) {
	t.Run("confirmed score runs to closed and publishes stats update", func(t *testing.T) {
		// Setup
		store := league.NewMock()
		metr := metrics.NewMock()
		ps := pubsub.NewMock("TEST")
		p := New(store, metr, ps)

		match := &league.Match{
			ID:               "m1",
			Player1ID:        "p1",
			Player1Name:      "Alice Chen",
			Player2ID:        "p2",
			Player2Name:      "Bob Ray",
			Status:           league.MatchCompleted,
			Score:            strPtr("6-4, 6-3"),
			WinnerID:         strPtr("p1"),
			WinnerName:       strPtr("Alice Chen"),
			ScoreConfirmed:   true,
			ProcessingStatus: league.StatusScoreConfirmed,
		}
		store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
			return []*league.Match{match}, nil
		}

		// Execute
		p.ProcessMatches(false)

		// Assert
		// The processor's responsibility is to SEND the messages, not to update
		// stats or record notifications itself. Both are handled by the push
		// handlers that consume the pub/sub messages.
		require.Len(t, ps.SendMessageCalls, 2, "Stats update and result notification should both be published")
		assert.Equal(t, "update-player-stats", ps.SendMessageCalls[0].Topic)
		assert.Equal(t, "notify-result", ps.SendMessageCalls[1].Topic)
		sentMatch, ok := ps.SendMessageCalls[0].Data.(*league.Match)
		require.True(t, ok, "Data sent to pubsub should be a Match")
		assert.Equal(t, "m1", sentMatch.ID)

		require.Len(t, store.UpdateProcessingStatusCalls, 2, "Status should be updated twice")
		assert.Equal(t, league.StatusStatsUpdated, store.UpdateProcessingStatusCalls[0].Status)
		assert.Equal(t, league.StatusClosed, store.UpdateProcessingStatusCalls[1].Status)

		assert.Empty(t, store.AddNotificationCalls, "Notifications go through the push handler, not the processor loop")
		assert.Equal(t, 1, metr.MatchesProcessed())
	})

	t.Run("submitted but unresolved score stays put", func(t *testing.T) {
		store := league.NewMock()
		metr := metrics.NewMock()
		ps := pubsub.NewMock("TEST")
		p := New(store, metr, ps)

		match := &league.Match{
			ID:               "m1",
			Player1ID:        "p1",
			Player2ID:        "p2",
			Status:           league.MatchCompleted,
			ProcessingStatus: league.StatusScoreSubmitted,
		}
		store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
			return []*league.Match{match}, nil
		}

		p.ProcessMatches(false)

		assert.Empty(t, ps.SendMessageCalls)
		assert.Empty(t, store.UpdateProcessingStatusCalls)
		assert.Equal(t, league.StatusScoreSubmitted, match.ProcessingStatus)
	})

	t.Run("disputed flag moves submission to disputed and stops", func(t *testing.T) {
		store := league.NewMock()
		metr := metrics.NewMock()
		ps := pubsub.NewMock("TEST")
		p := New(store, metr, ps)

		match := &league.Match{
			ID:               "m1",
			Player1ID:        "p1",
			Player2ID:        "p2",
			Status:           league.MatchCompleted,
			ScoreDisputed:    true,
			ProcessingStatus: league.StatusScoreSubmitted,
		}
		store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
			return []*league.Match{match}, nil
		}

		p.ProcessMatches(false)

		assert.Empty(t, ps.SendMessageCalls)
		require.Len(t, store.UpdateProcessingStatusCalls, 1)
		assert.Equal(t, league.StatusDisputed, store.UpdateProcessingStatusCalls[0].Status)
	})

	t.Run("cancelled match is closed without notifications", func(t *testing.T) {
		store := league.NewMock()
		metr := metrics.NewMock()
		ps := pubsub.NewMock("TEST")
		p := New(store, metr, ps)

		match := &league.Match{
			ID:               "m1",
			Player1ID:        "p1",
			Player2ID:        "p2",
			Status:           league.MatchCancelled,
			ProcessingStatus: league.StatusNew,
		}
		store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
			return []*league.Match{match}, nil
		}

		p.ProcessMatches(false)

		require.Len(t, store.UpdateProcessingStatusCalls, 1)
		assert.Equal(t, league.StatusClosed, store.UpdateProcessingStatusCalls[0].Status)
		assert.Empty(t, store.AddNotificationCalls)
	})

	t.Run("dry run advances in memory only", func(t *testing.T) {
		store := league.NewMock()
		metr := metrics.NewMock()
		ps := pubsub.NewMock("TEST")
		p := New(store, metr, ps)

		match := &league.Match{
			ID:               "m1",
			Player1ID:        "p1",
			Player1Name:      "Alice Chen",
			Player2ID:        "p2",
			Player2Name:      "Bob Ray",
			Status:           league.MatchCompleted,
			Score:            strPtr("6-0, 6-0"),
			WinnerID:         strPtr("p1"),
			WinnerName:       strPtr("Alice Chen"),
			ScoreConfirmed:   true,
			ProcessingStatus: league.StatusScoreConfirmed,
		}
		store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
			return []*league.Match{match}, nil
		}

		p.ProcessMatches(true)

		assert.Empty(t, ps.SendMessageCalls, "Dry run must not publish")
		assert.Empty(t, store.UpdateProcessingStatusCalls, "Dry run must not persist")
		assert.Empty(t, store.AddNotificationCalls)
		assert.Equal(t, league.StatusClosed, match.ProcessingStatus, "In-memory state still advances")
	})

	t.Run("publish failure halts the match and counts", func(t *testing.T) {
		store := league.NewMock()
		metr := metrics.NewMock()
		ps := pubsub.NewMock("TEST")
		ps.SendMessageFunc = func(topic pubsub.EventType, data any) error {
			return assert.AnError
		}
		p := New(store, metr, ps)

		match := &league.Match{
			ID:               "m1",
			Player1ID:        "p1",
			Player2ID:        "p2",
			Status:           league.MatchCompleted,
			ScoreConfirmed:   true,
			ProcessingStatus: league.StatusScoreConfirmed,
		}
		store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
			return []*league.Match{match}, nil
		}

		p.ProcessMatches(false)

		assert.Empty(t, store.UpdateProcessingStatusCalls, "Failed publish must not advance the state")
		assert.Equal(t, 1, metr.PubSubPublishFailed())
	})

	t.Run("failed result notification publish keeps the match open", func(t *testing.T) {
		store := league.NewMock()
		metr := metrics.NewMock()
		ps := pubsub.NewMock("TEST")
		ps.SendMessageFunc = func(topic pubsub.EventType, data any) error {
			if topic == pubsub.EventNotifyResult {
				return assert.AnError
			}
			return nil
		}
		p := New(store, metr, ps)

		match := &league.Match{
			ID:               "m1",
			Player1ID:        "p1",
			Player2ID:        "p2",
			Status:           league.MatchCompleted,
			ScoreConfirmed:   true,
			ProcessingStatus: league.StatusScoreConfirmed,
		}
		store.GetMatchesForProcessingFunc = func() ([]*league.Match, error) {
			return []*league.Match{match}, nil
		}

		p.ProcessMatches(false)

		require.Len(t, store.UpdateProcessingStatusCalls, 1, "Only the stats publish advanced the state")
		assert.Equal(t, league.StatusStatsUpdated, store.UpdateProcessingStatusCalls[0].Status)
		assert.Equal(t, 1, metr.PubSubPublishFailed())
	})
}

func TestProcessor_NotifyResult(t *testing.T) {
	store := league.NewMock()
	p := New(store, metrics.NewMock(), pubsub.NewMock("TEST"))

	match := &league.Match{
		ID:          "m1",
		Player1ID:   "p1",
		Player1Name: "Alice Chen",
		Player2ID:   "p2",
		Player2Name: "Bob Ray",
		Score:       strPtr("6-4, 6-3"),
		WinnerID:    strPtr("p1"),
		WinnerName:  strPtr("Alice Chen"),
	}
	p.NotifyResult(match)

	require.Len(t, store.AddNotificationCalls, 2, "Both players should be notified of the final result")
	assert.Contains(t, store.AddNotificationCalls[0].Message, "Alice Chen def. Bob Ray 6-4, 6-3")
	assert.Equal(t, "p1", store.AddNotificationCalls[0].PlayerID)
	assert.Equal(t, "p2", store.AddNotificationCalls[1].PlayerID)

	// A match without a recorded result never produces a notification.
	p.NotifyResult(&league.Match{ID: "m2", Player1ID: "p1", Player2ID: "p2"})
	assert.Len(t, store.AddNotificationCalls, 2)
}

func TestProcessor_UpdatePlayerStats(t *testing.T) {
	store := league.NewMock()
	p := New(store, metrics.NewMock(), pubsub.NewMock("TEST"))

	match := &league.Match{ID: "m1", Player1ID: "p1", Player2ID: "p2", WinnerID: strPtr("p1")}
	p.UpdatePlayerStats(match)

	require.Len(t, store.UpdatePlayerStatsCalls, 1)
	assert.Equal(t, "m1", store.UpdatePlayerStatsCalls[0].ID)
}
