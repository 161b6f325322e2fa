package scoreentry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tennispal/tennispal/internal/scoreentry"
	"github.com/tennispal/tennispal/internal/scoring"
)

func enterStraightSetsWin(e *scoreentry.Entry) {
	e.UpdateGameScore(0, scoring.SideP1, 6)
	e.UpdateGameScore(0, scoring.SideP2, 4)
	e.UpdateGameScore(1, scoring.SideP1, 6)
	e.UpdateGameScore(1, scoring.SideP2, 3)
}

func TestNewEntryDefaults(t *testing.T) {
	e := scoreentry.New("m1")
	assert.Equal(t, scoring.FormatBestOfThree, e.Format())
	assert.Len(t, e.Sets(), 2)
	assert.Equal(t, scoreentry.StateEditing, e.State())
	assert.False(t, e.Outcome().Complete)
}

func TestSetFormatResetsSets(t *testing.T) {
	e := scoreentry.New("m1")
	e.SetFormat(scoring.FormatBestOfFive)
	e.AddSet()
	enterStraightSetsWin(e)
	require.Len(t, e.Sets(), 3)

	e.SetFormat(scoring.FormatBestOfThree)
	sets := e.Sets()
	require.Len(t, sets, 2)
	for _, s := range sets {
		assert.Equal(t, scoring.SetScore{}, s)
	}

	e.SetFormat(scoring.FormatProSet)
	assert.Len(t, e.Sets(), 1)
}

func TestUpdateGameScoreClampsAndClearsTiebreak(t *testing.T) {
	e := scoreentry.New("m1")

	e.UpdateGameScore(0, scoring.SideP1, 99)
	assert.Equal(t, 7, e.Sets()[0].P1, "game count is clamped to 7")
	e.UpdateGameScore(0, scoring.SideP1, -2)
	assert.Equal(t, 0, e.Sets()[0].P1, "game count is clamped to 0")

	// Build a 7-6 set with a tiebreak, then edit it away.
	e.UpdateGameScore(0, scoring.SideP1, 7)
	e.UpdateGameScore(0, scoring.SideP2, 6)
	e.UpdateTiebreak(0, scoring.SideP1, 7)
	e.UpdateTiebreak(0, scoring.SideP2, 3)
	require.NotNil(t, e.Sets()[0].Tiebreak)

	e.UpdateGameScore(0, scoring.SideP2, 4)
	assert.Nil(t, e.Sets()[0].Tiebreak, "stale tiebreak must be discarded")
}

func TestUpdateTiebreakCreatesAndClamps(t *testing.T) {
	e := scoreentry.New("m1")
	e.UpdateGameScore(0, scoring.SideP1, 7)
	e.UpdateGameScore(0, scoring.SideP2, 6)

	e.UpdateTiebreak(0, scoring.SideP2, -4)
	tb := e.Sets()[0].Tiebreak
	require.NotNil(t, tb)
	assert.Equal(t, 0, tb.P2)

	e.UpdateTiebreak(0, scoring.SideP1, 10)
	assert.Equal(t, 10, e.Sets()[0].Tiebreak.P1)
}

func TestAddRemoveSetBounds(t *testing.T) {
	e := scoreentry.New("m1")

	e.RemoveSet()
	assert.Len(t, e.Sets(), 2, "cannot drop below the format minimum")

	e.AddSet()
	assert.Len(t, e.Sets(), 3)
	e.AddSet()
	assert.Len(t, e.Sets(), 3, "cannot exceed the format maximum")

	e.RemoveSet()
	assert.Len(t, e.Sets(), 2)

	e.SetFormat(scoring.FormatProSet)
	e.AddSet()
	assert.Len(t, e.Sets(), 1, "a pro set is always exactly one set")
}

func TestStateFollowsOutcome(t *testing.T) {
	e := scoreentry.New("m1")
	assert.Equal(t, scoreentry.StateEditing, e.State())

	enterStraightSetsWin(e)
	assert.Equal(t, scoreentry.StateReviewReady, e.State())

	e.UpdateGameScore(1, scoring.SideP2, 5)
	assert.Equal(t, scoreentry.StateEditing, e.State())
}

func TestFinalize(t *testing.T) {
	e := scoreentry.New("m1")

	_, err := e.Finalize()
	assert.ErrorIs(t, err, scoreentry.ErrIncompleteMatch)

	enterStraightSetsWin(e)
	payload, err := e.Finalize()
	require.NoError(t, err)
	assert.Equal(t, "best_of_3", payload.MatchFormat)
	require.Len(t, payload.Sets, 2)

	// The payload is a snapshot, detached from later edits.
	e.UpdateGameScore(0, scoring.SideP1, 0)
	assert.Equal(t, 6, payload.Sets[0].P1)
}

func TestSubmit(t *testing.T) {
	t.Run("success reaches SUBMITTED", func(t *testing.T) {
		e := scoreentry.New("m1")
		enterStraightSetsWin(e)
		sub := scoreentry.NewMockSubmitter()

		require.NoError(t, e.Submit(context.Background(), sub))
		assert.Equal(t, scoreentry.StateSubmitted, e.State())
		require.Len(t, sub.SubmitScoreCalls, 1)
		assert.Equal(t, "m1", sub.SubmitScoreCalls[0].MatchID)
	})

	t.Run("incomplete entry never reaches the submitter", func(t *testing.T) {
		e := scoreentry.New("m1")
		sub := scoreentry.NewMockSubmitter()

		err := e.Submit(context.Background(), sub)
		assert.ErrorIs(t, err, scoreentry.ErrIncompleteMatch)
		assert.Len(t, sub.SubmitScoreCalls, 0)
	})

	t.Run("failure keeps entered values and message", func(t *testing.T) {
		e := scoreentry.New("m1")
		enterStraightSetsWin(e)
		sub := scoreentry.NewMockSubmitter()
		sub.SubmitScoreFunc = func(ctx context.Context, matchID string, payload scoreentry.Payload) error {
			return errors.New("score already disputed")
		}

		err := e.Submit(context.Background(), sub)
		require.Error(t, err)
		assert.Equal(t, scoreentry.StateSubmitFailed, e.State())
		assert.Equal(t, "score already disputed", e.FailureMessage())
		assert.Equal(t, 6, e.Sets()[0].P1, "entered scores survive a failed submission")

		// The correction loop: an edit clears the failure and re-derives state.
		e.UpdateGameScore(1, scoring.SideP2, 2)
		assert.Equal(t, scoreentry.StateReviewReady, e.State())
		assert.Empty(t, e.FailureMessage())

		// And a retry can succeed.
		sub.SubmitScoreFunc = nil
		require.NoError(t, e.Submit(context.Background(), sub))
		assert.Equal(t, scoreentry.StateSubmitted, e.State())
	})

	t.Run("second submit while one is in flight is rejected", func(t *testing.T) {
		e := scoreentry.New("m1")
		enterStraightSetsWin(e)

		sub := scoreentry.NewMockSubmitter()
		var nested error
		sub.SubmitScoreFunc = func(ctx context.Context, matchID string, payload scoreentry.Payload) error {
			// A submit attempt arriving while this one is pending.
			nested = e.Submit(ctx, sub)
			return nil
		}

		require.NoError(t, e.Submit(context.Background(), sub))
		assert.ErrorIs(t, nested, scoreentry.ErrSubmitInFlight)
		assert.Len(t, sub.SubmitScoreCalls, 1)
	})
}
