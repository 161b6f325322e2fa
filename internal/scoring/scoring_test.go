package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tennispal/tennispal/internal/scoring"
)

func TestFormatConstants(t *testing.T) {
	tests := []struct {
		format    scoring.MatchFormat
		setsToWin int
		maxSets   int
		minSets   int
	}{
		{scoring.FormatBestOfThree, 2, 3, 2},
		{scoring.FormatBestOfFive, 3, 5, 2},
		{scoring.FormatProSet, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.setsToWin, scoring.SetsToWin(tt.format))
			assert.Equal(t, tt.maxSets, scoring.MaxSets(tt.format))
			assert.Equal(t, tt.minSets, scoring.MinSets(tt.format))
		})
	}
}

func TestValidFormat(t *testing.T) {
	assert.True(t, scoring.ValidFormat("best_of_3"))
	assert.True(t, scoring.ValidFormat("best_of_5"))
	assert.True(t, scoring.ValidFormat("pro_set"))
	assert.False(t, scoring.ValidFormat("best_of_7"))
	assert.False(t, scoring.ValidFormat(""))
}

func TestIsSetComplete(t *testing.T) {
	tests := []struct {
		p1, p2   int
		complete bool
	}{
		{6, 0, true},
		{6, 4, true},
		{6, 5, false},
		{7, 5, true},
		{7, 6, true},
		{6, 6, false},
		{5, 7, true}, // mirrored 7-5
		{4, 6, true}, // mirrored 6-4
		{5, 5, false},
		{0, 0, false},
		{7, 7, false},
		{7, 0, false}, // 7 games only wins against 5 or 6
	}
	for _, tt := range tests {
		assert.Equal(t, tt.complete, scoring.IsSetComplete(tt.p1, tt.p2),
			"IsSetComplete(%d, %d)", tt.p1, tt.p2)
	}
}

func TestNeedsTiebreak(t *testing.T) {
	assert.True(t, scoring.NeedsTiebreak(7, 6))
	assert.True(t, scoring.NeedsTiebreak(6, 7))
	assert.False(t, scoring.NeedsTiebreak(6, 5))
	assert.False(t, scoring.NeedsTiebreak(7, 5))
	assert.False(t, scoring.NeedsTiebreak(6, 6))
}

func TestSetWinner(t *testing.T) {
	assert.Equal(t, scoring.SideP1, scoring.SetWinner(scoring.SetScore{P1: 6, P2: 4}))
	assert.Equal(t, scoring.SideP2, scoring.SetWinner(scoring.SetScore{P1: 5, P2: 7}))
	assert.Equal(t, scoring.SideNone, scoring.SetWinner(scoring.SetScore{P1: 6, P2: 6}))
	assert.Equal(t, scoring.SideNone, scoring.SetWinner(scoring.SetScore{P1: 0, P2: 0}))
}

func TestComputeOutcome(t *testing.T) {
	t.Run("straight sets win decides a best of 3", func(t *testing.T) {
		sets := []scoring.SetScore{{P1: 6, P2: 4}, {P1: 6, P2: 3}}
		outcome := scoring.ComputeOutcome(sets, scoring.FormatBestOfThree)
		assert.Equal(t, scoring.Outcome{Winner: scoring.SideP1, Complete: true}, outcome)
	})

	t.Run("trailing garbage set is ignored once decided", func(t *testing.T) {
		sets := []scoring.SetScore{{P1: 6, P2: 4}, {P1: 6, P2: 3}, {P1: 0, P2: 0}}
		outcome := scoring.ComputeOutcome(sets, scoring.FormatBestOfThree)
		assert.Equal(t, scoring.Outcome{Winner: scoring.SideP1, Complete: true}, outcome)
	})

	t.Run("incomplete set blocks later complete sets", func(t *testing.T) {
		sets := []scoring.SetScore{{P1: 6, P2: 6}, {P1: 6, P2: 1}, {P1: 6, P2: 2}}
		outcome := scoring.ComputeOutcome(sets, scoring.FormatBestOfThree)
		assert.False(t, outcome.Complete)
		assert.Equal(t, scoring.SideNone, outcome.Winner)
	})

	t.Run("7-6 without a tiebreak blocks completion", func(t *testing.T) {
		sets := []scoring.SetScore{{P1: 7, P2: 6}}
		outcome := scoring.ComputeOutcome(sets, scoring.FormatProSet)
		assert.False(t, outcome.Complete)
	})

	t.Run("7-6 with a tiebreak completes a pro set", func(t *testing.T) {
		sets := []scoring.SetScore{{P1: 7, P2: 6, Tiebreak: &scoring.TiebreakScore{P1: 7, P2: 5}}}
		outcome := scoring.ComputeOutcome(sets, scoring.FormatProSet)
		assert.Equal(t, scoring.Outcome{Winner: scoring.SideP1, Complete: true}, outcome)
	})

	t.Run("split sets stay undecided", func(t *testing.T) {
		sets := []scoring.SetScore{{P1: 6, P2: 4}, {P1: 4, P2: 6}}
		outcome := scoring.ComputeOutcome(sets, scoring.FormatBestOfThree)
		assert.False(t, outcome.Complete)
	})

	t.Run("best of 5 requires three sets", func(t *testing.T) {
		sets := []scoring.SetScore{{P1: 6, P2: 4}, {P1: 6, P2: 4}}
		assert.False(t, scoring.ComputeOutcome(sets, scoring.FormatBestOfFive).Complete)

		sets = append(sets, scoring.SetScore{P1: 7, P2: 5})
		outcome := scoring.ComputeOutcome(sets, scoring.FormatBestOfFive)
		assert.Equal(t, scoring.Outcome{Winner: scoring.SideP1, Complete: true}, outcome)
	})

	t.Run("p2 can win", func(t *testing.T) {
		sets := []scoring.SetScore{{P1: 4, P2: 6}, {P1: 5, P2: 7}}
		outcome := scoring.ComputeOutcome(sets, scoring.FormatBestOfThree)
		assert.Equal(t, scoring.Outcome{Winner: scoring.SideP2, Complete: true}, outcome)
	})

	t.Run("empty scorecard is incomplete", func(t *testing.T) {
		assert.False(t, scoring.ComputeOutcome(nil, scoring.FormatBestOfThree).Complete)
	})

	t.Run("is idempotent", func(t *testing.T) {
		sets := []scoring.SetScore{{P1: 7, P2: 6, Tiebreak: &scoring.TiebreakScore{P1: 7, P2: 3}}, {P1: 6, P2: 2}}
		first := scoring.ComputeOutcome(sets, scoring.FormatBestOfThree)
		second := scoring.ComputeOutcome(sets, scoring.FormatBestOfThree)
		assert.Equal(t, first, second)
	})
}

func TestCountedSets(t *testing.T) {
	sets := []scoring.SetScore{{P1: 6, P2: 4}, {P1: 6, P2: 3}, {P1: 1, P2: 6}}

	counted := scoring.CountedSets(sets, scoring.FormatBestOfThree)
	assert.Len(t, counted, 2, "sets after the decision are dropped")

	undecided := scoring.CountedSets(sets[:1], scoring.FormatBestOfThree)
	assert.Len(t, undecided, 1, "an undecided match keeps its sets")
}

func TestClamping(t *testing.T) {
	assert.Equal(t, 0, scoring.ClampGames(-3))
	assert.Equal(t, 7, scoring.ClampGames(12))
	assert.Equal(t, 5, scoring.ClampGames(5))
	assert.Equal(t, 0, scoring.ClampTiebreakPoints(-1))
	assert.Equal(t, 15, scoring.ClampTiebreakPoints(15))
}

func TestFormatScoreline(t *testing.T) {
	sets := []scoring.SetScore{
		{P1: 6, P2: 4},
		{P1: 7, P2: 6, Tiebreak: &scoring.TiebreakScore{P1: 7, P2: 4}},
	}
	assert.Equal(t, "6-4, 7-6(4)", scoring.FormatScoreline(sets))

	// The loser's points are shown even when p2 took the tiebreak.
	sets = []scoring.SetScore{{P1: 6, P2: 7, Tiebreak: &scoring.TiebreakScore{P1: 5, P2: 7}}}
	assert.Equal(t, "6-7(5)", scoring.FormatScoreline(sets))

	// A stale tiebreak on a non 7-6 set is not rendered.
	sets = []scoring.SetScore{{P1: 6, P2: 4, Tiebreak: &scoring.TiebreakScore{P1: 7, P2: 3}}}
	assert.Equal(t, "6-4", scoring.FormatScoreline(sets))
}

func TestParseScoreline(t *testing.T) {
	t.Run("plain sets", func(t *testing.T) {
		sets, err := scoring.ParseScoreline("6-4 3-6 7-5")
		require.NoError(t, err)
		require.Len(t, sets, 3)
		assert.Equal(t, scoring.SetScore{P1: 3, P2: 6}, sets[1])
	})

	t.Run("comma separated with tiebreak", func(t *testing.T) {
		sets, err := scoring.ParseScoreline("6-4, 7-6(4)")
		require.NoError(t, err)
		require.Len(t, sets, 2)
		require.NotNil(t, sets[1].Tiebreak)
		assert.Equal(t, 7, sets[1].Tiebreak.P1)
		assert.Equal(t, 4, sets[1].Tiebreak.P2)
	})

	t.Run("extended tiebreak keeps the two point margin", func(t *testing.T) {
		sets, err := scoring.ParseScoreline("6-7(9)")
		require.NoError(t, err)
		require.NotNil(t, sets[0].Tiebreak)
		assert.Equal(t, 9, sets[0].Tiebreak.P1)
		assert.Equal(t, 11, sets[0].Tiebreak.P2)
	})

	t.Run("round trips through FormatScoreline", func(t *testing.T) {
		sets, err := scoring.ParseScoreline("7-6(4), 2-6, 6-3")
		require.NoError(t, err)
		assert.Equal(t, "7-6(4), 2-6, 6-3", scoring.FormatScoreline(sets))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := scoring.ParseScoreline("")
		assert.Error(t, err)
		_, err = scoring.ParseScoreline("six-four")
		assert.Error(t, err)
		_, err = scoring.ParseScoreline("9-7")
		assert.Error(t, err)
		_, err = scoring.ParseScoreline("6-4(3)")
		assert.Error(t, err)
	})
}
