// Package scoreentry owns the mutable state of one score entry session and
// mediates between user edits and the scoring engine. An Entry is bound to a
// single match and a single goroutine; the only asynchronous boundary is the
// final submission call.
package scoreentry

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/tennispal/tennispal/internal/scoring"
)

// State tracks where an entry session is in its lifecycle.
type State string

const (
	StateEditing      State = "EDITING"
	StateReviewReady  State = "REVIEW_READY"
	StateSubmitting   State = "SUBMITTING"
	StateSubmitted    State = "SUBMITTED"
	StateSubmitFailed State = "SUBMIT_FAILED"
)

// ErrIncompleteMatch is returned by Finalize while the entered sets do not
// decide the match.
var ErrIncompleteMatch = errors.New("match is not complete")

// ErrSubmitInFlight is returned when a submission is attempted while another
// one is still pending for the same session.
var ErrSubmitInFlight = errors.New("a submission is already in flight")

// Payload is the finalized score handed to the submission collaborator. It
// matches the wire contract of the scoring endpoint.
type Payload struct {
	Sets        []scoring.SetScore `json:"sets"`
	MatchFormat string             `json:"match_format"`
}

// Entry is the score entry session for one match.
type Entry struct {
	matchID string
	format  scoring.MatchFormat
	sets    []scoring.SetScore

	state      State
	failureMsg string
	inFlight   bool
}

// New creates an entry session for the given match, starting in best-of-3
// with the format's minimum number of empty sets.
func New(matchID string) *Entry {
	e := &Entry{matchID: matchID, state: StateEditing}
	e.SetFormat(scoring.FormatBestOfThree)
	return e
}

// MatchID returns the match this session belongs to.
func (e *Entry) MatchID() string { return e.matchID }

// Format returns the currently selected match format.
func (e *Entry) Format() scoring.MatchFormat { return e.format }

// State returns the current session state.
func (e *Entry) State() State { return e.state }

// FailureMessage returns the human-readable reason of the last failed
// submission, if any.
func (e *Entry) FailureMessage() string { return e.failureMsg }

// Sets returns a copy of the entered sets.
func (e *Entry) Sets() []scoring.SetScore {
	return copySets(e.sets)
}

// SetFormat switches the match format, resetting the sets to the format's
// minimum length with all scores zeroed. Partial entry is not preserved
// across a format change.
func (e *Entry) SetFormat(format scoring.MatchFormat) {
	e.format = format
	e.sets = make([]scoring.SetScore, scoring.MinSets(format))
	e.clearError()
	e.refreshState()
}

// UpdateGameScore writes a game count for one side of one set, clamped to
// the 0..7 range. If the set no longer sits at 7-6/6-7 afterwards, any
// previously entered tiebreak for that set is discarded.
func (e *Entry) UpdateGameScore(setIndex int, side scoring.Side, value int) {
	if setIndex < 0 || setIndex >= len(e.sets) {
		return
	}
	value = scoring.ClampGames(value)
	set := &e.sets[setIndex]
	if side == scoring.SideP1 {
		set.P1 = value
	} else {
		set.P2 = value
	}
	if !scoring.NeedsTiebreak(set.P1, set.P2) {
		set.Tiebreak = nil
	}
	e.clearError()
	e.refreshState()
}

// UpdateTiebreak writes a tiebreak point count for one side of one set,
// clamped to be non-negative, creating the tiebreak record if absent.
func (e *Entry) UpdateTiebreak(setIndex int, side scoring.Side, value int) {
	if setIndex < 0 || setIndex >= len(e.sets) {
		return
	}
	value = scoring.ClampTiebreakPoints(value)
	set := &e.sets[setIndex]
	if set.Tiebreak == nil {
		set.Tiebreak = &scoring.TiebreakScore{}
	}
	if side == scoring.SideP1 {
		set.Tiebreak.P1 = value
	} else {
		set.Tiebreak.P2 = value
	}
	e.clearError()
	e.refreshState()
}

// AddSet appends an empty set unless the format's maximum is reached.
func (e *Entry) AddSet() {
	if len(e.sets) < scoring.MaxSets(e.format) {
		e.sets = append(e.sets, scoring.SetScore{})
		e.refreshState()
	}
}

// RemoveSet drops the last set unless the format's minimum is reached.
func (e *Entry) RemoveSet() {
	if len(e.sets) > scoring.MinSets(e.format) {
		e.sets = e.sets[:len(e.sets)-1]
		e.refreshState()
	}
}

// Outcome evaluates the current sets against the current format.
func (e *Entry) Outcome() scoring.Outcome {
	return scoring.ComputeOutcome(e.sets, e.format)
}

// Scoreline renders the current sets as a display scoreline.
func (e *Entry) Scoreline() string {
	return scoring.FormatScoreline(e.sets)
}

// Finalize returns the immutable submission payload. It fails with
// ErrIncompleteMatch unless the entered sets decide the match.
func (e *Entry) Finalize() (Payload, error) {
	if !e.Outcome().Complete {
		return Payload{}, ErrIncompleteMatch
	}
	return Payload{
		Sets:        copySets(e.sets),
		MatchFormat: string(e.format),
	}, nil
}

// Submit finalizes the entry and hands it to the submitter. On success the
// session reaches SUBMITTED; on failure it returns to EDITING with all
// entered values intact and the collaborator's message recorded, so the
// correction loop never forces re-entry from scratch. A second call while a
// submission is pending is rejected.
func (e *Entry) Submit(ctx context.Context, submitter Submitter) error {
	if e.inFlight {
		return ErrSubmitInFlight
	}
	payload, err := e.Finalize()
	if err != nil {
		return err
	}

	e.inFlight = true
	e.state = StateSubmitting
	defer func() { e.inFlight = false }()

	log.Debug("Submitting score", "matchID", e.matchID, "scoreline", e.Scoreline())
	if err := submitter.SubmitScore(ctx, e.matchID, payload); err != nil {
		// Entered values stay intact; the next edit or retry re-derives
		// the editing state.
		e.state = StateSubmitFailed
		e.failureMsg = err.Error()
		log.Warn("Score submission failed", "matchID", e.matchID, "error", err)
		return fmt.Errorf("failed to submit score: %w", err)
	}

	e.state = StateSubmitted
	log.Info("Score submitted", "matchID", e.matchID, "scoreline", e.Scoreline())
	return nil
}

func (e *Entry) clearError() {
	e.failureMsg = ""
}

// refreshState re-derives the EDITING/REVIEW_READY state after every edit.
// Terminal states are never left through edits.
func (e *Entry) refreshState() {
	if e.state == StateSubmitted || e.state == StateSubmitting {
		return
	}
	if e.Outcome().Complete {
		e.state = StateReviewReady
	} else {
		e.state = StateEditing
	}
}

func copySets(sets []scoring.SetScore) []scoring.SetScore {
	out := make([]scoring.SetScore, len(sets))
	for i, s := range sets {
		out[i] = s
		if s.Tiebreak != nil {
			tb := *s.Tiebreak
			out[i].Tiebreak = &tb
		}
	}
	return out
}
