package processor

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tennispal/tennispal/internal/league"
	"github.com/tennispal/tennispal/internal/metrics"
	"github.com/tennispal/tennispal/internal/pubsub"
)

// New creates a new Processor.
func New(store Store, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		store:   store,
		pubsub:  pubsub,
		metrics: metrics,
	}
}

// ProcessMatches fetches matches that need processing and advances them through the state machine.
func (p *Processor) ProcessMatches(dryRun bool) {
	log.Info("Starting match processing...")
	matches, err := p.store.GetMatchesForProcessing()
	if err != nil {
		log.Error("Failed to get matches for processing", "error", err)
		return
	}

	if len(matches) == 0 {
		log.Info("No matches to process.")
		return
	}

	log.Info("Found matches to process", "count", len(matches))
	for _, match := range matches {
		startTime := time.Now()
		p.processMatch(match, dryRun)
		p.metrics.IncMatchesProcessed()
		p.metrics.ObserveProcessingDuration(time.Since(startTime).Seconds())
	}
	log.Info("Match processing finished.")
}

func (p *Processor) processMatch(match *league.Match, dryRun bool) {
	log.Info("Processing match", "matchID", match.ID, "initial_status", match.ProcessingStatus, "match_status", match.Status)
	for {
		currentState := match.ProcessingStatus
		log.Debug("Evaluating match state", "matchID", match.ID, "status", currentState)

		switch currentState {
		case league.StatusNew:
			if match.Status == league.MatchCancelled {
				log.Info("Match is cancelled. Closing.", "matchID", match.ID)
				p.updateStatus(match, league.StatusClosed, dryRun)
			}
			// Otherwise the match is waiting to be played; a score
			// submission moves it forward.

		case league.StatusScoreSubmitted:
			// Waiting on the opponent. The resolve endpoint advances the
			// state, but the flags are authoritative if it did not.
			if match.ScoreDisputed {
				p.updateStatus(match, league.StatusDisputed, dryRun)
			} else if match.ScoreConfirmed {
				p.updateStatus(match, league.StatusScoreConfirmed, dryRun)
			}

		case league.StatusScoreConfirmed:
			log.Info("Score confirmed. Publishing stats update.", "matchID", match.ID)
			if !dryRun {
				if err := p.pubsub.SendMessage(pubsub.EventUpdatePlayerStats, match); err != nil {
					p.metrics.IncPubSubPublishFailed()
					return
				}
			}
			p.updateStatus(match, league.StatusStatsUpdated, dryRun)

		case league.StatusStatsUpdated:
			log.Info("Player stats updated. Publishing result notification and closing match.", "matchID", match.ID)
			if !dryRun {
				if err := p.pubsub.SendMessage(pubsub.EventNotifyResult, match); err != nil {
					p.metrics.IncPubSubPublishFailed()
					return
				}
			}
			p.updateStatus(match, league.StatusClosed, dryRun)

		case league.StatusDisputed:
			log.Debug("Match is disputed. Waiting on a corrected submission.", "matchID", match.ID)
			return

		case league.StatusClosed:
			log.Debug("Match is closed. No further processing needed.", "matchID", match.ID)
			return

		default:
			log.Warn("Unknown processing status", "status", currentState, "matchID", match.ID)
			return
		}

		// If the status hasn't changed, we're done with this match for now.
		if match.ProcessingStatus == currentState {
			log.Debug("Match state did not change. Finished processing for now.", "matchID", match.ID, "status", currentState)
			break
		}
	}
	log.Info("Finished processing match", "matchID", match.ID, "final_status", match.ProcessingStatus)
}

// UpdatePlayerStats applies a match result to both players' statistics. It
// is invoked by the pubsub push handler consuming the stats update event.
func (p *Processor) UpdatePlayerStats(match *league.Match) {
	log.Debug("Updating player stats", "matchID", match.ID)
	p.store.UpdatePlayerStats(match)
}

// NotifyResult records the final-result notification for both players. It is
// invoked by the pubsub push handler consuming the notify-result event.
func (p *Processor) NotifyResult(match *league.Match) {
	if match.WinnerName == nil || match.Score == nil {
		return
	}
	loserName := match.Player1Name
	if *match.WinnerID == match.Player1ID {
		loserName = match.Player2Name
	}
	message := fmt.Sprintf("Final result: %s def. %s %s", *match.WinnerName, loserName, *match.Score)
	link := "/matches/" + match.ID
	for _, playerID := range []string{match.Player1ID, match.Player2ID} {
		if err := p.store.AddNotification(playerID, message, &link); err != nil {
			log.Error("Failed to add result notification", "error", err, "matchID", match.ID, "playerID", playerID)
		}
	}
}

func (p *Processor) updateStatus(match *league.Match, newStatus league.ProcessingStatus, dryRun bool) {
	if dryRun {
		log.Info("[Dry Run] Would update match status", "matchID", match.ID, "from", match.ProcessingStatus, "to", newStatus)
		match.ProcessingStatus = newStatus // Update in-memory for the loop
		return
	}

	err := p.store.UpdateProcessingStatus(match.ID, newStatus)
	if err != nil {
		log.Error("Failed to update processing status", "error", err, "matchID", match.ID)
	} else {
		log.Debug("Successfully updated status", "matchID", match.ID, "from", match.ProcessingStatus, "to", newStatus)
		match.ProcessingStatus = newStatus // Keep the in-memory object in sync
	}
}
