package processor

import (
	"github.com/tennispal/tennispal/internal/league"
)

// Store defines the database operations required by the processor.
type Store interface {
	GetMatchesForProcessing() ([]*league.Match, error)
	UpdateProcessingStatus(matchID string, status league.ProcessingStatus) error
	UpdatePlayerStats(match *league.Match)
	AddNotification(playerID, message string, link *string) error
}
