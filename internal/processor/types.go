package processor

import (
	"github.com/tennispal/tennispal/internal/metrics"
	"github.com/tennispal/tennispal/internal/pubsub"
)

// Processor handles the business logic of processing matches.
type Processor struct {
	store   Store
	pubsub  pubsub.PubSubClient
	metrics metrics.Metrics
}
