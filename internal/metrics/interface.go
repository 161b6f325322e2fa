package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncScoreSubmissions()
	IncScoreRejections()
	IncMatchesProcessed()
	ObserveProcessingDuration(duration float64)
	IncPubSubPublishFailed()
	SetStartupTime(duration float64)
}

// MetricsStore persists simple named counters across restarts.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
