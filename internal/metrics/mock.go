package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	scoreSubmissions    int
	scoreRejections     int
	matchesProcessed    int
	processingDurations []float64
	pubsubPublishFailed int
	startupTime         float64
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		processingDurations: make([]float64, 0),
	}
}

func (m *Mock) IncScoreSubmissions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoreSubmissions++
}

func (m *Mock) IncScoreRejections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoreRejections++
}

func (m *Mock) IncMatchesProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesProcessed++
}

func (m *Mock) ObserveProcessingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processingDurations = append(m.processingDurations, duration)
}

func (m *Mock) IncPubSubPublishFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pubsubPublishFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// ScoreSubmissions returns the number of times IncScoreSubmissions was called.
func (m *Mock) ScoreSubmissions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scoreSubmissions
}

// ScoreRejections returns the number of times IncScoreRejections was called.
func (m *Mock) ScoreRejections() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scoreRejections
}

// MatchesProcessed returns the number of times IncMatchesProcessed was called.
func (m *Mock) MatchesProcessed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesProcessed
}

// PubSubPublishFailed returns the number of times IncPubSubPublishFailed was called.
func (m *Mock) PubSubPublishFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pubsubPublishFailed
}
