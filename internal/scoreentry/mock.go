package scoreentry

import (
	"context"
	"sync"
)

// MockSubmitter is a spy implementation of Submitter for tests.
type MockSubmitter struct {
	mu sync.Mutex

	SubmitScoreFunc func(ctx context.Context, matchID string, payload Payload) error

	SubmitScoreCalls []SubmitScoreCall
}

// SubmitScoreCall holds the arguments of one SubmitScore call.
type SubmitScoreCall struct {
	MatchID string
	Payload Payload
}

var _ Submitter = (*MockSubmitter)(nil)

// NewMockSubmitter creates a new spy submitter.
func NewMockSubmitter() *MockSubmitter {
	return &MockSubmitter{}
}

// SubmitScore records the call and executes the mock function if provided.
func (m *MockSubmitter) SubmitScore(ctx context.Context, matchID string, payload Payload) error {
	m.mu.Lock()
	m.SubmitScoreCalls = append(m.SubmitScoreCalls, SubmitScoreCall{MatchID: matchID, Payload: payload})
	m.mu.Unlock()
	if m.SubmitScoreFunc != nil {
		return m.SubmitScoreFunc(ctx, matchID, payload)
	}
	return nil
}
