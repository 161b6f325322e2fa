package scoreentry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Submitter is the external collaborator that accepts a finalized score.
type Submitter interface {
	SubmitScore(ctx context.Context, matchID string, payload Payload) error
}

// APISubmitter posts finalized scores to the tennispal scoring endpoint.
type APISubmitter struct {
	httpClient *http.Client
	baseURL    string
	userID     string
}

var _ Submitter = (*APISubmitter)(nil)

// NewAPISubmitter creates a submitter for the server at baseURL, acting as
// the given user.
func NewAPISubmitter(baseURL, userID string) *APISubmitter {
	return &APISubmitter{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		userID:     userID,
	}
}

// SubmitScore posts the payload to /api/matches/{id}/score. Server-side
// rejections are surfaced with the server's error text so the entry session
// can show it verbatim.
func (s *APISubmitter) SubmitScore(ctx context.Context, matchID string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode score payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/matches/%s/score", s.baseURL, matchID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", s.userID)

	log.Debug("Posting score", "url", url, "matchID", matchID)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("server rejected score with status %d", resp.StatusCode)
	}
	return nil
}
