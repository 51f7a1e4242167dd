// Package client holds HTTP clients for the external collaborators
// this service depends on: the match-confidence scorer and the travel
// time estimator.  Both are plain JSON-over-POST services invoked
// with bounded timeouts; a non-2xx response is surfaced as an error
// so callers can apply their own per-item or per-request policy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ScoreResult is the scorer's verdict for one booking.  The scoring
// policy itself (distance, availability, rating weighting) is the
// scorer's business; this service only consumes the confidence number
// and the rationale.
type ScoreResult struct {
	ConfidenceScore float64 `json:"confidence_score"`
	AssignedMedicID *uint64 `json:"assigned_medic_id"`
	MedicName       string  `json:"medic_name"`
	Reason          string  `json:"reason"`
}

// MatchScorerClient calls the external match scorer over HTTP.
type MatchScorerClient struct {
	baseURL string
	http    *http.Client
}

// NewMatchScorerClient builds a scorer client for the given base URL.
// A zero timeout defaults to 10 seconds so a stuck scorer cannot
// stall a triage run indefinitely.
func NewMatchScorerClient(baseURL string, timeout time.Duration) *MatchScorerClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MatchScorerClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Score requests a match confidence for one booking.
func (c *MatchScorerClient) Score(ctx context.Context, bookingID uint64, skipOvertimeCheck bool) (ScoreResult, error) {
	payload := map[string]interface{}{
		"booking_id":          bookingID,
		"skip_overtime_check": skipOvertimeCheck,
	}
	var out ScoreResult
	if err := c.postJSON(ctx, c.baseURL+"/score", payload, &out); err != nil {
		return ScoreResult{}, err
	}
	return out, nil
}

func (c *MatchScorerClient) postJSON(ctx context.Context, url string, in interface{}, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("match scorer returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
