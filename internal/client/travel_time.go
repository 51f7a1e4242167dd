package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TravelEstimate is the travel service's answer for one origin and
// destination postcode pair.
type TravelEstimate struct {
	TravelTimeMinutes int     `json:"travel_time_minutes"`
	DistanceMiles     float64 `json:"distance_miles"`
}

// TravelTimeClient calls the external travel time estimator over
// HTTP.  This service never computes distance from coordinates
// itself; the estimator owns routing.
type TravelTimeClient struct {
	baseURL string
	http    *http.Client
}

// NewTravelTimeClient builds a travel client for the given base URL.
// A zero timeout defaults to 10 seconds.
func NewTravelTimeClient(baseURL string, timeout time.Duration) *TravelTimeClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TravelTimeClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Estimate requests travel time and distance between two postcodes.
func (c *TravelTimeClient) Estimate(ctx context.Context, originPostcode, destinationPostcode string) (TravelEstimate, error) {
	payload := map[string]string{
		"origin_postcode":      originPostcode,
		"destination_postcode": destinationPostcode,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return TravelEstimate{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/estimate", bytes.NewReader(body))
	if err != nil {
		return TravelEstimate{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return TravelEstimate{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return TravelEstimate{}, fmt.Errorf("travel time service returned status %d", resp.StatusCode)
	}
	var out TravelEstimate
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return TravelEstimate{}, err
	}
	return out, nil
}
