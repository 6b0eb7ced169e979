// Package scoring calls the external ML service that ranks complaint
// urgency. The service is treated as an opaque collaborator: this package
// only validates that the returned score is a finite number in the
// documented range and leaves the ranking semantics to the model.
package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"jalrakshak/backend/internal/config"
)

var (
	// ErrUnavailable means the scoring service could not be reached or
	// answered with a server error. Callers fall back to an unscored
	// complaint; the submission itself must not fail.
	ErrUnavailable = errors.New("scoring service unavailable")

	// ErrInvalidResponse means the service answered, but the score was
	// missing, non-finite or outside the documented range.
	ErrInvalidResponse = errors.New("scoring service returned an invalid score")
)

// Request is the feature payload sent to the ML service.
type Request struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IssueType string  `json:"issue_type"`
	Timestamp string  `json:"timestamp"` // ISO-8601
}

type predictionResponse struct {
	PriorityScore *float64 `json:"priority_score"`
	RiskLevel     string   `json:"risk_level"`
}

// Client talks to the ML service over HTTP with a bounded timeout. A single
// attempt is made per call; there is deliberately no retry, so a degraded
// model server never gets hammered by a submission burst.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a scoring client for the ML service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: config.ScoringTimeout,
		},
	}
}

// Score requests a priority score for the given features. The returned
// value is guaranteed to be finite and within
// [config.MinPriorityScore, config.MaxPriorityScore].
func (c *Client) Score(req Request) (float64, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	resp, err := c.HTTPClient.Post(c.BaseURL+"/predict/priority", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("WARNING: Scoring service answered %d for issue_type=%s", resp.StatusCode, req.IssueType)
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var prediction predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if prediction.PriorityScore == nil {
		return 0, fmt.Errorf("%w: priority_score missing", ErrInvalidResponse)
	}
	score := *prediction.PriorityScore
	if math.IsNaN(score) || math.IsInf(score, 0) ||
		score < config.MinPriorityScore || score > config.MaxPriorityScore {
		return 0, fmt.Errorf("%w: priority_score %v out of range", ErrInvalidResponse, score)
	}

	return score, nil
}

// NewRequest builds the feature payload for a complaint location and type.
func NewRequest(latitude, longitude float64, issueType string, submittedAt time.Time) Request {
	return Request{
		Latitude:  latitude,
		Longitude: longitude,
		IssueType: issueType,
		Timestamp: submittedAt.UTC().Format(time.RFC3339),
	}
}

// RiskLevelFor maps a score to the risk band the ML service uses in its
// own responses. Kept in sync with the model's get_risk_level thresholds.
func RiskLevelFor(score float64) string {
	switch {
	case score >= 80:
		return "CRITICAL"
	case score >= 60:
		return "HIGH"
	case score >= 40:
		return "MEDIUM"
	case score >= 20:
		return "LOW"
	default:
		return "MINOR"
	}
}
