package models

// ComplaintEvent is the realtime notification fanned out over Redis Pub/Sub
// whenever a complaint is created, scored or resolved. Operator dashboards
// subscribed via WebSocket receive these to refresh without polling.
type ComplaintEvent struct {
	Type          string   `json:"type"` // "submitted", "scored", "resolved"
	ComplaintID   string   `json:"complaint_id"`
	Title         string   `json:"title"`
	IssueType     string   `json:"issue_type"`
	Status        string   `json:"status"`
	PriorityScore *float64 `json:"priority_score,omitempty"`
}

const (
	EventSubmitted = "submitted"
	EventScored    = "scored"
	EventResolved  = "resolved"
)

// SubmitComplaintInput carries the validated fields of a citizen submission
// into the pipeline. Images are the storage paths of already-saved uploads.
type SubmitComplaintInput struct {
	Title       string
	Description string
	IssueType   string
	Latitude    float64
	Longitude   float64
	Images      []string
}
