package config

import "time"

const (
	// Complaint intake
	MaxImagesPerComplaint = 5
	DefaultPage           = 1
	DefaultPageLimit      = 20
	MaxPageLimit          = 100

	// Priority scoring (the ML service clips its output to this range)
	MinPriorityScore = 1
	MaxPriorityScore = 100

	// Scoring call gets its own deadline, separate from DB timeouts,
	// so a slow ML service can never stall a submission indefinitely.
	ScoringTimeout = 5 * time.Second

	// Alerting
	AlertScoreThreshold = 80 // CRITICAL band, see scoring.RiskLevelFor

	// Redis keys
	RescoreQueueKey       = "rescore_queue"
	ComplaintEventChannel = "complaints:events"
)

// IssueTypes is the closed set of reportable water-infrastructure issues.
var IssueTypes = map[string]bool{
	"pipe_breakage": true,
	"water_leakage": true,
	"water_logging": true,
	"contamination": true,
	"low_pressure":  true,
}
