package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // Needed for pq.StringArray
	"gorm.io/gorm"
)

// ComplaintStatus is the lifecycle state of a complaint.
type ComplaintStatus string

const (
	StatusPending  ComplaintStatus = "pending"
	StatusScored   ComplaintStatus = "scored"
	StatusResolved ComplaintStatus = "resolved"
)

// allowedTransitions is the single source of truth for status progression.
// A status may only ever advance; there is no path back out of "resolved".
var allowedTransitions = map[ComplaintStatus][]ComplaintStatus{
	StatusPending:  {StatusScored, StatusResolved},
	StatusScored:   {StatusResolved},
	StatusResolved: {},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to ComplaintStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Complaint represents a citizen-reported water-infrastructure issue.
// PriorityScore stays nil until the ML scoring service has ranked it.
type Complaint struct {
	ID          string `gorm:"primaryKey" json:"id"` // UUID
	Title       string `gorm:"type:text;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	// IssueType is one of the config.IssueTypes keys (e.g. "water_leakage").
	IssueType string  `gorm:"type:text;not null;index" json:"issue_type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Images holds up to five uploaded file paths.
	Images        pq.StringArray  `gorm:"type:text[]" json:"images"`
	Status        ComplaintStatus `gorm:"type:text;not null;index" json:"status"`
	PriorityScore *float64        `json:"priority_score"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BeforeCreate is a GORM hook that assigns a UUID and the initial status
// when they have not been set yet.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	return
}
