package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Response is an immutable record of an officer's resolution action on a
// complaint. Corrections are made by appending a new Response, never by
// editing an existing one, so the ledger keeps the full history.
type Response struct {
	ID          string `gorm:"primaryKey" json:"id"` // UUID
	ComplaintID string `gorm:"type:uuid;not null;index" json:"complaint_id"`
	// OfficerID comes from the validated officer token; this service does
	// not own officer identities.
	OfficerID   string         `gorm:"type:text;not null" json:"officer_id"`
	ActionTaken string         `gorm:"type:text;not null" json:"action_taken"`
	Images      pq.StringArray `gorm:"type:text[]" json:"images"`
	CreatedAt   time.Time      `json:"created_at"`
}

// BeforeCreate generates a UUID for the response if one is not set.
func (r *Response) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
