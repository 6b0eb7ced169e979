package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"jalrakshak/backend/internal/config"
	"jalrakshak/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Storage interface {
	CreateComplaint(complaint *models.Complaint) error
	GetComplaintByID(id string) (*models.Complaint, error)
	MarkComplaintScored(id string, score float64) (bool, error)
	MarkComplaintResolved(id string) (bool, error)
	ListComplaints(status models.ComplaintStatus, orderClause string, offset, limit int) ([]models.Complaint, error)
	CountComplaints(status models.ComplaintStatus) (int64, error)

	CreateResponse(response *models.Response) error
	GetResponsesForComplaint(complaintID string) ([]models.Response, error)

	PublishComplaintEvent(event models.ComplaintEvent) error

	AddToRescoreQueue(complaintID string) error
	RemoveFromRescoreQueue(complaintID string) error
	GetRescoreQueue() ([]string, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// CreateComplaint persists a new complaint in PostgreSQL.
func (s *Service) CreateComplaint(complaint *models.Complaint) error {
	if err := s.DB.Create(complaint).Error; err != nil {
		log.Printf("ERROR: Failed to create complaint %q: %v", complaint.Title, err)
		return err
	}
	return nil
}

// GetComplaintByID loads a complaint by its UUID.
func (s *Service) GetComplaintByID(id string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.Where("id = ?", id).First(&complaint).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrComplaintNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get complaint %s: %v", id, err)
		return nil, err
	}
	return &complaint, nil
}

// MarkComplaintScored sets the priority score and advances status to
// "scored" in a single conditional update. The WHERE clause only matches
// complaints that are still pending, so the score is set at most once;
// the returned bool reports whether the row actually changed.
func (s *Service) MarkComplaintScored(id string, score float64) (bool, error) {
	result := s.DB.Model(&models.Complaint{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"priority_score": score,
			"status":         models.StatusScored,
			"updated_at":     gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		log.Printf("ERROR: Failed to mark complaint %s scored: %v", id, result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkComplaintResolved transitions a complaint to "resolved" only if it is
// not resolved yet. The condition runs inside the database, so two service
// instances racing on the same complaint cannot both win: exactly one call
// returns true, the other false.
func (s *Service) MarkComplaintResolved(id string) (bool, error) {
	result := s.DB.Model(&models.Complaint{}).
		Where("id = ? AND status <> ?", id, models.StatusResolved).
		Updates(map[string]interface{}{
			"status":     models.StatusResolved,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		log.Printf("ERROR: Failed to mark complaint %s resolved: %v", id, result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListComplaints returns one page of complaints. orderClause comes from the
// closed sort-strategy table in the query package, never from raw user input.
func (s *Service) ListComplaints(status models.ComplaintStatus, orderClause string, offset, limit int) ([]models.Complaint, error) {
	var complaints []models.Complaint

	q := s.DB.Model(&models.Complaint{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	err := q.Order(orderClause).Offset(offset).Limit(limit).Find(&complaints).Error
	if err != nil {
		log.Printf("ERROR: Failed to list complaints: %v", err)
		return nil, err
	}
	return complaints, nil
}

// CountComplaints counts complaints matching the optional status filter,
// independent of any pagination window.
func (s *Service) CountComplaints(status models.ComplaintStatus) (int64, error) {
	var total int64

	q := s.DB.Model(&models.Complaint{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	if err := q.Count(&total).Error; err != nil {
		log.Printf("ERROR: Failed to count complaints: %v", err)
		return 0, err
	}
	return total, nil
}

// CreateResponse appends an officer response to the ledger. Responses are
// never updated or deleted afterwards.
func (s *Service) CreateResponse(response *models.Response) error {
	if err := s.DB.Create(response).Error; err != nil {
		log.Printf("ERROR: Failed to save response for complaint %s: %v", response.ComplaintID, err)
		return err
	}
	return nil
}

// GetResponsesForComplaint returns all responses for a complaint, oldest first.
func (s *Service) GetResponsesForComplaint(complaintID string) ([]models.Response, error) {
	var responses []models.Response
	err := s.DB.Where("complaint_id = ?", complaintID).
		Order("created_at asc").
		Find(&responses).Error
	if err != nil {
		log.Printf("ERROR: Failed to get responses for complaint %s: %v", complaintID, err)
		return nil, err
	}
	return responses, nil
}

// PublishComplaintEvent publishes a lifecycle event to Redis Pub/Sub for
// the live dashboard feed.
func (s *Service) PublishComplaintEvent(event models.ComplaintEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, config.ComplaintEventChannel, string(payload)).Err()
}

// SubscribeComplaintEvents subscribes to the live event channel. Used by the
// live hub; intentionally not part of the Storage interface.
func (s *Service) SubscribeComplaintEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, config.ComplaintEventChannel)
}

// AddToRescoreQueue remembers a complaint whose scoring call failed so the
// admin rescore command can retry it later.
func (s *Service) AddToRescoreQueue(complaintID string) error {
	return s.Redis.SAdd(s.Ctx, config.RescoreQueueKey, complaintID).Err()
}

// RemoveFromRescoreQueue drops a complaint from the rescore set.
func (s *Service) RemoveFromRescoreQueue(complaintID string) error {
	return s.Redis.SRem(s.Ctx, config.RescoreQueueKey, complaintID).Err()
}

// GetRescoreQueue returns all complaints waiting for a scoring retry.
func (s *Service) GetRescoreQueue() ([]string, error) {
	return s.Redis.SMembers(s.Ctx, config.RescoreQueueKey).Result()
}
