// Package pipeline contains the core intake, scoring and lifecycle logic
// for citizen complaints: validate, persist, score, and transition status.
package pipeline

import (
	"fmt"
	"log"

	"github.com/lib/pq"

	"jalrakshak/backend/internal/models"
	"jalrakshak/backend/internal/scoring"
	"jalrakshak/backend/internal/storage"
)

// Scorer is the external priority-scoring collaborator.
type Scorer interface {
	Score(req scoring.Request) (float64, error)
}

// Notifier receives high-priority alerts. Implementations decide the channel
// (Telegram in production); a nil notifier disables alerting.
type Notifier interface {
	ComplaintScored(complaint *models.Complaint)
}

// Service orchestrates the complaint lifecycle.
type Service struct {
	Storage  storage.Storage
	Scorer   Scorer
	Notifier Notifier
}

// NewService creates a new pipeline service.
func NewService(s storage.Storage, scorer Scorer) *Service {
	return &Service{Storage: s, Scorer: scorer}
}

// Submit validates and persists a new complaint, then scores it
// synchronously before returning. Scoring is an enhancement, not a
// precondition: if the ML service is down the complaint is returned in
// "pending" state with a null score and queued for a later rescore, and
// the citizen still gets a successful submission.
func (s *Service) Submit(input models.SubmitComplaintInput) (*models.Complaint, error) {
	if verr := validateSubmission(input); verr != nil {
		return nil, verr
	}

	complaint := &models.Complaint{
		Title:       input.Title,
		Description: input.Description,
		IssueType:   input.IssueType,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Images:      pq.StringArray(input.Images),
		Status:      models.StatusPending,
	}

	// The pending row is the durable source of truth. Once this write
	// succeeds the submission cannot fail anymore.
	if err := s.Storage.CreateComplaint(complaint); err != nil {
		return nil, fmt.Errorf("failed to persist complaint: %w", err)
	}
	s.publishEvent(models.EventSubmitted, complaint)

	req := scoring.NewRequest(complaint.Latitude, complaint.Longitude, complaint.IssueType, complaint.CreatedAt)
	score, err := s.Scorer.Score(req)
	if err != nil {
		// Degraded path: keep the complaint pending and remember it for
		// a rescore. The error never reaches the citizen.
		log.Printf("WARNING: Scoring failed for complaint %s, keeping it pending: %v", complaint.ID, err)
		s.queueForRescore(complaint.ID)
		return complaint, nil
	}

	return s.applyScore(complaint, score)
}

// Rescore retries scoring for a complaint that is still unscored, typically
// driven by the admin rescore command draining the retry queue.
func (s *Service) Rescore(complaintID string) (*models.Complaint, error) {
	complaint, err := s.Storage.GetComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}

	if complaint.Status != models.StatusPending {
		// Scored or resolved in the meantime; nothing left to retry.
		if err := s.Storage.RemoveFromRescoreQueue(complaintID); err != nil {
			log.Printf("WARNING: Failed to drop complaint %s from rescore queue: %v", complaintID, err)
		}
		return complaint, nil
	}

	req := scoring.NewRequest(complaint.Latitude, complaint.Longitude, complaint.IssueType, complaint.CreatedAt)
	score, err := s.Scorer.Score(req)
	if err != nil {
		return nil, err
	}

	complaint, err = s.applyScore(complaint, score)
	if err != nil {
		return nil, err
	}
	if err := s.Storage.RemoveFromRescoreQueue(complaintID); err != nil {
		log.Printf("WARNING: Failed to drop complaint %s from rescore queue: %v", complaintID, err)
	}
	return complaint, nil
}

// applyScore writes the score and status transition as one conditional
// update, then mirrors the result onto the in-memory complaint.
func (s *Service) applyScore(complaint *models.Complaint, score float64) (*models.Complaint, error) {
	updated, err := s.Storage.MarkComplaintScored(complaint.ID, score)
	if err != nil {
		// The pending row remains the durable truth; treat this like a
		// scoring failure and let the rescore path catch up later.
		log.Printf("ERROR: Failed to persist score for complaint %s: %v", complaint.ID, err)
		s.queueForRescore(complaint.ID)
		return complaint, nil
	}
	if !updated {
		// Lost a race against another scorer or an early resolve. The
		// stored state wins; reload it so the caller sees the truth.
		log.Printf("INFO: Complaint %s was no longer pending when its score arrived", complaint.ID)
		current, getErr := s.Storage.GetComplaintByID(complaint.ID)
		if getErr != nil {
			return complaint, nil
		}
		return current, nil
	}

	complaint.Status = models.StatusScored
	complaint.PriorityScore = &score
	s.publishEvent(models.EventScored, complaint)

	if s.Notifier != nil {
		s.Notifier.ComplaintScored(complaint)
	}
	return complaint, nil
}

// Resolve appends an officer response to the ledger and transitions the
// complaint to resolved. Resolving an already-resolved complaint is
// rejected with models.ErrAlreadyResolved. If a concurrent resolve wins
// between the response insert and the status update, the response stays as
// an immutable history entry and the caller still gets ErrAlreadyResolved.
func (s *Service) Resolve(complaintID, officerID, actionTaken string, images []string) (*models.Response, error) {
	if verr := validateResolution(actionTaken, images); verr != nil {
		return nil, verr
	}

	complaint, err := s.Storage.GetComplaintByID(complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.Status == models.StatusResolved {
		return nil, models.ErrAlreadyResolved
	}

	response := &models.Response{
		ComplaintID: complaintID,
		OfficerID:   officerID,
		ActionTaken: actionTaken,
		Images:      pq.StringArray(images),
	}
	if err := s.Storage.CreateResponse(response); err != nil {
		return nil, fmt.Errorf("failed to record response: %w", err)
	}

	transitioned, err := s.Storage.MarkComplaintResolved(complaintID)
	if err != nil {
		// The response row exists but the complaint was not transitioned.
		// Surface the inconsistency instead of pretending the resolve
		// completed; the response ledger makes it reconcilable.
		return nil, fmt.Errorf("response %s recorded but complaint %s could not be transitioned: %w",
			response.ID, complaintID, err)
	}
	if !transitioned {
		log.Printf("INFO: Complaint %s was resolved concurrently; response %s kept as history", complaintID, response.ID)
		return nil, models.ErrAlreadyResolved
	}

	complaint.Status = models.StatusResolved
	s.publishEvent(models.EventResolved, complaint)

	return response, nil
}

// publishEvent pushes a lifecycle event to the live feed. Event delivery is
// best effort and never fails the operation that produced it.
func (s *Service) publishEvent(eventType string, complaint *models.Complaint) {
	event := models.ComplaintEvent{
		Type:          eventType,
		ComplaintID:   complaint.ID,
		Title:         complaint.Title,
		IssueType:     complaint.IssueType,
		Status:        string(complaint.Status),
		PriorityScore: complaint.PriorityScore,
	}
	if err := s.Storage.PublishComplaintEvent(event); err != nil {
		log.Printf("WARNING: Failed to publish %s event for complaint %s: %v", eventType, complaint.ID, err)
	}
}

// queueForRescore is best effort: a complaint that misses the queue can
// still be rescored manually by ID.
func (s *Service) queueForRescore(complaintID string) {
	if err := s.Storage.AddToRescoreQueue(complaintID); err != nil {
		log.Printf("ERROR: Failed to queue complaint %s for rescore: %v", complaintID, err)
	}
}
