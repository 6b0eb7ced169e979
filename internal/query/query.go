// Package query builds sorted, paginated complaint listings for the
// operator dashboard.
package query

import (
	"errors"
	"fmt"

	"jalrakshak/backend/internal/config"
	"jalrakshak/backend/internal/models"
	"jalrakshak/backend/internal/storage"
)

// ErrInvalidSortKey is returned for an unrecognized sort_by value. An
// unknown key fails loudly instead of silently falling back to some
// default ordering.
var ErrInvalidSortKey = errors.New("invalid sort key")

// sortStrategy pins down an ordering together with its tie-break, so every
// listing is stable under equal primary keys.
type sortStrategy struct {
	orderClause string
}

// sortStrategies is the closed set of supported orderings. Adding a new
// one means adding an entry here; nothing falls through unsorted.
var sortStrategies = map[string]sortStrategy{
	// Highest urgency first; unscored complaints sort last, newest first
	// among equal scores.
	"priority": {orderClause: "priority_score DESC NULLS LAST, created_at DESC"},
	// Newest first.
	"recent": {orderClause: "created_at DESC"},
}

// Result is one page of complaints plus the filter-wide total.
type Result struct {
	Items []models.Complaint
	Page  int
	Total int64
}

// Service executes listing requests against the complaint store.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new query service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// List returns one page of complaints ordered by the named strategy, with
// an optional status filter. Total always reflects the filter only; a page
// beyond the end of the data yields an empty (not failed) result.
func (s *Service) List(status models.ComplaintStatus, sortBy string, page, limit int) (*Result, error) {
	strategy, ok := sortStrategies[sortBy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortKey, sortBy)
	}

	if page < 1 {
		page = config.DefaultPage
	}
	if limit < 1 {
		limit = config.DefaultPageLimit
	}
	if limit > config.MaxPageLimit {
		limit = config.MaxPageLimit
	}
	offset := (page - 1) * limit

	items, err := s.Storage.ListComplaints(status, strategy.orderClause, offset, limit)
	if err != nil {
		return nil, err
	}

	total, err := s.Storage.CountComplaints(status)
	if err != nil {
		return nil, err
	}

	return &Result{Items: items, Page: page, Total: total}, nil
}
