package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"jalrakshak/backend/internal/config"
	"jalrakshak/backend/internal/models"
)

// ValidationError reports malformed caller input with per-field detail.
// It is always surfaced to the caller and never retried.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// validateSubmission checks every intake constraint before anything is
// persisted. A failed validation leaves no partial record behind.
func validateSubmission(input models.SubmitComplaintInput) *ValidationError {
	fields := make(map[string]string)

	if strings.TrimSpace(input.Title) == "" {
		fields["title"] = "must not be empty"
	}
	if !config.IssueTypes[input.IssueType] {
		fields["issue_type"] = fmt.Sprintf("unknown issue type %q", input.IssueType)
	}
	if input.Latitude < -90 || input.Latitude > 90 {
		fields["latitude"] = "must be between -90 and 90"
	}
	if input.Longitude < -180 || input.Longitude > 180 {
		fields["longitude"] = "must be between -180 and 180"
	}
	if len(input.Images) > config.MaxImagesPerComplaint {
		fields["images"] = fmt.Sprintf("at most %d images allowed", config.MaxImagesPerComplaint)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// validateResolution checks the officer's resolution input.
func validateResolution(actionTaken string, images []string) *ValidationError {
	fields := make(map[string]string)

	if strings.TrimSpace(actionTaken) == "" {
		fields["action_taken"] = "must not be empty"
	}
	if len(images) > config.MaxImagesPerComplaint {
		fields["images"] = fmt.Sprintf("at most %d images allowed", config.MaxImagesPerComplaint)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
