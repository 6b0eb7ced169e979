package handler

import (
	"jalrakshak/backend/internal/live"
	"jalrakshak/backend/internal/pipeline"
	"jalrakshak/backend/internal/query"
	"jalrakshak/backend/internal/storage"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	Pipeline *pipeline.Service
	Query    *query.Service
	Storage  storage.Storage
	Hub      *live.Hub

	// UploadDir is where citizen-submitted images are written.
	UploadDir string
	// JWTSecret signs and verifies officer tokens.
	JWTSecret []byte
	// OfficerAccessCode gates token issuance; officer identity itself is
	// managed outside this service.
	OfficerAccessCode string
}

func NewHandler(p *pipeline.Service, q *query.Service, s storage.Storage, hub *live.Hub, uploadDir string, jwtSecret, officerAccessCode string) *Handler {
	return &Handler{
		Pipeline:          p,
		Query:             q,
		Storage:           s,
		Hub:               hub,
		UploadDir:         uploadDir,
		JWTSecret:         []byte(jwtSecret),
		OfficerAccessCode: officerAccessCode,
	}
}
