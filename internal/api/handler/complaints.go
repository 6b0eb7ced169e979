package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"jalrakshak/backend/internal/config"
	"jalrakshak/backend/internal/models"
	"jalrakshak/backend/internal/pipeline"
	"jalrakshak/backend/internal/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SubmitComplaint handles the citizen intake form (multipart, up to five
// images). A degraded scoring service still yields 201; only invalid input
// or a storage failure can reject the submission.
func (h *Handler) SubmitComplaint(c *gin.Context) {
	latitude, latErr := strconv.ParseFloat(c.PostForm("latitude"), 64)
	longitude, lonErr := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude must be numbers"})
		return
	}

	var files []*multipart.FileHeader
	if form, _ := c.MultipartForm(); form != nil {
		files = form.File["images"]
	}
	if len(files) > config.MaxImagesPerComplaint {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": gin.H{
			"images": "at most 5 images allowed",
		}})
		return
	}

	imagePaths := make([]string, 0, len(files))
	for _, f := range files {
		dst := filepath.Join(h.UploadDir, uuid.New().String()+filepath.Ext(f.Filename))
		if err := c.SaveUploadedFile(f, dst); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store uploaded image"})
			return
		}
		imagePaths = append(imagePaths, dst)
	}

	complaint, err := h.Pipeline.Submit(models.SubmitComplaintInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		IssueType:   c.PostForm("issue_type"),
		Latitude:    latitude,
		Longitude:   longitude,
		Images:      imagePaths,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"data":           complaint,
		"priority_score": complaint.PriorityScore,
	})
}

// ListComplaints serves the dashboard grid: optional status filter, named
// sort strategy, page/limit pagination.
func (h *Handler) ListComplaints(c *gin.Context) {
	sortBy := c.DefaultQuery("sort_by", "priority")
	status := models.ComplaintStatus(c.Query("status"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.Query.List(status, sortBy, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Items,
		"page":    result.Page,
		"total":   result.Total,
	})
}

// GetComplaint returns one complaint together with its response history.
func (h *Handler) GetComplaint(c *gin.Context) {
	id := c.Param("id")

	complaint, err := h.Storage.GetComplaintByID(id)
	if err != nil {
		writeError(c, err)
		return
	}
	responses, err := h.Storage.GetResponsesForComplaint(id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      complaint,
		"responses": responses,
	})
}

// RespondToComplaint records an officer's resolution action. Requires the
// RequireOfficer middleware.
func (h *Handler) RespondToComplaint(c *gin.Context) {
	id := c.Param("id")
	officerID := c.GetString("officer_id")

	var req struct {
		ActionTaken string   `json:"action_taken"`
		Images      []string `json:"images"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	response, err := h.Pipeline.Resolve(id, officerID, req.ActionTaken, req.Images)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// writeError maps pipeline and query errors onto HTTP statuses, keeping
// the taxonomy visible to API clients instead of collapsing everything
// into a 500.
func writeError(c *gin.Context, err error) {
	var verr *pipeline.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, models.ErrComplaintNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "complaint not found"})
	case errors.Is(err, models.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "complaint already resolved"})
	case errors.Is(err, query.ErrInvalidSortKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort_by value"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
