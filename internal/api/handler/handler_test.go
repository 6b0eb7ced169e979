package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jalrakshak/backend/internal/models"
	"jalrakshak/backend/internal/pipeline"
	"jalrakshak/backend/internal/query"
	"jalrakshak/backend/internal/scoring"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// fakeStore is an in-memory storage.Storage good enough for handler tests.
type fakeStore struct {
	complaints map[string]*models.Complaint
	responses  map[string][]models.Response
	listed     []models.Complaint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		complaints: make(map[string]*models.Complaint),
		responses:  make(map[string][]models.Response),
	}
}

func (f *fakeStore) CreateComplaint(complaint *models.Complaint) error {
	if err := complaint.BeforeCreate(nil); err != nil {
		return err
	}
	f.complaints[complaint.ID] = complaint
	return nil
}

func (f *fakeStore) GetComplaintByID(id string) (*models.Complaint, error) {
	complaint, ok := f.complaints[id]
	if !ok {
		return nil, models.ErrComplaintNotFound
	}
	return complaint, nil
}

func (f *fakeStore) MarkComplaintScored(id string, score float64) (bool, error) {
	complaint, ok := f.complaints[id]
	if !ok || complaint.Status != models.StatusPending {
		return false, nil
	}
	complaint.Status = models.StatusScored
	complaint.PriorityScore = &score
	return true, nil
}

func (f *fakeStore) MarkComplaintResolved(id string) (bool, error) {
	complaint, ok := f.complaints[id]
	if !ok || complaint.Status == models.StatusResolved {
		return false, nil
	}
	complaint.Status = models.StatusResolved
	return true, nil
}

func (f *fakeStore) ListComplaints(status models.ComplaintStatus, orderClause string, offset, limit int) ([]models.Complaint, error) {
	return f.listed, nil
}

func (f *fakeStore) CountComplaints(status models.ComplaintStatus) (int64, error) {
	return int64(len(f.listed)), nil
}

func (f *fakeStore) CreateResponse(response *models.Response) error {
	if err := response.BeforeCreate(nil); err != nil {
		return err
	}
	f.responses[response.ComplaintID] = append(f.responses[response.ComplaintID], *response)
	return nil
}

func (f *fakeStore) GetResponsesForComplaint(complaintID string) ([]models.Response, error) {
	return f.responses[complaintID], nil
}

func (f *fakeStore) PublishComplaintEvent(models.ComplaintEvent) error { return nil }
func (f *fakeStore) AddToRescoreQueue(string) error                   { return nil }
func (f *fakeStore) RemoveFromRescoreQueue(string) error              { return nil }
func (f *fakeStore) GetRescoreQueue() ([]string, error)               { return nil, nil }

// fixedScorer always returns the same score.
type fixedScorer struct {
	score float64
	err   error
}

func (s *fixedScorer) Score(scoring.Request) (float64, error) { return s.score, s.err }

func newTestRouter(store *fakeStore, scorer pipeline.Scorer) (*gin.Engine, *Handler) {
	gin.SetMode(gin.TestMode)

	pipe := pipeline.NewService(store, scorer)
	h := NewHandler(pipe, query.NewService(store), store, nil, "", "test-secret", "open-sesame")

	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.POST("/api/auth/officer", h.OfficerLogin)
	r.POST("/api/complaints/submit", h.SubmitComplaint)
	r.GET("/api/complaints/list", h.ListComplaints)
	r.GET("/api/complaints/:id", h.GetComplaint)
	r.POST("/api/complaints/:id/respond", h.RequireOfficer, h.RespondToComplaint)
	return r, h
}

func submitForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		assert.NoError(t, writer.WriteField(key, value))
	}
	assert.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(newFakeStore(), &fixedScorer{score: 50})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
}

func TestSubmitComplaint_Created(t *testing.T) {
	// Arrange
	store := newFakeStore()
	router, _ := newTestRouter(store, &fixedScorer{score: 72})

	body, contentType := submitForm(t, map[string]string{
		"title":      "Leak on 5th",
		"issue_type": "water_leakage",
		"latitude":   "23.26",
		"longitude":  "77.41",
	})

	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/complaints/submit", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	payload := decodeBody(t, w)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, 72.0, payload["priority_score"])

	data := payload["data"].(map[string]interface{})
	assert.Equal(t, "scored", data["status"])
	assert.Len(t, store.complaints, 1)
}

func TestSubmitComplaint_DegradedScoringStillCreated(t *testing.T) {
	store := newFakeStore()
	router, _ := newTestRouter(store, &fixedScorer{err: scoring.ErrUnavailable})

	body, contentType := submitForm(t, map[string]string{
		"title":      "No water since morning",
		"issue_type": "low_pressure",
		"latitude":   "23.26",
		"longitude":  "77.41",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/complaints/submit", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code, "A dead scoring service must not reject submissions")
	payload := decodeBody(t, w)
	assert.Nil(t, payload["priority_score"])
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
}

func TestSubmitComplaint_NonNumericCoordinates(t *testing.T) {
	router, _ := newTestRouter(newFakeStore(), &fixedScorer{score: 50})

	body, contentType := submitForm(t, map[string]string{
		"title":      "Leak",
		"issue_type": "water_leakage",
		"latitude":   "north-ish",
		"longitude":  "77.41",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/complaints/submit", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitComplaint_ValidationFieldsReturned(t *testing.T) {
	store := newFakeStore()
	router, _ := newTestRouter(store, &fixedScorer{score: 50})

	body, contentType := submitForm(t, map[string]string{
		"title":      "",
		"issue_type": "meteor_strike",
		"latitude":   "23.26",
		"longitude":  "77.41",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/complaints/submit", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeBody(t, w)
	fields := payload["fields"].(map[string]interface{})
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "issue_type")
	assert.Empty(t, store.complaints, "Rejected submissions must not leave records behind")
}

func TestListComplaints_Envelope(t *testing.T) {
	store := newFakeStore()
	score := 90.0
	store.listed = []models.Complaint{
		{ID: "c-1", Title: "Burst main", Status: models.StatusScored, PriorityScore: &score},
		{ID: "c-2", Title: "Leak", Status: models.StatusPending},
	}
	router, _ := newTestRouter(store, &fixedScorer{score: 50})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/complaints/list?sort_by=priority&page=1&limit=20", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	payload := decodeBody(t, w)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, 1.0, payload["page"])
	assert.Equal(t, 2.0, payload["total"])
	assert.Len(t, payload["data"], 2)
}

func TestListComplaints_InvalidSortKey(t *testing.T) {
	router, _ := newTestRouter(newFakeStore(), &fixedScorer{score: 50})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/complaints/list?sort_by=magic", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetComplaint_WithResponses(t *testing.T) {
	store := newFakeStore()
	complaint := &models.Complaint{Title: "Leak", IssueType: "water_leakage", Status: models.StatusResolved}
	assert.NoError(t, store.CreateComplaint(complaint))
	assert.NoError(t, store.CreateResponse(&models.Response{
		ComplaintID: complaint.ID, OfficerID: "officer-7", ActionTaken: "Pipe replaced",
	}))
	router, _ := newTestRouter(store, &fixedScorer{score: 50})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/complaints/"+complaint.ID, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	payload := decodeBody(t, w)
	assert.Len(t, payload["responses"], 1)
}

func TestGetComplaint_NotFound(t *testing.T) {
	router, _ := newTestRouter(newFakeStore(), &fixedScorer{score: 50})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/complaints/does-not-exist", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func loginToken(t *testing.T, router *gin.Engine, officerID string) string {
	t.Helper()
	w := httptest.NewRecorder()
	body := strings.NewReader(`{"officer_id": "` + officerID + `", "access_code": "open-sesame"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/auth/officer", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	return decodeBody(t, w)["token"].(string)
}

func TestOfficerLogin_InvalidAccessCode(t *testing.T) {
	router, _ := newTestRouter(newFakeStore(), &fixedScorer{score: 50})

	w := httptest.NewRecorder()
	body := strings.NewReader(`{"officer_id": "officer-7", "access_code": "wrong"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/auth/officer", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRespondToComplaint_RequiresToken(t *testing.T) {
	router, _ := newTestRouter(newFakeStore(), &fixedScorer{score: 50})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/complaints/c-1/respond",
		strings.NewReader(`{"action_taken": "Checked site"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRespondToComplaint_ResolvesComplaint(t *testing.T) {
	// Arrange
	store := newFakeStore()
	complaint := &models.Complaint{Title: "Leak", IssueType: "water_leakage", Status: models.StatusScored}
	assert.NoError(t, store.CreateComplaint(complaint))
	complaint.Status = models.StatusScored

	router, _ := newTestRouter(store, &fixedScorer{score: 50})
	token := loginToken(t, router, "officer-7")

	// Act
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/complaints/"+complaint.ID+"/respond",
		strings.NewReader(`{"action_taken": "Pipe replaced"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	payload := decodeBody(t, w)
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, "officer-7", data["officer_id"], "The response must record the token's officer")
	assert.Equal(t, models.StatusResolved, store.complaints[complaint.ID].Status)
}

func TestRespondToComplaint_AlreadyResolvedConflict(t *testing.T) {
	store := newFakeStore()
	complaint := &models.Complaint{Title: "Leak", IssueType: "water_leakage"}
	assert.NoError(t, store.CreateComplaint(complaint))
	complaint.Status = models.StatusResolved

	router, _ := newTestRouter(store, &fixedScorer{score: 50})
	token := loginToken(t, router, "officer-7")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/complaints/"+complaint.ID+"/respond",
		strings.NewReader(`{"action_taken": "Re-checked"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, store.responses[complaint.ID], "A rejected resolve must not append to the ledger")
}

func TestValidateOfficerToken_RejectsForgedToken(t *testing.T) {
	_, h := newTestRouter(newFakeStore(), &fixedScorer{score: 50})
	otherRouter, _ := func() (*gin.Engine, *Handler) {
		gin.SetMode(gin.TestMode)
		other := NewHandler(nil, nil, nil, nil, "", "different-secret", "open-sesame")
		r := gin.New()
		r.POST("/api/auth/officer", other.OfficerLogin)
		return r, other
	}()

	forged := loginToken(t, otherRouter, "officer-7")

	_, err := h.validateOfficerToken(forged)
	assert.Error(t, err, "Tokens signed with another secret must be rejected")
}

func TestOfficerTokenRoundTrip(t *testing.T) {
	_, h := newTestRouter(newFakeStore(), &fixedScorer{score: 50})

	token, err := h.generateOfficerJWT("officer-42")
	assert.NoError(t, err)

	officerID, err := h.validateOfficerToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "officer-42", officerID)
}
