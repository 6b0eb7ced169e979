package pipeline_test

import (
	"jalrakshak/backend/internal/models"
	"jalrakshak/backend/internal/scoring"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateComplaint(complaint *models.Complaint) error {
	args := m.Called(complaint)
	return args.Error(0)
}

func (m *MockStorage) GetComplaintByID(id string) (*models.Complaint, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) MarkComplaintScored(id string, score float64) (bool, error) {
	args := m.Called(id, score)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) MarkComplaintResolved(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListComplaints(status models.ComplaintStatus, orderClause string, offset, limit int) ([]models.Complaint, error) {
	args := m.Called(status, orderClause, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) CountComplaints(status models.ComplaintStatus) (int64, error) {
	args := m.Called(status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) CreateResponse(response *models.Response) error {
	args := m.Called(response)
	return args.Error(0)
}

func (m *MockStorage) GetResponsesForComplaint(complaintID string) ([]models.Response, error) {
	args := m.Called(complaintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Response), args.Error(1)
}

func (m *MockStorage) PublishComplaintEvent(event models.ComplaintEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockStorage) AddToRescoreQueue(complaintID string) error {
	args := m.Called(complaintID)
	return args.Error(0)
}

func (m *MockStorage) RemoveFromRescoreQueue(complaintID string) error {
	args := m.Called(complaintID)
	return args.Error(0)
}

func (m *MockStorage) GetRescoreQueue() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockScorer is a testify mock of the pipeline.Scorer interface.
type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Score(req scoring.Request) (float64, error) {
	args := m.Called(req)
	return args.Get(0).(float64), args.Error(1)
}

// recordingNotifier captures alerted complaints without a real Telegram bot.
type recordingNotifier struct {
	alerted []*models.Complaint
}

func (n *recordingNotifier) ComplaintScored(complaint *models.Complaint) {
	n.alerted = append(n.alerted, complaint)
}
