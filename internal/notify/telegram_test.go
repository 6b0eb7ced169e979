package notify

import (
	"testing"

	"jalrakshak/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

// fakeMessenger captures outgoing messages instead of hitting Telegram.
type fakeMessenger struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeMessenger) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func scoredComplaint(score float64) *models.Complaint {
	return &models.Complaint{
		ID:            "c-1",
		Title:         "Burst main near hospital",
		IssueType:     "pipe_breakage",
		Latitude:      23.26,
		Longitude:     77.41,
		Status:        models.StatusScored,
		PriorityScore: &score,
	}
}

func TestComplaintScored_AlertsAboveThreshold(t *testing.T) {
	// Arrange
	bot := &fakeMessenger{}
	alerts := &AlertService{Bot: bot, ChatID: 42}

	// Act
	alerts.ComplaintScored(scoredComplaint(85))

	// Assert
	if assert.Len(t, bot.sent, 1) {
		msg := bot.sent[0]
		assert.Equal(t, int64(42), msg.ChatID)
		assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
		assert.Contains(t, msg.Text, "CRITICAL")
		assert.Contains(t, msg.Text, "Burst main near hospital")
	}
}

func TestComplaintScored_SkipsBelowThreshold(t *testing.T) {
	bot := &fakeMessenger{}
	alerts := &AlertService{Bot: bot, ChatID: 42}

	alerts.ComplaintScored(scoredComplaint(79))

	assert.Empty(t, bot.sent, "Sub-threshold scores must not page the ops chat")
}

func TestComplaintScored_SkipsUnscored(t *testing.T) {
	bot := &fakeMessenger{}
	alerts := &AlertService{Bot: bot, ChatID: 42}

	alerts.ComplaintScored(&models.Complaint{ID: "c-2", Status: models.StatusPending})

	assert.Empty(t, bot.sent)
}

func TestFormatAlert(t *testing.T) {
	text := FormatAlert(scoredComplaint(85))

	assert.Contains(t, text, "CRITICAL")
	assert.Contains(t, text, "pipe_breakage")
	assert.Contains(t, text, "Score: 85")
	assert.Contains(t, text, "openstreetmap.org")
}
