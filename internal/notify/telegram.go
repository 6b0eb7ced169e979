// Package notify pushes high-priority complaint alerts to the on-call
// operations chat via the Telegram Bot API, so critical issues are seen
// without anyone watching the dashboard.
package notify

import (
	"fmt"
	"log"

	"jalrakshak/backend/internal/config"
	"jalrakshak/backend/internal/models"
	"jalrakshak/backend/internal/scoring"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// messenger is the slice of the Telegram bot API the alerter needs.
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// AlertService sends Telegram messages for complaints that score at or
// above config.AlertScoreThreshold.
type AlertService struct {
	Bot    messenger
	ChatID int64
}

// NewAlertService authorizes the bot and targets the given ops chat.
func NewAlertService(token string, chatID int64) (*AlertService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("✅ Authorized on account %s", bot.Self.UserName)

	return &AlertService{Bot: bot, ChatID: chatID}, nil
}

// ComplaintScored implements pipeline.Notifier. Low and medium scores are
// ignored; alert fatigue would bury the real emergencies.
func (a *AlertService) ComplaintScored(complaint *models.Complaint) {
	if complaint.PriorityScore == nil || *complaint.PriorityScore < config.AlertScoreThreshold {
		return
	}

	msg := tgbotapi.NewMessage(a.ChatID, FormatAlert(complaint))
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := a.Bot.Send(msg); err != nil {
		log.Printf("ERROR: Failed to send Telegram alert for complaint %s: %v", complaint.ID, err)
	}
}

// FormatAlert renders the alert message body.
func FormatAlert(complaint *models.Complaint) string {
	score := *complaint.PriorityScore
	return fmt.Sprintf(
		"🚨 *%s priority complaint*\n%s (%s)\nScore: %.0f\nLocation: https://www.openstreetmap.org/?mlat=%f&mlon=%f",
		scoring.RiskLevelFor(score),
		complaint.Title,
		complaint.IssueType,
		score,
		complaint.Latitude,
		complaint.Longitude,
	)
}
