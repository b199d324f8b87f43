// ABOUTME: Telegram sink that sends each new notification to one chat as HTML.
package notify

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/harperreed/study/internal/models"
)

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram connects to the Bot API with the given token.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	return NewTelegramWithEndpoint(token, chatID, tgbotapi.APIEndpoint)
}

// NewTelegramWithEndpoint connects to a Bot API compatible server.
// endpoint follows tgbotapi.APIEndpoint's format.
func NewTelegramWithEndpoint(token string, chatID int64, endpoint string) (*Telegram, error) {
	botAPI, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{bot: botAPI, chatID: chatID}, nil
}

func (t *Telegram) Deliver(_ context.Context, n models.Notification) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatHTML(n))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// FormatHTML renders a notification in Telegram's HTML subset.
func FormatHTML(n models.Notification) string {
	return fmt.Sprintf("%s <b>%s</b>\n\n%s",
		icon(n), html.EscapeString(n.Title), html.EscapeString(n.Message))
}

func icon(n models.Notification) string {
	if n.Priority == models.PriorityHigh {
		return "⚠️"
	}
	switch n.Kind {
	case models.NotificationAchievement:
		return "🏆"
	case models.NotificationGoal:
		return "🎯"
	case models.NotificationReview:
		return "📚"
	default:
		return "📈"
	}
}
