package notify

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// sender is the part of tgbotapi.BotAPI the notifier needs
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var severityIcons = map[Severity]string{
	SeveritySuccess: "✅",
	SeverityInfo:    "ℹ️",
	SeverityWarning: "⚠️",
	SeverityError:   "❌",
}

// TelegramNotifier posts notifications to one Telegram chat
type TelegramNotifier struct {
	bot    sender
	chatID int64
	log    zerolog.Logger
	wg     sync.WaitGroup
}

// NewTelegramNotifier connects to the Bot API with token
func NewTelegramNotifier(token string, chatID int64, log zerolog.Logger) (*TelegramNotifier, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id cannot be empty")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return newTelegramNotifier(bot, chatID, log), nil
}

func newTelegramNotifier(bot sender, chatID int64, log zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		log:    log.With().Str("component", "telegram_notifier").Logger(),
	}
}

// Notify sends the message in the background; delivery failures are only logged
func (n *TelegramNotifier) Notify(_ context.Context, message string, severity Severity) {
	msg := tgbotapi.NewMessage(n.chatID, formatMessage(message, severity))

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if _, err := n.bot.Send(msg); err != nil {
			n.log.Error().Err(err).Str("severity", string(severity)).Msg("failed to send telegram notification")
		}
	}()
}

// Wait blocks until queued messages are sent
func (n *TelegramNotifier) Wait() {
	n.wg.Wait()
}

func formatMessage(message string, severity Severity) string {
	icon, ok := severityIcons[severity]
	if !ok {
		return "VendLens: " + message
	}
	return icon + " VendLens: " + message
}
