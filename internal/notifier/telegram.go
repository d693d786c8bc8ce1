package notifier

import (
	"errors"

	"github.com/aleister1102/giftwatch/internal/config"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramBot is the narrow slice of the Telegram API the notifier uses;
// kept as an interface so tests can substitute a fake bot.
type TelegramBot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier delivers change notifications and stats updates to
// subscription owners over Telegram.
type TelegramNotifier struct {
	config config.NotificationConfig
	logger zerolog.Logger
	bot    TelegramBot
}

// NewTelegramNotifier creates a notifier backed by the real bot API.
func NewTelegramNotifier(cfg config.NotificationConfig, logger zerolog.Logger) (*TelegramNotifier, error) {
	if cfg.TelegramBotToken == "" {
		return nil, errors.New("telegram bot token is required")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("bot_username", bot.Self.UserName).Msg("Telegram bot authorized")
	return NewTelegramNotifierWithBot(cfg, logger, bot), nil
}

// NewTelegramNotifierWithBot creates a notifier with a custom bot (for testing).
func NewTelegramNotifierWithBot(cfg config.NotificationConfig, logger zerolog.Logger, bot TelegramBot) *TelegramNotifier {
	return &TelegramNotifier{
		config: cfg,
		logger: logger.With().Str("component", "TelegramNotifier").Logger(),
		bot:    bot,
	}
}

// SendMessage sends a message to a user and returns the sent message ID.
func (n *TelegramNotifier) SendMessage(userID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = n.config.ParseMode
	msg.DisableWebPagePreview = true

	sent, err := n.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditMessage rewrites a previously sent message in place.
func (n *TelegramNotifier) EditMessage(userID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(userID, messageID, text)
	edit.ParseMode = n.config.ParseMode

	_, err := n.bot.Send(edit)
	return err
}

// IsConflictError reports whether the error is the API's conflicting-instance
// condition (another process polling the same bot). Such dispatch failures
// are skipped rather than counted as notification failures.
func IsConflictError(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 409
	}
	return false
}
