package notifier

import (
	"errors"
	"testing"
	"time"

	"github.com/aleister1102/giftwatch/internal/config"
	"github.com/aleister1102/giftwatch/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: 1000 + len(f.sent)}, nil
}

func TestTelegramNotifier_SendMessage(t *testing.T) {
	bot := &fakeBot{}
	notifier := NewTelegramNotifierWithBot(config.NewDefaultNotificationConfig(), zerolog.Nop(), bot)

	messageID, err := notifier.SendMessage(42, "hello")

	require.NoError(t, err)
	assert.Equal(t, 1001, messageID)

	require.Len(t, bot.sent, 1)
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, "Markdown", msg.ParseMode)
	assert.True(t, msg.DisableWebPagePreview)
}

func TestTelegramNotifier_EditMessage(t *testing.T) {
	bot := &fakeBot{}
	notifier := NewTelegramNotifierWithBot(config.NewDefaultNotificationConfig(), zerolog.Nop(), bot)

	require.NoError(t, notifier.EditMessage(42, 1001, "updated"))

	require.Len(t, bot.sent, 1)
	edit, ok := bot.sent[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 1001, edit.MessageID)
	assert.Equal(t, "updated", edit.Text)
}

func TestNewTelegramNotifier_RequiresToken(t *testing.T) {
	_, err := NewTelegramNotifier(config.NewDefaultNotificationConfig(), zerolog.Nop())
	assert.Error(t, err)
}

func TestIsConflictError(t *testing.T) {
	assert.True(t, IsConflictError(&tgbotapi.Error{Code: 409, Message: "Conflict"}))
	assert.False(t, IsConflictError(&tgbotapi.Error{Code: 400, Message: "Bad Request"}))
	assert.False(t, IsConflictError(errors.New("409 somewhere in text")))
	assert.False(t, IsConflictError(nil))
}

func TestFormatChangeNotification_Increase(t *testing.T) {
	sub := &models.Subscription{GiftName: "Snoop Dogg", Model: "Swag Bag"}

	text := FormatChangeNotification(sub, 5, 9, "https://t.me/nft/SnoopDogg-42", "https://peek.tg/gifts?gift=Snoop+Dogg")

	assert.Contains(t, text, "Snoop Dogg")
	assert.Contains(t, text, "Swag Bag")
	assert.Contains(t, text, "📈")
	assert.Contains(t, text, "*5* → *9*")
	assert.Contains(t, text, "Difference: *4*")
	assert.Contains(t, text, "https://t.me/nft/SnoopDogg-42")
	assert.Contains(t, text, "https://peek.tg/gifts?gift=Snoop+Dogg")
}

func TestFormatChangeNotification_DecreaseWithoutLinks(t *testing.T) {
	sub := &models.Subscription{GiftName: "Plush Pepe"}

	text := FormatChangeNotification(sub, 9, 5, "", "")

	assert.Contains(t, text, "📉")
	assert.Contains(t, text, "*9* → *5*")
	assert.Contains(t, text, "Difference: *4*")
	assert.NotContains(t, text, "View latest gift")
	assert.NotContains(t, text, "Model:")
}

func TestFormatMonitoringStats(t *testing.T) {
	stats := models.MonitoringStats{
		TotalChecks:          10,
		SuccessfulChecks:     8,
		FailedChecks:         2,
		TotalChangesDetected: 3,
		LastCheck:            time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		IsRunning:            true,
	}

	text := FormatMonitoringStats(stats)

	assert.Contains(t, text, "running")
	assert.Contains(t, text, "Total checks: 10")
	assert.Contains(t, text, "Successful: 8")
	assert.Contains(t, text, "Failed: 2")
	assert.Contains(t, text, "Changes detected: 3")
	assert.Contains(t, text, "2025-06-01T12:00:00Z")
}

func TestFormatMonitoringStats_NeverChecked(t *testing.T) {
	text := FormatMonitoringStats(models.MonitoringStats{})
	assert.Contains(t, text, "stopped")
	assert.Contains(t, text, "Last check: never")
}

func TestBuildSearchURL(t *testing.T) {
	criteria := models.SearchCriteria{GiftName: "Snoop Dogg", Model: "Swag Bag"}

	u := BuildSearchURL("https://peek.tg/gifts", criteria)

	assert.Contains(t, u, "https://peek.tg/gifts?")
	assert.Contains(t, u, "gift=Snoop+Dogg")
	assert.Contains(t, u, "model=Swag+Bag")
	assert.NotContains(t, u, "background=")
	assert.NotContains(t, u, "pattern=")
}
