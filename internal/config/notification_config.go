package config

// NotificationConfig defines configuration for Telegram notifications
type NotificationConfig struct {
	TelegramBotToken string `json:"telegram_bot_token,omitempty" yaml:"telegram_bot_token,omitempty"`
	ParseMode        string `json:"parse_mode,omitempty" yaml:"parse_mode,omitempty" validate:"omitempty,oneof=Markdown MarkdownV2 HTML"`
	// CatalogURL is the public search page used to build "view all" links.
	CatalogURL string `json:"catalog_url,omitempty" yaml:"catalog_url,omitempty" validate:"omitempty,url"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		ParseMode:  "Markdown",
		CatalogURL: "https://peek.tg/gifts",
	}
}
