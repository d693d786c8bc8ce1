package config

// MonitorConfig defines configuration for the monitoring scheduler
type MonitorConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// CronExpression drives the cycle schedule. When empty, Frequency is
	// resolved through MonitoringFrequencies instead.
	CronExpression string `json:"cron_expression,omitempty" yaml:"cron_expression,omitempty" validate:"omitempty,cronexpr"`
	Frequency      string `json:"frequency,omitempty" yaml:"frequency,omitempty" validate:"omitempty,frequency"`

	SubscriptionDelayMs int `json:"subscription_delay_ms,omitempty" yaml:"subscription_delay_ms,omitempty" validate:"omitempty,min=0"`
	NotificationDelayMs int `json:"notification_delay_ms,omitempty" yaml:"notification_delay_ms,omitempty" validate:"omitempty,min=0"`
}

// MonitoringFrequencies maps friendly frequency names to cron expressions.
var MonitoringFrequencies = map[string]string{
	"every_5_minutes":  "*/5 * * * *",
	"every_15_minutes": "*/15 * * * *",
	"every_30_minutes": "*/30 * * * *",
	"every_hour":       "0 * * * *",
	"every_2_hours":    "0 */2 * * *",
	"every_6_hours":    "0 */6 * * *",
	"every_12_hours":   "0 */12 * * *",
	"daily":            "0 0 * * *",
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enabled:             true,
		CronExpression:      "*/15 * * * *",
		SubscriptionDelayMs: 2000,
		NotificationDelayMs: 1000,
	}
}

// ResolveCronExpression returns the effective cron expression, preferring an
// explicit expression over a frequency preset.
func (mc MonitorConfig) ResolveCronExpression() string {
	if mc.CronExpression != "" {
		return mc.CronExpression
	}
	if expr, ok := MonitoringFrequencies[mc.Frequency]; ok {
		return expr
	}
	return NewDefaultMonitorConfig().CronExpression
}
