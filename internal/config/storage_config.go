package config

// StorageConfig defines configuration for the sqlite datastore
type StorageConfig struct {
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	// HistoryRetentionDays bounds the monitoring history log; 0 disables the
	// retention sweep.
	HistoryRetentionDays int `json:"history_retention_days,omitempty" yaml:"history_retention_days,omitempty" validate:"omitempty,min=0"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		DBPath:               "data/giftwatch.db",
		HistoryRetentionDays: 30,
	}
}
