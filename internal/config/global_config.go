package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/giftwatch/internal/errorwrapper"
	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	ExtractorConfig    ExtractorConfig    `json:"extractor_config,omitempty" yaml:"extractor_config,omitempty"`
	SearcherConfig     SearcherConfig     `json:"searcher_config,omitempty" yaml:"searcher_config,omitempty"`
	MonitorConfig      MonitorConfig      `json:"monitor_config,omitempty" yaml:"monitor_config,omitempty"`
	NotificationConfig NotificationConfig `json:"notification_config,omitempty" yaml:"notification_config,omitempty"`
	StorageConfig      StorageConfig      `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	LogConfig          LogConfig          `json:"log_config,omitempty" yaml:"log_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ExtractorConfig:    NewDefaultExtractorConfig(),
		SearcherConfig:     NewDefaultSearcherConfig(),
		MonitorConfig:      NewDefaultMonitorConfig(),
		NotificationConfig: NewDefaultNotificationConfig(),
		StorageConfig:      NewDefaultStorageConfig(),
		LogConfig:          NewDefaultLogConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath and supports both
// JSON and YAML formats; YAML is preferred for .yaml/.yml extensions.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read config file "+filePath)
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse config content")
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "config validation failed")
	}

	return cfg, nil
}

func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".json":
		return json.Unmarshal(data, cfg)
	default:
		// Try YAML first, then JSON.
		if err := yaml.Unmarshal(data, cfg); err == nil {
			return nil
		}
		return json.Unmarshal(data, cfg)
	}
}
