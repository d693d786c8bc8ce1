package config

// SearcherConfig defines configuration for the reliability-checked search
// service: retry behavior, plausibility filtering and change confirmation.
type SearcherConfig struct {
	RetryAttempts int `json:"retry_attempts,omitempty" yaml:"retry_attempts,omitempty" validate:"omitempty,min=1"`
	RetryDelayMs  int `json:"retry_delay_ms,omitempty" yaml:"retry_delay_ms,omitempty" validate:"omitempty,min=0"`

	// ConfirmDelayMs is the stabilization pause before the confirmation read.
	ConfirmDelayMs int `json:"confirm_delay_ms,omitempty" yaml:"confirm_delay_ms,omitempty" validate:"omitempty,min=0"`
	// ConfirmTolerance is the max difference between two reads still treated
	// as the same observation.
	ConfirmTolerance int `json:"confirm_tolerance,omitempty" yaml:"confirm_tolerance,omitempty" validate:"omitempty,min=0"`

	// MaxReasonableCount is the upper bound above which a read is discarded.
	MaxReasonableCount int `json:"max_reasonable_count,omitempty" yaml:"max_reasonable_count,omitempty" validate:"omitempty,min=1"`
	// JumpRatio rejects reads of at least JumpRatio times the baseline.
	JumpRatio int `json:"jump_ratio,omitempty" yaml:"jump_ratio,omitempty" validate:"omitempty,min=2"`
}

// NewDefaultSearcherConfig creates default searcher configuration
func NewDefaultSearcherConfig() SearcherConfig {
	return SearcherConfig{
		RetryAttempts:      3,
		RetryDelayMs:       2000,
		ConfirmDelayMs:     1500,
		ConfirmTolerance:   1,
		MaxReasonableCount: 1000000,
		JumpRatio:          100,
	}
}
