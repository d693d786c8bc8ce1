package config

// ExtractorConfig defines configuration for the browser-driven extractor
type ExtractorConfig struct {
	BaseURL            string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	PageTimeoutSecs    int    `json:"page_timeout_secs,omitempty" yaml:"page_timeout_secs,omitempty" validate:"omitempty,min=1"`
	Headless           bool   `json:"headless" yaml:"headless"`
	ChromePath         string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	UserAgent          string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	WindowWidth        int    `json:"window_width,omitempty" yaml:"window_width,omitempty" validate:"omitempty,min=1"`
	WindowHeight       int    `json:"window_height,omitempty" yaml:"window_height,omitempty" validate:"omitempty,min=1"`
	MaxExtractedItems  int    `json:"max_extracted_items,omitempty" yaml:"max_extracted_items,omitempty" validate:"omitempty,min=1"`
	DropdownSettleMs   int    `json:"dropdown_settle_ms,omitempty" yaml:"dropdown_settle_ms,omitempty" validate:"omitempty,min=0"`
	ResultsWaitSecs    int    `json:"results_wait_secs,omitempty" yaml:"results_wait_secs,omitempty" validate:"omitempty,min=1"`
	DisableSubresource bool   `json:"disable_subresources" yaml:"disable_subresources"`
}

// NewDefaultExtractorConfig creates default extractor configuration
func NewDefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		BaseURL:            "https://peek.tg/search",
		PageTimeoutSecs:    30,
		Headless:           true,
		UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		WindowWidth:        1920,
		WindowHeight:       1080,
		MaxExtractedItems:  10,
		DropdownSettleMs:   1000,
		ResultsWaitSecs:    10,
		DisableSubresource: true,
	}
}
