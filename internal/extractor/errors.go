package extractor

import (
	"fmt"
	"time"
)

// Extraction error codes
const (
	CodeSearchFailed         = "SEARCH_FAILED"
	CodeNavigationFailed     = "NAVIGATION_FAILED"
	CodeSearchButtonNotFound = "SEARCH_BUTTON_NOT_FOUND"
	CodeLinkExtractionFailed = "LINK_EXTRACTION_FAILED"
)

// ExtractionError describes a failure inside the extractor pipeline. It is
// retried by the searcher up to the configured attempt count before being
// surfaced.
type ExtractionError struct {
	Code      string
	Message   string
	Timestamp time.Time
	Wrapped   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error [%s]: %s", e.Code, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Wrapped
}

// NewExtractionError creates a new extraction error wrapping the cause.
func NewExtractionError(code, message string, cause error) *ExtractionError {
	return &ExtractionError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Wrapped:   cause,
	}
}
