package models

import "time"

// MonitoringStats holds process-wide monitoring counters. Mutated only by the
// scheduler during cycles; everything else reads snapshots.
type MonitoringStats struct {
	TotalChecks          int64
	SuccessfulChecks     int64
	FailedChecks         int64
	TotalChangesDetected int64
	LastCheck            time.Time
	IsRunning            bool
}

// ExtractorStats holds counters for the browser-driven extractor.
type ExtractorStats struct {
	TotalRequests       int64
	SuccessfulRequests  int64
	FailedRequests      int64
	AverageResponseTime time.Duration
	LastRequestTime     time.Time
}
