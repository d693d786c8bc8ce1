package models

import "time"

// MonitoringHistoryRecord is one accepted count observation for a
// subscription. Rows are append-only; the most recent row is the baseline for
// the next comparison.
type MonitoringHistoryRecord struct {
	ID             int64
	SubscriptionID int64
	Count          int
	Changed        bool
	CheckedAt      time.Time
}

// ChangeCheckOutcome is the result of a reliability-checked comparison of one
// subscription against its baseline.
type ChangeCheckOutcome struct {
	Subscription *Subscription
	Changed      bool
	OldCount     int
	NewCount     int
	Result       *SearchResult
}
