package models

import "time"

// Subscription is a user's saved filter criteria monitored for count changes.
// Identity is immutable; the filter fields and active flag are owned by the
// datastore and may change between cycles.
type Subscription struct {
	ID         int64
	UserID     int64
	GiftName   string
	Model      string
	Background string
	Pattern    string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SearchCriteria is the pure input to the extractor, derived 1:1 from a
// subscription. Empty optional fields mean "any".
type SearchCriteria struct {
	GiftName   string
	Model      string
	Background string
	Pattern    string
}

// Criteria derives the extractor input from the subscription's filter fields.
func (s *Subscription) Criteria() SearchCriteria {
	return SearchCriteria{
		GiftName:   s.GiftName,
		Model:      s.Model,
		Background: s.Background,
		Pattern:    s.Pattern,
	}
}

// String returns a short human-readable description of the criteria.
func (c SearchCriteria) String() string {
	desc := c.GiftName
	if c.Model != "" {
		desc += " (" + c.Model + ")"
	}
	return desc
}
