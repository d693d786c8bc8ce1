package models

import "time"

// GiftItem is a best-effort summary of a single catalog item extracted from a
// result card. Fields other than ID and Name may be empty when the card did
// not expose them.
type GiftItem struct {
	ID       string
	Name     string
	ImageURL string
	Rarity   string
}

// SearchResult is the outcome of one extraction run. It is produced fresh on
// every search and never persisted directly; only its count (and the derived
// changed flag) reach the history store.
type SearchResult struct {
	Count     int
	Items     []GiftItem
	Criteria  SearchCriteria
	Timestamp time.Time
}
