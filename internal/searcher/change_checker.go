package searcher

import (
	"context"
	"time"

	"github.com/aleister1102/giftwatch/internal/models"
)

// CheckSubscriptionChange compares one subscription against its baseline.
// The baseline is always the most recent persisted history count (0 when no
// history exists); a new history row is written only for reads that pass the
// plausibility filter, and a differing count is additionally required to
// survive a confirmation read before it is accepted as a change.
func (s *SearchService) CheckSubscriptionChange(ctx context.Context, sub *models.Subscription) (*models.ChangeCheckOutcome, error) {
	oldCount := 0
	latest, err := s.history.LatestHistoryFor(sub.ID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		oldCount = latest.Count
	}

	criteria := sub.Criteria()
	result, err := s.SearchWithRetry(ctx, criteria)
	if err != nil {
		return nil, err
	}
	newCount := result.Count

	if !s.isPlausible(oldCount, result) {
		s.logger.Warn().
			Int64("subscription_id", sub.ID).
			Int("count", newCount).
			Int("items", len(result.Items)).
			Int("baseline", oldCount).
			Msg("Implausible read discarded, baseline kept")
		return &models.ChangeCheckOutcome{
			Subscription: sub,
			Changed:      false,
			OldCount:     oldCount,
			NewCount:     oldCount,
			Result:       result,
		}, nil
	}

	changed := newCount != oldCount
	if changed {
		confirmed, secondCount := s.confirmWithSecondRead(ctx, criteria, newCount)
		if !confirmed {
			s.logger.Warn().
				Int64("subscription_id", sub.ID).
				Int("first_count", newCount).
				Int("second_count", secondCount).
				Msg("Change not confirmed by second read, baseline kept")
			return &models.ChangeCheckOutcome{
				Subscription: sub,
				Changed:      false,
				OldCount:     oldCount,
				NewCount:     oldCount,
				Result:       result,
			}, nil
		}
	}

	if _, err := s.history.AppendHistory(sub.ID, newCount, changed); err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info().
			Int64("subscription_id", sub.ID).
			Int("old_count", oldCount).
			Int("new_count", newCount).
			Msg("Change detected and confirmed")
	}

	return &models.ChangeCheckOutcome{
		Subscription: sub,
		Changed:      changed,
		OldCount:     oldCount,
		NewCount:     newCount,
		Result:       result,
	}, nil
}

// isPlausible rejects reads that are internally inconsistent or implausibly
// large relative to history. The jump ratio and upper bound are heuristics
// carried in config, not fixed law.
func (s *SearchService) isPlausible(baseline int, result *models.SearchResult) bool {
	count := result.Count
	items := len(result.Items)

	// A zero count while cards rendered, or a positive count with no cards,
	// is a scraper miss rather than a real observation.
	if count == 0 && items > 0 {
		return false
	}
	if count > 0 && items == 0 {
		return false
	}

	if count < 0 || count > s.config.MaxReasonableCount {
		return false
	}

	if baseline > 0 && count >= baseline*s.config.JumpRatio {
		return false
	}

	return true
}

// confirmWithSecondRead repeats the search after a stabilization delay and
// accepts the change only when the two reads agree within the tolerance. A
// failing second read counts as unconfirmed.
func (s *SearchService) confirmWithSecondRead(ctx context.Context, criteria models.SearchCriteria, firstCount int) (bool, int) {
	select {
	case <-time.After(time.Duration(s.config.ConfirmDelayMs) * time.Millisecond):
	case <-ctx.Done():
		return false, 0
	}

	second, err := s.SearchWithRetry(ctx, criteria)
	if err != nil {
		return false, 0
	}

	diff := second.Count - firstCount
	if diff < 0 {
		diff = -diff
	}
	return diff <= s.config.ConfirmTolerance, second.Count
}
