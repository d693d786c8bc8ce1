package searcher

import (
	"context"
	"time"

	"github.com/aleister1102/giftwatch/internal/config"
	"github.com/aleister1102/giftwatch/internal/errorwrapper"
	"github.com/aleister1102/giftwatch/internal/models"
	"github.com/rs/zerolog"
)

// Extractor is the browser-driven search collaborator.
type Extractor interface {
	Search(ctx context.Context, criteria models.SearchCriteria) (*models.SearchResult, error)
	LatestItemLink(ctx context.Context, criteria models.SearchCriteria) (string, error)
}

// HistoryStore is the slice of the datastore the searcher needs: reading the
// baseline and appending accepted observations.
type HistoryStore interface {
	LatestHistoryFor(subscriptionID int64) (*models.MonitoringHistoryRecord, error)
	AppendHistory(subscriptionID int64, count int, changed bool) (*models.MonitoringHistoryRecord, error)
}

// SearchService wraps the extractor with retry, plausibility filtering and
// confirmation-read change detection. The extractor scrapes a UI not built
// for automation, so a count is only trusted when it is both plausible and
// reproducible.
type SearchService struct {
	config    config.SearcherConfig
	logger    zerolog.Logger
	extractor Extractor
	history   HistoryStore
}

// NewSearchService creates a new reliability-checked search service.
func NewSearchService(cfg config.SearcherConfig, logger zerolog.Logger, extractor Extractor, history HistoryStore) *SearchService {
	return &SearchService{
		config:    cfg,
		logger:    logger.With().Str("component", "SearchService").Logger(),
		extractor: extractor,
		history:   history,
	}
}

// SearchWithRetry retries the extractor up to the configured attempt count
// with a fixed delay, surfacing the last error when all attempts fail.
func (s *SearchService) SearchWithRetry(ctx context.Context, criteria models.SearchCriteria) (*models.SearchResult, error) {
	var lastErr error

	for attempt := 1; attempt <= s.config.RetryAttempts; attempt++ {
		result, err := s.extractor.Search(ctx, criteria)
		if err == nil {
			return result, nil
		}
		lastErr = err
		s.logger.Warn().Err(err).
			Int("attempt", attempt).
			Int("max_attempts", s.config.RetryAttempts).
			Str("criteria", criteria.String()).
			Msg("Search attempt failed")

		if attempt < s.config.RetryAttempts {
			select {
			case <-time.After(time.Duration(s.config.RetryDelayMs) * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	if lastErr == nil {
		lastErr = errorwrapper.NewError("all %d search attempts exhausted", s.config.RetryAttempts)
	}
	return nil, lastErr
}

// LatestItemLink resolves the deep link to the most recent matching item.
func (s *SearchService) LatestItemLink(ctx context.Context, criteria models.SearchCriteria) (string, error) {
	return s.extractor.LatestItemLink(ctx, criteria)
}
