package extractor

import (
	"context"
	"time"

	"github.com/aleister1102/giftwatch/internal/config"
	"github.com/aleister1102/giftwatch/internal/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// Extractor drives the catalog's search UI through the shared browser session
// and turns filter criteria into a count plus a best-effort item list.
type Extractor struct {
	config  config.ExtractorConfig
	logger  zerolog.Logger
	browser *BrowserManager
	stats   statsTracker
}

// NewExtractor creates a new extractor on top of a browser manager.
func NewExtractor(cfg config.ExtractorConfig, logger zerolog.Logger, browser *BrowserManager) *Extractor {
	return &Extractor{
		config:  cfg,
		logger:  logger.With().Str("component", "Extractor").Logger(),
		browser: browser,
	}
}

// Stats returns a snapshot of the extractor counters.
func (e *Extractor) Stats() models.ExtractorStats {
	return e.stats.Snapshot()
}

// ResetStats zeroes the extractor counters.
func (e *Extractor) ResetStats() {
	e.stats.Reset()
}

// Search opens a fresh page, drives the search form for the given criteria
// and extracts the result count and item summaries.
func (e *Extractor) Search(ctx context.Context, criteria models.SearchCriteria) (*models.SearchResult, error) {
	start := time.Now()
	e.logger.Debug().Str("criteria", criteria.String()).Msg("Starting search")

	result, err := e.doSearch(ctx, criteria)
	latency := time.Since(start)
	e.stats.record(err == nil, latency)

	if err != nil {
		e.logger.Error().Err(err).Str("criteria", criteria.String()).Dur("latency", latency).Msg("Search failed")
		return nil, NewExtractionError(CodeSearchFailed, err.Error(), err)
	}

	e.logger.Info().
		Str("criteria", criteria.String()).
		Int("count", result.Count).
		Int("items", len(result.Items)).
		Dur("latency", latency).
		Msg("Search completed")
	return result, nil
}

func (e *Extractor) doSearch(ctx context.Context, criteria models.SearchCriteria) (*models.SearchResult, error) {
	page, cleanup, err := e.browser.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := e.navigate(page); err != nil {
		return nil, err
	}

	return e.performSearch(ctx, page, criteria)
}

// navigate loads the catalog base URL and waits for network idle.
func (e *Extractor) navigate(page *rod.Page) error {
	nav := page.Timeout(time.Duration(e.config.PageTimeoutSecs) * time.Second)
	wait := nav.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := nav.Navigate(e.config.BaseURL); err != nil {
		return NewExtractionError(CodeNavigationFailed, "failed to navigate to "+e.config.BaseURL, err)
	}
	wait()
	return nil
}

func (e *Extractor) performSearch(ctx context.Context, page *rod.Page, criteria models.SearchCriteria) (*models.SearchResult, error) {
	e.fillSearchForm(ctx, page, criteria)

	if err := e.clickSearchButton(page); err != nil {
		return nil, err
	}

	e.waitForResults(ctx, page)

	count := e.extractCount(page)
	items := e.extractItems(page)

	return &models.SearchResult{
		Count:     count,
		Items:     items,
		Criteria:  criteria,
		Timestamp: time.Now(),
	}, nil
}

// fillSearchForm drives the custom dropdown widgets for the required gift
// filter and each present optional filter. A filter whose control cannot be
// located degrades the search instead of failing it.
func (e *Extractor) fillSearchForm(ctx context.Context, page *rod.Page, criteria models.SearchCriteria) {
	e.selectDropdownValue(ctx, page, giftField, criteria.GiftName)

	if criteria.Model != "" {
		e.selectDropdownValue(ctx, page, modelField, criteria.Model)
	}
	if criteria.Background != "" {
		e.selectDropdownValue(ctx, page, backgroundField, criteria.Background)
	}
	if criteria.Pattern != "" {
		e.selectDropdownValue(ctx, page, patternField, criteria.Pattern)
	}
}

// selectDropdownValue opens one dropdown widget, types the value into its
// search input and clicks the matching option.
func (e *Extractor) selectDropdownValue(ctx context.Context, page *rod.Page, field filterField, value string) {
	settle := time.Duration(e.config.DropdownSettleMs) * time.Millisecond

	button, ok := e.findFirst(page, field.Buttons)
	if !ok {
		e.logger.Warn().Str("field", field.Name).Msg("Dropdown control not found, skipping filter")
		return
	}
	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		e.logger.Warn().Err(err).Str("field", field.Name).Msg("Failed to open dropdown, skipping filter")
		return
	}
	e.sleep(ctx, settle)

	input, ok := e.findFirst(page, searchInputMatchers)
	if !ok {
		e.logger.Warn().Str("field", field.Name).Msg("Dropdown search input not found, skipping filter")
		e.closeDropdown(ctx, page)
		return
	}
	if err := input.Input(value); err != nil {
		e.logger.Warn().Err(err).Str("field", field.Name).Msg("Failed to type filter value")
		e.closeDropdown(ctx, page)
		return
	}

	// Let the panel re-filter its option list.
	e.sleep(ctx, settle+settle/2)

	option, ok := e.findFirst(page, optionMatchers(value))
	if !ok {
		e.logger.Warn().Str("field", field.Name).Str("value", value).Msg("Option not found in dropdown results")
	} else if err := option.Click(proto.InputMouseButtonLeft, 1); err != nil {
		e.logger.Warn().Err(err).Str("field", field.Name).Msg("Failed to click dropdown option")
	} else {
		e.logger.Debug().Str("field", field.Name).Str("value", value).Msg("Selected filter value")
	}

	e.closeDropdown(ctx, page)
}

// closeDropdown clicks outside the panel to dismiss it.
func (e *Extractor) closeDropdown(ctx context.Context, page *rod.Page) {
	_ = rod.Try(func() {
		page.MustElement("body").MustClick()
	})
	e.sleep(ctx, time.Duration(e.config.DropdownSettleMs)*time.Millisecond/2)
}

// clickSearchButton triggers the search; failing every fallback is the one
// form-driving step that hard-fails the search.
func (e *Extractor) clickSearchButton(page *rod.Page) error {
	button, ok := e.findFirst(page, searchButtonMatchers)
	if !ok {
		return NewExtractionError(CodeSearchButtonNotFound, "search button not found", nil)
	}
	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return NewExtractionError(CodeSearchButtonNotFound, "failed to click search button", err)
	}
	return nil
}

// waitForResults polls for any result indicator until the configured wait
// elapses. Absence of all indicators is tolerated; it reads as zero results.
func (e *Extractor) waitForResults(ctx context.Context, page *rod.Page) {
	deadline := time.Now().Add(time.Duration(e.config.ResultsWaitSecs) * time.Second)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return
		}
		if _, ok := e.findFirst(page, resultIndicatorMatchers); ok {
			// Extra pause so late-rendering cards settle.
			e.sleep(ctx, time.Second)
			return
		}
		e.sleep(ctx, 500*time.Millisecond)
	}
	e.logger.Warn().Msg("No result indicator appeared, continuing with empty results")
}

// findFirst evaluates matchers in order and returns the first element hit.
func (e *Extractor) findFirst(page *rod.Page, matchers []elementMatcher) (*rod.Element, bool) {
	for _, m := range matchers {
		var has bool
		var el *rod.Element
		var err error
		if m.Text != "" {
			has, el, err = page.HasR(m.Selector, m.Text)
		} else {
			has, el, err = page.Has(m.Selector)
		}
		if err == nil && has {
			return el, true
		}
	}
	return nil, false
}

// sleep waits for d or until the context is cancelled.
func (e *Extractor) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
