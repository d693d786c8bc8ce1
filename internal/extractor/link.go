package extractor

import (
	"context"
	"regexp"
	"time"

	"github.com/aleister1102/giftwatch/internal/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

var giftPagePattern = regexp.MustCompile(`/gifts/([^/?#]+)`)

// LatestItemLink performs the search and resolves a deep link to the most
// recently listed matching item. It is only called once a change is
// confirmed, so its extra page navigation stays off the hot path.
// An empty string with nil error means no link could be resolved.
func (e *Extractor) LatestItemLink(ctx context.Context, criteria models.SearchCriteria) (string, error) {
	start := time.Now()
	e.logger.Debug().Str("criteria", criteria.String()).Msg("Resolving latest item link")

	link, err := e.doLatestItemLink(ctx, criteria)
	latency := time.Since(start)
	e.stats.record(err == nil, latency)

	if err != nil {
		e.logger.Error().Err(err).Str("criteria", criteria.String()).Msg("Link extraction failed")
		return "", NewExtractionError(CodeLinkExtractionFailed, err.Error(), err)
	}

	if link == "" {
		e.logger.Debug().Str("criteria", criteria.String()).Msg("No item link found")
	} else {
		e.logger.Info().Str("criteria", criteria.String()).Str("link", link).Dur("latency", latency).Msg("Resolved latest item link")
	}
	return link, nil
}

func (e *Extractor) doLatestItemLink(ctx context.Context, criteria models.SearchCriteria) (string, error) {
	page, cleanup, err := e.browser.NewPage(ctx)
	if err != nil {
		return "", err
	}
	defer cleanup()

	if err := e.navigate(page); err != nil {
		return "", err
	}
	if _, err := e.performSearch(ctx, page, criteria); err != nil {
		return "", err
	}

	e.dismissOverlay(ctx, page)

	grid, ok := e.findFirst(page, resultGridMatchers)
	if !ok {
		e.logger.Warn().Msg("Result grid not found")
		return "", nil
	}

	cards, err := grid.Elements("div > div")
	if err != nil || len(cards) == 0 {
		e.logger.Warn().Msg("No result cards found in grid")
		return "", nil
	}

	// The most recently listed item is rendered last.
	lastCard := cards[len(cards)-1]
	wait := page.Timeout(time.Duration(e.config.PageTimeoutSecs) * time.Second).
		WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := lastCard.Click(proto.InputMouseButtonLeft, 1); err != nil {
		// Overlay remnants can still intercept pointer events.
		if _, evalErr := lastCard.Eval(`() => this.click()`); evalErr != nil {
			e.logger.Warn().Err(evalErr).Msg("Failed to click last result card")
			return "", nil
		}
	}
	wait()

	if has, anchor, err := page.Has(`a[href*="t.me/nft/"]`); err == nil && has {
		if href, err := anchor.Attribute("href"); err == nil && href != nil && *href != "" {
			return *href, nil
		}
	}

	// The detail view's own URL carries the item slug as a fallback.
	info, err := page.Info()
	if err != nil {
		return "", nil
	}
	if m := giftPagePattern.FindStringSubmatch(info.URL); m != nil {
		return "https://t.me/nft/" + m[1], nil
	}

	return "", nil
}

// dismissOverlay clears a blocking subscription overlay: close-button
// heuristics first, Escape next, forced node removal last.
func (e *Extractor) dismissOverlay(ctx context.Context, page *rod.Page) {
	has, _, err := page.Has("#subscribe-modal-portal")
	if err != nil || !has {
		return
	}

	e.logger.Debug().Msg("Dismissing subscription overlay")
	closed := false
	if button, ok := e.findFirst(page, overlayCloseMatchers); ok {
		if err := button.Click(proto.InputMouseButtonLeft, 1); err == nil {
			closed = true
			e.sleep(ctx, time.Second)
		}
	}

	if !closed {
		if err := page.Keyboard.Press(input.Escape); err == nil {
			e.sleep(ctx, time.Second)
		}
	}

	// Remove whatever is left of the portal and its backdrop.
	_, _ = page.Eval(`() => {
		const nodes = document.querySelectorAll(
			'#subscribe-modal-portal, [id*="modal"], [class*="modal"], [id*="subscribe"], [class*="overlay"], [class*="backdrop"]');
		nodes.forEach(node => node.remove());
	}`)

	if stillHas, _, err := page.Has("#subscribe-modal-portal"); err == nil && stillHas {
		e.logger.Warn().Msg("Subscription overlay still present, continuing anyway")
	}
}
