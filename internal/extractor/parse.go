package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/giftwatch/internal/models"
	"github.com/go-rod/rod"
)

// maxCardCount caps the card-counting fallback so a selector matching the
// whole page cannot produce a pathological count.
const maxCardCount = 100

var (
	numberPattern    = regexp.MustCompile(`[\d,]+`)
	foundCountText   = regexp.MustCompile(`(?:Найдено|Found):\s*([\d,]+)`)
)

// extractCount reads the result count: an authoritative counter element
// first, then a textual "Found: N" marker, then a capped card count, and
// zero when nothing matches.
func (e *Extractor) extractCount(page *rod.Page) int {
	for _, m := range countElementMatchers {
		has, el, err := page.Has(m.Selector)
		if err != nil || !has {
			continue
		}
		text, err := el.Text()
		if err != nil {
			continue
		}
		if count, ok := parseCountText(text); ok {
			e.logger.Debug().Str("selector", m.Selector).Int("count", count).Msg("Count from counter element")
			return count
		}
	}

	if el, ok := e.findFirst(page, foundTextMatchers); ok {
		if text, err := el.Text(); err == nil {
			if m := foundCountText.FindStringSubmatch(text); m != nil {
				if count, ok := parseCountText(m[1]); ok {
					e.logger.Debug().Int("count", count).Msg("Count from found-text marker")
					return count
				}
			}
		}
	}

	for _, sel := range itemCardCountSelectors {
		elements, err := page.Elements(sel)
		if err != nil {
			continue
		}
		if n := len(elements); n > 0 && n < maxCardCount {
			e.logger.Debug().Str("selector", sel).Int("count", n).Msg("Count from rendered cards")
			return n
		}
	}

	e.logger.Warn().Msg("Could not determine result count, defaulting to 0")
	return 0
}

// parseCountText extracts an integer with thousands separators stripped.
func parseCountText(text string) (int, bool) {
	match := numberPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	count, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0, false
	}
	return count, true
}

// extractItems parses up to MaxExtractedItems item summaries out of the
// rendered result cards. Failures on individual cards just omit that card.
func (e *Extractor) extractItems(page *rod.Page) []models.GiftItem {
	html, err := page.HTML()
	if err != nil {
		e.logger.Warn().Err(err).Msg("Failed to read page HTML for item extraction")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		e.logger.Warn().Err(err).Msg("Failed to parse page HTML")
		return nil
	}

	var cards *goquery.Selection
	for _, sel := range itemContainerSelectors {
		cards = doc.Find(sel)
		if cards.Length() > 0 {
			break
		}
	}
	if cards == nil || cards.Length() == 0 {
		return nil
	}

	items := make([]models.GiftItem, 0, e.config.MaxExtractedItems)
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if len(items) >= e.config.MaxExtractedItems {
			return false
		}
		items = append(items, extractItem(card, i))
		return true
	})
	return items
}

func extractItem(card *goquery.Selection, index int) models.GiftItem {
	id, ok := card.Attr("data-id")
	if !ok || id == "" {
		id, _ = card.Attr("id")
	}
	if id == "" {
		id = fmt.Sprintf("item-%d", index)
	}

	name := strings.TrimSpace(card.Find(`h1, h2, h3, [class*="name"], [class*="title"]`).First().Text())
	if name == "" {
		name = "Unknown Gift"
	}

	imageURL, _ := card.Find("img").First().Attr("src")
	rarity := strings.TrimSpace(card.Find(`[class*="rarity"], [class*="percent"]`).First().Text())

	return models.GiftItem{
		ID:       strings.TrimSpace(id),
		Name:     name,
		ImageURL: imageURL,
		Rarity:   rarity,
	}
}
