package extractor

import "regexp"

// elementMatcher is one lookup heuristic for a UI element with no stable
// identifier. Matchers are evaluated lazily, in order, short-circuiting on
// the first hit; new heuristics are added to these lists, not to the lookup
// algorithm.
type elementMatcher struct {
	Selector string
	// Text, when set, is a JS regex the element's visible text must match.
	Text string
}

// filterField describes one custom dropdown-search widget on the catalog's
// search form. Placeholder is the caption the control shows before any value
// is selected; the matcher lists key off it because the widgets expose no
// native form controls.
type filterField struct {
	Name        string
	Placeholder string
	Buttons     []elementMatcher
}

func dropdownButtonMatchers(placeholder, label string) []elementMatcher {
	return []elementMatcher{
		{Selector: `button[aria-haspopup="listbox"]`, Text: placeholder},
		{Selector: `button[type="button"]`, Text: placeholder},
		{Selector: `button`, Text: placeholder},
		{Selector: `button span`, Text: placeholder},
		{Selector: `button[class*="relative"]`, Text: placeholder},
		{Selector: `button[class*="w-full"]`, Text: placeholder},
		{Selector: `label + button`, Text: label},
	}
}

// giftField is the required filter; the others refine the search.
var (
	giftField = filterField{
		Name:        "gift",
		Placeholder: "All gifts",
		Buttons:     dropdownButtonMatchers("All gifts", "Gift"),
	}
	modelField = filterField{
		Name:        "model",
		Placeholder: "All models",
		Buttons:     dropdownButtonMatchers("All models", "Model"),
	}
	backgroundField = filterField{
		Name:        "background",
		Placeholder: "All backgrounds",
		Buttons:     dropdownButtonMatchers("All backgrounds", "Background"),
	}
	patternField = filterField{
		Name:        "pattern",
		Placeholder: "All patterns",
		Buttons:     dropdownButtonMatchers("All patterns", "Pattern"),
	}
)

// searchInputMatchers locate the text input that appears inside an opened
// dropdown panel.
var searchInputMatchers = []elementMatcher{
	{Selector: `input[placeholder="Search..."]`},
	{Selector: `div[role="listbox"] input[type="text"]`},
	{Selector: `input[class*="bg-gray-700"]`},
}

// optionMatchers locate the filtered option whose visible text matches the
// desired value.
func optionMatchers(value string) []elementMatcher {
	quoted := regexp.QuoteMeta(value)
	return []elementMatcher{
		{Selector: `[role="option"]`, Text: quoted},
		{Selector: `div[role="option"]`, Text: quoted},
		{Selector: `div[class*="cursor-pointer"]`, Text: quoted},
	}
}

// searchButtonMatchers locate the search trigger.
var searchButtonMatchers = []elementMatcher{
	{Selector: `button`, Text: `Найти`},
	{Selector: `button`, Text: `Find`},
	{Selector: `button`, Text: `Search`},
	{Selector: `button[type="submit"]`},
	{Selector: `[data-testid*="search"]`},
	{Selector: `button[class*="search"]`},
}

// resultIndicatorMatchers signal that results have rendered. Absence of all
// of them is tolerated and treated as zero results.
var resultIndicatorMatchers = []elementMatcher{
	{Selector: `span.font-medium.text-white`},
	{Selector: `span`, Text: `Найдено:\s*[\d,]+`},
	{Selector: `span`, Text: `Found:\s*[\d,]+`},
	{Selector: `[class*="result"]`},
	{Selector: `[data-testid*="result"]`},
	{Selector: `[class*="gift"]`},
	{Selector: `[class*="item"]`},
}

// countElementMatchers locate an authoritative result counter.
var countElementMatchers = []elementMatcher{
	{Selector: `span.font-medium.text-white`},
	{Selector: `[class*="count"]`},
	{Selector: `[data-testid*="count"]`},
}

// foundTextMatchers locate a textual "Found: N" marker when no counter
// element exists.
var foundTextMatchers = []elementMatcher{
	{Selector: `span, div, p`, Text: `Найдено:\s*[\d,]+`},
	{Selector: `span, div, p`, Text: `Found:\s*[\d,]+`},
}

// itemCardCountSelectors are the last-resort count source: rendered cards.
var itemCardCountSelectors = []string{
	`img[src*="gift"]`,
	`img[alt*="gift"]`,
	`[class*="gift"] img`,
	`[class*="item"] img`,
}

// itemContainerSelectors locate card containers for item summary extraction.
var itemContainerSelectors = []string{
	`[class*="gift"]`,
	`[class*="item"]`,
	`[data-testid*="gift"]`,
}

// resultGridMatchers locate the grid of result cards on the search page.
var resultGridMatchers = []elementMatcher{
	{Selector: `div.grid[class*="grid-cols"]`},
	{Selector: `div.grid`},
}

// overlayCloseMatchers try to dismiss a blocking subscription overlay before
// falling back to Escape and node removal.
var overlayCloseMatchers = []elementMatcher{
	{Selector: `button[aria-label="Close"]`},
	{Selector: `button[aria-label="close"]`},
	{Selector: `button`, Text: `[×✕]`},
	{Selector: `button[class*="close"]`},
	{Selector: `button[class*="Close"]`},
	{Selector: `[data-testid="close"]`},
	{Selector: `.close-button`},
}
