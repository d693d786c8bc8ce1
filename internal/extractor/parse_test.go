package extractor

import (
	"regexp"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCountText(t *testing.T) {
	tests := []struct {
		text  string
		count int
		ok    bool
	}{
		{"Найдено: 1,234", 1234, true},
		{"Found: 42", 42, true},
		{"17", 17, true},
		{"  8 items ", 8, true},
		{"no numbers here", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			count, ok := parseCountText(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.count, count)
		})
	}
}

func TestFoundCountTextPattern(t *testing.T) {
	m := foundCountText.FindStringSubmatch("Найдено: 1,234 подарков")
	require.NotNil(t, m)
	assert.Equal(t, "1,234", m[1])

	m = foundCountText.FindStringSubmatch("Found: 7")
	require.NotNil(t, m)
	assert.Equal(t, "7", m[1])

	assert.Nil(t, foundCountText.FindStringSubmatch("Found nothing"))
}

func TestExtractItem(t *testing.T) {
	html := `<div class="gift-card" data-id="snoop-42">
		<h3>Snoop Dogg #42</h3>
		<img src="https://peek.tg/img/snoop-42.webp">
		<span class="rarity">1.5%</span>
	</div>`
	card := parseCard(t, html)

	item := extractItem(card, 0)

	assert.Equal(t, "snoop-42", item.ID)
	assert.Equal(t, "Snoop Dogg #42", item.Name)
	assert.Equal(t, "https://peek.tg/img/snoop-42.webp", item.ImageURL)
	assert.Equal(t, "1.5%", item.Rarity)
}

func TestExtractItem_FallbackFields(t *testing.T) {
	card := parseCard(t, `<div class="gift-card"><span>nothing useful</span></div>`)

	item := extractItem(card, 3)

	assert.Equal(t, "item-3", item.ID)
	assert.Equal(t, "Unknown Gift", item.Name)
	assert.Empty(t, item.ImageURL)
	assert.Empty(t, item.Rarity)
}

func TestExtractItem_IDFromElementID(t *testing.T) {
	card := parseCard(t, `<div id="gift-7" class="gift-card"><div class="item-name">Plush Pepe</div></div>`)

	item := extractItem(card, 0)

	assert.Equal(t, "gift-7", item.ID)
	assert.Equal(t, "Plush Pepe", item.Name)
}

func TestOptionMatchers_EscapesRegexMetacharacters(t *testing.T) {
	matchers := optionMatchers("Santa (Rare) +1")
	require.NotEmpty(t, matchers)

	re, err := regexp.Compile(matchers[0].Text)
	require.NoError(t, err)
	assert.True(t, re.MatchString("Santa (Rare) +1"))
	assert.False(t, re.MatchString("Santa Rare 1"))
}

func TestDropdownButtonMatchers_OrderedByPrecision(t *testing.T) {
	matchers := dropdownButtonMatchers("All gifts", "Gift")
	require.NotEmpty(t, matchers)
	assert.Equal(t, `button[aria-haspopup="listbox"]`, matchers[0].Selector)
	assert.Equal(t, "All gifts", matchers[0].Text)
}

func TestGiftPagePattern(t *testing.T) {
	m := giftPagePattern.FindStringSubmatch("https://peek.tg/gifts/SnoopDogg-42?ref=search")
	require.NotNil(t, m)
	assert.Equal(t, "SnoopDogg-42", m[1])

	assert.Nil(t, giftPagePattern.FindStringSubmatch("https://peek.tg/search"))
}

func parseCard(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Find("div").First()
}
