package notifier

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aleister1102/giftwatch/internal/models"
)

// FormatChangeNotification builds the Markdown body of a count-change
// notification: filter summary, old → new with direction, and optional links
// to the latest item and to the full search.
func FormatChangeNotification(sub *models.Subscription, oldCount, newCount int, giftLink, searchURL string) string {
	direction := "📈"
	changeText := "increased"
	if newCount < oldCount {
		direction = "📉"
		changeText = "decreased"
	}

	var b strings.Builder
	b.WriteString("🎁 *Gift count changed*\n\n")
	fmt.Fprintf(&b, "🎯 *Gift:* %s\n", sub.GiftName)
	if sub.Model != "" {
		fmt.Fprintf(&b, "🤖 *Model:* %s\n", sub.Model)
	}
	if sub.Background != "" {
		fmt.Fprintf(&b, "🎨 *Background:* %s\n", sub.Background)
	}
	if sub.Pattern != "" {
		fmt.Fprintf(&b, "🔍 *Pattern:* %s\n", sub.Pattern)
	}

	diff := newCount - oldCount
	if diff < 0 {
		diff = -diff
	}
	fmt.Fprintf(&b, "\n%s Count %s: *%d* → *%d*\n", direction, changeText, oldCount, newCount)
	fmt.Fprintf(&b, "📊 Difference: *%d*\n", diff)

	if giftLink != "" {
		fmt.Fprintf(&b, "\n🎁 [View latest gift](%s)", giftLink)
	}
	if searchURL != "" {
		fmt.Fprintf(&b, "\n🔗 [View all matches](%s)", searchURL)
	}

	return b.String()
}

// FormatMonitoringStats builds the body of a live stats display message.
func FormatMonitoringStats(stats models.MonitoringStats) string {
	state := "⏹️ stopped"
	if stats.IsRunning {
		state = "▶️ running"
	}

	lastCheck := "never"
	if !stats.LastCheck.IsZero() {
		lastCheck = stats.LastCheck.Format(time.RFC3339)
	}

	var b strings.Builder
	b.WriteString("📊 *Monitoring statistics*\n\n")
	fmt.Fprintf(&b, "State: %s\n", state)
	fmt.Fprintf(&b, "Total checks: %d\n", stats.TotalChecks)
	fmt.Fprintf(&b, "Successful: %d\n", stats.SuccessfulChecks)
	fmt.Fprintf(&b, "Failed: %d\n", stats.FailedChecks)
	fmt.Fprintf(&b, "Changes detected: %d\n", stats.TotalChangesDetected)
	fmt.Fprintf(&b, "Last check: %s\n", lastCheck)
	return b.String()
}

// BuildSearchURL generates the public catalog link reproducing the
// subscription's filters.
func BuildSearchURL(catalogURL string, criteria models.SearchCriteria) string {
	params := url.Values{}
	params.Set("gift", criteria.GiftName)
	if criteria.Model != "" {
		params.Set("model", criteria.Model)
	}
	if criteria.Background != "" {
		params.Set("background", criteria.Background)
	}
	if criteria.Pattern != "" {
		params.Set("pattern", criteria.Pattern)
	}
	return catalogURL + "?" + params.Encode()
}
