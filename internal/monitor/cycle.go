package monitor

import (
	"context"
	"time"

	"github.com/aleister1102/giftwatch/internal/models"
	"github.com/aleister1102/giftwatch/internal/notifier"
)

// RunCycle executes one monitoring cycle: check every active subscription
// sequentially, dispatch notifications for confirmed changes, and push
// updated stats into registered displays. Per-subscription and
// per-notification failures are isolated; only a failure to load the
// subscription list fails the cycle.
func (m *MonitoringService) RunCycle(ctx context.Context) {
	if !m.cycleInProgress.CompareAndSwap(false, true) {
		m.logger.Warn().Msg("Previous cycle still in progress, skipping tick")
		return
	}
	defer m.cycleInProgress.Store(false)

	m.statsMu.Lock()
	m.stats.TotalChecks++
	m.stats.LastCheck = time.Now()
	m.statsMu.Unlock()

	m.logger.Info().Msg("Monitoring cycle started")

	subs, err := m.store.ListActiveSubscriptions()
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to load active subscriptions, cycle failed")
		m.statsMu.Lock()
		m.stats.FailedChecks++
		m.statsMu.Unlock()
		m.updateStatsDisplays()
		return
	}

	if len(subs) == 0 {
		m.logger.Info().Msg("No active subscriptions to monitor")
		m.statsMu.Lock()
		m.stats.SuccessfulChecks++
		m.statsMu.Unlock()
		m.updateStatsDisplays()
		return
	}

	m.logger.Info().Int("subscriptions", len(subs)).Msg("Checking subscriptions")

	outcomes := m.checkAllSubscriptions(ctx, subs)

	changed := make([]*models.ChangeCheckOutcome, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Changed {
			changed = append(changed, outcome)
		}
	}

	m.statsMu.Lock()
	m.stats.TotalChangesDetected += int64(len(changed))
	m.statsMu.Unlock()

	m.dispatchNotifications(ctx, changed)

	m.statsMu.Lock()
	m.stats.SuccessfulChecks++
	m.statsMu.Unlock()

	m.updateStatsDisplays()
	m.logger.Info().
		Int("checked", len(outcomes)).
		Int("changed", len(changed)).
		Msg("Monitoring cycle completed")
}

// checkAllSubscriptions checks each subscription in order, pausing between
// checks to avoid hammering the target site. A failing subscription is
// logged and skipped; later subscriptions still run.
func (m *MonitoringService) checkAllSubscriptions(ctx context.Context, subs []*models.Subscription) []*models.ChangeCheckOutcome {
	outcomes := make([]*models.ChangeCheckOutcome, 0, len(subs))

	for i, sub := range subs {
		if ctx.Err() != nil {
			m.logger.Info().Msg("Cycle cancelled, stopping subscription checks")
			break
		}

		outcome, err := m.checker.CheckSubscriptionChange(ctx, sub)
		if err != nil {
			m.logger.Error().Err(err).
				Int64("subscription_id", sub.ID).
				Str("gift_name", sub.GiftName).
				Msg("Subscription check failed, continuing with next")
		} else {
			outcomes = append(outcomes, outcome)
			if outcome.Changed {
				m.logger.Info().
					Int64("subscription_id", sub.ID).
					Str("gift_name", sub.GiftName).
					Int("old_count", outcome.OldCount).
					Int("new_count", outcome.NewCount).
					Msg("Change detected")
			}
		}

		if i < len(subs)-1 {
			m.sleep(ctx, time.Duration(m.config.SubscriptionDelayMs)*time.Millisecond)
		}
	}

	return outcomes
}

// dispatchNotifications notifies each owner of a confirmed change. The
// latest-item link is best effort; a conflicting-instance dispatch failure is
// skipped silently and other dispatch failures are logged without aborting
// the remaining notifications.
func (m *MonitoringService) dispatchNotifications(ctx context.Context, changed []*models.ChangeCheckOutcome) {
	if len(changed) == 0 {
		m.logger.Debug().Msg("No changes to notify")
		return
	}

	m.logger.Info().Int("notifications", len(changed)).Msg("Dispatching change notifications")

	sent, failed := 0, 0
	for i, outcome := range changed {
		if err := m.sendChangeNotification(ctx, outcome); err != nil {
			if notifier.IsConflictError(err) {
				m.logger.Warn().
					Int64("subscription_id", outcome.Subscription.ID).
					Msg("Conflicting bot instance, skipping notification")
			} else {
				failed++
				m.logger.Error().Err(err).
					Int64("subscription_id", outcome.Subscription.ID).
					Msg("Failed to dispatch notification")
			}
		} else {
			sent++
		}

		if i < len(changed)-1 {
			m.sleep(ctx, time.Duration(m.config.NotificationDelayMs)*time.Millisecond)
		}
	}

	m.logger.Info().Int("sent", sent).Int("failed", failed).Msg("Notification dispatch finished")
}

func (m *MonitoringService) sendChangeNotification(ctx context.Context, outcome *models.ChangeCheckOutcome) error {
	sub := outcome.Subscription
	criteria := sub.Criteria()

	giftLink := ""
	link, err := m.checker.LatestItemLink(ctx, criteria)
	if err != nil {
		m.logger.Warn().Err(err).
			Int64("subscription_id", sub.ID).
			Msg("Failed to resolve latest item link, notifying without it")
	} else {
		giftLink = link
	}

	searchURL := notifier.BuildSearchURL(m.notifyCfg.CatalogURL, criteria)
	text := notifier.FormatChangeNotification(sub, outcome.OldCount, outcome.NewCount, giftLink, searchURL)

	if _, err := m.messenger.SendMessage(sub.UserID, text); err != nil {
		return err
	}

	m.logger.Info().
		Int64("user_id", sub.UserID).
		Int64("subscription_id", sub.ID).
		Bool("with_link", giftLink != "").
		Msg("Notification sent")
	return nil
}

// sleep waits for d or until the context is cancelled.
func (m *MonitoringService) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
