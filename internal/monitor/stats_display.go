package monitor

import "github.com/aleister1102/giftwatch/internal/notifier"

// RegisterStatsDisplay records a message that should be kept updated with
// live monitoring stats after each cycle.
func (m *MonitoringService) RegisterStatsDisplay(userID int64, messageID int) {
	m.displayMu.Lock()
	defer m.displayMu.Unlock()
	m.statsDisplays[userID] = messageID
}

// UnregisterStatsDisplay stops updating the user's stats message.
func (m *MonitoringService) UnregisterStatsDisplay(userID int64) {
	m.displayMu.Lock()
	defer m.displayMu.Unlock()
	delete(m.statsDisplays, userID)
}

// updateStatsDisplays pushes the current stats into every registered display
// message. A display that can no longer be edited (deleted message, blocked
// bot) is dropped from the registry.
func (m *MonitoringService) updateStatsDisplays() {
	m.displayMu.Lock()
	displays := make(map[int64]int, len(m.statsDisplays))
	for userID, messageID := range m.statsDisplays {
		displays[userID] = messageID
	}
	m.displayMu.Unlock()

	if len(displays) == 0 {
		return
	}

	text := notifier.FormatMonitoringStats(m.GetStats())

	for userID, messageID := range displays {
		if err := m.messenger.EditMessage(userID, messageID, text); err != nil {
			m.logger.Warn().Err(err).
				Int64("user_id", userID).
				Msg("Failed to update stats display, dropping registration")
			m.UnregisterStatsDisplay(userID)
		}
	}
}
