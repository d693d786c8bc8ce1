package monitor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/aleister1102/giftwatch/internal/config"
	"github.com/aleister1102/giftwatch/internal/errorwrapper"
	"github.com/aleister1102/giftwatch/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SubscriptionStore is the slice of the datastore the scheduler needs.
type SubscriptionStore interface {
	ListActiveSubscriptions() ([]*models.Subscription, error)
}

// ChangeChecker is the reliability-checked search collaborator.
type ChangeChecker interface {
	CheckSubscriptionChange(ctx context.Context, sub *models.Subscription) (*models.ChangeCheckOutcome, error)
	LatestItemLink(ctx context.Context, criteria models.SearchCriteria) (string, error)
}

// Messenger delivers messages to subscription owners.
type Messenger interface {
	SendMessage(userID int64, text string) (int, error)
	EditMessage(userID int64, messageID int, text string) error
}

// MonitoringService runs the recurring change-detection cycle across all
// active subscriptions and dispatches notifications for confirmed changes.
type MonitoringService struct {
	config    config.MonitorConfig
	notifyCfg config.NotificationConfig
	logger    zerolog.Logger
	store     SubscriptionStore
	checker   ChangeChecker
	messenger Messenger

	ctx        context.Context
	cancelFunc context.CancelFunc

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	active  bool

	// cycleInProgress guards against a tick firing while the previous cycle
	// is still running; overlapping cycles would double-process
	// subscriptions against the shared browser session.
	cycleInProgress atomic.Bool

	statsMu sync.Mutex
	stats   models.MonitoringStats

	displayMu     sync.Mutex
	statsDisplays map[int64]int // userID -> messageID
}

// NewMonitoringService creates a new monitoring service.
func NewMonitoringService(
	cfg config.MonitorConfig,
	notifyCfg config.NotificationConfig,
	logger zerolog.Logger,
	store SubscriptionStore,
	checker ChangeChecker,
	messenger Messenger,
) *MonitoringService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MonitoringService{
		config:        cfg,
		notifyCfg:     notifyCfg,
		logger:        logger.With().Str("component", "MonitoringService").Logger(),
		store:         store,
		checker:       checker,
		messenger:     messenger,
		ctx:           ctx,
		cancelFunc:    cancel,
		statsDisplays: make(map[int64]int),
	}
}

// Start schedules the recurring monitoring cycle.
func (m *MonitoringService) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.config.Enabled {
		m.logger.Info().Msg("Monitoring disabled in configuration")
		return nil
	}
	if m.active {
		m.logger.Warn().Msg("Monitoring already running")
		return nil
	}

	expr := m.config.ResolveCronExpression()
	c := cron.New()
	entryID, err := c.AddFunc(expr, func() {
		m.RunCycle(m.ctx)
	})
	if err != nil {
		return errorwrapper.WrapError(err, "invalid cron expression "+expr)
	}

	c.Start()
	m.cron = c
	m.entryID = entryID
	m.active = true
	m.setRunning(true)
	m.logger.Info().Str("cron_expression", expr).Msg("Monitoring started")
	return nil
}

// Stop cancels the recurring schedule. A cycle already in flight runs to
// completion; only the timer is stopped.
func (m *MonitoringService) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return
	}

	m.cron.Stop()
	m.cron = nil
	m.active = false
	m.setRunning(false)

	m.displayMu.Lock()
	m.statsDisplays = make(map[int64]int)
	m.displayMu.Unlock()

	m.logger.Info().Msg("Monitoring stopped")
}

// Close stops the schedule and cancels any in-flight cycle. Used only at
// process shutdown.
func (m *MonitoringService) Close() {
	m.Stop()
	m.cancelFunc()
}

// UpdateSchedule swaps the cycle schedule for a new cron expression. When the
// service is running the old entry is replaced in place.
func (m *MonitoringService) UpdateSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return errorwrapper.WrapError(err, "invalid cron expression "+expr)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.config.CronExpression = expr
	if !m.active {
		return nil
	}

	m.cron.Remove(m.entryID)
	entryID, err := m.cron.AddFunc(expr, func() {
		m.RunCycle(m.ctx)
	})
	if err != nil {
		return errorwrapper.WrapError(err, "failed to reschedule")
	}
	m.entryID = entryID
	m.logger.Info().Str("cron_expression", expr).Msg("Monitoring schedule updated")
	return nil
}

// RunOneCycleNow triggers a single cycle outside the schedule, e.g. from an
// operator command. The in-progress guard still applies.
func (m *MonitoringService) RunOneCycleNow() {
	m.RunCycle(m.ctx)
}

// GetStats returns an immutable snapshot of the monitoring counters.
func (m *MonitoringService) GetStats() models.MonitoringStats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.stats
}

func (m *MonitoringService) setRunning(running bool) {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	m.stats.IsRunning = running
}
