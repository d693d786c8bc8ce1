package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/giftwatch/internal/config"
	"github.com/aleister1102/giftwatch/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	subs []*models.Subscription
	err  error
}

func (f *fakeStore) ListActiveSubscriptions() ([]*models.Subscription, error) {
	return f.subs, f.err
}

// fakeChecker maps subscription ID to an outcome or an error. A barrier, when
// set, blocks each check until released.
type fakeChecker struct {
	mu       sync.Mutex
	outcomes map[int64]*models.ChangeCheckOutcome
	errs     map[int64]error
	checked  []int64
	barrier  chan struct{}
	link     string
	linkErr  error
}

func (f *fakeChecker) CheckSubscriptionChange(_ context.Context, sub *models.Subscription) (*models.ChangeCheckOutcome, error) {
	if f.barrier != nil {
		<-f.barrier
	}
	f.mu.Lock()
	f.checked = append(f.checked, sub.ID)
	f.mu.Unlock()
	if err := f.errs[sub.ID]; err != nil {
		return nil, err
	}
	if outcome := f.outcomes[sub.ID]; outcome != nil {
		return outcome, nil
	}
	return &models.ChangeCheckOutcome{Subscription: sub, OldCount: 1, NewCount: 1}, nil
}

func (f *fakeChecker) LatestItemLink(context.Context, models.SearchCriteria) (string, error) {
	return f.link, f.linkErr
}

func (f *fakeChecker) checkedIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.checked...)
}

type sentMessage struct {
	UserID int64
	Text   string
}

type fakeMessenger struct {
	mu      sync.Mutex
	sent    []sentMessage
	edits   []sentMessage
	sendErr error
	editErr error
}

func (f *fakeMessenger) SendMessage(userID int64, text string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.sent = append(f.sent, sentMessage{UserID: userID, Text: text})
	return len(f.sent), nil
}

func (f *fakeMessenger) EditMessage(userID int64, _ int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, sentMessage{UserID: userID, Text: text})
	return nil
}

func testMonitorConfig() config.MonitorConfig {
	cfg := config.NewDefaultMonitorConfig()
	cfg.Enabled = true
	cfg.SubscriptionDelayMs = 0
	cfg.NotificationDelayMs = 0
	return cfg
}

func newTestService(store *fakeStore, checker *fakeChecker, messenger *fakeMessenger) *MonitoringService {
	return NewMonitoringService(
		testMonitorConfig(),
		config.NewDefaultNotificationConfig(),
		zerolog.Nop(),
		store,
		checker,
		messenger,
	)
}

func sub(id, userID int64, giftName string) *models.Subscription {
	return &models.Subscription{ID: id, UserID: userID, GiftName: giftName, IsActive: true}
}

func TestMonitoringService_RunCycle_NotifiesConfirmedChanges(t *testing.T) {
	s1 := sub(1, 100, "Snoop Dogg")
	s2 := sub(2, 200, "Plush Pepe")
	store := &fakeStore{subs: []*models.Subscription{s1, s2}}
	checker := &fakeChecker{
		outcomes: map[int64]*models.ChangeCheckOutcome{
			1: {Subscription: s1, Changed: true, OldCount: 5, NewCount: 9},
			2: {Subscription: s2, Changed: false, OldCount: 3, NewCount: 3},
		},
		link: "https://t.me/nft/SnoopDogg-42",
	}
	messenger := &fakeMessenger{}
	service := newTestService(store, checker, messenger)

	service.RunCycle(context.Background())

	require.Len(t, messenger.sent, 1)
	assert.Equal(t, int64(100), messenger.sent[0].UserID)
	assert.Contains(t, messenger.sent[0].Text, "Snoop Dogg")
	assert.Contains(t, messenger.sent[0].Text, "https://t.me/nft/SnoopDogg-42")

	stats := service.GetStats()
	assert.Equal(t, int64(1), stats.TotalChecks)
	assert.Equal(t, int64(1), stats.SuccessfulChecks)
	assert.Equal(t, int64(0), stats.FailedChecks)
	assert.Equal(t, int64(1), stats.TotalChangesDetected)
}

func TestMonitoringService_RunCycle_FailingSubscriptionDoesNotStopOthers(t *testing.T) {
	subs := []*models.Subscription{sub(1, 100, "A"), sub(2, 100, "B"), sub(3, 100, "C")}
	store := &fakeStore{subs: subs}
	checker := &fakeChecker{
		errs: map[int64]error{2: errors.New("browser crashed")},
		outcomes: map[int64]*models.ChangeCheckOutcome{
			3: {Subscription: subs[2], Changed: true, OldCount: 1, NewCount: 2},
		},
	}
	messenger := &fakeMessenger{}
	service := newTestService(store, checker, messenger)

	service.RunCycle(context.Background())

	assert.Equal(t, []int64{1, 2, 3}, checker.checkedIDs())
	require.Len(t, messenger.sent, 1, "the change after the failing subscription must still be notified")
	stats := service.GetStats()
	assert.Equal(t, int64(1), stats.SuccessfulChecks, "per-subscription failures do not fail the cycle")
}

func TestMonitoringService_RunCycle_StoreErrorFailsCycle(t *testing.T) {
	store := &fakeStore{err: errors.New("database is locked")}
	service := newTestService(store, &fakeChecker{}, &fakeMessenger{})

	service.RunCycle(context.Background())

	stats := service.GetStats()
	assert.Equal(t, int64(1), stats.TotalChecks)
	assert.Equal(t, int64(1), stats.FailedChecks)
	assert.Equal(t, int64(0), stats.SuccessfulChecks)
}

func TestMonitoringService_RunCycle_ConflictErrorSkippedSilently(t *testing.T) {
	s1 := sub(1, 100, "A")
	store := &fakeStore{subs: []*models.Subscription{s1}}
	checker := &fakeChecker{
		outcomes: map[int64]*models.ChangeCheckOutcome{
			1: {Subscription: s1, Changed: true, OldCount: 1, NewCount: 2},
		},
	}
	messenger := &fakeMessenger{sendErr: &tgbotapi.Error{Code: 409, Message: "Conflict"}}
	service := newTestService(store, checker, messenger)

	service.RunCycle(context.Background())

	stats := service.GetStats()
	assert.Equal(t, int64(1), stats.SuccessfulChecks, "a conflicting bot instance must not fail the cycle")
}

func TestMonitoringService_RunCycle_OverlapGuardSkipsTick(t *testing.T) {
	s1 := sub(1, 100, "A")
	store := &fakeStore{subs: []*models.Subscription{s1}}
	checker := &fakeChecker{barrier: make(chan struct{})}
	service := newTestService(store, checker, &fakeMessenger{})

	done := make(chan struct{})
	go func() {
		service.RunCycle(context.Background())
		close(done)
	}()

	// Wait until the first cycle is parked inside the checker, then fire the
	// overlapping tick: it must return immediately without checking anything.
	require.Eventually(t, func() bool {
		return service.cycleInProgress.Load()
	}, time.Second, time.Millisecond)

	service.RunCycle(context.Background())
	assert.Empty(t, checker.checkedIDs())

	close(checker.barrier)
	<-done

	stats := service.GetStats()
	assert.Equal(t, int64(1), stats.TotalChecks, "the skipped tick must not count as a check")
}

func TestMonitoringService_StatsDisplay_UpdatedAfterCycle(t *testing.T) {
	store := &fakeStore{}
	messenger := &fakeMessenger{}
	service := newTestService(store, &fakeChecker{}, messenger)
	service.RegisterStatsDisplay(100, 555)

	service.RunCycle(context.Background())

	require.Len(t, messenger.edits, 1)
	assert.Equal(t, int64(100), messenger.edits[0].UserID)
	assert.Contains(t, messenger.edits[0].Text, "Total checks")
}

func TestMonitoringService_StatsDisplay_DroppedOnEditFailure(t *testing.T) {
	store := &fakeStore{}
	messenger := &fakeMessenger{editErr: errors.New("message to edit not found")}
	service := newTestService(store, &fakeChecker{}, messenger)
	service.RegisterStatsDisplay(100, 555)

	service.RunCycle(context.Background())

	service.displayMu.Lock()
	_, registered := service.statsDisplays[100]
	service.displayMu.Unlock()
	assert.False(t, registered, "an uneditable display must be dropped")
}

func TestMonitoringService_StartStop(t *testing.T) {
	cfg := testMonitorConfig()
	cfg.CronExpression = "*/5 * * * *"
	service := NewMonitoringService(cfg, config.NewDefaultNotificationConfig(), zerolog.Nop(), &fakeStore{}, &fakeChecker{}, &fakeMessenger{})

	require.NoError(t, service.Start())
	assert.True(t, service.GetStats().IsRunning)

	// Idempotent second start.
	require.NoError(t, service.Start())

	service.Stop()
	assert.False(t, service.GetStats().IsRunning)
	service.Stop()
}

func TestMonitoringService_Start_InvalidCronExpression(t *testing.T) {
	cfg := testMonitorConfig()
	cfg.CronExpression = "not a cron expr"
	service := NewMonitoringService(cfg, config.NewDefaultNotificationConfig(), zerolog.Nop(), &fakeStore{}, &fakeChecker{}, &fakeMessenger{})

	assert.Error(t, service.Start())
}

func TestMonitoringService_Start_DisabledIsNoOp(t *testing.T) {
	cfg := testMonitorConfig()
	cfg.Enabled = false
	service := NewMonitoringService(cfg, config.NewDefaultNotificationConfig(), zerolog.Nop(), &fakeStore{}, &fakeChecker{}, &fakeMessenger{})

	require.NoError(t, service.Start())
	assert.False(t, service.GetStats().IsRunning)
}

func TestMonitoringService_UpdateSchedule(t *testing.T) {
	service := newTestService(&fakeStore{}, &fakeChecker{}, &fakeMessenger{})

	require.NoError(t, service.Start())
	defer service.Close()

	assert.Error(t, service.UpdateSchedule("garbage"))
	require.NoError(t, service.UpdateSchedule("0 * * * *"))
}
