package datastore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/giftwatch/internal/errorwrapper"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "giftwatch_test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createTestSubscription(t *testing.T, db *DB) int64 {
	t.Helper()
	sub, err := db.CreateSubscription(CreateSubscriptionInput{
		UserID:   42,
		GiftName: "Snoop Dogg",
		Model:    "Swag Bag",
		IsActive: true,
	})
	require.NoError(t, err)
	return sub.ID
}

func TestDB_CreateAndGetSubscription(t *testing.T) {
	db := newTestDB(t)

	created, err := db.CreateSubscription(CreateSubscriptionInput{
		UserID:     42,
		GiftName:   "Snoop Dogg",
		Model:      "Swag Bag",
		Background: "Purple",
		IsActive:   true,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := db.GetSubscription(created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, "Snoop Dogg", got.GiftName)
	assert.Equal(t, "Swag Bag", got.Model)
	assert.Equal(t, "Purple", got.Background)
	assert.Empty(t, got.Pattern)
	assert.True(t, got.IsActive)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestDB_GetSubscription_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetSubscription(999)
	require.Error(t, err)
	assert.ErrorIs(t, err, errorwrapper.ErrNotFound)
}

func TestDB_ListActiveSubscriptions(t *testing.T) {
	db := newTestDB(t)

	first := createTestSubscription(t, db)
	second := createTestSubscription(t, db)
	require.NoError(t, db.SetSubscriptionActive(second, false))

	active, err := db.ListActiveSubscriptions()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first, active[0].ID)
}

func TestDB_ListSubscriptionsByUser(t *testing.T) {
	db := newTestDB(t)

	createTestSubscription(t, db)
	_, err := db.CreateSubscription(CreateSubscriptionInput{UserID: 99, GiftName: "Plush Pepe", IsActive: true})
	require.NoError(t, err)

	subs, err := db.ListSubscriptionsByUser(42)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Snoop Dogg", subs[0].GiftName)
}

func TestDB_HistoryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	subID := createTestSubscription(t, db)

	record, err := db.AppendHistory(subID, 7, true)
	require.NoError(t, err)
	assert.Equal(t, 7, record.Count)
	assert.True(t, record.Changed)
	assert.False(t, record.CheckedAt.IsZero())

	latest, err := db.LatestHistoryFor(subID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, record.ID, latest.ID)
	assert.Equal(t, 7, latest.Count)
	assert.True(t, latest.Changed)
}

func TestDB_LatestHistoryFor_NoRows(t *testing.T) {
	db := newTestDB(t)
	subID := createTestSubscription(t, db)

	latest, err := db.LatestHistoryFor(subID)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestDB_LatestHistoryFor_ReturnsMostRecent(t *testing.T) {
	db := newTestDB(t)
	subID := createTestSubscription(t, db)

	_, err := db.AppendHistory(subID, 5, false)
	require.NoError(t, err)
	_, err = db.AppendHistory(subID, 9, true)
	require.NoError(t, err)

	latest, err := db.LatestHistoryFor(subID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 9, latest.Count)
}

func TestDB_ListHistoryFor_Limit(t *testing.T) {
	db := newTestDB(t)
	subID := createTestSubscription(t, db)

	for i := 0; i < 5; i++ {
		_, err := db.AppendHistory(subID, i, false)
		require.NoError(t, err)
	}

	records, err := db.ListHistoryFor(subID, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	// Newest first.
	assert.Equal(t, 4, records[0].Count)
}

func TestDB_ListChangedHistory(t *testing.T) {
	db := newTestDB(t)
	subID := createTestSubscription(t, db)

	_, err := db.AppendHistory(subID, 5, false)
	require.NoError(t, err)
	_, err = db.AppendHistory(subID, 9, true)
	require.NoError(t, err)

	changed, err := db.ListChangedHistory(10)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, 9, changed[0].Count)
}

func TestDB_DeleteSubscription_CascadesHistory(t *testing.T) {
	db := newTestDB(t)
	subID := createTestSubscription(t, db)

	_, err := db.AppendHistory(subID, 7, false)
	require.NoError(t, err)

	require.NoError(t, db.DeleteSubscription(subID))

	latest, err := db.LatestHistoryFor(subID)
	require.NoError(t, err)
	assert.Nil(t, latest, "history rows must be removed with their subscription")
}

func TestDB_PruneHistoryBefore(t *testing.T) {
	db := newTestDB(t)
	subID := createTestSubscription(t, db)

	_, err := db.AppendHistory(subID, 5, false)
	require.NoError(t, err)

	removed, err := db.PruneHistoryBefore(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	latest, err := db.LatestHistoryFor(subID)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestDB_SetSubscriptionActive_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.SetSubscriptionActive(999, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, errorwrapper.ErrNotFound)
}
