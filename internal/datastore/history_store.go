package datastore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aleister1102/giftwatch/internal/models"
)

// AppendHistory inserts one accepted observation for a subscription and
// returns the stored row.
func (d *DB) AppendHistory(subscriptionID int64, count int, changed bool) (*models.MonitoringHistoryRecord, error) {
	result, err := d.db.Exec(`INSERT INTO monitoring_history (subscription_id, count, has_changed, checked_at)
		VALUES (?, ?, ?, ?)`, subscriptionID, count, changed, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to insert history record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	row := d.db.QueryRow(`SELECT id, subscription_id, count, has_changed, checked_at
		FROM monitoring_history WHERE id = ?`, id)
	return scanHistory(row)
}

// LatestHistoryFor returns the most recent history record for a subscription,
// or nil when none exists yet.
func (d *DB) LatestHistoryFor(subscriptionID int64) (*models.MonitoringHistoryRecord, error) {
	row := d.db.QueryRow(`SELECT id, subscription_id, count, has_changed, checked_at
		FROM monitoring_history
		WHERE subscription_id = ?
		ORDER BY checked_at DESC, id DESC
		LIMIT 1`, subscriptionID)
	record, err := scanHistory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return record, err
}

// ListHistoryFor returns up to limit history records for a subscription,
// newest first. limit <= 0 means no limit.
func (d *DB) ListHistoryFor(subscriptionID int64, limit int) ([]*models.MonitoringHistoryRecord, error) {
	query := `SELECT id, subscription_id, count, has_changed, checked_at
		FROM monitoring_history WHERE subscription_id = ? ORDER BY checked_at DESC, id DESC`
	args := []any{subscriptionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for subscription %d: %w", subscriptionID, err)
	}
	defer rows.Close()

	var records []*models.MonitoringHistoryRecord
	for rows.Next() {
		record, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// ListChangedHistory returns up to limit records flagged as changes, newest
// first, across all subscriptions. limit <= 0 means no limit.
func (d *DB) ListChangedHistory(limit int) ([]*models.MonitoringHistoryRecord, error) {
	query := `SELECT id, subscription_id, count, has_changed, checked_at
		FROM monitoring_history WHERE has_changed = 1 ORDER BY checked_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query changed history: %w", err)
	}
	defer rows.Close()

	var records []*models.MonitoringHistoryRecord
	for rows.Next() {
		record, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// PruneHistoryBefore deletes history rows older than the cutoff and returns
// how many rows were removed. Used by the retention sweep.
func (d *DB) PruneHistoryBefore(cutoff time.Time) (int64, error) {
	result, err := d.db.Exec(`DELETE FROM monitoring_history WHERE checked_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		d.logger.Info().Int64("rows_removed", removed).Time("cutoff", cutoff).Msg("Pruned monitoring history")
	}
	return removed, nil
}

func scanHistory(row rowScanner) (*models.MonitoringHistoryRecord, error) {
	var record models.MonitoringHistoryRecord
	err := row.Scan(&record.ID, &record.SubscriptionID, &record.Count, &record.Changed, &record.CheckedAt)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
