package datastore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aleister1102/giftwatch/internal/errorwrapper"
	"github.com/aleister1102/giftwatch/internal/models"
)

// CreateSubscriptionInput carries the fields needed to create a subscription.
type CreateSubscriptionInput struct {
	UserID     int64
	GiftName   string
	Model      string
	Background string
	Pattern    string
	IsActive   bool
}

// CreateSubscription inserts a new subscription and returns the stored row.
func (d *DB) CreateSubscription(input CreateSubscriptionInput) (*models.Subscription, error) {
	query := `INSERT INTO subscriptions (user_id, gift_name, model, background, pattern, is_active)
		VALUES (?, ?, ?, ?, ?, ?)`
	result, err := d.db.Exec(query,
		input.UserID, input.GiftName,
		nullable(input.Model), nullable(input.Background), nullable(input.Pattern),
		input.IsActive)
	if err != nil {
		return nil, fmt.Errorf("failed to insert subscription: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	d.logger.Info().Int64("subscription_id", id).Int64("user_id", input.UserID).Str("gift_name", input.GiftName).Msg("Created subscription")
	return d.GetSubscription(id)
}

// GetSubscription returns a subscription by ID.
func (d *DB) GetSubscription(id int64) (*models.Subscription, error) {
	row := d.db.QueryRow(`SELECT id, user_id, gift_name, model, background, pattern, is_active, created_at, updated_at
		FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, errorwrapper.WrapError(errorwrapper.ErrNotFound, fmt.Sprintf("subscription %d", id))
	}
	return sub, err
}

// ListActiveSubscriptions returns all subscriptions with the active flag set,
// oldest first so long-standing subscriptions are checked first in a cycle.
func (d *DB) ListActiveSubscriptions() ([]*models.Subscription, error) {
	rows, err := d.db.Query(`SELECT id, user_id, gift_name, model, background, pattern, is_active, created_at, updated_at
		FROM subscriptions WHERE is_active = 1 ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ListSubscriptionsByUser returns all subscriptions owned by a user.
func (d *DB) ListSubscriptionsByUser(userID int64) ([]*models.Subscription, error) {
	rows, err := d.db.Query(`SELECT id, user_id, gift_name, model, background, pattern, is_active, created_at, updated_at
		FROM subscriptions WHERE user_id = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// SetSubscriptionActive flips the active flag of a subscription.
func (d *DB) SetSubscriptionActive(id int64, active bool) error {
	result, err := d.db.Exec(`UPDATE subscriptions SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update subscription %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return errorwrapper.WrapError(errorwrapper.ErrNotFound, fmt.Sprintf("subscription %d", id))
	}
	return err
}

// DeleteSubscription removes a subscription; history rows cascade.
func (d *DB) DeleteSubscription(id int64) error {
	result, err := d.db.Exec(`DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return errorwrapper.WrapError(errorwrapper.ErrNotFound, fmt.Sprintf("subscription %d", id))
	}
	d.logger.Info().Int64("subscription_id", id).Msg("Deleted subscription")
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	var sub models.Subscription
	var model, background, pattern sql.NullString
	err := row.Scan(&sub.ID, &sub.UserID, &sub.GiftName, &model, &background, &pattern,
		&sub.IsActive, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sub.Model = model.String
	sub.Background = background.String
	sub.Pattern = pattern.String
	return &sub, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
