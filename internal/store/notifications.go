package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/models"
)

// InsertNotification stores a notification and returns its id.
func (db *DB) InsertNotification(ctx context.Context, n models.Notification) (int64, error) {
	created := n.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	typ := n.Type
	if typ == "" {
		typ = "info"
	}
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO notifications (user_id, message, link, notification_type, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.UserID, n.Message, n.Link, typ, n.IsRead, created.UTC())
	if err != nil {
		return 0, fmt.Errorf("store: insert notification: %w", err)
	}
	return res.LastInsertId()
}

// UnreadCount returns the number of unread notifications for userID.
func (db *DB) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: unread count: %w", err)
	}
	return n, nil
}

// RecentUnread returns the newest unread notifications, at most limit.
func (db *DB) RecentUnread(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, message, link, notification_type, is_read, created_at
		FROM notifications
		WHERE user_id = ? AND is_read = 0
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent notifications: %w", err)
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Link, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead marks one of userID's notifications as read. Someone else's
// notification yields apperr.ErrForbidden.
func (db *DB) MarkRead(ctx context.Context, id, userID int64) error {
	var owner int64
	err := db.conn.QueryRowContext(ctx, `SELECT user_id FROM notifications WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: notification owner: %w", err)
	}
	if owner != userID {
		return apperr.ErrForbidden
	}
	if _, err := db.conn.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: mark read: %w", err)
	}
	return nil
}

// MarkAllRead marks every notification of userID as read.
func (db *DB) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return 0, fmt.Errorf("store: mark all read: %w", err)
	}
	return res.RowsAffected()
}

// RecordReminder notes that a reminder of kind was sent about subject
// (for example "task:12") on day. It returns false when the same reminder
// was already recorded.
func (db *DB) RecordReminder(ctx context.Context, subject, kind, day string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO reminder_log (subject, kind, day) VALUES (?, ?, ?)`, subject, kind, day)
	if err != nil {
		return false, fmt.Errorf("store: record reminder: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
