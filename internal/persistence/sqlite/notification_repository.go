package sqlite

import (
	"context"
	"fmt"

	"github.com/example/office-booking/internal/persistence"
)

// ListNotificationsForUser returns the user's notifications, newest first.
func (s *Store) ListNotificationsForUser(ctx context.Context, userID string) ([]persistence.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, message, reason, created_at, read
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	notifications := make([]persistence.Notification, 0)
	for rows.Next() {
		var n persistence.Notification
		var createdAt string
		var read int
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Reason, &createdAt, &read); err != nil {
			return nil, mapSQLiteError(err)
		}
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		n.Read = read != 0
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flips the read flag on a notification owned by userID,
// reporting whether a row matched.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if err != nil {
		return false, mapSQLiteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}
