package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/office-booking/internal/persistence"
)

// CommitBooking appends a booking and bumps the owner's usage counter for the
// resource in one transaction. The resource must exist on the floor.
func (s *Store) CommitBooking(ctx context.Context, booking persistence.Booking) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM resources WHERE floor_id = ? AND kind = ? AND id = ?",
			booking.FloorID, booking.Kind, booking.ResourceID,
		).Scan(&exists)
		if err != nil {
			return mapSQLiteError(err)
		}
		if exists == 0 {
			return persistence.ErrNotFound
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO bookings (id, floor_id, kind, resource_id, user_id, start_time, end_time, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			booking.ID,
			booking.FloorID,
			booking.Kind,
			booking.ResourceID,
			booking.UserID,
			formatTime(booking.Start),
			formatTime(booking.End),
			formatTime(booking.CreatedAt),
		)
		if err != nil {
			return mapSQLiteError(err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO usage_history (user_id, resource_id, booking_count, last_booked)
			VALUES (?, ?, 1, ?)
			ON CONFLICT (user_id, resource_id)
			DO UPDATE SET booking_count = booking_count + 1, last_booked = excluded.last_booked`,
			booking.UserID,
			booking.ResourceID,
			formatTime(booking.CreatedAt),
		)
		if err != nil {
			return mapSQLiteError(err)
		}
		return nil
	})
}

// RemoveBooking deletes a booking when it is owned by userID and was made
// under the given resource kind, reporting whether a row was removed.
// Ownership and kind mismatches look identical to absence.
func (s *Store) RemoveBooking(ctx context.Context, bookingID, userID, kind string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM bookings WHERE id = ? AND user_id = ? AND kind = ?",
		bookingID, userID, kind,
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

// ListActiveBookings returns the user's bookings that end after the cutoff,
// joined with their resource and floor, ordered by start time ascending.
func (s *Store) ListActiveBookings(ctx context.Context, userID string, cutoff time.Time) ([]persistence.ActiveBooking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.floor_id, b.kind, b.resource_id, b.user_id, b.start_time, b.end_time, b.created_at,
		       r.name, f.name, f.floor_number
		FROM bookings b
		JOIN resources r ON r.floor_id = b.floor_id AND r.kind = b.kind AND r.id = b.resource_id
		JOIN floor_plans f ON f.id = b.floor_id
		WHERE b.user_id = ? AND b.end_time > ?
		ORDER BY b.start_time`,
		userID, formatTime(cutoff),
	)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	bookings := make([]persistence.ActiveBooking, 0)
	for rows.Next() {
		var entry persistence.ActiveBooking
		var start, end, createdAt string
		if err := rows.Scan(
			&entry.ID, &entry.FloorID, &entry.Kind, &entry.ResourceID, &entry.UserID,
			&start, &end, &createdAt,
			&entry.ResourceName, &entry.FloorName, &entry.FloorNumber,
		); err != nil {
			return nil, mapSQLiteError(err)
		}
		if entry.Start, err = parseTime(start); err != nil {
			return nil, err
		}
		if entry.End, err = parseTime(end); err != nil {
			return nil, err
		}
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, entry)
	}
	return bookings, rows.Err()
}
