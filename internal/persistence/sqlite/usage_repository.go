package sqlite

import (
	"context"

	"github.com/example/office-booking/internal/persistence"
)

// GetUsageHistory returns the user's per-resource booking counters.
func (s *Store) GetUsageHistory(ctx context.Context, userID string) ([]persistence.UsageEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, resource_id, booking_count, last_booked
		FROM usage_history
		WHERE user_id = ?
		ORDER BY resource_id`,
		userID,
	)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	entries := make([]persistence.UsageEntry, 0)
	for rows.Next() {
		var entry persistence.UsageEntry
		var lastBooked string
		if err := rows.Scan(&entry.UserID, &entry.ResourceID, &entry.Count, &lastBooked); err != nil {
			return nil, mapSQLiteError(err)
		}
		if entry.LastBooked, err = parseTime(lastBooked); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
