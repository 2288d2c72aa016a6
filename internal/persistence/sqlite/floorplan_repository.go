package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/office-booking/internal/persistence"
)

// Timestamps are stored as RFC3339 UTC text; lexical order matches temporal
// order, which the booking queries rely on.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored timestamp %q: %w", value, err)
	}
	return t, nil
}

// CreateFloorPlan inserts a new floor plan aggregate.
func (s *Store) CreateFloorPlan(ctx context.Context, plan persistence.FloorPlan) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO floor_plans (id, name, normalized_name, floor_number, version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			plan.ID,
			plan.Name,
			plan.NormalizedName,
			plan.FloorNumber,
			plan.Version,
			formatTime(plan.CreatedAt),
			formatTime(plan.UpdatedAt),
		)
		if err != nil {
			return mapSQLiteError(err)
		}
		return s.insertResourcesTx(ctx, tx, plan)
	})
}

// GetFloorPlan loads a single aggregate with its resources and bookings.
func (s *Store) GetFloorPlan(ctx context.Context, id string) (persistence.FloorPlan, error) {
	plans, err := s.loadFloorPlans(ctx, "WHERE id = ?", id)
	if err != nil {
		return persistence.FloorPlan{}, err
	}
	if len(plans) == 0 {
		return persistence.FloorPlan{}, persistence.ErrNotFound
	}
	return plans[0], nil
}

// ListFloorPlans loads every aggregate ordered by floor number ascending.
func (s *Store) ListFloorPlans(ctx context.Context) ([]persistence.FloorPlan, error) {
	return s.loadFloorPlans(ctx, "")
}

// ReplaceFloorPlan swaps the stored aggregate for the provided one when the
// stored version matches expectedVersion, writing the notification batch in
// the same transaction. A version mismatch fails the whole unit.
func (s *Store) ReplaceFloorPlan(ctx context.Context, plan persistence.FloorPlan, expectedVersion int64, batch []persistence.Notification) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE floor_plans
			SET name = ?, normalized_name = ?, floor_number = ?, version = ?, updated_at = ?
			WHERE id = ? AND version = ?`,
			plan.Name,
			plan.NormalizedName,
			plan.FloorNumber,
			plan.Version,
			formatTime(plan.UpdatedAt),
			plan.ID,
			expectedVersion,
		)
		if err != nil {
			return mapSQLiteError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			var exists int
			if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM floor_plans WHERE id = ?", plan.ID).Scan(&exists); err != nil {
				return mapSQLiteError(err)
			}
			if exists == 0 {
				return persistence.ErrNotFound
			}
			return persistence.ErrVersionConflict
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM resources WHERE floor_id = ?", plan.ID); err != nil {
			return mapSQLiteError(err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE floor_id = ?", plan.ID); err != nil {
			return mapSQLiteError(err)
		}
		if err := s.insertResourcesTx(ctx, tx, plan); err != nil {
			return err
		}
		return s.insertNotificationsTx(ctx, tx, batch)
	})
}

// DeleteFloorPlan removes the aggregate and writes the notification batch
// atomically. Resources and bookings go with the floor via ON DELETE CASCADE.
func (s *Store) DeleteFloorPlan(ctx context.Context, id string, batch []persistence.Notification) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM floor_plans WHERE id = ?", id)
		if err != nil {
			return mapSQLiteError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return s.insertNotificationsTx(ctx, tx, batch)
	})
}

func (s *Store) insertResourcesTx(ctx context.Context, tx *sql.Tx, plan persistence.FloorPlan) error {
	for _, res := range plan.Resources {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO resources (floor_id, id, kind, name, capacity, x, y, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			plan.ID,
			res.ID,
			res.Kind,
			res.Name,
			res.Capacity,
			res.X,
			res.Y,
			res.Position,
		)
		if err != nil {
			return mapSQLiteError(err)
		}
		for _, booking := range res.Bookings {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO bookings (id, floor_id, kind, resource_id, user_id, start_time, end_time, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				booking.ID,
				plan.ID,
				res.Kind,
				res.ID,
				booking.UserID,
				formatTime(booking.Start),
				formatTime(booking.End),
				formatTime(booking.CreatedAt),
			)
			if err != nil {
				return mapSQLiteError(err)
			}
		}
	}
	return nil
}

func (s *Store) insertNotificationsTx(ctx context.Context, tx *sql.Tx, batch []persistence.Notification) error {
	for _, n := range batch {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (id, user_id, message, reason, created_at, read)
			VALUES (?, ?, ?, ?, ?, ?)`,
			n.ID,
			n.UserID,
			n.Message,
			n.Reason,
			formatTime(n.CreatedAt),
			boolToInt(n.Read),
		)
		if err != nil {
			return mapSQLiteError(err)
		}
	}
	return nil
}

func (s *Store) loadFloorPlans(ctx context.Context, where string, args ...any) ([]persistence.FloorPlan, error) {
	query := `
		SELECT id, name, normalized_name, floor_number, version, created_at, updated_at
		FROM floor_plans ` + where + ` ORDER BY floor_number`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	plans := make([]persistence.FloorPlan, 0)
	index := make(map[string]int)
	for rows.Next() {
		var plan persistence.FloorPlan
		var createdAt, updatedAt string
		if err := rows.Scan(&plan.ID, &plan.Name, &plan.NormalizedName, &plan.FloorNumber, &plan.Version, &createdAt, &updatedAt); err != nil {
			return nil, mapSQLiteError(err)
		}
		if plan.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if plan.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		index[plan.ID] = len(plans)
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err)
	}
	if len(plans) == 0 {
		return plans, nil
	}

	if err := s.attachResources(ctx, plans, index); err != nil {
		return nil, err
	}
	return plans, nil
}

func (s *Store) attachResources(ctx context.Context, plans []persistence.FloorPlan, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT floor_id, id, kind, name, capacity, x, y, position
		FROM resources ORDER BY floor_id, position`)
	if err != nil {
		return mapSQLiteError(err)
	}
	defer rows.Close()

	resourceSlot := make(map[string]map[string]int)
	for rows.Next() {
		var res persistence.Resource
		if err := rows.Scan(&res.FloorID, &res.ID, &res.Kind, &res.Name, &res.Capacity, &res.X, &res.Y, &res.Position); err != nil {
			return mapSQLiteError(err)
		}
		i, ok := index[res.FloorID]
		if !ok {
			continue
		}
		if resourceSlot[res.FloorID] == nil {
			resourceSlot[res.FloorID] = make(map[string]int)
		}
		resourceSlot[res.FloorID][res.Kind+"/"+res.ID] = len(plans[i].Resources)
		plans[i].Resources = append(plans[i].Resources, res)
	}
	if err := rows.Err(); err != nil {
		return mapSQLiteError(err)
	}

	return s.attachBookings(ctx, plans, index, resourceSlot)
}

func (s *Store) attachBookings(ctx context.Context, plans []persistence.FloorPlan, index map[string]int, resourceSlot map[string]map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, floor_id, kind, resource_id, user_id, start_time, end_time, created_at
		FROM bookings ORDER BY start_time`)
	if err != nil {
		return mapSQLiteError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var booking persistence.Booking
		var start, end, createdAt string
		if err := rows.Scan(&booking.ID, &booking.FloorID, &booking.Kind, &booking.ResourceID, &booking.UserID, &start, &end, &createdAt); err != nil {
			return mapSQLiteError(err)
		}
		if booking.Start, err = parseTime(start); err != nil {
			return err
		}
		if booking.End, err = parseTime(end); err != nil {
			return err
		}
		if booking.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}

		i, ok := index[booking.FloorID]
		if !ok {
			continue
		}
		slot, ok := resourceSlot[booking.FloorID][booking.Kind+"/"+booking.ResourceID]
		if !ok {
			continue
		}
		res := &plans[i].Resources[slot]
		res.Bookings = append(res.Bookings, booking)
	}
	return rows.Err()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
