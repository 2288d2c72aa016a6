package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration pairs a stable name with the DDL that realizes it. Entries are
// applied in slice order exactly once; applied names are tracked in the
// schema_migrations table.
type migration struct {
	name string
	ddl  string
}

var migrations = []migration{
	{
		name: "0001_floor_plans",
		ddl: `
CREATE TABLE floor_plans (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	normalized_name TEXT NOT NULL UNIQUE,
	floor_number    INTEGER NOT NULL UNIQUE CHECK (floor_number >= 0),
	version         INTEGER NOT NULL CHECK (version > 0),
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);

CREATE TABLE resources (
	floor_id  TEXT NOT NULL REFERENCES floor_plans(id) ON DELETE CASCADE,
	id        TEXT NOT NULL,
	kind      TEXT NOT NULL CHECK (kind IN ('room', 'desk')),
	name      TEXT NOT NULL,
	capacity  INTEGER NOT NULL CHECK (capacity > 0),
	x         REAL NOT NULL DEFAULT 0,
	y         REAL NOT NULL DEFAULT 0,
	position  INTEGER NOT NULL,
	PRIMARY KEY (floor_id, kind, id)
);

CREATE TABLE bookings (
	id          TEXT PRIMARY KEY,
	floor_id    TEXT NOT NULL REFERENCES floor_plans(id) ON DELETE CASCADE,
	kind        TEXT NOT NULL CHECK (kind IN ('room', 'desk')),
	resource_id TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	start_time  TEXT NOT NULL,
	end_time    TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	CHECK (end_time > start_time)
);

CREATE INDEX idx_bookings_user_end ON bookings(user_id, end_time);
CREATE INDEX idx_bookings_resource ON bookings(floor_id, kind, resource_id);
`,
	},
	{
		name: "0002_usage_history",
		ddl: `
CREATE TABLE usage_history (
	user_id       TEXT NOT NULL,
	resource_id   TEXT NOT NULL,
	booking_count INTEGER NOT NULL CHECK (booking_count > 0),
	last_booked   TEXT NOT NULL,
	PRIMARY KEY (user_id, resource_id)
);
`,
	},
	{
		name: "0003_notifications",
		ddl: `
CREATE TABLE notifications (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	message    TEXT NOT NULL,
	reason     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	read       INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX idx_notifications_user ON notifications(user_id, created_at DESC);
`,
	},
}

// Migrate brings the schema up to date, applying pending migrations in order.
// Each migration runs in its own transaction so a failure leaves previously
// applied migrations intact.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	name       TEXT PRIMARY KEY,
	applied_at TEXT NOT NULL DEFAULT (datetime('now'))
)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		applied, err := s.migrationApplied(ctx, m.name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		err = s.withTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.ddl); err != nil {
				return fmt.Errorf("migration %s failed: %w", m.name, err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (name) VALUES (?)", m.name); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", m.name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) migrationApplied(ctx context.Context, name string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE name = ?", name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	return count > 0, nil
}
