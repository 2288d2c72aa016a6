package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/office-booking/internal/persistence"
	"github.com/example/office-booking/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// storage instance for integration-style persistence tests.
type SQLiteHarness struct {
	Store         *sqlite.Store
	FloorPlans    persistence.FloorPlanRepository
	Bookings      persistence.BookingRepository
	Usage         persistence.UsageHistoryRepository
	Notifications persistence.NotificationRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary database file
// that is migrated automatically. Callers may optionally invoke Close, but
// the helper also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "booking.db")

	store, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate sqlite store: %v", err)
	}

	harness := &SQLiteHarness{
		Store:         store,
		FloorPlans:    store,
		Bookings:      store,
		Usage:         store,
		Notifications: store,
		cleanup: func() {
			_ = store.Close()
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}
