package main

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/office-booking/internal/application"
	"github.com/example/office-booking/internal/persistence/sqlite"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testPlan(id string) application.FloorPlan {
	created := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	return application.FloorPlan{
		ID:          id,
		Name:        "Floor 2",
		FloorNumber: 2,
		Version:     1,
		Resources: []application.Resource{
			{
				ID:          "room-a",
				Kind:        application.KindRoom,
				Name:        "Aurora",
				Capacity:    8,
				Coordinates: application.Coordinates{X: 3, Y: 4},
			},
			{
				ID:          "D-101",
				Kind:        application.KindDesk,
				Capacity:    1,
				Coordinates: application.Coordinates{X: 1, Y: 2},
			},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestFloorPlanRepositoryAdapter_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	adapter := newFloorPlanRepositoryAdapter(store)
	ctx := context.Background()

	created, err := adapter.CreateFloorPlan(ctx, testPlan("floor-2"))
	require.NoError(t, err)
	assert.Equal(t, "Floor 2", created.Name)
	assert.Equal(t, int64(1), created.Version)
	require.Len(t, created.Resources, 2)
	assert.Equal(t, application.KindRoom, created.Resources[0].Kind)
	assert.Equal(t, 4.0, created.Resources[0].Coordinates.Y)

	fetched, err := adapter.GetFloorPlan(ctx, "floor-2")
	require.NoError(t, err)
	assert.Equal(t, created, fetched)

	plans, err := adapter.ListFloorPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)
}

func TestFloorPlanRepositoryAdapter_ReplacePersistsNotifications(t *testing.T) {
	store := openTestStore(t)
	adapter := newFloorPlanRepositoryAdapter(store)
	ctx := context.Background()

	_, err := adapter.CreateFloorPlan(ctx, testPlan("floor-2"))
	require.NoError(t, err)

	updated := testPlan("floor-2")
	updated.Version = 2
	updated.Resources = updated.Resources[:1]

	batch := []application.Notification{{
		ID:        "note-1",
		UserID:    "user-1",
		Message:   "Your booking for Desk D-101 (Floor 2) has been cancelled because the desk was removed.",
		Reason:    "desk_removed",
		CreatedAt: time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC),
	}}

	replaced, err := adapter.ReplaceFloorPlan(ctx, updated, 1, batch)
	require.NoError(t, err)
	assert.Equal(t, int64(2), replaced.Version)
	require.Len(t, replaced.Resources, 1)

	notifications := newNotificationRepositoryAdapter(store)
	stored, err := notifications.ListNotificationsForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "desk_removed", stored[0].Reason)
	assert.False(t, stored[0].Read)
}

func TestBookingRepositoryAdapter_CommitAndList(t *testing.T) {
	store := openTestStore(t)
	plans := newFloorPlanRepositoryAdapter(store)
	bookings := newBookingRepositoryAdapter(store)
	usage := newUsageHistoryAdapter(store)
	ctx := context.Background()

	_, err := plans.CreateFloorPlan(ctx, testPlan("floor-2"))
	require.NoError(t, err)

	start := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		booking := application.Booking{
			ID:        fmt.Sprintf("booking-%d", i),
			UserID:    "user-1",
			Start:     start.Add(time.Duration(i) * 2 * time.Hour),
			End:       start.Add(time.Duration(i)*2*time.Hour + time.Hour),
			CreatedAt: start,
		}
		require.NoError(t, bookings.CommitBooking(ctx, "floor-2", "D-101", application.KindDesk, booking))
	}

	active, err := bookings.ListActiveBookings(ctx, "user-1", start.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Desk D-101", active[0].DisplayName)
	assert.Equal(t, application.KindDesk, active[0].Kind)
	assert.Equal(t, "Floor 2", active[0].FloorName)
	assert.True(t, active[0].Start.Before(active[1].Start))

	history, err := usage.GetUsageHistory(ctx, "user-1")
	require.NoError(t, err)
	require.Contains(t, history, "D-101")
	assert.Equal(t, 2, history["D-101"].Count)
}

func TestBookingRepositoryAdapter_RemoveChecksOwnershipAndKind(t *testing.T) {
	store := openTestStore(t)
	plans := newFloorPlanRepositoryAdapter(store)
	bookings := newBookingRepositoryAdapter(store)
	ctx := context.Background()

	_, err := plans.CreateFloorPlan(ctx, testPlan("floor-2"))
	require.NoError(t, err)

	start := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	booking := application.Booking{
		ID:        "booking-1",
		UserID:    "user-1",
		Start:     start,
		End:       start.Add(time.Hour),
		CreatedAt: start,
	}
	require.NoError(t, bookings.CommitBooking(ctx, "floor-2", "D-101", application.KindDesk, booking))

	removed, err := bookings.RemoveBooking(ctx, "booking-1", "someone-else", application.KindDesk)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = bookings.RemoveBooking(ctx, "booking-1", "user-1", application.KindRoom)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = bookings.RemoveBooking(ctx, "booking-1", "user-1", application.KindDesk)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestNotificationRepositoryAdapter_MarkRead(t *testing.T) {
	store := openTestStore(t)
	plans := newFloorPlanRepositoryAdapter(store)
	notifications := newNotificationRepositoryAdapter(store)
	ctx := context.Background()

	_, err := plans.CreateFloorPlan(ctx, testPlan("floor-2"))
	require.NoError(t, err)

	batch := []application.Notification{{
		ID:        "note-1",
		UserID:    "user-1",
		Message:   "Your booking has been cancelled.",
		Reason:    "floor_deleted",
		CreatedAt: time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, plans.DeleteFloorPlan(ctx, "floor-2", batch))

	marked, err := notifications.MarkNotificationRead(ctx, "note-1", "someone-else")
	require.NoError(t, err)
	assert.False(t, marked)

	marked, err = notifications.MarkNotificationRead(ctx, "note-1", "user-1")
	require.NoError(t, err)
	assert.True(t, marked)

	stored, err := notifications.ListNotificationsForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Read)
}

func TestServices_CancelThenRebookSameSlot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	planRepo := newFloorPlanRepositoryAdapter(store)
	bookingRepo := newBookingRepositoryAdapter(store)

	_, err := planRepo.CreateFloorPlan(ctx, testPlan("floor-2"))
	require.NoError(t, err)

	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	counter := 0
	idGenerator := func() string {
		counter++
		return fmt.Sprintf("booking-%d", counter)
	}
	service := application.NewBookingService(planRepo, bookingRepo, application.NewFloorLocks(), idGenerator, func() time.Time { return now })

	principal := application.Principal{UserID: "user-a", Role: application.RoleMember}
	input := application.BookingInput{
		FloorID:    "floor-2",
		ResourceID: "D-101",
		Start:      now.Add(2 * time.Hour),
		End:        now.Add(3 * time.Hour),
	}

	first, err := service.CreateBooking(ctx, application.CreateBookingParams{Principal: principal, Input: input})
	require.NoError(t, err)

	// The slot is taken until the booking is cancelled.
	_, err = service.CreateBooking(ctx, application.CreateBookingParams{Principal: principal, Input: input})
	require.ErrorIs(t, err, application.ErrSchedulingConflict)

	require.NoError(t, service.CancelBooking(ctx, principal, first.ID, application.KindDesk))

	second, err := service.CreateBooking(ctx, application.CreateBookingParams{Principal: principal, Input: input})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	bookings, err := service.ListActiveBookings(ctx, principal)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, second.ID, bookings[0].BookingID)
}
