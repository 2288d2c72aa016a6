package persistence

import (
	"context"
	"time"
)

// FloorPlanRepository stores floor plan aggregates.
//
// ReplaceFloorPlan performs a compare-and-set on the stored version and
// commits the replacement together with the notification batch in one
// transaction; DeleteFloorPlan likewise removes the aggregate and writes the
// batch atomically.
type FloorPlanRepository interface {
	CreateFloorPlan(ctx context.Context, plan FloorPlan) error
	GetFloorPlan(ctx context.Context, id string) (FloorPlan, error)
	ListFloorPlans(ctx context.Context) ([]FloorPlan, error)
	ReplaceFloorPlan(ctx context.Context, plan FloorPlan, expectedVersion int64, batch []Notification) error
	DeleteFloorPlan(ctx context.Context, id string, batch []Notification) error
}

// BookingRepository stores bookings embedded under floor plan resources.
type BookingRepository interface {
	CommitBooking(ctx context.Context, booking Booking) error
	RemoveBooking(ctx context.Context, bookingID, userID, kind string) (bool, error)
	ListActiveBookings(ctx context.Context, userID string, cutoff time.Time) ([]ActiveBooking, error)
}

// UsageHistoryRepository stores per-user booking counters.
type UsageHistoryRepository interface {
	GetUsageHistory(ctx context.Context, userID string) ([]UsageEntry, error)
}

// NotificationRepository stores cancellation notices.
type NotificationRepository interface {
	ListNotificationsForUser(ctx context.Context, userID string) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) (bool, error)
}
