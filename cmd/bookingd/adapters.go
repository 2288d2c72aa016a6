package main

import (
	"context"
	"time"

	"github.com/example/office-booking/internal/application"
	"github.com/example/office-booking/internal/persistence"
)

type floorPlanRepositoryAdapter struct {
	repo persistence.FloorPlanRepository
}

func newFloorPlanRepositoryAdapter(repo persistence.FloorPlanRepository) *floorPlanRepositoryAdapter {
	return &floorPlanRepositoryAdapter{repo: repo}
}

func (a *floorPlanRepositoryAdapter) CreateFloorPlan(ctx context.Context, plan application.FloorPlan) (application.FloorPlan, error) {
	if err := a.repo.CreateFloorPlan(ctx, toPersistenceFloorPlan(plan)); err != nil {
		return application.FloorPlan{}, err
	}
	stored, err := a.repo.GetFloorPlan(ctx, plan.ID)
	if err != nil {
		return application.FloorPlan{}, err
	}
	return toApplicationFloorPlan(stored), nil
}

func (a *floorPlanRepositoryAdapter) GetFloorPlan(ctx context.Context, id string) (application.FloorPlan, error) {
	stored, err := a.repo.GetFloorPlan(ctx, id)
	if err != nil {
		return application.FloorPlan{}, err
	}
	return toApplicationFloorPlan(stored), nil
}

func (a *floorPlanRepositoryAdapter) ListFloorPlans(ctx context.Context) ([]application.FloorPlan, error) {
	models, err := a.repo.ListFloorPlans(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	plans := make([]application.FloorPlan, 0, len(models))
	for _, model := range models {
		plans = append(plans, toApplicationFloorPlan(model))
	}
	return plans, nil
}

func (a *floorPlanRepositoryAdapter) ReplaceFloorPlan(ctx context.Context, plan application.FloorPlan, expectedVersion int64, batch []application.Notification) (application.FloorPlan, error) {
	if err := a.repo.ReplaceFloorPlan(ctx, toPersistenceFloorPlan(plan), expectedVersion, toPersistenceNotifications(batch)); err != nil {
		return application.FloorPlan{}, err
	}
	stored, err := a.repo.GetFloorPlan(ctx, plan.ID)
	if err != nil {
		return application.FloorPlan{}, err
	}
	return toApplicationFloorPlan(stored), nil
}

func (a *floorPlanRepositoryAdapter) DeleteFloorPlan(ctx context.Context, id string, batch []application.Notification) error {
	return a.repo.DeleteFloorPlan(ctx, id, toPersistenceNotifications(batch))
}

type bookingRepositoryAdapter struct {
	repo persistence.BookingRepository
}

func newBookingRepositoryAdapter(repo persistence.BookingRepository) *bookingRepositoryAdapter {
	return &bookingRepositoryAdapter{repo: repo}
}

func (a *bookingRepositoryAdapter) CommitBooking(ctx context.Context, floorID, resourceID string, kind application.ResourceKind, booking application.Booking) error {
	return a.repo.CommitBooking(ctx, persistence.Booking{
		ID:         booking.ID,
		FloorID:    floorID,
		Kind:       string(kind),
		ResourceID: resourceID,
		UserID:     booking.UserID,
		Start:      booking.Start,
		End:        booking.End,
		CreatedAt:  booking.CreatedAt,
	})
}

func (a *bookingRepositoryAdapter) RemoveBooking(ctx context.Context, bookingID, userID string, kind application.ResourceKind) (bool, error) {
	return a.repo.RemoveBooking(ctx, bookingID, userID, string(kind))
}

func (a *bookingRepositoryAdapter) ListActiveBookings(ctx context.Context, userID string, cutoff time.Time) ([]application.UserBooking, error) {
	models, err := a.repo.ListActiveBookings(ctx, userID, cutoff)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	bookings := make([]application.UserBooking, 0, len(models))
	for _, model := range models {
		resource := application.Resource{
			ID:   model.ResourceID,
			Kind: application.ResourceKind(model.Kind),
			Name: model.ResourceName,
		}
		bookings = append(bookings, application.UserBooking{
			BookingID:   model.ID,
			ResourceID:  model.ResourceID,
			DisplayName: resource.DisplayName(),
			Kind:        resource.Kind,
			FloorID:     model.FloorID,
			FloorName:   model.FloorName,
			FloorNumber: model.FloorNumber,
			Start:       model.Start,
			End:         model.End,
		})
	}
	return bookings, nil
}

type usageHistoryAdapter struct {
	repo persistence.UsageHistoryRepository
}

func newUsageHistoryAdapter(repo persistence.UsageHistoryRepository) *usageHistoryAdapter {
	return &usageHistoryAdapter{repo: repo}
}

func (a *usageHistoryAdapter) GetUsageHistory(ctx context.Context, userID string) (map[string]application.UsageEntry, error) {
	models, err := a.repo.GetUsageHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	history := make(map[string]application.UsageEntry, len(models))
	for _, model := range models {
		history[model.ResourceID] = application.UsageEntry{
			Count:      model.Count,
			LastBooked: model.LastBooked,
		}
	}
	return history, nil
}

type notificationRepositoryAdapter struct {
	repo persistence.NotificationRepository
}

func newNotificationRepositoryAdapter(repo persistence.NotificationRepository) *notificationRepositoryAdapter {
	return &notificationRepositoryAdapter{repo: repo}
}

func (a *notificationRepositoryAdapter) ListNotificationsForUser(ctx context.Context, userID string) ([]application.Notification, error) {
	models, err := a.repo.ListNotificationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	notifications := make([]application.Notification, 0, len(models))
	for _, model := range models {
		notifications = append(notifications, application.Notification{
			ID:        model.ID,
			UserID:    model.UserID,
			Message:   model.Message,
			Reason:    model.Reason,
			CreatedAt: model.CreatedAt,
			Read:      model.Read,
		})
	}
	return notifications, nil
}

func (a *notificationRepositoryAdapter) MarkNotificationRead(ctx context.Context, id, userID string) (bool, error) {
	return a.repo.MarkNotificationRead(ctx, id, userID)
}

func toPersistenceFloorPlan(plan application.FloorPlan) persistence.FloorPlan {
	resources := make([]persistence.Resource, 0, len(plan.Resources))
	for position, res := range plan.Resources {
		bookings := make([]persistence.Booking, 0, len(res.Bookings))
		for _, booking := range res.Bookings {
			bookings = append(bookings, persistence.Booking{
				ID:         booking.ID,
				FloorID:    plan.ID,
				Kind:       string(res.Kind),
				ResourceID: res.ID,
				UserID:     booking.UserID,
				Start:      booking.Start,
				End:        booking.End,
				CreatedAt:  booking.CreatedAt,
			})
		}
		resources = append(resources, persistence.Resource{
			FloorID:  plan.ID,
			ID:       res.ID,
			Kind:     string(res.Kind),
			Name:     res.Name,
			Capacity: res.Capacity,
			X:        res.Coordinates.X,
			Y:        res.Coordinates.Y,
			Position: position,
			Bookings: bookings,
		})
	}
	return persistence.FloorPlan{
		ID:             plan.ID,
		Name:           plan.Name,
		NormalizedName: application.NormalizeName(plan.Name),
		FloorNumber:    plan.FloorNumber,
		Version:        plan.Version,
		Resources:      resources,
		CreatedAt:      plan.CreatedAt,
		UpdatedAt:      plan.UpdatedAt,
	}
}

func toApplicationFloorPlan(model persistence.FloorPlan) application.FloorPlan {
	resources := make([]application.Resource, 0, len(model.Resources))
	for _, res := range model.Resources {
		bookings := make([]application.Booking, 0, len(res.Bookings))
		for _, booking := range res.Bookings {
			bookings = append(bookings, application.Booking{
				ID:        booking.ID,
				UserID:    booking.UserID,
				Start:     booking.Start,
				End:       booking.End,
				CreatedAt: booking.CreatedAt,
			})
		}
		resources = append(resources, application.Resource{
			ID:       res.ID,
			Kind:     application.ResourceKind(res.Kind),
			Name:     res.Name,
			Capacity: res.Capacity,
			Coordinates: application.Coordinates{
				X: res.X,
				Y: res.Y,
			},
			Bookings: bookings,
		})
	}
	return application.FloorPlan{
		ID:          model.ID,
		Name:        model.Name,
		FloorNumber: model.FloorNumber,
		Version:     model.Version,
		Resources:   resources,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceNotifications(batch []application.Notification) []persistence.Notification {
	if len(batch) == 0 {
		return nil
	}
	models := make([]persistence.Notification, 0, len(batch))
	for _, notification := range batch {
		models = append(models, persistence.Notification{
			ID:        notification.ID,
			UserID:    notification.UserID,
			Message:   notification.Message,
			Reason:    notification.Reason,
			CreatedAt: notification.CreatedAt,
			Read:      notification.Read,
		})
	}
	return models
}
