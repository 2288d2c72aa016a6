package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/office-booking/internal/persistence"
)

// NotificationRepository stores cascade notifications for later consumption.
type NotificationRepository interface {
	ListNotificationsForUser(ctx context.Context, userID string) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) (bool, error)
}

// NotificationService serves the user-facing notification inbox. Entries are
// produced by the cascade path; this service only reads and dismisses them.
type NotificationService struct {
	notifications NotificationRepository
	logger        *slog.Logger
}

// NewNotificationService constructs a notification service.
func NewNotificationService(notifications NotificationRepository) *NotificationService {
	return NewNotificationServiceWithLogger(notifications, nil)
}

// NewNotificationServiceWithLogger constructs a notification service with a specified logger.
func NewNotificationServiceWithLogger(notifications NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: defaultLogger(logger)}
}

func (s *NotificationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "NotificationService", operation, attrs...)
}

// ListNotifications returns the caller's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, principal Principal) ([]Notification, error) {
	if s == nil || s.notifications == nil {
		return nil, fmt.Errorf("NotificationService not configured")
	}

	notifications, err := s.notifications.ListNotificationsForUser(ctx, principal.UserID)
	if err != nil {
		s.loggerWith(ctx, "ListNotifications", "principal_id", principal.UserID).
			ErrorContext(ctx, "failed to list notifications", "error", err)
		return nil, err
	}
	return notifications, nil
}

// DismissNotification marks one of the caller's notifications as read.
// Dismissing a notification that does not exist or belongs to another user
// reports not-found.
func (s *NotificationService) DismissNotification(ctx context.Context, principal Principal, notificationID string) (err error) {
	if s == nil || s.notifications == nil {
		return fmt.Errorf("NotificationService not configured")
	}

	logger := s.loggerWith(ctx, "DismissNotification",
		"principal_id", principal.UserID,
		"notification_id", notificationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to dismiss notification", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "notification dismissed")
	}()

	if strings.TrimSpace(notificationID) == "" {
		vErr := &ValidationError{}
		vErr.add("notification_id", "notification id is required")
		return vErr
	}

	marked, err := s.notifications.MarkNotificationRead(ctx, notificationID, principal.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !marked {
		return ErrNotFound
	}
	return nil
}
