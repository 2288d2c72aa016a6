package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

type notificationRepoStub struct {
	list    []Notification
	listErr error

	marked     bool
	markErr    error
	markedID   string
	markedUser string
}

func (n *notificationRepoStub) ListNotificationsForUser(ctx context.Context, userID string) ([]Notification, error) {
	if n.listErr != nil {
		return nil, n.listErr
	}
	out := make([]Notification, len(n.list))
	copy(out, n.list)
	return out, nil
}

func (n *notificationRepoStub) MarkNotificationRead(ctx context.Context, id, userID string) (bool, error) {
	if n.markErr != nil {
		return false, n.markErr
	}
	n.markedID = id
	n.markedUser = userID
	return n.marked, nil
}

func TestNotificationService_ListNotifications(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	repo := &notificationRepoStub{list: []Notification{
		{ID: "note-2", UserID: "user-1", Message: "newer", CreatedAt: now},
		{ID: "note-1", UserID: "user-1", Message: "older", CreatedAt: now.Add(-time.Hour)},
	}}
	svc := NewNotificationService(repo)

	notifications, err := svc.ListNotifications(context.Background(), Principal{UserID: "user-1"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(notifications) != 2 || notifications[0].ID != "note-2" {
		t.Fatalf("expected repository order preserved, got %+v", notifications)
	}
}

func TestNotificationService_DismissNotification(t *testing.T) {
	t.Run("requires an identifier", func(t *testing.T) {
		svc := NewNotificationService(&notificationRepoStub{})

		err := svc.DismissNotification(context.Background(), Principal{UserID: "user-1"}, "   ")

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("someone else's notification reports not found", func(t *testing.T) {
		repo := &notificationRepoStub{marked: false}
		svc := NewNotificationService(repo)

		err := svc.DismissNotification(context.Background(), Principal{UserID: "user-1"}, "note-1")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("marks the caller's notification read", func(t *testing.T) {
		repo := &notificationRepoStub{marked: true}
		svc := NewNotificationService(repo)

		if err := svc.DismissNotification(context.Background(), Principal{UserID: "user-1"}, "note-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.markedID != "note-1" || repo.markedUser != "user-1" {
			t.Fatalf("unexpected mark arguments %+v", repo)
		}
	})
}
