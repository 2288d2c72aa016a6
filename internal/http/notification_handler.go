package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/office-booking/internal/application"
)

type notificationService interface {
	ListNotifications(ctx context.Context, principal application.Principal) ([]application.Notification, error)
	DismissNotification(ctx context.Context, principal application.Principal, notificationID string) error
}

type NotificationHandler struct {
	service   notificationService
	responder responder
	logger    *slog.Logger
}

func NewNotificationHandler(service notificationService, logger *slog.Logger) *NotificationHandler {
	base := defaultLogger(logger)
	return &NotificationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *NotificationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "NotificationHandler", operation, attrs...)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	notifications, err := h.service.ListNotifications(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "notification list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]notificationDTO, 0, len(notifications))
	for _, notification := range notifications {
		dtos = append(dtos, toNotificationDTO(notification))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, notificationListResponse{Notifications: dtos})
}

func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	notificationID := strings.TrimSpace(chi.URLParam(r, "id"))
	if notificationID == "" {
		h.log(r.Context(), "Dismiss", "error_kind", "bad_request").ErrorContext(r.Context(), "missing notification id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidNotification)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Dismiss", "principal_id", principal.UserID, "notification_id", notificationID)

	if err := h.service.DismissNotification(r.Context(), principal, notificationID); err != nil {
		logger.ErrorContext(r.Context(), "notification dismissal failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "notification dismissed")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type notificationDTO struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

type notificationListResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}

func toNotificationDTO(notification application.Notification) notificationDTO {
	return notificationDTO{
		ID:        notification.ID,
		Message:   notification.Message,
		Reason:    notification.Reason,
		CreatedAt: notification.CreatedAt,
		Read:      notification.Read,
	}
}
