package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/office-booking/internal/application"
)

type bookingService interface {
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, error)
	CancelBooking(ctx context.Context, principal application.Principal, bookingID string, kind application.ResourceKind) error
	ListActiveBookings(ctx context.Context, principal application.Principal) ([]application.UserBooking, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "floor_id", req.FloorID, "resource_id", req.ResourceID)

	booking, err := h.service.CreateBooking(r.Context(), application.CreateBookingParams{
		Principal: principal,
		Input: application.BookingInput{
			FloorID:    req.FloorID,
			ResourceID: req.ResourceID,
			Start:      req.Start,
			End:        req.End,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID := strings.TrimSpace(chi.URLParam(r, "id"))
	if bookingID == "" {
		h.log(r.Context(), "Cancel", "error_kind", "bad_request").ErrorContext(r.Context(), "missing booking id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	kind := application.ResourceKind(strings.TrimSpace(r.URL.Query().Get("kind")))
	if !kind.Valid() {
		h.log(r.Context(), "Cancel", "booking_id", bookingID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid resource kind", "kind", string(kind))
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("the kind query parameter must be room or desk"))
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Cancel", "principal_id", principal.UserID, "booking_id", bookingID)

	if err := h.service.CancelBooking(r.Context(), principal, bookingID, kind); err != nil {
		logger.ErrorContext(r.Context(), "booking cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	bookings, err := h.service.ListActiveBookings(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "booking list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]userBookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		dtos = append(dtos, toUserBookingDTO(booking))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingListResponse{Bookings: dtos})
}

type bookingRequest struct {
	FloorID    string    `json:"floor_id"`
	ResourceID string    `json:"resource_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

type bookingDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	CreatedAt time.Time `json:"created_at"`
}

type userBookingDTO struct {
	BookingID   string    `json:"booking_id"`
	ResourceID  string    `json:"resource_id"`
	DisplayName string    `json:"display_name"`
	Kind        string    `json:"kind"`
	FloorID     string    `json:"floor_id"`
	FloorName   string    `json:"floor_name"`
	FloorNumber int       `json:"floor_number"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type bookingListResponse struct {
	Bookings []userBookingDTO `json:"bookings"`
}

func toBookingDTO(booking application.Booking) bookingDTO {
	return bookingDTO{
		ID:        booking.ID,
		UserID:    booking.UserID,
		Start:     booking.Start,
		End:       booking.End,
		CreatedAt: booking.CreatedAt,
	}
}

func toUserBookingDTO(booking application.UserBooking) userBookingDTO {
	return userBookingDTO{
		BookingID:   booking.BookingID,
		ResourceID:  booking.ResourceID,
		DisplayName: booking.DisplayName,
		Kind:        string(booking.Kind),
		FloorID:     booking.FloorID,
		FloorName:   booking.FloorName,
		FloorNumber: booking.FloorNumber,
		Start:       booking.Start,
		End:         booking.End,
	}
}
