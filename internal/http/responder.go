package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/office-booking/internal/application"
	"github.com/example/office-booking/internal/logging"
)

var (
	errBadRequestBody      = errors.New("the request body is not valid JSON")
	errInvalidFloorID      = errors.New("a floor plan id is required")
	errInvalidBookingID    = errors.New("a booking id is required")
	errInvalidNotification = errors.New("a notification id is required")
	errMissingIdentity     = errors.New("the X-User-ID header is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "You do not have permission to perform this operation.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{
			ErrorCode: "NOT_FOUND",
			Message:   "The requested resource was not found.",
		})
	case errors.Is(err, application.ErrVersionConflict):
		message := "The floor plan was modified by someone else. Reload and try again."
		var vc *application.VersionConflictError
		if errors.As(err, &vc) {
			message = fmt.Sprintf("The floor plan was modified by someone else (stored version %d, submitted %d). Reload and try again.", vc.Stored, vc.Submitted)
		}
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "VERSION_CONFLICT",
			Message:   message,
		})
	case errors.Is(err, application.ErrUniquenessConflict):
		message := "A floor plan with conflicting identity already exists."
		var uc *application.UniquenessError
		if errors.As(err, &uc) {
			message = fmt.Sprintf("The %s %q is already in use.", uc.Field, uc.Value)
		}
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "UNIQUENESS_CONFLICT",
			Message:   message,
		})
	case errors.Is(err, application.ErrSchedulingConflict):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "SCHEDULING_CONFLICT",
			Message:   "The resource is already booked for an overlapping time.",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				ErrorCode: "VALIDATION_FAILED",
				Message:   "One or more fields are invalid.",
				Errors:    vErr.FieldErrors,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "An internal error occurred."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
