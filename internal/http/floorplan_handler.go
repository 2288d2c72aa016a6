package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/office-booking/internal/application"
)

type catalogService interface {
	SaveFloorPlan(ctx context.Context, params application.SaveFloorPlanParams) (application.FloorPlan, application.CascadeResult, error)
	DeleteFloorPlan(ctx context.Context, principal application.Principal, floorID string) (application.CascadeResult, error)
	GetFloorPlan(ctx context.Context, principal application.Principal, floorID string) (application.FloorPlan, error)
	ListFloorPlans(ctx context.Context, principal application.Principal) ([]application.FloorPlan, error)
}

type FloorPlanHandler struct {
	service   catalogService
	responder responder
	logger    *slog.Logger
}

func NewFloorPlanHandler(service catalogService, logger *slog.Logger) *FloorPlanHandler {
	base := defaultLogger(logger)
	return &FloorPlanHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *FloorPlanHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "FloorPlanHandler", operation, attrs...)
}

func (h *FloorPlanHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req floorPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Save", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode floor plan request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Save", "principal_id", principal.UserID, "floor_id", req.FloorID)

	plan, cascade, err := h.service.SaveFloorPlan(r.Context(), application.SaveFloorPlanParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "floor plan save failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if plan.Version == 1 {
		status = http.StatusCreated
	}
	logger.With("floor_id", plan.ID, "version", plan.Version).InfoContext(r.Context(), "floor plan saved")
	h.responder.writeJSON(r.Context(), w, status, floorPlanResponse{
		FloorPlan: toFloorPlanDTO(plan),
		Cascade:   toCascadeDTO(cascade),
	})
}

func (h *FloorPlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	floorID := strings.TrimSpace(chi.URLParam(r, "id"))
	if floorID == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing floor plan id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidFloorID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "principal_id", principal.UserID, "floor_id", floorID)

	plan, err := h.service.GetFloorPlan(r.Context(), principal, floorID)
	if err != nil {
		logger.ErrorContext(r.Context(), "floor plan fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, floorPlanResponse{FloorPlan: toFloorPlanDTO(plan)})
}

func (h *FloorPlanHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	plans, err := h.service.ListFloorPlans(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "floor plan list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]floorPlanDTO, 0, len(plans))
	for _, plan := range plans {
		dtos = append(dtos, toFloorPlanDTO(plan))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, floorPlanListResponse{FloorPlans: dtos})
}

func (h *FloorPlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	floorID := strings.TrimSpace(chi.URLParam(r, "id"))
	if floorID == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing floor plan id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidFloorID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "floor_id", floorID)

	cascade, err := h.service.DeleteFloorPlan(r.Context(), principal, floorID)
	if err != nil {
		logger.ErrorContext(r.Context(), "floor plan delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("notifications", cascade.Notifications, "affected_users", cascade.AffectedUsers).InfoContext(r.Context(), "floor plan deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, cascadeResponse{Cascade: toCascadeDTO(cascade)})
}

type floorPlanRequest struct {
	FloorID     string             `json:"floor_id"`
	Name        string             `json:"name"`
	FloorNumber int                `json:"floor_number"`
	Version     *int64             `json:"version"`
	Resources   []resourceInputDTO `json:"resources"`
}

type resourceInputDTO struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	Name     string  `json:"name"`
	Capacity int     `json:"capacity"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

func (req floorPlanRequest) toInput() application.FloorPlanInput {
	resources := make([]application.ResourceInput, 0, len(req.Resources))
	for _, res := range req.Resources {
		resources = append(resources, application.ResourceInput{
			ID:          res.ID,
			Kind:        application.ResourceKind(res.Kind),
			Name:        res.Name,
			Capacity:    res.Capacity,
			Coordinates: application.Coordinates{X: res.X, Y: res.Y},
		})
	}
	return application.FloorPlanInput{
		FloorID:     req.FloorID,
		Name:        req.Name,
		FloorNumber: req.FloorNumber,
		Resources:   resources,
		Version:     req.Version,
	}
}

type floorPlanDTO struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	FloorNumber int           `json:"floor_number"`
	Version     int64         `json:"version"`
	Resources   []resourceDTO `json:"resources"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type resourceDTO struct {
	ID          string       `json:"id"`
	Kind        string       `json:"kind"`
	DisplayName string       `json:"display_name"`
	Capacity    int          `json:"capacity"`
	X           float64      `json:"x"`
	Y           float64      `json:"y"`
	Bookings    []bookingDTO `json:"bookings,omitempty"`
}

type cascadeDTO struct {
	Notifications int `json:"notifications"`
	AffectedUsers int `json:"affected_users"`
}

type floorPlanResponse struct {
	FloorPlan floorPlanDTO `json:"floor_plan"`
	Cascade   *cascadeDTO  `json:"cascade,omitempty"`
}

type floorPlanListResponse struct {
	FloorPlans []floorPlanDTO `json:"floor_plans"`
}

type cascadeResponse struct {
	Cascade *cascadeDTO `json:"cascade"`
}

func toFloorPlanDTO(plan application.FloorPlan) floorPlanDTO {
	resources := make([]resourceDTO, 0, len(plan.Resources))
	for _, res := range plan.Resources {
		bookings := make([]bookingDTO, 0, len(res.Bookings))
		for _, booking := range res.Bookings {
			bookings = append(bookings, toBookingDTO(booking))
		}
		resources = append(resources, resourceDTO{
			ID:          res.ID,
			Kind:        string(res.Kind),
			DisplayName: res.DisplayName(),
			Capacity:    res.EffectiveCapacity(),
			X:           res.Coordinates.X,
			Y:           res.Coordinates.Y,
			Bookings:    bookings,
		})
	}
	return floorPlanDTO{
		ID:          plan.ID,
		Name:        plan.Name,
		FloorNumber: plan.FloorNumber,
		Version:     plan.Version,
		Resources:   resources,
		CreatedAt:   plan.CreatedAt,
		UpdatedAt:   plan.UpdatedAt,
	}
}

func toCascadeDTO(cascade application.CascadeResult) *cascadeDTO {
	if cascade.Notifications == 0 && cascade.AffectedUsers == 0 {
		return nil
	}
	return &cascadeDTO{Notifications: cascade.Notifications, AffectedUsers: cascade.AffectedUsers}
}
