package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/office-booking/internal/application"
)

type recommendService interface {
	Recommend(ctx context.Context, params application.RecommendParams) ([]application.RankedCandidate, error)
}

type RecommendHandler struct {
	service   recommendService
	responder responder
	logger    *slog.Logger
}

func NewRecommendHandler(service recommendService, logger *slog.Logger) *RecommendHandler {
	base := defaultLogger(logger)
	return &RecommendHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RecommendHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RecommendHandler", operation, attrs...)
}

func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	params, err := parseRecommendQuery(principal, r.URL.Query())
	if err != nil {
		h.log(r.Context(), "Recommend", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "invalid recommendation query", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Recommend", "principal_id", principal.UserID, "kind", string(params.Kind))

	candidates, err := h.service.Recommend(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "recommendation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]candidateDTO, 0, len(candidates))
	for _, candidate := range candidates {
		dtos = append(dtos, toCandidateDTO(candidate))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, recommendResponse{Candidates: dtos})
}

func parseRecommendQuery(principal application.Principal, query map[string][]string) (application.RecommendParams, error) {
	get := func(key string) string {
		values := query[key]
		if len(values) == 0 {
			return ""
		}
		return strings.TrimSpace(values[0])
	}

	params := application.RecommendParams{
		Principal:   principal,
		Kind:        application.ResourceKind(get("kind")),
		MinCapacity: 1,
	}

	start, err := time.Parse(time.RFC3339, get("start"))
	if err != nil {
		return application.RecommendParams{}, errors.New("the start query parameter must be an RFC 3339 timestamp")
	}
	end, err := time.Parse(time.RFC3339, get("end"))
	if err != nil {
		return application.RecommendParams{}, errors.New("the end query parameter must be an RFC 3339 timestamp")
	}
	params.Start = start
	params.End = end

	if raw := get("min_capacity"); raw != "" {
		capacity, err := strconv.Atoi(raw)
		if err != nil {
			return application.RecommendParams{}, errors.New("the min_capacity query parameter must be an integer")
		}
		params.MinCapacity = capacity
	}

	if raw := get("floor"); raw != "" {
		floor, err := strconv.Atoi(raw)
		if err != nil {
			return application.RecommendParams{}, errors.New("the floor query parameter must be an integer")
		}
		params.FloorNumber = &floor
	}

	return params, nil
}

type candidateDTO struct {
	ResourceID  string  `json:"resource_id"`
	DisplayName string  `json:"display_name"`
	FloorID     string  `json:"floor_id"`
	FloorName   string  `json:"floor_name"`
	FloorNumber int     `json:"floor_number"`
	Capacity    int     `json:"capacity"`
	Distance    float64 `json:"distance"`
	UsageCount  int     `json:"usage_count"`
	Score       float64 `json:"score"`
}

type recommendResponse struct {
	Candidates []candidateDTO `json:"candidates"`
}

func toCandidateDTO(candidate application.RankedCandidate) candidateDTO {
	return candidateDTO{
		ResourceID:  candidate.ResourceID,
		DisplayName: candidate.DisplayName,
		FloorID:     candidate.FloorID,
		FloorName:   candidate.FloorName,
		FloorNumber: candidate.FloorNumber,
		Capacity:    candidate.Capacity,
		Distance:    candidate.Distance,
		UsageCount:  candidate.UsageCount,
		Score:       candidate.Score,
	}
}
