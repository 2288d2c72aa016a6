package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/example/office-booking/internal/interval"
)

// Scoring constants for the recommendation engine. The reference origin is
// the building entrance at floor 0, coordinate (0, 0); one floor level costs
// as much as VerticalPenalty planar distance units.
const (
	VerticalPenalty = 20.0
	BaseScore       = 1000.0
	usageBonus      = 10.0
)

// UsageHistoryReader exposes a caller's per-resource booking counts.
type UsageHistoryReader interface {
	GetUsageHistory(ctx context.Context, userID string) (map[string]UsageEntry, error)
}

// FloorPlanLister enumerates floor plan aggregates for read-side ranking.
type FloorPlanLister interface {
	ListFloorPlans(ctx context.Context) ([]FloorPlan, error)
}

// RecommendationService ranks available resources by walking distance and
// the caller's usage affinity. It never mutates state and is safe to call
// concurrently with anything.
type RecommendationService struct {
	plans  FloorPlanLister
	usage  UsageHistoryReader
	logger *slog.Logger
}

// NewRecommendationService constructs the read-side ranking service.
func NewRecommendationService(plans FloorPlanLister, usage UsageHistoryReader) *RecommendationService {
	return NewRecommendationServiceWithLogger(plans, usage, nil)
}

// NewRecommendationServiceWithLogger constructs the service with a specified logger.
func NewRecommendationServiceWithLogger(plans FloorPlanLister, usage UsageHistoryReader, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{plans: plans, usage: usage, logger: defaultLogger(logger)}
}

func (s *RecommendationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RecommendationService", operation, attrs...)
}

// Recommend returns every resource of the requested kind that satisfies the
// capacity requirement and is free for the requested interval, scored and
// sorted descending. Ties keep encounter order: floors ascending by floor
// number, resources in their stored order within a floor.
func (s *RecommendationService) Recommend(ctx context.Context, params RecommendParams) (candidates []RankedCandidate, err error) {
	if s == nil {
		return nil, fmt.Errorf("RecommendationService is nil")
	}
	if s.plans == nil {
		return nil, fmt.Errorf("floor plan lister not configured")
	}

	logger := s.loggerWith(ctx, "Recommend",
		"principal_id", params.Principal.UserID,
		"kind", string(params.Kind),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compute recommendations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(candidates)).InfoContext(ctx, "recommendations computed")
	}()

	vErr := &ValidationError{}
	if !params.Kind.Valid() {
		vErr.add("kind", "kind must be room or desk")
	}
	requested := interval.Span{Start: params.Start, End: params.End}
	if params.Start.IsZero() || params.End.IsZero() {
		vErr.add("time", "start and end are required")
	} else if !requested.IsValid() {
		vErr.add("time", "end time must be after start time")
	}
	if params.MinCapacity < 1 {
		vErr.add("min_capacity", "minimum capacity must be at least 1")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	plans, err := s.plans.ListFloorPlans(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].FloorNumber < plans[j].FloorNumber
	})

	usage := map[string]UsageEntry{}
	if s.usage != nil {
		usage, err = s.usage.GetUsageHistory(ctx, params.Principal.UserID)
		if err != nil {
			return nil, err
		}
	}

	candidates = make([]RankedCandidate, 0)
	for _, plan := range plans {
		if params.FloorNumber != nil && plan.FloorNumber != *params.FloorNumber {
			continue
		}
		for _, res := range plan.Resources {
			if res.Kind != params.Kind {
				continue
			}
			if res.EffectiveCapacity() < params.MinCapacity {
				continue
			}
			if overlapsExisting(requested, res.Bookings) {
				continue
			}

			distance := walkingDistance(plan.FloorNumber, res.Coordinates)
			usageCount := usage[res.ID].Count
			candidates = append(candidates, RankedCandidate{
				ResourceID:  res.ID,
				DisplayName: res.DisplayName(),
				FloorID:     plan.ID,
				FloorName:   plan.Name,
				FloorNumber: plan.FloorNumber,
				Capacity:    res.EffectiveCapacity(),
				Distance:    distance,
				UsageCount:  usageCount,
				Score:       score(distance, usageCount),
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates, nil
}

func overlapsExisting(requested interval.Span, bookings []Booking) bool {
	for _, booking := range bookings {
		if requested.Overlaps(interval.Span{Start: booking.Start, End: booking.End}) {
			return true
		}
	}
	return false
}

// walkingDistance is the 3D distance from the building entrance, weighting
// each floor level as VerticalPenalty planar units.
func walkingDistance(floorNumber int, at Coordinates) float64 {
	dz := float64(floorNumber) * VerticalPenalty
	return math.Sqrt(at.X*at.X + at.Y*at.Y + dz*dz)
}

func score(distance float64, usageCount int) float64 {
	value := BaseScore - distance + float64(usageCount)*usageBonus
	if value < 0 {
		return 0
	}
	return value
}
