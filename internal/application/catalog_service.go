package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/office-booking/internal/persistence"
)

// FloorPlanRepository captures the persistence operations needed by the catalog.
//
// ReplaceFloorPlan and DeleteFloorPlan accept the cascade notification batch
// so the implementation can commit the structural write and the batch as one
// transactional unit.
type FloorPlanRepository interface {
	CreateFloorPlan(ctx context.Context, plan FloorPlan) (FloorPlan, error)
	GetFloorPlan(ctx context.Context, id string) (FloorPlan, error)
	ListFloorPlans(ctx context.Context) ([]FloorPlan, error)
	ReplaceFloorPlan(ctx context.Context, plan FloorPlan, expectedVersion int64, batch []Notification) (FloorPlan, error)
	DeleteFloorPlan(ctx context.Context, id string, batch []Notification) error
}

// deskIDPattern is the lexical shape required of desk identifiers, e.g. "D-101".
var deskIDPattern = regexp.MustCompile(`^[A-Za-z]{1,3}-[0-9]{1,4}$`)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// NormalizeName strips non-alphanumerics and lower-cases, so "Floor 2" and
// "floor-2" collide during uniqueness checks. The persistence layer indexes
// the same normalized form.
func NormalizeName(value string) string {
	return strings.ToLower(nonAlphanumeric.ReplaceAllString(value, ""))
}

// CatalogService owns floor plan aggregates: validated structural writes with
// optimistic concurrency, and cascade notification on resource removal.
type CatalogService struct {
	plans       FloorPlanRepository
	notifier    *CascadeNotifier
	locks       *FloorLocks
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCatalogService constructs a catalog service with the provided dependencies.
func NewCatalogService(plans FloorPlanRepository, notifier *CascadeNotifier, locks *FloorLocks, idGenerator func() string, now func() time.Time) *CatalogService {
	return NewCatalogServiceWithLogger(plans, notifier, locks, idGenerator, now, nil)
}

// NewCatalogServiceWithLogger constructs a catalog service with a specified logger.
func NewCatalogServiceWithLogger(plans FloorPlanRepository, notifier *CascadeNotifier, locks *FloorLocks, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CatalogService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if notifier == nil {
		notifier = NewCascadeNotifier(idGenerator, now)
	}
	return &CatalogService{
		plans:       plans,
		notifier:    notifier,
		locks:       locks,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *CatalogService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CatalogService", operation, attrs...)
}

// SaveFloorPlan creates or updates a floor plan aggregate. Every validation
// and uniqueness check runs before any mutation; on update, resources dropped
// from the incoming set are cancelled through the cascade notifier and the
// batch commits in the same transaction as the structural write.
func (s *CatalogService) SaveFloorPlan(ctx context.Context, params SaveFloorPlanParams) (plan FloorPlan, cascade CascadeResult, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}
	if s.plans == nil {
		err = fmt.Errorf("floor plan repository not configured")
		return
	}

	input := params.Input
	logger := s.loggerWith(ctx, "SaveFloorPlan",
		"principal_id", params.Principal.UserID,
		"floor_id", input.FloorID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save floor plan", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("floor_id", plan.ID, "version", plan.Version, "notified_users", cascade.AffectedUsers).
			InfoContext(ctx, "floor plan saved")
	}()

	if input.FloorID != "" {
		unlock := s.locks.Lock(input.FloorID)
		defer unlock()
	}

	vErr := validateFloorPlanInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var all []FloorPlan
	all, err = s.plans.ListFloorPlans(ctx)
	if err != nil {
		err = mapCatalogRepoError(err, input)
		return
	}

	var stored *FloorPlan
	if input.FloorID != "" {
		for i := range all {
			if all[i].ID == input.FloorID {
				stored = &all[i]
				break
			}
		}
		if stored == nil {
			err = ErrNotFound
			return
		}
	}

	if err = checkFloorUniqueness(all, input); err != nil {
		return
	}
	if err = checkIntraFloorUniqueness(input); err != nil {
		return
	}
	if err = checkGlobalRoomIDs(all, input); err != nil {
		return
	}

	if stored != nil {
		submitted := *input.Version
		if submitted < stored.Version && !params.Principal.Role.CanForceOverwrite() {
			err = &VersionConflictError{Stored: stored.Version, Submitted: submitted}
			return
		}
	}

	now := s.now()

	if stored == nil {
		plan = FloorPlan{
			ID:          s.idGenerator(),
			Name:        strings.TrimSpace(input.Name),
			FloorNumber: input.FloorNumber,
			Version:     1,
			Resources:   buildResources(input.Resources, nil),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		plan, err = s.plans.CreateFloorPlan(ctx, plan)
		if err != nil {
			err = mapCatalogRepoError(err, input)
			plan = FloorPlan{}
		}
		return
	}

	removed := removedResources(stored.Resources, input.Resources)
	var batch []Notification
	batch, cascade = s.notifier.Cascade(*stored, removed, CauseResourceRemoved)

	updated := FloorPlan{
		ID:          stored.ID,
		Name:        strings.TrimSpace(input.Name),
		FloorNumber: input.FloorNumber,
		Version:     stored.Version + 1,
		Resources:   buildResources(input.Resources, stored.Resources),
		CreatedAt:   stored.CreatedAt,
		UpdatedAt:   now,
	}

	plan, err = s.plans.ReplaceFloorPlan(ctx, updated, stored.Version, batch)
	if err != nil {
		err = mapCatalogRepoError(err, input)
		plan = FloorPlan{}
		cascade = CascadeResult{}
	}
	return
}

// DeleteFloorPlan removes an entire floor. Every resource on the floor is
// treated as removed: users with future bookings are notified and the batch
// commits atomically with the aggregate deletion. Returns the cascade summary
// including the count of distinct affected users.
func (s *CatalogService) DeleteFloorPlan(ctx context.Context, principal Principal, floorID string) (cascade CascadeResult, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}
	if s.plans == nil {
		err = fmt.Errorf("floor plan repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "DeleteFloorPlan",
		"principal_id", principal.UserID,
		"floor_id", floorID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete floor plan", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("notifications", cascade.Notifications, "affected_users", cascade.AffectedUsers).
			InfoContext(ctx, "floor plan deleted")
	}()

	if !principal.Role.Elevated() {
		err = ErrUnauthorized
		return
	}

	unlock := s.locks.Lock(floorID)
	defer unlock()

	var stored FloorPlan
	stored, err = s.plans.GetFloorPlan(ctx, floorID)
	if err != nil {
		err = mapCatalogRepoError(err, FloorPlanInput{})
		return
	}

	var batch []Notification
	batch, cascade = s.notifier.Cascade(stored, stored.Resources, CauseFloorDeleted)

	if err = s.plans.DeleteFloorPlan(ctx, floorID, batch); err != nil {
		err = mapCatalogRepoError(err, FloorPlanInput{})
		cascade = CascadeResult{}
	}
	return
}

// GetFloorPlan returns a single floor plan aggregate.
func (s *CatalogService) GetFloorPlan(ctx context.Context, principal Principal, floorID string) (FloorPlan, error) {
	if s == nil || s.plans == nil {
		return FloorPlan{}, fmt.Errorf("CatalogService not configured")
	}
	plan, err := s.plans.GetFloorPlan(ctx, floorID)
	if err != nil {
		return FloorPlan{}, mapCatalogRepoError(err, FloorPlanInput{})
	}
	return plan, nil
}

// ListFloorPlans returns all floor plans ordered by floor number ascending.
func (s *CatalogService) ListFloorPlans(ctx context.Context, principal Principal) ([]FloorPlan, error) {
	if s == nil || s.plans == nil {
		return nil, fmt.Errorf("CatalogService not configured")
	}

	raw, err := s.plans.ListFloorPlans(ctx)
	if err != nil {
		return nil, mapCatalogRepoError(err, FloorPlanInput{})
	}

	plans := make([]FloorPlan, len(raw))
	copy(plans, raw)
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].FloorNumber < plans[j].FloorNumber
	})
	return plans, nil
}

func validateFloorPlanInput(input FloorPlanInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.FloorNumber < 0 {
		vErr.add("floor_number", "floor number must not be negative")
	}
	if input.FloorID != "" && input.Version == nil {
		vErr.add("version", "version is required for updates")
	}

	for _, res := range input.Resources {
		if !res.Kind.Valid() {
			vErr.add("resource_kind", fmt.Sprintf("unknown resource kind %q", string(res.Kind)))
			continue
		}
		if strings.TrimSpace(res.ID) == "" {
			vErr.add("resource_id", "resource id is required")
		}
		if res.Kind == KindRoom {
			if strings.TrimSpace(res.Name) == "" {
				vErr.add("room_name", "room name is required")
			}
			if res.Capacity < 1 {
				vErr.add("capacity", "room capacity must be at least 1")
			}
		}
	}

	return vErr
}

// checkFloorUniqueness enforces normalized-name and floor-number uniqueness
// against every other floor.
func checkFloorUniqueness(all []FloorPlan, input FloorPlanInput) error {
	name := NormalizeName(input.Name)
	for _, plan := range all {
		if input.FloorID != "" && plan.ID == input.FloorID {
			continue
		}
		if NormalizeName(plan.Name) == name {
			return &UniquenessError{Field: "name", Value: strings.TrimSpace(input.Name)}
		}
		if plan.FloorNumber == input.FloorNumber {
			return &UniquenessError{Field: "floor_number", Value: strconv.Itoa(input.FloorNumber)}
		}
	}
	return nil
}

// checkIntraFloorUniqueness enforces per-floor room-name uniqueness, per-floor
// desk-id uniqueness, and the desk id lexical pattern.
func checkIntraFloorUniqueness(input FloorPlanInput) error {
	seenRoomNames := make(map[string]struct{})
	for _, res := range input.Resources {
		if res.Kind != KindRoom {
			continue
		}
		key := NormalizeName(res.Name)
		if _, ok := seenRoomNames[key]; ok {
			return &UniquenessError{Field: "room_name", Value: res.Name}
		}
		seenRoomNames[key] = struct{}{}
	}

	seenDeskIDs := make(map[string]struct{})
	for _, res := range input.Resources {
		if res.Kind != KindDesk {
			continue
		}
		key := NormalizeName(res.ID)
		if _, ok := seenDeskIDs[key]; ok {
			return &UniquenessError{Field: "desk_id", Value: res.ID}
		}
		seenDeskIDs[key] = struct{}{}
	}

	for _, res := range input.Resources {
		if res.Kind != KindDesk {
			continue
		}
		if !deskIDPattern.MatchString(res.ID) {
			vErr := &ValidationError{}
			vErr.add("desk_id", fmt.Sprintf("desk id %q does not match the required pattern", res.ID))
			return vErr
		}
	}
	return nil
}

// checkGlobalRoomIDs rejects room ids already claimed by any other floor.
func checkGlobalRoomIDs(all []FloorPlan, input FloorPlanInput) error {
	for _, res := range input.Resources {
		if res.Kind != KindRoom {
			continue
		}
		for _, plan := range all {
			if input.FloorID != "" && plan.ID == input.FloorID {
				continue
			}
			for _, existing := range plan.Resources {
				if existing.Kind == KindRoom && existing.ID == res.ID {
					return &UniquenessError{Field: "room_id", Value: res.ID}
				}
			}
		}
	}
	return nil
}

// buildResources materializes the incoming resource set, carrying existing
// bookings over for resources that survive the edit. Desk capacity is pinned
// to one at construction.
func buildResources(inputs []ResourceInput, stored []Resource) []Resource {
	carried := make(map[string][]Booking, len(stored))
	for _, res := range stored {
		carried[resourceKey(res.Kind, res.ID)] = res.Bookings
	}

	resources := make([]Resource, 0, len(inputs))
	for _, in := range inputs {
		capacity := in.Capacity
		if in.Kind == KindDesk {
			capacity = 1
		}
		resources = append(resources, Resource{
			ID:          strings.TrimSpace(in.ID),
			Kind:        in.Kind,
			Name:        strings.TrimSpace(in.Name),
			Capacity:    capacity,
			Coordinates: in.Coordinates,
			Bookings:    carried[resourceKey(in.Kind, strings.TrimSpace(in.ID))],
		})
	}
	return resources
}

// removedResources returns stored resources absent from the incoming set,
// compared by kind and id.
func removedResources(stored []Resource, incoming []ResourceInput) []Resource {
	keep := make(map[string]struct{}, len(incoming))
	for _, in := range incoming {
		keep[resourceKey(in.Kind, strings.TrimSpace(in.ID))] = struct{}{}
	}

	removed := make([]Resource, 0)
	for _, res := range stored {
		if _, ok := keep[resourceKey(res.Kind, res.ID)]; !ok {
			removed = append(removed, res)
		}
	}
	return removed
}

func resourceKey(kind ResourceKind, id string) string {
	return string(kind) + "/" + id
}

func mapCatalogRepoError(err error, input FloorPlanInput) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		// The repository keeps the driver message, which names the index
		// that fired; a concurrent create can race on either unique column.
		if strings.Contains(err.Error(), "floor_number") {
			return &UniquenessError{Field: "floor_number", Value: strconv.Itoa(input.FloorNumber)}
		}
		return &UniquenessError{Field: "name", Value: strings.TrimSpace(input.Name)}
	}
	if errors.Is(err, persistence.ErrVersionConflict) {
		var submitted int64
		if input.Version != nil {
			submitted = *input.Version
		}
		return &VersionConflictError{Submitted: submitted}
	}
	return err
}
