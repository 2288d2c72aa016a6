package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/office-booking/internal/interval"
	"github.com/example/office-booking/internal/persistence"
)

// clockSkewTolerance is how far into the past a booking start may lie,
// absorbing client/server clock drift.
const clockSkewTolerance = time.Minute

// CatalogReader exposes the read side of the catalog needed by the ledger.
type CatalogReader interface {
	GetFloorPlan(ctx context.Context, id string) (FloorPlan, error)
}

// BookingRepository captures the persistence operations for bookings.
//
// CommitBooking appends the booking and increments the owner's usage history
// entry for the resource in one transaction. RemoveBooking deletes the
// booking only when it belongs to a resource of the given kind and is owned
// by the given user, reporting whether a row was removed.
type BookingRepository interface {
	CommitBooking(ctx context.Context, floorID, resourceID string, kind ResourceKind, booking Booking) error
	RemoveBooking(ctx context.Context, bookingID, userID string, kind ResourceKind) (bool, error)
	ListActiveBookings(ctx context.Context, userID string, cutoff time.Time) ([]UserBooking, error)
}

// BookingService owns the per-resource set of reserved intervals. The overlap
// check and the append run under the floor's exclusive section so two
// concurrent requests for the same slot can never both commit.
type BookingService struct {
	catalog     CatalogReader
	bookings    BookingRepository
	locks       *FloorLocks
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService constructs a booking service with the provided dependencies.
func NewBookingService(catalog CatalogReader, bookings BookingRepository, locks *FloorLocks, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(catalog, bookings, locks, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a specified logger.
func NewBookingServiceWithLogger(catalog CatalogReader, bookings BookingRepository, locks *FloorLocks, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		catalog:     catalog,
		bookings:    bookings,
		locks:       locks,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateBooking validates the requested interval, resolves the resource
// (rooms before desks), rejects overlaps against committed bookings, and
// commits the booking together with the caller's usage history increment.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.catalog == nil || s.bookings == nil {
		err = fmt.Errorf("booking repositories not configured")
		return
	}

	input := params.Input
	logger := s.loggerWith(ctx, "CreateBooking",
		"principal_id", params.Principal.UserID,
		"floor_id", input.FloorID,
		"resource_id", input.ResourceID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	// Stored timestamps carry second precision, so truncate up front; the
	// validation and the overlap scan then see exactly what gets committed.
	input.Start = input.Start.Truncate(time.Second)
	input.End = input.End.Truncate(time.Second)

	now := s.now()
	vErr := &ValidationError{}
	if strings.TrimSpace(input.FloorID) == "" {
		vErr.add("floor_id", "floor id is required")
	}
	if strings.TrimSpace(input.ResourceID) == "" {
		vErr.add("resource_id", "resource id is required")
	}
	span := interval.Span{Start: input.Start, End: input.End}
	if input.Start.IsZero() || input.End.IsZero() {
		vErr.add("time", "start and end are required")
	} else if !span.IsValid() {
		vErr.add("time", "end time must be after start time")
	} else if input.Start.Before(now.Add(-clockSkewTolerance)) {
		vErr.add("start", "cannot book a time in the past")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	unlock := s.locks.Lock(input.FloorID)
	defer unlock()

	var plan FloorPlan
	plan, err = s.catalog.GetFloorPlan(ctx, input.FloorID)
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	resource, ok := plan.FindResource(input.ResourceID)
	if !ok {
		err = ErrNotFound
		return
	}

	for _, existing := range resource.Bookings {
		if span.Overlaps(interval.Span{Start: existing.Start, End: existing.End}) {
			err = &SchedulingConflictError{FloorID: plan.ID, ResourceID: resource.ID}
			return
		}
	}

	booking = Booking{
		ID:        s.idGenerator(),
		UserID:    params.Principal.UserID,
		Start:     input.Start,
		End:       input.End,
		CreatedAt: now,
	}

	if err = s.bookings.CommitBooking(ctx, plan.ID, resource.ID, resource.Kind, booking); err != nil {
		err = mapBookingRepoError(err)
		booking = Booking{}
	}
	return
}

// CancelBooking removes a booking owned by the caller under a resource of the
// given kind. A booking that does not exist, lives under the other kind, or
// belongs to another user all produce the same not-found answer.
func (s *BookingService) CancelBooking(ctx context.Context, principal Principal, bookingID string, kind ResourceKind) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("booking repository not configured")
	}

	logger := s.loggerWith(ctx, "CancelBooking",
		"principal_id", principal.UserID,
		"booking_id", bookingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(bookingID) == "" {
		vErr.add("booking_id", "booking id is required")
	}
	if !kind.Valid() {
		vErr.add("kind", "kind must be room or desk")
	}
	if vErr.HasErrors() {
		return vErr
	}

	removed, err := s.bookings.RemoveBooking(ctx, bookingID, principal.UserID, kind)
	if err != nil {
		return mapBookingRepoError(err)
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// ListActiveBookings returns the caller's bookings that have not yet ended,
// across all floors, ordered ascending by start time.
func (s *BookingService) ListActiveBookings(ctx context.Context, principal Principal) (bookings []UserBooking, err error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return nil, fmt.Errorf("booking repository not configured")
	}

	logger := s.loggerWith(ctx, "ListActiveBookings", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list bookings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(bookings)).InfoContext(ctx, "bookings listed")
	}()

	raw, err := s.bookings.ListActiveBookings(ctx, principal.UserID, s.now())
	if err != nil {
		err = mapBookingRepoError(err)
		return
	}

	bookings = make([]UserBooking, len(raw))
	copy(bookings, raw)
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].Start.Before(bookings[j].Start)
	})
	return bookings, nil
}

func mapBookingRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
