package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/office-booking/internal/application"
	"github.com/example/office-booking/internal/persistence"
)

var (
	floorCounter   uint64
	bookingCounter uint64
)

var referenceTime = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// FloorPlanFixture represents a deterministic floor plan that can be
// materialised for application or persistence tests.
type FloorPlanFixture struct {
	ID          string
	Name        string
	FloorNumber int
	Version     int64
	Resources   []application.Resource
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewFloorPlanFixture builds a floor plan fixture with one room and one desk.
// The sequence number feeds both the identifier and the floor number so each
// call yields a plan that satisfies the global uniqueness invariants.
func NewFloorPlanFixture() FloorPlanFixture {
	seq := atomic.AddUint64(&floorCounter, 1)
	return FloorPlanFixture{
		ID:          fmt.Sprintf("floor-%d", seq),
		Name:        fmt.Sprintf("Floor %d", seq),
		FloorNumber: int(seq),
		Version:     1,
		Resources: []application.Resource{
			{
				ID:          fmt.Sprintf("room-%d", seq),
				Kind:        application.KindRoom,
				Name:        fmt.Sprintf("Meeting Room %d", seq),
				Capacity:    6,
				Coordinates: application.Coordinates{X: 10, Y: 5},
			},
			{
				ID:          fmt.Sprintf("D-%d", 100+seq),
				Kind:        application.KindDesk,
				Capacity:    1,
				Coordinates: application.Coordinates{X: 2, Y: 3},
			},
		},
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
}

// Application converts the fixture into the application model.
func (f FloorPlanFixture) Application() application.FloorPlan {
	resources := make([]application.Resource, len(f.Resources))
	copy(resources, f.Resources)
	return application.FloorPlan{
		ID:          f.ID,
		Name:        f.Name,
		FloorNumber: f.FloorNumber,
		Version:     f.Version,
		Resources:   resources,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence converts the fixture into the persistence model.
func (f FloorPlanFixture) Persistence() persistence.FloorPlan {
	resources := make([]persistence.Resource, 0, len(f.Resources))
	for position, res := range f.Resources {
		resources = append(resources, persistence.Resource{
			FloorID:  f.ID,
			ID:       res.ID,
			Kind:     string(res.Kind),
			Name:     res.Name,
			Capacity: res.Capacity,
			X:        res.Coordinates.X,
			Y:        res.Coordinates.Y,
			Position: position,
		})
	}
	return persistence.FloorPlan{
		ID:             f.ID,
		Name:           f.Name,
		NormalizedName: application.NormalizeName(f.Name),
		FloorNumber:    f.FloorNumber,
		Version:        f.Version,
		Resources:      resources,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// Input converts the fixture into the caller-facing structural write input.
func (f FloorPlanFixture) Input() application.FloorPlanInput {
	resources := make([]application.ResourceInput, 0, len(f.Resources))
	for _, res := range f.Resources {
		resources = append(resources, application.ResourceInput{
			ID:          res.ID,
			Kind:        res.Kind,
			Name:        res.Name,
			Capacity:    res.Capacity,
			Coordinates: res.Coordinates,
		})
	}
	version := f.Version
	return application.FloorPlanInput{
		FloorID:     f.ID,
		Name:        f.Name,
		FloorNumber: f.FloorNumber,
		Resources:   resources,
		Version:     &version,
	}
}

// BookingFixture represents a deterministic reservation.
type BookingFixture struct {
	ID     string
	UserID string
	Start  time.Time
	End    time.Time
}

// NewBookingFixture builds a one-hour booking fixture. Successive calls yield
// disjoint intervals so fixtures never conflict unless a test arranges it.
func NewBookingFixture(userID string) BookingFixture {
	seq := atomic.AddUint64(&bookingCounter, 1)
	start := referenceTime.Add(time.Duration(seq) * 2 * time.Hour)
	return BookingFixture{
		ID:     fmt.Sprintf("booking-%d", seq),
		UserID: userID,
		Start:  start,
		End:    start.Add(time.Hour),
	}
}

// Application converts the fixture into the application model.
func (f BookingFixture) Application() application.Booking {
	return application.Booking{
		ID:        f.ID,
		UserID:    f.UserID,
		Start:     f.Start,
		End:       f.End,
		CreatedAt: referenceTime,
	}
}
