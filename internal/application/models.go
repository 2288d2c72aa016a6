package application

import (
	"fmt"
	"time"
)

// Role identifies the privilege level carried by an authenticated principal.
type Role string

const (
	// RoleMember is the default privilege level for employees.
	RoleMember Role = "member"
	// RoleAdmin may manage floor plans, including deletion.
	RoleAdmin Role = "admin"
	// RoleSuperAdmin may additionally force structural writes past a version conflict.
	RoleSuperAdmin Role = "superadmin"
)

// Elevated reports whether the role may perform administrative structural edits.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanForceOverwrite reports whether the role may commit a stale structural
// write, overwriting the stored aggregate instead of failing with a version
// conflict.
func (r Role) CanForceOverwrite() bool {
	return r == RoleSuperAdmin
}

// Principal represents the authenticated user invoking a service method.
// Identity verification happens outside the core; services only ever see the
// resolved user id and role.
type Principal struct {
	UserID string
	Role   Role
}

// ResourceKind discriminates the two bookable resource variants.
type ResourceKind string

const (
	// KindRoom is a meeting room with an explicit capacity.
	KindRoom ResourceKind = "room"
	// KindDesk is a single-occupant desk.
	KindDesk ResourceKind = "desk"
)

// Valid reports whether the kind is one of the known variants.
func (k ResourceKind) Valid() bool {
	return k == KindRoom || k == KindDesk
}

// Coordinates locates a resource on its floor plan.
type Coordinates struct {
	X float64
	Y float64
}

// Booking represents a confirmed reservation of a resource for the half-open
// interval [Start, End).
type Booking struct {
	ID        string
	UserID    string
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
}

// Resource is a bookable entry on a floor plan. Rooms carry a display name
// and a capacity; desks always seat exactly one person.
type Resource struct {
	ID          string
	Kind        ResourceKind
	Name        string
	Capacity    int
	Coordinates Coordinates
	Bookings    []Booking
}

// EffectiveCapacity returns the capacity used for matching. Desk capacity is
// fixed at one regardless of stored data.
func (r Resource) EffectiveCapacity() int {
	if r.Kind == KindDesk {
		return 1
	}
	return r.Capacity
}

// DisplayName returns the human-readable label for the resource.
func (r Resource) DisplayName() string {
	if r.Kind == KindDesk {
		return fmt.Sprintf("Desk %s", r.ID)
	}
	return r.Name
}

// FloorPlan is the consistency unit of the catalog: a floor together with all
// of its resources and their embedded bookings.
type FloorPlan struct {
	ID          string
	Name        string
	FloorNumber int
	Version     int64
	Resources   []Resource
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FindResource resolves a resource id against rooms first, then desks.
func (p FloorPlan) FindResource(id string) (Resource, bool) {
	for _, res := range p.Resources {
		if res.Kind == KindRoom && res.ID == id {
			return res, true
		}
	}
	for _, res := range p.Resources {
		if res.Kind == KindDesk && res.ID == id {
			return res, true
		}
	}
	return Resource{}, false
}

// ResourceInput captures caller provided resource fields for structural writes.
// Bookings are never supplied by callers; they are carried over from the
// stored aggregate for resources that survive the edit.
type ResourceInput struct {
	ID          string
	Kind        ResourceKind
	Name        string
	Capacity    int
	Coordinates Coordinates
}

// FloorPlanInput captures caller provided floor plan fields.
type FloorPlanInput struct {
	FloorID     string
	Name        string
	FloorNumber int
	Resources   []ResourceInput
	Version     *int64
}

// SaveFloorPlanParams wraps the data required to create or update a floor plan.
type SaveFloorPlanParams struct {
	Principal Principal
	Input     FloorPlanInput
}

// CascadeResult summarizes the notification fallout of a structural removal.
type CascadeResult struct {
	Notifications int
	AffectedUsers int
}

// Notification informs a user that a booking was cancelled on their behalf.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Reason    string
	CreatedAt time.Time
	Read      bool
}

// UsageEntry records how often a user has booked a particular resource.
type UsageEntry struct {
	Count      int
	LastBooked time.Time
}

// BookingInput captures caller provided booking fields.
type BookingInput struct {
	FloorID    string
	ResourceID string
	Start      time.Time
	End        time.Time
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// UserBooking is a booking joined with its owning resource and floor, as
// returned by active-booking listings.
type UserBooking struct {
	BookingID   string
	ResourceID  string
	DisplayName string
	Kind        ResourceKind
	FloorID     string
	FloorName   string
	FloorNumber int
	Start       time.Time
	End         time.Time
}

// RecommendParams wraps the data required to rank available resources.
type RecommendParams struct {
	Principal   Principal
	Kind        ResourceKind
	Start       time.Time
	End         time.Time
	MinCapacity int
	FloorNumber *int
}

// RankedCandidate is one scored entry in a recommendation result.
type RankedCandidate struct {
	ResourceID  string
	DisplayName string
	FloorID     string
	FloorName   string
	FloorNumber int
	Capacity    int
	Distance    float64
	UsageCount  int
	Score       float64
}
