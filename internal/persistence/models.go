package persistence

import "time"

// FloorPlan is the stored floor aggregate header.
type FloorPlan struct {
	ID             string
	Name           string
	NormalizedName string
	FloorNumber    int
	Version        int64
	Resources      []Resource
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Resource is a stored bookable entry belonging to a floor plan. Position
// preserves the caller-supplied ordering within the floor.
type Resource struct {
	FloorID  string
	ID       string
	Kind     string
	Name     string
	Capacity int
	X        float64
	Y        float64
	Position int
	Bookings []Booking
}

// Booking is a stored reservation embedded under a resource. Kind carries the
// resolved resource kind so a room and a desk sharing an id on the same floor
// keep separate booking sets.
type Booking struct {
	ID         string
	FloorID    string
	Kind       string
	ResourceID string
	UserID     string
	Start      time.Time
	End        time.Time
	CreatedAt  time.Time
}

// ActiveBooking is a booking joined with its resource and floor for listings.
type ActiveBooking struct {
	Booking
	ResourceName string
	FloorName    string
	FloorNumber  int
}

// UsageEntry is a stored per-user, per-resource booking counter.
type UsageEntry struct {
	UserID     string
	ResourceID string
	Count      int
	LastBooked time.Time
}

// Notification is a stored cancellation notice addressed to a user.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Reason    string
	CreatedAt time.Time
	Read      bool
}
