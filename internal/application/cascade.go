package application

import (
	"fmt"
	"time"
)

// Cancellation reason tags persisted on cascade notifications.
const (
	ReasonRoomRemoved  = "room_removed"
	ReasonDeskRemoved  = "desk_removed"
	ReasonFloorDeleted = "floor_deleted"
)

// CascadeCause distinguishes why resources disappeared from the catalog.
type CascadeCause int

const (
	// CauseResourceRemoved marks resources dropped by a structural update.
	CauseResourceRemoved CascadeCause = iota
	// CauseFloorDeleted marks resources removed because their whole floor was deleted.
	CauseFloorDeleted
)

// CascadeNotifier builds the notification batch owed to users whose future
// bookings are cancelled by a structural removal. The batch is handed to the
// catalog repository together with the structural write so both commit in the
// same transaction; a notifier failure can never leave an unnotified
// cancellation behind.
type CascadeNotifier struct {
	idGenerator func() string
	now         func() time.Time
}

// NewCascadeNotifier wires the notifier's id and time sources.
func NewCascadeNotifier(idGenerator func() string, now func() time.Time) *CascadeNotifier {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CascadeNotifier{idGenerator: idGenerator, now: now}
}

// Cascade produces one notification per future booking on the removed
// resources. A user with several cancelled bookings receives one message per
// booking but counts once in the affected-users figure.
func (n *CascadeNotifier) Cascade(plan FloorPlan, removed []Resource, cause CascadeCause) ([]Notification, CascadeResult) {
	if n == nil || len(removed) == 0 {
		return nil, CascadeResult{}
	}

	now := n.now()
	notifications := make([]Notification, 0)
	affected := make(map[string]struct{})

	for _, res := range removed {
		for _, booking := range res.Bookings {
			if !booking.End.After(now) {
				continue
			}
			notifications = append(notifications, Notification{
				ID:        n.idGenerator(),
				UserID:    booking.UserID,
				Message:   cancellationMessage(plan, res, cause),
				Reason:    cancellationReason(res, cause),
				CreatedAt: now,
			})
			affected[booking.UserID] = struct{}{}
		}
	}

	if len(notifications) == 0 {
		return nil, CascadeResult{}
	}

	return notifications, CascadeResult{
		Notifications: len(notifications),
		AffectedUsers: len(affected),
	}
}

func cancellationMessage(plan FloorPlan, res Resource, cause CascadeCause) string {
	label := res.DisplayName()
	if res.Kind == KindRoom {
		label = fmt.Sprintf("Room %s", res.Name)
	}

	if cause == CauseFloorDeleted {
		return fmt.Sprintf("Your booking for %s (Floor %d) has been cancelled because the entire floor was removed.", label, plan.FloorNumber)
	}
	return fmt.Sprintf("Your booking for %s (Floor %d) has been cancelled because the %s was removed.", label, plan.FloorNumber, string(res.Kind))
}

func cancellationReason(res Resource, cause CascadeCause) string {
	if cause == CauseFloorDeleted {
		return ReasonFloorDeleted
	}
	if res.Kind == KindDesk {
		return ReasonDeskRemoved
	}
	return ReasonRoomRemoved
}
