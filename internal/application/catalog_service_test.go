package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/office-booking/internal/persistence"
)

type planRepoStub struct {
	list    []FloorPlan
	listErr error

	created   FloorPlan
	createErr error

	replaced        FloorPlan
	replacedVersion int64
	replacedBatch   []Notification
	replaceErr      error

	deletedID    string
	deletedBatch []Notification
	deleteErr    error
}

func (r *planRepoStub) CreateFloorPlan(ctx context.Context, plan FloorPlan) (FloorPlan, error) {
	if r.createErr != nil {
		return FloorPlan{}, r.createErr
	}
	r.created = plan
	return plan, nil
}

func (r *planRepoStub) GetFloorPlan(ctx context.Context, id string) (FloorPlan, error) {
	for _, plan := range r.list {
		if plan.ID == id {
			return plan, nil
		}
	}
	return FloorPlan{}, ErrNotFound
}

func (r *planRepoStub) ListFloorPlans(ctx context.Context) ([]FloorPlan, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]FloorPlan, len(r.list))
	copy(out, r.list)
	return out, nil
}

func (r *planRepoStub) ReplaceFloorPlan(ctx context.Context, plan FloorPlan, expectedVersion int64, batch []Notification) (FloorPlan, error) {
	if r.replaceErr != nil {
		return FloorPlan{}, r.replaceErr
	}
	r.replaced = plan
	r.replacedVersion = expectedVersion
	r.replacedBatch = batch
	return plan, nil
}

func (r *planRepoStub) DeleteFloorPlan(ctx context.Context, id string, batch []Notification) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedID = id
	r.deletedBatch = batch
	return nil
}

var catalogNow = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func newCatalogService(repo *planRepoStub) *CatalogService {
	counter := 0
	idGenerator := func() string {
		counter++
		return "generated-" + string(rune('0'+counter))
	}
	now := func() time.Time { return catalogNow }
	return NewCatalogService(repo, NewCascadeNotifier(idGenerator, now), NewFloorLocks(), idGenerator, now)
}

func storedSecondFloor() FloorPlan {
	return FloorPlan{
		ID:          "floor-2",
		Name:        "Second Floor",
		FloorNumber: 2,
		Version:     3,
		Resources: []Resource{
			{
				ID:       "room-east",
				Kind:     KindRoom,
				Name:     "East Room",
				Capacity: 8,
				Bookings: []Booking{
					{ID: "b-1", UserID: "user-a", Start: catalogNow.Add(time.Hour), End: catalogNow.Add(2 * time.Hour)},
				},
			},
			{
				ID:       "D-101",
				Kind:     KindDesk,
				Capacity: 1,
				Bookings: []Booking{
					{ID: "b-2", UserID: "user-b", Start: catalogNow.Add(3 * time.Hour), End: catalogNow.Add(4 * time.Hour)},
				},
			},
		},
		CreatedAt: catalogNow.Add(-48 * time.Hour),
		UpdatedAt: catalogNow.Add(-24 * time.Hour),
	}
}

func intPtr(v int64) *int64 { return &v }

func TestCatalogService_SaveFloorPlan(t *testing.T) {
	t.Run("validates required attributes", func(t *testing.T) {
		svc := newCatalogService(&planRepoStub{})

		_, _, err := svc.SaveFloorPlan(context.Background(), SaveFloorPlanParams{
			Principal: Principal{UserID: "user-1", Role: RoleAdmin},
			Input: FloorPlanInput{
				FloorID:     "floor-2",
				Name:        "   ",
				FloorNumber: -1,
				Resources: []ResourceInput{
					{ID: "room-1", Kind: KindRoom, Name: "  ", Capacity: 0},
					{ID: "x", Kind: ResourceKind("closet")},
				},
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"name", "floor_number", "version", "room_name", "capacity", "resource_kind"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects names that collide after normalization", func(t *testing.T) {
		repo := &planRepoStub{list: []FloorPlan{{ID: "floor-1", Name: "Floor 2", FloorNumber: 2}}}
		svc := newCatalogService(repo)

		_, _, err := svc.SaveFloorPlan(context.Background(), SaveFloorPlanParams{
			Principal: Principal{UserID: "user-1", Role: RoleAdmin},
			Input:     FloorPlanInput{Name: "floor-2!", FloorNumber: 5},
		})

		var uErr *UniquenessError
		if !errors.As(err, &uErr) || uErr.Field != "name" {
			t.Fatalf("expected name uniqueness error, got %v", err)
		}
		if !errors.Is(err, ErrUniquenessConflict) {
			t.Fatalf("expected ErrUniquenessConflict sentinel, got %v", err)
		}
	})

	t.Run("rejects duplicate floor numbers", func(t *testing.T) {
		repo := &planRepoStub{list: []FloorPlan{{ID: "floor-1", Name: "First", FloorNumber: 1}}}
		svc := newCatalogService(repo)

		_, _, err := svc.SaveFloorPlan(context.Background(), SaveFloorPlanParams{
			Principal: Principal{UserID: "user-1", Role: RoleAdmin},
			Input:     FloorPlanInput{Name: "Mezzanine", FloorNumber: 1},
		})

		var uErr *UniquenessError
		if !errors.As(err, &uErr) || uErr.Field != "floor_number" {
			t.Fatalf("expected floor_number uniqueness error, got %v", err)
		}
	})

	t.Run("global uniqueness is checked before intra-floor shape", func(t *testing.T) {
		repo := &planRepoStub{list: []FloorPlan{{ID: "floor-1", Name: "Atrium", FloorNumber: 1}}}
		svc := newCatalogService(repo)

		// The desk id is malformed too, but the name collision must win.
		_, _, err := svc.SaveFloorPlan(context.Background(), SaveFloorPlanParams{
			Principal: Principal{UserID: "user-1", Role: RoleAdmin},
			Input: FloorPlanInput{
				Name:        "atrium",
				FloorNumber: 4,
				Resources:   []ResourceInput{{ID: "DESK-1", Kind: KindDesk}},
			},
		})

		var uErr *UniquenessError
		if !errors.As(err, &uErr) || uErr.Field != "name" {
			t.Fatalf("expected name uniqueness error to take precedence, got %v", err)
		}
	})

	t.Run("rejects duplicate room names within the floor", func(t *testing.T) {
		svc := newCatalogService(&planRepoStub{})

		_, _, err := svc.SaveFloorPlan(context.Background(), SaveFloorPlanParams{
			Principal: Principal{UserID: "user-1", Role: RoleAdmin},
			Input: FloorPlanInput{
				Name:        "Fourth Floor",
				FloorNumber: 4,
				Resources: []ResourceInput{
					{ID: "room-1", Kind: KindRoom, Name: "Board Room", Capacity: 10},
					{ID: "room-2", Kind: KindRoom, Name: "board-room", Capacity: 4},
				},
			},
		})

		var uErr *UniquenessError
		if !errors.As(err, &uErr) || uErr.Field != "room_name" {
			t.Fatalf("expected room_name uniqueness error, got %v", err)
		}
	})

	t.Run("rejects duplicate desk ids within the floor", func(t *testing.T) {
		svc := newCatalogService(&planRepoStub{})

		_, _, err := svc.SaveFloorPlan(context.Background(), SaveFloorPlanParams{
			Principal: Principal{UserID: "user-1", Role: RoleAdmin},
			Input: FloorPlanInput{
				Name:        "Fourth Floor",
				FloorNumber: 4,
				Resources: []ResourceInput{
					{ID: "D-101", Kind: KindDesk},
					{ID: "d-101", Kind: KindDesk},
				},
			},
		})

		var uErr *UniquenessError
		if !errors.As(err, &uErr) || uErr.Field != "desk_id" {
			t.Fatalf("expected desk_id uniqueness error, got %v", err)
		}
	})

	t.Run("rejects desk ids that fail the pattern", func(t *testing.T) {
		svc := newCatalogService(&planRepoStub{})

		_, _, err := svc.SaveFloorPlan(context.Background(), SaveFloorPlanParams{
			Principal: Principal{UserID: "user-1", Role: RoleAdmin},
			Input: FloorPlanInput{
				Name:        "Fourth Floor",
				FloorNumber: 4,
				Resources:   []ResourceInput{{ID: "DESK-1", Kind: KindDesk}},
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["desk_id"]; !ok {
			t.Fatalf("expected desk_id validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects room ids claimed by another floor", func(t *testing.T) {
		repo := &planRepoStub{list: []FloorPlan{{
			ID:          "floor-1",
			Name:        "First",
			FloorNumber: 1,
			Resources:   []Resource{{ID: "room-east", Kind: KindRoom, Name: "East", Capacity: 4}},
		}}}
		svc := newCatalogService(repo)

		_, _, err := svc.SaveFloorPlan(context.Background(), SaveFloorPlanParams{
			Principal: Principal{UserID: "user-1", Role: RoleAdmin},
			Input: FloorPlanInput{
				Name:        "Fourth Floor",
				FloorNumber: 4,
				Resources:   []ResourceInput{{ID: "room-east", Kind: KindRoom, Name: "Other East", Capacity: 6}},
			},
		})

		var uErr *UniquenessError
		if !errors.As(err, &uErr) || uErr.Field != "room_id" {
			t.Fatalf("expected room_id uniqueness error, got %v", err)
		}
	})

	t.Run("creates new plans at version one", func(t *testing.T) {
		repo := &planRepoStub{}
		svc := newCatalogService(repo)

		plan, cascade, err := svc.SaveFloorPlan(context.Background(), SaveFloorPlanParams{
			Principal: Principal{UserID: "user-1", Role: RoleAdmin},
			Input: FloorPlanInput{
				Name:        "  Fourth Floor  ",
				FloorNumber: 4,
				Resources: []ResourceInput{
					{ID: "room-1", Kind: KindRoom, Name: "Board Room", Capacity: 10},
					{ID: "D-401", Kind: KindDesk, Capacity: 9},
				},
			},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if plan.Version != 1 {
			t.Fatalf("expected version 1, got %d", plan.Version)
		}
		if plan.ID == "" || repo.created.ID != plan.ID {
			t.Fatalf("expected repository to receive generated id, got %q", repo.created.ID)
		}
		if plan.Name != "Fourth Floor" {
			t.Fatalf("expected trimmed name, got %q", plan.Name)
		}
		if !plan.CreatedAt.Equal(catalogNow) || !plan.UpdatedAt.Equal(catalogNow) {
			t.Fatalf("expected timestamps to use injected clock, got created=%v updated=%v", plan.CreatedAt, plan.UpdatedAt)
		}
		if plan.Resources[1].Capacity != 1 {
			t.Fatalf("expected desk capacity pinned to one, got %d", plan.Resources[1].Capacity)
		}
		if cascade.Notifications != 0 || cascade.AffectedUsers != 0 {
			t.Fatalf("expected empty cascade on create, got %+v", cascade)
		}
	})

	t.Run("a concurrent duplicate names the column that collided", func(t *testing.T) {
		// Two creates can race past the uniqueness scan; the repository then
		// reports whichever unique index fired.
		tests := []struct {
			name          string
			driverMessage string
			wantField     string
			wantValue     string
		}{
			{
				name:          "floor number index",
				driverMessage: "UNIQUE constraint failed: floor_plans.floor_number",
				wantField:     "floor_number",
				wantValue:     "4",
			},
			{
				name:          "normalized name index",
				driverMessage: "UNIQUE constraint failed: floor_plans.normalized_name",
				wantField:     "name",
				wantValue:     "Fourth Floor",
			},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				repo := &planRepoStub{
					createErr: fmt.Errorf("%w: %s", persistence.ErrDuplicate, tc.driverMessage),
				}
				svc := newCatalogService(repo)

				_, _, err := svc.SaveFloorPlan(context.Background(), SaveFloorPlanParams{
					Principal: Principal{UserID: "user-1", Role: RoleAdmin},
					Input: FloorPlanInput{
						Name:        "Fourth Floor",
						FloorNumber: 4,
					},
				})

				var uErr *UniquenessError
				if !errors.As(err, &uErr) {
					t.Fatalf("expected UniquenessError, got %v", err)
				}
				if uErr.Field != tc.wantField || uErr.Value != tc.wantValue {
					t.Fatalf("expected %s=%q, got %s=%q", tc.wantField, tc.wantValue, uErr.Field, uErr.Value)
				}
			})
		}
	})

	t.Run("updating an unknown floor reports not found", func(t *testing.T) {
		svc := newCatalogService(&planRepoStub{})

		_, _, err := svc.SaveFloorPlan(context.Background(), SaveFloorPlanParams{
			Principal: Principal{UserID: "user-1", Role: RoleAdmin},
			Input: FloorPlanInput{
				FloorID:     "missing",
				Name:        "Fourth Floor",
				FloorNumber: 4,
				Version:     intPtr(1),
			},
		})

		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("stale version fails for administrators", func(t *testing.T) {
		repo := &planRepoStub{list: []FloorPlan{storedSecondFloor()}}
		svc := newCatalogService(repo)

		_, _, err := svc.SaveFloorPlan(context.Background(), SaveFloorPlanParams{
			Principal: Principal{UserID: "user-1", Role: RoleAdmin},
			Input: FloorPlanInput{
				FloorID:     "floor-2",
				Name:        "Second Floor",
				FloorNumber: 2,
				Version:     intPtr(2),
			},
		})

		var cErr *VersionConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected VersionConflictError, got %v", err)
		}
		if cErr.Stored != 3 || cErr.Submitted != 2 {
			t.Fatalf("expected stored=3 submitted=2, got %+v", cErr)
		}
	})

	t.Run("super-admin forces past a stale version", func(t *testing.T) {
		repo := &planRepoStub{list: []FloorPlan{storedSecondFloor()}}
		svc := newCatalogService(repo)

		plan, _, err := svc.SaveFloorPlan(context.Background(), SaveFloorPlanParams{
			Principal: Principal{UserID: "user-1", Role: RoleSuperAdmin},
			Input: FloorPlanInput{
				FloorID:     "floor-2",
				Name:        "Second Floor",
				FloorNumber: 2,
				Version:     intPtr(2),
				Resources: []ResourceInput{
					{ID: "room-east", Kind: KindRoom, Name: "East Room", Capacity: 8},
					{ID: "D-101", Kind: KindDesk},
				},
			},
		})
		if err != nil {
			t.Fatalf("expected forced overwrite to succeed, got %v", err)
		}

		if plan.Version != 4 {
			t.Fatalf("expected version bumped from stored value, got %d", plan.Version)
		}
		if repo.replacedVersion != 3 {
			t.Fatalf("expected CAS against stored version 3, got %d", repo.replacedVersion)
		}
	})

	t.Run("removed resources cascade and bookings carry over", func(t *testing.T) {
		repo := &planRepoStub{list: []FloorPlan{storedSecondFloor()}}
		svc := newCatalogService(repo)

		// The desk is dropped; the room survives with its booking intact.
		plan, cascade, err := svc.SaveFloorPlan(context.Background(), SaveFloorPlanParams{
			Principal: Principal{UserID: "user-1", Role: RoleAdmin},
			Input: FloorPlanInput{
				FloorID:     "floor-2",
				Name:        "Second Floor",
				FloorNumber: 2,
				Version:     intPtr(3),
				Resources: []ResourceInput{
					{ID: "room-east", Kind: KindRoom, Name: "East Room", Capacity: 8},
				},
			},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if cascade.Notifications != 1 || cascade.AffectedUsers != 1 {
			t.Fatalf("expected one notification for one user, got %+v", cascade)
		}
		if len(repo.replacedBatch) != 1 {
			t.Fatalf("expected batch committed with the structural write, got %d entries", len(repo.replacedBatch))
		}
		note := repo.replacedBatch[0]
		if note.UserID != "user-b" || note.Reason != ReasonDeskRemoved {
			t.Fatalf("unexpected notification %+v", note)
		}
		if len(plan.Resources) != 1 || len(plan.Resources[0].Bookings) != 1 {
			t.Fatalf("expected surviving room to keep its booking, got %+v", plan.Resources)
		}
		if plan.Version != 4 {
			t.Fatalf("expected version increment, got %d", plan.Version)
		}
		if !plan.CreatedAt.Equal(storedSecondFloor().CreatedAt) {
			t.Fatalf("expected creation time preserved, got %v", plan.CreatedAt)
		}
	})
}

func TestCatalogService_DeleteFloorPlan(t *testing.T) {
	t.Run("requires an elevated role", func(t *testing.T) {
		svc := newCatalogService(&planRepoStub{})

		_, err := svc.DeleteFloorPlan(context.Background(), Principal{UserID: "user-1", Role: RoleMember}, "floor-2")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("unknown floors report not found", func(t *testing.T) {
		svc := newCatalogService(&planRepoStub{})

		_, err := svc.DeleteFloorPlan(context.Background(), Principal{UserID: "user-1", Role: RoleAdmin}, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("notifies once per future booking and counts distinct users", func(t *testing.T) {
		plan := storedSecondFloor()
		plan.Resources[0].Bookings = []Booking{
			{ID: "b-1", UserID: "user-a", Start: catalogNow.Add(time.Hour), End: catalogNow.Add(2 * time.Hour)},
			{ID: "b-2", UserID: "user-a", Start: catalogNow.Add(5 * time.Hour), End: catalogNow.Add(6 * time.Hour)},
			{ID: "b-3", UserID: "user-c", Start: catalogNow.Add(-3 * time.Hour), End: catalogNow.Add(-2 * time.Hour)},
		}
		plan.Resources[1].Bookings = []Booking{
			{ID: "b-4", UserID: "user-a", Start: catalogNow.Add(time.Hour), End: catalogNow.Add(2 * time.Hour)},
			{ID: "b-5", UserID: "user-b", Start: catalogNow.Add(time.Hour), End: catalogNow.Add(2 * time.Hour)},
		}
		repo := &planRepoStub{list: []FloorPlan{plan}}
		svc := newCatalogService(repo)

		cascade, err := svc.DeleteFloorPlan(context.Background(), Principal{UserID: "user-1", Role: RoleAdmin}, "floor-2")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if cascade.Notifications != 4 {
			t.Fatalf("expected four notifications, got %d", cascade.Notifications)
		}
		if cascade.AffectedUsers != 2 {
			t.Fatalf("expected two distinct users, got %d", cascade.AffectedUsers)
		}
		if repo.deletedID != "floor-2" {
			t.Fatalf("expected aggregate deletion, got %q", repo.deletedID)
		}
		if len(repo.deletedBatch) != 4 {
			t.Fatalf("expected batch handed to the repository, got %d entries", len(repo.deletedBatch))
		}
		for _, note := range repo.deletedBatch {
			if note.Reason != ReasonFloorDeleted {
				t.Fatalf("expected floor_deleted reason, got %q", note.Reason)
			}
		}
	})
}

func TestCatalogService_ListFloorPlans(t *testing.T) {
	repo := &planRepoStub{list: []FloorPlan{
		{ID: "floor-9", Name: "Ninth", FloorNumber: 9},
		{ID: "floor-1", Name: "First", FloorNumber: 1},
		{ID: "floor-4", Name: "Fourth", FloorNumber: 4},
	}}
	svc := newCatalogService(repo)

	plans, err := svc.ListFloorPlans(context.Background(), Principal{UserID: "user-1"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	numbers := make([]int, 0, len(plans))
	for _, plan := range plans {
		numbers = append(numbers, plan.FloorNumber)
	}
	for i := 1; i < len(numbers); i++ {
		if numbers[i-1] > numbers[i] {
			t.Fatalf("expected ascending floor numbers, got %v", numbers)
		}
	}
}
