package application

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	t.Parallel()

	empty := &ValidationError{}
	if empty.HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message, got %q", got)
	}

	empty.add("field", "bad")
	if !empty.HasErrors() {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
	if got := empty.FieldErrors["field"]; got != "bad" {
		t.Fatalf("expected add to populate map, got %q", got)
	}
}

func TestStructuredErrorsUnwrapToSentinels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err      error
		sentinel error
	}{
		{&UniquenessError{Field: "name", Value: "Floor 2"}, ErrUniquenessConflict},
		{&VersionConflictError{Stored: 3, Submitted: 1}, ErrVersionConflict},
		{&SchedulingConflictError{FloorID: "floor-2", ResourceID: "D-101"}, ErrSchedulingConflict},
	}

	for _, tc := range cases {
		if !errors.Is(tc.err, tc.sentinel) {
			t.Fatalf("expected %v to unwrap to %v", tc.err, tc.sentinel)
		}
		if !errors.Is(fmt.Errorf("wrapped: %w", tc.err), tc.sentinel) {
			t.Fatalf("expected wrapped %v to unwrap to %v", tc.err, tc.sentinel)
		}
	}
}

func TestStructuredErrorMessages(t *testing.T) {
	t.Parallel()

	uErr := &UniquenessError{Field: "floor_number", Value: "2"}
	if got := uErr.Error(); got != `floor_number "2" is already in use` {
		t.Fatalf("unexpected message %q", got)
	}

	vErr := &VersionConflictError{Stored: 3, Submitted: 1}
	if got := vErr.Error(); got != "stale floor plan write: submitted version 1, stored version 3" {
		t.Fatalf("unexpected message %q", got)
	}

	sErr := &SchedulingConflictError{FloorID: "floor-2", ResourceID: "D-101"}
	if got := sErr.Error(); got != "resource D-101 is already booked for the requested time" {
		t.Fatalf("unexpected message %q", got)
	}
}
