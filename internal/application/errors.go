package application

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested floor, resource, or booking
	// does not exist. Cancelling a booking owned by someone else reports the
	// same error so callers cannot tell whether the booking exists.
	ErrNotFound = errors.New("application: not found")
	// ErrUniquenessConflict is the sentinel wrapped by UniquenessError.
	ErrUniquenessConflict = errors.New("application: uniqueness conflict")
	// ErrVersionConflict is the sentinel wrapped by VersionConflictError.
	ErrVersionConflict = errors.New("application: version conflict")
	// ErrSchedulingConflict is the sentinel wrapped by SchedulingConflictError.
	ErrSchedulingConflict = errors.New("application: scheduling conflict")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// UniquenessError reports a name or identifier collision, carrying the
// offending field and value so callers can render a precise message.
type UniquenessError struct {
	Field string
	Value string
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("%s %q is already in use", e.Field, e.Value)
}

func (e *UniquenessError) Unwrap() error {
	return ErrUniquenessConflict
}

// VersionConflictError reports a stale structural write.
type VersionConflictError struct {
	Stored    int64
	Submitted int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("stale floor plan write: submitted version %d, stored version %d", e.Submitted, e.Stored)
}

func (e *VersionConflictError) Unwrap() error {
	return ErrVersionConflict
}

// SchedulingConflictError reports an interval overlap on a resource.
type SchedulingConflictError struct {
	FloorID    string
	ResourceID string
}

func (e *SchedulingConflictError) Error() string {
	return fmt.Sprintf("resource %s is already booked for the requested time", e.ResourceID)
}

func (e *SchedulingConflictError) Unwrap() error {
	return ErrSchedulingConflict
}
