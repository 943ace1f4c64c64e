package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"tour-booking-server/repository"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidDate  = fmt.Errorf("%w: departure date must be in the future", ErrValidation)
	ErrPermission   = errors.New("permission denied")
	ErrInvalidState = errors.New("invalid booking state")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = repository.ErrNotFound
)

// ValidationError carries per-field messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// BatchConflictError lists the selected bookings that blocked a destructive
// bulk action because they are still Pending or Confirmed.
type BatchConflictError struct {
	Blocked []uint
}

func (e *BatchConflictError) Error() string {
	return fmt.Sprintf("cannot delete bookings that are pending or confirmed: %v", e.Blocked)
}

func (e *BatchConflictError) Unwrap() error { return ErrConflict }
