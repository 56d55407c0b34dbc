package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error taxonomy shared by every component. Validation errors
// (ErrInvalidPeriod, ErrInsufficientBalance, ValidationError) are resolved
// before any store mutation; ErrStoreUnavailable and ErrNotFound originate
// from the store and always abort the calling operation.
var (
	ErrInvalidPeriod       = errors.New("invalid period")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrNotFound            = errors.New("not found")
	ErrInvalidAmount       = errors.New("invalid amount")
)

// ValidationError carries per-field messages for operator input.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a problem with a field. The first message per field wins.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns nil when no fields were flagged, so callers can write
// `return ve.OrNil()` without a typed-nil pitfall.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
