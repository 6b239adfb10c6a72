package solver

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	KindEmptyItems               ErrorKind = "EmptyItems"
	KindTooManyItems             ErrorKind = "TooManyItems"
	KindInvalidCapacity          ErrorKind = "InvalidCapacity"
	KindCapacityTooLarge         ErrorKind = "CapacityTooLarge"
	KindInvalidItem              ErrorKind = "InvalidItem"
	KindDuplicateItemID          ErrorKind = "DuplicateItemId"
	KindInvalidAlgorithm         ErrorKind = "InvalidAlgorithm"
	KindCapacityTooLargeForExact ErrorKind = "CapacityTooLargeForExact"
)

// Sentinel errors, one per ErrorKind. A *ValidationError unwraps to the
// sentinel of its kind so callers can use errors.Is.
var (
	ErrEmptyItems               = errors.New("solver: items must not be empty")
	ErrTooManyItems             = errors.New("solver: too many items")
	ErrInvalidCapacity          = errors.New("solver: capacity must be greater than 0")
	ErrCapacityTooLarge         = errors.New("solver: capacity too large")
	ErrInvalidItem              = errors.New("solver: invalid item")
	ErrDuplicateItemID          = errors.New("solver: duplicate item id")
	ErrInvalidAlgorithm         = errors.New("solver: invalid algorithm")
	ErrCapacityTooLargeForExact = errors.New("solver: capacity too large for the exact algorithm")

	// ErrInternal marks an unexpected failure inside a solver. The call
	// produced no solution.
	ErrInternal = errors.New("solver: internal error")
)

var kindSentinels = map[ErrorKind]error{
	KindEmptyItems:               ErrEmptyItems,
	KindTooManyItems:             ErrTooManyItems,
	KindInvalidCapacity:          ErrInvalidCapacity,
	KindCapacityTooLarge:         ErrCapacityTooLarge,
	KindInvalidItem:              ErrInvalidItem,
	KindDuplicateItemID:          ErrDuplicateItemID,
	KindInvalidAlgorithm:         ErrInvalidAlgorithm,
	KindCapacityTooLargeForExact: ErrCapacityTooLargeForExact,
}

// ValidationError describes a rejected problem: what failed, on which field,
// and for item-level failures, which item.
type ValidationError struct {
	Kind    ErrorKind
	Field   string
	ItemID  *int64
	Message string
}

func (e *ValidationError) Error() string {
	if e.ItemID != nil {
		return fmt.Sprintf("solver: %s (item %d): %s", e.Kind, *e.ItemID, e.Message)
	}
	return fmt.Sprintf("solver: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the sentinel error for e.Kind.
func (e *ValidationError) Unwrap() error {
	return kindSentinels[e.Kind]
}

func invalid(kind ErrorKind, field, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

func invalidItem(kind ErrorKind, id int64, field, format string, args ...any) *ValidationError {
	e := invalid(kind, field, format, args...)
	e.ItemID = &id
	return e
}
