package proposal

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the proposal does not exist.
	ErrNotFound = errors.New("proposal not found")
	// ErrSlotNotFound indicates a composite key that resolves to no slot.
	ErrSlotNotFound = errors.New("service slot not found")
	// ErrInvalidSlot indicates a slot with negative numeric fields.
	ErrInvalidSlot = errors.New("invalid service slot")
	// ErrInvalidAdjustment indicates a negative or out-of-range gratuity or
	// discount.
	ErrInvalidAdjustment = errors.New("invalid adjustment")
	// ErrInvalidTransition indicates an unreachable status change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrValidation indicates malformed input fields.
	ErrValidation = errors.New("validation failed")
	// ErrVersionConflict indicates a concurrent edit was persisted first.
	ErrVersionConflict = errors.New("proposal version conflict")
)

// BatchError reports the first failing operation of an edit batch and its
// zero-based position. The batch is not applied.
type BatchError struct {
	Position int
	Op       OpType
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("operation %d (%s): %v", e.Position, e.Op, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
