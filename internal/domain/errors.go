package domain

import (
	"errors"
	"fmt"
)

// NotFoundError indicates that a requested entity does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError creates a NotFoundError for the given resource and identifier.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError indicates that input data failed a domain validation rule.
type ValidationError struct {
	Message string
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InvalidStateError indicates an illegal lifecycle transition. It is never
// retried automatically; the current state is left untouched.
type InvalidStateError struct {
	From string
	To   string
}

// NewInvalidStateError creates an InvalidStateError for the attempted transition.
func NewInvalidStateError(from, to string) *InvalidStateError {
	return &InvalidStateError{From: from, To: to}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ConflictError indicates a uniqueness or concurrent-modification conflict.
type ConflictError struct {
	Message string
}

// NewConflictError creates a ConflictError with the given message.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func (e *ConflictError) Error() string {
	return e.Message
}

// InsufficientInventoryError indicates a consume that exceeds the available
// quantity. The ledger guarantees no partial effect when it is returned.
type InsufficientInventoryError struct {
	BatchNumber string
	Requested   float64
	Available   float64
}

// NewInsufficientInventoryError creates an InsufficientInventoryError.
func NewInsufficientInventoryError(batchNumber string, requested, available float64) *InsufficientInventoryError {
	return &InsufficientInventoryError{
		BatchNumber: batchNumber,
		Requested:   requested,
		Available:   available,
	}
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory in batch %s: requested %.2f, available %.2f",
		e.BatchNumber, e.Requested, e.Available)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsInvalidState reports whether err is an InvalidStateError.
func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsInsufficientInventory reports whether err is an InsufficientInventoryError.
func IsInsufficientInventory(err error) bool {
	var target *InsufficientInventoryError
	return errors.As(err, &target)
}
