package delivery

import "fmt"

// DeliveryStatus represents the current state of a delivery in its lifecycle.
type DeliveryStatus string

const (
	StatusPending    DeliveryStatus = "PENDING"
	StatusDispatched DeliveryStatus = "DISPATCHED"
	StatusDelivered  DeliveryStatus = "DELIVERED"
	StatusCancelled  DeliveryStatus = "CANCELLED"
)

// validTransitions defines the state machine for delivery status transitions.
// DELIVERED and CANCELLED are terminal; in particular a DELIVERED delivery
// can never be cancelled.
var validTransitions = map[DeliveryStatus][]DeliveryStatus{
	StatusPending:    {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// IsValid returns true if the status is a recognized delivery status.
func (s DeliveryStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s DeliveryStatus) CanTransitionTo(target DeliveryStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s DeliveryStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the status.
func (s DeliveryStatus) String() string {
	return string(s)
}

// ParseDeliveryStatus converts a string to a DeliveryStatus, returning an error if invalid.
func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	status := DeliveryStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid delivery status: %s", s)
	}
	return status, nil
}
