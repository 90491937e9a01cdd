package delivery

import (
	"fmt"
	"time"

	"github.com/fuel-nexus/service-backoffice/internal/domain"
	"github.com/google/uuid"
)

// ContactSnapshot is the customer contact captured at delivery creation, so
// the logistics record stays readable even if the profile changes later.
type ContactSnapshot struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// Delivery is the aggregate root for the logistics record fulfilling one
// booking, including agent/vehicle assignment and physical status.
type Delivery struct {
	id              uuid.UUID
	bookingID       uuid.UUID
	customerContact ContactSnapshot
	deliveryAddress string
	fuelType        domain.FuelType
	quantity        float64
	status          DeliveryStatus
	agentID         *uuid.UUID
	vehicleID       *uuid.UUID
	dispatchedAt    *time.Time
	deliveredAt     *time.Time
	cancelledAt     *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewDelivery creates a new Delivery aggregate in PENDING, linked to exactly
// one booking. The requested quantity must not exceed the booking's reserved
// quantity; that check belongs to the caller, which holds the booking.
func NewDelivery(
	bookingID uuid.UUID,
	contact ContactSnapshot,
	deliveryAddress string,
	fuelType domain.FuelType,
	quantity float64,
) (*Delivery, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if contact.Name == "" {
		return nil, domain.NewValidationError("customer contact name is required")
	}
	if deliveryAddress == "" {
		return nil, domain.NewValidationError("delivery address is required")
	}
	if !fuelType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid fuel type: %s", fuelType))
	}
	if quantity <= 0 {
		return nil, domain.NewValidationError("delivery quantity must be positive")
	}

	now := time.Now().UTC()
	return &Delivery{
		id:              uuid.New(),
		bookingID:       bookingID,
		customerContact: contact,
		deliveryAddress: deliveryAddress,
		fuelType:        fuelType,
		quantity:        quantity,
		status:          StatusPending,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructDelivery rebuilds a Delivery from persistence data (no validation).
func ReconstructDelivery(
	id uuid.UUID,
	bookingID uuid.UUID,
	contact ContactSnapshot,
	deliveryAddress string,
	fuelType domain.FuelType,
	quantity float64,
	status DeliveryStatus,
	agentID *uuid.UUID,
	vehicleID *uuid.UUID,
	dispatchedAt *time.Time,
	deliveredAt *time.Time,
	cancelledAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Delivery {
	return &Delivery{
		id:              id,
		bookingID:       bookingID,
		customerContact: contact,
		deliveryAddress: deliveryAddress,
		fuelType:        fuelType,
		quantity:        quantity,
		status:          status,
		agentID:         agentID,
		vehicleID:       vehicleID,
		dispatchedAt:    dispatchedAt,
		deliveredAt:     deliveredAt,
		cancelledAt:     cancelledAt,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the delivery's unique identifier.
func (d *Delivery) ID() uuid.UUID { return d.id }

// BookingID returns the booking this delivery fulfills.
func (d *Delivery) BookingID() uuid.UUID { return d.bookingID }

// CustomerContact returns the contact snapshot captured at creation.
func (d *Delivery) CustomerContact() ContactSnapshot { return d.customerContact }

// DeliveryAddress returns the drop address.
func (d *Delivery) DeliveryAddress() string { return d.deliveryAddress }

// FuelType returns the requested fuel type.
func (d *Delivery) FuelType() domain.FuelType { return d.fuelType }

// Quantity returns the requested quantity.
func (d *Delivery) Quantity() float64 { return d.quantity }

// Status returns the current delivery status.
func (d *Delivery) Status() DeliveryStatus { return d.status }

// AgentID returns the assigned delivery agent, or nil if unassigned.
func (d *Delivery) AgentID() *uuid.UUID { return d.agentID }

// VehicleID returns the assigned vehicle, or nil if unassigned.
func (d *Delivery) VehicleID() *uuid.UUID { return d.vehicleID }

// DispatchedAt returns the time the delivery was dispatched.
func (d *Delivery) DispatchedAt() *time.Time { return d.dispatchedAt }

// DeliveredAt returns the time the delivery was completed.
func (d *Delivery) DeliveredAt() *time.Time { return d.deliveredAt }

// CancelledAt returns the time the delivery was cancelled.
func (d *Delivery) CancelledAt() *time.Time { return d.cancelledAt }

// Version returns the entity version for optimistic locking.
func (d *Delivery) Version() int64 { return d.version }

// CreatedAt returns the creation timestamp.
func (d *Delivery) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (d *Delivery) UpdatedAt() time.Time { return d.updatedAt }

// --- Behavior ---

// Assign sets the delivery agent and vehicle. Each may be assigned
// independently (uuid.Nil leaves the current assignment untouched).
// Assignment is only allowed while the delivery is PENDING or DISPATCHED,
// and re-assigning the same agent/vehicle is a no-op rather than an error.
func (d *Delivery) Assign(agentID, vehicleID uuid.UUID) error {
	if d.status != StatusPending && d.status != StatusDispatched {
		return domain.NewInvalidStateError(string(d.status), "assignment")
	}
	changed := false
	if agentID != uuid.Nil && (d.agentID == nil || *d.agentID != agentID) {
		d.agentID = &agentID
		changed = true
	}
	if vehicleID != uuid.Nil && (d.vehicleID == nil || *d.vehicleID != vehicleID) {
		d.vehicleID = &vehicleID
		changed = true
	}
	if changed {
		d.updatedAt = time.Now().UTC()
	}
	return nil
}

// Dispatch transitions the delivery from PENDING to DISPATCHED. Both an
// agent and a vehicle must be assigned before dispatch.
func (d *Delivery) Dispatch() error {
	if !d.status.CanTransitionTo(StatusDispatched) {
		return domain.NewInvalidStateError(string(d.status), string(StatusDispatched))
	}
	if d.agentID == nil {
		return domain.NewValidationError("delivery agent must be assigned before dispatch")
	}
	if d.vehicleID == nil {
		return domain.NewValidationError("vehicle must be assigned before dispatch")
	}
	now := time.Now().UTC()
	d.status = StatusDispatched
	d.dispatchedAt = &now
	d.updatedAt = now
	return nil
}

// MarkDelivered transitions the delivery from DISPATCHED to DELIVERED.
// Inventory consumption is orchestrated by the caller in the same unit of
// work; this method only guards the transition itself.
func (d *Delivery) MarkDelivered() error {
	if !d.status.CanTransitionTo(StatusDelivered) {
		return domain.NewInvalidStateError(string(d.status), string(StatusDelivered))
	}
	now := time.Now().UTC()
	d.status = StatusDelivered
	d.deliveredAt = &now
	d.updatedAt = now
	return nil
}

// Cancel transitions the delivery to CANCELLED. Cancelling a DELIVERED
// delivery is forbidden; cancellation never touches inventory.
func (d *Delivery) Cancel() error {
	if !d.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(d.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	d.status = StatusCancelled
	d.cancelledAt = &now
	d.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (d *Delivery) IncrementVersion() {
	d.version++
	d.updatedAt = time.Now().UTC()
}
