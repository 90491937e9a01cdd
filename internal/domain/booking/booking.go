package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/fuel-nexus/service-backoffice/internal/domain"
	"github.com/google/uuid"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for a customer's request to purchase a
// quantity of a given fuel type, independent of delivery logistics.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	customerID    uuid.UUID
	productID     uuid.UUID
	fuelType      domain.FuelType
	quantity      float64
	status        BookingStatus
	bookingDate   time.Time
	notes         string
	cancelNote    string
	cancelledAt   *time.Time
	deliveredAt   *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "FB-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "FB-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=PENDING.
// A nil bookingDate defaults to the current time; a supplied one must not
// lie in the future.
func NewBooking(
	customerID uuid.UUID,
	productID uuid.UUID,
	fuelType domain.FuelType,
	quantity float64,
	bookingDate *time.Time,
	notes string,
) (*Booking, error) {
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if productID == uuid.Nil {
		return nil, domain.NewValidationError("product ID is required")
	}
	if !fuelType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid fuel type: %s", fuelType))
	}
	if quantity <= 0 {
		return nil, domain.NewValidationError("booking quantity must be positive")
	}

	now := time.Now().UTC()
	date := now
	if bookingDate != nil {
		if bookingDate.After(now) {
			return nil, domain.NewValidationError("booking date must not be in the future")
		}
		date = bookingDate.UTC()
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	return &Booking{
		id:            uuid.New(),
		bookingNumber: bookingNumber,
		customerID:    customerID,
		productID:     productID,
		fuelType:      fuelType,
		quantity:      quantity,
		status:        StatusPending,
		bookingDate:   date,
		notes:         notes,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	customerID uuid.UUID,
	productID uuid.UUID,
	fuelType domain.FuelType,
	quantity float64,
	status BookingStatus,
	bookingDate time.Time,
	notes string,
	cancelNote string,
	cancelledAt *time.Time,
	deliveredAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		bookingNumber: bookingNumber,
		customerID:    customerID,
		productID:     productID,
		fuelType:      fuelType,
		quantity:      quantity,
		status:        status,
		bookingDate:   bookingDate,
		notes:         notes,
		cancelNote:    cancelNote,
		cancelledAt:   cancelledAt,
		deliveredAt:   deliveredAt,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// CustomerID returns the customer who placed the booking.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// ProductID returns the booked fuel product.
func (b *Booking) ProductID() uuid.UUID { return b.productID }

// FuelType returns the fuel type reserved by this booking.
func (b *Booking) FuelType() domain.FuelType { return b.fuelType }

// Quantity returns the reserved quantity.
func (b *Booking) Quantity() float64 { return b.quantity }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// BookingDate returns when the booking was placed.
func (b *Booking) BookingDate() time.Time { return b.bookingDate }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// DeliveredAt returns the time the booking was fulfilled.
func (b *Booking) DeliveredAt() *time.Time { return b.deliveredAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Confirm transitions the booking from PENDING to CONFIRMED.
func (b *Booking) Confirm() error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	b.status = StatusConfirmed
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkDelivered transitions the booking from CONFIRMED to DELIVERED. It is
// only called by delivery completion, after inventory has been consumed.
func (b *Booking) MarkDelivered() error {
	if !b.status.CanTransitionTo(StatusDelivered) {
		return domain.NewInvalidStateError(string(b.status), string(StatusDelivered))
	}
	now := time.Now().UTC()
	b.status = StatusDelivered
	b.deliveredAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to CANCELLED if it is not in a terminal state.
func (b *Booking) Cancel(reason string) error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelNote = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
