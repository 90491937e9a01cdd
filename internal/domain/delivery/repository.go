package delivery

import (
	"context"

	"github.com/google/uuid"
)

// DeliveryRepository defines the persistence contract for delivery aggregates.
type DeliveryRepository interface {
	// FindByID retrieves a delivery by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Delivery, error)

	// FindByBookingID retrieves the deliveries linked to a booking.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Delivery, error)

	// ListAll retrieves all deliveries with pagination.
	ListAll(ctx context.Context, page, limit int) ([]*Delivery, int64, error)

	// Save persists a new delivery.
	Save(ctx context.Context, delivery *Delivery) error

	// Update persists changes to an existing delivery with optimistic locking.
	Update(ctx context.Context, delivery *Delivery) error
}
