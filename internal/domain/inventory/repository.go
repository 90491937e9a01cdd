package inventory

import (
	"context"

	"github.com/fuel-nexus/service-backoffice/internal/domain"
	"github.com/google/uuid"
)

// InventoryRepository is the ledger's persistence contract. Consume and
// Restock are the only operations that mutate available quantity; both are
// atomic read-modify-writes with respect to concurrent callers on the same
// record.
type InventoryRepository interface {
	// FindByID retrieves a batch by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryRecord, error)

	// FindByBatchNumber retrieves a batch by its unique batch number.
	FindByBatchNumber(ctx context.Context, batchNumber string) (*InventoryRecord, error)

	// FindByFuelType retrieves all batches of a fuel type in consumption
	// order: oldest last_updated first, batch number as tiebreak. Fulfillment
	// consumes from the first batch in this order that can cover the request.
	FindByFuelType(ctx context.Context, fuelType domain.FuelType) ([]*InventoryRecord, error)

	// ListAll retrieves all batches with pagination.
	ListAll(ctx context.Context, page, limit int) ([]*InventoryRecord, int64, error)

	// Save persists a new batch. A batch number collision yields a ConflictError.
	Save(ctx context.Context, record *InventoryRecord) error

	// Update persists metadata changes (storage location, batch number).
	// It never touches available quantity.
	Update(ctx context.Context, record *InventoryRecord) error

	// Restock atomically increases available quantity and returns the new
	// quantity. Fails only with NotFoundError on an unknown record.
	Restock(ctx context.Context, id uuid.UUID, amount float64) (float64, error)

	// Consume atomically decreases available quantity if and only if amount
	// does not exceed the current quantity, returning the remaining quantity.
	// On shortfall it fails with InsufficientInventoryError and leaves the
	// record unchanged; the check-and-decrement is a single atomic step.
	Consume(ctx context.Context, id uuid.UUID, amount float64) (float64, error)
}
