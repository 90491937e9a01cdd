package inventory

import (
	"fmt"
	"time"

	"github.com/fuel-nexus/service-backoffice/internal/domain"
	"github.com/google/uuid"
)

// InventoryRecord is a batch of fuel held at a storage location, identified
// by a unique batch number. Its available quantity is only mutated through
// the ledger's atomic Consume and Restock primitives and is never allowed to
// go negative.
type InventoryRecord struct {
	id                uuid.UUID
	productID         uuid.UUID
	fuelType          domain.FuelType
	batchNumber       string
	availableQuantity float64
	storageLocation   string
	lastUpdated       time.Time
	createdAt         time.Time
}

// NewInventoryRecord creates a new batch on restock intake.
func NewInventoryRecord(
	productID uuid.UUID,
	fuelType domain.FuelType,
	batchNumber string,
	initialQuantity float64,
	storageLocation string,
) (*InventoryRecord, error) {
	if productID == uuid.Nil {
		return nil, domain.NewValidationError("product ID is required")
	}
	if !fuelType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid fuel type: %s", fuelType))
	}
	if batchNumber == "" {
		return nil, domain.NewValidationError("batch number is required")
	}
	if initialQuantity < 0 {
		return nil, domain.NewValidationError("initial quantity must not be negative")
	}
	if storageLocation == "" {
		return nil, domain.NewValidationError("storage location is required")
	}

	now := time.Now().UTC()
	return &InventoryRecord{
		id:                uuid.New(),
		productID:         productID,
		fuelType:          fuelType,
		batchNumber:       batchNumber,
		availableQuantity: initialQuantity,
		storageLocation:   storageLocation,
		lastUpdated:       now,
		createdAt:         now,
	}, nil
}

// ReconstructInventoryRecord rebuilds a batch from persistence data (no validation).
func ReconstructInventoryRecord(
	id uuid.UUID,
	productID uuid.UUID,
	fuelType domain.FuelType,
	batchNumber string,
	availableQuantity float64,
	storageLocation string,
	lastUpdated time.Time,
	createdAt time.Time,
) *InventoryRecord {
	return &InventoryRecord{
		id:                id,
		productID:         productID,
		fuelType:          fuelType,
		batchNumber:       batchNumber,
		availableQuantity: availableQuantity,
		storageLocation:   storageLocation,
		lastUpdated:       lastUpdated,
		createdAt:         createdAt,
	}
}

// ID returns the record's unique identifier.
func (r *InventoryRecord) ID() uuid.UUID { return r.id }

// ProductID returns the fuel product held in this batch.
func (r *InventoryRecord) ProductID() uuid.UUID { return r.productID }

// FuelType returns the batch's fuel type.
func (r *InventoryRecord) FuelType() domain.FuelType { return r.fuelType }

// BatchNumber returns the unique batch number.
func (r *InventoryRecord) BatchNumber() string { return r.batchNumber }

// AvailableQuantity returns the quantity available at the time the record was read.
func (r *InventoryRecord) AvailableQuantity() float64 { return r.availableQuantity }

// StorageLocation returns where the batch is held.
func (r *InventoryRecord) StorageLocation() string { return r.storageLocation }

// LastUpdated returns the time of the last quantity mutation.
func (r *InventoryRecord) LastUpdated() time.Time { return r.lastUpdated }

// CreatedAt returns the intake timestamp.
func (r *InventoryRecord) CreatedAt() time.Time { return r.createdAt }

// IsBelow reports whether the available quantity is under the given
// threshold. Side-effect-free; what to do with a low result (alerting,
// reordering) is the caller's decision.
func (r *InventoryRecord) IsBelow(threshold float64) bool {
	return r.availableQuantity < threshold
}

// SetStorageLocation updates the storage location metadata.
func (r *InventoryRecord) SetStorageLocation(location string) error {
	if location == "" {
		return domain.NewValidationError("storage location is required")
	}
	r.storageLocation = location
	return nil
}

// SetBatchNumber updates the batch number metadata.
func (r *InventoryRecord) SetBatchNumber(batchNumber string) error {
	if batchNumber == "" {
		return domain.NewValidationError("batch number is required")
	}
	r.batchNumber = batchNumber
	return nil
}
