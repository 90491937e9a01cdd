package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fuel-nexus/service-backoffice/internal/database"
	"github.com/fuel-nexus/service-backoffice/internal/domain"
	inventoryDomain "github.com/fuel-nexus/service-backoffice/internal/domain/inventory"
)

// InventoryModel is the GORM model for the fuel_inventory table.
type InventoryModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID         uuid.UUID `gorm:"type:uuid;index;not null"`
	FuelType          string    `gorm:"not null;size:10;index"`
	BatchNumber       string    `gorm:"uniqueIndex;not null;size:50"`
	AvailableQuantity float64   `gorm:"not null;check:available_quantity >= 0"`
	StorageLocation   string    `gorm:"not null;size:200"`
	LastUpdated       time.Time `gorm:"not null"`
	CreatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (InventoryModel) TableName() string {
	return "fuel_inventory"
}

// GormInventoryRepository is the GORM-based implementation of InventoryRepository.
// Consume and Restock are single conditional UPDATE statements; the quantity
// guard lives in the WHERE clause so the check-and-decrement is one atomic
// step under Postgres row locking, whatever the callers do concurrently.
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository.
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

func (r *GormInventoryRepository) conn(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

// FindByID retrieves a batch by its unique identifier.
func (r *GormInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventoryDomain.InventoryRecord, error) {
	var model InventoryModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("InventoryRecord", id.String())
		}
		return nil, fmt.Errorf("failed to find inventory record by ID: %w", err)
	}
	return toDomainInventory(&model)
}

// FindByBatchNumber retrieves a batch by its unique batch number.
func (r *GormInventoryRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*inventoryDomain.InventoryRecord, error) {
	var model InventoryModel
	if err := r.conn(ctx).Where("batch_number = ?", batchNumber).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("InventoryRecord", batchNumber)
		}
		return nil, fmt.Errorf("failed to find inventory record by batch number: %w", err)
	}
	return toDomainInventory(&model)
}

// FindByFuelType retrieves all batches of a fuel type in consumption order:
// oldest last_updated first, batch number as a deterministic tiebreak.
func (r *GormInventoryRepository) FindByFuelType(ctx context.Context, fuelType domain.FuelType) ([]*inventoryDomain.InventoryRecord, error) {
	var models []InventoryModel
	if err := r.conn(ctx).
		Where("fuel_type = ?", string(fuelType)).
		Order("last_updated ASC, batch_number ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find inventory by fuel type: %w", err)
	}

	records := make([]*inventoryDomain.InventoryRecord, len(models))
	for i, m := range models {
		rec, err := toDomainInventory(&m)
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}
	return records, nil
}

// ListAll retrieves all batches with pagination.
func (r *GormInventoryRepository) ListAll(ctx context.Context, page, limit int) ([]*inventoryDomain.InventoryRecord, int64, error) {
	var total int64
	if err := r.conn(ctx).Model(&InventoryModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count inventory records: %w", err)
	}

	var models []InventoryModel
	offset := (page - 1) * limit
	if err := r.conn(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list inventory records: %w", err)
	}

	records := make([]*inventoryDomain.InventoryRecord, len(models))
	for i, m := range models {
		rec, err := toDomainInventory(&m)
		if err != nil {
			return nil, 0, err
		}
		records[i] = rec
	}
	return records, total, nil
}

// Save persists a new batch. A batch number collision yields a ConflictError.
func (r *GormInventoryRepository) Save(ctx context.Context, rec *inventoryDomain.InventoryRecord) error {
	model := toInventoryModel(rec)
	if err := r.conn(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("batch number already exists: %s", rec.BatchNumber()))
		}
		return fmt.Errorf("failed to save inventory record: %w", err)
	}
	return nil
}

// Update persists metadata changes; available quantity is deliberately not
// part of the update set.
func (r *GormInventoryRepository) Update(ctx context.Context, rec *inventoryDomain.InventoryRecord) error {
	result := r.conn(ctx).
		Model(&InventoryModel{}).
		Where("id = ?", rec.ID()).
		Updates(map[string]interface{}{
			"batch_number":     rec.BatchNumber(),
			"storage_location": rec.StorageLocation(),
		})

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("batch number already exists: %s", rec.BatchNumber()))
		}
		return fmt.Errorf("failed to update inventory record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("InventoryRecord", rec.ID().String())
	}
	return nil
}

// Restock atomically increases available quantity and returns the new quantity.
func (r *GormInventoryRepository) Restock(ctx context.Context, id uuid.UUID, amount float64) (float64, error) {
	var models []InventoryModel
	result := r.conn(ctx).
		Model(&models).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "available_quantity"}}}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity + ?", amount),
			"last_updated":       time.Now().UTC(),
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to restock inventory record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, domain.NewNotFoundError("InventoryRecord", id.String())
	}
	return models[0].AvailableQuantity, nil
}

// Consume atomically decreases available quantity. The guard in the WHERE
// clause makes the check-and-decrement a single statement: a concurrent
// caller either sees the decremented row or takes the shortfall path.
func (r *GormInventoryRepository) Consume(ctx context.Context, id uuid.UUID, amount float64) (float64, error) {
	var models []InventoryModel
	result := r.conn(ctx).
		Model(&models).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "available_quantity"}}}).
		Where("id = ? AND available_quantity >= ?", id, amount).
		Updates(map[string]interface{}{
			"available_quantity": gorm.Expr("available_quantity - ?", amount),
			"last_updated":       time.Now().UTC(),
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to consume inventory: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return models[0].AvailableQuantity, nil
	}

	// No row matched: distinguish a missing record from insufficient stock.
	var current InventoryModel
	if err := r.conn(ctx).Where("id = ?", id).First(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.NewNotFoundError("InventoryRecord", id.String())
		}
		return 0, fmt.Errorf("failed to read inventory record: %w", err)
	}
	return 0, domain.NewInsufficientInventoryError(current.BatchNumber, amount, current.AvailableQuantity)
}

// --- Conversion Helpers ---

func toInventoryModel(rec *inventoryDomain.InventoryRecord) *InventoryModel {
	return &InventoryModel{
		ID:                rec.ID(),
		ProductID:         rec.ProductID(),
		FuelType:          string(rec.FuelType()),
		BatchNumber:       rec.BatchNumber(),
		AvailableQuantity: rec.AvailableQuantity(),
		StorageLocation:   rec.StorageLocation(),
		LastUpdated:       rec.LastUpdated(),
		CreatedAt:         rec.CreatedAt(),
	}
}

func toDomainInventory(m *InventoryModel) (*inventoryDomain.InventoryRecord, error) {
	fuelType, err := domain.ParseFuelType(m.FuelType)
	if err != nil {
		return nil, err
	}
	return inventoryDomain.ReconstructInventoryRecord(
		m.ID,
		m.ProductID,
		fuelType,
		m.BatchNumber,
		m.AvailableQuantity,
		m.StorageLocation,
		m.LastUpdated,
		m.CreatedAt,
	), nil
}
