package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fuel-nexus/service-backoffice/internal/database"
	"github.com/fuel-nexus/service-backoffice/internal/domain"
	deliveryDomain "github.com/fuel-nexus/service-backoffice/internal/domain/delivery"
)

// DeliveryModel is the GORM model for the deliveries table.
type DeliveryModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	CustomerContact json.RawMessage `gorm:"type:jsonb;not null"`
	DeliveryAddress string          `gorm:"not null;size:500"`
	FuelType        string          `gorm:"not null;size:10"`
	Quantity        float64         `gorm:"not null"`
	Status          string          `gorm:"not null;size:20;index"`
	AgentID         *uuid.UUID      `gorm:"type:uuid;index"`
	VehicleID       *uuid.UUID      `gorm:"type:uuid;index"`
	DispatchedAt    *time.Time      `gorm:""`
	DeliveredAt     *time.Time      `gorm:""`
	CancelledAt     *time.Time      `gorm:""`
	Version         int64           `gorm:"not null;default:1"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DeliveryModel) TableName() string {
	return "deliveries"
}

// GormDeliveryRepository is the GORM-based implementation of DeliveryRepository.
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GormDeliveryRepository.
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

func (r *GormDeliveryRepository) conn(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

// FindByID retrieves a delivery by its unique identifier.
func (r *GormDeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*deliveryDomain.Delivery, error) {
	var model DeliveryModel
	if err := r.conn(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Delivery", id.String())
		}
		return nil, fmt.Errorf("failed to find delivery by ID: %w", err)
	}
	return toDomainDelivery(&model)
}

// FindByBookingID retrieves the deliveries linked to a booking.
func (r *GormDeliveryRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*deliveryDomain.Delivery, error) {
	var models []DeliveryModel
	if err := r.conn(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find deliveries by booking: %w", err)
	}

	deliveries := make([]*deliveryDomain.Delivery, len(models))
	for i, m := range models {
		dl, err := toDomainDelivery(&m)
		if err != nil {
			return nil, err
		}
		deliveries[i] = dl
	}
	return deliveries, nil
}

// ListAll retrieves all deliveries with pagination.
func (r *GormDeliveryRepository) ListAll(ctx context.Context, page, limit int) ([]*deliveryDomain.Delivery, int64, error) {
	var total int64
	if err := r.conn(ctx).Model(&DeliveryModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count deliveries: %w", err)
	}

	var models []DeliveryModel
	offset := (page - 1) * limit
	if err := r.conn(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list deliveries: %w", err)
	}

	deliveries := make([]*deliveryDomain.Delivery, len(models))
	for i, m := range models {
		dl, err := toDomainDelivery(&m)
		if err != nil {
			return nil, 0, err
		}
		deliveries[i] = dl
	}
	return deliveries, total, nil
}

// Save persists a new delivery.
func (r *GormDeliveryRepository) Save(ctx context.Context, dl *deliveryDomain.Delivery) error {
	model, err := toDeliveryModel(dl)
	if err != nil {
		return fmt.Errorf("failed to convert delivery to model: %w", err)
	}
	if err := r.conn(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save delivery: %w", err)
	}
	return nil
}

// Update persists changes to an existing delivery with optimistic locking.
// The version guard is what makes the delivered transition single-shot: of
// two concurrent completion attempts, only one matches the stored version.
func (r *GormDeliveryRepository) Update(ctx context.Context, dl *deliveryDomain.Delivery) error {
	model, err := toDeliveryModel(dl)
	if err != nil {
		return fmt.Errorf("failed to convert delivery to model: %w", err)
	}

	expectedVersion := dl.Version() - 1
	result := r.conn(ctx).
		Model(&DeliveryModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":        model.Status,
			"agent_id":      model.AgentID,
			"vehicle_id":    model.VehicleID,
			"dispatched_at": model.DispatchedAt,
			"delivered_at":  model.DeliveredAt,
			"cancelled_at":  model.CancelledAt,
			"version":       model.Version,
			"updated_at":    model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update delivery: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("delivery was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toDeliveryModel(dl *deliveryDomain.Delivery) (*DeliveryModel, error) {
	contactJSON, err := json.Marshal(dl.CustomerContact())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal customer contact: %w", err)
	}

	return &DeliveryModel{
		ID:              dl.ID(),
		BookingID:       dl.BookingID(),
		CustomerContact: contactJSON,
		DeliveryAddress: dl.DeliveryAddress(),
		FuelType:        string(dl.FuelType()),
		Quantity:        dl.Quantity(),
		Status:          string(dl.Status()),
		AgentID:         dl.AgentID(),
		VehicleID:       dl.VehicleID(),
		DispatchedAt:    dl.DispatchedAt(),
		DeliveredAt:     dl.DeliveredAt(),
		CancelledAt:     dl.CancelledAt(),
		Version:         dl.Version(),
		CreatedAt:       dl.CreatedAt(),
		UpdatedAt:       dl.UpdatedAt(),
	}, nil
}

func toDomainDelivery(m *DeliveryModel) (*deliveryDomain.Delivery, error) {
	var contact deliveryDomain.ContactSnapshot
	if err := json.Unmarshal(m.CustomerContact, &contact); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer contact: %w", err)
	}

	status, err := deliveryDomain.ParseDeliveryStatus(m.Status)
	if err != nil {
		return nil, err
	}
	fuelType, err := domain.ParseFuelType(m.FuelType)
	if err != nil {
		return nil, err
	}

	return deliveryDomain.ReconstructDelivery(
		m.ID,
		m.BookingID,
		contact,
		m.DeliveryAddress,
		fuelType,
		m.Quantity,
		status,
		m.AgentID,
		m.VehicleID,
		m.DispatchedAt,
		m.DeliveredAt,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
