package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fuel-nexus/service-backoffice/internal/cache"
	"github.com/fuel-nexus/service-backoffice/internal/domain"
	inventoryDomain "github.com/fuel-nexus/service-backoffice/internal/domain/inventory"
	productDomain "github.com/fuel-nexus/service-backoffice/internal/domain/product"
	"github.com/fuel-nexus/service-backoffice/internal/events"
	"github.com/fuel-nexus/service-backoffice/internal/kafka"
)

// CreateInventoryRequest holds the data for taking in a new fuel batch.
type CreateInventoryRequest struct {
	ProductID       uuid.UUID `json:"product_id" binding:"required"`
	BatchNumber     string    `json:"batch_number" binding:"required"`
	InitialQuantity float64   `json:"initial_quantity"`
	StorageLocation string    `json:"storage_location" binding:"required"`
}

// UpdateInventoryRequest updates batch metadata. Quantity is never part of
// this request; it only moves through restock and delivery completion.
type UpdateInventoryRequest struct {
	BatchNumber     string `json:"batch_number"`
	StorageLocation string `json:"storage_location"`
}

// RestockInventoryRequest adds stock to an existing batch.
type RestockInventoryRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// InventoryDTO is the response representation of an inventory batch.
type InventoryDTO struct {
	ID                uuid.UUID `json:"id"`
	ProductID         uuid.UUID `json:"product_id"`
	FuelType          string    `json:"fuel_type"`
	BatchNumber       string    `json:"batch_number"`
	AvailableQuantity float64   `json:"available_quantity"`
	StorageLocation   string    `json:"storage_location"`
	LowStock          bool      `json:"low_stock"`
	LastUpdated       time.Time `json:"last_updated"`
	CreatedAt         time.Time `json:"created_at"`
}

// InventoryService manages the fuel stock ledger.
type InventoryService struct {
	repo              inventoryDomain.InventoryRepository
	productRepo       productDomain.ProductRepository
	cache             *cache.Coordinator
	publisher         EventPublisher
	logger            *zap.Logger
	lowStockThreshold float64
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(
	repo inventoryDomain.InventoryRepository,
	productRepo productDomain.ProductRepository,
	cacheCoordinator *cache.Coordinator,
	publisher EventPublisher,
	logger *zap.Logger,
	lowStockThreshold float64,
) *InventoryService {
	return &InventoryService{
		repo:              repo,
		productRepo:       productRepo,
		cache:             cacheCoordinator,
		publisher:         publisher,
		logger:            logger,
		lowStockThreshold: lowStockThreshold,
	}
}

// CreateInventory takes in a new batch. The fuel type is derived from the
// product; a duplicate batch number yields a ConflictError.
func (s *InventoryService) CreateInventory(ctx context.Context, req CreateInventoryRequest) (*InventoryDTO, error) {
	prod, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	rec, err := inventoryDomain.NewInventoryRecord(
		req.ProductID,
		prod.FuelType(),
		req.BatchNumber,
		req.InitialQuantity,
		req.StorageLocation,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.KindInventory, rec.ID().String())

	evt := events.InventoryCreatedEvent{
		InventoryID: rec.ID(),
		BatchNumber: rec.BatchNumber(),
		FuelType:    rec.FuelType().String(),
		Quantity:    rec.AvailableQuantity(),
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicInventoryEvents, events.InventoryCreated, rec.ID().String(), evt)

	s.logger.Info("inventory batch created",
		zap.String("inventory_id", rec.ID().String()),
		zap.String("batch_number", rec.BatchNumber()),
		zap.Float64("quantity", rec.AvailableQuantity()),
	)
	result := s.toInventoryDTO(rec)
	return &result, nil
}

// UpdateInventory updates batch metadata (batch number, storage location).
func (s *InventoryService) UpdateInventory(ctx context.Context, inventoryID uuid.UUID, req UpdateInventoryRequest) (*InventoryDTO, error) {
	rec, err := s.repo.FindByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	if req.BatchNumber != "" {
		if err := rec.SetBatchNumber(req.BatchNumber); err != nil {
			return nil, err
		}
	}
	if req.StorageLocation != "" {
		if err := rec.SetStorageLocation(req.StorageLocation); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.KindInventory, rec.ID().String())

	result := s.toInventoryDTO(rec)
	return &result, nil
}

// RestockInventory atomically adds stock to a batch. The low-stock check
// runs on the post-restock quantity, so a restock that still leaves the
// batch under the threshold keeps alerting.
func (s *InventoryService) RestockInventory(ctx context.Context, inventoryID uuid.UUID, req RestockInventoryRequest) (*InventoryDTO, error) {
	if req.Amount <= 0 {
		return nil, domain.NewValidationError("restock amount must be positive")
	}

	newQuantity, err := s.repo.Restock(ctx, inventoryID, req.Amount)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.KindInventory, inventoryID.String())

	rec, err := s.repo.FindByID(ctx, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload inventory record after restock: %w", err)
	}

	now := time.Now().UTC()
	evt := events.InventoryRestockedEvent{
		InventoryID: rec.ID(),
		BatchNumber: rec.BatchNumber(),
		Amount:      req.Amount,
		NewQuantity: newQuantity,
		OccurredAt:  now,
	}
	s.publishEvent(ctx, events.TopicInventoryEvents, events.InventoryRestocked, rec.ID().String(), evt)

	if newQuantity < s.lowStockThreshold {
		lowStockEvt := events.InventoryLowStockEvent{
			InventoryID: rec.ID(),
			BatchNumber: rec.BatchNumber(),
			FuelType:    rec.FuelType().String(),
			Quantity:    newQuantity,
			Threshold:   s.lowStockThreshold,
			OccurredAt:  now,
		}
		s.publishEvent(ctx, events.TopicInventoryEvents, events.InventoryLowStock, rec.ID().String(), lowStockEvt)
	}

	s.logger.Info("inventory restocked",
		zap.String("inventory_id", rec.ID().String()),
		zap.String("batch_number", rec.BatchNumber()),
		zap.Float64("amount", req.Amount),
		zap.Float64("new_quantity", newQuantity),
	)
	result := s.toInventoryDTO(rec)
	return &result, nil
}

// GetInventory retrieves a single batch by ID with cache read-through.
func (s *InventoryService) GetInventory(ctx context.Context, inventoryID uuid.UUID) (*InventoryDTO, error) {
	if cached, ok := s.cache.Get(cache.KindInventory, inventoryID.String()); ok {
		if dto, ok := cached.(InventoryDTO); ok {
			return &dto, nil
		}
	}

	rec, err := s.repo.FindByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	result := s.toInventoryDTO(rec)
	s.cache.Put(cache.KindInventory, inventoryID.String(), result)
	return &result, nil
}

// GetInventoryByBatchNumber retrieves a batch by its unique batch number.
func (s *InventoryService) GetInventoryByBatchNumber(ctx context.Context, batchNumber string) (*InventoryDTO, error) {
	rec, err := s.repo.FindByBatchNumber(ctx, batchNumber)
	if err != nil {
		return nil, err
	}

	result := s.toInventoryDTO(rec)
	return &result, nil
}

// GetInventoryByFuelType retrieves all batches of a fuel type in consumption order.
func (s *InventoryService) GetInventoryByFuelType(ctx context.Context, fuelType string) ([]InventoryDTO, error) {
	ft, err := domain.ParseFuelType(fuelType)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	records, err := s.repo.FindByFuelType(ctx, ft)
	if err != nil {
		return nil, err
	}

	dtos := make([]InventoryDTO, len(records))
	for i, rec := range records {
		dtos[i] = s.toInventoryDTO(rec)
	}
	return dtos, nil
}

// LowStockStatusDTO reports a batch's standing against a threshold.
type LowStockStatusDTO struct {
	InventoryID       uuid.UUID `json:"inventory_id"`
	BatchNumber       string    `json:"batch_number"`
	AvailableQuantity float64   `json:"available_quantity"`
	Threshold         float64   `json:"threshold"`
	LowStock          bool      `json:"low_stock"`
}

// CheckLowStock reports whether a batch is below the given threshold without
// mutating anything. A non-positive threshold falls back to the configured one.
func (s *InventoryService) CheckLowStock(ctx context.Context, inventoryID uuid.UUID, threshold float64) (*LowStockStatusDTO, error) {
	if threshold <= 0 {
		threshold = s.lowStockThreshold
	}

	rec, err := s.repo.FindByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	return &LowStockStatusDTO{
		InventoryID:       rec.ID(),
		BatchNumber:       rec.BatchNumber(),
		AvailableQuantity: rec.AvailableQuantity(),
		Threshold:         threshold,
		LowStock:          rec.IsBelow(threshold),
	}, nil
}

// ListInventory returns a paginated list of batches with cache read-through.
func (s *InventoryService) ListInventory(ctx context.Context, page, limit int) (*domain.PaginatedResult[InventoryDTO], error) {
	if cached, ok := s.cache.GetPage(cache.KindInventory, page, limit); ok {
		if result, ok := cached.(domain.PaginatedResult[InventoryDTO]); ok {
			return &result, nil
		}
	}

	records, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]InventoryDTO, len(records))
	for i, rec := range records {
		dtos[i] = s.toInventoryDTO(rec)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	s.cache.PutPage(cache.KindInventory, page, limit, result)
	return &result, nil
}

// ListLowStock returns every batch currently under the low-stock threshold.
// A read-only report; publishing alerts stays with the mutation paths.
func (s *InventoryService) ListLowStock(ctx context.Context) ([]InventoryDTO, error) {
	records, _, err := s.repo.ListAll(ctx, 1, 1000)
	if err != nil {
		return nil, err
	}

	var dtos []InventoryDTO
	for _, rec := range records {
		if rec.IsBelow(s.lowStockThreshold) {
			dtos = append(dtos, s.toInventoryDTO(rec))
		}
	}
	return dtos, nil
}

// --- Helpers ---

func (s *InventoryService) toInventoryDTO(rec *inventoryDomain.InventoryRecord) InventoryDTO {
	return InventoryDTO{
		ID:                rec.ID(),
		ProductID:         rec.ProductID(),
		FuelType:          rec.FuelType().String(),
		BatchNumber:       rec.BatchNumber(),
		AvailableQuantity: rec.AvailableQuantity(),
		StorageLocation:   rec.StorageLocation(),
		LowStock:          rec.IsBelow(s.lowStockThreshold),
		LastUpdated:       rec.LastUpdated(),
		CreatedAt:         rec.CreatedAt(),
	}
}

func (s *InventoryService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, key, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
