package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fuel-nexus/service-backoffice/internal/cache"
	"github.com/fuel-nexus/service-backoffice/internal/database"
	"github.com/fuel-nexus/service-backoffice/internal/domain"
	bookingDomain "github.com/fuel-nexus/service-backoffice/internal/domain/booking"
	customerDomain "github.com/fuel-nexus/service-backoffice/internal/domain/customer"
	deliveryDomain "github.com/fuel-nexus/service-backoffice/internal/domain/delivery"
	inventoryDomain "github.com/fuel-nexus/service-backoffice/internal/domain/inventory"
	"github.com/fuel-nexus/service-backoffice/internal/events"
	"github.com/fuel-nexus/service-backoffice/internal/kafka"
)

// CreateDeliveryRequest holds the data needed to schedule a delivery for a
// confirmed booking.
type CreateDeliveryRequest struct {
	BookingID       uuid.UUID `json:"booking_id" binding:"required"`
	DeliveryAddress string    `json:"delivery_address" binding:"required"`
}

// AssignDeliveryRequest assigns an agent and/or vehicle to a delivery.
type AssignDeliveryRequest struct {
	AgentID   uuid.UUID `json:"agent_id"`
	VehicleID uuid.UUID `json:"vehicle_id"`
}

// DeliveryDTO is the response representation of a delivery.
type DeliveryDTO struct {
	ID              uuid.UUID                      `json:"id"`
	BookingID       uuid.UUID                      `json:"booking_id"`
	CustomerContact deliveryDomain.ContactSnapshot `json:"customer_contact"`
	DeliveryAddress string                         `json:"delivery_address"`
	FuelType        string                         `json:"fuel_type"`
	Quantity        float64                        `json:"quantity"`
	Status          string                         `json:"status"`
	AgentID         *uuid.UUID                     `json:"agent_id,omitempty"`
	VehicleID       *uuid.UUID                     `json:"vehicle_id,omitempty"`
	DispatchedAt    *time.Time                     `json:"dispatched_at,omitempty"`
	DeliveredAt     *time.Time                     `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time                     `json:"cancelled_at,omitempty"`
	Version         int64                          `json:"version"`
	CreatedAt       time.Time                      `json:"created_at"`
	UpdatedAt       time.Time                      `json:"updated_at"`
}

// DeliveryService orchestrates the delivery lifecycle, including the
// completion flow that settles inventory and closes the booking in a single
// unit of work.
type DeliveryService struct {
	repo              deliveryDomain.DeliveryRepository
	bookingRepo       bookingDomain.BookingRepository
	customerRepo      customerDomain.CustomerRepository
	inventoryRepo     inventoryDomain.InventoryRepository
	tx                database.TxManager
	cache             *cache.Coordinator
	publisher         EventPublisher
	logger            *zap.Logger
	lowStockThreshold float64
}

// NewDeliveryService creates a new DeliveryService.
func NewDeliveryService(
	repo deliveryDomain.DeliveryRepository,
	bookingRepo bookingDomain.BookingRepository,
	customerRepo customerDomain.CustomerRepository,
	inventoryRepo inventoryDomain.InventoryRepository,
	tx database.TxManager,
	cacheCoordinator *cache.Coordinator,
	publisher EventPublisher,
	logger *zap.Logger,
	lowStockThreshold float64,
) *DeliveryService {
	return &DeliveryService{
		repo:              repo,
		bookingRepo:       bookingRepo,
		customerRepo:      customerRepo,
		inventoryRepo:     inventoryRepo,
		tx:                tx,
		cache:             cacheCoordinator,
		publisher:         publisher,
		logger:            logger,
		lowStockThreshold: lowStockThreshold,
	}
}

// CreateDelivery schedules a delivery for a CONFIRMED booking. The customer
// contact is snapshotted onto the delivery so the logistics record does not
// chase later profile edits.
func (s *DeliveryService) CreateDelivery(ctx context.Context, req CreateDeliveryRequest) (*DeliveryDTO, error) {
	bk, err := s.bookingRepo.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if bk.Status() != bookingDomain.StatusConfirmed {
		return nil, domain.NewInvalidStateError(string(bk.Status()), "delivery creation")
	}

	cust, err := s.customerRepo.FindByID(ctx, bk.CustomerID())
	if err != nil {
		return nil, err
	}

	dl, err := deliveryDomain.NewDelivery(
		bk.ID(),
		deliveryDomain.ContactSnapshot{
			Name:  cust.FullName(),
			Phone: cust.MobileNumber(),
			Email: cust.Email(),
		},
		req.DeliveryAddress,
		bk.FuelType(),
		bk.Quantity(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, dl); err != nil {
		return nil, fmt.Errorf("failed to save delivery: %w", err)
	}

	s.cache.Invalidate(cache.KindDelivery, dl.ID().String())

	evt := events.DeliveryCreatedEvent{
		DeliveryID: dl.ID(),
		BookingID:  dl.BookingID(),
		FuelType:   dl.FuelType().String(),
		Quantity:   dl.Quantity(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicDeliveryEvents, events.DeliveryCreated, dl.ID().String(), evt)

	s.logger.Info("delivery created",
		zap.String("delivery_id", dl.ID().String()),
		zap.String("booking_id", dl.BookingID().String()),
	)
	result := toDeliveryDTO(dl)
	return &result, nil
}

// AssignDelivery sets the delivery agent and/or vehicle.
func (s *DeliveryService) AssignDelivery(ctx context.Context, deliveryID uuid.UUID, req AssignDeliveryRequest) (*DeliveryDTO, error) {
	dl, err := s.repo.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if err := dl.Assign(req.AgentID, req.VehicleID); err != nil {
		return nil, err
	}

	dl.IncrementVersion()
	if err := s.repo.Update(ctx, dl); err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.KindDelivery, dl.ID().String())

	evt := events.DeliveryAssignedEvent{
		DeliveryID: dl.ID(),
		AgentID:    dl.AgentID(),
		VehicleID:  dl.VehicleID(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicDeliveryEvents, events.DeliveryAssigned, dl.ID().String(), evt)

	result := toDeliveryDTO(dl)
	return &result, nil
}

// UpdateDeliveryStatus applies a graph-validated status transition. The
// DELIVERED target runs the completion unit of work: inventory consumption
// and booking closure commit together with the delivery transition, or not
// at all.
func (s *DeliveryService) UpdateDeliveryStatus(ctx context.Context, deliveryID uuid.UUID, newStatus string) (*DeliveryDTO, error) {
	target, err := deliveryDomain.ParseDeliveryStatus(newStatus)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	switch target {
	case deliveryDomain.StatusDispatched:
		return s.dispatchDelivery(ctx, deliveryID)
	case deliveryDomain.StatusDelivered:
		return s.completeDelivery(ctx, deliveryID)
	case deliveryDomain.StatusCancelled:
		return s.CancelDelivery(ctx, deliveryID)
	default:
		dl, err := s.repo.FindByID(ctx, deliveryID)
		if err != nil {
			return nil, err
		}
		return nil, domain.NewInvalidStateError(string(dl.Status()), string(target))
	}
}

func (s *DeliveryService) dispatchDelivery(ctx context.Context, deliveryID uuid.UUID) (*DeliveryDTO, error) {
	dl, err := s.repo.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	fromStatus := dl.Status()

	if err := dl.Dispatch(); err != nil {
		return nil, err
	}

	dl.IncrementVersion()
	if err := s.repo.Update(ctx, dl); err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.KindDelivery, dl.ID().String())

	evt := events.DeliveryStatusChangedEvent{
		DeliveryID: dl.ID(),
		BookingID:  dl.BookingID(),
		FromStatus: string(fromStatus),
		ToStatus:   string(dl.Status()),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicDeliveryEvents, events.DeliveryStatusChanged, dl.ID().String(), evt)

	result := toDeliveryDTO(dl)
	return &result, nil
}

// completeDelivery runs the fulfillment unit of work. Everything up to the
// closing brace of WithinTx commits or rolls back as one transaction; the
// version guard on the delivery update makes a raced second completion fail
// on zero rows, so stock is never deducted twice for the same delivery.
func (s *DeliveryService) completeDelivery(ctx context.Context, deliveryID uuid.UUID) (*DeliveryDTO, error) {
	var (
		dl             *deliveryDomain.Delivery
		bk             *bookingDomain.Booking
		consumedRecord *inventoryDomain.InventoryRecord
		remainingQty   float64
	)

	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		dl, err = s.repo.FindByID(txCtx, deliveryID)
		if err != nil {
			return err
		}

		bk, err = s.bookingRepo.FindByID(txCtx, dl.BookingID())
		if err != nil {
			return err
		}
		if bk.Status() != bookingDomain.StatusConfirmed {
			return domain.NewInvalidStateError(string(bk.Status()), string(bookingDomain.StatusDelivered))
		}

		if err := dl.MarkDelivered(); err != nil {
			return err
		}

		batches, err := s.inventoryRepo.FindByFuelType(txCtx, dl.FuelType())
		if err != nil {
			return err
		}

		consumedRecord, remainingQty, err = s.consumeFromBatches(txCtx, batches, dl.Quantity())
		if err != nil {
			return err
		}

		dl.IncrementVersion()
		if err := s.repo.Update(txCtx, dl); err != nil {
			return err
		}

		if err := bk.MarkDelivered(); err != nil {
			return err
		}
		bk.IncrementVersion()
		return s.bookingRepo.Update(txCtx, bk)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.KindDelivery, dl.ID().String())
	s.cache.Invalidate(cache.KindBooking, bk.ID().String())
	s.cache.Invalidate(cache.KindInventory, consumedRecord.ID().String())

	now := time.Now().UTC()
	deliveryEvt := events.DeliveryStatusChangedEvent{
		DeliveryID: dl.ID(),
		BookingID:  dl.BookingID(),
		FromStatus: string(deliveryDomain.StatusDispatched),
		ToStatus:   string(dl.Status()),
		OccurredAt: now,
	}
	s.publishEvent(ctx, events.TopicDeliveryEvents, events.DeliveryStatusChanged, dl.ID().String(), deliveryEvt)

	bookingEvt := events.BookingStatusChangedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		FromStatus:    string(bookingDomain.StatusConfirmed),
		ToStatus:      string(bk.Status()),
		OccurredAt:    now,
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingStatusChanged, bk.ID().String(), bookingEvt)

	if remainingQty < s.lowStockThreshold {
		lowStockEvt := events.InventoryLowStockEvent{
			InventoryID: consumedRecord.ID(),
			BatchNumber: consumedRecord.BatchNumber(),
			FuelType:    consumedRecord.FuelType().String(),
			Quantity:    remainingQty,
			Threshold:   s.lowStockThreshold,
			OccurredAt:  now,
		}
		s.publishEvent(ctx, events.TopicInventoryEvents, events.InventoryLowStock, consumedRecord.ID().String(), lowStockEvt)
	}

	s.logger.Info("delivery completed",
		zap.String("delivery_id", dl.ID().String()),
		zap.String("booking_id", bk.ID().String()),
		zap.String("batch_number", consumedRecord.BatchNumber()),
		zap.Float64("quantity", dl.Quantity()),
		zap.Float64("remaining_quantity", remainingQty),
	)
	result := toDeliveryDTO(dl)
	return &result, nil
}

// consumeFromBatches walks the batches in consumption order and deducts the
// full quantity from the first one that can cover it. A request is never
// split across batches; if no single batch can cover it the shortfall from
// the last attempted batch is returned.
func (s *DeliveryService) consumeFromBatches(
	ctx context.Context,
	batches []*inventoryDomain.InventoryRecord,
	quantity float64,
) (*inventoryDomain.InventoryRecord, float64, error) {
	var lastShortfall error
	for _, batch := range batches {
		remaining, err := s.inventoryRepo.Consume(ctx, batch.ID(), quantity)
		if err == nil {
			return batch, remaining, nil
		}
		if domain.IsInsufficientInventory(err) {
			lastShortfall = err
			continue
		}
		return nil, 0, err
	}
	if lastShortfall != nil {
		return nil, 0, lastShortfall
	}
	return nil, 0, domain.NewInsufficientInventoryError("", quantity, 0)
}

// CancelDelivery cancels a PENDING or DISPATCHED delivery. The linked
// booking stays CONFIRMED and no inventory is touched.
func (s *DeliveryService) CancelDelivery(ctx context.Context, deliveryID uuid.UUID) (*DeliveryDTO, error) {
	dl, err := s.repo.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if err := dl.Cancel(); err != nil {
		return nil, err
	}

	dl.IncrementVersion()
	if err := s.repo.Update(ctx, dl); err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.KindDelivery, dl.ID().String())

	evt := events.DeliveryCancelledEvent{
		DeliveryID: dl.ID(),
		BookingID:  dl.BookingID(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicDeliveryEvents, events.DeliveryCancelled, dl.ID().String(), evt)

	s.logger.Info("delivery cancelled",
		zap.String("delivery_id", dl.ID().String()),
	)
	result := toDeliveryDTO(dl)
	return &result, nil
}

// GetDelivery retrieves a single delivery by ID with cache read-through.
func (s *DeliveryService) GetDelivery(ctx context.Context, deliveryID uuid.UUID) (*DeliveryDTO, error) {
	if cached, ok := s.cache.Get(cache.KindDelivery, deliveryID.String()); ok {
		if dto, ok := cached.(DeliveryDTO); ok {
			return &dto, nil
		}
	}

	dl, err := s.repo.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	result := toDeliveryDTO(dl)
	s.cache.Put(cache.KindDelivery, deliveryID.String(), result)
	return &result, nil
}

// DeliveryTrackingDTO is the read-only tracking projection of a delivery.
type DeliveryTrackingDTO struct {
	DeliveryID      uuid.UUID  `json:"delivery_id"`
	BookingID       uuid.UUID  `json:"booking_id"`
	Status          string     `json:"status"`
	DeliveryAddress string     `json:"delivery_address"`
	AgentID         *uuid.UUID `json:"agent_id,omitempty"`
	VehicleID       *uuid.UUID `json:"vehicle_id,omitempty"`
	DispatchedAt    *time.Time `json:"dispatched_at,omitempty"`
	DeliveredAt     *time.Time `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
}

// TrackDelivery returns the tracking projection for a delivery. Reads through
// the same cache entry as GetDelivery.
func (s *DeliveryService) TrackDelivery(ctx context.Context, deliveryID uuid.UUID) (*DeliveryTrackingDTO, error) {
	dto, err := s.GetDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	return &DeliveryTrackingDTO{
		DeliveryID:      dto.ID,
		BookingID:       dto.BookingID,
		Status:          dto.Status,
		DeliveryAddress: dto.DeliveryAddress,
		AgentID:         dto.AgentID,
		VehicleID:       dto.VehicleID,
		DispatchedAt:    dto.DispatchedAt,
		DeliveredAt:     dto.DeliveredAt,
		CancelledAt:     dto.CancelledAt,
	}, nil
}

// GetBookingDeliveries retrieves the deliveries linked to a booking.
func (s *DeliveryService) GetBookingDeliveries(ctx context.Context, bookingID uuid.UUID) ([]DeliveryDTO, error) {
	deliveries, err := s.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]DeliveryDTO, len(deliveries))
	for i, dl := range deliveries {
		dtos[i] = toDeliveryDTO(dl)
	}
	return dtos, nil
}

// ListDeliveries returns a paginated list of deliveries with cache read-through.
func (s *DeliveryService) ListDeliveries(ctx context.Context, page, limit int) (*domain.PaginatedResult[DeliveryDTO], error) {
	if cached, ok := s.cache.GetPage(cache.KindDelivery, page, limit); ok {
		if result, ok := cached.(domain.PaginatedResult[DeliveryDTO]); ok {
			return &result, nil
		}
	}

	deliveries, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]DeliveryDTO, len(deliveries))
	for i, dl := range deliveries {
		dtos[i] = toDeliveryDTO(dl)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	s.cache.PutPage(cache.KindDelivery, page, limit, result)
	return &result, nil
}

// --- Helpers ---

func toDeliveryDTO(dl *deliveryDomain.Delivery) DeliveryDTO {
	return DeliveryDTO{
		ID:              dl.ID(),
		BookingID:       dl.BookingID(),
		CustomerContact: dl.CustomerContact(),
		DeliveryAddress: dl.DeliveryAddress(),
		FuelType:        dl.FuelType().String(),
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
	}
}

func (s *DeliveryService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
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
