package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fuel-nexus/service-backoffice/internal/cache"
	"github.com/fuel-nexus/service-backoffice/internal/domain"
	bookingDomain "github.com/fuel-nexus/service-backoffice/internal/domain/booking"
	customerDomain "github.com/fuel-nexus/service-backoffice/internal/domain/customer"
	productDomain "github.com/fuel-nexus/service-backoffice/internal/domain/product"
	"github.com/fuel-nexus/service-backoffice/internal/events"
	"github.com/fuel-nexus/service-backoffice/internal/kafka"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	CustomerID  uuid.UUID  `json:"customer_id" binding:"required"`
	ProductID   uuid.UUID  `json:"product_id" binding:"required"`
	Quantity    float64    `json:"quantity" binding:"required"`
	BookingDate *time.Time `json:"booking_date"`
	Notes       string     `json:"notes"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID            uuid.UUID  `json:"id"`
	BookingNumber string     `json:"booking_number"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	FuelType      string     `json:"fuel_type"`
	Quantity      float64    `json:"quantity"`
	Status        string     `json:"status"`
	BookingDate   time.Time  `json:"booking_date"`
	Notes         string     `json:"notes,omitempty"`
	CancelNote    string     `json:"cancel_note,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
	Version       int64      `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo         bookingDomain.BookingRepository
	customerRepo customerDomain.CustomerRepository
	productRepo  productDomain.ProductRepository
	cache        *cache.Coordinator
	publisher    EventPublisher
	logger       *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	customerRepo customerDomain.CustomerRepository,
	productRepo productDomain.ProductRepository,
	cacheCoordinator *cache.Coordinator,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:         repo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		cache:        cacheCoordinator,
		publisher:    publisher,
		logger:       logger,
	}
}

// CreateBooking creates a new booking in PENDING. The fuel type is taken
// from the booked product; no inventory is touched at this point.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	cust, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !cust.IsActive() {
		return nil, domain.NewValidationError("customer account is inactive")
	}

	prod, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !prod.IsActive() {
		return nil, domain.NewValidationError("product is no longer offered")
	}

	bk, err := bookingDomain.NewBooking(
		req.CustomerID,
		req.ProductID,
		prod.FuelType(),
		req.Quantity,
		req.BookingDate,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.cache.Invalidate(cache.KindBooking, bk.ID().String())

	evt := events.BookingCreatedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CustomerID:    bk.CustomerID(),
		ProductID:     bk.ProductID(),
		FuelType:      bk.FuelType().String(),
		Quantity:      bk.Quantity(),
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCreated, bk.ID().String(), evt)

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("booking_number", bk.BookingNumber()),
	)
	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateBookingStatus applies a graph-validated status transition. The
// DELIVERED target is reserved for delivery completion, which is the only
// path that consumes inventory; requesting it here always fails.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, newStatus string) (*BookingDTO, error) {
	target, err := bookingDomain.ParseBookingStatus(newStatus)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	fromStatus := bk.Status()

	switch target {
	case bookingDomain.StatusConfirmed:
		err = bk.Confirm()
	case bookingDomain.StatusCancelled:
		err = bk.Cancel("cancelled by status update")
	default:
		err = domain.NewInvalidStateError(string(fromStatus), string(target))
	}
	if err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.cache.Invalidate(cache.KindBooking, bk.ID().String())

	evt := events.BookingStatusChangedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		FromStatus:    string(fromStatus),
		ToStatus:      string(bk.Status()),
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingStatusChanged, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking by ID with cache read-through.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	if cached, ok := s.cache.Get(cache.KindBooking, bookingID.String()); ok {
		if dto, ok := cached.(BookingDTO); ok {
			return &dto, nil
		}
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	s.cache.Put(cache.KindBooking, bookingID.String(), result)
	return &result, nil
}

// ListBookings returns a paginated list of bookings with cache read-through.
func (s *BookingService) ListBookings(ctx context.Context, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	if cached, ok := s.cache.GetPage(cache.KindBooking, page, limit); ok {
		if result, ok := cached.(domain.PaginatedResult[BookingDTO]); ok {
			return &result, nil
		}
	}

	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	s.cache.PutPage(cache.KindBooking, page, limit, result)
	return &result, nil
}

// GetCustomerBookings retrieves paginated bookings for a specific customer.
func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:            bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CustomerID:    bk.CustomerID(),
		ProductID:     bk.ProductID(),
		FuelType:      bk.FuelType().String(),
		Quantity:      bk.Quantity(),
		Status:        string(bk.Status()),
		BookingDate:   bk.BookingDate(),
		Notes:         bk.Notes(),
		CancelNote:    bk.CancelNote(),
		CancelledAt:   bk.CancelledAt(),
		DeliveredAt:   bk.DeliveredAt(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
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
