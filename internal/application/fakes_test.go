package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fuel-nexus/service-backoffice/internal/domain"
	bookingDomain "github.com/fuel-nexus/service-backoffice/internal/domain/booking"
	customerDomain "github.com/fuel-nexus/service-backoffice/internal/domain/customer"
	deliveryDomain "github.com/fuel-nexus/service-backoffice/internal/domain/delivery"
	inventoryDomain "github.com/fuel-nexus/service-backoffice/internal/domain/inventory"
	productDomain "github.com/fuel-nexus/service-backoffice/internal/domain/product"
	"github.com/fuel-nexus/service-backoffice/internal/kafka"
)

// --- Booking repository fake ---

// copyBooking detaches the stored aggregate from the one handed to callers,
// the same isolation a real repository gives via row scans.
func copyBooking(bk *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		bk.ID(), bk.BookingNumber(), bk.CustomerID(), bk.ProductID(),
		bk.FuelType(), bk.Quantity(), bk.Status(), bk.BookingDate(),
		bk.Notes(), bk.CancelNote(), bk.CancelledAt(), bk.DeliveredAt(),
		bk.Version(), bk.CreatedAt(), bk.UpdatedAt(),
	)
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return copyBooking(bk), nil
}

func (r *fakeBookingRepo) FindByNumber(_ context.Context, number string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.BookingNumber() == number {
			return copyBooking(bk), nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", number)
}

func (r *fakeBookingRepo) FindByCustomerID(_ context.Context, customerID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.CustomerID() == customerID {
			result = append(result, copyBooking(bk))
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, bk := range r.bookings {
		result = append(result, copyBooking(bk))
	}
	return result, int64(len(result)), nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[bk.ID()] = copyBooking(bk)
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	if stored.Version() != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[bk.ID()] = copyBooking(bk)
	return nil
}

// --- Delivery repository fake ---

func copyDelivery(dl *deliveryDomain.Delivery) *deliveryDomain.Delivery {
	return deliveryDomain.ReconstructDelivery(
		dl.ID(), dl.BookingID(), dl.CustomerContact(), dl.DeliveryAddress(),
		dl.FuelType(), dl.Quantity(), dl.Status(), dl.AgentID(), dl.VehicleID(),
		dl.DispatchedAt(), dl.DeliveredAt(), dl.CancelledAt(),
		dl.Version(), dl.CreatedAt(), dl.UpdatedAt(),
	)
}

type fakeDeliveryRepo struct {
	mu         sync.Mutex
	deliveries map[uuid.UUID]*deliveryDomain.Delivery
}

func newFakeDeliveryRepo() *fakeDeliveryRepo {
	return &fakeDeliveryRepo{deliveries: make(map[uuid.UUID]*deliveryDomain.Delivery)}
}

func (r *fakeDeliveryRepo) FindByID(_ context.Context, id uuid.UUID) (*deliveryDomain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dl, ok := r.deliveries[id]
	if !ok {
		return nil, domain.NewNotFoundError("Delivery", id.String())
	}
	return copyDelivery(dl), nil
}

func (r *fakeDeliveryRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*deliveryDomain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*deliveryDomain.Delivery
	for _, dl := range r.deliveries {
		if dl.BookingID() == bookingID {
			result = append(result, copyDelivery(dl))
		}
	}
	return result, nil
}

func (r *fakeDeliveryRepo) ListAll(_ context.Context, _, _ int) ([]*deliveryDomain.Delivery, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*deliveryDomain.Delivery, 0, len(r.deliveries))
	for _, dl := range r.deliveries {
		result = append(result, copyDelivery(dl))
	}
	return result, int64(len(result)), nil
}

func (r *fakeDeliveryRepo) Save(_ context.Context, dl *deliveryDomain.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries[dl.ID()] = copyDelivery(dl)
	return nil
}

func (r *fakeDeliveryRepo) Update(_ context.Context, dl *deliveryDomain.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.deliveries[dl.ID()]
	if !ok {
		return domain.NewNotFoundError("Delivery", dl.ID().String())
	}
	if stored.Version() != dl.Version()-1 {
		return domain.NewConflictError("delivery was modified by another transaction")
	}
	r.deliveries[dl.ID()] = copyDelivery(dl)
	return nil
}

// --- Inventory repository fake ---

// invRow is the fake's mutable backing state; aggregates handed out by reads
// are rebuilt from it so quantity mutations only happen through Consume and
// Restock, mirroring the real repository.
type invRow struct {
	id          uuid.UUID
	productID   uuid.UUID
	fuelType    domain.FuelType
	batchNumber string
	quantity    float64
	location    string
	lastUpdated time.Time
	createdAt   time.Time
}

type fakeInventoryRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*invRow
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{rows: make(map[uuid.UUID]*invRow)}
}

func (r *fakeInventoryRepo) toRecord(row *invRow) *inventoryDomain.InventoryRecord {
	return inventoryDomain.ReconstructInventoryRecord(
		row.id, row.productID, row.fuelType, row.batchNumber,
		row.quantity, row.location, row.lastUpdated, row.createdAt,
	)
}

func (r *fakeInventoryRepo) FindByID(_ context.Context, id uuid.UUID) (*inventoryDomain.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, domain.NewNotFoundError("InventoryRecord", id.String())
	}
	return r.toRecord(row), nil
}

func (r *fakeInventoryRepo) FindByBatchNumber(_ context.Context, batchNumber string) (*inventoryDomain.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.batchNumber == batchNumber {
			return r.toRecord(row), nil
		}
	}
	return nil, domain.NewNotFoundError("InventoryRecord", batchNumber)
}

func (r *fakeInventoryRepo) FindByFuelType(_ context.Context, fuelType domain.FuelType) ([]*inventoryDomain.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []*invRow
	for _, row := range r.rows {
		if row.fuelType == fuelType {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].lastUpdated.Equal(rows[j].lastUpdated) {
			return rows[i].lastUpdated.Before(rows[j].lastUpdated)
		}
		return rows[i].batchNumber < rows[j].batchNumber
	})
	records := make([]*inventoryDomain.InventoryRecord, len(rows))
	for i, row := range rows {
		records[i] = r.toRecord(row)
	}
	return records, nil
}

func (r *fakeInventoryRepo) ListAll(_ context.Context, _, _ int) ([]*inventoryDomain.InventoryRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := make([]*inventoryDomain.InventoryRecord, 0, len(r.rows))
	for _, row := range r.rows {
		records = append(records, r.toRecord(row))
	}
	return records, int64(len(records)), nil
}

func (r *fakeInventoryRepo) Save(_ context.Context, rec *inventoryDomain.InventoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.batchNumber == rec.BatchNumber() {
			return domain.NewConflictError("batch number already exists: " + rec.BatchNumber())
		}
	}
	r.rows[rec.ID()] = &invRow{
		id:          rec.ID(),
		productID:   rec.ProductID(),
		fuelType:    rec.FuelType(),
		batchNumber: rec.BatchNumber(),
		quantity:    rec.AvailableQuantity(),
		location:    rec.StorageLocation(),
		lastUpdated: rec.LastUpdated(),
		createdAt:   rec.CreatedAt(),
	}
	return nil
}

func (r *fakeInventoryRepo) Update(_ context.Context, rec *inventoryDomain.InventoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[rec.ID()]
	if !ok {
		return domain.NewNotFoundError("InventoryRecord", rec.ID().String())
	}
	row.batchNumber = rec.BatchNumber()
	row.location = rec.StorageLocation()
	return nil
}

func (r *fakeInventoryRepo) Restock(_ context.Context, id uuid.UUID, amount float64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return 0, domain.NewNotFoundError("InventoryRecord", id.String())
	}
	row.quantity += amount
	row.lastUpdated = time.Now().UTC()
	return row.quantity, nil
}

func (r *fakeInventoryRepo) Consume(_ context.Context, id uuid.UUID, amount float64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return 0, domain.NewNotFoundError("InventoryRecord", id.String())
	}
	if row.quantity < amount {
		return 0, domain.NewInsufficientInventoryError(row.batchNumber, amount, row.quantity)
	}
	row.quantity -= amount
	row.lastUpdated = time.Now().UTC()
	return row.quantity, nil
}

func (r *fakeInventoryRepo) quantityOf(id uuid.UUID) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id].quantity
}

// --- Customer repository fake ---

type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*customerDomain.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[uuid.UUID]*customerDomain.Customer)}
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*customerDomain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, domain.NewNotFoundError("Customer", id.String())
	}
	return c, nil
}

func (r *fakeCustomerRepo) FindByEmail(_ context.Context, email string) (*customerDomain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Email() == email {
			return c, nil
		}
	}
	return nil, domain.NewNotFoundError("Customer", email)
}

func (r *fakeCustomerRepo) ListAll(_ context.Context, _, _ int) ([]*customerDomain.Customer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*customerDomain.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		result = append(result, c)
	}
	return result, int64(len(result)), nil
}

func (r *fakeCustomerRepo) Save(_ context.Context, c *customerDomain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.customers {
		if existing.Email() == c.Email() {
			return domain.NewConflictError("customer email already registered: " + c.Email())
		}
	}
	r.customers[c.ID()] = c
	return nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, c *customerDomain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[c.ID()]; !ok {
		return domain.NewNotFoundError("Customer", c.ID().String())
	}
	r.customers[c.ID()] = c
	return nil
}

// --- Product repository fake ---

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*productDomain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*productDomain.Product)}
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*productDomain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.NewNotFoundError("Product", id.String())
	}
	return p, nil
}

func (r *fakeProductRepo) ListAll(_ context.Context, _, _ int) ([]*productDomain.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*productDomain.Product, 0, len(r.products))
	for _, p := range r.products {
		result = append(result, p)
	}
	return result, int64(len(result)), nil
}

func (r *fakeProductRepo) Save(_ context.Context, p *productDomain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.products {
		if existing.Name() == p.Name() {
			return domain.NewConflictError("product name already exists: " + p.Name())
		}
	}
	r.products[p.ID()] = p
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *productDomain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID()]; !ok {
		return domain.NewNotFoundError("Product", p.ID().String())
	}
	r.products[p.ID()] = p
	return nil
}

// --- Event publisher fake ---

type publishedEvent struct {
	Topic string
	Event kafka.CloudEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic string, evt kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Topic: topic, Event: evt})
	return nil
}

func (p *fakePublisher) eventsOfType(eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var result []publishedEvent
	for _, e := range p.events {
		if e.Event.Type == eventType {
			result = append(result, e)
		}
	}
	return result
}

// --- Transaction manager fake ---

// fakeTxManager runs the unit of work directly. It cannot roll back, so
// tests only exercise paths where failures occur before any write.
type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
