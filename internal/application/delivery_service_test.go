package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fuel-nexus/service-backoffice/internal/cache"
	"github.com/fuel-nexus/service-backoffice/internal/domain"
	bookingDomain "github.com/fuel-nexus/service-backoffice/internal/domain/booking"
	customerDomain "github.com/fuel-nexus/service-backoffice/internal/domain/customer"
	inventoryDomain "github.com/fuel-nexus/service-backoffice/internal/domain/inventory"
	productDomain "github.com/fuel-nexus/service-backoffice/internal/domain/product"
	"github.com/fuel-nexus/service-backoffice/internal/events"
)

const testLowStockThreshold = 50.0

type deliveryTestEnv struct {
	service       *DeliveryService
	deliveryRepo  *fakeDeliveryRepo
	bookingRepo   *fakeBookingRepo
	customerRepo  *fakeCustomerRepo
	inventoryRepo *fakeInventoryRepo
	productRepo   *fakeProductRepo
	publisher     *fakePublisher

	customer *customerDomain.Customer
	product  *productDomain.Product
}

func newDeliveryTestEnv(t *testing.T) *deliveryTestEnv {
	t.Helper()

	env := &deliveryTestEnv{
		deliveryRepo:  newFakeDeliveryRepo(),
		bookingRepo:   newFakeBookingRepo(),
		customerRepo:  newFakeCustomerRepo(),
		inventoryRepo: newFakeInventoryRepo(),
		productRepo:   newFakeProductRepo(),
		publisher:     &fakePublisher{},
	}

	cust, err := customerDomain.NewCustomer(
		"Asha Rao", "asha@example.com", "9876543210",
		"14 Depot Road", "Pune", "MH", "411001", customerDomain.TypeRetail,
	)
	require.NoError(t, err)
	require.NoError(t, env.customerRepo.Save(context.Background(), cust))
	env.customer = cust

	prod, err := productDomain.NewProduct("LPG Cylinder 14kg", domain.FuelTypeGas, "cylinder", 95000)
	require.NoError(t, err)
	require.NoError(t, env.productRepo.Save(context.Background(), prod))
	env.product = prod

	env.service = NewDeliveryService(
		env.deliveryRepo, env.bookingRepo, env.customerRepo, env.inventoryRepo,
		fakeTxManager{}, cache.New(64, time.Minute), env.publisher, zap.NewNop(),
		testLowStockThreshold,
	)
	return env
}

func (env *deliveryTestEnv) seedConfirmedBooking(t *testing.T, quantity float64) *bookingDomain.Booking {
	t.Helper()
	bk, err := bookingDomain.NewBooking(env.customer.ID(), env.product.ID(), domain.FuelTypeGas, quantity, nil, "")
	require.NoError(t, err)
	require.NoError(t, bk.Confirm())
	require.NoError(t, env.bookingRepo.Save(context.Background(), bk))
	return bk
}

func (env *deliveryTestEnv) seedBatch(t *testing.T, batchNumber string, quantity float64) uuid.UUID {
	t.Helper()
	rec, err := inventoryDomain.NewInventoryRecord(env.product.ID(), domain.FuelTypeGas, batchNumber, quantity, "Depot A")
	require.NoError(t, err)
	require.NoError(t, env.inventoryRepo.Save(context.Background(), rec))
	return rec.ID()
}

// seedDispatchedDelivery creates a delivery for the booking and walks it to
// DISPATCHED through the service.
func (env *deliveryTestEnv) seedDispatchedDelivery(t *testing.T, bookingID uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	dto, err := env.service.CreateDelivery(ctx, CreateDeliveryRequest{
		BookingID:       bookingID,
		DeliveryAddress: "14 Depot Road, Pune",
	})
	require.NoError(t, err)

	_, err = env.service.AssignDelivery(ctx, dto.ID, AssignDeliveryRequest{
		AgentID:   uuid.New(),
		VehicleID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = env.service.UpdateDeliveryStatus(ctx, dto.ID, "DISPATCHED")
	require.NoError(t, err)
	return dto.ID
}

func TestDeliveryService_CreateDelivery(t *testing.T) {
	env := newDeliveryTestEnv(t)
	bk := env.seedConfirmedBooking(t, 60)

	dto, err := env.service.CreateDelivery(context.Background(), CreateDeliveryRequest{
		BookingID:       bk.ID(),
		DeliveryAddress: "14 Depot Road, Pune",
	})
	require.NoError(t, err)

	assert.Equal(t, "PENDING", dto.Status)
	assert.Equal(t, bk.Quantity(), dto.Quantity, "delivery quantity mirrors the booking")
	assert.Equal(t, "GAS", dto.FuelType)
	assert.Equal(t, "Asha Rao", dto.CustomerContact.Name, "contact is snapshotted from the profile")

	created := env.publisher.eventsOfType(events.DeliveryCreated)
	require.Len(t, created, 1)
}

func TestDeliveryService_CreateDelivery_RequiresConfirmedBooking(t *testing.T) {
	env := newDeliveryTestEnv(t)
	bk, err := bookingDomain.NewBooking(env.customer.ID(), env.product.ID(), domain.FuelTypeGas, 60, nil, "")
	require.NoError(t, err)
	require.NoError(t, env.bookingRepo.Save(context.Background(), bk))

	_, err = env.service.CreateDelivery(context.Background(), CreateDeliveryRequest{
		BookingID:       bk.ID(),
		DeliveryAddress: "14 Depot Road, Pune",
	})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))
}

func TestDeliveryService_CompleteDelivery(t *testing.T) {
	env := newDeliveryTestEnv(t)
	bk := env.seedConfirmedBooking(t, 60)
	batchID := env.seedBatch(t, "GAS-001", 100)
	deliveryID := env.seedDispatchedDelivery(t, bk.ID())

	dto, err := env.service.UpdateDeliveryStatus(context.Background(), deliveryID, "DELIVERED")
	require.NoError(t, err)

	assert.Equal(t, "DELIVERED", dto.Status)
	assert.Equal(t, 40.0, env.inventoryRepo.quantityOf(batchID), "60 units consumed from the 100-unit batch")

	storedBooking, err := env.bookingRepo.FindByID(context.Background(), bk.ID())
	require.NoError(t, err)
	assert.Equal(t, "DELIVERED", string(storedBooking.Status()), "booking closes with the delivery")

	require.Len(t, env.publisher.eventsOfType(events.DeliveryStatusChanged), 2, "dispatch plus completion")
	require.Len(t, env.publisher.eventsOfType(events.BookingStatusChanged), 1)

	// 40 remaining is under the 50 threshold.
	lowStock := env.publisher.eventsOfType(events.InventoryLowStock)
	require.Len(t, lowStock, 1)
	var evt events.InventoryLowStockEvent
	require.NoError(t, lowStock[0].Event.ParseData(&evt))
	assert.Equal(t, 40.0, evt.Quantity)
	assert.Equal(t, testLowStockThreshold, evt.Threshold)
}

func TestDeliveryService_CompleteDelivery_InsufficientInventory(t *testing.T) {
	env := newDeliveryTestEnv(t)

	// First delivery drains the batch to 40.
	bk1 := env.seedConfirmedBooking(t, 60)
	batchID := env.seedBatch(t, "GAS-001", 100)
	d1 := env.seedDispatchedDelivery(t, bk1.ID())
	_, err := env.service.UpdateDeliveryStatus(context.Background(), d1, "DELIVERED")
	require.NoError(t, err)
	require.Equal(t, 40.0, env.inventoryRepo.quantityOf(batchID))

	// A second 60-unit delivery cannot be covered by the remaining 40.
	bk2 := env.seedConfirmedBooking(t, 60)
	d2 := env.seedDispatchedDelivery(t, bk2.ID())
	_, err = env.service.UpdateDeliveryStatus(context.Background(), d2, "DELIVERED")
	require.Error(t, err)
	assert.True(t, domain.IsInsufficientInventory(err))

	// Nothing moved: stock, delivery and booking are all unchanged.
	assert.Equal(t, 40.0, env.inventoryRepo.quantityOf(batchID))
	storedDelivery, err := env.deliveryRepo.FindByID(context.Background(), d2)
	require.NoError(t, err)
	assert.Equal(t, "DISPATCHED", string(storedDelivery.Status()))
	storedBooking, err := env.bookingRepo.FindByID(context.Background(), bk2.ID())
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", string(storedBooking.Status()))
}

func TestDeliveryService_CompleteDelivery_FirstFitBatch(t *testing.T) {
	env := newDeliveryTestEnv(t)
	bk := env.seedConfirmedBooking(t, 60)

	// The oldest batch only holds 30; the request must not be split across
	// batches, so the 100-unit batch takes the whole consume.
	smallID := env.seedBatch(t, "GAS-OLD", 30)
	time.Sleep(2 * time.Millisecond)
	largeID := env.seedBatch(t, "GAS-NEW", 100)

	deliveryID := env.seedDispatchedDelivery(t, bk.ID())
	_, err := env.service.UpdateDeliveryStatus(context.Background(), deliveryID, "DELIVERED")
	require.NoError(t, err)

	assert.Equal(t, 30.0, env.inventoryRepo.quantityOf(smallID), "undersized batch left untouched")
	assert.Equal(t, 40.0, env.inventoryRepo.quantityOf(largeID))
}

func TestDeliveryService_CompleteDelivery_Twice(t *testing.T) {
	env := newDeliveryTestEnv(t)
	bk := env.seedConfirmedBooking(t, 60)
	batchID := env.seedBatch(t, "GAS-001", 200)
	deliveryID := env.seedDispatchedDelivery(t, bk.ID())

	_, err := env.service.UpdateDeliveryStatus(context.Background(), deliveryID, "DELIVERED")
	require.NoError(t, err)

	_, err = env.service.UpdateDeliveryStatus(context.Background(), deliveryID, "DELIVERED")
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))

	assert.Equal(t, 140.0, env.inventoryRepo.quantityOf(batchID), "stock deducted exactly once")
}

func TestDeliveryService_CompleteDelivery_FromPending(t *testing.T) {
	env := newDeliveryTestEnv(t)
	bk := env.seedConfirmedBooking(t, 60)
	batchID := env.seedBatch(t, "GAS-001", 100)

	dto, err := env.service.CreateDelivery(context.Background(), CreateDeliveryRequest{
		BookingID:       bk.ID(),
		DeliveryAddress: "14 Depot Road, Pune",
	})
	require.NoError(t, err)

	_, err = env.service.UpdateDeliveryStatus(context.Background(), dto.ID, "DELIVERED")
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))
	assert.Equal(t, 100.0, env.inventoryRepo.quantityOf(batchID))
}

func TestDeliveryService_CancelDelivery(t *testing.T) {
	env := newDeliveryTestEnv(t)
	bk := env.seedConfirmedBooking(t, 60)
	batchID := env.seedBatch(t, "GAS-001", 100)

	dto, err := env.service.CreateDelivery(context.Background(), CreateDeliveryRequest{
		BookingID:       bk.ID(),
		DeliveryAddress: "14 Depot Road, Pune",
	})
	require.NoError(t, err)

	cancelled, err := env.service.CancelDelivery(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)

	// The booking stays CONFIRMED for rescheduling and stock is untouched.
	storedBooking, err := env.bookingRepo.FindByID(context.Background(), bk.ID())
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", string(storedBooking.Status()))
	assert.Equal(t, 100.0, env.inventoryRepo.quantityOf(batchID))

	require.Len(t, env.publisher.eventsOfType(events.DeliveryCancelled), 1)
}

func TestDeliveryService_CancelDeliveredDelivery(t *testing.T) {
	env := newDeliveryTestEnv(t)
	bk := env.seedConfirmedBooking(t, 60)
	env.seedBatch(t, "GAS-001", 100)
	deliveryID := env.seedDispatchedDelivery(t, bk.ID())

	_, err := env.service.UpdateDeliveryStatus(context.Background(), deliveryID, "DELIVERED")
	require.NoError(t, err)

	_, err = env.service.CancelDelivery(context.Background(), deliveryID)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))
}

func TestDeliveryService_Dispatch_RequiresAssignment(t *testing.T) {
	env := newDeliveryTestEnv(t)
	bk := env.seedConfirmedBooking(t, 60)

	dto, err := env.service.CreateDelivery(context.Background(), CreateDeliveryRequest{
		BookingID:       bk.ID(),
		DeliveryAddress: "14 Depot Road, Pune",
	})
	require.NoError(t, err)

	_, err = env.service.UpdateDeliveryStatus(context.Background(), dto.ID, "DISPATCHED")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestDeliveryService_CompleteDelivery_PublisherFailure(t *testing.T) {
	env := newDeliveryTestEnv(t)
	bk := env.seedConfirmedBooking(t, 60)
	batchID := env.seedBatch(t, "GAS-001", 100)
	deliveryID := env.seedDispatchedDelivery(t, bk.ID())

	env.publisher.err = errors.New("broker unreachable")

	dto, err := env.service.UpdateDeliveryStatus(context.Background(), deliveryID, "DELIVERED")
	require.NoError(t, err, "notification failures never fail the completion")
	assert.Equal(t, "DELIVERED", dto.Status)
	assert.Equal(t, 40.0, env.inventoryRepo.quantityOf(batchID))
}

func TestDeliveryService_TrackDelivery(t *testing.T) {
	env := newDeliveryTestEnv(t)
	bk := env.seedConfirmedBooking(t, 60)
	env.seedBatch(t, "GAS-001", 100)
	deliveryID := env.seedDispatchedDelivery(t, bk.ID())

	tracking, err := env.service.TrackDelivery(context.Background(), deliveryID)
	require.NoError(t, err)
	assert.Equal(t, "DISPATCHED", tracking.Status)
	assert.NotNil(t, tracking.AgentID)
	assert.NotNil(t, tracking.DispatchedAt)
	assert.Nil(t, tracking.DeliveredAt)
}

// TestDeliveryService_ConcurrentCompletions_SharedBatch races many distinct
// deliveries against one batch: every completion that reports success must be
// backed by a real deduction, and the batch can never go negative.
func TestDeliveryService_ConcurrentCompletions_SharedBatch(t *testing.T) {
	env := newDeliveryTestEnv(t)

	// 10 deliveries of 10 units each against a 60-unit batch.
	batchID := env.seedBatch(t, "GAS-001", 60)
	deliveryIDs := make([]uuid.UUID, 10)
	for i := range deliveryIDs {
		bk := env.seedConfirmedBooking(t, 10)
		deliveryIDs[i] = env.seedDispatchedDelivery(t, bk.ID())
	}

	var wg sync.WaitGroup
	errs := make([]error, len(deliveryIDs))
	for i, id := range deliveryIDs {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = env.service.UpdateDeliveryStatus(context.Background(), id, "DELIVERED")
		}(i, id)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, domain.IsInsufficientInventory(err))
		}
	}
	assert.Equal(t, 6, succeeded, "only six 10-unit deliveries fit in 60 units")
	assert.Equal(t, 0.0, env.inventoryRepo.quantityOf(batchID))
}

func TestDeliveryService_UpdateStatus_UnknownDelivery(t *testing.T) {
	env := newDeliveryTestEnv(t)

	_, err := env.service.UpdateDeliveryStatus(context.Background(), uuid.New(), "DELIVERED")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}
