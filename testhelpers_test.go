//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fuel-nexus/service-backoffice/internal/application"
	"github.com/fuel-nexus/service-backoffice/internal/cache"
	"github.com/fuel-nexus/service-backoffice/internal/database"
	"github.com/fuel-nexus/service-backoffice/internal/events"
	"github.com/fuel-nexus/service-backoffice/internal/kafka"
	"github.com/fuel-nexus/service-backoffice/internal/repository"
)

const integrationLowStockThreshold = 50.0

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// backofficeStack holds the wired-up service layer.
type backofficeStack struct {
	Customers       *application.CustomerService
	Products        *application.ProductService
	Bookings        *application.BookingService
	Deliveries      *application.DeliveryService
	Inventory       *application.InventoryService
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a
// connected GORM DB with the schema migrated.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_backoffice",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_backoffice sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.CustomerModel{},
		&repository.ProductModel{},
		&repository.BookingModel{},
		&repository.DeliveryModel{},
		&repository.InventoryModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers,
		events.TopicBookingEvents,
		events.TopicDeliveryEvents,
		events.TopicInventoryEvents,
	)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBackofficeStack wires the full service layer against real Postgres and Kafka.
func setupBackofficeStack(t *testing.T, db *gorm.DB, brokers []string) *backofficeStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	customerRepo := repository.NewGormCustomerRepository(db)
	productRepo := repository.NewGormProductRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	deliveryRepo := repository.NewGormDeliveryRepository(db)
	inventoryRepo := repository.NewGormInventoryRepository(db)
	txManager := database.NewGormTxManager(db)

	producer := kafka.NewProducer(brokers, logger)
	cacheCoordinator := cache.New(256, time.Minute)

	return &backofficeStack{
		Customers: application.NewCustomerService(customerRepo, cacheCoordinator, logger),
		Products:  application.NewProductService(productRepo, cacheCoordinator, logger),
		Bookings: application.NewBookingService(
			bookingRepo, customerRepo, productRepo, cacheCoordinator, producer, logger,
		),
		Deliveries: application.NewDeliveryService(
			deliveryRepo, bookingRepo, customerRepo, inventoryRepo,
			txManager, cacheCoordinator, producer, logger, integrationLowStockThreshold,
		),
		Inventory: application.NewInventoryService(
			inventoryRepo, productRepo, cacheCoordinator, producer, logger, integrationLowStockThreshold,
		),
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedCustomerAndProduct creates an active customer and a GAS product through
// the services and returns their IDs.
func seedCustomerAndProduct(t *testing.T, stack *backofficeStack) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	cust, err := stack.Customers.CreateCustomer(ctx, application.CreateCustomerRequest{
		FullName:     "Asha Rao",
		Email:        fmt.Sprintf("asha-%s@example.com", uuid.New().String()[:8]),
		MobileNumber: "9876543210",
		Address:      "14 Depot Road",
		City:         "Pune",
		State:        "MH",
		Pincode:      "411001",
		CustomerType: "RETAIL",
	})
	require.NoError(t, err, "failed to seed customer")

	prod, err := stack.Products.CreateProduct(ctx, application.CreateProductRequest{
		Name:           fmt.Sprintf("LPG Cylinder %s", uuid.New().String()[:8]),
		FuelType:       "GAS",
		UnitOfMeasure:  "cylinder",
		UnitPriceCents: 95000,
	})
	require.NoError(t, err, "failed to seed product")

	return cust.ID, prod.ID
}

// waitForBookingStatus polls the bookings table until the status matches.
func waitForBookingStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, expectedStatus string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		if err := db.Where("id = ?", bookingID).First(&model).Error; err != nil {
			return false
		}
		if model.Status == expectedStatus {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking did not transition to %s", expectedStatus)
	return result
}

// inventoryQuantity reads the current available quantity of a batch straight
// from the table.
func inventoryQuantity(t *testing.T, db *gorm.DB, inventoryID uuid.UUID) float64 {
	t.Helper()
	var model repository.InventoryModel
	require.NoError(t, db.Where("id = ?", inventoryID).First(&model).Error)
	return model.AvailableQuantity
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
