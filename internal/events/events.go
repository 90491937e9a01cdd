package events

import (
	"time"

	"github.com/google/uuid"
)

// Event topics.
const (
	TopicBookingEvents   = "booking.events"
	TopicDeliveryEvents  = "delivery.events"
	TopicInventoryEvents = "inventory.events"
)

// Event types.
const (
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"

	DeliveryCreated       = "delivery.created"
	DeliveryAssigned      = "delivery.assigned"
	DeliveryStatusChanged = "delivery.status_changed"
	DeliveryCancelled     = "delivery.cancelled"

	InventoryCreated   = "inventory.created"
	InventoryRestocked = "inventory.restocked"
	InventoryLowStock  = "inventory.low_stock"
)

// BookingCreatedEvent is published after a booking is persisted.
type BookingCreatedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ProductID     uuid.UUID `json:"product_id"`
	FuelType      string    `json:"fuel_type"`
	Quantity      float64   `json:"quantity"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published after a booking status transition commits.
type BookingStatusChangedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// DeliveryCreatedEvent is published after a delivery is persisted.
type DeliveryCreatedEvent struct {
	DeliveryID uuid.UUID `json:"delivery_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	FuelType   string    `json:"fuel_type"`
	Quantity   float64   `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DeliveryAssignedEvent is published after agent/vehicle assignment commits.
type DeliveryAssignedEvent struct {
	DeliveryID uuid.UUID  `json:"delivery_id"`
	AgentID    *uuid.UUID `json:"agent_id,omitempty"`
	VehicleID  *uuid.UUID `json:"vehicle_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// DeliveryStatusChangedEvent is published after a delivery status transition commits.
type DeliveryStatusChangedEvent struct {
	DeliveryID uuid.UUID `json:"delivery_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DeliveryCancelledEvent is published after a delivery is cancelled.
type DeliveryCancelledEvent struct {
	DeliveryID uuid.UUID `json:"delivery_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// InventoryCreatedEvent is published after a new batch is taken in.
type InventoryCreatedEvent struct {
	InventoryID uuid.UUID `json:"inventory_id"`
	BatchNumber string    `json:"batch_number"`
	FuelType    string    `json:"fuel_type"`
	Quantity    float64   `json:"quantity"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// InventoryRestockedEvent is published after a restock commits.
type InventoryRestockedEvent struct {
	InventoryID uuid.UUID `json:"inventory_id"`
	BatchNumber string    `json:"batch_number"`
	Amount      float64   `json:"amount"`
	NewQuantity float64   `json:"new_quantity"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// InventoryLowStockEvent is published when a batch is detected below the
// configured threshold.
type InventoryLowStockEvent struct {
	InventoryID uuid.UUID `json:"inventory_id"`
	BatchNumber string    `json:"batch_number"`
	FuelType    string    `json:"fuel_type"`
	Quantity    float64   `json:"quantity"`
	Threshold   float64   `json:"threshold"`
	OccurredAt  time.Time `json:"occurred_at"`
}
