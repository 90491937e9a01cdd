package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fuel-nexus/service-backoffice/internal/kafka"
)

// StockAlertConsumer listens to the inventory event stream and surfaces
// low-stock alerts for the depot operators.
type StockAlertConsumer struct {
	consumer *kafka.Consumer
	logger   *zap.Logger
}

// NewStockAlertConsumer creates a consumer on the inventory events topic.
func NewStockAlertConsumer(brokers []string, groupID string, logger *zap.Logger) *StockAlertConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicInventoryEvents, logger)
	return &StockAlertConsumer{
		consumer: consumer,
		logger:   logger,
	}
}

// Start begins consuming inventory events. This blocks until the context is cancelled.
func (c *StockAlertConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *StockAlertConsumer) Close() error {
	return c.consumer.Close()
}

func (c *StockAlertConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from inventory topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	if cloudEvent.Type != InventoryLowStock {
		return nil
	}

	var evt InventoryLowStockEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse InventoryLowStockEvent data", zap.Error(err))
		return nil
	}

	c.logger.Warn("low stock alert",
		zap.String("inventory_id", evt.InventoryID.String()),
		zap.String("batch_number", evt.BatchNumber),
		zap.String("fuel_type", evt.FuelType),
		zap.Float64("quantity", evt.Quantity),
		zap.Float64("threshold", evt.Threshold),
	)
	return nil
}
