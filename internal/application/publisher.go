package application

import (
	"context"

	"github.com/fuel-nexus/service-backoffice/internal/kafka"
)

// EventPublisher is the notification sink used by the application services.
// Publishes happen after the mutation commits and are best-effort: services
// log failures and never propagate them to the caller.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, evt kafka.CloudEvent) error
}

const eventSource = "service-backoffice"
