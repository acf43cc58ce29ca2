package broker

import (
	"context"
	"fmt"

	"stockflow-importer/internal/models"
)

// EventPublisher handles publishing ingestion events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishFileProcessed publishes the per-file ingestion result
func (ep *EventPublisher) PublishFileProcessed(ctx context.Context, event *models.FileProcessedEvent) error {
	key := fmt.Sprintf("file-%s", event.FileName)
	return ep.producer.PublishEvent(ctx, key, event)
}
