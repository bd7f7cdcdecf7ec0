package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"tasleem/internal/models"
	"tasleem/internal/util"

	"github.com/segmentio/kafka-go"
)

// EventPublisher publishes ledger events keyed by merchant
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishLedgerEvent publishes a ledger event
func (ep *EventPublisher) PublishLedgerEvent(ctx context.Context, event *models.LedgerEvent) error {
	key := fmt.Sprintf("merchant-%d", event.MerchantID)
	if err := ep.producer.PublishEvent(ctx, key, event); err != nil {
		util.EventsPublishedTotal.WithLabelValues(event.EventType, "error").Inc()
		return err
	}
	util.EventsPublishedTotal.WithLabelValues(event.EventType, "ok").Inc()
	return nil
}

// EventHandler decodes incoming messages and routes ledger events
type EventHandler struct {
	onLedgerEvent func(context.Context, *models.LedgerEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnLedgerEvent registers a handler for every known ledger event type
func (eh *EventHandler) OnLedgerEvent(handler func(context.Context, *models.LedgerEvent) error) {
	eh.onLedgerEvent = handler
}

// HandleMessage routes messages to the registered handler. Unknown event
// types are acknowledged and skipped.
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOrderCreated,
		models.EventTypeOrderStatusChanged,
		models.EventTypeProfitCredited,
		models.EventTypeWithdrawalRequested,
		models.EventTypeWithdrawalStatusChanged:
		if eh.onLedgerEvent == nil {
			return nil
		}
		var event models.LedgerEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("failed to unmarshal %s event: %w", baseEvent.EventType, err)
		}
		return eh.onLedgerEvent(ctx, &event)
	}

	return nil
}
