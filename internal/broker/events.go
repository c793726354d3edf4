package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"storefront-service/internal/models"
	"storefront-service/internal/util"
)

// EventPublisher publishes storefront change events so other service
// instances learn about mutations to the shared persisted state.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishCartUpdated publishes a CartUpdated event
func (ep *EventPublisher) PublishCartUpdated(ctx context.Context, event *models.CartUpdatedEvent) error {
	key := fmt.Sprintf("cart-%d", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishWishlistUpdated publishes a WishlistUpdated event
func (ep *EventPublisher) PublishWishlistUpdated(ctx context.Context, event *models.WishlistUpdatedEvent) error {
	key := fmt.Sprintf("wishlist-%d", event.ProductID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming change events to registered callbacks.
type EventHandler struct {
	logger *zap.Logger

	onCartUpdated     func(context.Context, *models.CartUpdatedEvent) error
	onWishlistUpdated func(context.Context, *models.WishlistUpdatedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnCartUpdated registers a handler for CartUpdated events
func (eh *EventHandler) OnCartUpdated(handler func(context.Context, *models.CartUpdatedEvent) error) {
	eh.onCartUpdated = handler
}

// OnWishlistUpdated registers a handler for WishlistUpdated events
func (eh *EventHandler) OnWishlistUpdated(handler func(context.Context, *models.WishlistUpdatedEvent) error) {
	eh.onWishlistUpdated = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeCartUpdated:
		if eh.onCartUpdated != nil {
			var event models.CartUpdatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CartUpdated event: %w", err)
			}
			return eh.onCartUpdated(ctx, &event)
		}

	case models.EventTypeWishlistUpdated:
		if eh.onWishlistUpdated != nil {
			var event models.WishlistUpdatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal WishlistUpdated event: %w", err)
			}
			return eh.onWishlistUpdated(ctx, &event)
		}

	default:
		eh.logger.Warn("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
