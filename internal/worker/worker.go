package worker

import (
	"context"

	"go.uber.org/zap"

	"storefront-service/internal/broker"
	"storefront-service/internal/cart"
	"storefront-service/internal/models"
	"storefront-service/internal/util"
)

// CartSyncWorker consumes cart and wishlist change events published
// by other service instances and tells the local manager to re-read
// the persisted store, keeping every instance's observers consistent
// without a single in-memory source of truth.
type CartSyncWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	manager      *cart.Manager
	logger       *zap.Logger
}

// NewCartSyncWorker creates a new sync worker
func NewCartSyncWorker(consumer *broker.Consumer, manager *cart.Manager) *CartSyncWorker {
	w := &CartSyncWorker{
		consumer: consumer,
		manager:  manager,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnCartUpdated(w.handleCartUpdated)
	eventHandler.OnWishlistUpdated(w.handleWishlistUpdated)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *CartSyncWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting cart sync worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CartSyncWorker) Stop() error {
	w.logger.Info("Stopping cart sync worker")
	return w.consumer.Close()
}

func (w *CartSyncWorker) handleCartUpdated(ctx context.Context, event *models.CartUpdatedEvent) error {
	w.logger.Debug("Cart changed elsewhere, refreshing",
		zap.Int64("product_id", event.ProductID),
		zap.Bool("increased", event.Increased))

	w.manager.Refresh(ctx)
	return nil
}

func (w *CartSyncWorker) handleWishlistUpdated(ctx context.Context, event *models.WishlistUpdatedEvent) error {
	w.logger.Debug("Wishlist changed elsewhere, refreshing",
		zap.Int64("product_id", event.ProductID))

	w.manager.Refresh(ctx)
	return nil
}
