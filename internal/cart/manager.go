// Package cart maintains the authoritative cart and wishlist state.
// The persisted key/value blobs are the source of truth; any mounted
// observer reads them once on attach and re-reads when notified. All
// mutations go through the Manager's single writer lock, persist
// synchronously, and then broadcast through a debounced single-slot
// task so observers always see fully settled state.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-service/internal/catalog"
	"storefront-service/internal/debounce"
	"storefront-service/internal/kvstore"
	"storefront-service/internal/models"
	"storefront-service/internal/util"
)

// Persistence keys. The stored values are JSON: a list of cart lines
// under KeyCart, a list of product ids under KeyWishlist.
const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
)

// TaxRate is applied to the cart subtotal. Shipping is free.
const TaxRate = 0.10

// DefaultBroadcastDelay is the settle window between a persisted
// mutation and the observer broadcast.
const DefaultBroadcastDelay = 100 * time.Millisecond

// Update describes a settled change for observers. For cart changes
// the metadata lets views render add-vs-increase feedback without
// re-deriving it; wishlist changes carry no metadata beyond the flag.
type Update struct {
	ProductID int64
	Increased bool
	Wishlist  bool
}

// EventPublisher forwards settled changes to other service
// instances. May be nil when the service runs standalone.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, event *models.CartUpdatedEvent) error
	PublishWishlistUpdated(ctx context.Context, event *models.WishlistUpdatedEvent) error
}

// Manager is the single writer for cart and wishlist state.
type Manager struct {
	store     kvstore.Store
	catalog   *catalog.Catalog
	publisher EventPublisher
	logger    *zap.Logger

	// Separate single-slot broadcasts so a wishlist toggle cannot
	// replace a pending cart notification.
	broadcast         *debounce.Debouncer
	wishlistBroadcast *debounce.Debouncer

	mu sync.Mutex // serializes read-modify-write cycles on the store

	subMu  sync.Mutex
	subs   map[int]func(Update)
	nextID int
}

// NewManager creates a manager over the given store. publisher may be
// nil.
func NewManager(store kvstore.Store, cat *catalog.Catalog, publisher EventPublisher, broadcastDelay time.Duration) *Manager {
	if broadcastDelay <= 0 {
		broadcastDelay = DefaultBroadcastDelay
	}
	return &Manager{
		store:             store,
		catalog:           cat,
		publisher:         publisher,
		broadcast:         debounce.New(broadcastDelay),
		wishlistBroadcast: debounce.New(broadcastDelay),
		logger:            util.GetLogger(),
		subs:              make(map[int]func(Update)),
	}
}

// Subscribe registers an observer for settled changes. The returned
// function unsubscribes.
func (m *Manager) Subscribe(fn func(Update)) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

// Close cancels any pending broadcasts.
func (m *Manager) Close() {
	m.broadcast.Stop()
	m.wishlistBroadcast.Stop()
}

// Add puts one unit of the product into the cart: a new line at
// quantity 1, or an increment of the existing line. Returns whether
// an existing line was increased.
func (m *Manager) Add(ctx context.Context, productID int64) (bool, error) {
	ctx, span := util.StartSpan(ctx, "cart.Manager.Add")
	defer span.End()

	product, ok := m.catalog.ProductByID(productID)
	if !ok {
		util.CartMutationsFailed.WithLabelValues("unknown_product").Inc()
		return false, fmt.Errorf("unknown product: %d", productID)
	}

	m.mu.Lock()
	lines := m.loadLines(ctx)

	increased := false
	for i := range lines {
		if lines[i].Product.ID == productID {
			lines[i].Quantity++
			increased = true
			break
		}
	}
	if !increased {
		lines = append(lines, models.CartLine{Product: product, Quantity: 1})
	}

	err := m.persistLines(ctx, lines)
	unique := len(lines)
	m.mu.Unlock()

	if err != nil {
		util.CartMutationsFailed.WithLabelValues("persist_error").Inc()
		return false, err
	}

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	m.logger.Info("Cart updated",
		zap.Int64("product_id", productID),
		zap.Bool("increased", increased))

	m.scheduleBroadcast(Update{ProductID: productID, Increased: increased}, unique)
	return increased, nil
}

// SetQuantity sets the quantity of an existing line. Quantities below
// 1 are a no-op: the floor is 1 and only Remove drops a line. A
// product without a line is also a no-op.
func (m *Manager) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	ctx, span := util.StartSpan(ctx, "cart.Manager.SetQuantity")
	defer span.End()

	if quantity < 1 {
		return nil
	}

	m.mu.Lock()
	lines := m.loadLines(ctx)

	changed := false
	increased := false
	for i := range lines {
		if lines[i].Product.ID == productID {
			increased = quantity > lines[i].Quantity
			changed = lines[i].Quantity != quantity
			lines[i].Quantity = quantity
			break
		}
	}

	var err error
	if changed {
		err = m.persistLines(ctx, lines)
	}
	unique := len(lines)
	m.mu.Unlock()

	if err != nil {
		util.CartMutationsFailed.WithLabelValues("persist_error").Inc()
		return err
	}
	if !changed {
		return nil
	}

	util.CartMutationsTotal.WithLabelValues("set_quantity").Inc()
	m.scheduleBroadcast(Update{ProductID: productID, Increased: increased}, unique)
	return nil
}

// Remove drops the product's line regardless of quantity.
func (m *Manager) Remove(ctx context.Context, productID int64) error {
	ctx, span := util.StartSpan(ctx, "cart.Manager.Remove")
	defer span.End()

	m.mu.Lock()
	lines := m.loadLines(ctx)

	kept := lines[:0]
	removed := false
	for _, line := range lines {
		if line.Product.ID == productID {
			removed = true
			continue
		}
		kept = append(kept, line)
	}

	var err error
	if removed {
		err = m.persistLines(ctx, kept)
	}
	unique := len(kept)
	m.mu.Unlock()

	if err != nil {
		util.CartMutationsFailed.WithLabelValues("persist_error").Inc()
		return err
	}
	if !removed {
		return nil
	}

	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	m.logger.Info("Cart line removed", zap.Int64("product_id", productID))

	m.scheduleBroadcast(Update{ProductID: productID}, unique)
	return nil
}

// ToggleWishlist flips the product's wishlist membership and returns
// whether it is present afterwards.
func (m *Manager) ToggleWishlist(ctx context.Context, productID int64) (bool, error) {
	ctx, span := util.StartSpan(ctx, "cart.Manager.ToggleWishlist")
	defer span.End()

	m.mu.Lock()
	ids := m.loadWishlist(ctx)

	kept := ids[:0]
	present := false
	for _, id := range ids {
		if id == productID {
			present = true
			continue
		}
		kept = append(kept, id)
	}
	if !present {
		kept = append(kept, productID)
	}

	err := m.persistWishlist(ctx, kept)
	m.mu.Unlock()

	if err != nil {
		util.CartMutationsFailed.WithLabelValues("persist_error").Inc()
		return false, err
	}

	util.WishlistTogglesTotal.Inc()

	m.wishlistBroadcast.Trigger(func() {
		m.notify(Update{ProductID: productID, Wishlist: true})
		if m.publisher != nil {
			event := &models.WishlistUpdatedEvent{
				BaseEvent: models.BaseEvent{
					EventID:   uuid.New().String(),
					EventType: models.EventTypeWishlistUpdated,
					Timestamp: time.Now(),
				},
				ProductID: productID,
			}
			if err := m.publisher.PublishWishlistUpdated(context.Background(), event); err != nil {
				m.logger.Error("Failed to publish WishlistUpdated event", zap.Error(err))
			}
		}
	})

	return !present, nil
}

// Lines returns the current cart lines from the persisted store.
func (m *Manager) Lines(ctx context.Context) []models.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLines(ctx)
}

// WishlistIDs returns the current wishlist from the persisted store.
func (m *Manager) WishlistIDs(ctx context.Context) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadWishlist(ctx)
}

// InWishlist reports the product's wishlist membership.
func (m *Manager) InWishlist(ctx context.Context, productID int64) bool {
	for _, id := range m.WishlistIDs(ctx) {
		if id == productID {
			return true
		}
	}
	return false
}

// UniqueCount is the header badge number: unique lines, not summed
// quantities.
func (m *Manager) UniqueCount(ctx context.Context) int {
	return len(m.Lines(ctx))
}

// Totals computes the order summary for the current cart.
func (m *Manager) Totals(ctx context.Context) models.CartTotals {
	subtotal := 0.0
	for _, line := range m.Lines(ctx) {
		subtotal += line.Product.Price * float64(line.Quantity)
	}
	tax := subtotal * TaxRate
	return models.CartTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// Refresh re-reads the persisted store and notifies observers. Called
// when another process changed the store underneath us.
func (m *Manager) Refresh(ctx context.Context) {
	m.mu.Lock()
	m.loadLines(ctx)
	m.loadWishlist(ctx)
	m.mu.Unlock()

	m.notify(Update{})
}

// scheduleBroadcast defers the observer notification past the settle
// window. A newer mutation replaces the pending broadcast, so bursts
// collapse and observers re-read only settled state.
func (m *Manager) scheduleBroadcast(update Update, uniqueLines int) {
	m.broadcast.Trigger(func() {
		util.CartBroadcastsTotal.Inc()
		m.notify(update)

		if m.publisher == nil {
			return
		}
		event := &models.CartUpdatedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeCartUpdated,
				Timestamp: time.Now(),
			},
			ProductID:   update.ProductID,
			Increased:   update.Increased,
			UniqueLines: uniqueLines,
		}
		if err := m.publisher.PublishCartUpdated(context.Background(), event); err != nil {
			m.logger.Error("Failed to publish CartUpdated event", zap.Error(err))
		}
	})
}

func (m *Manager) notify(update Update) {
	m.subMu.Lock()
	fns := make([]func(Update), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(update)
	}
}

// loadLines reads the cart blob; absence and malformed content both
// yield an empty cart, never an error. Caller holds mu.
func (m *Manager) loadLines(ctx context.Context) []models.CartLine {
	raw, ok, err := m.store.Get(ctx, KeyCart)
	if err != nil {
		m.logger.Error("Failed to read cart blob", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var lines []models.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		m.logger.Error("Malformed cart blob, treating as empty", zap.Error(err))
		util.PersistedBlobParseFailures.WithLabelValues(KeyCart).Inc()
		return nil
	}
	return lines
}

func (m *Manager) persistLines(ctx context.Context, lines []models.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := m.store.Set(ctx, KeyCart, string(data)); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

// loadWishlist reads the wishlist blob with the same fallback policy
// as loadLines. Caller holds mu.
func (m *Manager) loadWishlist(ctx context.Context) []int64 {
	raw, ok, err := m.store.Get(ctx, KeyWishlist)
	if err != nil {
		m.logger.Error("Failed to read wishlist blob", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		m.logger.Error("Malformed wishlist blob, treating as empty", zap.Error(err))
		util.PersistedBlobParseFailures.WithLabelValues(KeyWishlist).Inc()
		return nil
	}
	return ids
}

func (m *Manager) persistWishlist(ctx context.Context, ids []int64) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal wishlist: %w", err)
	}
	if err := m.store.Set(ctx, KeyWishlist, string(data)); err != nil {
		return fmt.Errorf("failed to persist wishlist: %w", err)
	}
	return nil
}
