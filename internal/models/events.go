package models

import "time"

// Event types
const (
	EventTypeCartUpdated     = "CART_UPDATED"
	EventTypeWishlistUpdated = "WISHLIST_UPDATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CartUpdatedEvent is published after a settled cart mutation. The
// metadata lets observers render add-vs-increase feedback without
// re-deriving it from the persisted blob.
type CartUpdatedEvent struct {
	BaseEvent
	ProductID   int64 `json:"product_id"`
	Increased   bool  `json:"increased"`
	UniqueLines int   `json:"unique_lines"`
}

// WishlistUpdatedEvent is published after a wishlist toggle. No
// per-change metadata is needed; observers just re-read the store.
type WishlistUpdatedEvent struct {
	BaseEvent
	ProductID int64 `json:"product_id"`
}
