package cart

import (
	"sync"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// Store owns the set of distinct products the user intends to purchase.
// It is created once at startup, lives for the process lifetime, and is
// handed by reference to every consumer. Contents are in-memory only;
// a restart discards the cart.
//
// Every mutation that changes membership notifies all current
// subscribers synchronously, before the mutating call returns, so a
// consumer reading the store right after a mutation always observes it.
type Store struct {
	mu      sync.Mutex
	items   []models.CartItem
	subs    map[int]func()
	nextSub int
	logger  *zap.Logger
}

// NewStore creates an empty cart store
func NewStore() *Store {
	return &Store{
		subs:   make(map[int]func()),
		logger: util.GetLogger(),
	}
}

// Add inserts a snapshot of the product if it is not already in the
// cart. Adding a product that is already present is a no-op, never a
// duplicate entry and never a quantity bump; quantity lives with the
// cart view, not here.
func (s *Store) Add(p models.Product) {
	s.mu.Lock()
	if s.indexOf(p.ID) >= 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items, models.Snapshot(p))
	subs := s.snapshotSubs()
	s.mu.Unlock()

	util.CartAddsTotal.Inc()
	s.logger.Debug("Product added to cart", zap.Int64("product_id", p.ID))
	notify(subs)
}

// Remove deletes the entry for productID if present. Removing an ID
// that is not in the cart is a no-op, not an error.
func (s *Store) Remove(productID int64) {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	subs := s.snapshotSubs()
	s.mu.Unlock()

	util.CartRemovesTotal.Inc()
	s.logger.Debug("Product removed from cart", zap.Int64("product_id", productID))
	notify(subs)
}

// Items returns a copy of the current cart entries in insertion order.
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Contains reports whether the product is in the cart.
func (s *Store) Contains(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(productID) >= 0
}

// Len returns the number of distinct products in the cart.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Subscribe registers fn to run synchronously after every membership
// change. The returned function unregisters it; consumers must call it
// on their own teardown. Unsubscribing twice is harmless.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) indexOf(productID int64) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// snapshotSubs copies the subscriber list so callbacks run outside the
// lock; a subscriber may read the store or unsubscribe from inside its
// own callback.
func (s *Store) snapshotSubs() []func() {
	out := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}
