package store

import (
	"context"
	"log"
	"sync"
	"time"

	cartdom "storefront/internal/domain/cart"
)

// snapshotTimeout bounds the best-effort snapshot persistence write.
const snapshotTimeout = 5 * time.Second

// CartStore owns the session cart. It is the single mutation entry point:
// consumers issue intents (method calls) and re-render from the published
// snapshot; no direct mutation is permitted.
//
// Every mutator commits against the CURRENT stored state under the lock,
// never against a value captured before the call, so rapid back-to-back
// mutations from independently mounted views (navbar badge, product page)
// cannot lose an increment.
type CartStore struct {
	mu   sync.Mutex
	cart *cartdom.Cart

	subs   map[int]func(cartdom.Snapshot)
	nextID int

	// optional best-effort persistence
	sink      cartdom.SnapshotSink
	sessionID string
}

type Option func(*CartStore)

// WithSnapshotSink enables best-effort snapshot persistence keyed by sessionID.
func WithSnapshotSink(sink cartdom.SnapshotSink, sessionID string) Option {
	return func(s *CartStore) {
		s.sink = sink
		s.sessionID = sessionID
	}
}

func NewCartStore(opts ...Option) *CartStore {
	s := &CartStore{
		cart: cartdom.New(),
		subs: map[int]func(cartdom.Snapshot){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a listener notified with an immutable snapshot after
// every committed mutation. The returned func unsubscribes.
func (s *CartStore) Subscribe(fn func(cartdom.Snapshot)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Add merges by line key against the latest stored state (see cart.Cart.Add).
func (s *CartStore) Add(item cartdom.CartItem, qty int) {
	s.commit(func(c *cartdom.Cart) { c.Add(item, qty) })
}

// Remove deletes a line; absent key is a no-op.
func (s *CartStore) Remove(lineKey string) {
	s.commit(func(c *cartdom.Cart) { c.Remove(lineKey) })
}

// SetQuantity clamps below-1 to 1 and never removes.
func (s *CartStore) SetQuantity(lineKey string, n int) {
	s.commit(func(c *cartdom.Cart) { c.SetQuantity(lineKey, n) })
}

// Clear empties the cart (after successful checkout submission).
func (s *CartStore) Clear() {
	s.commit(func(c *cartdom.Cart) { c.Clear() })
}

// Items returns a snapshot copy of the current lines.
func (s *CartStore) Items() []cartdom.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Items()
}

// Total is the derived sum over the current lines.
func (s *CartStore) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

// Snapshot returns the current published view.
func (s *CartStore) Snapshot() cartdom.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartdom.Snapshot{Items: s.cart.Items(), Total: s.cart.Total()}
}

// commit applies the mutation to the stored cart under the lock, then
// publishes the resulting snapshot to subscribers and the sink.
func (s *CartStore) commit(mutate func(*cartdom.Cart)) {
	s.mu.Lock()
	mutate(s.cart)
	snap := cartdom.Snapshot{Items: s.cart.Items(), Total: s.cart.Total()}
	listeners := make([]func(cartdom.Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	s.persist(snap)
}

func (s *CartStore) persist(snap cartdom.Snapshot) {
	if s.sink == nil || s.sessionID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		if err := s.sink.SaveSnapshot(ctx, s.sessionID, snap); err != nil {
			log.Printf("[cart_store] WARN: snapshot persist failed: %v", err)
		}
	}()
}
