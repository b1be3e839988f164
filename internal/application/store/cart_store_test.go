package store

import (
	"context"
	"sync"
	"testing"
	"time"

	cartdom "storefront/internal/domain/cart"
)

func mug() cartdom.CartItem {
	return cartdom.CartItem{ProductID: "p-01", Name: "Enamel Mug", UnitPrice: 2999}
}

func TestCartStoreConcurrentAddsLoseNothing(t *testing.T) {
	s := NewCartStore()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			s.Add(mug(), 1)
		}()
	}
	wg.Wait()

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(items))
	}
	if items[0].Quantity != goroutines {
		t.Errorf("quantity = %d, want %d (lost increments)", items[0].Quantity, goroutines)
	}
	if got := s.Total(); got != int64(goroutines)*2999 {
		t.Errorf("Total() = %d, want %d", got, int64(goroutines)*2999)
	}
}

func TestCartStoreSubscribeAndUnsubscribe(t *testing.T) {
	s := NewCartStore()

	var got []cartdom.Snapshot
	unsubscribe := s.Subscribe(func(snap cartdom.Snapshot) {
		got = append(got, snap)
	})

	s.Add(mug(), 2)
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	if got[0].Total != 5998 {
		t.Errorf("notified total = %d, want 5998", got[0].Total)
	}

	unsubscribe()
	s.Add(mug(), 1)
	if len(got) != 1 {
		t.Errorf("listener notified after unsubscribe")
	}
}

func TestCartStoreSnapshotIsImmutable(t *testing.T) {
	s := NewCartStore()
	s.Add(mug(), 1)

	snap := s.Snapshot()
	snap.Items[0].Quantity = 42

	if got := s.Items()[0].Quantity; got != 1 {
		t.Errorf("snapshot mutation leaked into the store (quantity=%d)", got)
	}
}

type recordingSink struct {
	mu    sync.Mutex
	calls []cartdom.Snapshot
	done  chan struct{}
}

func (r *recordingSink) SaveSnapshot(ctx context.Context, sessionID string, snap cartdom.Snapshot) error {
	r.mu.Lock()
	r.calls = append(r.calls, snap)
	r.mu.Unlock()
	select {
	case r.done <- struct{}{}:
	default:
	}
	return nil
}

func TestCartStorePersistsSnapshots(t *testing.T) {
	sink := &recordingSink{done: make(chan struct{}, 1)}
	s := NewCartStore(WithSnapshotSink(sink, "sess-1"))

	s.Add(mug(), 3)

	select {
	case <-sink.done:
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot was never persisted")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.calls) == 0 {
		t.Fatal("no persisted snapshots recorded")
	}
	if sink.calls[0].Total != 8997 {
		t.Errorf("persisted total = %d, want 8997", sink.calls[0].Total)
	}
}
