package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	cartdom "storefront/internal/domain/cart"
)

// DefaultCartTTL is the inactivity window after which a persisted cart
// snapshot becomes eligible for auto deletion (configure Firestore TTL on
// the expiresAt field).
const DefaultCartTTL = 7 * 24 * time.Hour

// CartSnapshotFS implements cart.SnapshotSink on Firestore.
//
// Collection design:
// - collection: carts
// - docId: sessionId
// - fields: items(map keyed by lineKey), total, updatedAt, expiresAt
type CartSnapshotFS struct {
	Client *firestore.Client
	TTL    time.Duration
}

func NewCartSnapshotFS(client *firestore.Client) *CartSnapshotFS {
	return &CartSnapshotFS{Client: client, TTL: DefaultCartTTL}
}

func (r *CartSnapshotFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

func (r *CartSnapshotFS) SaveSnapshot(ctx context.Context, sessionID string, snap cartdom.Snapshot) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_snapshot_fs: firestore client is nil")
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return errors.New("cart_snapshot_fs: sessionID is empty")
	}

	ttl := r.TTL
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	now := time.Now().UTC()

	items := map[string]cartItemDoc{}
	for _, it := range snap.Items {
		key := strings.TrimSpace(it.LineKey)
		if key == "" || it.Quantity < 1 {
			continue
		}
		items[key] = cartItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Qty:       it.Quantity,
			ImageRef:  it.ImageRef,
			Variant:   it.Variant,
		}
	}

	doc := cartDoc{
		Items:     items,
		Total:     snap.Total,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	// Overwrite full doc (simple & predictable).
	_, err := r.col().Doc(sid).Set(ctx, doc)
	return err
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type cartDoc struct {
	Items     map[string]cartItemDoc `firestore:"items"`
	Total     int64                  `firestore:"total"`
	UpdatedAt time.Time              `firestore:"updatedAt"`
	ExpiresAt time.Time              `firestore:"expiresAt"`
}

type cartItemDoc struct {
	ProductID string            `firestore:"productId"`
	Name      string            `firestore:"name"`
	UnitPrice int64             `firestore:"unitPrice"`
	Qty       int               `firestore:"qty"`
	ImageRef  string            `firestore:"imageRef,omitempty"`
	Variant   map[string]string `firestore:"variant,omitempty"`
}
