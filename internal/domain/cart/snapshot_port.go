package cart

import "context"

// Snapshot is the immutable published view of the cart that consuming
// views render from.
type Snapshot struct {
	Items []CartItem `json:"items"`
	Total int64      `json:"total"`
}

// SnapshotSink is an optional persistence port for cart snapshots.
//
// Storage recommendation (Firestore):
// - collection: carts
// - docId: sessionId
// - fields: items(map), updatedAt, expiresAt (configure Firestore TTL on expiresAt)
//
// Persistence is best-effort: in-session cart correctness never depends on it.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, sessionID string, snap Snapshot) error
}
