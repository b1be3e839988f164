package order

import "context"

// Repository is the persistence port for orders (Firestore, docId = order.ID).
type Repository interface {
	Create(ctx context.Context, o *Order) error
}

// Archiver is an optional secondary sink (Postgres archive). Failures are
// logged and absorbed; the primary write is authoritative.
type Archiver interface {
	Archive(ctx context.Context, o *Order) error
}
