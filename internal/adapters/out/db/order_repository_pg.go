package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	orderdom "storefront/internal/domain/order"
)

// OrderRepositoryPG is the PostgreSQL order archive (order.Archiver).
// The Firestore write is authoritative; this table is a reporting copy.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS orders (
//	    id          TEXT PRIMARY KEY,
//	    user_id     TEXT,
//	    total       BIGINT NOT NULL,
//	    status      TEXT NOT NULL,
//	    payload     JSONB NOT NULL,
//	    created_at  TIMESTAMPTZ NOT NULL
//	);
type OrderRepositoryPG struct {
	db *sql.DB
}

func NewOrderRepositoryPG(db *sql.DB) *OrderRepositoryPG {
	return &OrderRepositoryPG{db: db}
}

func (r *OrderRepositoryPG) Archive(ctx context.Context, o *orderdom.Order) error {
	if r == nil || r.db == nil {
		return errors.New("order_repository_pg: db is nil")
	}
	if o == nil {
		return errors.New("order_repository_pg: order is nil")
	}

	id := strings.TrimSpace(o.ID)
	if id == "" {
		return orderdom.ErrInvalidOrder
	}

	payload, err := json.Marshal(o)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO orders (id, user_id, total, status, payload, created_at)
VALUES ($1, $2, $3, $4, $5::jsonb, $6)
ON CONFLICT (id) DO NOTHING
`
	_, err = r.db.ExecContext(ctx, q, id, o.UserID, o.TotalAmount, o.Status, string(payload), o.CreatedAt)
	return err
}
