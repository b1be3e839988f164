package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cloud.google.com/go/firestore"

	orderdom "storefront/internal/domain/order"
)

// OrderRepositoryFS implements order.Repository on Firestore.
//
// Collection design:
// - collection: orders
// - docId: order.ID (uuid, assigned by the checkout usecase)
type OrderRepositoryFS struct {
	Client *firestore.Client
}

func NewOrderRepositoryFS(client *firestore.Client) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client}
}

func (r *OrderRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("orders")
}

func (r *OrderRepositoryFS) Create(ctx context.Context, o *orderdom.Order) error {
	if r == nil || r.Client == nil {
		return errors.New("order_repository_fs: firestore client is nil")
	}
	if o == nil {
		return errors.New("order_repository_fs: order is nil")
	}

	id := strings.TrimSpace(o.ID)
	if id == "" {
		return orderdom.ErrInvalidOrder
	}

	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, map[string]any{
			"lineKey":   it.LineKey,
			"productId": it.ProductID,
			"name":      it.Name,
			"unitPrice": it.UnitPrice,
			"qty":       it.Quantity,
			"imageRef":  it.ImageRef,
			"variant":   it.Variant,
		})
	}

	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	data := map[string]any{
		"userId":        o.UserID,
		"customerName":  o.Form.CustomerName,
		"customerEmail": o.Form.CustomerEmail,
		"customerPhone": o.Form.CustomerPhone,
		"address":       o.Form.Address,
		"city":          o.Form.City,
		"postalCode":    o.Form.PostalCode,
		"country":       o.Form.Country,
		"paymentMethod": o.Form.PaymentMethod,
		"items":         items,
		"totalAmount":   o.TotalAmount,
		"status":        o.Status,
		"createdAt":     createdAt,
	}

	// Create (not Set): an order id must never be written twice.
	if _, err := r.col().Doc(id).Create(ctx, data); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.New("order_repository_fs: order already exists")
		}
		return err
	}
	return nil
}
