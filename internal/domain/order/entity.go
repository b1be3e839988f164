package order

import (
	"errors"
	"strings"
	"time"

	cartdom "storefront/internal/domain/cart"
)

var (
	ErrInvalidOrder = errors.New("order: invalid")
	ErrEmptyCart    = errors.New("order: cart is empty")
)

// StatusPending is the only status this service writes: payment processing
// is a downstream concern.
const StatusPending = "pending"

// CheckoutForm carries the fields collected by the checkout page.
// Validation happens at the handler boundary before the form reaches here.
type CheckoutForm struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	Address       string `json:"shippingAddress"`
	City          string `json:"shippingCity"`
	PostalCode    string `json:"shippingPostalCode"`
	Country       string `json:"shippingCountry"`
	PaymentMethod string `json:"paymentMethod"`
}

// Order is the record written on checkout submission.
type Order struct {
	ID          string             `json:"id"`
	UserID      string             `json:"userId,omitempty"`
	Form        CheckoutForm       `json:"form"`
	Items       []cartdom.CartItem `json:"items"`
	TotalAmount int64              `json:"totalAmount"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func New(id, userID string, form CheckoutForm, items []cartdom.CartItem, total int64, now time.Time) (*Order, error) {
	oid := strings.TrimSpace(id)
	if oid == "" {
		return nil, ErrInvalidOrder
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	return &Order{
		ID:          oid,
		UserID:      strings.TrimSpace(userID),
		Form:        form,
		Items:       items,
		TotalAmount: total,
		Status:      StatusPending,
		CreatedAt:   now.UTC(),
	}, nil
}
