package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/application/store"
	orderdom "storefront/internal/domain/order"
)

var ErrCheckoutInvalidArgument = errors.New("checkout_usecase: invalid argument")

const archiveTimeout = 5 * time.Second

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// CheckoutUsecase records a pending order from the current cart contents and
// clears the cart on success. Payment processing is downstream.
type CheckoutUsecase struct {
	cart    *store.CartStore
	orders  orderdom.Repository
	archive orderdom.Archiver // optional
	clock   Clock
	newID   func() string
}

func NewCheckoutUsecase(cart *store.CartStore, orders orderdom.Repository) *CheckoutUsecase {
	return &CheckoutUsecase{
		cart:   cart,
		orders: orders,
		clock:  systemClock{},
		newID:  func() string { return uuid.NewString() },
	}
}

// WithArchiver enables the best-effort secondary archive write.
func (uc *CheckoutUsecase) WithArchiver(a orderdom.Archiver) *CheckoutUsecase {
	uc.archive = a
	return uc
}

// WithClock is useful for tests.
func (uc *CheckoutUsecase) WithClock(c Clock) *CheckoutUsecase {
	if c != nil {
		uc.clock = c
	}
	return uc
}

// WithIDGenerator is useful for tests.
func (uc *CheckoutUsecase) WithIDGenerator(fn func() string) *CheckoutUsecase {
	if fn != nil {
		uc.newID = fn
	}
	return uc
}

// Submit validates nothing beyond structural requirements (field validation
// is the handler boundary's concern), writes the order, then clears the
// cart. The cart is cleared only after the authoritative write succeeds.
func (uc *CheckoutUsecase) Submit(ctx context.Context, userID string, form orderdom.CheckoutForm) (*orderdom.Order, error) {
	if uc == nil || uc.cart == nil || uc.orders == nil {
		return nil, ErrCheckoutInvalidArgument
	}

	snap := uc.cart.Snapshot()
	if len(snap.Items) == 0 {
		return nil, orderdom.ErrEmptyCart
	}

	o, err := orderdom.New(uc.newID(), strings.TrimSpace(userID), form, snap.Items, snap.Total, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := uc.orders.Create(ctx, o); err != nil {
		return nil, err
	}

	if uc.archive != nil {
		go func(o orderdom.Order) {
			actx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
			defer cancel()
			if err := uc.archive.Archive(actx, &o); err != nil {
				log.Printf("[checkout_usecase] WARN: order archive failed id=%s: %v", o.ID, err)
			}
		}(*o)
	}

	uc.cart.Clear()
	log.Printf("[checkout_usecase] order created id=%s items=%d total=%d", o.ID, len(o.Items), o.TotalAmount)
	return o, nil
}
