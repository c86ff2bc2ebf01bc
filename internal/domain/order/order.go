// Package order implements order records and the cart-to-order conversion
// workflow. Conversion consumes a cart atomically: the order and its items
// appear, and the cart disappears, in one transaction.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when the requested order does not exist or is
	// not visible to the caller.
	ErrNotFound = errors.New("order not found")
	// ErrCartNotFound is returned by conversion when the cart does not exist,
	// including carts already consumed by a previous conversion.
	ErrCartNotFound = errors.New("cart not found")
)

// PaymentStatus tracks the payment lifecycle of an order.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed    PaymentStatus = "failed"
)

// Order is a placed order owned by a registered user.
type Order struct {
	ID            int64
	OwnerID       int64
	PaymentStatus PaymentStatus
	PlacedAt      time.Time
	Items         []Item
}

// Item is one order line. UnitPrice snapshots the product's discount price
// at conversion time, so later catalog edits do not rewrite order history.
type Item struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Total returns the order total across all lines.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total.Round(2)
}

// Repository defines persistence operations for orders.
//
// ConvertCart is the transactional core: it creates a pending order for
// ownerID from the cart's items and deletes the cart, all or nothing.
// Concurrent conversions of the same cart serialize on the cart row; the
// loser observes the cart gone and gets ErrCartNotFound.
type Repository interface {
	ConvertCart(ctx context.Context, cartID uuid.UUID, ownerID int64) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
}
