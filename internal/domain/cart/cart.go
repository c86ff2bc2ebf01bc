// Package cart implements anonymous shopping carts with quantity-aggregating
// item mutation. Carts are keyed by server-generated UUIDs and carry no owner
// until they are converted into an order.
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrCartNotFound is returned when the addressed cart does not exist,
	// including carts already consumed by conversion.
	ErrCartNotFound = errors.New("cart not found")
	// ErrItemNotFound is returned when an item mutation addresses a product
	// that is not in the cart.
	ErrItemNotFound = errors.New("cart item not found")
)

// ProductNotFoundError reports an attempt to add a product that does not
// exist in the catalog.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InvalidQuantityError reports a non-positive quantity in an item mutation.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d: must be greater than 0", e.Quantity)
}

// Cart is an anonymous shopping cart.
type Cart struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is a single cart line: one product with an aggregated quantity.
type Item struct {
	ID        int64
	CartID    uuid.UUID
	ProductID int64
	Quantity  int
}

// ProductSnapshot carries the catalog fields the cart read model exposes.
type ProductSnapshot struct {
	ID            int64
	Name          string
	Slug          string
	ImageURL      string
	OriginalPrice decimal.Decimal
	DiscountPrice decimal.Decimal
}

// ItemView is one cart line joined with its product, priced at the product's
// current discount price.
type ItemView struct {
	Product  ProductSnapshot
	Quantity int
	SubTotal decimal.Decimal
}

// View is the cart read model returned to clients: all lines plus the
// computed total.
type View struct {
	ID        uuid.UUID
	Items     []ItemView
	Total     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines persistence operations for carts and their items.
// UpsertItem must aggregate atomically: concurrent adds of the same product
// to the same cart sum their quantities.
type Repository interface {
	CreateCart(ctx context.Context) (*Cart, error)
	GetCart(ctx context.Context, id uuid.UUID) (*Cart, error)
	DeleteCart(ctx context.Context, id uuid.UUID) error
	ListItems(ctx context.Context, cartID uuid.UUID) ([]ItemView, error)
	UpsertItem(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (*Item, error)
	UpdateItemQuantity(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) error
	RemoveItem(ctx context.Context, cartID uuid.UUID, productID int64) error
}
