package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Products are
// addressed externally by their encrypted slug, never by numeric id.
type Product struct {
	ID                 int64
	Name               string
	Slug               string
	PackTitle          string
	Description        string
	ImageURL           string
	OriginalPrice      decimal.Decimal
	DiscountPercentage decimal.Decimal
	DiscountPrice      decimal.Decimal
	Stock              int
}

var hundred = decimal.NewFromInt(100)

// ApplyDiscount recomputes DiscountPrice from OriginalPrice and
// DiscountPercentage, rounded to 2 decimal places. A zero percentage leaves
// the discount price equal to the original price. Runs on every save, so
// editing the percentage after creation recalculates the price.
func (p *Product) ApplyDiscount() {
	if p.DiscountPercentage.IsPositive() {
		discount := p.OriginalPrice.Mul(p.DiscountPercentage).Div(hundred)
		p.DiscountPrice = p.OriginalPrice.Sub(discount).Round(2)
		return
	}
	p.DiscountPrice = p.OriginalPrice
}

// DiscountAmount returns the amount saved relative to the original price.
func (p *Product) DiscountAmount() decimal.Decimal {
	if p.DiscountPercentage.IsPositive() {
		return p.OriginalPrice.Sub(p.DiscountPrice).Round(2)
	}
	return decimal.Zero
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
