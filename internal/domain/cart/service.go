package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avdeyev/storefront/internal/domain/product"
)

// Service implements cart operations on top of the repository, validating
// quantities and product existence before mutating.
type Service struct {
	repo     Repository
	products product.Repository
}

// NewService creates a cart Service.
func NewService(repo Repository, products product.Repository) *Service {
	return &Service{repo: repo, products: products}
}

// Create makes a new empty cart and returns it.
func (s *Service) Create(ctx context.Context) (*Cart, error) {
	c, err := s.repo.CreateCart(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "create cart")
	}
	return c, nil
}

// Get returns the cart read model: every line joined with its product,
// priced at the current discount price, plus the cart total.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	c, err := s.repo.GetCart(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "list items")
	}

	total := decimal.Zero
	for i := range items {
		items[i].SubTotal = items[i].Product.DiscountPrice.
			Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		total = total.Add(items[i].SubTotal)
	}

	return &View{
		ID:        c.ID,
		Items:     items,
		Total:     total,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, nil
}

// AddItem adds quantity units of a product to the cart. If the product is
// already in the cart the quantities are summed instead of creating a second
// line. The aggregation happens in a single storage statement, so concurrent
// adds never lose increments.
func (s *Service) AddItem(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (*Item, error) {
	if quantity <= 0 {
		return nil, &InvalidQuantityError{Quantity: quantity}
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, &ProductNotFoundError{ProductID: productID}
		}
		return nil, errors.Wrap(err, "check product")
	}

	item, err := s.repo.UpsertItem(ctx, cartID, productID, quantity)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SetItemQuantity replaces the quantity of an existing cart line.
func (s *Service) SetItemQuantity(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) error {
	if quantity <= 0 {
		return &InvalidQuantityError{Quantity: quantity}
	}
	return s.repo.UpdateItemQuantity(ctx, cartID, productID, quantity)
}

// RemoveItem deletes a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, cartID uuid.UUID, productID int64) error {
	return s.repo.RemoveItem(ctx, cartID, productID)
}

// Delete discards the cart and all its items.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCart(ctx, id)
}
