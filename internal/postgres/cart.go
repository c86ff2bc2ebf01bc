package postgres

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avdeyev/storefront/internal/domain/cart"
)

const (
	insertCartSQL = `INSERT INTO carts (id) VALUES ($1) RETURNING created_at, updated_at`

	getCartSQL = `SELECT id, created_at, updated_at FROM carts WHERE id = $1`

	deleteCartSQL = `DELETE FROM carts WHERE id = $1`

	touchCartSQL = `UPDATE carts SET updated_at = now() WHERE id = $1`

	listCartItemsSQL = `SELECT
			p.id, p.name, p.slug, p.image_url, p.original_price, p.discount_price,
			ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`

	// Aggregates in a single statement: a second add of the same product
	// increments the existing line instead of inserting a duplicate.
	upsertCartItemSQL = `INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity`

	updateCartItemSQL = `UPDATE cart_items SET quantity = $3
		WHERE cart_id = $1 AND product_id = $2`

	removeCartItemSQL = `DELETE FROM cart_items
		WHERE cart_id = $1 AND product_id = $2`
)

// Postgres error code for foreign key violations.
const foreignKeyViolation = "23503"

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// CreateCart inserts an empty cart under a fresh UUID.
func (r *CartRepository) CreateCart(ctx context.Context) (*cart.Cart, error) {
	c := &cart.Cart{ID: uuid.New()}
	err := r.pool.QueryRow(ctx, insertCartSQL, c.ID).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "inserting cart")
	}
	return c, nil
}

// GetCart returns the cart row with the given id.
func (r *CartRepository) GetCart(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	var c cart.Cart
	err := r.pool.QueryRow(ctx, getCartSQL, id).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrCartNotFound
		}
		return nil, errors.Wrap(err, "getting cart")
	}
	return &c, nil
}

// DeleteCart removes the cart; its items cascade away.
func (r *CartRepository) DeleteCart(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteCartSQL, id)
	if err != nil {
		return errors.Wrap(err, "deleting cart")
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrCartNotFound
	}
	return nil
}

// ListItems returns every cart line joined with its product.
func (r *CartRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]cart.ItemView, error) {
	rows, err := r.pool.Query(ctx, listCartItemsSQL, cartID)
	if err != nil {
		return nil, errors.Wrap(err, "listing cart items")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.ItemView, error) {
		var v cart.ItemView
		err := row.Scan(
			&v.Product.ID, &v.Product.Name, &v.Product.Slug, &v.Product.ImageURL,
			&v.Product.OriginalPrice, &v.Product.DiscountPrice,
			&v.Quantity,
		)
		return v, err
	})
}

// UpsertItem adds quantity units of the product to the cart, summing with any
// existing line in one atomic statement. A missing cart or a product deleted
// since the service's existence check surface through their foreign keys.
func (r *CartRepository) UpsertItem(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (*cart.Item, error) {
	item := &cart.Item{CartID: cartID, ProductID: productID}
	err := r.pool.QueryRow(ctx, upsertCartItemSQL, cartID, productID, quantity).
		Scan(&item.ID, &item.Quantity)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, upsertItemFKError(pgErr, productID)
		}
		return nil, errors.Wrap(err, "upserting cart item")
	}

	if _, err := r.pool.Exec(ctx, touchCartSQL, cartID); err != nil {
		return nil, errors.Wrap(err, "touching cart")
	}
	return item, nil
}

// UpdateItemQuantity replaces the quantity of an existing line.
func (r *CartRepository) UpdateItemQuantity(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) error {
	tag, err := r.pool.Exec(ctx, updateCartItemSQL, cartID, productID, quantity)
	if err != nil {
		return errors.Wrap(err, "updating cart item")
	}
	if tag.RowsAffected() == 0 {
		return r.itemMissing(ctx, cartID)
	}

	if _, err := r.pool.Exec(ctx, touchCartSQL, cartID); err != nil {
		return errors.Wrap(err, "touching cart")
	}
	return nil
}

// RemoveItem deletes a line from the cart.
func (r *CartRepository) RemoveItem(ctx context.Context, cartID uuid.UUID, productID int64) error {
	tag, err := r.pool.Exec(ctx, removeCartItemSQL, cartID, productID)
	if err != nil {
		return errors.Wrap(err, "removing cart item")
	}
	if tag.RowsAffected() == 0 {
		return r.itemMissing(ctx, cartID)
	}

	if _, err := r.pool.Exec(ctx, touchCartSQL, cartID); err != nil {
		return errors.Wrap(err, "touching cart")
	}
	return nil
}

// upsertItemFKError decides which of the two cart_items foreign keys failed:
// the product FK means the product vanished from the catalog, anything else
// means the cart itself is gone.
func upsertItemFKError(pgErr *pgconn.PgError, productID int64) error {
	if strings.Contains(pgErr.ConstraintName, "product") {
		return &cart.ProductNotFoundError{ProductID: productID}
	}
	return cart.ErrCartNotFound
}

// itemMissing distinguishes a missing line from a missing cart so callers get
// the right not-found error.
func (r *CartRepository) itemMissing(ctx context.Context, cartID uuid.UUID) error {
	if _, err := r.GetCart(ctx, cartID); err != nil {
		return err
	}
	return cart.ErrItemNotFound
}
