package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avdeyev/storefront/internal/domain/order"
)

const (
	// Serializes concurrent conversions of the same cart: the loser blocks
	// here until the winner's transaction deletes the cart, then sees no row.
	lockCartSQL = `SELECT id FROM carts WHERE id = $1 FOR UPDATE`

	insertOrderSQL = `INSERT INTO orders (owner_id) VALUES ($1)
		RETURNING id, payment_status, placed_at`

	// Snapshot pricing at conversion time from the current discount price.
	selectCartLinesSQL = `SELECT ci.product_id, p.name, ci.quantity, p.discount_price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`

	deleteConvertedCartSQL = `DELETE FROM carts WHERE id = $1`

	getOrderSQL = `SELECT id, owner_id, payment_status, placed_at
		FROM orders WHERE id = $1`

	listOrdersByOwnerSQL = `SELECT id, owner_id, payment_status, placed_at
		FROM orders WHERE owner_id = $1 ORDER BY placed_at DESC, id DESC`

	listAllOrdersSQL = `SELECT id, owner_id, payment_status, placed_at
		FROM orders ORDER BY placed_at DESC, id DESC`

	listOrderItemsSQL = `SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.unit_price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// ConvertCart consumes the cart into a new pending order in one transaction:
// lock the cart row, create the order, copy the cart lines into order items
// with their unit price snapshotted, and delete the cart.
func (r *OrderRepository) ConvertCart(ctx context.Context, cartID uuid.UUID, ownerID int64) (*order.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var locked uuid.UUID
	if err := tx.QueryRow(ctx, lockCartSQL, cartID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrCartNotFound
		}
		return nil, errors.Wrap(err, "locking cart")
	}

	o := &order.Order{OwnerID: ownerID}
	err = tx.QueryRow(ctx, insertOrderSQL, ownerID).
		Scan(&o.ID, &o.PaymentStatus, &o.PlacedAt)
	if err != nil {
		return nil, errors.Wrap(err, "inserting order")
	}

	rows, err := tx.Query(ctx, selectCartLinesSQL, cartID)
	if err != nil {
		return nil, errors.Wrap(err, "reading cart lines")
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Item, error) {
		it := order.Item{OrderID: o.ID}
		err := row.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice)
		return it, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "collecting cart lines")
	}

	if len(items) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"order_items"},
			[]string{"order_id", "product_id", "quantity", "unit_price"},
			pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
				it := items[i]
				return []any{it.OrderID, it.ProductID, it.Quantity, it.UnitPrice}, nil
			}),
		)
		if err != nil {
			return nil, errors.Wrap(err, "copying order items")
		}
	}

	if _, err := tx.Exec(ctx, deleteConvertedCartSQL, cartID); err != nil {
		return nil, errors.Wrap(err, "deleting cart")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "committing conversion")
	}

	o.Items = items
	return o, nil
}

// GetByID returns a single order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx, getOrderSQL, id).
		Scan(&o.ID, &o.OwnerID, &o.PaymentStatus, &o.PlacedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrap(err, "getting order")
	}

	orders := []order.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListByOwner returns the given user's orders, newest first.
func (r *OrderRepository) ListByOwner(ctx context.Context, ownerID int64) ([]order.Order, error) {
	return r.list(ctx, listOrdersByOwnerSQL, ownerID)
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	return r.list(ctx, listAllOrdersSQL)
}

func (r *OrderRepository) list(ctx context.Context, sql string, args ...any) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing orders")
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Order, error) {
		var o order.Order
		err := row.Scan(&o.ID, &o.OwnerID, &o.PaymentStatus, &o.PlacedAt)
		return o, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "collecting orders")
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the items for all given orders in a single query and
// groups them onto their orders.
func (r *OrderRepository) attachItems(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	rows, err := r.pool.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return errors.Wrap(err, "listing order items")
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Item, error) {
		var it order.Item
		err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice)
		return it, err
	})
	if err != nil {
		return errors.Wrap(err, "collecting order items")
	}

	for _, it := range items {
		o := byID[it.OrderID]
		o.Items = append(o.Items, it)
	}
	return nil
}
