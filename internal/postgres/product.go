package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avdeyev/storefront/internal/domain/product"
)

const (
	productColumns = `id, name, slug, pack_title, description, image_url,
		original_price, discount_percentage, discount_price, stock`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductBySlugSQL = `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	slugExistsSQL = `SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1)`

	insertProductSQL = `INSERT INTO products
		(name, slug, pack_title, description, image_url, original_price, discount_percentage, discount_price, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	updateProductSQL = `UPDATE products SET
		name = $2, pack_title = $3, description = $4, image_url = $5,
		original_price = $6, discount_percentage = $7, discount_price = $8, stock = $9
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by id.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return r.getOne(ctx, getProductByIDSQL, id)
}

// GetBySlug returns a single product by its public slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	return r.getOne(ctx, getProductBySlugSQL, slug)
}

func (r *ProductRepository) getOne(ctx context.Context, sql string, arg any) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, errors.Wrap(err, "getting product")
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrap(err, "getting product")
	}
	return &p, nil
}

// SlugExists reports whether a product already uses the given slug.
func (r *ProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, slugExistsSQL, slug).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "checking slug")
	}
	return exists, nil
}

// Create inserts the product and sets its generated id.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx, insertProductSQL,
		p.Name, p.Slug, p.PackTitle, p.Description, p.ImageURL,
		p.OriginalPrice, p.DiscountPercentage, p.DiscountPrice, p.Stock,
	).Scan(&p.ID)
	if err != nil {
		return errors.Wrap(err, "inserting product")
	}
	return nil
}

// Update persists all mutable fields of the product. The slug is immutable.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.PackTitle, p.Description, p.ImageURL,
		p.OriginalPrice, p.DiscountPercentage, p.DiscountPrice, p.Stock,
	)
	if err != nil {
		return errors.Wrap(err, "updating product")
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes the product. Cart lines referencing it cascade away.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return errors.Wrap(err, "deleting product")
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.PackTitle, &p.Description, &p.ImageURL,
		&p.OriginalPrice, &p.DiscountPercentage, &p.DiscountPrice, &p.Stock,
	)
	return p, err
}
