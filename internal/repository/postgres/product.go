package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/models"
)

type ProductRepo struct {
	DB DBTX
}

const productColumns = `id, created_at, updated_at, name, description, price, category, brand, stock, images, colors, sizes`

const createProduct = `-- name: CreateProduct
INSERT INTO products (id, created_at, updated_at, name, description, price, category, brand, stock, images, colors, sizes)
VALUES ($1, $2, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + productColumns

func (r *ProductRepo) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	rows, _ := r.DB.Query(ctx, createProduct,
		p.ID, p.CreatedAt, p.Name, p.Description, p.Price, p.Category, p.Brand, p.Stock,
		nonNil(p.Images), nonNil(p.Colors), nonNil(p.Sizes),
	)
	product, err := pgx.CollectOneRow(rows, rowToProduct)
	if err != nil {
		return product, fmt.Errorf("db error: %w", err)
	}
	return product, nil
}

const getProduct = `-- name: GetProduct
SELECT ` + productColumns + ` FROM products
WHERE id = $1
`

func (r *ProductRepo) GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, getProduct, id)
	return collectProduct(rows)
}

const updateProduct = `-- name: UpdateProduct
UPDATE products
SET updated_at = $2, name = $3, description = $4, price = $5, category = $6,
	brand = $7, stock = $8, images = $9, colors = $10, sizes = $11
WHERE id = $1
RETURNING ` + productColumns

func (r *ProductRepo) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	rows, _ := r.DB.Query(ctx, updateProduct,
		p.ID, time.Now(), p.Name, p.Description, p.Price, p.Category, p.Brand, p.Stock,
		nonNil(p.Images), nonNil(p.Colors), nonNil(p.Sizes),
	)
	return collectProduct(rows)
}

const deleteProduct = `-- name: DeleteProduct
DELETE FROM products WHERE id = $1
`

func (r *ProductRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteProduct, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrProductNotFound
	}
	return nil
}

var productOrderBy = map[string]string{
	models.SortNewest:    "created_at DESC, id",
	models.SortPriceAsc:  "price ASC, id",
	models.SortPriceDesc: "price DESC, id",
	models.SortNameAsc:   "name ASC, id",
	models.SortNameDesc:  "name DESC, id",
}

func (r *ProductRepo) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.Category != "" {
		add("category = $%d", strings.ToLower(filter.Category))
	}
	if filter.Brand != "" {
		add("brand = $%d", filter.Brand)
	}
	if len(filter.Colors) > 0 {
		add("colors && $%d", filter.Colors)
	}
	if len(filter.Sizes) > 0 {
		add("sizes && $%d", filter.Sizes)
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}

	orderBy, ok := productOrderBy[filter.SortBy]
	if !ok {
		orderBy = productOrderBy[models.SortNewest]
	}

	var q strings.Builder
	q.WriteString("SELECT " + productColumns + " FROM products")
	if len(where) > 0 {
		q.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	q.WriteString(" ORDER BY " + orderBy)

	rows, _ := r.DB.Query(ctx, q.String(), args...)
	products, err := pgx.CollectRows(rows, rowToProduct)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return products, nil
}

const filterOptions = `-- name: FilterOptions
SELECT
	ARRAY(SELECT DISTINCT brand FROM products ORDER BY brand),
	ARRAY(SELECT DISTINCT c FROM products, unnest(colors) AS c ORDER BY c),
	ARRAY(SELECT DISTINCT s FROM products, unnest(sizes) AS s ORDER BY s),
	COALESCE(MIN(price), 0),
	COALESCE(MAX(price), 0)
FROM products
`

func (r *ProductRepo) FilterOptions(ctx context.Context) (models.FilterOptions, error) {
	var o models.FilterOptions
	err := r.DB.QueryRow(ctx, filterOptions).Scan(&o.Brands, &o.Colors, &o.Sizes, &o.MinPrice, &o.MaxPrice)
	if err != nil {
		return o, fmt.Errorf("db error: %w", err)
	}
	return o, nil
}

func collectProduct(rows pgx.Rows) (models.Product, error) {
	product, err := pgx.CollectOneRow(rows, rowToProduct)

	switch {
	case err == nil:
		return product, nil
	case errors.Is(err, pgx.ErrNoRows):
		return product, apperrors.ErrProductNotFound
	default:
		return product, fmt.Errorf("db error: %w", err)
	}
}

func rowToProduct(row pgx.CollectableRow) (models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Name, &p.Description, &p.Price,
		&p.Category, &p.Brand, &p.Stock, &p.Images, &p.Colors, &p.Sizes,
	)
	return p, err
}

// text[] columns are NOT NULL
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
