package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/models"
)

type WishlistRepo struct {
	DB DBTX
}

const addWishlistItem = `-- name: AddWishlistItem
INSERT INTO wishlist_items (id, user_id, product_id, added_at)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, product_id, added_at
`

func (r *WishlistRepo) AddItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (models.WishlistItem, error) {
	rows, _ := r.DB.Query(ctx, addWishlistItem, uuid.New(), userID, productID, time.Now())
	item, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.WishlistItem, error) {
		var i models.WishlistItem
		err := row.Scan(&i.ID, &i.UserID, &i.ProductID, &i.AddedAt)
		return i, err
	})

	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return item, nil
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation:
		return item, apperrors.ErrWishlistItemExists
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation:
		return item, apperrors.ErrProductNotFound
	default:
		return item, fmt.Errorf("db error: %w", err)
	}
}

const removeWishlistItem = `-- name: RemoveWishlistItem
DELETE FROM wishlist_items
WHERE user_id = $1 AND product_id = $2
`

func (r *WishlistRepo) RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, removeWishlistItem, userID, productID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrWishlistItemNotFound
	}
	return nil
}

const listWishlistItems = `-- name: ListWishlistItems
SELECT w.id, w.user_id, w.product_id, w.added_at,
	p.id, p.created_at, p.updated_at, p.name, p.description, p.price,
	p.category, p.brand, p.stock, p.images, p.colors, p.sizes
FROM wishlist_items w
JOIN products p ON p.id = w.product_id
WHERE w.user_id = $1
ORDER BY w.added_at DESC, w.id
`

func (r *WishlistRepo) ListItems(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	rows, _ := r.DB.Query(ctx, listWishlistItems, userID)
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.WishlistItem, error) {
		var i models.WishlistItem
		p := &i.Product
		err := row.Scan(
			&i.ID, &i.UserID, &i.ProductID, &i.AddedAt,
			&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Name, &p.Description, &p.Price,
			&p.Category, &p.Brand, &p.Stock, &p.Images, &p.Colors, &p.Sizes,
		)
		return i, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

const hasWishlistItem = `-- name: HasWishlistItem
SELECT EXISTS (
	SELECT 1 FROM wishlist_items WHERE user_id = $1 AND product_id = $2
)
`

func (r *WishlistRepo) HasItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, hasWishlistItem, userID, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}
