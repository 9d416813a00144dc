package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/models"
)

type wishlistKey struct {
	userID    uuid.UUID
	productID uuid.UUID
}

// WishlistRepo keeps wishlist items in memory
// Items of removed products are dropped like the database cascade does
type WishlistRepo struct {
	mu       sync.Mutex
	items    map[wishlistKey]models.WishlistItem
	products *ProductRepo
}

func NewWishlistRepo(products *ProductRepo) *WishlistRepo {
	r := &WishlistRepo{
		items:    make(map[wishlistKey]models.WishlistItem),
		products: products,
	}

	products.mu.Lock()
	products.onDelete = r.dropProduct
	products.mu.Unlock()

	return r
}

func (r *WishlistRepo) AddItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (models.WishlistItem, error) {
	product, err := r.products.GetProduct(ctx, productID)
	if err != nil {
		return models.WishlistItem{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := wishlistKey{userID: userID, productID: productID}
	if _, ok := r.items[key]; ok {
		return models.WishlistItem{}, apperrors.ErrWishlistItemExists
	}

	item := models.WishlistItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		AddedAt:   time.Now(),
	}
	r.items[key] = item

	item.Product = product
	return item, nil
}

func (r *WishlistRepo) RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := wishlistKey{userID: userID, productID: productID}
	if _, ok := r.items[key]; !ok {
		return apperrors.ErrWishlistItemNotFound
	}
	delete(r.items, key)
	return nil
}

func (r *WishlistRepo) ListItems(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	r.mu.Lock()
	items := make([]models.WishlistItem, 0)
	for key, item := range r.items {
		if key.userID == userID {
			items = append(items, item)
		}
	}
	r.mu.Unlock()

	for i := range items {
		p, err := r.products.GetProduct(ctx, items[i].ProductID)
		if err != nil {
			return nil, err
		}
		items[i].Product = p
	}

	slices.SortFunc(items, func(a, b models.WishlistItem) int {
		return b.AddedAt.Compare(a.AddedAt)
	})
	return items, nil
}

func (r *WishlistRepo) HasItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.items[wishlistKey{userID: userID, productID: productID}]
	return ok, nil
}

func (r *WishlistRepo) dropProduct(productID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.items {
		if key.productID == productID {
			delete(r.items, key)
		}
	}
}

func (r *WishlistRepo) dropUser(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.items {
		if key.userID == userID {
			delete(r.items, key)
		}
	}
}
