package wishlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tanoush/storefront/internal/models"
	"github.com/tanoush/storefront/internal/repository"
)

type productGetter interface {
	GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error)
}

type WishlistService struct {
	items    repository.WishlistRepo
	products productGetter
}

func NewService(items repository.WishlistRepo, products productGetter) *WishlistService {
	return &WishlistService{items: items, products: products}
}

func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	return s.items.ListItems(ctx, userID)
}

// Add product to user's wishlist
// Unknown product gives apperrors.ErrProductNotFound, duplicate gives apperrors.ErrWishlistItemExists
func (s *WishlistService) Add(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (models.WishlistItem, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return models.WishlistItem{}, err
	}

	item, err := s.items.AddItem(ctx, userID, productID)
	if err != nil {
		return item, fmt.Errorf("can't add to wishlist. Err: %w", err)
	}

	item.Product = product
	return item, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID uuid.UUID, productID uuid.UUID) error {
	return s.items.RemoveItem(ctx, userID, productID)
}

func (s *WishlistService) Contains(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (bool, error) {
	return s.items.HasItem(ctx, userID, productID)
}
