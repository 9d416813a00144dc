package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tanoush/storefront/internal/models"
)

type CreateUserParams struct {
	Email          string
	Name           string
	HashedPassword string
	Role           string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the email exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by it's id or email (email compared case insensitive)
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Identity projection: never loads password hash or refresh tokens
	GetIdentityByID(ctx context.Context, userID uuid.UUID) (models.Identity, error)
	ListIdentities(ctx context.Context) ([]models.Identity, error)

	DeleteUser(ctx context.Context, userID uuid.UUID) error

	// Append token only if user has no refresh tokens yet. Must be atomic.
	// Returns the stored set after the call and whether the token was appended
	SeedRefreshToken(ctx context.Context, userID uuid.UUID, token string) (models.RefreshTokenSet, bool, error)

	// Remove one or all refresh tokens
	// Return the stored set after the call
	RemoveRefreshToken(ctx context.Context, userID uuid.UUID, token string) (models.RefreshTokenSet, error)
	ClearRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

type ProductRepo interface {
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)

	// If product not found must return apperrors.ErrProductNotFound
	GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) (models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	FilterOptions(ctx context.Context) (models.FilterOptions, error)
}

type WishlistRepo interface {
	// If product already in user's wishlist must return apperrors.ErrWishlistItemExists
	AddItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (models.WishlistItem, error)

	// If item not found must return apperrors.ErrWishlistItemNotFound
	RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) error

	// Items newest first with products filled
	ListItems(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
	HasItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (bool, error)
}

// Cache of catalog filter options
type FilterCache interface {
	// Return ok=false on cache miss
	Get(ctx context.Context) (opts models.FilterOptions, ok bool, err error)
	Set(ctx context.Context, opts models.FilterOptions, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// Storage gives access to all repositories
// InTx runs fn in one transaction; rollback if fn returns error
type Storage interface {
	User() UserRepo
	Product() ProductRepo
	Wishlist() WishlistRepo

	InTx(ctx context.Context, fn func(Storage) error) error
}
