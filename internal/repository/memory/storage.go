package memory

import (
	"context"

	"github.com/tanoush/storefront/internal/repository"
)

// Storage bundles in-memory repositories
// Wishlist items are dropped together with their user or product
type Storage struct {
	users    *UserRepo
	products *ProductRepo
	wishlist *WishlistRepo
}

func NewStorage() *Storage {
	users := NewUserRepo()
	products := NewProductRepo()
	wishlist := NewWishlistRepo(products)

	users.mu.Lock()
	users.onDelete = wishlist.dropUser
	users.mu.Unlock()

	return &Storage{users: users, products: products, wishlist: wishlist}
}

func (s *Storage) User() repository.UserRepo {
	return s.users
}

func (s *Storage) Product() repository.ProductRepo {
	return s.products
}

func (s *Storage) Wishlist() repository.WishlistRepo {
	return s.wishlist
}

// InTx runs fn against the same repositories
// There is no rollback: changes made before fn fails are kept
func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s)
}
