package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/models"
	"github.com/tanoush/storefront/internal/repository"
	"github.com/tanoush/storefront/internal/testutil"
)

func Test_WishlistRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Storage with one user and two products
	withFixtures := func(t *testing.T, fn func(s repository.Storage, user models.User, p1, p2 models.Product)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			s := NewStorage(tx)

			user, err := s.User().CreateUser(t.Context(), repository.CreateUserParams{
				Email: "wish@example.com", Name: "Wish", HashedPassword: "hash",
			})
			require.NoError(t, err)
			p1, err := s.Product().CreateProduct(t.Context(), testProduct("first", "10", "2024-01-01 10:00:00Z"))
			require.NoError(t, err)
			p2, err := s.Product().CreateProduct(t.Context(), testProduct("second", "20", "2024-01-02 10:00:00Z"))
			require.NoError(t, err)

			fn(s, user, p1, p2)
		})
	}

	t.Run("add list and check", func(t *testing.T) {
		withFixtures(t, func(s repository.Storage, user models.User, p1, p2 models.Product) {
			_, err := s.Wishlist().AddItem(t.Context(), user.ID, p1.ID)
			require.NoError(t, err)
			_, err = s.Wishlist().AddItem(t.Context(), user.ID, p2.ID)
			require.NoError(t, err)

			items, err := s.Wishlist().ListItems(t.Context(), user.ID)
			require.NoError(t, err)
			require.Len(t, items, 2)
			require.Equal(t, p2.ID, items[0].ProductID, "newest item first")
			require.Equal(t, "second", items[0].Product.Name, "product should be embedded")

			ok, err := s.Wishlist().HasItem(t.Context(), user.ID, p1.ID)
			require.NoError(t, err)
			require.True(t, ok)
		})
	})

	t.Run("add twice fails", func(t *testing.T) {
		withFixtures(t, func(s repository.Storage, user models.User, p1, _ models.Product) {
			_, err := s.Wishlist().AddItem(t.Context(), user.ID, p1.ID)
			require.NoError(t, err)

			_, err = s.Wishlist().AddItem(t.Context(), user.ID, p1.ID)

			require.ErrorIs(t, err, apperrors.ErrWishlistItemExists)
		})
	})

	t.Run("add unknown product", func(t *testing.T) {
		withFixtures(t, func(s repository.Storage, user models.User, _, _ models.Product) {
			_, err := s.Wishlist().AddItem(t.Context(), user.ID, uuid.New())

			require.ErrorIs(t, err, apperrors.ErrProductNotFound)
		})
	})

	t.Run("remove", func(t *testing.T) {
		withFixtures(t, func(s repository.Storage, user models.User, p1, _ models.Product) {
			_, err := s.Wishlist().AddItem(t.Context(), user.ID, p1.ID)
			require.NoError(t, err)

			err = s.Wishlist().RemoveItem(t.Context(), user.ID, p1.ID)
			require.NoError(t, err)

			err = s.Wishlist().RemoveItem(t.Context(), user.ID, p1.ID)
			require.ErrorIs(t, err, apperrors.ErrWishlistItemNotFound)

			ok, err := s.Wishlist().HasItem(t.Context(), user.ID, p1.ID)
			require.NoError(t, err)
			require.False(t, ok)
		})
	})

	t.Run("in tx rollback on error", func(t *testing.T) {
		withFixtures(t, func(s repository.Storage, user models.User, p1, _ models.Product) {
			err := s.InTx(t.Context(), func(s repository.Storage) error {
				_, err := s.Wishlist().AddItem(t.Context(), user.ID, p1.ID)
				require.NoError(t, err)
				return apperrors.ErrWishlistItemExists
			})
			require.ErrorIs(t, err, apperrors.ErrWishlistItemExists)

			ok, err := s.Wishlist().HasItem(t.Context(), user.ID, p1.ID)
			require.NoError(t, err)
			require.False(t, ok, "item should be rolled back")
		})
	})
}
