package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/handlers/render"
	"github.com/tanoush/storefront/internal/handlers/userctx"
	"github.com/tanoush/storefront/internal/logger"
	"github.com/tanoush/storefront/internal/models"
)

type wishlistItem struct {
	ID        uuid.UUID `json:"id"`
	User      uuid.UUID `json:"user"`
	Product   product   `json:"product"`
	CreatedAt time.Time `json:"createdAt"`
}

func newWishlistItem(item models.WishlistItem) wishlistItem {
	return wishlistItem{
		ID:        item.ID,
		User:      item.UserID,
		Product:   newProduct(item.Product),
		CreatedAt: item.AddedAt,
	}
}

// Caller identity and product id from the path
// Malformed product id is reported as missing product
func wishlistTarget(r *http.Request) (models.Identity, uuid.UUID, error) {
	identity, ok := userctx.FromContext(r.Context())
	if !ok {
		return identity, uuid.Nil, apperrors.ErrNoToken
	}

	productID, err := uuid.Parse(r.PathValue("productId"))
	if err != nil {
		return identity, uuid.Nil, apperrors.ErrProductNotFound
	}
	return identity, productID, nil
}

func handleListWishlist(s wishlistService, logger logger.Logger) http.Handler {
	type response struct {
		Success bool           `json:"success"`
		Count   int            `json:"count"`
		Data    []wishlistItem `json:"data"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, apperrors.ErrNoToken, logger)
			return
		}

		items, err := s.List(r.Context(), identity.ID)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		resp := response{Success: true, Count: len(items), Data: make([]wishlistItem, 0, len(items))}
		for _, item := range items {
			resp.Data = append(resp.Data, newWishlistItem(item))
		}
		render.JSON(w, resp)
	})
}

func handleCheckWishlist(s wishlistService, logger logger.Logger) http.Handler {
	type response struct {
		Success      bool `json:"success"`
		IsInWishlist bool `json:"isInWishlist"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, productID, err := wishlistTarget(r)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		found, err := s.Contains(r.Context(), identity.ID, productID)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		render.JSON(w, response{Success: true, IsInWishlist: found})
	})
}

func handleAddToWishlist(s wishlistService, logger logger.Logger) http.Handler {
	type response struct {
		Success bool         `json:"success"`
		Message string       `json:"message"`
		Data    wishlistItem `json:"data"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, productID, err := wishlistTarget(r)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		item, err := s.Add(r.Context(), identity.ID, productID)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		render.Created(w, response{
			Success: true,
			Message: "Product added to wishlist",
			Data:    newWishlistItem(item),
		})
	})
}

func handleRemoveFromWishlist(s wishlistService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, productID, err := wishlistTarget(r)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		if err := s.Remove(r.Context(), identity.ID, productID); err != nil {
			render.Error(w, err, logger)
			return
		}

		render.JSON(w, messageResponse{Success: true, Message: "Product removed from wishlist"})
	})
}
