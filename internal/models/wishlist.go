package models

import (
	"time"

	"github.com/google/uuid"
)

type WishlistItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	AddedAt   time.Time

	// Product the item points to, filled when listing
	Product Product
}
