package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/models"
)

type accessVerifier interface {
	VerifyAccess(token string) (models.TokenClaims, error)
}

type identityRepo interface {
	GetIdentityByID(ctx context.Context, userID uuid.UUID) (models.Identity, error)
}

// Gate resolves the caller identity from the access cookie
// It never changes stored state
type Gate struct {
	tokens accessVerifier
	users  identityRepo
}

func NewGate(tokens accessVerifier, users identityRepo) *Gate {
	return &Gate{tokens: tokens, users: users}
}

func (g *Gate) Authenticate(r *http.Request) (models.Identity, error) {
	access := readCookie(r, AccessCookieName)
	if access == "" {
		return models.Identity{}, apperrors.ErrNoToken
	}

	claims, err := g.tokens.VerifyAccess(access)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", apperrors.ErrTokenFailed, err)
	}

	identity, err := g.users.GetIdentityByID(r.Context(), claims.UserID)
	switch {
	case err == nil:
		return identity, nil
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.Identity{}, apperrors.ErrIdentityNotFound
	default:
		return models.Identity{}, fmt.Errorf("can't load identity. Err: %w", err)
	}
}
