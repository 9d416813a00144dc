package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/models"
)

type refreshTokenRepo interface {
	SeedRefreshToken(ctx context.Context, userID uuid.UUID, token string) (models.RefreshTokenSet, bool, error)
	RemoveRefreshToken(ctx context.Context, userID uuid.UUID, token string) (models.RefreshTokenSet, error)
	ClearRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

type refreshIssuer interface {
	IssueRefresh(identity models.Identity) (models.IssuedToken, error)
	VerifyRefresh(token string) (models.TokenClaims, error)
}

// Store keeps refresh tokens in the user's RefreshTokenSet
type Store struct {
	repo   refreshTokenRepo
	issuer refreshIssuer
}

func NewStore(repo refreshTokenRepo, issuer refreshIssuer) *Store {
	return &Store{repo: repo, issuer: issuer}
}

// Mint refresh token and store it if user has none yet
// Idempotent: repeated calls keep the first token
func (s *Store) RecordInitialRefreshToken(ctx context.Context, identity models.Identity) error {
	issued, err := s.issuer.IssueRefresh(identity)
	if err != nil {
		return err
	}

	_, _, err = s.repo.SeedRefreshToken(ctx, identity.ID, issued.Value)
	if err != nil {
		return fmt.Errorf("can't record refresh token. Err: %w", err)
	}
	return nil
}

// Return the user's first refresh token that still verifies
// Tokens that no longer verify are pruned. If nothing left, new token is minted and seeded;
// when a concurrent request seeds first, its token is returned instead
func (s *Store) EnsureActiveRefreshToken(ctx context.Context, user models.User) (models.IssuedToken, error) {
	set := user.RefreshTokens

	// Each round either returns, prunes one token or loses one seed race
	for range models.MaxRefreshTokens + 2 {
		if token, ok := set.First(); ok {
			claims, err := s.issuer.VerifyRefresh(token)
			if err == nil && claims.UserID == user.ID {
				return models.IssuedToken{Value: token, ExpiresAt: claims.ExpiresAt}, nil
			}

			set, err = s.repo.RemoveRefreshToken(ctx, user.ID, token)
			if err != nil {
				return models.IssuedToken{}, fmt.Errorf("can't prune refresh token. Err: %w", err)
			}
			continue
		}

		issued, err := s.issuer.IssueRefresh(user.Identity())
		if err != nil {
			return models.IssuedToken{}, err
		}

		var appended bool
		set, appended, err = s.repo.SeedRefreshToken(ctx, user.ID, issued.Value)
		if err != nil {
			return models.IssuedToken{}, fmt.Errorf("can't seed refresh token. Err: %w", err)
		}
		if appended {
			return issued, nil
		}
	}

	return models.IssuedToken{}, errors.New("refresh token set keeps changing, giving up")
}

func (s *Store) IsTokenActive(user models.User, token string) bool {
	return user.RefreshTokens.Contains(token)
}

// Remove one token. Unknown token is not an error
func (s *Store) Revoke(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := s.repo.RemoveRefreshToken(ctx, userID, token)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("can't revoke refresh token. Err: %w", err)
	}
	return nil
}

// Remove every token of the user
func (s *Store) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return s.repo.ClearRefreshTokens(ctx, userID)
}
