package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/models"
	"github.com/tanoush/storefront/internal/repository"
	"github.com/tanoush/storefront/internal/service/auth"
	"github.com/tanoush/storefront/internal/service/auth/password"
)

type sessionRevoker interface {
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// UserService is the administrative side of users
type UserService struct {
	hasher   auth.PasswordHasher
	storage  repository.Storage
	sessions sessionRevoker
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage, sessions sessionRevoker) *UserService {
	if hasher == nil {
		hasher = password.BcryptHasher{Cost: password.DefaultCost}
	}

	return &UserService{
		hasher:   hasher,
		storage:  storage,
		sessions: sessions,
	}
}

// CreateUser with any role. Signup always creates plain users, this is for seeding and tooling
func (s *UserService) CreateUser(ctx context.Context, email string, name string, pwd string, role string) (models.User, error) {
	var user models.User
	if pwd == "" {
		return user, fmt.Errorf("password must not be empty: %w", apperrors.ErrValidation)
	}
	hash, err := s.hasher.Hash(pwd)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err = s.storage.User().CreateUser(ctx, repository.CreateUserParams{
		Email:          strings.ToLower(strings.TrimSpace(email)),
		Name:           name,
		HashedPassword: hash,
		Role:           role,
	})
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.Identity, error) {
	return s.storage.User().ListIdentities(ctx)
}

// Delete user with everything it owns. Admin can't delete itself
func (s *UserService) Delete(ctx context.Context, actor models.Identity, userID uuid.UUID) error {
	if actor.ID == userID {
		return apperrors.ErrSelfDelete
	}

	// Wishlist items go away with the user by foreign key cascade
	return s.storage.User().DeleteUser(ctx, userID)
}

// RevokeSessions drops every remembered refresh token of the user
// Already issued access tokens live until they expire
func (s *UserService) RevokeSessions(ctx context.Context, userID uuid.UUID) error {
	return s.sessions.RevokeAll(ctx, userID)
}
