package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/logger"
	"github.com/tanoush/storefront/internal/models"
	"github.com/tanoush/storefront/internal/repository"
	"github.com/tanoush/storefront/internal/service/auth/password"
	"github.com/tanoush/storefront/internal/service/auth/session"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) (bool, error)
}

type TokenIssuer interface {
	IssueAccess(identity models.Identity) (models.IssuedToken, error)
	IssueRefresh(identity models.Identity) (models.IssuedToken, error)
	VerifyAccess(token string) (models.TokenClaims, error)
	VerifyRefresh(token string) (models.TokenClaims, error)
}

// Receives auth outcomes, e.g. to count them
type EventRecorder interface {
	AuthEvent(event string, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) AuthEvent(string, string) {}

type Config struct {
	// Hasher to use during user signup or login process
	// Bcrypt with BcryptCost is used if not set
	Hasher     PasswordHasher
	BcryptCost int

	// Mark cookies Secure (sent over https only)
	CookieSecure bool

	// Remove presented refresh token from user's set on logout
	LogoutRevokesRefresh bool

	Events EventRecorder
}

// Auth service
type AuthService struct {
	hasher PasswordHasher
	tokens TokenIssuer
	users  repository.UserRepo
	store  *session.Store
	gate   *Gate
	events EventRecorder
	logger logger.Logger

	cookieSecure         bool
	logoutRevokesRefresh bool
}

func NewService(cfg Config, tokens TokenIssuer, users repository.UserRepo, l logger.Logger) (*AuthService, error) {
	if tokens == nil || users == nil {
		return nil, errors.New("token issuer and user repo must not be nil")
	}

	// Set default bcrypt hasher if not provided by user
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = password.BcryptHasher{Cost: cfg.BcryptCost}
	}
	events := cfg.Events
	if events == nil {
		events = noopRecorder{}
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &AuthService{
		hasher:               hasher,
		tokens:               tokens,
		users:                users,
		store:                session.NewStore(users, tokens),
		gate:                 NewGate(tokens, users),
		events:               events,
		logger:               l,
		cookieSecure:         cfg.CookieSecure,
		logoutRevokesRefresh: cfg.LogoutRevokesRefresh,
	}, nil
}

func (s *AuthService) Gate() *Gate {
	return s.gate
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create user and remember its first refresh token
func (s *AuthService) Signup(ctx context.Context, email string, name string, pwd string) (models.Identity, error) {
	email = normalizeEmail(email)

	// Cheap check first, unique index will catch the race anyway
	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		s.events.AuthEvent("signup", "conflict")
		return models.Identity{}, apperrors.ErrUserAlreadyExists
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return models.Identity{}, fmt.Errorf("can't check user. Err: %w", err)
	}

	hash, err := s.hasher.Hash(pwd)
	if err != nil {
		return models.Identity{}, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err := s.users.CreateUser(ctx, repository.CreateUserParams{
		Email:          email,
		Name:           strings.TrimSpace(name),
		HashedPassword: hash,
		Role:           models.RoleUser,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			s.events.AuthEvent("signup", "conflict")
		}
		return models.Identity{}, err
	}

	// Login seeds the token as well, so failure here is not fatal
	if err := s.store.RecordInitialRefreshToken(ctx, user.Identity()); err != nil {
		s.logger.Warn("refresh token not recorded on signup", "user_id", user.ID, "error", err)
	}

	s.events.AuthEvent("signup", "success")
	return user.Identity(), nil
}

func (s *AuthService) Login(ctx context.Context, email string, pwd string) (models.Session, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.events.AuthEvent("login", "unknown_user")
		}
		return models.Session{}, err
	}

	ok, err := s.hasher.Compare(user.HashedPassword, pwd)
	if err != nil {
		return models.Session{}, fmt.Errorf("can't compare password. Err: %w", err)
	}
	if !ok {
		s.logger.Warn("login with wrong password", "email", user.Email)
		s.events.AuthEvent("login", "wrong_password")
		return models.Session{}, apperrors.ErrPasswordMismatch
	}

	identity := user.Identity()
	access, err := s.tokens.IssueAccess(identity)
	if err != nil {
		return models.Session{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	refresh, err := s.store.EnsureActiveRefreshToken(ctx, user)
	if err != nil {
		return models.Session{}, fmt.Errorf("refresh token could not settled, sorry. %w", err)
	}

	s.events.AuthEvent("login", "success")
	return models.Session{Identity: identity, Access: access, Refresh: refresh}, nil
}

// Mint new access token for a valid and remembered refresh token
// The refresh token itself is not rotated
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.IssuedToken, error) {
	if refresh == "" {
		s.events.AuthEvent("refresh", "missing")
		return models.IssuedToken{}, apperrors.ErrRefreshTokenMissing
	}

	claims, err := s.tokens.VerifyRefresh(refresh)
	if err != nil {
		s.events.AuthEvent("refresh", "rejected")
		return models.IssuedToken{}, fmt.Errorf("%w: %w", apperrors.ErrRefreshTokenRejected, err)
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		s.events.AuthEvent("refresh", "unknown_user")
		return models.IssuedToken{}, apperrors.ErrIdentityNotFound
	case err != nil:
		return models.IssuedToken{}, err
	}

	if !s.store.IsTokenActive(user, refresh) {
		s.events.AuthEvent("refresh", "stale")
		return models.IssuedToken{}, apperrors.ErrRefreshTokenStale
	}

	access, err := s.tokens.IssueAccess(user.Identity())
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("token could not generated, sorry. %w", err)
	}

	s.events.AuthEvent("refresh", "success")
	return access, nil
}

// Forget the presented refresh token
// userID is the caller resolved from access token, uuid.Nil when access token is gone already.
// A token of another user is left untouched.
// Never fails because of a bad or foreign token: logout must always succeed for the client
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, refresh string) error {
	s.events.AuthEvent("logout", "success")

	if !s.logoutRevokesRefresh || refresh == "" {
		return nil
	}

	claims, err := s.tokens.VerifyRefresh(refresh)
	if err != nil {
		return nil
	}
	if userID != uuid.Nil && claims.UserID != userID {
		s.logger.Warn("logout with refresh token of another user", "user_id", userID, "token_user_id", claims.UserID)
		return nil
	}

	return s.store.Revoke(ctx, claims.UserID, refresh)
}

// Drop every refresh token of the user, so it has to login again everywhere
func (s *AuthService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	err := s.store.RevokeAll(ctx, userID)
	if err == nil {
		s.events.AuthEvent("revoke_all", "success")
	}
	return err
}
