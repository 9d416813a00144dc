package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/models"
	"github.com/tanoush/storefront/internal/repository"
)

// UserRepo keeps users in memory. Used in tests and local runs without database.
// Every method holds the mutex, so SeedRefreshToken is atomic.
type UserRepo struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	onDelete func(userID uuid.UUID)
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byEmail(arg.Email) != nil {
		return models.User{}, apperrors.ErrUserAlreadyExists
	}

	role := arg.Role
	if role == "" {
		role = models.RoleUser
	}

	u := &models.User{
		ID:             uuid.New(),
		CreatedAt:      time.Now(),
		Email:          arg.Email,
		Name:           arg.Name,
		HashedPassword: arg.HashedPassword,
		Role:           role,
	}
	r.users[u.ID] = u

	return *u, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.byEmail(email)
	if u == nil {
		return models.User{}, apperrors.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *UserRepo) GetIdentityByID(ctx context.Context, userID uuid.UUID) (models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return models.Identity{}, apperrors.ErrUserNotFound
	}
	return u.Identity(), nil
}

func (r *UserRepo) ListIdentities(ctx context.Context) ([]models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b *models.User) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	identities := make([]models.Identity, 0, len(users))
	for _, u := range users {
		identities = append(identities, u.Identity())
	}
	return identities, nil
}

func (r *UserRepo) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()

	if _, ok := r.users[userID]; !ok {
		r.mu.Unlock()
		return apperrors.ErrUserNotFound
	}
	delete(r.users, userID)
	onDelete := r.onDelete
	r.mu.Unlock()

	if onDelete != nil {
		onDelete(userID)
	}
	return nil
}

func (r *UserRepo) SeedRefreshToken(ctx context.Context, userID uuid.UUID, token string) (models.RefreshTokenSet, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return models.RefreshTokenSet{}, false, apperrors.ErrUserNotFound
	}

	appended := false
	if u.RefreshTokens.IsEmpty() {
		appended = u.RefreshTokens.Add(token)
	}
	return models.NewRefreshTokenSet(u.RefreshTokens.Values()...), appended, nil
}

func (r *UserRepo) RemoveRefreshToken(ctx context.Context, userID uuid.UUID, token string) (models.RefreshTokenSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return models.RefreshTokenSet{}, apperrors.ErrUserNotFound
	}

	u.RefreshTokens.Remove(token)
	return models.NewRefreshTokenSet(u.RefreshTokens.Values()...), nil
}

func (r *UserRepo) ClearRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}

	u.RefreshTokens.RemoveAll()
	return nil
}

// must be called with mu held
func (r *UserRepo) byEmail(email string) *models.User {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

// Callers must not share the token slice with the stored user
func copyUser(u *models.User) models.User {
	c := *u
	c.RefreshTokens = models.NewRefreshTokenSet(u.RefreshTokens.Values()...)
	return c
}
