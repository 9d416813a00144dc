package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/models"
	"github.com/tanoush/storefront/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, email, name, password_hash, role, refresh_tokens`

const createUser = `-- name: CreateUser
INSERT INTO users (id, created_at, email, name, password_hash, role)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	role := arg.Role
	if role == "" {
		role = models.RoleUser
	}

	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), time.Now(), arg.Email, arg.Name, arg.HashedPassword, role)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return user, nil
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation:
		return user, apperrors.ErrUserAlreadyExists
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, userID)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + ` FROM users
WHERE lower(email) = lower($1)
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const getIdentityByID = `-- name: GetIdentityByID
SELECT id, email, name, role FROM users
WHERE id = $1
`

func (r *UserRepo) GetIdentityByID(ctx context.Context, userID uuid.UUID) (models.Identity, error) {
	rows, _ := r.DB.Query(ctx, getIdentityByID, userID)
	identity, err := pgx.CollectOneRow(rows, rowToIdentity)

	switch {
	case err == nil:
		return identity, nil
	case errors.Is(err, pgx.ErrNoRows):
		return identity, apperrors.ErrUserNotFound
	default:
		return identity, fmt.Errorf("db error: %w", err)
	}
}

const listIdentities = `-- name: ListIdentities
SELECT id, email, name, role FROM users
ORDER BY created_at DESC, id
`

func (r *UserRepo) ListIdentities(ctx context.Context) ([]models.Identity, error) {
	rows, _ := r.DB.Query(ctx, listIdentities)
	identities, err := pgx.CollectRows(rows, rowToIdentity)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return identities, nil
}

const deleteUser = `-- name: DeleteUser
DELETE FROM users WHERE id = $1
`

func (r *UserRepo) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteUser, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Append token only when set is empty
// Concurrent callers are serialized by the row lock: the loser re-checks the condition and updates nothing
const seedRefreshToken = `-- name: SeedRefreshToken
UPDATE users
SET refresh_tokens = array_append(refresh_tokens, $2)
WHERE id = $1 AND cardinality(refresh_tokens) = 0
RETURNING refresh_tokens
`

const getRefreshTokens = `-- name: GetRefreshTokens
SELECT refresh_tokens FROM users
WHERE id = $1
`

func (r *UserRepo) SeedRefreshToken(ctx context.Context, userID uuid.UUID, token string) (models.RefreshTokenSet, bool, error) {
	rows, _ := r.DB.Query(ctx, seedRefreshToken, userID, token)
	tokens, err := pgx.CollectOneRow(rows, pgx.RowTo[[]string])

	switch {
	case err == nil:
		return models.NewRefreshTokenSet(tokens...), true, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return models.RefreshTokenSet{}, false, fmt.Errorf("db error: %w", err)
	}

	// Someone else seeded already (or user not exists)
	// Separate statement to see the committed winner
	set, err := r.refreshTokens(ctx, userID)
	return set, false, err
}

const removeRefreshToken = `-- name: RemoveRefreshToken
UPDATE users
SET refresh_tokens = array_remove(refresh_tokens, $2)
WHERE id = $1
RETURNING refresh_tokens
`

func (r *UserRepo) RemoveRefreshToken(ctx context.Context, userID uuid.UUID, token string) (models.RefreshTokenSet, error) {
	rows, _ := r.DB.Query(ctx, removeRefreshToken, userID, token)
	return collectRefreshTokens(rows)
}

const clearRefreshTokens = `-- name: ClearRefreshTokens
UPDATE users
SET refresh_tokens = '{}'
WHERE id = $1
`

func (r *UserRepo) ClearRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, clearRefreshTokens, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) refreshTokens(ctx context.Context, userID uuid.UUID) (models.RefreshTokenSet, error) {
	rows, _ := r.DB.Query(ctx, getRefreshTokens, userID)
	return collectRefreshTokens(rows)
}

func collectRefreshTokens(rows pgx.Rows) (models.RefreshTokenSet, error) {
	tokens, err := pgx.CollectOneRow(rows, pgx.RowTo[[]string])

	switch {
	case err == nil:
		return models.NewRefreshTokenSet(tokens...), nil
	case errors.Is(err, pgx.ErrNoRows):
		return models.RefreshTokenSet{}, apperrors.ErrUserNotFound
	default:
		return models.RefreshTokenSet{}, fmt.Errorf("db error: %w", err)
	}
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	var tokens []string
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Email, &u.Name, &u.HashedPassword, &u.Role, &tokens)
	u.RefreshTokens = models.NewRefreshTokenSet(tokens...)
	return u, err
}

func rowToIdentity(row pgx.CollectableRow) (models.Identity, error) {
	var i models.Identity
	err := row.Scan(&i.ID, &i.Email, &i.Name, &i.Role)
	return i, err
}
