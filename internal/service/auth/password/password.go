package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/tanoush/storefront/internal/apperrors"
)

const DefaultCost = 10

// Bcrypt password hasher
// Salt is generated per password and embedded into the '$2a$' output
type BcryptHasher struct {
	// bcrypt work factor, DefaultCost if zero
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("bcrypt error: %w", err)
	}
	return string(hash), nil
}

// Compare password with stored hash in constant time
// Mismatch is not an error: (false, nil). Malformed hash is.
func (h BcryptHasher) Compare(hashedPassword string, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("bcrypt error: %w", err)
	}
}
