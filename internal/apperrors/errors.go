package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by services wraps exactly one of them,
// so handlers can map errors to responses with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
)

var (
	ErrUserAlreadyExists = fmt.Errorf("user already exists: %w", ErrConflict)
	ErrUserNotFound      = fmt.Errorf("user not found: %w", ErrNotFound)
	ErrPasswordMismatch  = fmt.Errorf("password mismatch: %w", ErrInvalidCredentials)
	ErrPasswordTooLong   = fmt.Errorf("password is too long: %w", ErrValidation)

	// Token issuer errors. Intentionally not wrapped in a kind:
	// the caller decides whether a bad token means 401 or 403
	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")

	ErrNoToken          = fmt.Errorf("no token: %w", ErrUnauthenticated)
	ErrTokenFailed      = fmt.Errorf("token failed: %w", ErrUnauthenticated)
	ErrIdentityNotFound = fmt.Errorf("user not found: %w", ErrUnauthenticated)

	ErrRefreshTokenMissing  = fmt.Errorf("no refresh token provided: %w", ErrUnauthenticated)
	ErrRefreshTokenRejected = fmt.Errorf("invalid or expired refresh token: %w", ErrForbidden)
	ErrRefreshTokenStale    = fmt.Errorf("stale refresh token: %w", ErrForbidden)

	ErrAdminRequired = fmt.Errorf("admin privileges required: %w", ErrForbidden)
	ErrSelfDelete    = fmt.Errorf("can't delete own account: %w", ErrValidation)

	ErrProductNotFound      = fmt.Errorf("product not found: %w", ErrNotFound)
	ErrProductInvalid       = fmt.Errorf("invalid product: %w", ErrValidation)
	ErrWishlistItemExists   = fmt.Errorf("product already in wishlist: %w", ErrConflict)
	ErrWishlistItemNotFound = fmt.Errorf("product not found in wishlist: %w", ErrNotFound)

	ErrUploadMissing  = fmt.Errorf("no image file provided: %w", ErrValidation)
	ErrUploadTooLarge = fmt.Errorf("file is too large: %w", ErrValidation)
	ErrUploadNotImage = fmt.Errorf("only image files are allowed: %w", ErrValidation)
)

// DetailedError carries messages safe to show to the client
type DetailedError struct {
	Err     error
	Details []string
}

func (e *DetailedError) Error() string {
	return e.Err.Error() + ": " + strings.Join(e.Details, "; ")
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}
