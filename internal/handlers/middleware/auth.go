package middleware

import (
	"net/http"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/handlers/render"
	"github.com/tanoush/storefront/internal/handlers/userctx"
	"github.com/tanoush/storefront/internal/models"
)

type authenticator interface {
	Authenticate(r *http.Request) (models.Identity, error)
}

type errorLogger interface {
	Error(msg string, args ...any)
}

// Auth rejects requests without valid access cookie
// The resolved identity is put to request context
func Auth(gate authenticator, l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := gate.Authenticate(r)
			if err != nil {
				render.Error(w, err, l)
				return
			}
			next.ServeHTTP(w, r.WithContext(userctx.New(r.Context(), identity)))
		})
	}
}

// OptionalAuth puts identity to context when the request carries valid access cookie
// Never rejects the request
func OptionalAuth(gate authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, err := gate.Authenticate(r); err == nil {
				r = r.WithContext(userctx.New(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole lets through only identities with the role
// Must be used after Auth
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := userctx.FromContext(r.Context())
			if !ok {
				render.Error(w, apperrors.ErrNoToken, nil)
				return
			}
			if identity.Role != role {
				render.Error(w, apperrors.ErrAdminRequired, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
