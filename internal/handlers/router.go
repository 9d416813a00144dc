package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tanoush/storefront/internal/handlers/middleware"
	"github.com/tanoush/storefront/internal/logger"
	"github.com/tanoush/storefront/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// Services the router dispatches to. Metrics is optional
type Services struct {
	Auth     authService
	Gate     authenticator
	Users    userService
	Catalog  catalogService
	Wishlist wishlistService
	Upload   uploadService
	Metrics  metricsCollector
}

func NewRouter(s Services, logger logger.Logger) http.Handler {
	withAuth := middleware.Auth(s.Gate, logger)
	withAdmin := func(h http.Handler) http.Handler {
		return chain(h, withAuth, middleware.RequireRole(models.RoleAdmin))
	}

	mux := http.NewServeMux()

	mux.Handle("POST /api/users/signup", handleSignup(s.Auth, logger))
	mux.Handle("POST /api/users/login", handleLogin(s.Auth, logger))
	mux.Handle("POST /api/users/refresh", handleRefresh(s.Auth, logger))
	mux.Handle("GET /api/users/me", withAuth(handleMe()))
	mux.Handle("POST /api/users/logout", middleware.OptionalAuth(s.Gate)(handleLogout(s.Auth, logger)))

	mux.Handle("GET /api/users/all", withAdmin(handleListUsers(s.Users, logger)))
	mux.Handle("DELETE /api/users/{id}", withAdmin(handleDeleteUser(s.Users, logger)))
	mux.Handle("DELETE /api/users/{id}/sessions", withAdmin(handleRevokeSessions(s.Users, logger)))

	mux.Handle("GET /api/products", handleListProducts(s.Catalog, logger))
	mux.Handle("GET /api/products/filters", handleFilterOptions(s.Catalog, logger))
	mux.Handle("GET /api/products/{id}", handleGetProduct(s.Catalog, logger))
	mux.Handle("POST /api/products", withAdmin(handleCreateProduct(s.Catalog, logger)))
	mux.Handle("PUT /api/products/{id}", withAdmin(handleUpdateProduct(s.Catalog, logger)))
	mux.Handle("DELETE /api/products/{id}", withAdmin(handleDeleteProduct(s.Catalog, logger)))

	mux.Handle("GET /api/wishlist", withAuth(handleListWishlist(s.Wishlist, logger)))
	mux.Handle("GET /api/wishlist/check/{productId}", withAuth(handleCheckWishlist(s.Wishlist, logger)))
	mux.Handle("POST /api/wishlist/{productId}", withAuth(handleAddToWishlist(s.Wishlist, logger)))
	mux.Handle("DELETE /api/wishlist/{productId}", withAuth(handleRemoveFromWishlist(s.Wishlist, logger)))

	mux.Handle("POST /api/upload", withAuth(handleUploadImage(s.Upload, logger)))

	mux.Handle("GET /api/status", handleStatus())

	mds := []func(http.Handler) http.Handler{middleware.LoggerMiddleware(logger)}
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
		mds = append(mds, middleware.Metrics(s.Metrics))
	}
	mds = append(mds, middleware.Recoverer(logger))

	return chain(mux, mds...)
}

type authService interface {
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	Signup(ctx context.Context, email string, name string, password string) (models.Identity, error)

	// Has to return apperrors.ErrUserNotFound for unknown email
	// and apperrors.ErrPasswordMismatch for wrong password
	Login(ctx context.Context, email string, password string) (models.Session, error)

	// Mint new access token for remembered refresh token
	Refresh(ctx context.Context, refresh string) (models.IssuedToken, error)

	// userID is uuid.Nil for anonymous caller
	Logout(ctx context.Context, userID uuid.UUID, refresh string) error

	SetSessionCookies(w http.ResponseWriter, sess models.Session)
	SetAccessCookie(w http.ResponseWriter, access models.IssuedToken)
	ClearSessionCookies(w http.ResponseWriter)
	ReadRefreshToken(r *http.Request) string
}

type authenticator interface {
	Authenticate(r *http.Request) (models.Identity, error)
}

type userService interface {
	List(ctx context.Context) ([]models.Identity, error)
	Delete(ctx context.Context, actor models.Identity, userID uuid.UUID) error
	RevokeSessions(ctx context.Context, userID uuid.UUID) error
}

type catalogService interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (models.Product, error)
	Create(ctx context.Context, p models.Product) (models.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch models.ProductPatch) (models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FilterOptions(ctx context.Context) (models.FilterOptions, error)
}

type wishlistService interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
	Add(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (models.WishlistItem, error)
	Remove(ctx context.Context, userID uuid.UUID, productID uuid.UUID) error
	Contains(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (bool, error)
}

type uploadService interface {
	UploadImage(ctx context.Context, r io.Reader, filename string) (string, error)
}

type metricsCollector interface {
	ObserveRequest(method string, route string, status int, took time.Duration)
	Handler() http.Handler
}
