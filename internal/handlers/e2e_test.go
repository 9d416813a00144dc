package handlers

import (
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/tanoush/storefront/internal/repository/postgres"
	"github.com/tanoush/storefront/internal/service/auth/tokenmanager"
	"github.com/tanoush/storefront/internal/testutil"
)

// Same flows as the in-memory tests, but over postgres storage in a transaction
// rolled back when the test stops
func Test_E2E_Postgres(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	serveWithTx := func(t *testing.T, fn func(srv testServer)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(newTestServerWith(t, postgres.NewStorage(tx), tokenmanager.Config{}))
		})
	}

	t.Run("session lifecycle", func(t *testing.T) {
		serveWithTx(t, func(srv testServer) {
			access, refresh := srv.login(t, "e2e@example.com", "secret1")

			resp := srv.do(t, http.MethodPost, "/api/users/signup", `{"email":"E2E@example.com","name":"Again","password":"secret1"}`)
			require.Equal(t, http.StatusBadRequest, resp.code, "email is unique case insensitive")

			resp = srv.do(t, http.MethodGet, "/api/users/me", "", access)
			require.Equalf(t, http.StatusOK, resp.code, "body: %s", resp.body)

			resp = srv.do(t, http.MethodPost, "/api/users/refresh", "", refresh)
			require.Equalf(t, http.StatusOK, resp.code, "body: %s", resp.body)

			_, again := srv.loginAs(t, "e2e@example.com", "secret1")
			require.Equal(t, refresh.Value, again.Value, "second login returns the remembered refresh token")

			resp = srv.do(t, http.MethodPost, "/api/users/logout", "", access, refresh)
			require.Equal(t, http.StatusOK, resp.code)

			resp = srv.do(t, http.MethodPost, "/api/users/refresh", "", refresh)
			require.Equal(t, http.StatusForbidden, resp.code)
		})
	})

	t.Run("catalog and wishlist", func(t *testing.T) {
		serveWithTx(t, func(srv testServer) {
			adminAccess, _ := srv.loginAdmin(t)
			access, _ := srv.login(t, "buyer@example.com", "secret1")

			resp := srv.do(t, http.MethodPost, "/api/products", teeJSON, adminAccess)
			require.Equalf(t, http.StatusCreated, resp.code, "body: %s", resp.body)
			var created productResponse
			resp.decode(t, &created)

			resp = srv.do(t, http.MethodGet, "/api/products?color=white&minPrice=10&maxPrice=20", "")
			require.Equalf(t, http.StatusOK, resp.code, "body: %s", resp.body)
			require.Contains(t, resp.body, created.Product.ID.String())

			resp = srv.do(t, http.MethodPost, "/api/wishlist/"+created.Product.ID.String(), "", access)
			require.Equalf(t, http.StatusCreated, resp.code, "body: %s", resp.body)

			resp = srv.do(t, http.MethodDelete, "/api/products/"+created.Product.ID.String(), "", adminAccess)
			require.Equal(t, http.StatusOK, resp.code)

			resp = srv.do(t, http.MethodGet, "/api/wishlist", "", access)
			require.JSONEq(t, `{"success": true, "count": 0, "data": []}`, resp.body, "items of removed product are gone")
		})
	})
}
