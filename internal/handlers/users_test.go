package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tanoush/storefront/internal/service/auth"
	"github.com/tanoush/storefront/internal/service/auth/tokenmanager"
)

func Test_UserHandlers(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, tokenmanager.Config{})

	t.Run("signup ok", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/api/users/signup", `{"email":"New@Example.com","name":"New","password":"secret1"}`)

		require.Equalf(t, http.StatusCreated, resp.code, "body: %s", resp.body)
		require.JSONEq(t, `
			{
				"success": true,
				"message": "User created successfully",
				"data": {"email": "new@example.com", "name": "New"}
			}`, resp.body)
		require.Empty(t, resp.cookies, "signup does not log in")
	})

	t.Run("signup duplicate", func(t *testing.T) {
		body := `{"email":"dup@example.com","name":"Dup","password":"secret1"}`
		require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/users/signup", body).code)

		resp := srv.do(t, http.MethodPost, "/api/users/signup", body)

		require.Equal(t, http.StatusBadRequest, resp.code)
		require.JSONEq(t, `
			{
				"success": false,
				"error": "conflict",
				"message": "User already exists with this email"
			}`, resp.body)
	})

	t.Run("signup validation", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/api/users/signup", `{"email":"not-an-email","password":"123"}`)

		require.Equal(t, http.StatusBadRequest, resp.code)
		require.JSONEq(t, `
			{
				"success": false,
				"error": "validation_failed",
				"message": "Request validation failed",
				"fields": {
					"email": "Invalid email format",
					"name": "This field is required",
					"password": "Value is too short (minimum 6)"
				}
			}`, resp.body)
	})

	t.Run("signup password limit counts bytes", func(t *testing.T) {
		// 40 runes, 80 bytes
		long := strings.Repeat("é", 40)

		resp := srv.do(t, http.MethodPost, "/api/users/signup", `{"email":"long@example.com","name":"Long","password":"`+long+`"}`)

		require.Equalf(t, http.StatusBadRequest, resp.code, "body: %s", resp.body)
		require.JSONEq(t, `
			{
				"success": false,
				"error": "validation_failed",
				"message": "Request validation failed",
				"fields": {"password": "Value is too long (maximum 72 bytes)"}
			}`, resp.body)
	})

	t.Run("signup multibyte password at the limit", func(t *testing.T) {
		// 36 runes, 72 bytes
		pwd := strings.Repeat("é", 36)

		resp := srv.do(t, http.MethodPost, "/api/users/signup", `{"email":"accent@example.com","name":"Accent","password":"`+pwd+`"}`)
		require.Equalf(t, http.StatusCreated, resp.code, "body: %s", resp.body)

		resp = srv.do(t, http.MethodPost, "/api/users/login", `{"email":"accent@example.com","password":"`+pwd+`"}`)
		require.Equalf(t, http.StatusOK, resp.code, "body: %s", resp.body)
	})

	t.Run("login ok", func(t *testing.T) {
		srv.do(t, http.MethodPost, "/api/users/signup", `{"email":"login@example.com","name":"Login","password":"secret1"}`)

		resp := srv.do(t, http.MethodPost, "/api/users/login", `{"email":"login@example.com","password":"secret1"}`)

		require.Equalf(t, http.StatusOK, resp.code, "body: %s", resp.body)
		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			Data    struct {
				UserID       string `json:"userId"`
				Email        string `json:"email"`
				AccessToken  string `json:"accesstoken"`
				RefreshToken string `json:"refreshtoken"`
			} `json:"data"`
		}
		resp.decode(t, &body)
		require.True(t, body.Success)
		require.Equal(t, "Login successful", body.Message)
		require.Equal(t, "login@example.com", body.Data.Email)
		require.NotEmpty(t, body.Data.UserID)

		access := resp.cookies[auth.AccessCookieName]
		require.NotNil(t, access)
		require.Equal(t, body.Data.AccessToken, access.Value)
		require.True(t, access.HttpOnly, "access cookie should be HttpOnly")
		require.Equal(t, "/", access.Path)
		require.Equal(t, http.SameSiteLaxMode, access.SameSite)
		require.InDelta(t, time.Minute.Seconds(), access.MaxAge, 1, "access cookie lives as long as the token")

		refresh := resp.cookies[auth.RefreshCookieName]
		require.NotNil(t, refresh)
		require.Equal(t, body.Data.RefreshToken, refresh.Value)
		require.InDelta(t, (7 * 24 * time.Hour).Seconds(), refresh.MaxAge, 1)
	})

	t.Run("login wrong password", func(t *testing.T) {
		srv.do(t, http.MethodPost, "/api/users/signup", `{"email":"wrong@example.com","name":"Wrong","password":"secret1"}`)

		resp := srv.do(t, http.MethodPost, "/api/users/login", `{"email":"wrong@example.com","password":"not-it"}`)

		require.Equal(t, http.StatusBadRequest, resp.code)
		require.JSONEq(t, `
			{
				"success": false,
				"error": "invalid_credentials",
				"message": "Invalid credentials, Try Again"
			}`, resp.body)
	})

	t.Run("login unknown user", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/api/users/login", `{"email":"ghost@example.com","password":"secret1"}`)

		require.Equal(t, http.StatusNotFound, resp.code)
		require.Contains(t, resp.body, `"User not found"`)
	})

	t.Run("me", func(t *testing.T) {
		access, _ := srv.login(t, "me@example.com", "secret1")

		resp := srv.do(t, http.MethodGet, "/api/users/me", "", access)

		require.Equalf(t, http.StatusOK, resp.code, "body: %s", resp.body)
		var body struct {
			Success bool     `json:"success"`
			Data    userData `json:"data"`
		}
		resp.decode(t, &body)
		require.True(t, body.Success)
		require.Equal(t, "me@example.com", body.Data.Email)
		require.Equal(t, "Tester", body.Data.Name)
	})

	t.Run("me without cookie", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/api/users/me", "")

		require.Equal(t, http.StatusUnauthorized, resp.code)
		require.JSONEq(t, `
			{
				"success": false,
				"error": "unauthenticated",
				"message": "Not authorized, no token provided"
			}`, resp.body)
	})

	t.Run("me with refresh token as access", func(t *testing.T) {
		_, refresh := srv.login(t, "swap@example.com", "secret1")

		resp := srv.do(t, http.MethodGet, "/api/users/me", "", &http.Cookie{Name: auth.AccessCookieName, Value: refresh.Value})

		require.Equal(t, http.StatusUnauthorized, resp.code)
		require.Contains(t, resp.body, "Not authorized, token failed")
	})

	t.Run("refresh without cookie", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/api/users/refresh", "")

		require.Equal(t, http.StatusUnauthorized, resp.code)
		require.Contains(t, resp.body, "No refresh token provided")
	})

	t.Run("refresh with garbage", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/api/users/refresh", "", &http.Cookie{Name: auth.RefreshCookieName, Value: "garbage"})

		require.Equal(t, http.StatusForbidden, resp.code)
		require.Contains(t, resp.body, "Invalid or expired refresh token")
	})

	t.Run("logout then me", func(t *testing.T) {
		access, refresh := srv.login(t, "logout@example.com", "secret1")

		resp := srv.do(t, http.MethodPost, "/api/users/logout", "", access, refresh)

		require.Equalf(t, http.StatusOK, resp.code, "body: %s", resp.body)
		require.JSONEq(t, `{"success": true, "message": "Logged out successfully"}`, resp.body)
		for _, name := range []string{auth.AccessCookieName, auth.RefreshCookieName} {
			c := resp.cookies[name]
			require.NotNil(t, c, "cookie %s should be cleared", name)
			require.Empty(t, c.Value)
			require.Equal(t, -1, c.MaxAge)
		}

		// Client dropped cookies as told
		resp = srv.do(t, http.MethodGet, "/api/users/me", "")
		require.Equal(t, http.StatusUnauthorized, resp.code)

		// Replayed refresh token is forgotten
		resp = srv.do(t, http.MethodPost, "/api/users/refresh", "", refresh)
		require.Equal(t, http.StatusForbidden, resp.code)
		require.Contains(t, resp.body, "Invalid refresh token. Please login again.")
	})

	t.Run("logout anonymous", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/api/users/logout", "")

		require.Equal(t, http.StatusOK, resp.code)
		require.Len(t, resp.cookies, 2)
	})
}

func Test_UserHandlers_Session(t *testing.T) {
	t.Parallel()

	t.Run("signup login refresh", func(t *testing.T) {
		srv := newTestServer(t, tokenmanager.Config{})
		access, refresh := srv.login(t, "flow@example.com", "secret1")

		first, err := srv.tokens.VerifyAccess(access.Value)
		require.NoError(t, err)

		// Token expiry has a second resolution
		time.Sleep(1100 * time.Millisecond)

		resp := srv.do(t, http.MethodPost, "/api/users/refresh", "", refresh)
		require.Equalf(t, http.StatusOK, resp.code, "body: %s", resp.body)
		require.JSONEq(t, `{"success": true, "message": "Token refreshed"}`, resp.body)
		require.NotContains(t, resp.cookies, auth.RefreshCookieName, "refresh token is not rotated")

		renewed := resp.cookies[auth.AccessCookieName]
		require.NotNil(t, renewed)
		second, err := srv.tokens.VerifyAccess(renewed.Value)
		require.NoError(t, err)
		require.True(t, second.ExpiresAt.After(first.ExpiresAt), "new access token should expire later")

		resp = srv.do(t, http.MethodGet, "/api/users/me", "", renewed)
		require.Equal(t, http.StatusOK, resp.code)
	})

	t.Run("expired access token", func(t *testing.T) {
		srv := newTestServer(t, tokenmanager.Config{AccessTTL: time.Second})
		access, _ := srv.login(t, "expired@example.com", "secret1")

		time.Sleep(2 * time.Second)

		resp := srv.do(t, http.MethodGet, "/api/users/me", "", access)
		require.Equal(t, http.StatusUnauthorized, resp.code)
		require.Contains(t, resp.body, "Not authorized, token failed")
	})

	t.Run("logout after access expired still revokes", func(t *testing.T) {
		srv := newTestServer(t, tokenmanager.Config{AccessTTL: time.Second})
		_, refresh := srv.login(t, "late@example.com", "secret1")

		time.Sleep(2 * time.Second)

		resp := srv.do(t, http.MethodPost, "/api/users/logout", "", refresh)
		require.Equal(t, http.StatusOK, resp.code)

		resp = srv.do(t, http.MethodPost, "/api/users/refresh", "", refresh)
		require.Equal(t, http.StatusForbidden, resp.code)
	})
}

func Test_AdminUserHandlers(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, tokenmanager.Config{})
	adminAccess, admin := srv.loginAdmin(t)
	userAccess, userRefresh := srv.login(t, "user@example.com", "secret1")

	t.Run("regular user is forbidden", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/api/users/all", "", userAccess)

		require.Equal(t, http.StatusForbidden, resp.code)
		require.JSONEq(t, `
			{
				"success": false,
				"error": "forbidden",
				"message": "Access denied. Admin privileges required."
			}`, resp.body)
	})

	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/api/users/all", "")

		require.Equal(t, http.StatusUnauthorized, resp.code)
	})

	t.Run("list users", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/api/users/all", "", adminAccess)

		require.Equalf(t, http.StatusOK, resp.code, "body: %s", resp.body)
		var body struct {
			Count int `json:"count"`
			Data  []struct {
				Email string `json:"email"`
				Role  string `json:"role"`
			} `json:"data"`
		}
		resp.decode(t, &body)
		require.Equal(t, 2, body.Count)
		roles := map[string]string{}
		for _, u := range body.Data {
			roles[u.Email] = u.Role
		}
		require.Equal(t, map[string]string{"admin@example.com": "admin", "user@example.com": "user"}, roles)
	})

	t.Run("admin can't delete itself", func(t *testing.T) {
		resp := srv.do(t, http.MethodDelete, "/api/users/"+admin.ID.String(), "", adminAccess)

		require.Equal(t, http.StatusBadRequest, resp.code)
		require.Contains(t, resp.body, "You can't delete your own account")
	})

	t.Run("delete unknown user", func(t *testing.T) {
		resp := srv.do(t, http.MethodDelete, "/api/users/not-a-uuid", "", adminAccess)

		require.Equal(t, http.StatusNotFound, resp.code)
	})

	t.Run("revoke sessions", func(t *testing.T) {
		me := srv.do(t, http.MethodGet, "/api/users/me", "", userAccess)
		var body struct {
			Data userData `json:"data"`
		}
		me.decode(t, &body)

		resp := srv.do(t, http.MethodDelete, "/api/users/"+body.Data.UserID+"/sessions", "", adminAccess)
		require.Equalf(t, http.StatusOK, resp.code, "body: %s", resp.body)

		resp = srv.do(t, http.MethodPost, "/api/users/refresh", "", userRefresh)
		require.Equal(t, http.StatusForbidden, resp.code, "revoked refresh token must be refused")
	})

	t.Run("delete user", func(t *testing.T) {
		access, _ := srv.login(t, "doomed@example.com", "secret1")
		me := srv.do(t, http.MethodGet, "/api/users/me", "", access)
		var body struct {
			Data userData `json:"data"`
		}
		me.decode(t, &body)

		resp := srv.do(t, http.MethodDelete, "/api/users/"+body.Data.UserID, "", adminAccess)
		require.Equalf(t, http.StatusOK, resp.code, "body: %s", resp.body)
		require.JSONEq(t, `{"success": true, "message": "User deleted successfully"}`, resp.body)

		resp = srv.do(t, http.MethodGet, "/api/users/me", "", access)
		require.Equal(t, http.StatusUnauthorized, resp.code, "token of removed user is refused")
	})
}
