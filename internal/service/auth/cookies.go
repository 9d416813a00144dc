package auth

import (
	"net/http"
	"time"

	"github.com/tanoush/storefront/internal/models"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

func (s *AuthService) newCookie(name string, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Cookie lives as long as the token
func (s *AuthService) tokenCookie(name string, token models.IssuedToken) *http.Cookie {
	maxAge := int(time.Until(token.ExpiresAt).Round(time.Second).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	c := s.newCookie(name, token.Value, maxAge)
	c.Expires = token.ExpiresAt
	return c
}

func (s *AuthService) SetAccessCookie(w http.ResponseWriter, access models.IssuedToken) {
	http.SetCookie(w, s.tokenCookie(AccessCookieName, access))
}

func (s *AuthService) SetSessionCookies(w http.ResponseWriter, sess models.Session) {
	http.SetCookie(w, s.tokenCookie(AccessCookieName, sess.Access))
	http.SetCookie(w, s.tokenCookie(RefreshCookieName, sess.Refresh))
}

// Clear both cookies with the same attributes they were set with
func (s *AuthService) ClearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, s.newCookie(AccessCookieName, "", -1))
	http.SetCookie(w, s.newCookie(RefreshCookieName, "", -1))
}

func (s *AuthService) ReadRefreshToken(r *http.Request) string {
	return readCookie(r, RefreshCookieName)
}

func readCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
