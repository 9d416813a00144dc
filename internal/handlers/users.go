package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/handlers/render"
	"github.com/tanoush/storefront/internal/handlers/userctx"
	"github.com/tanoush/storefront/internal/logger"
	"github.com/tanoush/storefront/internal/models"
)

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type userData struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func handleSignup(s authService, logger logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Name     string `json:"name" validate:"required"`
		Password string `json:"password" validate:"required,min=6,maxbytes=72"`
	}
	type data struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	type response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    data   `json:"data"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		identity, err := s.Signup(r.Context(), req.Email, req.Name, req.Password)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		render.Created(w, response{
			Success: true,
			Message: "User created successfully",
			Data:    data{Email: identity.Email, Name: identity.Name},
		})
	})
}

func handleLogin(s authService, logger logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type data struct {
		userData
		AccessToken  string `json:"accesstoken"`
		RefreshToken string `json:"refreshtoken"`
	}
	type response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    data   `json:"data"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		sess, err := s.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		s.SetSessionCookies(w, sess)
		render.JSON(w, response{
			Success: true,
			Message: "Login successful",
			Data: data{
				userData:     newUserData(sess.Identity),
				AccessToken:  sess.Access.Value,
				RefreshToken: sess.Refresh.Value,
			},
		})
	})
}

func handleRefresh(s authService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access, err := s.Refresh(r.Context(), s.ReadRefreshToken(r))
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		s.SetAccessCookie(w, access)
		render.JSON(w, messageResponse{Success: true, Message: "Token refreshed"})
	})
}

func handleMe() http.Handler {
	type response struct {
		Success bool     `json:"success"`
		Data    userData `json:"data"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := userctx.FromContext(r.Context())
		render.JSON(w, response{Success: true, Data: newUserData(identity)})
	})
}

// Logout works for anonymous callers too, cookies are cleared anyway
func handleLogout(s authService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var userID uuid.UUID
		if identity, ok := userctx.FromContext(r.Context()); ok {
			userID = identity.ID
		}

		s.ClearSessionCookies(w)
		if err := s.Logout(r.Context(), userID, s.ReadRefreshToken(r)); err != nil {
			render.Error(w, err, logger)
			return
		}

		render.JSON(w, messageResponse{Success: true, Message: "Logged out successfully"})
	})
}

func handleListUsers(s userService, logger logger.Logger) http.Handler {
	type user struct {
		userData
		Role string `json:"role"`
	}
	type response struct {
		Success bool   `json:"success"`
		Count   int    `json:"count"`
		Data    []user `json:"data"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identities, err := s.List(r.Context())
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		users := make([]user, 0, len(identities))
		for _, i := range identities {
			users = append(users, user{userData: newUserData(i), Role: i.Role})
		}
		render.JSON(w, response{Success: true, Count: len(users), Data: users})
	})
}

func handleDeleteUser(s userService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.Error(w, apperrors.ErrUserNotFound, logger)
			return
		}
		actor, _ := userctx.FromContext(r.Context())

		if err := s.Delete(r.Context(), actor, userID); err != nil {
			render.Error(w, err, logger)
			return
		}

		render.JSON(w, messageResponse{Success: true, Message: "User deleted successfully"})
	})
}

func handleRevokeSessions(s userService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.Error(w, apperrors.ErrUserNotFound, logger)
			return
		}

		if err := s.RevokeSessions(r.Context(), userID); err != nil {
			render.Error(w, err, logger)
			return
		}

		render.JSON(w, messageResponse{Success: true, Message: "User sessions revoked"})
	})
}

func newUserData(identity models.Identity) userData {
	return userData{UserID: identity.ID.String(), Name: identity.Name, Email: identity.Email}
}
