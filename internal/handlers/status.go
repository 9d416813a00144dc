package handlers

import (
	"net/http"

	"github.com/tanoush/storefront/internal/handlers/render"
)

func handleStatus() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, map[string]string{"status": "ok"})
	})
}
