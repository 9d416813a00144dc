package handlers

import (
	"errors"
	"net/http"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/handlers/render"
	"github.com/tanoush/storefront/internal/logger"
	"github.com/tanoush/storefront/internal/service/upload"
)

// Room for multipart headers on top of the image itself
const uploadOverhead = 1 << 20

func handleUploadImage(s uploadService, logger logger.Logger) http.Handler {
	type response struct {
		Success  bool   `json:"success"`
		Message  string `json:"message"`
		ImageURL string `json:"imageUrl"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, upload.MaxImageSize+uploadOverhead)

		file, header, err := r.FormFile("image")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				render.Error(w, apperrors.ErrUploadTooLarge, logger)
				return
			}
			render.Error(w, apperrors.ErrUploadMissing, logger)
			return
		}
		defer file.Close()

		url, err := s.UploadImage(r.Context(), file, header.Filename)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		logger.Info("image uploaded", "filename", header.Filename, "size", header.Size)
		render.JSON(w, response{Success: true, Message: "Image uploaded successfully", ImageURL: url})
	})
}
