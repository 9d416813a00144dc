package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/logger"
)

// Images larger than this are rejected
const MaxImageSize = 10 << 20

type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, body []byte) (string, error)
}

type UploadService struct {
	// Images are returned inline as data URI when store is not set
	store  ObjectStore
	logger logger.Logger
	now    func() time.Time
}

func NewService(store ObjectStore, l logger.Logger) *UploadService {
	if l == nil {
		l = logger.NewNoOpLogger()
	}
	return &UploadService{store: store, logger: l, now: time.Now}
}

// UploadImage checks the content really is an image and returns the address to reference it by
func (s *UploadService) UploadImage(ctx context.Context, r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	switch {
	case err != nil:
		return "", fmt.Errorf("can't read image. Err: %w", err)
	case len(data) == 0:
		return "", apperrors.ErrUploadMissing
	case len(data) > MaxImageSize:
		return "", apperrors.ErrUploadTooLarge
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("%w: got %s", apperrors.ErrUploadNotImage, mime.String())
	}

	s.logger.Info("uploading image", "filename", filename, "size_kb", fmt.Sprintf("%.2f", float64(len(data))/1024), "mime", mime.String())

	if s.store == nil {
		return "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
	}

	url, err := s.store.Put(ctx, s.storageKey(mime.Extension()), mime.String(), data)
	if err != nil {
		return "", fmt.Errorf("can't store image. Err: %w", err)
	}
	return url, nil
}

func (s *UploadService) storageKey(ext string) string {
	d := s.now()
	return fmt.Sprintf("images/%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}
