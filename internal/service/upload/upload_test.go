package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tanoush/storefront/internal/apperrors"
)

var pngImage = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)

type fakeStore struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (s *fakeStore) Put(_ context.Context, key string, contentType string, body []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.key, s.contentType, s.body = key, contentType, body
	return "https://cdn.example.com/" + key, nil
}

func TestUploadImage(t *testing.T) {
	t.Parallel()

	t.Run("inline data uri without store", func(t *testing.T) {
		s := NewService(nil, nil)

		url, err := s.UploadImage(t.Context(), bytes.NewReader(pngImage), "a.png")

		require.NoError(t, err)
		require.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngImage), url)
	})

	t.Run("stored in object store", func(t *testing.T) {
		store := &fakeStore{}
		s := NewService(store, nil)
		s.now = func() time.Time { return time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC) }

		url, err := s.UploadImage(t.Context(), bytes.NewReader(pngImage), "a.png")

		require.NoError(t, err)
		require.True(t, strings.HasPrefix(store.key, "images/2025/03/07/"), "key %s", store.key)
		require.True(t, strings.HasSuffix(store.key, ".png"))
		require.Equal(t, "image/png", store.contentType)
		require.Equal(t, pngImage, store.body)
		require.Equal(t, "https://cdn.example.com/"+store.key, url)
	})

	t.Run("store failure", func(t *testing.T) {
		s := NewService(&fakeStore{err: errors.New("boom")}, nil)

		_, err := s.UploadImage(t.Context(), bytes.NewReader(pngImage), "a.png")

		require.Error(t, err)
		require.NotErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("not an image", func(t *testing.T) {
		s := NewService(nil, nil)

		_, err := s.UploadImage(t.Context(), strings.NewReader("just some text"), "a.png")

		require.ErrorIs(t, err, apperrors.ErrUploadNotImage)
	})

	t.Run("empty", func(t *testing.T) {
		s := NewService(nil, nil)

		_, err := s.UploadImage(t.Context(), bytes.NewReader(nil), "a.png")

		require.ErrorIs(t, err, apperrors.ErrUploadMissing)
	})

	t.Run("too large", func(t *testing.T) {
		s := NewService(nil, nil)
		big := append(append([]byte{}, pngImage...), make([]byte, MaxImageSize)...)

		_, err := s.UploadImage(t.Context(), bytes.NewReader(big), "a.png")

		require.ErrorIs(t, err, apperrors.ErrUploadTooLarge)
	})
}
