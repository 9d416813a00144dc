package redis

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tanoush/storefront/internal/models"
	"github.com/tanoush/storefront/internal/testutil"
)

func Test_FilterCache(t *testing.T) {
	t.Parallel()

	rc := testutil.StartRedisContainer(t)
	t.Cleanup(rc.Terminate)

	client, err := Connect(t.Context(), rc.Addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	cache := NewFilterCache(client)
	opts := models.FilterOptions{
		Brands:   []string{"Tanoush"},
		Colors:   []string{"black", "white"},
		Sizes:    []string{"M"},
		MinPrice: decimal.RequireFromString("9.99"),
		MaxPrice: decimal.RequireFromString("120"),
	}

	_, ok, err := cache.Get(t.Context())
	require.NoError(t, err)
	require.False(t, ok, "empty cache should miss")

	err = cache.Set(t.Context(), opts, time.Minute)
	require.NoError(t, err)

	got, ok, err := cache.Get(t.Context())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, opts.Brands, got.Brands)
	require.Equal(t, opts.Colors, got.Colors)
	require.True(t, opts.MinPrice.Equal(got.MinPrice))
	require.True(t, opts.MaxPrice.Equal(got.MaxPrice))

	err = cache.Invalidate(t.Context())
	require.NoError(t, err)

	_, ok, err = cache.Get(t.Context())
	require.NoError(t, err)
	require.False(t, ok, "invalidated cache should miss")
}

func Test_Connect_Unreachable(t *testing.T) {
	port, err := testutil.RandomPort()
	require.NoError(t, err)

	_, err = Connect(t.Context(), fmt.Sprintf("127.0.0.1:%d", port))

	require.Error(t, err)
}
