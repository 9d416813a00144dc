package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/tanoush/storefront/internal/models"
)

const filterOptionsKey = "catalog:filter-options"

type filterOptionsJSON struct {
	Brands   []string        `json:"brands"`
	Colors   []string        `json:"colors"`
	Sizes    []string        `json:"sizes"`
	MinPrice decimal.Decimal `json:"minPrice"`
	MaxPrice decimal.Decimal `json:"maxPrice"`
}

// FilterCache keeps catalog filter options in redis
type FilterCache struct {
	Client goredis.UniversalClient
}

func NewFilterCache(client goredis.UniversalClient) *FilterCache {
	return &FilterCache{Client: client}
}

func (c *FilterCache) Get(ctx context.Context) (models.FilterOptions, bool, error) {
	raw, err := c.Client.Get(ctx, filterOptionsKey).Bytes()
	switch {
	case errors.Is(err, goredis.Nil):
		return models.FilterOptions{}, false, nil
	case err != nil:
		return models.FilterOptions{}, false, fmt.Errorf("redis error: %w", err)
	}

	var v filterOptionsJSON
	if err := json.Unmarshal(raw, &v); err != nil {
		return models.FilterOptions{}, false, fmt.Errorf("corrupted cache value: %w", err)
	}

	return models.FilterOptions{
		Brands:   v.Brands,
		Colors:   v.Colors,
		Sizes:    v.Sizes,
		MinPrice: v.MinPrice,
		MaxPrice: v.MaxPrice,
	}, true, nil
}

func (c *FilterCache) Set(ctx context.Context, opts models.FilterOptions, ttl time.Duration) error {
	raw, err := json.Marshal(filterOptionsJSON{
		Brands:   opts.Brands,
		Colors:   opts.Colors,
		Sizes:    opts.Sizes,
		MinPrice: opts.MinPrice,
		MaxPrice: opts.MaxPrice,
	})
	if err != nil {
		return err
	}

	if err := c.Client.Set(ctx, filterOptionsKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (c *FilterCache) Invalidate(ctx context.Context) error {
	if err := c.Client.Del(ctx, filterOptionsKey).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// Connect to redis and check it answers
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis is not reachable. Err: %w", err)
	}
	return client, nil
}
