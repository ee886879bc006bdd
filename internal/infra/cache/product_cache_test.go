package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"shop-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*ProductCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewProductCache(rdb, time.Minute), mr
}

func chips() *domain.Product {
	return &domain.Product{ID: 1, SKU: "SNACK001", Name: "Chips", Price: decimal.RequireFromString("2.99"), Stock: 50, Active: true}
}

func TestProductCache_LoadsOnceThenHits(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (*domain.Product, error) {
		calls++
		return chips(), nil
	}

	first, err := c.Product(ctx, 1, load)
	require.NoError(t, err)
	second, err := c.Product(ctx, 1, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "Chips", second.Name)
	assert.True(t, first.Price.Equal(second.Price))
	assert.True(t, mr.Exists("product:1"))
}

func TestProductCache_MissingIsNotCached(t *testing.T) {
	c, mr := newCache(t)

	p, err := c.Product(context.Background(), 9, func(context.Context) (*domain.Product, error) { return nil, nil })
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.False(t, mr.Exists("product:9"))
}

func TestProductCache_LoadError(t *testing.T) {
	c, _ := newCache(t)

	_, err := c.Product(context.Background(), 1, func(context.Context) (*domain.Product, error) {
		return nil, errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
}

func TestProductCache_InvalidateDropsListingAndProduct(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	_, err := c.Products(ctx, func(context.Context) ([]domain.Product, error) { return []domain.Product{*chips()}, nil })
	require.NoError(t, err)
	require.NoError(t, c.Warmup(ctx, func(context.Context) ([]domain.Product, error) {
		return []domain.Product{*chips()}, nil
	}))
	require.True(t, mr.Exists(allProductsKey))
	require.True(t, mr.Exists("product:1"))

	c.Invalidate(ctx, 1)

	assert.False(t, mr.Exists(allProductsKey))
	assert.False(t, mr.Exists("product:1"))
}

func TestProductCache_InvalidateDuringLoadSkipsWriteBack(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	stale := func(context.Context) (*domain.Product, error) {
		p := chips()
		c.Invalidate(ctx, p.ID)
		return p, nil
	}
	p, err := c.Product(ctx, 1, stale)
	require.NoError(t, err)
	assert.Equal(t, "Chips", p.Name, "caller still gets the loaded value")
	assert.False(t, mr.Exists("product:1"))

	_, err = c.Products(ctx, func(context.Context) ([]domain.Product, error) {
		c.Invalidate(ctx, 1)
		return []domain.Product{*chips()}, nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(allProductsKey))

	// A load with no concurrent invalidation caches as usual.
	_, err = c.Product(ctx, 1, func(context.Context) (*domain.Product, error) { return chips(), nil })
	require.NoError(t, err)
	assert.True(t, mr.Exists("product:1"))
}

func TestProductCache_WarmupSkipsAfterInvalidate(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	err := c.Warmup(ctx, func(context.Context) ([]domain.Product, error) {
		c.Invalidate(ctx, 1)
		return []domain.Product{*chips()}, nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("product:1"))

	err = c.Warmup(ctx, func(context.Context) ([]domain.Product, error) { return nil, errors.New("db down") })
	assert.EqualError(t, err, "db down")
}
