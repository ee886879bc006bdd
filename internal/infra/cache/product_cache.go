package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"shop-service/internal/domain"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/singleflight"
)

const allProductsKey = "products:all"

// ProductCache keeps read-only product views in redis. It is never consulted
// for stock checks; those always read the store.
//
// epoch advances on every Invalidate. A load writes back only if no
// Invalidate ran since it started.
type ProductCache struct {
	rdb   *redis.Client
	ttl   time.Duration
	group singleflight.Group

	mu    sync.Mutex
	epoch uint64
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func productKey(id uint64) string { return fmt.Sprintf("product:%d", id) }

// Product returns the cached product or calls load, sharing one load among
// concurrent callers for the same id. Missing products are not cached.
func (c *ProductCache) Product(ctx context.Context, id uint64, load func(context.Context) (*domain.Product, error)) (*domain.Product, error) {
	key := productKey(id)
	var p domain.Product
	if c.get(ctx, key, &p) {
		return &p, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		epoch := c.currentEpoch()
		prod, err := load(ctx)
		if err != nil || prod == nil {
			return prod, err
		}
		c.setIfCurrent(ctx, epoch, key, prod)
		return prod, nil
	})
	if err != nil {
		return nil, err
	}
	prod, _ := v.(*domain.Product)
	if prod == nil {
		return nil, nil
	}
	cp := *prod
	return &cp, nil
}

func (c *ProductCache) Products(ctx context.Context, load func(context.Context) ([]domain.Product, error)) ([]domain.Product, error) {
	var out []domain.Product
	if c.get(ctx, allProductsKey, &out) {
		return out, nil
	}

	v, err, _ := c.group.Do(allProductsKey, func() (interface{}, error) {
		epoch := c.currentEpoch()
		list, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.setIfCurrent(ctx, epoch, allProductsKey, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	list, _ := v.([]domain.Product)
	return append([]domain.Product(nil), list...), nil
}

// Invalidate drops the given products and the full listing.
func (c *ProductCache) Invalidate(ctx context.Context, ids ...uint64) {
	keys := []string{allProductsKey}
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}

	c.mu.Lock()
	c.epoch++
	err := c.rdb.Del(ctx, keys...).Err()
	c.mu.Unlock()
	if err != nil {
		log.Printf("cache invalidate %v: %v", keys, err)
	}
	for _, k := range keys {
		c.group.Forget(k)
	}
}

// Warmup preloads products so the first requests after start hit the cache.
// Products invalidated while load runs are left for the next read to fill.
func (c *ProductCache) Warmup(ctx context.Context, load func(context.Context) ([]domain.Product, error)) error {
	epoch := c.currentEpoch()
	products, err := load(ctx)
	if err != nil {
		return err
	}
	for i := range products {
		if !c.setIfCurrent(ctx, epoch, productKey(products[i].ID), &products[i]) {
			break
		}
	}
	return nil
}

func (c *ProductCache) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// setIfCurrent writes v unless an invalidation happened after epoch was read.
func (c *ProductCache) setIfCurrent(ctx context.Context, epoch uint64, key string, v any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return false
	}
	c.set(ctx, key, v)
	return true
}

func (c *ProductCache) get(ctx context.Context, key string, dest any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache get %s: %v", key, err)
		}
		return false
	}
	return json.Unmarshal(b, dest) == nil
}

func (c *ProductCache) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
}
