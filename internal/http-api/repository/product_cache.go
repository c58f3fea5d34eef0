package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/http-api/models"

	"github.com/redis/go-redis/v9"
)

// ProductCache is a read-through cache for product listings backed by Redis.
// All methods degrade to no-ops when the client is nil so the catalog keeps
// working without Redis.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{client: client, ttl: ttl}
}

type cachedProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

func listKey(page, pageSize int) string {
	return fmt.Sprintf("products:list:%d:%d", page, pageSize)
}

// GetPage returns a cached listing page, or (nil, 0, false) on miss.
func (c *ProductCache) GetPage(ctx context.Context, page, pageSize int) ([]models.Product, int64, bool) {
	if c == nil || c.client == nil {
		return nil, 0, false
	}
	raw, err := c.client.Get(ctx, listKey(page, pageSize)).Bytes()
	if err != nil {
		// redis.Nil on miss, anything else treated the same way
		return nil, 0, false
	}
	var cached cachedProductPage
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, 0, false
	}
	return cached.Products, cached.Total, true
}

func (c *ProductCache) SetPage(ctx context.Context, page, pageSize int, products []models.Product, total int64) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(cachedProductPage{Products: products, Total: total})
	if err != nil {
		return
	}
	c.client.Set(ctx, listKey(page, pageSize), raw, c.ttl)
}

// Invalidate drops every cached listing page. Called on any catalog write.
func (c *ProductCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, "products:list:*", 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			c.client.Del(ctx, keys...)
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
