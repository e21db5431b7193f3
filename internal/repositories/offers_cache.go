package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"realtyBack/internal/models"
)

// OffersCache keeps the offers feed in Redis for a short TTL so the feed
// endpoint does not hit the document store on every request.
type OffersCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func offersKey(limit int) string {
	return fmt.Sprintf("offers:%d", limit)
}

// Get returns the cached feed and whether it was present. Redis failures are
// reported as a miss plus the error; callers treat the cache as best-effort.
func (c *OffersCache) Get(ctx context.Context, limit int) ([]models.Listing, bool, error) {
	data, err := c.Client.Get(ctx, offersKey(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var listings []models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, false, err
	}
	return listings, true, nil
}

func (c *OffersCache) Set(ctx context.Context, limit int, listings []models.Listing) error {
	data, err := json.Marshal(listings)
	if err != nil {
		return err
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return c.Client.Set(ctx, offersKey(limit), data, ttl).Err()
}
