package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"affiliate-tracking-service/internal/model"
	"affiliate-tracking-service/internal/service"
)

// Config controls entry freshness. Fresh entries are served directly;
// stale entries are served while a background refresh runs.
type Config struct {
	FreshTTL time.Duration
	StaleTTL time.Duration
}

type entry struct {
	Offer      *model.Offer `json:"offer"`
	FreshUntil int64        `json:"fresh_until"`
	StaleUntil int64        `json:"stale_until"`
}

// OfferCache caches offer lookups in Redis for the redirect hot path.
// It satisfies service.OfferSource, so callers cannot tell it apart from
// the repository it wraps.
type OfferCache struct {
	client *redis.Client
	source service.OfferSource
	config Config
	group  singleflight.Group
}

// NewOfferCache wraps an offer source with a Redis cache.
func NewOfferCache(client *redis.Client, source service.OfferSource, config Config) *OfferCache {
	return &OfferCache{client: client, source: source, config: config}
}

func (c *OfferCache) Find(ctx context.Context, id int64) (*model.Offer, error) {
	key := fmt.Sprintf("offer:%d", id)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return c.refresh(ctx, key, id)
	}
	if err != nil {
		// Redis being down must not break redirects.
		log.Println("offer cache read failed:", err)
		return c.source.Find(ctx, id)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return c.refresh(ctx, key, id)
	}

	now := time.Now().Unix()
	if now < e.FreshUntil {
		return e.Offer, nil
	}
	if now < e.StaleUntil {
		go func() {
			bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := c.refresh(bg, key, id); err != nil {
				log.Println("offer cache background refresh failed:", err)
			}
		}()
		return e.Offer, nil
	}
	return c.refresh(ctx, key, id)
}

// refresh loads the offer from the source and rewrites the cache entry,
// collapsing concurrent refreshes of the same key into one lookup.
func (c *OfferCache) refresh(ctx context.Context, key string, id int64) (*model.Offer, error) {
	v, err, _ := c.group.Do(key, func() (any, error) {
		offer, err := c.source.Find(ctx, id)
		if err != nil {
			return nil, err
		}
		if offer == nil {
			// Not-found is not cached; the admin subsystem may create
			// the offer at any moment.
			return (*model.Offer)(nil), nil
		}
		if err := c.set(ctx, key, offer); err != nil {
			log.Println("offer cache write failed:", err)
		}
		return offer, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Offer), nil
}

func (c *OfferCache) set(ctx context.Context, key string, offer *model.Offer) error {
	now := time.Now().Unix()
	e := entry{
		Offer:      offer,
		FreshUntil: now + int64(c.config.FreshTTL.Seconds()),
		StaleUntil: now + int64((c.config.FreshTTL + c.config.StaleTTL).Seconds()),
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.config.FreshTTL+c.config.StaleTTL).Err()
}
