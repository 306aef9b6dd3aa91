package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"assetfin-backend/internal/infrastructure/logging"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var ErrCacheMiss = errors.New("cache: miss")

// SeriesCache stores per-owner JSON blobs (valuation series and the like)
// under <prefix><owner>:<kind>.
type SeriesCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    logging.Logger
	group  singleflight.Group
}

type Option func(*SeriesCache)

func WithPrefix(p string) Option          { return func(c *SeriesCache) { c.prefix = p } }
func WithLogger(l logging.Logger) Option { return func(c *SeriesCache) { c.log = l } }

func NewSeriesCache(client *redis.Client, ttl time.Duration, opts ...Option) *SeriesCache {
	c := &SeriesCache{client: client, prefix: "assetfin:series:", ttl: ttl, log: logging.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *SeriesCache) key(ownerID, kind string) string {
	return c.prefix + ownerID + ":" + kind
}

func (c *SeriesCache) Get(ctx context.Context, ownerID, kind string, dest any) error {
	raw, err := c.client.Get(ctx, c.key(ownerID, kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (c *SeriesCache) Set(ctx context.Context, ownerID, kind string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(ownerID, kind), raw, c.ttl).Err()
}

// Remember fills dest from the cache, or from load on a miss. Concurrent
// misses for the same key share one load. A broken cache degrades to calling
// load directly and is logged at warn.
func (c *SeriesCache) Remember(ctx context.Context, ownerID, kind string, dest any, load func(ctx context.Context) (any, error)) error {
	key := c.key(ownerID, kind)
	err := c.Get(ctx, ownerID, kind, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.log.Warn("series cache read failed", logging.String("key", key), logging.Err(err))
	}

	raw, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.log.Warn("series cache write failed", logging.String("key", key), logging.Err(err))
		}
		return b, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw.([]byte), dest)
}

// InvalidateOwner drops every cached kind for ownerID.
func (c *SeriesCache) InvalidateOwner(ctx context.Context, ownerID string) error {
	iter := c.client.Scan(ctx, 0, c.prefix+ownerID+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
