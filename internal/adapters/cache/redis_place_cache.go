package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"tripmate-route-service/internal/platform/obs"
	"tripmate-route-service/internal/ports"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const placeKeyPrefix = "place_details"

// RedisPlaceCache stores place details as JSON under
// "place_details:<placeID>" with a fixed TTL.
type RedisPlaceCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisPlaceCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisPlaceCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisPlaceCache{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("component", "redis_place_cache")),
	}
}

func placeKey(placeID string) string {
	return placeKeyPrefix + ":" + placeID
}

func (c *RedisPlaceCache) Get(ctx context.Context, placeID string) (_ *ports.PlaceDetail, _ bool, err error) {
	defer obs.Time(ctx, c.log, "place.cache.Get")(&err)

	if strings.TrimSpace(placeID) == "" {
		return nil, false, errors.New("get place cache: empty place id")
	}

	b, err := c.client.Get(ctx, placeKey(placeID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get place cache: redis get: %w", err)
	}

	var d ports.PlaceDetail
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, false, fmt.Errorf("get place cache: decode %q: %w", placeID, err)
	}

	return &d, true, nil
}

func (c *RedisPlaceCache) Put(ctx context.Context, detail *ports.PlaceDetail) (err error) {
	defer obs.Time(ctx, c.log, "place.cache.Put")(&err)

	if detail == nil || strings.TrimSpace(detail.PlaceID) == "" {
		return errors.New("put place cache: empty place id")
	}

	b, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("put place cache: encode: %w", err)
	}

	if err := c.client.Set(ctx, placeKey(detail.PlaceID), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("put place cache: redis set: %w", err)
	}

	return nil
}
