package cache

import (
	"context"
	"testing"
	"time"
	"tripmate-route-service/internal/domain"
	"tripmate-route-service/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisPlaceCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisPlaceCache(client, time.Hour, nil), mr
}

func TestRedisPlaceCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	rating := 4.2
	open := true
	in := &ports.PlaceDetail{
		PlaceSummary: ports.PlaceSummary{
			PlaceID:  "abc",
			Name:     "Louvre",
			Location: domain.Coordinates{Lat: 48.86, Lng: 2.33},
			Rating:   &rating,
			Types:    []string{"museum"},
			Photos:   []ports.Photo{{URL: "https://example.test/p.jpg"}},
		},
		OpeningHours: ports.OpeningHours{OpenNow: &open, WeekdayText: []string{"Monday: Closed"}},
		Reviews:      []ports.Review{{AuthorName: "a", Rating: 5}},
	}

	require.NoError(t, c.Put(ctx, in))
	assert.True(t, mr.Exists("place_details:abc"))
	assert.Equal(t, time.Hour, mr.TTL("place_details:abc"))

	got, ok, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, got)
}

func TestRedisPlaceCacheMissAndExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	got, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	require.NoError(t, c.Put(ctx, &ports.PlaceDetail{PlaceSummary: ports.PlaceSummary{PlaceID: "x"}}))
	mr.FastForward(2 * time.Hour)

	_, ok, err = c.Get(ctx, "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPlaceCacheErrors(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	assert.Error(t, c.Put(ctx, &ports.PlaceDetail{}))
	_, _, err := c.Get(ctx, " ")
	assert.Error(t, err)

	require.NoError(t, mr.Set("place_details:bad", "{not json"))
	_, _, err = c.Get(ctx, "bad")
	assert.Error(t, err)

	mr.Close()
	_, _, err = c.Get(ctx, "abc")
	assert.Error(t, err)
}
