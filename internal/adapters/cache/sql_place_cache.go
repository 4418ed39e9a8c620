package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"tripmate-route-service/internal/platform/obs"
	"tripmate-route-service/internal/ports"

	"go.uber.org/zap"
)

// SQLPlaceCache is a Postgres-backed place details cache, used when no Redis
// address is configured. Entries older than the TTL are treated as misses.
type SQLPlaceCache struct {
	DB  *sql.DB
	TTL time.Duration
	log *zap.Logger
}

func NewSQLPlaceCache(db *sql.DB, ttl time.Duration, log *zap.Logger) *SQLPlaceCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLPlaceCache{DB: db, TTL: ttl, log: log.With(zap.String("component", "sql_place_cache"))}
}

// Fetch a cached place detail if it has not expired.
func (s *SQLPlaceCache) Get(ctx context.Context, placeID string) (_ *ports.PlaceDetail, _ bool, err error) {
	defer obs.Time(ctx, s.log, "place.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("place cache: db is nil")
	}

	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, false, errors.New("get place cache: empty place id")
	}

	q := `
	SELECT payload
	FROM place_cache
	WHERE place_id = $1 AND fetched_at > $2;
	`

	var payload []byte
	err = s.DB.QueryRowContext(ctx, q, placeID, time.Now().Add(-s.TTL)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get place cache: query place_cache table: %w", err)
	}

	var d ports.PlaceDetail
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, false, fmt.Errorf("get place cache: decode %q: %w", placeID, err)
	}

	return &d, true, nil
}

// Store a place detail, replacing any previous entry.
func (s *SQLPlaceCache) Put(ctx context.Context, detail *ports.PlaceDetail) (err error) {
	defer obs.Time(ctx, s.log, "place.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("place cache: db is nil")
	}

	if detail == nil || strings.TrimSpace(detail.PlaceID) == "" {
		return errors.New("insert place cache: empty place id")
	}

	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("insert place cache: encode: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO place_cache (place_id, payload, fetched_at)
	VALUES ($1, $2, now())
	ON CONFLICT (place_id) DO UPDATE
	SET payload = EXCLUDED.payload,
		fetched_at = EXCLUDED.fetched_at;
	`, detail.PlaceID, string(payload))
	if err != nil {
		return fmt.Errorf("insert place cache place_id=%q: %w", detail.PlaceID, err)
	}

	return nil
}
