package services

import (
	"context"
	"time"
	"tripmate-route-service/internal/platform/obs"
	"tripmate-route-service/internal/ports"

	"go.uber.org/zap"
)

// PlaceService exposes place search and details. Details are served from
// the cache when possible; cache failures never fail a request.
type PlaceService struct {
	maps    ports.MapsProvider
	cache   ports.PlaceCache
	timeout time.Duration
	log     *zap.Logger
}

// NewPlaceService creates a PlaceService. cache may be nil.
func NewPlaceService(maps ports.MapsProvider, cache ports.PlaceCache, timeout time.Duration, log *zap.Logger) *PlaceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlaceService{
		maps:    maps,
		cache:   cache,
		timeout: timeout,
		log:     log.With(zap.String("component", "place_service")),
	}
}

func (s *PlaceService) Search(ctx context.Context, req ports.PlaceSearchRequest) (_ []ports.PlaceSummary, err error) {
	defer obs.Time(ctx, s.log, "places.Search")(&err)

	pctx, cancel := s.providerContext(ctx)
	defer cancel()

	return s.maps.SearchPlaces(pctx, req)
}

func (s *PlaceService) Details(ctx context.Context, placeID string) (_ *ports.PlaceDetail, err error) {
	defer obs.Time(ctx, s.log, "places.Details")(&err)

	if s.cache != nil {
		d, ok, err := s.cache.Get(ctx, placeID)
		if err != nil {
			s.log.Warn("place cache read failed", zap.String("place_id", placeID), zap.Error(err))
		}
		if ok {
			return d, nil
		}
	}

	pctx, cancel := s.providerContext(ctx)
	defer cancel()

	d, err := s.maps.GetPlaceDetails(pctx, placeID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, d); err != nil {
			s.log.Warn("place cache write failed", zap.String("place_id", placeID), zap.Error(err))
		}
	}

	return d, nil
}

func (s *PlaceService) providerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
