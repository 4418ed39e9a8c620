package services

import (
	"context"
	"fmt"
	"sync"
	"time"
	"tripmate-route-service/internal/domain"
	"tripmate-route-service/internal/platform/obs"
	"tripmate-route-service/internal/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TripRouteService runs the optimize-and-persist workflow for stored trips.
//
// Optimizations of the same trip are serialized in-process, and the commit
// itself is a single transaction in the repository.
type TripRouteService struct {
	repo      ports.TripRepository
	optimizer *RouteOptimizer
	events    ports.EventPublisher
	timeout   time.Duration
	log       *zap.Logger
	now       func() time.Time

	locks tripLocks
}

func NewTripRouteService(
	repo ports.TripRepository,
	optimizer *RouteOptimizer,
	events ports.EventPublisher,
	timeout time.Duration,
	log *zap.Logger,
) *TripRouteService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TripRouteService{
		repo:      repo,
		optimizer: optimizer,
		events:    events,
		timeout:   timeout,
		log:       log.With(zap.String("component", "trip_route_service")),
		now:       time.Now,
		locks:     tripLocks{m: make(map[uuid.UUID]*tripLock)},
	}
}

// OptimizeTrip optimizes the trip's route and commits the new order.
//
// An unsuccessful optimization is returned with a nil error and nothing is
// persisted. A non-nil error means the trip could not be loaded or the
// result could not be committed; domain.ErrTripNotFound is returned as is.
func (s *TripRouteService) OptimizeTrip(ctx context.Context, tripID uuid.UUID) (_ domain.OptimizationResult, err error) {
	defer obs.Time(ctx, s.log, "trips.OptimizeTrip")(&err)

	unlock := s.locks.lock(tripID)
	defer unlock()

	if _, err := s.repo.GetTrip(ctx, tripID); err != nil {
		return domain.OptimizationResult{}, fmt.Errorf("optimize trip: get trip %s: %w", tripID, err)
	}

	dests, err := s.repo.ListDestinations(ctx, tripID)
	if err != nil {
		return domain.OptimizationResult{}, fmt.Errorf("optimize trip: list destinations: %w", err)
	}

	pctx, cancel := s.providerContext(ctx)
	result := s.optimizer.OptimizeTripRoute(pctx, dests)
	cancel()

	if !result.Success {
		return result, nil
	}

	if err := s.repo.ApplyOptimization(ctx, tripID, result); err != nil {
		return domain.OptimizationResult{}, fmt.Errorf("optimize trip: apply optimization: %w", err)
	}

	evt := domain.RouteOptimized{
		TripID:               tripID,
		DestinationOrder:     result.DestinationOrder,
		TotalDistanceKm:      result.TotalDistanceKm,
		TotalDurationMinutes: result.TotalDurationMinutes,
		OccurredAt:           s.now().UTC(),
	}
	if err := s.events.PublishRouteOptimized(ctx, evt); err != nil {
		s.log.Error("failed to publish event",
			zap.String("trip_id", tripID.String()),
			zap.Error(err),
		)
	}

	return result, nil
}

// TripMetrics returns the metrics of a stored trip in its current order.
func (s *TripRouteService) TripMetrics(ctx context.Context, tripID uuid.UUID) (_ domain.TripMetrics, err error) {
	defer obs.Time(ctx, s.log, "trips.TripMetrics")(&err)

	if _, err := s.repo.GetTrip(ctx, tripID); err != nil {
		return domain.TripMetrics{}, fmt.Errorf("trip metrics: get trip %s: %w", tripID, err)
	}

	dests, err := s.repo.ListDestinations(ctx, tripID)
	if err != nil {
		return domain.TripMetrics{}, fmt.Errorf("trip metrics: list destinations: %w", err)
	}

	pctx, cancel := s.providerContext(ctx)
	defer cancel()

	return s.optimizer.CalculateTripMetrics(pctx, dests), nil
}

func (s *TripRouteService) providerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

type tripLock struct {
	mu   sync.Mutex
	refs int
}

// tripLocks hands out one mutex per trip id and forgets it once no
// goroutine holds or waits for it.
type tripLocks struct {
	mu sync.Mutex
	m  map[uuid.UUID]*tripLock
}

func (l *tripLocks) lock(id uuid.UUID) (unlock func()) {
	l.mu.Lock()
	tl, ok := l.m[id]
	if !ok {
		tl = &tripLock{}
		l.m[id] = tl
	}
	tl.refs++
	l.mu.Unlock()

	tl.mu.Lock()

	return func() {
		tl.mu.Unlock()

		l.mu.Lock()
		tl.refs--
		if tl.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}
