package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"tripmate-route-service/internal/adapters/maps"
	"tripmate-route-service/internal/domain"
	"tripmate-route-service/internal/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTripRepo struct {
	mu       sync.Mutex
	trips    map[uuid.UUID]*domain.Trip
	dests    map[uuid.UUID][]domain.Destination
	applied  []domain.OptimizationResult
	applyErr error
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{
		trips: make(map[uuid.UUID]*domain.Trip),
		dests: make(map[uuid.UUID][]domain.Destination),
	}
}

func (r *fakeTripRepo) add(dests []domain.Destination) uuid.UUID {
	id := uuid.New()
	for i := range dests {
		dests[i].TripID = id
	}
	r.trips[id] = &domain.Trip{ID: id, Title: "trip"}
	r.dests[id] = dests
	return id
}

func (r *fakeTripRepo) GetTrip(ctx context.Context, tripID uuid.UUID) (*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[tripID]
	if !ok {
		return nil, domain.ErrTripNotFound
	}
	return t, nil
}

func (r *fakeTripRepo) ListDestinations(ctx context.Context, tripID uuid.UUID) ([]domain.Destination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Destination(nil), r.dests[tripID]...), nil
}

func (r *fakeTripRepo) ApplyOptimization(ctx context.Context, tripID uuid.UUID, res domain.OptimizationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applyErr != nil {
		return r.applyErr
	}
	if !domain.IsPermutation(res.DestinationOrder, domain.DestinationIDs(r.dests[tripID])) {
		return domain.ErrStaleDestinations
	}
	r.applied = append(r.applied, res)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.RouteOptimized
	err    error
}

func (p *fakePublisher) PublishRouteOptimized(ctx context.Context, evt domain.RouteOptimized) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, evt)
	return nil
}

func newTestService(provider ports.MapsProvider, repo ports.TripRepository, pub ports.EventPublisher) *TripRouteService {
	o := NewRouteOptimizer(provider, ports.ModeDriving, nil, nil)
	return NewTripRouteService(repo, o, pub, time.Second, nil)
}

func TestOptimizeTripCommitsAndPublishes(t *testing.T) {
	repo := newFakeTripRepo()
	dests := makeDestinations(4)
	tripID := repo.add(dests)

	provider := maps.NewMockMapsProvider()
	provider.Directions = &ports.Route{Legs: legs(1000, 2000, 3000), WaypointOrder: []int{1, 0}}
	pub := &fakePublisher{}

	svc := newTestService(provider, repo, pub)

	res, err := svc.OptimizeTrip(context.Background(), tripID)
	require.NoError(t, err)
	require.True(t, res.Success)

	want := []uuid.UUID{dests[0].ID, dests[2].ID, dests[1].ID, dests[3].ID}
	assert.Equal(t, want, res.DestinationOrder)

	require.Len(t, repo.applied, 1)
	assert.Equal(t, want, repo.applied[0].DestinationOrder)

	require.Len(t, pub.events, 1)
	assert.Equal(t, tripID, pub.events[0].TripID)
	assert.Equal(t, 6.0, pub.events[0].TotalDistanceKm)
}

func TestOptimizeTripFailureIsNotPersisted(t *testing.T) {
	repo := newFakeTripRepo()
	tripID := repo.add(makeDestinations(1))
	pub := &fakePublisher{}

	svc := newTestService(maps.NewMockMapsProvider(), repo, pub)

	res, err := svc.OptimizeTrip(context.Background(), tripID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, repo.applied)
	assert.Empty(t, pub.events)
}

func TestOptimizeTripUnknownTrip(t *testing.T) {
	svc := newTestService(maps.NewMockMapsProvider(), newFakeTripRepo(), &fakePublisher{})

	_, err := svc.OptimizeTrip(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrTripNotFound)
}

func TestOptimizeTripPersistenceError(t *testing.T) {
	repo := newFakeTripRepo()
	tripID := repo.add(makeDestinations(2))
	repo.applyErr = errors.New("connection reset")

	provider := maps.NewMockMapsProvider()
	provider.Directions = &ports.Route{Legs: legs(1000)}
	pub := &fakePublisher{}

	svc := newTestService(provider, repo, pub)

	_, err := svc.OptimizeTrip(context.Background(), tripID)
	assert.ErrorContains(t, err, "connection reset")
	assert.Empty(t, pub.events)
}

func TestOptimizeTripPublishErrorIsIgnored(t *testing.T) {
	repo := newFakeTripRepo()
	tripID := repo.add(makeDestinations(2))

	provider := maps.NewMockMapsProvider()
	provider.Directions = &ports.Route{Legs: legs(1000)}

	svc := newTestService(provider, repo, &fakePublisher{err: errors.New("broker down")})

	res, err := svc.OptimizeTrip(context.Background(), tripID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, repo.applied, 1)
}

// blockingProvider reports how many directions calls run at once.
type blockingProvider struct {
	*maps.MockMapsProvider

	mu      sync.Mutex
	active  int
	maxSeen int
}

func (p *blockingProvider) GetDirections(ctx context.Context, req ports.DirectionsRequest) (*ports.Route, error) {
	p.mu.Lock()
	p.active++
	p.maxSeen = max(p.maxSeen, p.active)
	p.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	p.mu.Lock()
	p.active--
	p.mu.Unlock()

	return p.MockMapsProvider.GetDirections(ctx, req)
}

func TestOptimizeTripSerializesSameTrip(t *testing.T) {
	repo := newFakeTripRepo()
	tripID := repo.add(makeDestinations(3))

	mock := maps.NewMockMapsProvider()
	mock.Directions = &ports.Route{Legs: legs(1, 1)}
	provider := &blockingProvider{MockMapsProvider: mock}

	svc := newTestService(provider, repo, &fakePublisher{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.OptimizeTrip(context.Background(), tripID)
			assert.NoError(t, err)
			assert.True(t, res.Success)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, provider.maxSeen)
	assert.Len(t, repo.applied, 5)
	assert.Empty(t, svc.locks.m)
}

func TestOptimizeTripAppliesTimeout(t *testing.T) {
	repo := newFakeTripRepo()
	tripID := repo.add(makeDestinations(2))

	var deadline time.Time
	var hasDeadline bool
	provider := &deadlineProvider{MockMapsProvider: maps.NewMockMapsProvider(), seen: func(ctx context.Context) {
		deadline, hasDeadline = ctx.Deadline()
	}}
	provider.Directions = &ports.Route{Legs: legs(1)}

	svc := newTestService(provider, repo, &fakePublisher{})

	_, err := svc.OptimizeTrip(context.Background(), tripID)
	require.NoError(t, err)
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}

type deadlineProvider struct {
	*maps.MockMapsProvider
	seen func(ctx context.Context)
}

func (p *deadlineProvider) GetDirections(ctx context.Context, req ports.DirectionsRequest) (*ports.Route, error) {
	p.seen(ctx)
	return p.MockMapsProvider.GetDirections(ctx, req)
}

func TestTripMetrics(t *testing.T) {
	repo := newFakeTripRepo()
	tripID := repo.add(gridDestinations())

	provider := maps.NewMockMapsProvider()
	provider.MatrixErr = domain.NewProviderError("distance_matrix", domain.ProviderTransport, errors.New("down"))

	svc := newTestService(provider, repo, &fakePublisher{})

	m, err := svc.TripMetrics(context.Background(), tripID)
	require.NoError(t, err)
	assert.Equal(t, 3, m.DestinationCount)
	assert.True(t, m.Degraded())

	_, err = svc.TripMetrics(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrTripNotFound)
}
