package maps

import (
	"context"
	"errors"
	"sync"
	"tripmate-route-service/internal/domain"
	"tripmate-route-service/internal/ports"
)

// MockMapsProvider returns canned responses and counts calls per operation.
// Unset responses fail with a not_found provider error.
type MockMapsProvider struct {
	Places     []ports.PlaceSummary
	Details    map[string]*ports.PlaceDetail
	Matrix     *ports.DistanceMatrix
	Directions *ports.Route

	SearchErr     error
	DetailsErr    error
	MatrixErr     error
	DirectionsErr error

	mu          sync.Mutex
	calls       map[string]int
	lastRequest ports.DirectionsRequest
}

func NewMockMapsProvider() *MockMapsProvider {
	return &MockMapsProvider{
		Details: make(map[string]*ports.PlaceDetail),
		calls:   make(map[string]int),
	}
}

// Calls reports how many times op was invoked.
func (m *MockMapsProvider) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// LastDirectionsRequest returns the most recent directions request.
func (m *MockMapsProvider) LastDirectionsRequest() ports.DirectionsRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

func (m *MockMapsProvider) count(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
}

func (m *MockMapsProvider) SearchPlaces(ctx context.Context, req ports.PlaceSearchRequest) ([]ports.PlaceSummary, error) {
	m.count("search_places")
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.Places, nil
}

func (m *MockMapsProvider) GetPlaceDetails(ctx context.Context, placeID string) (*ports.PlaceDetail, error) {
	m.count("place_details")
	if m.DetailsErr != nil {
		return nil, m.DetailsErr
	}
	d, ok := m.Details[placeID]
	if !ok {
		return nil, domain.NewProviderError("place_details", domain.ProviderNotFound, errors.New(placeID))
	}
	return d, nil
}

func (m *MockMapsProvider) GetDistanceMatrix(
	ctx context.Context,
	origins, destinations []domain.Coordinates,
	mode ports.TravelMode,
) (*ports.DistanceMatrix, error) {
	m.count("distance_matrix")
	if m.MatrixErr != nil {
		return nil, m.MatrixErr
	}
	if m.Matrix == nil {
		return nil, domain.NewProviderError("distance_matrix", domain.ProviderNotFound, errors.New("no matrix configured"))
	}
	return m.Matrix, nil
}

func (m *MockMapsProvider) GetDirections(ctx context.Context, req ports.DirectionsRequest) (*ports.Route, error) {
	m.count("directions")
	m.mu.Lock()
	m.lastRequest = req
	m.mu.Unlock()

	if m.DirectionsErr != nil {
		return nil, m.DirectionsErr
	}
	if m.Directions == nil {
		return nil, domain.NewProviderError("directions", domain.ProviderNotFound, errors.New("no route configured"))
	}
	return m.Directions, nil
}
