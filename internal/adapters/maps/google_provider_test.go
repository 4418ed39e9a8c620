package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"tripmate-route-service/internal/domain"
	"tripmate-route-service/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, h http.HandlerFunc) (*GoogleMapsProvider, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	p, err := NewGoogleMapsProvider(GoogleConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	}, nil, nil)
	require.NoError(t, err)

	return p, srv
}

func requireKind(t *testing.T, err error, kind domain.ProviderErrorKind) {
	t.Helper()

	var pe *domain.ProviderError
	require.True(t, errors.As(err, &pe), "expected provider error, got %v", err)
	assert.Equal(t, kind, pe.Kind)
}

func TestNewGoogleMapsProviderRequiresKey(t *testing.T) {
	_, err := NewGoogleMapsProvider(GoogleConfig{APIKey: "  "}, nil, nil)
	assert.Error(t, err)
}

func TestGetDirectionsOptimizedWaypoints(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/directions/json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "driving", q.Get("mode"))
		assert.Equal(t, "tolls", q.Get("avoid"))
		assert.True(t, strings.HasPrefix(q.Get("waypoints"), "optimize:true|"))
		assert.Equal(t, 3, strings.Count(q.Get("waypoints"), "|"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"routes": [{
				"summary": "I-5",
				"waypoint_order": [1, 0, 2],
				"legs": [
					{"distance": {"value": 1000}, "duration": {"value": 600}},
					{"distance": {"value": 2000}, "duration": {"value": 1200}},
					{"distance": {"value": 1500}, "duration": {"value": 300}},
					{"distance": {"value": 1500}, "duration": {"value": 300}}
				]
			}]
		}`))
	})

	route, err := p.GetDirections(context.Background(), ports.DirectionsRequest{
		Origin:            domain.Coordinates{Lat: 1, Lng: 1},
		Destination:       domain.Coordinates{Lat: 5, Lng: 5},
		Waypoints:         []domain.Coordinates{{Lat: 2, Lng: 2}, {Lat: 3, Lng: 3}, {Lat: 4, Lng: 4}},
		OptimizeWaypoints: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 0, 2}, route.WaypointOrder)
	require.Len(t, route.Legs, 4)
	assert.Equal(t, 6000, route.Totals().DistanceMeters)
	assert.InDelta(t, 6.0, route.Totals().DistanceKm(), 1e-9)
	assert.InDelta(t, 40.0, route.Totals().DurationMinutes(), 1e-9)
	assert.Contains(t, string(route.Raw), `"summary": "I-5"`)
}

func TestGetDirectionsZeroResults(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "routes": []}`))
	})

	route, err := p.GetDirections(context.Background(), ports.DirectionsRequest{
		Origin:      domain.Coordinates{Lat: 1, Lng: 1},
		Destination: domain.Coordinates{Lat: 2, Lng: 2},
	})
	require.NoError(t, err)
	assert.Empty(t, route.Legs)
}

func TestGetDirectionsRejectsInvalidWaypointOrder(t *testing.T) {
	orders := map[string]string{
		"duplicate":    `[0, 0]`,
		"out of range": `[0, 2]`,
		"too short":    `[1]`,
		"too long":     `[1, 0, 2]`,
	}

	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status": "OK", "routes": [{"waypoint_order": ` + order + `, "legs": [
					{"distance": {"value": 1}, "duration": {"value": 1}}
				]}]}`))
			})

			_, err := p.GetDirections(context.Background(), ports.DirectionsRequest{
				Waypoints:         []domain.Coordinates{{Lat: 2, Lng: 2}, {Lat: 3, Lng: 3}},
				OptimizeWaypoints: true,
			})
			requireKind(t, err, domain.ProviderMalformed)
		})
	}
}

func TestGetDirectionsEmptyWaypointOrderKeepsInputOrder(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OK", "routes": [{"waypoint_order": [], "legs": [
			{"distance": {"value": 1}, "duration": {"value": 1}}
		]}]}`))
	})

	route, err := p.GetDirections(context.Background(), ports.DirectionsRequest{
		Waypoints:         []domain.Coordinates{{Lat: 2, Lng: 2}, {Lat: 3, Lng: 3}},
		OptimizeWaypoints: true,
	})
	require.NoError(t, err)
	assert.Empty(t, route.WaypointOrder)
}

func TestGetDirectionsTooManyWaypoints(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not be sent")
	})

	_, err := p.GetDirections(context.Background(), ports.DirectionsRequest{
		Waypoints: make([]domain.Coordinates, maxWaypoints+1),
	})
	requireKind(t, err, domain.ProviderInvalid)
}

func TestProviderErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want domain.ProviderErrorKind
	}{
		{"request denied", 200, `{"status": "REQUEST_DENIED", "error_message": "bad key"}`, domain.ProviderAuth},
		{"over query limit", 200, `{"status": "OVER_QUERY_LIMIT"}`, domain.ProviderRateLimited},
		{"invalid request", 200, `{"status": "INVALID_REQUEST"}`, domain.ProviderInvalid},
		{"unknown error", 200, `{"status": "UNKNOWN_ERROR"}`, domain.ProviderTransport},
		{"malformed json", 200, `{"status": `, domain.ProviderMalformed},
		{"http 403", 403, `forbidden`, domain.ProviderAuth},
		{"http 429", 429, `slow down`, domain.ProviderRateLimited},
		{"http 400", 400, `bad`, domain.ProviderInvalid},
		{"http 503", 503, `down`, domain.ProviderTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := p.GetDistanceMatrix(context.Background(),
				[]domain.Coordinates{{Lat: 1, Lng: 1}},
				[]domain.Coordinates{{Lat: 2, Lng: 2}},
				ports.ModeDriving,
			)
			requireKind(t, err, tt.want)
		})
	}
}

func TestProviderTimeout(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.GetDirections(ctx, ports.DirectionsRequest{})
	requireKind(t, err, domain.ProviderTimeout)
}

func TestRetryDisabledByDefault(t *testing.T) {
	var calls atomic.Int32
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := p.GetDirections(context.Background(), ports.DirectionsRequest{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"status": "OK", "routes": [{"legs": [{"distance": {"value": 10}, "duration": {"value": 60}}]}]}`))
	}))
	defer srv.Close()

	p, err := NewGoogleMapsProvider(GoogleConfig{
		APIKey:      "k",
		BaseURL:     srv.URL,
		HTTPClient:  srv.Client(),
		MaxAttempts: 3,
	}, nil, nil)
	require.NoError(t, err)

	route, err := p.GetDirections(context.Background(), ports.DirectionsRequest{})
	require.NoError(t, err)
	assert.Len(t, route.Legs, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetDistanceMatrix(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/distancematrix/json", r.URL.Path)
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, "tolls", q.Get("avoid"))
		assert.Equal(t, "walking", q.Get("mode"))
		assert.Equal(t, "1.0000000,1.0000000|2.0000000,2.0000000", q.Get("origins"))

		_, _ = w.Write([]byte(`{"status": "OK", "rows": [
			{"elements": [
				{"status": "OK", "distance": {"value": 0}, "duration": {"value": 0}},
				{"status": "OK", "distance": {"value": 1200}, "duration": {"value": 900}}
			]},
			{"elements": [
				{"status": "ZERO_RESULTS"},
				{"status": "OK", "distance": {"value": 0}, "duration": {"value": 0}}
			]}
		]}`))
	})

	pts := []domain.Coordinates{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}
	m, err := p.GetDistanceMatrix(context.Background(), pts, pts, ports.ModeWalking)
	require.NoError(t, err)

	cell, ok := m.Cell(0, 1)
	require.True(t, ok)
	assert.True(t, cell.OK())
	assert.Equal(t, 1200, cell.DistanceMeters)

	cell, ok = m.Cell(1, 0)
	require.True(t, ok)
	assert.False(t, cell.OK())

	_, ok = m.Cell(2, 0)
	assert.False(t, ok)
}

func TestGetDistanceMatrixRejectsOversizedRequest(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not be sent")
	})

	pts := make([]domain.Coordinates, 11)
	_, err := p.GetDistanceMatrix(context.Background(), pts, pts, ports.ModeDriving)
	requireKind(t, err, domain.ProviderInvalid)
}

func TestSearchPlaces(t *testing.T) {
	p, srv := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/place/textsearch/json", r.URL.Path)
		assert.Equal(t, "ramen in tokyo", q.Get("query"))
		assert.Equal(t, "50000", q.Get("radius"))
		assert.Equal(t, "35.6800000,139.7600000", q.Get("location"))

		_, _ = w.Write([]byte(`{"status": "OK", "results": [{
			"place_id": "abc",
			"name": "Ichiran",
			"formatted_address": "Shibuya",
			"geometry": {"location": {"lat": 35.66, "lng": 139.70}},
			"rating": 4.5,
			"types": ["restaurant"],
			"photos": [
				{"photo_reference": "p1", "width": 100, "height": 100},
				{"photo_reference": "p2"},
				{"photo_reference": "p3"},
				{"photo_reference": "p4"}
			]
		}]}`))
	})

	results, err := p.SearchPlaces(context.Background(), ports.PlaceSearchRequest{
		Query:        "ramen in tokyo",
		Center:       &domain.Coordinates{Lat: 35.68, Lng: 139.76},
		RadiusMeters: 999999,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, "abc", got.PlaceID)
	assert.Equal(t, "Shibuya", got.Address)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 4.5, *got.Rating, 1e-9)
	assert.Nil(t, got.PriceLevel)
	require.Len(t, got.Photos, maxSearchPhotos)
	assert.True(t, strings.HasPrefix(got.Photos[0].URL, srv.URL+"/place/photo?"))
	assert.Contains(t, got.Photos[0].URL, "maxwidth=400")
	assert.Contains(t, got.Photos[0].URL, "photo_reference=p1")
}

func TestSearchPlacesEmptyQuery(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not be sent")
	})

	_, err := p.SearchPlaces(context.Background(), ports.PlaceSearchRequest{Query: " "})
	requireKind(t, err, domain.ProviderInvalid)
}

func TestGetPlaceDetails(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/details/json", r.URL.Path)
		assert.Equal(t, "abc", r.URL.Query().Get("place_id"))

		_, _ = w.Write([]byte(`{"status": "OK", "result": {
			"place_id": "abc",
			"name": "Ichiran",
			"formatted_address": "Shibuya",
			"formatted_phone_number": "03-1234",
			"website": "https://ichiran.example",
			"geometry": {"location": {"lat": 35.66, "lng": 139.70}},
			"opening_hours": {"open_now": true, "weekday_text": ["Monday: 10-22"]},
			"photos": [{"photo_reference": "p1"}, {"photo_reference": "p2"}, {"photo_reference": "p3"},
				{"photo_reference": "p4"}, {"photo_reference": "p5"}, {"photo_reference": "p6"}],
			"reviews": [
				{"author_name": "a", "rating": 5, "text": "good"},
				{"author_name": "b", "rating": 4},
				{"author_name": "c", "rating": 3},
				{"author_name": "d", "rating": 2}
			]
		}}`))
	})

	d, err := p.GetPlaceDetails(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, "03-1234", d.PhoneNumber)
	assert.Equal(t, "https://ichiran.example", d.Website)
	require.NotNil(t, d.OpeningHours.OpenNow)
	assert.True(t, *d.OpeningHours.OpenNow)
	assert.Equal(t, []string{"Monday: 10-22"}, d.OpeningHours.WeekdayText)
	assert.Len(t, d.Photos, maxDetailPhotos)
	assert.Contains(t, d.Photos[0].URL, "maxwidth=800")
	assert.Len(t, d.Reviews, maxReviews)
	assert.Equal(t, "a", d.Reviews[0].AuthorName)
}

func TestGetPlaceDetailsNotFound(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "NOT_FOUND"}`))
	})

	_, err := p.GetPlaceDetails(context.Background(), "missing")
	requireKind(t, err, domain.ProviderNotFound)
}
