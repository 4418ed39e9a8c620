package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"tripmate-route-service/internal/domain"
	"tripmate-route-service/internal/platform/metrics"
	"tripmate-route-service/internal/ports"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubTrips struct{}

func (stubTrips) OptimizeTrip(context.Context, uuid.UUID) (domain.OptimizationResult, error) {
	return domain.Failed(domain.ErrInsufficientDestinations.Error()), nil
}

func (stubTrips) TripMetrics(context.Context, uuid.UUID) (domain.TripMetrics, error) {
	return domain.TripMetrics{DistanceStatus: domain.DistanceNotApplicable}, nil
}

type stubPlaces struct{}

func (stubPlaces) Search(context.Context, ports.PlaceSearchRequest) ([]ports.PlaceSummary, error) {
	return nil, nil
}

func (stubPlaces) Details(context.Context, string) (*ports.PlaceDetail, error) {
	return nil, domain.NewProviderError("place_details", domain.ProviderNotFound, nil)
}

func newTestRouter(t *testing.T) (http.Handler, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zap.InfoLevel)
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	return NewRouter(Deps{
		Trips:    stubTrips{},
		Places:   stubPlaces{},
		Log:      zap.New(core),
		Metrics:  rec,
		Gatherer: reg,
	}), logs
}

func TestRouterRoutes(t *testing.T) {
	h, _ := newTestRouter(t)
	id := uuid.NewString()

	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodPost, "/trips/" + id + "/optimize-route", "", http.StatusBadRequest},
		{http.MethodGet, "/trips/" + id + "/metrics", "", http.StatusOK},
		{http.MethodPost, "/places/search", `{"query":"x"}`, http.StatusOK},
		{http.MethodGet, "/places/abc", "", http.StatusNotFound},
		{http.MethodGet, "/travel/estimate?types=park", "", http.StatusOK},
		{http.MethodGet, "/trips/" + id + "/optimize-route", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body)))
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestRequestIDPropagation(t *testing.T) {
	h, logs := newTestRouter(t)

	t.Run("caller supplied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "abc123")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, "abc123", rr.Header().Get("X-Request-ID"))
	})

	t.Run("generated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		_, err := uuid.Parse(rr.Header().Get("X-Request-ID"))
		assert.NoError(t, err)
	})

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc123", fields["req_id"])
	assert.Equal(t, "/health", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestRouter(t)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/travel/estimate", nil))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `http_requests_total{method="GET",route="GET /travel/estimate",status="200"} 1`)
}
