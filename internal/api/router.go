package api

import (
	"net/http"
	"tripmate-route-service/internal/api/handlers"
	"tripmate-route-service/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Deps struct {
	Trips    handlers.TripRouter
	Places   handlers.PlaceFinder
	Log      *zap.Logger
	Metrics  *metrics.Recorder
	Gatherer prometheus.Gatherer
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	mux := http.NewServeMux()

	tripHandler := &handlers.TripHandler{Trips: d.Trips, Log: log}
	placeHandler := &handlers.PlaceHandler{Places: d.Places, Log: log}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("POST /trips/{id}/optimize-route", tripHandler.OptimizeRoute)
	mux.HandleFunc("GET /trips/{id}/metrics", tripHandler.Metrics)
	mux.HandleFunc("POST /places/search", placeHandler.Search)
	mux.HandleFunc("GET /places/{placeID}", placeHandler.Details)
	mux.HandleFunc("GET /travel/estimate", handlers.TravelEstimate)

	if d.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	return requestIDMiddleware(loggingMiddleware(log, d.Metrics, mux))
}
