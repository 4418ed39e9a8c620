package handlers

import (
	"context"
	"errors"
	"net/http"
	"tripmate-route-service/internal/api/dto"
	"tripmate-route-service/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TripRouter interface {
	OptimizeTrip(ctx context.Context, tripID uuid.UUID) (domain.OptimizationResult, error)
	TripMetrics(ctx context.Context, tripID uuid.UUID) (domain.TripMetrics, error)
}

type TripHandler struct {
	Trips TripRouter
	Log   *zap.Logger
}

func (h *TripHandler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

// OptimizeRoute handles POST /trips/{id}/optimize-route.
func (h *TripHandler) OptimizeRoute(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDFromPath(w, r)
	if !ok {
		return
	}

	res, err := h.Trips.OptimizeTrip(r.Context(), tripID)
	if errors.Is(err, domain.ErrTripNotFound) {
		writeError(w, r, http.StatusNotFound, "trip not found")
		return
	}
	if err != nil {
		h.logger().Error("optimize trip failed", zap.Stringer("trip_id", tripID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "an error occurred while optimizing the route")
		return
	}

	if !res.Success {
		writeJSON(w, r, http.StatusBadRequest, dto.NewOptimizeRouteResponse(res))
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewOptimizeRouteResponse(res))
}

// Metrics handles GET /trips/{id}/metrics.
func (h *TripHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripIDFromPath(w, r)
	if !ok {
		return
	}

	m, err := h.Trips.TripMetrics(r.Context(), tripID)
	if errors.Is(err, domain.ErrTripNotFound) {
		writeError(w, r, http.StatusNotFound, "trip not found")
		return
	}
	if err != nil {
		h.logger().Error("trip metrics failed", zap.Stringer("trip_id", tripID), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "failed to calculate trip metrics")
		return
	}

	if m.Degraded() {
		h.logger().Warn("trip metrics degraded", zap.Stringer("trip_id", tripID),
			zap.String("distance_status", string(m.DistanceStatus)))
	}

	writeJSON(w, r, http.StatusOK, dto.NewTripMetricsResponse(m))
}

func tripIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid trip id")
		return uuid.Nil, false
	}
	return id, true
}
