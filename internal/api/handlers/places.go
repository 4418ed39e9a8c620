package handlers

import (
	"context"
	"net/http"
	"strings"
	"tripmate-route-service/internal/api/dto"
	"tripmate-route-service/internal/domain"
	"tripmate-route-service/internal/ports"

	"go.uber.org/zap"
)

type PlaceFinder interface {
	Search(ctx context.Context, req ports.PlaceSearchRequest) ([]ports.PlaceSummary, error)
	Details(ctx context.Context, placeID string) (*ports.PlaceDetail, error)
}

type PlaceHandler struct {
	Places PlaceFinder
	Log    *zap.Logger
}

func (h *PlaceHandler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

// logFailure logs upstream provider failures as warnings and anything else
// as an error.
func (h *PlaceHandler) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if domain.IsProviderError(err) {
		h.logger().Warn(msg, fields...)
		return
	}
	h.logger().Error(msg, fields...)
}

// Search handles POST /places/search.
func (h *PlaceHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, r, http.StatusBadRequest, "query is required")
		return
	}
	if req.Location != nil && !req.Location.Valid() {
		writeError(w, r, http.StatusBadRequest, "location is out of range")
		return
	}
	if req.Radius < 0 {
		writeError(w, r, http.StatusBadRequest, "radius cannot be negative")
		return
	}

	places, err := h.Places.Search(r.Context(), ports.PlaceSearchRequest{
		Query:        req.Query,
		Center:       req.Location,
		RadiusMeters: req.Radius,
		Type:         strings.TrimSpace(req.Type),
	})
	if err != nil {
		h.logFailure("place search failed", err, zap.String("query", req.Query))
		writeError(w, r, providerStatus(err), "failed to search places")
		return
	}
	if places == nil {
		places = []ports.PlaceSummary{}
	}

	writeJSON(w, r, http.StatusOK, places)
}

// Details handles GET /places/{placeID}.
func (h *PlaceHandler) Details(w http.ResponseWriter, r *http.Request) {
	placeID := strings.TrimSpace(r.PathValue("placeID"))
	if placeID == "" {
		writeError(w, r, http.StatusBadRequest, "place id is required")
		return
	}

	detail, err := h.Places.Details(r.Context(), placeID)
	if err != nil {
		h.logFailure("place details failed", err, zap.String("place_id", placeID))
		writeError(w, r, providerStatus(err), "failed to fetch place details")
		return
	}

	writeJSON(w, r, http.StatusOK, detail)
}
