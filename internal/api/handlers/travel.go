package handlers

import (
	"net/http"
	"strings"
	"tripmate-route-service/internal/api/dto"
	"tripmate-route-service/internal/services"
)

// TravelEstimate handles GET /travel/estimate?types=museum,park.
func TravelEstimate(w http.ResponseWriter, r *http.Request) {
	var types []string
	for _, t := range strings.Split(r.URL.Query().Get("types"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}

	writeJSON(w, r, http.StatusOK, dto.TravelEstimateResponse{
		VisitDurationMinutes: services.EstimateVisitDuration(types),
		BestVisitTimes:       services.SuggestBestVisitTimes(types),
	})
}
