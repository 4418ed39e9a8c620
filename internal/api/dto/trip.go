package dto

import (
	"encoding/json"
	"tripmate-route-service/internal/domain"

	"github.com/google/uuid"
)

type OptimizeRouteResponse struct {
	Success          bool            `json:"success"`
	Message          string          `json:"message,omitempty"`
	RouteData        json.RawMessage `json:"route_data,omitempty"`
	TotalDistance    float64         `json:"total_distance"`
	TotalDuration    float64         `json:"total_duration"`
	DestinationOrder []uuid.UUID     `json:"destination_order,omitempty"`
	Error            string          `json:"error,omitempty"`
}

func NewOptimizeRouteResponse(res domain.OptimizationResult) OptimizeRouteResponse {
	if !res.Success {
		return OptimizeRouteResponse{Success: false, Error: res.Error}
	}
	return OptimizeRouteResponse{
		Success:          true,
		Message:          "Route optimized successfully",
		RouteData:        res.RouteData,
		TotalDistance:    res.TotalDistanceKm,
		TotalDuration:    res.TotalDurationMinutes,
		DestinationOrder: res.DestinationOrder,
	}
}

type TripMetricsResponse struct {
	DestinationCount int                   `json:"destination_count"`
	TotalDistance    float64               `json:"total_distance"`
	DistanceStatus   domain.DistanceStatus `json:"distance_status"`
	BoundingBox      *domain.BoundingBox   `json:"bounding_box"`
	Center           *domain.Coordinates   `json:"center"`
}

func NewTripMetricsResponse(m domain.TripMetrics) TripMetricsResponse {
	return TripMetricsResponse{
		DestinationCount: m.DestinationCount,
		TotalDistance:    m.TotalDistanceKm,
		DistanceStatus:   m.DistanceStatus,
		BoundingBox:      m.BoundingBox,
		Center:           m.Center,
	}
}
