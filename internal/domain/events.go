package domain

import (
	"time"

	"github.com/google/uuid"
)

// RouteOptimized is emitted after an optimization has been committed.
type RouteOptimized struct {
	TripID               uuid.UUID   `json:"trip_id"`
	DestinationOrder     []uuid.UUID `json:"destination_order"`
	TotalDistanceKm      float64     `json:"total_distance_km"`
	TotalDurationMinutes float64     `json:"total_duration_minutes"`
	OccurredAt           time.Time   `json:"occurred_at"`
}
