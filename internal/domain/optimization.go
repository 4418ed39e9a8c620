package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// OptimizationResult is the outcome of a single route optimization.
// It is never persisted as such; the caller commits its scalar fields onto
// the trip and rewrites destination order from DestinationOrder.
type OptimizationResult struct {
	Success              bool
	RouteData            json.RawMessage
	TotalDistanceKm      float64
	TotalDurationMinutes float64
	DestinationOrder     []uuid.UUID
	Error                string
}

// Failed builds an unsuccessful result carrying a caller-safe message.
func Failed(msg string) OptimizationResult {
	return OptimizationResult{Success: false, Error: msg}
}

// DistanceStatus distinguishes a fully computed trip distance from the
// degraded case where the provider could not be reached.
type DistanceStatus string

const (
	DistanceComputed      DistanceStatus = "computed"
	DistanceUnavailable   DistanceStatus = "unavailable"
	DistanceNotApplicable DistanceStatus = "not_applicable"
)

// Minimal axis-aligned rectangle containing every destination.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// TripMetrics summarizes a trip's geography.
//
// BoundingBox and Center are nil only when the trip has no destinations.
// TotalDistanceKm follows the given destination order and is zero unless
// DistanceStatus is DistanceComputed.
type TripMetrics struct {
	DestinationCount int
	TotalDistanceKm  float64
	DistanceStatus   DistanceStatus
	BoundingBox      *BoundingBox
	Center           *Coordinates
}

// Degraded reports whether the distance part of the metrics was dropped
// because the provider failed.
func (m TripMetrics) Degraded() bool {
	return m.DistanceStatus == DistanceUnavailable
}
