package services

import (
	"context"
	"tripmate-route-service/internal/domain"

	"go.uber.org/zap"
)

// CalculateTripMetrics summarizes destinations in their given order.
//
// The bounding box and center are computed locally and are always present
// for a non-empty list. The distance needs one distance-matrix call; when it
// fails the metrics are still returned with DistanceStatus unavailable and a
// zero distance. The matrix covers every point against every point, so trips
// over the provider's element limit (10 destinations for Google) always get
// the degraded result.
func (o *RouteOptimizer) CalculateTripMetrics(ctx context.Context, destinations []domain.Destination) domain.TripMetrics {
	m := domain.TripMetrics{
		DestinationCount: len(destinations),
		DistanceStatus:   domain.DistanceNotApplicable,
	}
	if len(destinations) == 0 {
		return m
	}

	m.BoundingBox, m.Center = bounds(destinations)

	if len(destinations) < 2 {
		return m
	}

	points := make([]domain.Coordinates, 0, len(destinations))
	for _, d := range destinations {
		points = append(points, d.Coordinates)
	}

	matrix, err := o.maps.GetDistanceMatrix(ctx, points, points, o.mode)
	if err != nil {
		o.rec.ObserveDegradedMetrics()
		o.log.Warn("trip distance unavailable", zap.Int("destinations", len(destinations)), zap.Error(err))
		m.DistanceStatus = domain.DistanceUnavailable
		return m
	}

	meters := 0
	for i := 0; i+1 < len(points); i++ {
		cell, ok := matrix.Cell(i, i+1)
		if !ok || !cell.OK() {
			continue
		}
		meters += cell.DistanceMeters
	}

	m.TotalDistanceKm = float64(meters) / 1000
	m.DistanceStatus = domain.DistanceComputed

	return m
}

func bounds(destinations []domain.Destination) (*domain.BoundingBox, *domain.Coordinates) {
	first := destinations[0].Coordinates
	box := domain.BoundingBox{North: first.Lat, South: first.Lat, East: first.Lng, West: first.Lng}

	var sumLat, sumLng float64
	for _, d := range destinations {
		c := d.Coordinates
		box.North = max(box.North, c.Lat)
		box.South = min(box.South, c.Lat)
		box.East = max(box.East, c.Lng)
		box.West = min(box.West, c.Lng)
		sumLat += c.Lat
		sumLng += c.Lng
	}

	n := float64(len(destinations))
	return &box, &domain.Coordinates{Lat: sumLat / n, Lng: sumLng / n}
}
